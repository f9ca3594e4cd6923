package main

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printReport renders one row per outcome followed by the totals line.
func (c *commandContext) printReport(cmd *cobra.Command, report *domain.Report) error {
	if c.flags.json {
		return writeJSON(cmd, report)
	}
	out := cmd.OutOrStdout()
	if len(report.Outcomes) == 0 {
		fmt.Fprintf(out, "%s: nothing to do\n", report.Stage)
		return nil
	}

	rows := make([][]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		note := o.Detail
		if o.Kind == domain.OutcomeSucceeded && o.Target != "" {
			note = o.Target
		}
		size := ""
		if o.Bytes > 0 {
			size = humanize.Bytes(uint64(o.Bytes))
		}
		rows = append(rows, []string{o.Subject, string(o.Kind), o.Reason, size, note})
	}
	fmt.Fprint(out, renderTable(out,
		[]string{"File", "Outcome", "Reason", "Size", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))
	fmt.Fprintln(out, summaryLine(report))
	return nil
}

func summaryLine(report *domain.Report) string {
	line := fmt.Sprintf("%s: %d succeeded, %d skipped, %d failed",
		report.Stage,
		report.Count(domain.OutcomeSucceeded),
		report.Count(domain.OutcomeSkipped),
		report.Count(domain.OutcomeFailed),
	)
	if report.Bytes > 0 {
		line += fmt.Sprintf(", %s", humanize.Bytes(uint64(report.Bytes)))
	}
	return line
}
