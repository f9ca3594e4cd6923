package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kirillkom/policy-sorter/internal/bootstrap"
	"github.com/kirillkom/policy-sorter/internal/core/domain"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "List metadata records and their lifecycle status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := make(map[domain.RecordStatus]bool, len(statuses))
			for _, s := range statuses {
				st := domain.RecordStatus(s)
				if !st.Valid() {
					return fmt.Errorf("unknown status %q", s)
				}
				filter[st] = true
			}

			return ctx.withApp(cmd, lockNone, func(runCtx context.Context, app *bootstrap.App) error {
				records, err := app.ListUC.ListRecords(runCtx)
				if err != nil {
					return err
				}
				selected := make([]*domain.Record, 0, len(records))
				for _, rec := range records {
					if len(filter) == 0 || filter[rec.Status] {
						selected = append(selected, rec)
					}
				}
				return ctx.printRecords(cmd, selected)
			})
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Only show records in these statuses")
	return cmd
}

func (c *commandContext) printRecords(cmd *cobra.Command, records []*domain.Record) error {
	if c.flags.json {
		return writeJSON(cmd, records)
	}
	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No records")
		return nil
	}

	counts := map[domain.RecordStatus]int{}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		counts[rec.Status]++
		rows = append(rows, []string{
			rec.OriginalFilename,
			rec.Status.String(),
			rec.Country,
			rec.Insurer,
			rec.InsuranceLine,
			rec.ProductName,
			rec.Confidence,
		})
	}
	fmt.Fprint(out, renderTable(out,
		[]string{"File", "Status", "Country", "Insurer", "Line", "Product", "Confidence"},
		rows, nil,
	))

	summary := make([][]string, 0, 3)
	for _, st := range []domain.RecordStatus{domain.StatusNeedsReview, domain.StatusClassified, domain.StatusOrganized} {
		summary = append(summary, []string{st.String(), strconv.Itoa(counts[st])})
	}
	fmt.Fprint(out, renderTable(out, []string{"Status", "Count"}, summary, []columnAlignment{alignLeft, alignRight}))
	return nil
}
