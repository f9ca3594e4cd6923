package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kirillkom/policy-sorter/internal/bootstrap"
	"github.com/kirillkom/policy-sorter/internal/core/domain"
)

const defaultReviewSheet = "review.xlsx"

func newReviewCommand(ctx *commandContext) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Hand records to a reviewer and apply their decisions",
	}
	reviewCmd.AddCommand(newReviewExportCommand(ctx))
	reviewCmd.AddCommand(newReviewImportCommand(ctx))
	reviewCmd.AddCommand(newReviewApproveCommand(ctx))
	return reviewCmd
}

func (c *commandContext) reviewSheetPath(arg string) string {
	if arg != "" {
		return arg
	}
	return filepath.Join(c.config.MetadataDir, defaultReviewSheet)
}

func newReviewExportCommand(ctx *commandContext) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write needs_review records to an XLSX worksheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ctx.reviewSheetPath(out)
			return ctx.withApp(cmd, lockNone, func(runCtx context.Context, app *bootstrap.App) error {
				n, err := app.ReviewUC.ExportPending(runCtx, path)
				if err != nil {
					return err
				}
				if ctx.flags.json {
					return writeJSON(cmd, map[string]any{"path": path, "records": n})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d record(s) to %s\n", n, path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Worksheet path (default <metadata-dir>/review.xlsx)")
	return cmd
}

func newReviewImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import [path]",
		Short: "Apply approved rows from a review worksheet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			path = ctx.reviewSheetPath(path)
			return ctx.runStage(cmd, lockExisting, func(runCtx context.Context, app *bootstrap.App) (*domain.Report, error) {
				return app.ReviewUC.ImportDecisions(runCtx, path)
			})
		},
	}
}

func newReviewApproveCommand(ctx *commandContext) *cobra.Command {
	var fields domain.Fields
	cmd := &cobra.Command{
		Use:   "approve <original-filename>",
		Short: "Approve one record, optionally correcting its fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decision := domain.ReviewDecision{
				OriginalFilename: args[0],
				Approve:          true,
				Fields:           fields,
			}
			return ctx.runStage(cmd, lockExisting, func(runCtx context.Context, app *bootstrap.App) (*domain.Report, error) {
				return app.ReviewUC.Approve(runCtx, decision)
			})
		},
	}
	cmd.Flags().StringVar(&fields.Country, "country", "", "Corrected country")
	cmd.Flags().StringVar(&fields.Insurer, "insurer", "", "Corrected insurer")
	cmd.Flags().StringVar(&fields.InsuranceLine, "line", "", "Corrected insurance line")
	cmd.Flags().StringVar(&fields.ProductName, "product", "", "Corrected product name")
	return cmd
}
