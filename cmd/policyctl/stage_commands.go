package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/kirillkom/policy-sorter/internal/bootstrap"
	"github.com/kirillkom/policy-sorter/internal/config"
	"github.com/kirillkom/policy-sorter/internal/core/domain"
)

func newAcquireCommand(ctx *commandContext) *cobra.Command {
	var manifest string
	cmd := &cobra.Command{
		Use:   "acquire [url...]",
		Short: "Download policy documents into the raw collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			urls := append([]string(nil), args...)
			if manifest == "" {
				manifest = ctx.config.SourceManifest
			}
			if manifest != "" {
				listed, err := config.LoadManifest(manifest)
				if err != nil {
					return err
				}
				urls = append(urls, listed...)
			}
			if len(urls) == 0 {
				return errors.New("no urls given: pass them as arguments or via --manifest")
			}
			return ctx.runStage(cmd, lockCreate, func(runCtx context.Context, app *bootstrap.App) (*domain.Report, error) {
				return app.AcquireUC.Acquire(runCtx, urls)
			})
		},
	}
	cmd.Flags().StringVar(&manifest, "manifest", "", "YAML manifest with a urls list (SOURCE_MANIFEST)")
	return cmd
}

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Create needs_review records for new raw documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runStage(cmd, lockCreate, func(runCtx context.Context, app *bootstrap.App) (*domain.Report, error) {
				return app.ClassifyUC.ClassifyAll(runCtx)
			})
		},
	}
}

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "organize",
		Short: "Move classified documents into the policies tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runStage(cmd, lockExisting, func(runCtx context.Context, app *bootstrap.App) (*domain.Report, error) {
				return app.OrganizeUC.OrganizeAll(runCtx)
			})
		},
	}
}

// runStage runs one batch stage under the run lock, records metrics and prints the report.
func (c *commandContext) runStage(cmd *cobra.Command, mode lockMode, run func(context.Context, *bootstrap.App) (*domain.Report, error)) error {
	return c.withApp(cmd, mode, func(runCtx context.Context, app *bootstrap.App) error {
		started := time.Now()
		report, err := run(runCtx, app)
		if report != nil {
			app.ObserveReport(report, time.Since(started))
			if printErr := c.printReport(cmd, report); printErr != nil && err == nil {
				err = printErr
			}
		}
		return err
	})
}
