package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "policyctl",
		Short:         "Classify and file insurance policy documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.rawDir, "raw-dir", "", "Raw documents directory (RAW_DOCUMENTS_DIR)")
	pf.StringVar(&flags.metadataDir, "metadata-dir", "", "Metadata records directory (METADATA_DIR)")
	pf.StringVar(&flags.policiesDir, "policies-dir", "", "Organized output directory (POLICIES_DIR)")
	pf.StringVar(&flags.extractor, "extractor", "", "Text extractor: pdf or fixture (TEXT_EXTRACTOR)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (LOG_LEVEL)")
	pf.BoolVar(&flags.json, "json", false, "Print results as JSON")

	rootCmd.AddCommand(newAcquireCommand(ctx))
	rootCmd.AddCommand(newClassifyCommand(ctx))
	rootCmd.AddCommand(newReviewCommand(ctx))
	rootCmd.AddCommand(newOrganizeCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))

	return rootCmd
}
