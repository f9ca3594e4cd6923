package main

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kirillkom/policy-sorter/internal/bootstrap"
	"github.com/kirillkom/policy-sorter/internal/config"
	"github.com/kirillkom/policy-sorter/internal/core/usecase"
	"github.com/kirillkom/policy-sorter/internal/observability/logging"
)

type globalFlags struct {
	rawDir      string
	metadataDir string
	policiesDir string
	extractor   string
	logLevel    string
	json        bool
}

type commandContext struct {
	flags  *globalFlags
	config config.Config
	logger *slog.Logger
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// init resolves configuration once per invocation. Flags win over the environment.
func (c *commandContext) init(cmd *cobra.Command) error {
	cfg := config.Load()
	override := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	override(&cfg.RawDocumentsDir, c.flags.rawDir)
	override(&cfg.MetadataDir, c.flags.metadataDir)
	override(&cfg.PoliciesDir, c.flags.policiesDir)
	override(&cfg.LogLevel, c.flags.logLevel)
	if v := strings.TrimSpace(c.flags.extractor); v != "" {
		cfg.TextExtractor = strings.ToLower(v)
	}

	c.config = cfg
	c.logger = logging.New(logging.Options{
		Service: "policyctl",
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Writer:  cmd.ErrOrStderr(),
	})
	slog.SetDefault(c.logger)
	return nil
}

type lockMode int

const (
	lockNone lockMode = iota
	// lockExisting needs the metadata collection to be there already.
	lockExisting
	// lockCreate starts the metadata collection on a first run.
	lockCreate
)

// withApp runs fn with a wired application tagged with a fresh run id.
// Stages that change records or documents hold the run lock.
func (c *commandContext) withApp(cmd *cobra.Command, mode lockMode, fn func(context.Context, *bootstrap.App) error) error {
	ctx := usecase.WithRunID(cmd.Context(), uuid.NewString())

	app, err := bootstrap.New(ctx, c.config, c.logger)
	if err != nil {
		return err
	}
	defer app.Close()

	if mode != lockNone {
		if err := app.Lock(mode == lockCreate); err != nil {
			return err
		}
	}
	return fn(ctx, app)
}
