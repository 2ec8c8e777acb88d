// Command sourcemaps turns the curated CPI category spreadsheet into the
// all_tables node table and the composed_streams edge table.
//
// It takes no flags: paths and pipeline settings come from SOURCEMAPS_*
// environment variables or an optional sourcemaps.yaml, and default to the
// fixed relative locations the tables have always used.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sourcemaps/internal/app"
	"sourcemaps/internal/config"
	"sourcemaps/internal/infrastructure"
	"sourcemaps/pkg/contracts"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Normalize the CPI category spreadsheet into source map tables",
		Long: `Reads the category spreadsheet, classifies rows into category, subcategory and
table tiers, rescales relative importance to integers, derives bounded database
names and writes the node table and the composed streams table.

Running without a subcommand is the same as "run".`,
		Version:       contracts.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runPipeline,
	}

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the normalization pipeline once",
		Args:  cobra.NoArgs,
		RunE:  runPipeline,
	})

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runPipeline loads configuration, runs the pipeline and flushes telemetry
func runPipeline(cmd *cobra.Command, _ []string) (err error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	paths, err := config.GetPaths(cfg)
	if err != nil {
		return err
	}

	application, err := app.NewApplication(cfg, paths, logger)
	if err != nil {
		return err
	}
	defer func() {
		if stopErr := application.Stop(context.WithoutCancel(ctx)); stopErr != nil {
			logger.Error("Failed to flush telemetry", slog.String("error", stopErr.Error()))
			if err == nil {
				err = stopErr
			}
		}
	}()

	return application.Run(ctx)
}
