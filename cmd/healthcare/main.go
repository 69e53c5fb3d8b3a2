package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alekLukanen/errs"
	"github.com/spf13/cobra"

	"github.com/alekLukanen/HealthcareMLOps/config"
	"github.com/alekLukanen/HealthcareMLOps/pipeline"
)

type rootOptions struct {
	configPath string
	root       string

	// set from a positional argument, overrides the configured raw csv
	rawCSV string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "healthcare",
		Short: "Run the healthcare data pipeline stages",
		Long: `Batch pipeline for the healthcare symptom dataset.

Stages:
  ingest   - read data/raw/Healthcare.csv and write healthcare_raw.parquet
  validate - add Disease_Group, validate and write healthcare_validated.parquet
  pipeline - run ingest then validate
  status   - show the latest recorded runs and published snapshots`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVarP(&opts.root, "root", "r", "", "Project root (default: current directory)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "ingest [csv-path]",
			Short: "Convert the raw CSV into the raw parquet snapshot",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 1 {
					opts.rawCSV = args[0]
				}
				return withPipeline(cmd, opts, func(ctx context.Context, p *pipeline.Pipeline) error {
					_, err := p.RunIngestion(ctx)
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "validate [parquet-path]",
			Short: "Validate a raw snapshot and write the validated snapshot",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				parquetPath := ""
				if len(args) == 1 {
					parquetPath = args[0]
				}
				return withPipeline(cmd, opts, func(ctx context.Context, p *pipeline.Pipeline) error {
					validated, err := p.RunValidation(ctx, parquetPath)
					if err != nil {
						return err
					}
					validated.Release()
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "pipeline [csv-path]",
			Short: "Run ingestion followed by validation",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 1 {
					opts.rawCSV = args[0]
				}
				return withPipeline(cmd, opts, func(ctx context.Context, p *pipeline.Pipeline) error {
					return p.RunDataPipeline(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the latest recorded run of each stage and the published snapshots",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withPipeline(cmd, opts, func(ctx context.Context, p *pipeline.Pipeline) error {
					status, err := p.Status(ctx)
					if err != nil {
						return err
					}
					printStatus(cmd, status)
					return nil
				})
			},
		},
	)

	return rootCmd
}

func loadConfig(opts *rootOptions) (config.Config, error) {
	root := opts.root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return config.Config{}, errs.Wrap(err, errors.New("failed reading working directory"))
		}
		root = wd
	}

	cfg := config.Default(root)
	if opts.configPath != "" {
		loaded, err := config.LoadFile(opts.configPath, root)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv(os.LookupEnv)
	if opts.rawCSV != "" {
		cfg.Paths.RawCSV = opts.rawCSV
	}
	return cfg, nil
}

func printStatus(cmd *cobra.Command, status pipeline.Status) {
	out := cmd.OutOrStdout()
	if len(status.Stages) == 0 {
		fmt.Fprintln(out, "run ledger: not configured")
	}
	for _, stage := range status.Stages {
		if stage.LatestRun == nil {
			fmt.Fprintf(out, "%s: no runs recorded\n", stage.Stage)
			continue
		}
		fmt.Fprintf(
			out, "%s: run %s wrote %d rows to %s at %s\n",
			stage.Stage,
			stage.LatestRun.RunID,
			stage.LatestRun.NumRows,
			stage.LatestRun.OutputPath,
			stage.LatestRun.FinishedAt.Format(time.RFC3339),
		)
	}
	for _, key := range status.PublishedSnapshots {
		fmt.Fprintf(out, "published: %s\n", key)
	}
}

func newLogger(cmd *cobra.Command, level slog.Level) *slog.Logger {
	return slog.New(
		slog.NewJSONHandler(
			cmd.OutOrStdout(), &slog.HandlerOptions{Level: level},
		),
	)
}

func withPipeline(cmd *cobra.Command, opts *rootOptions, run func(context.Context, *pipeline.Pipeline) error) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := newLogger(cmd, level)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p, err := pipeline.NewPipeline(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to build pipeline", slog.String("error", errs.ErrorWithStack(err)))
		return err
	}
	defer p.Close()

	if err := run(ctx, p); err != nil {
		logger.Error("stage failed", slog.String("command", cmd.Name()), slog.String("error", errs.ErrorWithStack(err)))
		return err
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
