package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/nao1215/techtally/internal/config"
	"github.com/nao1215/techtally/internal/database"
	"github.com/nao1215/techtally/internal/log"
	"github.com/nao1215/techtally/internal/model"
	"github.com/nao1215/techtally/internal/pipeline"
	"github.com/nao1215/techtally/internal/report"
	"github.com/spf13/cobra"
)

// binding copies one changed flag into the configuration.
// Flags left at their default keep the value from the configuration file.
type binding func(cmd *cobra.Command, cfg *config.Config) error

func stringFlag(name string, field func(*config.Config) *string) binding {
	return func(cmd *cobra.Command, cfg *config.Config) error {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		v, err := cmd.Flags().GetString(name)
		if err != nil {
			return err
		}
		*field(cfg) = v
		return nil
	}
}

func durationFlag(name string, field func(*config.Config) *time.Duration) binding {
	return func(cmd *cobra.Command, cfg *config.Config) error {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		v, err := cmd.Flags().GetDuration(name)
		if err != nil {
			return err
		}
		*field(cfg) = v
		return nil
	}
}

func boolFlag(name string, field func(*config.Config) *bool) binding {
	return func(cmd *cobra.Command, cfg *config.Config) error {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		v, err := cmd.Flags().GetBool(name)
		if err != nil {
			return err
		}
		*field(cfg) = v
		return nil
	}
}

// addHTTPFlags registers the fetcher flags of the filter, categorize and run commands.
func addHTTPFlags(cmd *cobra.Command) {
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().Duration("delay", config.DefaultRequestDelay,
		"Pause between two requests")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().StringToStringP("header", "H", nil,
		"Extra request header as name=value (repeatable)")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum number of response body bytes parsed per page")
}

func httpBindings() []binding {
	return []binding{
		durationFlag("timeout", func(c *config.Config) *time.Duration { return &c.Timeout }),
		durationFlag("delay", func(c *config.Config) *time.Duration { return &c.RequestDelay }),
		stringFlag("user-agent", func(c *config.Config) *string { return &c.UserAgent }),
		func(cmd *cobra.Command, cfg *config.Config) error {
			if !cmd.Flags().Changed("header") {
				return nil
			}
			headers, err := cmd.Flags().GetStringToString("header")
			if err != nil {
				return err
			}
			for k, v := range headers {
				cfg.Headers[k] = v
			}
			return nil
		},
		func(cmd *cobra.Command, cfg *config.Config) error {
			if !cmd.Flags().Changed("max-body-size") {
				return nil
			}
			v, err := cmd.Flags().GetInt64("max-body-size")
			if err != nil {
				return err
			}
			cfg.MaxBodySize = v
			return nil
		},
	}
}

// addReportFlags registers the report and history flags of the count and run commands.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().String("report-file", "",
		"Write the report to the specified file path instead of stdout (creates directories if needed)")
	cmd.Flags().Bool("no-history", false,
		"Do not store the result in the history database")
}

func reportBindings() []binding {
	return []binding{
		boolFlag("json", func(c *config.Config) *bool { return &c.JSONReport }),
		boolFlag("markdown", func(c *config.Config) *bool { return &c.MarkdownReport }),
		stringFlag("report-file", func(c *config.Config) *string { return &c.ReportFile }),
		func(cmd *cobra.Command, cfg *config.Config) error {
			if !cmd.Flags().Changed("no-history") {
				return nil
			}
			v, err := cmd.Flags().GetBool("no-history")
			if err != nil {
				return err
			}
			cfg.SaveHistory = !v
			return nil
		},
	}
}

// getInheritedBool retrieves a persistent flag from the command or its root.
// It returns false when the flag is not defined, e.g. for a command built
// without its parent.
func getInheritedBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// getInheritedString is getInheritedBool for string flags.
func getInheritedString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return ""
		}
	}
	return v
}

// buildConfig loads the configuration file, applies the changed flags and
// validates the result.
func buildConfig(cmd *cobra.Command, bindings ...binding) (*config.Config, error) {
	cfg, err := config.Load(getInheritedString(cmd, "config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg.Verbose = getInheritedBool(cmd, "verbose")
	cfg.LogJSON = getInheritedBool(cmd, "log-json")
	if dir := getInheritedString(cmd, "data-dir"); dir != "" {
		cfg.DBDir = dir
	}

	for _, bind := range bindings {
		if err := bind(cmd, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// setupLogger creates the process logger and makes it the slog default.
func setupLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	logger := log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.LogJSON)
	slog.SetDefault(logger)
	return logger
}

// runStages executes the named stages as one run. When the run includes the
// count stage, the report goes to stdout (or the report file) and the run is
// stored in the history database.
func runStages(cmd *cobra.Command, cfg *config.Config, stages ...string) error {
	logger := setupLogger(cmd, cfg)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	counting := slices.Contains(stages, pipeline.StageCount)

	var writer report.Writer
	if counting {
		output, closeOutput, err := openReportOutput(cfg, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closeOutput()
		writer = newReportWriter(cfg, output)
	}

	p, err := pipeline.DefaultPipeline(cfg, writer, []pipeline.Option{pipeline.WithLogger(logger)}, stages...)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	run := model.NewRun()
	if err := p.Execute(ctx, run); err != nil {
		return err
	}

	if skipped := run.SkippedFetches(); len(skipped) > 0 {
		logger.Warn("some pages were skipped", "count", len(skipped))
	}

	// run.Counts stays nil when the pipeline stopped before the count stage.
	if counting && cfg.SaveHistory && run.Counts != nil {
		// The counts file is already written; a history failure does not undo it.
		if err := saveRun(ctx, cfg, run, logger); err != nil {
			logger.Error("failed to save run history", "error", err)
		}
	}
	return nil
}

// openReportOutput returns stdout or the report file with a function closing it.
func openReportOutput(cfg *config.Config, stdout io.Writer) (io.Writer, func(), error) {
	if cfg.ReportFile == "" {
		return stdout, func() {}, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// newReportWriter picks the report format from the configuration.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewWriter(report.FormatJSON, output)
	case cfg.MarkdownReport:
		return report.NewWriter(report.FormatMarkdown, output)
	default:
		return report.NewSimpleWriter(output, report.WithSavedTo(cfg.CountsFile))
	}
}

// saveRun stores the run in the history database.
func saveRun(ctx context.Context, cfg *config.Config, run *model.Run, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.SaveRun(ctx, run)
	if err != nil {
		return err
	}
	logger.Info("run saved to history", "id", id, "db", db.Path())
	return nil
}
