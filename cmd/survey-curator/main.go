// Package main provides the survey-curator binary entry point.
//
// survey-curator converts wide survey exports into a per-subject,
// per-session dataset using a library of item templates, and maintains
// that library: checking it for item id collisions, importing new
// templates and merging instrument versions.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"survey-curator/internal/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "survey-curator"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is the state shared by all subcommands.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Survey template library and conversion engine",
		Long: `survey-curator converts survey exports into a validated dataset
using a library of item templates.

It provides:
- conversion of CSV/TSV exports into per-subject records
- library checks for item id collisions
- import of new templates with version merging
- compilation of multi-language templates to one language`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		convertCmd(a),
		checkLibraryCmd(a),
		mergePreviewCmd(a),
		importCmd(a),
		compileCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

func (a *app) setup(stderr io.Writer) error {
	a.logger = newLogger(stderr, a.logLevel)
	slog.SetDefault(a.logger)

	if a.configPath == "" {
		a.cfg = config.DefaultConfig()
		return nil
	}

	cfg, err := config.LoadFromFile(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a.logger.Debug("Loaded config", slog.String("path", a.configPath))
	a.cfg = cfg

	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
}

// libraryFlags binds the library location flags shared by several commands.
type libraryFlags struct {
	local    string
	official string
}

func (f *libraryFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.local, "library", "", "Local template library directory (overrides config)")
	cmd.Flags().StringVar(&f.official, "official", "", "Official template library directory (overrides config)")
}

func (f *libraryFlags) apply(cfg *config.Config) {
	if f.local != "" {
		cfg.Library.Local = f.local
	}

	if f.official != "" {
		cfg.Library.Official = f.official
	}
}
