package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"survey-curator/internal/alias"
	"survey-curator/internal/config"
	"survey-curator/internal/convert"
	"survey-curator/internal/library"
	"survey-curator/internal/table"
)

type convertFlags struct {
	libraryFlags

	idColumn      string
	sessionColumn string
	unmapped      string
	strict        string
	source        string
	aliasFile     string
	language      string
	version       string
	tasks         []string
	overwrite     bool
}

func convertCmd(a *app) *cobra.Command {
	f := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert <input> <output-dir>",
		Short: "Convert a survey export into a dataset",
		Long: `Convert a wide CSV/TSV survey export into per-subject, per-session
records using the template library.

Flags override the values of the config file.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.apply(cmd, a.cfg)

			return runConvert(cmd, a, args[0], args[1])
		},
	}

	f.bind(cmd)
	cmd.Flags().StringVar(&f.idColumn, "id-column", "", "Subject id column (default: auto-detect)")
	cmd.Flags().StringVar(&f.sessionColumn, "session-column", "", "Session column (default: auto-detect)")
	cmd.Flags().StringVar(&f.unmapped, "unmapped", "", "Unmapped column policy: error, warn or ignore")
	cmd.Flags().StringVar(&f.strict, "strict", "", "Validation mode: auto, strict or tolerant")
	cmd.Flags().StringVar(&f.source, "source", "", "Export kind: spreadsheet or archive")
	cmd.Flags().StringVar(&f.aliasFile, "alias-file", "", "Canonical/alias TSV file")
	cmd.Flags().StringVar(&f.language, "language", "", "Project sidecars to one language")
	cmd.Flags().StringVar(&f.version, "instrument-version", "", "Only write items of this instrument version")
	cmd.Flags().StringSliceVar(&f.tasks, "tasks", nil, "Restrict conversion to these surveys")
	cmd.Flags().BoolVar(&f.overwrite, "overwrite", false, "Write into a non-empty output directory")

	return cmd
}

// apply copies every flag the user set over the config value.
func (f *convertFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	f.libraryFlags.apply(cfg)

	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}

	set("id-column", &cfg.IDColumn, f.idColumn)
	set("session-column", &cfg.SessionColumn, f.sessionColumn)
	set("unmapped", &cfg.Unmapped, f.unmapped)
	set("strict", &cfg.Strict, f.strict)
	set("source", &cfg.Source, f.source)
	set("alias-file", &cfg.AliasFile, f.aliasFile)
	set("language", &cfg.Language, f.language)
	set("instrument-version", &cfg.Version, f.version)

	if cmd.Flags().Changed("tasks") {
		cfg.Tasks = f.tasks
	}

	if cmd.Flags().Changed("overwrite") {
		cfg.Overwrite = f.overwrite
	}
}

func runConvert(cmd *cobra.Command, a *app, input, outDir string) error {
	opts, err := a.cfg.ConvertOptions(a.logger)
	if err != nil {
		return err
	}

	lib, err := loadLibrary(a.cfg, a.logger)
	if err != nil {
		return err
	}

	tbl, err := table.ReadFile(input)
	if err != nil {
		return err
	}

	a.logger.Info("Read input", slog.String("path", input), slog.Int("rows", tbl.Len()))

	res, err := convert.New(lib, opts).Run(cmd.Context(), tbl, outDir)
	if res != nil {
		res.Diagnostics.Log(a.logger)
	}

	if err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), res)

	return nil
}

// loadLibrary loads the configured libraries with the optional alias file.
func loadLibrary(cfg *config.Config, logger *slog.Logger) (*library.Library, error) {
	var aliases *alias.Map

	if cfg.AliasFile != "" {
		m, err := alias.LoadFile(cfg.AliasFile)
		if err != nil {
			return nil, err
		}

		aliases = m
	}

	return library.Load(cfg.LibraryDirs(), library.Options{
		Patterns: cfg.Library.Patterns,
		Aliases:  aliases,
		Logger:   logger,
	})
}

func printSummary(w io.Writer, res *convert.Result) {
	fmt.Fprintf(w, "Run %s\n", res.RunID)
	fmt.Fprintf(w, "Subjects: %d\n", len(res.Subjects))
	fmt.Fprintf(w, "Tasks: %s\n", strings.Join(res.Tasks, ", "))
	fmt.Fprintf(w, "Files written: %d\n", len(res.Files))

	if len(res.Unmapped) > 0 {
		fmt.Fprintf(w, "Unmapped columns: %s\n", strings.Join(res.Unmapped, ", "))
	}

	for _, task := range res.Tasks {
		if n := res.MissingItems[task]; n > 0 {
			fmt.Fprintf(w, "Missing items in %s: %d\n", task, n)
		}
	}

	if res.Tolerance != nil && res.Tolerance.Len() > 0 {
		fmt.Fprintf(w, "Tolerated values: %d\n", res.Tolerance.Len())

		for _, task := range res.Tolerance.Tasks() {
			for _, tol := range res.Tolerance.ForTask(task) {
				fmt.Fprintf(w, "  %s\n", tol)
			}
		}
	}
}
