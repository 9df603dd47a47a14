package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"survey-curator/internal/alias"
	"survey-curator/internal/common"
	"survey-curator/internal/config"
	"survey-curator/internal/diagnostic"
	"survey-curator/internal/library"
	"survey-curator/internal/merge"
	"survey-curator/internal/registry"
	"survey-curator/internal/template"
)

func checkLibraryCmd(a *app) *cobra.Command {
	f := &libraryFlags{}

	cmd := &cobra.Command{
		Use:   "check-library",
		Short: "Check the template libraries for item id collisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.apply(a.cfg)

			reg, err := buildRegistry(a.cfg, a.logger)
			if err != nil {
				return err
			}

			reg.Diagnostics.Log(a.logger)

			lib, err := loadLibrary(a.cfg, a.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Library OK: %d tasks, %d item ids\n", len(lib.Tasks()), reg.Len())

			if n := len(reg.Diagnostics.Warnings); n > 0 {
				fmt.Fprintf(out, "Warnings: %d\n", n)
			}

			return nil
		},
	}

	f.bind(cmd)

	return cmd
}

func mergePreviewCmd(a *app) *cobra.Command {
	f := &libraryFlags{}

	cmd := &cobra.Command{
		Use:   "merge-preview <template>",
		Short: "Show how a template would register against the library",
		Long: `Check a template against the registry without changing anything.

Lists every collision and, for version candidates, the version names an
import would use.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.apply(a.cfg)

			return runMergePreview(cmd, a, args[0])
		},
	}

	f.bind(cmd)

	return cmd
}

func runMergePreview(cmd *cobra.Command, a *app, path string) error {
	tpl, err := template.Load(path)
	if err != nil {
		return err
	}

	reg, err := buildRegistry(a.cfg, a.logger)
	if err != nil {
		return err
	}

	task := library.TaskKey(tpl)
	alias.Canonicalize(tpl, nil)
	items := templateItems(tpl)

	errs := reg.CheckBatch(items, task)
	out := cmd.OutOrStdout()

	if len(errs) == 0 {
		fmt.Fprintf(out, "%s: %d items, no collisions\n", task, len(items))
		return nil
	}

	var owners []string

	for _, err := range errs {
		fmt.Fprintf(out, "  %v\n", err)

		var c *registry.CollisionError
		if errors.As(err, &c) && c.Classification == registry.VersionCandidate {
			owners = common.AppendUnique(owners, c.ExistingTask)
		}
	}

	if len(owners) != 1 {
		return nil
	}

	lib, err := loadLibrary(a.cfg, a.logger)
	if err != nil {
		return err
	}

	existing, ok := lib.Template(owners[0])
	if !ok {
		fmt.Fprintf(out, "Template of %s not found; import would save %s standalone\n", owners[0], task)
		return nil
	}

	names, err := merge.AutoNamer(existing, items, filepath.Base(path))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Merge into %s: existing=%s new=%s\n", owners[0], names.Existing, names.New)

	return nil
}

type importFlags struct {
	libraryFlags

	existingVersion string
	newVersion      string
}

func importCmd(a *app) *cobra.Command {
	f := &importFlags{}

	cmd := &cobra.Command{
		Use:   "import <template>",
		Short: "Add a template to the local library",
		Long: `Register a template against the libraries and save it to the local
library. Version variants of an existing task are merged into it.

Without --existing-version and --new-version the version names are
derived from the filename and item counts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.apply(a.cfg)

			return runImport(cmd, a, f, args[0])
		},
	}

	f.bind(cmd)
	cmd.Flags().StringVar(&f.existingVersion, "existing-version", "", "Version name for the existing items")
	cmd.Flags().StringVar(&f.newVersion, "new-version", "", "Version name for the imported items")
	cmd.MarkFlagsRequiredTogether("existing-version", "new-version")

	return cmd
}

func runImport(cmd *cobra.Command, a *app, f *importFlags, path string) error {
	if a.cfg.Library.Local == "" {
		return diagnostic.UserInputf("import requires a local library")
	}

	tpl, err := template.Load(path)
	if err != nil {
		return err
	}

	reg, err := buildRegistry(a.cfg, a.logger)
	if err != nil {
		return err
	}

	lib, err := loadLibrary(a.cfg, a.logger)
	if err != nil {
		return err
	}

	namer := merge.VersionNamer(merge.AutoNamer)
	if f.existingVersion != "" {
		namer = merge.Fixed(f.existingVersion, f.newVersion)
	}

	im := &merge.Importer{
		Registry: reg,
		Library:  lib,
		LocalDir: a.cfg.Library.Local,
		Merger:   merge.New(namer, a.logger),
		Logger:   a.logger,
	}

	res, err := im.Import(tpl)
	im.Diagnostics.Log(a.logger)

	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if res.Merge != nil {
		fmt.Fprintf(out, "Merged into %s (%s): versions %v, %d items added, %d shared\n",
			res.Task, res.Path, res.Merge.Versions, len(res.Merge.Added), len(res.Merge.Overlap))
		return nil
	}

	fmt.Fprintf(out, "Saved %s to %s (%d items)\n", res.Task, res.Path, len(res.Registered))

	return nil
}

func buildRegistry(cfg *config.Config, logger *slog.Logger) (*registry.Registry, error) {
	return registry.FromLibraries(cfg.Library.Local, cfg.Library.Official, registry.Options{
		Patterns: cfg.Library.Patterns,
		Logger:   logger,
	})
}

func templateItems(tpl *template.Template) []registry.Item {
	items := make([]registry.Item, 0, len(tpl.Items))
	for _, id := range tpl.ItemIDs() {
		items = append(items, registry.Item{ID: id, Def: tpl.Items[id]})
	}

	return items
}
