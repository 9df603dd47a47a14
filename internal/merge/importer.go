package merge

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"survey-curator/internal/alias"
	"survey-curator/internal/common"
	"survey-curator/internal/diagnostic"
	"survey-curator/internal/library"
	"survey-curator/internal/registry"
	"survey-curator/internal/template"
)

// Importer adds a newly imported template to the local library.
type Importer struct {
	Registry *registry.Registry
	// Library locates merge targets by task. May be nil.
	Library  *library.Library
	LocalDir string
	Merger   *Merger
	Logger   *slog.Logger

	Diagnostics diagnostic.Diagnostics
}

// ImportResult describes where an imported template ended up.
type ImportResult struct {
	Task string
	// Path is the template file now holding the items.
	Path       string
	Registered []string
	// Merge is set when the items were folded into an existing template.
	Merge *Report
}

// Import registers tpl as one batch. Duplicates abort before anything is
// written. Version candidates are merged into their owning template; if
// that template cannot be found the items are saved standalone with a
// warning.
func (im *Importer) Import(tpl *template.Template) (*ImportResult, error) {
	logger := im.Logger
	if logger == nil {
		logger = slog.Default()
	}

	task := library.TaskKey(tpl)
	alias.Canonicalize(tpl, nil)

	items := make([]registry.Item, 0, len(tpl.Items))
	for _, id := range tpl.ItemIDs() {
		items = append(items, registry.Item{ID: id, Def: tpl.Items[id]})
	}

	batch := im.Registry.NewBatch()

	var (
		errs   []error
		owners []string
	)

	for _, it := range items {
		res, err := batch.Register(task, it)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if res.Outcome == registry.NeedsMerge {
			owners = common.AppendUnique(owners, res.Owner())
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if len(owners) == 0 {
		return im.saveStandalone(tpl, task, batch)
	}

	if len(owners) > 1 {
		return nil, diagnostic.UserInputf("items of %s collide with several tasks %v; split the import", task, owners)
	}

	owner := owners[0]

	target, ok := im.locate(owner)
	if !ok {
		return im.targetMissing(tpl, task, owner, batch, logger)
	}

	if im.Merger == nil {
		return nil, &diagnostic.Error{
			Kind: diagnostic.ErrNeedsMergeStrategy,
			Msg:  fmt.Sprintf("%s is a version of %s", task, owner),
		}
	}

	hint := task
	if tpl.Path != "" {
		hint = filepath.Base(tpl.Path)
	}

	report, err := im.Merger.Merge(target, items, hint)
	if errors.Is(err, ErrTargetMissing) {
		return im.targetMissing(tpl, task, owner, batch, logger)
	}

	if err != nil {
		return nil, err
	}

	result := &ImportResult{Task: owner, Path: target, Merge: report}

	for _, id := range report.Added {
		def, _ := tpl.Item(id)
		if _, err := im.Registry.Register(id, owner, registry.TierLocal, def); err != nil {
			return nil, err
		}

		result.Registered = append(result.Registered, id)
	}

	return result, nil
}

func (im *Importer) locate(task string) (string, bool) {
	if im.Library == nil {
		return "", false
	}

	t, ok := im.Library.Template(task)
	if !ok || t.Path == "" {
		return "", false
	}

	return t.Path, true
}

func (im *Importer) targetMissing(
	tpl *template.Template,
	task, owner string,
	batch *registry.Batch,
	logger *slog.Logger,
) (*ImportResult, error) {
	msg := fmt.Sprintf("template of %s not found; saving %s standalone", owner, task)
	logger.Warn("merge target missing", "task", task, "owner", owner)
	im.Diagnostics.AddWarning(diagnostic.CodeMergeTargetMissing, msg, task, "")

	return im.saveStandalone(tpl, task, batch)
}

func (im *Importer) saveStandalone(tpl *template.Template, task string, batch *registry.Batch) (*ImportResult, error) {
	ext := ".json"
	if tpl.Format == template.FormatYAML {
		ext = ".yaml"
	}

	path := filepath.Join(im.LocalDir, "survey-"+task+ext)

	if _, err := os.Stat(path); err == nil {
		return nil, diagnostic.UserInputf("template %s already exists", path)
	}

	if err := os.MkdirAll(im.LocalDir, dirPerm); err != nil {
		return nil, fmt.Errorf("creating library directory: %w", err)
	}

	if tpl.TaskName() == "" {
		tpl.SetTaskName(task)
	}

	tpl.SetItemCount(len(tpl.ItemIDs()))

	if err := template.Save(tpl, path); err != nil {
		return nil, err
	}

	batch.Commit()

	return &ImportResult{Task: task, Path: path, Registered: tpl.ItemIDs()}, nil
}
