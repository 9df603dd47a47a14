package merge

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"

	"survey-curator/internal/common"
	"survey-curator/internal/diagnostic"
	"survey-curator/internal/registry"
	"survey-curator/internal/template"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// ErrTargetMissing is returned when the template to merge into does not exist.
var ErrTargetMissing = errors.New("merge target template not found")

// Report describes one completed merge.
type Report struct {
	Task     string
	Path     string
	Versions VersionNames
	// Overlap lists the items both versions share, in incoming order.
	Overlap []string
	// Added lists the items copied in from the new version.
	Added []string
	// Restricted lists existing items not part of the new version.
	Restricted []string
	ItemCount  int
}

// Merger folds version variants into templates on disk.
type Merger struct {
	Namer  VersionNamer
	Logger *slog.Logger
}

// New creates a Merger. A nil namer makes every merge fail with
// diagnostic.ErrNeedsMergeStrategy.
func New(namer VersionNamer, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}

	return &Merger{Namer: namer, Logger: logger}
}

// Merge folds items into the template at path and overwrites it.
func (m *Merger) Merge(path string, items []registry.Item, hint string) (report *Report, err error) {
	if m.Namer == nil {
		return nil, &diagnostic.Error{
			Kind: diagnostic.ErrNeedsMergeStrategy,
			Msg:  fmt.Sprintf("%d items collide with %s", len(items), path),
		}
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTargetMissing, path)
		}

		return nil, err
	}

	lock, err := acquireLock(path)
	if err != nil {
		return nil, err
	}

	defer func() {
		if rerr := lock.release(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()

	tpl, err := template.Load(path)
	if err != nil {
		return nil, err
	}

	names, err := m.Namer(tpl, items, hint)
	if err != nil {
		return nil, fmt.Errorf("naming versions for %s: %w", path, err)
	}

	if err := names.Validate(); err != nil {
		return nil, err
	}

	report = Fold(tpl, items, names)
	report.Path = path

	if err := template.Save(tpl, path); err != nil {
		return nil, err
	}

	m.Logger.Info("merged version variant",
		"path", path,
		"existing_version", names.Existing,
		"new_version", names.New,
		"overlap", len(report.Overlap),
		"added", len(report.Added),
		"items", report.ItemCount)

	return report, nil
}

// Fold merges items into tpl in memory as version names.New. Existing
// items without ApplicableVersions applied to every version tpl declared
// before the merge, so they are pinned to those versions plus
// names.Existing.
func Fold(tpl *template.Template, items []registry.Item, names VersionNames) *Report {
	report := &Report{Task: tpl.TaskName(), Versions: names}

	prior := common.AppendUnique(tpl.Versions(), names.Existing)

	incoming := make(map[string]bool, len(items))
	for _, it := range items {
		incoming[it.ID] = true
	}

	for _, id := range tpl.ItemIDs() {
		if incoming[id] {
			continue
		}

		def := tpl.Items[id]
		if def != nil && len(def.ApplicableVersions) == 0 {
			def.ApplicableVersions = slices.Clone(prior)
			report.Restricted = append(report.Restricted, id)
		}
	}

	for _, it := range items {
		if def, ok := tpl.Item(it.ID); ok {
			if def == nil {
				def = &template.ItemDefinition{}
				tpl.SetItem(it.ID, def)
			}

			if len(def.ApplicableVersions) == 0 {
				def.ApplicableVersions = slices.Clone(prior)
			}

			def.ApplicableVersions = common.AppendUnique(def.ApplicableVersions, names.New)
			report.Overlap = append(report.Overlap, it.ID)

			continue
		}

		def := &template.ItemDefinition{}
		if it.Def != nil {
			def = it.Def.Clone()
		}

		def.ApplicableVersions = []string{names.New}
		tpl.SetItem(it.ID, def)
		report.Added = append(report.Added, it.ID)
	}

	tpl.SetVersions(common.AppendUnique(tpl.Versions(), names.Existing, names.New))

	report.ItemCount = len(tpl.ItemIDs())
	tpl.SetItemCount(report.ItemCount)

	return report
}
