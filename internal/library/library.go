package library

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"survey-curator/internal/alias"
	"survey-curator/internal/common"
	"survey-curator/internal/diagnostic"
	"survey-curator/internal/template"
)

// filenamePrefixes are stripped from filenames when deriving task keys.
var filenamePrefixes = []string{"survey-", "biometrics-", "task-"}

// Options configures library loading.
type Options struct {
	// Patterns are doublestar globs relative to each directory.
	Patterns []string
	// Aliases is an optional external alias map applied to every template.
	Aliases *alias.Map
	Logger  *slog.Logger
}

// Library is the indexed, alias-free view of one or more template directories.
type Library struct {
	templates  map[string]*template.Template
	itemToTask map[string]string
	aliases    *alias.Map
	// layer is the position in the directory list each task was loaded from.
	layer map[string]int
	// Participants is the participant-only template, if the library has one.
	Participants *template.Template

	Diagnostics diagnostic.Diagnostics
}

// DuplicateItemsError lists every item id owned by more than one task.
type DuplicateItemsError struct {
	Items map[string][]string
}

func (e *DuplicateItemsError) Error() string {
	parts := make([]string, 0, len(e.Items))
	for _, id := range common.SortedKeys(e.Items) {
		parts = append(parts, fmt.Sprintf("%s (%s)", id, strings.Join(e.Items[id], ", ")))
	}

	return "duplicate item ids across templates: " + strings.Join(parts, "; ")
}

func (e *DuplicateItemsError) Unwrap() error { return diagnostic.ErrLibraryIntegrity }

// TaskKey returns the lower-cased task key of a template.
func TaskKey(t *template.Template) string {
	if name := strings.TrimSpace(t.TaskName()); name != "" {
		return strings.ToLower(name)
	}

	base := filepath.Base(t.Path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	lower := strings.ToLower(base)
	for _, p := range filenamePrefixes {
		if strings.HasPrefix(lower, p) && len(lower) > len(p) {
			return lower[len(p):]
		}
	}

	return lower
}

// IsParticipants reports whether a template describes participant columns only.
func IsParticipants(t *template.Template) bool {
	return TaskKey(t) == template.ParticipantsTask
}

// Load scans dirs in order; a task found in a later directory shadows the
// same task from an earlier one. An item id claimed by tasks of different
// directories stays with the task of the later directory and is removed
// from the earlier one. The same id in two tasks of one directory is a
// duplicate.
func Load(dirs []string, opts Options) (*Library, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	lib := &Library{
		templates:  make(map[string]*template.Template),
		itemToTask: make(map[string]string),
		aliases:    alias.New(),
		layer:      make(map[string]int),
	}

	for i, dir := range dirs {
		if dir == "" {
			continue
		}

		if err := lib.loadDir(dir, i, opts.Patterns, logger); err != nil {
			return nil, err
		}
	}

	if err := lib.aliases.Merge(opts.Aliases); err != nil {
		return nil, err
	}

	for _, task := range lib.Tasks() {
		m, err := alias.FromTemplate(lib.templates[task])
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", task, err)
		}

		if err := lib.aliases.Merge(m); err != nil {
			return nil, fmt.Errorf("task %s: %w", task, err)
		}
	}

	for _, task := range lib.Tasks() {
		res := alias.Canonicalize(lib.templates[task], opts.Aliases)
		for from, to := range res.Renamed {
			logger.Debug("renamed alias item", "task", task, "alias", from, "canonical", to)
		}

		for _, id := range res.Dropped {
			logger.Debug("dropped alias item", "task", task, "alias", id)
		}
	}

	lib.shadowItems(logger)

	if err := lib.index(); err != nil {
		return nil, err
	}

	logger.Info("template library loaded",
		"dirs", dirs,
		"tasks", len(lib.templates),
		"items", len(lib.itemToTask))

	return lib, nil
}

func (l *Library) loadDir(dir string, layer int, patterns []string, logger *slog.Logger) error {
	files, err := Scan(dir, patterns)
	if err != nil {
		return err
	}

	fromDir := make(map[string]string)

	for _, path := range files {
		tpl, err := template.Load(path)
		if err != nil {
			return diagnostic.Integrityf("%v", err)
		}

		if IsParticipants(tpl) {
			l.Participants = tpl
			continue
		}

		key := TaskKey(tpl)
		if prev, ok := fromDir[key]; ok {
			return diagnostic.Integrityf("task %q declared by both %s and %s", key, prev, path)
		}

		fromDir[key] = path

		if prev, ok := l.templates[key]; ok {
			logger.Debug("template shadowed", "task", key, "by", path, "shadowed", prev.Path)
		}

		l.templates[key] = tpl
		l.layer[key] = layer
	}

	return nil
}

// shadowItems removes from each task the items also owned by a task of a
// later directory.
func (l *Library) shadowItems(logger *slog.Logger) {
	owner := make(map[string]string)

	for _, task := range l.Tasks() {
		for _, id := range l.templates[task].ItemIDs() {
			prev, ok := owner[id]
			if !ok || l.layer[task] > l.layer[prev] {
				owner[id] = task
			}
		}
	}

	for _, task := range l.Tasks() {
		tpl := l.templates[task]

		for _, id := range tpl.ItemIDs() {
			winner := owner[id]
			if winner == task || l.layer[winner] == l.layer[task] {
				continue
			}

			tpl.DeleteItem(id)
			logger.Debug("item shadowed by later library", "item", id, "task", task, "by", winner)
			l.Diagnostics.AddInfo(diagnostic.CodeShadowedOfficial,
				fmt.Sprintf("task %s shadows the item of task %s", winner, task), winner, id)
		}
	}
}

func (l *Library) index() error {
	dups := make(map[string][]string)

	record := func(id, task string) {
		prev, ok := l.itemToTask[id]
		if !ok {
			l.itemToTask[id] = task
			return
		}

		if prev == task {
			return
		}

		if len(dups[id]) == 0 {
			dups[id] = []string{prev}
		}

		if !slices.Contains(dups[id], task) {
			dups[id] = append(dups[id], task)
		}
	}

	for _, task := range l.Tasks() {
		tpl := l.templates[task]

		for _, id := range tpl.ItemIDs() {
			record(id, task)

			for _, a := range tpl.Items[id].Aliases {
				record(a, task)
			}

			for _, a := range l.aliases.Aliases(id) {
				record(a, task)
			}
		}
	}

	if len(dups) > 0 {
		return &DuplicateItemsError{Items: dups}
	}

	return nil
}

// Tasks returns the task keys in sorted order.
func (l *Library) Tasks() []string {
	return common.SortedKeys(l.templates)
}

// Template returns the template of a task.
func (l *Library) Template(task string) (*template.Template, bool) {
	t, ok := l.templates[task]
	return t, ok
}

// TaskFor returns the task owning an item id or alias.
func (l *Library) TaskFor(id string) (string, bool) {
	task, ok := l.itemToTask[id]
	return task, ok
}

// Canonical resolves an alias to its canonical item id.
func (l *Library) Canonical(id string) string {
	return l.aliases.Canonical(id)
}

// Aliases returns the library-wide alias map.
func (l *Library) Aliases() *alias.Map {
	return l.aliases
}

// Index returns a copy of the item/alias-to-task index.
func (l *Library) Index() map[string]string {
	out := make(map[string]string, len(l.itemToTask))
	for k, v := range l.itemToTask {
		out[k] = v
	}

	return out
}

// ParticipantColumns returns the column names declared by the participants template.
func (l *Library) ParticipantColumns() []string {
	if l.Participants == nil {
		return nil
	}

	cols := l.Participants.ItemIDs()
	sort.Strings(cols)

	return cols
}
