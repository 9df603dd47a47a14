package mapping

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"survey-curator/internal/common"
	"survey-curator/internal/diagnostic"
	"survey-curator/internal/match"
)

// Index is the library view the mapper needs. *library.Library satisfies it.
type Index interface {
	TaskFor(id string) (string, bool)
	Canonical(id string) string
	Index() map[string]string
	ParticipantColumns() []string
}

// Options configures one mapping run.
type Options struct {
	// IDColumn names the subject id column. Empty means auto-detect.
	IDColumn string
	// SessionColumn names the session column. Empty means auto-detect.
	SessionColumn string
	// Overrides maps raw column names to item ids ahead of the library.
	Overrides map[string]string
	// Ignore lists raw columns excluded from mapping and reporting.
	Ignore   []string
	Unmapped Policy
	Logger   *slog.Logger
}

// Column is the resolved role of one input column.
type Column struct {
	Name string
	Kind Kind
	// Task and ItemID are set for KindItem. ItemID is canonical.
	Task   string
	ItemID string
}

// Mapping is the column partition of one input table.
type Mapping struct {
	IDColumn      string
	SessionColumn string
	// Columns holds every input column in input order.
	Columns []Column

	Diagnostics diagnostic.Diagnostics
}

// Map resolves every column of an input table against idx.
func Map(columns []string, idx Index, opts Options) (*Mapping, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	policy := opts.Unmapped
	if policy == "" {
		policy = PolicyWarn
	}

	m := &Mapping{}

	var err error

	m.IDColumn, err = resolveColumn(columns, opts.IDColumn, IDCandidates, "id")
	if err != nil {
		return nil, err
	}

	if m.IDColumn == "" {
		return nil, diagnostic.UserInputf("no id column found; expected one of %s or an explicit id column",
			strings.Join(IDCandidates, ", "))
	}

	m.SessionColumn, err = resolveColumn(columns, opts.SessionColumn, SessionCandidates, "session")
	if err != nil {
		return nil, err
	}

	participants := common.AppendUnique(idx.ParticipantColumns(), DefaultParticipantColumns...)
	claimed := make(map[string]string)

	for _, name := range columns {
		col := Column{Name: name}

		switch {
		case name == m.IDColumn:
			col.Kind = KindID
		case m.SessionColumn != "" && name == m.SessionColumn:
			col.Kind = KindSession
		default:
			col, err = resolve(name, idx, opts, participants)
			if err != nil {
				return nil, err
			}
		}

		if col.Kind == KindItem {
			if prev, ok := claimed[col.ItemID]; ok {
				return nil, diagnostic.UserInputf("columns %q and %q both map to item %s", prev, name, col.ItemID)
			}

			claimed[col.ItemID] = name

			logger.Debug("column mapped", "column", name, "task", col.Task, "item", col.ItemID)
		}

		m.Columns = append(m.Columns, col)
	}

	if err := m.applyPolicy(policy, idx, logger); err != nil {
		return nil, err
	}

	return m, nil
}

// resolveColumn returns the explicit column if present, else the first
// candidate found. An explicit column missing from the input is an error.
func resolveColumn(columns []string, explicit string, candidates []string, role string) (string, error) {
	if explicit == "" {
		col, _ := findColumn(columns, candidates)
		return col, nil
	}

	if slices.Contains(columns, explicit) {
		return explicit, nil
	}

	if col, ok := findColumn(columns, []string{explicit}); ok {
		return col, nil
	}

	return "", diagnostic.UserInputf("%s column %q not found in input columns", role, explicit)
}

func resolve(name string, idx Index, opts Options, participants []string) (Column, error) {
	col := Column{Name: name}

	if target, ok := opts.Overrides[name]; ok {
		task, found := idx.TaskFor(target)
		if !found {
			return col, diagnostic.UserInputf("column override %s -> %s: no library item %s", name, target, target)
		}

		col.Kind, col.Task, col.ItemID = KindItem, task, idx.Canonical(target)

		return col, nil
	}

	if slices.Contains(opts.Ignore, name) {
		col.Kind = KindIgnored
		return col, nil
	}

	if task, ok := idx.TaskFor(name); ok {
		col.Kind, col.Task, col.ItemID = KindItem, task, idx.Canonical(name)
		return col, nil
	}

	if _, ok := findColumn([]string{name}, participants); ok {
		col.Kind = KindParticipant
		return col, nil
	}

	if IsBookkeeping(name) {
		col.Kind = KindIgnored
		return col, nil
	}

	col.Kind = KindUnmapped

	return col, nil
}

func (m *Mapping) applyPolicy(policy Policy, idx Index, logger *slog.Logger) error {
	unmapped := m.Unmapped()
	if len(unmapped) == 0 {
		return nil
	}

	index := idx.Index()

	switch policy {
	case PolicyIgnore:
		logger.Debug("ignoring unmapped columns", "columns", unmapped)
		return nil
	case PolicyError:
		parts := make([]string, 0, len(unmapped))
		for _, name := range unmapped {
			if hints := match.Suggest(name, index); len(hints) > 0 {
				name = fmt.Sprintf("%s (did you mean %s?)", name, strings.Join(hints, ", "))
			}

			parts = append(parts, name)
		}

		return diagnostic.UserInputf("unmapped columns: %s", strings.Join(parts, "; "))
	default:
		for _, name := range unmapped {
			hints := match.Suggest(name, index)
			logger.Warn("unmapped column", "column", name, "suggestions", hints)
			m.Diagnostics.AddSuggestedWarning(diagnostic.CodeUnmappedColumn,
				"column matches no library item or participant field", "", name, hints)
		}

		return nil
	}
}

// Column returns the resolution of one input column.
func (m *Mapping) Column(name string) (Column, bool) {
	for _, c := range m.Columns {
		if c.Name == name {
			return c, true
		}
	}

	return Column{}, false
}

func (m *Mapping) names(kind Kind) []string {
	var out []string

	for _, c := range m.Columns {
		if c.Kind == kind {
			out = append(out, c.Name)
		}
	}

	return out
}

// Unmapped returns the unmapped columns in input order.
func (m *Mapping) Unmapped() []string { return m.names(KindUnmapped) }

// Participants returns the participant columns in input order.
func (m *Mapping) Participants() []string { return m.names(KindParticipant) }

// Ignored returns the ignored columns in input order.
func (m *Mapping) Ignored() []string { return m.names(KindIgnored) }

// Tasks returns the tasks with at least one mapped column, sorted.
func (m *Mapping) Tasks() []string {
	seen := make(map[string]bool)

	for _, c := range m.Columns {
		if c.Kind == KindItem {
			seen[c.Task] = true
		}
	}

	return common.SortedKeys(seen)
}

// ItemColumns returns item id to input column for one task.
func (m *Mapping) ItemColumns(task string) map[string]string {
	out := make(map[string]string)

	for _, c := range m.Columns {
		if c.Kind == KindItem && c.Task == task {
			out[c.ItemID] = c.Name
		}
	}

	return out
}
