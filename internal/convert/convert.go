// Package convert runs one conversion of an input table against a
// template library into an output dataset.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"survey-curator/internal/alias"
	"survey-curator/internal/dataset"
	"survey-curator/internal/diagnostic"
	"survey-curator/internal/i18n"
	"survey-curator/internal/library"
	"survey-curator/internal/mapping"
	"survey-curator/internal/table"
	"survey-curator/internal/template"
	"survey-curator/internal/validate"
)

// Converter converts tables against one loaded library.
type Converter struct {
	lib  *library.Library
	opts Options
}

// New creates a Converter.
func New(lib *library.Library, opts Options) *Converter {
	return &Converter{lib: lib, opts: opts}
}

// taskPlan is the output layout of one included task.
type taskPlan struct {
	task    string
	tpl     *template.Template
	items   []string
	sources []int
}

// subjectRow is a row with its normalized ids.
type subjectRow struct {
	row     int
	subject string
	session string
}

// Run converts tbl into outDir. Library and mapping problems abort before
// anything is written. A value validation error aborts the row it occurs
// in; records written before it stay on disk.
func (c *Converter) Run(ctx context.Context, tbl *table.Table, outDir string) (*Result, error) {
	opts := c.opts

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	res := &Result{RunID: uuid.NewString(), MissingItems: make(map[string]int)}
	logger = logger.With("run_id", res.RunID)

	aliases, err := c.aliases()
	if err != nil {
		return nil, err
	}

	tbl = tbl.Clone()

	app := aliases.Apply(tbl)
	for _, co := range app.Coalesced {
		logger.Debug("coalesced alias columns", "canonical", co.Canonical, "sources", co.Sources)
		res.Diagnostics.AddInfo(diagnostic.CodeAliasCoalesced,
			fmt.Sprintf("coalesced %s into %s", strings.Join(co.Sources, ", "), co.Canonical), "", co.Canonical)
	}

	m, err := mapping.Map(tbl.Columns, c.lib, mapping.Options{
		IDColumn:      opts.IDColumn,
		SessionColumn: opts.SessionColumn,
		Overrides:     opts.Overrides,
		Ignore:        opts.Ignore,
		Unmapped:      opts.Unmapped,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	res.Diagnostics.Merge(m.Diagnostics)
	res.IDColumn, res.SessionColumn = m.IDColumn, m.SessionColumn
	res.Unmapped = m.Unmapped()
	res.Tasks, err = c.selectTasks(m.Tasks())
	if err != nil {
		return nil, err
	}

	if len(res.Tasks) == 0 {
		return nil, diagnostic.UserInputf("no input column matches a library item")
	}

	plans, err := c.plan(tbl, m, res, logger)
	if err != nil {
		return nil, err
	}

	rows, err := c.subjects(tbl, m)
	if err != nil {
		return nil, err
	}

	if err := dataset.PrepareRoot(outDir, opts.Overwrite); err != nil {
		return nil, err
	}

	w := dataset.NewWriter(outDir, opts.Modality, logger)
	v := validate.NewValidator(opts.Mode, logger)
	res.Tolerance = v.Report

	defer func() {
		res.Files = w.Written()
		res.MissingCells = w.MissingCells()
		res.Diagnostics.Merge(v.Diagnostics)
	}()

	if err := c.writeShared(w, plans); err != nil {
		return res, err
	}

	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("conversion cancelled: %w", err)
		}

		if err := c.writeRow(w, v, tbl, plans, r, logger); err != nil {
			return res, err
		}
	}

	if err := c.writeParticipants(w, tbl, m, rows); err != nil {
		return res, err
	}

	for _, r := range rows {
		res.Subjects = append(res.Subjects, r.subject)
	}

	logger.Info("conversion finished",
		"tasks", len(plans),
		"rows", len(rows),
		"unmapped", len(res.Unmapped),
		"tolerated", v.Report.Len())

	return res, nil
}

// selectTasks narrows the mapped tasks to the requested ones.
func (c *Converter) selectTasks(mapped []string) ([]string, error) {
	if len(c.opts.Tasks) == 0 {
		return mapped, nil
	}

	var out []string

	for _, want := range c.opts.Tasks {
		key := strings.ToLower(want)
		if _, ok := c.lib.Template(key); !ok {
			return nil, diagnostic.UserInputf("unknown survey %q; library has %s", want, strings.Join(c.lib.Tasks(), ", "))
		}

		if slices.Contains(mapped, key) && !slices.Contains(out, key) {
			out = append(out, key)
		}
	}

	slices.Sort(out)

	return out, nil
}

// aliases combines the library aliases with the external alias file.
func (c *Converter) aliases() (*alias.Map, error) {
	out := alias.New()
	if err := out.Merge(c.lib.Aliases()); err != nil {
		return nil, err
	}

	if c.opts.AliasFile == "" {
		return out, nil
	}

	ext, err := alias.LoadFile(c.opts.AliasFile)
	if err != nil {
		return nil, err
	}

	if err := out.Merge(ext); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Converter) plan(tbl *table.Table, m *mapping.Mapping, res *Result, logger *slog.Logger) ([]taskPlan, error) {
	plans := make([]taskPlan, 0, len(res.Tasks))

	for _, task := range res.Tasks {
		tpl, ok := c.lib.Template(task)
		if !ok {
			return nil, diagnostic.Integrityf("task %s indexed but has no template", task)
		}

		cols := m.ItemColumns(task)
		p := taskPlan{task: task, tpl: tpl}
		missing := 0

		for _, id := range tpl.ItemIDs() {
			if !tpl.Items[id].AppliesTo(c.opts.Version) {
				continue
			}

			src := -1
			if col, ok := cols[id]; ok {
				src = tbl.Index(col)
			} else {
				missing++
			}

			p.items = append(p.items, id)
			p.sources = append(p.sources, src)
		}

		if len(p.items) == 0 {
			return nil, diagnostic.UserInputf("task %s has no items for version %q", task, c.opts.Version)
		}

		if missing > 0 {
			res.MissingItems[task] = missing
			logger.Warn("task items missing from input", "task", task, "missing", missing, "items", len(p.items))
			res.Diagnostics.AddWarning(diagnostic.CodeMissingItems,
				fmt.Sprintf("%d of %d items not in input", missing, len(p.items)), task, "")
		}

		plans = append(plans, p)
	}

	return plans, nil
}

// subjects normalizes the ids of every row and rejects duplicates: a
// subject/session pair seen twice, or one subject label reached from two
// different raw ids.
func (c *Converter) subjects(tbl *table.Table, m *mapping.Mapping) ([]subjectRow, error) {
	rows := make([]subjectRow, 0, tbl.Len())
	seen := make(map[string]int)
	rawIDs := make(map[string]string)

	for i := range tbl.Rows {
		rawID := tbl.Value(i, m.IDColumn)

		subject, err := dataset.SubjectID(rawID)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		id := strings.TrimSpace(validate.Normalize(rawID))
		if prev, ok := rawIDs[subject]; ok && prev != id {
			return nil, diagnostic.UserInputf("subject ids %q and %q both normalize to %s", prev, id, subject)
		}

		rawIDs[subject] = id

		var raw any
		if m.SessionColumn != "" {
			raw = tbl.Value(i, m.SessionColumn)
		}

		session, err := dataset.SessionID(raw, c.opts.DefaultSession)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		key := subject + "/" + session
		if prev, ok := seen[key]; ok {
			return nil, diagnostic.UserInputf("rows %d and %d both normalize to %s %s", prev+1, i+1, subject, session)
		}

		seen[key] = i
		rows = append(rows, subjectRow{row: i, subject: subject, session: session})
	}

	return rows, nil
}

func (c *Converter) writeShared(w *dataset.Writer, plans []taskPlan) error {
	err := w.WriteDescription(dataset.Description{
		Name:        c.opts.DatasetName,
		BIDSVersion: "1.8.0",
		DatasetType: "raw",
		GeneratedBy: []dataset.GeneratedBy{{Name: "survey-curator"}},
	})
	if err != nil {
		return err
	}

	for _, p := range plans {
		sidecar := p.tpl
		if c.opts.Language != "" {
			if sidecar, err = i18n.Compile(p.tpl, c.opts.Language, c.opts.Fallbacks); err != nil {
				return fmt.Errorf("localizing %s: %w", p.task, err)
			}
		}

		if _, err := w.WriteSidecar(p.task, sidecar); err != nil {
			return err
		}
	}

	return nil
}

// writeRow validates every task of one row before writing any of them.
func (c *Converter) writeRow(
	w *dataset.Writer,
	v *validate.Validator,
	tbl *table.Table,
	plans []taskPlan,
	r subjectRow,
	logger *slog.Logger,
) error {
	records := make([]dataset.Record, 0, len(plans))

	for _, p := range plans {
		values := make([]string, len(p.items))
		observed := false

		for i, id := range p.items {
			var raw any
			if p.sources[i] >= 0 {
				raw = tbl.Rows[r.row][p.sources[i]]
			}

			values[i] = validate.Normalize(raw)
			if values[i] == validate.MissingToken {
				continue
			}

			observed = true

			if err := v.Check(p.task, r.subject, id, p.tpl.Items[id], values[i]); err != nil {
				return err
			}
		}

		if !observed {
			logger.Debug("no observations for task", "task", p.task, "subject", r.subject, "session", r.session)
			continue
		}

		records = append(records, dataset.Record{
			Subject: r.subject,
			Session: r.session,
			Task:    p.task,
			Columns: p.items,
			Values:  values,
		})
	}

	for _, rec := range records {
		if _, err := w.WriteRecord(rec); err != nil {
			return err
		}
	}

	return nil
}

func (c *Converter) writeParticipants(w *dataset.Writer, tbl *table.Table, m *mapping.Mapping, rows []subjectRow) error {
	cols := m.Participants()

	defs := make(map[string]*template.ItemDefinition)
	if pt := c.lib.Participants; pt != nil {
		for _, col := range cols {
			for _, id := range pt.ItemIDs() {
				if strings.EqualFold(id, col) {
					defs[col] = pt.Items[id]
				}
			}
		}
	}

	out := dataset.Participants{Columns: cols, Definitions: defs}
	seen := make(map[string]bool)

	for _, r := range rows {
		if seen[r.subject] {
			continue
		}

		seen[r.subject] = true

		values := make([]string, len(cols))
		for i, col := range cols {
			values[i] = validate.Normalize(tbl.Value(r.row, col))
		}

		out.Rows = append(out.Rows, dataset.ParticipantRow{Subject: r.subject, Values: values})
	}

	return w.WriteParticipants(out)
}
