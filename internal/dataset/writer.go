package dataset

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"path"

	"survey-curator/internal/template"
	"survey-curator/internal/validate"
)

// DefaultModality is the datatype folder and filename suffix of survey data.
const DefaultModality = "survey"

// ParticipantIDColumn is the first column of participants.tsv.
const ParticipantIDColumn = "participant_id"

// Description is the content of dataset_description.json.
type Description struct {
	Name        string        `json:"Name"`
	BIDSVersion string        `json:"BIDSVersion"`
	DatasetType string        `json:"DatasetType"`
	GeneratedBy []GeneratedBy `json:"GeneratedBy,omitempty"`
}

// GeneratedBy names the tool that produced a dataset.
type GeneratedBy struct {
	Name    string `json:"Name"`
	Version string `json:"Version,omitempty"`
}

// Record is one subject x session x task row.
type Record struct {
	Subject string
	Session string
	Task    string
	// Columns is the item order of the task template; Values matches it.
	Columns []string
	Values  []string
}

// ParticipantRow is one line of participants.tsv.
type ParticipantRow struct {
	Subject string
	Values  []string
}

// Participants is the content of participants.tsv and participants.json.
type Participants struct {
	Columns []string
	Rows    []ParticipantRow
	// Definitions describe columns in participants.json. Columns without
	// a definition are described by their name.
	Definitions map[string]*template.ItemDefinition
}

// Writer lays out an output dataset below one root directory.
type Writer struct {
	root     string
	modality string
	logger   *slog.Logger

	missing map[string]int
	written []string
}

// NewWriter creates a writer for root. Call PrepareRoot first.
func NewWriter(root, modality string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}

	if modality == "" {
		modality = DefaultModality
	}

	return &Writer{
		root:     root,
		modality: modality,
		logger:   logger,
		missing:  make(map[string]int),
	}
}

// TaskLabel returns the filename label of a task key.
func TaskLabel(task string) string {
	return toASCII(task)
}

// RecordPath returns the slash-separated path of a record below the root.
func (w *Writer) RecordPath(subject, session, task string) string {
	name := fmt.Sprintf("%s_%s_task-%s_%s.tsv", subject, session, TaskLabel(task), w.modality)
	return path.Join(subject, session, w.modality, name)
}

// SidecarPath returns the path of the shared metadata document of a task.
func (w *Writer) SidecarPath(task string) string {
	return fmt.Sprintf("task-%s_%s.json", TaskLabel(task), w.modality)
}

// WriteRecord writes one record and counts its missing cells.
func (w *Writer) WriteRecord(rec Record) (string, error) {
	if len(rec.Columns) != len(rec.Values) {
		return "", fmt.Errorf("record %s/%s/%s has %d values for %d columns",
			rec.Subject, rec.Session, rec.Task, len(rec.Values), len(rec.Columns))
	}

	for _, v := range rec.Values {
		if v == validate.MissingToken {
			w.missing[rec.Subject]++
		}
	}

	if _, ok := w.missing[rec.Subject]; !ok {
		w.missing[rec.Subject] = 0
	}

	p := w.RecordPath(rec.Subject, rec.Session, rec.Task)
	if err := w.write(p, tsv(rec.Columns, rec.Values)); err != nil {
		return "", err
	}

	w.logger.Debug("record written", "path", p)

	return p, nil
}

// WriteSidecar writes the task's shared metadata document. It applies to
// every subject of the task.
func (w *Writer) WriteSidecar(task string, tpl *template.Template) (string, error) {
	data, err := template.Encode(tpl, template.FormatJSON)
	if err != nil {
		return "", fmt.Errorf("encoding sidecar of %s: %w", task, err)
	}

	p := w.SidecarPath(task)

	return p, w.write(p, data)
}

// WriteDescription writes dataset_description.json.
func (w *Writer) WriteDescription(d Description) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}

	return w.write("dataset_description.json", append(data, '\n'))
}

// WriteParticipants writes participants.tsv and participants.json.
func (w *Writer) WriteParticipants(p Participants) error {
	header := append([]string{ParticipantIDColumn}, p.Columns...)

	rows := make([][]string, 0, len(p.Rows))
	for _, r := range p.Rows {
		rows = append(rows, append([]string{r.Subject}, r.Values...))
	}

	if err := w.write("participants.tsv", tsv(header, rows...)); err != nil {
		return err
	}

	defs := map[string]*template.ItemDefinition{
		ParticipantIDColumn: {Description: template.Plain("Unique participant identifier")},
	}

	for _, c := range p.Columns {
		if def, ok := p.Definitions[c]; ok && def != nil {
			defs[c] = def
			continue
		}

		defs[c] = &template.ItemDefinition{Description: template.Plain(c)}
	}

	data, err := json.MarshalIndent(defs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding participants.json: %w", err)
	}

	return w.write("participants.json", append(data, '\n'))
}

// MissingCells returns the number of missing cells written per subject.
func (w *Writer) MissingCells() map[string]int {
	return maps.Clone(w.missing)
}

// Written returns the paths written so far, in write order.
func (w *Writer) Written() []string {
	return append([]string(nil), w.written...)
}

func (w *Writer) write(p string, content []byte) error {
	if err := WriteFiles([]File{{Path: p, Content: content}}, w.root); err != nil {
		return err
	}

	w.written = append(w.written, p)

	return nil
}
