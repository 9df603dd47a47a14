package convert

import (
	"survey-curator/internal/diagnostic"
	"survey-curator/internal/validate"
)

// Result summarizes one conversion run.
type Result struct {
	RunID string
	// Tasks are the included tasks, sorted.
	Tasks    []string
	Unmapped []string
	// MissingItems counts, per task, template items absent from the input.
	MissingItems  map[string]int
	IDColumn      string
	SessionColumn string
	// Subjects are the normalized subject ids in input order.
	Subjects []string
	// MissingCells counts missing cells written per subject.
	MissingCells map[string]int
	// Files are the written paths relative to the output directory.
	Files     []string
	Tolerance *validate.ToleranceReport

	Diagnostics diagnostic.Diagnostics
}
