package convert

import (
	"log/slog"

	"survey-curator/internal/dataset"
	"survey-curator/internal/mapping"
	"survey-curator/internal/validate"
)

// Options holds configuration for one conversion run.
type Options struct {
	// Modality is the datatype folder and filename suffix.
	Modality string
	// IDColumn and SessionColumn override column auto-detection.
	IDColumn      string
	SessionColumn string
	// DefaultSession labels rows without a session.
	DefaultSession string
	// Unmapped selects what happens to columns matching nothing.
	Unmapped mapping.Policy
	// Mode is the value validation strictness.
	Mode validate.Mode
	// Overrides maps raw column names to item ids.
	Overrides map[string]string
	// Ignore lists raw columns excluded from mapping.
	Ignore []string
	// AliasFile is an optional external canonical/alias file.
	AliasFile string
	// Language projects sidecars to one language when set.
	Language  string
	Fallbacks []string
	// Tasks restricts the run to these library tasks when set.
	Tasks []string
	// Version restricts records to items applicable to one instrument version.
	Version string
	// Overwrite allows writing into a non-empty output directory.
	Overwrite bool
	// DatasetName goes into dataset_description.json.
	DatasetName string
	Logger      *slog.Logger
}

// DefaultOptions returns the default conversion options.
func DefaultOptions() Options {
	return Options{
		Modality:       dataset.DefaultModality,
		DefaultSession: dataset.DefaultSession,
		Unmapped:       mapping.PolicyWarn,
		Mode:           validate.DefaultMode(validate.SourceSpreadsheet),
		Fallbacks:      []string{"en"},
		DatasetName:    "survey dataset",
	}
}
