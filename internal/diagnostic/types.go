package diagnostic

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"survey-curator/internal/common"
)

// Diagnostic codes recorded during a run.
const (
	CodeUnmappedColumn     = "unmapped_column"
	CodeMissingItems       = "missing_items"
	CodeRangeTolerance     = "range_tolerance"
	CodeWarnBounds         = "warn_bounds"
	CodeMergeTargetMissing = "merge_target_missing"
	CodeShadowedOfficial   = "shadowed_official"
	CodeUnmergedVariant    = "unmerged_variant"
	CodeAliasCoalesced     = "alias_coalesced"
)

// Diagnostics holds all diagnostic information from a run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Task identifies which instrument this relates to (if any).
	Task string
	// Item identifies which item or column this relates to (if any).
	Item string
	// Suggestions are potential fixes or alternatives.
	Suggestions []string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, task, item string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity: DiagnosticError,
		Code:     code,
		Message:  message,
		Task:     task,
		Item:     item,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, task, item string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: DiagnosticWarning,
		Code:     code,
		Message:  message,
		Task:     task,
		Item:     item,
	})
}

// AddSuggestedWarning adds a warning diagnostic carrying suggestions.
func (d *Diagnostics) AddSuggestedWarning(code, message, task, item string, suggestions []string) {
	d.AddWarning(code, message, task, item)
	d.Warnings[len(d.Warnings)-1].Suggestions = suggestions
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, task, item string) {
	d.Infos = append(d.Infos, Diagnostic{
		Severity: DiagnosticInfo,
		Code:     code,
		Message:  message,
		Task:     task,
		Item:     item,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// WarningsWithCode returns the warnings carrying the given code.
func (d *Diagnostics) WarningsWithCode(code string) []Diagnostic {
	var out []Diagnostic

	for _, w := range d.Warnings {
		if w.Code == code {
			out = append(out, w)
		}
	}

	return out
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// Log writes every warning and error to the logger.
func (d *Diagnostics) Log(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	for _, w := range d.Warnings {
		logger.Warn(w.Message, "code", w.Code, "task", w.Task, "item", w.Item)
	}

	for _, e := range d.Errors {
		logger.Error(e.Message, "code", e.Code, "task", e.Task, "item", e.Item)
	}
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Task != "" {
		prefix = append(prefix, "["+d.Task+"]")
	}

	if d.Item != "" {
		prefix = append(prefix, d.Item)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += " (did you mean: " + strings.Join(d.Suggestions, ", ") + "?)"
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
