package validate

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"survey-curator/internal/diagnostic"
	"survey-curator/internal/template"
)

// minLevelKeys is the number of numeric Levels keys a tolerant range needs.
const minLevelKeys = 2

// ValueError reports an observed value outside an item's constraints.
type ValueError struct {
	ItemID  string
	Subject string
	Task    string
	Value   string
	Allowed []string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("task %s, subject %s, item %s: value %q not allowed (allowed: %s)",
		e.Task, e.Subject, e.ItemID, e.Value, strings.Join(e.Allowed, ", "))
}

func (e *ValueError) Unwrap() error { return diagnostic.ErrValueValidation }

// Verdict is the outcome of checking one value.
type Verdict int

const (
	// Rejected values fail validation.
	Rejected Verdict = iota
	// Accepted values match Levels, AllowedValues or MinValue..MaxValue,
	// or the item declares no Levels.
	Accepted
	// Tolerated values pass only through the tolerant Levels range.
	Tolerated
)

// Accepts checks a normalized value against def without side effects.
// MissingToken is never accepted by an item declaring Levels.
func Accepts(def *template.ItemDefinition, value string, mode Mode) Verdict {
	if !def.HasLevels() {
		return Accepted
	}

	if value == MissingToken {
		return Rejected
	}

	if def.Levels.Has(value) || allowed(def, value) {
		return Accepted
	}

	f, isNum := numeric(value)
	if !isNum {
		return Rejected
	}

	if def.MinValue != nil && def.MaxValue != nil && f >= *def.MinValue && f <= *def.MaxValue {
		return Accepted
	}

	if mode == Tolerant {
		if lo, hi, ok := levelRange(def); ok && f >= lo && f <= hi {
			return Tolerated
		}
	}

	return Rejected
}

func allowed(def *template.ItemDefinition, value string) bool {
	for _, av := range def.AllowedValues {
		if Normalize(av) == value {
			return true
		}
	}

	return false
}

// levelRange returns the span of the numeric Levels keys.
func levelRange(def *template.ItemDefinition) (float64, float64, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	n := 0

	for _, k := range def.Levels.Keys() {
		f, ok := numeric(k)
		if !ok {
			continue
		}

		lo, hi = math.Min(lo, f), math.Max(hi, f)
		n++
	}

	return lo, hi, n >= minLevelKeys
}

// AllowedSet describes the values def accepts, for error messages.
func AllowedSet(def *template.ItemDefinition) []string {
	var out []string

	if def.Levels != nil {
		out = append(out, def.Levels.Keys()...)
	}

	for _, av := range def.AllowedValues {
		out = append(out, Normalize(av))
	}

	if def.MinValue != nil && def.MaxValue != nil {
		out = append(out, fmt.Sprintf("[%g, %g]", *def.MinValue, *def.MaxValue))
	}

	return out
}

// Validator checks values for one run and collects its tolerance report
// and warn-bound warnings.
type Validator struct {
	Mode        Mode
	Report      *ToleranceReport
	Diagnostics diagnostic.Diagnostics

	logger *slog.Logger
}

// NewValidator creates a Validator.
func NewValidator(mode Mode, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Validator{Mode: mode, Report: NewToleranceReport(), logger: logger}
}

// Check validates a normalized value of itemID for subject. Missing values
// are skipped. A rejected value is returned as a *ValueError.
func (v *Validator) Check(task, subject, itemID string, def *template.ItemDefinition, value string) error {
	if def == nil || value == MissingToken {
		return nil
	}

	v.checkWarnBounds(task, subject, itemID, def, value)

	switch Accepts(def, value, v.Mode) {
	case Accepted:
		return nil
	case Tolerated:
		lo, hi, _ := levelRange(def)
		t := Tolerance{Task: task, ItemID: itemID, Subject: subject, Value: value, Min: lo, Max: hi}
		v.Report.Add(t)
		v.logger.Warn("value accepted by tolerant level range",
			"task", task, "subject", subject, "item", itemID, "value", value)
		v.Diagnostics.AddWarning(diagnostic.CodeRangeTolerance, t.String(), task, itemID)

		return nil
	default:
		return &ValueError{
			ItemID:  itemID,
			Subject: subject,
			Task:    task,
			Value:   value,
			Allowed: AllowedSet(def),
		}
	}
}

func (v *Validator) checkWarnBounds(task, subject, itemID string, def *template.ItemDefinition, value string) {
	if def.WarnMinValue == nil && def.WarnMaxValue == nil {
		return
	}

	f, ok := numeric(value)
	if !ok {
		return
	}

	var msg string

	switch {
	case def.WarnMinValue != nil && f < *def.WarnMinValue:
		msg = fmt.Sprintf("%s %s=%s below warn bound %g", subject, itemID, value, *def.WarnMinValue)
	case def.WarnMaxValue != nil && f > *def.WarnMaxValue:
		msg = fmt.Sprintf("%s %s=%s above warn bound %g", subject, itemID, value, *def.WarnMaxValue)
	default:
		return
	}

	v.logger.Debug("value outside warn bounds", "task", task, "subject", subject, "item", itemID, "value", value)
	v.Diagnostics.AddWarning(diagnostic.CodeWarnBounds, msg, task, itemID)
}
