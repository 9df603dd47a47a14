package validate

import (
	"fmt"

	"survey-curator/internal/common"
)

// Tolerance records one value accepted only by the tolerant Levels range.
type Tolerance struct {
	Task    string
	ItemID  string
	Subject string
	Value   string
	Min     float64
	Max     float64
}

func (t Tolerance) String() string {
	return fmt.Sprintf("%s %s=%s accepted within level range [%g, %g]", t.Subject, t.ItemID, t.Value, t.Min, t.Max)
}

// ToleranceReport groups tolerant acceptances by task.
type ToleranceReport struct {
	byTask map[string][]Tolerance
}

// NewToleranceReport returns an empty report.
func NewToleranceReport() *ToleranceReport {
	return &ToleranceReport{byTask: make(map[string][]Tolerance)}
}

// Add records an acceptance.
func (r *ToleranceReport) Add(t Tolerance) {
	r.byTask[t.Task] = append(r.byTask[t.Task], t)
}

// Tasks returns the tasks with at least one acceptance, sorted.
func (r *ToleranceReport) Tasks() []string {
	return common.SortedKeys(r.byTask)
}

// ForTask returns the acceptances of one task in recording order.
func (r *ToleranceReport) ForTask(task string) []Tolerance {
	return r.byTask[task]
}

// Len returns the total number of acceptances.
func (r *ToleranceReport) Len() int {
	n := 0
	for _, ts := range r.byTask {
		n += len(ts)
	}

	return n
}
