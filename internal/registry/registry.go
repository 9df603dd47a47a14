package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"survey-curator/internal/diagnostic"
	"survey-curator/internal/template"
)

// maxDescription bounds the short description stored per entry.
const maxDescription = 80

// Registry is the item id to task index of one run.
type Registry struct {
	entries map[string]*Entry
	logger  *slog.Logger

	// Diagnostics collects shadowing notices and unmerged variants.
	Diagnostics diagnostic.Diagnostics
}

// New returns an empty registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		entries: make(map[string]*Entry),
		logger:  logger,
	}
}

// Lookup returns the entry for an id or alias.
func (r *Registry) Lookup(id string) (Entry, bool) {
	e, ok := r.entries[id]
	if !ok {
		return Entry{}, false
	}

	return *e, true
}

// Entries returns all entries sorted by id.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, *e)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })

	return out
}

// Len returns the number of registered ids, aliases included.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Register claims id (and every alias def declares) for task.
//
// A collision classified as duplicate is returned as a *CollisionError.
// A version_candidate collision is not an error: the result carries
// NeedsMerge and nothing is registered. A local registration silently
// replaces an official one; an official registration never replaces a
// local one.
func (r *Registry) Register(id, task string, tier Tier, def *template.ItemDefinition) (Result, error) {
	entries := newEntries(id, task, tier, def)

	for _, e := range entries {
		c := r.conflict(e)
		if c == nil {
			continue
		}

		if c.Classification == Duplicate {
			return Result{}, c
		}

		return Result{Outcome: NeedsMerge, Collision: c}, nil
	}

	r.commit(entries)

	return Result{Outcome: Registered}, nil
}

// conflict returns the collision e would cause, or nil.
func (r *Registry) conflict(e *Entry) *CollisionError {
	prev, ok := r.entries[e.ItemID]
	if !ok || prev.Task == e.Task {
		return nil
	}

	if prev.Tier == TierOfficial && e.Tier == TierLocal {
		return nil
	}

	if prev.Tier == TierLocal && e.Tier == TierOfficial {
		return nil
	}

	c := &CollisionError{
		ItemID:       prev.canonicalID(),
		ExistingTask: prev.Task,
		ExistingTier: prev.Tier,
		IncomingTask: e.Task,
	}

	if e.ItemID != c.ItemID {
		c.Via = e.ItemID
	}

	c.Classification = Classify(c.ItemID, prev.Task, e.Task)

	return c
}

func (r *Registry) commit(entries []*Entry) {
	for _, e := range entries {
		prev, ok := r.entries[e.ItemID]

		switch {
		case ok && prev.Tier == TierLocal && e.Tier == TierOfficial:
			continue
		case ok && prev.Tier == TierOfficial && e.Tier == TierLocal:
			r.logger.Debug("local item shadows official item",
				"item", e.ItemID, "official_task", prev.Task, "local_task", e.Task)
			r.Diagnostics.AddInfo(diagnostic.CodeShadowedOfficial,
				fmt.Sprintf("local task %s shadows official task %s", e.Task, prev.Task), e.Task, e.ItemID)
		}

		r.entries[e.ItemID] = e
	}
}

// newEntries expands an item into its own entry plus one per alias.
func newEntries(id, task string, tier Tier, def *template.ItemDefinition) []*Entry {
	desc := ""
	if def != nil {
		desc = shorten(def.Description.String())
	}

	out := []*Entry{{ItemID: id, Task: task, Tier: tier, Description: desc}}

	if def == nil {
		return out
	}

	for _, a := range def.Aliases {
		if a == "" || a == id {
			continue
		}

		out = append(out, &Entry{ItemID: a, Task: task, Tier: tier, Description: desc, Canonical: id})
	}

	return out
}

func shorten(s string) string {
	r := []rune(s)
	if len(r) <= maxDescription {
		return s
	}

	return string(r[:maxDescription-1]) + "…"
}
