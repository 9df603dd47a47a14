package registry

import (
	"fmt"

	"survey-curator/internal/common"
	"survey-curator/internal/diagnostic"
	"survey-curator/internal/template"
)

//go:generate go tool stringer -type=Tier,Classification -linecomment -output=registry_string.go

// Tier is the provenance of a registry entry.
type Tier int

const (
	TierOfficial Tier = iota // official
	TierLocal                // local
	TierImport               // import
)

// Classification is the kind of an ownership collision.
type Classification int

const (
	Duplicate        Classification = iota // duplicate
	VersionCandidate                       // version_candidate
)

// Entry is one registered item id.
type Entry struct {
	ItemID      string
	Task        string
	Tier        Tier
	Description string
	// Canonical is set when ItemID is an alias of another item.
	Canonical string
}

// canonicalID returns the id this entry stands for.
func (e *Entry) canonicalID() string {
	if e.Canonical != "" {
		return e.Canonical
	}

	return e.ItemID
}

// Item is one item offered to a batch.
type Item struct {
	ID  string
	Def *template.ItemDefinition
}

// CollisionError reports an item id already owned by another task.
type CollisionError struct {
	// ItemID is the canonical id of the contested item.
	ItemID string
	// Via is the surface id that collided when it differs from ItemID.
	Via            string
	ExistingTask   string
	ExistingTier   Tier
	IncomingTask   string
	Classification Classification
	// SameBatch is set when both registrations came from one import batch.
	SameBatch bool
}

func (e *CollisionError) Error() string {
	id := e.ItemID
	if e.Via != "" {
		id = fmt.Sprintf("%s (via %s)", e.ItemID, e.Via)
	}

	if e.SameBatch {
		return fmt.Sprintf("item %s declared twice in one import batch (tasks %s and %s)",
			id, e.ExistingTask, e.IncomingTask)
	}

	return fmt.Sprintf("item %s already owned by %s task %s; cannot register under %s (%s)",
		id, e.ExistingTier, e.ExistingTask, e.IncomingTask, e.Classification)
}

// Unwrap makes duplicates match diagnostic.ErrLibraryIntegrity.
func (e *CollisionError) Unwrap() error {
	if e.Classification == Duplicate {
		return diagnostic.ErrLibraryIntegrity
	}

	return nil
}

// Outcome tags a successful registration.
type Outcome int

const (
	// Registered means the id is now owned by the registering task.
	Registered Outcome = iota
	// NeedsMerge means the id belongs to a version variant and must be merged.
	NeedsMerge
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case Registered:
		return "registered"
	case NeedsMerge:
		return "needs_merge"
	default:
		return common.UnknownStr
	}
}

// Result is the success value of a registration.
type Result struct {
	Outcome Outcome
	// Collision describes the owner and classification when Outcome is NeedsMerge.
	Collision *CollisionError
}

// Owner returns the task owning the item when a merge is needed.
func (r Result) Owner() string {
	if r.Collision == nil {
		return ""
	}

	return r.Collision.ExistingTask
}
