package registry

// Batch stages the registrations of one import. Nothing reaches the
// registry until Commit.
type Batch struct {
	reg     *Registry
	tier    Tier
	seen    map[string]*Entry
	pending []*Entry
}

// NewBatch starts an import-tier batch.
func (r *Registry) NewBatch() *Batch {
	return &Batch{
		reg:  r,
		tier: TierImport,
		seen: make(map[string]*Entry),
	}
}

// Register stages an item for task. Two registrations of the same id
// within one batch are always a duplicate, whatever the task names.
func (b *Batch) Register(task string, item Item) (Result, error) {
	entries := newEntries(item.ID, task, b.tier, item.Def)

	for _, e := range entries {
		if prev, ok := b.seen[e.ItemID]; ok {
			c := &CollisionError{
				ItemID:         prev.canonicalID(),
				ExistingTask:   prev.Task,
				ExistingTier:   prev.Tier,
				IncomingTask:   task,
				Classification: Duplicate,
				SameBatch:      true,
			}

			if e.ItemID != c.ItemID {
				c.Via = e.ItemID
			}

			return Result{}, c
		}
	}

	for _, e := range entries {
		b.seen[e.ItemID] = e
	}

	for _, e := range entries {
		c := b.reg.conflict(e)
		if c == nil {
			continue
		}

		if c.Classification == Duplicate {
			return Result{}, c
		}

		return Result{Outcome: NeedsMerge, Collision: c}, nil
	}

	b.pending = append(b.pending, entries...)

	return Result{Outcome: Registered}, nil
}

// Commit writes every Registered entry of the batch to the registry.
func (b *Batch) Commit() {
	b.reg.commit(b.pending)
	b.pending = nil
}

// CheckBatch tries items for task without changing the registry and
// returns every collision they would cause, version candidates included.
func (r *Registry) CheckBatch(items []Item, task string) []error {
	b := r.NewBatch()

	var errs []error

	for _, it := range items {
		res, err := b.Register(task, it)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if res.Outcome == NeedsMerge {
			errs = append(errs, res.Collision)
		}
	}

	return errs
}
