package registry

import (
	"errors"
	"fmt"
	"log/slog"

	"survey-curator/internal/alias"
	"survey-curator/internal/diagnostic"
	"survey-curator/internal/library"
	"survey-curator/internal/template"
)

// Options configures FromLibraries.
type Options struct {
	// Patterns are doublestar globs used to find templates.
	Patterns []string
	Logger   *slog.Logger
}

// FromLibraries registers the official library first, then the local one.
// Participant-only templates are skipped. Every duplicate collision is
// collected and returned together.
func FromLibraries(localDir, officialDir string, opts Options) (*Registry, error) {
	r := New(opts.Logger)

	var errs []error

	for _, src := range []struct {
		dir  string
		tier Tier
	}{
		{officialDir, TierOfficial},
		{localDir, TierLocal},
	} {
		if src.dir == "" {
			continue
		}

		files, err := library.Scan(src.dir, opts.Patterns)
		if err != nil {
			return nil, err
		}

		for _, path := range files {
			tpl, err := template.Load(path)
			if err != nil {
				return nil, diagnostic.Integrityf("%v", err)
			}

			if library.IsParticipants(tpl) {
				continue
			}

			errs = append(errs, r.registerTemplate(tpl, src.tier)...)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	r.logger.Debug("registry built", "entries", r.Len())

	return r, nil
}

func (r *Registry) registerTemplate(tpl *template.Template, tier Tier) []error {
	task := library.TaskKey(tpl)
	alias.Canonicalize(tpl, nil)

	var errs []error

	for _, id := range tpl.ItemIDs() {
		res, err := r.Register(id, task, tier, tpl.Items[id])
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", tpl.Path, err))
			continue
		}

		if res.Outcome == NeedsMerge {
			r.logger.Warn("unmerged version variant in library",
				"item", id, "task", task, "owner", res.Owner())
			r.Diagnostics.AddWarning(diagnostic.CodeUnmergedVariant,
				fmt.Sprintf("item also owned by %s; merge the variants", res.Owner()), task, id)
		}
	}

	return errs
}
