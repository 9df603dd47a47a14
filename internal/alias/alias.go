package alias

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"survey-curator/internal/diagnostic"
	"survey-curator/internal/template"
)

// AmbiguousAliasError reports one alias declared under two canonical ids.
type AmbiguousAliasError struct {
	Alias      string
	Canonicals []string
}

func (e *AmbiguousAliasError) Error() string {
	return fmt.Sprintf("ambiguous alias %q declared under %s", e.Alias, strings.Join(e.Canonicals, " and "))
}

func (e *AmbiguousAliasError) Unwrap() error { return diagnostic.ErrLibraryIntegrity }

// Map is a bidirectional alias <-> canonical id map.
type Map struct {
	canonical map[string]string
	aliases   map[string][]string
}

// New returns an empty map.
func New() *Map {
	return &Map{
		canonical: make(map[string]string),
		aliases:   make(map[string][]string),
	}
}

// Add declares aliases for a canonical id.
func (m *Map) Add(canonical string, aliases ...string) error {
	for _, a := range aliases {
		if a == "" || a == canonical {
			continue
		}

		if prev, ok := m.canonical[a]; ok {
			if prev == canonical {
				continue
			}

			return &AmbiguousAliasError{Alias: a, Canonicals: []string{prev, canonical}}
		}

		m.canonical[a] = canonical
		m.aliases[canonical] = append(m.aliases[canonical], a)
	}

	return nil
}

// Merge adds every declaration of other.
func (m *Map) Merge(other *Map) error {
	if other == nil {
		return nil
	}

	for _, c := range other.Canonicals() {
		if err := m.Add(c, other.aliases[c]...); err != nil {
			return err
		}
	}

	return nil
}

// Canonical returns the canonical id for id, or id itself.
func (m *Map) Canonical(id string) string {
	if c, ok := m.canonical[id]; ok {
		return c
	}

	return id
}

// IsAlias reports whether id is a declared alias.
func (m *Map) IsAlias(id string) bool {
	_, ok := m.canonical[id]
	return ok
}

// Aliases returns the aliases declared for a canonical id.
func (m *Map) Aliases(canonical string) []string {
	return slices.Clone(m.aliases[canonical])
}

// Canonicals returns every canonical id that has aliases, sorted.
func (m *Map) Canonicals() []string {
	out := make([]string, 0, len(m.aliases))
	for c := range m.aliases {
		out = append(out, c)
	}

	sort.Strings(out)

	return out
}

// Len returns the number of aliases.
func (m *Map) Len() int {
	return len(m.canonical)
}

// FromTemplate builds the alias map declared by one template.
func FromTemplate(t *template.Template) (*Map, error) {
	m := New()

	for _, id := range t.ItemIDs() {
		def := t.Items[id]

		if def.AliasOf != "" {
			if err := m.Add(def.AliasOf, id); err != nil {
				return nil, err
			}
		}

		if err := m.Add(id, def.Aliases...); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Canonicalization reports what Canonicalize changed.
type Canonicalization struct {
	// Renamed maps former alias keys to the canonical key they became.
	Renamed map[string]string
	// Dropped lists alias keys removed because their canonical key exists.
	Dropped []string
}

// Canonicalize makes a template alias-free in place. An alias key is
// dropped when its canonical key is present, and renamed to the canonical
// key otherwise. Keys are recognized as aliases through their own
// AliasOf, through the Aliases list of another item of t, or through
// extra, which may be nil.
func Canonicalize(t *template.Template, extra *Map) Canonicalization {
	res := Canonicalization{Renamed: map[string]string{}}

	declared := make(map[string]string)

	for _, id := range t.ItemIDs() {
		for _, a := range t.Items[id].Aliases {
			if _, ok := declared[a]; !ok && a != id {
				declared[a] = id
			}
		}
	}

	for _, id := range t.ItemIDs() {
		def, ok := t.Items[id]
		if !ok {
			continue
		}

		canonical := def.AliasOf
		if canonical == "" {
			canonical = declared[id]
		}

		if canonical == "" && extra != nil && extra.IsAlias(id) {
			canonical = extra.Canonical(id)
		}

		if canonical == "" || canonical == id {
			continue
		}

		if target, ok := t.Items[canonical]; ok {
			t.DeleteItem(id)

			if !slices.Contains(target.Aliases, id) {
				target.Aliases = append(target.Aliases, id)
			}

			res.Dropped = append(res.Dropped, id)

			continue
		}

		_ = t.RenameItem(id, canonical)
		def.AliasOf = ""

		if !slices.Contains(def.Aliases, id) {
			def.Aliases = append(def.Aliases, id)
		}

		res.Renamed[id] = canonical
	}

	return res
}
