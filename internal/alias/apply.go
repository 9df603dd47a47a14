package alias

import (
	"survey-curator/internal/table"
)

// Coalesced describes one canonical column assembled from several sources.
type Coalesced struct {
	Canonical string
	// Sources are the contributing columns in table order.
	Sources []string
}

// Application reports what Apply changed.
type Application struct {
	Coalesced []Coalesced
	// Renamed maps an alias column to the canonical name it took.
	Renamed map[string]string
}

// Apply rewrites table columns to canonical ids in place.
//
// When two or more columns resolve to the same canonical id (the canonical
// column itself included), they are folded left to right per row, the
// first non-missing value winning, into one column named after the
// canonical id at the position of the leftmost source; the other sources
// are dropped. A single alias column is renamed only if the canonical name
// is not already taken.
func (m *Map) Apply(tbl *table.Table) Application {
	res := Application{Renamed: map[string]string{}}

	groups := make(map[string][]string)

	var order []string

	for _, col := range tbl.Columns {
		c := m.Canonical(col)
		if c == col && len(m.aliases[col]) == 0 {
			continue
		}

		if _, seen := groups[c]; !seen {
			order = append(order, c)
		}

		groups[c] = append(groups[c], col)
	}

	for _, c := range order {
		sources := groups[c]

		if len(sources) == 1 {
			if sources[0] != c && tbl.Index(c) < 0 {
				_ = tbl.Rename(sources[0], c)
				res.Renamed[sources[0]] = c
			}

			continue
		}

		values := make([]any, tbl.Len())

		for r := range tbl.Rows {
			values[r] = coalesce(tbl, r, sources)
		}

		tbl.Drop(sources[1:]...)

		if sources[0] != c {
			_ = tbl.Rename(sources[0], c)
		}

		_ = tbl.SetColumn(c, values)

		res.Coalesced = append(res.Coalesced, Coalesced{Canonical: c, Sources: sources})
	}

	return res
}

func coalesce(tbl *table.Table, row int, sources []string) any {
	for _, s := range sources {
		if v := tbl.Value(row, s); !table.IsMissing(v) {
			return v
		}
	}

	return nil
}
