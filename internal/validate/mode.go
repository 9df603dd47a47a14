package validate

import (
	"fmt"
	"strings"
)

// Mode selects how out-of-catalog numeric values are handled.
type Mode int

const (
	// Strict rejects every value outside Levels and MinValue..MaxValue.
	Strict Mode = iota
	// Tolerant also accepts numeric values inside the Levels key range.
	Tolerant
)

func (m Mode) String() string {
	if m == Tolerant {
		return "tolerant"
	}

	return "strict"
}

// Source is the kind of export a table was read from.
type Source int

const (
	// SourceSpreadsheet covers spreadsheets and delimited text.
	SourceSpreadsheet Source = iota
	// SourceArchive covers survey platform archive exports.
	SourceArchive
)

// DefaultMode returns the strictness used when none is configured.
// Archive exports routinely carry values outside the catalog.
func DefaultMode(src Source) Mode {
	if src == SourceArchive {
		return Tolerant
	}

	return Strict
}

// ParseMode parses "strict", "tolerant" or "auto". Auto and the empty
// string resolve to DefaultMode(src).
func ParseMode(s string, src Source) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return DefaultMode(src), nil
	case "strict":
		return Strict, nil
	case "tolerant":
		return Tolerant, nil
	default:
		return Strict, fmt.Errorf("unknown validation mode %q (want auto, strict or tolerant)", s)
	}
}
