package merge

import (
	"fmt"
	"path/filepath"
	"strings"

	"survey-curator/internal/common"
	"survey-curator/internal/registry"
	"survey-curator/internal/template"
)

// VersionNames are the tags given to the two sides of a merge.
type VersionNames struct {
	Existing string
	New      string
}

// Validate checks that both names are set and distinct.
func (n VersionNames) Validate() error {
	if strings.TrimSpace(n.Existing) == "" || strings.TrimSpace(n.New) == "" {
		return fmt.Errorf("version names must not be empty (existing %q, new %q)", n.Existing, n.New)
	}

	if n.Existing == n.New {
		return fmt.Errorf("version names must differ (both %q)", n.New)
	}

	return nil
}

// VersionNamer picks the version names for folding items into existing.
// hint is the task name or filename the items came from.
type VersionNamer func(existing *template.Template, items []registry.Item, hint string) (VersionNames, error)

// filenameVersions map filename substrings to the names they imply.
// They are checked in order.
var filenameVersions = []struct {
	substr string
	names  VersionNames
}{
	{"screening", VersionNames{Existing: "full", New: "screening"}},
	{"short", VersionNames{Existing: "long", New: "short"}},
	{"long", VersionNames{Existing: "short", New: "long"}},
}

// SuggestVersionNames proposes version names from the two item counts.
// A filename mentioning screening, short or long overrides the counts.
func SuggestVersionNames(existingCount, newCount int, filename string) VersionNames {
	base := strings.ToLower(filepath.Base(filename))

	for _, fv := range filenameVersions {
		if base != "" && strings.Contains(base, fv.substr) {
			return fv.names
		}
	}

	switch {
	case newCount > existingCount:
		return VersionNames{Existing: "short", New: "long"}
	case newCount < existingCount:
		return VersionNames{Existing: "long", New: "short"}
	default:
		return VersionNames{Existing: "form-a", New: "form-b"}
	}
}

// AutoNamer is the non-interactive VersionNamer. When the existing
// template already declares a version, that name is kept for the
// existing side.
func AutoNamer(existing *template.Template, items []registry.Item, hint string) (VersionNames, error) {
	names := SuggestVersionNames(len(existing.ItemIDs()), len(items), hint)

	if declared, ok := common.First(existing.Versions()); ok {
		names.Existing = declared
		if names.New == names.Existing {
			return VersionNames{}, fmt.Errorf("suggested version %q is already declared by %s", names.New, existing.Path)
		}
	}

	return names, nil
}

// Fixed returns a VersionNamer that always answers with the given names.
func Fixed(existing, newVersion string) VersionNamer {
	return func(*template.Template, []registry.Item, string) (VersionNames, error) {
		return VersionNames{Existing: existing, New: newVersion}, nil
	}
}
