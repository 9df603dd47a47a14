package template

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Reserved top-level section keys. Every other key is an item id.
const (
	SectionTechnical = "Technical"
	SectionStudy     = "Study"
	SectionMetadata  = "Metadata"
	SectionI18n      = "I18n"
	SectionScoring   = "Scoring"
	SectionNormative = "Normative"
)

// Well-known keys inside sections.
const (
	StudyTaskName     = "TaskName"
	StudyVersions     = "Versions"
	StudyItemCount    = "ItemCount"
	TechnicalLanguage = "Language"

	// ParticipantsTask is the task name of participant-only templates.
	ParticipantsTask = "participants"
)

var reservedKeys = []string{
	SectionTechnical, SectionStudy, SectionMetadata, SectionI18n, SectionScoring, SectionNormative,
}

// IsReserved reports whether key names a document section rather than an item.
func IsReserved(key string) bool {
	return slices.Contains(reservedKeys, key)
}

// Template is one instrument document.
type Template struct {
	Technical map[string]any
	Study     map[string]any
	Metadata  map[string]any
	I18n      map[string]any
	// Sections holds the remaining reserved sections (Scoring, Normative).
	Sections map[string]any
	// Items maps item ids to definitions. Use ItemIDs for declared order.
	Items map[string]*ItemDefinition

	order []string

	// Path is the file the template was loaded from, if any.
	Path string
	// Format is the on-disk encoding.
	Format Format
}

// New returns an empty template.
func New() *Template {
	return &Template{Items: make(map[string]*ItemDefinition)}
}

// ItemIDs returns the item ids in declared order.
func (t *Template) ItemIDs() []string {
	return append([]string(nil), t.order...)
}

// Item returns the definition for id.
func (t *Template) Item(id string) (*ItemDefinition, bool) {
	d, ok := t.Items[id]
	return d, ok
}

// SetItem adds or replaces an item. New ids are appended to the declared order.
func (t *Template) SetItem(id string, def *ItemDefinition) {
	if t.Items == nil {
		t.Items = make(map[string]*ItemDefinition)
	}

	if _, ok := t.Items[id]; !ok {
		t.order = append(t.order, id)
	}

	t.Items[id] = def
}

// DeleteItem removes an item.
func (t *Template) DeleteItem(id string) {
	if _, ok := t.Items[id]; !ok {
		return
	}

	delete(t.Items, id)
	t.order = slices.DeleteFunc(t.order, func(s string) bool { return s == id })
}

// RenameItem renames an item in place, keeping its position.
func (t *Template) RenameItem(from, to string) error {
	def, ok := t.Items[from]
	if !ok {
		return fmt.Errorf("item %q not found", from)
	}

	if _, taken := t.Items[to]; taken {
		return fmt.Errorf("item %q already exists", to)
	}

	delete(t.Items, from)
	t.Items[to] = def
	t.order[slices.Index(t.order, from)] = to

	return nil
}

// TaskName returns Study.TaskName, or "" when undeclared.
func (t *Template) TaskName() string {
	s, _ := t.Study[StudyTaskName].(string)
	return s
}

// SetTaskName replaces Study.TaskName.
func (t *Template) SetTaskName(name string) {
	t.ensureStudy()[StudyTaskName] = name
}

// Versions returns Study.Versions.
func (t *Template) Versions() []string {
	switch v := t.Study[StudyVersions].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			out = append(out, fmt.Sprint(e))
		}

		return out
	case string:
		if v != "" {
			return []string{v}
		}
	}

	return nil
}

// SetVersions replaces Study.Versions.
func (t *Template) SetVersions(versions []string) {
	t.ensureStudy()[StudyVersions] = append([]string(nil), versions...)
}

// ItemCount returns the declared Study.ItemCount.
func (t *Template) ItemCount() (int, bool) {
	switch v := t.Study[StudyItemCount].(type) {
	case int:
		return v, true
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}

	return 0, false
}

// SetItemCount replaces the declared Study.ItemCount.
func (t *Template) SetItemCount(n int) {
	t.ensureStudy()[StudyItemCount] = n
}

// Language returns Technical.Language.
func (t *Template) Language() string {
	s, _ := t.Technical[TechnicalLanguage].(string)
	return s
}

// SetLanguage replaces Technical.Language.
func (t *Template) SetLanguage(lang string) {
	if t.Technical == nil {
		t.Technical = make(map[string]any)
	}

	t.Technical[TechnicalLanguage] = lang
}

func (t *Template) ensureStudy() map[string]any {
	if t.Study == nil {
		t.Study = make(map[string]any)
	}

	return t.Study
}

// Clone returns a deep copy.
func (t *Template) Clone() (*Template, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}

	out := New()
	if err := json.Unmarshal(data, out); err != nil {
		return nil, err
	}

	out.Path = t.Path
	out.Format = t.Format

	return out, nil
}

func (t *Template) fields() []field {
	var out []field

	for _, s := range []struct {
		key   string
		value map[string]any
	}{
		{SectionTechnical, t.Technical},
		{SectionStudy, t.Study},
		{SectionMetadata, t.Metadata},
		{SectionI18n, t.I18n},
	} {
		if s.value != nil {
			out = append(out, field{key: s.key, value: s.value})
		}
	}

	others := make([]string, 0, len(t.Sections))
	for k := range t.Sections {
		others = append(others, k)
	}

	sort.Strings(others)

	for _, k := range others {
		out = append(out, field{key: k, value: t.Sections[k]})
	}

	for _, id := range t.order {
		out = append(out, field{key: id, value: t.Items[id]})
	}

	return out
}

func (t *Template) assign(key string, decode func(any) error) error {
	var err error

	switch key {
	case SectionTechnical:
		err = decode(&t.Technical)
	case SectionStudy:
		err = decode(&t.Study)
	case SectionMetadata:
		err = decode(&t.Metadata)
	case SectionI18n:
		err = decode(&t.I18n)
	case SectionScoring, SectionNormative:
		var v any
		if err = decode(&v); err == nil {
			if t.Sections == nil {
				t.Sections = make(map[string]any)
			}

			t.Sections[key] = v
		}
	default:
		def := &ItemDefinition{}
		if err = decode(def); err == nil {
			t.SetItem(key, def)
		}
	}

	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	return nil
}

// MarshalJSON implements json.Marshaler.
func (t *Template) MarshalJSON() ([]byte, error) {
	return marshalOrderedJSON(t.fields())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Template) UnmarshalJSON(data []byte) error {
	return decodeOrderedJSON(data, func(key string, raw json.RawMessage) error {
		return t.assign(key, func(v any) error { return json.Unmarshal(raw, v) })
	})
}

// MarshalYAML implements yaml.Marshaler.
func (t *Template) MarshalYAML() (any, error) {
	return orderedYAMLNode(t.fields())
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Template) UnmarshalYAML(node *yaml.Node) error {
	return decodeOrderedYAML(node, func(key string, value *yaml.Node) error {
		return t.assign(key, value.Decode)
	})
}
