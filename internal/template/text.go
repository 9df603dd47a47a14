package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Text is a description or label that is either plain or keyed by language.
type Text struct {
	// Value holds plain text. Ignored when Lang is non-nil.
	Value string
	// Lang maps language codes to translations.
	Lang map[string]string
	// Order lists the codes of Lang in declared order. Codes missing from
	// it follow in sorted order.
	Order []string
}

// Plain returns a non-localized Text.
func Plain(s string) Text {
	return Text{Value: s}
}

// IsZero reports whether the text carries no content.
func (t Text) IsZero() bool {
	return t.Value == "" && len(t.Lang) == 0
}

// IsLocalized reports whether the text is a language map.
func (t Text) IsLocalized() bool {
	return t.Lang != nil
}

// Languages returns the language codes in declared order.
func (t Text) Languages() []string {
	out := make([]string, 0, len(t.Lang))
	listed := make(map[string]bool, len(t.Order))

	for _, k := range t.Order {
		if _, ok := t.Lang[k]; ok && !listed[k] {
			listed[k] = true
			out = append(out, k)
		}
	}

	var rest []string

	for k := range t.Lang {
		if !listed[k] {
			rest = append(rest, k)
		}
	}

	sort.Strings(rest)

	return append(out, rest...)
}

// set adds a translation, keeping declared order.
func (t *Text) set(lang, value string) {
	if t.Lang == nil {
		t.Lang = make(map[string]string)
	}

	if _, ok := t.Lang[lang]; !ok {
		t.Order = append(t.Order, lang)
	}

	t.Lang[lang] = value
}

func (t Text) fields() []field {
	langs := t.Languages()
	out := make([]field, 0, len(langs))

	for _, k := range langs {
		out = append(out, field{key: k, value: t.Lang[k]})
	}

	return out
}

// String returns the plain value, or the English translation, or the first
// non-empty translation in declared order.
func (t Text) String() string {
	if !t.IsLocalized() {
		return t.Value
	}

	if v := t.Lang["en"]; v != "" {
		return v
	}

	for _, k := range t.Languages() {
		if t.Lang[k] != "" {
			return t.Lang[k]
		}
	}

	return ""
}

// MarshalJSON implements json.Marshaler, keeping language order.
func (t Text) MarshalJSON() ([]byte, error) {
	if t.IsLocalized() {
		return marshalOrderedJSON(t.fields())
	}

	return json.Marshal(t.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
// Accepts a string, a language object, or a bare scalar.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = Text{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*t = Text{Value: s}
	case data[0] == '{':
		*t = Text{Lang: map[string]string{}}

		return decodeOrderedJSON(data, func(key string, raw json.RawMessage) error {
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("translation %q: %w", key, err)
			}

			t.set(key, stringify(v))

			return nil
		})
	default:
		*t = Text{Value: string(data)}
	}

	return nil
}

// MarshalYAML implements yaml.Marshaler, keeping language order.
func (t Text) MarshalYAML() (any, error) {
	if t.IsLocalized() {
		return orderedYAMLNode(t.fields())
	}

	return t.Value, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Text) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*t = Text{Value: node.Value}
	case yaml.MappingNode:
		*t = Text{Lang: map[string]string{}}

		return decodeOrderedYAML(node, func(key string, value *yaml.Node) error {
			var v any
			if err := value.Decode(&v); err != nil {
				return fmt.Errorf("translation %q: %w", key, err)
			}

			t.set(key, stringify(v))

			return nil
		})
	default:
		return fmt.Errorf("line %d: text must be a string or a language map", node.Line)
	}

	return nil
}

func stringify(v any) string {
	if v == nil {
		return ""
	}

	return fmt.Sprint(v)
}
