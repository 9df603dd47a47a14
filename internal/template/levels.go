package template

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Levels is an ordered mapping of response codes to labels.
type Levels struct {
	keys   []string
	labels map[string]Text
}

// Set adds or replaces a level. New codes are appended.
func (l *Levels) Set(code string, label Text) {
	if l.labels == nil {
		l.labels = make(map[string]Text)
	}

	if _, ok := l.labels[code]; !ok {
		l.keys = append(l.keys, code)
	}

	l.labels[code] = label
}

// Keys returns the codes in declared order.
func (l *Levels) Keys() []string {
	if l == nil {
		return nil
	}

	return append([]string(nil), l.keys...)
}

// Label returns the label for a code.
func (l *Levels) Label(code string) (Text, bool) {
	if l == nil {
		return Text{}, false
	}

	t, ok := l.labels[code]

	return t, ok
}

// Has reports whether code is a declared level.
func (l *Levels) Has(code string) bool {
	_, ok := l.Label(code)
	return ok
}

// Len returns the number of levels.
func (l *Levels) Len() int {
	if l == nil {
		return 0
	}

	return len(l.keys)
}

func (l *Levels) fields() []field {
	out := make([]field, 0, len(l.keys))
	for _, k := range l.keys {
		out = append(out, field{key: k, value: l.labels[k]})
	}

	return out
}

// MarshalJSON implements json.Marshaler, keeping declared order.
func (l *Levels) MarshalJSON() ([]byte, error) {
	return marshalOrderedJSON(l.fields())
}

// UnmarshalJSON implements json.Unmarshaler, keeping declared order.
func (l *Levels) UnmarshalJSON(data []byte) error {
	*l = Levels{}

	return decodeOrderedJSON(data, func(key string, raw json.RawMessage) error {
		var label Text
		if err := json.Unmarshal(raw, &label); err != nil {
			return fmt.Errorf("level %q: %w", key, err)
		}

		l.Set(key, label)

		return nil
	})
}

// MarshalYAML implements yaml.Marshaler, keeping declared order.
func (l *Levels) MarshalYAML() (any, error) {
	return orderedYAMLNode(l.fields())
}

// UnmarshalYAML implements yaml.Unmarshaler, keeping declared order.
func (l *Levels) UnmarshalYAML(node *yaml.Node) error {
	*l = Levels{}

	return decodeOrderedYAML(node, func(key string, value *yaml.Node) error {
		var label Text
		if err := value.Decode(&label); err != nil {
			return fmt.Errorf("level %q: %w", key, err)
		}

		l.Set(key, label)

		return nil
	})
}

// field is one key/value pair of an ordered object.
type field struct {
	key   string
	value any
}

func marshalOrderedJSON(fields []field) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}

		val, err := json.Marshal(f.value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.key, err)
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func decodeOrderedJSON(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}

		if err := fn(key, raw); err != nil {
			return err
		}
	}

	_, err = dec.Token()

	return err
}

func orderedYAMLNode(fields []field) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, f := range fields {
		var value yaml.Node
		if err := value.Encode(f.value); err != nil {
			return nil, fmt.Errorf("%s: %w", f.key, err)
		}

		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.key},
			&value,
		)
	}

	return node, nil
}

func decodeOrderedYAML(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}

	return nil
}
