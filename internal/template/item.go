package template

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Item definition keys.
const (
	keyDescription        = "Description"
	keyLevels             = "Levels"
	keyMinValue           = "MinValue"
	keyMaxValue           = "MaxValue"
	keyWarnMinValue       = "WarnMinValue"
	keyWarnMaxValue       = "WarnMaxValue"
	keyAllowedValues      = "AllowedValues"
	keyAliasOf            = "AliasOf"
	keyAliases            = "Aliases"
	keyApplicableVersions = "ApplicableVersions"
)

// ItemDefinition describes one measured variable of an instrument.
type ItemDefinition struct {
	Description   Text
	Levels        *Levels
	MinValue      *float64
	MaxValue      *float64
	WarnMinValue  *float64
	WarnMaxValue  *float64
	AllowedValues []any
	// AliasOf names the canonical item when this key is an alternate spelling.
	AliasOf string
	// Aliases lists alternate spellings that resolve to this item.
	Aliases []string
	// ApplicableVersions restricts the item to the listed instrument versions.
	// Empty means the item applies to every version.
	ApplicableVersions []string
	// Extra holds keys this model does not interpret, preserved on rewrite.
	Extra map[string]any
}

// HasLevels reports whether the item declares at least one level.
func (d *ItemDefinition) HasLevels() bool {
	return d != nil && d.Levels.Len() > 0
}

// AppliesTo reports whether the item is part of the given version.
func (d *ItemDefinition) AppliesTo(version string) bool {
	if version == "" || len(d.ApplicableVersions) == 0 {
		return true
	}

	for _, v := range d.ApplicableVersions {
		if v == version {
			return true
		}
	}

	return false
}

// Clone returns a deep copy of the definition.
func (d *ItemDefinition) Clone() *ItemDefinition {
	data, err := json.Marshal(d)
	if err != nil {
		cp := *d
		return &cp
	}

	var out ItemDefinition
	if err := json.Unmarshal(data, &out); err != nil {
		cp := *d
		return &cp
	}

	return &out
}

func (d *ItemDefinition) fields() []field {
	var out []field

	add := func(key string, value any, present bool) {
		if present {
			out = append(out, field{key: key, value: value})
		}
	}

	add(keyDescription, d.Description, !d.Description.IsZero())
	add(keyLevels, d.Levels, d.Levels != nil)
	add(keyMinValue, d.MinValue, d.MinValue != nil)
	add(keyMaxValue, d.MaxValue, d.MaxValue != nil)
	add(keyWarnMinValue, d.WarnMinValue, d.WarnMinValue != nil)
	add(keyWarnMaxValue, d.WarnMaxValue, d.WarnMaxValue != nil)
	add(keyAllowedValues, d.AllowedValues, len(d.AllowedValues) > 0)
	add(keyAliasOf, d.AliasOf, d.AliasOf != "")
	add(keyAliases, d.Aliases, len(d.Aliases) > 0)
	add(keyApplicableVersions, d.ApplicableVersions, len(d.ApplicableVersions) > 0)

	extra := make([]string, 0, len(d.Extra))
	for k := range d.Extra {
		extra = append(extra, k)
	}

	sort.Strings(extra)

	for _, k := range extra {
		out = append(out, field{key: k, value: d.Extra[k]})
	}

	return out
}

// assign decodes one key of an item object.
func (d *ItemDefinition) assign(key string, decode func(any) error) error {
	var err error

	switch key {
	case keyDescription:
		err = decode(&d.Description)
	case keyLevels:
		d.Levels = &Levels{}
		err = decode(d.Levels)
	case keyMinValue:
		d.MinValue, err = decodeNumber(decode)
	case keyMaxValue:
		d.MaxValue, err = decodeNumber(decode)
	case keyWarnMinValue:
		d.WarnMinValue, err = decodeNumber(decode)
	case keyWarnMaxValue:
		d.WarnMaxValue, err = decodeNumber(decode)
	case keyAllowedValues:
		err = decode(&d.AllowedValues)
	case keyAliasOf:
		err = decode(&d.AliasOf)
	case keyAliases:
		err = decode(&d.Aliases)
	case keyApplicableVersions:
		err = decode(&d.ApplicableVersions)
	default:
		var v any
		if err = decode(&v); err == nil {
			if d.Extra == nil {
				d.Extra = make(map[string]any)
			}

			d.Extra[key] = v
		}
	}

	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	return nil
}

func decodeNumber(decode func(any) error) (*float64, error) {
	var v any
	if err := decode(&v); err != nil {
		return nil, err
	}

	switch n := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return &n, nil
	case int:
		f := float64(n)
		return &f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", n)
		}

		return &f, nil
	default:
		return nil, fmt.Errorf("not a number: %v", v)
	}
}

// MarshalJSON implements json.Marshaler.
func (d *ItemDefinition) MarshalJSON() ([]byte, error) {
	return marshalOrderedJSON(d.fields())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *ItemDefinition) UnmarshalJSON(data []byte) error {
	*d = ItemDefinition{}

	return decodeOrderedJSON(data, func(key string, raw json.RawMessage) error {
		return d.assign(key, func(v any) error { return json.Unmarshal(raw, v) })
	})
}

// MarshalYAML implements yaml.Marshaler.
func (d *ItemDefinition) MarshalYAML() (any, error) {
	return orderedYAMLNode(d.fields())
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *ItemDefinition) UnmarshalYAML(node *yaml.Node) error {
	*d = ItemDefinition{}

	return decodeOrderedYAML(node, func(key string, value *yaml.Node) error {
		return d.assign(key, value.Decode)
	})
}
