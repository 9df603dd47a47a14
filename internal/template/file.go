package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"survey-curator/internal/common"
)

// Format is the on-disk encoding of a template.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return common.UnknownStr
	}
}

// File permission for rewritten templates.
const filePerm = 0o644

// FormatForPath returns the format implied by a file extension.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return FormatJSON, false
	}
}

// Load reads and parses a template file.
func Load(path string) (*Template, error) {
	format, ok := FormatForPath(path)
	if !ok {
		return nil, fmt.Errorf("unsupported template extension: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}

	t, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
	}

	t.Path = path

	return t, nil
}

// Decode parses template data in the given format.
func Decode(data []byte, format Format) (*Template, error) {
	t := New()
	t.Format = format

	var err error

	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, t)
	default:
		err = json.Unmarshal(data, t)
	}

	if err != nil {
		return nil, err
	}

	return t, nil
}

// Encode serializes a template. JSON output is indented with two spaces
// and ends with a newline; encoding the same document twice yields
// identical bytes.
func Encode(t *Template, format Format) ([]byte, error) {
	if format == FormatYAML {
		var buf bytes.Buffer

		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)

		if err := enc.Encode(t); err != nil {
			return nil, err
		}

		if err := enc.Close(); err != nil {
			return nil, err
		}

		return buf.Bytes(), nil
	}

	compact, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, err
	}

	out.WriteByte('\n')

	return out.Bytes(), nil
}

// Save writes the template to path, in the format implied by the extension.
func Save(t *Template, path string) error {
	format, ok := FormatForPath(path)
	if !ok {
		format = t.Format
	}

	data, err := Encode(t, format)
	if err != nil {
		return fmt.Errorf("failed to encode template %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write template %s: %w", path, err)
	}

	return nil
}
