package alias

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"survey-curator/internal/diagnostic"
)

var headerWords = []string{"canonical", "canonical_id", "id"}

// LoadFile reads an external canonical/alias file.
func LoadFile(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, diagnostic.UserInputf("cannot read alias file %s: %v", path, err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("alias file %s: %w", path, err)
	}

	return m, nil
}

// Parse reads lines of "<canonical> <alias1> <alias2> ...", separated by
// tabs or spaces. Blank lines and lines starting with # are skipped, as is
// a header line whose first field is canonical, canonical_id or id.
func Parse(r io.Reader) (*Map, error) {
	m := New()
	sc := bufio.NewScanner(r)
	first := true

	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)

		if first {
			first = false

			if isHeader(fields[0]) {
				continue
			}
		}

		if err := m.Add(fields[0], fields[1:]...); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}

	return m, nil
}

func isHeader(word string) bool {
	word = strings.ToLower(word)
	for _, h := range headerWords {
		if word == h {
			return true
		}
	}

	return false
}
