package library

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"survey-curator/internal/diagnostic"
)

// DefaultPatterns match every template file below a library root.
var DefaultPatterns = []string{"**/*.json", "**/*.yaml", "**/*.yml"}

// Scan returns the template files below dir matching any of patterns,
// sorted and de-duplicated. Hidden files are skipped.
func Scan(dir string, patterns []string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, diagnostic.UserInputf("template library %s: %v", dir, err)
	}

	if !info.IsDir() {
		return nil, diagnostic.UserInputf("template library %s is not a directory", dir)
	}

	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	fsys := os.DirFS(dir)
	seen := make(map[string]bool)

	var files []string

	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q in %s: %w", pattern, dir, err)
		}

		for _, m := range matches {
			if seen[m] || strings.HasPrefix(path.Base(m), ".") {
				continue
			}

			seen[m] = true
			files = append(files, filepath.Join(dir, filepath.FromSlash(m)))
		}
	}

	sort.Strings(files)

	return files, nil
}
