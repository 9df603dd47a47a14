package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"survey-curator/internal/diagnostic"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// File is one output file relative to the dataset root.
type File struct {
	Path    string
	Content []byte
}

// WriteFiles writes files below root, creating directories as needed.
func WriteFiles(files []File, root string) error {
	for _, file := range files {
		outputPath := filepath.Join(root, filepath.FromSlash(file.Path))

		if err := os.MkdirAll(filepath.Dir(outputPath), dirPerm); err != nil {
			return fmt.Errorf("creating directory for %s: %w", file.Path, err)
		}

		if err := os.WriteFile(outputPath, file.Content, filePerm); err != nil {
			return fmt.Errorf("writing file %s: %w", file.Path, err)
		}
	}

	return nil
}

// PrepareRoot creates root. An existing non-empty root is refused
// unless overwrite is set.
func PrepareRoot(root string, overwrite bool) error {
	entries, err := os.ReadDir(root)

	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return diagnostic.UserInputf("cannot read output directory %s: %v", root, err)
	case len(entries) > 0 && !overwrite:
		return diagnostic.UserInputf("output directory %s is not empty; set overwrite to replace its contents", root)
	}

	if err := os.MkdirAll(root, dirPerm); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	return nil
}

// tsv renders a header and rows as tab-separated text. Tabs and line
// breaks inside cells are replaced by spaces.
func tsv(header []string, rows ...[]string) []byte {
	var b strings.Builder

	writeLine := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				b.WriteByte('\t')
			}

			b.WriteString(cellReplacer.Replace(c))
		}

		b.WriteByte('\n')
	}

	writeLine(header)

	for _, r := range rows {
		writeLine(r)
	}

	return []byte(b.String())
}

var cellReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")
