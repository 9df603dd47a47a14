package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-curator/internal/diagnostic"
	"survey-curator/internal/library"
	"survey-curator/internal/mapping"
	"survey-curator/internal/table"
	"survey-curator/internal/validate"
)

const adsTemplate = `{
  "Study": {"TaskName": "ads"},
  "ADS1": {"Description": {"en": "Sad", "de": "Traurig"}, "MinValue": 0, "MaxValue": 3, "Aliases": ["ADS_1"]},
  "ADS2": {"Description": "Lonely", "MinValue": 0, "MaxValue": 3}
}`

const moodTemplate = `{
  "Study": {"TaskName": "mood", "Versions": ["short", "long"]},
  "M1": {"Levels": {"1": "No", "5": "Yes"}, "ApplicableVersions": ["short", "long"]},
  "M2": {"Levels": {"1": "No", "5": "Yes"}, "ApplicableVersions": ["long"]}
}`

const participantsTemplate = `{"age": {"Description": "Age in years"}}`

func newLibrary(t *testing.T, files map[string]string) *library.Library {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	lib, err := library.Load([]string{dir}, library.Options{})
	require.NoError(t, err)

	return lib
}

func newTable(t *testing.T, columns []string, rows ...[]any) *table.Table {
	t.Helper()

	tbl := table.New(columns...)
	for _, r := range rows {
		require.NoError(t, tbl.AddRow(r...))
	}

	return tbl
}

func read(t *testing.T, root, rel string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)

	return string(data)
}

func outDir(t *testing.T) string {
	return filepath.Join(t.TempDir(), "out")
}

func TestRunEndToEnd(t *testing.T) {
	lib := newLibrary(t, map[string]string{
		"survey-ads.json":   adsTemplate,
		"participants.json": participantsTemplate,
	})
	tbl := newTable(t, []string{"participant_id", "ADS1", "ADS2", "age"}, []any{"P1", "2", "n/a", "34"})
	out := outDir(t)

	res, err := New(lib, DefaultOptions()).Run(context.Background(), tbl, out)
	require.NoError(t, err)

	assert.Equal(t,
		"ADS1\tADS2\n2\tn/a\n",
		read(t, out, "sub-P1/ses-1/survey/sub-P1_ses-1_task-ads_survey.tsv"))
	assert.Contains(t, read(t, out, "participants.tsv"), "sub-P1\t34")
	assert.Contains(t, read(t, out, "participants.json"), "Age in years")
	assert.Contains(t, read(t, out, "task-ads_survey.json"), `"ADS1"`)
	assert.FileExists(t, filepath.Join(out, "dataset_description.json"))

	assert.Equal(t, []string{"ads"}, res.Tasks, spew.Sdump(res))
	assert.Equal(t, "participant_id", res.IDColumn)
	assert.Empty(t, res.SessionColumn)
	assert.Empty(t, res.Unmapped)
	assert.Equal(t, []string{"sub-P1"}, res.Subjects)
	assert.Equal(t, map[string]int{"sub-P1": 1}, res.MissingCells)
	assert.Empty(t, res.MissingItems)
	assert.Len(t, res.Files, 5)

	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err)
}

func TestRunReportsMissingItemsAndUnmapped(t *testing.T) {
	lib := newLibrary(t, map[string]string{"survey-ads.json": adsTemplate})
	tbl := newTable(t, []string{"subject", "ADS2", "extra"}, []any{"7", 1.0, "x"})
	out := outDir(t)

	res, err := New(lib, DefaultOptions()).Run(context.Background(), tbl, out)
	require.NoError(t, err)

	assert.Equal(t, "ADS1\tADS2\nn/a\t1\n", read(t, out, "sub-007/ses-1/survey/sub-007_ses-1_task-ads_survey.tsv"))
	assert.Equal(t, map[string]int{"ads": 1}, res.MissingItems)
	assert.Equal(t, []string{"extra"}, res.Unmapped)
	assert.Len(t, res.Diagnostics.WarningsWithCode(diagnostic.CodeMissingItems), 1)
	assert.Len(t, res.Diagnostics.WarningsWithCode(diagnostic.CodeUnmappedColumn), 1)
}

func TestRunCoalescesAliases(t *testing.T) {
	lib := newLibrary(t, map[string]string{"survey-ads.json": adsTemplate})
	tbl := newTable(t, []string{"id", "ADS_1", "ADS1", "ads_two"},
		[]any{"A", nil, "3", "0"},
		[]any{"B", "1", "2", "n/a"},
	)

	aliasFile := filepath.Join(t.TempDir(), "aliases.tsv")
	require.NoError(t, os.WriteFile(aliasFile, []byte("canonical\taliases\nADS2\tads_two\n"), 0o644))

	opts := DefaultOptions()
	opts.AliasFile = aliasFile
	out := outDir(t)

	res, err := New(lib, opts).Run(context.Background(), tbl, out)
	require.NoError(t, err)

	assert.Equal(t, "ADS1\tADS2\n3\t0\n", read(t, out, "sub-A/ses-1/survey/sub-A_ses-1_task-ads_survey.tsv"))
	assert.Equal(t, "ADS1\tADS2\n1\tn/a\n", read(t, out, "sub-B/ses-1/survey/sub-B_ses-1_task-ads_survey.tsv"))
	assert.Len(t, res.Diagnostics.Infos, 1)
	assert.Empty(t, res.Unmapped)
}

func TestRunValidation(t *testing.T) {
	lib := newLibrary(t, map[string]string{"survey-mood.json": moodTemplate})

	newMoodTable := func() *table.Table {
		return newTable(t, []string{"participant_id", "M1", "M2"},
			[]any{"P1", "1", "5"},
			[]any{"P2", "3", "1"},
		)
	}

	t.Run("strict rejects and keeps earlier subjects", func(t *testing.T) {
		out := outDir(t)

		res, err := New(lib, DefaultOptions()).Run(context.Background(), newMoodTable(), out)
		require.Error(t, err)
		assert.True(t, errors.Is(err, diagnostic.ErrValueValidation))

		var ve *validate.ValueError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "sub-P2", ve.Subject)
		assert.Equal(t, "M1", ve.ItemID)
		assert.Equal(t, "3", ve.Value)

		require.NotNil(t, res)
		assert.FileExists(t, filepath.Join(out, "sub-P1", "ses-1", "survey", "sub-P1_ses-1_task-mood_survey.tsv"))
		assert.NoDirExists(t, filepath.Join(out, "sub-P2"))
	})

	t.Run("tolerant records acceptance", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Mode = validate.Tolerant

		res, err := New(lib, opts).Run(context.Background(), newMoodTable(), outDir(t))
		require.NoError(t, err)
		assert.Equal(t, 1, res.Tolerance.Len())
		assert.Len(t, res.Diagnostics.WarningsWithCode(diagnostic.CodeRangeTolerance), 1)
	})
}

func TestRunVersionSelection(t *testing.T) {
	lib := newLibrary(t, map[string]string{"survey-mood.json": moodTemplate})
	tbl := newTable(t, []string{"participant_id", "M1", "M2"}, []any{"P1", "1", "5"})

	opts := DefaultOptions()
	opts.Version = "short"
	out := outDir(t)

	_, err := New(lib, opts).Run(context.Background(), tbl, out)
	require.NoError(t, err)
	assert.Equal(t, "M1\n1\n", read(t, out, "sub-P1/ses-1/survey/sub-P1_ses-1_task-mood_survey.tsv"))
}

func TestRunSessionsAndLanguage(t *testing.T) {
	lib := newLibrary(t, map[string]string{"survey-ads.json": adsTemplate})
	tbl := newTable(t, []string{"participant_id", "Visit", "ADS1"},
		[]any{"P1", "1", "0"},
		[]any{"P1", "2", "1"},
	)

	opts := DefaultOptions()
	opts.Language = "de"
	out := outDir(t)

	res, err := New(lib, opts).Run(context.Background(), tbl, out)
	require.NoError(t, err)
	assert.Equal(t, "Visit", res.SessionColumn)
	assert.FileExists(t, filepath.Join(out, "sub-P1", "ses-2", "survey", "sub-P1_ses-2_task-ads_survey.tsv"))
	assert.Contains(t, read(t, out, "task-ads_survey.json"), "Traurig")
	assert.Equal(t, "participant_id\nsub-P1\n", read(t, out, "participants.tsv"))
}

func TestRunAbortsBeforeWriting(t *testing.T) {
	lib := newLibrary(t, map[string]string{"survey-ads.json": adsTemplate})

	tests := []struct {
		name  string
		tbl   *table.Table
		opts  func(*Options)
		setup func(t *testing.T, out string)
	}{
		{
			name: "duplicate subject",
			tbl:  newTable(t, []string{"id", "ADS1"}, []any{"P1", "1"}, []any{"P-1", "2"}),
		},
		{
			name: "distinct raw ids across sessions",
			tbl: newTable(t, []string{"id", "visit", "ADS1"},
				[]any{"P1", "1", "1"},
				[]any{"P-1", "2", "2"},
			),
		},
		{
			name: "no id column",
			tbl:  newTable(t, []string{"ADS1"}, []any{"1"}),
		},
		{
			name: "unmapped with error policy",
			tbl:  newTable(t, []string{"id", "ADS1", "junk"}, []any{"P1", "1", "x"}),
			opts: func(o *Options) { o.Unmapped = mapping.PolicyError },
		},
		{
			name: "no mapped task",
			tbl:  newTable(t, []string{"id", "age"}, []any{"P1", "30"}),
		},
		{
			name: "non-empty output",
			tbl:  newTable(t, []string{"id", "ADS1"}, []any{"P1", "1"}),
			setup: func(t *testing.T, out string) {
				require.NoError(t, os.MkdirAll(out, 0o755))
				require.NoError(t, os.WriteFile(filepath.Join(out, "keep"), nil, 0o644))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := outDir(t)
			if tt.setup != nil {
				tt.setup(t, out)
			}

			opts := DefaultOptions()
			if tt.opts != nil {
				tt.opts(&opts)
			}

			_, err := New(lib, opts).Run(context.Background(), tt.tbl, out)
			require.Error(t, err)
			assert.True(t, errors.Is(err, diagnostic.ErrUserInput), err.Error())
			assert.NoFileExists(t, filepath.Join(out, "dataset_description.json"))
		})
	}
}

func TestRunSurveyFilter(t *testing.T) {
	lib := newLibrary(t, map[string]string{"survey-ads.json": adsTemplate, "survey-mood.json": moodTemplate})
	tbl := newTable(t, []string{"id", "ADS1", "M1"}, []any{"P1", "1", "5"})

	opts := DefaultOptions()
	opts.Tasks = []string{"Mood"}

	res, err := New(lib, opts).Run(context.Background(), tbl, outDir(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"mood"}, res.Tasks)

	opts.Tasks = []string{"phq9"}
	_, err = New(lib, opts).Run(context.Background(), tbl, outDir(t))
	assert.True(t, errors.Is(err, diagnostic.ErrUserInput))
}

func TestRunCancelled(t *testing.T) {
	lib := newLibrary(t, map[string]string{"survey-ads.json": adsTemplate})
	tbl := newTable(t, []string{"id", "ADS1"}, []any{"P1", "1"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(lib, DefaultOptions()).Run(ctx, tbl, outDir(t))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunLeavesInputUntouched(t *testing.T) {
	lib := newLibrary(t, map[string]string{"survey-ads.json": adsTemplate})
	tbl := newTable(t, []string{"id", "ADS_1"}, []any{"P1", "1"})

	_, err := New(lib, DefaultOptions()).Run(context.Background(), tbl, outDir(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "ADS_1"}, tbl.Columns)
}
