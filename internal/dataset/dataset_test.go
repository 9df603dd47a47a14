package dataset

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-curator/internal/diagnostic"
	"survey-curator/internal/template"
)

func TestSubjectID(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"P1", "sub-P1"},
		{7, "sub-007"},
		{7.0, "sub-007"},
		{"sub-12", "sub-012"},
		{"SUB-ab_3", "sub-ab3"},
		{"1234", "sub-1234"},
		{"Jürgen Ø", "sub-JuergenO"},
		{"Éva", "sub-Eva"},
		{"straße", "sub-strasse"},
	}

	for _, tt := range tests {
		got, err := SubjectID(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []any{nil, "", "n/a", "--"} {
		_, err := SubjectID(bad)
		assert.True(t, errors.Is(err, diagnostic.ErrUserInput), bad)
	}
}

func TestSessionID(t *testing.T) {
	tests := []struct {
		in   any
		def  string
		want string
	}{
		{nil, "", "ses-1"},
		{"", "baseline", "ses-baseline"},
		{"ses-2", "", "ses-2"},
		{2.0, "", "ses-2"},
		{"T1 post", "", "ses-T1post"},
	}

	for _, tt := range tests {
		got, err := SessionID(tt.in, tt.def)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestPrepareRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")
	require.NoError(t, PrepareRoot(root, false), "missing root is created")

	require.NoError(t, os.WriteFile(filepath.Join(root, "x"), nil, 0o644))

	err := PrepareRoot(root, false)
	assert.True(t, errors.Is(err, diagnostic.ErrUserInput))

	assert.NoError(t, PrepareRoot(root, true))
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)

	return string(data)
}

func TestWriterLayout(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(root, "", nil)

	p, err := w.WriteRecord(Record{
		Subject: "sub-P1",
		Session: "ses-1",
		Task:    "ads",
		Columns: []string{"ADS1", "ADS2"},
		Values:  []string{"2", "n/a"},
	})
	require.NoError(t, err)
	assert.Equal(t, "sub-P1/ses-1/survey/sub-P1_ses-1_task-ads_survey.tsv", p)
	assert.Equal(t, "ADS1\tADS2\n2\tn/a\n", readFile(t, root, p))

	_, err = w.WriteRecord(Record{Subject: "sub-P2", Session: "ses-1", Task: "ads",
		Columns: []string{"ADS1", "ADS2"}, Values: []string{"1", "3"}})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"sub-P1": 1, "sub-P2": 0}, w.MissingCells())

	_, err = w.WriteRecord(Record{Subject: "sub-P3", Columns: []string{"A"}})
	assert.Error(t, err)

	tpl := template.New()
	tpl.SetTaskName("ads")
	tpl.SetItem("ADS1", &template.ItemDefinition{Description: template.Plain("Mood")})

	sidecar, err := w.WriteSidecar("ads", tpl)
	require.NoError(t, err)
	assert.Equal(t, "task-ads_survey.json", sidecar)
	assert.Contains(t, readFile(t, root, sidecar), `"ADS1"`)

	require.NoError(t, w.WriteDescription(Description{Name: "study", BIDSVersion: "1.8.0", DatasetType: "raw"}))

	var desc map[string]any
	require.NoError(t, json.Unmarshal([]byte(readFile(t, root, "dataset_description.json")), &desc))
	assert.Equal(t, "study", desc["Name"])

	require.NoError(t, w.WriteParticipants(Participants{
		Columns: []string{"age"},
		Rows:    []ParticipantRow{{Subject: "sub-P1", Values: []string{"34"}}},
	}))
	assert.Equal(t, "participant_id\tage\nsub-P1\t34\n", readFile(t, root, "participants.tsv"))

	var parts map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(readFile(t, root, "participants.json")), &parts))
	assert.Equal(t, "age", parts["age"]["Description"])
	assert.Contains(t, parts, ParticipantIDColumn)

	assert.Len(t, w.Written(), 6)
}

func TestTaskLabelAndCells(t *testing.T) {
	w := NewWriter(t.TempDir(), "beh", nil)
	assert.Equal(t, "task-bdishort_beh.json", w.SidecarPath("bdi-short"))
	assert.Equal(t, "a b\tc\nx y\n", string(tsv([]string{"a\tb", "c"}, []string{"x\ny"})))
}
