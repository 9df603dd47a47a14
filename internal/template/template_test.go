package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adsJSON = `{
  "Technical": {"Language": "en"},
  "Study": {"TaskName": "ads", "Versions": ["short"], "ItemCount": 3},
  "ADS2": {
    "Description": {"en": "Sad", "de": "Traurig"},
    "Levels": {"3": "always", "0": "never", "1": {"en": "rarely", "de": "selten"}},
    "Aliases": ["ADS_2"],
    "Hint": "keep me"
  },
  "ADS1": {"Description": "Happy", "MinValue": 0, "MaxValue": "3"},
  "ADS10": {"Description": "Old spelling", "AliasOf": "ADS1"}
}`

func TestDecodeJSONKeepsOrder(t *testing.T) {
	tpl, err := Decode([]byte(adsJSON), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, []string{"ADS2", "ADS1", "ADS10"}, tpl.ItemIDs())
	assert.Equal(t, "ads", tpl.TaskName())
	assert.Equal(t, []string{"short"}, tpl.Versions())

	n, ok := tpl.ItemCount()
	require.True(t, ok)
	assert.Equal(t, 3, n)

	ads2, ok := tpl.Item("ADS2")
	require.True(t, ok)
	assert.Equal(t, []string{"3", "0", "1"}, ads2.Levels.Keys())
	assert.True(t, ads2.Description.IsLocalized())
	assert.Equal(t, "Traurig", ads2.Description.Lang["de"])
	assert.Equal(t, "keep me", ads2.Extra["Hint"])

	label, ok := ads2.Levels.Label("1")
	require.True(t, ok)
	assert.Equal(t, "selten", label.Lang["de"])

	ads1, _ := tpl.Item("ADS1")
	require.NotNil(t, ads1.MaxValue)
	assert.InDelta(t, 3.0, *ads1.MaxValue, 1e-9)
	assert.False(t, ads1.HasLevels())

	ads10, _ := tpl.Item("ADS10")
	assert.Equal(t, "ADS1", ads10.AliasOf)
}

func TestTextKeepsLanguageOrder(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		src    string
	}{
		{"json", FormatJSON, `{"ADS1": {"Description": {"nl": "Droevig", "de": "Traurig", "en": ""}}}`},
		{"yaml", FormatYAML, "ADS1:\n  Description:\n    nl: Droevig\n    de: Traurig\n    en: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl, err := Decode([]byte(tt.src), tt.format)
			require.NoError(t, err)

			desc := tpl.Items["ADS1"].Description
			assert.Equal(t, []string{"nl", "de", "en"}, desc.Languages())
			assert.Equal(t, "Droevig", desc.String())

			out, err := Encode(tpl, tt.format)
			require.NoError(t, err)

			again, err := Decode(out, tt.format)
			require.NoError(t, err)
			assert.Equal(t, []string{"nl", "de", "en"}, again.Items["ADS1"].Description.Languages())
		})
	}
}

func TestEncodeJSONIsStable(t *testing.T) {
	tpl, err := Decode([]byte(adsJSON), FormatJSON)
	require.NoError(t, err)

	first, err := Encode(tpl, FormatJSON)
	require.NoError(t, err)

	again, err := Decode(first, FormatJSON)
	require.NoError(t, err)

	second, err := Encode(again, FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, []string{"ADS2", "ADS1", "ADS10"}, again.ItemIDs())
}

func TestYAMLRoundTrip(t *testing.T) {
	src := `
Study:
  TaskName: phq
Q1:
  Description: Little interest
  Levels:
    0: not at all
    1: several days
    3: nearly every day
  ApplicableVersions: [long]
Q0:
  Description:
    en: Feeling down
`
	tpl, err := Decode([]byte(src), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, []string{"Q1", "Q0"}, tpl.ItemIDs())

	q1, _ := tpl.Item("Q1")
	assert.Equal(t, []string{"0", "1", "3"}, q1.Levels.Keys())
	assert.True(t, q1.AppliesTo("long"))
	assert.False(t, q1.AppliesTo("short"))
	assert.True(t, q1.AppliesTo(""))

	out, err := Encode(tpl, FormatYAML)
	require.NoError(t, err)

	back, err := Decode(out, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, tpl.ItemIDs(), back.ItemIDs())

	q1b, _ := back.Item("Q1")
	assert.Equal(t, q1.Levels.Keys(), q1b.Levels.Keys())
}

func TestRenameAndDeleteItem(t *testing.T) {
	tpl := New()
	tpl.SetItem("A", &ItemDefinition{})
	tpl.SetItem("B", &ItemDefinition{})
	tpl.SetItem("C", &ItemDefinition{})

	require.NoError(t, tpl.RenameItem("B", "B2"))
	assert.Equal(t, []string{"A", "B2", "C"}, tpl.ItemIDs())

	require.Error(t, tpl.RenameItem("A", "C"))
	require.Error(t, tpl.RenameItem("missing", "D"))

	tpl.DeleteItem("A")
	assert.Equal(t, []string{"B2", "C"}, tpl.ItemIDs())
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	tpl, err := Decode([]byte(adsJSON), FormatJSON)
	require.NoError(t, err)

	tpl.SetVersions([]string{"short", "long"})
	tpl.SetItemCount(2)

	path := filepath.Join(dir, "survey-ads.yaml")
	require.NoError(t, Save(tpl, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, loaded.Format)
	assert.Equal(t, path, loaded.Path)
	assert.Equal(t, []string{"short", "long"}, loaded.Versions())

	n, _ := loaded.ItemCount()
	assert.Equal(t, 2, n)

	_, err = Load(filepath.Join(dir, "notes.txt"))
	require.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("[1,2]"), 0o644))
	_, err = Load(filepath.Join(dir, "broken.json"))
	require.Error(t, err)
}

func TestCloneIsDeep(t *testing.T) {
	tpl, err := Decode([]byte(adsJSON), FormatJSON)
	require.NoError(t, err)

	cp, err := tpl.Clone()
	require.NoError(t, err)

	cp.DeleteItem("ADS1")
	def, _ := cp.Item("ADS2")
	def.Aliases = append(def.Aliases, "X")

	assert.Len(t, tpl.ItemIDs(), 3)

	orig, _ := tpl.Item("ADS2")
	assert.Equal(t, []string{"ADS_2"}, orig.Aliases)
}
