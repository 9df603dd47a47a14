package mapping

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-curator/internal/diagnostic"
)

type fakeIndex struct {
	items        map[string]string
	canonical    map[string]string
	participants []string
}

func (f *fakeIndex) TaskFor(id string) (string, bool) {
	task, ok := f.items[id]
	return task, ok
}

func (f *fakeIndex) Canonical(id string) string {
	if c, ok := f.canonical[id]; ok {
		return c
	}

	return id
}

func (f *fakeIndex) Index() map[string]string { return f.items }

func (f *fakeIndex) ParticipantColumns() []string { return f.participants }

func newIndex() *fakeIndex {
	return &fakeIndex{
		items: map[string]string{
			"ADS1": "ads",
			"ADS2": "ads",
			"A":    "anx",
			"A2":   "anx",
		},
		canonical:    map[string]string{"A2": "A"},
		participants: []string{"group"},
	}
}

func kinds(m *Mapping) map[string]Kind {
	out := make(map[string]Kind)
	for _, c := range m.Columns {
		out[c.Name] = c.Kind
	}

	return out
}

func TestMapPartitionsColumns(t *testing.T) {
	cols := []string{"participant_id", "ADS1", "ADS2", "age", "Group", "submitdate", "foo", "ads1"}

	m, err := Map(cols, newIndex(), Options{})
	require.NoError(t, err)

	assert.Equal(t, "participant_id", m.IDColumn)
	assert.Empty(t, m.SessionColumn)
	assert.Equal(t, map[string]Kind{
		"participant_id": KindID,
		"ADS1":           KindItem,
		"ADS2":           KindItem,
		"age":            KindParticipant,
		"Group":          KindParticipant,
		"submitdate":     KindIgnored,
		"foo":            KindUnmapped,
		"ads1":           KindUnmapped,
	}, kinds(m))

	assert.Equal(t, []string{"ads"}, m.Tasks())
	assert.Equal(t, map[string]string{"ADS1": "ADS1", "ADS2": "ADS2"}, m.ItemColumns("ads"))
	assert.Equal(t, []string{"age", "Group"}, m.Participants())
	assert.Equal(t, []string{"foo", "ads1"}, m.Unmapped())

	warnings := m.Diagnostics.WarningsWithCode(diagnostic.CodeUnmappedColumn)
	require.Len(t, warnings, 2)
	assert.Equal(t, "ads1", warnings[1].Item)
	assert.Equal(t, []string{"ADS1", "ADS2"}, warnings[1].Suggestions)
	assert.Empty(t, warnings[0].Suggestions)
}

func TestMapIDAndSessionDetection(t *testing.T) {
	tests := []struct {
		name        string
		cols        []string
		opts        Options
		wantID      string
		wantSession string
	}{
		{"candidate order", []string{"code", "Subject", "ADS1"}, Options{}, "Subject", ""},
		{"case insensitive", []string{"SUB", "Visit"}, Options{}, "SUB", "Visit"},
		{"explicit", []string{"pid", "id"}, Options{IDColumn: "pid"}, "pid", ""},
		{"explicit ignores case", []string{"PID", "ses"}, Options{IDColumn: "pid"}, "PID", "ses"},
		{"explicit session", []string{"id", "wave"}, Options{SessionColumn: "wave"}, "id", "wave"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Map(tt.cols, newIndex(), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, m.IDColumn)
			assert.Equal(t, tt.wantSession, m.SessionColumn)
		})
	}
}

func TestMapUserInputErrors(t *testing.T) {
	tests := []struct {
		name string
		cols []string
		opts Options
	}{
		{"no id column", []string{"ADS1", "age"}, Options{}},
		{"explicit id missing", []string{"id", "ADS1"}, Options{IDColumn: "pid"}},
		{"explicit session missing", []string{"id"}, Options{SessionColumn: "wave"}},
		{"override to unknown item", []string{"id", "q1"}, Options{Overrides: map[string]string{"q1": "NOPE"}}},
		{"two columns one item", []string{"id", "q1", "ADS1"}, Options{Overrides: map[string]string{"q1": "ADS1"}}},
		{"unmapped with error policy", []string{"id", "foo"}, Options{Unmapped: PolicyError}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Map(tt.cols, newIndex(), tt.opts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, diagnostic.ErrUserInput), err.Error())
		})
	}
}

func TestMapErrorPolicyNamesSuggestions(t *testing.T) {
	_, err := Map([]string{"id", "ADS_1"}, newIndex(), Options{Unmapped: PolicyError})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADS_1 (did you mean ADS1")
}

func TestMapOverridesAndIgnore(t *testing.T) {
	opts := Options{
		Overrides: map[string]string{"q_anx": "A2", "age": "ADS2"},
		Ignore:    []string{"foo", "ADS1"},
		Unmapped:  PolicyIgnore,
	}

	m, err := Map([]string{"id", "q_anx", "age", "foo", "ADS1", "bar"}, newIndex(), opts)
	require.NoError(t, err)

	c, ok := m.Column("q_anx")
	require.True(t, ok)
	assert.Equal(t, Column{Name: "q_anx", Kind: KindItem, Task: "anx", ItemID: "A"}, c)

	c, _ = m.Column("age")
	assert.Equal(t, KindItem, c.Kind, "override beats participant allow-list")

	c, _ = m.Column("ADS1")
	assert.Equal(t, KindIgnored, c.Kind, "ignore beats library")

	assert.Equal(t, []string{"foo", "ADS1"}, m.Ignored())
	assert.Equal(t, []string{"bar"}, m.Unmapped())
	assert.Empty(t, m.Diagnostics.Warnings)
}

func TestMapAliasColumnUsesCanonicalID(t *testing.T) {
	m, err := Map([]string{"id", "A2"}, newIndex(), Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "A2"}, m.ItemColumns("anx"))
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{
		"":        PolicyWarn,
		"warn":    PolicyWarn,
		"ERROR":   PolicyError,
		" ignore": PolicyIgnore,
	} {
		got, err := ParsePolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePolicy("drop")
	assert.Error(t, err)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "participant", KindParticipant.String())
	assert.Equal(t, "unmapped", KindUnmapped.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}
