package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-curator/internal/diagnostic"
	"survey-curator/internal/template"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		itemID   string
		existing string
		incoming string
		want     Classification
	}{
		{"shared item token", "BDI_01", "bdi-short", "bdi-long", VersionCandidate},
		{"name prefix", "Q1", "bdi", "BDI Short", VersionCandidate},
		{"unrelated", "BDI_01", "bdi", "gad7", Duplicate},
		{"unrelated generic id", "Q1", "bdi", "gad7", Duplicate},
		{"token too short", "A1", "alpha", "beta", Duplicate},
		{"token in both", "PHQ9", "phq9-screen", "phq-long", VersionCandidate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.itemID, tt.existing, tt.incoming))
		})
	}
}

func TestRegisterOutcomes(t *testing.T) {
	r := New(nil)

	res, err := r.Register("BDI_01", "bdi-short", TierLocal, &template.ItemDefinition{Description: template.Plain("Sadness")})
	require.NoError(t, err)
	assert.Equal(t, Registered, res.Outcome)

	res, err = r.Register("BDI_01", "bdi-short", TierLocal, &template.ItemDefinition{Description: template.Plain("Sadness")})
	require.NoError(t, err)
	assert.Equal(t, Registered, res.Outcome, "same task re-registers")

	res, err = r.Register("BDI_01", "bdi-long", TierImport, nil)
	require.NoError(t, err)
	assert.Equal(t, NeedsMerge, res.Outcome)
	assert.Equal(t, "bdi-short", res.Owner())
	assert.Equal(t, VersionCandidate, res.Collision.Classification)

	e, ok := r.Lookup("BDI_01")
	require.True(t, ok)
	assert.Equal(t, "bdi-short", e.Task)
	assert.Equal(t, "Sadness", e.Description)

	_, err = r.Register("BDI_01", "gad7", TierImport, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, diagnostic.ErrLibraryIntegrity))

	var c *CollisionError
	require.ErrorAs(t, err, &c)
	assert.Equal(t, Duplicate, c.Classification)
	assert.Equal(t, "bdi-short", c.ExistingTask)
	assert.Equal(t, "gad7", c.IncomingTask)
}

func TestAliasCollidesLikeCanonical(t *testing.T) {
	r := New(nil)

	_, err := r.Register("A", "anxiety", TierLocal, &template.ItemDefinition{Aliases: []string{"A2"}})
	require.NoError(t, err)

	_, errCanonical := r.Register("A", "mood", TierImport, nil)
	_, errAlias := r.Register("A2", "mood", TierImport, nil)

	var viaCanonical, viaAlias *CollisionError
	require.ErrorAs(t, errCanonical, &viaCanonical)
	require.ErrorAs(t, errAlias, &viaAlias)

	assert.Equal(t, viaCanonical.ItemID, viaAlias.ItemID)
	assert.Equal(t, viaCanonical.ExistingTask, viaAlias.ExistingTask)
	assert.Equal(t, viaCanonical.Classification, viaAlias.Classification)
	assert.Equal(t, "A2", viaAlias.Via)
	assert.Equal(t, errors.Is(errCanonical, diagnostic.ErrLibraryIntegrity),
		errors.Is(errAlias, diagnostic.ErrLibraryIntegrity))

	_, errNewAlias := r.Register("Z", "mood", TierImport, &template.ItemDefinition{Aliases: []string{"A"}})
	require.Error(t, errNewAlias, "an alias claiming an owned id collides too")
}

func TestTierShadowing(t *testing.T) {
	r := New(nil)

	_, err := r.Register("X_01", "x-official", TierOfficial, nil)
	require.NoError(t, err)

	_, err = r.Register("X_01", "x-local", TierLocal, nil)
	require.NoError(t, err)

	e, _ := r.Lookup("X_01")
	assert.Equal(t, TierLocal, e.Tier)
	assert.Equal(t, "x-local", e.Task)
	assert.Len(t, r.Diagnostics.Infos, 1)

	_, err = r.Register("X_01", "x-official", TierOfficial, nil)
	require.NoError(t, err)

	e, _ = r.Lookup("X_01")
	assert.Equal(t, TierLocal, e.Tier, "official never replaces local")
}

func TestBatchDuplicateWithinImport(t *testing.T) {
	r := New(nil)
	b := r.NewBatch()

	_, err := b.Register("ads-short", Item{ID: "ADS1"})
	require.NoError(t, err)

	_, err = b.Register("ads-long", Item{ID: "ADS1"})
	require.Error(t, err)

	var c *CollisionError
	require.ErrorAs(t, err, &c)
	assert.True(t, c.SameBatch)
	assert.Equal(t, Duplicate, c.Classification)
	assert.True(t, errors.Is(err, diagnostic.ErrLibraryIntegrity))

	assert.Equal(t, 0, r.Len(), "nothing registered before commit")

	b.Commit()

	e, ok := r.Lookup("ADS1")
	require.True(t, ok)
	assert.Equal(t, TierImport, e.Tier)
}

func TestCheckBatchIsReadOnly(t *testing.T) {
	r := New(nil)
	_, err := r.Register("BDI_01", "bdi-short", TierLocal, nil)
	require.NoError(t, err)
	_, err = r.Register("GAD1", "gad7", TierLocal, nil)
	require.NoError(t, err)

	errs := r.CheckBatch([]Item{
		{ID: "BDI_01"},
		{ID: "BDI_02"},
		{ID: "GAD1"},
		{ID: "BDI_02"},
	}, "bdi-long")

	require.Len(t, errs, 3)

	var c *CollisionError
	require.ErrorAs(t, errs[0], &c)
	assert.Equal(t, VersionCandidate, c.Classification)
	assert.False(t, errors.Is(errs[0], diagnostic.ErrLibraryIntegrity))

	require.ErrorAs(t, errs[1], &c)
	assert.Equal(t, "GAD1", c.ItemID)
	assert.Equal(t, Duplicate, c.Classification)

	require.ErrorAs(t, errs[2], &c)
	assert.True(t, c.SameBatch)

	assert.Equal(t, 2, r.Len())
	_, ok := r.Lookup("BDI_02")
	assert.False(t, ok)
}

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestFromLibrariesLocalShadowsOfficial(t *testing.T) {
	official := t.TempDir()
	local := t.TempDir()

	writeTemplate(t, official, "survey-x.json", `{"X_01": {"Description": "official"}, "X_02": {}}`)
	writeTemplate(t, official, "participants.json", `{"age": {}}`)
	writeTemplate(t, local, "survey-xlocal.json", `{"X_01": {"Description": "local"}}`)

	r, err := FromLibraries(local, official, Options{})
	require.NoError(t, err)

	var hits []Entry
	for _, e := range r.Entries() {
		if e.ItemID == "X_01" {
			hits = append(hits, e)
		}
	}

	require.Len(t, hits, 1)
	assert.Equal(t, TierLocal, hits[0].Tier)
	assert.Equal(t, "local", hits[0].Description)

	_, ok := r.Lookup("age")
	assert.False(t, ok, "participant templates are skipped")
}

func TestFromLibrariesCollectsDuplicates(t *testing.T) {
	local := t.TempDir()

	writeTemplate(t, local, "survey-bdi.json", `{"Q1": {}, "Q2": {}}`)
	writeTemplate(t, local, "survey-gad7.json", `{"Q1": {}, "Q2": {}}`)

	_, err := FromLibraries(local, "", Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, diagnostic.ErrLibraryIntegrity))
	assert.Contains(t, err.Error(), "Q1")
	assert.Contains(t, err.Error(), "Q2")
}

func TestFromLibrariesWarnsOnUnmergedVariant(t *testing.T) {
	local := t.TempDir()

	writeTemplate(t, local, "survey-bdi-long.json", `{"BDI_01": {}}`)
	writeTemplate(t, local, "survey-bdi-short.json", `{"BDI_01": {}}`)

	r, err := FromLibraries(local, "", Options{})
	require.NoError(t, err)
	assert.Len(t, r.Diagnostics.WarningsWithCode(diagnostic.CodeUnmergedVariant), 1)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "official", TierOfficial.String())
	assert.Equal(t, "import", TierImport.String())
	assert.Equal(t, "Tier(9)", Tier(9).String())
	assert.Equal(t, "version_candidate", VersionCandidate.String())
	assert.Equal(t, "duplicate", Duplicate.String())
	assert.Equal(t, "needs_merge", NeedsMerge.String())
}
