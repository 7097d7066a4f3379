package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsKnownType(t *testing.T) {
	for _, docType := range AllTypes() {
		assert.True(t, IsKnownType(docType))
	}
	assert.False(t, IsKnownType("martians"))
	assert.False(t, IsKnownType(""))
}

func TestUpdatedOrCreated(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	doc := &Document{CreatedAt: created}
	assert.Equal(t, created, doc.UpdatedOrCreated())

	doc.UpdatedAt = &updated
	assert.Equal(t, updated, doc.UpdatedOrCreated())

	var zero time.Time
	doc.UpdatedAt = &zero
	assert.Equal(t, created, doc.UpdatedOrCreated())
}

func TestMetaHelpers(t *testing.T) {
	doc := &Document{Metadata: map[string]any{
		"source_type":    "official",
		"citation_count": float64(42),
		"count_int":      17,
		"verified":       true,
	}}

	assert.Equal(t, "official", doc.MetaString("source_type"))
	assert.Equal(t, "", doc.MetaString("missing"))

	v, ok := doc.MetaFloat("citation_count")
	require.True(t, ok)
	assert.Equal(t, 42.0, v)

	v, ok = doc.MetaFloat("count_int")
	require.True(t, ok)
	assert.Equal(t, 17.0, v)

	_, ok = doc.MetaFloat("source_type")
	assert.False(t, ok)

	assert.True(t, doc.MetaBool("verified"))
	assert.False(t, doc.MetaBool("missing"))

	empty := &Document{}
	assert.Equal(t, "", empty.MetaString("anything"))
}

func TestPrepareForIndexCompletionWeight(t *testing.T) {
	doc := &Document{
		ID:        "inst-1",
		Type:      TypeInstitution,
		Title:     "Harvard University",
		ViewCount: 25000,
		Institution: &InstitutionExt{
			Ranking: 1,
		},
	}

	prepared := doc.PrepareForIndex()

	completion := prepared["title_completion"].(map[string]any)
	assert.Equal(t, []string{"Harvard University"}, completion["input"])
	assert.Equal(t, int64(26), completion["weight"]) // 1 + 25000/1000

	// Расширение попадает в документ под своим типом
	assert.Equal(t, doc.Institution, prepared["institution"])
	assert.NotContains(t, prepared, "program")
}

func TestPrepareForIndexWeightCap(t *testing.T) {
	doc := &Document{ID: "x", Type: TypeProgram, Title: "Popular", ViewCount: 10_000_000}
	completion := doc.PrepareForIndex()["title_completion"].(map[string]any)
	assert.Equal(t, int64(100), completion["weight"])
}
