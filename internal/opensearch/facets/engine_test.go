package facets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx3lixir/search-service/internal/opensearch/schema"
	"github.com/rx3lixir/search-service/pkg/logger"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(schema.NewDefaultRegistry(), nil, logger.NewNop())
}

func fptr(v float64) *float64 { return &v }

func termsBucket(key any, count float64) map[string]any {
	return map[string]any{"key": key, "doc_count": count}
}

func TestParseAggregationsDropsEmptyBuckets(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Add(context.Background(), "category", Config{
		Field:       "category",
		Type:        TypeTerms,
		DisplayName: "Category",
	}))

	raw := map[string]any{
		"category": map[string]any{
			"buckets": []any{
				termsBucket("engineering", 12),
				termsBucket("law", 0),
				termsBucket("medicine", 5),
			},
		},
	}

	facets := r.ParseAggregations(raw, []string{"category"}, nil)
	require.Len(t, facets, 1)
	require.Len(t, facets[0].Buckets, 2)

	assert.Equal(t, "engineering", facets[0].Buckets[0].Key)
	assert.Equal(t, "medicine", facets[0].Buckets[1].Key)
	assert.Equal(t, int64(17), facets[0].TotalCount)
}

func TestParseAggregationsSelectedFirst(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Add(context.Background(), "category", Config{
		Field:       "category",
		Type:        TypeTerms,
		DisplayName: "Category",
	}))

	raw := map[string]any{
		"category": map[string]any{
			"buckets": []any{
				termsBucket("engineering", 100),
				termsBucket("law", 50),
				termsBucket("medicine", 5),
			},
		},
	}

	selected := map[string][]string{"category": {"medicine"}}

	facets := r.ParseAggregations(raw, []string{"category"}, selected)
	require.Len(t, facets, 1)

	buckets := facets[0].Buckets
	require.Len(t, buckets, 3)

	// Выбранное значение первое несмотря на наименьший count
	assert.Equal(t, "medicine", buckets[0].Key)
	assert.True(t, buckets[0].Selected)
	assert.Equal(t, "engineering", buckets[1].Key)
	assert.Equal(t, "law", buckets[2].Key)
}

func TestParseAggregationsOrderByKey(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Add(context.Background(), "category", Config{
		Field:       "category",
		Type:        TypeTerms,
		DisplayName: "Category",
		Order:       OrderKey,
	}))

	raw := map[string]any{
		"category": map[string]any{
			"buckets": []any{
				termsBucket("zoology", 100),
				termsBucket("arts", 1),
			},
		},
	}

	facets := r.ParseAggregations(raw, []string{"category"}, nil)
	require.Len(t, facets, 1)
	assert.Equal(t, "arts", facets[0].Buckets[0].Key)
	assert.Equal(t, "zoology", facets[0].Buckets[1].Key)
}

func TestParseAggregationsSkipsUnconfiguredAndMissing(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Add(context.Background(), "category", Config{
		Field:       "category",
		Type:        TypeTerms,
		DisplayName: "Category",
	}))

	// "unknown" не сконфигурирован, "category" отсутствует в ответе движка
	facets := r.ParseAggregations(map[string]any{}, []string{"unknown", "category"}, nil)
	assert.Empty(t, facets)
}

func TestParseAggregationsNumericKeys(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Add(context.Background(), "tuition_histogram", Config{
		Field:       "institution.tuition",
		Type:        TypeHistogram,
		Interval:    10000,
		DisplayName: "Tuition",
	}))

	raw := map[string]any{
		"tuition_histogram": map[string]any{
			"buckets": []any{
				termsBucket(float64(0), 3),
				termsBucket(float64(10000), 7),
			},
		},
	}

	facets := r.ParseAggregations(raw, []string{"tuition_histogram"}, nil)
	require.Len(t, facets, 1)
	require.Len(t, facets[0].Buckets, 2)
	assert.Equal(t, "10000", facets[0].Buckets[0].Key)
	assert.Equal(t, "0", facets[0].Buckets[1].Key)
}

func TestBuildAggregationTerms(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Add(context.Background(), "category", Config{
		Field:       "category",
		Type:        TypeTerms,
		DisplayName: "Category",
	}))

	aggs := r.BuildAggregations([]string{"category", "not-configured"})
	require.Len(t, aggs, 1)

	terms := aggs["category"].(map[string]any)["terms"].(map[string]any)
	assert.Equal(t, "category.keyword", terms["field"])
	assert.Equal(t, 20, terms["size"])
}

func TestBuildAggregationRanges(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Add(context.Background(), "tuition", Config{
		Field:       "institution.tuition",
		Type:        TypeRange,
		DisplayName: "Tuition",
		Ranges: []Range{
			{Key: "free", To: fptr(1)},
			{Key: "low", From: fptr(1), To: fptr(20000)},
			{Key: "medium", From: fptr(20000), To: fptr(45000)},
			{Key: "high", From: fptr(45000)},
		},
	}))

	aggs := r.BuildAggregations([]string{"tuition"})
	rangeAgg := aggs["tuition"].(map[string]any)["range"].(map[string]any)
	assert.Equal(t, "institution.tuition", rangeAgg["field"])

	ranges := rangeAgg["ranges"].([]any)
	require.Len(t, ranges, 4)

	free := ranges[0].(map[string]any)
	assert.Equal(t, "free", free["key"])
	assert.NotContains(t, free, "from")
	assert.Equal(t, 1.0, free["to"])

	low := ranges[1].(map[string]any)
	assert.Equal(t, 1.0, low["from"])
	assert.Equal(t, 20000.0, low["to"])
}

func TestRegistryAddRejectsUnknownField(t *testing.T) {
	r := newTestRegistry(t)

	err := r.Add(context.Background(), "bogus", Config{
		Field:       "no_such_field",
		Type:        TypeTerms,
		DisplayName: "Bogus",
	})
	assert.Error(t, err)
}

func TestRegistryRemove(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Add(context.Background(), "category", Config{
		Field:       "category",
		Type:        TypeTerms,
		DisplayName: "Category",
	}))

	removed, err := r.Remove(context.Background(), "category")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = r.Remove(context.Background(), "category")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, (&Config{Type: TypeTerms}).Validate())                       // нет поля
	assert.Error(t, (&Config{Field: "f", Type: TypeRange}).Validate())           // нет диапазонов
	assert.Error(t, (&Config{Field: "f", Type: TypeHistogram}).Validate())       // нет интервала
	assert.Error(t, (&Config{Field: "f", Type: "pie"}).Validate())               // неизвестный тип
	assert.Error(t, (&Config{Field: "f", Type: TypeTerms, Order: "x"}).Validate())
	assert.NoError(t, (&Config{Field: "f", Type: TypeTerms}).Validate())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "United States", DisplayName("institution.country", "us"))
	assert.Equal(t, "Articles & Guides", DisplayName("type", "contentItem"))
	assert.Equal(t, "Computer Science", DisplayName("category", "computer_science"))
	assert.Equal(t, "Study Abroad", DisplayName("category", "study-abroad"))

	// Первая буква может быть многобайтовой руной
	assert.Equal(t, "École Normale", DisplayName("category", "école_normale"))
}

func TestRegistryStartsWithDefaults(t *testing.T) {
	r := newTestRegistry(t)

	tuition, ok := r.Get("tuition")
	require.True(t, ok)
	assert.Equal(t, TypeRange, tuition.Type)
	assert.Equal(t, "institution.tuition", tuition.Field)
	assert.Len(t, tuition.Ranges, 4)

	docType, ok := r.Get("type")
	require.True(t, ok)
	assert.Equal(t, TypeTerms, docType.Type)

	added, ok := r.Get("added")
	require.True(t, ok)
	assert.Equal(t, TypeDateRange, added.Type)

	assert.Contains(t, r.Names(), "category")
}
