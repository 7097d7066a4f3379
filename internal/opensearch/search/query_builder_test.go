package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx3lixir/search-service/internal/opensearch/facets"
	"github.com/rx3lixir/search-service/internal/opensearch/schema"
	"github.com/rx3lixir/search-service/pkg/logger"
)

func newTestBuilder(t *testing.T) (*QueryBuilder, *facets.Registry) {
	t.Helper()
	registry := facets.NewRegistry(schema.NewDefaultRegistry(), nil, logger.NewNop())
	return NewQueryBuilder(registry, logger.NewNop()), registry
}

func fptr(v float64) *float64 { return &v }

func TestBuildSearchQueryEmptyTextIsMatchAll(t *testing.T) {
	qb, _ := newTestBuilder(t)

	req := &Request{Limit: 20}
	query := qb.BuildSearchQuery(req)

	boolQuery := query["query"].(map[string]any)["bool"].(map[string]any)
	must := boolQuery["must"].([]any)
	require.Len(t, must, 1)

	_, isMatchAll := must[0].(map[string]any)["match_all"]
	assert.True(t, isMatchAll)
}

func TestBuildSearchQueryTextAndWeights(t *testing.T) {
	qb, _ := newTestBuilder(t)

	req := &Request{Text: "computer science", Limit: 10, Offset: 20}
	query := qb.BuildSearchQuery(req)

	assert.Equal(t, 20, query["from"])
	assert.Equal(t, 10, query["size"])

	boolQuery := query["query"].(map[string]any)["bool"].(map[string]any)
	textQuery := boolQuery["must"].([]any)[0].(map[string]any)["bool"].(map[string]any)

	multiMatch := textQuery["must"].([]any)[0].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "computer science", multiMatch["query"])
	assert.Contains(t, multiMatch["fields"], "title^3")
	assert.Contains(t, multiMatch["fields"], "description^2")
	assert.Contains(t, multiMatch["fields"], "tags^2")

	// Фразовые should клаузы с бустами по заголовку и описанию
	should := textQuery["should"].([]any)
	require.Len(t, should, 2)
	titlePhrase := should[0].(map[string]any)["match_phrase"].(map[string]any)["title"].(map[string]any)
	assert.Equal(t, 5.0, titlePhrase["boost"])
}

func TestFuzzinessByShortestTerm(t *testing.T) {
	assert.Equal(t, "0", fuzzinessFor("mit"))
	assert.Equal(t, "0", fuzzinessFor("harvard ai")) // самый короткий терм ai
	assert.Equal(t, "1", fuzzinessFor("study"))
	assert.Equal(t, "AUTO", fuzzinessFor("scholarship deadline"))
}

func TestBuildFiltersUnknownFacetSkipped(t *testing.T) {
	qb, registry := newTestBuilder(t)
	require.NoError(t, registry.Add(context.Background(), "category", facets.Config{
		Field:       "category",
		Type:        facets.TypeTerms,
		DisplayName: "Category",
	}))

	req := &Request{
		Limit: 20,
		Filters: map[string][]string{
			"category":     {"engineering"},
			"nonexistent":  {"x"},
			"empty_values": {},
		},
	}

	query := qb.BuildSearchQuery(req)
	boolQuery := query["query"].(map[string]any)["bool"].(map[string]any)

	filters := boolQuery["filter"].([]any)
	require.Len(t, filters, 1)

	terms := filters[0].(map[string]any)["terms"].(map[string]any)
	assert.Equal(t, []string{"engineering"}, terms["category.keyword"])
}

func TestBuildFiltersRangeMultiSelect(t *testing.T) {
	qb, registry := newTestBuilder(t)
	require.NoError(t, registry.Add(context.Background(), "tuition", facets.Config{
		Field:       "institution.tuition",
		Type:        facets.TypeRange,
		DisplayName: "Tuition",
		Ranges: []facets.Range{
			{Key: "free", To: fptr(1)},
			{Key: "low", From: fptr(1), To: fptr(20000)},
		},
	}))

	req := &Request{
		Limit:   20,
		Filters: map[string][]string{"tuition": {"free", "low", "bogus"}},
	}

	query := qb.BuildSearchQuery(req)
	boolQuery := query["query"].(map[string]any)["bool"].(map[string]any)
	filters := boolQuery["filter"].([]any)
	require.Len(t, filters, 1)

	rangeBool := filters[0].(map[string]any)["bool"].(map[string]any)
	assert.Equal(t, 1, rangeBool["minimum_should_match"])

	// Неизвестный ключ диапазона отброшен, два валидных остались как OR
	should := rangeBool["should"].([]any)
	require.Len(t, should, 2)

	free := should[0].(map[string]any)["range"].(map[string]any)["institution.tuition"].(map[string]any)
	assert.Equal(t, 1.0, free["lt"])
	assert.NotContains(t, free, "gte")

	low := should[1].(map[string]any)["range"].(map[string]any)["institution.tuition"].(map[string]any)
	assert.Equal(t, 1.0, low["gte"])
	assert.Equal(t, 20000.0, low["lt"])
}

func TestBuildFiltersHistogramSelectsWholeBucket(t *testing.T) {
	qb, registry := newTestBuilder(t)
	require.NoError(t, registry.Add(context.Background(), "tuition_histogram", facets.Config{
		Field:       "program.tuition",
		Type:        facets.TypeHistogram,
		Interval:    5000,
		DisplayName: "Tuition",
	}))

	req := &Request{
		Limit:   20,
		Filters: map[string][]string{"tuition_histogram": {"15000", "junk"}},
	}

	query := qb.BuildSearchQuery(req)
	boolQuery := query["query"].(map[string]any)["bool"].(map[string]any)
	filters := boolQuery["filter"].([]any)
	require.Len(t, filters, 1)

	histBool := filters[0].(map[string]any)["bool"].(map[string]any)
	assert.Equal(t, 1, histBool["minimum_should_match"])

	// Нечисловой ключ отброшен; выбранный бакет покрывает весь
	// интервал [15000, 20000), а не только точное значение ключа
	should := histBool["should"].([]any)
	require.Len(t, should, 1)

	bucket := should[0].(map[string]any)["range"].(map[string]any)["program.tuition"].(map[string]any)
	assert.Equal(t, 15000.0, bucket["gte"])
	assert.Equal(t, 20000.0, bucket["lt"])
}

func TestBuildSortDefault(t *testing.T) {
	qb, _ := newTestBuilder(t)

	query := qb.BuildSearchQuery(&Request{Limit: 20})
	sortClauses := query["sort"].([]any)
	require.Len(t, sortClauses, 2)

	_, hasScore := sortClauses[0].(map[string]any)["_score"]
	assert.True(t, hasScore)
	_, hasCreated := sortClauses[1].(map[string]any)["created_at"]
	assert.True(t, hasCreated)
}

func TestBuildSortExplicit(t *testing.T) {
	qb, _ := newTestBuilder(t)

	req := &Request{
		Limit: 20,
		Sort: []SortField{
			{Field: "score"},
			{Field: "title", Order: "asc"},
			{Field: "institution.tuition", Order: "asc"},
		},
	}

	sortClauses := qb.BuildSearchQuery(req)["sort"].([]any)
	require.Len(t, sortClauses, 3)

	// score переименовывается в _score, текстовые поля сортируются по keyword
	scoreClause := sortClauses[0].(map[string]any)["_score"].(map[string]any)
	assert.Equal(t, "desc", scoreClause["order"])

	titleClause := sortClauses[1].(map[string]any)["title.keyword"].(map[string]any)
	assert.Equal(t, "asc", titleClause["order"])

	_, hasTuition := sortClauses[2].(map[string]any)["institution.tuition"]
	assert.True(t, hasTuition)
}

func TestBuildHighlightWindows(t *testing.T) {
	qb, _ := newTestBuilder(t)

	query := qb.BuildSearchQuery(&Request{Text: "harvard", Limit: 20, Highlight: true})
	fields := query["highlight"].(map[string]any)["fields"].(map[string]any)

	title := fields["title"].(map[string]any)
	assert.Equal(t, 150, title["fragment_size"])
	assert.Equal(t, 1, title["number_of_fragments"])

	content := fields["content"].(map[string]any)
	assert.Equal(t, 3, content["number_of_fragments"])

	// Без флага подсветки секции нет
	plain := qb.BuildSearchQuery(&Request{Text: "harvard", Limit: 20})
	assert.NotContains(t, plain, "highlight")
}

func TestRequestValidateDefaults(t *testing.T) {
	req := &Request{Text: "  harvard  "}
	require.NoError(t, req.Validate())
	assert.Equal(t, "harvard", req.Text)
	assert.Equal(t, 20, req.Limit)

	tooBig := &Request{Limit: 101}
	assert.Error(t, tooBig.Validate())

	negative := &Request{Offset: -1}
	assert.Error(t, negative.Validate())

	badSort := &Request{Sort: []SortField{{Field: "title", Order: "sideways"}}}
	assert.Error(t, badSort.Validate())
}
