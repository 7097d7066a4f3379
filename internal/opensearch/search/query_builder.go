package search

import (
	"strconv"
	"strings"

	"github.com/rx3lixir/search-service/internal/opensearch/facets"
	"github.com/rx3lixir/search-service/pkg/logger"
)

// Веса полей основного multi_match запроса
var searchFields = []string{
	"title^3",
	"description^2",
	"content^1",
	"tags^2",
	"category^1.5",
	"author^1.2",
}

// Текстовые поля, сортируемые через keyword подполе
var keywordSortFields = map[string]bool{
	"title":    true,
	"category": true,
	"type":     true,
	"author":   true,
}

type QueryBuilder struct {
	facets *facets.Registry
	log    logger.Logger
}

func NewQueryBuilder(facetRegistry *facets.Registry, log logger.Logger) *QueryBuilder {
	return &QueryBuilder{
		facets: facetRegistry,
		log:    log,
	}
}

// BuildSearchQuery строит полный поисковый запрос движка
func (qb *QueryBuilder) BuildSearchQuery(req *Request) map[string]any {
	query := map[string]any{
		"from": req.Offset,
		"size": req.Limit,
	}

	boolQuery := map[string]any{}

	// Полнотекстовая часть; пустой текст - match_all, ошибкой не является
	if req.Text != "" {
		boolQuery["must"] = []any{qb.buildTextQuery(req.Text)}
	} else {
		boolQuery["must"] = []any{map[string]any{"match_all": map[string]any{}}}
	}

	if filterQueries := qb.buildFilters(req.Filters); len(filterQueries) > 0 {
		boolQuery["filter"] = filterQueries
	}

	query["query"] = map[string]any{"bool": boolQuery}
	query["sort"] = qb.buildSort(req)

	if req.Highlight {
		query["highlight"] = buildHighlight()
	}

	return query
}

// buildTextQuery - взвешенный multi_match по всем полям плюс should
// клаузы с match_phrase, чтобы буквальные вхождения фразы обгоняли
// совпадения по отдельным токенам
func (qb *QueryBuilder) buildTextQuery(text string) map[string]any {
	cleanQuery := strings.TrimSpace(text)

	return map[string]any{
		"bool": map[string]any{
			"must": []any{
				map[string]any{
					"multi_match": map[string]any{
						"query":     cleanQuery,
						"fields":    searchFields,
						"type":      "best_fields",
						"fuzziness": fuzzinessFor(cleanQuery),
					},
				},
			},
			"should": []any{
				map[string]any{
					"match_phrase": map[string]any{
						"title": map[string]any{
							"query": cleanQuery,
							"boost": 5.0,
						},
					},
				},
				map[string]any{
					"match_phrase": map[string]any{
						"description": map[string]any{
							"query": cleanQuery,
							"boost": 3.0,
						},
					},
				},
			},
		},
	}
}

// fuzzinessFor подбирает допуск опечаток по длине самого короткого
// терма: короткие термы с fuzziness дают слишком много шума
func fuzzinessFor(text string) string {
	minLen := 0
	for _, term := range strings.Fields(text) {
		if minLen == 0 || len(term) < minLen {
			minLen = len(term)
		}
	}

	switch {
	case minLen <= 3:
		return "0"
	case minLen <= 5:
		return "1"
	default:
		return "AUTO"
	}
}

// buildFilters переводит выбранные значения фасетов в filter клаузы.
// Неизвестное имя фасета пропускается с предупреждением.
func (qb *QueryBuilder) buildFilters(filters map[string][]string) []any {
	if len(filters) == 0 {
		return nil
	}

	var filterQueries []any

	for name, values := range filters {
		if len(values) == 0 {
			continue
		}

		cfg, ok := qb.facets.Get(name)
		if !ok {
			qb.log.Warn("Unknown facet in filters, ignoring", "facet", name)
			continue
		}

		if clause := buildFilterClause(&cfg, values); clause != nil {
			filterQueries = append(filterQueries, clause)
		}
	}

	return filterQueries
}

func buildFilterClause(cfg *facets.Config, values []string) map[string]any {
	switch cfg.Type {
	case facets.TypeTerms:
		return map[string]any{
			"terms": map[string]any{
				cfg.Field + ".keyword": values,
			},
		}

	case facets.TypeRange:
		// Несколько выбранных диапазонов объединяются через OR
		var should []any
		for _, key := range values {
			rng, ok := cfg.RangeByKey(key)
			if !ok {
				continue
			}
			bounds := map[string]any{}
			if rng.From != nil {
				bounds["gte"] = *rng.From
			}
			if rng.To != nil {
				bounds["lt"] = *rng.To
			}
			should = append(should, map[string]any{
				"range": map[string]any{cfg.Field: bounds},
			})
		}
		if len(should) == 0 {
			return nil
		}
		return map[string]any{
			"bool": map[string]any{
				"should":               should,
				"minimum_should_match": 1,
			},
		}

	case facets.TypeDateRange:
		var should []any
		for _, key := range values {
			rng, ok := cfg.DateRangeByKey(key)
			if !ok {
				continue
			}
			bounds := map[string]any{}
			if rng.From != "" {
				bounds["gte"] = rng.From
			}
			if rng.To != "" {
				bounds["lt"] = rng.To
			}
			should = append(should, map[string]any{
				"range": map[string]any{cfg.Field: bounds},
			})
		}
		if len(should) == 0 {
			return nil
		}
		return map[string]any{
			"bool": map[string]any{
				"should":               should,
				"minimum_should_match": 1,
			},
		}

	case facets.TypeHistogram:
		// Ключ бакета гистограммы - нижняя граница; документ внутри
		// бакета имеет любое значение из [key, key+interval)
		var should []any
		for _, key := range values {
			lower, err := strconv.ParseFloat(key, 64)
			if err != nil {
				continue
			}
			should = append(should, map[string]any{
				"range": map[string]any{cfg.Field: map[string]any{
					"gte": lower,
					"lt":  lower + cfg.Interval,
				}},
			})
		}
		if len(should) == 0 {
			return nil
		}
		return map[string]any{
			"bool": map[string]any{
				"should":               should,
				"minimum_should_match": 1,
			},
		}
	}

	return nil
}

// buildSort - явная сортировка запроса либо дефолтная:
// релевантность, затем свежесть
func (qb *QueryBuilder) buildSort(req *Request) []any {
	if len(req.Sort) == 0 {
		return []any{
			map[string]any{"_score": map[string]any{"order": "desc"}},
			map[string]any{"created_at": map[string]any{"order": "desc"}},
		}
	}

	sortClauses := make([]any, 0, len(req.Sort))
	for _, sf := range req.Sort {
		field := sf.Field
		if field == "score" {
			field = "_score"
		} else if keywordSortFields[field] {
			field += ".keyword"
		}

		order := sf.Order
		if order == "" {
			order = "desc"
		}

		sortClauses = append(sortClauses, map[string]any{
			field: map[string]any{"order": order},
		})
	}

	return sortClauses
}

// buildHighlight - окна подсветки по полям
func buildHighlight() map[string]any {
	return map[string]any{
		"fields": map[string]any{
			"title": map[string]any{
				"fragment_size":       150,
				"number_of_fragments": 1,
			},
			"description": map[string]any{
				"fragment_size":       200,
				"number_of_fragments": 2,
			},
			"content": map[string]any{
				"fragment_size":       150,
				"number_of_fragments": 3,
			},
		},
	}
}
