package suggest

import (
	"context"
	"strings"

	"github.com/rx3lixir/search-service/internal/popular"
	"github.com/rx3lixir/search-service/pkg/logger"
)

// Фиксированный счет подсказок из популярных запросов
const popularScore = 0.8

// PopularSource - подсказки из кэша популярных запросов.
// К движку не ходит: фильтрует снимок кэша по вхождению префикса.
type PopularSource struct {
	cache *popular.Cache
	log   logger.Logger
}

func NewPopularSource(cache *popular.Cache, log logger.Logger) *PopularSource {
	return &PopularSource{
		cache: cache,
		log:   log,
	}
}

func (s *PopularSource) Name() string {
	return "popular"
}

func (s *PopularSource) Suggest(_ context.Context, req *Request) ([]Suggestion, error) {
	prefix := strings.ToLower(req.Prefix)

	var suggestions []Suggestion
	for _, stat := range s.cache.Queries() {
		if !strings.Contains(strings.ToLower(stat.Text), prefix) {
			continue
		}

		suggestions = append(suggestions, Suggestion{
			Text:   stat.Text,
			Source: SourcePopular,
			Score:  popularScore,
			Metadata: map[string]any{
				"search_count": stat.Count,
			},
		})

		if len(suggestions) >= req.Limit {
			break
		}
	}

	return suggestions, nil
}
