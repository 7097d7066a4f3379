package search

import (
	"time"

	"github.com/rx3lixir/search-service/internal/opensearch/facets"
	"github.com/rx3lixir/search-service/internal/opensearch/ranking"
)

// DocumentResult - один документ в поисковой выдаче
type DocumentResult struct {
	ID          string              `json:"id"`
	Type        string              `json:"type"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Content     string              `json:"content,omitempty"`
	Score       float64             `json:"score"`
	Highlights  map[string][]string `json:"highlights,omitempty"`
	Metadata    map[string]any      `json:"metadata,omitempty"`
	URL         string              `json:"url,omitempty"`
	ImageURL    string              `json:"image_url,omitempty"`
	Tags        []string            `json:"tags"`
	Category    string              `json:"category"`
	Author      string              `json:"author,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   *time.Time          `json:"updated_at,omitempty"`

	// Диагностика ранжирования; в сам скоринг не возвращается
	Factors     *ranking.Factors `json:"factors,omitempty"`
	Explanation []string         `json:"explanation,omitempty"`
}

// Response - полный ответ поиска
type Response struct {
	Total            int64            `json:"total"`
	Documents        []DocumentResult `json:"documents"`
	Facets           []facets.Facet   `json:"facets,omitempty"`
	Suggestions      []string         `json:"suggestions,omitempty"`
	ProcessingTimeMs int64            `json:"processing_time_ms"`
	SearchID         string           `json:"search_id"`
}
