package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rx3lixir/search-service/internal/opensearch/client"
	"github.com/rx3lixir/search-service/internal/opensearch/models"
	"github.com/rx3lixir/search-service/pkg/errs"
	"github.com/rx3lixir/search-service/pkg/logger"
	"github.com/rx3lixir/search-service/pkg/metrics"
)

// Hit - один результат поиска с сырым счетом движка
type Hit struct {
	Doc        *models.Document
	Score      float64
	Highlights map[string][]string
}

// Result - результат выполнения поискового запроса
type Result struct {
	Hits       []Hit
	Total      int64
	MaxScore   *float64
	SearchTime string
}

type Searcher struct {
	client       *client.Client
	queryBuilder *QueryBuilder
	logger       logger.Logger
}

func NewSearcher(osClient *client.Client, queryBuilder *QueryBuilder, log logger.Logger) *Searcher {
	return &Searcher{
		client:       osClient,
		queryBuilder: queryBuilder,
		logger:       log,
	}
}

// Search выполняет поисковый запрос по всем коллекциям документов
func (s *Searcher) Search(ctx context.Context, req *Request) (*Result, error) {
	query := s.queryBuilder.BuildSearchQuery(req)

	queryBody, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	// Ограничиваем время вызова движка, чтобы медленный поиск
	// не подвешивал весь ответ
	ctx, cancel := context.WithTimeout(ctx, s.client.Timeout())
	defer cancel()

	s.logger.Debug("Executing search query",
		"query_text", req.Text,
		"index", s.client.SearchIndexPattern(),
		"from", req.Offset,
		"size", req.Limit,
	)

	start := time.Now()
	res, err := s.client.GetNativeClient().Search(
		s.client.GetNativeClient().Search.WithContext(ctx),
		s.client.GetNativeClient().Search.WithIndex(s.client.SearchIndexPattern()),
		s.client.GetNativeClient().Search.WithBody(bytes.NewReader(queryBody)),
		s.client.GetNativeClient().Search.WithTrackTotalHits(true),
	)
	searchTime := time.Since(start)
	metrics.RecordOpenSearchOperation("search", s.client.SearchIndexPattern(), metrics.StatusFromError(err), searchTime)

	if err != nil {
		return nil, errs.NewEngineUnavailable("search", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		s.logger.Error("Search query failed",
			"status", res.Status(),
			"error_body", string(body),
		)
		return nil, errs.NewEngineUnavailable("search", fmt.Errorf("status %s", res.Status()))
	}

	result, err := s.parseSearchResponse(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	result.SearchTime = searchTime.String()

	s.logger.Info("Search completed",
		"query", req.Text,
		"total_found", result.Total,
		"returned", len(result.Hits),
		"search_time", searchTime,
	)

	return result, nil
}

// Aggregate выполняет отдельный агрегационный запрос (size 0) с теми же
// must/filter клаузами, что и основной поиск. Возвращает сырые бакеты.
func (s *Searcher) Aggregate(ctx context.Context, req *Request, aggs map[string]any) (map[string]any, error) {
	if len(aggs) == 0 {
		return map[string]any{}, nil
	}

	query := s.queryBuilder.BuildSearchQuery(req)
	query["size"] = 0
	query["from"] = 0
	query["aggs"] = aggs
	delete(query, "highlight")
	delete(query, "sort")

	queryBody, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal aggregation query: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.client.Timeout())
	defer cancel()

	start := time.Now()
	res, err := s.client.GetNativeClient().Search(
		s.client.GetNativeClient().Search.WithContext(ctx),
		s.client.GetNativeClient().Search.WithIndex(s.client.SearchIndexPattern()),
		s.client.GetNativeClient().Search.WithBody(bytes.NewReader(queryBody)),
	)
	metrics.RecordOpenSearchOperation("aggregate", s.client.SearchIndexPattern(), metrics.StatusFromError(err), time.Since(start))
	if err != nil {
		return nil, errs.NewEngineUnavailable("aggregate", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errs.NewEngineUnavailable("aggregate", fmt.Errorf("status %s", res.Status()))
	}

	var response struct {
		Aggregations map[string]any `json:"aggregations"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation response: %w", err)
	}

	return response.Aggregations, nil
}

// Count возвращает только количество найденных документов
func (s *Searcher) Count(ctx context.Context, req *Request) (int64, error) {
	countReq := *req
	countReq.Offset = 0
	countReq.Limit = 0

	query := s.queryBuilder.BuildSearchQuery(&countReq)
	delete(query, "from")
	delete(query, "size")
	delete(query, "sort")
	delete(query, "highlight")

	queryBody, err := json.Marshal(query)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal count query: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.client.Timeout())
	defer cancel()

	start := time.Now()
	res, err := s.client.GetNativeClient().Count(
		s.client.GetNativeClient().Count.WithContext(ctx),
		s.client.GetNativeClient().Count.WithIndex(s.client.SearchIndexPattern()),
		s.client.GetNativeClient().Count.WithBody(bytes.NewReader(queryBody)),
	)
	metrics.RecordOpenSearchOperation("count", s.client.SearchIndexPattern(), metrics.StatusFromError(err), time.Since(start))
	if err != nil {
		return 0, errs.NewEngineUnavailable("count", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, errs.NewEngineUnavailable("count", fmt.Errorf("status %s", res.Status()))
	}

	var countResponse struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&countResponse); err != nil {
		return 0, fmt.Errorf("failed to decode count response: %w", err)
	}

	return countResponse.Count, nil
}

func (s *Searcher) parseSearchResponse(body io.Reader) (*Result, error) {
	var response struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			MaxScore *float64 `json:"max_score"`
			Hits     []struct {
				Source    models.Document     `json:"_source"`
				Score     *float64            `json:"_score"`
				Highlight map[string][]string `json:"highlight"`
			} `json:"hits"`
		} `json:"hits"`
	}

	bodyBytes, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(bodyBytes, &response); err != nil {
		s.logger.Error("Failed to parse engine response",
			"error", err,
			"response_body", string(bodyBytes),
		)
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]Hit, 0, len(response.Hits.Hits))
	for _, hit := range response.Hits.Hits {
		doc := hit.Source
		score := 0.0
		if hit.Score != nil {
			score = *hit.Score
		}
		hits = append(hits, Hit{
			Doc:        &doc,
			Score:      score,
			Highlights: hit.Highlight,
		})
	}

	return &Result{
		Hits:     hits,
		Total:    response.Hits.Total.Value,
		MaxScore: response.Hits.MaxScore,
	}, nil
}
