package search

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rx3lixir/search-service/internal/db"
	"github.com/rx3lixir/search-service/internal/opensearch/facets"
	"github.com/rx3lixir/search-service/internal/opensearch/ranking"
	ossearch "github.com/rx3lixir/search-service/internal/opensearch/search"
	"github.com/rx3lixir/search-service/internal/opensearch/suggest"
	"github.com/rx3lixir/search-service/internal/popular"
	"github.com/rx3lixir/search-service/pkg/logger"
	"github.com/rx3lixir/search-service/pkg/metrics"
)

const analyticsBudget = 2 * time.Second

// Service - оркестратор поискового слоя: строит запрос, зовет движок,
// пересчитывает релевантность, собирает фасеты и ответ.
type Service struct {
	searcher  *ossearch.Searcher
	facets    *facets.Registry
	ranker    *ranking.Service
	suggester *suggest.Engine
	popular   *popular.Store
	analytics db.SearchStore
	log       logger.Logger
}

func NewService(
	searcher *ossearch.Searcher,
	facetRegistry *facets.Registry,
	ranker *ranking.Service,
	suggester *suggest.Engine,
	popularStore *popular.Store,
	analytics db.SearchStore,
	log logger.Logger,
) *Service {
	return &Service{
		searcher:  searcher,
		facets:    facetRegistry,
		ranker:    ranker,
		suggester: suggester,
		popular:   popularStore,
		analytics: analytics,
		log:       log,
	}
}

// Search выполняет поисковый запрос с профилем ранжирования.
// Конфигурация профиля передается значением в каждый вызов скоринга:
// конкурентные запросы с разными профилями не пересекаются.
func (s *Service) Search(ctx context.Context, req *ossearch.Request, profile string, user *ranking.UserContext) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rankCfg, err := ranking.ConfigForProfile(profile)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	searchID := newSearchID()

	var (
		result   *ossearch.Result
		rawAggs  map[string]any
		degraded bool
	)

	// Поиск и агрегации идут параллельно; каждый деградирует
	// независимо, а не валит весь ответ
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var searchErr error
		result, searchErr = s.searcher.Search(gctx, req)
		if searchErr != nil {
			s.log.Error("Search call failed, degrading to empty result",
				"search_id", searchID,
				"error", searchErr,
			)
			result = &ossearch.Result{}
			degraded = true
		}
		return nil
	})

	if len(req.Facets) > 0 {
		g.Go(func() error {
			aggs := s.facets.BuildAggregations(req.Facets)
			var aggErr error
			rawAggs, aggErr = s.searcher.Aggregate(gctx, req, aggs)
			if aggErr != nil {
				s.log.Warn("Aggregation call failed, returning response without facets",
					"search_id", searchID,
					"error", aggErr,
				)
				rawAggs = nil
			}
			return nil
		})
	}

	// Ошибки уже обработаны внутри горутин
	_ = g.Wait()

	response := s.assemble(req, result, rawAggs, rankCfg, user)
	response.SearchID = searchID
	response.ProcessingTimeMs = time.Since(start).Milliseconds()

	// При пустой или деградировавшей выдаче подсказываем альтернативы
	if (degraded || response.Total == 0) && req.Text != "" {
		response.Suggestions = s.alternativeQueries(ctx, req.Text)
	}

	metrics.RecordSearchRequest(profile, response.Total, time.Since(start))

	// Аналитика и популярные запросы - fire-and-forget
	s.emitAnalytics(searchID, req, response, profile)

	return response, nil
}

// Suggest проксирует запрос автодополнения в движок подсказок
func (s *Service) Suggest(ctx context.Context, req *suggest.Request) (*suggest.Response, error) {
	start := time.Now()

	response, err := s.suggester.Suggest(ctx, req)
	if err != nil {
		return nil, err
	}

	metrics.RecordSuggestRequest(len(response.Suggestions), time.Since(start))
	return response, nil
}

// Count возвращает количество документов без загрузки результатов
func (s *Service) Count(ctx context.Context, req *ossearch.Request) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	return s.searcher.Count(ctx, req)
}

// FacetNames возвращает имена сконфигурированных фасетов
func (s *Service) FacetNames() []string {
	return s.facets.Names()
}

// AddFacetConfig - админский upsert конфига фасета
func (s *Service) AddFacetConfig(ctx context.Context, name string, cfg facets.Config) error {
	return s.facets.Add(ctx, name, cfg)
}

// RemoveFacetConfig - админское удаление конфига фасета
func (s *Service) RemoveFacetConfig(ctx context.Context, name string) (bool, error) {
	return s.facets.Remove(ctx, name)
}

// assemble собирает ответ: пересчет релевантности и фасеты
func (s *Service) assemble(req *ossearch.Request, result *ossearch.Result, rawAggs map[string]any, rankCfg ranking.Config, user *ranking.UserContext) *Response {
	hits := make([]ranking.Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		hits = append(hits, ranking.Hit{Doc: h.Doc, BaseScore: h.Score})
	}

	scored := s.ranker.ScoreBatch(hits, req.Text, user, rankCfg)

	documents := make([]DocumentResult, 0, len(scored))
	for i, sh := range scored {
		doc := DocumentResult{
			ID:          sh.Doc.ID,
			Type:        sh.Doc.Type,
			Title:       sh.Doc.Title,
			Description: sh.Doc.Description,
			Content:     sh.Doc.Content,
			Score:       sh.AdjustedScore,
			Highlights:  result.Hits[i].Highlights,
			Metadata:    sh.Doc.Metadata,
			URL:         sh.Doc.URL,
			ImageURL:    sh.Doc.ImageURL,
			Tags:        sh.Doc.Tags,
			Category:    sh.Doc.Category,
			Author:      sh.Doc.Author,
			CreatedAt:   sh.Doc.CreatedAt,
			UpdatedAt:   sh.Doc.UpdatedAt,
			Explanation: sh.Explanation,
		}
		factors := sh.Factors
		doc.Factors = &factors
		documents = append(documents, doc)
	}

	response := &Response{
		Total:     result.Total,
		Documents: documents,
	}

	if rawAggs != nil {
		response.Facets = s.facets.ParseAggregations(rawAggs, req.Facets, req.Filters)
	}

	return response
}

// alternativeQueries предлагает варианты запроса при пустой выдаче
func (s *Service) alternativeQueries(ctx context.Context, text string) []string {
	suggestReq := &suggest.Request{
		Prefix:         text,
		Limit:          5,
		Fuzzy:          true,
		IncludePopular: true,
	}

	response, err := s.suggester.Suggest(ctx, suggestReq)
	if err != nil {
		s.log.Debug("Alternative query lookup failed", "error", err)
		return nil
	}

	alternatives := make([]string, 0, len(response.Suggestions))
	for _, sg := range response.Suggestions {
		alternatives = append(alternatives, sg.Text)
	}
	return alternatives
}

// emitAnalytics отправляет событие поиска и счетчик популярности.
// Ошибки только логируются: аналитика не влияет на ответ.
func (s *Service) emitAnalytics(searchID string, req *ossearch.Request, response *Response, profile string) {
	if s.popular != nil && req.Text != "" {
		go s.popular.RecordQuery(req.Text)
	}

	if s.analytics == nil {
		return
	}

	event := &db.SearchEvent{
		SearchID: searchID,
		UserID:   req.UserID,
		Query:    req.Text,
		Total:    response.Total,
		TookMs:   response.ProcessingTimeMs,
		Profile:  profile,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), analyticsBudget)
		defer cancel()

		if err := s.analytics.InsertSearchEvent(ctx, event); err != nil {
			s.log.Warn("Failed to record search event", "search_id", searchID, "error", err)
		}
	}()
}

func newSearchID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(buf)
}
