package ranking

import (
	"fmt"
	"strings"
	"time"

	"github.com/rx3lixir/search-service/internal/opensearch/models"
	"github.com/rx3lixir/search-service/pkg/logger"
)

// Минимальный итоговый счет: порядок сохраняется, ноль не достижим
const scoreFloor = 0.01

// Hit - один сырой результат движка на входе скоринга
type Hit struct {
	Doc       *models.Document
	BaseScore float64
}

// ScoredHit - результат скоринга одного документа
type ScoredHit struct {
	Doc           *models.Document
	BaseScore     float64
	AdjustedScore float64
	Factors       Factors
	Explanation   []string
}

// Service вычисляет релевантность документов. Состояния между вызовами
// нет: конфигурация приходит значением в каждый вызов, поэтому
// конкурентные запросы с разными профилями не влияют друг на друга.
type Service struct {
	log logger.Logger
	now func() time.Time
}

func NewService(log logger.Logger) *Service {
	return &Service{
		log: log,
		now: time.Now,
	}
}

// Score вычисляет семь факторов и итоговый счет документа.
// Чистая функция от (документ, запрос, контекст, конфиг).
func (s *Service) Score(hit Hit, query string, user *UserContext, cfg Config) ScoredHit {
	now := s.now()

	factors := Factors{
		TextRelevance:    textRelevance(hit.Doc, query),
		Popularity:       popularity(hit.Doc),
		Recency:          recency(hit.Doc, now),
		Authority:        authority(hit.Doc),
		UserPreference:   userPreference(hit.Doc, user),
		ClickThroughRate: clickThroughRate(hit.Doc),
		Completeness:     completeness(hit.Doc),
	}

	weighted := factors.TextRelevance*cfg.Weights.TextRelevance +
		factors.Popularity*cfg.Weights.Popularity +
		factors.Recency*cfg.Weights.Recency +
		factors.Authority*cfg.Weights.Authority +
		factors.UserPreference*cfg.Weights.UserPreference +
		factors.ClickThroughRate*cfg.Weights.ClickThroughRate +
		factors.Completeness*cfg.Weights.Completeness

	adjusted := hit.BaseScore * weighted

	adjusted *= matchBoost(hit.Doc, query, cfg.Boosts)
	adjusted *= qualityPenalty(hit.Doc, now, cfg.Penalties)

	if adjusted < scoreFloor {
		adjusted = scoreFloor
	}

	return ScoredHit{
		Doc:           hit.Doc,
		BaseScore:     hit.BaseScore,
		AdjustedScore: adjusted,
		Factors:       factors,
		Explanation:   explain(hit.BaseScore, adjusted, factors, cfg),
	}
}

// ScoreBatch обсчитывает пачку результатов. Каждый документ независим,
// кросс-документной нормализации нет.
func (s *Service) ScoreBatch(hits []Hit, query string, user *UserContext, cfg Config) []ScoredHit {
	scored := make([]ScoredHit, 0, len(hits))
	for _, hit := range hits {
		scored = append(scored, s.Score(hit, query, user, cfg))
	}

	s.log.Debug("Batch scoring completed",
		"hits", len(hits),
		"profile", cfg.Profile,
	)

	return scored
}

// matchBoost - множитель за особо ценные совпадения с запросом
func matchBoost(doc *models.Document, query string, boosts Boosts) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 1.0
	}

	title := strings.ToLower(doc.Title)
	switch {
	case title == q:
		return positiveOr(boosts.ExactMatch, 1.0)
	case strings.Contains(title, q):
		return positiveOr(boosts.TitleMatch, 1.0)
	case strings.Contains(strings.ToLower(doc.Description), q):
		return positiveOr(boosts.PhraseMatch, 1.0)
	}
	return 1.0
}

// qualityPenalty - понижающий множитель за проблемы качества
func qualityPenalty(doc *models.Document, now time.Time, penalties Penalties) float64 {
	multiplier := 1.0

	if doc.MetaBool("duplicate_content") {
		multiplier *= positiveOr(penalties.DuplicateContent, 1.0)
	}
	if doc.MetaBool("low_quality") {
		multiplier *= positiveOr(penalties.LowQuality, 1.0)
	}

	at := doc.UpdatedOrCreated()
	if !at.IsZero() && now.Sub(at).Hours()/24 > 730 {
		multiplier *= positiveOr(penalties.Outdated, 1.0)
	}

	return multiplier
}

func positiveOr(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}

// Пороги, при превышении которых фактор попадает в объяснение
const (
	explainTextRelevance  = 0.7
	explainPopularity     = 0.6
	explainRecency        = 0.8
	explainAuthority      = 0.7
	explainUserPreference = 0.6
	explainCTR            = 0.2
	explainCompleteness   = 0.8
)

// explain собирает человекочитаемые пояснения к счету.
// Только диагностика: в сам скоринг этот список не возвращается.
func explain(base, adjusted float64, f Factors, cfg Config) []string {
	lines := make([]string, 0, 9)

	lines = append(lines, fmt.Sprintf("base score %.4f (profile %s)", base, cfg.Profile))

	if f.TextRelevance > explainTextRelevance {
		lines = append(lines, fmt.Sprintf("strong text match (%.2f)", f.TextRelevance))
	}
	if f.Popularity > explainPopularity {
		lines = append(lines, fmt.Sprintf("popular document (%.2f)", f.Popularity))
	}
	if f.Recency > explainRecency {
		lines = append(lines, fmt.Sprintf("recently updated (%.2f)", f.Recency))
	}
	if f.Authority > explainAuthority {
		lines = append(lines, fmt.Sprintf("authoritative source (%.2f)", f.Authority))
	}
	if f.UserPreference > explainUserPreference {
		lines = append(lines, fmt.Sprintf("matches user preferences (%.2f)", f.UserPreference))
	}
	if f.ClickThroughRate > explainCTR {
		lines = append(lines, fmt.Sprintf("high click-through rate (%.2f)", f.ClickThroughRate))
	}
	if f.Completeness > explainCompleteness {
		lines = append(lines, fmt.Sprintf("complete document profile (%.2f)", f.Completeness))
	}

	lines = append(lines, fmt.Sprintf("final score %.4f", adjusted))

	return lines
}
