package suggest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rx3lixir/search-service/internal/opensearch/ranking"
	"github.com/rx3lixir/search-service/pkg/logger"
)

// Разница счетов, при которой подсказки считаются равными и порядок
// решает приоритет источника
const tieEpsilon = 0.1

// Source - один источник подсказок
type Source interface {
	Name() string
	Suggest(ctx context.Context, req *Request) ([]Suggestion, error)
}

// Engine опрашивает источники подсказок, сливает и ранжирует результат.
// Источники опрашиваются конкурентно; упавший источник логируется
// и дает ноль подсказок, не ломая весь ответ.
type Engine struct {
	sources  func(req *Request) []Source
	spelling Source
	log      logger.Logger
}

// NewEngine собирает движок подсказок. completionFor отдает completion
// источник для типа документа, popular может быть nil.
func NewEngine(completionFor func(docType string) Source, popular Source, spelling Source, log logger.Logger) *Engine {
	return &Engine{
		sources: func(req *Request) []Source {
			var sources []Source
			for _, docType := range req.Types {
				if src := completionFor(docType); src != nil {
					sources = append(sources, src)
				}
			}
			if req.IncludePopular && popular != nil {
				sources = append(sources, popular)
			}
			return sources
		},
		spelling: spelling,
		log:      log,
	}
}

// Suggest выполняет полный цикл: fan-out, слияние, ранжирование
func (e *Engine) Suggest(ctx context.Context, req *Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	merged := e.collect(ctx, req, e.sources(req))

	// Исправления опечаток подключаются только когда остальные
	// источники дали меньше половины запрошенного
	if len(merged) < req.Limit/2 && e.spelling != nil {
		corrections := e.callSource(ctx, e.spelling, req)
		merged = dedupe(append(merged, corrections...))
	}

	sortSuggestions(merged)

	if req.User != nil {
		merged = rerankForUser(merged, req.User)
	}

	if len(merged) > req.Limit {
		merged = merged[:req.Limit]
	}

	for i := range merged {
		merged[i].Highlight = highlightPrefix(merged[i].Text, req.Prefix)
	}

	e.log.Info("Suggestions assembled",
		"prefix", req.Prefix,
		"count", len(merged),
		"took", time.Since(start),
	)

	return &Response{
		Suggestions:      merged,
		Prefix:           req.Prefix,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

// collect конкурентно опрашивает источники и сливает их ответы
func (e *Engine) collect(ctx context.Context, req *Request, sources []Source) []Suggestion {
	results := make([][]Suggestion, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			results[i] = e.callSource(ctx, src, req)
		}(i, src)
	}
	wg.Wait()

	var all []Suggestion
	for _, batch := range results {
		all = append(all, batch...)
	}

	return dedupe(all)
}

// callSource зовет один источник, изолируя его ошибку
func (e *Engine) callSource(ctx context.Context, src Source, req *Request) []Suggestion {
	suggestions, err := src.Suggest(ctx, req)
	if err != nil {
		e.log.Warn("Suggestion source failed, contributing nothing",
			"source", src.Name(),
			"error", err,
		)
		return nil
	}
	return suggestions
}

// dedupe схлопывает подсказки с одинаковым текстом без учета регистра.
// Остается вариант с наибольшим счетом; при равном счете - более
// приоритетный источник.
func dedupe(suggestions []Suggestion) []Suggestion {
	best := make(map[string]int, len(suggestions))
	result := make([]Suggestion, 0, len(suggestions))

	for _, s := range suggestions {
		key := strings.ToLower(s.Text)
		idx, seen := best[key]
		if !seen {
			best[key] = len(result)
			result = append(result, s)
			continue
		}

		kept := result[idx]
		if s.Score > kept.Score ||
			(s.Score == kept.Score && sourcePriority[s.Source] > sourcePriority[kept.Source]) {
			result[idx] = s
		}
	}

	return result
}

// sortSuggestions упорядочивает по счету; близкие счета разводит
// фиксированный приоритет источников
func sortSuggestions(suggestions []Suggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]

		delta := a.Score - b.Score
		if delta < tieEpsilon && delta > -tieEpsilon {
			if sourcePriority[a.Source] != sourcePriority[b.Source] {
				return sourcePriority[a.Source] > sourcePriority[b.Source]
			}
		}
		return a.Score > b.Score
	})
}

// rerankForUser поднимает подсказки, близкие контексту пользователя
func rerankForUser(suggestions []Suggestion, user *ranking.UserContext) []Suggestion {
	for i := range suggestions {
		s := &suggestions[i]
		text := strings.ToLower(s.Text)

		for _, pref := range user.Preferences {
			if pref != "" && strings.Contains(text, strings.ToLower(pref)) {
				s.Score += 0.2
			}
		}

		if user.UserType != "" && typeMatchesUser(s.Source, user.UserType) {
			s.Score += 0.1
		}

		if user.Location != "" && s.Metadata != nil {
			if loc, ok := s.Metadata["location"].(string); ok {
				if strings.Contains(strings.ToLower(loc), strings.ToLower(user.Location)) {
					s.Score += 0.15
				}
			}
		}

		if s.Score > 1.0 {
			s.Score = 1.0
		}
	}

	sortSuggestions(suggestions)
	return suggestions
}

// typeMatchesUser - грубое соответствие типа подсказки типу пользователя
func typeMatchesUser(source SourceType, userType string) bool {
	switch strings.ToLower(userType) {
	case "student", "applicant":
		return source == SourceProgram || source == SourceInstitution
	case "researcher":
		return source == SourceFunding
	}
	return false
}

// highlightPrefix оборачивает первое вхождение префикса в теге em
func highlightPrefix(text, prefix string) string {
	idx := strings.Index(strings.ToLower(text), strings.ToLower(prefix))
	if idx < 0 {
		return ""
	}
	return text[:idx] + "<em>" + text[idx:idx+len(prefix)] + "</em>" + text[idx+len(prefix):]
}
