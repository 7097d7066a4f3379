package suggest

import (
	"strings"

	"github.com/rx3lixir/search-service/internal/opensearch/models"
	"github.com/rx3lixir/search-service/internal/opensearch/ranking"
	"github.com/rx3lixir/search-service/pkg/errs"
)

// SourceType - происхождение подсказки
type SourceType string

const (
	SourceInstitution SourceType = "institution"
	SourceProgram     SourceType = "program"
	SourceFunding     SourceType = "funding"
	SourcePopular     SourceType = "popularQuery"
	SourceSpelling    SourceType = "spellingCorrection"
)

// Приоритет источников при равном счете: сущности дороже популярных
// запросов, исправления опечаток всегда последние
var sourcePriority = map[SourceType]int{
	SourceInstitution: 5,
	SourceProgram:     4,
	SourceFunding:     3,
	SourcePopular:     2,
	SourceSpelling:    1,
}

// SourceForDocType возвращает тип источника для типа документа
func SourceForDocType(docType string) SourceType {
	switch docType {
	case models.TypeInstitution:
		return SourceInstitution
	case models.TypeProgram:
		return SourceProgram
	case models.TypeFunding:
		return SourceFunding
	}
	return SourceType(docType)
}

// Suggestion - каноническая форма подсказки. Каждый источник приводит
// свой ответ к ней до слияния, чтобы алгоритм слияния не знал про
// особенности источников.
type Suggestion struct {
	Text      string         `json:"text"`
	Source    SourceType     `json:"type"`
	Score     float64        `json:"score"`
	Highlight string         `json:"highlight,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Request - запрос автодополнения
type Request struct {
	Prefix         string
	Limit          int
	Types          []string
	Fuzzy          bool
	IncludePopular bool
	User           *ranking.UserContext
}

// Validate проверяет запрос и проставляет значения по умолчанию
func (r *Request) Validate() error {
	r.Prefix = strings.TrimSpace(r.Prefix)

	if r.Prefix == "" {
		return errs.NewValidation("prefix", "prefix is required")
	}
	if len(r.Prefix) < 2 {
		return errs.NewValidation("prefix", "prefix must be at least 2 characters long")
	}

	if r.Limit <= 0 {
		r.Limit = 10
	}
	if r.Limit > 50 {
		return errs.NewValidation("limit", "cannot exceed 50")
	}

	if len(r.Types) == 0 {
		r.Types = []string{models.TypeInstitution, models.TypeProgram, models.TypeFunding}
	}
	for _, t := range r.Types {
		if !models.IsKnownType(t) {
			return errs.NewValidation("types", "unknown document type: "+t)
		}
	}

	return nil
}

// Response - ответ автодополнения
type Response struct {
	Suggestions      []Suggestion `json:"suggestions"`
	Prefix           string       `json:"prefix"`
	ProcessingTimeMs int64        `json:"processing_time_ms"`
}
