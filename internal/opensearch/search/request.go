package search

import (
	"strings"

	"github.com/rx3lixir/search-service/pkg/errs"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// SortField - одно поле сортировки
type SortField struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

// Request - структурированный поисковый запрос
type Request struct {
	// Поисковый текст; пустой текст означает match-all
	Text string `json:"text"`

	// Выбранные значения фасетов: имя фасета -> значения
	Filters map[string][]string `json:"filters,omitempty"`

	// Сортировка; пустой список - сортировка по умолчанию
	Sort []SortField `json:"sort,omitempty"`

	// Подсветка совпадений
	Highlight bool `json:"highlight"`

	// Запрошенные фасеты
	Facets []string `json:"facets,omitempty"`

	// Пагинация
	Limit  int `json:"limit"`
	Offset int `json:"offset"`

	// Идентификатор пользователя для персонализации
	UserID string `json:"user_id,omitempty"`
}

// Validate проверяет запрос и проставляет значения по умолчанию
func (r *Request) Validate() error {
	r.Text = strings.TrimSpace(r.Text)

	if r.Limit <= 0 {
		r.Limit = defaultLimit
	}
	if r.Limit > maxLimit {
		return errs.NewValidation("limit", "cannot exceed 100")
	}

	if r.Offset < 0 {
		return errs.NewValidation("offset", "cannot be negative")
	}

	for _, sf := range r.Sort {
		if sf.Field == "" {
			return errs.NewValidation("sort", "sort field is required")
		}
		if sf.Order != "" && sf.Order != "asc" && sf.Order != "desc" {
			return errs.NewValidation("sort", "order must be asc or desc")
		}
	}

	return nil
}
