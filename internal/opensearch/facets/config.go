package facets

import (
	"github.com/rx3lixir/search-service/pkg/errs"
)

// Type - тип фасета
type Type string

const (
	TypeTerms     Type = "terms"
	TypeRange     Type = "range"
	TypeDateRange Type = "date_range"
	TypeHistogram Type = "histogram"
)

// Порядок бакетов внутри фасета
const (
	OrderCount = "count" // по количеству документов, убывание
	OrderKey   = "key"   // по ключу, возрастание
)

// Range - один настроенный диапазон фасета, границы [From, To)
type Range struct {
	Key  string   `json:"key" mapstructure:"key"`
	From *float64 `json:"from,omitempty" mapstructure:"from"`
	To   *float64 `json:"to,omitempty" mapstructure:"to"`
}

// DateRange - диапазон для date_range фасетов, границы в формате date math
type DateRange struct {
	Key  string `json:"key" mapstructure:"key"`
	From string `json:"from,omitempty" mapstructure:"from"`
	To   string `json:"to,omitempty" mapstructure:"to"`
}

// Config описывает один фасет
type Config struct {
	Field       string      `json:"field" mapstructure:"field"`
	Type        Type        `json:"type" mapstructure:"type"`
	Size        int         `json:"size,omitempty" mapstructure:"size"`
	Ranges      []Range     `json:"ranges,omitempty" mapstructure:"ranges"`
	DateRanges  []DateRange `json:"date_ranges,omitempty" mapstructure:"date_ranges"`
	Interval    float64     `json:"interval,omitempty" mapstructure:"interval"`
	DisplayName string      `json:"display_name" mapstructure:"display_name"`
	Order       string      `json:"order,omitempty" mapstructure:"order"`
}

// Validate проверяет корректность конфига фасета
func (c *Config) Validate() error {
	if c.Field == "" {
		return errs.NewConfiguration("facet", "field is required")
	}

	switch c.Type {
	case TypeTerms:
		// ок
	case TypeRange:
		if len(c.Ranges) == 0 {
			return errs.NewConfiguration("facet "+c.Field, "range facet requires non-empty ranges")
		}
	case TypeDateRange:
		if len(c.DateRanges) == 0 {
			return errs.NewConfiguration("facet "+c.Field, "date_range facet requires non-empty ranges")
		}
	case TypeHistogram:
		if c.Interval <= 0 {
			return errs.NewConfiguration("facet "+c.Field, "histogram facet requires positive interval")
		}
	default:
		return errs.NewConfiguration("facet "+c.Field, "unknown facet type: "+string(c.Type))
	}

	if c.Order != "" && c.Order != OrderCount && c.Order != OrderKey {
		return errs.NewConfiguration("facet "+c.Field, "order must be count or key")
	}

	return nil
}

// SizeOrDefault возвращает размер terms агрегации
func (c *Config) SizeOrDefault() int {
	if c.Size > 0 {
		return c.Size
	}
	return 20
}

// OrderOrDefault возвращает порядок бакетов
func (c *Config) OrderOrDefault() string {
	if c.Order != "" {
		return c.Order
	}
	return OrderCount
}

// RangeByKey находит настроенный диапазон по ключу
func (c *Config) RangeByKey(key string) (Range, bool) {
	for _, r := range c.Ranges {
		if r.Key == key {
			return r, true
		}
	}
	return Range{}, false
}

// DateRangeByKey находит настроенный date-диапазон по ключу
func (c *Config) DateRangeByKey(key string) (DateRange, bool) {
	for _, r := range c.DateRanges {
		if r.Key == key {
			return r, true
		}
	}
	return DateRange{}, false
}
