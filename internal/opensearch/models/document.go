package models

import (
	"time"
)

// Типы документов, известные поисковому слою
const (
	TypeInstitution = "institution"
	TypeProgram     = "program"
	TypeFunding     = "funding"
	TypeContentItem = "contentItem"
	TypeApplication = "applicationRecord"
)

// AllTypes возвращает все известные типы документов
func AllTypes() []string {
	return []string{TypeInstitution, TypeProgram, TypeFunding, TypeContentItem, TypeApplication}
}

// IsKnownType проверяет, что тип документа известен слою поиска
func IsKnownType(docType string) bool {
	switch docType {
	case TypeInstitution, TypeProgram, TypeFunding, TypeContentItem, TypeApplication:
		return true
	}
	return false
}

// Document - общий конверт документа в поисковом индексе.
// Типоспецифичные поля вынесены в отдельные расширения (ровно одно
// заполнено в зависимости от Type), чтобы не возить нетипизированный
// мешок свойств.
type Document struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Content     string         `json:"content,omitempty"`
	Tags        []string       `json:"tags"`
	Category    string         `json:"category"`
	Author      string         `json:"author,omitempty"`
	URL         string         `json:"url,omitempty"`
	ImageURL    string         `json:"image_url,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   *time.Time     `json:"updated_at,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`

	// Счетчики вовлеченности, которые использует ранжирование
	ViewCount  int64 `json:"view_count,omitempty"`
	LikeCount  int64 `json:"like_count,omitempty"`
	ShareCount int64 `json:"share_count,omitempty"`

	// Типоспецифичные расширения
	Institution *InstitutionExt `json:"institution,omitempty"`
	Program     *ProgramExt     `json:"program,omitempty"`
	Funding     *FundingExt     `json:"funding,omitempty"`
	ContentItem *ContentExt     `json:"content_item,omitempty"`
	Application *ApplicationExt `json:"application,omitempty"`
}

// PrepareForIndex подготавливает документ для индексации с completion полями
func (d *Document) PrepareForIndex() map[string]any {
	doc := map[string]any{
		"id":          d.ID,
		"type":        d.Type,
		"title":       d.Title,
		"description": d.Description,
		"content":     d.Content,
		"tags":        d.Tags,
		"category":    d.Category,
		"author":      d.Author,
		"url":         d.URL,
		"image_url":   d.ImageURL,
		"created_at":  d.CreatedAt,
		"updated_at":  d.UpdatedAt,
		"metadata":    d.Metadata,
		"view_count":  d.ViewCount,
		"like_count":  d.LikeCount,
		"share_count": d.ShareCount,
	}

	// Данные для completion suggester: заголовок с весом по популярности
	weight := 1 + d.ViewCount/1000
	if weight > 100 {
		weight = 100
	}
	doc["title_completion"] = map[string]any{
		"input":  []string{d.Title},
		"weight": weight,
	}

	switch d.Type {
	case TypeInstitution:
		if d.Institution != nil {
			doc["institution"] = d.Institution
		}
	case TypeProgram:
		if d.Program != nil {
			doc["program"] = d.Program
		}
	case TypeFunding:
		if d.Funding != nil {
			doc["funding"] = d.Funding
		}
	case TypeContentItem:
		if d.ContentItem != nil {
			doc["content_item"] = d.ContentItem
		}
	case TypeApplication:
		if d.Application != nil {
			doc["application"] = d.Application
		}
	}

	return doc
}

// UpdatedOrCreated возвращает самую свежую из дат документа
func (d *Document) UpdatedOrCreated() time.Time {
	if d.UpdatedAt != nil && !d.UpdatedAt.IsZero() {
		return *d.UpdatedAt
	}
	return d.CreatedAt
}

// MetaString достает строковое значение из metadata
func (d *Document) MetaString(key string) string {
	if d.Metadata == nil {
		return ""
	}
	if v, ok := d.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// MetaFloat достает числовое значение из metadata (json числа приходят как float64)
func (d *Document) MetaFloat(key string) (float64, bool) {
	if d.Metadata == nil {
		return 0, false
	}
	switch v := d.Metadata[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// MetaBool достает булево значение из metadata
func (d *Document) MetaBool(key string) bool {
	if d.Metadata == nil {
		return false
	}
	if v, ok := d.Metadata[key].(bool); ok {
		return v
	}
	return false
}
