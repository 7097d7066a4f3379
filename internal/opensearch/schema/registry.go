package schema

import (
	"sync"

	"github.com/rx3lixir/search-service/internal/opensearch/models"
	"github.com/rx3lixir/search-service/pkg/errs"
)

// FieldOptions описывает, как поле участвует в поиске
type FieldOptions struct {
	Searchable bool
	Sortable   bool
	Suggest    bool
}

// FieldSpec - набор полей типа документа
type FieldSpec map[string]FieldOptions

// Поля, обязательные для любого типа документа
var requiredFields = []string{"title", "tags", "category"}

// Registry хранит схемы полей по типам документов.
// Читается на каждый запрос, мутируется только при старте/админом.
type Registry struct {
	mu    sync.RWMutex
	types map[string]FieldSpec
}

func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]FieldSpec),
	}
}

// NewDefaultRegistry возвращает реестр, заполненный схемами всех
// известных типов документов
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, docType := range models.AllTypes() {
		spec := defaultSpec()
		for field, opts := range extensionSpec(docType) {
			spec[field] = opts
		}
		// У заявок подсказки не нужны: это служебные записи
		if docType == models.TypeApplication {
			spec["title"] = FieldOptions{Searchable: true, Sortable: true}
		}
		// RegisterType не может упасть на дефолтной схеме
		_ = r.RegisterType(docType, spec)
	}
	return r
}

// extensionSpec - типоспецифичные поля, по которым строятся фасеты и сортировка
func extensionSpec(docType string) FieldSpec {
	switch docType {
	case models.TypeInstitution:
		return FieldSpec{
			"institution.tuition":         {Sortable: true},
			"institution.ranking":         {Sortable: true},
			"institution.acceptance_rate": {Sortable: true},
			"institution.country":         {Searchable: true, Sortable: true},
		}
	case models.TypeProgram:
		return FieldSpec{
			"program.tuition":         {Sortable: true},
			"program.degree":          {Searchable: true, Sortable: true},
			"program.duration_months": {Sortable: true},
		}
	case models.TypeFunding:
		return FieldSpec{
			"funding.amount":   {Sortable: true},
			"funding.deadline": {Sortable: true},
			"funding.provider": {Searchable: true},
		}
	case models.TypeContentItem:
		return FieldSpec{
			"content_item.format": {Sortable: true},
		}
	case models.TypeApplication:
		return FieldSpec{
			"application.status":   {Sortable: true},
			"application.deadline": {Sortable: true},
		}
	}
	return nil
}

func defaultSpec() FieldSpec {
	return FieldSpec{
		"type":        {Sortable: true},
		"title":       {Searchable: true, Sortable: true, Suggest: true},
		"description": {Searchable: true},
		"content":     {Searchable: true},
		"tags":        {Searchable: true},
		"category":    {Searchable: true, Sortable: true},
		"author":      {Searchable: true},
		"created_at":  {Sortable: true},
		"updated_at":  {Sortable: true},
	}
}

// RegisterType регистрирует схему полей для типа документа.
// Схема обязана содержать title, tags и category.
func (r *Registry) RegisterType(docType string, spec FieldSpec) error {
	if docType == "" {
		return errs.NewConfiguration("schema", "document type is empty")
	}

	for _, field := range requiredFields {
		if _, ok := spec[field]; !ok {
			return errs.NewConfiguration("schema", "missing required field: "+field)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	copied := make(FieldSpec, len(spec))
	for k, v := range spec {
		copied[k] = v
	}
	r.types[docType] = copied

	return nil
}

// Schema возвращает схему полей для типа документа
func (r *Registry) Schema(docType string) (FieldSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.types[docType]
	if !ok {
		return nil, errs.NewConfiguration("schema", "unknown document type: "+docType)
	}

	copied := make(FieldSpec, len(spec))
	for k, v := range spec {
		copied[k] = v
	}
	return copied, nil
}

// HasField проверяет, что поле есть в схеме хотя бы одного типа.
// Используется при валидации конфигов фасетов.
func (r *Registry) HasField(field string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, spec := range r.types {
		if _, ok := spec[field]; ok {
			return true
		}
	}
	return false
}

// SuggestFields возвращает поля типа, по которым строятся подсказки
func (r *Registry) SuggestFields(docType string) ([]string, error) {
	spec, err := r.Schema(docType)
	if err != nil {
		return nil, err
	}

	var fields []string
	for field, opts := range spec {
		if opts.Suggest {
			fields = append(fields, field)
		}
	}
	return fields, nil
}

// Types возвращает все зарегистрированные типы документов
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.types))
	for t := range r.types {
		types = append(types, t)
	}
	return types
}
