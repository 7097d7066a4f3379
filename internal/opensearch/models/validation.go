package models

import (
	"fmt"
	"strings"
)

// Validate проверяет корректность Document
func (d *Document) Validate() error {
	var errors []string

	if strings.TrimSpace(d.ID) == "" {
		errors = append(errors, "id is required")
	}

	if !IsKnownType(d.Type) {
		errors = append(errors, fmt.Sprintf("unknown document type: %q", d.Type))
	}

	if strings.TrimSpace(d.Title) == "" {
		errors = append(errors, "title is required")
	}

	if strings.TrimSpace(d.Category) == "" {
		errors = append(errors, "category is required")
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, ", "))
	}

	return nil
}

// ValidateForIndexing проверяет готовность документа к индексации
func (d *Document) ValidateForIndexing() error {
	if err := d.Validate(); err != nil {
		return err
	}

	// Дополнительные проверки для индексации
	if d.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required for indexing")
	}

	return nil
}
