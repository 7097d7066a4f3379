package indexing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rx3lixir/search-service/internal/opensearch/client"
	"github.com/rx3lixir/search-service/internal/opensearch/models"
	"github.com/rx3lixir/search-service/pkg/errs"
	"github.com/rx3lixir/search-service/pkg/logger"
	"github.com/rx3lixir/search-service/pkg/metrics"
)

// Manager - точка входа для индексации документов. Документ каждого
// типа попадает в свою коллекцию.
type Manager struct {
	client     *client.Client
	bulkOps    *BulkOperations
	retryLogic *RetryLogic
	logger     logger.Logger
}

func NewManager(client *client.Client, logger logger.Logger) *Manager {
	retryLogic := NewRetryLogic(logger)

	return &Manager{
		client:     client,
		bulkOps:    NewBulkOperations(client, retryLogic, logger),
		retryLogic: retryLogic,
		logger:     logger,
	}
}

// IndexDocument индексирует один документ
func (m *Manager) IndexDocument(ctx context.Context, doc *models.Document) error {
	if err := doc.ValidateForIndexing(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return m.retryLogic.ExecuteWithRetry(ctx, func(ctx context.Context) error {
		return m.indexSingleDocument(ctx, doc)
	})
}

// UpdateDocument обновляет документ полной переиндексацией
func (m *Manager) UpdateDocument(ctx context.Context, doc *models.Document) error {
	return m.IndexDocument(ctx, doc)
}

// DeleteDocument удаляет документ из коллекции его типа
func (m *Manager) DeleteDocument(ctx context.Context, docType, id string) error {
	if !models.IsKnownType(docType) {
		return errs.NewValidation("type", "unknown document type: "+docType)
	}

	return m.retryLogic.ExecuteWithRetry(ctx, func(ctx context.Context) error {
		return m.deleteSingleDocument(ctx, docType, id)
	})
}

// BulkIndexDocuments массово индексирует документы
func (m *Manager) BulkIndexDocuments(ctx context.Context, docs []*models.Document) error {
	if len(docs) == 0 {
		return nil
	}

	// Валидируем все документы до начала записи
	for i, doc := range docs {
		if err := doc.ValidateForIndexing(); err != nil {
			return fmt.Errorf("validation failed for document %d: %w", i, err)
		}
	}

	return m.bulkOps.BulkIndex(ctx, docs)
}

// PublishDocumentCounts обновляет gauge количества документов по
// коллекциям. Зовется периодически из main.
func (m *Manager) PublishDocumentCounts(ctx context.Context) {
	for _, docType := range models.AllTypes() {
		index := m.client.IndexFor(docType)

		count, err := m.countDocuments(ctx, index)
		if err != nil {
			m.logger.Debug("Failed to count documents", "index", index, "error", err)
			continue
		}

		metrics.UpdateOpenSearchDocuments(index, count)
	}
}

func (m *Manager) countDocuments(ctx context.Context, index string) (int64, error) {
	res, err := m.client.GetNativeClient().Count(
		m.client.GetNativeClient().Count.WithContext(ctx),
		m.client.GetNativeClient().Count.WithIndex(index),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("count failed with status: %s", res.Status())
	}

	var response struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return 0, fmt.Errorf("failed to decode count response: %w", err)
	}

	return response.Count, nil
}

func (m *Manager) indexSingleDocument(ctx context.Context, doc *models.Document) error {
	docData := doc.PrepareForIndex()

	body, err := json.Marshal(docData)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	start := time.Now()
	res, err := m.client.GetNativeClient().Index(
		m.client.IndexFor(doc.Type),
		bytes.NewReader(body),
		m.client.GetNativeClient().Index.WithDocumentID(doc.ID),
		m.client.GetNativeClient().Index.WithContext(ctx),
		m.client.GetNativeClient().Index.WithRefresh("true"),
	)
	metrics.RecordOpenSearchOperation("index", m.client.IndexFor(doc.Type), metrics.StatusFromError(err), time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexing failed with status: %s", res.Status())
	}

	m.logger.Debug("Document indexed successfully",
		"id", doc.ID,
		"type", doc.Type,
		"index", m.client.IndexFor(doc.Type),
	)

	return nil
}

func (m *Manager) deleteSingleDocument(ctx context.Context, docType, id string) error {
	start := time.Now()
	res, err := m.client.GetNativeClient().Delete(
		m.client.IndexFor(docType),
		id,
		m.client.GetNativeClient().Delete.WithContext(ctx),
		m.client.GetNativeClient().Delete.WithRefresh("true"),
	)
	metrics.RecordOpenSearchOperation("delete", m.client.IndexFor(docType), metrics.StatusFromError(err), time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	defer res.Body.Close()

	// 404 не считается ошибкой при удалении
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("deletion failed with status: %s", res.Status())
	}

	m.logger.Debug("Document deleted",
		"id", id,
		"type", docType,
	)

	return nil
}
