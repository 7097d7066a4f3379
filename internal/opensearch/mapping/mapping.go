package mapping

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/rx3lixir/search-service/internal/opensearch/client"
	"github.com/rx3lixir/search-service/internal/opensearch/models"
	"github.com/rx3lixir/search-service/pkg/logger"
)

//go:embed documents.json
var mappingFiles embed.FS

type Manager struct {
	client *client.Client
	logger logger.Logger
}

func NewManager(client *client.Client, log logger.Logger) *Manager {
	return &Manager{
		client: client,
		logger: log,
	}
}

// EnsureIndexes создает коллекции всех типов документов, которых еще нет.
// Все типы используют общий маппинг: для типоспецифичных полей в нем
// предусмотрены отдельные ветки.
func (m *Manager) EnsureIndexes(ctx context.Context) error {
	for _, docType := range models.AllTypes() {
		if err := m.ensureIndex(ctx, m.client.IndexFor(docType)); err != nil {
			return fmt.Errorf("failed to ensure index for type %s: %w", docType, err)
		}
	}
	return nil
}

func (m *Manager) ensureIndex(ctx context.Context, indexName string) error {
	exists, err := m.indexExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	if exists {
		m.logger.Debug("Index already exists", "index", indexName)
		return nil
	}

	return m.createIndex(ctx, indexName)
}

func (m *Manager) indexExists(ctx context.Context, indexName string) (bool, error) {
	res, err := m.client.GetNativeClient().Indices.Exists(
		[]string{indexName},
		m.client.GetNativeClient().Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	return res.StatusCode == 200, nil
}

func (m *Manager) createIndex(ctx context.Context, indexName string) error {
	mapping, err := m.loadDocumentsMapping()
	if err != nil {
		return fmt.Errorf("failed to load mapping: %w", err)
	}

	res, err := m.client.GetNativeClient().Indices.Create(
		indexName,
		m.client.GetNativeClient().Indices.Create.WithContext(ctx),
		m.client.GetNativeClient().Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to create index, status: %s", res.Status())
	}

	m.logger.Info("Index created successfully", "index", indexName)

	return nil
}

func (m *Manager) loadDocumentsMapping() (string, error) {
	data, err := mappingFiles.ReadFile("documents.json")
	if err != nil {
		return "", fmt.Errorf("failed to read documents mapping: %w", err)
	}
	return string(data), nil
}
