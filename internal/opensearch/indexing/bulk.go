package indexing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rx3lixir/search-service/internal/opensearch/client"
	"github.com/rx3lixir/search-service/internal/opensearch/models"
	"github.com/rx3lixir/search-service/pkg/logger"
	"github.com/rx3lixir/search-service/pkg/metrics"
)

type BulkOperations struct {
	client     *client.Client
	retryLogic *RetryLogic
	logger     logger.Logger
}

func NewBulkOperations(client *client.Client, retryLogic *RetryLogic, logger logger.Logger) *BulkOperations {
	return &BulkOperations{
		client:     client,
		retryLogic: retryLogic,
		logger:     logger,
	}
}

func (b *BulkOperations) BulkIndex(ctx context.Context, docs []*models.Document) error {
	const maxBatchSize = 100

	// Разбиваем на батчи если необходимо
	for i := 0; i < len(docs); i += maxBatchSize {
		end := i + maxBatchSize
		if end > len(docs) {
			end = len(docs)
		}

		batch := docs[i:end]
		if err := b.processBatch(ctx, batch); err != nil {
			return fmt.Errorf("failed to process batch %d-%d: %w", i, end-1, err)
		}

		b.logger.Debug("Batch processed successfully",
			"batch_start", i,
			"batch_end", end-1,
			"batch_size", len(batch))
	}

	return nil
}

func (b *BulkOperations) processBatch(ctx context.Context, docs []*models.Document) error {
	return b.retryLogic.ExecuteWithRetry(ctx, func(ctx context.Context) error {
		return b.executeBulkRequest(ctx, docs)
	})
}

func (b *BulkOperations) executeBulkRequest(ctx context.Context, docs []*models.Document) error {
	body, err := b.buildBulkBody(docs)
	if err != nil {
		return fmt.Errorf("failed to build bulk body: %w", err)
	}

	start := time.Now()
	res, err := b.client.GetNativeClient().Bulk(
		strings.NewReader(body),
		b.client.GetNativeClient().Bulk.WithContext(ctx),
		b.client.GetNativeClient().Bulk.WithRefresh("true"),
	)
	metrics.RecordOpenSearchOperation("bulk", b.client.SearchIndexPattern(), metrics.StatusFromError(err), time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to execute bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk request failed with status: %s", res.Status())
	}

	// Проверяем ответ на ошибки в отдельных операциях
	if err := b.checkBulkResponse(res.Body, len(docs)); err != nil {
		return fmt.Errorf("bulk response contains errors: %w", err)
	}

	return nil
}

func (b *BulkOperations) buildBulkBody(docs []*models.Document) (string, error) {
	var buf bytes.Buffer

	for _, doc := range docs {
		actionLine := map[string]any{
			"index": map[string]any{
				"_index": b.client.IndexFor(doc.Type),
				"_id":    doc.ID,
			},
		}

		actionBytes, err := json.Marshal(actionLine)
		if err != nil {
			return "", fmt.Errorf("failed to marshal action line: %w", err)
		}

		buf.Write(actionBytes)
		buf.WriteByte('\n')

		docBytes, err := json.Marshal(doc.PrepareForIndex())
		if err != nil {
			return "", fmt.Errorf("failed to marshal document %s: %w", doc.ID, err)
		}

		buf.Write(docBytes)
		buf.WriteByte('\n')
	}

	return buf.String(), nil
}

func (b *BulkOperations) checkBulkResponse(body io.Reader, expected int) error {
	var response struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
			Error  *struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}

	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}

	if !response.Errors {
		return nil
	}

	failed := 0
	for _, item := range response.Items {
		for _, op := range item {
			if op.Error != nil {
				failed++
				b.logger.Error("Bulk item failed",
					"status", op.Status,
					"type", op.Error.Type,
					"reason", op.Error.Reason,
				)
			}
		}
	}

	return fmt.Errorf("%d of %d bulk items failed", failed, expected)
}
