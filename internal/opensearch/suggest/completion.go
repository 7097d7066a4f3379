package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rx3lixir/search-service/internal/opensearch/client"
	"github.com/rx3lixir/search-service/pkg/errs"
	"github.com/rx3lixir/search-service/pkg/logger"
)

// CompletionSource - подсказки из completion suggester одной коллекции.
// Каждый тип документа опрашивается независимо и метит свои подсказки
// своим типом источника.
type CompletionSource struct {
	client  *client.Client
	docType string
	log     logger.Logger
}

func NewCompletionSource(osClient *client.Client, docType string, log logger.Logger) *CompletionSource {
	return &CompletionSource{
		client:  osClient,
		docType: docType,
		log:     log,
	}
}

func (s *CompletionSource) Name() string {
	return "completion:" + s.docType
}

func (s *CompletionSource) Suggest(ctx context.Context, req *Request) ([]Suggestion, error) {
	query := s.buildQuery(req)

	queryBody, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion query: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.client.Timeout())
	defer cancel()

	res, err := s.client.GetNativeClient().Search(
		s.client.GetNativeClient().Search.WithContext(ctx),
		s.client.GetNativeClient().Search.WithIndex(s.client.IndexFor(s.docType)),
		s.client.GetNativeClient().Search.WithBody(bytes.NewReader(queryBody)),
	)
	if err != nil {
		return nil, errs.NewEngineUnavailable("suggest", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errs.NewEngineUnavailable("suggest", fmt.Errorf("status %s", res.Status()))
	}

	return s.parseResponse(res.Body, req)
}

func (s *CompletionSource) buildQuery(req *Request) map[string]any {
	completion := map[string]any{
		"field":           "title_completion",
		"size":            req.Limit,
		"skip_duplicates": true,
	}
	if req.Fuzzy {
		completion["fuzzy"] = map[string]any{
			"fuzziness": "AUTO",
		}
	}

	return map[string]any{
		"size": 0,
		"suggest": map[string]any{
			"title_suggestion": map[string]any{
				"prefix":     req.Prefix,
				"completion": completion,
			},
		},
		"_source": []string{"id", "category"},
	}
}

func (s *CompletionSource) parseResponse(body io.Reader, req *Request) ([]Suggestion, error) {
	var response struct {
		Suggest map[string][]struct {
			Options []struct {
				Text   string         `json:"text"`
				Score  float64        `json:"_score"`
				Source map[string]any `json:"_source"`
			} `json:"options"`
		} `json:"suggest"`
	}

	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode completion response: %w", err)
	}

	sourceType := SourceForDocType(s.docType)
	suggestions := make([]Suggestion, 0, req.Limit)

	for _, entries := range response.Suggest {
		for _, entry := range entries {
			for _, opt := range entry.Options {
				if opt.Text == "" {
					continue
				}

				suggestion := Suggestion{
					Text:   opt.Text,
					Source: sourceType,
					Score:  normalizeCompletionScore(opt.Score),
				}
				if len(opt.Source) > 0 {
					suggestion.Metadata = opt.Source
				}

				suggestions = append(suggestions, suggestion)
			}
		}
	}

	s.log.Debug("Completion suggestions retrieved",
		"type", s.docType,
		"prefix", req.Prefix,
		"count", len(suggestions),
	)

	return suggestions, nil
}

// normalizeCompletionScore приводит вес completion suggester к [0,1]
func normalizeCompletionScore(score float64) float64 {
	normalized := score / 100.0
	if normalized > 1.0 {
		return 1.0
	}
	if normalized <= 0 {
		// Движок не вернул вес - считаем подсказку сильной
		return 0.9
	}
	return normalized
}
