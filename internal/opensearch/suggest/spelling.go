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

const (
	// Исправления со слабой уверенностью движка отбрасываются
	spellingMinConfidence = 0.5
	// Исправление всегда дешевле прямого совпадения
	spellingScoreFactor = 0.6
)

// SpellingSource - исправления опечаток через term suggester движка.
// Вызывается только когда остальные источники дали мало результатов.
type SpellingSource struct {
	client *client.Client
	log    logger.Logger
}

func NewSpellingSource(osClient *client.Client, log logger.Logger) *SpellingSource {
	return &SpellingSource{
		client: osClient,
		log:    log,
	}
}

func (s *SpellingSource) Name() string {
	return "spelling"
}

func (s *SpellingSource) Suggest(ctx context.Context, req *Request) ([]Suggestion, error) {
	query := map[string]any{
		"size": 0,
		"suggest": map[string]any{
			"spelling": map[string]any{
				"text": req.Prefix,
				"term": map[string]any{
					"field":        "title",
					"size":         req.Limit,
					"sort":         "score",
					"suggest_mode": "missing",
				},
			},
		},
	}

	queryBody, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal spelling query: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.client.Timeout())
	defer cancel()

	res, err := s.client.GetNativeClient().Search(
		s.client.GetNativeClient().Search.WithContext(ctx),
		s.client.GetNativeClient().Search.WithIndex(s.client.SearchIndexPattern()),
		s.client.GetNativeClient().Search.WithBody(bytes.NewReader(queryBody)),
	)
	if err != nil {
		return nil, errs.NewEngineUnavailable("spelling", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errs.NewEngineUnavailable("spelling", fmt.Errorf("status %s", res.Status()))
	}

	return s.parseResponse(res.Body)
}

func (s *SpellingSource) parseResponse(body io.Reader) ([]Suggestion, error) {
	var response struct {
		Suggest struct {
			Spelling []struct {
				Text    string `json:"text"`
				Options []struct {
					Text  string  `json:"text"`
					Score float64 `json:"score"`
				} `json:"options"`
			} `json:"spelling"`
		} `json:"suggest"`
	}

	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode spelling response: %w", err)
	}

	var suggestions []Suggestion
	for _, entry := range response.Suggest.Spelling {
		for _, opt := range entry.Options {
			if opt.Score <= spellingMinConfidence {
				continue
			}

			suggestions = append(suggestions, Suggestion{
				Text:   opt.Text,
				Source: SourceSpelling,
				Score:  opt.Score * spellingScoreFactor,
				Metadata: map[string]any{
					"original": entry.Text,
				},
			})
		}
	}

	s.log.Debug("Spelling corrections retrieved", "count", len(suggestions))

	return suggestions, nil
}
