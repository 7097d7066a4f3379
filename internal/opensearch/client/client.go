package client

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/opensearch-project/opensearch-go"
	"github.com/rx3lixir/search-service/pkg/logger"
)

// Client - обертка над клиентом OpenSearch. Каждый тип документа
// живет в своей коллекции <prefix>-<type>, поиск идет по паттерну.
type Client struct {
	client *opensearch.Client
	config *Config
	logger logger.Logger
}

func New(cfg *Config, log logger.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	osConfig := opensearch.Config{
		Addresses: []string{cfg.URL},
		Transport: &http.Transport{
			MaxIdleConnsPerHost: cfg.MaxIdleConns,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.InsecureSkipVerify,
			},
		},
		RetryOnStatus: cfg.RetryOnStatus,
		MaxRetries:    cfg.MaxRetries,
	}

	osClient, err := opensearch.NewClient(osConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	return &Client{
		client: osClient,
		config: cfg,
		logger: log,
	}, nil
}

func (c *Client) GetNativeClient() *opensearch.Client {
	return c.client
}

// IndexFor возвращает имя коллекции для типа документа
func (c *Client) IndexFor(docType string) string {
	return c.config.IndexPrefix + "-" + docType
}

// SearchIndexPattern - паттерн, покрывающий коллекции всех типов
func (c *Client) SearchIndexPattern() string {
	return c.config.IndexPrefix + "-*"
}

// Timeout - бюджет времени на один вызов движка
func (c *Client) Timeout() time.Duration {
	return c.config.Timeout
}
