package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// HealthChecker проверяет доступность движка и отдает сводку по
// состоянию кластера для health эндпоинтов.
type HealthChecker struct {
	client *Client
}

func NewHealthChecker(client *Client) *HealthChecker {
	return &HealthChecker{
		client: client,
	}
}

// Check - быстрый ping движка
func (h *HealthChecker) Check(ctx context.Context) error {
	res, err := h.client.client.Ping(
		h.client.client.Ping.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to ping opensearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch ping failed with status: %s", res.Status())
	}

	return nil
}

// WaitForHealthy блокируется, пока движок не ответит на ping.
// Используется при старте сервиса, когда движок еще поднимается.
func (h *HealthChecker) WaitForHealthy(ctx context.Context, maxRetries int, retryInterval time.Duration) error {
	for i := 0; i < maxRetries; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while waiting for OpenSearch: %w", ctx.Err())
		default:
		}

		if err := h.Check(ctx); err == nil {
			return nil
		}

		if i < maxRetries-1 {
			time.Sleep(retryInterval)
		}
	}

	return fmt.Errorf("opensearch not healthy after %d retries", maxRetries)
}

// clusterHealth - ответ _cluster/health в нужной нам части
type clusterHealth struct {
	ClusterName      string `json:"cluster_name"`
	Status           string `json:"status"`
	NumberOfNodes    int    `json:"number_of_nodes"`
	ActiveShards     int    `json:"active_shards"`
	UnassignedShards int    `json:"unassigned_shards"`
	TimedOut         bool   `json:"timed_out"`
}

// degraded - кластер отвечает, но его состояние требует внимания.
// yellow считается рабочим: single-node кластер всегда yellow.
func (ch *clusterHealth) degraded() bool {
	return ch.Status != "green" && ch.Status != "yellow"
}

// ClusterSummary возвращает сводку состояния кластера для детализации
// health ответа. Второе значение - false, если кластер деградировал.
func (h *HealthChecker) ClusterSummary(ctx context.Context) (map[string]any, bool, error) {
	res, err := h.client.client.Cluster.Health(
		h.client.client.Cluster.Health.WithContext(ctx),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cluster health: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, false, fmt.Errorf("cluster health request failed: %s", res.Status())
	}

	var health clusterHealth
	if err := json.NewDecoder(res.Body).Decode(&health); err != nil {
		return nil, false, fmt.Errorf("failed to decode cluster health response: %w", err)
	}

	summary := map[string]any{
		"cluster_name":      health.ClusterName,
		"cluster_status":    health.Status,
		"nodes":             health.NumberOfNodes,
		"active_shards":     health.ActiveShards,
		"unassigned_shards": health.UnassignedShards,
	}

	return summary, !health.degraded(), nil
}
