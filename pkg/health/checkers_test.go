package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	pingErr error
}

func (f *fakeEngine) Check(ctx context.Context) error {
	return f.pingErr
}

type fakeClusterEngine struct {
	fakeEngine
	summary    map[string]any
	healthy    bool
	summaryErr error
}

func (f *fakeClusterEngine) ClusterSummary(ctx context.Context) (map[string]any, bool, error) {
	return f.summary, f.healthy, f.summaryErr
}

func TestEngineCheckerPingFailure(t *testing.T) {
	checker := EngineChecker(&fakeEngine{pingErr: errors.New("connection refused")})

	result := checker.Check(context.Background())
	assert.Equal(t, StatusDown, result.Status)
	assert.Contains(t, result.Error, "connection refused")
}

func TestEngineCheckerWithoutClusterReporter(t *testing.T) {
	checker := EngineChecker(&fakeEngine{})

	result := checker.Check(context.Background())
	assert.Equal(t, StatusUp, result.Status)
	assert.Contains(t, result.Details, "duration_ms")
}

func TestEngineCheckerMergesClusterSummary(t *testing.T) {
	checker := EngineChecker(&fakeClusterEngine{
		summary: map[string]any{
			"cluster_status": "yellow",
			"nodes":          1,
		},
		healthy: true,
	})

	result := checker.Check(context.Background())
	require.Equal(t, StatusUp, result.Status)
	assert.Equal(t, "yellow", result.Details["cluster_status"])
	assert.Equal(t, 1, result.Details["nodes"])
}

func TestEngineCheckerDegradedCluster(t *testing.T) {
	checker := EngineChecker(&fakeClusterEngine{
		summary: map[string]any{"cluster_status": "red"},
		healthy: false,
	})

	result := checker.Check(context.Background())
	assert.Equal(t, StatusDown, result.Status)
	assert.Equal(t, "red", result.Details["cluster_status"])
}

func TestEngineCheckerClusterSummaryErrorKeepsPingResult(t *testing.T) {
	// Сводка кластера - детализация; ее ошибка не роняет проверку,
	// если ping прошел
	checker := EngineChecker(&fakeClusterEngine{
		summaryErr: errors.New("cluster health timed out"),
		healthy:    false,
	})

	result := checker.Check(context.Background())
	assert.Equal(t, StatusUp, result.Status)
	assert.Contains(t, result.Details["cluster_error"], "timed out")
}

func TestHealthOverallDownOnAnyFailure(t *testing.T) {
	h := New("search-service", "test")
	h.AddCheck("ok", CheckerFunc(func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusUp}
	}))
	h.AddCheck("broken", CheckerFunc(func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusDown, Error: "boom"}
	}))

	response := h.Check(context.Background())
	assert.Equal(t, StatusDown, response.Status)
	assert.Len(t, response.Checks, 2)
	assert.Equal(t, StatusUp, response.Checks["ok"].Status)
}
