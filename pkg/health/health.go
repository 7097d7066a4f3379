package health

import (
	"context"
	"sync"
	"time"
)

// Status статус проверки здоровья
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// CheckResult результат одной проверки
type CheckResult struct {
	Status  Status         `json:"status"`
	Error   string         `json:"error,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Checker интерфейс проверки здоровья
type Checker interface {
	Check(ctx context.Context) CheckResult
}

// CheckerFunc адаптер функции к интерфейсу Checker
type CheckerFunc func(ctx context.Context) CheckResult

func (f CheckerFunc) Check(ctx context.Context) CheckResult {
	return f(ctx)
}

// Response агрегированный ответ всех проверок
type Response struct {
	Status    Status                 `json:"status"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// Health агрегатор проверок здоровья сервиса
type Health struct {
	mu       sync.RWMutex
	service  string
	version  string
	timeout  time.Duration
	checkers map[string]Checker
}

// HealthOption опция для настройки Health
type HealthOption func(*Health)

// WithTimeout устанавливает таймаут на выполнение каждой проверки
func WithTimeout(timeout time.Duration) HealthOption {
	return func(h *Health) {
		h.timeout = timeout
	}
}

// New создает новый агрегатор проверок
func New(service, version string, opts ...HealthOption) *Health {
	h := &Health{
		service:  service,
		version:  version,
		timeout:  5 * time.Second,
		checkers: make(map[string]Checker),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// AddCheck регистрирует новую проверку под именем
func (h *Health) AddCheck(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// Check выполняет все зарегистрированные проверки параллельно
func (h *Health) Check(ctx context.Context) Response {
	h.mu.RLock()
	checkers := make(map[string]Checker, len(h.checkers))
	for name, c := range h.checkers {
		checkers[name] = c
	}
	h.mu.RUnlock()

	results := make(map[string]CheckResult, len(checkers))
	var resultsMu sync.Mutex
	var wg sync.WaitGroup

	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker Checker) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
			defer cancel()

			result := checker.Check(checkCtx)

			resultsMu.Lock()
			results[name] = result
			resultsMu.Unlock()
		}(name, checker)
	}

	wg.Wait()

	// Общий статус down если хоть одна проверка провалилась
	overall := StatusUp
	for _, result := range results {
		if result.Status == StatusDown {
			overall = StatusDown
			break
		}
	}

	return Response{
		Status:    overall,
		Service:   h.service,
		Version:   h.version,
		Timestamp: time.Now().UTC(),
		Checks:    results,
	}
}
