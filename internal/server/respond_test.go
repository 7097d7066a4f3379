package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx3lixir/search-service/pkg/errs"
	"github.com/rx3lixir/search-service/pkg/logger"
)

func TestWriteServiceErrorMapping(t *testing.T) {
	s := &Server{log: logger.NewNop()}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", errs.NewValidation("limit", "too big"), http.StatusBadRequest, "validation_failed"},
		{"configuration", errs.NewConfiguration("facet", "bad"), http.StatusBadRequest, "invalid_configuration"},
		{"not found", errs.NewNotFound("facet", "x"), http.StatusNotFound, "not_found"},
		{"engine down", errs.NewEngineUnavailable("search", errors.New("refused")), http.StatusServiceUnavailable, "engine_unavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.writeServiceError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body errorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}

	// Внутренняя ошибка не раскрывает детали клиенту
	rec := httptest.NewRecorder()
	s.writeServiceError(rec, errors.New("secret database password"))
	assert.NotContains(t, rec.Body.String(), "secret")
}
