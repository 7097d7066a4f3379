package server

import (
	"encoding/json"
	"net/http"

	"github.com/rx3lixir/search-service/pkg/errs"
)

// errorResponse - тело ответа с ошибкой
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeServiceError транслирует доменную ошибку в HTTP статус
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errs.IsValidation(err):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errs.IsConfiguration(err):
		writeError(w, http.StatusBadRequest, "invalid_configuration", err.Error())
	case errs.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errs.IsEngineUnavailable(err):
		writeError(w, http.StatusServiceUnavailable, "engine_unavailable", err.Error())
	default:
		s.log.Error("Unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}
