package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rx3lixir/search-service/internal/opensearch/facets"
	"github.com/rx3lixir/search-service/internal/opensearch/models"
	"github.com/rx3lixir/search-service/internal/opensearch/ranking"
	ossearch "github.com/rx3lixir/search-service/internal/opensearch/search"
	"github.com/rx3lixir/search-service/internal/opensearch/suggest"
)

// searchRequest - тело поискового запроса: структурированный запрос
// плюс профиль ранжирования и контекст пользователя
type searchRequest struct {
	ossearch.Request
	Profile string       `json:"profile,omitempty"`
	User    *userContext `json:"user,omitempty"`
}

// userContext - контекст пользователя в HTTP представлении
type userContext struct {
	Preferences   []string `json:"preferences,omitempty"`
	SearchHistory []string `json:"search_history,omitempty"`
	Location      string   `json:"location,omitempty"`
	UserType      string   `json:"user_type,omitempty"`
}

func (u *userContext) toRanking() *ranking.UserContext {
	if u == nil {
		return nil
	}
	return &ranking.UserContext{
		Preferences:   u.Preferences,
		SearchHistory: u.SearchHistory,
		Location:      u.Location,
		UserType:      u.UserType,
	}
}

// handleSearch обрабатывает POST /api/v1/search
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}

	response, err := s.service.Search(r.Context(), &req.Request, req.Profile, req.User.toRanking())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// handleCount обрабатывает POST /api/v1/search/count
func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}

	total, err := s.service.Count(r.Context(), &req.Request)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"total": total})
}

// handleSuggest обрабатывает GET /api/v1/suggest
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := &suggest.Request{
		Prefix:         q.Get("q"),
		Fuzzy:          q.Get("fuzzy") == "true",
		IncludePopular: q.Get("popular") != "false",
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "limit must be an integer")
			return
		}
		req.Limit = limit
	}

	if raw := q.Get("types"); raw != "" {
		req.Types = strings.Split(raw, ",")
	}

	if userType := q.Get("user_type"); userType != "" {
		req.User = &ranking.UserContext{UserType: userType}
	}

	response, err := s.service.Suggest(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// facetRequest - тело запроса на добавление фасета
type facetRequest struct {
	Name   string        `json:"name"`
	Config facets.Config `json:"config"`
}

// handleListFacets обрабатывает GET /api/v1/facets
func (s *Server) handleListFacets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"facets": s.service.FacetNames()})
}

// handleAddFacet обрабатывает POST /api/v1/facets
func (s *Server) handleAddFacet(w http.ResponseWriter, r *http.Request) {
	var req facetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "facet name is required")
		return
	}

	if err := s.service.AddFacetConfig(r.Context(), req.Name, req.Config); err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"name": req.Name})
}

// handleRemoveFacet обрабатывает DELETE /api/v1/facets/{name}
func (s *Server) handleRemoveFacet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	removed, err := s.service.RemoveFacetConfig(r.Context(), name)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "not_found", "facet not found: "+name)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleIndexDocument обрабатывает PUT /api/v1/documents
func (s *Server) handleIndexDocument(w http.ResponseWriter, r *http.Request) {
	var doc models.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}

	if err := doc.ValidateForIndexing(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	if err := s.indexer.IndexDocument(r.Context(), &doc); err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": doc.ID, "type": doc.Type})
}

// handleBulkIndex обрабатывает POST /api/v1/documents/bulk
func (s *Server) handleBulkIndex(w http.ResponseWriter, r *http.Request) {
	var docs []*models.Document
	if err := json.NewDecoder(r.Body).Decode(&docs); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}

	if len(docs) == 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", "documents list is empty")
		return
	}

	for _, doc := range docs {
		if err := doc.ValidateForIndexing(); err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", doc.ID+": "+err.Error())
			return
		}
	}

	if err := s.indexer.BulkIndexDocuments(r.Context(), docs); err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"indexed": len(docs)})
}

// handleDeleteDocument обрабатывает DELETE /api/v1/documents/{type}/{id}
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docType := chi.URLParam(r, "type")
	id := chi.URLParam(r, "id")

	if !models.IsKnownType(docType) {
		writeError(w, http.StatusBadRequest, "validation_failed", "unknown document type: "+docType)
		return
	}

	if err := s.indexer.DeleteDocument(r.Context(), docType, id); err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
