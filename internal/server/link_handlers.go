package server

import (
	"net/http"
	"strings"

	"planwrite/internal/core"
	"planwrite/internal/links"
)

// SuggestRequest is the body of POST /api/links/suggest.
type SuggestRequest struct {
	Title    string   `json:"title"`
	Terms    []string `json:"terms,omitempty"`
	K        int      `json:"k,omitempty"`
	Property string   `json:"property,omitempty"`
	Brand    string   `json:"brand,omitempty"`
}

// IngestRequest is the body of POST /api/links/ingest. Records holds the
// property's sources as JSON lines.
type IngestRequest struct {
	Property string `json:"property"`
	Records  string `json:"records"`
}

// handleSuggestLinks handles POST /api/links/suggest
func (s *Server) handleSuggestLinks(w http.ResponseWriter, r *http.Request) {
	if s.deps.Links == nil {
		s.respondError(w, http.StatusServiceUnavailable, "link index is not configured")
		return
	}
	var req SuggestRequest
	if err := decodeJSON(r, w, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	k := req.K
	if k <= 0 {
		k = links.DefaultK
	}

	suggestions := s.deps.Links.Suggest(r.Context(), req.Title, req.Terms, k, s.propertyOr(req.Property), req.Brand)
	if suggestions == nil {
		suggestions = []core.InternalLinkSpec{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"links": suggestions,
	})
}

// handleIngestLinks handles POST /api/links/ingest
func (s *Server) handleIngestLinks(w http.ResponseWriter, r *http.Request) {
	if s.deps.Links == nil {
		s.respondError(w, http.StatusServiceUnavailable, "link index is not configured")
		return
	}
	var req IngestRequest
	if err := decodeJSON(r, w, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	property := s.propertyOr(req.Property)
	if property == "" || strings.TrimSpace(req.Records) == "" {
		s.respondError(w, http.StatusBadRequest, "property and records are required")
		return
	}

	n, err := s.deps.Links.Ingest(r.Context(), property, strings.NewReader(req.Records))
	if err != nil {
		s.log.Error("Link ingest failed", "error", err, "property", property)
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"property": property,
		"records":  n,
	})
}
