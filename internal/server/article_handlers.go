package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"planwrite/internal/compliance"
	"planwrite/internal/core"
	"planwrite/internal/draft"
	"planwrite/internal/observability"
	"planwrite/internal/outline"
)

// OutlineRequest is the body of POST /api/outline.
type OutlineRequest struct {
	Keyword           string        `json:"keyword"`
	Title             string        `json:"title"`
	Offer             core.Offer    `json:"offer"`
	EventContext      string        `json:"event_context,omitempty"`
	Game              *outline.Game `json:"game,omitempty"`
	BetExample        string        `json:"bet_example,omitempty"`
	CompetitorContext string        `json:"competitor_context,omitempty"`
}

// OutlineResponse carries a planned outline in both representations.
type OutlineResponse struct {
	Outline  core.Outline `json:"outline"`
	Text     string       `json:"text"`
	Warnings []string     `json:"warnings"`
}

// OutlineTextRequest converts between an outline and its text form. Exactly
// one of the fields is expected.
type OutlineTextRequest struct {
	Outline core.Outline `json:"outline,omitempty"`
	Text    string       `json:"text,omitempty"`
}

// DraftRequest is the body of POST /api/draft and /api/draft/stream. When
// neither Outline nor OutlineText is given, an outline is planned first.
type DraftRequest struct {
	OutlineRequest
	Outline     core.Outline `json:"outline,omitempty"`
	OutlineText string       `json:"outline_text,omitempty"`
	AltOffers   []core.Offer `json:"alt_offers,omitempty"`
	State       string       `json:"state,omitempty"`
	Property    string       `json:"property,omitempty"`
	Format      string       `json:"format,omitempty"`
}

// DraftResponse is a finished draft with its compliance report.
type DraftResponse struct {
	RequestID  string                `json:"request_id"`
	Draft      string                `json:"draft"`
	Outline    core.Outline          `json:"outline"`
	WordCount  int                   `json:"word_count"`
	Compliance core.ComplianceResult `json:"compliance"`
}

// ValidateRequest is the body of POST /api/validate.
type ValidateRequest struct {
	Content  string      `json:"content"`
	State    string      `json:"state,omitempty"`
	Keyword  string      `json:"keyword,omitempty"`
	Offer    *core.Offer `json:"offer,omitempty"`
	Property string      `json:"property,omitempty"`
}

func (req OutlineRequest) plannerRequest(requestID string) outline.Request {
	eventContext := req.EventContext
	if eventContext == "" && req.Game != nil {
		eventContext = outline.FormatGameContext(*req.Game)
	}
	return outline.Request{
		RequestID:         requestID,
		Keyword:           strings.TrimSpace(req.Keyword),
		Title:             strings.TrimSpace(req.Title),
		Offer:             req.Offer,
		EventContext:      eventContext,
		BetExample:        req.BetExample,
		CompetitorContext: req.CompetitorContext,
	}
}

func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}

// handlePlanOutline handles POST /api/outline
func (s *Server) handlePlanOutline(w http.ResponseWriter, r *http.Request) {
	if s.deps.Planner == nil {
		s.respondError(w, http.StatusServiceUnavailable, "outline planner is not configured")
		return
	}
	var req OutlineRequest
	if err := decodeJSON(r, w, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Keyword) == "" {
		s.respondError(w, http.StatusBadRequest, "keyword is required")
		return
	}

	planned := s.deps.Planner.Plan(r.Context(), req.plannerRequest(requestID(r)))
	s.respondJSON(w, http.StatusOK, OutlineResponse{
		Outline:  planned,
		Text:     outline.ToText(planned),
		Warnings: nonNil(outline.Validate(planned, req.Keyword)),
	})
}

// handleOutlineText handles POST /api/outline/text
func (s *Server) handleOutlineText(w http.ResponseWriter, r *http.Request) {
	var req OutlineTextRequest
	if err := decodeJSON(r, w, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch {
	case req.Text != "":
		parsed := outline.FromText(req.Text)
		s.respondJSON(w, http.StatusOK, OutlineResponse{Outline: parsed, Text: outline.ToText(parsed), Warnings: []string{}})
	case len(req.Outline) > 0:
		s.respondJSON(w, http.StatusOK, OutlineResponse{Outline: req.Outline, Text: outline.ToText(req.Outline), Warnings: []string{}})
	default:
		s.respondError(w, http.StatusBadRequest, "either outline or text is required")
	}
}

// draftRequest resolves the outline of req and builds the executor request.
func (s *Server) draftRequest(r *http.Request, req DraftRequest, id string) (draft.Request, error) {
	if strings.TrimSpace(req.Keyword) == "" {
		return draft.Request{}, fmt.Errorf("keyword is required")
	}
	if strings.TrimSpace(req.Offer.Brand) == "" {
		return draft.Request{}, fmt.Errorf("offer.brand is required")
	}

	planned := req.Outline
	if len(planned) == 0 && strings.TrimSpace(req.OutlineText) != "" {
		planned = outline.FromText(req.OutlineText)
	}
	plannerReq := req.plannerRequest(id)
	if len(planned) == 0 {
		if s.deps.Planner == nil {
			return draft.Request{}, fmt.Errorf("outline is required when no planner is configured")
		}
		planned = s.deps.Planner.Plan(r.Context(), plannerReq)
	}

	state := strings.TrimSpace(req.State)
	if state == "" {
		state = s.deps.Draft.DefaultState
	}
	return draft.Request{
		RequestID:    id,
		Outline:      planned,
		Keyword:      plannerReq.Keyword,
		Title:        plannerReq.Title,
		Offer:        req.Offer,
		AltOffers:    req.AltOffers,
		State:        state,
		Property:     s.propertyOr(req.Property),
		EventContext: plannerReq.EventContext,
		BetExample:   req.BetExample,
		Format:       core.ParseFormat(req.Format),
	}, nil
}

// handleDraft handles POST /api/draft
func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	if s.deps.Drafter == nil {
		s.respondError(w, http.StatusServiceUnavailable, "draft executor is not configured")
		return
	}
	var req DraftRequest
	if err := decodeJSON(r, w, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := requestID(r)
	dreq, err := s.draftRequest(r, req, id)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := s.deps.Drafter.Execute(r.Context(), dreq)
	if err != nil {
		s.log.Error("Draft failed", "error", err, "request_id", id)
		observability.TrackError(r.Context(), s.deps.Tracker, "draft_failed", err.Error(), "server")
		s.respondError(w, http.StatusInternalServerError, "failed to draft article")
		return
	}

	result := compliance.Validate(doc, dreq.State, compliance.Options{
		Keyword:        dreq.Keyword,
		Offer:          &dreq.Offer,
		AllowedDomains: s.allowedDomains(dreq.Property),
	})
	observability.TrackValidation(r.Context(), s.deps.Tracker, id, dreq.State, result.Score, result.Valid, len(result.Issues))

	s.respondJSON(w, http.StatusOK, DraftResponse{
		RequestID:  id,
		Draft:      doc,
		Outline:    dreq.Outline,
		WordCount:  result.WordCount,
		Compliance: result,
	})
}

// handleDraftStream handles POST /api/draft/stream as server-sent events.
// Each event is named after its type and carries the event as JSON.
func (s *Server) handleDraftStream(w http.ResponseWriter, r *http.Request) {
	if s.deps.Drafter == nil {
		s.respondError(w, http.StatusServiceUnavailable, "draft executor is not configured")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, http.StatusInternalServerError, "streaming is not supported")
		return
	}
	var req DraftRequest
	if err := decodeJSON(r, w, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := requestID(r)
	dreq, err := s.draftRequest(r, req, id)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	streamID := uuid.NewString()
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Stream-ID", streamID)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	seq := 0
	for ev := range s.deps.Drafter.Stream(r.Context(), dreq) {
		payload, err := json.Marshal(ev)
		if err != nil {
			s.log.Error("Failed to encode stream event", "error", err)
			continue
		}
		seq++
		if _, err := fmt.Fprintf(w, "id: %s-%d\nevent: %s\ndata: %s\n\n", streamID, seq, ev.Type, payload); err != nil {
			s.log.Warn("Stream client went away", "stream_id", streamID, "error", err.Error())
			return
		}
		flusher.Flush()
	}
}

// handleValidate handles POST /api/validate
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := decodeJSON(r, w, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		s.respondError(w, http.StatusBadRequest, "content is required")
		return
	}
	state := req.State
	if state == "" {
		state = s.deps.Draft.DefaultState
	}

	result := compliance.Validate(req.Content, state, compliance.Options{
		Keyword:        req.Keyword,
		Offer:          req.Offer,
		AllowedDomains: s.allowedDomains(s.propertyOr(req.Property)),
	})
	observability.TrackValidation(r.Context(), s.deps.Tracker, requestID(r), state, result.Score, result.Valid, len(result.Issues))
	s.respondJSON(w, http.StatusOK, result)
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
