package http

import (
	"net/http"

	"plenio/internal/core"
	"plenio/internal/log"
)

const serviceName = "Plenio Budget API"

func (s *Server) handleBanner(w http.ResponseWriter, r *http.Request) {
	MessageResponse(serviceName).Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.ledger.Ready(ctx); err != nil {
		log.FromContext(ctx).WithComponent(log.ComponentStorage).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		ErrorResponse(http.StatusServiceUnavailable, "store unavailable").Write(w)
		return
	}
	writeJSON(w, map[string]string{"status": "ready"})
}

func (s *Server) handleUpsertProfile(w http.ResponseWriter, r *http.Request, subject string) {
	var p core.UserProfile
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(r.Context(), w, r, err)
		return
	}
	saved, err := s.ledger.Profiles.Upsert(r.Context(), subject, p)
	if err != nil {
		writeError(r.Context(), w, r, err)
		return
	}
	writeJSON(w, saved)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request, subject string) {
	p, err := s.ledger.Profiles.Get(r.Context(), subject)
	if err != nil {
		writeError(r.Context(), w, r, err)
		return
	}
	writeJSON(w, p)
}

type suggestIconRequest struct {
	CategoryName string `json:"categoryName"`
}

type suggestIconResponse struct {
	Icon string `json:"suggestedIcon"`
}

func (s *Server) handleSuggestIcon(w http.ResponseWriter, r *http.Request, subject string) {
	var req suggestIconRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, r, err)
		return
	}
	writeJSON(w, suggestIconResponse{Icon: s.ledger.SuggestIcon(r.Context(), req.CategoryName)})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, subject string) {
	summary, err := s.ledger.Summary.Get(r.Context(), subject)
	if err != nil {
		writeError(r.Context(), w, r, err)
		return
	}
	writeJSON(w, summary)
}
