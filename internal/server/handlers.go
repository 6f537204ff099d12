package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/seanmtli/personalnewsletter/internal/core"
	"github.com/seanmtli/personalnewsletter/internal/email"
	"github.com/seanmtli/personalnewsletter/internal/logger"
	"github.com/seanmtli/personalnewsletter/internal/store"
)

// preferencePayload is one interest in a signup or preference update.
type preferencePayload struct {
	InterestType string `json:"interest_type"`
	InterestName string `json:"interest_name"`
	InterestData string `json:"interest_data,omitempty"`
}

// signupRequest creates a user with an initial preference set.
type signupRequest struct {
	Email       string              `json:"email"`
	Preferences []preferencePayload `json:"preferences"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	user, err := s.store.CreateUser(req.Email)
	if err != nil {
		logger.Error("signup failed", err, "email", req.Email)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	if err := s.store.ReplacePreferences(user.ID, toPreferences(req.Preferences)); err != nil {
		logger.Error("failed to save preferences", err, "email", req.Email)
		writeError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":           "signed up",
		"email":             user.Email,
		"preferences_count": len(req.Preferences),
	})
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	prefs, err := s.store.ListPreferences(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	if prefs == nil {
		prefs = []core.Preference{}
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var payload []preferencePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.ReplacePreferences(user.ID, toPreferences(payload)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"preferences_count": len(payload)})
}

func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Teams)
}

func (s *Server) handleAthletes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Athletes)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	prefs, err := s.store.ListPreferences(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	if len(prefs) == 0 {
		writeError(w, http.StatusBadRequest, "No preferences set. Please add some interests first.")
		return
	}

	interests := make([]string, 0, len(prefs))
	for _, p := range prefs {
		interests = append(interests, p.InterestName)
	}

	curated := s.curator.Curate(r.Context(), interests)

	html, err := email.RenderNewsletter(s.cfg.App, curated)
	if err != nil {
		logger.Error("failed to render newsletter", err, "email", user.Email)
		writeError(w, http.StatusInternalServerError, "failed to render newsletter")
		return
	}

	newsletter, err := s.store.SaveNewsletter(user.ID, html, curated)
	if err != nil {
		logger.Error("failed to save newsletter", err, "email", user.Email)
		writeError(w, http.StatusInternalServerError, "failed to save newsletter")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "generated",
		"newsletter_id": newsletter.ID,
		"items_count":   len(curated.Items),
		"provider_used": curated.ProviderUsed,
	})
}

// debugRequest runs the provider diagnostics for arbitrary interests.
type debugRequest struct {
	Interests []string `json:"interests"`
}

func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	var req debugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Interests) == 0 {
		writeError(w, http.StatusBadRequest, "interests are required")
		return
	}

	results := s.curator.Debug(r.Context(), req.Interests)
	writeJSON(w, http.StatusOK, map[string]any{
		"providers_available": s.curator.Providers(),
		"results":             results,
	})
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	newsletter, err := s.store.GetNewsletter(id, user.ID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "newsletter not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load newsletter")
		return
	}

	subject := s.cfg.App.NewsletterName + " - Weekly Digest"
	if !s.emailer.Send(r.Context(), user.Email, subject, newsletter.Content) {
		// The newsletter itself is intact; only delivery failed.
		writeError(w, http.StatusBadGateway, "generated but not sent")
		return
	}

	if err := s.store.MarkNewsletterSent(newsletter.ID, time.Now().UTC()); err != nil {
		logger.Error("failed to mark newsletter sent", err, "id", newsletter.ID)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent", "email": user.Email})
}

func (s *Server) handleGetNewsletter(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	newsletter, err := s.store.GetNewsletter(chi.URLParam(r, "id"), user.ID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "newsletter not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load newsletter")
		return
	}
	writeJSON(w, http.StatusOK, newsletter)
}

func (s *Server) handleListNewsletters(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	newsletters, err := s.store.ListNewsletters(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load newsletters")
		return
	}
	if newsletters == nil {
		newsletters = []core.Newsletter{}
	}
	writeJSON(w, http.StatusOK, newsletters)
}

// currentUser resolves the requesting user from the X-User-Email header or
// the email query parameter. Identity is opaque to this core; a fronting
// proxy or session layer is expected to have authenticated it.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (core.User, bool) {
	emailAddr := r.Header.Get("X-User-Email")
	if emailAddr == "" {
		emailAddr = r.URL.Query().Get("email")
	}
	if emailAddr == "" {
		writeError(w, http.StatusUnauthorized, "user email is required")
		return core.User{}, false
	}

	user, err := s.store.GetUserByEmail(emailAddr)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return core.User{}, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return core.User{}, false
	}
	return user, true
}

func toPreferences(payload []preferencePayload) []core.Preference {
	prefs := make([]core.Preference, 0, len(payload))
	for _, p := range payload {
		interestType := p.InterestType
		if interestType == "" {
			interestType = "custom"
		}
		prefs = append(prefs, core.Preference{
			InterestType: interestType,
			InterestName: p.InterestName,
			InterestData: p.InterestData,
		})
	}
	return prefs
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
