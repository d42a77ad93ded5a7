// Package api exposes HTTP handlers for reading stored recommendations.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"example.com/recommendation/internal/auth"
	"example.com/recommendation/internal/domain"
	"example.com/recommendation/internal/persistence"
)

// Page sizes for user listings.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/recommendations/user/{userId}", h.listUserRecommendations)
	mux.HandleFunc("GET /v1/recommendations/activity/{activityId}", h.getActivityRecommendation)
	mux.HandleFunc("GET /healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) getActivityRecommendation(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r) {
		return
	}

	activityID := strings.TrimSpace(r.PathValue("activityId"))
	if activityID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing activity id")
		return
	}

	rec, err := h.service.GetActivityRecommendation(r.Context(), activityID)
	if err != nil {
		if errors.Is(err, domain.ErrRecommendationNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "recommendation not found")
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Str("activity_id", activityID).Msg("load recommendation")
		writeError(w, http.StatusInternalServerError, "server_error", "failed to load recommendation")
		return
	}

	writeJSON(w, http.StatusOK, toRecommendationView(*rec))
}

func (h *Handler) listUserRecommendations(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r) {
		return
	}

	userID := strings.TrimSpace(r.PathValue("userId"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing user id")
		return
	}

	limit := DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = min(parsed, MaxLimit)
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	recs, next, err := h.service.ListUserRecommendations(r.Context(), userID, cursor, limit)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("user_id", userID).Msg("list recommendations")
		writeError(w, http.StatusInternalServerError, "server_error", "failed to list recommendations")
		return
	}

	items := make([]RecommendationView, 0, len(recs))
	for _, rec := range recs {
		items = append(items, toRecommendationView(rec))
	}

	writeJSON(w, http.StatusOK, ListRecommendationsResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func authorize(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return false
	}
	if !claims.HasScope(auth.ScopeRecommendationsRead) {
		writeError(w, http.StatusForbidden, "forbidden", "scope recommendations:read required")
		return false
	}
	return true
}

// RecommendationView is the JSON representation of a stored recommendation.
type RecommendationView struct {
	ID             string    `json:"id"`
	ActivityID     string    `json:"activityId"`
	UserID         string    `json:"userId"`
	ActivityType   string    `json:"activityType"`
	Recommendation string    `json:"recommendation"`
	Improvements   []string  `json:"improvements"`
	Suggestions    []string  `json:"suggestions"`
	Safety         []string  `json:"safety"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ListRecommendationsResponse packages list results.
type ListRecommendationsResponse struct {
	Items      []RecommendationView `json:"items"`
	NextCursor string               `json:"nextCursor,omitempty"`
}

func toRecommendationView(rec domain.Recommendation) RecommendationView {
	return RecommendationView{
		ID:             rec.ID,
		ActivityID:     rec.ActivityID,
		UserID:         rec.UserID,
		ActivityType:   rec.ActivityType,
		Recommendation: rec.Text,
		Improvements:   rec.Improvements(),
		Suggestions:    rec.Suggestions(),
		Safety:         rec.Safety(),
		CreatedAt:      rec.CreatedAt,
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
