// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cinerec/internal/catalog"
	"github.com/tomtom215/cinerec/internal/factors"
	"github.com/tomtom215/cinerec/internal/models"
	"github.com/tomtom215/cinerec/internal/recommend"
	"github.com/tomtom215/cinerec/internal/validation"
)

// Catalog status values reported by /health.
const (
	CatalogOK          = "ok"
	CatalogUnreachable = "unreachable"
	CatalogCircuitOpen = "circuit_open"
	CatalogDisabled    = "disabled"
)

const defaultPingTimeout = 2 * time.Second

// CatalogPinger reports catalog reachability for the health endpoint.
type CatalogPinger interface {
	Ping(ctx context.Context) error
}

// ModelReloader rebuilds the model bundle from the artifacts on disk and
// installs it when it is ready.
type ModelReloader interface {
	Reload(ctx context.Context) (*factors.Bundle, error)
}

// Dependencies are the collaborators of Handler. Catalog and Reloader are optional.
type Dependencies struct {
	Engine   *recommend.Engine
	Catalog  CatalogPinger
	Database string
	Reloader ModelReloader
}

// Handler serves the recommendation API.
type Handler struct {
	engine      *recommend.Engine
	catalog     CatalogPinger
	database    string
	reloader    ModelReloader
	pingTimeout time.Duration
}

// NewHandler creates a new Handler.
func NewHandler(deps Dependencies) (*Handler, error) {
	if deps.Engine == nil {
		return nil, errors.New("recommendation engine is required")
	}
	return &Handler{
		engine:      deps.Engine,
		catalog:     deps.Catalog,
		database:    deps.Database,
		reloader:    deps.Reloader,
		pingTimeout: defaultPingTimeout,
	}, nil
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	OK         bool       `json:"ok"`
	UserCount  int        `json:"userCount"`
	ItemCount  int        `json:"itemCount"`
	ModelReady bool       `json:"modelReady"`
	Factors    int        `json:"factors"`
	LoadedAt   *time.Time `json:"loadedAt,omitempty"`
	DB         string     `json:"db"`
	Catalog    string     `json:"catalog"`
	Error      string     `json:"error,omitempty"`
}

// UserRecommendationResponse is the body of GET /recommend/user/{userId}.
type UserRecommendationResponse struct {
	UserID    string                   `json:"userId"`
	Items     []models.RecommendedItem `json:"items"`
	ColdStart bool                     `json:"coldStart"`
}

// SimilarItemsResponse is the body of GET /recommend/similar/{type}/{id}.
type SimilarItemsResponse struct {
	ItemKey string                   `json:"itemKey"`
	Items   []models.RecommendedItem `json:"items"`
}

// Health handles GET /health. It answers 200 whenever the process serves;
// model and catalog state are reported in the body.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.health(r.Context()))
}

func (h *Handler) health(ctx context.Context) *HealthResponse {
	bundle := h.engine.Model()

	resp := &HealthResponse{
		OK:         true,
		UserCount:  bundle.NumUsers(),
		ItemCount:  bundle.NumItems(),
		ModelReady: bundle.Ready(),
		Factors:    bundle.Factors(),
		DB:         h.database,
		Catalog:    h.catalogStatus(ctx),
	}
	if bundle != nil && !bundle.LoadedAt().IsZero() {
		loadedAt := bundle.LoadedAt()
		resp.LoadedAt = &loadedAt
	}
	if err := bundle.Err(); err != nil {
		resp.Error = err.Error()
	}
	return resp
}

func (h *Handler) catalogStatus(ctx context.Context) string {
	if h.catalog == nil {
		return CatalogDisabled
	}

	pingCtx, cancel := context.WithTimeout(ctx, h.pingTimeout)
	defer cancel()

	err := h.catalog.Ping(pingCtx)
	switch {
	case err == nil:
		return CatalogOK
	case errors.Is(err, catalog.ErrUnavailable):
		return CatalogCircuitOpen
	default:
		return CatalogUnreachable
	}
}

// RecommendUser handles GET /recommend/user/{userId}?n=
func (h *Handler) RecommendUser(w http.ResponseWriter, r *http.Request) {
	n, apiErr := countParam(r, h.engine.Config().DefaultUserN)
	if apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}

	req := validation.UserRecommendRequest{
		UserID: chi.URLParam(r, "userId"),
		N:      n,
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}

	result, err := h.engine.RecommendForUser(r.Context(), req.UserID, req.N)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, &UserRecommendationResponse{
		UserID:    result.UserID,
		Items:     nonNilItems(result.Items),
		ColdStart: result.ColdStart,
	})
}

// RecommendSimilar handles GET /recommend/similar/{type}/{id}?n=
func (h *Handler) RecommendSimilar(w http.ResponseWriter, r *http.Request) {
	h.similar(w, r, chi.URLParam(r, "type"))
}

// RecommendSimilarMovie handles the legacy GET /recommend/similar/{id}?n=,
// which always refers to a movie.
func (h *Handler) RecommendSimilarMovie(w http.ResponseWriter, r *http.Request) {
	h.similar(w, r, string(models.MediaMovie))
}

func (h *Handler) similar(w http.ResponseWriter, r *http.Request, mediaType string) {
	n, apiErr := countParam(r, h.engine.Config().DefaultSimilarN)
	if apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}

	req := validation.SimilarRequest{
		Type: mediaType,
		ID:   chi.URLParam(r, "id"),
		N:    n,
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}

	t, err := models.ParseMediaType(req.Type)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	result, err := h.engine.Similar(r.Context(), models.NewItemKey(t, req.ID), req.N)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, &SimilarItemsResponse{
		ItemKey: result.ItemKey.String(),
		Items:   nonNilItems(result.Items),
	})
}

// ReloadModel handles POST /admin/reload. A failed reload leaves the served
// model untouched.
func (h *Handler) ReloadModel(w http.ResponseWriter, r *http.Request) {
	if h.reloader == nil {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Model reload is not configured", nil, nil)
		return
	}

	if _, err := h.reloader.Reload(r.Context()); err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Model reload failed",
			map[string]interface{}{"reason": err.Error()}, err)
		return
	}

	respondJSON(w, http.StatusOK, h.health(r.Context()))
}

// countParam reads n from the query string. An absent n yields def; a
// non-integer n is a validation failure.
func countParam(r *http.Request, def int) (int, *APIError) {
	raw := r.URL.Query().Get("n")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &APIError{
			Code:    ErrCodeValidation,
			Message: "n must be an integer",
			Details: map[string]interface{}{"field": "n", "tag": "integer", "value": raw},
		}
	}
	return n, nil
}

func nonNilItems(items []models.RecommendedItem) []models.RecommendedItem {
	if items == nil {
		return []models.RecommendedItem{}
	}
	return items
}
