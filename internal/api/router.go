// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

// Package api exposes the recommendation engine over HTTP using the Chi router.
//
// Routes:
//
//	GET  /health                          model and catalog status
//	GET  /recommend/user/{userId}?n=      personalized recommendations
//	GET  /recommend/similar/{type}/{id}?n= items similar to a movie or series
//	GET  /recommend/similar/{id}?n=       legacy form, id is a movie
//	POST /admin/reload                    reload model artifacts (X-Admin-Token)
//	GET  /metrics                         Prometheus metrics
//
// Successful responses are bare JSON objects. Failures use the envelope
// {"success":false,"error":{"code","message","details","request_id"}}.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/cinerec/internal/middleware"
)

// Router sets up HTTP routes using Chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	adminToken    string
}

// NewRouter creates a router. The admin routes are only mounted when
// adminToken is non-empty.
func NewRouter(handler *Handler, chiMiddleware *ChiMiddleware, adminToken string) *Router {
	if chiMiddleware == nil {
		chiMiddleware = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: chiMiddleware,
		adminToken:    adminToken,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Applied to ALL routes in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(middleware.AccessLog)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil, nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Get("/health", router.handler.Health)
	})

	r.Route("/recommend", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit("recommend"))
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/user/{userId}", router.handler.RecommendUser)
		r.Get("/similar/{type}/{id}", router.handler.RecommendSimilar)
		r.Get("/similar/{id}", router.handler.RecommendSimilarMovie)
	})

	if router.adminToken != "" {
		r.Route("/admin", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit("admin"))
			r.Use(APISecurityHeaders())
			r.Use(middleware.PrometheusMetrics)
			r.Use(RequireAdminToken(router.adminToken))

			r.Post("/reload", router.handler.ReloadModel)
		})
	}

	return r
}
