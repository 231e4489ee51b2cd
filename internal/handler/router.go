// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"navcms/internal/cache"
	"navcms/internal/config"
	"navcms/internal/middleware"
	"navcms/internal/service"
	"navcms/internal/version"
	"navcms/internal/webhook"
)

// RouterDeps bundles the shared dependencies the API routes need.
type RouterDeps struct {
	DB         *sql.DB
	Caches     *cache.Manager
	Dispatcher *webhook.Dispatcher
	Logger     *slog.Logger
	Version    *version.Info
}

// NewRouter builds the chi router with all API and health routes mounted.
func NewRouter(cfg *config.Config, deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if cfg.IsDevelopment() {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead) // HEAD support for uptime monitoring
	r.Use(middleware.Timeout(cfg.RequestTimeoutDuration()))

	healthHandler := NewHealthHandler(deps.DB, deps.Caches, deps.Version)
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	menusHandler := NewMenusHandler(deps.DB, deps.Caches, deps.Dispatcher, deps.Logger, cfg.MenuMaxDepth)
	pagesHandler := NewPagesHandler(deps.DB, deps.Caches, deps.Dispatcher, deps.Logger)
	webhooksHandler := NewWebhooksHandler(deps.DB, deps.Logger)

	var menuCache *cache.MenuCache
	if deps.Caches != nil {
		menuCache = deps.Caches.Menus
	}
	navHandler := NewNavHandler(service.NewMenuService(deps.DB, menuCache))

	apiRateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, deps.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiRateLimiter.Middleware())

		r.Route("/menus", func(r chi.Router) {
			r.Get("/", menusHandler.List)
			r.Post("/", menusHandler.Create)

			r.Route("/{id:[0-9]+}", func(r chi.Router) {
				r.Get("/", menusHandler.Get)
				r.Put("/", menusHandler.Update)
				r.Delete("/", menusHandler.Delete)

				r.Get("/items", menusHandler.ListItems)
				r.Post("/items", menusHandler.CreateItem)
				r.Put("/items/{itemID:[0-9]+}", menusHandler.UpdateItem)
				r.Delete("/items/{itemID:[0-9]+}", menusHandler.DeleteItem)

				r.Post("/reorder", menusHandler.Reorder)
			})
		})

		r.Route("/pages", func(r chi.Router) {
			r.Get("/", pagesHandler.List)
			r.Post("/", pagesHandler.Create)
			r.Get("/{id:[0-9]+}", pagesHandler.Get)
			r.Put("/{id:[0-9]+}", pagesHandler.Update)
			r.Delete("/{id:[0-9]+}", pagesHandler.Delete)
		})

		r.Route("/webhooks", func(r chi.Router) {
			r.Get("/", webhooksHandler.List)
			r.Post("/", webhooksHandler.Create)
			r.Get("/events", webhooksHandler.Events)
			r.Get("/{id:[0-9]+}", webhooksHandler.Get)
			r.Put("/{id:[0-9]+}", webhooksHandler.Update)
			r.Delete("/{id:[0-9]+}", webhooksHandler.Delete)
			r.Get("/{id:[0-9]+}/deliveries", webhooksHandler.ListDeliveries)
		})

		// Rendered navigation for frontend consumption.
		r.Get("/nav/{slug}", navHandler.Get)
	})

	return r
}

// NavHandler serves rendered navigation trees for frontend consumers.
type NavHandler struct {
	menus *service.MenuService
}

// NewNavHandler creates a NavHandler.
func NewNavHandler(menus *service.MenuService) *NavHandler {
	return &NavHandler{menus: menus}
}

// Get handles GET /api/nav/{slug}. A missing or empty menu renders as an
// empty list, never an error, so templates can consume it unconditionally.
func (h *NavHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	items := h.menus.GetMenu(r.Context(), slug)
	if items == nil {
		items = []service.MenuItem{}
	}
	WriteSuccess(w, items, nil)
}
