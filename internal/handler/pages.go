// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"navcms/internal/cache"
	"navcms/internal/model"
	"navcms/internal/store"
	"navcms/internal/util"
	"navcms/internal/webhook"
)

// PagesHandler handles the page API routes.
type PagesHandler struct {
	queries    *store.Queries
	caches     *cache.Manager
	pageCache  *cache.TypedCache[model.Page]
	dispatcher *webhook.Dispatcher
	logger     *slog.Logger
}

const pageCacheTTL = 5 * time.Minute

// NewPagesHandler creates a PagesHandler. caches and dispatcher may be nil.
func NewPagesHandler(db *sql.DB, caches *cache.Manager, dispatcher *webhook.Dispatcher, logger *slog.Logger) *PagesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	backend := cache.NewWithTTL(pageCacheTTL)
	if caches != nil {
		backend = caches.General
	}
	return &PagesHandler{
		queries:    store.New(db),
		caches:     caches,
		pageCache:  cache.NewTypedCache[model.Page](backend, pageCacheTTL),
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func pageCacheKey(id int64) string {
	return "page:" + strconv.FormatInt(id, 10)
}

func (h *PagesHandler) invalidate() {
	if h.caches != nil {
		h.caches.InvalidateMenus()
	}
}

func (h *PagesHandler) dispatch(r *http.Request, eventType string, p model.Page) {
	if h.dispatcher != nil {
		_ = h.dispatcher.DispatchEvent(r.Context(), eventType, webhook.PageEventData{
			ID:     p.ID,
			Title:  p.Title,
			Slug:   p.Slug,
			Status: p.Status,
		})
	}
}

// PageRequest is the create/update payload for a page.
type PageRequest struct {
	Title  string `json:"title"`
	Slug   string `json:"slug"`
	Status string `json:"status"`
}

func (req *PageRequest) validate() map[string]string {
	errs := make(map[string]string)
	req.Title = strings.TrimSpace(req.Title)
	req.Slug = strings.TrimSpace(req.Slug)

	if req.Title == "" {
		errs["title"] = "Title is required"
	}
	if req.Slug == "" {
		req.Slug = util.Slugify(req.Title)
	}
	if !util.IsValidSlug(req.Slug) {
		errs["slug"] = "Slug may only contain lowercase letters, digits and hyphens"
	}
	if req.Status == "" {
		req.Status = model.PageStatusDraft
	}
	if req.Status != model.PageStatusDraft && req.Status != model.PageStatusPublished {
		errs["status"] = "Status must be draft or published"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// List handles GET /api/pages with page/per_page pagination.
func (h *PagesHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	total, err := h.queries.CountPages(r.Context())
	if err != nil {
		h.logger.Error("counting pages", "error", err)
		WriteInternalError(w, "Failed to list pages")
		return
	}

	pages, err := h.queries.ListPages(r.Context(), store.ListPagesParams{
		Limit:  int64(perPage),
		Offset: int64((page - 1) * perPage),
	})
	if err != nil {
		h.logger.Error("listing pages", "error", err)
		WriteInternalError(w, "Failed to list pages")
		return
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	WriteSuccess(w, pages, &Meta{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   totalPages,
	})
}

// Get handles GET /api/pages/{id}.
func (h *PagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid page ID", nil)
		return
	}

	p, err := h.pageCache.GetOrSet(r.Context(), pageCacheKey(id), func() (*model.Page, error) {
		loaded, err := h.queries.GetPageByID(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return &loaded, nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Page not found")
		} else {
			h.logger.Error("loading page", "error", err, "page_id", id)
			WriteInternalError(w, "Failed to load page")
		}
		return
	}
	WriteSuccess(w, p, nil)
}

// Create handles POST /api/pages.
func (h *PagesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.validate(); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	if count, err := h.queries.PageSlugExists(r.Context(), req.Slug); err == nil && count > 0 {
		WriteConflict(w, "A page with this slug already exists")
		return
	}

	var publishedAt sql.NullTime
	if req.Status == model.PageStatusPublished {
		publishedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}

	p, err := h.queries.CreatePage(r.Context(), store.CreatePageParams{
		Title:       req.Title,
		Slug:        req.Slug,
		Status:      req.Status,
		PublishedAt: publishedAt,
	})
	if err != nil {
		h.logger.Error("creating page", "error", err)
		WriteInternalError(w, "Failed to create page")
		return
	}

	h.dispatch(r, model.EventPageCreated, p)
	WriteCreated(w, p)
}

// Update handles PUT /api/pages/{id}.
func (h *PagesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid page ID", nil)
		return
	}

	current, err := h.queries.GetPageByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Page not found")
		} else {
			h.logger.Error("loading page", "error", err, "page_id", id)
			WriteInternalError(w, "Failed to load page")
		}
		return
	}

	var req PageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.validate(); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	if req.Slug != current.Slug {
		if count, err := h.queries.PageSlugExists(r.Context(), req.Slug); err == nil && count > 0 {
			WriteConflict(w, "A page with this slug already exists")
			return
		}
	}

	publishedAt := current.PublishedAt
	if req.Status == model.PageStatusPublished && !publishedAt.Valid {
		publishedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}

	p, err := h.queries.UpdatePage(r.Context(), store.UpdatePageParams{
		ID:          id,
		Title:       req.Title,
		Slug:        req.Slug,
		Status:      req.Status,
		PublishedAt: publishedAt,
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		h.logger.Error("updating page", "error", err, "page_id", id)
		WriteInternalError(w, "Failed to update page")
		return
	}

	// Menu entries render the page slug in their URLs, so a slug or status
	// change must drop the cached trees.
	h.invalidate()
	_ = h.pageCache.Delete(r.Context(), pageCacheKey(id))
	h.dispatch(r, model.EventPageUpdated, p)
	WriteSuccess(w, p, nil)
}

// Delete handles DELETE /api/pages/{id}.
func (h *PagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid page ID", nil)
		return
	}

	p, err := h.queries.GetPageByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Page not found")
		} else {
			h.logger.Error("loading page", "error", err, "page_id", id)
			WriteInternalError(w, "Failed to load page")
		}
		return
	}

	if err := h.queries.DeletePage(r.Context(), id); err != nil {
		h.logger.Error("deleting page", "error", err, "page_id", id)
		WriteInternalError(w, "Failed to delete page")
		return
	}

	h.invalidate()
	_ = h.pageCache.Delete(r.Context(), pageCacheKey(id))
	h.dispatch(r, model.EventPageDeleted, p)
	WriteSuccess(w, map[string]bool{"deleted": true}, nil)
}
