// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"navcms/internal/cache"
	"navcms/internal/menu"
	"navcms/internal/model"
	"navcms/internal/store"
	"navcms/internal/util"
	"navcms/internal/webhook"
)

// MenusHandler handles the menu and menu item API routes.
type MenusHandler struct {
	db         *sql.DB
	queries    *store.Queries
	caches     *cache.Manager
	dispatcher *webhook.Dispatcher
	logger     *slog.Logger
	maxDepth   int
}

// NewMenusHandler creates a MenusHandler. caches and dispatcher may be nil;
// the handler then skips invalidation and event dispatch.
func NewMenusHandler(db *sql.DB, caches *cache.Manager, dispatcher *webhook.Dispatcher, logger *slog.Logger, maxDepth int) *MenusHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxDepth < 1 {
		maxDepth = 1
	}
	return &MenusHandler{
		db:         db,
		queries:    store.New(db),
		caches:     caches,
		dispatcher: dispatcher,
		logger:     logger,
		maxDepth:   maxDepth,
	}
}

func (h *MenusHandler) invalidate() {
	if h.caches != nil {
		h.caches.InvalidateMenus()
	}
}

func (h *MenusHandler) dispatch(r *http.Request, eventType string, data any) {
	if h.dispatcher != nil {
		_ = h.dispatcher.DispatchEvent(r.Context(), eventType, data)
	}
}

// requireMenu loads the menu addressed by the {id} URL parameter. On failure
// the error response is already written.
func (h *MenusHandler) requireMenu(w http.ResponseWriter, r *http.Request) (model.Menu, bool) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid menu ID", nil)
		return model.Menu{}, false
	}

	m, err := h.queries.GetMenuByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Menu not found")
		} else {
			h.logger.Error("loading menu", "error", err, "menu_id", id)
			WriteInternalError(w, "Failed to load menu")
		}
		return model.Menu{}, false
	}
	return m, true
}

// MenuResponse is a menu in API responses.
type MenuResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Location  string    `json:"location,omitempty"`
	ItemCount int64     `json:"item_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *MenusHandler) menuResponse(r *http.Request, m model.Menu) MenuResponse {
	count, _ := h.queries.CountMenuItems(r.Context(), m.ID)
	return MenuResponse{
		ID:        m.ID,
		Name:      m.Name,
		Slug:      m.Slug,
		Location:  m.Location.String,
		ItemCount: count,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// List handles GET /api/menus.
func (h *MenusHandler) List(w http.ResponseWriter, r *http.Request) {
	menus, err := h.queries.ListMenus(r.Context())
	if err != nil {
		h.logger.Error("listing menus", "error", err)
		WriteInternalError(w, "Failed to list menus")
		return
	}

	resp := make([]MenuResponse, 0, len(menus))
	for _, m := range menus {
		resp = append(resp, h.menuResponse(r, m))
	}
	WriteSuccess(w, resp, &Meta{Total: int64(len(resp))})
}

// MenuRequest is the create/update payload for a menu.
type MenuRequest struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Location string `json:"location"`
}

func (req *MenuRequest) validate() map[string]string {
	fieldErrors := make(map[string]string)
	if req.Name == "" {
		fieldErrors["name"] = "Name is required"
	}
	if req.Slug == "" && req.Name != "" {
		req.Slug = util.Slugify(req.Name)
	}
	if !util.IsValidSlug(req.Slug) {
		fieldErrors["slug"] = "Slug may only contain lowercase letters, numbers and hyphens"
	}
	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

// Create handles POST /api/menus.
func (h *MenusHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req MenuRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := req.validate(); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	exists, err := h.queries.MenuSlugExists(r.Context(), req.Slug)
	if err != nil {
		WriteInternalError(w, "Failed to check slug")
		return
	}
	if exists != 0 {
		WriteValidationError(w, map[string]string{"slug": "Slug already exists"})
		return
	}

	m, err := h.queries.CreateMenu(r.Context(), store.CreateMenuParams{
		Name:     req.Name,
		Slug:     req.Slug,
		Location: util.NullStringFromValue(req.Location),
	})
	if err != nil {
		h.logger.Error("creating menu", "error", err)
		WriteInternalError(w, "Failed to create menu")
		return
	}

	h.invalidate()
	h.dispatch(r, model.EventMenuCreated, webhook.MenuEventData{ID: m.ID, Name: m.Name, Slug: m.Slug})
	WriteCreated(w, h.menuResponse(r, m))
}

// MenuDetailResponse is a menu with its item tree.
type MenuDetailResponse struct {
	MenuResponse
	Items []menu.Node `json:"items"`
}

// Get handles GET /api/menus/{id}.
func (h *MenusHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, ok := h.requireMenu(w, r)
	if !ok {
		return
	}

	models, err := h.queries.ListMenuItems(r.Context(), m.ID)
	if err != nil {
		h.logger.Error("listing menu items", "error", err, "menu_id", m.ID)
		WriteInternalError(w, "Failed to load menu items")
		return
	}

	WriteSuccess(w, MenuDetailResponse{
		MenuResponse: h.menuResponse(r, m),
		Items:        menu.BuildTree(menu.ItemsFromModels(models), h.maxDepth),
	}, nil)
}

// ListItems handles GET /api/menus/{id}/items. The list is flat and
// position-ordered; editors that maintain their own working copy consume
// this instead of the nested tree.
func (h *MenusHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	m, ok := h.requireMenu(w, r)
	if !ok {
		return
	}

	models, err := h.queries.ListMenuItems(r.Context(), m.ID)
	if err != nil {
		h.logger.Error("listing menu items", "error", err, "menu_id", m.ID)
		WriteInternalError(w, "Failed to load menu items")
		return
	}

	WriteSuccess(w, menu.ItemsFromModels(models), nil)
}

// Update handles PUT /api/menus/{id}.
func (h *MenusHandler) Update(w http.ResponseWriter, r *http.Request) {
	m, ok := h.requireMenu(w, r)
	if !ok {
		return
	}

	var req MenuRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := req.validate(); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	exists, err := h.queries.MenuSlugExistsExcluding(r.Context(), store.MenuSlugExistsExcludingParams{
		Slug: req.Slug,
		ID:   m.ID,
	})
	if err != nil {
		WriteInternalError(w, "Failed to check slug")
		return
	}
	if exists != 0 {
		WriteValidationError(w, map[string]string{"slug": "Slug already exists"})
		return
	}

	updated, err := h.queries.UpdateMenu(r.Context(), store.UpdateMenuParams{
		ID:        m.ID,
		Name:      req.Name,
		Slug:      req.Slug,
		Location:  util.NullStringFromValue(req.Location),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		h.logger.Error("updating menu", "error", err, "menu_id", m.ID)
		WriteInternalError(w, "Failed to update menu")
		return
	}

	h.invalidate()
	h.dispatch(r, model.EventMenuUpdated, webhook.MenuEventData{ID: updated.ID, Name: updated.Name, Slug: updated.Slug})
	WriteSuccess(w, h.menuResponse(r, updated), nil)
}

// Delete handles DELETE /api/menus/{id}. Items cascade.
func (h *MenusHandler) Delete(w http.ResponseWriter, r *http.Request) {
	m, ok := h.requireMenu(w, r)
	if !ok {
		return
	}

	if err := h.queries.DeleteMenu(r.Context(), m.ID); err != nil {
		h.logger.Error("deleting menu", "error", err, "menu_id", m.ID)
		WriteInternalError(w, "Failed to delete menu")
		return
	}

	h.invalidate()
	h.dispatch(r, model.EventMenuDeleted, webhook.MenuEventData{ID: m.ID, Name: m.Name, Slug: m.Slug})
	WriteSuccess(w, map[string]bool{"deleted": true}, nil)
}

// MenuItemRequest is the create/update payload for a menu item.
type MenuItemRequest struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Target   string `json:"target"`
	PageID   *int64 `json:"page_id"`
	ParentID *int64 `json:"parent_id"`
	CSSClass string `json:"css_class"`
	IsActive *bool  `json:"is_active"`
}

func (req *MenuItemRequest) validate() map[string]string {
	fieldErrors := make(map[string]string)
	if req.Title == "" {
		fieldErrors["title"] = "Title is required"
	}
	if req.URL == "" && req.PageID == nil {
		fieldErrors["url"] = "Either a URL or a linked page is required"
	}
	if req.Target != "" && !model.IsValidTarget(req.Target) {
		fieldErrors["target"] = "Invalid link target"
	}
	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

// checkParent validates the parent reference of a new or moved item: it
// must exist, belong to the same menu, and sit above the depth cap.
func (h *MenusHandler) checkParent(r *http.Request, menuID int64, parentID *int64) (string, bool) {
	if parentID == nil {
		return "", true
	}
	parent, err := h.queries.GetMenuItemByID(r.Context(), *parentID)
	if err != nil {
		return "Parent item not found", false
	}
	if parent.MenuID != menuID {
		return "Parent item belongs to a different menu", false
	}

	models, err := h.queries.ListMenuItems(r.Context(), menuID)
	if err != nil {
		return "Failed to load menu items", false
	}
	items := menu.ItemsFromModels(models)
	if menu.DepthOf(items, parentID)+1 > h.maxDepth {
		return "Nesting this item would exceed the maximum menu depth", false
	}
	return "", true
}

// CreateItem handles POST /api/menus/{id}/items. The new item is appended
// at the end of its parent group.
func (h *MenusHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	m, ok := h.requireMenu(w, r)
	if !ok {
		return
	}

	var req MenuItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := req.validate(); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}
	if msg, ok := h.checkParent(r, m.ID, req.ParentID); !ok {
		WriteValidationError(w, map[string]string{"parent_id": msg})
		return
	}

	maxPos, err := h.queries.GetMaxMenuItemPosition(r.Context(), store.GetMaxMenuItemPositionParams{
		MenuID:   m.ID,
		ParentID: util.NullInt64FromPtr(req.ParentID),
	})
	if err != nil {
		WriteInternalError(w, "Failed to determine item position")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := time.Now()
	item, err := h.queries.CreateMenuItem(r.Context(), store.CreateMenuItemParams{
		MenuID:    m.ID,
		ParentID:  util.NullInt64FromPtr(req.ParentID),
		Title:     req.Title,
		URL:       util.NullStringFromValue(req.URL),
		Target:    util.NullStringFromValue(req.Target),
		PageID:    util.NullInt64FromPtr(req.PageID),
		Position:  maxPos + 1,
		CSSClass:  util.NullStringFromValue(req.CSSClass),
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		h.logger.Error("creating menu item", "error", err, "menu_id", m.ID)
		WriteInternalError(w, "Failed to create menu item")
		return
	}

	h.invalidate()
	h.dispatch(r, model.EventMenuItemCreated, webhook.MenuItemEventData{
		ID:       item.ID,
		MenuID:   item.MenuID,
		Title:    item.Title,
		ParentID: util.PtrFromNullInt64(item.ParentID),
		Position: item.Position,
	})
	WriteCreated(w, menu.ItemFromModel(item))
}

// requireItem loads the item addressed by {itemID} and verifies it belongs
// to the menu.
func (h *MenusHandler) requireItem(w http.ResponseWriter, r *http.Request, menuID int64) (model.MenuItem, bool) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "Invalid item ID", nil)
		return model.MenuItem{}, false
	}

	item, err := h.queries.GetMenuItemByID(r.Context(), itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Menu item not found")
		} else {
			WriteInternalError(w, "Failed to load menu item")
		}
		return model.MenuItem{}, false
	}
	if item.MenuID != menuID {
		WriteBadRequest(w, "Item does not belong to this menu", nil)
		return model.MenuItem{}, false
	}
	return item, true
}

// UpdateItem handles PUT /api/menus/{id}/items/{itemID}. Parent and
// position changes go through the reorder endpoint; this one edits content
// fields only.
func (h *MenusHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	m, ok := h.requireMenu(w, r)
	if !ok {
		return
	}
	item, ok := h.requireItem(w, r, m.ID)
	if !ok {
		return
	}

	var req MenuItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fieldErrors := req.validate(); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	isActive := item.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	updated, err := h.queries.UpdateMenuItem(r.Context(), store.UpdateMenuItemParams{
		ID:        item.ID,
		ParentID:  item.ParentID,
		Title:     req.Title,
		URL:       util.NullStringFromValue(req.URL),
		Target:    util.NullStringFromValue(req.Target),
		PageID:    util.NullInt64FromPtr(req.PageID),
		Position:  item.Position,
		CSSClass:  util.NullStringFromValue(req.CSSClass),
		IsActive:  isActive,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		h.logger.Error("updating menu item", "error", err, "item_id", item.ID)
		WriteInternalError(w, "Failed to update menu item")
		return
	}

	h.invalidate()
	h.dispatch(r, model.EventMenuItemUpdated, webhook.MenuItemEventData{
		ID:       updated.ID,
		MenuID:   updated.MenuID,
		Title:    updated.Title,
		ParentID: util.PtrFromNullInt64(updated.ParentID),
		Position: updated.Position,
	})
	WriteSuccess(w, menu.ItemFromModel(updated), nil)
}

// DeleteItem handles DELETE /api/menus/{id}/items/{itemID}. Child items
// cascade; the surviving siblings are re-sequenced to stay dense.
func (h *MenusHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	m, ok := h.requireMenu(w, r)
	if !ok {
		return
	}
	item, ok := h.requireItem(w, r, m.ID)
	if !ok {
		return
	}

	if err := h.queries.DeleteMenuItem(r.Context(), item.ID); err != nil {
		h.logger.Error("deleting menu item", "error", err, "item_id", item.ID)
		WriteInternalError(w, "Failed to delete menu item")
		return
	}

	if err := h.resequence(r, m.ID); err != nil {
		h.logger.Error("re-sequencing after delete", "error", err, "menu_id", m.ID)
		WriteInternalError(w, "Failed to re-sequence menu items")
		return
	}

	h.invalidate()
	h.dispatch(r, model.EventMenuItemDeleted, webhook.MenuItemEventData{
		ID:       item.ID,
		MenuID:   item.MenuID,
		Title:    item.Title,
		ParentID: util.PtrFromNullInt64(item.ParentID),
		Position: item.Position,
	})
	WriteSuccess(w, map[string]bool{"deleted": true}, nil)
}

// resequence closes the position gaps in every parent group of a menu.
func (h *MenusHandler) resequence(r *http.Request, menuID int64) error {
	models, err := h.queries.ListMenuItems(r.Context(), menuID)
	if err != nil {
		return err
	}

	items := menu.Resequence(menu.ItemsFromModels(models))
	api := menu.NewStoreAPI(h.db)
	return api.UpdateMenuItemsOrder(r.Context(), menuID, menu.OrderUpdates(items))
}

// ReorderRequest is the reorder payload: one move descriptor, plus the
// menu version the client based the move on.
type ReorderRequest struct {
	menu.Move

	// MenuVersion is the menu's updated_at as last seen by the client.
	// When set, a menu modified since then rejects the batch with 409,
	// so concurrent editors cannot silently overwrite each other.
	MenuVersion *time.Time `json:"menu_version,omitempty"`
}

// ReorderResponse is the payload returned by a reorder call: the
// authoritative flat list after the move.
type ReorderResponse struct {
	Changed bool        `json:"changed"`
	Items   []menu.Item `json:"items"`
}

// Reorder handles POST /api/menus/{id}/reorder. The body is a single move
// descriptor; the whole batch of position updates is applied atomically.
func (h *MenusHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	m, ok := h.requireMenu(w, r)
	if !ok {
		return
	}

	var req ReorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	move := req.Move

	if req.MenuVersion != nil && m.UpdatedAt.After(*req.MenuVersion) {
		WriteConflict(w, "Menu has been modified since the provided version")
		return
	}

	models, err := h.queries.ListMenuItems(r.Context(), m.ID)
	if err != nil {
		h.logger.Error("listing menu items", "error", err, "menu_id", m.ID)
		WriteInternalError(w, "Failed to load menu items")
		return
	}
	items := menu.ItemsFromModels(models)

	next, changed, err := menu.Reorder(items, move, h.maxDepth)
	if err != nil {
		switch {
		case errors.Is(err, menu.ErrItemNotFound):
			WriteNotFound(w, err.Error())
		case errors.Is(err, menu.ErrStaleMove):
			WriteConflict(w, err.Error())
		case errors.Is(err, menu.ErrCycle), errors.Is(err, menu.ErrDepthExceeded):
			WriteValidationError(w, map[string]string{"dest_parent": err.Error()})
		default:
			WriteInternalError(w, "Failed to compute reorder")
		}
		return
	}

	if !changed {
		WriteSuccess(w, ReorderResponse{Changed: false, Items: items}, nil)
		return
	}

	// The batch is transactional: on failure nothing is applied and the
	// stored order is unchanged.
	api := menu.NewStoreAPI(h.db)
	if err := api.UpdateMenuItemsOrder(r.Context(), m.ID, menu.OrderUpdates(next)); err != nil {
		h.logger.Warn("persisting reorder failed",
			"category", model.EventCategoryMenu,
			"menu_id", m.ID,
			"item_id", move.ItemID,
			"error", err)
		WriteError(w, http.StatusConflict, "reorder_failed",
			"Reorder could not be persisted; the stored order is unchanged", nil)
		return
	}

	h.invalidate()
	h.dispatch(r, model.EventMenuItemsReordered, webhook.ReorderEventData{
		MenuID:   m.ID,
		MenuSlug: m.Slug,
		ItemID:   move.ItemID,
		Items:    len(next),
	})
	WriteSuccess(w, ReorderResponse{Changed: true, Items: next}, nil)
}
