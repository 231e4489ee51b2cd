// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"navcms/internal/model"
	"navcms/internal/store"
	"navcms/internal/util"
)

// WebhooksHandler handles the webhook configuration API routes.
type WebhooksHandler struct {
	queries *store.Queries
	logger  *slog.Logger

	// validateURL guards against SSRF; tests swap in a permissive version
	// so they can target httptest servers on loopback.
	validateURL func(string) error
}

// NewWebhooksHandler creates a WebhooksHandler.
func NewWebhooksHandler(db *sql.DB, logger *slog.Logger) *WebhooksHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhooksHandler{
		queries:     store.New(db),
		logger:      logger,
		validateURL: util.ValidateWebhookURL,
	}
}

// WebhookRequest is the create/update payload for a webhook.
type WebhookRequest struct {
	Name     string            `json:"name"`
	URL      string            `json:"url"`
	Events   []string          `json:"events"`
	IsActive *bool             `json:"is_active"`
	Headers  map[string]string `json:"headers"`
}

func (h *WebhooksHandler) validate(req *WebhookRequest) map[string]string {
	errs := make(map[string]string)
	if req.Name == "" {
		errs["name"] = "Name is required"
	}
	if req.URL == "" {
		errs["url"] = "URL is required"
	} else if err := h.validateURL(req.URL); err != nil {
		errs["url"] = err.Error()
	}
	if len(req.Events) == 0 {
		errs["events"] = "At least one event subscription is required"
	}
	known := make(map[string]bool)
	for _, e := range model.AllWebhookEvents() {
		known[e.Type] = true
	}
	for _, e := range req.Events {
		if !known[e] {
			errs["events"] = "Unknown event type: " + e
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// WebhookResponse is a webhook in API responses. The signing secret is
// only included in the create response.
type WebhookResponse struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	URL       string            `json:"url"`
	Events    []string          `json:"events"`
	IsActive  bool              `json:"is_active"`
	Headers   map[string]string `json:"headers,omitempty"`
	Secret    string            `json:"secret,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func webhookResponse(w model.Webhook) WebhookResponse {
	return WebhookResponse{
		ID:        w.ID,
		Name:      w.Name,
		URL:       w.URL,
		Events:    w.GetEvents(),
		IsActive:  w.IsActive,
		Headers:   w.GetHeaders(),
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// List handles GET /api/webhooks.
func (h *WebhooksHandler) List(w http.ResponseWriter, r *http.Request) {
	hooks, err := h.queries.ListWebhooks(r.Context())
	if err != nil {
		h.logger.Error("listing webhooks", "error", err)
		WriteInternalError(w, "Failed to list webhooks")
		return
	}

	resp := make([]WebhookResponse, 0, len(hooks))
	for _, hook := range hooks {
		resp = append(resp, webhookResponse(hook))
	}
	WriteSuccess(w, resp, &Meta{Total: int64(len(resp))})
}

// Create handles POST /api/webhooks. The generated signing secret is
// returned once, in this response only.
func (h *WebhooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req WebhookRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := h.validate(&req); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	secret, err := model.GenerateWebhookSecret()
	if err != nil {
		h.logger.Error("generating webhook secret", "error", err)
		WriteInternalError(w, "Failed to generate signing secret")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	hook, err := h.queries.CreateWebhook(r.Context(), store.CreateWebhookParams{
		Name:     req.Name,
		URL:      req.URL,
		Secret:   secret,
		Events:   marshalEvents(req.Events),
		IsActive: isActive,
		Headers:  marshalHeaders(req.Headers),
	})
	if err != nil {
		h.logger.Error("creating webhook", "error", err)
		WriteInternalError(w, "Failed to create webhook")
		return
	}

	resp := webhookResponse(hook)
	resp.Secret = secret
	WriteCreated(w, resp)
}

// requireWebhook loads the webhook addressed by {id}.
func (h *WebhooksHandler) requireWebhook(w http.ResponseWriter, r *http.Request) (model.Webhook, bool) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid webhook ID", nil)
		return model.Webhook{}, false
	}

	hook, err := h.queries.GetWebhookByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Webhook not found")
		} else {
			h.logger.Error("loading webhook", "error", err, "webhook_id", id)
			WriteInternalError(w, "Failed to load webhook")
		}
		return model.Webhook{}, false
	}
	return hook, true
}

// Get handles GET /api/webhooks/{id}.
func (h *WebhooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	hook, ok := h.requireWebhook(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, webhookResponse(hook), nil)
}

// Update handles PUT /api/webhooks/{id}.
func (h *WebhooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	hook, ok := h.requireWebhook(w, r)
	if !ok {
		return
	}

	var req WebhookRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := h.validate(&req); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	isActive := hook.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	updated, err := h.queries.UpdateWebhook(r.Context(), store.UpdateWebhookParams{
		ID:        hook.ID,
		Name:      req.Name,
		URL:       req.URL,
		Events:    marshalEvents(req.Events),
		IsActive:  isActive,
		Headers:   marshalHeaders(req.Headers),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		h.logger.Error("updating webhook", "error", err, "webhook_id", hook.ID)
		WriteInternalError(w, "Failed to update webhook")
		return
	}
	WriteSuccess(w, webhookResponse(updated), nil)
}

// Delete handles DELETE /api/webhooks/{id}.
func (h *WebhooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	hook, ok := h.requireWebhook(w, r)
	if !ok {
		return
	}

	if err := h.queries.DeleteWebhook(r.Context(), hook.ID); err != nil {
		h.logger.Error("deleting webhook", "error", err, "webhook_id", hook.ID)
		WriteInternalError(w, "Failed to delete webhook")
		return
	}
	WriteSuccess(w, map[string]bool{"deleted": true}, nil)
}

// ListDeliveries handles GET /api/webhooks/{id}/deliveries.
func (h *WebhooksHandler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	hook, ok := h.requireWebhook(w, r)
	if !ok {
		return
	}

	deliveries, err := h.queries.ListWebhookDeliveries(r.Context(), hook.ID, 50)
	if err != nil {
		h.logger.Error("listing deliveries", "error", err, "webhook_id", hook.ID)
		WriteInternalError(w, "Failed to list deliveries")
		return
	}
	if deliveries == nil {
		deliveries = []model.WebhookDelivery{}
	}
	WriteSuccess(w, deliveries, &Meta{Total: int64(len(deliveries))})
}

// Events handles GET /api/webhooks/events: the catalog of subscribable
// event types.
func (h *WebhooksHandler) Events(w http.ResponseWriter, _ *http.Request) {
	type eventInfo struct {
		Type        string `json:"type"`
		Description string `json:"description"`
	}
	events := make([]eventInfo, 0)
	for _, e := range model.AllWebhookEvents() {
		events = append(events, eventInfo{Type: e.Type, Description: e.Description})
	}
	WriteSuccess(w, events, nil)
}

func marshalEvents(events []string) string {
	if len(events) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(events)
	return string(data)
}

func marshalHeaders(headers map[string]string) string {
	if len(headers) == 0 {
		return "{}"
	}
	data, _ := json.Marshal(headers)
	return string(data)
}
