// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"navcms/internal/model"
)

const webhookColumns = "id, name, url, secret, events, is_active, headers, created_at, updated_at"

const deliveryColumns = "id, webhook_id, uuid, event, payload, response_code, response_body, attempts, next_retry_at, delivered_at, status, error_message, created_at, updated_at"

func scanWebhook(row interface{ Scan(...any) error }) (model.Webhook, error) {
	var w model.Webhook
	err := row.Scan(&w.ID, &w.Name, &w.URL, &w.Secret, &w.Events, &w.IsActive,
		&w.Headers, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

func scanDelivery(row interface{ Scan(...any) error }) (model.WebhookDelivery, error) {
	var d model.WebhookDelivery
	var responseBody, errorMessage sql.NullString
	err := row.Scan(&d.ID, &d.WebhookID, &d.UUID, &d.Event, &d.Payload, &d.ResponseCode,
		&responseBody, &d.Attempts, &d.NextRetryAt, &d.DeliveredAt, &d.Status,
		&errorMessage, &d.CreatedAt, &d.UpdatedAt)
	d.ResponseBody = responseBody.String
	d.ErrorMessage = errorMessage.String
	return d, err
}

// CreateWebhookParams holds parameters for CreateWebhook.
type CreateWebhookParams struct {
	Name     string
	URL      string
	Secret   string
	Events   string
	IsActive bool
	Headers  string
}

// CreateWebhook inserts a webhook configuration and returns it.
func (q *Queries) CreateWebhook(ctx context.Context, arg CreateWebhookParams) (model.Webhook, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO webhooks (name, url, secret, events, is_active, headers)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING `+webhookColumns,
		arg.Name, arg.URL, arg.Secret, arg.Events, arg.IsActive, arg.Headers)
	return scanWebhook(row)
}

// GetWebhookByID fetches a webhook by ID.
func (q *Queries) GetWebhookByID(ctx context.Context, id int64) (model.Webhook, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+webhookColumns+` FROM webhooks WHERE id = ?`, id)
	return scanWebhook(row)
}

// ListWebhooks returns all webhook configurations.
func (q *Queries) ListWebhooks(ctx context.Context) ([]model.Webhook, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+webhookColumns+` FROM webhooks ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var webhooks []model.Webhook
	for rows.Next() {
		w, err := scanWebhook(rows)
		if err != nil {
			return nil, err
		}
		webhooks = append(webhooks, w)
	}
	return webhooks, rows.Err()
}

// ListWebhooksForEvent returns active webhooks whose events list mentions the
// event type. The LIKE match is coarse; callers must re-check with HasEvent.
func (q *Queries) ListWebhooksForEvent(ctx context.Context, eventType string) ([]model.Webhook, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+webhookColumns+` FROM webhooks WHERE is_active = 1 AND events LIKE '%' || ? || '%'`,
		eventType)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var webhooks []model.Webhook
	for rows.Next() {
		w, err := scanWebhook(rows)
		if err != nil {
			return nil, err
		}
		webhooks = append(webhooks, w)
	}
	return webhooks, rows.Err()
}

// UpdateWebhookParams holds parameters for UpdateWebhook. The secret is
// not editable; rotating it means recreating the webhook.
type UpdateWebhookParams struct {
	ID        int64
	Name      string
	URL       string
	Events    string
	IsActive  bool
	Headers   string
	UpdatedAt time.Time
}

// UpdateWebhook updates a webhook configuration and returns it.
func (q *Queries) UpdateWebhook(ctx context.Context, arg UpdateWebhookParams) (model.Webhook, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE webhooks SET name = ?, url = ?, events = ?, is_active = ?, headers = ?, updated_at = ?
		 WHERE id = ? RETURNING `+webhookColumns,
		arg.Name, arg.URL, arg.Events, arg.IsActive, arg.Headers, arg.UpdatedAt, arg.ID)
	return scanWebhook(row)
}

// DeleteWebhook deletes a webhook; its deliveries cascade.
func (q *Queries) DeleteWebhook(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM webhooks WHERE id = ?`, id)
	return err
}

// CreateWebhookDeliveryParams holds parameters for CreateWebhookDelivery.
type CreateWebhookDeliveryParams struct {
	WebhookID int64
	UUID      string
	Event     string
	Payload   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateWebhookDelivery inserts a pending delivery record and returns it.
func (q *Queries) CreateWebhookDelivery(ctx context.Context, arg CreateWebhookDeliveryParams) (model.WebhookDelivery, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO webhook_deliveries (webhook_id, uuid, event, payload, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 'pending', ?, ?) RETURNING `+deliveryColumns,
		arg.WebhookID, arg.UUID, arg.Event, arg.Payload, arg.CreatedAt, arg.UpdatedAt)
	return scanDelivery(row)
}

// GetWebhookDelivery fetches a delivery record by ID.
func (q *Queries) GetWebhookDelivery(ctx context.Context, id int64) (model.WebhookDelivery, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+deliveryColumns+` FROM webhook_deliveries WHERE id = ?`, id)
	return scanDelivery(row)
}

// ListWebhookDeliveries returns the most recent deliveries for a webhook.
func (q *Queries) ListWebhookDeliveries(ctx context.Context, webhookID, limit int64) ([]model.WebhookDelivery, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+deliveryColumns+` FROM webhook_deliveries
		 WHERE webhook_id = ? ORDER BY created_at DESC LIMIT ?`,
		webhookID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var deliveries []model.WebhookDelivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

// ListRetryableDeliveries returns failed deliveries whose retry time has passed.
func (q *Queries) ListRetryableDeliveries(ctx context.Context, now time.Time) ([]model.WebhookDelivery, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+deliveryColumns+` FROM webhook_deliveries
		 WHERE status = 'failed' AND next_retry_at IS NOT NULL AND next_retry_at <= ?
		 ORDER BY next_retry_at`, now)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var deliveries []model.WebhookDelivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

// UpdateDeliverySuccessParams holds parameters for UpdateDeliverySuccess.
type UpdateDeliverySuccessParams struct {
	ResponseCode sql.NullInt64
	ResponseBody sql.NullString
	DeliveredAt  sql.NullTime
	UpdatedAt    time.Time
	ID           int64
}

// UpdateDeliverySuccess marks a delivery as delivered.
func (q *Queries) UpdateDeliverySuccess(ctx context.Context, arg UpdateDeliverySuccessParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE webhook_deliveries
		 SET status = 'delivered', response_code = ?, response_body = ?,
		     attempts = attempts + 1, delivered_at = ?, updated_at = ?
		 WHERE id = ?`,
		arg.ResponseCode, arg.ResponseBody, arg.DeliveredAt, arg.UpdatedAt, arg.ID)
	return err
}

// UpdateDeliveryRetryParams holds parameters for UpdateDeliveryRetry.
type UpdateDeliveryRetryParams struct {
	ResponseCode sql.NullInt64
	ResponseBody sql.NullString
	ErrorMessage sql.NullString
	NextRetryAt  sql.NullTime
	UpdatedAt    time.Time
	ID           int64
}

// UpdateDeliveryRetry marks a delivery as failed and schedules the next attempt.
func (q *Queries) UpdateDeliveryRetry(ctx context.Context, arg UpdateDeliveryRetryParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE webhook_deliveries
		 SET status = 'failed', response_code = ?, response_body = ?, error_message = ?,
		     attempts = attempts + 1, next_retry_at = ?, updated_at = ?
		 WHERE id = ?`,
		arg.ResponseCode, arg.ResponseBody, arg.ErrorMessage, arg.NextRetryAt, arg.UpdatedAt, arg.ID)
	return err
}

// UpdateDeliveryDeadParams holds parameters for UpdateDeliveryDead.
type UpdateDeliveryDeadParams struct {
	ErrorMessage sql.NullString
	UpdatedAt    time.Time
	ID           int64
}

// UpdateDeliveryDead marks a delivery as dead; no further retries.
func (q *Queries) UpdateDeliveryDead(ctx context.Context, arg UpdateDeliveryDeadParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE webhook_deliveries
		 SET status = 'dead', error_message = ?, attempts = attempts + 1, next_retry_at = NULL, updated_at = ?
		 WHERE id = ?`,
		arg.ErrorMessage, arg.UpdatedAt, arg.ID)
	return err
}
