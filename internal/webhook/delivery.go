// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"navcms/internal/model"
	"navcms/internal/store"
)

const (
	MaxAttempts    = 5
	InitialBackoff = 1 * time.Minute
	MaxBackoff     = 24 * time.Hour
	RequestTimeout = 30 * time.Second
	MaxResponseLen = 10 * 1024
	UserAgent      = "navcms/1.0"
)

// DeliveryResult is the outcome of one HTTP delivery attempt.
type DeliveryResult struct {
	Success      bool
	StatusCode   int
	ResponseBody string
	Error        error
	ShouldRetry  bool
}

var httpClient = &http.Client{
	Timeout: RequestTimeout,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	},
}

// processDelivery performs one delivery attempt and records the outcome:
// delivered, failed with a scheduled retry, or dead after MaxAttempts.
func (d *Dispatcher) processDelivery(ctx context.Context, delivery *QueuedDelivery) {
	record, err := d.queries.GetWebhookDelivery(ctx, delivery.DeliveryID)
	if err != nil {
		d.logger.Error("loading delivery record",
			"error", err,
			"delivery_id", delivery.DeliveryID)
		return
	}

	// A queue-full requeue or scheduler sweep may race a worker.
	if record.Status == model.DeliveryStatusDelivered || record.Status == model.DeliveryStatusDead {
		return
	}

	result := d.attemptDelivery(ctx, delivery)
	now := time.Now()

	if result.Success {
		err = d.queries.UpdateDeliverySuccess(ctx, store.UpdateDeliverySuccessParams{
			ResponseCode: sql.NullInt64{Int64: int64(result.StatusCode), Valid: true},
			ResponseBody: sql.NullString{String: result.ResponseBody, Valid: true},
			DeliveredAt:  sql.NullTime{Time: now, Valid: true},
			UpdatedAt:    now,
			ID:           delivery.DeliveryID,
		})
		if err != nil {
			d.logger.Error("recording delivery success",
				"error", err,
				"delivery_id", delivery.DeliveryID)
			return
		}
		d.logger.Info("webhook delivered",
			"delivery_id", delivery.DeliveryID,
			"webhook_id", delivery.WebhookID,
			"status_code", result.StatusCode)
		return
	}

	newAttempts := record.Attempts + 1
	errMsg := ""
	if result.Error != nil {
		errMsg = result.Error.Error()
	}

	if !result.ShouldRetry || newAttempts >= MaxAttempts {
		err = d.queries.UpdateDeliveryDead(ctx, store.UpdateDeliveryDeadParams{
			ErrorMessage: sql.NullString{String: errMsg, Valid: errMsg != ""},
			UpdatedAt:    now,
			ID:           delivery.DeliveryID,
		})
		if err != nil {
			d.logger.Error("recording dead delivery",
				"error", err,
				"delivery_id", delivery.DeliveryID)
			return
		}
		d.logger.Warn("webhook delivery dead",
			"category", model.EventCategoryWebhook,
			"delivery_id", delivery.DeliveryID,
			"webhook_id", delivery.WebhookID,
			"attempts", newAttempts,
			"reason", errMsg)
		return
	}

	backoff := calculateBackoff(newAttempts)
	err = d.queries.UpdateDeliveryRetry(ctx, store.UpdateDeliveryRetryParams{
		ResponseCode: sql.NullInt64{Int64: int64(result.StatusCode), Valid: result.StatusCode > 0},
		ResponseBody: sql.NullString{String: result.ResponseBody, Valid: result.ResponseBody != ""},
		ErrorMessage: sql.NullString{String: errMsg, Valid: errMsg != ""},
		NextRetryAt:  sql.NullTime{Time: now.Add(backoff), Valid: true},
		UpdatedAt:    now,
		ID:           delivery.DeliveryID,
	})
	if err != nil {
		d.logger.Error("scheduling delivery retry",
			"error", err,
			"delivery_id", delivery.DeliveryID)
		return
	}
	d.logger.Info("webhook delivery retry scheduled",
		"delivery_id", delivery.DeliveryID,
		"webhook_id", delivery.WebhookID,
		"attempt", newAttempts,
		"backoff", backoff.String())
}

// attemptDelivery performs the HTTP POST.
func (d *Dispatcher) attemptDelivery(ctx context.Context, delivery *QueuedDelivery) DeliveryResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, delivery.URL, bytes.NewReader(delivery.Payload))
	if err != nil {
		return DeliveryResult{
			Error:       fmt.Errorf("creating request: %w", err),
			ShouldRetry: false,
		}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("X-Webhook-Signature", GenerateSignature(delivery.Payload, delivery.Secret))
	req.Header.Set("X-Webhook-Event", delivery.Event)
	req.Header.Set("X-Webhook-Delivery-ID", delivery.UUID)
	for key, value := range delivery.Headers {
		req.Header.Set(key, value)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return DeliveryResult{
			Error:       fmt.Errorf("request failed: %w", err),
			ShouldRetry: true,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))
	responseBody := string(body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return DeliveryResult{
			Success:      true,
			StatusCode:   resp.StatusCode,
			ResponseBody: responseBody,
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// Client errors are permanent, except timeouts and throttling.
		shouldRetry := resp.StatusCode == http.StatusRequestTimeout ||
			resp.StatusCode == http.StatusTooManyRequests
		return DeliveryResult{
			StatusCode:   resp.StatusCode,
			ResponseBody: responseBody,
			Error:        fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
			ShouldRetry:  shouldRetry,
		}
	default:
		return DeliveryResult{
			StatusCode:   resp.StatusCode,
			ResponseBody: responseBody,
			Error:        fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
			ShouldRetry:  true,
		}
	}
}

// calculateBackoff doubles the delay per attempt: 1m, 2m, 4m, 8m, capped
// at MaxBackoff.
func calculateBackoff(attempt int64) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	backoff := time.Duration(float64(InitialBackoff) * math.Pow(2, float64(attempt-1)))
	if backoff > MaxBackoff {
		backoff = MaxBackoff
	}
	return backoff
}
