// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"navcms/internal/model"
	"navcms/internal/store"
	"navcms/internal/testutil"
)

func createTestWebhook(t *testing.T, queries *store.Queries, url string, events []string) model.Webhook {
	t.Helper()

	var w model.Webhook
	w.SetEvents(events)
	wh, err := queries.CreateWebhook(context.Background(), store.CreateWebhookParams{
		Name:     "test hook",
		URL:      url,
		Secret:   "s3cret",
		Events:   w.Events,
		IsActive: true,
		Headers:  "{}",
	})
	if err != nil {
		t.Fatalf("CreateWebhook: %v", err)
	}
	return wh
}

func TestGenerateSignature(t *testing.T) {
	payload := []byte(`{"type":"menu.updated"}`)
	sig := GenerateSignature(payload, "secret")

	if !VerifySignature(payload, sig, "secret") {
		t.Error("signature does not verify with the right secret")
	}
	if VerifySignature(payload, sig, "wrong") {
		t.Error("signature verifies with the wrong secret")
	}
	if VerifySignature([]byte("tampered"), sig, "secret") {
		t.Error("signature verifies for a tampered payload")
	}
}

func TestCalculateBackoff(t *testing.T) {
	tests := []struct {
		attempt int64
		want    time.Duration
	}{
		{1, 1 * time.Minute},
		{2, 2 * time.Minute},
		{3, 4 * time.Minute},
		{4, 8 * time.Minute},
		{0, 1 * time.Minute},
		{100, MaxBackoff},
	}
	for _, tt := range tests {
		if got := calculateBackoff(tt.attempt); got != tt.want {
			t.Errorf("calculateBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestDispatchCreatesDeliveryRecords(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)
	wh := createTestWebhook(t, queries, "http://example.com/hook", []string{model.EventMenuItemsReordered})
	createTestWebhook(t, queries, "http://example.com/other", []string{model.EventPageCreated})

	d := NewDispatcher(db, testutil.TestLogger(), Config{Workers: 1})
	d.mu.Lock()
	d.running = true // mark running without starting workers, so records stay pending
	d.mu.Unlock()

	err := d.DispatchEvent(context.Background(), model.EventMenuItemsReordered,
		ReorderEventData{MenuID: 1, MenuSlug: "main", ItemID: 3, Items: 4})
	if err != nil {
		t.Fatalf("DispatchEvent: %v", err)
	}

	var count int64
	var webhookID int64
	var status string
	err = db.QueryRow(`SELECT COUNT(*), MAX(webhook_id), MAX(status) FROM webhook_deliveries`).
		Scan(&count, &webhookID, &status)
	if err != nil {
		t.Fatalf("counting deliveries: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d deliveries, want 1 (only the subscribed webhook)", count)
	}
	if webhookID != wh.ID {
		t.Errorf("delivery webhook_id = %d, want %d", webhookID, wh.ID)
	}
	if status != model.DeliveryStatusPending {
		t.Errorf("status = %q, want pending", status)
	}
}

func TestProcessDeliverySuccess(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)

	var gotSig, gotEvent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig.Store(r.Header.Get("X-Webhook-Signature"))
		gotEvent.Store(r.Header.Get("X-Webhook-Event"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wh := createTestWebhook(t, queries, srv.URL, []string{model.EventMenuUpdated})
	payload := []byte(`{"type":"menu.updated"}`)
	record, err := queries.CreateWebhookDelivery(context.Background(), store.CreateWebhookDeliveryParams{
		WebhookID: wh.ID,
		UUID:      "test-uuid",
		Event:     model.EventMenuUpdated,
		Payload:   string(payload),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateWebhookDelivery: %v", err)
	}

	d := NewDispatcher(db, testutil.TestLogger(), DefaultConfig())
	d.processDelivery(context.Background(), &QueuedDelivery{
		DeliveryID: record.ID,
		UUID:       record.UUID,
		WebhookID:  wh.ID,
		Event:      model.EventMenuUpdated,
		Payload:    payload,
		URL:        srv.URL,
		Secret:     wh.Secret,
	})

	updated, err := queries.GetWebhookDelivery(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("GetWebhookDelivery: %v", err)
	}
	if updated.Status != model.DeliveryStatusDelivered {
		t.Errorf("status = %q, want delivered", updated.Status)
	}
	if updated.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", updated.Attempts)
	}
	if !updated.DeliveredAt.Valid {
		t.Error("DeliveredAt not set")
	}

	wantSig := GenerateSignature(payload, wh.Secret)
	if gotSig.Load() != wantSig {
		t.Errorf("signature header = %v, want %v", gotSig.Load(), wantSig)
	}
	if gotEvent.Load() != model.EventMenuUpdated {
		t.Errorf("event header = %v", gotEvent.Load())
	}
}

func TestProcessDeliveryRetriesServerErrors(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	wh := createTestWebhook(t, queries, srv.URL, []string{model.EventMenuUpdated})
	record, err := queries.CreateWebhookDelivery(context.Background(), store.CreateWebhookDeliveryParams{
		WebhookID: wh.ID,
		UUID:      "retry-uuid",
		Event:     model.EventMenuUpdated,
		Payload:   "{}",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateWebhookDelivery: %v", err)
	}

	d := NewDispatcher(db, testutil.TestLogger(), DefaultConfig())
	d.processDelivery(context.Background(), &QueuedDelivery{
		DeliveryID: record.ID,
		UUID:       record.UUID,
		WebhookID:  wh.ID,
		Event:      model.EventMenuUpdated,
		Payload:    []byte("{}"),
		URL:        srv.URL,
		Secret:     wh.Secret,
	})

	updated, _ := queries.GetWebhookDelivery(context.Background(), record.ID)
	if updated.Status != model.DeliveryStatusFailed {
		t.Errorf("status = %q, want failed", updated.Status)
	}
	if !updated.NextRetryAt.Valid {
		t.Error("NextRetryAt not scheduled")
	}
	if updated.ResponseCode != (sql.NullInt64{Int64: 500, Valid: true}) {
		t.Errorf("ResponseCode = %+v, want 500", updated.ResponseCode)
	}
}

func TestProcessDeliveryMarksClientErrorsDead(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	wh := createTestWebhook(t, queries, srv.URL, []string{model.EventMenuUpdated})
	record, err := queries.CreateWebhookDelivery(context.Background(), store.CreateWebhookDeliveryParams{
		WebhookID: wh.ID,
		UUID:      "dead-uuid",
		Event:     model.EventMenuUpdated,
		Payload:   "{}",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateWebhookDelivery: %v", err)
	}

	d := NewDispatcher(db, testutil.TestLogger(), DefaultConfig())
	d.processDelivery(context.Background(), &QueuedDelivery{
		DeliveryID: record.ID,
		UUID:       record.UUID,
		WebhookID:  wh.ID,
		Event:      model.EventMenuUpdated,
		Payload:    []byte("{}"),
		URL:        srv.URL,
		Secret:     wh.Secret,
	})

	updated, _ := queries.GetWebhookDelivery(context.Background(), record.ID)
	if updated.Status != model.DeliveryStatusDead {
		t.Errorf("status = %q, want dead (404 is permanent)", updated.Status)
	}
}

func TestEnqueueRetries(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)
	wh := createTestWebhook(t, queries, "http://example.com/hook", []string{model.EventMenuUpdated})

	record, err := queries.CreateWebhookDelivery(context.Background(), store.CreateWebhookDeliveryParams{
		WebhookID: wh.ID,
		UUID:      "due-uuid",
		Event:     model.EventMenuUpdated,
		Payload:   "{}",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateWebhookDelivery: %v", err)
	}

	// Mark it failed with a retry time in the past.
	err = queries.UpdateDeliveryRetry(context.Background(), store.UpdateDeliveryRetryParams{
		NextRetryAt: sql.NullTime{Time: time.Now().Add(-time.Minute), Valid: true},
		UpdatedAt:   time.Now(),
		ID:          record.ID,
	})
	if err != nil {
		t.Fatalf("UpdateDeliveryRetry: %v", err)
	}

	d := NewDispatcher(db, testutil.TestLogger(), DefaultConfig())
	queued, err := d.EnqueueRetries(context.Background())
	if err != nil {
		t.Fatalf("EnqueueRetries: %v", err)
	}
	if queued != 1 {
		t.Errorf("queued = %d, want 1", queued)
	}

	select {
	case qd := <-d.queue:
		if qd.DeliveryID != record.ID {
			t.Errorf("queued delivery %d, want %d", qd.DeliveryID, record.ID)
		}
	default:
		t.Error("nothing on the queue")
	}
}
