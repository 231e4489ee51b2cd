// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"navcms/internal/store"
)

// Dispatcher fans webhook events out to subscribed endpoints. Each dispatch
// creates a durable delivery record, then a worker pool performs the HTTP
// deliveries asynchronously.
type Dispatcher struct {
	db      *sql.DB
	queries *store.Queries
	logger  *slog.Logger
	queue   chan *QueuedDelivery
	workers int
	wg      sync.WaitGroup
	done    chan struct{}
	mu      sync.RWMutex
	running bool
}

// QueuedDelivery is one delivery handed to the worker pool.
type QueuedDelivery struct {
	DeliveryID int64
	UUID       string
	WebhookID  int64
	Event      string
	Payload    []byte
	URL        string
	Secret     string
	Headers    map[string]string
}

// Config holds dispatcher configuration.
type Config struct {
	Workers int
}

// DefaultConfig returns the default dispatcher configuration.
func DefaultConfig() Config {
	return Config{Workers: 3}
}

// NewDispatcher creates a webhook dispatcher.
func NewDispatcher(db *sql.DB, logger *slog.Logger, cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		db:      db,
		queries: store.New(db),
		logger:  logger,
		queue:   make(chan *QueuedDelivery, 100),
		workers: cfg.Workers,
		done:    make(chan struct{}),
	}
}

// Start launches the worker pool. Starting twice is a no-op.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.logger.Info("starting webhook dispatcher", "workers", d.workers)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

// Stop stops the workers and waits for in-flight deliveries to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	close(d.done)
	d.wg.Wait()
	d.logger.Info("webhook dispatcher stopped")
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()

	for {
		select {
		case <-d.done:
			return
		case <-ctx.Done():
			return
		case delivery := <-d.queue:
			d.logger.Debug("processing delivery",
				"worker_id", id,
				"delivery_id", delivery.DeliveryID,
				"event", delivery.Event)
			d.processDelivery(ctx, delivery)
		}
	}
}

// Dispatch records and queues a delivery for every active webhook
// subscribed to the event type.
func (d *Dispatcher) Dispatch(ctx context.Context, event *Event) error {
	d.mu.RLock()
	running := d.running
	d.mu.RUnlock()
	if !running {
		d.logger.Warn("dispatcher not running, event dropped", "event_type", event.Type)
		return nil
	}

	webhooks, err := d.queries.ListWebhooksForEvent(ctx, event.Type)
	if err != nil {
		d.logger.Error("listing webhooks for event", "error", err, "event_type", event.Type)
		return err
	}
	if len(webhooks) == 0 {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, wh := range webhooks {
		// The SQL match is a LIKE; confirm the exact subscription.
		if !wh.HasEvent(event.Type) {
			continue
		}

		delivery, err := d.queries.CreateWebhookDelivery(ctx, store.CreateWebhookDeliveryParams{
			WebhookID: wh.ID,
			UUID:      uuid.NewString(),
			Event:     event.Type,
			Payload:   string(payload),
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			d.logger.Error("creating delivery record",
				"error", err,
				"webhook_id", wh.ID,
				"event_type", event.Type)
			continue
		}

		qd := &QueuedDelivery{
			DeliveryID: delivery.ID,
			UUID:       delivery.UUID,
			WebhookID:  wh.ID,
			Event:      event.Type,
			Payload:    payload,
			URL:        wh.URL,
			Secret:     wh.Secret,
			Headers:    wh.GetHeaders(),
		}

		select {
		case d.queue <- qd:
		default:
			// The retry sweep picks it up later.
			d.logger.Warn("delivery queue full", "delivery_id", delivery.ID)
		}
	}
	return nil
}

// DispatchEvent dispatches an event built from a type and payload.
func (d *Dispatcher) DispatchEvent(ctx context.Context, eventType string, data any) error {
	return d.Dispatch(ctx, NewEvent(eventType, data))
}

// EnqueueRetries re-queues failed deliveries whose retry time has passed.
// Called periodically by the scheduler.
func (d *Dispatcher) EnqueueRetries(ctx context.Context) (int, error) {
	deliveries, err := d.queries.ListRetryableDeliveries(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, delivery := range deliveries {
		wh, err := d.queries.GetWebhookByID(ctx, delivery.WebhookID)
		if err != nil {
			continue
		}
		if !wh.IsActive {
			continue
		}

		qd := &QueuedDelivery{
			DeliveryID: delivery.ID,
			UUID:       delivery.UUID,
			WebhookID:  wh.ID,
			Event:      delivery.Event,
			Payload:    []byte(delivery.Payload),
			URL:        wh.URL,
			Secret:     wh.Secret,
			Headers:    wh.GetHeaders(),
		}

		select {
		case d.queue <- qd:
			queued++
		default:
			return queued, nil
		}
	}
	return queued, nil
}

// GenerateSignature computes the HMAC-SHA256 payload signature.
func GenerateSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a payload signature in constant time.
func VerifySignature(payload []byte, signature, secret string) bool {
	expected := GenerateSignature(payload, secret)
	return hmac.Equal([]byte(signature), []byte(expected))
}
