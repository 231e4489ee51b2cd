// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs: webhook retry
// sweeps, event log pruning and menu cache warming.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"navcms/internal/cache"
	"navcms/internal/store"
	"navcms/internal/webhook"
)

// Options configures the scheduler's jobs. Nil collaborators disable the
// jobs that need them.
type Options struct {
	Dispatcher *webhook.Dispatcher
	Caches     *cache.Manager

	// EventRetentionDays controls event log pruning; 0 disables it.
	EventRetentionDays int
}

// Scheduler owns the cron runner.
type Scheduler struct {
	db     *sql.DB
	cron   *cron.Cron
	logger *slog.Logger
	opts   Options
}

// New creates a scheduler instance.
func New(db *sql.DB, logger *slog.Logger, opts Options) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		db:     db,
		cron:   cron.New(),
		logger: logger,
		opts:   opts,
	}
}

// Start registers the jobs and starts the cron runner.
func (s *Scheduler) Start() error {
	if s.opts.Dispatcher != nil {
		// Failed deliveries become eligible on a minute scale.
		if _, err := s.cron.AddFunc("* * * * *", s.sweepWebhookRetries); err != nil {
			return err
		}
	}

	if s.opts.EventRetentionDays > 0 {
		if _, err := s.cron.AddFunc("30 3 * * *", s.pruneEventLog); err != nil {
			return err
		}
	}

	if s.opts.Caches != nil {
		if _, err := s.cron.AddFunc("0 * * * *", s.warmMenuCache); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop stops the runner and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) sweepWebhookRetries() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	queued, err := s.opts.Dispatcher.EnqueueRetries(ctx)
	if err != nil {
		s.logger.Error("webhook retry sweep failed", "error", err)
		return
	}
	if queued > 0 {
		s.logger.Info("webhook retries queued", "count", queued)
	}
}

func (s *Scheduler) pruneEventLog() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -s.opts.EventRetentionDays)
	deleted, err := store.New(s.db).DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("event log pruning failed", "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Info("event log pruned",
			"deleted", deleted,
			"retention_days", s.opts.EventRetentionDays)
	}
}

func (s *Scheduler) warmMenuCache() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	s.opts.Caches.Preload(ctx)
}
