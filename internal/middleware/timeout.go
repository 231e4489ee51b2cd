// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for request limiting and
// timeout handling.
package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Timeout applies a per-request deadline. A handler that overruns it gets
// its context cancelled and the client receives a JSON 503, unless a
// response was already started.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			gw := &guardedWriter{ResponseWriter: w}
			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(gw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if gw.claim() {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusServiceUnavailable)
					_, _ = w.Write([]byte(`{"success":false,"error":{"code":"timeout","message":"Request timed out"}}`))
				}
			}
		})
	}
}

// guardedWriter serializes the race between the handler goroutine and the
// timeout path so exactly one of them writes the status line.
type guardedWriter struct {
	http.ResponseWriter
	mu      sync.Mutex
	started bool
}

// claim marks the response as started and reports whether the caller won.
func (gw *guardedWriter) claim() bool {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if gw.started {
		return false
	}
	gw.started = true
	return true
}

func (gw *guardedWriter) WriteHeader(code int) {
	if gw.claim() {
		gw.ResponseWriter.WriteHeader(code)
	}
}

func (gw *guardedWriter) Write(b []byte) (int, error) {
	gw.WriteHeader(http.StatusOK)

	gw.mu.Lock()
	defer gw.mu.Unlock()
	return gw.ResponseWriter.Write(b)
}
