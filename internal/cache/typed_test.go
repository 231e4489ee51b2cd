// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestTypedCacheRoundTrip(t *testing.T) {
	backend := newTestCache(t)
	c := NewTypedCache[sample](backend, time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, "s", &sample{Name: "main", Count: 3}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := c.Get(ctx, "s")
	if !ok {
		t.Fatal("Get: miss, want hit")
	}
	if got.Name != "main" || got.Count != 3 {
		t.Errorf("Get = %+v, want {main 3}", got)
	}
}

func TestTypedCacheMiss(t *testing.T) {
	c := NewTypedCache[sample](newTestCache(t), time.Minute)

	if _, ok := c.Get(context.Background(), "absent"); ok {
		t.Error("Get returned a value for an absent key")
	}
}

func TestTypedCacheCorruptValueIsMiss(t *testing.T) {
	backend := newTestCache(t)
	c := NewTypedCache[sample](backend, time.Minute)
	ctx := context.Background()

	backend.Set(ctx, "bad", []byte("{not json"), 0)
	if _, ok := c.Get(ctx, "bad"); ok {
		t.Error("corrupt entry decoded as a hit")
	}
}

func TestTypedCacheGetOrSet(t *testing.T) {
	c := NewTypedCache[sample](newTestCache(t), time.Minute)
	ctx := context.Background()

	calls := 0
	load := func() (*sample, error) {
		calls++
		return &sample{Name: "loaded"}, nil
	}

	for i := 0; i < 2; i++ {
		got, err := c.GetOrSet(ctx, "s", load)
		if err != nil {
			t.Fatalf("GetOrSet: %v", err)
		}
		if got.Name != "loaded" {
			t.Errorf("Name = %q, want loaded", got.Name)
		}
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
}

func TestTypedCacheGetOrSetError(t *testing.T) {
	c := NewTypedCache[sample](newTestCache(t), time.Minute)

	wantErr := errors.New("load failed")
	_, err := c.GetOrSet(context.Background(), "s", func() (*sample, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
