// Copyright (c) 2026 navcms contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want 8080", cfg.ServerPort)
	}
	if cfg.MenuMaxDepth != 2 {
		t.Errorf("MenuMaxDepth = %d, want 2", cfg.MenuMaxDepth)
	}
	if !cfg.IsDevelopment() {
		t.Errorf("IsDevelopment() = false with Env = %q", cfg.Env)
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache() = true without NAVCMS_REDIS_URL")
	}
	if got := cfg.RequestTimeoutDuration(); got != 30*time.Second {
		t.Errorf("RequestTimeoutDuration() = %v, want 30s", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("NAVCMS_SERVER_HOST", "0.0.0.0")
	t.Setenv("NAVCMS_SERVER_PORT", "9090")
	t.Setenv("NAVCMS_MENU_MAX_DEPTH", "3")
	t.Setenv("NAVCMS_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got, want := cfg.ServerAddr(), "0.0.0.0:9090"; got != want {
		t.Errorf("ServerAddr() = %q, want %q", got, want)
	}
	if cfg.MenuMaxDepth != 3 {
		t.Errorf("MenuMaxDepth = %d, want 3", cfg.MenuMaxDepth)
	}
	if !cfg.UseRedisCache() {
		t.Error("UseRedisCache() = false with NAVCMS_REDIS_URL set")
	}
}

func TestLoadRejectsInvalidDepth(t *testing.T) {
	t.Setenv("NAVCMS_MENU_MAX_DEPTH", "0")

	if _, err := Load(); err == nil {
		t.Error("Load() accepted a zero menu depth")
	}
}

func TestLoadRejectsInvalidTimeout(t *testing.T) {
	t.Setenv("NAVCMS_REQUEST_TIMEOUT", "0")

	if _, err := Load(); err == nil {
		t.Error("Load() accepted a zero request timeout")
	}
}
