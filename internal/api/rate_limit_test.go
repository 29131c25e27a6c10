package api

import (
	"testing"
	"time"
)

func TestNewAIRateLimiterDisabledForZero(t *testing.T) {
	if limiter := newAIRateLimiter(0); limiter != nil {
		t.Fatalf("expected nil limiter for zero limit")
	}
}

func TestFixedWindowLimiterAllow(t *testing.T) {
	current := time.Date(2026, 2, 22, 12, 0, 30, 0, time.UTC)
	limiter := newFixedWindowLimiter(2, func() time.Time { return current })

	if !limiter.Allow() {
		t.Fatalf("expected first request to be allowed")
	}
	if !limiter.Allow() {
		t.Fatalf("expected second request to be allowed")
	}
	if limiter.Allow() {
		t.Fatalf("expected third request to be blocked")
	}

	current = current.Add(45 * time.Second)
	if !limiter.Allow() {
		t.Fatalf("expected new time window request to be allowed")
	}
}
