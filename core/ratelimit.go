package core

import (
	"context"
	"time"
)

type (
	// RateLimitConfig bounds how often a given user may hit an endpoint
	// within a rolling fixed window.
	RateLimitConfig struct {
		Endpoint    string // e.g. "tts" | "process-deck"
		MaxRequests int
		Window      time.Duration
	}

	RateLimitResult struct {
		Allowed   bool
		Remaining int
	}

	// RateLimiter enforces per-user quotas. Implementations must perform the
	// read-check-increment as one atomic operation: two concurrent requests
	// must never both pass the check before either increments.
	RateLimiter interface {
		Allow(ctx context.Context, userID string, conf RateLimitConfig) (RateLimitResult, error)
	}
)
