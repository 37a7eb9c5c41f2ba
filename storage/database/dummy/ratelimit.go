package dummydb

import (
	"context"
	"time"

	"github.com/edulabbr/oratoria/core"
)

type (
	rateLimitKey struct {
		userID   string
		endpoint string
	}

	rateLimitRow struct {
		count       int
		windowStart time.Time
	}
)

type rateLimiter struct {
	db      *rateLimitTable
	nowFunc func() time.Time
}

var _ core.RateLimiter = (*rateLimiter)(nil) // interface compliance check

func NewRateLimiter(db *DB) core.RateLimiter {
	return &rateLimiter{db: db.rateLimit, nowFunc: time.Now}
}

func (rl *rateLimiter) Allow(_ context.Context, userID string, conf core.RateLimitConfig) (core.RateLimitResult, error) {
	rl.db.Lock()
	defer rl.db.Unlock()

	now := rl.nowFunc().UTC()
	key := rateLimitKey{userID: userID, endpoint: conf.Endpoint}

	row, ok := rl.db.table[key]
	if !ok || now.Sub(row.windowStart) >= conf.Window {
		rl.db.table[key] = &rateLimitRow{count: 1, windowStart: now}
		return core.RateLimitResult{Allowed: true, Remaining: conf.MaxRequests - 1}, nil
	}

	if row.count >= conf.MaxRequests {
		return core.RateLimitResult{Allowed: false, Remaining: 0}, nil
	}
	row.count++
	return core.RateLimitResult{Allowed: true, Remaining: conf.MaxRequests - row.count}, nil
}
