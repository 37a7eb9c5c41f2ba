package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/edulabbr/oratoria/core"
)

// The upsert resets the window when it has elapsed, otherwise increments the
// counter, all in one round trip. Two concurrent requests hit the row lock
// sequentially, so the returned count is exact.
const rateLimitQuery = `
	INSERT INTO rate_limits (user_id, endpoint, count, window_start)
	VALUES ($1, $2, 1, now())
	ON CONFLICT (user_id, endpoint) DO UPDATE
	SET count = CASE
	        WHEN rate_limits.window_start <= now() - make_interval(secs => $3) THEN 1
	        ELSE rate_limits.count + 1
	    END,
	    window_start = CASE
	        WHEN rate_limits.window_start <= now() - make_interval(secs => $3) THEN now()
	        ELSE rate_limits.window_start
	    END
	RETURNING count`

type rateLimiter struct {
	db     *sqlx.DB
	logger core.Logger
}

var _ core.RateLimiter = (*rateLimiter)(nil) // interface compliance check

func NewRateLimiter(db *sqlx.DB, logger core.Logger) core.RateLimiter {
	return &rateLimiter{db: db, logger: logger}
}

// Allow fails open: an infrastructure error never blocks the request, it is
// logged and the request passes.
func (rl *rateLimiter) Allow(ctx context.Context, userID string, conf core.RateLimitConfig) (core.RateLimitResult, error) {
	var count int
	err := rl.db.GetContext(ctx, &count, rateLimitQuery, userID, conf.Endpoint, conf.Window.Seconds())
	if err != nil {
		rl.logger.Warn("rate limit check failed; allowing request", err)
		return core.RateLimitResult{Allowed: true, Remaining: 0}, nil
	}

	remaining := conf.MaxRequests - count
	if remaining < 0 {
		remaining = 0
	}
	return core.RateLimitResult{Allowed: count <= conf.MaxRequests, Remaining: remaining}, nil
}
