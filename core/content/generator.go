package content

import (
	"context"

	"github.com/edulabbr/oratoria/core/deck"
)

// Generator is a content-generation strategy covering a whole deck batch.
// Implementations must return entries in input slide order. The rule-based
// strategy never fails; the AI-backed one fails on any upstream problem and
// performs no retries (fallback is the orchestrator's job, not retries).
type Generator interface {
	GenerateBatch(ctx context.Context, slides []deck.Slide) ([]ModuleContent, error)
}
