package content

import (
	"context"
	"fmt"
	"time"

	"github.com/edulabbr/oratoria/core"
	"github.com/edulabbr/oratoria/core/deck"
)

// Orchestrator owns the AI-or-rules generation policy. It is the only
// component aware of both strategies; the AI strategy knows nothing about
// the rule-based one.
//
// GenerateBatch is total from the caller's perspective: it always returns
// exactly one ModuleContent per input slide, in input order. AI-path
// degradation is logged, never surfaced.
type Orchestrator struct {
	ai      Generator // nil when no AI credential is configured
	rules   *RuleBased
	logger  core.Logger
	timeout time.Duration // bound on the one AI call per batch
}

func NewOrchestrator(ai Generator, rules *RuleBased, logger core.Logger, timeout time.Duration) *Orchestrator {
	return &Orchestrator{
		ai:      ai,
		rules:   rules,
		logger:  logger,
		timeout: timeout,
	}
}

// GenerateBatch generates content for every slide. With AI configured it
// makes exactly one batched call; a short result keeps the AI prefix and
// pads the tail rule-based, and any failure (credential, transport, schema,
// timeout) discards partial output and regenerates the whole batch
// rule-based.
func (o *Orchestrator) GenerateBatch(ctx context.Context, slides []deck.Slide) []ModuleContent {
	if len(slides) == 0 {
		return []ModuleContent{}
	}

	if o.ai != nil {
		aiCtx := ctx
		if o.timeout > 0 {
			var cancel context.CancelFunc
			aiCtx, cancel = context.WithTimeout(ctx, o.timeout)
			defer cancel()
		}
		result, err := o.ai.GenerateBatch(aiCtx, slides)
		if err == nil {
			return o.align(slides, result)
		}
		o.logger.Warn("AI content generation failed; regenerating whole batch rule-based", err)
	}

	out, _ := o.rules.GenerateBatch(ctx, slides) // never errors
	return out
}

// align trims or pads the AI result to exactly one entry per slide, in
// slide order, and pins each entry's slide_number to its source slide.
func (o *Orchestrator) align(slides []deck.Slide, result []ModuleContent) []ModuleContent {
	if len(result) < len(slides) {
		o.logger.Warn(fmt.Sprintf(
			"AI returned %d of %d slides; padding the tail rule-based", len(result), len(slides)))
	}

	out := make([]ModuleContent, len(slides))
	for i, slide := range slides {
		var mc ModuleContent
		if i < len(result) {
			mc = result[i]
		} else {
			mc = o.rules.Generate(slide)
		}
		mc.SlideNumber = slide.SlideNumber
		if mc.Title == "" {
			mc.Title = slide.Title
		}
		out[i] = mc
	}
	return out
}
