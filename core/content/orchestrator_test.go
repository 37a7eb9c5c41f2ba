package content

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulabbr/oratoria/core/deck"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type stubAI struct {
	result []ModuleContent
	err    error
	calls  int
}

func (s *stubAI) GenerateBatch(_ context.Context, _ []deck.Slide) ([]ModuleContent, error) {
	s.calls++
	return s.result, s.err
}

func threeSlides() []deck.Slide {
	return []deck.Slide{
		{SlideNumber: 1, Title: "One", Bullets: []string{"First relevant point"}},
		{SlideNumber: 2, Title: "Two", Bullets: []string{"Second relevant point"}},
		{SlideNumber: 3, Title: "Three", Bullets: []string{"Third relevant point"}},
	}
}

func aiContent(n int, title string) ModuleContent {
	return ModuleContent{
		SlideNumber: n,
		Title:       title,
		Resumo:      ResumoContent{Text: "ai summary", Bullets: []string{}},
		Oratorio:    OratorioContent{Prompt: "ai prompt", TargetPhrase: "ai phrase"},
	}
}

func newTestOrchestrator(ai Generator) *Orchestrator {
	return NewOrchestrator(ai, seededGenerator(), nopLogger{}, time.Second)
}

func TestOrchestrator_ruleBasedOnlyWhenNoAI(t *testing.T) {
	o := newTestOrchestrator(nil)
	slides := threeSlides()
	out := o.GenerateBatch(context.Background(), slides)
	require.Len(t, out, len(slides))
	for i, mc := range out {
		assert.Equal(t, slides[i].SlideNumber, mc.SlideNumber)
		assert.Equal(t, slides[i].Title, mc.Title)
		assert.True(t, mc.Valid())
	}
}

func TestOrchestrator_fallbackOnAIError(t *testing.T) {
	ai := &stubAI{err: errors.New("upstream exploded")}
	o := newTestOrchestrator(ai)
	out := o.GenerateBatch(context.Background(), threeSlides())
	require.Len(t, out, 3)
	assert.Equal(t, 1, ai.calls, "exactly one batched AI call")
	for i, mc := range out {
		assert.Equal(t, i+1, mc.SlideNumber)
		assert.NotEmpty(t, mc.Tarefas.Questions, "fallback content is rule-based, not empty")
	}
}

func TestOrchestrator_padsShortAIResult(t *testing.T) {
	ai := &stubAI{result: []ModuleContent{aiContent(1, "One"), aiContent(2, "Two")}}
	o := newTestOrchestrator(ai)
	out := o.GenerateBatch(context.Background(), threeSlides())
	require.Len(t, out, 3)

	// AI prefix kept
	assert.Equal(t, "ai summary", out[0].Resumo.Text)
	assert.Equal(t, "ai summary", out[1].Resumo.Text)
	// tail synthesized rule-based from slide 3
	assert.Equal(t, 3, out[2].SlideNumber)
	assert.Equal(t, "Three", out[2].Title)
	assert.NotEqual(t, "ai summary", out[2].Resumo.Text)
	assert.NotEmpty(t, out[2].Tarefas.Questions)
}

func TestOrchestrator_truncatesLongAIResult(t *testing.T) {
	ai := &stubAI{result: []ModuleContent{
		aiContent(1, "One"), aiContent(2, "Two"), aiContent(3, "Three"), aiContent(4, "Surplus"),
	}}
	o := newTestOrchestrator(ai)
	out := o.GenerateBatch(context.Background(), threeSlides())
	require.Len(t, out, 3)
	assert.Equal(t, "Three", out[2].Title)
}

func TestOrchestrator_pinsSlideNumbers(t *testing.T) {
	// a disobedient model numbers slides wrong; correlation must not depend on it
	ai := &stubAI{result: []ModuleContent{aiContent(7, "One"), aiContent(9, "Two"), aiContent(0, "Three")}}
	o := newTestOrchestrator(ai)
	slides := threeSlides()
	out := o.GenerateBatch(context.Background(), slides)
	require.Len(t, out, 3)
	for i, mc := range out {
		assert.Equal(t, slides[i].SlideNumber, mc.SlideNumber)
	}
}

func TestOrchestrator_emptyBatch(t *testing.T) {
	o := newTestOrchestrator(&stubAI{})
	out := o.GenerateBatch(context.Background(), nil)
	assert.Empty(t, out)
}
