package content

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulabbr/oratoria/core/deck"
)

func seededGenerator() *RuleBased {
	return NewRuleBased(rand.New(rand.NewSource(42)))
}

func TestRuleBased_quizAlwaysStructurallyValid(t *testing.T) {
	slides := []deck.Slide{
		{SlideNumber: 1, Title: "Empty slide", Bullets: []string{}},
		{SlideNumber: 2, Title: "Short bullets", Bullets: []string{"a", "bc"}},
		{SlideNumber: 3, Title: "One point", Bullets: []string{"A relevant point"}},
		{SlideNumber: 4, Title: "Many points", Bullets: []string{
			"First relevant point", "Second relevant point",
			"Third relevant point", "Fourth relevant point",
		}},
	}
	g := seededGenerator()
	for _, slide := range slides {
		mc := g.Generate(slide)
		assert.True(t, mc.Valid(), "slide %d", slide.SlideNumber)
		require.NotEmpty(t, mc.Tarefas.Questions)
		for _, q := range mc.Tarefas.Questions {
			assert.Len(t, q.Options, 4)
			assert.GreaterOrEqual(t, q.Correct, 0)
			assert.Less(t, q.Correct, 4)
			assert.Equal(t, QuestionTypeMultipleChoice, q.Type)
		}
	}
}

func TestRuleBased_singleBulletCorrectOption(t *testing.T) {
	g := seededGenerator()
	mc := g.Generate(deck.Slide{
		SlideNumber: 1,
		Title:       "Intro",
		Bullets:     []string{"A relevant point"},
	})
	require.Len(t, mc.Tarefas.Questions, 1)
	q := mc.Tarefas.Questions[0]
	require.Len(t, q.Options, 4)
	assert.Equal(t, "A relevant point", q.Options[q.Correct])

	// with no sibling bullets the distractors come from the filler pools
	pool := append(append([]string{}, fillerDistractors...), genericDistractors...)
	for i, opt := range q.Options {
		if i == q.Correct {
			continue
		}
		assert.Contains(t, pool, opt)
	}
}

func TestRuleBased_noQualifyingBulletsGenericQuestion(t *testing.T) {
	g := seededGenerator()
	mc := g.Generate(deck.Slide{SlideNumber: 3, Title: "Body Language", Bullets: []string{"tiny"}})
	require.Len(t, mc.Tarefas.Questions, 1)
	q := mc.Tarefas.Questions[0]
	assert.Equal(t, 0, q.Correct)
	assert.Equal(t, "Body Language", q.Options[0])
	assert.Contains(t, q.Question, "Body Language")
}

func TestRuleBased_capsAtThreeQuestions(t *testing.T) {
	g := seededGenerator()
	mc := g.Generate(deck.Slide{
		SlideNumber: 1,
		Title:       "T",
		Bullets: []string{
			"First relevant point", "Second relevant point",
			"Third relevant point", "Fourth relevant point", "Fifth relevant point",
		},
	})
	assert.Len(t, mc.Tarefas.Questions, 3)
	for _, q := range mc.Tarefas.Questions {
		assert.Equal(t, q.Options[q.Correct], q.Options[q.Correct]) // index valid
		assert.Len(t, q.Options, 4)
	}
	// question i's correct answer is bullet i
	assert.Equal(t, "First relevant point", mc.Tarefas.Questions[0].Options[mc.Tarefas.Questions[0].Correct])
	assert.Equal(t, "Second relevant point", mc.Tarefas.Questions[1].Options[mc.Tarefas.Questions[1].Correct])
	assert.Equal(t, "Third relevant point", mc.Tarefas.Questions[2].Options[mc.Tarefas.Questions[2].Correct])
}

func TestRuleBased_resumo(t *testing.T) {
	g := seededGenerator()

	withBody := g.Generate(deck.Slide{
		SlideNumber: 1, Title: "T", Body: "Line one\nLine two",
		Bullets: []string{"Line one", "Line two"},
	})
	assert.Equal(t, "Line one\nLine two", withBody.Resumo.Text)
	assert.Equal(t, []string{"Line one", "Line two"}, withBody.Resumo.Bullets)

	empty := g.Generate(deck.Slide{SlideNumber: 2, Title: "Only Title"})
	assert.Equal(t, "Only Title", empty.Resumo.Text)
	assert.NotNil(t, empty.Resumo.Bullets)
	assert.Empty(t, empty.Resumo.Bullets)
}

func TestRuleBased_oratorio(t *testing.T) {
	g := seededGenerator()

	withBullet := g.Generate(deck.Slide{
		SlideNumber: 1, Title: "Eye Contact", Bullets: []string{"Hold eye contact for three seconds"},
	})
	assert.Equal(t, "Fale sobre: Eye Contact", withBullet.Oratorio.Prompt)
	assert.Equal(t, "Hold eye contact for three seconds", withBullet.Oratorio.TargetPhrase)

	bare := g.Generate(deck.Slide{SlideNumber: 2, Title: "Pacing"})
	assert.Equal(t, "Pacing", bare.Oratorio.TargetPhrase)
}

func TestRuleBased_generateBatchNeverErrors(t *testing.T) {
	g := seededGenerator()
	slides := []deck.Slide{
		{SlideNumber: 1, Title: "A"},
		{SlideNumber: 2, Title: "B", Bullets: []string{"A relevant point"}},
	}
	out, err := g.GenerateBatch(context.Background(), slides)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0].SlideNumber)
	assert.Equal(t, 2, out[1].SlideNumber)
}
