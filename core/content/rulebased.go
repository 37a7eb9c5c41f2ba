package content

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/edulabbr/oratoria/core/deck"
)

// minBulletLen filters out very short lines when building quiz questions.
const minBulletLen = 5

// maxQuestions caps how many bullet-derived questions one slide produces.
const maxQuestions = 3

// fillerDistractors pad the option list when a slide has too few bullets.
var fillerDistractors = []string{
	"This point was not mentioned in the slide",
	"The speaker did not address this topic",
}

var genericDistractors = []string{
	"Grammar rules",
	"Vocabulary lists",
	"Pronunciation tips",
}

// RuleBased generates module content deterministically from slide text,
// with no external calls. Generation is total: any slide, including an
// empty one, yields structurally valid content.
//
// Option order is shuffled per invocation (intentionally non-reproducible;
// each question is generated and persisted once).
type RuleBased struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRuleBased returns a rule-based generator. rng may be nil, in which
// case a time-seeded source is used; tests inject a seeded one.
func NewRuleBased(rng *rand.Rand) *RuleBased {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RuleBased{rng: rng}
}

// Generate produces content for a single slide. Never fails.
func (g *RuleBased) Generate(slide deck.Slide) ModuleContent {
	return ModuleContent{
		SlideNumber: slide.SlideNumber,
		Title:       slide.Title,
		Resumo:      g.resumo(slide),
		Tarefas:     TarefasContent{Questions: g.questions(slide)},
		Oratorio:    g.oratorio(slide),
	}
}

// GenerateBatch maps Generate over the slides. The error is always nil;
// the signature satisfies the Generator strategy contract.
func (g *RuleBased) GenerateBatch(_ context.Context, slides []deck.Slide) ([]ModuleContent, error) {
	out := make([]ModuleContent, 0, len(slides))
	for _, slide := range slides {
		out = append(out, g.Generate(slide))
	}
	return out, nil
}

func (g *RuleBased) resumo(slide deck.Slide) ResumoContent {
	text := slide.Body
	if text == "" {
		text = slide.Title
	}
	bullets := slide.Bullets
	if bullets == nil {
		bullets = []string{}
	}
	return ResumoContent{Text: text, Bullets: bullets}
}

func (g *RuleBased) oratorio(slide deck.Slide) OratorioContent {
	target := slide.Title
	if len(slide.Bullets) > 0 {
		target = slide.Bullets[0]
	}
	return OratorioContent{
		Prompt:       fmt.Sprintf("Fale sobre: %s", slide.Title),
		TargetPhrase: target,
	}
}

// questions builds 1-3 multiple-choice questions from the slide's bullets.
func (g *RuleBased) questions(slide deck.Slide) []TarefaQuestion {
	qualifying := make([]string, 0, len(slide.Bullets))
	for _, b := range slide.Bullets {
		if len(b) > minBulletLen {
			qualifying = append(qualifying, b)
		}
	}

	if len(qualifying) == 0 {
		// generic comprehension question; option order is fixed here
		options := append([]string{slide.Title}, genericDistractors...)
		return []TarefaQuestion{{
			Question: fmt.Sprintf("What is the main topic of the slide %q?", slide.Title),
			Type:     QuestionTypeMultipleChoice,
			Options:  options,
			Correct:  0,
		}}
	}

	limit := len(qualifying)
	if limit > maxQuestions {
		limit = maxQuestions
	}

	questions := make([]TarefaQuestion, 0, limit)
	for _, correct := range qualifying[:limit] {
		distractors := make([]string, 0, len(qualifying)+1)
		for _, other := range qualifying {
			if other != correct {
				distractors = append(distractors, other)
			}
		}
		distractors = append(distractors, fillerDistractors...)
		for i := 0; len(distractors) < OptionsPerQuestion-1; i++ {
			distractors = append(distractors, genericDistractors[i%len(genericDistractors)])
		}
		if len(distractors) > OptionsPerQuestion-1 {
			distractors = distractors[:OptionsPerQuestion-1]
		}

		options := make([]string, 0, OptionsPerQuestion)
		options = append(options, correct)
		options = append(options, distractors...)
		correctIdx := g.shuffle(options)

		questions = append(questions, TarefaQuestion{
			Question: "Which statement accurately reflects the content of the slide?",
			Type:     QuestionTypeMultipleChoice,
			Options:  options,
			Correct:  correctIdx,
		})
	}
	return questions
}

// shuffle permutes options in place (Fisher-Yates) and returns the new
// index of the element that was at position 0.
func (g *RuleBased) shuffle(options []string) int {
	correct := options[0]
	g.mu.Lock()
	g.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	g.mu.Unlock()
	for i, opt := range options {
		if opt == correct {
			return i
		}
	}
	return 0 // unreachable: correct is always present
}
