// Package aisvc generates learning content with an OpenAI-compatible chat
// completion API.
package aisvc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/edulabbr/oratoria/core"
	"github.com/edulabbr/oratoria/core/content"
	"github.com/edulabbr/oratoria/core/deck"
)

// ErrUnavailable is returned when no API credential is configured.
var ErrUnavailable = errors.New("ai content generation is not configured")

const systemPrompt = "Você é um especialista em pedagogia de ensino de inglês para alunos brasileiros. " +
	"Você cria conteúdo de aprendizagem a partir de slides de aula. " +
	"Responda SOMENTE com JSON válido, sem texto adicional."

type ContentGenerator struct {
	client *openai.Client
	model  string
}

var _ content.Generator = (*ContentGenerator)(nil)

func NewContentGenerator(conf *core.Config) *ContentGenerator {
	gen := &ContentGenerator{model: conf.AI.Model}
	if conf.AI.APIKey == "" {
		return gen
	}
	cfg := openai.DefaultConfig(conf.AI.APIKey)
	if conf.AI.BaseURL != "" {
		cfg.BaseURL = conf.AI.BaseURL
	}
	gen.client = openai.NewClientWithConfig(cfg)
	return gen
}

func (g *ContentGenerator) disabled() bool {
	return g.client == nil || g.model == ""
}

// GenerateBatch makes exactly one chat completion call covering every slide.
// It never retries; the caller decides what a failure means.
func (g *ContentGenerator) GenerateBatch(ctx context.Context, slides []deck.Slide) ([]content.ModuleContent, error) {
	if g.disabled() {
		return nil, ErrUnavailable
	}
	if len(slides) == 0 {
		return []content.ModuleContent{}, nil
	}

	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(slides)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.4,
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "requesting content generation")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("model returned no choices")
	}
	return parseResponse(resp.Choices[0].Message.Content)
}

// buildPrompt enumerates every slide's material and pins the response schema.
func buildPrompt(slides []deck.Slide) string {
	var b strings.Builder

	b.WriteString("Crie conteúdo de aprendizagem para os slides abaixo.\n\n")
	for _, s := range slides {
		fmt.Fprintf(&b, "=== Slide %d ===\n", s.SlideNumber)
		fmt.Fprintf(&b, "Título: %s\n", s.Title)
		if s.Body != "" {
			fmt.Fprintf(&b, "Texto: %s\n", s.Body)
		}
		for _, bullet := range s.Bullets {
			fmt.Fprintf(&b, "- %s\n", bullet)
		}
		if s.Notes != "" {
			fmt.Fprintf(&b, "Notas do professor: %s\n", s.Notes)
		}
		b.WriteString("\n")
	}

	b.WriteString(`Para cada slide gere:
- "resumo": um texto de 2-3 frases explicando o conteúdo, e "bullets" com os pontos-chave.
- "tarefas": exatamente 3 questões de múltipla escolha ("type": "multiple_choice"): uma de memorização, uma de aplicação e uma de análise. Cada questão tem exatamente 4 "options" e "correct" é o índice (base 0) da opção correta.
- "oratorio": "prompt" convidando o aluno a falar sobre o slide e "target_phrase" com uma frase curta em inglês para o aluno praticar.

Responda com um objeto JSON neste formato exato:
{"slides":[{"slide_number":1,"title":"...","resumo":{"text":"...","bullets":["..."]},"tarefas":{"questions":[{"question":"...","type":"multiple_choice","options":["...","...","...","..."],"correct":0}]},"oratorio":{"prompt":"...","target_phrase":"..."}}]}
O array "slides" deve ter uma entrada por slide, na mesma ordem, com o mesmo "slide_number".`)

	return b.String()
}

type batchResponse struct {
	Slides []content.ModuleContent `json:"slides"`
}

// parseResponse decodes the model output and re-validates every shape before
// trusting it. Models occasionally wrap JSON in markdown fences despite the
// response format; strip those first.
func parseResponse(raw string) ([]content.ModuleContent, error) {
	var br batchResponse
	if err := json.Unmarshal([]byte(extractJSON(raw)), &br); err != nil {
		return nil, errors.Wrap(err, "unmarshalling generated content")
	}
	if br.Slides == nil {
		return nil, errors.New("generated content has no slides array")
	}
	for i := range br.Slides {
		if !br.Slides[i].Valid() {
			return nil, errors.Errorf("generated content for entry %d is malformed", i)
		}
	}
	return br.Slides, nil
}

// extractJSON removes markdown code fences if present and extracts the JSON object.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		start := 3
		if idx := strings.Index(s[start:], "\n"); idx != -1 {
			start += idx + 1
		}
		if end := strings.Index(s[start:], "```"); end != -1 {
			s = s[start : start+end]
		} else {
			s = s[start:]
		}
	}

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return strings.TrimSpace(s)
}
