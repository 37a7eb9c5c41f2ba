// Package ttssvc proxies text-to-speech synthesis through Eleven Labs.
package ttssvc

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/edulabbr/oratoria/core"
)

const (
	baseURL = "https://api.elevenlabs.io"
	modelID = "eleven_monolingual_v1"

	// MaxTextLen bounds one synthesis request; longer input is truncated.
	MaxTextLen = 1000
)

type (
	// Result carries synthesized audio, or Fallback when the client should
	// use its own speech synthesis instead. Synthesis failures are never
	// surfaced as errors.
	Result struct {
		Audio       []byte
		ContentType string
		Fallback    bool
	}

	Service interface {
		Synthesize(ctx context.Context, text, voice string) Result
	}

	elevenLabs struct {
		client       *resty.Client
		apiKey       string
		defaultVoice string
		logger       core.Logger
	}
)

var _ Service = (*elevenLabs)(nil)

func NewElevenLabsService(conf *core.Config, logger core.Logger) Service {
	timeout := conf.TTS.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &elevenLabs{
		client:       resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		apiKey:       conf.TTS.APIKey,
		defaultVoice: conf.TTS.Voice,
		logger:       logger,
	}
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func (svc *elevenLabs) Synthesize(ctx context.Context, text, voice string) Result {
	if svc.apiKey == "" {
		return Result{Fallback: true}
	}
	if voice == "" {
		voice = svc.defaultVoice
	}
	if len(text) > MaxTextLen {
		text = text[:MaxTextLen]
	}

	resp, err := svc.client.R().
		SetContext(ctx).
		SetHeader("xi-api-key", svc.apiKey).
		SetHeader("Accept", "audio/mpeg").
		SetBody(synthesisRequest{
			Text:    text,
			ModelID: modelID,
			VoiceSettings: voiceSettings{
				Stability:       0.5,
				SimilarityBoost: 0.5,
			},
		}).
		Post(fmt.Sprintf("/v1/text-to-speech/%s", voice))
	if err != nil {
		svc.logger.Warn("tts synthesis failed; falling back to client-side speech", err)
		return Result{Fallback: true}
	}
	if resp.IsError() {
		svc.logger.Warn(fmt.Sprintf(
			"tts synthesis returned %d; falling back to client-side speech", resp.StatusCode()))
		return Result{Fallback: true}
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return Result{Audio: resp.Body(), ContentType: contentType}
}
