package ttssvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulabbr/oratoria/core"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTestService(serverURL, apiKey string) *elevenLabs {
	return &elevenLabs{
		client:       resty.New().SetBaseURL(serverURL),
		apiKey:       apiKey,
		defaultVoice: "21m00Tcm4TlvDq8ikWAM",
		logger:       nopLogger{},
	}
}

func TestSynthesizeNoAPIKey(t *testing.T) {
	svc := NewElevenLabsService(&core.Config{}, nopLogger{})
	res := svc.Synthesize(context.Background(), "Hello", "")
	assert.True(t, res.Fallback)
	assert.Empty(t, res.Audio)
}

func TestSynthesize(t *testing.T) {
	var gotPath, gotKey string
	var gotReq synthesisRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	svc := newTestService(server.URL, "secret-key")
	res := svc.Synthesize(context.Background(), "Hello, nice to meet you", "")

	assert.False(t, res.Fallback)
	assert.Equal(t, []byte("mp3-bytes"), res.Audio)
	assert.Equal(t, "audio/mpeg", res.ContentType)
	assert.Equal(t, "/v1/text-to-speech/21m00Tcm4TlvDq8ikWAM", gotPath)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "Hello, nice to meet you", gotReq.Text)
	assert.Equal(t, modelID, gotReq.ModelID)
	assert.Equal(t, 0.5, gotReq.VoiceSettings.Stability)
}

func TestSynthesizeCustomVoice(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	newTestService(server.URL, "k").Synthesize(context.Background(), "hi", "custom-voice")
	assert.Equal(t, "/v1/text-to-speech/custom-voice", gotPath)
}

func TestSynthesizeTruncatesLongText(t *testing.T) {
	var gotReq synthesisRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	newTestService(server.URL, "k").Synthesize(context.Background(), strings.Repeat("a", MaxTextLen+500), "")
	assert.Len(t, gotReq.Text, MaxTextLen)
}

func TestSynthesizeUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"invalid key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	res := newTestService(server.URL, "bad-key").Synthesize(context.Background(), "hi", "")
	assert.True(t, res.Fallback)
	assert.Empty(t, res.Audio)
}
