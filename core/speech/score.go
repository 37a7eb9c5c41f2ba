// Package speech scores a spoken transcript against a target phrase.
package speech

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

var nonAlphanumRegex = regexp.MustCompile(`[^a-z0-9\s]`)

// Score compares a transcript with the target phrase using word overlap and
// returns 0-100: the rounded fraction of target-phrase words that appear
// anywhere in the transcript. Order-insensitive, repetition-insensitive,
// no partial credit for substrings. Case and punctuation are ignored.
// An empty target phrase scores 100 (nothing to match).
func Score(transcript, targetPhrase string) int {
	if strings.TrimSpace(targetPhrase) == "" {
		return 100
	}

	targetWords := tokenize(targetPhrase)
	if len(targetWords) == 0 {
		return 100
	}

	spoken := make(map[string]bool)
	for _, w := range tokenize(transcript) {
		spoken[w] = true
	}

	var matched int
	for _, w := range targetWords {
		if spoken[w] {
			matched++
		}
	}
	return int(math.Round(float64(matched) / float64(len(targetWords)) * 100))
}

func tokenize(s string) []string {
	s = strings.ToLower(s)
	s = nonAlphanumRegex.ReplaceAllString(s, "")
	return strings.Fields(s)
}

// FeedbackTier identifies the qualitative band of a score.
type FeedbackTier string

const (
	TierTop FeedbackTier = "top"
	TierMid FeedbackTier = "mid"
	TierLow FeedbackTier = "low"
)

type OratoryFeedback struct {
	Tier  FeedbackTier `json:"tier"`
	Emoji string       `json:"emoji"`
	Title string       `json:"title"`
	Tip   string       `json:"tip"`
}

// Feedback returns qualitative feedback for a score. Tier cut points are
// inclusive on the lower bound: 80+ top, 50-79 mid, below 50 low.
func Feedback(score int, targetPhrase string) OratoryFeedback {
	switch {
	case score >= 80:
		return OratoryFeedback{
			Tier:  TierTop,
			Emoji: "🏆",
			Title: "Excelente pronúncia!",
			Tip:   "Você cobriu os pontos principais. Continue praticando!",
		}
	case score >= 50:
		return OratoryFeedback{
			Tier:  TierMid,
			Emoji: "💪",
			Title: "Bom trabalho!",
			Tip:   fmt.Sprintf("Tente incluir mais termos como: %q...", firstWords(targetPhrase, 4)),
		}
	default:
		return OratoryFeedback{
			Tier:  TierLow,
			Emoji: "🎯",
			Title: "Continue praticando!",
			Tip:   fmt.Sprintf("Foque em dizer a frase completa: %q", targetPhrase),
		}
	}
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
