package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		target     string
		want       int
	}{
		{"empty target, empty transcript", "", "", 100},
		{"empty target, any transcript", "anything at all", "", 100},
		{"whitespace-only target", "hello", "   ", 100},
		{"exact match", "hello world", "hello world", 100},
		{"no overlap", "goodbye", "hello world", 0},
		{"half overlap", "hello there", "hello world", 50},
		{"case and punctuation ignored", "Hello, World!", "hello world", 100},
		{"order-insensitive", "world hello", "hello world", 100},
		{"repetition gives no extra credit", "hello hello hello", "hello world", 50},
		{"no partial credit for substrings", "he", "hello world", 0},
		{"extra spoken words do not penalize", "well hello to the whole wide world", "hello world", 100},
		{"rounding, one of three", "practice", "practice makes perfect", 33},
		{"rounding, two of three", "practice perfect", "practice makes perfect", 67},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.transcript, tt.target))
		})
	}
}

func TestFeedbackTiers(t *testing.T) {
	target := "the quick brown fox jumps over"

	tests := []struct {
		score int
		tier  FeedbackTier
	}{
		{100, TierTop},
		{80, TierTop},
		{79, TierMid},
		{50, TierMid},
		{49, TierLow},
		{0, TierLow},
	}
	for _, tt := range tests {
		fb := Feedback(tt.score, target)
		assert.Equal(t, tt.tier, fb.Tier, "score %d", tt.score)
		assert.NotEmpty(t, fb.Title)
		assert.NotEmpty(t, fb.Tip)
	}
}

func TestFeedbackMidTierSuggestsTargetWords(t *testing.T) {
	fb := Feedback(60, "the quick brown fox jumps over")
	assert.Contains(t, fb.Tip, "the quick brown fox")
	assert.NotContains(t, fb.Tip, "jumps")
}

func TestFeedbackLowTierRepeatsFullPhrase(t *testing.T) {
	fb := Feedback(10, "hello world")
	assert.Contains(t, fb.Tip, "hello world")
}
