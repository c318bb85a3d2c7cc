package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAffirmative(t *testing.T) {
	yes := []string{"yes", "Yes.", "YEAH", "yep", "sure", "okay", "ok!", "go ahead", "do it", "yes please", "yes, delete it"}
	for _, s := range yes {
		assert.True(t, IsAffirmative(s), "expected %q to be affirmative", s)
	}

	notYes := []string{"no", "maybe", "what?", "", "yesterday's meeting"}
	for _, s := range notYes {
		assert.False(t, IsAffirmative(s), "expected %q not to be affirmative", s)
	}
}

func TestIsNegative(t *testing.T) {
	no := []string{"no", "No!", "nope", "nah", "cancel", "never mind", "don't", "no, keep it"}
	for _, s := range no {
		assert.True(t, IsNegative(s), "expected %q to be negative", s)
	}

	notNo := []string{"yes", "nothing today", "november", "", "notify me"}
	for _, s := range notNo {
		assert.False(t, IsNegative(s), "expected %q not to be negative", s)
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		utterance string
		want      int
	}{
		{"2", 2},
		{"number 3", 3},
		{"delete 1", 1},
		{"the second one", 2},
		{"the first one", 1},
		{"third", 3},
		{"ten", 10},
		{"the fourth, please", 4},
		{"12", 12},
		{"none of those", 0},
		{"", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseSelection(tt.utterance), "utterance %q", tt.utterance)
	}
}
