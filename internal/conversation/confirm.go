package conversation

import (
	"regexp"
	"strings"
)

// Answer parsing for confirmation turns. Typed chat gets a real prompt
// widget; spoken answers come through here.

var digitPattern = regexp.MustCompile(`[0-9]+`)

var numberWords = map[string]int{
	"one": 1, "first": 1,
	"two": 2, "second": 2,
	"three": 3, "third": 3,
	"four": 4, "fourth": 4,
	"five": 5, "fifth": 5,
	"six": 6, "sixth": 6,
	"seven": 7, "seventh": 7,
	"eight": 8, "eighth": 8,
	"nine": 9, "ninth": 9,
	"ten": 10, "tenth": 10,
}

// IsAffirmative reports whether an utterance counts as a yes.
func IsAffirmative(utterance string) bool {
	s := normalizeAnswer(utterance)
	switch s {
	case "yes", "yeah", "yep", "sure", "ok", "okay", "confirm", "go ahead", "do it", "yes please", "please do":
		return true
	}
	return strings.HasPrefix(s, "yes ") || strings.HasPrefix(s, "yes,")
}

// IsNegative reports whether an utterance counts as a no.
func IsNegative(utterance string) bool {
	s := normalizeAnswer(utterance)
	switch s {
	case "no", "nope", "nah", "cancel", "never mind", "nevermind", "don't", "do not", "forget it":
		return true
	}
	return strings.HasPrefix(s, "no ") || strings.HasPrefix(s, "no,")
}

// ParseSelection extracts a 1-based pick from utterances like "2",
// "number 2", or "the second one". Digits win over number words; 0 means
// no choice was found.
func ParseSelection(utterance string) int {
	s := strings.ToLower(utterance)

	if match := digitPattern.FindString(s); match != "" {
		n := 0
		for _, r := range match {
			n = n*10 + int(r-'0')
		}
		return n
	}

	for _, word := range strings.Fields(s) {
		if n, ok := numberWords[strings.Trim(word, ".,!?")]; ok {
			return n
		}
	}
	return 0
}

func normalizeAnswer(utterance string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(utterance)), ".!? ")
}
