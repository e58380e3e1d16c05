package extract

import (
	"regexp"
	"strings"
)

// Intent classifies an utterance as affirmation, negation or neither.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentYes
	IntentNo
)

var (
	yesWords = []string{
		"yes", "yeah", "yep", "yup", "correct", "right", "sure",
		"absolutely", "exactly", "affirmative", "perfect", "ok", "okay",
	}
	yesPhrases = []string{
		"that's right", "thats right", "sounds good", "that works", "go ahead",
	}

	noWords = []string{
		"no", "nope", "nah", "wrong", "incorrect", "negative",
	}
	noPhrases = []string{
		"that's wrong", "thats wrong", "not right", "not correct",
		"that's not", "thats not", "hold on", "wait",
	}

	yesNoPunct = regexp.MustCompile(`[.,;:!?]`)
)

// YesNo classifies an utterance. Mixed signals ("no wait, yes") classify as
// unknown so the caller re-prompts instead of guessing.
func YesNo(text string) Intent {
	norm := " " + strings.TrimSpace(yesNoPunct.ReplaceAllString(strings.ToLower(text), " ")) + " "
	norm = strings.Join(strings.Fields(norm), " ")
	norm = " " + norm + " "

	yes := containsAnyWord(norm, yesWords) || containsAnyPhrase(norm, yesPhrases)
	no := containsAnyWord(norm, noWords) || containsAnyPhrase(norm, noPhrases)

	switch {
	case yes && !no:
		return IntentYes
	case no && !yes:
		return IntentNo
	default:
		return IntentUnknown
	}
}

func containsAnyWord(padded string, words []string) bool {
	for _, w := range words {
		if strings.Contains(padded, " "+w+" ") {
			return true
		}
	}
	return false
}

func containsAnyPhrase(padded string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(padded, p) {
			return true
		}
	}
	return false
}
