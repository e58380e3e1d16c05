package extract

import (
	"strings"
	"unicode"
)

// digitWords maps spoken digit words to their numeric form. "oh" is the
// spoken zero that transcription produces for phone numbers and addresses.
var digitWords = map[string]string{
	"zero":  "0",
	"oh":    "0",
	"one":   "1",
	"two":   "2",
	"three": "3",
	"four":  "4",
	"five":  "5",
	"six":   "6",
	"seven": "7",
	"eight": "8",
	"nine":  "9",
}

// SpokenDigits rewrites runs of spoken digit words into digit runs, leaving
// everything else untouched: "two four seven eight Maple" -> "2478 Maple".
func SpokenDigits(text string) string {
	fields := strings.Fields(text)
	var out []string
	var run strings.Builder

	flush := func() {
		if run.Len() > 0 {
			out = append(out, run.String())
			run.Reset()
		}
	}

	for _, f := range fields {
		word := strings.ToLower(strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}))
		if d, ok := digitWords[word]; ok {
			run.WriteString(d)
			continue
		}
		if isAllDigits(word) && run.Len() > 0 {
			run.WriteString(word)
			continue
		}
		flush()
		out = append(out, f)
	}
	flush()

	return strings.Join(out, " ")
}

// DigitsOnly strips everything but digits.
func DigitsOnly(text string) string {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
