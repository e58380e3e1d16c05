package extract

import "fmt"

// Phone extracts a 10-digit US callback number from an utterance, combined
// with any digits accumulated from earlier turns. It returns either a
// complete formatted number, or the updated partial-digit accumulator to be
// combined with the next turn's utterance. Both results empty means the
// utterance carried nothing usable.
//
// Transcription noise tolerance: a leading country-code "1" is dropped, and
// 11-12 digit strings are treated as an area code plus a corrupted 7-digit
// local number, repaired by taking the first 3 and last 7 digits.
func Phone(text, partial string) (formatted, nextPartial string) {
	digits := partial + DigitsOnly(SpokenDigits(text))
	if digits == "" {
		return "", partial
	}

	if len(digits) >= 11 && digits[0] == '1' {
		digits = digits[1:]
	}

	switch {
	case len(digits) == 10:
		return formatPhone(digits), ""
	case len(digits) == 11 || len(digits) == 12:
		repaired := digits[:3] + digits[len(digits)-7:]
		return formatPhone(repaired), ""
	case len(digits) < 10:
		return "", digits
	default:
		// Too long to repair with confidence; fail closed.
		return "", ""
	}
}

func formatPhone(d string) string {
	return fmt.Sprintf("%s-%s-%s", d[:3], d[3:6], d[6:])
}
