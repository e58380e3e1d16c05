package extract

import "regexp"

var (
	dollarRe  = regexp.MustCompile(`\$\s?\d+|\b\d+\s+dollars?\b`)
	serviceRe = regexp.MustCompile(`(?i)\b(diagnostic|maintenance|visit|service|fee|charge|trip)\b`)
)

// MentionsPricing reports whether the text discloses a service price: a
// service-type keyword together with a dollar amount.
func MentionsPricing(text string) bool {
	return serviceRe.MatchString(text) && dollarRe.MatchString(text)
}
