package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hvacjoy/joyline/pkg/domain/model"
)

var stateAbbrevs = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"florida": "FL", "georgia": "GA", "hawaii": "HI", "idaho": "ID",
	"illinois": "IL", "indiana": "IN", "iowa": "IA", "kansas": "KS",
	"kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS",
	"missouri": "MO", "montana": "MT", "nebraska": "NE", "nevada": "NV",
	"new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM", "new york": "NY",
	"north carolina": "NC", "north dakota": "ND", "ohio": "OH", "oklahoma": "OK",
	"oregon": "OR", "pennsylvania": "PA", "rhode island": "RI", "south carolina": "SC",
	"south dakota": "SD", "tennessee": "TN", "texas": "TX", "utah": "UT",
	"vermont": "VT", "virginia": "VA", "washington": "WA", "west virginia": "WV",
	"wisconsin": "WI", "wyoming": "WY",
}

const streetSuffix = `st|street|ave|avenue|rd|road|dr|drive|ln|lane|ct|court|blvd|boulevard|way|cir|circle|pkwy|parkway|ter|terrace|pl|place|hwy|highway|trl|trail`

var (
	// Combined pattern: street number, street name, recognized suffix,
	// then city words, optional state, 5-digit zip. Tolerant of comma noise
	// because normalization collapses punctuation to spaces first.
	combinedAddrRe = regexp.MustCompile(
		`(?i)\b(\d{1,6})\s+([a-z][a-z ]{1,40}?)\s+(` + streetSuffix + `)\s+([a-z][a-z ]{1,40}?)\s+(\d{5})\b`)

	line1Re = regexp.MustCompile(
		`(?i)\b(\d{1,6})\s+([a-z][a-z ]{1,40}?)\s+(` + streetSuffix + `)\b`)

	zipRe = regexp.MustCompile(`\b(\d{5})\b`)

	zipWordRe = regexp.MustCompile(`(?i)\b(zip|postal)\b`)

	addrPunct = regexp.MustCompile(`[.,;:!?]`)
)

// Address scans an utterance for a US service address. The strict combined
// pattern is tried first; when it fails, line1 and city/state/zip are parsed
// separately. Returns nil when nothing address-shaped is found; fields the
// caller did not say stay nil.
func Address(text string) *model.Address {
	norm := strings.TrimSpace(addrPunct.ReplaceAllString(SpokenDigits(text), " "))
	norm = strings.Join(strings.Fields(norm), " ")
	if norm == "" {
		return nil
	}

	if m := combinedAddrRe.FindStringSubmatch(norm); m != nil {
		line1 := titleCase(m[1] + " " + m[2] + " " + m[3])
		cityPart := m[4]
		zip := m[5]

		state, remain := splitState(cityPart)
		city := titleCase(strings.TrimSpace(remain))

		addr := &model.Address{
			Line1: model.Ptr(line1),
			Zip:   model.Ptr(zip),
		}
		if city != "" {
			addr.City = model.Ptr(city)
		}
		if state != "" {
			addr.State = model.Ptr(state)
		}
		return addr
	}

	// Relaxed fallback: take the pieces independently.
	var addr model.Address
	var found bool

	if m := line1Re.FindStringSubmatch(norm); m != nil {
		addr.Line1 = model.Ptr(titleCase(m[1] + " " + m[2] + " " + m[3]))
		found = true
	}

	state, _ := splitState(norm)

	if m := zipRe.FindStringSubmatch(norm); m != nil {
		// A zip that is also the house number is the house number.
		if addr.Line1 == nil || !strings.HasPrefix(*addr.Line1, m[1]) {
			// A bare run of five digits is more often a phone number being
			// read out than a zip; only accept it when a street line, a
			// state word or the caller naming it a zip anchors the match.
			if found || state != "" || zipWordRe.MatchString(norm) {
				addr.Zip = model.Ptr(m[1])
				found = true
			}
		}
	}

	if !found {
		return nil
	}

	// A state word alone is too weak a signal; it only rides along with an
	// anchored match.
	if state != "" {
		addr.State = model.Ptr(state)
	}

	return &addr
}

// orderedStateNames lists full state names longest-first so that
// "west virginia" is matched before "virginia".
var orderedStateNames = func() []string {
	names := make([]string, 0, len(stateAbbrevs))
	for name := range stateAbbrevs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return len(names[i]) > len(names[j])
	})
	return names
}()

// splitState finds a state name or abbreviation in the given text, returning
// the normalized two-letter code and the text with the state removed. Full
// names match anywhere; two-letter abbreviations collide with ordinary words
// ("in", "or", "me"), so they only count as the last word or as the word
// right before a 5-digit zip.
func splitState(text string) (state, remain string) {
	lower := strings.ToLower(text)

	for _, name := range orderedStateNames {
		if idx := indexWord(lower, name); idx >= 0 {
			return stateAbbrevs[name], text[:idx] + text[idx+len(name):]
		}
	}

	words := strings.Fields(lower)
	for i, w := range words {
		if len(w) != 2 || !knownAbbrevs[strings.ToUpper(w)] {
			continue
		}
		last := i == len(words)-1
		beforeZip := i+1 < len(words) && zipRe.MatchString(words[i+1])
		if last || beforeZip {
			idx := indexWord(lower, w)
			return strings.ToUpper(w), text[:idx] + text[idx+len(w):]
		}
	}
	return "", text
}

var knownAbbrevs = func() map[string]bool {
	set := make(map[string]bool, len(stateAbbrevs))
	for _, abbr := range stateAbbrevs {
		set[abbr] = true
	}
	return set
}()

// indexWord returns the index of needle in haystack only when it appears as
// a whole word.
func indexWord(haystack, needle string) int {
	start := 0
	for {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			return -1
		}
		idx += start
		leftOK := idx == 0 || haystack[idx-1] == ' '
		end := idx + len(needle)
		rightOK := end == len(haystack) || haystack[end] == ' '
		if leftOK && rightOK {
			return idx
		}
		start = idx + 1
	}
}

func titleCase(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	return strings.Join(fields, " ")
}
