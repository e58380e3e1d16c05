package extract

import "regexp"

// Emergency phrases short-circuit the whole turn: no slot capture, only the
// safety escalation script.
var emergencyRe = regexp.MustCompile(`(?i)\b(smoke|sparks?|fire|flames?|gas leak|gas smell|smell gas|smelling gas|burning smell|carbon monoxide|co alarm|co detector)\b`)

// IsEmergency reports whether the utterance describes a safety hazard that
// requires escalation to a human dispatcher.
func IsEmergency(text string) bool {
	return emergencyRe.MatchString(text)
}
