package dialog

import (
	"regexp"
	"strings"

	"github.com/hvacjoy/joyline/pkg/dialog/extract"
	"github.com/hvacjoy/joyline/pkg/domain/model"
)

// ReplyContext is the turn state the post-processor conditions on. Slots is
// the state as of the start of the turn, so "pricing already disclosed" means
// disclosed on a previous turn, not by the reply being processed.
type ReplyContext struct {
	Utterance string
	Slots     model.Slots
	Greeted   bool
}

var (
	sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]*\s*`)

	metaRe     = regexp.MustCompile(`(?i)\b(as an ai|language model|i am an ai|i'm an ai)\b`)
	labelRe    = regexp.MustCompile(`(?i)^\s*(joy|assistant|agent)\s*:\s*`)
	greetingRe = regexp.MustCompile(`(?i)(thank you for calling|thanks for calling|this call may be recorded)`)
	problemRe  = regexp.MustCompile(`(?i)\b(not working|not cooling|not heating|no cool|no heat|broken|broke down|stopped working|warm air|blowing warm|leak|leaking|icing|frozen|noise|rattling|won't turn on|wont turn on)\b`)
	apologyRe  = regexp.MustCompile(`(?i)\b(sorry|apologize|that sounds frustrating)\b`)

	membershipRe = regexp.MustCompile(`(?i)\b(membership|maintenance program|members?)\b`)
)

// PostProcess runs the reply through a fixed pipeline of idempotent text
// transforms. Order matters; each transform is a pure string function.
func PostProcess(reply string, rc ReplyContext, p *model.Policy) string {
	reply = stripMeta(reply)
	reply = suppressRepeatPricing(reply, rc.Slots.PricingDisclosed)
	reply = deferMembership(reply, rc.Slots.SchedulingSet())
	reply = addEmpathy(reply, rc.Utterance, p.EmpathyPhrase)
	reply = stripRepeatGreeting(reply, rc.Greeted)
	reply = normalizeBrand(reply, p)
	return strings.TrimSpace(reply)
}

// stripMeta removes assistant self-reference the voice channel must never
// speak, plus any leading speaker label.
func stripMeta(reply string) string {
	reply = labelRe.ReplaceAllString(reply, "")
	return dropSentences(reply, func(s string) bool {
		return metaRe.MatchString(s)
	})
}

// suppressRepeatPricing drops pricing sentences once the fees were already
// disclosed on an earlier turn.
func suppressRepeatPricing(reply string, disclosed bool) string {
	if !disclosed {
		return reply
	}
	return dropSentences(reply, extract.MentionsPricing)
}

// deferMembership holds the maintenance-program pitch until a visit is on the
// calendar. Sentences carrying a dollar amount are pricing disclosures that
// merely mention members; those stay.
func deferMembership(reply string, schedulingSet bool) string {
	if schedulingSet {
		return reply
	}
	return dropSentences(reply, func(s string) bool {
		return membershipRe.MatchString(s) && !strings.Contains(s, "$")
	})
}

// addEmpathy prepends a short empathy clause when the caller reported a
// problem and the reply does not already acknowledge it.
func addEmpathy(reply, utterance, phrase string) string {
	if reply == "" || phrase == "" {
		return reply
	}
	if !problemRe.MatchString(utterance) || apologyRe.MatchString(reply) {
		return reply
	}
	return phrase + " " + reply
}

// stripRepeatGreeting removes the opening script when the call history shows
// the caller was already greeted.
func stripRepeatGreeting(reply string, greeted bool) string {
	if !greeted {
		return reply
	}
	return dropSentences(reply, func(s string) bool {
		return greetingRe.MatchString(s)
	})
}

// normalizeBrand rewrites transcription variants of the brand name to the
// canonical spelling.
func normalizeBrand(reply string, p *model.Policy) string {
	for _, v := range p.BrandVariants {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(v) + `\b`)
		reply = re.ReplaceAllString(reply, p.BrandName)
	}
	return reply
}

func dropSentences(reply string, drop func(string) bool) string {
	var kept []string
	for _, s := range sentenceRe.FindAllString(reply, -1) {
		if drop(s) {
			continue
		}
		kept = append(kept, strings.TrimSpace(s))
	}
	return strings.Join(kept, " ")
}
