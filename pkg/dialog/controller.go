package dialog

import (
	"reflect"
	"strings"
	"time"

	"github.com/hvacjoy/joyline/pkg/dialog/extract"
	"github.com/hvacjoy/joyline/pkg/domain/model"
	"github.com/hvacjoy/joyline/pkg/domain/types"
)

// Controller is the pure turn-transition core of a booking call. It holds no
// per-call state: everything a turn needs comes in through model.Turn and
// everything it decides goes out through model.Outcome. Side effects
// (persistence, the language model, the calendar) belong to the caller.
//
// A turn runs in two phases. Advance resolves everything that can be decided
// locally: emergencies, pending confirmations, and utterances the heuristic
// extractors can handle. When Advance reports needLLM, the caller obtains a
// model reply and feeds it to Resolve, which merges the extracted slots and
// finishes the transition. Resolve with a nil reply is the degraded path.
type Controller struct {
	policy *model.Policy
	now    func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the time source used for relative date parsing.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// New creates a Controller driven by the given policy.
func New(policy *model.Policy, opts ...Option) *Controller {
	c := &Controller{
		policy: policy,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ModelReply is the validated result of a language-model extraction call:
// the voice-ready reply plus the slot delta to merge.
type ModelReply struct {
	Reply string
	Slots model.Slots
}

// Advance runs the local phase of a turn. When needLLM is true the returned
// Outcome is empty and the caller must complete the turn via Resolve.
func (c *Controller) Advance(t model.Turn) (out model.Outcome, needLLM bool) {
	// Safety first, whatever mode the call is in. No slot capture, no
	// advancement; the dispatcher takes over.
	if extract.IsEmergency(t.Utterance) {
		s := t.Prev
		s.Emergency = true
		return model.Outcome{
			Reply:    c.policy.EmergencyScript,
			Slots:    s,
			Question: t.LastQuestion,
		}, false
	}

	if t.Prev.Stage() != types.StageCapture {
		return c.resolveGate(t), false
	}

	if out, ok := c.captureHeuristics(t); ok {
		return out, false
	}

	return model.Outcome{}, true
}

// Resolve finishes a turn with the language-model result. A nil reply means
// the external capability failed; the turn degrades to a canned re-prompt
// with the slot state untouched, so the voice channel never goes silent.
func (c *Controller) Resolve(t model.Turn, mr *ModelReply) model.Outcome {
	if mr == nil {
		reply := c.policy.FallbackReply
		if t.LastQuestion != "" {
			reply = "Sorry, I missed that. " + t.LastQuestion
		}
		return model.Outcome{
			Reply:    reply,
			Slots:    t.Prev,
			Question: t.LastQuestion,
		}
	}

	s := model.Merge(t.Prev, mr.Slots)
	if pf := t.Prev.PendingFix; pf != nil {
		// The descriptor is consumed only once the correction turn actually
		// captured a value. Until then the follow-up prompt is re-issued.
		if reflect.DeepEqual(s, t.Prev) {
			return c.finalize(t, model.Outcome{
				Reply:    "Sorry, I didn't catch that. " + pf.Prompt,
				Slots:    s,
				Question: pf.Prompt,
			})
		}
		s.PendingFix = nil
	}
	if Complete(s) {
		return c.enterFinalConfirm(t, s)
	}
	return c.finalize(t, model.Outcome{Reply: mr.Reply, Slots: s})
}

// captureHeuristics tries to resolve a normal-capture turn without the
// language model. Reports ok=false when nothing usable was extracted.
func (c *Controller) captureHeuristics(t model.Turn) (model.Outcome, bool) {
	s := t.Prev
	captured := false

	addr := extract.Address(t.Utterance)

	// Mid phone capture, digit fragments continue the number. Only an
	// utterance that actually parses as an address overrides that; anything
	// else goes to the accumulator first so its digits are never claimed as
	// address parts.
	if addr == nil && c.expectingPhone(t) {
		if out, ok := c.capturePhone(t, s); ok {
			return out, true
		}
	}

	// Address before the digit-count phone pass: an address utterance is
	// full of digits and would otherwise feed garbage into the phone
	// accumulator.
	if addr != nil {
		s = model.Merge(s, model.Slots{ServiceAddress: *addr})
		captured = true
		if s.ServiceAddress.Complete() {
			s.PendingFix = nil
			s.AwaitingAddressConfirm = true
			q := addressConfirmPrompt(s.ServiceAddress)
			return c.finalize(t, model.Outcome{
				Reply:             q,
				Slots:             s,
				NeedsConfirmation: true,
				Question:          q,
			}), true
		}
	}

	if !captured {
		digits := extract.DigitsOnly(extract.SpokenDigits(t.Utterance))
		if len(digits) >= 7 {
			if out, ok := c.capturePhone(t, s); ok {
				return out, true
			}
		}
	}

	if sched := extract.ScheduleFrom(t.Utterance, c.now()); sched != nil {
		delta := model.Slots{PreferredDate: sched.Date, PreferredWindow: sched.Window}
		if delta.PreferredWindow == nil && sched.Hour != nil {
			w := types.WindowAfternoon
			if *sched.Hour < 12 {
				w = types.WindowMorning
			}
			delta.PreferredWindow = &w
		}
		s = model.Merge(s, delta)
		captured = true
	}

	if !captured {
		return model.Outcome{}, false
	}
	if t.Prev.PendingFix != nil {
		s.PendingFix = nil
	}
	return c.finishOrAsk(t, s, "Got it."), true
}

// capturePhone feeds the utterance through the phone extractor together
// with the partial-digit accumulator. A complete number enters the phone
// confirmation gate; new partial digits are acknowledged and accumulated.
func (c *Controller) capturePhone(t model.Turn, s model.Slots) (model.Outcome, bool) {
	formatted, partial := extract.Phone(t.Utterance, t.Prev.PartialDigits)
	switch {
	case formatted != "":
		s.CallbackNumber = model.Ptr(formatted)
		s.PartialDigits = ""
		s.PendingFix = nil
		s.AwaitingPhoneConfirm = true
		q := phoneConfirmPrompt(formatted)
		return c.finalize(t, model.Outcome{
			Reply:             q,
			Slots:             s,
			NeedsConfirmation: true,
			Question:          q,
		}), true
	case partial != "" && partial != t.Prev.PartialDigits:
		s.PartialDigits = partial
		q := "Go ahead with the rest of the number."
		return c.finalize(t, model.Outcome{
			Reply:    "I have " + partial + " so far. " + q,
			Slots:    s,
			Question: q,
		}), true
	}
	return model.Outcome{}, false
}

// expectingPhone reports whether the conversation is mid phone capture, so
// short digit fragments are treated as number continuation rather than noise.
func (c *Controller) expectingPhone(t model.Turn) bool {
	if t.Prev.PartialDigits != "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.LastQuestion), "callback number")
}

// finishOrAsk closes a capture step: transition to the final confirmation
// when everything is captured, otherwise acknowledge and ask for the next
// missing field.
func (c *Controller) finishOrAsk(t model.Turn, s model.Slots, ack string) model.Outcome {
	if Complete(s) {
		return c.enterFinalConfirm(t, s)
	}
	q := nextQuestion(s, c.policy)
	reply := strings.TrimSpace(ack + " " + q)
	return c.finalize(t, model.Outcome{Reply: reply, Slots: s, Question: q})
}

// enterFinalConfirm surfaces the booking summary. The full summary is read
// only the first time completion is reached; later visits to this gate repeat
// the short confirmation prompt.
func (c *Controller) enterFinalConfirm(t model.Turn, s model.Slots) model.Outcome {
	s.AwaitingFinalConfirm = true
	reply := finalConfirmPrompt
	if s.SummaryReads == 0 {
		reply = summary(s, c.policy)
	}
	s.SummaryReads++
	// The recap deliberately repeats the fees, so it skips the reply
	// pipeline and its pricing suppression.
	return model.Outcome{
		Reply:             reply,
		Slots:             s,
		NeedsConfirmation: true,
		Question:          finalConfirmPrompt,
	}
}

// finalize applies the reply pipeline and bookkeeping shared by every
// outcome that speaks a generated line.
func (c *Controller) finalize(t model.Turn, out model.Outcome) model.Outcome {
	out.Reply = PostProcess(out.Reply, ReplyContext{
		Utterance: t.Utterance,
		Slots:     t.Prev,
		Greeted:   t.LastQuestion != "",
	}, c.policy)
	if extract.MentionsPricing(out.Reply) {
		out.Slots.PricingDisclosed = true
	}
	if out.Question == "" {
		out.Question = out.Reply
	}
	return out
}
