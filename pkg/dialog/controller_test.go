package dialog_test

import (
	"strings"
	"testing"
	"time"

	"github.com/hvacjoy/joyline/pkg/dialog"
	"github.com/hvacjoy/joyline/pkg/domain/model"
	"github.com/hvacjoy/joyline/pkg/domain/types"
)

func newController() *dialog.Controller {
	fixed := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC) // a Wednesday
	return dialog.New(model.DefaultPolicy(), dialog.WithClock(func() time.Time { return fixed }))
}

func TestAdvanceEmergencyShortCircuits(t *testing.T) {
	c := newController()
	prev := bookableSlots()

	out, needLLM := c.Advance(model.Turn{
		Utterance: "I smell gas in the hallway",
		Prev:      prev,
	})
	if needLLM {
		t.Fatal("emergency must not reach the language model")
	}
	if out.Reply != model.DefaultPolicy().EmergencyScript {
		t.Errorf("reply = %q, want the emergency script", out.Reply)
	}
	if !out.Slots.Emergency {
		t.Error("emergency flag should be set")
	}
	if out.Done {
		t.Error("an emergency turn never completes the booking")
	}
}

func TestAdvanceAddressCaptureAsksForConfirmation(t *testing.T) {
	c := newController()

	out, needLLM := c.Advance(model.Turn{
		Utterance:    "it's 123 Main Street Atlanta GA 30301",
		Prev:         model.Slots{FullName: model.Ptr("Jane Doe")},
		LastQuestion: "What's the full service address, including city, state and zip?",
	})
	if needLLM {
		t.Fatal("a parseable address should not reach the language model")
	}
	if !out.Slots.AwaitingAddressConfirm {
		t.Error("a complete address should enter the confirmation gate")
	}
	if !out.NeedsConfirmation {
		t.Error("needs-confirmation should be surfaced")
	}
	if !strings.Contains(out.Reply, "123 Main Street") || !strings.Contains(out.Reply, "30301") {
		t.Errorf("confirmation prompt should read the address back, got %q", out.Reply)
	}
}

func TestAddressConfirmNegationClearsAndReprompts(t *testing.T) {
	c := newController()
	prev := model.Slots{
		FullName: model.Ptr("Jane Doe"),
		ServiceAddress: model.Address{
			Line1: model.Ptr("123 Main St"),
			City:  model.Ptr("Atlanta"),
			State: model.Ptr("GA"),
			Zip:   model.Ptr("30301"),
		},
		AwaitingAddressConfirm: true,
	}

	out, needLLM := c.Advance(model.Turn{
		Utterance:    "no that's wrong",
		Prev:         prev,
		LastQuestion: "I have the service address as 123 Main St, Atlanta, GA 30301. Did I get that right?",
	})
	if needLLM {
		t.Fatal("gate turns never reach the language model")
	}
	if out.Slots.AwaitingAddressConfirm {
		t.Error("negation should clear the confirmation flag")
	}
	if out.Slots.ServiceAddress != (model.Address{}) {
		t.Errorf("disputed address should be cleared, got %+v", out.Slots.ServiceAddress)
	}
	if !strings.Contains(out.Reply, "full service address") {
		t.Errorf("should re-prompt for the full address, got %q", out.Reply)
	}
	if out.Done {
		t.Error("negation must not advance the call")
	}
}

func TestAddressConfirmAmbiguousRepromptsVerbatim(t *testing.T) {
	c := newController()
	q := "I have the service address as 123 Main St, Atlanta, GA 30301. Did I get that right?"
	prev := model.Slots{
		ServiceAddress:         model.Address{Line1: model.Ptr("123 Main St"), City: model.Ptr("Atlanta"), State: model.Ptr("GA"), Zip: model.Ptr("30301")},
		AwaitingAddressConfirm: true,
	}

	out, _ := c.Advance(model.Turn{Utterance: "umm well maybe", Prev: prev, LastQuestion: q})
	if !strings.Contains(out.Reply, q) {
		t.Errorf("ambiguous turn should repeat the question verbatim, got %q", out.Reply)
	}
	if !out.Slots.AwaitingAddressConfirm {
		t.Error("ambiguity must not clear the gate")
	}
	if out.Question != q {
		t.Errorf("Question = %q, want the pending question", out.Question)
	}
}

func TestAdvancePhoneCaptureAndConfirm(t *testing.T) {
	c := newController()

	out, needLLM := c.Advance(model.Turn{
		Utterance:    "4044442544",
		Prev:         model.Slots{FullName: model.Ptr("Jane Doe")},
		LastQuestion: "What's the best callback number for you?",
	})
	if needLLM {
		t.Fatal("a full phone number should not reach the language model")
	}
	if out.Slots.CallbackNumber == nil || *out.Slots.CallbackNumber != "404-444-2544" {
		t.Fatalf("CallbackNumber = %v, want 404-444-2544", out.Slots.CallbackNumber)
	}
	if !out.Slots.AwaitingPhoneConfirm {
		t.Error("a captured number should enter the confirmation gate")
	}
	if !strings.Contains(out.Reply, "404-444-2544") {
		t.Errorf("prompt should read the number back, got %q", out.Reply)
	}
}

func TestAdvancePhonePartialAccumulates(t *testing.T) {
	c := newController()

	out, needLLM := c.Advance(model.Turn{
		Utterance:    "four zero four",
		Prev:         model.Slots{},
		LastQuestion: "What's the best callback number for you?",
	})
	if needLLM {
		t.Fatal("a digit fragment mid phone capture should not reach the language model")
	}
	if out.Slots.PartialDigits != "404" {
		t.Errorf("PartialDigits = %q, want 404", out.Slots.PartialDigits)
	}

	out2, _ := c.Advance(model.Turn{
		Utterance:    "4442544",
		Prev:         out.Slots,
		LastQuestion: out.Question,
	})
	if out2.Slots.CallbackNumber == nil || *out2.Slots.CallbackNumber != "404-444-2544" {
		t.Fatalf("CallbackNumber = %v, want 404-444-2544", out2.Slots.CallbackNumber)
	}
	if out2.Slots.PartialDigits != "" {
		t.Error("accumulator should clear once the number is complete")
	}
}

func TestAdvancePhoneFragmentKeepsConfirmedAddress(t *testing.T) {
	c := newController()
	prev := model.Slots{
		FullName: model.Ptr("Jane Doe"),
		ServiceAddress: model.Address{
			Line1: model.Ptr("123 Main St"),
			City:  model.Ptr("Atlanta"),
			State: model.Ptr("GA"),
			Zip:   model.Ptr("30301"),
		},
	}

	out, needLLM := c.Advance(model.Turn{
		Utterance:    "four zero four four four",
		Prev:         prev,
		LastQuestion: "What's the best callback number for you?",
	})
	if needLLM {
		t.Fatal("a digit fragment mid phone capture should not reach the language model")
	}
	if out.Slots.PartialDigits != "40444" {
		t.Errorf("PartialDigits = %q, want 40444", out.Slots.PartialDigits)
	}
	if out.Slots.ServiceAddress.Zip == nil || *out.Slots.ServiceAddress.Zip != "30301" {
		t.Fatalf("Zip = %v, want the already captured 30301", out.Slots.ServiceAddress.Zip)
	}
	if out.Slots.AwaitingAddressConfirm {
		t.Error("a phone fragment must not re-open the address confirmation gate")
	}
	if !strings.Contains(out.Reply, "so far") {
		t.Errorf("fragment should be acknowledged as accumulated, got %q", out.Reply)
	}
}

func TestPhoneConfirmAffirmDisclosesPricing(t *testing.T) {
	c := newController()
	prev := model.Slots{
		FullName:       model.Ptr("Jane Doe"),
		CallbackNumber: model.Ptr("404-444-2544"),
		ServiceAddress: model.Address{
			Line1: model.Ptr("123 Main St"),
			City:  model.Ptr("Atlanta"),
			State: model.Ptr("GA"),
			Zip:   model.Ptr("30301"),
		},
		AwaitingPhoneConfirm: true,
	}

	out, _ := c.Advance(model.Turn{Utterance: "yes that's correct", Prev: prev})
	if out.Slots.AwaitingPhoneConfirm {
		t.Error("affirmation should clear the gate")
	}
	if !strings.Contains(out.Reply, "$50") {
		t.Errorf("next missing field is the pricing disclosure, got %q", out.Reply)
	}
	if !out.Slots.PricingDisclosed {
		t.Error("speaking the fees should set the disclosure flag")
	}
}

func TestCompletionReadsSummaryExactlyOnce(t *testing.T) {
	c := newController()
	prev := bookableSlots()
	prev.PreferredWindow = nil // scheduling is the last missing piece

	out, needLLM := c.Advance(model.Turn{Utterance: "tomorrow morning works", Prev: prev})
	if needLLM {
		t.Fatal("a window utterance should not reach the language model")
	}
	if !out.Slots.AwaitingFinalConfirm {
		t.Fatal("completion should enter the final confirmation gate")
	}
	if !strings.Contains(out.Reply, "Let me confirm everything") {
		t.Errorf("first completion should read the full summary, got %q", out.Reply)
	}
	if out.Slots.SummaryReads != 1 {
		t.Errorf("SummaryReads = %d, want 1", out.Slots.SummaryReads)
	}
	if out.Done {
		t.Error("done must wait for the caller's confirmation")
	}

	// Caller disputes, then fixes the date; the summary is not re-read.
	out2, _ := c.Advance(model.Turn{Utterance: "no hold on", Prev: out.Slots, LastQuestion: out.Question})
	if out2.Slots.AwaitingFinalConfirm {
		t.Fatal("negation should clear the final gate")
	}
	if out2.Slots.PendingFix == nil {
		t.Error("a generic dispute should leave a pending-fix marker")
	}

	out3, _ := c.Advance(model.Turn{Utterance: "make it friday instead, please book that", Prev: out2.Slots, LastQuestion: out2.Question})
	if !out3.Slots.AwaitingFinalConfirm {
		t.Fatal("re-completion should re-enter the final gate")
	}
	if strings.Contains(out3.Reply, "Let me confirm everything") {
		t.Errorf("summary must be read only once per call, got %q", out3.Reply)
	}
	if out3.Slots.PendingFix != nil {
		t.Error("capturing a correction should consume the pending fix")
	}
}

func TestFinalConfirmYesCompletesExactlyOnce(t *testing.T) {
	c := newController()
	prev := bookableSlots()
	prev.AwaitingFinalConfirm = true
	prev.SummaryReads = 1

	out, needLLM := c.Advance(model.Turn{Utterance: "yes", Prev: prev, LastQuestion: "Is everything correct?"})
	if needLLM {
		t.Fatal("final affirmation should not reach the language model")
	}
	if !out.Done {
		t.Fatal("affirmation in the final gate should complete the call")
	}
	if out.Goodbye == "" {
		t.Error("a completed call needs a goodbye line")
	}
	if out.Slots.AwaitingFinalConfirm {
		t.Error("the final gate should be cleared so done fires only once")
	}
	if strings.Contains(out.Reply, "Let me confirm everything") {
		t.Errorf("the summary is never re-read on completion, got %q", out.Reply)
	}
}

func TestAdvanceDefersToModelWhenNothingExtracted(t *testing.T) {
	c := newController()
	out, needLLM := c.Advance(model.Turn{Utterance: "my AC is blowing warm air", Prev: model.Slots{}})
	if !needLLM {
		t.Fatalf("free-form speech should defer to the language model, got %+v", out)
	}
}

func TestResolveMergesModelSlots(t *testing.T) {
	c := newController()
	turn := model.Turn{Utterance: "my name is Jane Doe", Prev: model.Slots{}}

	out := c.Resolve(turn, &dialog.ModelReply{
		Reply: "Thanks, Jane. What's the full service address?",
		Slots: model.Slots{FullName: model.Ptr("Jane Doe")},
	})
	if out.Slots.FullName == nil || *out.Slots.FullName != "Jane Doe" {
		t.Fatalf("FullName = %v, want Jane Doe", out.Slots.FullName)
	}
	if out.Reply == "" || out.Done {
		t.Errorf("mid-call reply should continue the conversation, got %+v", out)
	}
}

func TestResolveCompletionEntersFinalGate(t *testing.T) {
	c := newController()
	prev := bookableSlots()
	prev.FullName = nil

	out := c.Resolve(model.Turn{Utterance: "Jane Doe", Prev: prev}, &dialog.ModelReply{
		Reply: "Thanks, Jane.",
		Slots: model.Slots{FullName: model.Ptr("Jane Doe")},
	})
	if !out.Slots.AwaitingFinalConfirm {
		t.Fatal("a model turn that completes the capture should enter the final gate")
	}
	if !strings.Contains(out.Reply, "Let me confirm everything") {
		t.Errorf("expected the summary, got %q", out.Reply)
	}
}

func TestResolvePendingFixSurvivesEmptyCapture(t *testing.T) {
	c := newController()
	q := "No problem. What should I correct?"
	prev := bookableSlots()
	prev.SummaryReads = 1
	prev.PendingFix = &model.PendingFix{Field: "unknown", Prompt: q}

	out := c.Resolve(model.Turn{Utterance: "uh it's just", Prev: prev, LastQuestion: q}, &dialog.ModelReply{
		Reply: "Could you tell me more?",
	})
	if out.Slots.PendingFix == nil {
		t.Fatal("a turn that captures nothing must not consume the pending fix")
	}
	if out.Question != q {
		t.Errorf("Question = %q, want the follow-up prompt", out.Question)
	}
	if !strings.Contains(out.Reply, q) {
		t.Errorf("the follow-up prompt should be re-issued, got %q", out.Reply)
	}
	if out.Slots.AwaitingFinalConfirm {
		t.Error("an unresolved correction must not re-enter the final gate")
	}
}

func TestResolvePendingFixConsumedOnCapture(t *testing.T) {
	c := newController()
	prev := bookableSlots()
	prev.SummaryReads = 1
	prev.PendingFix = &model.PendingFix{Field: "unknown", Prompt: "What should I correct?"}

	out := c.Resolve(model.Turn{Utterance: "the name is John Doe actually", Prev: prev}, &dialog.ModelReply{
		Reply: "Got it, John.",
		Slots: model.Slots{FullName: model.Ptr("John Doe")},
	})
	if out.Slots.PendingFix != nil {
		t.Fatal("capturing a correction should consume the pending fix")
	}
	if out.Slots.FullName == nil || *out.Slots.FullName != "John Doe" {
		t.Fatalf("FullName = %v, want John Doe", out.Slots.FullName)
	}
	if !out.Slots.AwaitingFinalConfirm {
		t.Error("a resolved correction on complete slots should re-enter the final gate")
	}
}

func TestResolveNilDegradesToCannedReprompt(t *testing.T) {
	c := newController()
	q := "What's the best callback number for you?"
	prev := model.Slots{FullName: model.Ptr("Jane Doe")}

	out := c.Resolve(model.Turn{Utterance: "mumble", Prev: prev, LastQuestion: q}, nil)
	if !strings.Contains(out.Reply, q) {
		t.Errorf("degraded turn should re-ask the pending question, got %q", out.Reply)
	}
	if out.Slots.FullName == nil || *out.Slots.FullName != "Jane Doe" {
		t.Error("degraded turn must not touch the slot state")
	}
	if out.Done {
		t.Error("degraded turn never completes the call")
	}

	// With no pending question the static fallback is spoken.
	out = c.Resolve(model.Turn{Utterance: "mumble", Prev: model.Slots{}}, nil)
	if out.Reply != model.DefaultPolicy().FallbackReply {
		t.Errorf("Reply = %q, want the policy fallback", out.Reply)
	}
}

func TestAdvanceScheduleCaptureSetsWindow(t *testing.T) {
	c := newController()
	out, needLLM := c.Advance(model.Turn{Utterance: "can you come out tomorrow afternoon", Prev: model.Slots{}})
	if needLLM {
		t.Fatal("a scheduling utterance should not reach the language model")
	}
	if out.Slots.PreferredDate == nil || *out.Slots.PreferredDate != "2025-03-13" {
		t.Errorf("PreferredDate = %v, want 2025-03-13", out.Slots.PreferredDate)
	}
	if out.Slots.PreferredWindow == nil || *out.Slots.PreferredWindow != types.WindowAfternoon {
		t.Errorf("PreferredWindow = %v, want afternoon", out.Slots.PreferredWindow)
	}
}
