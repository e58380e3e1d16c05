package dialog_test

import (
	"strings"
	"testing"

	"github.com/hvacjoy/joyline/pkg/dialog"
	"github.com/hvacjoy/joyline/pkg/domain/model"
	"github.com/hvacjoy/joyline/pkg/domain/types"
)

func TestPostProcessSuppressesRepeatPricing(t *testing.T) {
	p := model.DefaultPolicy()
	reply := "Our diagnostic visit is $50 per non-working unit. What day works for you?"

	rc := dialog.ReplyContext{Slots: model.Slots{PricingDisclosed: true}}
	got := dialog.PostProcess(reply, rc, p)
	if strings.Contains(got, "$50") {
		t.Errorf("pricing should be suppressed after disclosure, got %q", got)
	}
	if !strings.Contains(got, "What day works for you?") {
		t.Errorf("non-pricing sentences must survive, got %q", got)
	}

	// Not yet disclosed: the disclosure stays.
	got = dialog.PostProcess(reply, dialog.ReplyContext{}, p)
	if !strings.Contains(got, "$50") {
		t.Errorf("first disclosure must not be suppressed, got %q", got)
	}
}

func TestPostProcessDefersMembership(t *testing.T) {
	p := model.DefaultPolicy()
	reply := "Are you on our maintenance program? What day works for you?"

	got := dialog.PostProcess(reply, dialog.ReplyContext{}, p)
	if strings.Contains(got, "maintenance program") {
		t.Errorf("membership pitch should wait for scheduling, got %q", got)
	}

	w := types.WindowMorning
	rc := dialog.ReplyContext{Slots: model.Slots{PreferredWindow: &w}}
	got = dialog.PostProcess(reply, rc, p)
	if !strings.Contains(got, "maintenance program") {
		t.Errorf("membership pitch should survive once scheduled, got %q", got)
	}
}

func TestPostProcessKeepsPricingSentenceMentioningMembers(t *testing.T) {
	p := model.DefaultPolicy()
	reply := "A maintenance visit is $50 for non-members."
	got := dialog.PostProcess(reply, dialog.ReplyContext{}, p)
	if !strings.Contains(got, "$50") {
		t.Errorf("a fee sentence is a disclosure, not a pitch, got %q", got)
	}
}

func TestPostProcessAddsEmpathyOnce(t *testing.T) {
	p := model.DefaultPolicy()
	rc := dialog.ReplyContext{Utterance: "my AC is not cooling at all"}

	got := dialog.PostProcess("May I have your full name, please?", rc, p)
	if !strings.HasPrefix(got, p.EmpathyPhrase) {
		t.Errorf("expected empathy prefix, got %q", got)
	}

	again := dialog.PostProcess(got, rc, p)
	if again != got {
		t.Errorf("empathy must not stack: %q vs %q", again, got)
	}
}

func TestPostProcessStripsRepeatGreeting(t *testing.T) {
	p := model.DefaultPolicy()
	reply := p.Greeting + " May I have your full name, please?"

	rc := dialog.ReplyContext{Greeted: true}
	got := dialog.PostProcess(reply, rc, p)
	if strings.Contains(got, "Thank you for calling") || strings.Contains(got, "recorded") {
		t.Errorf("repeated greeting should be stripped, got %q", got)
	}
	if !strings.Contains(got, "full name") {
		t.Errorf("the question must survive the greeting strip, got %q", got)
	}

	got = dialog.PostProcess(reply, dialog.ReplyContext{}, p)
	if !strings.Contains(got, "Thank you for calling") {
		t.Errorf("first-turn greeting must be kept, got %q", got)
	}
}

func TestPostProcessNormalizesBrand(t *testing.T) {
	p := model.DefaultPolicy()
	got := dialog.PostProcess("Thanks for choosing h-vac joy today.", dialog.ReplyContext{}, p)
	if !strings.Contains(got, "HVAC Joy") {
		t.Errorf("brand variant should normalize, got %q", got)
	}
}

func TestPostProcessStripsMetaLanguage(t *testing.T) {
	p := model.DefaultPolicy()
	got := dialog.PostProcess("As an AI language model I cannot smell gas. What's the address?", dialog.ReplyContext{}, p)
	if strings.Contains(strings.ToLower(got), "language model") {
		t.Errorf("meta language must never be spoken, got %q", got)
	}
	if !strings.Contains(got, "address") {
		t.Errorf("the rest of the reply must survive, got %q", got)
	}
}

func TestPostProcessIdempotent(t *testing.T) {
	p := model.DefaultPolicy()
	w := types.WindowAfternoon
	rc := dialog.ReplyContext{
		Utterance: "the heat stopped working",
		Slots:     model.Slots{PricingDisclosed: true, PreferredWindow: &w},
		Greeted:   true,
	}
	reply := "Our diagnostic visit is $50 per non-working unit. Are you on our maintenance program? I can get a tech out to hvacjoy country."

	once := dialog.PostProcess(reply, rc, p)
	twice := dialog.PostProcess(once, rc, p)
	if once != twice {
		t.Errorf("pipeline must be idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}
