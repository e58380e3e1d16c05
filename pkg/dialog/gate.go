package dialog

import (
	"github.com/hvacjoy/joyline/pkg/dialog/extract"
	"github.com/hvacjoy/joyline/pkg/domain/model"
	"github.com/hvacjoy/joyline/pkg/domain/types"
)

// resolveGate handles a turn while a confirmation flag is pending. The gate
// persists until the utterance classifies as a clear yes or no; anything
// ambiguous re-issues the pending question verbatim.
func (c *Controller) resolveGate(t model.Turn) model.Outcome {
	intent := extract.YesNo(t.Utterance)
	s := t.Prev

	switch t.Prev.Stage() {
	case types.StageAddressConfirm:
		switch intent {
		case extract.IntentYes:
			s.AwaitingAddressConfirm = false
			return c.finishOrAsk(t, s, "Great, thank you.")
		case extract.IntentNo:
			s.AwaitingAddressConfirm = false
			s.ServiceAddress = model.Address{}
			q := "Thanks for catching that. What's the full service address, including city, state and zip?"
			return c.finalize(t, model.Outcome{Reply: q, Slots: s, Question: q})
		default:
			return c.reprompt(t, addressConfirmPrompt(t.Prev.ServiceAddress))
		}

	case types.StagePhoneConfirm:
		switch intent {
		case extract.IntentYes:
			s.AwaitingPhoneConfirm = false
			return c.finishOrAsk(t, s, "Perfect.")
		case extract.IntentNo:
			s.AwaitingPhoneConfirm = false
			s.CallbackNumber = nil
			s.PartialDigits = ""
			q := "No problem. What's the best callback number for you?"
			return c.finalize(t, model.Outcome{Reply: q, Slots: s, Question: q})
		default:
			num := ""
			if t.Prev.CallbackNumber != nil {
				num = *t.Prev.CallbackNumber
			}
			return c.reprompt(t, phoneConfirmPrompt(num))
		}

	default: // StageFinalConfirm
		switch intent {
		case extract.IntentYes:
			s.AwaitingFinalConfirm = false
			return model.Outcome{
				Reply:   "Perfect, you're on the schedule.",
				Slots:   s,
				Done:    true,
				Goodbye: goodbyeText(s, c.policy),
			}
		case extract.IntentNo:
			s.AwaitingFinalConfirm = false
			q := "No problem. What should I correct?"
			s.PendingFix = &model.PendingFix{Field: "unknown", Prompt: q}
			return c.finalize(t, model.Outcome{Reply: q, Slots: s, Question: q})
		default:
			return c.reprompt(t, finalConfirmPrompt)
		}
	}
}

// reprompt re-issues the pending question without advancing or resetting.
// The previously asked question wins over the reconstructed prompt so the
// repetition is verbatim.
func (c *Controller) reprompt(t model.Turn, fallback string) model.Outcome {
	q := t.LastQuestion
	if q == "" {
		q = fallback
	}
	return model.Outcome{
		Reply:             "Sorry, I didn't catch that. " + q,
		Slots:             t.Prev,
		NeedsConfirmation: true,
		Question:          q,
	}
}
