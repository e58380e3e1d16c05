package dialog

import (
	"fmt"
	"strings"

	"github.com/hvacjoy/joyline/pkg/domain/model"
)

// nextQuestion picks the prompt for the first required field that is still
// missing. Only fields that gate completion drive the order; discovery
// questions (symptoms, brand, thermostat) are left to the model, which sees
// the whole history.
func nextQuestion(s model.Slots, p *model.Policy) string {
	switch {
	case s.FullName == nil:
		return "May I have your full name, please?"
	case !s.ServiceAddress.Complete():
		if missing := missingAddressParts(s.ServiceAddress); s.ServiceAddress.Line1 != nil && len(missing) > 0 {
			return fmt.Sprintf("I still need the %s for the service address.", joinSpoken(missing))
		}
		return "What's the full service address, including city, state and zip?"
	case s.CallbackNumber == nil:
		return "What's the best callback number for you?"
	case !s.PricingDisclosed:
		return p.PricingScript + " Does that work for you?"
	case !s.SchedulingSet():
		return "What day works best for your visit, morning or afternoon?"
	default:
		return "Is there anything else I should note for the technician?"
	}
}

func missingAddressParts(a model.Address) []string {
	var missing []string
	if a.Line1 == nil {
		missing = append(missing, "street address")
	}
	if a.City == nil {
		missing = append(missing, "city")
	}
	if a.State == nil {
		missing = append(missing, "state")
	}
	if a.Zip == nil {
		missing = append(missing, "zip code")
	}
	return missing
}

func joinSpoken(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}

func addressConfirmPrompt(a model.Address) string {
	return fmt.Sprintf("I have the service address as %s. Did I get that right?", a.Oneline())
}

func phoneConfirmPrompt(number string) string {
	return fmt.Sprintf("I have your callback number as %s. Is that correct?", number)
}

const finalConfirmPrompt = "Is everything correct?"

// summary renders the read-once booking recap spoken when completion is first
// reached. Short sentences so it survives text to speech.
func summary(s model.Slots, p *model.Policy) string {
	var b strings.Builder
	b.WriteString("Let me confirm everything. ")
	if s.FullName != nil {
		fmt.Fprintf(&b, "Name: %s. ", *s.FullName)
	}
	fmt.Fprintf(&b, "Address: %s. ", s.ServiceAddress.Oneline())
	if s.CallbackNumber != nil {
		fmt.Fprintf(&b, "Callback number: %s. ", *s.CallbackNumber)
	}
	if s.UnitCount != nil {
		fmt.Fprintf(&b, "%d system(s). ", *s.UnitCount)
	}
	if len(s.Symptoms) > 0 {
		fmt.Fprintf(&b, "Issue: %s. ", joinSpoken(s.Symptoms))
	}
	fmt.Fprintf(&b, "The diagnostic visit is $%d per non-working unit. ", p.DiagnosticFee)
	b.WriteString("Visit ")
	if s.PreferredDate != nil {
		b.WriteString(*s.PreferredDate)
		if s.PreferredWindow != nil {
			b.WriteString(", " + s.PreferredWindow.Spoken())
		}
	} else if s.PreferredWindow != nil {
		b.WriteString(s.PreferredWindow.Spoken())
	}
	b.WriteString(". ")
	if s.CallAhead != nil && *s.CallAhead {
		b.WriteString("The technician will call ahead. ")
	}
	b.WriteString(finalConfirmPrompt)
	return b.String()
}

// goodbyeText is the closing line once the caller affirms the final summary.
func goodbyeText(s model.Slots, p *model.Policy) string {
	name := ""
	if s.FullName != nil {
		if first := strings.Fields(*s.FullName); len(first) > 0 {
			name = ", " + first[0]
		}
	}
	return fmt.Sprintf("You're all set%s. Thank you for calling %s. Goodbye!", name, p.BrandName)
}
