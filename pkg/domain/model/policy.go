package model

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

// Policy is the versioned prompt/policy descriptor driving a booking
// conversation: scripts, pricing, brand rendering and scheduling defaults.
// One policy replaces what used to be many diverging handler variants; the
// dialogue controller takes it as plain data and never reads configuration
// on its own.
type Policy struct {
	Version   string
	AgentName string
	BrandName string
	// BrandVariants are spellings the transcription tends to produce; the
	// reply post-processor normalizes them to BrandName.
	BrandVariants []string

	Greeting        string
	PricingScript   string
	DiagnosticFee   int
	MaintenanceFee  int
	EmpathyPhrase   string
	EmergencyScript string
	MembershipPitch string
	// FallbackReply is spoken when an external capability fails mid-turn.
	// The voice channel must never go silent.
	FallbackReply string

	DefaultState       string
	DefaultTimezone    string
	BookingDurationMin int
}

// DefaultPolicy returns the built-in policy matching the production dispatch
// line scripts.
func DefaultPolicy() *Policy {
	p := &Policy{
		Version:   "v1",
		AgentName: "Joy",
		BrandName: "HVAC Joy",
		BrandVariants: []string{
			"hvac joy", "h v a c joy", "h-vac joy", "hvacjoy", "heating vac joy",
		},
		Greeting: "To ensure the highest quality service, this call may be recorded and monitored. " +
			"Thank you for calling HVAC Joy, this is Joy. How can I help today?",
		DiagnosticFee:  50,
		MaintenanceFee: 50,
		EmpathyPhrase:  "I'm sorry you're dealing with that.",
		EmergencyScript: "If you smell gas or see smoke or sparks, please hang up, call 911 now, and exit the home. " +
			"I'm connecting you to a human dispatcher right away.",
		MembershipPitch: "By the way, are you on our maintenance program? Members get priority scheduling and waived maintenance fees.",
		FallbackReply:   "Sorry, I had trouble just now. Could you repeat that so I can help you book?",

		DefaultState:       "GA",
		DefaultTimezone:    "America/New_York",
		BookingDurationMin: 60,
	}
	p.PricingScript = RenderPricingScript(p.DiagnosticFee, p.MaintenanceFee)
	return p
}

// RenderPricingScript builds the spoken pricing disclosure for the given
// fees.
func RenderPricingScript(diagnosticFee, maintenanceFee int) string {
	return fmt.Sprintf(
		"Our diagnostic visit is $%d per non-working unit. A maintenance visit is $%d for non-members. "+
			"The technician will assess and provide a quote before any repair.",
		diagnosticFee, maintenanceFee,
	)
}

// Validate checks that the policy is usable for live calls
func (p *Policy) Validate() error {
	if p.AgentName == "" {
		return goerr.New("policy agent name is required")
	}
	if p.BrandName == "" {
		return goerr.New("policy brand name is required")
	}
	if p.Greeting == "" {
		return goerr.New("policy greeting is required")
	}
	if p.PricingScript == "" {
		return goerr.New("policy pricing script is required")
	}
	if p.FallbackReply == "" {
		return goerr.New("policy fallback reply is required")
	}
	if p.DiagnosticFee <= 0 || p.MaintenanceFee <= 0 {
		return goerr.New("policy fees must be positive",
			goerr.V("diagnostic_fee", p.DiagnosticFee),
			goerr.V("maintenance_fee", p.MaintenanceFee))
	}
	if p.BookingDurationMin <= 0 {
		return goerr.New("policy booking duration must be positive",
			goerr.V("booking_duration_min", p.BookingDurationMin))
	}
	if p.DefaultTimezone == "" {
		return goerr.New("policy default timezone is required")
	}
	return nil
}
