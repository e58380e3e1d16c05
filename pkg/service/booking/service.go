package booking

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/hvacjoy/joyline/pkg/domain/model"
)

//go:embed prompt/booking_system.md
var bookingSystemPromptTmpl string

var bookingSystemPrompt = template.Must(template.New("booking_system").Parse(bookingSystemPromptTmpl))

// client implements Service on top of a gollem LLM client.
type client struct {
	llmClient gollem.LLMClient
	policy    *model.Policy
}

// Option is a functional option for client configuration
type Option func(*client)

// New creates the booking extraction service.
func New(llmClient gollem.LLMClient, policy *model.Policy, opts ...Option) (Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}
	if policy == nil {
		return nil, goerr.New("policy is required")
	}

	c := &client{
		llmClient: llmClient,
		policy:    policy,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ExtractTurn runs one utterance through the model and validates the
// structured reply before handing it back.
func (c *client) ExtractTurn(ctx context.Context, input Input) (*Result, error) {
	systemPrompt, err := c.buildSystemPrompt()
	if err != nil {
		return nil, err
	}

	session, err := c.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(buildResponseSchema()),
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buildUserPrompt(input)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content from LLM")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("empty LLM response")
	}

	var llmResp llmResponse
	if err := json.Unmarshal([]byte(resp.Texts[0]), &llmResp); err != nil {
		return nil, goerr.Wrap(err, "failed to parse LLM response", goerr.V("response", resp.Texts[0]))
	}
	if strings.TrimSpace(llmResp.Reply) == "" {
		return nil, goerr.New("LLM response has no reply text", goerr.V("response", resp.Texts[0]))
	}
	if llmResp.Slots.PreferredWindow != nil && !llmResp.Slots.PreferredWindow.IsValid() {
		llmResp.Slots.PreferredWindow = nil
	}
	if llmResp.Slots.MembershipStatus != nil && !llmResp.Slots.MembershipStatus.IsValid() {
		llmResp.Slots.MembershipStatus = nil
	}

	return &Result{
		Reply: llmResp.Reply,
		Slots: llmResp.Slots,
	}, nil
}

func (c *client) buildSystemPrompt() (string, error) {
	var sb strings.Builder
	if err := bookingSystemPrompt.Execute(&sb, c.policy); err != nil {
		return "", goerr.Wrap(err, "failed to render system prompt")
	}
	return sb.String(), nil
}

// buildUserPrompt lays out the turn context: caller identity, captured slots,
// recent history, then the fresh utterance.
func buildUserPrompt(input Input) string {
	var sb strings.Builder

	caller := input.Caller
	if caller == "" {
		caller = "Unknown"
	}
	fmt.Fprintf(&sb, "Caller: %s\n", caller)

	if slots, err := json.Marshal(input.Slots); err == nil {
		fmt.Fprintf(&sb, "Captured so far: %s\n", slots)
	}
	if input.LastQuestion != "" {
		fmt.Fprintf(&sb, "You last asked: %s\n", input.LastQuestion)
	}

	if len(input.History) > 0 {
		sb.WriteString("\nConversation so far:\n")
		for _, line := range input.History {
			fmt.Fprintf(&sb, "- %s: %s\n", line.Role, line.Text)
		}
	}

	fmt.Fprintf(&sb, "\nSpeech: %s\n", input.Utterance)
	sb.WriteString("\nReturn JSON with { reply, slots } exactly as specified.")
	return sb.String()
}

// buildResponseSchema mirrors llmResponse so the model is constrained to the
// exact slot shape the merge step expects.
func buildResponseSchema() *gollem.Parameter {
	strParam := func(desc string) *gollem.Parameter {
		return &gollem.Parameter{Type: gollem.TypeString, Description: desc}
	}

	return &gollem.Parameter{
		Type:        gollem.TypeObject,
		Description: "One turn of the booking conversation",
		Properties: map[string]*gollem.Parameter{
			"reply": {Type: gollem.TypeString, Description: "What the agent should say, voice-ready, short sentences", Required: true},
			"slots": {
				Type:        gollem.TypeObject,
				Required:    true,
				Description: "Newly captured fields only; omit anything not said this turn",
				Properties: map[string]*gollem.Parameter{
					"full_name":       strParam("Caller's full name"),
					"callback_number": strParam("Best callback number, digits and dashes"),
					"service_address": {
						Type: gollem.TypeObject,
						Properties: map[string]*gollem.Parameter{
							"line1":               strParam("Street address"),
							"line2":               strParam("Apartment or unit"),
							"city":                strParam("City"),
							"state":               strParam("Two-letter state code"),
							"zip":                 strParam("5-digit zip code"),
							"gate_or_entry_notes": strParam("Gate or entry notes"),
							"parking_notes":       strParam("Parking notes"),
						},
					},
					"unit_count":     {Type: gollem.TypeInteger, Description: "Number of HVAC systems"},
					"unit_locations": strParam("Where the systems are located"),
					"brand":          strParam("Equipment brand if known"),
					"symptoms": {
						Type:        gollem.TypeArray,
						Description: "Reported symptoms",
						Items:       &gollem.Parameter{Type: gollem.TypeString},
					},
					"thermostat": {
						Type: gollem.TypeObject,
						Properties: map[string]*gollem.Parameter{
							"setpoint": strParam("Thermostat setpoint as spoken"),
							"current":  strParam("Current thermostat reading as spoken"),
						},
					},
					"membership_status": {
						Type:        gollem.TypeString,
						Description: "Maintenance program membership",
						Enum:        []string{"member", "non_member", "unknown"},
					},
					"preferred_date": strParam("Preferred visit date, ISO format"),
					"preferred_window": {
						Type:        gollem.TypeString,
						Description: "Preferred arrival window",
						Enum:        []string{"morning", "afternoon", "flexible_all_day"},
					},
					"call_ahead":              {Type: gollem.TypeBoolean, Description: "Caller wants a call before arrival"},
					"hazards_pets_ants_notes": strParam("Hazards, pets, ants or access notes"),
					"pricing_disclosed":       {Type: gollem.TypeBoolean, Description: "True when the reply states the fees"},
					"emergency":               {Type: gollem.TypeBoolean, Description: "True when a safety hazard is described"},
				},
			},
		},
	}
}
