package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/hvacjoy/joyline/pkg/domain/model"
	"github.com/hvacjoy/joyline/pkg/utils/logging"
)

// Policy holds the CLI flag for loading a call policy file
type Policy struct {
	path string
}

// policyFile is the TOML shape of a policy override file. Every field is
// optional; unset fields keep the built-in default. The file carries scripts
// and pricing, never credentials.
type policyFile struct {
	Version       string   `toml:"version"`
	AgentName     string   `toml:"agent_name"`
	BrandName     string   `toml:"brand_name"`
	BrandVariants []string `toml:"brand_variants"`

	Greeting        string `toml:"greeting"`
	PricingScript   string `toml:"pricing_script"`
	DiagnosticFee   int    `toml:"diagnostic_fee"`
	MaintenanceFee  int    `toml:"maintenance_fee"`
	EmpathyPhrase   string `toml:"empathy_phrase"`
	EmergencyScript string `toml:"emergency_script"`
	MembershipPitch string `toml:"membership_pitch"`
	FallbackReply   string `toml:"fallback_reply"`

	DefaultState       string `toml:"default_state"`
	DefaultTimezone    string `toml:"default_timezone"`
	BookingDurationMin int    `toml:"booking_duration_min"`
}

// Flags returns the CLI flag for policy configuration
func (p *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy-file",
			Usage:       "Path to a TOML call policy file (built-in policy when omitted)",
			Category:    "Policy",
			Sources:     cli.EnvVars("JOYLINE_POLICY_FILE"),
			Destination: &p.path,
		},
	}
}

// Configure loads and validates the call policy. Without a file the built-in
// policy is used as-is.
func (p *Policy) Configure() (*model.Policy, error) {
	policy := model.DefaultPolicy()
	if p.path == "" {
		return policy, nil
	}

	raw, err := os.ReadFile(p.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", p.path))
	}

	var file policyFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse policy file", goerr.V("path", p.path))
	}

	overlayPolicy(policy, &file)
	if err := policy.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid policy file", goerr.V("path", p.path))
	}

	logging.Default().Info("Loaded policy file", "path", p.path, "version", policy.Version)
	return policy, nil
}

func overlayPolicy(policy *model.Policy, file *policyFile) {
	setStr := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}

	setStr(&policy.Version, file.Version)
	setStr(&policy.AgentName, file.AgentName)
	setStr(&policy.BrandName, file.BrandName)
	if len(file.BrandVariants) > 0 {
		policy.BrandVariants = file.BrandVariants
	}
	setStr(&policy.Greeting, file.Greeting)
	setStr(&policy.EmpathyPhrase, file.EmpathyPhrase)
	setStr(&policy.EmergencyScript, file.EmergencyScript)
	setStr(&policy.MembershipPitch, file.MembershipPitch)
	setStr(&policy.FallbackReply, file.FallbackReply)
	setStr(&policy.DefaultState, file.DefaultState)
	setStr(&policy.DefaultTimezone, file.DefaultTimezone)
	setInt(&policy.DiagnosticFee, file.DiagnosticFee)
	setInt(&policy.MaintenanceFee, file.MaintenanceFee)
	setInt(&policy.BookingDurationMin, file.BookingDurationMin)

	// Fee overrides regenerate the default pricing script so the spoken
	// amounts stay in sync; an explicit script in the file wins.
	if file.DiagnosticFee > 0 || file.MaintenanceFee > 0 {
		policy.PricingScript = model.RenderPricingScript(policy.DiagnosticFee, policy.MaintenanceFee)
	}
	setStr(&policy.PricingScript, file.PricingScript)
}
