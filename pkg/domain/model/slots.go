package model

import (
	"strings"

	"github.com/hvacjoy/joyline/pkg/domain/types"
)

// Ptr returns a pointer to the given value. Convenience for building
// partial slot states.
func Ptr[T any](v T) *T {
	return &v
}

// Address is the service address captured during a booking conversation.
// All fields are optional until the caller provides them.
type Address struct {
	Line1            *string `json:"line1"`
	Line2            *string `json:"line2"`
	City             *string `json:"city"`
	State            *string `json:"state"`
	Zip              *string `json:"zip"`
	GateOrEntryNotes *string `json:"gate_or_entry_notes"`
	ParkingNotes     *string `json:"parking_notes"`
}

// Complete reports whether the address has everything dispatch needs:
// street line, city, state and zip.
func (a Address) Complete() bool {
	return a.Line1 != nil && a.City != nil && a.State != nil && a.Zip != nil
}

// Oneline renders the address as a single spoken-friendly line.
func (a Address) Oneline() string {
	var parts []string
	if a.Line1 != nil {
		parts = append(parts, *a.Line1)
	}
	if a.City != nil {
		parts = append(parts, *a.City)
	}
	tail := ""
	if a.State != nil {
		tail = *a.State
	}
	if a.Zip != nil {
		if tail != "" {
			tail += " "
		}
		tail += *a.Zip
	}
	if tail != "" {
		parts = append(parts, tail)
	}
	return strings.Join(parts, ", ")
}

// Thermostat holds the reported thermostat readings. Values are kept as
// strings because callers say things like "seventy two" or "72 degrees".
type Thermostat struct {
	Setpoint *string `json:"setpoint"`
	Current  *string `json:"current"`
}

// PendingFix marks that the caller flagged something as wrong without yet
// providing the corrected value. It is consumed on the next turn once a
// replacement value is captured.
type PendingFix struct {
	Field  string `json:"field"`
	Prompt string `json:"prompt"`
}

// Slots is the conversation memory of a booking call: every structured fact
// captured so far plus the transient dialogue-control state. It is passed by
// value between turns; each turn produces the next version. Once a field is
// non-nil it is never silently reset except through an explicit correction.
type Slots struct {
	FullName         *string                 `json:"full_name"`
	CallbackNumber   *string                 `json:"callback_number"`
	ServiceAddress   Address                 `json:"service_address"`
	UnitCount        *int                    `json:"unit_count"`
	UnitLocations    *string                 `json:"unit_locations"`
	Brand            *string                 `json:"brand"`
	Symptoms         []string                `json:"symptoms"`
	Thermostat       Thermostat              `json:"thermostat"`
	MembershipStatus *types.MembershipStatus `json:"membership_status"`
	PreferredDate    *string                 `json:"preferred_date"`
	PreferredWindow  *types.Window           `json:"preferred_window"`
	CallAhead        *bool                   `json:"call_ahead"`
	HazardNotes      *string                 `json:"hazards_pets_ants_notes"`
	PricingDisclosed bool                    `json:"pricing_disclosed"`
	Emergency        bool                    `json:"emergency"`

	// Dialogue-control state, carried between turns alongside the captured
	// facts. Owned by the dialogue controller; Merge keeps the previous
	// turn's values untouched.
	PendingFix             *PendingFix `json:"pending_fix,omitempty"`
	AwaitingAddressConfirm bool        `json:"awaiting_address_confirm,omitempty"`
	AwaitingPhoneConfirm   bool        `json:"awaiting_phone_confirm,omitempty"`
	AwaitingFinalConfirm   bool        `json:"awaiting_final_confirm,omitempty"`
	SummaryReads           int         `json:"summary_reads,omitempty"`
	PartialDigits          string      `json:"partial_digits,omitempty"`
}

// Stage returns the dialogue mode the next turn must be resolved in.
// Pending confirmations always win over normal capture.
func (s Slots) Stage() types.Stage {
	switch {
	case s.AwaitingAddressConfirm:
		return types.StageAddressConfirm
	case s.AwaitingPhoneConfirm:
		return types.StagePhoneConfirm
	case s.AwaitingFinalConfirm:
		return types.StageFinalConfirm
	default:
		return types.StageCapture
	}
}

// SchedulingSet reports whether any scheduling preference has been captured.
func (s Slots) SchedulingSet() bool {
	return s.PreferredDate != nil || s.PreferredWindow != nil
}

// Merge combines a previous slot state with a newly extracted partial state.
// For every field the new non-nil value wins, otherwise the previous value is
// kept. Nested objects merge recursively field by field; array fields are
// replaced wholesale only when the new array is non-empty; the sticky flags
// (pricing disclosed, emergency) never flip back to false. Dialogue-control
// state is taken from prev: it belongs to the controller, not to extraction.
// Merge is total and pure.
func Merge(prev, next Slots) Slots {
	merged := Slots{
		FullName:       mergeStr(prev.FullName, next.FullName),
		CallbackNumber: mergeStr(prev.CallbackNumber, next.CallbackNumber),
		ServiceAddress: mergeAddress(prev.ServiceAddress, next.ServiceAddress),
		UnitCount:      mergeInt(prev.UnitCount, next.UnitCount),
		UnitLocations:  mergeStr(prev.UnitLocations, next.UnitLocations),
		Brand:          mergeStr(prev.Brand, next.Brand),
		Symptoms:       prev.Symptoms,
		Thermostat: Thermostat{
			Setpoint: mergeStr(prev.Thermostat.Setpoint, next.Thermostat.Setpoint),
			Current:  mergeStr(prev.Thermostat.Current, next.Thermostat.Current),
		},
		MembershipStatus: mergeMembership(prev.MembershipStatus, next.MembershipStatus),
		PreferredDate:    mergeStr(prev.PreferredDate, next.PreferredDate),
		PreferredWindow:  mergeWindow(prev.PreferredWindow, next.PreferredWindow),
		CallAhead:        mergeBool(prev.CallAhead, next.CallAhead),
		HazardNotes:      mergeStr(prev.HazardNotes, next.HazardNotes),
		PricingDisclosed: prev.PricingDisclosed || next.PricingDisclosed,
		Emergency:        prev.Emergency || next.Emergency,

		PendingFix:             prev.PendingFix,
		AwaitingAddressConfirm: prev.AwaitingAddressConfirm,
		AwaitingPhoneConfirm:   prev.AwaitingPhoneConfirm,
		AwaitingFinalConfirm:   prev.AwaitingFinalConfirm,
		SummaryReads:           prev.SummaryReads,
		PartialDigits:          prev.PartialDigits,
	}

	if len(next.Symptoms) > 0 {
		merged.Symptoms = append([]string(nil), next.Symptoms...)
	} else if len(prev.Symptoms) > 0 {
		merged.Symptoms = append([]string(nil), prev.Symptoms...)
	}

	return merged
}

func mergeStr(prev, next *string) *string {
	if next != nil && strings.TrimSpace(*next) != "" {
		v := *next
		return &v
	}
	if prev != nil {
		v := *prev
		return &v
	}
	return nil
}

func mergeInt(prev, next *int) *int {
	if next != nil {
		v := *next
		return &v
	}
	if prev != nil {
		v := *prev
		return &v
	}
	return nil
}

func mergeBool(prev, next *bool) *bool {
	if next != nil {
		v := *next
		return &v
	}
	if prev != nil {
		v := *prev
		return &v
	}
	return nil
}

func mergeMembership(prev, next *types.MembershipStatus) *types.MembershipStatus {
	if next != nil && next.IsValid() {
		v := *next
		return &v
	}
	if prev != nil {
		v := *prev
		return &v
	}
	return nil
}

func mergeWindow(prev, next *types.Window) *types.Window {
	if next != nil && *next != "" {
		v := *next
		return &v
	}
	if prev != nil {
		v := *prev
		return &v
	}
	return nil
}

func mergeAddress(prev, next Address) Address {
	return Address{
		Line1:            mergeStr(prev.Line1, next.Line1),
		Line2:            mergeStr(prev.Line2, next.Line2),
		City:             mergeStr(prev.City, next.City),
		State:            mergeStr(prev.State, next.State),
		Zip:              mergeStr(prev.Zip, next.Zip),
		GateOrEntryNotes: mergeStr(prev.GateOrEntryNotes, next.GateOrEntryNotes),
		ParkingNotes:     mergeStr(prev.ParkingNotes, next.ParkingNotes),
	}
}
