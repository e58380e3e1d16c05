package types

// Stage is the dialogue mode a call turn is resolved in. The stages are
// mutually exclusive per turn: a pending confirmation always wins over
// normal slot capture.
type Stage string

const (
	StageAddressConfirm Stage = "awaiting_address_confirmation"
	StagePhoneConfirm   Stage = "awaiting_phone_confirmation"
	StageFinalConfirm   Stage = "awaiting_final_confirmation"
	StageCapture        Stage = "normal_capture"
)

// String returns the string representation of the stage
func (s Stage) String() string {
	return string(s)
}
