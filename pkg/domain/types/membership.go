package types

// MembershipStatus represents the caller's maintenance program membership
type MembershipStatus string

const (
	MembershipMember    MembershipStatus = "member"
	MembershipNonMember MembershipStatus = "non_member"
	MembershipUnknown   MembershipStatus = "unknown"
)

// IsValid checks if the membership status is valid
func (m MembershipStatus) IsValid() bool {
	switch m {
	case MembershipMember, MembershipNonMember, MembershipUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation of the membership status
func (m MembershipStatus) String() string {
	return string(m)
}
