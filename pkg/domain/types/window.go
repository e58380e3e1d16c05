package types

// Window represents a preferred arrival window for a service visit
type Window string

const (
	WindowMorning   Window = "morning"
	WindowAfternoon Window = "afternoon"
	WindowFlexible  Window = "flexible_all_day"
)

// AllWindows returns all valid arrival windows
func AllWindows() []Window {
	return []Window{
		WindowMorning,
		WindowAfternoon,
		WindowFlexible,
	}
}

// IsValid checks if the window is valid
func (w Window) IsValid() bool {
	switch w {
	case WindowMorning, WindowAfternoon, WindowFlexible:
		return true
	default:
		return false
	}
}

// String returns the string representation of the window
func (w Window) String() string {
	return string(w)
}

// Spoken returns the voice-friendly rendering of the window
func (w Window) Spoken() string {
	switch w {
	case WindowMorning:
		return "in the morning"
	case WindowAfternoon:
		return "in the afternoon"
	case WindowFlexible:
		return "any time, flexible all day"
	default:
		return string(w)
	}
}
