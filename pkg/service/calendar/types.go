package calendar

import (
	"context"
	"time"
)

// Service is the dispatch calendar boundary: one write operation used when a
// booking completes, plus read-only diagnostics for operational checks.
type Service interface {
	// CreateBooking inserts the visit on the dispatch calendar and returns
	// the created event.
	CreateBooking(ctx context.Context, b Booking) (*Event, error)

	// ListCalendars reports the calendars the service account can see.
	ListCalendars(ctx context.Context) ([]*CalendarInfo, error)

	// ListUpcoming returns the next events on the dispatch calendar.
	ListUpcoming(ctx context.Context, maxResults int) ([]*Event, error)
}

// Booking is the event payload for a confirmed visit.
type Booking struct {
	Summary     string
	Location    string
	Description string
	Start       time.Time
	// DurationMin falls back to the configured default when zero.
	DurationMin int
}

// Event is the created or listed calendar event.
type Event struct {
	ID       string
	Summary  string
	Start    string
	HTMLLink string
}

// CalendarInfo describes one visible calendar, for diagnostics.
type CalendarInfo struct {
	ID         string
	Summary    string
	AccessRole string
	TimeZone   string
}
