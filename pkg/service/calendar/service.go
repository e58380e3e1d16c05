package calendar

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// client implements Service on the Calendar v3 API with a service account.
type client struct {
	svc         *gcal.Service
	calendarID  string
	timezone    string
	durationMin int
	now         func() time.Time
}

// Option is a functional option for client configuration
type Option func(*client)

// WithTimezone sets the timezone events are created in.
func WithTimezone(tz string) Option {
	return func(c *client) {
		c.timezone = tz
	}
}

// WithDefaultDuration sets the visit length used when a booking has none.
func WithDefaultDuration(minutes int) Option {
	return func(c *client) {
		c.durationMin = minutes
	}
}

// WithClock overrides the time source for the upcoming-events listing.
func WithClock(now func() time.Time) Option {
	return func(c *client) {
		c.now = now
	}
}

// New creates the calendar service from the raw service account JSON.
func New(ctx context.Context, saJSON []byte, calendarID string, opts ...Option) (Service, error) {
	if len(saJSON) == 0 {
		return nil, goerr.New("service account JSON is required")
	}
	if calendarID == "" {
		return nil, goerr.New("calendar ID is required")
	}

	cfg, err := google.JWTConfigFromJSON(saJSON, gcal.CalendarScope)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse service account JSON")
	}

	svc, err := gcal.NewService(ctx, option.WithTokenSource(cfg.TokenSource(ctx)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create calendar client")
	}

	c := &client{
		svc:         svc,
		calendarID:  calendarID,
		timezone:    "America/New_York",
		durationMin: 60,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *client) CreateBooking(ctx context.Context, b Booking) (*Event, error) {
	if b.Summary == "" {
		return nil, goerr.New("booking summary is required")
	}
	if b.Start.IsZero() {
		return nil, goerr.New("booking start time is required")
	}

	loc, err := time.LoadLocation(c.timezone)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid timezone", goerr.V("timezone", c.timezone))
	}

	duration := b.DurationMin
	if duration <= 0 {
		duration = c.durationMin
	}
	start := b.Start.In(loc)
	end := start.Add(time.Duration(duration) * time.Minute)

	// Naive local timestamps with an explicit timeZone, so the calendar
	// renders the visit in dispatch's timezone regardless of server TZ.
	const layout = "2006-01-02T15:04:05"
	ev := &gcal.Event{
		Summary:     b.Summary,
		Location:    b.Location,
		Description: b.Description,
		Start:       &gcal.EventDateTime{DateTime: start.Format(layout), TimeZone: c.timezone},
		End:         &gcal.EventDateTime{DateTime: end.Format(layout), TimeZone: c.timezone},
		Reminders: &gcal.EventReminders{
			UseDefault:      false,
			Overrides:       []*gcal.EventReminder{{Method: "popup", Minutes: 30}},
			ForceSendFields: []string{"UseDefault"},
		},
	}

	created, err := c.svc.Events.Insert(c.calendarID, ev).SupportsAttachments(false).Context(ctx).Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert calendar event",
			goerr.V("calendarID", c.calendarID),
			goerr.V("summary", b.Summary))
	}

	return &Event{
		ID:       created.Id,
		Summary:  created.Summary,
		Start:    eventStart(created),
		HTMLLink: created.HtmlLink,
	}, nil
}

func (c *client) ListCalendars(ctx context.Context) ([]*CalendarInfo, error) {
	list, err := c.svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list calendars")
	}

	infos := make([]*CalendarInfo, 0, len(list.Items))
	for _, item := range list.Items {
		infos = append(infos, &CalendarInfo{
			ID:         item.Id,
			Summary:    item.Summary,
			AccessRole: item.AccessRole,
			TimeZone:   item.TimeZone,
		})
	}
	return infos, nil
}

func (c *client) ListUpcoming(ctx context.Context, maxResults int) ([]*Event, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	list, err := c.svc.Events.List(c.calendarID).
		TimeMin(c.now().UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(int64(maxResults)).
		Context(ctx).Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list upcoming events", goerr.V("calendarID", c.calendarID))
	}

	events := make([]*Event, 0, len(list.Items))
	for _, item := range list.Items {
		summary := item.Summary
		if summary == "" {
			summary = "(no title)"
		}
		events = append(events, &Event{
			ID:       item.Id,
			Summary:  summary,
			Start:    eventStart(item),
			HTMLLink: item.HtmlLink,
		})
	}
	return events, nil
}

func eventStart(ev *gcal.Event) string {
	if ev.Start == nil {
		return ""
	}
	if ev.Start.DateTime != "" {
		return ev.Start.DateTime
	}
	return ev.Start.Date
}
