package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hvacjoy/joyline/pkg/service/calendar"
)

// DiagReport is the configuration presence report for operators. It never
// contains credential material, only whether each capability is wired.
type DiagReport struct {
	PolicyVersion      string `json:"policy_version"`
	LLMConfigured      bool   `json:"llm_configured"`
	CalendarConfigured bool   `json:"calendar_configured"`
	TTSConfigured      bool   `json:"tts_configured"`
}

// Diag reports which external capabilities are configured.
func (uc *UseCases) Diag(ctx context.Context) *DiagReport {
	return &DiagReport{
		PolicyVersion:      uc.policy.Version,
		LLMConfigured:      uc.booking != nil,
		CalendarConfigured: uc.calendar != nil,
		TTSConfigured:      uc.tts != nil,
	}
}

// CalendarDiag is the read-only calendar check: what the service account can
// see plus the next few events on the dispatch calendar.
type CalendarDiag struct {
	Calendars []*calendar.CalendarInfo `json:"calendars"`
	Upcoming  []*calendar.Event        `json:"upcoming"`
}

// DiagCalendar verifies calendar access end to end. The two reads are
// independent, so they run concurrently.
func (uc *UseCases) DiagCalendar(ctx context.Context) (*CalendarDiag, error) {
	if uc.calendar == nil {
		return nil, goerr.Wrap(ErrCalendarNotConfigured, "cannot run calendar diagnostics")
	}

	var diag CalendarDiag
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		calendars, err := uc.calendar.ListCalendars(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to list calendars")
		}
		diag.Calendars = calendars
		return nil
	})
	eg.Go(func() error {
		upcoming, err := uc.calendar.ListUpcoming(ctx, 5)
		if err != nil {
			return goerr.Wrap(err, "failed to list upcoming events")
		}
		diag.Upcoming = upcoming
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return &diag, nil
}
