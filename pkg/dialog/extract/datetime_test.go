package extract_test

import (
	"testing"
	"time"

	"github.com/hvacjoy/joyline/pkg/dialog/extract"
	"github.com/hvacjoy/joyline/pkg/domain/types"
)

func intOr(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}

func TestScheduleFrom(t *testing.T) {
	// A Wednesday, so weekday arithmetic has both forward and wrap-around cases.
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		text       string
		wantDate   string
		wantHour   int
		wantMinute int
		wantWindow types.Window
		wantNil    bool
	}{
		{
			name:     "tomorrow",
			text:     "can you come out tomorrow",
			wantDate: "2025-03-13",
			wantHour: -1,
		},
		{
			name:     "trailing question mark",
			text:     "Can you come out tomorrow?",
			wantDate: "2025-03-13",
			wantHour: -1,
		},
		{
			name:     "today with anchored bare hour",
			text:     "I need a technician today at 3",
			wantDate: "2025-03-12",
			wantHour: 15,
		},
		{
			name:     "weekday later this week",
			text:     "schedule me for friday",
			wantDate: "2025-03-14",
			wantHour: -1,
		},
		{
			name:     "trailing period",
			text:     "schedule me for friday.",
			wantDate: "2025-03-14",
			wantHour: -1,
		},
		{
			name:     "weekday earlier in week wraps forward",
			text:     "can you book me for tuesday",
			wantDate: "2025-03-18",
			wantHour: -1,
		},
		{
			name:     "same weekday means a week out",
			text:     "send someone next wednesday",
			wantDate: "2025-03-19",
			wantHour: -1,
		},
		{
			name:       "clock with minutes and marker",
			text:       "schedule me for tuesday at 9:30 am",
			wantDate:   "2025-03-18",
			wantHour:   9,
			wantMinute: 30,
		},
		{
			name:       "dotted meridiem",
			text:       "schedule me for tuesday at 9:30 a.m.",
			wantDate:   "2025-03-18",
			wantHour:   9,
			wantMinute: 30,
		},
		{
			name:     "pm marker without anchor",
			text:     "tomorrow 2pm works",
			wantDate: "2025-03-13",
			wantHour: 14,
		},
		{
			name:       "morning window",
			text:       "tomorrow morning please",
			wantDate:   "2025-03-13",
			wantHour:   -1,
			wantWindow: types.WindowMorning,
		},
		{
			name:       "evening folds into afternoon",
			text:       "tomorrow evening",
			wantDate:   "2025-03-13",
			wantHour:   -1,
			wantWindow: types.WindowAfternoon,
		},
		{
			name:       "flexible window",
			text:       "I'm flexible, any time tomorrow",
			wantDate:   "2025-03-13",
			wantHour:   -1,
			wantWindow: types.WindowFlexible,
		},
		{
			name:       "bare window with scheduling intent",
			text:       "an afternoon visit works for me",
			wantHour:   -1,
			wantWindow: types.WindowAfternoon,
		},
		{
			name:    "bare window without intent is dropped",
			text:    "it was 75 this morning",
			wantNil: true,
		},
		{
			name:    "no scheduling content",
			text:    "my AC is blowing warm air",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := extract.ScheduleFrom(tt.text, now)
			if tt.wantNil {
				if s != nil {
					t.Fatalf("ScheduleFrom() = %+v, want nil", s)
				}
				return
			}
			if s == nil {
				t.Fatal("ScheduleFrom() = nil, want a match")
			}
			if got := strOrEmpty(s.Date); got != tt.wantDate {
				t.Errorf("Date = %q, want %q", got, tt.wantDate)
			}
			if got := intOr(s.Hour, -1); got != tt.wantHour {
				t.Errorf("Hour = %d, want %d", got, tt.wantHour)
			}
			if got := intOr(s.Minute, 0); got != tt.wantMinute {
				t.Errorf("Minute = %d, want %d", got, tt.wantMinute)
			}
			if tt.wantWindow == "" {
				if s.Window != nil {
					t.Errorf("Window = %v, want nil", *s.Window)
				}
			} else if s.Window == nil || *s.Window != tt.wantWindow {
				t.Errorf("Window = %v, want %v", s.Window, tt.wantWindow)
			}
		})
	}
}

func TestScheduleFromWeekdayAlwaysFuture(t *testing.T) {
	// Whatever day a weekday is spoken on, it resolves to a date strictly
	// after today and at most seven days out.
	for day := 0; day < 7; day++ {
		now := time.Date(2025, 3, 9+day, 10, 0, 0, 0, time.UTC)
		s := extract.ScheduleFrom("can you come out tuesday", now)
		if s == nil || s.Date == nil {
			t.Fatalf("day %d: no date extracted", day)
		}
		got, err := time.Parse("2006-01-02", *s.Date)
		if err != nil {
			t.Fatalf("day %d: bad date %q: %v", day, *s.Date, err)
		}
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		days := int(got.Sub(midnight) / (24 * time.Hour))
		if days <= 0 || days > 7 {
			t.Errorf("day %d: resolved %d days ahead, want (0, 7]", day, days)
		}
		if got.Weekday() != time.Tuesday {
			t.Errorf("day %d: resolved to %v, want Tuesday", day, got.Weekday())
		}
	}
}
