package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hvacjoy/joyline/pkg/domain/types"
)

// Schedule is a scheduling preference found in an utterance. Date is an ISO
// calendar date; Hour/Minute are set when the caller spoke a clock time.
type Schedule struct {
	Date   *string
	Hour   *int
	Minute *int
	Window *types.Window
}

var weekdayOrder = []string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var (
	// Clock matches without an am/pm marker need the "at" anchor, otherwise
	// every bare number would look like a time.
	anchoredClockRe = regexp.MustCompile(`(?i)\bat\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
	markedClockRe   = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\s*(am|pm)?\b|\b(\d{1,2})\s*(am|pm)\b`)

	schedulingIntentRe = regexp.MustCompile(`(?i)\b(schedule|appointment|book|booking|visit|come out|come by|technician|tech|available|availability|stop by|send someone)\b`)

	// Meridiem dots are folded before the general punctuation strip so that
	// "9 a.m." survives as "9 am" instead of decaying to "9 a m".
	meridiemDotsRe = regexp.MustCompile(`(?i)\b([ap])\.m\.?`)
	schedPunctRe   = regexp.MustCompile(`[.,;!?]`)
)

// ScheduleFrom scans an utterance for dates, clock times and arrival
// windows. A bare time or window with no explicit date word is only accepted
// when the utterance also carries scheduling intent; otherwise the whole
// result is dropped to avoid false positives ("it was 75 this morning").
func ScheduleFrom(text string, now time.Time) *Schedule {
	lower := strings.ToLower(text)
	lower = meridiemDotsRe.ReplaceAllString(lower, "${1}m")
	lower = schedPunctRe.ReplaceAllString(lower, " ")
	lower = strings.Join(strings.Fields(lower), " ")
	var s Schedule

	switch {
	case indexWord(lower, "tomorrow") >= 0:
		s.Date = isoDate(now.AddDate(0, 0, 1))
	case indexWord(lower, "today") >= 0:
		s.Date = isoDate(now)
	default:
		for _, name := range weekdayOrder {
			if indexWord(lower, name) < 0 {
				continue
			}
			wd := weekdays[name]
			delta := (int(wd) - int(now.Weekday()) + 7) % 7
			if delta == 0 {
				// "next tuesday" spoken on a Tuesday means a week out.
				delta = 7
			}
			s.Date = isoDate(now.AddDate(0, 0, delta))
			break
		}
	}

	if h, m, ok := clockTime(lower); ok {
		s.Hour = &h
		s.Minute = &m
	}

	switch {
	case indexWord(lower, "morning") >= 0:
		w := types.WindowMorning
		s.Window = &w
	case indexWord(lower, "afternoon") >= 0 || indexWord(lower, "evening") >= 0:
		w := types.WindowAfternoon
		s.Window = &w
	case strings.Contains(lower, "flexible") || strings.Contains(lower, "all day") ||
		strings.Contains(lower, "any time") || strings.Contains(lower, "anytime") ||
		strings.Contains(lower, "whenever"):
		w := types.WindowFlexible
		s.Window = &w
	}

	if s.Date == nil && s.Hour == nil && s.Window == nil {
		return nil
	}

	// Implicit-date guard: a bare time or window only counts as a scheduling
	// preference when scheduling intent is present in the same utterance.
	if s.Date == nil && !schedulingIntentRe.MatchString(lower) {
		return nil
	}

	return &s
}

func clockTime(lower string) (hour, minute int, ok bool) {
	m := anchoredClockRe.FindStringSubmatch(lower)
	if m == nil {
		if mm := markedClockRe.FindStringSubmatch(lower); mm != nil {
			if mm[1] != "" {
				m = []string{mm[0], mm[1], mm[2], mm[3]}
			} else {
				m = []string{mm[0], mm[4], "", mm[5]}
			}
		}
	}
	if m == nil {
		return 0, 0, false
	}

	hour = atoi(m[1])
	if m[2] != "" {
		minute = atoi(m[2])
	}
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}

	switch m[3] {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	default:
		// No marker: business hours assumption, "at 2" means 2 PM.
		if hour >= 1 && hour <= 7 {
			hour += 12
		}
	}

	return hour, minute, true
}

func isoDate(t time.Time) *string {
	s := t.Format("2006-01-02")
	return &s
}

func atoi(s string) int {
	var n int
	_, _ = fmt.Sscanf(s, "%d", &n)
	return n
}
