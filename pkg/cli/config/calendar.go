package config

import (
	"context"
	"encoding/base64"
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hvacjoy/joyline/pkg/service/calendar"
)

// Calendar holds CLI flags for the dispatch calendar integration. The
// service account key is accepted either base64-encoded in an environment
// variable or as a file path; container deployments use the former.
type Calendar struct {
	calendarID string
	keyBase64  string
	keyFile    string
	timezone   string
}

// Flags returns CLI flags for calendar configuration
func (c *Calendar) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "calendar-id",
			Usage:       "Google Calendar ID bookings are written to",
			Category:    "Calendar",
			Sources:     cli.EnvVars("JOYLINE_CALENDAR_ID"),
			Destination: &c.calendarID,
		},
		&cli.StringFlag{
			Name:        "calendar-sa-key-base64",
			Usage:       "Base64-encoded service account key JSON",
			Category:    "Calendar",
			Sources:     cli.EnvVars("JOYLINE_CALENDAR_SA_KEY_BASE64"),
			Destination: &c.keyBase64,
		},
		&cli.StringFlag{
			Name:        "calendar-sa-key-file",
			Usage:       "Path to a service account key JSON file",
			Category:    "Calendar",
			Sources:     cli.EnvVars("JOYLINE_CALENDAR_SA_KEY_FILE"),
			Destination: &c.keyFile,
		},
		&cli.StringFlag{
			Name:        "calendar-timezone",
			Usage:       "IANA timezone of the dispatch calendar",
			Category:    "Calendar",
			Value:       "America/New_York",
			Sources:     cli.EnvVars("JOYLINE_CALENDAR_TIMEZONE"),
			Destination: &c.timezone,
		},
	}
}

func (c Calendar) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("calendar_id", c.calendarID),
		slog.Int("key_base64.len", len(c.keyBase64)),
		slog.String("key_file", c.keyFile),
		slog.String("timezone", c.timezone),
	)
}

// Configure creates the calendar service. Returns nil when no calendar ID is
// set; bookings then complete without a calendar write.
func (c *Calendar) Configure(ctx context.Context) (calendar.Service, error) {
	if c.calendarID == "" {
		return nil, nil
	}

	var saJSON []byte
	switch {
	case c.keyBase64 != "":
		decoded, err := base64.StdEncoding.DecodeString(c.keyBase64)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to decode service account key")
		}
		saJSON = decoded

	case c.keyFile != "":
		raw, err := os.ReadFile(c.keyFile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read service account key file", goerr.V("path", c.keyFile))
		}
		saJSON = raw

	default:
		return nil, goerr.New("calendar service account key is required when calendar-id is set")
	}

	svc, err := calendar.New(ctx, saJSON, c.calendarID, calendar.WithTimezone(c.timezone))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create calendar service")
	}

	return svc, nil
}
