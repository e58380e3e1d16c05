package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hvacjoy/joyline/pkg/cli/config"
	"github.com/hvacjoy/joyline/pkg/repository/memory"
	"github.com/hvacjoy/joyline/pkg/service/booking"
	"github.com/hvacjoy/joyline/pkg/usecase"
)

// cmdDiag checks the configured capabilities without serving traffic. The
// calendar check makes real API calls, so it is opt-in.
func cmdDiag() *cli.Command {
	var checkCalendar bool
	var geminiCfg config.Gemini
	var calendarCfg config.Calendar
	var ttsCfg config.TTS
	var policyCfg config.Policy

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "calendar",
			Usage:       "Verify calendar access by listing calendars and upcoming events",
			Destination: &checkCalendar,
		},
	}
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, calendarCfg.Flags()...)
	flags = append(flags, ttsCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:  "diag",
		Usage: "Report which capabilities are configured",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			policy, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load call policy")
			}

			ucOpts := []usecase.Option{
				usecase.WithPolicy(policy),
			}

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure language model")
			}
			if llmClient != nil {
				bookingSvc, err := booking.New(llmClient, policy)
				if err != nil {
					return goerr.Wrap(err, "failed to create booking extraction service")
				}
				ucOpts = append(ucOpts, usecase.WithBooking(bookingSvc))
			}

			calendarSvc, err := calendarCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure calendar")
			}
			if calendarSvc != nil {
				ucOpts = append(ucOpts, usecase.WithCalendar(calendarSvc))
			}

			ttsSvc, err := ttsCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure speech synthesis")
			}
			if ttsSvc != nil {
				ucOpts = append(ucOpts, usecase.WithTTS(ttsSvc))
			}

			uc := usecase.New(memory.New(), ucOpts...)
			report := uc.Diag(ctx)

			bold := color.New(color.Bold)
			bold.Println("Capability report")
			printCapability("policy", true, "version "+report.PolicyVersion)
			printCapability("language model", report.LLMConfigured, "")
			printCapability("calendar", report.CalendarConfigured, "")
			printCapability("speech synthesis", report.TTSConfigured, "")

			if !checkCalendar {
				return nil
			}

			calDiag, err := uc.DiagCalendar(ctx)
			if err != nil {
				color.Red("calendar check failed: %v", err)
				return err
			}

			bold.Println("\nVisible calendars")
			for _, cal := range calDiag.Calendars {
				color.White("  %s (%s)", cal.Summary, cal.ID)
			}
			bold.Println("\nUpcoming events")
			if len(calDiag.Upcoming) == 0 {
				color.White("  (none)")
			}
			for _, ev := range calDiag.Upcoming {
				color.White("  %s  %s", ev.Start, ev.Summary)
			}
			return nil
		},
	}
}

func printCapability(name string, ok bool, note string) {
	status := color.GreenString("configured")
	if !ok {
		status = color.YellowString("not configured")
	}
	if note != "" {
		status += " (" + note + ")"
	}
	color.White("  %-18s %s", name, status)
}
