package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hvacjoy/joyline/pkg/cli/config"
	httpctrl "github.com/hvacjoy/joyline/pkg/controller/http"
	"github.com/hvacjoy/joyline/pkg/service/booking"
	"github.com/hvacjoy/joyline/pkg/usecase"
	"github.com/hvacjoy/joyline/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var publicURL string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var calendarCfg config.Calendar
	var ttsCfg config.TTS
	var policyCfg config.Policy

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("JOYLINE_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "public-url",
			Usage:       "Externally reachable base URL, used for audio links in telephony responses",
			Sources:     cli.EnvVars("JOYLINE_PUBLIC_URL"),
			Destination: &publicURL,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, calendarCfg.Flags()...)
	flags = append(flags, ttsCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the voice assistant HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			policy, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load call policy")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

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
				logging.Default().Info("Language model enabled", "gemini", geminiCfg)
			} else {
				logging.Default().Warn("Gemini project not configured, free-form turns will fail")
			}

			calendarSvc, err := calendarCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure calendar")
			}
			if calendarSvc != nil {
				ucOpts = append(ucOpts, usecase.WithCalendar(calendarSvc))
				logging.Default().Info("Dispatch calendar enabled", "calendar", calendarCfg)
			} else {
				logging.Default().Info("Calendar not configured, bookings will not be written")
			}

			ttsSvc, err := ttsCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure speech synthesis")
			}
			if ttsSvc != nil {
				ucOpts = append(ucOpts, usecase.WithTTS(ttsSvc))
				logging.Default().Info("Speech synthesis enabled", "tts", ttsCfg)
			} else {
				logging.Default().Info("Speech synthesis not configured, audio endpoint disabled")
			}

			uc := usecase.New(repo, ucOpts...)

			httpOpts := []httpctrl.Options{}
			if publicURL != "" {
				httpOpts = append(httpOpts, httpctrl.WithPublicURL(publicURL))
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr, "public_url", publicURL)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
