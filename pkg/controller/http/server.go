package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hvacjoy/joyline/pkg/usecase"
	"github.com/hvacjoy/joyline/pkg/utils/logging"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases

	// publicURL is the externally reachable base URL used when building
	// audio links in TwiML. Falls back to the request host when empty.
	publicURL string
}

type Options func(*Server)

// WithPublicURL sets the externally reachable base URL of this server.
func WithPublicURL(u string) Options {
	return func(s *Server) {
		s.publicURL = u
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/turn", turnHandler(s.uc))
		r.Get("/tts", ttsHandler(s.uc))
		r.Post("/transcripts/log", transcriptLogHandler(s.uc))
		r.Get("/transcripts/{callSID}", transcriptListHandler(s.uc))
		r.Get("/diag", diagHandler(s.uc))
		r.Get("/diag/calendar", diagCalendarHandler(s.uc))
	})

	// Telephony webhook. No auth; the provider signs requests upstream of
	// this service.
	r.Post("/hooks/twilio", s.twilioWebhookHandler())

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
