package usecase

import (
	"time"

	"github.com/hvacjoy/joyline/pkg/dialog"
	"github.com/hvacjoy/joyline/pkg/domain/interfaces"
	"github.com/hvacjoy/joyline/pkg/domain/model"
	"github.com/hvacjoy/joyline/pkg/service/booking"
	"github.com/hvacjoy/joyline/pkg/service/calendar"
	"github.com/hvacjoy/joyline/pkg/service/tts"
)

// UseCases wires the dialogue controller to its side effects: the transcript
// store, the language model, the dispatch calendar and speech synthesis.
type UseCases struct {
	repo   interfaces.Repository
	policy *model.Policy
	ctrl   *dialog.Controller

	booking  booking.Service
	calendar calendar.Service
	tts      tts.Service

	llmTimeout      time.Duration
	calendarTimeout time.Duration
	now             func() time.Time
}

type Option func(*UseCases)

// WithPolicy replaces the built-in call policy.
func WithPolicy(p *model.Policy) Option {
	return func(uc *UseCases) {
		uc.policy = p
	}
}

// WithBooking sets the language-model extraction service.
func WithBooking(svc booking.Service) Option {
	return func(uc *UseCases) {
		uc.booking = svc
	}
}

// WithCalendar sets the dispatch calendar service.
func WithCalendar(svc calendar.Service) Option {
	return func(uc *UseCases) {
		uc.calendar = svc
	}
}

// WithTTS sets the speech synthesis service.
func WithTTS(svc tts.Service) Option {
	return func(uc *UseCases) {
		uc.tts = svc
	}
}

// WithLLMTimeout bounds the per-turn language-model call.
func WithLLMTimeout(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.llmTimeout = d
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:            repo,
		policy:          model.DefaultPolicy(),
		llmTimeout:      15 * time.Second,
		calendarTimeout: 10 * time.Second,
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.ctrl = dialog.New(uc.policy, dialog.WithClock(uc.now))

	return uc
}

// Policy returns the active call policy.
func (uc *UseCases) Policy() *model.Policy {
	return uc.policy
}

// HasLLM reports whether the language-model capability is configured. Turns
// that need it fail as a server configuration error when it is absent.
func (uc *UseCases) HasLLM() bool {
	return uc.booking != nil
}

// TTS returns the speech synthesis service, or nil when not configured.
func (uc *UseCases) TTS() tts.Service {
	return uc.tts
}
