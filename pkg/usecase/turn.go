package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hvacjoy/joyline/pkg/dialog"
	"github.com/hvacjoy/joyline/pkg/domain/model"
	"github.com/hvacjoy/joyline/pkg/domain/types"
	"github.com/hvacjoy/joyline/pkg/service/booking"
	"github.com/hvacjoy/joyline/pkg/service/calendar"
	"github.com/hvacjoy/joyline/pkg/utils/async"
	"github.com/hvacjoy/joyline/pkg/utils/logging"
)

// TurnInput is one caller utterance plus the state needed to resolve it.
// When Slots is nil, the prior state is recovered from the latest assistant
// transcript line of the call.
type TurnInput struct {
	Speech       string
	Caller       string
	CallSID      types.CallSID
	Slots        *model.Slots
	LastQuestion string
}

// HandleTurn runs one conversation turn end to end: state recovery, the
// dialogue transition, the bounded language-model call when the heuristics
// cannot resolve the turn, the calendar write on completion, and async
// transcript persistence. Persistence failures never fail the turn.
func (uc *UseCases) HandleTurn(ctx context.Context, in TurnInput) (*model.Outcome, error) {
	if strings.TrimSpace(in.Speech) == "" {
		return nil, ErrMissingSpeech
	}
	if in.CallSID == "" {
		return nil, ErrMissingCallSID
	}

	history, err := uc.repo.Transcript().List(ctx, in.CallSID)
	if err != nil {
		// A broken store must not drop the call; continue as a fresh one.
		logging.From(ctx).Warn("failed to load transcript history",
			"callSID", in.CallSID, "error", err)
		history = nil
	}

	prev, lastQuestion := uc.priorState(in, history)

	turn := model.Turn{
		Utterance:    in.Speech,
		Caller:       in.Caller,
		CallSID:      in.CallSID,
		Prev:         prev,
		LastQuestion: lastQuestion,
	}

	out, needLLM := uc.ctrl.Advance(turn)
	if needLLM {
		if uc.booking == nil {
			return nil, goerr.Wrap(ErrLLMNotConfigured, "cannot resolve turn")
		}
		out = uc.ctrl.Resolve(turn, uc.extractWithModel(ctx, turn, history))
	}

	if out.Done {
		uc.writeBooking(ctx, out.Slots)
	}

	uc.persistTurn(ctx, in, out, len(history))

	return &out, nil
}

// priorState picks the slot state the turn starts from: the explicit state
// when the webhook carries one, otherwise whatever the latest assistant line
// recorded.
func (uc *UseCases) priorState(in TurnInput, history []*model.TranscriptLine) (model.Slots, string) {
	if in.Slots != nil {
		return *in.Slots, in.LastQuestion
	}
	for i := len(history) - 1; i >= 0; i-- {
		line := history[i]
		if line.Role != types.RoleAssistant || line.Meta == nil {
			continue
		}
		return line.Meta.Slots, line.Meta.LastQuestion
	}
	return model.Slots{}, in.LastQuestion
}

// extractWithModel calls the language model under the configured timeout.
// Any failure degrades to nil, which the controller turns into the canned
// re-prompt.
func (uc *UseCases) extractWithModel(ctx context.Context, turn model.Turn, history []*model.TranscriptLine) *dialog.ModelReply {
	llmCtx, cancel := context.WithTimeout(ctx, uc.llmTimeout)
	defer cancel()

	result, err := uc.booking.ExtractTurn(llmCtx, booking.Input{
		Utterance:    turn.Utterance,
		Caller:       turn.Caller,
		History:      history,
		Slots:        turn.Prev,
		LastQuestion: turn.LastQuestion,
	})
	if err != nil {
		logging.From(ctx).Warn("language model turn failed, degrading to canned reply",
			"callSID", turn.CallSID, "error", err)
		return nil
	}
	return &dialog.ModelReply{
		Reply: result.Reply,
		Slots: result.Slots,
	}
}

// writeBooking creates the dispatch calendar event for a completed call.
// Failures are logged and swallowed; the caller already heard the goodbye.
func (uc *UseCases) writeBooking(ctx context.Context, slots model.Slots) {
	if uc.calendar == nil {
		return
	}

	calCtx, cancel := context.WithTimeout(ctx, uc.calendarTimeout)
	defer cancel()

	b := BuildBooking(slots, uc.policy, uc.now())
	event, err := uc.calendar.CreateBooking(calCtx, b)
	if err != nil {
		logging.From(ctx).Warn("failed to create booking event", "error", err)
		return
	}
	logging.From(ctx).Info("booking event created",
		"eventID", event.ID, "start", event.Start)
}

// persistTurn appends the caller and assistant lines in the background. The
// assistant line carries the slot state and pending question so the next
// turn can recover them.
func (uc *UseCases) persistTurn(ctx context.Context, in TurnInput, out model.Outcome, nextIndex int) {
	reply := out.Reply
	if out.Goodbye != "" {
		reply = strings.TrimSpace(reply + " " + out.Goodbye)
	}

	callerLine := &model.TranscriptLine{
		CallSID:   in.CallSID,
		Caller:    in.Caller,
		Role:      types.RoleCaller,
		Text:      in.Speech,
		TurnIndex: nextIndex,
	}
	assistantLine := &model.TranscriptLine{
		CallSID:   in.CallSID,
		Caller:    in.Caller,
		Role:      types.RoleAssistant,
		Text:      reply,
		TurnIndex: nextIndex + 1,
		Meta: &model.TurnMeta{
			Slots:        out.Slots,
			LastQuestion: out.Question,
			Done:         out.Done,
		},
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		if _, err := uc.repo.Transcript().Append(ctx, callerLine); err != nil {
			return goerr.Wrap(err, "failed to append caller line", goerr.V("callSID", in.CallSID))
		}
		if _, err := uc.repo.Transcript().Append(ctx, assistantLine); err != nil {
			return goerr.Wrap(err, "failed to append assistant line", goerr.V("callSID", in.CallSID))
		}
		return nil
	})
}

// BuildBooking maps the captured slots onto a calendar event. The visit
// start comes from the preferred date and window: mornings begin at 9, the
// afternoon at 1, flexible bookings take the morning start. Without a date
// the visit is placed on the next day.
func BuildBooking(slots model.Slots, p *model.Policy, now time.Time) calendar.Booking {
	loc, err := time.LoadLocation(p.DefaultTimezone)
	if err != nil {
		loc = time.UTC
	}

	day := now.In(loc).AddDate(0, 0, 1)
	if slots.PreferredDate != nil {
		if d, err := time.ParseInLocation("2006-01-02", *slots.PreferredDate, loc); err == nil {
			day = d
		}
	}

	hour := 9
	if slots.PreferredWindow != nil && *slots.PreferredWindow == types.WindowAfternoon {
		hour = 13
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, loc)

	name := "Unknown caller"
	if slots.FullName != nil {
		name = *slots.FullName
	}

	var desc strings.Builder
	if slots.CallbackNumber != nil {
		fmt.Fprintf(&desc, "Callback: %s\n", *slots.CallbackNumber)
	}
	if slots.UnitCount != nil {
		fmt.Fprintf(&desc, "Units: %d\n", *slots.UnitCount)
	}
	if len(slots.Symptoms) > 0 {
		fmt.Fprintf(&desc, "Symptoms: %s\n", strings.Join(slots.Symptoms, ", "))
	}
	if slots.Brand != nil {
		fmt.Fprintf(&desc, "Brand: %s\n", *slots.Brand)
	}
	if slots.HazardNotes != nil {
		fmt.Fprintf(&desc, "Notes: %s\n", *slots.HazardNotes)
	}
	if slots.PreferredWindow != nil {
		fmt.Fprintf(&desc, "Window: %s\n", slots.PreferredWindow.Spoken())
	}
	if slots.CallAhead != nil && *slots.CallAhead {
		desc.WriteString("Call ahead requested\n")
	}

	return calendar.Booking{
		Summary:     fmt.Sprintf("%s service visit: %s", p.BrandName, name),
		Location:    slots.ServiceAddress.Oneline(),
		Description: strings.TrimSpace(desc.String()),
		Start:       start,
		DurationMin: p.BookingDurationMin,
	}
}
