package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hvacjoy/joyline/pkg/usecase"
	"github.com/hvacjoy/joyline/pkg/utils/errutil"
)

// diagHandler reports which capabilities are configured. Operator-facing;
// never includes credential material.
func diagHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(uc.Diag(ctx)); err != nil {
			errutil.Handle(ctx, err, "failed to write diag response")
		}
	}
}

// diagCalendarHandler runs the read-only calendar access check.
func diagCalendarHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		report, err := uc.DiagCalendar(ctx)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, usecase.ErrCalendarNotConfigured) {
				status = http.StatusServiceUnavailable
			}
			errutil.HandleHTTP(ctx, w, err, status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			errutil.Handle(ctx, err, "failed to write calendar diag response")
		}
	}
}
