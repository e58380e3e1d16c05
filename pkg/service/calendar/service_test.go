package calendar_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/hvacjoy/joyline/pkg/service/calendar"
)

func TestNewValidation(t *testing.T) {
	ctx := context.Background()

	_, err := calendar.New(ctx, nil, "dispatch@group.calendar.google.com")
	gt.Error(t, err)

	_, err = calendar.New(ctx, []byte(`{"type":"service_account"}`), "")
	gt.Error(t, err)

	// Not a service account key at all.
	_, err = calendar.New(ctx, []byte(`not json`), "dispatch@group.calendar.google.com")
	gt.Error(t, err)
}
