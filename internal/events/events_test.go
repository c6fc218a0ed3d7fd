package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"orgroles/internal/events"
)

func TestEmitRunsHandlersInOrder(t *testing.T) {
	d := events.New(nil)
	var got []string

	d.On(events.ImportCompleted, func(ctx context.Context, ev events.Event) error {
		got = append(got, "first")
		return errors.New("boom")
	})
	d.On(events.ImportCompleted, func(ctx context.Context, ev events.Event) error {
		got = append(got, "second")
		assert.False(t, ev.At.IsZero())
		return nil
	})
	d.On(events.OnboardingCompleted, func(ctx context.Context, ev events.Event) error {
		got = append(got, "other")
		return nil
	})

	d.Emit(context.Background(), events.Event{Name: events.ImportCompleted})
	assert.Equal(t, []string{"first", "second"}, got)

	d.Close()
	d.Emit(context.Background(), events.Event{Name: events.ImportCompleted})
	assert.Len(t, got, 2)
}
