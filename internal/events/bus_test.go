package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-splitbill/internal/events"
)

func TestEmitFansOutToAllNotifiers(t *testing.T) {
	var seen []string
	record := func(tag string) events.Notifier {
		return events.NotifierFunc(func(_ context.Context, event events.Event) error {
			seen = append(seen, tag+":"+event.Topic)
			return nil
		})
	}
	bus := &events.Bus{Notifiers: []events.Notifier{record("a"), record("b")}}

	require.NoError(t, bus.Emit(context.Background(), events.Event{Topic: events.TopicBillAllocated}))
	require.Equal(t, []string{"a:" + events.TopicBillAllocated, "b:" + events.TopicBillAllocated}, seen)
}

func TestEmitJoinsNotifierErrors(t *testing.T) {
	boom := errors.New("boom")
	var called bool
	bus := &events.Bus{Notifiers: []events.Notifier{
		events.NotifierFunc(func(context.Context, events.Event) error { return boom }),
		events.NotifierFunc(func(context.Context, events.Event) error { called = true; return nil }),
	}}

	err := bus.Emit(context.Background(), events.Event{Topic: events.TopicBillSaved})
	require.ErrorIs(t, err, boom)
	require.True(t, called)
}

func TestEmitStampsOccurredAt(t *testing.T) {
	bus := &events.Bus{Notifiers: []events.Notifier{
		events.NotifierFunc(func(_ context.Context, event events.Event) error {
			require.False(t, event.OccurredAt.IsZero())
			return nil
		}),
	}}
	require.NoError(t, bus.Emit(context.Background(), events.Event{Topic: events.TopicExportRendered}))
}

func TestEmitRequiresTopic(t *testing.T) {
	bus := &events.Bus{}
	require.Error(t, bus.Emit(context.Background(), events.Event{}))
}

func TestNilBusIsSafe(t *testing.T) {
	var bus *events.Bus
	require.NoError(t, bus.Emit(context.Background(), events.Event{Topic: "x"}))
}
