package bill_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-splitbill/internal/bill"
	"github.com/noah-isme/backend-splitbill/internal/events"
)

type stubSaver struct {
	id    uuid.UUID
	err   error
	calls int
}

func (s *stubSaver) Save(context.Context, bill.Record) (uuid.UUID, error) {
	s.calls++
	return s.id, s.err
}

type stubQueue struct {
	err   error
	calls int
}

func (q *stubQueue) EnqueueSave(context.Context, string, bill.Record) error {
	q.calls++
	return q.err
}

func newService(t *testing.T, cfg bill.ServiceConfig) *bill.Service {
	t.Helper()
	if cfg.Sessions == nil {
		cfg.Sessions = bill.NewMemorySessionStore()
	}
	cfg.Logger = zerolog.Nop()
	svc, err := bill.NewService(cfg)
	require.NoError(t, err)
	return svc
}

func readySession(t *testing.T, svc *bill.Service) string {
	t.Helper()
	ctx := context.Background()
	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	sess, err = svc.AddItem(ctx, sess.ID)
	require.NoError(t, err)
	itemID := sess.Ledger.Items[0].ID
	_, err = svc.UpdateItem(ctx, sess.ID, itemID, bill.FieldName, "Ayam Bakar")
	require.NoError(t, err)
	_, err = svc.UpdateItem(ctx, sess.ID, itemID, bill.FieldPrice, "150000")
	require.NoError(t, err)
	_, err = svc.SetFinalPrice(ctx, sess.ID, "120000")
	require.NoError(t, err)
	return sess.ID
}

func TestAllocateSavesInline(t *testing.T) {
	saver := &stubSaver{id: uuid.New()}
	svc := newService(t, bill.ServiceConfig{Saver: saver})
	id := readySession(t, svc)

	sess, err := svc.Allocate(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, bill.SaveStatusSaved, sess.Save.Status)
	require.Equal(t, saver.id.String(), sess.Save.BillID)
	require.Equal(t, 1, saver.calls)
}

func TestAllocatePrefersQueue(t *testing.T) {
	saver := &stubSaver{id: uuid.New()}
	queue := &stubQueue{}
	svc := newService(t, bill.ServiceConfig{Saver: saver, Queue: queue})
	id := readySession(t, svc)

	sess, err := svc.Allocate(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, bill.SaveStatusPending, sess.Save.Status)
	require.Equal(t, 1, queue.calls)
	require.Zero(t, saver.calls)
}

func TestAllocateFallsBackWhenEnqueueFails(t *testing.T) {
	saver := &stubSaver{id: uuid.New()}
	queue := &stubQueue{err: errors.New("redis down")}
	svc := newService(t, bill.ServiceConfig{Saver: saver, Queue: queue})
	id := readySession(t, svc)

	sess, err := svc.Allocate(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, bill.SaveStatusSaved, sess.Save.Status)
	require.Equal(t, 1, saver.calls)
}

func TestAllocateKeepsLedgerOnSaveFailure(t *testing.T) {
	saver := &stubSaver{err: errors.New("db down")}
	svc := newService(t, bill.ServiceConfig{Saver: saver})
	id := readySession(t, svc)

	sess, err := svc.Allocate(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, bill.SaveStatusFailed, sess.Save.Status)
	require.NotEmpty(t, sess.Save.Error)
	require.InDelta(t, 120000, sess.Ledger.Items[0].DiscountedPrice, 1e-9)

	got, err := svc.GetSession(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, bill.SaveStatusFailed, got.Save.Status)
}

func TestAllocateValidationLeavesSessionUntouched(t *testing.T) {
	svc := newService(t, bill.ServiceConfig{Saver: &stubSaver{id: uuid.New()}})
	ctx := context.Background()
	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	_, err = svc.Allocate(ctx, sess.ID)
	require.ErrorIs(t, err, bill.ErrNoItems)

	got, err := svc.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.Empty(t, got.Save.Status)
}

func TestAllocateEmitsEvents(t *testing.T) {
	var emitted []events.Event
	bus := &events.Bus{Notifiers: []events.Notifier{
		events.NotifierFunc(func(_ context.Context, event events.Event) error {
			emitted = append(emitted, event)
			return nil
		}),
	}}
	svc := newService(t, bill.ServiceConfig{Saver: &stubSaver{id: uuid.New()}, Bus: bus})
	id := readySession(t, svc)

	_, err := svc.Allocate(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, emitted, 2)
	require.Equal(t, events.TopicBillAllocated, emitted[0].Topic)
	require.Equal(t, 1, emitted[0].Items)
	require.Equal(t, events.TopicBillSaved, emitted[1].Topic)
}

func TestServiceRequiresSessionStore(t *testing.T) {
	_, err := bill.NewService(bill.ServiceConfig{})
	require.Error(t, err)
}
