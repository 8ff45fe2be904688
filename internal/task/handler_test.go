package task_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-splitbill/internal/bill"
	"github.com/noah-isme/backend-splitbill/internal/task"
)

type fakeSaver struct {
	id  uuid.UUID
	err error
}

func (f fakeSaver) Save(context.Context, bill.Record) (uuid.UUID, error) {
	return f.id, f.err
}

func newSavedSession(t *testing.T, store bill.SessionStore) *bill.Session {
	t.Helper()
	sess := bill.NewSession(bill.DefaultPolicy())
	require.NoError(t, store.Put(context.Background(), sess))
	return sess
}

func saveTask(t *testing.T, sessionID string) *asynq.Task {
	t.Helper()
	tk, err := task.NewSaveTask(sessionID, bill.Record{TotalPrice: 150000, FinalPrice: 120000})
	require.NoError(t, err)
	return tk
}

func TestHandleSaveRecordsBillID(t *testing.T) {
	store := bill.NewMemorySessionStore()
	sess := newSavedSession(t, store)
	billID := uuid.New()

	h := &task.Handler{Sessions: store, Saver: fakeSaver{id: billID}, Logger: zerolog.Nop()}
	require.NoError(t, h.HandleSave(context.Background(), saveTask(t, sess.ID)))

	got, err := store.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	require.Equal(t, bill.SaveStatusSaved, got.Save.Status)
	require.Equal(t, billID.String(), got.Save.BillID)
	require.NotNil(t, got.Save.SavedAt)
}

func TestHandleSaveRecordsFailure(t *testing.T) {
	store := bill.NewMemorySessionStore()
	sess := newSavedSession(t, store)

	h := &task.Handler{Sessions: store, Saver: fakeSaver{err: errors.New("db down")}, Logger: zerolog.Nop()}
	require.Error(t, h.HandleSave(context.Background(), saveTask(t, sess.ID)))

	got, err := store.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	require.Equal(t, bill.SaveStatusFailed, got.Save.Status)
	require.NotEmpty(t, got.Save.Error)
}

func TestHandleSaveExpiredSession(t *testing.T) {
	store := bill.NewMemorySessionStore()
	h := &task.Handler{Sessions: store, Saver: fakeSaver{id: uuid.New()}, Logger: zerolog.Nop()}
	require.NoError(t, h.HandleSave(context.Background(), saveTask(t, "gone")))
}
