package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-splitbill/internal/bill"
	"github.com/noah-isme/backend-splitbill/internal/events"
)

// Handler processes queued bill saves and records the outcome on the
// originating session.
type Handler struct {
	Sessions bill.SessionStore
	Saver    bill.Saver
	Locker   bill.SessionLocker
	Bus      *events.Bus
	Logger   zerolog.Logger
}

// Register attaches the handler's task types to the mux.
func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeBillSave, h.HandleSave)
}

// HandleSave persists the bill and writes the resulting save state onto the
// session. The session may have expired by the time the worker runs; the
// save still counts, only the state update is skipped.
func (h *Handler) HandleSave(ctx context.Context, t *asynq.Task) error {
	var payload SavePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal save payload: %w", err)
	}

	billID, saveErr := h.Saver.Save(ctx, payload.Record)
	state := bill.SaveState{}
	if saveErr != nil {
		h.Logger.Error().Err(saveErr).Str("session_id", payload.SessionID).Msg("save bill")
		h.emit(ctx, events.Event{Topic: events.TopicBillSaveFailed, SessionID: payload.SessionID, Detail: saveErr.Error()})
		state = bill.SaveState{Status: bill.SaveStatusFailed, Error: "failed to save bill"}
	} else {
		now := time.Now().UTC()
		h.emit(ctx, events.Event{Topic: events.TopicBillSaved, SessionID: payload.SessionID, BillID: billID.String()})
		state = bill.SaveState{Status: bill.SaveStatusSaved, BillID: billID.String(), SavedAt: &now}
	}

	if err := h.recordOutcome(ctx, payload.SessionID, state); err != nil {
		h.Logger.Warn().Err(err).Str("session_id", payload.SessionID).Msg("record save outcome")
	}
	return saveErr
}

func (h *Handler) recordOutcome(ctx context.Context, sessionID string, state bill.SaveState) error {
	update := func(ctx context.Context) error {
		sess, err := h.Sessions.Get(ctx, sessionID)
		if err != nil {
			if errors.Is(err, bill.ErrSessionNotFound) {
				return nil
			}
			return err
		}
		sess.Save = state
		sess.UpdatedAt = time.Now().UTC()
		return h.Sessions.Put(ctx, sess)
	}
	if h.Locker == nil {
		return update(ctx)
	}
	return h.Locker.WithSession(ctx, sessionID, update)
}

func (h *Handler) emit(ctx context.Context, event events.Event) {
	if h.Bus == nil {
		return
	}
	if err := h.Bus.Emit(ctx, event); err != nil {
		h.Logger.Error().Err(err).Str("topic", event.Topic).Msg("emit event")
	}
}
