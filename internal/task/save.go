package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/noah-isme/backend-splitbill/internal/bill"
)

// TypeBillSave identifies the background bill persistence task.
const TypeBillSave = "bill:save"

// SavePayload carries everything the worker needs to persist a bill and
// report the outcome back onto the originating session.
type SavePayload struct {
	SessionID string      `json:"sessionId"`
	Record    bill.Record `json:"record"`
}

// NewSaveTask builds the asynq task for a bill save. Retries are disabled:
// a failed save is recorded on the session and surfaced, never replayed.
func NewSaveTask(sessionID string, rec bill.Record) (*asynq.Task, error) {
	payload, err := json.Marshal(SavePayload{SessionID: sessionID, Record: rec})
	if err != nil {
		return nil, fmt.Errorf("marshal save payload: %w", err)
	}
	return asynq.NewTask(TypeBillSave, payload, asynq.MaxRetry(0)), nil
}

// Enqueuer submits bill saves to the task queue.
type Enqueuer struct {
	Client *asynq.Client
}

// EnqueueSave queues a bill save for background processing.
func (e Enqueuer) EnqueueSave(ctx context.Context, sessionID string, rec bill.Record) error {
	t, err := NewSaveTask(sessionID, rec)
	if err != nil {
		return err
	}
	if _, err := e.Client.EnqueueContext(ctx, t); err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeBillSave, err)
	}
	return nil
}
