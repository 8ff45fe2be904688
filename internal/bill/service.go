package bill

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-splitbill/internal/events"
)

// SaveQueue enqueues a bill save to run off the request path. Persistence
// must never block further local edits; when a queue is configured the
// allocation response carries a pending save state and the worker records the
// outcome on the session afterwards.
type SaveQueue interface {
	EnqueueSave(ctx context.Context, sessionID string, rec Record) error
}

// SessionLocker serialises the read-modify-write cycle on one session so
// concurrent requests cannot drop each other's edits. Optional; without it
// edits are only safe when a single API instance serves the session.
type SessionLocker interface {
	WithSession(ctx context.Context, sessionID string, fn func(context.Context) error) error
}

// Service orchestrates ledger sessions, allocation, and persistence.
type Service struct {
	sessions SessionStore
	saver    Saver
	queue    SaveQueue
	locker   SessionLocker
	bus      *events.Bus
	policy   Policy
	logger   zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Sessions SessionStore
	Saver    Saver
	Queue    SaveQueue
	Locker   SessionLocker
	Bus      *events.Bus
	Policy   Policy
	Logger   zerolog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("bill: session store is required")
	}
	policy := cfg.Policy
	if policy.Denomination <= 0 {
		policy = DefaultPolicy()
	}
	return &Service{
		sessions: cfg.Sessions,
		saver:    cfg.Saver,
		queue:    cfg.Queue,
		locker:   cfg.Locker,
		bus:      cfg.Bus,
		policy:   policy,
		logger:   cfg.Logger,
	}, nil
}

// Policy returns the rounding policy in force.
func (s *Service) Policy() Policy {
	return s.policy
}

// CreateSession starts a new empty ledger session.
func (s *Service) CreateSession(ctx context.Context) (*Session, error) {
	sess := NewSession(s.policy)
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// GetSession returns the session with the given id.
func (s *Service) GetSession(ctx context.Context, id string) (*Session, error) {
	return s.sessions.Get(ctx, id)
}

// AddItem appends an empty row to the session ledger.
func (s *Service) AddItem(ctx context.Context, sessionID string) (*Session, error) {
	return s.mutate(ctx, sessionID, func(sess *Session) error {
		sess.Ledger.AddItem()
		return nil
	})
}

// UpdateItem sets one user-editable field on a ledger row.
func (s *Service) UpdateItem(ctx context.Context, sessionID, itemID, field, value string) (*Session, error) {
	return s.mutate(ctx, sessionID, func(sess *Session) error {
		return sess.Ledger.UpdateItem(itemID, field, value)
	})
}

// RemoveItem deletes a ledger row. Removing the sole remaining row is a
// silent no-op, mirrored in the returned session state.
func (s *Service) RemoveItem(ctx context.Context, sessionID, itemID string) (*Session, error) {
	return s.mutate(ctx, sessionID, func(sess *Session) error {
		sess.Ledger.RemoveItem(itemID)
		return nil
	})
}

// SetFinalPrice records the amount actually paid.
func (s *Service) SetFinalPrice(ctx context.Context, sessionID, value string) (*Session, error) {
	return s.mutate(ctx, sessionID, func(sess *Session) error {
		sess.Ledger.SetFinalPrice(value)
		return nil
	})
}

// Allocate validates the ledger, redistributes the discount proportionally
// and persists the computed bill. Validation failures leave the session
// untouched. A persistence failure is recorded on the session and surfaced,
// never retried; the computed ledger is kept either way.
func (s *Service) Allocate(ctx context.Context, sessionID string) (*Session, error) {
	var out *Session
	err := s.locked(ctx, sessionID, func(ctx context.Context) error {
		sess, err := s.sessions.Get(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := sess.Ledger.Allocate(); err != nil {
			return err
		}
		s.emit(ctx, events.Event{Topic: events.TopicBillAllocated, SessionID: sess.ID, Items: len(sess.Ledger.Items)})

		rec := RecordFromLedger(sess.Ledger)
		sess.Save = s.persist(ctx, sess.ID, rec)
		sess.UpdatedAt = time.Now().UTC()
		if err := s.sessions.Put(ctx, sess); err != nil {
			return err
		}
		out = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) persist(ctx context.Context, sessionID string, rec Record) SaveState {
	if s.queue != nil {
		err := s.queue.EnqueueSave(ctx, sessionID, rec)
		if err == nil {
			return SaveState{Status: SaveStatusPending}
		}
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("enqueue bill save, falling back to inline save")
	}
	if s.saver == nil {
		return SaveState{}
	}
	billID, err := s.saver.Save(ctx, rec)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("save bill")
		s.emit(ctx, events.Event{Topic: events.TopicBillSaveFailed, SessionID: sessionID, Detail: err.Error()})
		return SaveState{Status: SaveStatusFailed, Error: "failed to save bill"}
	}
	now := time.Now().UTC()
	s.emit(ctx, events.Event{Topic: events.TopicBillSaved, SessionID: sessionID, BillID: billID.String()})
	return SaveState{Status: SaveStatusSaved, BillID: billID.String(), SavedAt: &now}
}

func (s *Service) mutate(ctx context.Context, sessionID string, fn func(*Session) error) (*Session, error) {
	var out *Session
	err := s.locked(ctx, sessionID, func(ctx context.Context) error {
		sess, err := s.sessions.Get(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := fn(sess); err != nil {
			return err
		}
		sess.UpdatedAt = time.Now().UTC()
		if err := s.sessions.Put(ctx, sess); err != nil {
			return err
		}
		out = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) locked(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	if s.locker == nil {
		return fn(ctx)
	}
	return s.locker.WithSession(ctx, sessionID, fn)
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Emit(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("topic", event.Topic).Msg("emit event")
	}
}
