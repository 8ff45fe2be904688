package bill

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when the referenced session does not exist or expired.
var ErrSessionNotFound = errors.New("bill: session not found")

// Save states reported on a session after an allocation.
const (
	SaveStatusPending = "pending"
	SaveStatusSaved   = "saved"
	SaveStatusFailed  = "failed"
)

// SaveState reports the outcome of the most recent persistence attempt. A
// failed save keeps the locally computed ledger intact; it is surfaced here,
// never retried.
type SaveState struct {
	Status  string     `json:"status,omitempty"`
	BillID  string     `json:"billId,omitempty"`
	Error   string     `json:"error,omitempty"`
	SavedAt *time.Time `json:"savedAt,omitempty"`
}

// Session owns one ledger being edited by a single user. The ledger is never
// shared across sessions; all mutations run to completion on the calling
// goroutine before the session is written back to its store.
type Session struct {
	ID        string    `json:"id"`
	Ledger    *Ledger   `json:"ledger"`
	Save      SaveState `json:"save"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewSession constructs an empty session with a fresh identifier.
func NewSession(policy Policy) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Ledger:    NewLedger(policy),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SessionStore abstracts where editing sessions live between requests.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// MemorySessionStore keeps sessions in process memory. It is the default
// backend when no Redis URL is configured and the one tests run against.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemorySessionStore constructs an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: map[string]*Session{}}
}

// Get returns the session with the given id.
func (m *MemorySessionStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *s
	ledger := *s.Ledger
	ledger.Items = append([]Item(nil), s.Ledger.Items...)
	copied.Ledger = &ledger
	return &copied, nil
}

// Put stores the session, replacing any previous value.
func (m *MemorySessionStore) Put(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *s
	ledger := *s.Ledger
	ledger.Items = append([]Item(nil), s.Ledger.Items...)
	copied.Ledger = &ledger
	m.sessions[s.ID] = &copied
	return nil
}

// Delete removes the session if present.
func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
