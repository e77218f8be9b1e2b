package server

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/shubhamdasnadas/assetwatch/internal/history"
	"github.com/shubhamdasnadas/assetwatch/internal/metrics"
)

// ErrSessionNotFound is returned when a chart session ID is unknown, either
// because it never existed or was already closed.
var ErrSessionNotFound = errors.New("history session not found")

// SessionManager owns the live chart sessions. Each session wraps one history
// loader keyed by a server-issued UUID; clients poll the snapshot endpoint
// while the loader backfills in the background.
type SessionManager struct {
	source history.Source
	log    *slog.Logger
	opts   history.Options

	mu       sync.Mutex
	sessions map[string]*history.Loader
}

// NewSessionManager creates an empty session registry.
func NewSessionManager(source history.Source, log *slog.Logger, opts history.Options) *SessionManager {
	return &SessionManager{
		source:   source,
		log:      log.With("component", "history_sessions"),
		opts:     opts,
		sessions: make(map[string]*history.Loader),
	}
}

// Open starts a new session for the given series and returns its ID.
func (m *SessionManager) Open(itemID string) string {
	id := uuid.NewString()
	loader := history.NewLoader(m.source, m.log, m.opts)
	loader.Open(itemID)

	m.mu.Lock()
	m.sessions[id] = loader
	m.mu.Unlock()

	metrics.IncHistorySession()
	m.log.Info("history session opened", "session_id", id, "item_id", itemID)
	return id
}

// Snapshot returns the current state of a session.
func (m *SessionManager) Snapshot(id string) (history.Snapshot, error) {
	m.mu.Lock()
	loader, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return history.Snapshot{}, ErrSessionNotFound
	}
	return loader.Snapshot(), nil
}

// Refresh restarts a session's backfill sequence from the beginning.
func (m *SessionManager) Refresh(id string) error {
	m.mu.Lock()
	loader, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	loader.Refresh()
	return nil
}

// Close cancels a session and removes it from the registry.
func (m *SessionManager) Close(id string) error {
	m.mu.Lock()
	loader, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	loader.Close()
	m.log.Info("history session closed", "session_id", id)
	return nil
}

// CloseAll cancels every live session. Called on server shutdown.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*history.Loader)
	m.mu.Unlock()

	for _, loader := range sessions {
		loader.Close()
	}
}
