package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stat9k/Cluedo-Text/game/engine"
	"github.com/stat9k/Cluedo-Text/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// MaxSessionIDLength bounds caller-chosen session IDs
const MaxSessionIDLength = 64

// Manager keeps the live game sessions, keyed by lowercased ID, and writes
// them through to an optional store.
type Manager struct {
	mu         sync.RWMutex
	sessions   map[string]*service.Session
	store      SessionPersistence
	engineOpts []engine.Option
}

// NewManager creates an in-memory session manager. The engine options apply
// to every board it creates.
func NewManager(opts ...engine.Option) *Manager {
	return NewManagerWithPersistence(nil, opts...)
}

// NewManagerWithPersistence creates a session manager backed by store
func NewManagerWithPersistence(store SessionPersistence, opts ...engine.Option) *Manager {
	return &Manager{
		sessions:   make(map[string]*service.Session),
		store:      store,
		engineOpts: opts,
	}
}

func key(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// ValidateSessionID accepts letters, digits, '-' and '_'. IDs end up in file
// names and Bolt keys.
func ValidateSessionID(id string) error {
	if id == "" || len(id) > MaxSessionIDLength {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
		}
	}
	return nil
}

// Create builds a fresh board for config under id. An empty id gets a
// random four character one.
func (m *Manager) Create(id string, config *engine.BoardConfig) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateSessionID()
	} else if err := ValidateSessionID(id); err != nil {
		return nil, err
	}
	if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	board, err := engine.NewEngine(config, m.engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		Engine:         board,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key(id)] = session
	m.persist(session, "create")

	log.Debug().Str("session", id).Str("board", config.Name).Msg("session created")
	return session, nil
}

// persist writes session through to the store. Failures are logged, the
// in-memory game stays authoritative. Callers hold the lock.
func (m *Manager) persist(session *service.Session, reason string) {
	if m.store == nil {
		return
	}
	if err := m.store.Save(session); err != nil {
		log.Warn().Err(err).Str("session", session.ID).Str("after", reason).Msg("failed to persist session")
	}
}

// Get returns the session, loading it from the store when it is not in memory
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[key(id)]
	m.mu.RUnlock()
	if ok {
		return session, nil
	}

	if m.store == nil || !m.store.Exists(id) {
		return nil, ErrSessionNotFound
	}
	loaded, err := m.store.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[key(id)]; ok {
		return session, nil
	}
	m.sessions[key(id)] = loaded
	log.Debug().Str("session", loaded.ID).Msg("session loaded from store")
	return loaded, nil
}

// GetOrCreate returns the session with id, creating it on config when missing
func (m *Manager) GetOrCreate(id string, config *engine.BoardConfig) (*service.Session, error) {
	session, err := m.Get(id)
	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, config)
	}
	return session, err
}

// List returns every session held in memory, in no particular order
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		out = append(out, session)
	}
	return out
}

// Delete drops the session from memory and from the store
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, inMemory := m.sessions[key(id)]
	delete(m.sessions, key(id))

	if m.store != nil && m.store.Exists(id) {
		if err := m.store.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}
	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory forgets the session but leaves any stored copy alone
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[key(id)]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, key(id))
	return nil
}

// UpdateLastAccessed marks the session as used now
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[key(id)]
	if !ok {
		return ErrSessionNotFound
	}
	session.LastAccessedAt = time.Now()
	m.persist(session, "access")
	return nil
}

// Save writes one session to the store
func (m *Manager) Save(id string) error {
	if m.store == nil {
		return nil
	}

	m.mu.RLock()
	session, ok := m.sessions[key(id)]
	m.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}
	return m.store.Save(session)
}

// CleanupExpiredSessions drops sessions idle for longer than maxAge from
// memory. Stored copies stay and can be loaded again by ID.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for k, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, k)
			removed++
		}
	}

	if removed > 0 {
		log.Info().Int("removed", removed).Dur("max_age", maxAge).Msg("expired sessions removed from memory")
	}
	return removed
}

// Count returns the number of sessions in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID picks a random 4 hex digit ID unused in memory and in
// the store. Callers hold the lock.
func (m *Manager) generateSessionID() string {
	buf := make([]byte, 2)
	for {
		rand.Read(buf)
		id := hex.EncodeToString(buf)
		if m.sessionExists(id) || (m.store != nil && m.store.Exists(id)) {
			continue
		}
		return id
	}
}

func (m *Manager) sessionExists(id string) bool {
	_, ok := m.sessions[key(id)]
	return ok
}

// LoadPersistedSessions pulls every stored session not already in memory
func (m *Manager) LoadPersistedSessions() error {
	if m.store == nil {
		return nil
	}

	ids, err := m.store.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for _, id := range ids {
		if m.sessionExists(id) {
			continue
		}
		session, err := m.store.Load(id)
		if err != nil {
			log.Warn().Err(err).Str("session", id).Msg("failed to load persisted session")
			continue
		}
		m.sessions[key(id)] = session
		loaded++
	}

	if loaded > 0 {
		log.Info().Int("count", loaded).Msg("loaded persisted sessions from storage")
	}
	return nil
}

// SaveAllSessions writes every in-memory session to the store
func (m *Manager) SaveAllSessions() error {
	if m.store == nil {
		return nil
	}

	sessions := m.List()
	failed := 0
	for _, session := range sessions {
		if err := m.store.Save(session); err != nil {
			log.Warn().Err(err).Str("session", session.ID).Msg("failed to save session")
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to save %d of %d sessions", failed, len(sessions))
	}
	return nil
}
