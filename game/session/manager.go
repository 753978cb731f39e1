package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/escape-room-game/game/engine"
	"github.com/wricardo/escape-room-game/game/service"
	"github.com/wricardo/escape-room-game/game/snapshot"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// Manager handles game session lifecycle
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	catalogs    CatalogLoader
	engineOpts  []engine.Option
	logger      *zap.Logger
	mu          sync.RWMutex
}

// NewManager creates an in-memory session manager. engineOpts are applied
// to every engine the manager builds.
func NewManager(logger *zap.Logger, engineOpts ...engine.Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions:   make(map[string]*service.Session),
		engineOpts: engineOpts,
		logger:     logger.Named("session"),
	}
}

// NewManagerWithPersistence creates a session manager that saves sessions
// to persistence and restores them with campaigns from catalogs
func NewManagerWithPersistence(persistence SessionPersistence, catalogs CatalogLoader, logger *zap.Logger, engineOpts ...engine.Option) *Manager {
	m := NewManager(logger, engineOpts...)
	m.persistence = persistence
	m.catalogs = catalogs
	return m
}

// Create creates a session playing catalog. An empty id gets a random one.
// The engine is created but no game is started.
func (m *Manager) Create(id, campaignID string, catalog *engine.Catalog) (*service.Session, error) {
	if id != "" && !validID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}

	eng, err := engine.NewEngine(catalog, m.engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	m.mu.Lock()
	if id == "" {
		id = m.generateSessionID()
	} else if m.sessionExists(id) || (m.persistence != nil && m.persistence.Exists(id)) {
		m.mu.Unlock()
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		CampaignID:     campaignID,
		Engine:         eng,
		Catalog:        catalog,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[strings.ToLower(id)] = session
	m.mu.Unlock()

	m.persist(session)
	m.logger.Info("session created", zap.String("session_id", id), zap.String("campaign_id", campaignID))
	return session, nil
}

// Get retrieves a session by ID (case-insensitive), loading it from
// persistence when it is not in memory
func (m *Manager) Get(id string) (*service.Session, error) {
	key := strings.ToLower(id)

	m.mu.RLock()
	session, exists := m.sessions[key]
	m.mu.RUnlock()
	if exists {
		return session, nil
	}

	if m.persistence == nil || !m.persistence.Exists(id) {
		return nil, ErrSessionNotFound
	}

	session, err := m.load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// another caller may have loaded it meanwhile
	if existing, ok := m.sessions[key]; ok {
		return existing, nil
	}
	m.sessions[key] = session
	return session, nil
}

// List returns all sessions in memory
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

// Delete removes a session from memory and persistence
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	_, inMemory := m.sessions[key]
	delete(m.sessions, key)

	if m.persistence != nil && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory removes a session from memory only
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, exists := m.sessions[key]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, key)
	return nil
}

// PruneOrphans drops in-memory sessions whose persisted copy was deleted
// out from under the server, e.g. by removing a session file by hand.
func (m *Manager) PruneOrphans() int {
	if m.persistence == nil {
		return 0
	}

	pruned := 0
	for _, session := range m.List() {
		if m.persistence.Exists(session.ID) {
			continue
		}
		if err := m.DeleteFromMemory(session.ID); err == nil {
			pruned++
			m.logger.Debug("pruned session with no stored copy", zap.String("session_id", session.ID))
		}
	}
	if pruned > 0 {
		m.logger.Info("pruned orphaned sessions", zap.Int("count", pruned))
	}
	return pruned
}

// UpdateLastAccessed touches a session and saves it
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()
	if !exists {
		return ErrSessionNotFound
	}
	session.Touch(time.Now())

	m.persist(session)
	return nil
}

// Save writes a session to persistence
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()
	if !exists {
		return ErrSessionNotFound
	}

	return m.store(session)
}

// CleanupExpiredSessions evicts sessions idle for longer than maxAge from
// memory. Persisted sessions are saved first and can be loaded again.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	var expired []*service.Session
	for key, session := range m.sessions {
		if session.LastAccessed().Before(cutoff) {
			expired = append(expired, session)
			delete(m.sessions, key)
		}
	}
	m.mu.Unlock()

	for _, session := range expired {
		m.persist(session)
	}
	if len(expired) > 0 {
		m.logger.Info("evicted idle sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Count returns the number of sessions in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// LoadPersistedSessions loads all persisted sessions into memory. Sessions
// that fail to load are logged and skipped.
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	sessionIDs, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	loadedCount := 0
	for _, id := range sessionIDs {
		key := strings.ToLower(id)
		m.mu.RLock()
		_, exists := m.sessions[key]
		m.mu.RUnlock()
		if exists {
			continue
		}

		session, err := m.load(id)
		if err != nil {
			m.logger.Warn("failed to load persisted session", zap.String("session_id", id), zap.Error(err))
			continue
		}

		m.mu.Lock()
		if _, exists := m.sessions[key]; !exists {
			m.sessions[key] = session
			loadedCount++
		}
		m.mu.Unlock()
	}

	if loadedCount > 0 {
		m.logger.Info("loaded persisted sessions", zap.Int("count", loadedCount))
	}
	return nil
}

// SaveAllSessions saves all in-memory sessions to persistence
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	sessions := m.List()
	errorCount := 0
	for _, session := range sessions {
		if err := m.store(session); err != nil {
			m.logger.Warn("failed to save session", zap.String("session_id", session.ID), zap.Error(err))
			errorCount++
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("failed to save %d sessions", errorCount)
	}
	return nil
}

// persist saves a session, logging failures instead of returning them
func (m *Manager) persist(session *service.Session) {
	if m.persistence == nil {
		return
	}
	if err := m.store(session); err != nil {
		m.logger.Warn("failed to persist session", zap.String("session_id", session.ID), zap.Error(err))
	}
}

// load rebuilds a session from storage
func (m *Manager) load(id string) (*service.Session, error) {
	if m.catalogs == nil {
		return nil, fmt.Errorf("no campaign loader configured")
	}
	data, err := m.persistence.Load(id)
	if err != nil {
		return nil, err
	}

	catalog, err := m.catalogs.LoadConfig(data.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign '%s': %w", data.CampaignID, err)
	}
	eng, err := engine.NewEngine(catalog, m.engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}
	state, err := snapshot.Decode(data.Blobs)
	if err != nil {
		return nil, err
	}
	if err := eng.SetState(state); err != nil {
		return nil, fmt.Errorf("failed to set game state: %w", err)
	}

	return &service.Session{
		ID:             data.ID,
		CampaignID:     data.CampaignID,
		Engine:         eng,
		Catalog:        catalog,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

// store snapshots and saves a session under its lock, so a concurrent move
// cannot tear the state and saves land in the order they were taken
func (m *Manager) store(session *service.Session) error {
	session.Lock()
	defer session.Unlock()

	data, err := toPersisted(session)
	if err != nil {
		return err
	}
	return m.persistence.Save(data)
}

// toPersisted converts a session into its stored form. Callers hold the
// session lock.
func toPersisted(session *service.Session) (*PersistedSessionData, error) {
	blobs, err := snapshot.Encode(session.Engine.GetState())
	if err != nil {
		return nil, fmt.Errorf("snapshot session %s: %w", session.ID, err)
	}
	return &PersistedSessionData{
		ID:             session.ID,
		CampaignID:     session.CampaignID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		Blobs:          blobs,
	}, nil
}

// generateSessionID returns an unused random 4-character hex ID. Callers
// hold m.mu.
func (m *Manager) generateSessionID() string {
	bytes := make([]byte, 2)
	for {
		rand.Read(bytes)
		id := hex.EncodeToString(bytes)
		if !m.sessionExists(id) && (m.persistence == nil || !m.persistence.Exists(id)) {
			return id
		}
	}
}

// sessionExists checks if a session is in memory (case-insensitive)
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}

// validID rejects IDs that are empty, too long, or unsafe as file names
func validID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
