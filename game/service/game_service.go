package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/escape-room-game/game/engine"
	"github.com/wricardo/escape-room-game/game/export"
)

// Errors shared by the session and config implementations so transports
// can match them without importing either package
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Interact(ctx context.Context, sessionID, hotspotID string) (*ActionResult, error)
	AttemptPuzzle(ctx context.Context, sessionID, puzzleID string, attempt engine.Attempt) (*ActionResult, error)
	RevealHint(ctx context.Context, sessionID, puzzleID string) (*ActionResult, error)
	CombineItems(ctx context.Context, sessionID, itemA, itemB string) (*ActionResult, error)
	SelectItem(ctx context.Context, sessionID, itemID string) (*ActionResult, error)
	ContinueRoom(ctx context.Context, sessionID string) (*ActionResult, error)
	UpdateElapsed(ctx context.Context, sessionID string, seconds int) (*engine.StateView, error)
	DismissOverlays(ctx context.Context, sessionID string) (*engine.StateView, error)
	ToggleJournal(ctx context.Context, sessionID string) (*engine.StateView, error)
	Reset(ctx context.Context, sessionID string, opts ResetOptions) (*ActionResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.StateView, error)
	GetPuzzle(ctx context.Context, sessionID, puzzleID string) (*engine.PuzzleView, error)
	GetHints(ctx context.Context, sessionID, puzzleID string) (*engine.HintStatus, error)
	GetJournal(ctx context.Context, sessionID string) (*JournalResponse, error)
	ExportJournal(ctx context.Context, sessionID string, format export.Format) (*export.Document, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.Catalog, error)
	SaveConfig(ctx context.Context, configName string, catalog *engine.Catalog) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, campaignID string, catalog *engine.Catalog) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles campaign loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.Catalog, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() (string, *engine.Catalog)
	SaveConfig(name string, catalog *engine.Catalog) error
}

// Session represents an active game session. Engine mutations and reads
// of LastAccessedAt made off the service's own lock hold the session lock.
type Session struct {
	ID             string
	CampaignID     string
	Engine         *engine.GameEngine
	Catalog        *engine.Catalog
	CreatedAt      time.Time
	LastAccessedAt time.Time

	mu sync.Mutex
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Touch records an access at t
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	s.LastAccessedAt = t
	s.mu.Unlock()
}

// LastAccessed returns the time of the latest access
func (s *Session) LastAccessed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LastAccessedAt
}
