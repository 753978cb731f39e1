package session

import (
	"time"

	"github.com/wricardo/escape-room-game/game/engine"
	"github.com/wricardo/escape-room-game/game/snapshot"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(data *PersistedSessionData) error

	// Load retrieves a session from storage by ID
	Load(id string) (*PersistedSessionData, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// CatalogLoader resolves the campaign a persisted session was playing
type CatalogLoader interface {
	LoadConfig(name string) (*engine.Catalog, error)
}

// PersistedSessionData is the stored form of a session: its metadata plus
// the three versioned state blobs.
type PersistedSessionData struct {
	ID             string         `json:"id"`
	CampaignID     string         `json:"campaign_id"`
	CreatedAt      time.Time      `json:"created_at"`
	LastAccessedAt time.Time      `json:"last_accessed_at"`
	Blobs          snapshot.Blobs `json:"blobs"`
}
