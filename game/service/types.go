package service

import (
	"time"

	"github.com/wricardo/escape-room-game/game/engine"
)

// CreateSessionRequest selects the campaign and how to play it. Empty
// fields fall back to the default campaign, medium difficulty, campaign
// mode and the campaign's first room.
type CreateSessionRequest struct {
	CampaignID string `json:"campaign_id"`
	Difficulty string `json:"difficulty"`
	Mode       string `json:"mode"`
	RoomID     string `json:"room_id,omitempty"`
}

// ResetOptions restarts a game. Empty fields keep the current setting.
type ResetOptions struct {
	Difficulty string `json:"difficulty,omitempty"`
	Mode       string `json:"mode,omitempty"`
	RoomID     string `json:"room_id,omitempty"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	CampaignID     string            `json:"campaign_id"`
	CampaignName   string            `json:"campaign_name"`
	Difficulty     engine.Difficulty `json:"difficulty"`
	Mode           engine.GameMode   `json:"mode"`
	Status         engine.GameStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	State          *engine.StateView `json:"state"`
}

// ActionResult is returned by every mutating game operation. Only the
// detail field matching the operation is set.
type ActionResult struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	State   *engine.StateView `json:"state"`
	Events  []GameEvent       `json:"events"`

	Interaction *engine.InteractionResult `json:"interaction,omitempty"`
	Attempt     *engine.AttemptResult     `json:"attempt,omitempty"`
	Hint        *engine.HintStatus        `json:"hint,omitempty"`
	Combine     *engine.CombineResult     `json:"combine,omitempty"`
	Selection   *engine.SelectionResult   `json:"selection,omitempty"`
	Progression *engine.ProgressionResult `json:"progression,omitempty"`
}

// Event types
const (
	EventGameStarted      = "game_started"
	EventReset            = "reset"
	EventObjectDiscovered = "object_discovered"
	EventItemCollected    = "item_collected"
	EventItemUsed         = "item_used"
	EventClueAdded        = "clue_added"
	EventPuzzleOpened     = "puzzle_opened"
	EventPuzzleSolved     = "puzzle_solved"
	EventPuzzleFailed     = "puzzle_failed"
	EventPuzzleLocked     = "puzzle_locked"
	EventHintRevealed     = "hint_revealed"
	EventItemsCombined    = "items_combined"
	EventRoomComplete     = "room_complete"
	EventRoomEntered      = "room_entered"
	EventGameCompleted    = "game_completed"
)

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	RoomID    string    `json:"room_id,omitempty"`
	PuzzleID  string    `json:"puzzle_id,omitempty"`
	ItemID    string    `json:"item_id,omitempty"`
}

// JournalResponse lists the clues a player has found
type JournalResponse struct {
	SessionID string                `json:"session_id"`
	Entries   []engine.JournalEntry `json:"entries"`
	Count     int                   `json:"count"`
}

// ConfigInfo provides information about a campaign file
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Format      string `json:"format"`
	RoomCount   int    `json:"room_count"`
	PuzzleCount int    `json:"puzzle_count"`
	ItemCount   int    `json:"item_count"`
}
