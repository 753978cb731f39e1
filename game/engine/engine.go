package engine

import (
	"fmt"
	"time"
)

// How long a puzzle stays locked after its attempt limit
const (
	DefaultLockout     = 5 * time.Second
	DefaultHardLockout = 8 * time.Second
)

// RetainedAttempts is what the attempt counter keeps through a lockout, so
// a puzzle with limit n allows n-2 tries once it unlocks
const RetainedAttempts = 2

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	StartNewGame(difficulty Difficulty, mode GameMode, roomID string) error
	Reset() *GameState
	IsGameOver() bool
	UpdateElapsed(seconds int) error
	View() *StateView

	// Rooms
	CurrentRoom() (*Room, error)
	VisibleHotSpots() ([]HotSpot, error)
	IsRoomComplete() bool
	ContinueToNextRoom() (*ProgressionResult, error)

	// Interaction
	Interact(hotspotID string) (*InteractionResult, error)
	DismissOverlays()
	ToggleJournal() bool

	// Puzzles and hints
	PuzzleView(puzzleID string) (*PuzzleView, error)
	AttemptPuzzle(puzzleID string, attempt Attempt) (*AttemptResult, error)
	RevealHint(puzzleID string) (*HintStatus, error)
	HintStatus(puzzleID string) (*HintStatus, error)

	// Inventory
	CombineItems(itemA, itemB string) (*CombineResult, error)
	SelectItem(itemID string) (*SelectionResult, error)

	// Configuration
	GetCatalog() *Catalog
}

// Option configures a GameEngine
type Option func(*GameEngine)

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(e *GameEngine) {
		e.now = now
	}
}

// WithLockout sets how long a puzzle stays locked after too many wrong
// attempts, on every difficulty. Zero disables the lock; the attempt counter
// still drops to RetainedAttempts.
func WithLockout(d time.Duration) Option {
	return func(e *GameEngine) {
		e.lockout = map[Difficulty]time.Duration{Easy: d, Medium: d, Hard: d}
	}
}

// WithLockouts sets the lockout per difficulty. Missing difficulties keep
// their current duration.
func WithLockouts(lockouts map[Difficulty]time.Duration) Option {
	return func(e *GameEngine) {
		for d, v := range lockouts {
			e.lockout[d] = v
		}
	}
}

func defaultLockouts() map[Difficulty]time.Duration {
	return map[Difficulty]time.Duration{
		Easy:   DefaultLockout,
		Medium: DefaultLockout,
		Hard:   DefaultHardLockout,
	}
}

// Lockout reports how long a puzzle locks on difficulty d
func (e *GameEngine) Lockout(d Difficulty) time.Duration {
	return e.lockout[d]
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state   *GameState
	catalog *Catalog
	now     func() time.Time
	lockout map[Difficulty]time.Duration
}

// NewEngine creates a new game engine bound to a validated catalog
func NewEngine(catalog *Catalog, opts ...Option) (*GameEngine, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}
	if err := ValidateCatalog(catalog); err != nil {
		return nil, err
	}

	e := &GameEngine{
		state:   NewGameState(),
		catalog: catalog,
		now:     time.Now,
		lockout: defaultLockouts(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	state.Progress.ensureMaps()
	if state.Progress.Status != StatusNotStarted {
		if _, err := e.catalog.FindRoom(state.Progress.CurrentRoomID); err != nil {
			return fmt.Errorf("restore state: %w", err)
		}
	}
	e.state = state
	return nil
}

// GetCatalog returns the campaign the engine plays
func (e *GameEngine) GetCatalog() *Catalog {
	return e.catalog
}

// StartNewGame clears all state and starts in roomID, or in the campaign's
// first room when roomID is empty.
func (e *GameEngine) StartNewGame(difficulty Difficulty, mode GameMode, roomID string) error {
	if !difficulty.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDifficulty, difficulty)
	}
	if mode == "" {
		mode = ModeCampaign
	}
	if mode != ModeCampaign && mode != ModeFreeplay {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if roomID == "" {
		roomID = e.catalog.FirstRoomID()
	}
	room, err := e.catalog.FindRoom(roomID)
	if err != nil {
		return err
	}

	state := NewGameState()
	state.Progress.Start(difficulty, mode, room.ID, e.now())
	if intro := e.introFor(room.ID, mode == ModeCampaign); intro != "" {
		state.UI.ShowMessage(intro)
	}
	e.state = state
	return nil
}

// Reset clears progress, inventory, journal and UI state
func (e *GameEngine) Reset() *GameState {
	e.state.Progress.Reset()
	e.state.Inventory.Reset()
	e.state.Journal.Reset()
	e.state.UI.Reset()
	return e.state
}

// IsGameOver reports whether the game has been completed
func (e *GameEngine) IsGameOver() bool {
	return e.state.Progress.Status == StatusCompleted
}

// UpdateElapsed records the play time reported by the client timer
func (e *GameEngine) UpdateElapsed(seconds int) error {
	if seconds < 0 {
		return ErrInvalidElapsed
	}
	if err := e.requireInProgress(); err != nil {
		return err
	}
	e.state.Progress.UpdateElapsed(seconds)
	return nil
}

// CurrentRoom returns the room the player is in
func (e *GameEngine) CurrentRoom() (*Room, error) {
	if e.state.Progress.CurrentRoomID == "" {
		return nil, ErrGameNotInProgress
	}
	return e.catalog.FindRoom(e.state.Progress.CurrentRoomID)
}

// VisibleHotSpots returns the hotspots of the current room the player can see
func (e *GameEngine) VisibleHotSpots() ([]HotSpot, error) {
	room, err := e.CurrentRoom()
	if err != nil {
		return nil, err
	}
	return VisibleHotSpots(room, e.progressView()), nil
}

// IsRoomComplete reports whether the current room's required puzzles are solved
func (e *GameEngine) IsRoomComplete() bool {
	room, err := e.CurrentRoom()
	if err != nil {
		return false
	}
	return IsRoomComplete(room, e.state.Progress.SolvedPuzzleIDs)
}

// ProgressionResult describes what happened when leaving a room
type ProgressionResult struct {
	FromRoomID    string `json:"from_room_id"`
	ToRoomID      string `json:"to_room_id,omitempty"`
	GameCompleted bool   `json:"game_completed"`
	Narrative     string `json:"narrative,omitempty"`
}

// ContinueToNextRoom leaves a completed room. A campaign moves on to the next
// room; the last room, or any freeplay room, completes the game.
func (e *GameEngine) ContinueToNextRoom() (*ProgressionResult, error) {
	if err := e.requireInProgress(); err != nil {
		return nil, err
	}
	room, err := e.CurrentRoom()
	if err != nil {
		return nil, err
	}
	if !IsRoomComplete(room, e.state.Progress.SolvedPuzzleIDs) {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotComplete, room.ID)
	}

	res := &ProgressionResult{FromRoomID: room.ID}
	p := &e.state.Progress
	e.state.UI.Reset()

	if p.Mode == ModeCampaign && room.NextRoomID != "" {
		next, err := e.catalog.FindRoom(room.NextRoomID)
		if err != nil {
			return nil, err
		}
		p.UnlockRoom(next.ID)
		p.MoveToRoom(next.ID)
		res.ToRoomID = next.ID
		res.Narrative = e.introFor(next.ID, false)
		e.state.UI.ShowMessage(res.Narrative)
		return res, nil
	}

	p.Complete(e.now())
	res.GameCompleted = true
	if p.Mode == ModeCampaign && e.catalog.Victory != "" {
		res.Narrative = e.catalog.Victory
	} else if n, ok := e.catalog.NarrativeFor(room.ID); ok {
		res.Narrative = n.Outro
	}
	e.state.UI.ShowMessage(res.Narrative)
	return res, nil
}

// DismissOverlays closes the examine view, the puzzle and any message
func (e *GameEngine) DismissOverlays() {
	e.state.UI.CloseExamine()
	e.state.UI.ClosePuzzle()
	e.state.UI.DismissMessage()
}

// ToggleJournal opens or closes the journal and returns the new state
func (e *GameEngine) ToggleJournal() bool {
	e.state.UI.ToggleJournal()
	return e.state.UI.JournalOpen
}

func (e *GameEngine) requireInProgress() error {
	if e.state.Progress.Status != StatusInProgress {
		return fmt.Errorf("%w (status: %s)", ErrGameNotInProgress, e.state.Progress.Status)
	}
	return nil
}

func (e *GameEngine) progressView() ProgressView {
	return ProgressView{
		SolvedPuzzleIDs:     e.state.Progress.SolvedPuzzleIDs,
		CollectedItemIDs:    e.state.Inventory.CollectedItemIDs,
		DiscoveredObjectIDs: e.state.Progress.DiscoveredObjectIDs,
	}
}

// introFor returns a room's intro text, prefixed by the campaign intro when
// withCampaign is set.
func (e *GameEngine) introFor(roomID string, withCampaign bool) string {
	n, _ := e.catalog.NarrativeFor(roomID)
	if withCampaign && e.catalog.Intro != "" {
		if n.Intro == "" {
			return e.catalog.Intro
		}
		return e.catalog.Intro + "\n\n" + n.Intro
	}
	return n.Intro
}
