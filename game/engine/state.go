package engine

import (
	"time"

	"github.com/google/uuid"
)

// Progress is the persisted player progress for one game
type Progress struct {
	ID                  string               `json:"id"`
	Status              GameStatus           `json:"status"`
	Difficulty          Difficulty           `json:"difficulty"`
	Mode                GameMode             `json:"mode"`
	CurrentRoomID       string               `json:"current_room_id"`
	UnlockedRoomIDs     []string             `json:"unlocked_room_ids"`
	SolvedPuzzleIDs     []string             `json:"solved_puzzle_ids"`
	DiscoveredObjectIDs []string             `json:"discovered_object_ids"`
	StartedAt           *time.Time           `json:"started_at"`
	CompletedAt         *time.Time           `json:"completed_at"`
	ElapsedSeconds      int                  `json:"elapsed_seconds"`
	HintsUsed           int                  `json:"hints_used"`
	TotalHintsAvailable int                  `json:"total_hints_available"`
	RevealedHintTiers   map[string]int       `json:"revealed_hint_tiers"`
	Attempts            map[string]int       `json:"attempts"`
	LockedUntil         map[string]time.Time `json:"locked_until"`
}

// NewProgress returns progress for a game that has not started
func NewProgress() Progress {
	return Progress{
		Status:              StatusNotStarted,
		Difficulty:          Medium,
		Mode:                ModeCampaign,
		UnlockedRoomIDs:     []string{},
		SolvedPuzzleIDs:     []string{},
		DiscoveredObjectIDs: []string{},
		TotalHintsAvailable: MediumHintBudget,
		RevealedHintTiers:   map[string]int{},
		Attempts:            map[string]int{},
		LockedUntil:         map[string]time.Time{},
	}
}

// Start begins a new game in roomID
func (p *Progress) Start(d Difficulty, mode GameMode, roomID string, now time.Time) {
	*p = NewProgress()
	p.ID = uuid.NewString()
	p.Status = StatusInProgress
	p.Difficulty = d
	p.Mode = mode
	p.CurrentRoomID = roomID
	p.UnlockedRoomIDs = []string{roomID}
	p.StartedAt = &now
	p.TotalHintsAvailable = HintBudget(d)
}

func (p *Progress) SolvePuzzle(id string) {
	p.SolvedPuzzleIDs = addUnique(p.SolvedPuzzleIDs, id)
}

func (p *Progress) IsSolved(id string) bool {
	return contains(p.SolvedPuzzleIDs, id)
}

// DiscoverObject records a clicked hotspot. It returns false if it was
// already discovered.
func (p *Progress) DiscoverObject(id string) bool {
	if contains(p.DiscoveredObjectIDs, id) {
		return false
	}
	p.DiscoveredObjectIDs = append(p.DiscoveredObjectIDs, id)
	return true
}

func (p *Progress) UnlockRoom(id string) {
	p.UnlockedRoomIDs = addUnique(p.UnlockedRoomIDs, id)
}

func (p *Progress) MoveToRoom(id string) {
	p.CurrentRoomID = id
}

// UseHint spends one hint from the budget
func (p *Progress) UseHint() {
	p.HintsUsed++
}

// HintsRemaining never goes below zero
func (p *Progress) HintsRemaining() int {
	if r := p.TotalHintsAvailable - p.HintsUsed; r > 0 {
		return r
	}
	return 0
}

func (p *Progress) UpdateElapsed(seconds int) {
	p.ElapsedSeconds = seconds
}

func (p *Progress) Complete(now time.Time) {
	p.Status = StatusCompleted
	p.CompletedAt = &now
}

func (p *Progress) Reset() {
	*p = NewProgress()
}

// ensureMaps repairs nil maps left by older saves
func (p *Progress) ensureMaps() {
	if p.RevealedHintTiers == nil {
		p.RevealedHintTiers = map[string]int{}
	}
	if p.Attempts == nil {
		p.Attempts = map[string]int{}
	}
	if p.LockedUntil == nil {
		p.LockedUntil = map[string]time.Time{}
	}
}

// Inventory tracks collected and used items
type Inventory struct {
	CollectedItemIDs []string `json:"collected_item_ids"`
	UsedItemIDs      []string `json:"used_item_ids"`
}

func NewInventory() Inventory {
	return Inventory{CollectedItemIDs: []string{}, UsedItemIDs: []string{}}
}

func (inv *Inventory) Pickup(id string) {
	inv.CollectedItemIDs = addUnique(inv.CollectedItemIDs, id)
}

// Use marks a held item as used. It returns false if the item is not held.
func (inv *Inventory) Use(id string) bool {
	if !inv.Has(id) {
		return false
	}
	inv.UsedItemIDs = addUnique(inv.UsedItemIDs, id)
	return true
}

// Combine consumes a and b and adds result
func (inv *Inventory) Combine(a, b, result string) {
	inv.UsedItemIDs = addUnique(addUnique(inv.UsedItemIDs, a), b)
	kept := make([]string, 0, len(inv.CollectedItemIDs)+1)
	for _, id := range inv.CollectedItemIDs {
		if id != a && id != b {
			kept = append(kept, id)
		}
	}
	inv.CollectedItemIDs = addUnique(kept, result)
}

// Has reports whether the item is collected and not yet used
func (inv *Inventory) Has(id string) bool {
	return contains(inv.CollectedItemIDs, id) && !contains(inv.UsedItemIDs, id)
}

// Active returns the items the player can still use, in pickup order
func (inv *Inventory) Active() []string {
	active := []string{}
	for _, id := range inv.CollectedItemIDs {
		if !contains(inv.UsedItemIDs, id) {
			active = append(active, id)
		}
	}
	return active
}

func (inv *Inventory) Reset() {
	*inv = NewInventory()
}

// JournalEntry is a clue the player has found
type JournalEntry struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	RoomID       string    `json:"room_id"`
	PuzzleID     string    `json:"puzzle_id,omitempty"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// Journal is the ordered clue log, unique by text
type Journal struct {
	Entries []JournalEntry `json:"entries"`
}

func NewJournal() Journal {
	return Journal{Entries: []JournalEntry{}}
}

// AddEntry appends a clue unless the same text is already recorded
func (j *Journal) AddEntry(text, roomID, puzzleID string, now time.Time) (JournalEntry, bool) {
	for _, e := range j.Entries {
		if e.Text == text {
			return e, false
		}
	}
	entry := JournalEntry{
		ID:           uuid.NewString(),
		Text:         text,
		RoomID:       roomID,
		PuzzleID:     puzzleID,
		DiscoveredAt: now,
	}
	j.Entries = append(j.Entries, entry)
	return entry, true
}

func (j *Journal) HasEntry(text string) bool {
	for _, e := range j.Entries {
		if e.Text == text {
			return true
		}
	}
	return false
}

func (j *Journal) Reset() {
	*j = NewJournal()
}

// UIState is transient view state. It is not persisted.
type UIState struct {
	JournalOpen        bool   `json:"journal_open"`
	ExamineObjectID    string `json:"examine_object_id,omitempty"`
	ExamineDescription string `json:"examine_description,omitempty"`
	ExamineImageURL    string `json:"examine_image_url,omitempty"`
	ActivePuzzleID     string `json:"active_puzzle_id,omitempty"`
	ActiveMessage      string `json:"active_message,omitempty"`
	SelectedItemID     string `json:"selected_item_id,omitempty"`
}

func (ui *UIState) OpenExamine(objectID, description, imageURL string) {
	ui.ExamineObjectID = objectID
	ui.ExamineDescription = description
	ui.ExamineImageURL = imageURL
}

func (ui *UIState) CloseExamine() {
	ui.ExamineObjectID = ""
	ui.ExamineDescription = ""
	ui.ExamineImageURL = ""
}

func (ui *UIState) OpenPuzzle(id string) {
	ui.ActivePuzzleID = id
}

func (ui *UIState) ClosePuzzle() {
	ui.ActivePuzzleID = ""
}

func (ui *UIState) ShowMessage(msg string) {
	ui.ActiveMessage = msg
}

func (ui *UIState) DismissMessage() {
	ui.ActiveMessage = ""
}

func (ui *UIState) ToggleJournal() {
	ui.JournalOpen = !ui.JournalOpen
}

func (ui *UIState) Reset() {
	*ui = UIState{}
}

// GameState bundles everything a single game mutates
type GameState struct {
	Progress  Progress  `json:"progress"`
	Inventory Inventory `json:"inventory"`
	Journal   Journal   `json:"journal"`
	UI        UIState   `json:"ui"`
}

// NewGameState returns an empty, not-started state
func NewGameState() *GameState {
	return &GameState{
		Progress:  NewProgress(),
		Inventory: NewInventory(),
		Journal:   NewJournal(),
	}
}

// addUnique appends id unless it is already present
func addUnique(ids []string, id string) []string {
	if contains(ids, id) {
		return ids
	}
	return append(ids, id)
}
