package engine

// HotSpotView is a visible hotspot as presented to a client
type HotSpotView struct {
	HotSpot
	Glow       bool `json:"glow"`
	Discovered bool `json:"discovered"`
}

// RoomView is the current room with only its visible hotspots
type RoomView struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Theme             string        `json:"theme"`
	Description       string        `json:"description"`
	BackgroundImage   string        `json:"background_image,omitempty"`
	HotSpots          []HotSpotView `json:"hot_spots"`
	PuzzleIDs         []string      `json:"puzzle_ids"`
	RequiredPuzzleIDs []string      `json:"required_puzzle_ids"`
	NextRoomID        string        `json:"next_room_id,omitempty"`
	Complete          bool          `json:"complete"`
}

// ItemView is a held item with its selection state
type ItemView struct {
	Item
	Selected bool `json:"selected"`
}

// StateView is the full client view of a game
type StateView struct {
	Campaign        string         `json:"campaign"`
	Status          GameStatus     `json:"status"`
	Difficulty      Difficulty     `json:"difficulty"`
	Mode            GameMode       `json:"mode"`
	Room            *RoomView      `json:"room,omitempty"`
	Inventory       []ItemView     `json:"inventory"`
	Journal         []JournalEntry `json:"journal"`
	SolvedPuzzleIDs []string       `json:"solved_puzzle_ids"`
	UnlockedRoomIDs []string       `json:"unlocked_room_ids"`
	HintsUsed       int            `json:"hints_used"`
	HintsRemaining  int            `json:"hints_remaining"`
	ElapsedSeconds  int            `json:"elapsed_seconds"`
	UI              UIState        `json:"ui"`
}

// View builds the client view of the current state. Hotspots glow only on
// easy, and only until they have been discovered.
func (e *GameEngine) View() *StateView {
	s := e.state
	view := &StateView{
		Campaign:        e.catalog.Name,
		Status:          s.Progress.Status,
		Difficulty:      s.Progress.Difficulty,
		Mode:            s.Progress.Mode,
		Inventory:       []ItemView{},
		Journal:         s.Journal.Entries,
		SolvedPuzzleIDs: s.Progress.SolvedPuzzleIDs,
		UnlockedRoomIDs: s.Progress.UnlockedRoomIDs,
		HintsUsed:       s.Progress.HintsUsed,
		HintsRemaining:  s.Progress.HintsRemaining(),
		ElapsedSeconds:  s.Progress.ElapsedSeconds,
		UI:              s.UI,
	}

	for _, id := range s.Inventory.Active() {
		item, err := e.catalog.FindItem(id)
		if err != nil {
			continue
		}
		view.Inventory = append(view.Inventory, ItemView{Item: *item, Selected: id == s.UI.SelectedItemID})
	}

	room, err := e.CurrentRoom()
	if err != nil {
		return view
	}
	discovered := toSet(s.Progress.DiscoveredObjectIDs)
	rv := &RoomView{
		ID:                room.ID,
		Name:              room.Name,
		Theme:             room.Theme,
		Description:       room.Description,
		BackgroundImage:   room.BackgroundImage,
		HotSpots:          []HotSpotView{},
		PuzzleIDs:         room.PuzzleIDs,
		RequiredPuzzleIDs: room.RequiredPuzzleIDs,
		NextRoomID:        room.NextRoomID,
		Complete:          IsRoomComplete(room, s.Progress.SolvedPuzzleIDs),
	}
	for _, hs := range VisibleHotSpots(room, e.progressView()) {
		rv.HotSpots = append(rv.HotSpots, HotSpotView{
			HotSpot:    hs,
			Glow:       hs.GlowOnEasy && s.Progress.Difficulty == Easy && !discovered[hs.ID],
			Discovered: discovered[hs.ID],
		})
	}
	view.Room = rv
	return view
}
