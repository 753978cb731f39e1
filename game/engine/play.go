package engine

import (
	"fmt"
	"time"
)

// Player-facing messages
const (
	MsgNeedItem         = "You need something to use here..."
	MsgJournalAdded     = "Added a clue to your journal!"
	MsgAlreadySolved    = "You already solved this one."
	MsgItemsDontCombine = "Those items don't go together."
)

// InteractionResult describes the effect of clicking a hotspot
type InteractionResult struct {
	HotSpotID    string        `json:"hotspot_id"`
	Action       ActionKind    `json:"action"`
	NewlyFound   bool          `json:"newly_found"`
	Message      string        `json:"message,omitempty"`
	Description  string        `json:"description,omitempty"`
	ImageURL     string        `json:"image_url,omitempty"`
	PuzzleID     string        `json:"puzzle_id,omitempty"`
	PickedUpItem string        `json:"picked_up_item,omitempty"`
	UsedItem     string        `json:"used_item,omitempty"`
	JournalEntry *JournalEntry `json:"journal_entry,omitempty"`
}

// Interact clicks a visible hotspot in the current room. The hotspot is
// always marked discovered before its action runs.
func (e *GameEngine) Interact(hotspotID string) (*InteractionResult, error) {
	if err := e.requireInProgress(); err != nil {
		return nil, err
	}
	room, err := e.CurrentRoom()
	if err != nil {
		return nil, err
	}
	hs, err := room.FindHotSpot(hotspotID)
	if err != nil {
		return nil, err
	}
	solved := toSet(e.state.Progress.SolvedPuzzleIDs)
	collected := toSet(e.state.Inventory.CollectedItemIDs)
	discovered := toSet(e.state.Progress.DiscoveredObjectIDs)
	if !isVisible(hs.VisibleWhen, solved, collected, discovered) {
		return nil, fmt.Errorf("%w: %s", ErrHotSpotHidden, hotspotID)
	}

	res := &InteractionResult{HotSpotID: hs.ID}
	res.NewlyFound = e.state.Progress.DiscoverObject(hs.ID)
	if err := e.runAction(room, hs, &hs.Action, res, 0); err != nil {
		return nil, err
	}
	return res, nil
}

func (e *GameEngine) runAction(room *Room, hs *HotSpot, action *Action, res *InteractionResult, depth int) error {
	if depth > MaxActionDepth {
		return fmt.Errorf("hotspot %s: action nesting deeper than %d", hs.ID, MaxActionDepth)
	}
	res.Action = action.Kind
	ui := &e.state.UI

	switch action.Kind {
	case ActionExamine:
		ui.OpenExamine(hs.ID, action.Description, action.ImageURL)
		res.Description = action.Description
		res.ImageURL = action.ImageURL

	case ActionPickup:
		if _, err := e.catalog.FindItem(action.ItemID); err != nil {
			return err
		}
		e.state.Inventory.Pickup(action.ItemID)
		res.PickedUpItem = action.ItemID
		res.Message = fmt.Sprintf("Found: %s!", hs.Label)
		ui.ShowMessage(res.Message)

	case ActionOpenPuzzle:
		if _, err := e.catalog.FindPuzzle(action.PuzzleID); err != nil {
			return err
		}
		ui.OpenPuzzle(action.PuzzleID)
		res.PuzzleID = action.PuzzleID

	case ActionUseItem:
		if !e.state.Inventory.Has(action.RequiredItemID) {
			res.Message = MsgNeedItem
			ui.ShowMessage(res.Message)
			return nil
		}
		e.state.Inventory.Use(action.RequiredItemID)
		if ui.SelectedItemID == action.RequiredItemID {
			ui.SelectedItemID = ""
		}
		res.UsedItem = action.RequiredItemID
		if action.ResultAction != nil {
			return e.runAction(room, hs, action.ResultAction, res, depth+1)
		}

	case ActionShowMessage:
		res.Message = action.Message
		ui.ShowMessage(action.Message)

	case ActionAddJournalEntry:
		entry, _ := e.state.Journal.AddEntry(action.EntryText, room.ID, "", e.now())
		res.JournalEntry = &entry
		res.Message = MsgJournalAdded
		ui.ShowMessage(res.Message)

	default:
		return fmt.Errorf("hotspot %s: unknown action kind %q", hs.ID, action.Kind)
	}
	return nil
}

// PuzzleView is what a player sees of a puzzle, without the answer
type PuzzleView struct {
	ID            string     `json:"id"`
	RoomID        string     `json:"room_id"`
	Type          PuzzleType `json:"type"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Data          PuzzleData `json:"data"`
	Solved        bool       `json:"solved"`
	AttemptsUsed  int        `json:"attempts_used"`
	MaxAttempts   int        `json:"max_attempts"`
	LockedUntil   *time.Time `json:"locked_until,omitempty"`
	HintsRevealed []Hint     `json:"hints_revealed"`
	HasMoreHints  bool       `json:"has_more_hints"`
}

// PuzzleView returns the difficulty-adjusted, redacted view of a puzzle
func (e *GameEngine) PuzzleView(puzzleID string) (*PuzzleView, error) {
	p, err := e.catalog.FindPuzzle(puzzleID)
	if err != nil {
		return nil, err
	}
	prog := &e.state.Progress
	tier := e.revealedTier(p)
	view := &PuzzleView{
		ID:            p.ID,
		RoomID:        p.RoomID,
		Type:          p.Type,
		Name:          p.Name,
		Description:   p.Description,
		Data:          DataForDifficulty(p, prog.Difficulty).Redacted(),
		Solved:        prog.IsSolved(p.ID),
		AttemptsUsed:  prog.Attempts[p.ID],
		MaxAttempts:   p.MaxAttempts[prog.Difficulty],
		HintsRevealed: RevealedHints(p.Hints, tier),
		HasMoreHints:  tier < maxTier(p.Hints),
	}
	if until, ok := prog.LockedUntil[p.ID]; ok && e.now().Before(until) {
		view.LockedUntil = &until
	}
	return view, nil
}

// AttemptResult is the outcome of submitting an answer
type AttemptResult struct {
	PuzzleID          string     `json:"puzzle_id"`
	Correct           bool       `json:"correct"`
	Feedback          string     `json:"feedback,omitempty"`
	AlreadySolved     bool       `json:"already_solved,omitempty"`
	AttemptsUsed      int        `json:"attempts_used"`
	AttemptsRemaining int        `json:"attempts_remaining"`
	Locked            bool       `json:"locked,omitempty"`
	LockedUntil       *time.Time `json:"locked_until,omitempty"`
	RewardClue        string     `json:"reward_clue,omitempty"`
	RewardItemID      string     `json:"reward_item_id,omitempty"`
	ConsumedItemIDs   []string   `json:"consumed_item_ids,omitempty"`
	ResultItemID      string     `json:"result_item_id,omitempty"`
	RoomComplete      bool       `json:"room_complete"`
	Narrative         string     `json:"narrative,omitempty"`
}

// AttemptPuzzle validates an answer. A correct answer solves the puzzle,
// records its reward clue and grants its reward item. Wrong answers count
// toward the per-difficulty attempt limit; reaching it locks the puzzle for
// the difficulty's lockout and leaves RetainedAttempts on the counter.
// AttemptsRemaining is -1 when attempts are unlimited.
//
// Item puzzles only take items the player holds. Solving one consumes them
// and grants the payload's result item.
func (e *GameEngine) AttemptPuzzle(puzzleID string, attempt Attempt) (*AttemptResult, error) {
	if err := e.requireInProgress(); err != nil {
		return nil, err
	}
	p, err := e.catalog.FindPuzzle(puzzleID)
	if err != nil {
		return nil, err
	}
	prog := &e.state.Progress
	limit := p.MaxAttempts[prog.Difficulty]
	res := &AttemptResult{PuzzleID: p.ID, AttemptsRemaining: -1}

	if prog.IsSolved(p.ID) {
		res.Correct = true
		res.AlreadySolved = true
		res.Feedback = MsgAlreadySolved
		res.RoomComplete = e.roomCompleteFor(p)
		return res, nil
	}

	now := e.now()
	if until, ok := prog.LockedUntil[p.ID]; ok {
		if now.Before(until) {
			return nil, fmt.Errorf("%w: %s for %s", ErrPuzzleLocked, p.ID, until.Sub(now).Round(time.Second))
		}
		delete(prog.LockedUntil, p.ID)
	}

	solution := SolutionForDifficulty(p, prog.Difficulty)
	if solution.Type == SolutionItems {
		for _, id := range attempt.Values {
			if !e.state.Inventory.Has(id) {
				return nil, fmt.Errorf("%w: %s", ErrItemNotHeld, id)
			}
		}
	}

	check := CheckSolution(solution, attempt)
	res.Correct = check.Correct
	res.Feedback = check.Feedback

	if !check.Correct {
		prog.Attempts[p.ID]++
		res.AttemptsUsed = prog.Attempts[p.ID]
		if limit > UnlimitedAttempts {
			res.AttemptsRemaining = limit - res.AttemptsUsed
			if res.AttemptsRemaining <= 0 {
				res.AttemptsRemaining = 0
				prog.Attempts[p.ID] = retainedAttempts(limit)
				if lockout := e.lockout[prog.Difficulty]; lockout > 0 {
					until := now.Add(lockout)
					prog.LockedUntil[p.ID] = until
					res.Locked = true
					res.LockedUntil = &until
				}
			}
		}
		return res, nil
	}

	res.AttemptsUsed = prog.Attempts[p.ID] + 1
	delete(prog.Attempts, p.ID)
	prog.SolvePuzzle(p.ID)
	e.state.UI.ClosePuzzle()

	if p.RewardClue != "" {
		e.state.Journal.AddEntry(p.RewardClue, p.RoomID, p.ID, now)
		res.RewardClue = p.RewardClue
		e.state.UI.ShowMessage(p.RewardClue)
	}
	if solution.Type == SolutionItems {
		e.consumeItems(solution.ItemIDs, DataForDifficulty(p, prog.Difficulty).ResultItemID, res)
	}
	if p.RewardItemID != "" {
		e.state.Inventory.Pickup(p.RewardItemID)
		res.RewardItemID = p.RewardItemID
	}

	res.RoomComplete = e.roomCompleteFor(p)
	if res.RoomComplete {
		if n, ok := e.catalog.NarrativeFor(p.RoomID); ok {
			res.Narrative = n.Outro
		}
	}
	return res, nil
}

// consumeItems uses up the items of a solved item puzzle. A pair with a
// result merges like a recipe; otherwise each item is marked used and the
// result, if any, is picked up.
func (e *GameEngine) consumeItems(ids []string, resultID string, res *AttemptResult) {
	inv := &e.state.Inventory
	if len(ids) == 2 && resultID != "" {
		inv.Combine(ids[0], ids[1], resultID)
	} else {
		for _, id := range ids {
			inv.Use(id)
		}
		if resultID != "" {
			inv.Pickup(resultID)
		}
	}
	if contains(ids, e.state.UI.SelectedItemID) {
		e.state.UI.SelectedItemID = ""
	}
	res.ConsumedItemIDs = append([]string{}, ids...)
	res.ResultItemID = resultID
}

// retainedAttempts keeps at least one try available after a lockout
func retainedAttempts(limit int) int {
	if limit-1 < RetainedAttempts {
		return limit - 1
	}
	return RetainedAttempts
}

func (e *GameEngine) roomCompleteFor(p *Puzzle) bool {
	room, err := e.catalog.FindRoom(p.RoomID)
	if err != nil {
		return false
	}
	return IsRoomComplete(room, e.state.Progress.SolvedPuzzleIDs)
}

// HintStatus summarises the hint ladder of one puzzle for the player
type HintStatus struct {
	PuzzleID       string `json:"puzzle_id"`
	RevealedTier   int    `json:"revealed_tier"`
	TotalTiers     int    `json:"total_tiers"`
	Revealed       []Hint `json:"revealed"`
	AutoHints      []Hint `json:"auto_hints,omitempty"`
	Latest         *Hint  `json:"latest,omitempty"`
	HintsUsed      int    `json:"hints_used"`
	HintsRemaining int    `json:"hints_remaining"`
	CanReveal      bool   `json:"can_reveal"`
}

// HintStatus reports the revealed hints of a puzzle without spending any
func (e *GameEngine) HintStatus(puzzleID string) (*HintStatus, error) {
	p, err := e.catalog.FindPuzzle(puzzleID)
	if err != nil {
		return nil, err
	}
	return e.hintStatus(p), nil
}

// RevealHint reveals the next tier and spends one hint from the budget
func (e *GameEngine) RevealHint(puzzleID string) (*HintStatus, error) {
	if err := e.requireInProgress(); err != nil {
		return nil, err
	}
	p, err := e.catalog.FindPuzzle(puzzleID)
	if err != nil {
		return nil, err
	}
	prog := &e.state.Progress

	next, ok := NextHint(p.Hints, e.revealedTier(p), prog.Difficulty)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHintsExhausted, p.ID)
	}
	if prog.HintsRemaining() <= 0 {
		return nil, ErrNoHintsRemaining
	}

	prog.UseHint()
	prog.RevealedHintTiers[p.ID] = next.Tier

	status := e.hintStatus(p)
	status.Latest = &next
	return status, nil
}

func (e *GameEngine) hintStatus(p *Puzzle) *HintStatus {
	prog := &e.state.Progress
	tier := e.revealedTier(p)
	_, more := NextHint(p.Hints, tier, prog.Difficulty)
	return &HintStatus{
		PuzzleID:       p.ID,
		RevealedTier:   tier,
		TotalTiers:     maxTier(p.Hints),
		Revealed:       RevealedHints(p.Hints, tier),
		AutoHints:      AutoHints(p.Hints, prog.Difficulty),
		HintsUsed:      prog.HintsUsed,
		HintsRemaining: prog.HintsRemaining(),
		CanReveal:      more && prog.HintsRemaining() > 0 && prog.Status == StatusInProgress,
	}
}

// revealedTier is the manual tier, raised to the free tier on easy
func (e *GameEngine) revealedTier(p *Puzzle) int {
	prog := &e.state.Progress
	tier := prog.RevealedHintTiers[p.ID]
	if auto := autoTier(p.Hints, prog.Difficulty); auto > tier {
		tier = auto
	}
	return tier
}

// CombineResult describes a successful combination
type CombineResult struct {
	Consumed []string `json:"consumed"`
	Result   Item     `json:"result"`
	Message  string   `json:"message"`
}

// CombineItems merges two held items according to their recipe
func (e *GameEngine) CombineItems(itemA, itemB string) (*CombineResult, error) {
	if err := e.requireInProgress(); err != nil {
		return nil, err
	}
	if itemA == itemB {
		return nil, fmt.Errorf("%w: an item cannot be combined with itself", ErrCannotCombine)
	}
	inv := &e.state.Inventory
	for _, id := range []string{itemA, itemB} {
		if !inv.Has(id) {
			return nil, fmt.Errorf("%w: %s", ErrItemNotHeld, id)
		}
	}
	a, err := e.catalog.FindItem(itemA)
	if err != nil {
		return nil, err
	}
	b, err := e.catalog.FindItem(itemB)
	if err != nil {
		return nil, err
	}
	resultID, ok := CanCombine(a, b)
	if !ok {
		return nil, fmt.Errorf("%w: %s + %s", ErrCannotCombine, itemA, itemB)
	}
	result, err := e.catalog.FindItem(resultID)
	if err != nil {
		return nil, err
	}

	inv.Combine(itemA, itemB, resultID)
	e.state.UI.SelectedItemID = ""
	msg := fmt.Sprintf("Combined into %s!", result.Name)
	e.state.UI.ShowMessage(msg)
	return &CombineResult{
		Consumed: []string{itemA, itemB},
		Result:   *result,
		Message:  msg,
	}, nil
}

// SelectionResult describes the effect of selecting an inventory item
type SelectionResult struct {
	SelectedItemID string         `json:"selected_item_id,omitempty"`
	Combined       *CombineResult `json:"combined,omitempty"`
	Message        string         `json:"message,omitempty"`
}

// SelectItem selects a held item. Selecting the selected item clears the
// selection; selecting a second item tries to combine the two. An empty ID
// clears the selection.
func (e *GameEngine) SelectItem(itemID string) (*SelectionResult, error) {
	ui := &e.state.UI
	if itemID == "" || itemID == ui.SelectedItemID {
		ui.SelectedItemID = ""
		return &SelectionResult{}, nil
	}
	if !e.state.Inventory.Has(itemID) {
		return nil, fmt.Errorf("%w: %s", ErrItemNotHeld, itemID)
	}

	if prev := ui.SelectedItemID; prev != "" && e.state.Inventory.Has(prev) {
		combined, err := e.CombineItems(prev, itemID)
		if err == nil {
			return &SelectionResult{Combined: combined, Message: combined.Message}, nil
		}
		ui.SelectedItemID = itemID
		return &SelectionResult{SelectedItemID: itemID, Message: MsgItemsDontCombine}, nil
	}

	ui.SelectedItemID = itemID
	return &SelectionResult{SelectedItemID: itemID}, nil
}
