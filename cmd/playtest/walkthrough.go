package main

import (
	"github.com/wricardo/escape-room-game/game/engine"
)

// MoveKind is one kind of request the walkthrough makes
type MoveKind string

const (
	MoveInteract MoveKind = "interact"
	MoveSolve    MoveKind = "solve"
	MoveCombine  MoveKind = "combine"
	MoveContinue MoveKind = "continue"
)

// Move is the next request to send. Solve interacts with HotSpotID first
// when it is set, then submits Attempt for PuzzleID.
type Move struct {
	Kind      MoveKind
	HotSpotID string
	PuzzleID  string
	Attempt   engine.Attempt
	ItemA     string
	ItemB     string
}

// Walkthrough plays a campaign the way a player who knows every answer
// would: collect what is lying around, combine what fits, solve each puzzle
// as soon as its hotspot shows up, then move on.
type Walkthrough struct {
	catalog    *engine.Catalog
	difficulty engine.Difficulty
	items      map[string]*engine.Item
}

func NewWalkthrough(catalog *engine.Catalog, difficulty engine.Difficulty) *Walkthrough {
	w := &Walkthrough{
		catalog:    catalog,
		difficulty: difficulty,
		items:      make(map[string]*engine.Item, len(catalog.Items)),
	}
	for i := range catalog.Items {
		w.items[catalog.Items[i].ID] = &catalog.Items[i]
	}
	return w
}

// AttemptFor builds the accepted answer for a puzzle at the walkthrough's
// difficulty
func (w *Walkthrough) AttemptFor(p *engine.Puzzle) engine.Attempt {
	s := engine.SolutionForDifficulty(p, w.difficulty)
	switch s.Type {
	case engine.SolutionCode:
		return engine.Attempt{Value: s.Code}
	case engine.SolutionText:
		if len(s.Answers) > 0 {
			return engine.Attempt{Value: s.Answers[0]}
		}
	case engine.SolutionSelection:
		return engine.Attempt{Value: s.CorrectID}
	case engine.SolutionPattern:
		return engine.Attempt{Values: s.Pattern}
	case engine.SolutionSequence:
		return engine.Attempt{Values: s.Sequence}
	case engine.SolutionItems:
		return engine.Attempt{Values: s.ItemIDs}
	}
	return engine.Attempt{}
}

// Solvable reports whether a puzzle can be answered with what is held.
// Only item combination puzzles need anything.
func (w *Walkthrough) Solvable(puzzleID string, held map[string]bool) bool {
	p, err := w.catalog.FindPuzzle(puzzleID)
	if err != nil {
		return false
	}
	if p.Type != engine.ItemCombination {
		return true
	}
	for _, id := range engine.SolutionForDifficulty(p, w.difficulty).ItemIDs {
		if !held[id] {
			return false
		}
	}
	return true
}

// SolveMove answers puzzleID, or reports false when it is solved or not yet
// solvable
func (w *Walkthrough) SolveMove(state *engine.StateView, hotspotID, puzzleID string) (Move, bool) {
	if contains(state.SolvedPuzzleIDs, puzzleID) || !w.Solvable(puzzleID, held(state)) {
		return Move{}, false
	}
	p, err := w.catalog.FindPuzzle(puzzleID)
	if err != nil {
		return Move{}, false
	}
	return Move{Kind: MoveSolve, HotSpotID: hotspotID, PuzzleID: puzzleID, Attempt: w.AttemptFor(p)}, true
}

// Next picks the next move, or reports false when there is nothing left to
// do: the game is over or the walkthrough is stuck
func (w *Walkthrough) Next(state *engine.StateView) (Move, bool) {
	if state.Status != engine.StatusInProgress || state.Room == nil {
		return Move{}, false
	}
	if state.Room.Complete {
		return Move{Kind: MoveContinue}, true
	}

	inv := state.Inventory
	for i := range inv {
		for j := i + 1; j < len(inv); j++ {
			if _, ok := engine.CanCombine(w.items[inv[i].ID], w.items[inv[j].ID]); ok {
				return Move{Kind: MoveCombine, ItemA: inv[i].ID, ItemB: inv[j].ID}, true
			}
		}
	}

	holding := held(state)
	for _, hs := range state.Room.HotSpots {
		switch hs.Action.Kind {
		case engine.ActionOpenPuzzle:
			if m, ok := w.SolveMove(state, hs.ID, hs.Action.PuzzleID); ok {
				return m, true
			}
		case engine.ActionUseItem:
			if holding[hs.Action.RequiredItemID] {
				return Move{Kind: MoveInteract, HotSpotID: hs.ID}, true
			}
		default:
			if !hs.Discovered {
				return Move{Kind: MoveInteract, HotSpotID: hs.ID}, true
			}
		}
	}
	return Move{}, false
}

func held(state *engine.StateView) map[string]bool {
	out := make(map[string]bool, len(state.Inventory))
	for _, it := range state.Inventory {
		out[it.ID] = true
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
