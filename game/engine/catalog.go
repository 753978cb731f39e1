package engine

import (
	"fmt"
	"strings"
)

// ParseDifficulty converts user input into a Difficulty
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
	}
	return d, nil
}

// Valid reports whether d is one of the known difficulties
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// HintBudget returns the number of manual hint reveals allowed per game
func HintBudget(d Difficulty) int {
	switch d {
	case Easy:
		return EasyHintBudget
	case Hard:
		return HardHintBudget
	default:
		return MediumHintBudget
	}
}

// ParseMode converts user input into a GameMode; empty means campaign
func ParseMode(s string) (GameMode, error) {
	switch m := GameMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeCampaign, nil
	case ModeCampaign, ModeFreeplay:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// SolutionTypeFor maps a puzzle type to the solution shape it expects
func SolutionTypeFor(t PuzzleType) (SolutionType, bool) {
	switch t {
	case PatternMatch:
		return SolutionPattern, true
	case CodeEntry:
		return SolutionCode, true
	case Riddle:
		return SolutionText, true
	case LogicDeduction:
		return SolutionSelection, true
	case HiddenSequence:
		return SolutionSequence, true
	case ItemCombination:
		return SolutionItems, true
	}
	return "", false
}

// FindRoom looks up a room by ID
func (c *Catalog) FindRoom(id string) (*Room, error) {
	for i := range c.Rooms {
		if c.Rooms[i].ID == id {
			return &c.Rooms[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
}

// FindPuzzle looks up a puzzle by ID
func (c *Catalog) FindPuzzle(id string) (*Puzzle, error) {
	for i := range c.Puzzles {
		if c.Puzzles[i].ID == id {
			return &c.Puzzles[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPuzzleNotFound, id)
}

// FindItem looks up an item definition by ID
func (c *Catalog) FindItem(id string) (*Item, error) {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
}

// FindHotSpot looks up a hotspot inside a room
func (r *Room) FindHotSpot(id string) (*HotSpot, error) {
	for i := range r.HotSpots {
		if r.HotSpots[i].ID == id {
			return &r.HotSpots[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s in room %s", ErrHotSpotNotFound, id, r.ID)
}

// FirstRoomID returns the room a campaign starts in
func (c *Catalog) FirstRoomID() string {
	if c.StartRoomID != "" {
		return c.StartRoomID
	}
	if len(c.Rooms) == 0 {
		return ""
	}
	return c.Rooms[0].ID
}

// RoomPuzzles returns the puzzles listed by a room, skipping unknown IDs
func (c *Catalog) RoomPuzzles(room *Room) []*Puzzle {
	puzzles := make([]*Puzzle, 0, len(room.PuzzleIDs))
	for _, id := range room.PuzzleIDs {
		if p, err := c.FindPuzzle(id); err == nil {
			puzzles = append(puzzles, p)
		}
	}
	return puzzles
}

// NarrativeFor returns the story text for a room, if any
func (c *Catalog) NarrativeFor(roomID string) (Narrative, bool) {
	n, ok := c.Narratives[roomID]
	return n, ok
}

// CampaignRoute walks next_room_id from the first room and returns the room
// IDs in play order. It stops at the first repeated or unknown room.
func (c *Catalog) CampaignRoute() []string {
	var route []string
	seen := make(map[string]bool)
	for id := c.FirstRoomID(); id != "" && !seen[id]; {
		room, err := c.FindRoom(id)
		if err != nil {
			break
		}
		seen[id] = true
		route = append(route, id)
		id = room.NextRoomID
	}
	return route
}

// Normalize fills fields that campaign authors may omit: hotspot room IDs,
// payload type tags and the default exit condition.
func (c *Catalog) Normalize() {
	for i := range c.Rooms {
		room := &c.Rooms[i]
		if room.ExitCondition.Type == "" {
			room.ExitCondition.Type = ExitAllRequiredPuzzles
		}
		for j := range room.HotSpots {
			if room.HotSpots[j].RoomID == "" {
				room.HotSpots[j].RoomID = room.ID
			}
		}
	}
	for i := range c.Puzzles {
		p := &c.Puzzles[i]
		if p.Data.Type == "" {
			p.Data.Type = p.Type
		}
		for d, data := range p.DifficultyOverrides {
			if data.Type == "" {
				data.Type = p.Type
				p.DifficultyOverrides[d] = data
			}
		}
		if p.Solution.Type == "" {
			if st, ok := SolutionTypeFor(p.Type); ok {
				p.Solution.Type = st
			}
		}
	}
}
