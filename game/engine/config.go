package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidateCatalog validates a campaign for correctness and playability
func ValidateCatalog(c *Catalog) error {
	if c.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if len(c.Rooms) == 0 {
		return fmt.Errorf("config validation: at least one room is required")
	}

	rooms := make(map[string]*Room, len(c.Rooms))
	for i := range c.Rooms {
		r := &c.Rooms[i]
		if r.ID == "" {
			return fmt.Errorf("config validation: room %d has no id", i+1)
		}
		if _, dup := rooms[r.ID]; dup {
			return fmt.Errorf("config validation: duplicate room id %q", r.ID)
		}
		rooms[r.ID] = r
	}
	puzzles := make(map[string]*Puzzle, len(c.Puzzles))
	for i := range c.Puzzles {
		p := &c.Puzzles[i]
		if p.ID == "" {
			return fmt.Errorf("config validation: puzzle %d has no id", i+1)
		}
		if _, dup := puzzles[p.ID]; dup {
			return fmt.Errorf("config validation: duplicate puzzle id %q", p.ID)
		}
		puzzles[p.ID] = p
	}
	items := make(map[string]*Item, len(c.Items))
	for i := range c.Items {
		it := &c.Items[i]
		if it.ID == "" {
			return fmt.Errorf("config validation: item %d has no id", i+1)
		}
		if _, dup := items[it.ID]; dup {
			return fmt.Errorf("config validation: duplicate item id %q", it.ID)
		}
		items[it.ID] = it
	}

	if c.StartRoomID != "" {
		if _, ok := rooms[c.StartRoomID]; !ok {
			return fmt.Errorf("config validation: start_room_id %q does not exist", c.StartRoomID)
		}
	}

	hotspotIDs := make(map[string]bool)
	for i := range c.Rooms {
		r := &c.Rooms[i]
		for _, hs := range r.HotSpots {
			hotspotIDs[hs.ID] = true
		}
	}

	for i := range c.Rooms {
		if err := validateRoom(&c.Rooms[i], rooms, puzzles, items, hotspotIDs); err != nil {
			return err
		}
	}
	for i := range c.Puzzles {
		if err := validatePuzzle(&c.Puzzles[i], rooms, items); err != nil {
			return err
		}
	}
	for i := range c.Items {
		if err := validateItem(&c.Items[i], items); err != nil {
			return err
		}
	}

	for roomID := range c.Narratives {
		if _, ok := rooms[roomID]; !ok {
			return fmt.Errorf("config validation: narrative for unknown room %q", roomID)
		}
	}

	// next_room_id chains must terminate
	for _, r := range c.Rooms {
		seen := map[string]bool{}
		for id := r.ID; id != ""; id = rooms[id].NextRoomID {
			if seen[id] {
				return fmt.Errorf("config validation: room chain starting at %q loops back to %q", r.ID, id)
			}
			seen[id] = true
		}
	}

	return nil
}

func validateRoom(r *Room, rooms map[string]*Room, puzzles map[string]*Puzzle, items map[string]*Item, hotspots map[string]bool) error {
	if r.Name == "" {
		return fmt.Errorf("config validation: room %q: name is required", r.ID)
	}
	if r.NextRoomID != "" {
		if _, ok := rooms[r.NextRoomID]; !ok {
			return fmt.Errorf("config validation: room %q: next_room_id %q does not exist", r.ID, r.NextRoomID)
		}
		if r.NextRoomID == r.ID {
			return fmt.Errorf("config validation: room %q: next_room_id points to itself", r.ID)
		}
	}
	switch r.ExitCondition.Type {
	case "", ExitAllRequiredPuzzles:
	default:
		return fmt.Errorf("config validation: room %q: unsupported exit_condition %q", r.ID, r.ExitCondition.Type)
	}

	listed := make(map[string]bool, len(r.PuzzleIDs))
	for _, id := range r.PuzzleIDs {
		p, ok := puzzles[id]
		if !ok {
			return fmt.Errorf("config validation: room %q: puzzle %q does not exist", r.ID, id)
		}
		if p.RoomID != r.ID {
			return fmt.Errorf("config validation: room %q lists puzzle %q which belongs to room %q", r.ID, id, p.RoomID)
		}
		listed[id] = true
	}
	for _, id := range r.RequiredPuzzleIDs {
		if !listed[id] {
			return fmt.Errorf("config validation: room %q: required puzzle %q is not in puzzle_ids", r.ID, id)
		}
	}

	seen := make(map[string]bool, len(r.HotSpots))
	for _, hs := range r.HotSpots {
		if hs.ID == "" {
			return fmt.Errorf("config validation: room %q: hotspot without id", r.ID)
		}
		if seen[hs.ID] {
			return fmt.Errorf("config validation: room %q: duplicate hotspot id %q", r.ID, hs.ID)
		}
		seen[hs.ID] = true
		if hs.RoomID != "" && hs.RoomID != r.ID {
			return fmt.Errorf("config validation: hotspot %q: room_id %q does not match room %q", hs.ID, hs.RoomID, r.ID)
		}
		if err := validateRect(hs); err != nil {
			return err
		}
		switch hs.Type {
		case HotSpotExamine, HotSpotPickup, HotSpotPuzzle, HotSpotUseItem, HotSpotDecoration:
		default:
			return fmt.Errorf("config validation: hotspot %q: invalid type %q", hs.ID, hs.Type)
		}
		if err := validateAction(hs.ID, &hs.Action, puzzles, items, 0); err != nil {
			return err
		}
		if err := validateVisibility(hs, puzzles, items, hotspots); err != nil {
			return err
		}
	}
	return nil
}

func validateRect(hs HotSpot) error {
	inRange := func(v float64) bool { return v >= MinHotSpotCoord && v <= MaxHotSpotCoord }
	if !inRange(hs.X) || !inRange(hs.Y) {
		return fmt.Errorf("config validation: hotspot %q: position (%g, %g) must be between %d and %d",
			hs.ID, hs.X, hs.Y, MinHotSpotCoord, MaxHotSpotCoord)
	}
	if hs.Width <= 0 || hs.Height <= 0 {
		return fmt.Errorf("config validation: hotspot %q: width and height must be positive", hs.ID)
	}
	if hs.X+hs.Width > MaxHotSpotCoord || hs.Y+hs.Height > MaxHotSpotCoord {
		return fmt.Errorf("config validation: hotspot %q: rectangle extends past the room edge", hs.ID)
	}
	return nil
}

func validateAction(hotspotID string, a *Action, puzzles map[string]*Puzzle, items map[string]*Item, depth int) error {
	if depth > MaxActionDepth {
		return fmt.Errorf("config validation: hotspot %q: actions nested deeper than %d", hotspotID, MaxActionDepth)
	}
	switch a.Kind {
	case ActionExamine:
		if a.Description == "" {
			return fmt.Errorf("config validation: hotspot %q: examine action needs a description", hotspotID)
		}
	case ActionPickup:
		if _, ok := items[a.ItemID]; !ok {
			return fmt.Errorf("config validation: hotspot %q: pickup item %q does not exist", hotspotID, a.ItemID)
		}
	case ActionOpenPuzzle:
		if _, ok := puzzles[a.PuzzleID]; !ok {
			return fmt.Errorf("config validation: hotspot %q: puzzle %q does not exist", hotspotID, a.PuzzleID)
		}
	case ActionUseItem:
		if _, ok := items[a.RequiredItemID]; !ok {
			return fmt.Errorf("config validation: hotspot %q: required item %q does not exist", hotspotID, a.RequiredItemID)
		}
		if a.ResultAction == nil {
			return fmt.Errorf("config validation: hotspot %q: use_item action needs a result_action", hotspotID)
		}
		return validateAction(hotspotID, a.ResultAction, puzzles, items, depth+1)
	case ActionShowMessage:
		if a.Message == "" {
			return fmt.Errorf("config validation: hotspot %q: show_message action needs a message", hotspotID)
		}
	case ActionAddJournalEntry:
		if a.EntryText == "" {
			return fmt.Errorf("config validation: hotspot %q: add_journal_entry action needs entry_text", hotspotID)
		}
	default:
		return fmt.Errorf("config validation: hotspot %q: invalid action kind %q", hotspotID, a.Kind)
	}
	return nil
}

func validateVisibility(hs HotSpot, puzzles map[string]*Puzzle, items map[string]*Item, hotspots map[string]bool) error {
	v := hs.VisibleWhen
	if v == nil {
		return nil
	}
	var ok bool
	switch v.Type {
	case VisibleAlways:
		return nil
	case VisiblePuzzleSolved:
		_, ok = puzzles[v.TargetID]
	case VisibleItemCollected:
		_, ok = items[v.TargetID]
	case VisibleObjectExamined:
		ok = hotspots[v.TargetID] && v.TargetID != hs.ID
	default:
		return fmt.Errorf("config validation: hotspot %q: invalid visible_when type %q", hs.ID, v.Type)
	}
	if !ok {
		return fmt.Errorf("config validation: hotspot %q: visible_when target %q is not a valid %s target", hs.ID, v.TargetID, v.Type)
	}
	return nil
}

func validatePuzzle(p *Puzzle, rooms map[string]*Room, items map[string]*Item) error {
	if p.Name == "" {
		return fmt.Errorf("config validation: puzzle %q: name is required", p.ID)
	}
	if _, ok := rooms[p.RoomID]; !ok {
		return fmt.Errorf("config validation: puzzle %q: room %q does not exist", p.ID, p.RoomID)
	}
	want, ok := SolutionTypeFor(p.Type)
	if !ok {
		return fmt.Errorf("config validation: puzzle %q: invalid type %q", p.ID, p.Type)
	}
	if p.Data.Type != "" && p.Data.Type != p.Type {
		return fmt.Errorf("config validation: puzzle %q: data type %q does not match puzzle type %q", p.ID, p.Data.Type, p.Type)
	}
	if p.Solution.Type != want {
		return fmt.Errorf("config validation: puzzle %q: solution type must be %q for %s puzzles, got %q", p.ID, want, p.Type, p.Solution.Type)
	}
	if err := validateSolution(p.ID, p.Solution); err != nil {
		return err
	}
	for d, data := range p.DifficultyOverrides {
		if !d.Valid() {
			return fmt.Errorf("config validation: puzzle %q: override for unknown difficulty %q", p.ID, d)
		}
		if data.Type != "" && data.Type != p.Type {
			return fmt.Errorf("config validation: puzzle %q: %s override type %q does not match puzzle type %q", p.ID, d, data.Type, p.Type)
		}
	}
	for d, n := range p.MaxAttempts {
		if !d.Valid() {
			return fmt.Errorf("config validation: puzzle %q: max_attempts for unknown difficulty %q", p.ID, d)
		}
		if n < 0 {
			return fmt.Errorf("config validation: puzzle %q: max_attempts[%s] cannot be negative", p.ID, d)
		}
	}

	tiers := make(map[int]bool, len(p.Hints))
	for _, h := range p.Hints {
		if h.Tier < 1 || h.Tier > len(p.Hints) {
			return fmt.Errorf("config validation: puzzle %q: hint tiers must run 1..%d, got %d", p.ID, len(p.Hints), h.Tier)
		}
		if tiers[h.Tier] {
			return fmt.Errorf("config validation: puzzle %q: duplicate hint tier %d", p.ID, h.Tier)
		}
		if h.Text == "" {
			return fmt.Errorf("config validation: puzzle %q: hint tier %d has no text", p.ID, h.Tier)
		}
		tiers[h.Tier] = true
	}

	if p.RewardItemID != "" {
		if _, ok := items[p.RewardItemID]; !ok {
			return fmt.Errorf("config validation: puzzle %q: reward item %q does not exist", p.ID, p.RewardItemID)
		}
	}
	if p.Type == ItemCombination {
		for _, id := range p.Solution.ItemIDs {
			if _, ok := items[id]; !ok {
				return fmt.Errorf("config validation: puzzle %q: solution item %q does not exist", p.ID, id)
			}
		}
		payloads := []PuzzleData{p.Data}
		for _, data := range p.DifficultyOverrides {
			payloads = append(payloads, data)
		}
		for _, data := range payloads {
			if _, ok := items[data.ResultItemID]; data.ResultItemID != "" && !ok {
				return fmt.Errorf("config validation: puzzle %q: result item %q does not exist", p.ID, data.ResultItemID)
			}
		}
	}
	return nil
}

func validateSolution(puzzleID string, s Solution) error {
	empty := false
	switch s.Type {
	case SolutionCode:
		empty = s.Code == ""
	case SolutionText:
		empty = len(s.Answers) == 0
	case SolutionPattern:
		empty = len(s.Pattern) == 0
	case SolutionSelection:
		empty = s.CorrectID == ""
	case SolutionSequence:
		empty = len(s.Sequence) == 0
	case SolutionItems:
		empty = len(s.ItemIDs) == 0
	}
	if empty {
		return fmt.Errorf("config validation: puzzle %q: %s solution is empty", puzzleID, s.Type)
	}
	return nil
}

func validateItem(it *Item, items map[string]*Item) error {
	if it.Name == "" {
		return fmt.Errorf("config validation: item %q: name is required", it.ID)
	}
	for _, other := range it.CanCombineWith {
		if _, ok := items[other]; !ok {
			return fmt.Errorf("config validation: item %q: combines with unknown item %q", it.ID, other)
		}
		if other == it.ID {
			return fmt.Errorf("config validation: item %q: cannot combine with itself", it.ID)
		}
	}
	if len(it.CanCombineWith) > 0 {
		if _, ok := items[it.CombinationResult]; !ok {
			return fmt.Errorf("config validation: item %q: combination_result %q does not exist", it.ID, it.CombinationResult)
		}
	}
	return nil
}

// Format is the encoding of a campaign file
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the encoding from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported campaign file extension: %s", path)
}

// ParseCatalog decodes, normalizes and validates a campaign
func ParseCatalog(data []byte, format Format) (*Catalog, error) {
	var c Catalog
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse campaign json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse campaign yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported campaign format %q", format)
	}

	c.Normalize()
	if err := ValidateCatalog(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadCatalog loads a campaign from a JSON or YAML file
func LoadCatalog(filename string) (*Catalog, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	path := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" && strings.HasPrefix(filename, "configs/") {
		path = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
	}

	return ReadCatalogFile(path)
}

// ReadCatalogFile loads a campaign from exactly path
func ReadCatalogFile(path string) (*Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data, format)
}

// DefaultCatalog returns a small built-in campaign used when no campaign
// files are available
func DefaultCatalog() *Catalog {
	c := &Catalog{
		Name:        "default",
		Description: "Built-in single room campaign",
		Intro:       "The door clicks shut behind you. Find the way out!",
		Victory:     "You escaped!",
		Rooms: []Room{
			{
				ID:          "study",
				Name:        "The Study",
				Theme:       "library",
				Description: "A cramped study with a locked door and a cluttered desk.",
				HotSpots: []HotSpot{
					{
						ID: "study-note", X: 10, Y: 50, Width: 15, Height: 10,
						Label: "Crumpled Note", Type: HotSpotExamine,
						Action: Action{Kind: ActionAddJournalEntry, EntryText: "The note reads: the code is the year 1984."},
					},
					{
						ID: "study-door", X: 75, Y: 20, Width: 15, Height: 60,
						Label: "Locked Door", Type: HotSpotPuzzle,
						Action: Action{Kind: ActionOpenPuzzle, PuzzleID: "study-door-lock"},
					},
				},
				PuzzleIDs:         []string{"study-door-lock"},
				RequiredPuzzleIDs: []string{"study-door-lock"},
				ExitCondition:     ExitCondition{Type: ExitAllRequiredPuzzles},
			},
		},
		Puzzles: []Puzzle{
			{
				ID:          "study-door-lock",
				RoomID:      "study",
				Type:        CodeEntry,
				Name:        "Door Lock",
				Description: "A four digit keypad.",
				Data:        PuzzleData{Type: CodeEntry, CodeLength: 4, CorrectCode: "1984", ClueText: "Read the note on the desk."},
				Solution:    Solution{Type: SolutionCode, Code: "1984"},
				Hints: []Hint{
					{Tier: 1, Text: "Something on the desk has writing on it.", AutoShowOnEasy: true},
					{Tier: 2, Text: "The code is 1984."},
				},
				RewardClue: "The door swings open!",
			},
		},
		Items: []Item{},
	}
	c.Normalize()
	return c
}
