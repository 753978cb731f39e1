package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateCatalog(t *testing.T) {
	if err := ValidateCatalog(createTestCatalog()); err != nil {
		t.Fatalf("Expected valid catalog, got %v", err)
	}
	if err := ValidateCatalog(DefaultCatalog()); err != nil {
		t.Fatalf("Expected default catalog to be valid, got %v", err)
	}
}

func TestValidateCatalogErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Catalog)
		errMsg string
	}{
		{"missing name", func(c *Catalog) { c.Name = "" }, "name is required"},
		{"no rooms", func(c *Catalog) { c.Rooms = nil }, "at least one room"},
		{"duplicate room", func(c *Catalog) { c.Rooms[1].ID = "library" }, "duplicate room id"},
		{"duplicate puzzle", func(c *Catalog) { c.Puzzles[1].ID = "library-code" }, "duplicate puzzle id"},
		{"duplicate item", func(c *Catalog) { c.Items[1].ID = "brass-key" }, "duplicate item id"},
		{"unknown start room", func(c *Catalog) { c.StartRoomID = "attic" }, "start_room_id"},
		{"unknown next room", func(c *Catalog) { c.Rooms[0].NextRoomID = "attic" }, "next_room_id"},
		{"room cycle", func(c *Catalog) { c.Rooms[1].NextRoomID = "library" }, "loops back"},
		{"bad exit condition", func(c *Catalog) { c.Rooms[0].ExitCondition.Type = "find_key" }, "unsupported exit_condition"},
		{"unknown room puzzle", func(c *Catalog) { c.Rooms[0].PuzzleIDs = append(c.Rooms[0].PuzzleIDs, "ghost") }, "does not exist"},
		{"foreign puzzle", func(c *Catalog) { c.Rooms[0].PuzzleIDs = append(c.Rooms[0].PuzzleIDs, "arcade-score") }, "belongs to room"},
		{"required not listed", func(c *Catalog) { c.Rooms[0].PuzzleIDs = c.Rooms[0].PuzzleIDs[:1] }, "not in puzzle_ids"},
		{"duplicate hotspot", func(c *Catalog) { c.Rooms[0].HotSpots[1].ID = "globe" }, "duplicate hotspot id"},
		{"hotspot off room", func(c *Catalog) { c.Rooms[0].HotSpots[0].X = 95 }, "past the room edge"},
		{"negative coordinate", func(c *Catalog) { c.Rooms[0].HotSpots[0].Y = -1 }, "must be between"},
		{"zero size", func(c *Catalog) { c.Rooms[0].HotSpots[0].Width = 0 }, "must be positive"},
		{"bad hotspot type", func(c *Catalog) { c.Rooms[0].HotSpots[0].Type = "portal" }, "invalid type"},
		{"bad action", func(c *Catalog) { c.Rooms[0].HotSpots[0].Action.Kind = "teleport" }, "invalid action kind"},
		{"pickup unknown item", func(c *Catalog) { c.Rooms[0].HotSpots[4].Action.ItemID = "crown" }, "pickup item"},
		{"nested unknown puzzle", func(c *Catalog) {
			c.Rooms[0].HotSpots[5].Action.ResultAction.PuzzleID = "ghost"
		}, "puzzle \"ghost\" does not exist"},
		{"use_item without result", func(c *Catalog) { c.Rooms[0].HotSpots[5].Action.ResultAction = nil }, "needs a result_action"},
		{"visibility target", func(c *Catalog) { c.Rooms[0].HotSpots[4].VisibleWhen.TargetID = "ghost" }, "visible_when target"},
		{"self visibility", func(c *Catalog) {
			c.Rooms[0].HotSpots[6].VisibleWhen.TargetID = "trapdoor"
		}, "visible_when target"},
		{"solution type mismatch", func(c *Catalog) { c.Puzzles[0].Solution.Type = SolutionText }, "solution type must be"},
		{"empty solution", func(c *Catalog) { c.Puzzles[0].Solution.Code = "" }, "solution is empty"},
		{"override type", func(c *Catalog) {
			c.Puzzles[0].DifficultyOverrides[Hard] = PuzzleData{Type: Riddle}
		}, "override type"},
		{"override difficulty", func(c *Catalog) {
			c.Puzzles[0].DifficultyOverrides["nightmare"] = PuzzleData{}
		}, "unknown difficulty"},
		{"negative attempts", func(c *Catalog) { c.Puzzles[0].MaxAttempts[Hard] = -1 }, "cannot be negative"},
		{"hint gap", func(c *Catalog) { c.Puzzles[0].Hints[2].Tier = 4 }, "hint tiers must run"},
		{"hint duplicate", func(c *Catalog) { c.Puzzles[0].Hints[2].Tier = 2 }, "duplicate hint tier"},
		{"unknown reward item", func(c *Catalog) { c.Puzzles[2].RewardItemID = "crown" }, "reward item"},
		{"unknown combine partner", func(c *Catalog) { c.Items[2].CanCombineWith = []string{"glue"} }, "combines with unknown item"},
		{"unknown combine result", func(c *Catalog) { c.Items[2].CombinationResult = "robot" }, "combination_result"},
		{"narrative for unknown room", func(c *Catalog) { c.Narratives["attic"] = Narrative{Intro: "Dark."} }, "narrative for unknown room"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := createTestCatalog()
			tt.mutate(c)
			err := ValidateCatalog(c)
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.errMsg)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Expected error containing %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

const yamlCampaign = `
name: Tiny
description: One room
rooms:
  - id: cell
    name: Cell
    theme: prison
    description: Stone walls.
    hot_spots:
      - id: lock
        x: 40
        y: 40
        width: 10
        height: 10
        label: Lock
        type: puzzle
        action:
          kind: open_puzzle
          puzzle_id: cell-riddle
    puzzle_ids: [cell-riddle]
    required_puzzle_ids: [cell-riddle]
puzzles:
  - id: cell-riddle
    room_id: cell
    type: riddle
    name: Riddle
    data:
      riddle_text: What has keys but opens no locks?
      acceptable_answers: [piano, a piano]
    solution:
      answers: [piano, a piano]
    hints:
      - tier: 1
        text: It makes music.
items: []
`

func TestParseCatalogYAML(t *testing.T) {
	c, err := ParseCatalog([]byte(yamlCampaign), FormatYAML)
	if err != nil {
		t.Fatalf("ParseCatalog failed: %v", err)
	}
	room, err := c.FindRoom("cell")
	if err != nil {
		t.Fatal(err)
	}
	if room.ExitCondition.Type != ExitAllRequiredPuzzles {
		t.Errorf("Expected default exit condition, got %q", room.ExitCondition.Type)
	}
	if room.HotSpots[0].RoomID != "cell" {
		t.Errorf("Expected hotspot room id filled, got %q", room.HotSpots[0].RoomID)
	}
	p, err := c.FindPuzzle("cell-riddle")
	if err != nil {
		t.Fatal(err)
	}
	if p.Solution.Type != SolutionText || p.Data.Type != Riddle {
		t.Errorf("Expected normalized types, got %q / %q", p.Solution.Type, p.Data.Type)
	}
	if got := ValidateSolution(p, Attempt{Value: "  A Piano "}, Medium); !got.Correct {
		t.Error("Expected case-insensitive riddle answer")
	}
}

func TestParseCatalogJSON(t *testing.T) {
	data := `{"name":"Broken","rooms":[{"id":"a","name":"A","next_room_id":"b"}],"puzzles":[],"items":[]}`
	if _, err := ParseCatalog([]byte(data), FormatJSON); err == nil || !strings.Contains(err.Error(), "next_room_id") {
		t.Errorf("Expected validation error, got %v", err)
	}
	if _, err := ParseCatalog([]byte("{not json"), FormatJSON); err == nil {
		t.Error("Expected parse error")
	}
	if _, err := ParseCatalog([]byte(data), "toml"); err == nil {
		t.Error("Expected unsupported format error")
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"configs/classic.json": FormatJSON,
		"a/b/tiny.yaml":        FormatYAML,
		"TINY.YML":             FormatYAML,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		if err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	if _, err := FormatFromPath("campaign.toml"); err == nil {
		t.Error("Expected error for .toml")
	}
}

func TestLoadCatalogConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tiny.yaml"), []byte(yamlCampaign), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_DIR", dir)

	c, err := LoadCatalog("configs/tiny.yaml")
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if c.Name != "Tiny" {
		t.Errorf("Expected Tiny, got %q", c.Name)
	}

	if _, err := LoadCatalog("configs/missing.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestCampaignRoute(t *testing.T) {
	c := createTestCatalog()
	route := c.CampaignRoute()
	if len(route) != 2 || route[0] != "library" || route[1] != "arcade" {
		t.Errorf("Unexpected route %v", route)
	}
	c.StartRoomID = "arcade"
	if route := c.CampaignRoute(); len(route) != 1 {
		t.Errorf("Expected single room route, got %v", route)
	}
}

func TestParseDifficultyAndMode(t *testing.T) {
	if d, err := ParseDifficulty(" HARD "); err != nil || d != Hard {
		t.Errorf("ParseDifficulty = %q, %v", d, err)
	}
	if _, err := ParseDifficulty("nightmare"); err == nil {
		t.Error("Expected invalid difficulty")
	}
	if m, err := ParseMode(""); err != nil || m != ModeCampaign {
		t.Errorf("Expected empty mode to mean campaign, got %q, %v", m, err)
	}
	if _, err := ParseMode("arena"); err == nil {
		t.Error("Expected invalid mode")
	}
}
