package engine

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

// testClock is a settable clock for lockout tests
type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// createTestCatalog returns a two room campaign covering every action kind
func createTestCatalog() *Catalog {
	c := &Catalog{
		Name:        "Test Campaign",
		Description: "Library and arcade",
		Intro:       "Welcome, escapee.",
		Victory:     "You escaped every room!",
		Rooms: []Room{
			{
				ID:          "library",
				Name:        "The Library",
				Theme:       "library",
				Description: "Dusty shelves everywhere.",
				HotSpots: []HotSpot{
					{ID: "globe", X: 5, Y: 5, Width: 10, Height: 10, Label: "Globe", Type: HotSpotExamine, GlowOnEasy: true,
						Action: Action{Kind: ActionExamine, Description: "Someone scratched 3141 into the globe."}},
					{ID: "note", X: 20, Y: 5, Width: 10, Height: 10, Label: "Note", Type: HotSpotExamine,
						Action: Action{Kind: ActionAddJournalEntry, EntryText: "Red comes first."}},
					{ID: "desk", X: 40, Y: 40, Width: 20, Height: 20, Label: "Desk", Type: HotSpotPuzzle,
						Action: Action{Kind: ActionOpenPuzzle, PuzzleID: "library-code"}},
					{ID: "painting", X: 70, Y: 5, Width: 20, Height: 20, Label: "Painting", Type: HotSpotPuzzle,
						Action: Action{Kind: ActionOpenPuzzle, PuzzleID: "library-pattern"}},
					{ID: "drawer", X: 40, Y: 65, Width: 10, Height: 5, Label: "Brass Key", Type: HotSpotPickup,
						Action:      Action{Kind: ActionPickup, ItemID: "brass-key"},
						VisibleWhen: &Visibility{Type: VisiblePuzzleSolved, TargetID: "library-code"}},
					{ID: "cabinet", X: 80, Y: 60, Width: 15, Height: 30, Label: "Locked Cabinet", Type: HotSpotUseItem,
						Action: Action{Kind: ActionUseItem, RequiredItemID: "brass-key",
							ResultAction: &Action{Kind: ActionOpenPuzzle, PuzzleID: "library-riddle"}}},
					{ID: "trapdoor", X: 5, Y: 80, Width: 10, Height: 10, Label: "Trapdoor", Type: HotSpotExamine,
						Action:      Action{Kind: ActionShowMessage, Message: "It is nailed shut."},
						VisibleWhen: &Visibility{Type: VisibleObjectExamined, TargetID: "globe"}},
				},
				PuzzleIDs:         []string{"library-code", "library-pattern", "library-riddle"},
				RequiredPuzzleIDs: []string{"library-code", "library-riddle"},
				NextRoomID:        "arcade",
			},
			{
				ID:          "arcade",
				Name:        "The Arcade",
				Theme:       "arcade",
				Description: "Blinking cabinets.",
				HotSpots: []HotSpot{
					{ID: "bin", X: 10, Y: 70, Width: 10, Height: 10, Label: "Broken Joystick", Type: HotSpotPickup,
						Action: Action{Kind: ActionPickup, ItemID: "broken-joystick"}},
					{ID: "shelf", X: 30, Y: 10, Width: 10, Height: 10, Label: "Circuit Board", Type: HotSpotPickup,
						Action: Action{Kind: ActionPickup, ItemID: "circuit-board"}},
					{ID: "machine", X: 50, Y: 30, Width: 20, Height: 40, Label: "High Score Machine", Type: HotSpotPuzzle,
						Action: Action{Kind: ActionOpenPuzzle, PuzzleID: "arcade-score"}},
				},
				PuzzleIDs:         []string{"arcade-score"},
				RequiredPuzzleIDs: []string{"arcade-score"},
			},
		},
		Puzzles: []Puzzle{
			{
				ID: "library-code", RoomID: "library", Type: CodeEntry, Name: "Desk Lock",
				Description: "A combination lock.",
				Data:        PuzzleData{CodeLength: 4, CorrectCode: "3141", ClueText: "Look at the globe."},
				DifficultyOverrides: map[Difficulty]PuzzleData{
					Hard: {CodeLength: 6, CorrectCode: "314159", ClueText: "More digits of pi."},
				},
				Solution: Solution{Code: "3141"},
				Hints: []Hint{
					{Tier: 1, Text: "Spin the globe.", AutoShowOnEasy: true},
					{Tier: 2, Text: "Think of pi."},
					{Tier: 3, Text: "The code is 3141."},
				},
				RewardClue:  "The desk drawer clicks open.",
				MaxAttempts: map[Difficulty]int{Hard: 3},
			},
			{
				ID: "library-pattern", RoomID: "library", Type: PatternMatch, Name: "Painting",
				Data: PuzzleData{Symbols: []string{"red", "blue", "green", "yellow"}, GridSize: 4,
					CorrectPattern: []string{"red", "blue", "green", "yellow"}},
				Solution: Solution{Pattern: []string{"red", "blue", "green", "yellow"}},
				Hints:    []Hint{{Tier: 1, Text: "Read your journal."}},
			},
			{
				ID: "library-riddle", RoomID: "library", Type: Riddle, Name: "Cabinet Riddle",
				Data: PuzzleData{RiddleText: "I have pages but no story of my own.",
					AcceptableAnswers: []string{"book", "a book", "books"}},
				Solution:     Solution{Answers: []string{"book", "a book", "books"}},
				Hints:        []Hint{{Tier: 1, Text: "You are in a library."}},
				RewardItemID: "arcade-token",
			},
			{
				ID: "arcade-score", RoomID: "arcade", Type: CodeEntry, Name: "High Score",
				Data:     PuzzleData{CodeLength: 4, CorrectCode: "1337"},
				Solution: Solution{Code: "1337"},
			},
		},
		Items: []Item{
			{ID: "brass-key", Name: "Brass Key", Description: "Old and heavy.", IsKey: true},
			{ID: "arcade-token", Name: "Arcade Token", Description: "Good for one game."},
			{ID: "broken-joystick", Name: "Broken Joystick", Description: "Missing its board.",
				CanCombineWith: []string{"circuit-board"}, CombinationResult: "repaired-joystick"},
			{ID: "circuit-board", Name: "Circuit Board", Description: "A tiny green board."},
			{ID: "repaired-joystick", Name: "Repaired Joystick", Description: "Good as new."},
		},
		Narratives: map[string]Narrative{
			"library": {Intro: "Books tower over you.", Outro: "The library door creaks open."},
			"arcade":  {Intro: "Neon everywhere.", Outro: "Game over, you win."},
		},
	}
	c.Normalize()
	return c
}

// newTestEngine starts a game on the test catalog with a settable clock
func newTestEngine(t *testing.T, d Difficulty, mode GameMode) (*GameEngine, *testClock) {
	t.Helper()
	clock := &testClock{t: testNow}
	e, err := NewEngine(createTestCatalog(), WithClock(clock.Now))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	if err := e.StartNewGame(d, mode, ""); err != nil {
		t.Fatalf("Failed to start game: %v", err)
	}
	return e, clock
}

// solveLibrary solves the library's required puzzles the way a player would
func solveLibrary(t *testing.T, e *GameEngine) {
	t.Helper()
	code := "3141"
	if e.GetState().Progress.Difficulty == Hard {
		code = "314159"
	}
	if res, err := e.AttemptPuzzle("library-code", Attempt{Value: code}); err != nil || !res.Correct {
		t.Fatalf("Failed to solve library-code: %+v %v", res, err)
	}
	if _, err := e.Interact("drawer"); err != nil {
		t.Fatalf("Failed to pick up key: %v", err)
	}
	if _, err := e.Interact("cabinet"); err != nil {
		t.Fatalf("Failed to open cabinet: %v", err)
	}
	if res, err := e.AttemptPuzzle("library-riddle", Attempt{Value: "book"}); err != nil || !res.Correct {
		t.Fatalf("Failed to solve library-riddle: %+v %v", res, err)
	}
}
