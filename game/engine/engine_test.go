package engine

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine(createTestCatalog())
	if err != nil {
		t.Fatalf("Failed to create new engine: %v", err)
	}
	if engine.GetState().Progress.Status != StatusNotStarted {
		t.Errorf("Expected not_started, got %s", engine.GetState().Progress.Status)
	}
	if engine.IsGameOver() {
		t.Error("Expected game not to be over initially")
	}
	if _, err := engine.CurrentRoom(); !errors.Is(err, ErrGameNotInProgress) {
		t.Errorf("Expected ErrGameNotInProgress before start, got %v", err)
	}

	if _, err := NewEngine(nil); err == nil {
		t.Error("Expected error for nil catalog")
	}

	bad := createTestCatalog()
	bad.Rooms[0].NextRoomID = "nowhere"
	if _, err := NewEngine(bad); err == nil {
		t.Error("Expected error for invalid catalog")
	}
}

func TestStartNewGame(t *testing.T) {
	tests := []struct {
		difficulty Difficulty
		budget     int
	}{
		{Easy, EasyHintBudget},
		{Medium, MediumHintBudget},
		{Hard, HardHintBudget},
	}
	for _, tt := range tests {
		t.Run(string(tt.difficulty), func(t *testing.T) {
			e, _ := newTestEngine(t, tt.difficulty, ModeCampaign)
			p := e.GetState().Progress
			if p.Status != StatusInProgress {
				t.Errorf("Expected in_progress, got %s", p.Status)
			}
			if p.CurrentRoomID != "library" {
				t.Errorf("Expected library, got %s", p.CurrentRoomID)
			}
			if p.TotalHintsAvailable != tt.budget {
				t.Errorf("Expected hint budget %d, got %d", tt.budget, p.TotalHintsAvailable)
			}
			if p.StartedAt == nil || !p.StartedAt.Equal(testNow) {
				t.Errorf("Expected StartedAt %v, got %v", testNow, p.StartedAt)
			}
			if p.ID == "" {
				t.Error("Expected a game ID")
			}
			if diff := cmp.Diff([]string{"library"}, p.UnlockedRoomIDs); diff != "" {
				t.Errorf("Unlocked rooms mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStartNewGameIntro(t *testing.T) {
	e, _ := newTestEngine(t, Medium, ModeCampaign)
	msg := e.GetState().UI.ActiveMessage
	if !strings.HasPrefix(msg, "Welcome, escapee.") || !strings.Contains(msg, "Books tower over you.") {
		t.Errorf("Expected campaign and room intro, got %q", msg)
	}

	e, _ = newTestEngine(t, Medium, ModeFreeplay)
	if msg := e.GetState().UI.ActiveMessage; msg != "Books tower over you." {
		t.Errorf("Expected room intro only in freeplay, got %q", msg)
	}
}

func TestStartNewGameErrors(t *testing.T) {
	e, err := NewEngine(createTestCatalog())
	if err != nil {
		t.Fatal(err)
	}
	if err := e.StartNewGame("impossible", ModeCampaign, ""); !errors.Is(err, ErrInvalidDifficulty) {
		t.Errorf("Expected ErrInvalidDifficulty, got %v", err)
	}
	if err := e.StartNewGame(Easy, "speedrun", ""); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("Expected ErrInvalidMode, got %v", err)
	}
	if err := e.StartNewGame(Easy, ModeFreeplay, "attic"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("Expected ErrRoomNotFound, got %v", err)
	}
	if err := e.StartNewGame(Easy, ModeFreeplay, "arcade"); err != nil {
		t.Fatalf("Failed to start in arcade: %v", err)
	}
	if e.GetState().Progress.CurrentRoomID != "arcade" {
		t.Errorf("Expected arcade, got %s", e.GetState().Progress.CurrentRoomID)
	}
}

func TestInteractExamine(t *testing.T) {
	e, _ := newTestEngine(t, Medium, ModeCampaign)

	res, err := e.Interact("globe")
	if err != nil {
		t.Fatalf("Interact failed: %v", err)
	}
	if !res.NewlyFound || res.Action != ActionExamine {
		t.Errorf("Unexpected result: %+v", res)
	}
	if e.GetState().UI.ExamineObjectID != "globe" {
		t.Errorf("Expected examine overlay for globe, got %q", e.GetState().UI.ExamineObjectID)
	}

	res, err = e.Interact("globe")
	if err != nil {
		t.Fatal(err)
	}
	if res.NewlyFound {
		t.Error("Expected second click not to be newly found")
	}
	if got := len(e.GetState().Progress.DiscoveredObjectIDs); got != 1 {
		t.Errorf("Expected 1 discovered object, got %d", got)
	}
}

func TestInteractVisibility(t *testing.T) {
	e, _ := newTestEngine(t, Medium, ModeCampaign)

	if _, err := e.Interact("trapdoor"); !errors.Is(err, ErrHotSpotHidden) {
		t.Errorf("Expected hidden trapdoor, got %v", err)
	}
	if _, err := e.Interact("drawer"); !errors.Is(err, ErrHotSpotHidden) {
		t.Errorf("Expected hidden drawer, got %v", err)
	}
	if _, err := e.Interact("chandelier"); !errors.Is(err, ErrHotSpotNotFound) {
		t.Errorf("Expected ErrHotSpotNotFound, got %v", err)
	}

	if _, err := e.Interact("globe"); err != nil {
		t.Fatal(err)
	}
	res, err := e.Interact("trapdoor")
	if err != nil {
		t.Fatalf("Expected trapdoor visible after examining globe: %v", err)
	}
	if res.Message != "It is nailed shut." {
		t.Errorf("Unexpected message %q", res.Message)
	}
}

func TestInteractJournal(t *testing.T) {
	e, _ := newTestEngine(t, Medium, ModeCampaign)

	for i := 0; i < 2; i++ {
		res, err := e.Interact("note")
		if err != nil {
			t.Fatal(err)
		}
		if res.Message != MsgJournalAdded {
			t.Errorf("Expected %q, got %q", MsgJournalAdded, res.Message)
		}
	}
	entries := e.GetState().Journal.Entries
	if len(entries) != 1 {
		t.Fatalf("Expected journal deduplicated to 1 entry, got %d", len(entries))
	}
	if entries[0].RoomID != "library" || entries[0].Text != "Red comes first." {
		t.Errorf("Unexpected entry %+v", entries[0])
	}
}

func TestInteractUseItem(t *testing.T) {
	e, _ := newTestEngine(t, Medium, ModeCampaign)

	res, err := e.Interact("cabinet")
	if err != nil {
		t.Fatal(err)
	}
	if res.Message != MsgNeedItem {
		t.Errorf("Expected %q, got %q", MsgNeedItem, res.Message)
	}
	if e.GetState().UI.ActivePuzzleID != "" {
		t.Error("Expected no puzzle without the key")
	}

	if _, err := e.AttemptPuzzle("library-code", Attempt{Value: "3141"}); err != nil {
		t.Fatal(err)
	}
	res, err = e.Interact("drawer")
	if err != nil {
		t.Fatal(err)
	}
	if res.PickedUpItem != "brass-key" || res.Message != "Found: Brass Key!" {
		t.Errorf("Unexpected pickup result %+v", res)
	}

	res, err = e.Interact("cabinet")
	if err != nil {
		t.Fatal(err)
	}
	if res.UsedItem != "brass-key" || res.PuzzleID != "library-riddle" || res.Action != ActionOpenPuzzle {
		t.Errorf("Unexpected use_item result %+v", res)
	}
	if e.GetState().UI.ActivePuzzleID != "library-riddle" {
		t.Errorf("Expected riddle open, got %q", e.GetState().UI.ActivePuzzleID)
	}
	if e.GetState().Inventory.Has("brass-key") {
		t.Error("Expected key to be used")
	}
}

func TestInteractRequiresGameInProgress(t *testing.T) {
	e, err := NewEngine(createTestCatalog())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Interact("globe"); !errors.Is(err, ErrGameNotInProgress) {
		t.Errorf("Expected ErrGameNotInProgress, got %v", err)
	}
}

func TestAttemptPuzzle(t *testing.T) {
	e, _ := newTestEngine(t, Medium, ModeCampaign)

	res, err := e.AttemptPuzzle("library-code", Attempt{Value: "0000"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Correct || res.Feedback != FeedbackWrongCode {
		t.Errorf("Expected wrong code feedback, got %+v", res)
	}
	if res.AttemptsRemaining != -1 {
		t.Errorf("Expected unlimited attempts on medium, got %d", res.AttemptsRemaining)
	}

	res, err = e.AttemptPuzzle("library-code", Attempt{Value: "3141"})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Correct || res.RewardClue != "The desk drawer clicks open." {
		t.Errorf("Expected correct with reward clue, got %+v", res)
	}
	if res.AttemptsUsed != 2 {
		t.Errorf("Expected 2 attempts used, got %d", res.AttemptsUsed)
	}
	if res.RoomComplete {
		t.Error("Expected room incomplete until the riddle is solved")
	}
	if !e.GetState().Journal.HasEntry("The desk drawer clicks open.") {
		t.Error("Expected reward clue in journal")
	}

	again, err := e.AttemptPuzzle("library-code", Attempt{Value: "nonsense"})
	if err != nil {
		t.Fatal(err)
	}
	if !again.Correct || !again.AlreadySolved {
		t.Errorf("Expected already solved, got %+v", again)
	}
	if len(e.GetState().Journal.Entries) != 1 {
		t.Error("Expected no duplicate reward")
	}

	if _, err := e.AttemptPuzzle("missing", Attempt{}); !errors.Is(err, ErrPuzzleNotFound) {
		t.Errorf("Expected ErrPuzzleNotFound, got %v", err)
	}
}

func TestAttemptPuzzleRewardsAndNarrative(t *testing.T) {
	e, _ := newTestEngine(t, Medium, ModeCampaign)
	solveLibrary(t, e)

	if !e.GetState().Inventory.Has("arcade-token") {
		t.Error("Expected arcade token reward")
	}
	if !e.IsRoomComplete() {
		t.Error("Expected library complete")
	}
}

func TestAttemptPuzzleHardOverride(t *testing.T) {
	e, _ := newTestEngine(t, Hard, ModeCampaign)

	res, err := e.AttemptPuzzle("library-code", Attempt{Value: "3141"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Correct {
		t.Error("Expected base code to be rejected on hard")
	}
	if res.AttemptsRemaining != 2 {
		t.Errorf("Expected 2 attempts remaining, got %d", res.AttemptsRemaining)
	}

	res, err = e.AttemptPuzzle("library-code", Attempt{Value: "314159"})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Correct {
		t.Error("Expected hard code to be accepted")
	}
}

func TestAttemptPuzzleLockout(t *testing.T) {
	e, clock := newTestEngine(t, Hard, ModeCampaign)

	var res *AttemptResult
	var err error
	for i := 0; i < 3; i++ {
		res, err = e.AttemptPuzzle("library-code", Attempt{Value: "000000"})
		if err != nil {
			t.Fatal(err)
		}
	}
	if !res.Locked || res.LockedUntil == nil {
		t.Fatalf("Expected lock after 3 attempts, got %+v", res)
	}
	if want := testNow.Add(DefaultHardLockout); !res.LockedUntil.Equal(want) {
		t.Errorf("Expected locked until %v, got %v", want, res.LockedUntil)
	}

	if _, err := e.AttemptPuzzle("library-code", Attempt{Value: "314159"}); !errors.Is(err, ErrPuzzleLocked) {
		t.Errorf("Expected ErrPuzzleLocked, got %v", err)
	}
	view, err := e.PuzzleView("library-code")
	if err != nil {
		t.Fatal(err)
	}
	if view.LockedUntil == nil {
		t.Error("Expected puzzle view to report the lock")
	}

	clock.Advance(DefaultHardLockout + time.Second)
	view, err = e.PuzzleView("library-code")
	if err != nil {
		t.Fatal(err)
	}
	if view.LockedUntil != nil || view.AttemptsUsed != RetainedAttempts {
		t.Errorf("Expected an expired lock with %d attempts kept, got %+v", RetainedAttempts, view)
	}

	// limit 3 minus the 2 kept leaves a single try before the next lock
	res, err = e.AttemptPuzzle("library-code", Attempt{Value: "111111"})
	if err != nil {
		t.Fatalf("Expected lock to expire: %v", err)
	}
	if res.AttemptsUsed != 3 || res.AttemptsRemaining != 0 || !res.Locked {
		t.Errorf("Expected the one retry to lock again, got %+v", res)
	}
}

func TestAttemptPuzzleLockoutPerDifficulty(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		d    Difficulty
		want time.Duration
	}{
		{"medium default", nil, Medium, DefaultLockout},
		{"hard default", nil, Hard, DefaultHardLockout},
		{"flat override", []Option{WithLockout(time.Minute)}, Hard, time.Minute},
		{"per difficulty", []Option{WithLockouts(map[Difficulty]time.Duration{Hard: 20 * time.Second})}, Hard, 20 * time.Second},
		{"per difficulty keeps others", []Option{WithLockouts(map[Difficulty]time.Duration{Hard: 20 * time.Second})}, Medium, DefaultLockout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := createTestCatalog()
			catalog.Puzzles[0].MaxAttempts[tt.d] = 2
			e, err := NewEngine(catalog, append([]Option{WithClock(func() time.Time { return testNow })}, tt.opts...)...)
			if err != nil {
				t.Fatal(err)
			}
			if err := e.StartNewGame(tt.d, ModeCampaign, ""); err != nil {
				t.Fatal(err)
			}
			if got := e.Lockout(tt.d); got != tt.want {
				t.Errorf("Lockout(%s) = %v, want %v", tt.d, got, tt.want)
			}

			var res *AttemptResult
			for i := 0; i < 2; i++ {
				if res, err = e.AttemptPuzzle("library-code", Attempt{Value: "9"}); err != nil {
					t.Fatal(err)
				}
			}
			if res.LockedUntil == nil || !res.LockedUntil.Equal(testNow.Add(tt.want)) {
				t.Errorf("Expected lock until %v, got %+v", testNow.Add(tt.want), res.LockedUntil)
			}
			// limit 2 keeps one try
			if n := e.GetState().Progress.Attempts["library-code"]; n != 1 {
				t.Errorf("Expected 1 attempt kept, got %d", n)
			}
		})
	}
}

func TestAttemptPuzzleNoLockout(t *testing.T) {
	e, err := NewEngine(createTestCatalog(), WithLockout(0))
	if err != nil {
		t.Fatal(err)
	}
	if err := e.StartNewGame(Hard, ModeCampaign, ""); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		res, err := e.AttemptPuzzle("library-code", Attempt{Value: "000000"})
		if err != nil {
			t.Fatalf("Attempt %d: %v", i+1, err)
		}
		if res.Locked {
			t.Error("Expected no lock with zero lockout")
		}
		// 3 wrong, then the counter drops to 2 and the 4th reaches the limit again
		if want := []int{1, 2, 3, 3}[i]; res.AttemptsUsed != want {
			t.Errorf("Attempt %d: expected %d used, got %d", i+1, want, res.AttemptsUsed)
		}
	}
}

func TestPuzzleViewRedactsAnswer(t *testing.T) {
	e, _ := newTestEngine(t, Hard, ModeCampaign)
	view, err := e.PuzzleView("library-code")
	if err != nil {
		t.Fatal(err)
	}
	if view.Data.CorrectCode != "" {
		t.Errorf("Expected redacted code, got %q", view.Data.CorrectCode)
	}
	if view.Data.CodeLength != 6 {
		t.Errorf("Expected hard code length 6, got %d", view.Data.CodeLength)
	}
	if view.MaxAttempts != 3 {
		t.Errorf("Expected 3 max attempts, got %d", view.MaxAttempts)
	}
	if !view.HasMoreHints || len(view.HintsRevealed) != 0 {
		t.Errorf("Unexpected hint view: %+v", view)
	}
}

func TestRevealHint(t *testing.T) {
	e, _ := newTestEngine(t, Medium, ModeCampaign)

	status, err := e.HintStatus("library-code")
	if err != nil {
		t.Fatal(err)
	}
	if status.RevealedTier != 0 || !status.CanReveal || status.TotalTiers != 3 {
		t.Errorf("Unexpected initial status %+v", status)
	}

	for tier := 1; tier <= 3; tier++ {
		status, err = e.RevealHint("library-code")
		if err != nil {
			t.Fatalf("Reveal %d failed: %v", tier, err)
		}
		if status.Latest == nil || status.Latest.Tier != tier {
			t.Errorf("Expected tier %d, got %+v", tier, status.Latest)
		}
	}
	if status.CanReveal {
		t.Error("Expected ladder exhausted")
	}
	if status.HintsUsed != 3 || status.HintsRemaining != MediumHintBudget-3 {
		t.Errorf("Unexpected budget: used %d remaining %d", status.HintsUsed, status.HintsRemaining)
	}

	if _, err := e.RevealHint("library-code"); !errors.Is(err, ErrHintsExhausted) {
		t.Errorf("Expected ErrHintsExhausted, got %v", err)
	}
	if e.GetState().Progress.HintsUsed != 3 {
		t.Error("Expected exhausted reveal to cost nothing")
	}
}

func TestRevealHintEasyAutoTier(t *testing.T) {
	e, _ := newTestEngine(t, Easy, ModeCampaign)

	status, err := e.HintStatus("library-code")
	if err != nil {
		t.Fatal(err)
	}
	if status.RevealedTier != 1 || len(status.AutoHints) != 1 {
		t.Errorf("Expected free tier 1 on easy, got %+v", status)
	}

	status, err = e.RevealHint("library-code")
	if err != nil {
		t.Fatal(err)
	}
	if status.Latest.Tier != 2 {
		t.Errorf("Expected first paid hint to be tier 2, got %d", status.Latest.Tier)
	}
	if status.HintsUsed != 1 {
		t.Errorf("Expected 1 hint used, got %d", status.HintsUsed)
	}
}

func TestRevealHintBudget(t *testing.T) {
	e, _ := newTestEngine(t, Hard, ModeCampaign)
	e.GetState().Progress.HintsUsed = HardHintBudget

	if _, err := e.RevealHint("library-code"); !errors.Is(err, ErrNoHintsRemaining) {
		t.Errorf("Expected ErrNoHintsRemaining, got %v", err)
	}
	status, err := e.HintStatus("library-code")
	if err != nil {
		t.Fatal(err)
	}
	if status.CanReveal || status.HintsRemaining != 0 {
		t.Errorf("Unexpected status %+v", status)
	}
}

func enterArcade(t *testing.T, e *GameEngine) {
	t.Helper()
	solveLibrary(t, e)
	if _, err := e.ContinueToNextRoom(); err != nil {
		t.Fatalf("Failed to continue: %v", err)
	}
}

func TestCombineItems(t *testing.T) {
	e, _ := newTestEngine(t, Medium, ModeCampaign)
	enterArcade(t, e)

	if _, err := e.CombineItems("broken-joystick", "circuit-board"); !errors.Is(err, ErrItemNotHeld) {
		t.Errorf("Expected ErrItemNotHeld, got %v", err)
	}
	for _, id := range []string{"bin", "shelf"} {
		if _, err := e.Interact(id); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := e.CombineItems("circuit-board", "circuit-board"); !errors.Is(err, ErrCannotCombine) {
		t.Errorf("Expected ErrCannotCombine for same item, got %v", err)
	}
	if _, err := e.CombineItems("arcade-token", "circuit-board"); !errors.Is(err, ErrCannotCombine) {
		t.Errorf("Expected ErrCannotCombine without recipe, got %v", err)
	}

	// recipe lives on the joystick; order must not matter
	res, err := e.CombineItems("circuit-board", "broken-joystick")
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	if res.Result.ID != "repaired-joystick" || res.Message != "Combined into Repaired Joystick!" {
		t.Errorf("Unexpected combine result %+v", res)
	}
	want := []string{"arcade-token", "repaired-joystick"}
	if diff := cmp.Diff(want, e.GetState().Inventory.Active()); diff != "" {
		t.Errorf("Inventory mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectItem(t *testing.T) {
	e, _ := newTestEngine(t, Medium, ModeCampaign)
	enterArcade(t, e)
	for _, id := range []string{"bin", "shelf"} {
		if _, err := e.Interact(id); err != nil {
			t.Fatal(err)
		}
	}

	res, err := e.SelectItem("arcade-token")
	if err != nil {
		t.Fatal(err)
	}
	if res.SelectedItemID != "arcade-token" {
		t.Errorf("Expected token selected, got %+v", res)
	}
	res, err = e.SelectItem("arcade-token")
	if err != nil {
		t.Fatal(err)
	}
	if res.SelectedItemID != "" || e.GetState().UI.SelectedItemID != "" {
		t.Error("Expected second select to clear the selection")
	}

	if _, err := e.SelectItem("arcade-token"); err != nil {
		t.Fatal(err)
	}
	res, err = e.SelectItem("circuit-board")
	if err != nil {
		t.Fatal(err)
	}
	if res.Message != MsgItemsDontCombine || res.SelectedItemID != "circuit-board" {
		t.Errorf("Expected failed combine to move selection, got %+v", res)
	}

	res, err = e.SelectItem("broken-joystick")
	if err != nil {
		t.Fatal(err)
	}
	if res.Combined == nil || res.Combined.Result.ID != "repaired-joystick" {
		t.Errorf("Expected combination, got %+v", res)
	}
	if e.GetState().UI.SelectedItemID != "" {
		t.Error("Expected selection cleared after combining")
	}

	if _, err := e.SelectItem("brass-key"); !errors.Is(err, ErrItemNotHeld) {
		t.Errorf("Expected ErrItemNotHeld for used key, got %v", err)
	}
}

func TestContinueToNextRoomCampaign(t *testing.T) {
	e, clock := newTestEngine(t, Medium, ModeCampaign)

	if _, err := e.ContinueToNextRoom(); !errors.Is(err, ErrRoomNotComplete) {
		t.Errorf("Expected ErrRoomNotComplete, got %v", err)
	}

	solveLibrary(t, e)
	res, err := e.ContinueToNextRoom()
	if err != nil {
		t.Fatal(err)
	}
	want := &ProgressionResult{FromRoomID: "library", ToRoomID: "arcade", Narrative: "Neon everywhere."}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("Progression mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"library", "arcade"}, e.GetState().Progress.UnlockedRoomIDs); diff != "" {
		t.Errorf("Unlocked rooms mismatch (-want +got):\n%s", diff)
	}

	if _, err := e.AttemptPuzzle("arcade-score", Attempt{Value: "1337"}); err != nil {
		t.Fatal(err)
	}
	clock.Advance(10 * time.Minute)
	res, err = e.ContinueToNextRoom()
	if err != nil {
		t.Fatal(err)
	}
	if !res.GameCompleted || res.Narrative != "You escaped every room!" {
		t.Errorf("Expected victory, got %+v", res)
	}
	if !e.IsGameOver() {
		t.Error("Expected game over")
	}
	p := e.GetState().Progress
	if p.CompletedAt == nil || !p.CompletedAt.Equal(testNow.Add(10*time.Minute)) {
		t.Errorf("Unexpected CompletedAt %v", p.CompletedAt)
	}
	if _, err := e.Interact("bin"); !errors.Is(err, ErrGameNotInProgress) {
		t.Errorf("Expected ErrGameNotInProgress after victory, got %v", err)
	}
}

func TestContinueToNextRoomFreeplay(t *testing.T) {
	e, _ := newTestEngine(t, Medium, ModeFreeplay)
	solveLibrary(t, e)

	res, err := e.ContinueToNextRoom()
	if err != nil {
		t.Fatal(err)
	}
	if !res.GameCompleted || res.ToRoomID != "" {
		t.Errorf("Expected freeplay to end after one room, got %+v", res)
	}
	if res.Narrative != "The library door creaks open." {
		t.Errorf("Expected room outro, got %q", res.Narrative)
	}
}

func TestUpdateElapsed(t *testing.T) {
	e, _ := newTestEngine(t, Medium, ModeCampaign)
	if err := e.UpdateElapsed(-1); !errors.Is(err, ErrInvalidElapsed) {
		t.Errorf("Expected ErrInvalidElapsed, got %v", err)
	}
	if err := e.UpdateElapsed(95); err != nil {
		t.Fatal(err)
	}
	if e.GetState().Progress.ElapsedSeconds != 95 {
		t.Errorf("Expected 95 seconds, got %d", e.GetState().Progress.ElapsedSeconds)
	}
}

func TestResetAndSetState(t *testing.T) {
	e, _ := newTestEngine(t, Medium, ModeCampaign)
	if _, err := e.Interact("note"); err != nil {
		t.Fatal(err)
	}

	saved := *e.GetState()
	state := e.Reset()
	if state.Progress.Status != StatusNotStarted || len(state.Journal.Entries) != 0 {
		t.Errorf("Expected cleared state, got %+v", state.Progress)
	}

	if err := e.SetState(&saved); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	if !e.GetState().Journal.HasEntry("Red comes first.") {
		t.Error("Expected restored journal")
	}

	broken := saved
	broken.Progress.CurrentRoomID = "attic"
	if err := e.SetState(&broken); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("Expected ErrRoomNotFound, got %v", err)
	}
	if err := e.SetState(nil); err == nil {
		t.Error("Expected error for nil state")
	}
}

func TestDismissOverlaysAndJournal(t *testing.T) {
	e, _ := newTestEngine(t, Medium, ModeCampaign)
	if _, err := e.Interact("desk"); err != nil {
		t.Fatal(err)
	}
	if e.GetState().UI.ActivePuzzleID != "library-code" {
		t.Fatal("Expected desk to open the code puzzle")
	}
	e.DismissOverlays()
	if ui := e.GetState().UI; ui.ActivePuzzleID != "" || ui.ActiveMessage != "" {
		t.Errorf("Expected overlays closed, got %+v", ui)
	}
	if !e.ToggleJournal() {
		t.Error("Expected journal open")
	}
	if e.ToggleJournal() {
		t.Error("Expected journal closed")
	}
}

func TestView(t *testing.T) {
	e, _ := newTestEngine(t, Easy, ModeCampaign)

	view := e.View()
	if view.Room == nil || view.Room.ID != "library" {
		t.Fatalf("Expected library view, got %+v", view.Room)
	}
	if got := len(view.Room.HotSpots); got != 5 {
		t.Errorf("Expected 5 visible hotspots, got %d", got)
	}
	if !view.Room.HotSpots[0].Glow {
		t.Error("Expected globe to glow on easy")
	}

	if _, err := e.Interact("globe"); err != nil {
		t.Fatal(err)
	}
	view = e.View()
	if view.Room.HotSpots[0].Glow || !view.Room.HotSpots[0].Discovered {
		t.Error("Expected discovered globe to stop glowing")
	}
	if got := len(view.Room.HotSpots); got != 6 {
		t.Errorf("Expected trapdoor to appear, got %d hotspots", got)
	}

	e, _ = newTestEngine(t, Medium, ModeCampaign)
	if e.View().Room.HotSpots[0].Glow {
		t.Error("Expected no glow on medium")
	}
}
