package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/escape-room-game/game/engine"
	"github.com/wricardo/escape-room-game/game/service"
)

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nCampaign: %s (%s)\nDifficulty: %s | Mode: %s | Status: %s\nCreated: %s\n\n%s",
		session.ID, session.CampaignName, session.CampaignID,
		session.Difficulty, session.Mode, session.Status,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatState(session.State))
}

func formatState(state *engine.StateView) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Status: %s | Difficulty: %s | Hints left: %d | Time: %s\n",
		state.Status, state.Difficulty, state.HintsRemaining, formatElapsed(state.ElapsedSeconds))

	if room := state.Room; room != nil {
		fmt.Fprintf(&b, "\nROOM: %s (%s)\n%s\n", room.Name, room.ID, room.Description)
		if room.Complete {
			b.WriteString("The way out is open. Use continue_room.\n")
		}

		b.WriteString("\nHotspots:\n")
		for _, hs := range room.HotSpots {
			marker := " "
			if hs.Discovered {
				marker = "✓"
			} else if hs.Glow {
				marker = "*"
			}
			fmt.Fprintf(&b, " %s %s - %s [%s]\n", marker, hs.ID, hs.Label, hs.Type)
		}

		solved := make(map[string]bool, len(state.SolvedPuzzleIDs))
		for _, id := range state.SolvedPuzzleIDs {
			solved[id] = true
		}
		if len(room.RequiredPuzzleIDs) > 0 {
			b.WriteString("\nRequired puzzles:\n")
			for _, id := range room.RequiredPuzzleIDs {
				status := "unsolved"
				if solved[id] {
					status = "solved"
				}
				fmt.Fprintf(&b, " - %s (%s)\n", id, status)
			}
		}
	}

	b.WriteString("\nInventory:")
	if len(state.Inventory) == 0 {
		b.WriteString(" empty\n")
	} else {
		b.WriteString("\n")
		for _, item := range state.Inventory {
			selected := ""
			if item.Selected {
				selected = " (selected)"
			}
			fmt.Fprintf(&b, " - %s: %s%s\n", item.ID, item.Name, selected)
		}
	}
	fmt.Fprintf(&b, "\nJournal entries: %d\n", len(state.Journal))

	if msg := state.UI.ActiveMessage; msg != "" {
		fmt.Fprintf(&b, "\nMessage: %s\n", msg)
	}
	if desc := state.UI.ExamineDescription; desc != "" {
		fmt.Fprintf(&b, "\nExamining %s: %s\n", state.UI.ExamineObjectID, desc)
	}

	switch state.Status {
	case engine.StatusCompleted:
		b.WriteString("\n🎉 ESCAPED!")
	case engine.StatusNotStarted:
		b.WriteString("\nThe game has not started. Use reset_game.")
	}
	return b.String()
}

func formatActionResult(result *service.ActionResult) string {
	var b strings.Builder

	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}
	if i := result.Interaction; i != nil {
		if i.Description != "" {
			fmt.Fprintf(&b, "%s\n", i.Description)
		}
		if i.PuzzleID != "" {
			fmt.Fprintf(&b, "Puzzle opened: %s (use the puzzle tool to read it)\n", i.PuzzleID)
		}
		if i.PickedUpItem != "" {
			fmt.Fprintf(&b, "Picked up: %s\n", i.PickedUpItem)
		}
		if i.JournalEntry != nil {
			fmt.Fprintf(&b, "Journal: %s\n", i.JournalEntry.Text)
		}
	}
	if a := result.Attempt; a != nil {
		switch {
		case a.AlreadySolved:
			b.WriteString("Already solved.\n")
		case a.Correct:
			b.WriteString("✅ Correct!\n")
		default:
			fmt.Fprintf(&b, "❌ Wrong. Attempts used: %d", a.AttemptsUsed)
			if a.AttemptsRemaining > 0 {
				fmt.Fprintf(&b, ", remaining before lockout: %d", a.AttemptsRemaining)
			}
			b.WriteString("\n")
		}
		if a.Locked && a.LockedUntil != nil {
			fmt.Fprintf(&b, "🔒 Locked until %s\n", a.LockedUntil.Format("15:04:05"))
		}
		if a.RoomComplete {
			b.WriteString("Room complete!\n")
		}
		if a.Narrative != "" {
			fmt.Fprintf(&b, "%s\n", a.Narrative)
		}
	}
	if h := result.Hint; h != nil {
		b.WriteString(formatHintStatus(h))
		b.WriteString("\n")
	}
	if c := result.Combine; c != nil {
		fmt.Fprintf(&b, "Combined %s into %s\n", strings.Join(c.Consumed, " + "), c.Result.Name)
	}
	if s := result.Selection; s != nil && s.Combined == nil {
		if s.SelectedItemID != "" {
			fmt.Fprintf(&b, "Selected: %s\n", s.SelectedItemID)
		} else {
			b.WriteString("Selection cleared\n")
		}
	}
	if p := result.Progression; p != nil {
		if p.Narrative != "" {
			fmt.Fprintf(&b, "%s\n", p.Narrative)
		}
		if p.ToRoomID != "" {
			fmt.Fprintf(&b, "Entered room: %s\n", p.ToRoomID)
		}
	}
	for _, e := range result.Events {
		fmt.Fprintf(&b, "• %s: %s\n", e.Type, e.Message)
	}

	b.WriteString("\n")
	b.WriteString(formatState(result.State))
	return b.String()
}

func formatPuzzle(p *engine.PuzzleView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PUZZLE: %s (%s) [%s]\n%s\n", p.Name, p.ID, p.Type, p.Description)
	if p.Solved {
		b.WriteString("Solved.\n")
	}

	d := p.Data
	switch p.Type {
	case engine.CodeEntry:
		fmt.Fprintf(&b, "Code length: %d\n", d.CodeLength)
		if d.ClueText != "" {
			fmt.Fprintf(&b, "Clue: %s\n", d.ClueText)
		}
	case engine.Riddle:
		fmt.Fprintf(&b, "Riddle: %s\n", d.RiddleText)
	case engine.PatternMatch:
		fmt.Fprintf(&b, "Symbols: %s (grid %d)\n", strings.Join(d.Symbols, ", "), d.GridSize)
	case engine.LogicDeduction:
		for _, clue := range d.Clues {
			fmt.Fprintf(&b, "- %s\n", clue)
		}
		b.WriteString("Options:\n")
		for _, opt := range d.Options {
			fmt.Fprintf(&b, "  %s: %s\n", opt.ID, opt.Label)
		}
	case engine.HiddenSequence:
		fmt.Fprintf(&b, "Scrambled: %s\n", strings.Join(d.ScrambledDisplay, ", "))
	case engine.ItemCombination:
		fmt.Fprintf(&b, "Needs %d items\n", len(d.RequiredItems))
	}

	if p.MaxAttempts > 0 {
		fmt.Fprintf(&b, "Attempts: %d/%d\n", p.AttemptsUsed, p.MaxAttempts)
	}
	if p.LockedUntil != nil {
		fmt.Fprintf(&b, "🔒 Locked until %s\n", p.LockedUntil.Format("15:04:05"))
	}
	for _, h := range p.HintsRevealed {
		fmt.Fprintf(&b, "Hint %d: %s\n", h.Tier, h.Text)
	}
	if p.HasMoreHints {
		b.WriteString("More hints are available (reveal_hint).\n")
	}
	return b.String()
}

func formatHintStatus(h *engine.HintStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hints for %s: %d/%d revealed, %d left in budget\n",
		h.PuzzleID, h.RevealedTier, h.TotalTiers, h.HintsRemaining)
	for _, hint := range h.AutoHints {
		fmt.Fprintf(&b, "Free hint: %s\n", hint.Text)
	}
	for _, hint := range h.Revealed {
		fmt.Fprintf(&b, "Hint %d: %s\n", hint.Tier, hint.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatJournal(entries []engine.JournalEntry) string {
	if len(entries) == 0 {
		return "The journal is empty."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Journal (%d entries):\n", len(entries))
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, e.RoomID, e.Text)
	}
	return b.String()
}

func formatElapsed(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
