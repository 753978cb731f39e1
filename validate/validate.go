// Package validate lints escape room campaign files. Beyond the schema
// checks the engine runs on load, it looks for campaigns that parse but
// cannot be played through:
//   - rooms the campaign route never reaches
//   - puzzles no visible hotspot opens, or whose items cannot be obtained
//   - required puzzles that block a room from being cleared
//   - hotspots whose visibility condition can never hold
//   - one-sided or conflicting item recipes
//   - puzzles without hints, or without a free hint on easy
package validate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/escape-room-game/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// Errors make a campaign unplayable; warnings are worth a look.
type ValidationResult struct {
	File     string
	Campaign string
	Valid    bool
	Errors   []string
	Warnings []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// ValidateFile loads and lints one campaign file
func ValidateFile(path string) ValidationResult {
	result := ValidationResult{File: filepath.Base(path), Valid: true}

	catalog, err := engine.ReadCatalogFile(path)
	if err != nil {
		result.fail("%v", err)
		return result
	}
	lint(catalog, &result)
	return result
}

// ValidateCatalog lints a campaign that is already loaded
func ValidateCatalog(c *engine.Catalog) ValidationResult {
	result := ValidationResult{Valid: true}
	if err := engine.ValidateCatalog(c); err != nil {
		result.Campaign = c.Name
		result.fail("%v", err)
		return result
	}
	lint(c, &result)
	return result
}

// ValidateDir lints every campaign file in dir, sorted by name
func ValidateDir(dir string) ([]ValidationResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read campaign dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := engine.FormatFromPath(e.Name()); err == nil {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	results := make([]ValidationResult, 0, len(files))
	for _, f := range files {
		results = append(results, ValidateFile(f))
	}
	return results, nil
}

// PrintReport writes a concise report and returns whether every campaign
// is valid
func PrintReport(w io.Writer, results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		name := result.File
		if result.Campaign != "" {
			name = fmt.Sprintf("%s (%s)", result.File, result.Campaign)
		}
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), name)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
		}
		for _, e := range result.Errors {
			fmt.Fprintln(w, "  ❌ "+e)
		}
		for _, warning := range result.Warnings {
			fmt.Fprintln(w, "  ⚠️  "+warning)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	switch {
	case len(results) == 0:
		fmt.Fprintln(w, "No campaign files found")
	case allValid:
		fmt.Fprintln(w, "✅ All campaigns are valid!")
	default:
		fmt.Fprintln(w, "❌ Some campaigns have errors")
	}
	return allValid
}

func lint(c *engine.Catalog, result *ValidationResult) {
	result.Campaign = c.Name
	checkRoute(c, result)
	checkReachability(c, result)
	checkRecipes(c, result)
	checkHints(c, result)
}

// checkRoute flags rooms that campaign mode never enters
func checkRoute(c *engine.Catalog, result *ValidationResult) {
	onRoute := make(map[string]bool)
	for _, id := range c.CampaignRoute() {
		onRoute[id] = true
	}
	for _, room := range c.Rooms {
		if !onRoute[room.ID] {
			result.warn("room %q is not on the campaign route (freeplay only)", room.ID)
		}
		if len(room.RequiredPuzzleIDs) == 0 {
			result.warn("room %q has no required puzzles and clears immediately", room.ID)
		}
	}
}

// reach is what a player can eventually get to across the whole campaign
type reach struct {
	rooms    map[string]bool
	hotspots map[string]bool
	items    map[string]bool
	opened   map[string]bool
	solvable map[string]bool
}

// explore grows the reachable set until nothing changes, like a flood fill
// over rooms, hotspots, items and puzzles
func explore(c *engine.Catalog) *reach {
	r := &reach{
		rooms:    map[string]bool{},
		hotspots: map[string]bool{},
		items:    map[string]bool{},
		opened:   map[string]bool{},
		solvable: map[string]bool{},
	}
	// campaign mode starts in the first room
	if first := c.FirstRoomID(); first != "" {
		r.rooms[first] = true
	}

	for changed := true; changed; {
		changed = false
		mark := func(set map[string]bool, id string) {
			if id != "" && !set[id] {
				set[id] = true
				changed = true
			}
		}

		for _, room := range c.Rooms {
			if !r.rooms[room.ID] {
				continue
			}
			for _, hs := range room.HotSpots {
				if !r.visible(hs.VisibleWhen) {
					continue
				}
				mark(r.hotspots, hs.ID)
				r.follow(&hs.Action, mark)
			}
			cleared := true
			for _, id := range room.RequiredPuzzleIDs {
				if !r.solvable[id] {
					cleared = false
				}
			}
			if cleared {
				mark(r.rooms, room.NextRoomID)
			}
		}

		for _, p := range c.Puzzles {
			if !r.opened[p.ID] || r.solvable[p.ID] {
				continue
			}
			if p.Type == engine.ItemCombination && !r.hasAll(p.Solution.ItemIDs) {
				continue
			}
			mark(r.solvable, p.ID)
			mark(r.items, p.RewardItemID)
		}

		for i := range c.Items {
			for j := range c.Items {
				a, b := &c.Items[i], &c.Items[j]
				if !r.items[a.ID] || !r.items[b.ID] {
					continue
				}
				if result, ok := engine.CanCombine(a, b); ok {
					mark(r.items, result)
				}
			}
		}
	}
	return r
}

func (r *reach) visible(cond *engine.Visibility) bool {
	if cond == nil {
		return true
	}
	switch cond.Type {
	case engine.VisiblePuzzleSolved:
		return r.solvable[cond.TargetID]
	case engine.VisibleItemCollected:
		return r.items[cond.TargetID]
	case engine.VisibleObjectExamined:
		return r.hotspots[cond.TargetID]
	}
	return true
}

func (r *reach) follow(a *engine.Action, mark func(map[string]bool, string)) {
	for depth := 0; a != nil && depth <= engine.MaxActionDepth; depth++ {
		switch a.Kind {
		case engine.ActionPickup:
			mark(r.items, a.ItemID)
			return
		case engine.ActionOpenPuzzle:
			mark(r.opened, a.PuzzleID)
			return
		case engine.ActionUseItem:
			if !r.items[a.RequiredItemID] {
				return
			}
			a = a.ResultAction
		default:
			return
		}
	}
}

func (r *reach) hasAll(ids []string) bool {
	for _, id := range ids {
		if !r.items[id] {
			return false
		}
	}
	return true
}

// checkReachability plays the campaign symbolically and reports what a
// player can never get to
func checkReachability(c *engine.Catalog, result *ValidationResult) {
	r := explore(c)

	required := make(map[string]string)
	for _, room := range c.Rooms {
		for _, id := range room.RequiredPuzzleIDs {
			required[id] = room.ID
		}
		for _, hs := range room.HotSpots {
			if r.rooms[room.ID] && !r.hotspots[hs.ID] {
				result.warn("hotspot %q in room %q never becomes visible", hs.ID, room.ID)
			}
		}
	}

	for _, p := range c.Puzzles {
		if !r.rooms[p.RoomID] || r.solvable[p.ID] {
			continue
		}
		reason := "no visible hotspot opens it"
		if r.opened[p.ID] {
			reason = "its items cannot all be obtained"
		}
		if roomID, ok := required[p.ID]; ok {
			result.fail("room %q cannot be cleared: puzzle %q is unreachable (%s)", roomID, p.ID, reason)
		} else {
			result.warn("optional puzzle %q is unreachable (%s)", p.ID, reason)
		}
	}
}

// checkRecipes flags recipes only one item knows about and pairs that
// disagree on the result
func checkRecipes(c *engine.Catalog, result *ValidationResult) {
	items := make(map[string]*engine.Item, len(c.Items))
	for i := range c.Items {
		items[c.Items[i].ID] = &c.Items[i]
	}
	for _, a := range c.Items {
		for _, otherID := range a.CanCombineWith {
			b, ok := items[otherID]
			if !ok {
				continue
			}
			listed := false
			for _, id := range b.CanCombineWith {
				if id == a.ID {
					listed = true
				}
			}
			switch {
			case !listed:
				result.warn("recipe %q + %q is only listed on %q", a.ID, b.ID, a.ID)
			case a.ID < b.ID && b.CombinationResult != a.CombinationResult:
				result.fail("items %q and %q disagree on their combination result (%q vs %q)",
					a.ID, b.ID, a.CombinationResult, b.CombinationResult)
			}
		}
	}
}

// checkHints flags puzzles that leave players without help
func checkHints(c *engine.Catalog, result *ValidationResult) {
	for _, p := range c.Puzzles {
		if len(p.Hints) == 0 {
			result.warn("puzzle %q has no hints", p.ID)
			continue
		}
		if len(engine.AutoHints(p.Hints, engine.Easy)) == 0 {
			result.warn("puzzle %q has no free hint on easy", p.ID)
		}
		if len(p.Hints) > engine.HardHintBudget {
			result.warn("puzzle %q has %d hint tiers, more than the hard budget of %d",
				p.ID, len(p.Hints), engine.HardHintBudget)
		}
	}
}
