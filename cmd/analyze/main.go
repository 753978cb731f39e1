// Command analyze prints quick, human-readable statistics about the campaign
// files in a configs directory: room route, puzzle mix, hint ladders against
// each difficulty's hint budget, attempt limits and item recipes.
//
//	go run ./cmd/analyze [configs-dir]
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/escape-room-game/game/engine"
)

// RoomStats summarizes one room
type RoomStats struct {
	ID             string
	HotSpots       int
	Hidden         int
	Puzzles        int
	Required       int
	RequiredHints  int
	OnCampaignPath bool
}

// DifficultyStats compares a difficulty's hint budget with the hints the
// required puzzles carry
type DifficultyStats struct {
	Difficulty    engine.Difficulty
	HintBudget    int
	FreeHints     int
	PaidHints     int
	LimitedPuzzle int
}

// Stats summarizes one campaign
type Stats struct {
	Name         string
	Route        []string
	Rooms        []RoomStats
	PuzzleTypes  map[engine.PuzzleType]int
	Items        int
	Keys         int
	Recipes      int
	Difficulties []DifficultyStats
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	files, err := campaignFiles(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error finding campaign files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No campaign files in %s\n", dir)
		return
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		catalog, err := engine.ReadCatalogFile(file)
		if err != nil {
			fmt.Printf("Error loading campaign: %v\n", err)
			continue
		}
		printStats(os.Stdout, analyze(catalog))
	}
}

func campaignFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
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
	return files, nil
}

func analyze(c *engine.Catalog) Stats {
	stats := Stats{
		Name:        c.Name,
		Route:       c.CampaignRoute(),
		PuzzleTypes: make(map[engine.PuzzleType]int),
		Items:       len(c.Items),
	}

	onRoute := make(map[string]bool, len(stats.Route))
	for _, id := range stats.Route {
		onRoute[id] = true
	}

	var required []*engine.Puzzle
	for i := range c.Rooms {
		room := &c.Rooms[i]
		rs := RoomStats{
			ID:             room.ID,
			HotSpots:       len(room.HotSpots),
			Puzzles:        len(room.PuzzleIDs),
			Required:       len(room.RequiredPuzzleIDs),
			OnCampaignPath: onRoute[room.ID],
		}
		for _, hs := range room.HotSpots {
			if hs.VisibleWhen != nil && hs.VisibleWhen.Type != engine.VisibleAlways {
				rs.Hidden++
			}
		}
		for _, id := range room.RequiredPuzzleIDs {
			if p, err := c.FindPuzzle(id); err == nil {
				rs.RequiredHints += len(p.Hints)
				if onRoute[room.ID] {
					required = append(required, p)
				}
			}
		}
		stats.Rooms = append(stats.Rooms, rs)
	}

	for _, p := range c.Puzzles {
		stats.PuzzleTypes[p.Type]++
	}

	for _, it := range c.Items {
		if it.IsKey {
			stats.Keys++
		}
		stats.Recipes += len(it.CanCombineWith)
	}

	for _, d := range []engine.Difficulty{engine.Easy, engine.Medium, engine.Hard} {
		ds := DifficultyStats{Difficulty: d, HintBudget: engine.HintBudget(d)}
		for _, p := range required {
			free := len(engine.AutoHints(p.Hints, d))
			ds.FreeHints += free
			ds.PaidHints += len(p.Hints) - free
			if p.MaxAttempts[d] > engine.UnlimitedAttempts {
				ds.LimitedPuzzle++
			}
		}
		stats.Difficulties = append(stats.Difficulties, ds)
	}
	return stats
}

func printStats(w io.Writer, s Stats) {
	fmt.Fprintf(w, "Name: %s\n", s.Name)
	fmt.Fprintf(w, "Campaign route: %s\n", strings.Join(s.Route, " -> "))

	total := 0
	types := make([]string, 0, len(s.PuzzleTypes))
	for t, n := range s.PuzzleTypes {
		types = append(types, fmt.Sprintf("%s=%d", t, n))
		total += n
	}
	sort.Strings(types)
	fmt.Fprintf(w, "Puzzles: %d (%s)\n", total, strings.Join(types, ", "))
	fmt.Fprintf(w, "Items: %d (keys: %d, recipes: %d)\n", s.Items, s.Keys, s.Recipes)

	fmt.Fprintln(w, "Rooms:")
	offRoute := 0
	for _, r := range s.Rooms {
		marker := " "
		if !r.OnCampaignPath {
			marker = "?"
			offRoute++
		}
		fmt.Fprintf(w, " %s %-20s hotspots %2d (hidden %d)  puzzles %d (required %d, hint tiers %d)\n",
			marker, r.ID, r.HotSpots, r.Hidden, r.Puzzles, r.Required, r.RequiredHints)
	}
	if offRoute > 0 {
		fmt.Fprintf(w, "⚠️  %d rooms are only reachable in freeplay\n", offRoute)
	}

	fmt.Fprintln(w, "Hint budget on the campaign route:")
	for _, d := range s.Difficulties {
		fmt.Fprintf(w, "  %-6s budget %2d  free %2d  paid %2d  attempt-limited puzzles %d\n",
			d.Difficulty, d.HintBudget, d.FreeHints, d.PaidHints, d.LimitedPuzzle)
		if d.PaidHints > d.HintBudget {
			fmt.Fprintf(w, "  ⚠️  %s players cannot reveal every hint (%d paid tiers, budget %d)\n",
				d.Difficulty, d.PaidHints, d.HintBudget)
		}
	}
}
