package engine

// ProgressView is the part of player state that hotspot visibility reads
type ProgressView struct {
	SolvedPuzzleIDs     []string
	CollectedItemIDs    []string
	DiscoveredObjectIDs []string
}

// IsRoomComplete reports whether every required puzzle of the room is solved
func IsRoomComplete(room *Room, solvedPuzzleIDs []string) bool {
	solved := toSet(solvedPuzzleIDs)
	for _, id := range room.RequiredPuzzleIDs {
		if !solved[id] {
			return false
		}
	}
	return true
}

// VisibleHotSpots returns the room's hotspots whose visibility condition holds
func VisibleHotSpots(room *Room, view ProgressView) []HotSpot {
	solved := toSet(view.SolvedPuzzleIDs)
	collected := toSet(view.CollectedItemIDs)
	discovered := toSet(view.DiscoveredObjectIDs)

	visible := make([]HotSpot, 0, len(room.HotSpots))
	for _, hs := range room.HotSpots {
		if isVisible(hs.VisibleWhen, solved, collected, discovered) {
			visible = append(visible, hs)
		}
	}
	return visible
}

func isVisible(cond *Visibility, solved, collected, discovered map[string]bool) bool {
	if cond == nil {
		return true
	}
	switch cond.Type {
	case VisiblePuzzleSolved:
		return solved[cond.TargetID]
	case VisibleItemCollected:
		return collected[cond.TargetID]
	case VisibleObjectExamined:
		return discovered[cond.TargetID]
	default:
		return true
	}
}
