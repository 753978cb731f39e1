package engine

import "sort"

// NextHint returns the hint one tier above revealedTier, or false when the
// ladder is exhausted. Difficulty does not change which hint comes next.
func NextHint(hints []Hint, revealedTier int, _ Difficulty) (Hint, bool) {
	next := revealedTier + 1
	for _, h := range hints {
		if h.Tier == next {
			return h, true
		}
	}
	return Hint{}, false
}

// AutoHints returns the hints shown for free. Only easy games get them.
func AutoHints(hints []Hint, d Difficulty) []Hint {
	if d != Easy {
		return nil
	}
	var auto []Hint
	for _, h := range hints {
		if h.AutoShowOnEasy {
			auto = append(auto, h)
		}
	}
	return auto
}

// RevealedHints returns hints at or below tier, ordered by tier
func RevealedHints(hints []Hint, tier int) []Hint {
	var revealed []Hint
	for _, h := range hints {
		if h.Tier <= tier {
			revealed = append(revealed, h)
		}
	}
	sort.Slice(revealed, func(i, j int) bool { return revealed[i].Tier < revealed[j].Tier })
	return revealed
}

// autoTier is the highest tier revealed for free at difficulty d
func autoTier(hints []Hint, d Difficulty) int {
	tier := 0
	for _, h := range AutoHints(hints, d) {
		if h.Tier > tier {
			tier = h.Tier
		}
	}
	return tier
}

// maxTier is the top of the hint ladder
func maxTier(hints []Hint) int {
	tier := 0
	for _, h := range hints {
		if h.Tier > tier {
			tier = h.Tier
		}
	}
	return tier
}
