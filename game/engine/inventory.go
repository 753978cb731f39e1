package engine

// CanCombine returns the item produced by combining a and b. The check is
// symmetric: a recipe on either item that names the other one matches.
func CanCombine(a, b *Item) (string, bool) {
	if a == nil || b == nil || a.ID == b.ID {
		return "", false
	}
	if contains(a.CanCombineWith, b.ID) && a.CombinationResult != "" {
		return a.CombinationResult, true
	}
	if contains(b.CanCombineWith, a.ID) && b.CombinationResult != "" {
		return b.CombinationResult, true
	}
	return "", false
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
