package engine

import "strings"

// Feedback texts returned for wrong attempts
const (
	FeedbackWrongCode      = "Incorrect code. Try again!"
	FeedbackWrongText      = "That's not quite right. Try again!"
	FeedbackWrongPattern   = "The pattern is not correct."
	FeedbackWrongSelection = "That's not the right choice."
	FeedbackWrongSequence  = "The sequence is not right."
	FeedbackWrongItems     = "You need different items."
	FeedbackUnknownType    = "Unknown puzzle type."
)

// Attempt is a player's answer. Code, text and selection puzzles read Value;
// pattern, sequence and item puzzles read Values.
type Attempt struct {
	Value  string   `json:"value,omitempty"`
	Values []string `json:"values,omitempty"`
}

// ValidationResult is the outcome of checking an attempt
type ValidationResult struct {
	Correct  bool   `json:"correct"`
	Feedback string `json:"feedback,omitempty"`
}

// DataForDifficulty returns the override payload for d, or the base payload
func DataForDifficulty(p *Puzzle, d Difficulty) PuzzleData {
	if override, ok := p.DifficultyOverrides[d]; ok {
		return override
	}
	return p.Data
}

// SolutionForDifficulty returns the answer that is accepted at difficulty d.
// An override payload carries its own answer, so it takes precedence over the
// stored solution.
func SolutionForDifficulty(p *Puzzle, d Difficulty) Solution {
	override, ok := p.DifficultyOverrides[d]
	if !ok {
		return p.Solution
	}
	if s, ok := override.solution(); ok {
		return s
	}
	return p.Solution
}

// solution derives the canonical answer embedded in a payload
func (data PuzzleData) solution() (Solution, bool) {
	switch data.Type {
	case CodeEntry:
		if data.CorrectCode != "" {
			return Solution{Type: SolutionCode, Code: data.CorrectCode}, true
		}
	case Riddle:
		if len(data.AcceptableAnswers) > 0 {
			return Solution{Type: SolutionText, Answers: data.AcceptableAnswers}, true
		}
	case PatternMatch:
		if len(data.CorrectPattern) > 0 {
			return Solution{Type: SolutionPattern, Pattern: data.CorrectPattern}, true
		}
	case LogicDeduction:
		if data.CorrectOptionID != "" {
			return Solution{Type: SolutionSelection, CorrectID: data.CorrectOptionID}, true
		}
	case HiddenSequence:
		if len(data.Sequence) > 0 {
			return Solution{Type: SolutionSequence, Sequence: data.Sequence}, true
		}
	case ItemCombination:
		if len(data.RequiredItems) > 0 {
			return Solution{Type: SolutionItems, ItemIDs: data.RequiredItems}, true
		}
	}
	return Solution{}, false
}

// Redacted returns a copy of the payload without answer fields, safe to send
// to players.
func (data PuzzleData) Redacted() PuzzleData {
	out := data
	out.CorrectPattern = nil
	out.CorrectCode = ""
	out.AcceptableAnswers = nil
	out.CorrectOptionID = ""
	out.Sequence = nil
	out.RequiredItems = nil
	return out
}

// ValidateSolution checks an attempt against the answer for difficulty d.
// It is pure and deterministic.
func ValidateSolution(p *Puzzle, attempt Attempt, d Difficulty) ValidationResult {
	return CheckSolution(SolutionForDifficulty(p, d), attempt)
}

// CheckSolution dispatches on the solution shape
func CheckSolution(s Solution, attempt Attempt) ValidationResult {
	switch s.Type {
	case SolutionCode:
		return result(attempt.Value == s.Code, FeedbackWrongCode)

	case SolutionText:
		normalized := strings.ToLower(strings.TrimSpace(attempt.Value))
		for _, answer := range s.Answers {
			if strings.ToLower(strings.TrimSpace(answer)) == normalized {
				return result(true, "")
			}
		}
		return result(false, FeedbackWrongText)

	case SolutionPattern:
		return result(equalOrdered(attempt.Values, s.Pattern), FeedbackWrongPattern)

	case SolutionSelection:
		return result(attempt.Value == s.CorrectID, FeedbackWrongSelection)

	case SolutionSequence:
		return result(equalOrdered(attempt.Values, s.Sequence), FeedbackWrongSequence)

	case SolutionItems:
		return result(equalSet(attempt.Values, s.ItemIDs), FeedbackWrongItems)
	}
	return ValidationResult{Correct: false, Feedback: FeedbackUnknownType}
}

func result(correct bool, feedback string) ValidationResult {
	if correct {
		return ValidationResult{Correct: true}
	}
	return ValidationResult{Correct: false, Feedback: feedback}
}

func equalOrdered(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// equalSet compares a and b as sets; duplicates on either side are ignored
func equalSet(a, b []string) bool {
	as, bs := toSet(a), toSet(b)
	if len(as) != len(bs) {
		return false
	}
	for id := range as {
		if !bs[id] {
			return false
		}
	}
	return true
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
