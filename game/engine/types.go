package engine

// Difficulty selects puzzle overrides, hint budget and attempt limits
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// GameStatus is the lifecycle of a single game
type GameStatus string

const (
	StatusNotStarted GameStatus = "not_started"
	StatusInProgress GameStatus = "in_progress"
	StatusCompleted  GameStatus = "completed"
)

// GameMode decides what happens after a room is cleared
type GameMode string

const (
	ModeCampaign GameMode = "campaign"
	ModeFreeplay GameMode = "freeplay"
)

// PuzzleType represents the puzzle variants
type PuzzleType string

const (
	PatternMatch    PuzzleType = "pattern_match"
	CodeEntry       PuzzleType = "code_entry"
	Riddle          PuzzleType = "riddle"
	LogicDeduction  PuzzleType = "logic_deduction"
	HiddenSequence  PuzzleType = "hidden_sequence"
	ItemCombination PuzzleType = "item_combination"
)

// SolutionType tags the shape of a puzzle solution
type SolutionType string

const (
	SolutionPattern   SolutionType = "pattern"
	SolutionCode      SolutionType = "code"
	SolutionText      SolutionType = "text"
	SolutionSelection SolutionType = "selection"
	SolutionSequence  SolutionType = "sequence"
	SolutionItems     SolutionType = "items"
)

// HotSpotType is a display hint for clients
type HotSpotType string

const (
	HotSpotExamine    HotSpotType = "examine"
	HotSpotPickup     HotSpotType = "pickup"
	HotSpotPuzzle     HotSpotType = "puzzle"
	HotSpotUseItem    HotSpotType = "use_item"
	HotSpotDecoration HotSpotType = "decoration"
)

// ActionKind tags the Action variants
type ActionKind string

const (
	ActionExamine         ActionKind = "examine"
	ActionPickup          ActionKind = "pickup"
	ActionOpenPuzzle      ActionKind = "open_puzzle"
	ActionUseItem         ActionKind = "use_item"
	ActionShowMessage     ActionKind = "show_message"
	ActionAddJournalEntry ActionKind = "add_journal_entry"
)

// VisibilityType names the condition a hotspot waits on
type VisibilityType string

const (
	VisibleAlways         VisibilityType = "always"
	VisiblePuzzleSolved   VisibilityType = "puzzle_solved"
	VisibleItemCollected  VisibilityType = "item_collected"
	VisibleObjectExamined VisibilityType = "object_examined"
)

// ExitConditionType names how a room is left
type ExitConditionType string

const (
	ExitAllRequiredPuzzles ExitConditionType = "all_required_puzzles"
)

const (
	// Hotspot coordinates are percentages of the room background
	MinHotSpotCoord = 0
	MaxHotSpotCoord = 100

	// Hint budgets per difficulty
	EasyHintBudget   = 15
	MediumHintBudget = 10
	HardHintBudget   = 5

	// Limit for nested use_item result actions
	MaxActionDepth = 8

	UnlimitedAttempts = 0
)

// LogicOption is one choice of a logic deduction puzzle
type LogicOption struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// PuzzleData is the payload shown to the player. Which fields are set
// depends on Type.
type PuzzleData struct {
	Type PuzzleType `json:"type" yaml:"type"`

	// pattern_match
	Symbols        []string `json:"symbols,omitempty" yaml:"symbols,omitempty"`
	GridSize       int      `json:"grid_size,omitempty" yaml:"grid_size,omitempty"`
	CorrectPattern []string `json:"correct_pattern,omitempty" yaml:"correct_pattern,omitempty"`

	// code_entry
	CodeLength  int    `json:"code_length,omitempty" yaml:"code_length,omitempty"`
	CorrectCode string `json:"correct_code,omitempty" yaml:"correct_code,omitempty"`
	ClueText    string `json:"clue_text,omitempty" yaml:"clue_text,omitempty"`

	// riddle
	RiddleText        string   `json:"riddle_text,omitempty" yaml:"riddle_text,omitempty"`
	AcceptableAnswers []string `json:"acceptable_answers,omitempty" yaml:"acceptable_answers,omitempty"`

	// logic_deduction
	Clues           []string      `json:"clues,omitempty" yaml:"clues,omitempty"`
	Options         []LogicOption `json:"options,omitempty" yaml:"options,omitempty"`
	CorrectOptionID string        `json:"correct_option_id,omitempty" yaml:"correct_option_id,omitempty"`

	// hidden_sequence
	Sequence         []string `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	ScrambledDisplay []string `json:"scrambled_display,omitempty" yaml:"scrambled_display,omitempty"`

	// item_combination
	RequiredItems []string `json:"required_items,omitempty" yaml:"required_items,omitempty"`
	ResultItemID  string   `json:"result_item_id,omitempty" yaml:"result_item_id,omitempty"`
}

// Solution is the canonical answer of a puzzle, tagged by Type
type Solution struct {
	Type      SolutionType `json:"type" yaml:"type"`
	Code      string       `json:"code,omitempty" yaml:"code,omitempty"`
	Answers   []string     `json:"answers,omitempty" yaml:"answers,omitempty"`
	Pattern   []string     `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	CorrectID string       `json:"correct_id,omitempty" yaml:"correct_id,omitempty"`
	Sequence  []string     `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	ItemIDs   []string     `json:"item_ids,omitempty" yaml:"item_ids,omitempty"`
}

// Hint is one tier of a puzzle's hint ladder
type Hint struct {
	Tier           int    `json:"tier" yaml:"tier"`
	Text           string `json:"text" yaml:"text"`
	AutoShowOnEasy bool   `json:"auto_show_on_easy,omitempty" yaml:"auto_show_on_easy,omitempty"`
}

// Puzzle is static puzzle content
type Puzzle struct {
	ID                  string                    `json:"id" yaml:"id"`
	RoomID              string                    `json:"room_id" yaml:"room_id"`
	Type                PuzzleType                `json:"type" yaml:"type"`
	Name                string                    `json:"name" yaml:"name"`
	Description         string                    `json:"description" yaml:"description"`
	Data                PuzzleData                `json:"data" yaml:"data"`
	DifficultyOverrides map[Difficulty]PuzzleData `json:"difficulty_overrides,omitempty" yaml:"difficulty_overrides,omitempty"`
	Solution            Solution                  `json:"solution" yaml:"solution"`
	Hints               []Hint                    `json:"hints" yaml:"hints"`
	RewardClue          string                    `json:"reward_clue,omitempty" yaml:"reward_clue,omitempty"`
	RewardItemID        string                    `json:"reward_item_id,omitempty" yaml:"reward_item_id,omitempty"`
	MaxAttempts         map[Difficulty]int        `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
}

// Action is what a hotspot does when clicked. Which fields are set depends
// on Kind.
type Action struct {
	Kind ActionKind `json:"kind" yaml:"kind"`

	// examine
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty" yaml:"image_url,omitempty"`

	// pickup
	ItemID string `json:"item_id,omitempty" yaml:"item_id,omitempty"`

	// open_puzzle
	PuzzleID string `json:"puzzle_id,omitempty" yaml:"puzzle_id,omitempty"`

	// use_item
	RequiredItemID string  `json:"required_item_id,omitempty" yaml:"required_item_id,omitempty"`
	ResultAction   *Action `json:"result_action,omitempty" yaml:"result_action,omitempty"`

	// show_message
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	// add_journal_entry
	EntryText string `json:"entry_text,omitempty" yaml:"entry_text,omitempty"`
}

// Visibility gates a hotspot on player progress
type Visibility struct {
	Type     VisibilityType `json:"type" yaml:"type"`
	TargetID string         `json:"target_id,omitempty" yaml:"target_id,omitempty"`
}

// HotSpot is a clickable rectangle in a room, in percent coordinates
type HotSpot struct {
	ID          string      `json:"id" yaml:"id"`
	RoomID      string      `json:"room_id" yaml:"room_id"`
	X           float64     `json:"x" yaml:"x"`
	Y           float64     `json:"y" yaml:"y"`
	Width       float64     `json:"width" yaml:"width"`
	Height      float64     `json:"height" yaml:"height"`
	Label       string      `json:"label" yaml:"label"`
	Type        HotSpotType `json:"type" yaml:"type"`
	Action      Action      `json:"action" yaml:"action"`
	VisibleWhen *Visibility `json:"visible_when,omitempty" yaml:"visible_when,omitempty"`
	GlowOnEasy  bool        `json:"glow_on_easy,omitempty" yaml:"glow_on_easy,omitempty"`
}

// ExitCondition describes how a room is cleared
type ExitCondition struct {
	Type ExitConditionType `json:"type" yaml:"type"`
}

// Room is static room content
type Room struct {
	ID                string        `json:"id" yaml:"id"`
	Name              string        `json:"name" yaml:"name"`
	Theme             string        `json:"theme" yaml:"theme"`
	Description       string        `json:"description" yaml:"description"`
	BackgroundImage   string        `json:"background_image,omitempty" yaml:"background_image,omitempty"`
	HotSpots          []HotSpot     `json:"hot_spots" yaml:"hot_spots"`
	PuzzleIDs         []string      `json:"puzzle_ids" yaml:"puzzle_ids"`
	RequiredPuzzleIDs []string      `json:"required_puzzle_ids" yaml:"required_puzzle_ids"`
	ExitCondition     ExitCondition `json:"exit_condition" yaml:"exit_condition"`
	NextRoomID        string        `json:"next_room_id,omitempty" yaml:"next_room_id,omitempty"`
}

// Item is an inventory item definition
type Item struct {
	ID                string   `json:"id" yaml:"id"`
	Name              string   `json:"name" yaml:"name"`
	Description       string   `json:"description" yaml:"description"`
	Icon              string   `json:"icon,omitempty" yaml:"icon,omitempty"`
	ImageURL          string   `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	CanCombineWith    []string `json:"can_combine_with,omitempty" yaml:"can_combine_with,omitempty"`
	CombinationResult string   `json:"combination_result,omitempty" yaml:"combination_result,omitempty"`
	IsKey             bool     `json:"is_key,omitempty" yaml:"is_key,omitempty"`
}

// Narrative holds the story text around a room
type Narrative struct {
	Intro string `json:"intro" yaml:"intro"`
	Outro string `json:"outro" yaml:"outro"`
}

// Catalog is a campaign: the static rooms, puzzles and items of one game
type Catalog struct {
	Name        string               `json:"name" yaml:"name"`
	Description string               `json:"description" yaml:"description"`
	Intro       string               `json:"intro,omitempty" yaml:"intro,omitempty"`
	Victory     string               `json:"victory,omitempty" yaml:"victory,omitempty"`
	StartRoomID string               `json:"start_room_id,omitempty" yaml:"start_room_id,omitempty"`
	Rooms       []Room               `json:"rooms" yaml:"rooms"`
	Puzzles     []Puzzle             `json:"puzzles" yaml:"puzzles"`
	Items       []Item               `json:"items" yaml:"items"`
	Narratives  map[string]Narrative `json:"narratives,omitempty" yaml:"narratives,omitempty"`
}
