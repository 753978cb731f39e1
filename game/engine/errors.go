package engine

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrPuzzleNotFound    = errors.New("puzzle not found")
	ErrItemNotFound      = errors.New("item not found")
	ErrHotSpotNotFound   = errors.New("hotspot not found")
	ErrHotSpotHidden     = errors.New("hotspot is not visible")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrInvalidMode       = errors.New("invalid game mode")

	ErrGameNotInProgress = errors.New("game is not in progress")
	ErrPuzzleLocked      = errors.New("puzzle is locked")
	ErrNoHintsRemaining  = errors.New("no hints remaining")
	ErrHintsExhausted    = errors.New("all hints already revealed")
	ErrItemNotHeld       = errors.New("item not in inventory")
	ErrCannotCombine     = errors.New("items cannot be combined")
	ErrRoomNotComplete   = errors.New("room is not complete")
	ErrInvalidElapsed    = errors.New("elapsed time cannot be negative")
)
