// Package engine provides the core rules for the Escape Room Game.
//
// The engine package implements the game mechanics including:
//   - Puzzle validation for six puzzle variants with per-difficulty overrides
//   - Tiered hint disclosure against a per-game hint budget
//   - Hotspot visibility and room completion
//   - Inventory pickup, use and item combination
//   - Player progress, inventory, journal and UI state machines
//   - Catalog (campaign) loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState bundles the player's Progress,
// Inventory, Journal and transient UIState, while Catalog holds the static
// rooms, puzzles and items loaded from JSON or YAML campaign files.
//
// Usage:
//
//	catalog, err := engine.LoadCatalog("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(catalog)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := gameEngine.StartNewGame(engine.Medium, engine.ModeCampaign, ""); err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := gameEngine.Interact("library-desk")
//	attempt, err := gameEngine.AttemptPuzzle("library-code-lock", engine.Attempt{Value: "3141"})
//
// Game Rules:
//
// A room is complete once every puzzle in its required list is solved. In a
// campaign the player then continues to the room named by next_room_id; the
// last room, or any room in freeplay mode, ends the game. Hints are revealed
// one tier at a time and each manual reveal spends one unit of the budget
// (15 on easy, 10 on medium, 5 on hard). Hints flagged auto_show_on_easy are
// shown for free on easy.
//
// Pure rule functions (ValidateSolution, NextHint, AutoHints, RevealedHints,
// VisibleHotSpots, IsRoomComplete, CanCombine) have no side effects and can be
// used without an engine.
package engine
