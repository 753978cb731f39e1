// Package service is the business logic layer between the transports
// (REST, WebSocket, MCP) and the escape room engine.
//
// Core Interfaces:
//
// GameService exposes every player operation: creating and resuming
// sessions, clicking hotspots, attempting puzzles, revealing hints,
// combining items, moving between rooms and exporting the journal.
// SessionManager stores sessions and ConfigManager loads campaigns; both
// are implemented outside this package (game/session and game/config) and
// share the ErrSessionNotFound and ErrConfigNotFound sentinels defined
// here.
//
// Every mutating operation returns an ActionResult carrying the new state
// view and the GameEvents it produced, then saves the session. A failed
// save is logged and does not fail the operation. Wrong puzzle answers are
// results, not errors; a locked puzzle, an unknown hotspot or an
// incomplete room are errors wrapping the engine sentinels.
//
// Usage:
//
//	svc := service.NewGameService(sessionManager, configManager, logger)
//
//	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{
//		CampaignID: "classic",
//		Difficulty: "easy",
//	})
//	res, err := svc.Interact(ctx, info.ID, "library-globe")
//	res, err = svc.AttemptPuzzle(ctx, info.ID, "library-code", engine.Attempt{Value: "1234"})
//
// Concurrency:
//
// A single RWMutex serialises mutations across sessions; reads share it.
// Engines are not safe for concurrent use on their own.
package service
