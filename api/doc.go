// Package api provides the HTTP REST API for the escape room game.
//
// Every mutating game call returns a service.ActionResult (success, message,
// the new state view, the derived events and one operation-specific detail)
// and pushes the new state to WebSocket clients watching the session.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session {campaign_id, difficulty, mode, room_id}
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N&campaign=ID)
//   - GET /api/sessions/{id} - Get one session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current state view
//   - POST /api/sessions/{id}/interact - Click a hotspot {hotspot_id}
//   - GET /api/sessions/{id}/puzzles/{pid} - Puzzle without its answer
//   - POST /api/sessions/{id}/puzzles/{pid}/attempt - Submit {value} or {values}
//   - GET /api/sessions/{id}/puzzles/{pid}/hints - Hint status
//   - POST /api/sessions/{id}/puzzles/{pid}/hints - Reveal the next hint tier
//   - POST /api/sessions/{id}/select - Select an item {item_id}; empty clears
//   - POST /api/sessions/{id}/combine - Combine {item_a, item_b}
//   - POST /api/sessions/{id}/continue - Leave a cleared room
//   - POST /api/sessions/{id}/elapsed - Report the client timer {seconds}
//   - POST /api/sessions/{id}/dismiss - Close overlays
//   - POST /api/sessions/{id}/journal/toggle - Open or close the journal
//   - POST /api/sessions/{id}/reset - Restart {difficulty, mode, room_id}
//   - GET /api/sessions/{id}/journal - Journal entries
//   - GET /api/sessions/{id}/journal/export?format=md|html|pdf - Download the journal
//
// Configuration:
//   - GET /api/configs - List campaigns
//   - POST /api/configs?id=name - Save a validated campaign
//   - GET /api/configs/{name} - Full campaign
//
// Other:
//   - GET /health - Liveness probe
//   - GET /ws?session={id} - WebSocket state stream
//
// Usage:
//
//	server := api.NewServer(gameService, hub, logger)
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON. Unknown sessions, campaigns, rooms, puzzles,
// items and hotspots are 404; a locked puzzle is 423; calls that do not fit
// the game's current state are 409; bad input is 400.
//
//	{
//	  "error": "error message",
//	  "code": 404
//	}
package api
