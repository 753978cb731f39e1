// Package websocket pushes escape room state to browsers watching a session.
//
// A central Hub owns every connection. Clients attach to one session via
// the REST server's /ws?session=<id> endpoint; after each mutating call
// the server publishes the new state view together with the game events
// that produced it:
//
//	{"session_id": "ab12", "event": "state_update",
//	 "state": {...}, "events": [{"type": "puzzle_solved", ...}]}
//
// Incoming messages are ignored. The connection only carries pings.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	hub.ServeWS(w, r, sessionID)
//	hub.BroadcastState(sessionID, view, events)
//
// Run returns when ctx is cancelled and closes every client. Broadcasts
// made after that are dropped. Clients that cannot keep up are
// disconnected rather than blocking the hub.
package websocket
