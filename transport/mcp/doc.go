// Package mcp exposes the escape room to AI agents over the Model Context
// Protocol.
//
// Client is a thin proxy: every tool calls the REST API, so agents and
// browsers share sessions and browsers watching a session over WebSocket
// see agent moves live.
//
// Tools:
//   - list_campaigns, create_session, list_sessions, get_session
//   - game_state, interact, puzzle, attempt_puzzle
//   - hints, reveal_hint, select_item, combine_items
//   - continue_room, journal, reset_game, game_instructions
//
// Tool results are plain text meant for a language model: the room, its
// visible hotspots (✓ found, * glowing), required puzzles, inventory and
// any message. Puzzle answers never appear.
//
// Transport Modes:
//
//	client := mcp.NewClient("http://localhost:8080")
//
//	// stdio, for local agents
//	server.NewStdioServer(client.GetMCPServer()).Listen(ctx, os.Stdin, os.Stdout)
//
//	// HTTP, mounted at /mcp by the main server
//	server.NewStreamableHTTPServer(client.GetMCPServer())
package mcp
