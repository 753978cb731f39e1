// Package session manages escape room game sessions.
//
// A Session pairs one engine.GameEngine with the campaign it plays and
// its access times. Manager keeps sessions in memory under
// case-insensitive IDs and generates 4-character hex IDs when none is
// given.
//
// Persistence:
//
// With a SessionPersistence configured, sessions are saved on creation,
// on access and on demand, and sessions missing from memory are loaded
// lazily. Stored sessions hold the three versioned snapshot blobs
// (progress, inventory, journal), so older saves are migrated on load.
// Two backends are provided:
//   - FilePersistence: one JSON file per session
//   - SQLitePersistence: sessions and session_blobs tables
//
// Persistence failures during automatic saves are logged, never returned.
//
// Usage:
//
//	store, err := session.NewSQLitePersistence("sessions.db")
//	manager := session.NewManagerWithPersistence(store, configManager, logger,
//		engine.WithLockouts(map[engine.Difficulty]time.Duration{engine.Hard: 8 * time.Second}))
//
//	sess, err := manager.Create("", "classic", catalog)
//	sess, err = manager.Get(sess.ID)
//
// Idle sessions can be evicted with CleanupExpiredSessions; they are saved
// first and reload on the next Get.
package session
