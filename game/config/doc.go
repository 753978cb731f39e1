// Package config loads escape room campaigns and server settings.
//
// Campaigns live as JSON or YAML files in a config directory. A campaign's
// ID is its file name without the extension, so "classic.json" and
// "classic" name the same campaign. Every file is validated on load;
// invalid files are skipped when listing and reported as ErrInvalidConfig
// when requested directly.
//
// The default campaign is "classic" when present, otherwise the first valid
// campaign by ID, otherwise a small built-in campaign so the server can
// always start.
//
// Usage:
//
//	manager, err := config.NewManager("configs", logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	catalog, err := manager.LoadConfig("classic")
//	id, def := manager.GetDefault()
//	infos, err := manager.ListConfigs()
//
//	// Drop cached campaigns when files change on disk
//	go manager.Watch(ctx)
//
// Settings holds server defaults (port, storage backend, lockout, session
// TTL) read from an optional settings.yaml.
package config
