package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wricardo/escape-room-game/game/engine"
)

// Blob keys
const (
	GameKey      = "escape-room-game"
	InventoryKey = "escape-room-inventory"
	JournalKey   = "escape-room-journal"
)

// Keys the browser client stored its blobs under. Decode accepts them when
// the current key is absent.
const (
	LegacyGameKey      = "family-escape-room-game"
	LegacyInventoryKey = "family-escape-room-inventory"
	LegacyJournalKey   = "family-escape-room-journal"
)

var (
	ErrInvalidVersion = errors.New("invalid snapshot version")
	ErrFutureVersion  = errors.New("snapshot version is newer than supported")
	ErrNoMigration    = errors.New("no migration for snapshot version")
)

// Envelope is the stored form of every blob
type Envelope struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state"`
}

// Migration upgrades a decoded state from one version to the next
type Migration func(state map[string]any) (map[string]any, error)

// Schema describes one versioned blob. Migrations[n] upgrades version n to
// n+1.
type Schema struct {
	Key        string
	Aliases    []string
	Version    int
	Migrations map[int]Migration
}

// lookup finds the schema's blob under its key or, failing that, an alias
func (s Schema) lookup(blobs Blobs) (json.RawMessage, bool) {
	for _, key := range append([]string{s.Key}, s.Aliases...) {
		if data, ok := blobs[key]; ok {
			return data, true
		}
	}
	return nil, false
}

// Encode wraps v in an envelope at the schema's current version
func (s Schema) Encode(v any) (json.RawMessage, error) {
	state, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.Key, err)
	}
	out, err := json.Marshal(Envelope{Version: s.Version, State: state})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.Key, err)
	}
	return out, nil
}

// Decode reads a blob into v, migrating it up to the current version first
func (s Schema) Decode(data []byte, v any) error {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode %s: %w", s.Key, err)
	}
	state, err := s.Migrate(env)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(state, v); err != nil {
		return fmt.Errorf("decode %s state: %w", s.Key, err)
	}
	return nil
}

// Migrate returns the envelope's state at the current version
func (s Schema) Migrate(env Envelope) (json.RawMessage, error) {
	switch {
	case env.Version <= 0:
		return nil, fmt.Errorf("%w: %s has version %d", ErrInvalidVersion, s.Key, env.Version)
	case env.Version > s.Version:
		return nil, fmt.Errorf("%w: %s has version %d, supported %d", ErrFutureVersion, s.Key, env.Version, s.Version)
	case env.Version == s.Version:
		return env.State, nil
	}

	var state map[string]any
	if err := json.Unmarshal(env.State, &state); err != nil {
		return nil, fmt.Errorf("decode %s v%d: %w", s.Key, env.Version, err)
	}
	for v := env.Version; v < s.Version; v++ {
		m, ok := s.Migrations[v]
		if !ok {
			return nil, fmt.Errorf("%w: %s v%d", ErrNoMigration, s.Key, v)
		}
		var err error
		if state, err = m(state); err != nil {
			return nil, fmt.Errorf("migrate %s v%d: %w", s.Key, v, err)
		}
	}
	out, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode migrated %s: %w", s.Key, err)
	}
	return out, nil
}

var (
	Progress  = Schema{Key: GameKey, Aliases: []string{LegacyGameKey}, Version: 2, Migrations: map[int]Migration{1: progressV1}}
	Inventory = Schema{Key: InventoryKey, Aliases: []string{LegacyInventoryKey}, Version: 2, Migrations: map[int]Migration{1: inventoryV1}}
	Journal   = Schema{Key: JournalKey, Aliases: []string{LegacyJournalKey}, Version: 2, Migrations: map[int]Migration{1: journalV1}}
)

// Blobs maps blob keys to encoded envelopes
type Blobs map[string]json.RawMessage

// Encode splits a game state into its three blobs. UI state is not saved.
func Encode(state *engine.GameState) (Blobs, error) {
	blobs := Blobs{}
	for _, part := range []struct {
		schema Schema
		value  any
	}{
		{Progress, state.Progress},
		{Inventory, state.Inventory},
		{Journal, state.Journal},
	} {
		data, err := part.schema.Encode(part.value)
		if err != nil {
			return nil, err
		}
		blobs[part.schema.Key] = data
	}
	return blobs, nil
}

// Decode rebuilds a game state. Blobs saved by the browser client under the
// legacy keys are read too. A missing blob leaves that part at its initial
// value.
func Decode(blobs Blobs) (*engine.GameState, error) {
	state := engine.NewGameState()
	if data, ok := Progress.lookup(blobs); ok {
		if err := Progress.Decode(data, &state.Progress); err != nil {
			return nil, err
		}
	}
	if data, ok := Inventory.lookup(blobs); ok {
		if err := Inventory.Decode(data, &state.Inventory); err != nil {
			return nil, err
		}
	}
	if data, ok := Journal.lookup(blobs); ok {
		if err := Journal.Decode(data, &state.Journal); err != nil {
			return nil, err
		}
	}
	if state.Inventory.CollectedItemIDs == nil {
		state.Inventory.CollectedItemIDs = []string{}
	}
	if state.Inventory.UsedItemIDs == nil {
		state.Inventory.UsedItemIDs = []string{}
	}
	if state.Journal.Entries == nil {
		state.Journal.Entries = []engine.JournalEntry{}
	}
	return state, nil
}
