package snapshot

import (
	"fmt"
	"time"
)

// Version 1 blobs were written by the browser client: camelCase keys and
// unix millisecond timestamps.

func progressV1(state map[string]any) (map[string]any, error) {
	out := renameKeys(state, map[string]string{
		"id":                  "id",
		"status":              "status",
		"difficulty":          "difficulty",
		"currentRoomId":       "current_room_id",
		"unlockedRoomIds":     "unlocked_room_ids",
		"solvedPuzzleIds":     "solved_puzzle_ids",
		"discoveredObjectIds": "discovered_object_ids",
		"startedAt":           "started_at",
		"completedAt":         "completed_at",
		"elapsedSeconds":      "elapsed_seconds",
		"hintsUsed":           "hints_used",
		"totalHintsAvailable": "total_hints_available",
	})
	for _, key := range []string{"started_at", "completed_at"} {
		ts, err := millisToTime(out[key])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out[key] = ts
	}
	out["mode"] = "campaign"
	out["revealed_hint_tiers"] = map[string]any{}
	out["attempts"] = map[string]any{}
	out["locked_until"] = map[string]any{}
	return out, nil
}

func inventoryV1(state map[string]any) (map[string]any, error) {
	return renameKeys(state, map[string]string{
		"collectedItemIds": "collected_item_ids",
		"usedItemIds":      "used_item_ids",
	}), nil
}

func journalV1(state map[string]any) (map[string]any, error) {
	raw, _ := state["entries"].([]any)
	entries := make([]any, 0, len(raw))
	for i, e := range raw {
		m, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("entry %d is not an object", i)
		}
		entry := renameKeys(m, map[string]string{
			"id":           "id",
			"text":         "text",
			"roomId":       "room_id",
			"puzzleId":     "puzzle_id",
			"discoveredAt": "discovered_at",
		})
		ts, err := millisToTime(entry["discovered_at"])
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entry["discovered_at"] = ts
		entries = append(entries, entry)
	}
	return map[string]any{"entries": entries}, nil
}

// renameKeys copies the known keys under their new names and drops the rest
func renameKeys(in map[string]any, names map[string]string) map[string]any {
	out := make(map[string]any, len(names))
	for from, to := range names {
		if v, ok := in[from]; ok {
			out[to] = v
		}
	}
	return out
}

// millisToTime converts a JSON number of unix milliseconds to RFC 3339; nil
// stays nil
func millisToTime(v any) (any, error) {
	switch ms := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return time.UnixMilli(int64(ms)).UTC().Format(time.RFC3339Nano), nil
	default:
		return nil, fmt.Errorf("unexpected timestamp %v", v)
	}
}
