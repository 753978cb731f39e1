package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/escape-room-game/game/engine"
)

func createTestCatalog() *engine.Catalog {
	return engine.DefaultCatalog()
}

func TestManager_Create(t *testing.T) {
	manager := NewManager(nil)
	catalog := createTestCatalog()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("test-session", "default", catalog)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "test-session" {
			t.Errorf("Expected session ID 'test-session', got '%s'", session.ID)
		}
		if session.CampaignID != "default" {
			t.Errorf("Expected campaign 'default', got '%s'", session.CampaignID)
		}
		if session.Engine == nil {
			t.Fatal("Expected engine to be initialized")
		}
		if session.Engine.GetState().Progress.Status != engine.StatusNotStarted {
			t.Error("Expected a fresh engine with no game started")
		}
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create("", "default", catalog)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character session ID, got %q", session.ID)
		}
	})

	t.Run("duplicate session ID", func(t *testing.T) {
		_, err := manager.Create("test-session", "default", catalog)
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("case-insensitive duplicate check", func(t *testing.T) {
		_, err := manager.Create("TEST-SESSION", "default", catalog)
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists for case variant, got %v", err)
		}
	})

	t.Run("unsafe ID", func(t *testing.T) {
		for _, id := range []string{"../etc", "a/b", "has space"} {
			if _, err := manager.Create(id, "default", catalog); !errors.Is(err, ErrInvalidSessionID) {
				t.Errorf("Expected ErrInvalidSessionID for %q, got %v", id, err)
			}
		}
	})

	t.Run("invalid catalog", func(t *testing.T) {
		invalid := createTestCatalog()
		invalid.Rooms = nil
		if _, err := manager.Create("invalid-test", "default", invalid); err == nil {
			t.Error("Expected error for invalid catalog")
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager(nil)
	created, _ := manager.Create("get-test", "default", createTestCatalog())

	t.Run("get existing session", func(t *testing.T) {
		session, err := manager.Get("get-test")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if session != created {
			t.Error("Expected the created session")
		}
	})

	t.Run("case-insensitive get", func(t *testing.T) {
		session, err := manager.Get("GET-TEST")
		if err != nil {
			t.Fatalf("Failed to get session with different case: %v", err)
		}
		if session != created {
			t.Error("Expected same session regardless of case")
		}
	})

	t.Run("get non-existent session", func(t *testing.T) {
		if _, err := manager.Get("non-existent"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager(nil)
	catalog := createTestCatalog()
	manager.Create("delete-test", "default", catalog)

	t.Run("delete existing session", func(t *testing.T) {
		if err := manager.Delete("delete-test"); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}
		if _, err := manager.Get("delete-test"); !errors.Is(err, ErrSessionNotFound) {
			t.Error("Expected session to be deleted")
		}
	})

	t.Run("delete non-existent session", func(t *testing.T) {
		if err := manager.Delete("non-existent"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("case-insensitive delete", func(t *testing.T) {
		manager.Create("case-test", "default", catalog)
		if err := manager.Delete("CASE-TEST"); err != nil {
			t.Fatalf("Failed to delete with different case: %v", err)
		}
		if manager.Count() != 0 {
			t.Errorf("Expected no sessions left, got %d", manager.Count())
		}
	})
}

func TestManager_List(t *testing.T) {
	manager := NewManager(nil)
	catalog := createTestCatalog()
	for i := 1; i <= 3; i++ {
		if _, err := manager.Create(fmt.Sprintf("list-%d", i), "default", catalog); err != nil {
			t.Fatal(err)
		}
	}

	found := make(map[string]bool)
	for _, s := range manager.List() {
		found[s.ID] = true
	}
	for i := 1; i <= 3; i++ {
		if id := fmt.Sprintf("list-%d", i); !found[id] {
			t.Errorf("Session %s not found in list", id)
		}
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager(nil)
	catalog := createTestCatalog()

	active, _ := manager.Create("active", "default", catalog)
	expired, _ := manager.Create("expired", "default", catalog)
	expired.LastAccessedAt = time.Now().Add(-2 * time.Hour)
	active.LastAccessedAt = time.Now()

	if removed := manager.CleanupExpiredSessions(time.Hour); removed != 1 {
		t.Errorf("Expected 1 session to be removed, got %d", removed)
	}
	if _, err := manager.Get("expired"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected expired session to be removed")
	}
	if _, err := manager.Get("active"); err != nil {
		t.Error("Expected active session to still exist")
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager(nil)
	session, _ := manager.Create("access-test", "default", createTestCatalog())
	originalTime := session.LastAccessedAt

	time.Sleep(10 * time.Millisecond)

	if err := manager.UpdateLastAccessed("ACCESS-TEST"); err != nil {
		t.Fatalf("Failed to update last accessed: %v", err)
	}
	if !session.LastAccessedAt.After(originalTime) {
		t.Error("Expected LastAccessedAt to be updated")
	}
	if err := manager.UpdateLastAccessed("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager(nil)
	catalog := createTestCatalog()

	session1, _ := manager.Create("iso-1", "default", catalog)
	session2, _ := manager.Create("iso-2", "default", catalog)
	for _, e := range []*engine.GameEngine{session1.Engine, session2.Engine} {
		if err := e.StartNewGame(engine.Medium, engine.ModeCampaign, ""); err != nil {
			t.Fatal(err)
		}
	}

	res, err := session1.Engine.AttemptPuzzle("study-door-lock", engine.Attempt{Value: "1984"})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Correct {
		t.Fatal("Expected correct answer")
	}

	if !session1.Engine.GetState().Progress.IsSolved("study-door-lock") {
		t.Error("Session 1 should have the puzzle solved")
	}
	if session2.Engine.GetState().Progress.IsSolved("study-door-lock") {
		t.Error("Session 2 should not be affected by session 1")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager(nil)
	catalog := createTestCatalog()

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			sessionID := fmt.Sprintf("conc-%d", id%20)
			if _, err := manager.Create(sessionID, "default", catalog); err != nil && !errors.Is(err, ErrSessionAlreadyExists) {
				errs <- err
			}
			if _, err := manager.Get(sessionID); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	if manager.Count() != 20 {
		t.Errorf("Expected 20 sessions, got %d", manager.Count())
	}
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := NewManager(nil)
	catalog := createTestCatalog()

	generatedIDs := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := manager.Create("", "default", catalog)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if generatedIDs[session.ID] {
			t.Errorf("Duplicate session ID generated: %s", session.ID)
		}
		generatedIDs[session.ID] = true
		if len(session.ID) != 4 || !validID(session.ID) {
			t.Errorf("Expected 4-character hex ID, got %q", session.ID)
		}
	}
}
