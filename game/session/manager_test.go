package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/CentralLoaf/Gridworld-DQN/game/engine"
)

func testConfig() *engine.EnvConfig {
	return &engine.EnvConfig{
		Name:                "Test",
		Description:         "6x6 test grid",
		Rows:                6,
		Cols:                6,
		TerminalReward:      10,
		DistanceScaleFactor: 0.5,
	}
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()

	t.Run("generated ID", func(t *testing.T) {
		session, err := manager.Create("", "test", testConfig(), 1)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected a 4-character ID, got %q", session.ID)
		}
		if session.Engine == nil || session.Engine.Seed() != 1 {
			t.Error("Expected a simulator seeded with 1")
		}
		if session.ConfigID != "test" {
			t.Errorf("Expected config ID 'test', got '%s'", session.ConfigID)
		}
	})

	t.Run("explicit ID", func(t *testing.T) {
		session, err := manager.Create("Mine", "test", testConfig(), 2)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "Mine" {
			t.Errorf("Expected ID 'Mine', got '%s'", session.ID)
		}
	})

	t.Run("duplicate ID is case-insensitive", func(t *testing.T) {
		_, err := manager.Create("mine", "test", testConfig(), 3)
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("invalid ID", func(t *testing.T) {
		_, err := manager.Create("../etc", "test", testConfig(), 4)
		if !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		bad := testConfig()
		bad.Rows = 0
		if _, err := manager.Create("", "bad", bad, 5); err == nil {
			t.Error("Expected an error for an invalid config")
		}
	})
}

func TestManager_GetAndDelete(t *testing.T) {
	manager := NewManager()
	created, _ := manager.Create("ab12", "test", testConfig(), 7)

	got, err := manager.Get("AB12")
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if got != created {
		t.Error("Expected the same session instance")
	}

	if _, err := manager.Get("zzzz"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}

	if err := manager.Delete("ab12"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if manager.Count() != 0 {
		t.Errorf("Expected 0 sessions, got %d", manager.Count())
	}
	if err := manager.Delete("ab12"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	for i := 0; i < 5; i++ {
		if _, err := manager.Create("", "test", testConfig(), uint64(i)); err != nil {
			t.Fatalf("Failed to create session %d: %v", i, err)
		}
	}

	sessions := manager.List()
	if len(sessions) != 5 {
		t.Errorf("Expected 5 sessions, got %d", len(sessions))
	}

	seen := make(map[string]bool)
	for _, s := range sessions {
		if seen[s.ID] {
			t.Errorf("Duplicate session ID %s", s.ID)
		}
		seen[s.ID] = true
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	session, _ := manager.Create("acc1", "test", testConfig(), 1)
	before := session.LastAccessedAt

	time.Sleep(5 * time.Millisecond)
	if err := manager.UpdateLastAccessed("acc1"); err != nil {
		t.Fatalf("Failed to update access time: %v", err)
	}
	if !session.LastAccessedAt.After(before) {
		t.Error("Expected LastAccessedAt to advance")
	}

	if err := manager.UpdateLastAccessed("none"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_CleanupExpiredSessions(t *testing.T) {
	manager := NewManager()
	old, _ := manager.Create("old1", "test", testConfig(), 1)
	manager.Create("new1", "test", testConfig(), 2)

	old.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	removed := manager.CleanupExpiredSessions(time.Hour)
	if removed != 1 {
		t.Errorf("Expected 1 removed session, got %d", removed)
	}
	if _, err := manager.Get("old1"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected the expired session to be gone")
	}
	if _, err := manager.Get("new1"); err != nil {
		t.Errorf("Expected the fresh session to remain: %v", err)
	}
}

func TestManager_SaveWithoutPersistence(t *testing.T) {
	manager := NewManager()
	manager.Create("s1", "test", testConfig(), 1)

	if err := manager.Save("s1"); err != nil {
		t.Errorf("Save without persistence should be a no-op, got %v", err)
	}
	if err := manager.SaveAllSessions(); err != nil {
		t.Errorf("SaveAllSessions without persistence should be a no-op, got %v", err)
	}
	if err := manager.LoadPersistedSessions(); err != nil {
		t.Errorf("LoadPersistedSessions without persistence should be a no-op, got %v", err)
	}
}

func TestManager_ConcurrentCreate(t *testing.T) {
	manager := NewManager()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			if _, err := manager.Create("", "test", testConfig(), seed); err != nil {
				t.Errorf("Concurrent create failed: %v", err)
			}
		}(uint64(i))
	}
	wg.Wait()

	if manager.Count() != 50 {
		t.Errorf("Expected 50 sessions, got %d", manager.Count())
	}
}
