package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/CentralLoaf/Gridworld-DQN/game/engine"
	"github.com/CentralLoaf/Gridworld-DQN/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the stored form of a session. The simulator
// snapshot carries the config and the random stream position, so a session
// resumes exactly where it stopped even if its config file changed.
type PersistedSessionData struct {
	ID             string                    `json:"id"`
	ConfigName     string                    `json:"config_name"`
	CreatedAt      time.Time                 `json:"created_at"`
	LastAccessedAt time.Time                 `json:"last_accessed_at"`
	Simulator      *engine.SimulatorSnapshot `json:"simulator"`
}

// encodeSession serialises a session for storage
func encodeSession(session *service.Session, indent bool) ([]byte, error) {
	if session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}

	snap, err := session.Engine.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot session %s: %w", session.ID, err)
	}

	data := PersistedSessionData{
		ID:             session.ID,
		ConfigName:     session.ConfigID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		Simulator:      snap,
	}

	var payload []byte
	if indent {
		payload, err = json.MarshalIndent(data, "", "  ")
	} else {
		payload, err = json.Marshal(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session data: %w", err)
	}
	return payload, nil
}

// decodeSession rebuilds a session from its stored form
func decodeSession(payload []byte) (*service.Session, error) {
	var data PersistedSessionData
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	if data.Simulator == nil {
		return nil, fmt.Errorf("session %s has no simulator state", data.ID)
	}

	sim, err := engine.RestoreSimulator(data.Simulator)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session %s: %w", data.ID, err)
	}

	return &service.Session{
		ID:             data.ID,
		ConfigID:       data.ConfigName,
		Engine:         sim,
		Config:         sim.GetConfig(),
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

// NewPersistence creates a persistence backend by kind: "file" stores one
// JSON file per session in dir, "sqlite" uses the database at sqlitePath.
// "" and "memory" disable persistence and return nil.
func NewPersistence(kind, dir, sqlitePath string) (SessionPersistence, error) {
	switch kind {
	case "", "memory":
		return nil, nil
	case "file":
		fp, err := NewFilePersistence(dir)
		if err != nil {
			return nil, err
		}
		return fp, nil
	case "sqlite":
		sp, err := NewSQLitePersistence(sqlitePath)
		if err != nil {
			return nil, err
		}
		return sp, nil
	default:
		return nil, fmt.Errorf("unsupported session store: %s", kind)
	}
}

// ClosePersistence releases backends that hold resources
func ClosePersistence(p SessionPersistence) error {
	closer, ok := p.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
