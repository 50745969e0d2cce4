package service

import (
	"context"
	"errors"
	"time"

	"github.com/CentralLoaf/Gridworld-DQN/game/engine"
)

var (
	// ErrSessionNotFound is returned when no session has the requested ID
	ErrSessionNotFound = errors.New("session not found")
	// ErrTooManySteps is returned when a bulk request exceeds MaxBulkSteps
	ErrTooManySteps = errors.New("too many steps")
)

// GameService defines all environment operations exposed to transports
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string, seed *uint64) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Episode Operations
	Step(ctx context.Context, sessionID string, preyAction, predatorAction int, reset bool) (*StepResult, error)
	BulkStep(ctx context.Context, sessionID string, steps []engine.ActionPair, reset bool) (*BulkStepResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.EnvState, error)

	// Episode State
	GetEnvState(ctx context.Context, sessionID string) (*engine.EnvState, error)
	GetReward(ctx context.Context, sessionID string) (*RewardInfo, error)
	GetStepHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.EnvConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.EnvConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, configID string, config *engine.EnvConfig, seed uint64) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles environment configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.EnvConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.EnvConfig
	SaveConfig(name string, config *engine.EnvConfig) error
}

// Session represents one environment driven by a single trainer
type Session struct {
	ID             string
	ConfigID       string
	Engine         *engine.Simulator
	Config         *engine.EnvConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
