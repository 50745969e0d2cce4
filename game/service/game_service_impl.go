package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/CentralLoaf/Gridworld-DQN/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession creates a new session running the named config. A nil seed
// draws a random one; the seed is reported back so runs can be replayed.
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string, seed *uint64) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load configuration
	var config *engine.EnvConfig
	configID := strings.TrimSuffix(configName, ".json")
	if configName != "" {
		var err error
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			return nil, s.configError(configName, err)
		}
	} else {
		config = s.configs.GetDefault()
		configID = s.getConfigID(config.Name)
	}

	sessionSeed := rand.Uint64()
	if seed != nil {
		sessionSeed = *seed
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", configID, config, sessionSeed)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sessionInfo(session), nil
}

// configError adds the available config IDs to a not-found error
func (s *gameServiceImpl) configError(configName string, err error) error {
	available, listErr := s.configs.ListConfigs()
	if listErr != nil || len(available) == 0 {
		return fmt.Errorf("failed to load config '%s': %w", configName, err)
	}
	ids := make([]string, 0, len(available))
	for _, cfg := range available {
		ids = append(ids, cfg.ConfigID)
	}
	return fmt.Errorf("failed to load config '%s' (available: %v): %w", configName, ids, err)
}

// getConfigID returns the config_id for a display name
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Step executes one turn for both agents
func (s *gameServiceImpl) Step(ctx context.Context, sessionID string, preyAction, predatorAction int, reset bool) (*StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if err := checkActions(preyAction, predatorAction); err != nil {
		return nil, err
	}

	events := []EnvEvent{}

	// Handle reset if requested
	if reset {
		if _, err := sess.Engine.Reset(); err != nil {
			return nil, fmt.Errorf("failed to reset episode: %w", err)
		}
		events = append(events, resetEvent(sess.Engine))
	}

	outcome, err := sess.Engine.Step(preyAction, predatorAction)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.GetState()
	result := &StepResult{
		PreviousGrid:   outcome.PreviousGrid,
		Grid:           outcome.Grid,
		PreyReward:     outcome.PreyReward,
		PredatorReward: outcome.PredatorReward,
		Done:           outcome.Done,
		Truncated:      outcome.Truncated,
		EnvState:       state,
		Step:           outcome.Record,
		Events:         append(events, stepEvents(outcome.Record, state.Message)...),
		Message:        state.Message,
	}

	s.persist(sessionID, "step")
	return result, nil
}

// BulkStep executes a sequence of action pairs, stopping at the end of the
// episode or at the first invalid action
func (s *gameServiceImpl) BulkStep(ctx context.Context, sessionID string, steps []engine.ActionPair, reset bool) (*BulkStepResult, error) {
	if len(steps) > engine.MaxBulkSteps {
		return nil, fmt.Errorf("%w: %d requested, limit is %d", ErrTooManySteps, len(steps), engine.MaxBulkSteps)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkStepResult{
		RequestedSteps: len(steps),
		Steps:          []engine.StepRecord{},
		Events:         []EnvEvent{},
	}

	if reset {
		// A first pair that cannot execute must not cost the current episode
		if len(steps) > 0 {
			if err := checkActions(steps[0].PreyAction, steps[0].PredatorAction); err != nil {
				return nil, err
			}
		}
		if _, err := sess.Engine.Reset(); err != nil {
			return nil, fmt.Errorf("failed to reset episode: %w", err)
		}
		result.Events = append(result.Events, resetEvent(sess.Engine))
	}

	if sess.Engine.IsOver() && len(steps) > 0 {
		return nil, fmt.Errorf("%w: reset to start a new episode", engine.ErrEpisodeOver)
	}

	outcomes, stepErr := sess.Engine.BulkStep(steps)
	for _, outcome := range outcomes {
		result.Steps = append(result.Steps, outcome.Record)
		result.PreyReturn += outcome.PreyReward
		result.PredatorReturn += outcome.PredatorReward
	}
	result.StepsExecuted = len(outcomes)

	state := sess.Engine.GetState()
	result.EnvState = state
	result.Done = state.Done
	result.Truncated = state.Truncated
	result.Message = state.Message

	switch {
	case stepErr != nil:
		result.StoppedReason = "invalid_action"
		result.StoppedOnStep = result.StepsExecuted + 1
		result.Error = stepErr.Error()
	case result.StepsExecuted < len(steps) && state.Done:
		result.StoppedReason = "captured"
		result.StoppedOnStep = result.StepsExecuted
	case result.StepsExecuted < len(steps) && state.Truncated:
		result.StoppedReason = "truncated"
		result.StoppedOnStep = result.StepsExecuted
	}

	if n := len(result.Steps); n > 0 {
		last := result.Steps[n-1]
		result.Events = append(result.Events, stepEvents(last, state.Message)...)
	}

	// Nothing was executed: report the decode failure as an error
	if stepErr != nil && result.StepsExecuted == 0 {
		return nil, stepErr
	}

	s.persist(sessionID, "bulk step")
	return result, nil
}

// checkActions decodes both actions without touching the session
func checkActions(preyAction, predatorAction int) error {
	if _, err := engine.DecodeAction(preyAction); err != nil {
		return fmt.Errorf("prey: %w", err)
	}
	if _, err := engine.DecodeAction(predatorAction); err != nil {
		return fmt.Errorf("predator: %w", err)
	}
	return nil
}

// Reset starts a new episode for a session
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.EnvState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	state, err := sess.Engine.Reset()
	if err != nil {
		return nil, fmt.Errorf("failed to reset episode: %w", err)
	}

	s.persist(sessionID, "reset")
	return state, nil
}

// GetEnvState retrieves the current episode state
func (s *gameServiceImpl) GetEnvState(ctx context.Context, sessionID string) (*engine.EnvState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return sess.Engine.GetState(), nil
}

// GetReward recomputes the reward for the latest positions
func (s *gameServiceImpl) GetReward(ctx context.Context, sessionID string) (*RewardInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	preyReward, predReward := sess.Engine.Reward()
	prey, pred := sess.Engine.GetPositions()
	return &RewardInfo{
		PreyReward:     preyReward,
		PredatorReward: predReward,
		Distance:       engine.ManhattanDistance(prey, pred),
		Done:           sess.Engine.IsDone(),
		PreyPos:        prey,
		PredatorPos:    pred,
	}, nil
}

// GetStepHistory returns the paginated step trace of the current episode
func (s *gameServiceImpl) GetStepHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetTrace()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	steps := []engine.StepRecord{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			steps = append(steps, history[i])
		}
	} else if start < total {
		steps = append(steps, history[start:end]...)
	}

	return &HistoryResponse{
		Steps:       steps,
		TotalSteps:  total,
		Episode:     sess.Engine.GetState().Episode,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available environment configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific environment configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.EnvConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves an environment configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.EnvConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// getSession looks up a session and refreshes its access time
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// persist saves a session after a mutation; failures are logged only
func (s *gameServiceImpl) persist(sessionID, op string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("Warning: Failed to persist session %s after %s: %v", sessionID, op, err)
	}
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		Seed:           sess.Engine.Seed(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		EnvState:       sess.Engine.GetState(),
		EnvConfig:      sess.Config,
	}
}

func resetEvent(sim *engine.Simulator) EnvEvent {
	return EnvEvent{
		Type:      "reset",
		Message:   sim.GetState().Message,
		Timestamp: time.Now(),
	}
}

// stepEvents describes a step record as events
func stepEvents(record engine.StepRecord, message string) []EnvEvent {
	now := time.Now()
	events := []EnvEvent{{
		Type: "step",
		Message: fmt.Sprintf("prey %s %s->%s, predator %s %s->%s, distance %d",
			engine.ActionName(record.PreyAction), record.PreyFrom, record.PreyTo,
			engine.ActionName(record.PredatorAction), record.PredatorFrom, record.PredatorTo,
			record.Distance),
		Timestamp: now,
		Step:      record.StepNumber,
	}}

	switch {
	case record.Done:
		events = append(events, EnvEvent{Type: "capture", Message: message, Timestamp: now, Step: record.StepNumber})
	case record.Truncated:
		events = append(events, EnvEvent{Type: "truncated", Message: message, Timestamp: now, Step: record.StepNumber})
	}
	return events
}
