package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// ErrEpisodeOver is returned when stepping an episode that already ended
var ErrEpisodeOver = errors.New("episode is over")

// Engine provides the main interface for episode operations
type Engine interface {
	// Episode state management
	GetState() *EnvState
	Reset() (*EnvState, error)
	IsDone() bool
	IsTruncated() bool
	IsOver() bool
	Reward() (preyReward, predReward float64)
	GetPositions() (prey, pred Position)

	// Transitions
	Step(preyAction, predAction int) (*StepOutcome, error)
	BulkStep(pairs []ActionPair) ([]*StepOutcome, error)
	GetPossibleActions(agent Agent) []int

	// Configuration
	GetConfig() *EnvConfig

	// History
	GetTrace() []StepRecord
	GetLastStep() *StepRecord

	// Local view
	GetLocalView(agent Agent) []NeighborCell
}

// ActionPair holds one action per agent
type ActionPair struct {
	PreyAction     int `json:"prey_action"`
	PredatorAction int `json:"predator_action"`
}

// StepOutcome is the result of a single Simulator step
type StepOutcome struct {
	PreviousGrid   *Grid      `json:"previous_grid"`
	Grid           *Grid      `json:"grid"`
	PreyReward     float64    `json:"prey_reward"`
	PredatorReward float64    `json:"predator_reward"`
	Done           bool       `json:"done"`
	Truncated      bool       `json:"truncated"`
	Record         StepRecord `json:"record"`
}

// Simulator runs consecutive episodes of one environment config. It owns
// the seeded random source used to place agents at every reset.
type Simulator struct {
	config *EnvConfig
	seed   uint64
	src    *rand.PCG
	rng    *rand.Rand

	env        *Env
	episode    int
	episodeID  string
	truncated  bool
	preyReturn float64
	predReturn float64
	totalSteps int
	trace      []StepRecord
	message    string
}

// NewSimulator creates a simulator and starts its first episode
func NewSimulator(config *EnvConfig, seed uint64) (*Simulator, error) {
	if err := ValidateEnvConfig(config); err != nil {
		return nil, err
	}

	src := newSource(seed)
	s := &Simulator{
		config: config,
		seed:   seed,
		src:    src,
		rng:    rand.New(src),
	}

	if _, err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSimulatorWithDefaults creates a simulator on the classic config
func NewSimulatorWithDefaults(seed uint64) *Simulator {
	s, err := NewSimulator(DefaultEnvConfig(), seed)
	if err != nil {
		// the default config is always valid
		panic(err)
	}
	return s
}

// Reset places both agents at fresh random cells and starts a new episode.
// The cumulative step count is preserved.
func (s *Simulator) Reset() (*EnvState, error) {
	grid, prey, pred, err := GenGridSize(s.config.Rows, s.config.Cols, s.rng)
	if err != nil {
		return nil, err
	}
	env, err := NewEnv(grid, prey, pred, s.config.RewardParams())
	if err != nil {
		return nil, err
	}

	s.env = env
	s.episode++
	s.episodeID = uuid.NewString()
	s.truncated = false
	s.preyReturn = 0
	s.predReturn = 0
	s.trace = []StepRecord{}
	s.message = fmt.Sprintf("Episode %d started: prey at %s, predator at %s", s.episode, prey, pred)

	return s.GetState(), nil
}

// Step advances the current episode by one turn
func (s *Simulator) Step(preyAction, predAction int) (*StepOutcome, error) {
	if s.IsOver() {
		return nil, fmt.Errorf("%w: reset to start a new episode", ErrEpisodeOver)
	}

	preyFrom, predFrom := s.env.PreyPosition(), s.env.PredatorPosition()

	prev, next, preyReward, predReward, err := s.env.Step(preyAction, predAction)
	if err != nil {
		return nil, err
	}

	done := s.env.Done()
	if !done && s.config.MaxSteps > 0 && s.env.Steps() >= s.config.MaxSteps {
		s.truncated = true
	}

	s.preyReturn += preyReward
	s.predReturn += predReward
	s.totalSteps++

	record := StepRecord{
		StepNumber:     s.env.Steps(),
		PreyAction:     preyAction,
		PredatorAction: predAction,
		PreyFrom:       preyFrom,
		PreyTo:         s.env.PreyPosition(),
		PredatorFrom:   predFrom,
		PredatorTo:     s.env.PredatorPosition(),
		PreyReward:     preyReward,
		PredatorReward: predReward,
		Distance:       s.env.Distance(),
		Done:           done,
		Truncated:      s.truncated,
		Timestamp:      time.Now().Unix(),
	}
	s.addToTrace(record)

	switch {
	case done:
		s.message = fmt.Sprintf("Captured! Predator caught the prey at %s after %d steps", record.PredatorTo, record.StepNumber)
	case s.truncated:
		s.message = fmt.Sprintf("Episode truncated after %d steps", record.StepNumber)
	default:
		s.message = fmt.Sprintf("Step %d: distance %d", record.StepNumber, record.Distance)
	}

	return &StepOutcome{
		PreviousGrid:   prev,
		Grid:           next,
		PreyReward:     preyReward,
		PredatorReward: predReward,
		Done:           done,
		Truncated:      s.truncated,
		Record:         record,
	}, nil
}

// BulkStep executes action pairs in sequence and stops once the episode
// ends. It returns the outcomes of the executed steps; on an invalid action
// the outcomes before it are returned together with the error.
func (s *Simulator) BulkStep(pairs []ActionPair) ([]*StepOutcome, error) {
	outcomes := make([]*StepOutcome, 0, len(pairs))

	for _, pair := range pairs {
		if s.IsOver() {
			break
		}

		outcome, err := s.Step(pair.PreyAction, pair.PredatorAction)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

// addToTrace appends a record, dropping the oldest past the history limit
func (s *Simulator) addToTrace(record StepRecord) {
	limit := s.config.HistoryLimit
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	s.trace = append(s.trace, record)
	if len(s.trace) > limit {
		s.trace = append([]StepRecord(nil), s.trace[len(s.trace)-limit:]...)
	}
}

// GetState returns a snapshot view of the current episode
func (s *Simulator) GetState() *EnvState {
	preyReward, predReward := s.env.Reward()
	return &EnvState{
		Grid:           s.env.Grid(),
		PreviousGrid:   s.env.PreviousGrid(),
		PreyPos:        s.env.PreyPosition(),
		PredatorPos:    s.env.PredatorPosition(),
		Distance:       s.env.Distance(),
		PreyReward:     preyReward,
		PredatorReward: predReward,
		PreyReturn:     s.preyReturn,
		PredatorReturn: s.predReturn,
		Done:           s.env.Done(),
		Truncated:      s.truncated,
		Steps:          s.env.Steps(),
		Episode:        s.episode,
		EpisodeID:      s.episodeID,
		ConfigName:     s.config.Name,
		TotalSteps:     s.totalSteps,
		Message:        s.message,
	}
}

// Env returns the transition engine of the current episode
func (s *Simulator) Env() *Env {
	return s.env
}

// IsDone returns whether the predator captured the prey
func (s *Simulator) IsDone() bool {
	return s.env.Done()
}

// IsTruncated returns whether the episode hit max_steps
func (s *Simulator) IsTruncated() bool {
	return s.truncated
}

// IsOver returns whether the episode accepts no more steps
func (s *Simulator) IsOver() bool {
	return s.env.Done() || s.truncated
}

// Reward recomputes the rewards for the latest positions
func (s *Simulator) Reward() (preyReward, predReward float64) {
	return s.env.Reward()
}

// GetPositions returns the latest prey and predator positions
func (s *Simulator) GetPositions() (prey, pred Position) {
	return s.env.PreyPosition(), s.env.PredatorPosition()
}

// GetPossibleActions returns the actions that move the agent
func (s *Simulator) GetPossibleActions(agent Agent) []int {
	return PossibleActions(s.env.frames[s.env.head].grid, s.agentPos(agent))
}

// GetLocalView returns the 8 neighbours of the agent
func (s *Simulator) GetLocalView(agent Agent) []NeighborCell {
	return LocalView(s.env.frames[s.env.head].grid, s.agentPos(agent))
}

func (s *Simulator) agentPos(agent Agent) Position {
	if agent == Predator {
		return s.env.PredatorPosition()
	}
	return s.env.PreyPosition()
}

// GetConfig returns the environment configuration
func (s *Simulator) GetConfig() *EnvConfig {
	return s.config
}

// Seed returns the seed the simulator was created with
func (s *Simulator) Seed() uint64 {
	return s.seed
}

// GetTrace returns a copy of the step trace of the current episode
func (s *Simulator) GetTrace() []StepRecord {
	return append([]StepRecord{}, s.trace...)
}

// GetLastStep returns a copy of the last step taken, or nil if none
func (s *Simulator) GetLastStep() *StepRecord {
	if len(s.trace) == 0 {
		return nil
	}
	last := s.trace[len(s.trace)-1]
	return &last
}
