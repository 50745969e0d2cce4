package engine

import (
	"fmt"
	"math/rand/v2"
)

var _ Engine = (*Simulator)(nil)

// SimulatorSnapshot is the serialisable form of a Simulator, including the
// position of its random stream so a restored simulator places agents
// exactly as the original would have.
type SimulatorSnapshot struct {
	Config          *EnvConfig   `json:"config"`
	Seed            uint64       `json:"seed"`
	RandState       []byte       `json:"rand_state"`
	Episode         int          `json:"episode"`
	EpisodeID       string       `json:"episode_id"`
	Grid            *Grid        `json:"grid"`
	PreviousGrid    *Grid        `json:"previous_grid,omitempty"`
	PreyPos         Position     `json:"prey_pos"`
	PredatorPos     Position     `json:"predator_pos"`
	PrevPreyPos     Position     `json:"prev_prey_pos"`
	PrevPredatorPos Position     `json:"prev_predator_pos"`
	Steps           int          `json:"steps"`
	Truncated       bool         `json:"truncated"`
	PreyReturn      float64      `json:"prey_return"`
	PredatorReturn  float64      `json:"predator_return"`
	TotalSteps      int          `json:"total_steps"`
	Trace           []StepRecord `json:"trace"`
	Message         string       `json:"message"`
}

// Snapshot captures the full simulator state
func (s *Simulator) Snapshot() (*SimulatorSnapshot, error) {
	randState, err := s.src.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to encode random state: %w", err)
	}

	snap := &SimulatorSnapshot{
		Config:         s.config,
		Seed:           s.seed,
		RandState:      randState,
		Episode:        s.episode,
		EpisodeID:      s.episodeID,
		Grid:           s.env.Grid(),
		PreviousGrid:   s.env.PreviousGrid(),
		PreyPos:        s.env.PreyPosition(),
		PredatorPos:    s.env.PredatorPosition(),
		Steps:          s.env.Steps(),
		Truncated:      s.truncated,
		PreyReturn:     s.preyReturn,
		PredatorReturn: s.predReturn,
		TotalSteps:     s.totalSteps,
		Trace:          append([]StepRecord(nil), s.trace...),
		Message:        s.message,
	}
	if prey, pred, ok := s.env.PreviousPositions(); ok {
		snap.PrevPreyPos = prey
		snap.PrevPredatorPos = pred
	}

	return snap, nil
}

// RestoreSimulator rebuilds a simulator from a snapshot
func RestoreSimulator(snap *SimulatorSnapshot) (*Simulator, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot cannot be nil")
	}
	if err := ValidateEnvConfig(snap.Config); err != nil {
		return nil, err
	}
	if snap.Grid == nil {
		return nil, fmt.Errorf("%w: snapshot has no grid", ErrInvalidGrid)
	}

	src := newSource(snap.Seed)
	if len(snap.RandState) > 0 {
		if err := src.UnmarshalBinary(snap.RandState); err != nil {
			return nil, fmt.Errorf("failed to decode random state: %w", err)
		}
	}

	env, err := NewEnv(snap.Grid, snap.PreyPos, snap.PredatorPos, snap.Config.RewardParams())
	if err != nil {
		return nil, fmt.Errorf("failed to restore environment: %w", err)
	}
	if snap.Steps > 0 {
		prev := frame{grid: env.frames[0].grid.Clone(), prey: snap.PreyPos, pred: snap.PredatorPos}
		if snap.PreviousGrid != nil {
			prev = frame{grid: snap.PreviousGrid.Clone(), prey: snap.PrevPreyPos, pred: snap.PrevPredatorPos}
		}
		env.frames[1] = prev
	}
	env.steps = snap.Steps

	trace := snap.Trace
	if trace == nil {
		trace = []StepRecord{}
	}

	return &Simulator{
		config:     snap.Config,
		seed:       snap.Seed,
		src:        src,
		rng:        rand.New(src),
		env:        env,
		episode:    snap.Episode,
		episodeID:  snap.EpisodeID,
		truncated:  snap.Truncated,
		preyReturn: snap.PreyReturn,
		predReturn: snap.PredatorReturn,
		totalSteps: snap.TotalSteps,
		trace:      trace,
		message:    snap.Message,
	}, nil
}
