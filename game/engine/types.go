package engine

import "fmt"

// Tag is the occupancy marker stored in a grid cell
type Tag float64

const (
	Empty       Tag = 0
	PreyTag     Tag = 1
	PredatorTag Tag = 2

	// Defaults and validation limits
	DefaultRows                = 10
	DefaultCols                = 10
	DefaultTerminalReward      = 10.0
	DefaultDistanceScaleFactor = 0.5
	DefaultHistoryLimit        = 1000
	MaxGridDim                 = 50
	MaxBulkSteps               = 100
	WebSocketBufferSize        = 256
)

// String returns the single-character form used in text views
func (t Tag) String() string {
	switch t {
	case Empty:
		return "."
	case PreyTag:
		return "Y"
	case PredatorTag:
		return "X"
	default:
		return "?"
	}
}

// Agent identifies one of the two actors on the grid
type Agent int

const (
	Prey Agent = iota
	Predator
)

// Tag returns the occupancy tag the agent writes into the grid
func (a Agent) Tag() Tag {
	if a == Predator {
		return PredatorTag
	}
	return PreyTag
}

func (a Agent) String() string {
	if a == Predator {
		return "predator"
	}
	return "prey"
}

// Position is a (row, col) coordinate inside the grid
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add returns the position shifted by d
func (p Position) Add(d Delta) Position {
	return Position{Row: p.Row + d.Row, Col: p.Col + d.Col}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Delta is a movement offset produced by the action decoder
type Delta struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// RewardParams holds the reward shaping constants of an environment
type RewardParams struct {
	TerminalReward      float64 `json:"terminal_reward"`
	DistanceScaleFactor float64 `json:"distance_scale_factor"`
}

// DefaultRewardParams returns terminal reward 10 and distance scale factor 0.5
func DefaultRewardParams() RewardParams {
	return RewardParams{
		TerminalReward:      DefaultTerminalReward,
		DistanceScaleFactor: DefaultDistanceScaleFactor,
	}
}

// EnvConfig describes an environment loaded from JSON
type EnvConfig struct {
	Name                string  `json:"name"`
	Description         string  `json:"description"`
	Rows                int     `json:"rows"`
	Cols                int     `json:"cols"`
	TerminalReward      float64 `json:"terminal_reward"`
	DistanceScaleFactor float64 `json:"distance_scale_factor"`

	// MaxSteps truncates an episode after this many steps. Zero disables truncation.
	MaxSteps int `json:"max_steps,omitempty"`

	// HistoryLimit caps the per-episode step trace. Zero means DefaultHistoryLimit.
	HistoryLimit int `json:"history_limit,omitempty"`
}

// RewardParams extracts the reward constants from the config
func (c *EnvConfig) RewardParams() RewardParams {
	return RewardParams{
		TerminalReward:      c.TerminalReward,
		DistanceScaleFactor: c.DistanceScaleFactor,
	}
}

// StepRecord is one entry of an episode's step trace
type StepRecord struct {
	StepNumber     int      `json:"step_number"`
	PreyAction     int      `json:"prey_action"`
	PredatorAction int      `json:"predator_action"`
	PreyFrom       Position `json:"prey_from"`
	PreyTo         Position `json:"prey_to"`
	PredatorFrom   Position `json:"predator_from"`
	PredatorTo     Position `json:"predator_to"`
	PreyReward     float64  `json:"prey_reward"`
	PredatorReward float64  `json:"predator_reward"`
	Distance       int      `json:"distance"`
	Done           bool     `json:"done"`
	Truncated      bool     `json:"truncated,omitempty"`
	Timestamp      int64    `json:"timestamp"`
}

// EnvState is the externally visible view of an episode
type EnvState struct {
	Grid           *Grid    `json:"grid"`
	PreviousGrid   *Grid    `json:"previous_grid,omitempty"`
	PreyPos        Position `json:"prey_pos"`
	PredatorPos    Position `json:"predator_pos"`
	Distance       int      `json:"distance"`
	PreyReward     float64  `json:"prey_reward"`
	PredatorReward float64  `json:"predator_reward"`
	PreyReturn     float64  `json:"prey_return"`
	PredatorReturn float64  `json:"predator_return"`
	Done           bool     `json:"done"`
	Truncated      bool     `json:"truncated"`
	Steps          int      `json:"steps"`
	Episode        int      `json:"episode"`
	EpisodeID      string   `json:"episode_id"`
	ConfigName     string   `json:"config_name"`
	TotalSteps     int      `json:"total_steps"`
	Message        string   `json:"message"`
}
