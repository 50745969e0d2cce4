package service

import (
	"time"

	"github.com/CentralLoaf/Gridworld-DQN/game/engine"
)

// SessionInfo provides information about a session
type SessionInfo struct {
	ID             string            `json:"id"`
	ConfigName     string            `json:"config_name"`
	Seed           uint64            `json:"seed"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	EnvState       *engine.EnvState  `json:"env_state"`
	EnvConfig      *engine.EnvConfig `json:"env_config"`
}

// StepResult contains the result of a single step
type StepResult struct {
	PreviousGrid   *engine.Grid      `json:"previous_grid"`
	Grid           *engine.Grid      `json:"grid"`
	PreyReward     float64           `json:"prey_reward"`
	PredatorReward float64           `json:"predator_reward"`
	Done           bool              `json:"done"`
	Truncated      bool              `json:"truncated"`
	EnvState       *engine.EnvState  `json:"env_state"`
	Step           engine.StepRecord `json:"step"`
	Events         []EnvEvent        `json:"events,omitempty"`
	Message        string            `json:"message"`
}

// BulkStepResult contains the result of a sequence of steps
type BulkStepResult struct {
	StepsExecuted  int  `json:"steps_executed"`
	RequestedSteps int  `json:"requested_steps"`
	Done           bool `json:"done"`
	Truncated      bool `json:"truncated"`

	// StoppedReason is captured, truncated or invalid_action when the
	// sequence ended before the last pair
	StoppedReason string `json:"stopped_reason,omitempty"`
	StoppedOnStep int    `json:"stopped_on_step,omitempty"`
	Error         string `json:"error,omitempty"`

	PreyReturn     float64 `json:"prey_return"`
	PredatorReturn float64 `json:"predator_return"`

	Steps    []engine.StepRecord `json:"steps"`
	Events   []EnvEvent          `json:"events"`
	EnvState *engine.EnvState    `json:"env_state"`
	Message  string              `json:"message,omitempty"`
}

// RewardInfo is the reward recomputed from the latest positions
type RewardInfo struct {
	PreyReward     float64         `json:"prey_reward"`
	PredatorReward float64         `json:"predator_reward"`
	Distance       int             `json:"distance"`
	Done           bool            `json:"done"`
	PreyPos        engine.Position `json:"prey_pos"`
	PredatorPos    engine.Position `json:"predator_pos"`
}

// EnvEvent represents something that happened during an episode
type EnvEvent struct {
	Type      string    `json:"type"` // "step", "capture", "truncated", "reset"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Step      int       `json:"step,omitempty"`
}

// HistoryOptions configures step history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated step history
type HistoryResponse struct {
	Steps       []engine.StepRecord `json:"steps"`
	TotalSteps  int                 `json:"total_steps"`
	Episode     int                 `json:"episode"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	TotalPages  int                 `json:"total_pages"`
	HasNext     bool                `json:"has_next"`
	HasPrevious bool                `json:"has_previous"`
}

// ConfigInfo provides information about an environment configuration
type ConfigInfo struct {
	Filename            string  `json:"filename"`
	ConfigID            string  `json:"config_id"` // The identifier to use for session creation
	Name                string  `json:"name"`      // Display name
	Description         string  `json:"description"`
	Rows                int     `json:"rows"`
	Cols                int     `json:"cols"`
	TerminalReward      float64 `json:"terminal_reward"`
	DistanceScaleFactor float64 `json:"distance_scale_factor"`
	MaxSteps            int     `json:"max_steps,omitempty"`
}
