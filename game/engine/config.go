package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// ValidateEnvConfig validates an environment configuration
func ValidateEnvConfig(config *EnvConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate grid dimensions
	if config.Rows < 1 || config.Rows > MaxGridDim {
		return fmt.Errorf("config validation: rows must be between 1 and %d, got %d", MaxGridDim, config.Rows)
	}
	if config.Cols < 1 || config.Cols > MaxGridDim {
		return fmt.Errorf("config validation: cols must be between 1 and %d, got %d", MaxGridDim, config.Cols)
	}
	if config.Rows*config.Cols < 2 {
		return fmt.Errorf("config validation: a %dx%d grid cannot hold both agents", config.Rows, config.Cols)
	}

	// Validate reward constants
	if !finiteNonNegative(config.TerminalReward) {
		return fmt.Errorf("config validation: terminal_reward must be a finite non-negative number, got %v", config.TerminalReward)
	}
	if !finiteNonNegative(config.DistanceScaleFactor) {
		return fmt.Errorf("config validation: distance_scale_factor must be a finite non-negative number, got %v", config.DistanceScaleFactor)
	}

	// Validate episode limits
	if config.MaxSteps < 0 {
		return fmt.Errorf("config validation: max_steps must not be negative, got %d", config.MaxSteps)
	}
	if config.HistoryLimit < 0 {
		return fmt.Errorf("config validation: history_limit must not be negative, got %d", config.HistoryLimit)
	}

	return nil
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// DefaultEnvConfig returns the classic 10x10 environment
func DefaultEnvConfig() *EnvConfig {
	return &EnvConfig{
		Name:                "classic",
		Description:         "10x10 grid, terminal reward 10, distance scale factor 0.5",
		Rows:                DefaultRows,
		Cols:                DefaultCols,
		TerminalReward:      DefaultTerminalReward,
		DistanceScaleFactor: DefaultDistanceScaleFactor,
	}
}

// LoadEnvConfig loads an environment configuration from a JSON file
func LoadEnvConfig(filename string) (*EnvConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config EnvConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}

	if err := ValidateEnvConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
