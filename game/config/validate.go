package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/CentralLoaf/Gridworld-DQN/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages prefixed with
// "✓" and warnings prefixed with "!"; otherwise it accumulates the
// validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// ValidateFile loads and validates a single environment config file.
// Unknown JSON fields are rejected so misspelled keys do not silently
// fall back to zero values.
func ValidateFile(path string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(path),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var cfg engine.EnvConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := engine.ValidateEnvConfig(&cfg); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	result.Errors = append(result.Errors, describeConfig(&cfg)...)
	return result
}

// ValidateDir validates every *.json file in dir, sorted by file name
func ValidateDir(dir string) ([]ValidationResult, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("config directory %s: %w", dir, err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list config files: %w", err)
	}
	sort.Strings(files)

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, ValidateFile(file))
	}
	return results, nil
}

// describeConfig reports the reward ranges a valid config produces and
// flags settings that make the learning problem degenerate.
func describeConfig(cfg *engine.EnvConfig) []string {
	maxDist := cfg.Rows + cfg.Cols - 2
	scale := cfg.DistanceScaleFactor

	info := []string{
		fmt.Sprintf("✓ Name: %s", cfg.Name),
		fmt.Sprintf("✓ Grid: %dx%d (max distance %d)", cfg.Rows, cfg.Cols, maxDist),
		fmt.Sprintf("✓ Prey reward: %.3g..%.3g per step, %.3g on capture",
			1+scale, 1+scale*float64(maxDist), 1-cfg.TerminalReward),
		fmt.Sprintf("✓ Predator reward: %.3g..%.3g per step, %.3g on capture",
			scale/float64(maxDist), scale, cfg.TerminalReward),
	}

	if cfg.MaxSteps > 0 {
		info = append(info, fmt.Sprintf("✓ Episodes: truncated after %d steps", cfg.MaxSteps))
	} else {
		info = append(info, "✓ Episodes: run until capture")
	}

	if cfg.TerminalReward <= scale {
		info = append(info, fmt.Sprintf("! terminal_reward %.3g does not exceed the adjacent-cell predator reward %.3g", cfg.TerminalReward, scale))
	}
	if cfg.MaxSteps > 0 && cfg.MaxSteps < maxDist {
		info = append(info, fmt.Sprintf("! max_steps %d is shorter than the largest starting distance %d", cfg.MaxSteps, maxDist))
	}

	return info
}
