// Package config provides configuration management for gridworld environments.
//
// The config package handles:
//   - Loading environment configurations from JSON files
//   - Configuration validation through engine.ValidateEnvConfig
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Environment configurations are stored as JSON files in the configs
// directory. The file name without extension is the config ID used when
// creating sessions. Each configuration defines:
//   - Grid dimensions (rows, cols)
//   - Reward constants (terminal_reward, distance_scale_factor)
//   - Optional episode limits (max_steps, history_limit)
//
// Example:
//
//	{
//	  "name": "Classic",
//	  "description": "10x10 grid, terminal reward 10, distance scale factor 0.5",
//	  "rows": 10,
//	  "cols": 10,
//	  "terminal_reward": 10,
//	  "distance_scale_factor": 0.5
//	}
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	envConfig, err := manager.LoadConfig("small")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// When classic.json is missing the default falls back to the first valid
// config in the directory, then to engine.DefaultEnvConfig.
package config
