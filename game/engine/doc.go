// Package engine provides the predator/prey gridworld used for
// reinforcement-learning experiments.
//
// The engine package implements:
//   - The occupancy Grid (EMPTY, PREY, PREDATOR tags) on a gonum matrix
//   - Action decoding and bounds-only move validation
//   - The reward function and the Env transition engine
//   - Random initial placement from an injected, seedable generator
//   - Episode management, step traces and snapshots in Simulator
//
// Core Types:
//
// Env is the transition engine: it holds the previous and current frame
// and turns one action per agent into the next grid and both rewards.
// Simulator wraps an Env with an EnvConfig, resets episodes from its own
// random stream and records a per-episode step trace.
//
// Usage:
//
//	grid, prey, pred := engine.GenGrid(engine.NewRand(42))
//	env, err := engine.NewEnv(grid, prey, pred, engine.DefaultRewardParams())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	_, next, preyR, predR, err := env.Step(engine.ActionRight, engine.ActionLeft)
//	if env.Done() {
//		// capture
//	}
//
// Rewards:
//
// With d the Manhattan distance between the agents, the prey receives
// 1 + scale*d and the predator scale/d. On capture (d == 0) the prey loses
// the terminal reward and the predator gains it; the predator's distance
// term is taken as zero there.
//
// Moves that would leave the grid are ignored; the agent stays in place.
// Occupancy never blocks a move. A capture only happens when both agents end
// a step on the same cell; swapping cells is not a capture.
package engine
