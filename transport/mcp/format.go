package mcp

import (
	"fmt"
	"strings"

	"github.com/CentralLoaf/Gridworld-DQN/game/engine"
	"github.com/CentralLoaf/Gridworld-DQN/game/service"
)

const envInstructions = `Gridworld Predator/Prey - Instructions

SETUP:
A prey and a predator live on a rectangular grid (10x10 for the classic
config). At every reset both are placed on two distinct random cells.

GRID LEGEND:
  .  empty cell
  Y  prey
  X  predator (also shown on the capture cell)
Rows grow downwards, columns grow to the right. Positions are (row,col).

ACTIONS (one per agent per step):
  0 down   (row+1)
  1 left   (col-1)
  2 up     (row-1)
  3 right  (col+1)
Names and indices are interchangeable. A move that would leave the grid is
ignored and the agent stays where it is. Agents never block each other.

TERMINATION:
The episode ends when both agents finish a step on the same cell. Swapping
cells in one step is not a capture. Configs with max_steps also truncate
the episode after that many steps. A finished episode must be reset.

REWARDS (d = Manhattan distance after the step):
  prey      1 + scale*d, minus terminal_reward on capture
  predator  scale/d, or terminal_reward on capture
The classic config uses terminal_reward 10 and scale 0.5.

TOOLS:
- step / bulk_step advance the episode; bulk_step stops at episode end
- env_state and reward read the current state without changing it
- step_history pages through the current episode's trace
- create_session with a seed reproduces the same initial placements`

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nSeed: %d\nCreated: %s\nLast accessed: %s\n\n%s",
		session.ID, session.ConfigName, session.Seed,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		session.LastAccessedAt.Format("2006-01-02 15:04:05"),
		formatEnvState(session.EnvState))
}

func formatSessionList(count int, sessions []service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", count)
	for _, s := range sessions {
		episode, steps := 0, 0
		if s.EnvState != nil {
			episode, steps = s.EnvState.Episode, s.EnvState.Steps
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Episode: %d, Steps: %d, Created: %s)\n",
			s.ID, s.ConfigName, episode, steps, s.CreatedAt.Format("15:04:05"))
	}
	return b.String()
}

// formatEnvState renders the state with the grid as text
func formatEnvState(state *engine.EnvState) string {
	if state == nil {
		return "State: unavailable"
	}

	var b strings.Builder
	status := "running"
	switch {
	case state.Done:
		status = "CAPTURED"
	case state.Truncated:
		status = "TRUNCATED"
	}

	fmt.Fprintf(&b, "Episode %d (%s), step %d, status: %s\n", state.Episode, state.ConfigName, state.Steps, status)
	fmt.Fprintf(&b, "Prey: %s  Predator: %s  Distance: %d\n", state.PreyPos, state.PredatorPos, state.Distance)
	fmt.Fprintf(&b, "Reward: prey %.3f, predator %.3f\n", state.PreyReward, state.PredatorReward)
	fmt.Fprintf(&b, "Return: prey %.3f, predator %.3f\n", state.PreyReturn, state.PredatorReturn)
	if state.Grid != nil {
		b.WriteString("\nGrid:\n")
		b.WriteString(state.Grid.String())
		b.WriteString("\n")
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", state.Message)
	}
	return b.String()
}

func formatStepRecord(r engine.StepRecord) string {
	line := fmt.Sprintf("#%d prey %s %s->%s, predator %s %s->%s, d=%d, r=(%.3f, %.3f)",
		r.StepNumber,
		engine.ActionName(r.PreyAction), r.PreyFrom, r.PreyTo,
		engine.ActionName(r.PredatorAction), r.PredatorFrom, r.PredatorTo,
		r.Distance, r.PreyReward, r.PredatorReward)
	if r.Done {
		line += " CAPTURE"
	} else if r.Truncated {
		line += " TRUNCATED"
	}
	return line
}

func formatStepResult(result *service.StepResult) string {
	var b strings.Builder
	b.WriteString(formatStepRecord(result.Step))
	b.WriteString("\n\n")
	b.WriteString(formatEnvState(result.EnvState))
	return b.String()
}

func formatBulkStepResult(sessionID string, result *service.BulkStepResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s: executed %d/%d steps\n", sessionID, result.StepsExecuted, result.RequestedSteps)
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s", result.StoppedReason)
		if result.StoppedOnStep > 0 {
			fmt.Fprintf(&b, " on step %d", result.StoppedOnStep)
		}
		b.WriteString("\n")
	}
	if result.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", result.Error)
	}
	fmt.Fprintf(&b, "Return over these steps: prey %.3f, predator %.3f\n\n", result.PreyReturn, result.PredatorReturn)

	for _, step := range result.Steps {
		b.WriteString(formatStepRecord(step))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(formatEnvState(result.EnvState))
	return b.String()
}

func formatReward(reward *service.RewardInfo) string {
	return fmt.Sprintf("Prey: %s  Predator: %s  Distance: %d  Done: %t\nPrey reward: %.3f\nPredator reward: %.3f\n",
		reward.PreyPos, reward.PredatorPos, reward.Distance, reward.Done,
		reward.PreyReward, reward.PredatorReward)
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Step History, episode %d (Page %d/%d), total steps: %d\n\n",
		history.Episode, history.Page, history.TotalPages, history.TotalSteps)
	if len(history.Steps) == 0 {
		b.WriteString("(no steps in this episode)\n")
	}
	for _, step := range history.Steps {
		b.WriteString(formatStepRecord(step))
		b.WriteString("\n")
	}
	return b.String()
}

func formatConfigs(configs []service.ConfigInfo) string {
	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "- %s (%s)\n  %s\n  Grid: %dx%d, terminal reward: %g, scale: %g",
			cfg.ConfigID, cfg.Name, cfg.Description, cfg.Rows, cfg.Cols,
			cfg.TerminalReward, cfg.DistanceScaleFactor)
		if cfg.MaxSteps > 0 {
			fmt.Fprintf(&b, ", max steps: %d", cfg.MaxSteps)
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

// describeCell reports the occupant of pos and how each agent relates to it
func describeCell(state *engine.EnvState, pos engine.Position) string {
	tag := state.Grid.At(pos)

	occupant := "empty"
	switch tag {
	case engine.PreyTag:
		occupant = "prey"
	case engine.PredatorTag:
		occupant = "predator"
		if state.Done && pos == state.PreyPos {
			occupant = "predator (capture cell, the prey is here too)"
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cell %s\n", pos)
	fmt.Fprintf(&b, "Character: %s\n", tag)
	fmt.Fprintf(&b, "Occupant: %s\n", occupant)

	for _, agent := range []struct {
		name string
		pos  engine.Position
	}{
		{"prey", state.PreyPos},
		{"predator", state.PredatorPos},
	} {
		d := engine.ManhattanDistance(agent.pos, pos)
		fmt.Fprintf(&b, "Distance from %s at %s: %d", agent.name, agent.pos, d)
		if d == 1 {
			fmt.Fprintf(&b, " (reachable with %s)", engine.ActionName(actionTowards(agent.pos, pos)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\nNeighbourhood:\n")
	b.WriteString(localWindow(state.Grid, pos))
	return b.String()
}

// actionTowards returns the action moving from one cell to an adjacent one
func actionTowards(from, to engine.Position) int {
	switch {
	case to.Row > from.Row:
		return engine.ActionDown
	case to.Col < from.Col:
		return engine.ActionLeft
	case to.Row < from.Row:
		return engine.ActionUp
	default:
		return engine.ActionRight
	}
}

// localWindow renders the 3x3 window around pos; '#' marks cells outside the grid
func localWindow(grid *engine.Grid, pos engine.Position) string {
	var b strings.Builder
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			p := engine.Position{Row: pos.Row + dr, Col: pos.Col + dc}
			if !grid.InBounds(p) {
				b.WriteString("#")
				continue
			}
			b.WriteString(grid.At(p).String())
		}
		b.WriteString("\n")
	}
	return b.String()
}
