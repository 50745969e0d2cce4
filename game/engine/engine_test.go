package engine

import (
	"encoding/json"
	"errors"
	"testing"
)

func lineConfig(maxSteps, historyLimit int) *EnvConfig {
	return &EnvConfig{
		Name:                "line",
		Description:         "1x2 corridor",
		Rows:                1,
		Cols:                2,
		TerminalReward:      10,
		DistanceScaleFactor: 0.5,
		MaxSteps:            maxSteps,
		HistoryLimit:        historyLimit,
	}
}

// chaseAction moves the predator one column toward the prey on a single row
func chaseAction(s *Simulator) int {
	prey, pred := s.GetPositions()
	if prey.Col > pred.Col {
		return ActionRight
	}
	return ActionLeft
}

func TestNewSimulator(t *testing.T) {
	sim, err := NewSimulator(DefaultEnvConfig(), 1)
	if err != nil {
		t.Fatalf("Failed to create simulator: %v", err)
	}

	state := sim.GetState()
	if state.Episode != 1 {
		t.Errorf("Expected episode 1, got %d", state.Episode)
	}
	if state.EpisodeID == "" {
		t.Error("Expected an episode ID")
	}
	if state.Steps != 0 || state.Done || state.Truncated {
		t.Errorf("Expected a fresh episode, got %+v", state)
	}
	if state.PreviousGrid != nil {
		t.Error("Expected no previous grid before the first step")
	}
	if state.PreyPos == state.PredatorPos {
		t.Error("Agents must start on distinct cells")
	}

	if _, err := NewSimulator(&EnvConfig{Name: "bad", Description: "bad", Rows: 0, Cols: 3}, 1); err == nil {
		t.Error("Expected an error for an invalid config")
	}
}

func TestSimulator_CaptureEndsEpisode(t *testing.T) {
	sim, err := NewSimulator(lineConfig(0, 0), 5)
	if err != nil {
		t.Fatalf("Failed to create simulator: %v", err)
	}

	outcome, err := sim.Step(ActionUp, chaseAction(sim))
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if !outcome.Done || !sim.IsDone() || !sim.IsOver() {
		t.Fatal("Expected the predator to catch the prey on a 1x2 grid")
	}
	if outcome.Record.StepNumber != 1 || outcome.Record.Distance != 0 {
		t.Errorf("Unexpected record: %+v", outcome.Record)
	}
	if outcome.PredatorReward != 10 || outcome.PreyReward != -9 {
		t.Errorf("Unexpected rewards: prey=%v predator=%v", outcome.PreyReward, outcome.PredatorReward)
	}

	_, err = sim.Step(ActionUp, ActionUp)
	if !errors.Is(err, ErrEpisodeOver) {
		t.Errorf("Expected ErrEpisodeOver, got %v", err)
	}
}

func TestSimulator_Reset(t *testing.T) {
	sim, _ := NewSimulator(lineConfig(0, 0), 9)
	firstID := sim.GetState().EpisodeID

	sim.Step(ActionUp, chaseAction(sim))

	state, err := sim.Reset()
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if state.Episode != 2 {
		t.Errorf("Expected episode 2, got %d", state.Episode)
	}
	if state.EpisodeID == firstID {
		t.Error("Expected a new episode ID after reset")
	}
	if state.Steps != 0 || state.Done {
		t.Errorf("Expected a fresh episode, got steps=%d done=%v", state.Steps, state.Done)
	}
	if state.TotalSteps != 1 {
		t.Errorf("Expected total steps to survive reset, got %d", state.TotalSteps)
	}
	if len(sim.GetTrace()) != 0 || sim.GetLastStep() != nil {
		t.Error("Expected an empty trace after reset")
	}
	if state.PreyReturn != 0 || state.PredatorReturn != 0 {
		t.Error("Expected returns to be cleared after reset")
	}
}

func TestSimulator_Truncation(t *testing.T) {
	sim, _ := NewSimulator(lineConfig(2, 0), 3)

	// Both agents push against the top edge and never move
	for i := 1; i <= 2; i++ {
		outcome, err := sim.Step(ActionUp, ActionUp)
		if err != nil {
			t.Fatalf("Step %d failed: %v", i, err)
		}
		if outcome.Done {
			t.Fatalf("Unexpected capture at step %d", i)
		}
		if want := i == 2; outcome.Truncated != want {
			t.Errorf("Step %d: expected truncated=%v, got %v", i, want, outcome.Truncated)
		}
	}

	if !sim.IsTruncated() || sim.IsDone() {
		t.Error("Expected a truncated episode without capture")
	}
	if _, err := sim.Step(ActionUp, ActionUp); !errors.Is(err, ErrEpisodeOver) {
		t.Errorf("Expected ErrEpisodeOver after truncation, got %v", err)
	}

	sim.Reset()
	if sim.IsTruncated() {
		t.Error("Reset should clear truncation")
	}
}

func TestSimulator_Returns(t *testing.T) {
	sim, _ := NewSimulator(lineConfig(0, 0), 11)

	for i := 0; i < 3; i++ {
		sim.Step(ActionUp, ActionUp)
	}

	state := sim.GetState()
	// Distance stays 1: prey earns 1.5, predator 0.5 per step
	if !almostEqual(state.PreyReturn, 4.5) || !almostEqual(state.PredatorReturn, 1.5) {
		t.Errorf("Expected returns 4.5/1.5, got %v/%v", state.PreyReturn, state.PredatorReturn)
	}
}

func TestSimulator_HistoryLimit(t *testing.T) {
	sim, _ := NewSimulator(lineConfig(0, 3), 2)

	for i := 0; i < 5; i++ {
		if _, err := sim.Step(ActionUp, ActionUp); err != nil {
			t.Fatalf("Step %d failed: %v", i+1, err)
		}
	}

	trace := sim.GetTrace()
	if len(trace) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(trace))
	}
	if trace[0].StepNumber != 3 || trace[2].StepNumber != 5 {
		t.Errorf("Expected steps 3..5, got %d..%d", trace[0].StepNumber, trace[2].StepNumber)
	}
	if last := sim.GetLastStep(); last == nil || last.StepNumber != 5 {
		t.Errorf("Expected last step 5, got %+v", last)
	}
}

func TestSimulator_TraceIsCopied(t *testing.T) {
	sim, _ := NewSimulator(lineConfig(0, 0), 4)
	if _, err := sim.Step(ActionUp, ActionUp); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	trace := sim.GetTrace()
	trace[0].PreyReward = 999

	last := sim.GetLastStep()
	last.StepNumber = 7

	again := sim.GetTrace()
	if len(again) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(again))
	}
	if again[0].PreyReward == 999 || again[0].StepNumber != 1 {
		t.Errorf("Mutating returned records changed the trace: %+v", again[0])
	}
	if snap, _ := sim.Snapshot(); snap.Trace[0].StepNumber != 1 {
		t.Errorf("Snapshot saw a mutated trace: %+v", snap.Trace[0])
	}
}

func TestSimulator_InvalidAction(t *testing.T) {
	sim, _ := NewSimulator(DefaultEnvConfig(), 4)
	before := sim.GetState()

	if _, err := sim.Step(4, ActionUp); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("Expected ErrInvalidAction, got %v", err)
	}

	after := sim.GetState()
	if after.Steps != 0 || after.TotalSteps != 0 || len(sim.GetTrace()) != 0 {
		t.Error("Invalid action must not record a step")
	}
	if !after.Grid.Equal(before.Grid) {
		t.Error("Invalid action changed the grid")
	}
}

func TestSimulator_BulkStep(t *testing.T) {
	t.Run("stops at capture", func(t *testing.T) {
		sim, _ := NewSimulator(lineConfig(0, 0), 8)
		prey, pred := sim.GetPositions()
		chase := ActionLeft
		if prey.Col > pred.Col {
			chase = ActionRight
		}

		pairs := []ActionPair{
			{PreyAction: ActionUp, PredatorAction: chase},
			{PreyAction: ActionUp, PredatorAction: ActionUp},
			{PreyAction: ActionUp, PredatorAction: ActionUp},
		}
		outcomes, err := sim.BulkStep(pairs)
		if err != nil {
			t.Fatalf("BulkStep failed: %v", err)
		}
		if len(outcomes) != 1 {
			t.Errorf("Expected 1 executed step, got %d", len(outcomes))
		}
		if !sim.IsDone() {
			t.Error("Expected capture")
		}
	})

	t.Run("invalid action returns partial outcomes", func(t *testing.T) {
		sim, _ := NewSimulator(lineConfig(0, 0), 8)
		pairs := []ActionPair{
			{PreyAction: ActionUp, PredatorAction: ActionUp},
			{PreyAction: 7, PredatorAction: ActionUp},
			{PreyAction: ActionUp, PredatorAction: ActionUp},
		}

		outcomes, err := sim.BulkStep(pairs)
		if !errors.Is(err, ErrInvalidAction) {
			t.Fatalf("Expected ErrInvalidAction, got %v", err)
		}
		if len(outcomes) != 1 {
			t.Errorf("Expected 1 executed step, got %d", len(outcomes))
		}
		if sim.GetState().Steps != 1 {
			t.Errorf("Expected 1 step in the episode, got %d", sim.GetState().Steps)
		}
	})
}

func TestSimulator_SeededResetsAreReproducible(t *testing.T) {
	a, _ := NewSimulator(DefaultEnvConfig(), 1234)
	b, _ := NewSimulator(DefaultEnvConfig(), 1234)

	for i := 0; i < 10; i++ {
		pa, qa := a.GetPositions()
		pb, qb := b.GetPositions()
		if pa != pb || qa != qb {
			t.Fatalf("Reset %d diverged: %s/%s vs %s/%s", i, pa, qa, pb, qb)
		}
		a.Reset()
		b.Reset()
	}
}

func TestSimulator_SnapshotRestore(t *testing.T) {
	config := DefaultEnvConfig()
	config.MaxSteps = 100
	sim, _ := NewSimulator(config, 77)

	for i := 0; i < 3; i++ {
		if _, err := sim.Step(ActionDown, ActionUp); err != nil && !errors.Is(err, ErrEpisodeOver) {
			t.Fatalf("Step failed: %v", err)
		}
	}

	snap, err := sim.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Failed to marshal snapshot: %v", err)
	}
	var decoded SimulatorSnapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal snapshot: %v", err)
	}

	restored, err := RestoreSimulator(&decoded)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	orig, got := sim.GetState(), restored.GetState()
	if !got.Grid.Equal(orig.Grid) || !got.PreviousGrid.Equal(orig.PreviousGrid) {
		t.Error("Restored grids differ from the original")
	}
	if got.PreyPos != orig.PreyPos || got.PredatorPos != orig.PredatorPos {
		t.Errorf("Restored positions differ: %s/%s vs %s/%s", got.PreyPos, got.PredatorPos, orig.PreyPos, orig.PredatorPos)
	}
	if got.Steps != orig.Steps || got.Episode != orig.Episode || got.EpisodeID != orig.EpisodeID {
		t.Errorf("Restored counters differ: %+v vs %+v", got, orig)
	}
	if len(restored.GetTrace()) != len(sim.GetTrace()) {
		t.Errorf("Expected %d trace records, got %d", len(sim.GetTrace()), len(restored.GetTrace()))
	}

	// The random stream continues where the original left off
	sim.Reset()
	restored.Reset()
	p1, q1 := sim.GetPositions()
	p2, q2 := restored.GetPositions()
	if p1 != p2 || q1 != q2 {
		t.Errorf("Random stream diverged after restore: %s/%s vs %s/%s", p1, q1, p2, q2)
	}
}

func TestRestoreSimulator_Invalid(t *testing.T) {
	if _, err := RestoreSimulator(nil); err == nil {
		t.Error("Expected an error for a nil snapshot")
	}
	if _, err := RestoreSimulator(&SimulatorSnapshot{Config: DefaultEnvConfig()}); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("Expected ErrInvalidGrid for a snapshot without grid, got %v", err)
	}
}

func TestSimulator_PossibleActionsAndLocalView(t *testing.T) {
	sim, _ := NewSimulator(lineConfig(0, 0), 1)

	// On a 1x2 grid each agent can only move sideways toward the other
	for _, agent := range []Agent{Prey, Predator} {
		actions := sim.GetPossibleActions(agent)
		if len(actions) != 1 {
			t.Errorf("%s: expected 1 possible action, got %v", agent, actions)
		}
		view := sim.GetLocalView(agent)
		if len(view) != 8 {
			t.Errorf("%s: expected 8 neighbours, got %d", agent, len(view))
		}
	}
}
