package engine

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned when an agent position lies outside the grid
var ErrOutOfBounds = errors.New("position out of bounds")

// frame is one entry of the environment history
type frame struct {
	grid *Grid
	prey Position
	pred Position
}

// Env is the predator/prey transition engine. Only the previous and the
// current frame are retained. Env is not safe for concurrent use.
type Env struct {
	frames [2]frame
	head   int // index of the current frame
	steps  int
	params RewardParams
	done   bool
}

// NewEnv creates an environment from an initial grid and agent positions.
// The grid is copied; the caller keeps ownership of its argument.
func NewEnv(grid *Grid, prey, pred Position, params RewardParams) (*Env, error) {
	if grid == nil {
		return nil, fmt.Errorf("%w: nil grid", ErrInvalidGrid)
	}
	if !grid.InBounds(prey) {
		return nil, fmt.Errorf("%w: prey at %s", ErrOutOfBounds, prey)
	}
	if !grid.InBounds(pred) {
		return nil, fmt.Errorf("%w: predator at %s", ErrOutOfBounds, pred)
	}
	if err := checkMarkers(grid, prey, pred); err != nil {
		return nil, err
	}

	e := &Env{params: params}
	e.frames[0] = frame{grid: grid.Clone(), prey: prey, pred: pred}
	e.done = prey == pred
	return e, nil
}

// checkMarkers verifies the grid agrees with the supplied positions
func checkMarkers(grid *Grid, prey, pred Position) error {
	if grid.At(pred) != PredatorTag {
		return fmt.Errorf("%w: no predator marker at %s", ErrInvalidGrid, pred)
	}
	if prey != pred && grid.At(prey) != PreyTag {
		return fmt.Errorf("%w: no prey marker at %s", ErrInvalidGrid, prey)
	}
	if grid.Count(PreyTag) > 1 || grid.Count(PredatorTag) > 1 {
		return fmt.Errorf("%w: more than one marker per agent", ErrInvalidGrid)
	}
	return nil
}

// Step advances the environment by one turn. It returns the grid before the
// move, the grid after it and both rewards. An invalid action index fails
// with ErrInvalidAction and leaves the environment unchanged.
func (e *Env) Step(preyAction, predAction int) (prev, next *Grid, preyReward, predReward float64, err error) {
	preyDelta, err := DecodeAction(preyAction)
	if err != nil {
		return nil, nil, 0, 0, fmt.Errorf("prey: %w", err)
	}
	predDelta, err := DecodeAction(predAction)
	if err != nil {
		return nil, nil, 0, 0, fmt.Errorf("predator: %w", err)
	}

	cur := e.frames[e.head]
	grid := cur.grid.Clone()

	// Clear both agents before any marker is written back
	grid.Set(cur.prey, Empty)
	grid.Set(cur.pred, Empty)

	prey := Shift(grid, cur.prey, preyDelta, PreyTag)
	pred := Shift(grid, cur.pred, predDelta, PredatorTag)

	// Predator is written last so it shows on a capture cell
	grid.Set(prey, PreyTag)
	grid.Set(pred, PredatorTag)

	e.head = 1 - e.head
	e.frames[e.head] = frame{grid: grid, prey: prey, pred: pred}
	e.steps++

	preyReward, predReward = e.Reward()
	e.done = prey == pred

	return cur.grid.Clone(), grid.Clone(), preyReward, predReward, nil
}

// Reward recomputes both rewards from the latest positions
func (e *Env) Reward() (preyReward, predReward float64) {
	cur := e.frames[e.head]
	return ComputeReward(cur.prey, cur.pred, e.params)
}

// Done reports whether the prey and the predator share a cell
func (e *Env) Done() bool {
	return e.done
}

// Grid returns a copy of the current grid
func (e *Env) Grid() *Grid {
	return e.frames[e.head].grid.Clone()
}

// PreviousGrid returns a copy of the grid before the last step, or nil
// before the first step
func (e *Env) PreviousGrid() *Grid {
	if e.steps == 0 {
		return nil
	}
	return e.frames[1-e.head].grid.Clone()
}

// PreyPosition returns the latest prey position
func (e *Env) PreyPosition() Position {
	return e.frames[e.head].prey
}

// PredatorPosition returns the latest predator position
func (e *Env) PredatorPosition() Position {
	return e.frames[e.head].pred
}

// PreviousPositions returns the positions before the last step
func (e *Env) PreviousPositions() (prey, pred Position, ok bool) {
	if e.steps == 0 {
		return Position{}, Position{}, false
	}
	prev := e.frames[1-e.head]
	return prev.prey, prev.pred, true
}

// Distance returns the Manhattan distance between the agents
func (e *Env) Distance() int {
	cur := e.frames[e.head]
	return ManhattanDistance(cur.prey, cur.pred)
}

// Steps returns the number of completed steps
func (e *Env) Steps() int {
	return e.steps
}

// Params returns the reward constants
func (e *Env) Params() RewardParams {
	return e.params
}

// Dims returns the grid dimensions
func (e *Env) Dims() (rows, cols int) {
	return e.frames[e.head].grid.Dims()
}
