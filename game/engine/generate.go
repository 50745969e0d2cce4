package engine

import (
	"fmt"
	"math/rand/v2"
)

// NewRand returns a deterministic generator for the given seed
func NewRand(seed uint64) *rand.Rand {
	return rand.New(newSource(seed))
}

func newSource(seed uint64) *rand.PCG {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// GenGrid creates a DefaultRows x DefaultCols grid with the prey and the
// predator placed on two distinct uniformly random cells.
func GenGrid(rng *rand.Rand) (*Grid, Position, Position) {
	grid, prey, pred, err := GenGridSize(DefaultRows, DefaultCols, rng)
	if err != nil {
		// default dimensions always hold at least two cells
		panic(err)
	}
	return grid, prey, pred
}

// GenGridSize is GenGrid for arbitrary dimensions
func GenGridSize(rows, cols int, rng *rand.Rand) (*Grid, Position, Position, error) {
	if rows*cols < 2 {
		return nil, Position{}, Position{}, fmt.Errorf("%w: %dx%d grid cannot hold two agents", ErrInvalidGrid, rows, cols)
	}
	grid, err := NewGrid(rows, cols)
	if err != nil {
		return nil, Position{}, Position{}, err
	}

	// Two draws without replacement over the flattened cells
	cells := rows * cols
	first := rng.IntN(cells)
	second := rng.IntN(cells - 1)
	if second >= first {
		second++
	}

	prey := Position{Row: first / cols, Col: first % cols}
	pred := Position{Row: second / cols, Col: second % cols}

	grid.Set(prey, PreyTag)
	grid.Set(pred, PredatorTag)

	return grid, prey, pred, nil
}
