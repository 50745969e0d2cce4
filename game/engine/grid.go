package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidGrid is returned when grid dimensions or cell values are unusable
var ErrInvalidGrid = errors.New("invalid grid")

// Grid is the occupancy matrix of an episode. Rows index the first
// coordinate of a Position, columns the second.
type Grid struct {
	m *mat.Dense
}

// NewGrid creates an all-empty grid
func NewGrid(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %dx%d", ErrInvalidGrid, rows, cols)
	}
	return &Grid{m: mat.NewDense(rows, cols, nil)}, nil
}

// GridFromRows builds a grid from a row-major slice of tag values
func GridFromRows(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrInvalidGrid)
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrInvalidGrid, i, len(row), cols)
		}
		for j, v := range row {
			switch Tag(v) {
			case Empty, PreyTag, PredatorTag:
			default:
				return nil, fmt.Errorf("%w: unknown tag %v at (%d,%d)", ErrInvalidGrid, v, i, j)
			}
		}
		data = append(data, row...)
	}
	return &Grid{m: mat.NewDense(len(rows), cols, data)}, nil
}

// Dims returns the number of rows and columns
func (g *Grid) Dims() (rows, cols int) {
	return g.m.Dims()
}

// InBounds reports whether p lies inside the grid
func (g *Grid) InBounds(p Position) bool {
	rows, cols := g.m.Dims()
	return p.Row >= 0 && p.Row < rows && p.Col >= 0 && p.Col < cols
}

// At returns the tag stored at p. p must be in bounds.
func (g *Grid) At(p Position) Tag {
	return Tag(g.m.At(p.Row, p.Col))
}

// Set writes tag t at p. p must be in bounds.
func (g *Grid) Set(p Position, t Tag) {
	g.m.Set(p.Row, p.Col, float64(t))
}

// Clone returns an independent copy of the grid
func (g *Grid) Clone() *Grid {
	return &Grid{m: mat.DenseCopyOf(g.m)}
}

// Equal reports whether both grids have the same shape and cells
func (g *Grid) Equal(other *Grid) bool {
	if g == nil || other == nil {
		return g == other
	}
	return mat.Equal(g.m, other.m)
}

// Count returns the number of cells holding tag t
func (g *Grid) Count(t Tag) int {
	rows, cols := g.m.Dims()
	count := 0
	for i := 0; i < rows; i++ {
		for _, v := range g.m.RawRowView(i)[:cols] {
			if Tag(v) == t {
				count++
			}
		}
	}
	return count
}

// Find returns the first position, in row-major order, holding tag t
func (g *Grid) Find(t Tag) (Position, bool) {
	rows, cols := g.m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if Tag(g.m.At(i, j)) == t {
				return Position{Row: i, Col: j}, true
			}
		}
	}
	return Position{}, false
}

// Matrix exposes the grid as a read-only gonum matrix for numeric consumers
func (g *Grid) Matrix() mat.Matrix {
	return mat.DenseCopyOf(g.m)
}

// Rows returns the grid as a row-major slice copy
func (g *Grid) Rows() [][]float64 {
	rows, cols := g.m.Dims()
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
		copy(out[i], g.m.RawRowView(i)[:cols])
	}
	return out
}

// String renders one line per row using the tag characters
func (g *Grid) String() string {
	rows, cols := g.m.Dims()
	var b strings.Builder
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			b.WriteString(Tag(g.m.At(i, j)).String())
		}
		if i < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// MarshalJSON encodes the grid as a nested array of tag values
func (g *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Rows())
}

// UnmarshalJSON decodes a nested array of tag values
func (g *Grid) UnmarshalJSON(data []byte) error {
	var rows [][]float64
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	decoded, err := GridFromRows(rows)
	if err != nil {
		return err
	}
	g.m = decoded.m
	return nil
}
