package engine

// Shift returns where an agent at pos ends up after applying d. Moves that
// leave the grid are rejected and the agent stays put. Occupancy is not
// consulted, so an agent may step onto the other agent's cell. tag names the
// moving agent and does not change the result.
func Shift(grid *Grid, pos Position, d Delta, tag Tag) Position {
	next := pos.Add(d)
	if !grid.InBounds(next) {
		return pos
	}
	return next
}

// CanMove reports whether the move from pos along d stays inside the grid
func CanMove(grid *Grid, pos Position, d Delta) bool {
	return grid.InBounds(pos.Add(d))
}

// PossibleActions returns the action indices that move an agent at pos
func PossibleActions(grid *Grid, pos Position) []int {
	var possible []int
	for action := 0; action < NumActions; action++ {
		if CanMove(grid, pos, actionDeltas[action]) {
			possible = append(possible, action)
		}
	}
	return possible
}

// LocalView lists the 8 neighbouring cells of pos, clockwise from north.
// Out-of-bounds neighbours are reported with InBounds false.
func LocalView(grid *Grid, pos Position) []NeighborCell {
	directions := []Delta{
		{Row: -1, Col: 0},  // North
		{Row: -1, Col: 1},  // North-East
		{Row: 0, Col: 1},   // East
		{Row: 1, Col: 1},   // South-East
		{Row: 1, Col: 0},   // South
		{Row: 1, Col: -1},  // South-West
		{Row: 0, Col: -1},  // West
		{Row: -1, Col: -1}, // North-West
	}

	view := make([]NeighborCell, len(directions))
	for i, d := range directions {
		p := pos.Add(d)
		cell := NeighborCell{Position: p}
		if grid.InBounds(p) {
			cell.InBounds = true
			cell.Tag = grid.At(p)
		}
		view[i] = cell
	}
	return view
}

// NeighborCell is one entry of a local view
type NeighborCell struct {
	Position Position `json:"position"`
	Tag      Tag      `json:"tag"`
	InBounds bool     `json:"in_bounds"`
}
