package engine

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.Row-to.Row) + abs(from.Col-to.Col)
}

// ComputeReward returns the prey and predator rewards for the given
// positions. The predator's distance term is zero on capture, where the
// plain formula would divide by zero.
func ComputeReward(prey, pred Position, p RewardParams) (preyReward, predReward float64) {
	distance := ManhattanDistance(prey, pred)
	captured := distance == 0

	preyReward = 1.0 + p.DistanceScaleFactor*float64(distance)
	if captured {
		preyReward -= p.TerminalReward
	}

	if captured {
		predReward = p.TerminalReward
	} else {
		predReward = p.DistanceScaleFactor / float64(distance)
	}

	return preyReward, predReward
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
