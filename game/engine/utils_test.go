package engine

import "testing"

func TestManhattanDistance(t *testing.T) {
	tests := []struct {
		from, to Position
		want     int
	}{
		{Position{0, 0}, Position{0, 0}, 0},
		{Position{2, 3}, Position{2, 4}, 1},
		{Position{0, 0}, Position{9, 9}, 18},
		{Position{7, 1}, Position{2, 5}, 9},
	}

	for _, test := range tests {
		if got := ManhattanDistance(test.from, test.to); got != test.want {
			t.Errorf("ManhattanDistance(%s, %s) = %d, expected %d", test.from, test.to, got, test.want)
		}
		if got := ManhattanDistance(test.to, test.from); got != test.want {
			t.Errorf("ManhattanDistance is not symmetric for %s, %s", test.from, test.to)
		}
	}
}

func TestComputeReward(t *testing.T) {
	params := DefaultRewardParams()

	tests := []struct {
		name     string
		prey     Position
		pred     Position
		wantPrey float64
		wantPred float64
	}{
		{"adjacent", Position{2, 3}, Position{2, 4}, 1.5, 0.5},
		{"distance 4", Position{0, 0}, Position{2, 2}, 3.0, 0.125},
		{"far corners", Position{0, 0}, Position{9, 9}, 10.0, 0.5 / 18},
		{"capture", Position{5, 5}, Position{5, 5}, -9.0, 10.0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			preyR, predR := ComputeReward(test.prey, test.pred, params)
			if !almostEqual(preyR, test.wantPrey) {
				t.Errorf("Expected prey reward %v, got %v", test.wantPrey, preyR)
			}
			if !almostEqual(predR, test.wantPred) {
				t.Errorf("Expected predator reward %v, got %v", test.wantPred, predR)
			}
		})
	}
}

func TestComputeReward_CustomParams(t *testing.T) {
	params := RewardParams{TerminalReward: 100, DistanceScaleFactor: 2}

	preyR, predR := ComputeReward(Position{0, 0}, Position{0, 4}, params)
	if !almostEqual(preyR, 9) || !almostEqual(predR, 0.5) {
		t.Errorf("Expected (9, 0.5), got (%v, %v)", preyR, predR)
	}

	preyR, predR = ComputeReward(Position{1, 1}, Position{1, 1}, params)
	if !almostEqual(preyR, -99) || !almostEqual(predR, 100) {
		t.Errorf("Expected (-99, 100) on capture, got (%v, %v)", preyR, predR)
	}
}
