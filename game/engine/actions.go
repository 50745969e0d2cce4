package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidAction is returned for action indices outside 0..3
var ErrInvalidAction = errors.New("invalid action")

// Action indices understood by the decoder
const (
	ActionDown = iota
	ActionLeft
	ActionUp
	ActionRight

	NumActions
)

var actionDeltas = [NumActions]Delta{
	ActionDown:  {Row: 1, Col: 0},
	ActionLeft:  {Row: 0, Col: -1},
	ActionUp:    {Row: -1, Col: 0},
	ActionRight: {Row: 0, Col: 1},
}

var actionNames = [NumActions]string{
	ActionDown:  "down",
	ActionLeft:  "left",
	ActionUp:    "up",
	ActionRight: "right",
}

// DecodeAction maps an action index to its movement delta
func DecodeAction(index int) (Delta, error) {
	if index < 0 || index >= NumActions {
		return Delta{}, fmt.Errorf("%w: index %d not in [0,%d)", ErrInvalidAction, index, NumActions)
	}
	return actionDeltas[index], nil
}

// ActionName returns the direction name of an action index
func ActionName(index int) string {
	if index < 0 || index >= NumActions {
		return fmt.Sprintf("invalid(%d)", index)
	}
	return actionNames[index]
}

// ActionNames lists direction names in index order
func ActionNames() []string {
	return actionNames[:]
}

// ParseAction accepts either a decimal index or a direction name
func ParseAction(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if _, err := DecodeAction(n); err != nil {
			return 0, err
		}
		return n, nil
	}
	for i, name := range actionNames {
		if name == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAction, s)
}
