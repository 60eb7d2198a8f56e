package frozenlake

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/planlib"
)

const (
	ActionMove          = "move"
	ActionLook          = "look"
	ActionCheckMap      = "check_map"
	ActionCheckPosition = "check_position"
)

var actionNames = []string{ActionMove, ActionLook, ActionCheckMap, ActionCheckPosition}

// Step applies one action. move changes the walker's position; look,
// check_map and check_position only observe. Unknown actions and bad
// directions are reported in the observation.
func (l *Lake) Step(ctx context.Context, action planlib.Action) (*planlib.StepResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	logger := planlib.LoggerFromContext(ctx)

	switch action.Name {
	case ActionMove, ActionLook:
		raw, _ := action.Input["direction"].(string)
		d, ok := parseDirection(raw)
		if !ok {
			return observe(fmt.Sprintf("Wrong direction %q; expected one of: %s.", raw, strings.Join(directions, ", "))), nil
		}
		if action.Name == ActionLook {
			return observe(l.look(d)), nil
		}

		result := l.move(d)
		logger.Debug("frozenlake move", "direction", d, "position", l.pos, "terminated", result.Terminated)
		return result, nil

	case ActionCheckMap:
		return observe(l.String()), nil

	case ActionCheckPosition:
		return observe(l.pos), nil

	default:
		logger.Info("unknown frozenlake action", "action", action.Name)
		return observe(fmt.Sprintf("%s is not a valid tool, try one of [%s].", action.Name, strings.Join(actionNames, ", "))), nil
	}
}

func observe(v any) *planlib.StepResult {
	return &planlib.StepResult{Observation: v, Info: map[string]any{}}
}

// ToolSpecs describes the actions Step accepts.
func (l *Lake) ToolSpecs(_ context.Context) ([]planlib.ToolSpec, error) {
	directionParam := func(desc string) map[string]*planlib.Parameter {
		return map[string]*planlib.Parameter{
			"direction": {
				Type:        planlib.TypeString,
				Description: desc,
				Enum:        directions,
			},
		}
	}

	return []planlib.ToolSpec{
		{
			Name: ActionMove,
			Description: `Moves one step in given direction. Returns the following:
* observation: current position on the board;
* reward: 1 when the goal is reached, 0 otherwise;
* terminated: if true, the game has ended: there's no opportunity to move anymore (either the goal was found or the player has fallen into a hole);
* truncated: if true, the time limit has been exceeded;
* info: probability of moving in the wrong direction for the current cell (ice is slippery!)`,
			Parameters: directionParam("Which direction to move."),
			Required:   []string{"direction"},
		},
		{
			Name: ActionLook,
			Description: `Peeks at the adjacent cell in given direction. The following options are possible:
* out of bounds - it's not possible to move in the given direction from the current cell;
* S - starting cell;
* H - hole;
* F - frozen cell;
* G - goal.`,
			Parameters: directionParam("Which direction to look at."),
			Required:   []string{"direction"},
		},
		{
			Name: ActionCheckMap,
			Description: `Peeks at current map without changing its state.

The map is an n x n grid where different types of cells are denoted by different letters:
* S - start cell
* G - goal cell
* F - frozen cell
* H - hole cell`,
			Parameters: map[string]*planlib.Parameter{},
		},
		{
			Name:        ActionCheckPosition,
			Description: "Peeks at current position without changing its state. Position is (x, y) with x the column and y the row.",
			Parameters:  map[string]*planlib.Parameter{},
		},
	}, nil
}

var (
	_ planlib.Env          = (*Lake)(nil)
	_ planlib.ToolProvider = (*Lake)(nil)
)
