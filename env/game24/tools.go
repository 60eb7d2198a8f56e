package game24

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
)

var errDivisionByZero = errors.New("division by zero")

type operation struct {
	name        string
	description string
	fn          func(a, b float64) (float64, error)
}

var operations = []operation{
	{
		name:        "add",
		description: "Add two numbers.",
		fn:          func(a, b float64) (float64, error) { return a + b, nil },
	},
	{
		name:        "subtract",
		description: "Subtract two numbers (number2 is subtracted from number1).",
		fn:          func(a, b float64) (float64, error) { return a - b, nil },
	},
	{
		name:        "multiply",
		description: "Multiply two numbers.",
		fn:          func(a, b float64) (float64, error) { return a * b, nil },
	},
	{
		name:        "divide",
		description: "Divide two numbers (number1 is divided by number2).",
		fn: func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, errDivisionByZero
			}
			return a / b, nil
		},
	},
}

const notPresentNote = " If any of the numbers are not present in currently available numbers, an error message will be returned."

// Tools returns the arithmetic tools and get_remaining_numbers, all bound to g.
func (g *Game) Tools() []planlib.Tool {
	tools := make([]planlib.Tool, 0, len(operations)+1)
	for _, op := range operations {
		tools = append(tools, planlib.ToolFunc(operationSpec(op), func(ctx context.Context, args map[string]any) (any, error) {
			a, err := numberArg(args, "number1")
			if err != nil {
				return nil, err
			}
			b, err := numberArg(args, "number2")
			if err != nil {
				return nil, err
			}

			msg, err := g.apply(a, b, op.fn)
			if err != nil {
				return nil, goerr.Wrap(err, "operation failed", goerr.V("op", op.name))
			}
			planlib.LoggerFromContext(ctx).Debug("game24 operation", "op", op.name, "number1", a, "number2", b, "result", msg)
			return msg, nil
		}))
	}

	tools = append(tools, planlib.ToolFunc(planlib.ToolSpec{
		Name:        "get_remaining_numbers",
		Description: "Outputs a space separated list of all remaining numbers.",
		Parameters:  map[string]*planlib.Parameter{},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		return g.String(), nil
	}))

	return tools
}

// NewExecutor returns a ToolExecutor over the game's tools whose Reset
// restores the starting numbers.
func (g *Game) NewExecutor(opts ...planlib.ToolExecutorOption) (*planlib.ToolExecutor, error) {
	opts = append([]planlib.ToolExecutorOption{planlib.WithReset(g.Reset)}, opts...)
	return planlib.NewToolExecutor(g.Tools(), opts...)
}

func operationSpec(op operation) planlib.ToolSpec {
	return planlib.ToolSpec{
		Name:        op.name,
		Description: op.description + notPresentNote,
		Parameters: map[string]*planlib.Parameter{
			"number1": {
				Type:        planlib.TypeNumber,
				Description: "First number in an arithmetic operation.",
			},
			"number2": {
				Type:        planlib.TypeNumber,
				Description: "Second number in an arithmetic operation.",
			},
		},
		Required: []string{"number1", "number2"},
	}
}

func numberArg(args map[string]any, key string) (float64, error) {
	switch v := args[key].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, goerr.Wrap(planlib.ErrInvalidParameter, "not a number", goerr.V("key", key), goerr.V("value", v))
		}
		return f, nil
	case nil:
		return 0, goerr.Wrap(planlib.ErrInvalidParameter, "missing argument", goerr.V("key", key))
	default:
		return 0, goerr.Wrap(planlib.ErrInvalidParameter, "unexpected argument type", goerr.V("key", key), goerr.V("value", v))
	}
}
