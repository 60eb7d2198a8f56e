package adapt

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
)

const (
	ToolCheckPlan             = "check_plan"
	ToolAddTask               = "add_task"
	ToolEditTask              = "edit_task"
	ToolRemoveTask            = "remove_task"
	ToolDefineAggregationMode = "define_aggregation_mode"
)

var (
	taskInputsParam = &planlib.Parameter{
		Type:        planlib.TypeString,
		Description: "Inputs for the task. Should be a comprehensive natural language instruction that will be passed to the Executor agent.",
	}
	taskPositionParam = &planlib.Parameter{
		Type:        planlib.TypeInteger,
		Description: "The position of the task in the current plan. Note that the indexing starts with 0.",
	}
)

// PlannerTools returns the tools an agent planner edits plan with.
func PlannerTools(plan *Plan) []planlib.Tool {
	return []planlib.Tool{
		planlib.ToolFunc(planlib.ToolSpec{
			Name:        ToolCheckPlan,
			Description: "Get information about the current plan. Will return the number of subtasks, their inputs and the selected mode of aggregation of their results (and/or).",
		}, func(ctx context.Context, args map[string]any) (any, error) {
			return plan.String(), nil
		}),

		planlib.ToolFunc(planlib.ToolSpec{
			Name:        ToolAddTask,
			Description: "Add a new subtask to the current plan. If task_position is not given, the task is appended to the end of the plan.",
			Parameters: map[string]*planlib.Parameter{
				"task_inputs":   taskInputsParam,
				"task_position": taskPositionParam,
			},
			Required: []string{"task_inputs"},
		}, func(ctx context.Context, args map[string]any) (any, error) {
			inputs, err := stringArg(args, "task_inputs")
			if err != nil {
				return nil, err
			}

			if _, ok := args["task_position"]; !ok {
				plan.Subtasks = append(plan.Subtasks, TextSubtask(inputs))
				return "Successfully added a new subtask to the end of the current plan.", nil
			}

			pos, err := intArg(args, "task_position")
			if err != nil {
				return nil, err
			}
			if pos < 0 || pos > len(plan.Subtasks) {
				return fmt.Sprintf("Couldn't insert task to position %d. Currently, the plan has %d tasks.", pos, len(plan.Subtasks)), nil
			}

			plan.Subtasks = slices.Insert(plan.Subtasks, pos, TextSubtask(inputs))
			return fmt.Sprintf("Successfully added a new subtask to position %d in the current plan.", pos), nil
		}),

		planlib.ToolFunc(planlib.ToolSpec{
			Name:        ToolEditTask,
			Description: "Changes the formulation of the existing subtask in the current plan.",
			Parameters: map[string]*planlib.Parameter{
				"task_inputs":   taskInputsParam,
				"task_position": taskPositionParam,
			},
			Required: []string{"task_inputs", "task_position"},
		}, func(ctx context.Context, args map[string]any) (any, error) {
			inputs, err := stringArg(args, "task_inputs")
			if err != nil {
				return nil, err
			}
			pos, err := intArg(args, "task_position")
			if err != nil {
				return nil, err
			}
			if pos < 0 || pos >= len(plan.Subtasks) {
				return fmt.Sprintf("Couldn't edit the subtask at position %d. Currently, the plan has %d tasks.", pos, len(plan.Subtasks)), nil
			}

			plan.Subtasks[pos] = TextSubtask(inputs)
			return fmt.Sprintf("Successfully edited the subtask at position %d in the current plan.", pos), nil
		}),

		planlib.ToolFunc(planlib.ToolSpec{
			Name:        ToolRemoveTask,
			Description: "Remove a subtask from the current plan.",
			Parameters: map[string]*planlib.Parameter{
				"task_position": taskPositionParam,
			},
			Required: []string{"task_position"},
		}, func(ctx context.Context, args map[string]any) (any, error) {
			pos, err := intArg(args, "task_position")
			if err != nil {
				return nil, err
			}
			if pos < 0 || pos >= len(plan.Subtasks) {
				return fmt.Sprintf("Couldn't remove the subtask at position %d. Currently, the plan has %d tasks.", pos, len(plan.Subtasks)), nil
			}

			plan.Subtasks = slices.Delete(plan.Subtasks, pos, pos+1)
			return fmt.Sprintf("Successfully removed the subtask at position %d in the current plan.", pos), nil
		}),

		planlib.ToolFunc(planlib.ToolSpec{
			Name:        ToolDefineAggregationMode,
			Description: `Define how the results of the subtasks are aggregated. "and": all subtasks have to be completed successfully. "or": completing any one subtask successfully is enough.`,
			Parameters: map[string]*planlib.Parameter{
				"aggregation_mode": {
					Type:        planlib.TypeString,
					Description: "How the results of the subtasks defined in the current plan should be aggregated.",
					Enum:        []string{string(ModeAnd), string(ModeOr)},
				},
			},
			Required: []string{"aggregation_mode"},
		}, func(ctx context.Context, args map[string]any) (any, error) {
			raw, err := stringArg(args, "aggregation_mode")
			if err != nil {
				return nil, err
			}
			mode := AggregationMode(raw)
			if err := mode.Validate(); err != nil {
				return nil, err
			}

			plan.Mode = mode
			return fmt.Sprintf("Successfully set aggregation mode to %s", mode), nil
		}),
	}
}

func stringArg(args map[string]any, key string) (string, error) {
	switch v := args[key].(type) {
	case string:
		return v, nil
	case nil:
		return "", goerr.Wrap(planlib.ErrInvalidParameter, "missing argument", goerr.V("key", key))
	default:
		return fmt.Sprint(v), nil
	}
}

func intArg(args map[string]any, key string) (int, error) {
	switch v := args[key].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, goerr.Wrap(planlib.ErrInvalidParameter, "argument is not an integer", goerr.V("key", key), goerr.V("value", v))
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, goerr.Wrap(planlib.ErrInvalidParameter, "argument is not an integer", goerr.V("key", key), goerr.V("value", v))
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, goerr.Wrap(planlib.ErrInvalidParameter, "argument is not an integer", goerr.V("key", key), goerr.V("value", v))
		}
		return n, nil
	default:
		return 0, goerr.Wrap(planlib.ErrInvalidParameter, "missing argument", goerr.V("key", key))
	}
}
