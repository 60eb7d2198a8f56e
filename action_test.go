package planlib_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/planlib"
)

type position struct{ X, Y int }

func (p position) String() string { return "pos" }

func TestActionString(t *testing.T) {
	a := planlib.Action{Name: "add", Input: map[string]any{"number2": 6, "number1": 4}}
	gt.Equal(t, a.String(), "add(number1=4, number2=6)")

	batch := planlib.ActionBatch{a, {Name: "get_remaining_numbers"}}
	gt.Equal(t, batch.String(), "[add(number1=4, number2=6), get_remaining_numbers()]")
}

func TestActionClone(t *testing.T) {
	a := planlib.Action{Name: "move", Input: map[string]any{"direction": "left"}}
	b := a.Clone()
	b.Input["direction"] = "right"
	gt.Equal(t, a.Input["direction"], any("left"))
}

func TestFinish(t *testing.T) {
	f := planlib.NewFinish("24", "done")
	gt.Equal(t, f.Output(), "24")
	gt.Equal(t, f.Log, "done")
	gt.Equal(t, f.String(), "finish: 24")

	gt.Equal(t, planlib.Finish{ReturnValues: map[string]any{"output": 24}}.Output(), "24")
	gt.Equal(t, planlib.Finish{}.Output(), "")

	limit := planlib.IterationLimitFinish()
	gt.Equal(t, limit.Output(), planlib.IterationLimitLog)
}

func TestObservationString(t *testing.T) {
	testCases := map[string]struct {
		obs  any
		want string
	}{
		"nil":      {obs: nil, want: ""},
		"string":   {obs: "4 6 24", want: "4 6 24"},
		"stringer": {obs: position{1, 2}, want: "pos"},
		"map":      {obs: map[string]any{"reward": 1}, want: `{"reward":1}`},
		"number":   {obs: 2.5, want: "2.5"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			gt.Equal(t, planlib.ObservationString(tc.obs), tc.want)
		})
	}
}

func TestActions(t *testing.T) {
	steps := []planlib.Step{
		{Action: planlib.Action{Name: "a"}, Observation: "1"},
		{Action: planlib.Action{Name: "b"}, Observation: "2"},
	}
	actions := planlib.Actions(steps)
	gt.A(t, actions).Length(2)
	gt.Equal(t, actions[1].Name, "b")
}

func TestFormatTrajectory(t *testing.T) {
	out := planlib.FormatTrajectory([]planlib.Step{
		{Action: planlib.Action{Name: "subtract", Input: map[string]any{"number1": 13, "number2": 9}}, Observation: "4 4 10"},
	})
	gt.Equal(t, out, "1. Action: subtract(number1=13, number2=9)\n   Observation: 4 4 10\n")
}

type strangeThought struct{ planlib.Thought }

func TestExecuteThought(t *testing.T) {
	exec := gt.R1(planlib.NewToolExecutor([]planlib.Tool{echoTool("echo")})).NoError(t)
	ctx := t.Context()

	steps := gt.R1(planlib.ExecuteThought(ctx, exec, planlib.Action{Name: "echo", Input: map[string]any{"v": 1}})).NoError(t)
	gt.A(t, steps).Length(1)

	steps = gt.R1(planlib.ExecuteThought(ctx, exec, planlib.ActionBatch{{Name: "echo"}, {Name: "echo"}})).NoError(t)
	gt.A(t, steps).Length(2)

	_, err := planlib.ExecuteThought(ctx, exec, planlib.NewFinish("x", ""))
	gt.True(t, errors.Is(err, planlib.ErrInconsistentState))

	_, err = planlib.ExecuteThought(ctx, exec, strangeThought{})
	gt.True(t, errors.Is(err, planlib.ErrUnknownThought))
}
