package frozenlake_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/planlib"
	"github.com/m-mizutani/planlib/env/frozenlake"
)

func move(d string) planlib.Action {
	return planlib.Action{Name: frozenlake.ActionMove, Input: map[string]any{"direction": d}}
}

func look(d string) planlib.Action {
	return planlib.Action{Name: frozenlake.ActionLook, Input: map[string]any{"direction": d}}
}

func TestLake_ReachGoal(t *testing.T) {
	ctx := context.Background()
	lake, err := frozenlake.New(frozenlake.Map4x4)
	gt.NoError(t, err)

	var last *planlib.StepResult
	for _, d := range []string{"down", "down", "right", "down", "right", "right"} {
		last, err = lake.Step(ctx, move(d))
		gt.NoError(t, err)
	}
	gt.Equal(t, last.Observation, any(frozenlake.Position{X: 3, Y: 3}))
	gt.Equal(t, last.Reward, 1.0)
	gt.True(t, last.Terminated)
	gt.False(t, last.Truncated)

	// moves after the end do nothing
	after, err := lake.Step(ctx, move("up"))
	gt.NoError(t, err)
	gt.Equal(t, after.Observation, any(frozenlake.Position{X: 3, Y: 3}))
	gt.Equal(t, after.Reward, 0.0)
	gt.True(t, after.Terminated)
}

func TestLake_Hole(t *testing.T) {
	lake, err := frozenlake.New(frozenlake.Map4x4)
	gt.NoError(t, err)

	ctx := context.Background()
	_, err = lake.Step(ctx, move("right"))
	gt.NoError(t, err)
	res, err := lake.Step(ctx, move("down"))
	gt.NoError(t, err)
	gt.Equal(t, res.Observation, any(frozenlake.Position{X: 1, Y: 1}))
	gt.Equal(t, res.Reward, 0.0)
	gt.True(t, res.Terminated)
}

func TestLake_Truncated(t *testing.T) {
	ctx := context.Background()
	lake, err := frozenlake.New(frozenlake.Map4x4, frozenlake.WithMaxSteps(2))
	gt.NoError(t, err)

	res, err := lake.Step(ctx, move("left"))
	gt.NoError(t, err)
	gt.Equal(t, res.Observation, any(frozenlake.Position{X: 0, Y: 0}))
	gt.False(t, res.Truncated)

	res, err = lake.Step(ctx, move("up"))
	gt.NoError(t, err)
	gt.True(t, res.Truncated)
	gt.False(t, res.Terminated)

	res, err = lake.Step(ctx, move("right"))
	gt.NoError(t, err)
	gt.True(t, res.Truncated)
	gt.Equal(t, res.Observation, any(frozenlake.Position{X: 0, Y: 0}))
}

func TestLake_Observers(t *testing.T) {
	type testCase struct {
		action planlib.Action
		want   any
	}

	runTest := func(tc testCase) func(t *testing.T) {
		return func(t *testing.T) {
			lake, err := frozenlake.New(frozenlake.Map4x4)
			gt.NoError(t, err)

			res, err := lake.Step(context.Background(), tc.action)
			gt.NoError(t, err)
			gt.Equal(t, res.Observation, tc.want)
			gt.Equal(t, lake.Position(), frozenlake.Position{})
		}
	}

	t.Run("look right", runTest(testCase{action: look("right"), want: any("F")}))
	t.Run("look up", runTest(testCase{action: look("up"), want: any("out of bounds")}))
	t.Run("check map", runTest(testCase{
		action: planlib.Action{Name: frozenlake.ActionCheckMap},
		want:   any("SFFF\nFHFH\nFFFH\nHFFG"),
	}))
	t.Run("check position", runTest(testCase{
		action: planlib.Action{Name: frozenlake.ActionCheckPosition},
		want:   any(frozenlake.Position{}),
	}))
	t.Run("bad direction", runTest(testCase{
		action: move("north"),
		want:   any(`Wrong direction "north"; expected one of: left, right, down, up.`),
	}))
	t.Run("unknown action", runTest(testCase{
		action: planlib.Action{Name: "jump"},
		want:   any("jump is not a valid tool, try one of [move, look, check_map, check_position]."),
	}))
}

func TestLake_LookAfterMove(t *testing.T) {
	ctx := context.Background()
	lake, err := frozenlake.New(frozenlake.Map4x4)
	gt.NoError(t, err)

	_, err = lake.Step(ctx, move("down"))
	gt.NoError(t, err)
	res, err := lake.Step(ctx, look("right"))
	gt.NoError(t, err)
	gt.Equal(t, res.Observation, any("H"))
}

func TestLake_SlipperyReplayIsDeterministic(t *testing.T) {
	ctx := context.Background()
	lake, err := frozenlake.New(frozenlake.Map8x8, frozenlake.WithSlippery(true), frozenlake.WithSeed(42))
	gt.NoError(t, err)

	exec := planlib.NewEnvExecutor(lake)
	trajectory := []planlib.Action{move("right"), move("right"), move("down"), move("right")}

	gt.NoError(t, exec.Reset(ctx, trajectory))
	first := lake.Position()

	gt.NoError(t, exec.Reset(ctx, trajectory))
	gt.Equal(t, lake.Position(), first)

	step, err := exec.Execute(ctx, planlib.Action{Name: frozenlake.ActionCheckPosition})
	gt.NoError(t, err)
	gt.Equal(t, step.Observation.(map[string]any)["observation"], any(first))
}

func TestLake_EnvExecutorObservation(t *testing.T) {
	lake, err := frozenlake.New(frozenlake.Map4x4, frozenlake.WithSlippery(true))
	gt.NoError(t, err)

	exec := planlib.NewEnvExecutor(lake)
	specs, err := exec.ToolSpecs(context.Background())
	gt.NoError(t, err)
	gt.A(t, specs).Length(4)
	for _, spec := range specs {
		gt.NoError(t, spec.Validate())
	}

	step, err := exec.Execute(context.Background(), move("down"))
	gt.NoError(t, err)
	obs := step.Observation.(map[string]any)
	gt.Equal(t, obs["info"], any(map[string]any{"prob": 2.0 / 3.0}))
	gt.Equal(t, obs["reward"], any(0.0))
}

func TestNew_InvalidMap(t *testing.T) {
	for name, rows := range map[string][]string{
		"empty":      nil,
		"not square": {"SF", "FFG"},
		"no start":   {"FF", "FG"},
		"two starts": {"SS", "FG"},
		"no goal":    {"SF", "FF"},
		"bad cell":   {"SX", "FG"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := frozenlake.New(rows)
			gt.True(t, errors.Is(err, frozenlake.ErrInvalidMap))
		})
	}
}

func TestGenerate(t *testing.T) {
	rows := frozenlake.Generate(6, 0.8, 7)
	gt.A(t, rows).Length(6)
	gt.Equal(t, rows, frozenlake.Generate(6, 0.8, 7))

	lake, err := frozenlake.New(rows)
	gt.NoError(t, err)
	gt.Equal(t, lake.Size(), 6)
	gt.Equal(t, rows[0][0], byte('S'))
	gt.Equal(t, rows[5][5], byte('G'))
}
