package adapt_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/planlib"
	"github.com/m-mizutani/planlib/strategy/adapt"
	"github.com/m-mizutani/planlib/trace"
)

// fakeExecutor completes the tasks named in succeed and fails the others.
// A task's name is its "inputs" value.
type fakeExecutor struct {
	succeed  map[string]bool
	attempts []string
	resets   [][]planlib.Action
}

func (x *fakeExecutor) Attempt(ctx context.Context, inputs map[string]any) (*adapt.Attempt, error) {
	name := fmt.Sprint(inputs["inputs"])
	x.attempts = append(x.attempts, name)

	step := planlib.Step{Action: planlib.Action{Name: "act_" + name}, Observation: "ok"}
	if x.succeed[name] {
		return &adapt.Attempt{
			Finish:     planlib.NewFinish(name, "Task completed"),
			Trajectory: []planlib.Step{step},
			Completed:  true,
		}, nil
	}
	return &adapt.Attempt{
		Finish:     planlib.NewFinish(name, name+" failed"),
		Trajectory: []planlib.Step{step},
	}, nil
}

func (x *fakeExecutor) Reset(ctx context.Context, actions []planlib.Action) error {
	x.resets = append(x.resets, actions)
	return nil
}

// rootPlanner decomposes only the root task.
type rootPlanner struct {
	plan  *adapt.Plan
	calls int
}

func (p *rootPlanner) Plan(ctx context.Context, input *adapt.PlannerInput) (*adapt.Plan, error) {
	p.calls++
	if input.Depth == 0 {
		return p.plan, nil
	}
	return adapt.NewPlan(), nil
}

func subtasks(names ...string) []map[string]any {
	out := make([]map[string]any, len(names))
	for i, n := range names {
		out[i] = adapt.TextSubtask(n)
	}
	return out
}

func TestADaPT(t *testing.T) {
	ctx := context.Background()
	root := map[string]any{"inputs": "root"}

	t.Run("completed attempt is returned as is", func(t *testing.T) {
		exec := &fakeExecutor{succeed: map[string]bool{"root": true}}
		planner := &rootPlanner{}

		outcome, err := adapt.New(exec, planner).Run(ctx, root)
		gt.NoError(t, err)
		gt.Equal(t, outcome.Finish.Log, "Task completed")
		gt.A(t, outcome.Trajectory).Length(1)
		gt.Equal(t, planner.calls, 0)
		gt.A(t, exec.resets).Length(0)
	})

	t.Run("and mode stops at first failure", func(t *testing.T) {
		exec := &fakeExecutor{succeed: map[string]bool{"A": true, "C": true}}
		planner := &rootPlanner{plan: &adapt.Plan{Subtasks: subtasks("A", "B", "C"), Mode: adapt.ModeAnd}}

		outcome, err := adapt.New(exec, planner).Run(ctx, root)
		gt.NoError(t, err)
		gt.Equal(t, exec.attempts, []string{"root", "A", "B"})
		gt.True(t, strings.HasPrefix(outcome.Finish.Log, "Couldn't solve the task. Last log: "))
		gt.S(t, outcome.Finish.Log).Contains("B failed")
		gt.Equal(t, planlib.Actions(outcome.Trajectory), []planlib.Action{{Name: "act_A"}})
	})

	t.Run("and mode all succeed", func(t *testing.T) {
		exec := &fakeExecutor{succeed: map[string]bool{"A": true, "B": true}}
		planner := &rootPlanner{plan: &adapt.Plan{Subtasks: subtasks("A", "B"), Mode: adapt.ModeAnd}}

		outcome, err := adapt.New(exec, planner).Run(ctx, root)
		gt.NoError(t, err)
		gt.Equal(t, outcome.Finish.Log, adapt.SolvedLog)
		gt.Equal(t, planlib.Actions(outcome.Trajectory), []planlib.Action{{Name: "act_A"}, {Name: "act_B"}})
	})

	t.Run("or mode stops at first success", func(t *testing.T) {
		exec := &fakeExecutor{succeed: map[string]bool{"B": true, "C": true}}
		planner := &rootPlanner{plan: &adapt.Plan{Subtasks: subtasks("A", "B", "C"), Mode: adapt.ModeOr}}

		outcome, err := adapt.New(exec, planner).Run(ctx, root)
		gt.NoError(t, err)
		gt.Equal(t, exec.attempts, []string{"root", "A", "B"})
		gt.Equal(t, outcome.Finish.Log, adapt.SolvedLog)
		gt.Equal(t, planlib.Actions(outcome.Trajectory), []planlib.Action{{Name: "act_B"}})

		// root failure, A failure, and the restore before B
		gt.A(t, exec.resets).Length(3)
	})

	t.Run("or mode all fail", func(t *testing.T) {
		exec := &fakeExecutor{}
		planner := &rootPlanner{plan: &adapt.Plan{Subtasks: subtasks("A", "B"), Mode: adapt.ModeOr}}

		outcome, err := adapt.New(exec, planner).Run(ctx, root)
		gt.NoError(t, err)
		gt.Equal(t, exec.attempts, []string{"root", "A", "B"})
		gt.S(t, outcome.Finish.Log).Contains("B failed")
		gt.A(t, outcome.Trajectory).Length(0)
	})

	t.Run("empty plan keeps the failed attempt", func(t *testing.T) {
		for _, mode := range []adapt.AggregationMode{adapt.ModeAnd, adapt.ModeOr} {
			exec := &fakeExecutor{}
			planner := &rootPlanner{plan: &adapt.Plan{Mode: mode}}

			result, err := adapt.New(exec, planner).Solve(ctx, adapt.Task{Inputs: root}, nil)
			gt.NoError(t, err)
			gt.False(t, result.Completed)
			gt.Equal(t, result.Finish.Log, "Couldn't solve the task. Last log: root failed")
			gt.A(t, result.Trajectory).Length(0)
			gt.Equal(t, exec.attempts, []string{"root"})
			gt.Equal(t, planner.calls, 1)
		}
	})

	t.Run("depth limit returns without attempts", func(t *testing.T) {
		exec := &fakeExecutor{}
		s := adapt.New(exec, &rootPlanner{}, adapt.WithMaxDepth(3))

		result, err := s.Solve(ctx, adapt.Task{Inputs: root, Depth: 4}, nil)
		gt.NoError(t, err)
		gt.False(t, result.Completed)
		gt.Equal(t, result.Finish.Log, adapt.MaxDepthLog)
		gt.A(t, exec.attempts).Length(0)
	})

	t.Run("subtasks beyond max depth fail", func(t *testing.T) {
		exec := &fakeExecutor{succeed: map[string]bool{"A": true}}
		planner := &rootPlanner{plan: &adapt.Plan{Subtasks: subtasks("A"), Mode: adapt.ModeAnd}}

		outcome, err := adapt.New(exec, planner, adapt.WithMaxDepth(0)).Run(ctx, root)
		gt.NoError(t, err)
		gt.Equal(t, exec.attempts, []string{"root"})
		gt.S(t, outcome.Finish.Log).Contains(adapt.MaxDepthLog)
	})

	t.Run("unsupported mode is an error", func(t *testing.T) {
		planner := &rootPlanner{plan: &adapt.Plan{Subtasks: subtasks("A"), Mode: "xor"}}

		_, err := adapt.New(&fakeExecutor{}, planner).Run(ctx, root)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, planlib.ErrUnsupportedMode))
	})

	t.Run("records sub task spans", func(t *testing.T) {
		rec := trace.New()
		ctx := trace.WithHandler(ctx, rec)
		exec := &fakeExecutor{succeed: map[string]bool{"A": true}}
		planner := &rootPlanner{plan: &adapt.Plan{Subtasks: subtasks("A"), Mode: adapt.ModeAnd}}

		_, err := adapt.New(exec, planner).Run(ctx, root)
		gt.NoError(t, err)

		rootSpan := rec.Trace().RootSpan
		gt.Equal(t, rootSpan.Name, "adapt")
		gt.A(t, rootSpan.Children).Length(1).At(0, func(t testing.TB, v *trace.Span) {
			gt.Equal(t, v.Kind, trace.SpanKindSubTask)
			gt.Equal(t, v.Name, "adapt:depth_0")
		})
	})
}

func TestIsCompleted(t *testing.T) {
	gt.True(t, adapt.IsCompleted(planlib.NewFinish("", "The TASK COMPLETED successfully")))
	gt.False(t, adapt.IsCompleted(planlib.NewFinish("", "gave up")))
	gt.False(t, adapt.IsCompleted(planlib.Finish{
		ReturnValues: map[string]any{"completed": false},
		Log:          "task completed",
	}))
	gt.True(t, adapt.IsCompleted(planlib.Finish{ReturnValues: map[string]any{"completed": true}}))
}
