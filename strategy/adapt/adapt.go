// Package adapt implements ADaPT: attempt a task flat, and when the attempt
// fails, decompose it with a planner and solve the subtasks recursively
// under AND/OR aggregation.
package adapt

import (
	"context"
	"fmt"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
	"github.com/m-mizutani/planlib/trace"
)

const (
	MaxDepthLog = "Maximum decomposition depth reached."
	SolvedLog   = "Task solved successfully!"
	failedLog   = "Couldn't solve the task. Last log: %s"
)

const (
	EventAttempt = "adapt_attempt"
	EventPlan    = "adapt_plan"
	EventResult  = "adapt_result"
)

// Strategy is the ADaPT strategy.
type Strategy struct {
	executor Executor
	planner  Planner
	maxDepth int
}

// Option configures the Strategy
type Option func(*Strategy)

// WithMaxDepth sets the maximum decomposition depth. The root task has depth 0.
// Default is 3 if not specified
func WithMaxDepth(n int) Option {
	return func(s *Strategy) {
		s.maxDepth = n
	}
}

// New creates an ADaPT strategy with any planner.
func New(executor Executor, planner Planner, opts ...Option) *Strategy {
	s := &Strategy{
		executor: executor,
		planner:  planner,
		maxDepth: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewWithAgentPlanner creates an ADaPT strategy whose planner is agent
// operating PlannerTools.
func NewWithAgentPlanner(executor Executor, agent planlib.Agent, opts ...Option) *Strategy {
	return New(executor, NewAgentPlanner(agent), opts...)
}

// NewWithSimplePlanner creates an ADaPT strategy whose planner answers with a
// JSON plan in one LLM call.
func NewWithSimplePlanner(executor Executor, client planlib.LLMClient, opts ...Option) *Strategy {
	return New(executor, NewSimplePlanner(client), opts...)
}

// Result is the outcome of solving one task.
type Result struct {
	Completed  bool
	Finish     planlib.Finish
	Trajectory []planlib.Step
}

func (s *Strategy) Run(ctx context.Context, inputs map[string]any) (_ *planlib.Outcome, err error) {
	ctx, end := trace.Strategy(ctx, "adapt")
	defer func() { end(err) }()

	result, err := s.Solve(ctx, Task{Inputs: inputs}, nil)
	if err != nil {
		return nil, err
	}
	return &planlib.Outcome{Finish: result.Finish, Trajectory: result.Trajectory}, nil
}

// AttemptData is the payload of EventAttempt.
type AttemptData struct {
	Depth     int    `json:"depth"`
	Completed bool   `json:"completed"`
	Log       string `json:"log"`
	Steps     int    `json:"steps"`
}

// PlanData is the payload of EventPlan.
type PlanData struct {
	Depth    int              `json:"depth"`
	Mode     AggregationMode  `json:"aggregation_mode"`
	Subtasks []map[string]any `json:"subtasks"`
}

// ResultData is the payload of EventResult.
type ResultData struct {
	Depth     int    `json:"depth"`
	Completed bool   `json:"completed"`
	Log       string `json:"log"`
}

// Solve attempts task on top of trajectory, the steps already taken by
// earlier tasks. The executor state must match trajectory when called.
func (s *Strategy) Solve(ctx context.Context, task Task, trajectory []planlib.Step) (_ *Result, err error) {
	if task.Depth > s.maxDepth {
		return &Result{
			Finish:     planlib.Finish{ReturnValues: map[string]any{}, Log: MaxDepthLog},
			Trajectory: trajectory,
		}, nil
	}

	ctx, end := trace.SubTask(ctx, fmt.Sprintf("adapt:depth_%d", task.Depth))
	defer func() { end(err) }()

	result, err := s.solve(ctx, task, trajectory)
	if err != nil {
		return nil, err
	}

	trace.Event(ctx, EventResult, &ResultData{
		Depth:     task.Depth,
		Completed: result.Completed,
		Log:       result.Finish.Log,
	})
	return result, nil
}

func (s *Strategy) solve(ctx context.Context, task Task, trajectory []planlib.Step) (*Result, error) {
	logger := planlib.LoggerFromContext(ctx).With("depth", task.Depth)

	attempt, err := s.executor.Attempt(ctx, task.Inputs)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to attempt task", goerr.V("depth", task.Depth))
	}
	trace.Event(ctx, EventAttempt, &AttemptData{
		Depth:     task.Depth,
		Completed: attempt.Completed,
		Log:       attempt.Finish.Log,
		Steps:     len(attempt.Trajectory),
	})

	if attempt.Completed {
		logger.Debug("attempt completed", "log", attempt.Finish.Log)
		return &Result{
			Completed:  true,
			Finish:     attempt.Finish,
			Trajectory: concat(trajectory, attempt.Trajectory),
		}, nil
	}

	// Discard the failed attempt before decomposing.
	if err := s.executor.Reset(ctx, planlib.Actions(trajectory)); err != nil {
		return nil, goerr.Wrap(err, "failed to reset executor", goerr.V("depth", task.Depth))
	}

	plan, err := s.planner.Plan(ctx, &PlannerInput{
		Inputs:  task.Inputs,
		Depth:   task.Depth,
		Attempt: attempt,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to plan", goerr.V("depth", task.Depth))
	}
	if err := plan.Mode.Validate(); err != nil {
		return nil, err
	}
	trace.Event(ctx, EventPlan, &PlanData{
		Depth:    task.Depth,
		Mode:     plan.Mode,
		Subtasks: plan.Subtasks,
	})
	logger.Debug("task decomposed", "mode", plan.Mode, "subtasks", len(plan.Subtasks))

	// An empty plan leaves nothing to try in either mode, so the failed
	// attempt stands. It is not reported as a vacuous "and" success.
	if len(plan.Subtasks) == 0 {
		return failed(attempt.Finish, trajectory), nil
	}

	switch plan.Mode {
	case ModeAnd:
		current := trajectory
		for _, sub := range plan.Subtasks {
			r, err := s.Solve(ctx, Task{Inputs: sub, Depth: task.Depth + 1}, current)
			if err != nil {
				return nil, err
			}
			if !r.Completed {
				return failed(r.Finish, r.Trajectory), nil
			}
			current = r.Trajectory
		}
		return solved(current), nil

	case ModeOr:
		var last *Result
		for i, sub := range plan.Subtasks {
			r, err := s.Solve(ctx, Task{Inputs: sub, Depth: task.Depth + 1}, trajectory)
			if err != nil {
				return nil, err
			}
			if r.Completed {
				return solved(r.Trajectory), nil
			}
			last = r

			// The next alternative starts from the same state.
			if i < len(plan.Subtasks)-1 {
				if err := s.executor.Reset(ctx, planlib.Actions(trajectory)); err != nil {
					return nil, goerr.Wrap(err, "failed to reset executor", goerr.V("depth", task.Depth))
				}
			}
		}
		return failed(last.Finish, trajectory), nil

	default:
		return nil, goerr.Wrap(planlib.ErrUnsupportedMode, "unsupported aggregation mode", goerr.V("mode", plan.Mode))
	}
}

func solved(trajectory []planlib.Step) *Result {
	return &Result{
		Completed:  true,
		Finish:     planlib.Finish{ReturnValues: map[string]any{}, Log: SolvedLog},
		Trajectory: trajectory,
	}
}

func failed(last planlib.Finish, trajectory []planlib.Step) *Result {
	return &Result{
		Finish:     planlib.Finish{ReturnValues: last.ReturnValues, Log: fmt.Sprintf(failedLog, last.Log)},
		Trajectory: trajectory,
	}
}

func concat(a, b []planlib.Step) []planlib.Step {
	return append(slices.Clone(a), b...)
}
