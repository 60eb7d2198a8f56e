package adapt

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
)

// Attempt is the result of one flat attempt at a task.
type Attempt struct {
	Finish     planlib.Finish
	Trajectory []planlib.Step
	Completed  bool
}

// Executor attempts tasks without decomposition and restores the shared
// action state when an attempt is discarded.
type Executor interface {
	Attempt(ctx context.Context, inputs map[string]any) (*Attempt, error)
	Reset(ctx context.Context, actions []planlib.Action) error
}

// CompletionMarker is the phrase an executor's finish log must contain for
// the attempt to count as completed.
const CompletionMarker = "task completed"

// CompletedKey is the structured completion flag in Finish.ReturnValues. It
// takes precedence over CompletionMarker when present.
const CompletedKey = "completed"

// IsCompleted reports whether finish declares its task completed.
func IsCompleted(finish planlib.Finish) bool {
	if v, ok := finish.ReturnValues[CompletedKey].(bool); ok {
		return v
	}
	return strings.Contains(strings.ToLower(finish.Log), CompletionMarker)
}

// StrategyExecutor runs a planlib.Strategy as the flat attempt. actions must
// be the executor the strategy acts through.
type StrategyExecutor struct {
	strategy planlib.Strategy
	actions  planlib.ActionExecutor
}

func NewStrategyExecutor(strategy planlib.Strategy, actions planlib.ActionExecutor) *StrategyExecutor {
	return &StrategyExecutor{strategy: strategy, actions: actions}
}

func (x *StrategyExecutor) Attempt(ctx context.Context, inputs map[string]any) (*Attempt, error) {
	outcome, err := x.strategy.Run(ctx, inputs)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to run executor strategy")
	}

	return &Attempt{
		Finish:     outcome.Finish,
		Trajectory: outcome.Trajectory,
		Completed:  IsCompleted(outcome.Finish),
	}, nil
}

func (x *StrategyExecutor) Reset(ctx context.Context, actions []planlib.Action) error {
	return x.actions.Reset(ctx, actions)
}
