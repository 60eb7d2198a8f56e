package planlib

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib/trace"
)

// Env is a gym-like environment driven by actions.
type Env interface {
	// Reset restores the initial state and returns the first observation.
	Reset(ctx context.Context) (any, error)

	// Step applies one action.
	Step(ctx context.Context, action Action) (*StepResult, error)
}

// StepResult is the outcome of one environment step.
type StepResult struct {
	Observation any
	Reward      float64
	Terminated  bool
	Truncated   bool
	Info        map[string]any
}

// Map renders the result as the observation recorded in a Step.
func (r *StepResult) Map() map[string]any {
	info := r.Info
	if info == nil {
		info = map[string]any{}
	}
	return map[string]any{
		"observation": r.Observation,
		"reward":      r.Reward,
		"terminated":  r.Terminated,
		"truncated":   r.Truncated,
		"info":        info,
	}
}

// EnvExecutor adapts an Env to ActionExecutor.
type EnvExecutor struct {
	env Env
}

func NewEnvExecutor(env Env) *EnvExecutor {
	return &EnvExecutor{env: env}
}

// ToolSpecs forwards the environment's action descriptions when the Env
// implements ToolProvider.
func (x *EnvExecutor) ToolSpecs(ctx context.Context) ([]ToolSpec, error) {
	if p, ok := x.env.(ToolProvider); ok {
		return p.ToolSpecs(ctx)
	}
	return nil, nil
}

func (x *EnvExecutor) Execute(ctx context.Context, action Action) (Step, error) {
	if h := trace.HandlerFrom(ctx); h != nil {
		ctx = h.StartToolExec(ctx, action.Name, action.Input)
	}

	result, err := x.env.Step(ctx, action)

	if h := trace.HandlerFrom(ctx); h != nil {
		var data any
		if result != nil {
			data = result.Map()
		}
		h.EndToolExec(ctx, data, err)
	}

	if err != nil {
		return Step{}, goerr.Wrap(err, "failed to step environment", goerr.V("action", action.Name))
	}

	LoggerFromContext(ctx).Debug("environment step", "action", action, "reward", result.Reward, "terminated", result.Terminated)
	return Step{Action: action, Observation: result.Map()}, nil
}

func (x *EnvExecutor) ExecuteBatch(ctx context.Context, actions []Action) ([]Step, error) {
	steps := make([]Step, 0, len(actions))
	for _, action := range actions {
		step, err := x.Execute(ctx, action)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func (x *EnvExecutor) Reset(ctx context.Context, actions []Action) error {
	if _, err := x.env.Reset(ctx); err != nil {
		return goerr.Wrap(err, "failed to reset environment")
	}

	for _, action := range actions {
		if _, err := x.env.Step(ctx, action); err != nil {
			return goerr.Wrap(err, "failed to replay action", goerr.V("action", action.Name))
		}
	}
	return nil
}
