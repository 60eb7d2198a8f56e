package reflexion

import (
	"context"

	"github.com/m-mizutani/planlib"
)

// TrialContext captures a finished trial. It is what the evaluator scores and
// what the reflector reflects on.
type TrialContext struct {
	Inputs     map[string]any
	Trajectory []planlib.Step
	Finish     planlib.Finish

	// Iteration is the 1-indexed trial number.
	Iteration int

	// Score is the evaluator's score. It is zero while the trial is being
	// evaluated.
	Score float64

	// Reflections are the reflections the trial was run with.
	Reflections []string
}

// TrialResult is the evaluation verdict of a trial.
type TrialResult struct {
	Finish planlib.Finish

	// Continue is true when the evaluator asks for another trial.
	Continue bool
	Score    float64
}

// Reflector turns a failed trial into a self-reflection.
type Reflector interface {
	Reflect(ctx context.Context, trial *TrialContext) (string, error)
}

// ReflectorFunc adapts a function to Reflector.
type ReflectorFunc func(ctx context.Context, trial *TrialContext) (string, error)

func (f ReflectorFunc) Reflect(ctx context.Context, trial *TrialContext) (string, error) {
	return f(ctx, trial)
}

// Hooks provides lifecycle hooks for observing the Reflexion strategy's execution.
// An error returned from a hook aborts the run.
type Hooks interface {
	// OnTrialStart is called when a new trial begins.
	OnTrialStart(ctx context.Context, iteration int) error

	// OnTrialEnd is called after a trial has been evaluated.
	OnTrialEnd(ctx context.Context, iteration int, result *TrialResult) error

	// OnReflectionGenerated is called when a reflection is generated after a failed trial.
	OnReflectionGenerated(ctx context.Context, iteration int, reflection string) error
}
