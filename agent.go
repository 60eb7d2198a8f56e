package planlib

import (
	"context"
)

// Agent is the policy consulted by strategies.
type Agent interface {
	Propose(ctx context.Context, input *ProposeInput) (Thought, error)
}

// MultiProposer returns up to n candidate thoughts from a single call.
type MultiProposer interface {
	ProposeN(ctx context.Context, input *ProposeInput, n int) ([]Thought, error)
}

// ProposeInput is what an Agent sees when proposing the next thought.
type ProposeInput struct {
	// Inputs are the task inputs given to the strategy.
	Inputs map[string]any

	// Trajectory is the accumulated (action, observation) history.
	Trajectory []Step

	// PreviousThoughts are candidates already proposed in the current
	// tree-search step.
	PreviousThoughts []Thought

	// SelfReflections are the reflections of earlier failed trials.
	SelfReflections []string

	// Extra carries strategy-specific context such as a failed attempt
	// handed to a planner.
	Extra map[string]any
}

// AgentFunc adapts a function to Agent.
type AgentFunc func(ctx context.Context, input *ProposeInput) (Thought, error)

func (f AgentFunc) Propose(ctx context.Context, input *ProposeInput) (Thought, error) {
	return f(ctx, input)
}

// Strategy drives an Agent and an ActionExecutor to a Finish.
type Strategy interface {
	Run(ctx context.Context, inputs map[string]any) (*Outcome, error)
}
