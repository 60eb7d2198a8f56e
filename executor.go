package planlib

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// ActionExecutor executes actions against a stateful collaborator, an
// environment or a tool registry. It is the only component that mutates that
// state.
type ActionExecutor interface {
	// Execute runs one action and returns its step.
	Execute(ctx context.Context, action Action) (Step, error)

	// ExecuteBatch runs actions and returns steps one-to-one in input order.
	ExecuteBatch(ctx context.Context, actions []Action) ([]Step, error)

	// Reset restores the initial state and then replays actions in order.
	Reset(ctx context.Context, actions []Action) error
}

// ToolProvider is implemented by executors that can describe their actions
// to an LLM-backed agent.
type ToolProvider interface {
	ToolSpecs(ctx context.Context) ([]ToolSpec, error)
}

// ExecuteThought executes an Action or ActionBatch. Executing a Finish is a
// control-flow bug and returns ErrInconsistentState.
func ExecuteThought(ctx context.Context, exec ActionExecutor, thought Thought) ([]Step, error) {
	switch t := thought.(type) {
	case Action:
		step, err := exec.Execute(ctx, t)
		if err != nil {
			return nil, err
		}
		return []Step{step}, nil

	case ActionBatch:
		return exec.ExecuteBatch(ctx, t)

	case Finish:
		return nil, goerr.Wrap(ErrInconsistentState, "finish cannot be executed", goerr.V("finish", t.Log))

	default:
		return nil, goerr.Wrap(ErrUnknownThought, "failed to execute thought", goerr.V("thought", thought))
	}
}
