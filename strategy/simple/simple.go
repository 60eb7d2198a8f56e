// Package simple implements the single-agent loop: propose, execute, repeat
// until the agent finishes or the iteration budget runs out.
package simple

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
	"github.com/m-mizutani/planlib/trace"
)

// EventIteration is the trace event kind emitted once per execution round.
const EventIteration = "simple_iteration"

// Strategy is the simple loop strategy.
type Strategy struct {
	agent         planlib.Agent
	executor      planlib.ActionExecutor
	maxIterations int
}

// Option configures the Strategy
type Option func(*Strategy)

// WithMaxIterations sets the maximum number of execution rounds.
// Default is 15 if not specified
func WithMaxIterations(n int) Option {
	return func(s *Strategy) {
		s.maxIterations = n
	}
}

// New creates a simple loop strategy.
func New(agent planlib.Agent, executor planlib.ActionExecutor, opts ...Option) *Strategy {
	s := &Strategy{
		agent:         agent,
		executor:      executor,
		maxIterations: 15,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IterationData is the payload of EventIteration.
type IterationData struct {
	Iteration int    `json:"iteration"`
	Thought   string `json:"thought"`
	Steps     int    `json:"steps"`
}

// Run drives the agent until it returns a Finish. Running out of iterations is
// not an error and yields planlib.IterationLimitFinish.
func (s *Strategy) Run(ctx context.Context, inputs map[string]any) (_ *planlib.Outcome, err error) {
	ctx, end := trace.Strategy(ctx, "simple")
	defer func() { end(err) }()

	logger := planlib.LoggerFromContext(ctx)
	var trajectory []planlib.Step

	for i := 0; i < s.maxIterations; i++ {
		thought, err := s.agent.Propose(ctx, &planlib.ProposeInput{
			Inputs:     inputs,
			Trajectory: trajectory,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to propose", goerr.V("iteration", i))
		}

		switch t := thought.(type) {
		case planlib.Finish:
			logger.Debug("simple strategy finished", "iteration", i, "finish", t)
			return &planlib.Outcome{Finish: t, Trajectory: trajectory}, nil

		case planlib.Action, planlib.ActionBatch:
			steps, err := planlib.ExecuteThought(ctx, s.executor, t)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to execute thought", goerr.V("iteration", i))
			}
			trajectory = append(trajectory, steps...)

			trace.Event(ctx, EventIteration, &IterationData{
				Iteration: i,
				Thought:   t.String(),
				Steps:     len(steps),
			})
			logger.Debug("simple strategy iteration", "iteration", i, "thought", t)

		default:
			return nil, goerr.Wrap(planlib.ErrUnknownThought, "unexpected thought", goerr.V("thought", thought))
		}
	}

	logger.Info("simple strategy reached iteration limit", "max_iterations", s.maxIterations)
	return &planlib.Outcome{Finish: planlib.IterationLimitFinish(), Trajectory: trajectory}, nil
}
