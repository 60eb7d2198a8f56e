// Package reflexion implements the Reflexion strategy.
//
// Reflexion repeats whole trials. After each trial an evaluator scores the
// Finish; while the score asks for another trial, a reflector writes a
// self-reflection that every later trial sees through
// planlib.ProposeInput.SelfReflections.
//
// Basic usage:
//
//	strategy := reflexion.New(agent, executor,
//	    reflexion.NewLLMEvaluator(client, 0.5),
//	    reflexion.NewLLMReflector(client),
//	    reflexion.WithMaxIterations(3),
//	)
//	outcome, err := strategy.Run(ctx, map[string]any{"input": "Solve this task..."})
//
// The run is a staged graph:
//
//	init -> act -> execute_actions -> act -> ... -> evaluate
//	evaluate -> self_reflect (retry needed) | END
//	self_reflect -> re_init (budget left) | END
//	re_init -> act
package reflexion

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
	"github.com/m-mizutani/planlib/evaluation"
	"github.com/m-mizutani/planlib/trace"
)

const (
	// DefaultMaxIterations is the default maximum number of trials
	DefaultMaxIterations = 3
	// DefaultMaxActions is the default number of execution rounds per trial
	DefaultMaxActions = 30
)

// Stage names a node of the Reflexion graph.
type Stage string

const (
	StageInit           Stage = "init"
	StageAct            Stage = "act"
	StageExecuteActions Stage = "execute_actions"
	StageEvaluate       Stage = "evaluate"
	StageSelfReflect    Stage = "self_reflect"
	StageReInit         Stage = "re_init"
	StageEnd            Stage = "END"
)

// State is the run state threaded through the stages.
type State struct {
	Inputs map[string]any

	// Outcome is the latest thought of the current trial. It is a Finish
	// once the trial is over.
	Outcome planlib.Thought

	// ShouldContinue is the evaluator's verdict for the current trial.
	ShouldContinue bool
	Score          float64

	// Reflections are the reflections visible to the current trial.
	Reflections []string
	Trajectory  []planlib.Step

	// Iteration is the 1-indexed trial number.
	Iteration int

	memory  *memory
	actions int
}

// Finish returns the current Outcome if it is a Finish.
func (s *State) Finish() (planlib.Finish, bool) {
	f, ok := s.Outcome.(planlib.Finish)
	return f, ok
}

// trial describes the finished trial. Evaluating or reflecting on a trial
// whose outcome is not a Finish is an inconsistent state.
func (s *State) trial() (TrialContext, error) {
	f, ok := s.Finish()
	if !ok {
		return TrialContext{}, goerr.Wrap(planlib.ErrInconsistentState, "trial has no finish",
			goerr.V("iteration", s.Iteration), goerr.V("outcome", s.Outcome))
	}
	return TrialContext{
		Inputs:      s.Inputs,
		Trajectory:  s.Trajectory,
		Finish:      f,
		Iteration:   s.Iteration,
		Score:       s.Score,
		Reflections: s.Reflections,
	}, nil
}

type stageFunc func(ctx context.Context, st *State) (Stage, error)

// Strategy is the Reflexion strategy.
type Strategy struct {
	agent     planlib.Agent
	executor  planlib.ActionExecutor
	evaluator evaluation.Continuer[TrialContext]
	reflector Reflector
	hooks     Hooks

	maxIterations    int
	maxActions       int
	memorySize       int
	resetEnvironment func(ctx context.Context, inputs map[string]any) error
}

// New creates a Reflexion strategy. evaluator decides whether a finished
// trial needs another attempt; reflector writes the reflection for it.
func New(agent planlib.Agent, executor planlib.ActionExecutor, evaluator evaluation.Continuer[TrialContext], reflector Reflector, opts ...Option) *Strategy {
	s := &Strategy{
		agent:         agent,
		executor:      executor,
		evaluator:     evaluator,
		reflector:     reflector,
		maxIterations: DefaultMaxIterations,
		maxActions:    DefaultMaxActions,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes trials until the evaluator is satisfied or the iteration budget
// is spent. The outcome is the last trial's Finish and trajectory.
func (s *Strategy) Run(ctx context.Context, inputs map[string]any) (*planlib.Outcome, error) {
	st, err := s.Execute(ctx, inputs)
	if err != nil {
		return nil, err
	}

	f, ok := st.Finish()
	if !ok {
		return nil, goerr.Wrap(planlib.ErrInconsistentState, "run ended without finish", goerr.V("iteration", st.Iteration))
	}
	return &planlib.Outcome{Finish: f, Trajectory: st.Trajectory}, nil
}

// Execute runs the graph and returns its final state.
func (s *Strategy) Execute(ctx context.Context, inputs map[string]any) (_ *State, err error) {
	ctx, end := trace.Strategy(ctx, "reflexion")
	defer func() { end(err) }()

	stages := map[Stage]stageFunc{
		StageInit:           s.init,
		StageAct:            s.act,
		StageExecuteActions: s.executeActions,
		StageEvaluate:       s.evaluate,
		StageSelfReflect:    s.selfReflect,
		StageReInit:         s.reInit,
	}

	logger := planlib.LoggerFromContext(ctx)
	st := &State{Inputs: inputs}

	for next := StageInit; next != StageEnd; {
		fn, ok := stages[next]
		if !ok {
			return nil, goerr.Wrap(planlib.ErrInconsistentState, "unknown stage", goerr.V("stage", next))
		}

		current := next
		next, err = fn(ctx, st)
		if err != nil {
			return nil, goerr.Wrap(err, "stage failed", goerr.V("stage", current), goerr.V("iteration", st.Iteration))
		}
		logger.Debug("reflexion transition", "from", current, "to", next, "iteration", st.Iteration)
	}

	return st, nil
}

func (s *Strategy) init(ctx context.Context, st *State) (Stage, error) {
	st.memory = newMemory(s.memorySize)
	st.Iteration = 1
	st.Reflections = nil
	st.Trajectory = nil
	st.Outcome = nil
	st.actions = 0

	if err := s.startTrial(ctx, st); err != nil {
		return "", err
	}
	return StageAct, nil
}

func (s *Strategy) act(ctx context.Context, st *State) (Stage, error) {
	if st.actions >= s.maxActions {
		planlib.LoggerFromContext(ctx).Info("reflexion trial reached action limit",
			"iteration", st.Iteration, "max_actions", s.maxActions)
		st.Outcome = planlib.IterationLimitFinish()
		return StageEvaluate, nil
	}

	thought, err := s.agent.Propose(ctx, &planlib.ProposeInput{
		Inputs:          st.Inputs,
		Trajectory:      st.Trajectory,
		SelfReflections: st.Reflections,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to propose")
	}
	st.Outcome = thought

	switch thought.(type) {
	case planlib.Finish:
		return StageEvaluate, nil
	case planlib.Action, planlib.ActionBatch:
		return StageExecuteActions, nil
	default:
		return "", goerr.Wrap(planlib.ErrUnknownThought, "unexpected thought", goerr.V("thought", thought))
	}
}

func (s *Strategy) executeActions(ctx context.Context, st *State) (Stage, error) {
	steps, err := planlib.ExecuteThought(ctx, s.executor, st.Outcome)
	if err != nil {
		return "", goerr.Wrap(err, "failed to execute thought")
	}
	st.Trajectory = append(st.Trajectory, steps...)
	st.actions++
	return StageAct, nil
}

func (s *Strategy) evaluate(ctx context.Context, st *State) (Stage, error) {
	trial, err := st.trial()
	if err != nil {
		return "", err
	}
	ok, score, err := s.evaluator.Evaluate(ctx, trial)
	if err != nil {
		return "", goerr.Wrap(err, "failed to evaluate trial")
	}
	st.ShouldContinue = ok
	st.Score = score

	f := trial.Finish
	trace.Event(ctx, EventTrialEnd, &TrialEndEvent{
		TrialNumber: st.Iteration,
		Continue:    ok,
		Score:       score,
		Output:      f.Output(),
	})
	if s.hooks != nil {
		if err := s.hooks.OnTrialEnd(ctx, st.Iteration, &TrialResult{Finish: f, Continue: ok, Score: score}); err != nil {
			return "", goerr.Wrap(err, "hook OnTrialEnd failed")
		}
	}

	if !ok {
		return StageEnd, nil
	}
	return StageSelfReflect, nil
}

func (s *Strategy) selfReflect(ctx context.Context, st *State) (Stage, error) {
	trial, err := st.trial()
	if err != nil {
		return "", err
	}
	reflection, err := s.reflector.Reflect(ctx, &trial)
	if err != nil {
		return "", goerr.Wrap(err, "failed to reflect")
	}
	st.memory.add(st.Iteration, reflection)

	trace.Event(ctx, EventReflectionGenerated, &ReflectionGeneratedEvent{
		TrialNumber: st.Iteration,
		Reflection:  reflection,
	})
	if s.hooks != nil {
		if err := s.hooks.OnReflectionGenerated(ctx, st.Iteration, reflection); err != nil {
			return "", goerr.Wrap(err, "hook OnReflectionGenerated failed")
		}
	}

	if st.Iteration >= s.maxIterations {
		planlib.LoggerFromContext(ctx).Info("reflexion reached iteration limit", "max_iterations", s.maxIterations)
		return StageEnd, nil
	}
	return StageReInit, nil
}

func (s *Strategy) reInit(ctx context.Context, st *State) (Stage, error) {
	st.Outcome = nil
	st.Trajectory = nil
	st.ShouldContinue = false
	st.Score = 0
	st.actions = 0
	st.Iteration++
	st.Reflections = st.memory.texts()

	if s.resetEnvironment != nil {
		if err := s.resetEnvironment(ctx, st.Inputs); err != nil {
			return "", goerr.Wrap(err, "failed to reset environment")
		}
	}

	if err := s.startTrial(ctx, st); err != nil {
		return "", err
	}
	return StageAct, nil
}

func (s *Strategy) startTrial(ctx context.Context, st *State) error {
	trace.Event(ctx, EventTrialStart, &TrialStartEvent{
		TrialNumber: st.Iteration,
		Reflections: len(st.Reflections),
	})
	if s.hooks != nil {
		if err := s.hooks.OnTrialStart(ctx, st.Iteration); err != nil {
			return goerr.Wrap(err, "hook OnTrialStart failed")
		}
	}
	return nil
}

var _ planlib.Strategy = (*Strategy)(nil)
