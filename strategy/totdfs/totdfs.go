// Package totdfs implements Tree-of-Thoughts search driven by depth-first
// expansion. With sorting enabled it behaves as classic Tree-of-Thoughts;
// without it, as DFSDT.
package totdfs

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
	"github.com/m-mizutani/planlib/evaluation"
	"github.com/m-mizutani/planlib/trace"
)

// ThoughtContext is what the evaluator scores for each candidate.
type ThoughtContext struct {
	Inputs     map[string]any
	Trajectory []planlib.Step
	Thought    planlib.Thought
}

// Strategy is the tree search strategy.
type Strategy struct {
	name      string
	generator Generator
	evaluator evaluation.Continuer[ThoughtContext]
	sorter    Sorter
	executor  planlib.ActionExecutor

	maxIterations int
	maxThoughts   int
	concurrent    bool
}

// Option configures the Strategy
type Option func(*Strategy)

// WithMaxIterations sets the number of expansion steps.
// Default is 20 if not specified
func WithMaxIterations(n int) Option {
	return func(s *Strategy) {
		s.maxIterations = n
	}
}

// WithMaxThoughts sets the number of candidates generated per node. It also
// bounds the sorter to n*(n-1)/2 comparisons per node.
// Default is 3 if not specified
func WithMaxThoughts(n int) Option {
	return func(s *Strategy) {
		s.maxThoughts = n
	}
}

// WithConcurrentEvaluation scores the candidates of a node concurrently when
// the evaluator implements evaluation.BatchContinuer. Candidates are still
// expanded in rank order.
func WithConcurrentEvaluation() Option {
	return func(s *Strategy) {
		s.concurrent = true
	}
}

func newStrategy(name string, executor planlib.ActionExecutor, generator Generator, evaluator evaluation.Continuer[ThoughtContext], sorter Sorter, opts []Option) *Strategy {
	s := &Strategy{
		name:          name,
		generator:     generator,
		evaluator:     evaluator,
		sorter:        sorter,
		executor:      executor,
		maxIterations: 20,
		maxThoughts:   3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewToT creates a Tree-of-Thoughts strategy that ranks candidates with
// sorter before expanding them.
func NewToT(executor planlib.ActionExecutor, generator Generator, evaluator evaluation.Continuer[ThoughtContext], sorter Sorter, opts ...Option) *Strategy {
	return newStrategy("tot", executor, generator, evaluator, sorter, opts)
}

// NewDFSDT creates a DFSDT strategy which expands candidates in generation
// order.
func NewDFSDT(executor planlib.ActionExecutor, generator Generator, evaluator evaluation.Continuer[ThoughtContext], opts ...Option) *Strategy {
	return newStrategy("dfsdt", executor, generator, evaluator, nil, opts)
}

// Run returns the first terminal found by Search. When the search finds none,
// the iteration-limit Finish is returned.
func (s *Strategy) Run(ctx context.Context, inputs map[string]any) (*planlib.Outcome, error) {
	outcomes, err := s.Search(ctx, inputs)
	if err != nil {
		return nil, err
	}
	if len(outcomes) == 0 {
		return &planlib.Outcome{Finish: planlib.IterationLimitFinish()}, nil
	}
	return &outcomes[0], nil
}

// Search expands the tree until the frontier empties or the iteration budget
// is exhausted, and returns every terminal in discovery order.
func (s *Strategy) Search(ctx context.Context, inputs map[string]any) (_ []planlib.Outcome, err error) {
	ctx, end := trace.Strategy(ctx, s.name)
	defer func() { end(err) }()

	root := &Node{ID: uuid.NewString()}
	frontier := []*Node{root}
	var outcomes []planlib.Outcome

	for step := 0; len(frontier) > 0 && step < s.maxIterations; step++ {
		node := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		terminals, err := s.expand(ctx, inputs, node)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to expand node", goerr.V("node_id", node.ID), goerr.V("step", step))
		}
		outcomes = append(outcomes, terminals...)

		// Reverse order so that the best-ranked child is popped first.
		for i := len(node.Children) - 1; i >= 0; i-- {
			if child := node.Children[i]; !child.IsTerminal() {
				frontier = append(frontier, child)
			}
		}
	}

	planlib.LoggerFromContext(ctx).Debug("tree search done",
		"strategy", s.name,
		"terminals", len(outcomes),
		"frontier", len(frontier),
	)
	return outcomes, nil
}

// ExpandData is the payload of EventExpand.
type ExpandData struct {
	NodeID     string   `json:"node_id"`
	Depth      int      `json:"depth"`
	Candidates []string `json:"candidates"`
}

// CandidateData is the payload of EventCandidate.
type CandidateData struct {
	NodeID   string  `json:"node_id"`
	Index    int     `json:"index"`
	Thought  string  `json:"thought"`
	Score    float64 `json:"score"`
	Continue bool    `json:"continue"`
}

// TerminalData is the payload of EventTerminal.
type TerminalData struct {
	NodeID string `json:"node_id"`
	Depth  int    `json:"depth"`
	Output string `json:"output"`
}

const (
	EventExpand    = "tot_expand"
	EventCandidate = "tot_candidate"
	EventTerminal  = "tot_terminal"
)

func (s *Strategy) expand(ctx context.Context, inputs map[string]any, node *Node) ([]planlib.Outcome, error) {
	trajectory, err := node.Trajectory()
	if err != nil {
		return nil, err
	}

	thoughts, err := s.generator.Generate(ctx, &planlib.ProposeInput{
		Inputs:     inputs,
		Trajectory: trajectory,
	}, s.maxThoughts)
	if err != nil {
		return nil, err
	}

	if s.sorter != nil {
		thoughts, err = s.sorter.Sort(ctx, &SortInput{
			Inputs:     inputs,
			Trajectory: trajectory,
			Thoughts:   thoughts,
		})
		if err != nil {
			return nil, err
		}
	}

	trace.Event(ctx, EventExpand, &ExpandData{
		NodeID:     node.ID,
		Depth:      node.Depth,
		Candidates: thoughtStrings(thoughts),
	})

	candidates := make([]ThoughtContext, len(thoughts))
	for i, thought := range thoughts {
		candidates[i] = ThoughtContext{Inputs: inputs, Trajectory: trajectory, Thought: thought}
	}
	results, err := s.score(ctx, candidates)
	if err != nil {
		return nil, err
	}

	var terminals []planlib.Outcome
	for i, thought := range thoughts {
		ok, score := results[i].Continue, results[i].Score

		trace.Event(ctx, EventCandidate, &CandidateData{
			NodeID:   node.ID,
			Index:    i,
			Thought:  thought.String(),
			Score:    score,
			Continue: ok,
		})
		if !ok {
			continue
		}

		child := &Node{
			ID:      uuid.NewString(),
			Thought: thought,
			Parent:  node,
			Depth:   node.Depth + 1,
		}

		switch t := thought.(type) {
		case planlib.Finish:
			node.Children = append(node.Children, child)
			path, err := child.Trajectory()
			if err != nil {
				return nil, err
			}
			terminals = append(terminals, planlib.Outcome{Finish: t, Trajectory: path})
			trace.Event(ctx, EventTerminal, &TerminalData{
				NodeID: child.ID,
				Depth:  child.Depth,
				Output: t.Output(),
			})

		case planlib.Action, planlib.ActionBatch:
			// Siblings diverge from the same state, so restore it first.
			if err := s.executor.Reset(ctx, planlib.Actions(trajectory)); err != nil {
				return nil, goerr.Wrap(err, "failed to reset executor", goerr.V("node_id", node.ID))
			}
			steps, err := planlib.ExecuteThought(ctx, s.executor, t)
			if err != nil {
				return nil, err
			}
			child.Steps = steps
			node.Children = append(node.Children, child)

		default:
			return nil, goerr.Wrap(planlib.ErrUnknownThought, "unexpected candidate", goerr.V("thought", thought))
		}
	}

	return terminals, nil
}

func (s *Strategy) score(ctx context.Context, candidates []ThoughtContext) ([]evaluation.Result, error) {
	if batch, ok := s.evaluator.(evaluation.BatchContinuer[ThoughtContext]); ok && s.concurrent {
		results, err := batch.EvaluateBatch(ctx, candidates)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to evaluate thoughts")
		}
		return results, nil
	}

	results := make([]evaluation.Result, len(candidates))
	for i, c := range candidates {
		ok, score, err := s.evaluator.Evaluate(ctx, c)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to evaluate thought", goerr.V("index", i))
		}
		results[i] = evaluation.Result{Continue: ok, Score: score}
	}
	return results, nil
}

func thoughtStrings(thoughts []planlib.Thought) []string {
	out := make([]string, len(thoughts))
	for i, t := range thoughts {
		out[i] = t.String()
	}
	return out
}

const thoughtEvaluatorSystemPrompt = `You judge whether a proposed next step of an agent is promising for solving the task.`

// NewLLMEvaluator creates an evaluator that asks an LLM to score candidates
// and continues with those scoring at least threshold.
func NewLLMEvaluator(client planlib.LLMClient, threshold float64) *evaluation.Evaluator[ThoughtContext] {
	backbone := evaluation.NewLLMBackbone(client, formatThoughtContext, thoughtEvaluatorSystemPrompt)
	return evaluation.NewEvaluator[ThoughtContext](backbone, evaluation.NewJudge(threshold, evaluation.Geq))
}

func formatThoughtContext(c ThoughtContext) string {
	var sb strings.Builder
	sb.WriteString(planlib.DefaultPrompt(&planlib.ProposeInput{
		Inputs:     c.Inputs,
		Trajectory: c.Trajectory,
	}))
	sb.WriteString("\n\nProposed next step: ")
	sb.WriteString(FormatThought(c.Thought))
	sb.WriteString("\n\n")
	sb.WriteString(evaluation.ScoreInstruction)
	return sb.String()
}
