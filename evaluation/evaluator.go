package evaluation

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// Backbone produces a raw score for a context.
type Backbone[T any] interface {
	Score(ctx context.Context, in T) (float64, error)
}

// BackboneFunc adapts a function to Backbone.
type BackboneFunc[T any] func(ctx context.Context, in T) (float64, error)

func (f BackboneFunc[T]) Score(ctx context.Context, in T) (float64, error) {
	return f(ctx, in)
}

// Continuer decides whether a strategy should continue for a context. The
// returned score is informational.
type Continuer[T any] interface {
	Evaluate(ctx context.Context, in T) (bool, float64, error)
}

// BatchContinuer scores several contexts at once. Results are in input order.
type BatchContinuer[T any] interface {
	Continuer[T]
	EvaluateBatch(ctx context.Context, inputs []T) ([]Result, error)
}

// Evaluator composes a Backbone with a Judge.
type Evaluator[T any] struct {
	backbone Backbone[T]
	judge    Judge
}

func NewEvaluator[T any](backbone Backbone[T], judge Judge) *Evaluator[T] {
	return &Evaluator[T]{backbone: backbone, judge: judge}
}

// Evaluate scores in and applies the judge.
func (e *Evaluator[T]) Evaluate(ctx context.Context, in T) (bool, float64, error) {
	score, err := e.backbone.Score(ctx, in)
	if err != nil {
		return false, 0, goerr.Wrap(err, "failed to score")
	}

	ok, err := e.judge.Evaluate(score)
	if err != nil {
		return false, score, err
	}
	return ok, score, nil
}

// Result is one entry of EvaluateBatch.
type Result struct {
	Continue bool
	Score    float64
}

// EvaluateBatch scores inputs concurrently. Results are in input order.
func (e *Evaluator[T]) EvaluateBatch(ctx context.Context, inputs []T) ([]Result, error) {
	results := make([]Result, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	for i, in := range inputs {
		g.Go(func() error {
			ok, score, err := e.Evaluate(ctx, in)
			if err != nil {
				return goerr.Wrap(err, "failed to evaluate", goerr.V("index", i))
			}
			results[i] = Result{Continue: ok, Score: score}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

var _ BatchContinuer[string] = (*Evaluator[string])(nil)

// Always returns a Continuer that always yields ok with score.
func Always[T any](ok bool, score float64) Continuer[T] {
	return constant[T]{ok: ok, score: score}
}

type constant[T any] struct {
	ok    bool
	score float64
}

func (c constant[T]) Evaluate(context.Context, T) (bool, float64, error) {
	return c.ok, c.score, nil
}
