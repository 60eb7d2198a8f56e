package totdfs

import (
	"context"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
)

// Generator produces up to n candidate thoughts at a node.
type Generator interface {
	Generate(ctx context.Context, input *planlib.ProposeInput, n int) ([]planlib.Thought, error)
}

// SampleGenerator issues n agent calls one after another. Each call sees the
// thoughts already produced in the same step so that it can avoid repeating
// them, which is why there is no concurrent form. Use ProposeGenerator for a
// single call, or WithConcurrentEvaluation to parallelize scoring.
type SampleGenerator struct {
	agent planlib.Agent
}

func NewSampleGenerator(agent planlib.Agent) *SampleGenerator {
	return &SampleGenerator{agent: agent}
}

func (g *SampleGenerator) Generate(ctx context.Context, input *planlib.ProposeInput, n int) ([]planlib.Thought, error) {
	thoughts := make([]planlib.Thought, 0, n)
	for i := 0; i < n; i++ {
		in := *input
		in.PreviousThoughts = slices.Clone(thoughts)

		thought, err := g.agent.Propose(ctx, &in)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to sample thought", goerr.V("index", i))
		}
		thoughts = append(thoughts, thought)
	}
	return thoughts, nil
}

// ProposeGenerator asks for all candidates in a single call.
type ProposeGenerator struct {
	proposer planlib.MultiProposer
}

func NewProposeGenerator(proposer planlib.MultiProposer) *ProposeGenerator {
	return &ProposeGenerator{proposer: proposer}
}

func (g *ProposeGenerator) Generate(ctx context.Context, input *planlib.ProposeInput, n int) ([]planlib.Thought, error) {
	thoughts, err := g.proposer.ProposeN(ctx, input, n)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to propose thoughts", goerr.V("n", n))
	}
	if len(thoughts) > n {
		thoughts = thoughts[:n]
	}
	return thoughts, nil
}
