package totdfs

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
)

// SortInput is what a Sorter ranks.
type SortInput struct {
	Inputs     map[string]any
	Trajectory []planlib.Step
	Thoughts   []planlib.Thought
}

// Sorter orders candidate thoughts, best first.
type Sorter interface {
	Sort(ctx context.Context, input *SortInput) ([]planlib.Thought, error)
}

// Comparer judges a pair of thoughts. The answer "1" prefers a, "2" prefers
// b; anything else is a tie.
type Comparer interface {
	Compare(ctx context.Context, input *SortInput, a, b planlib.Thought) (string, error)
}

// ComparerFunc adapts a function to Comparer.
type ComparerFunc func(ctx context.Context, input *SortInput, a, b planlib.Thought) (string, error)

func (f ComparerFunc) Compare(ctx context.Context, input *SortInput, a, b planlib.Thought) (string, error) {
	return f(ctx, input, a, b)
}

// PairwiseSorter runs a round-robin tournament over all pairs of candidates.
// It costs n*(n-1)/2 comparisons for n candidates.
type PairwiseSorter struct {
	comparer Comparer
}

func NewPairwiseSorter(comparer Comparer) *PairwiseSorter {
	return &PairwiseSorter{comparer: comparer}
}

func (s *PairwiseSorter) Sort(ctx context.Context, input *SortInput) ([]planlib.Thought, error) {
	thoughts := input.Thoughts
	scores := make([]float64, len(thoughts))

	for i := 0; i < len(thoughts); i++ {
		for j := i + 1; j < len(thoughts); j++ {
			answer, err := s.comparer.Compare(ctx, input, thoughts[i], thoughts[j])
			if err != nil {
				return nil, goerr.Wrap(err, "failed to compare thoughts", goerr.V("i", i), goerr.V("j", j))
			}

			switch strings.TrimSpace(answer) {
			case "1":
				scores[i] += 1
			case "2":
				scores[j] += 1
			default:
				scores[i] += 0.5
				scores[j] += 0.5
			}
		}
	}

	order := make([]int, len(thoughts))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(scores[b], scores[a])
	})

	sorted := make([]planlib.Thought, len(thoughts))
	for i, idx := range order {
		sorted[i] = thoughts[idx]
	}

	planlib.LoggerFromContext(ctx).Debug("thoughts sorted", "scores", scores, "order", order)
	return sorted, nil
}

// LLMComparer asks an LLM which of two thoughts is the better next step.
type LLMComparer struct {
	client planlib.LLMClient
}

func NewLLMComparer(client planlib.LLMClient) *LLMComparer {
	return &LLMComparer{client: client}
}

const compareSystemPrompt = `You compare two candidate next steps of an agent solving a task. Answer with "1" if the first candidate is more promising, "2" if the second candidate is more promising, or "tie" if they are equally promising. Answer with a single token.`

func (c *LLMComparer) Compare(ctx context.Context, input *SortInput, a, b planlib.Thought) (string, error) {
	var sb strings.Builder
	sb.WriteString(planlib.DefaultPrompt(&planlib.ProposeInput{
		Inputs:     input.Inputs,
		Trajectory: input.Trajectory,
	}))
	fmt.Fprintf(&sb, "\n\nCandidate 1: %s\nCandidate 2: %s\n", FormatThought(a), FormatThought(b))

	answer, err := planlib.Ask(ctx, c.client, sb.String(), planlib.WithSessionSystemPrompt(compareSystemPrompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to ask comparison")
	}
	return answer, nil
}

// FormatThought renders a thought for judge prompts.
func FormatThought(thought planlib.Thought) string {
	switch t := thought.(type) {
	case planlib.Action:
		return fmt.Sprintf("Call tool `%s` with arguments `%s`", t.Name, planlib.ObservationString(t.Input))
	case planlib.ActionBatch:
		parts := make([]string, len(t))
		for i, a := range t {
			parts[i] = FormatThought(a)
		}
		return strings.Join(parts, "; ")
	case planlib.Finish:
		return fmt.Sprintf("Finish execution with return values `%s`", planlib.ObservationString(t.ReturnValues))
	default:
		return fmt.Sprintf("%v", thought)
	}
}
