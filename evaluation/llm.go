package evaluation

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
)

// LLMBackbone scores a context by asking an LLM. format renders the prompt;
// the answer is parsed with ParseScore.
type LLMBackbone[T any] struct {
	client       planlib.LLMClient
	format       func(T) string
	systemPrompt string
}

func NewLLMBackbone[T any](client planlib.LLMClient, format func(T) string, systemPrompt string) *LLMBackbone[T] {
	return &LLMBackbone[T]{client: client, format: format, systemPrompt: systemPrompt}
}

func (b *LLMBackbone[T]) Score(ctx context.Context, in T) (float64, error) {
	text, err := planlib.Ask(ctx, b.client, b.format(in), planlib.WithSessionSystemPrompt(b.systemPrompt))
	if err != nil {
		return 0, goerr.Wrap(err, "failed to ask for score")
	}

	score, err := ParseScore(text)
	if err != nil {
		return 0, err
	}

	planlib.LoggerFromContext(ctx).Debug("llm score", "score", score, "answer", text)
	return score, nil
}

var (
	verdictPattern = regexp.MustCompile(`\[\[\s*(-?\d+(?:\.\d+)?)\s*\]\]`)
	numberPattern  = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// ScoreInstruction asks the model to end its answer with a [[number]] verdict.
const ScoreInstruction = `Take your time and comment your decision, but make sure to always output a number between 0 and 1 in the end, where 0 means failure and 1 means success. Use the following format: [[number]].
Your verdict:`

// ParseScore extracts a score from an LLM answer: the last [[number]]
// verdict, or else the last bare number.
func ParseScore(text string) (float64, error) {
	var raw string
	if m := verdictPattern.FindAllStringSubmatch(text, -1); len(m) > 0 {
		raw = m[len(m)-1][1]
	} else if m := numberPattern.FindAllString(text, -1); len(m) > 0 {
		raw = m[len(m)-1]
	} else {
		return 0, goerr.Wrap(planlib.ErrMalformedOutput, "no score in answer", goerr.V("text", strings.TrimSpace(text)))
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, goerr.Wrap(planlib.ErrMalformedOutput, "invalid score", goerr.V("raw", raw))
	}
	return v, nil
}
