package reflexion

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
)

// LLMReflector generates a self-reflection from a failed trial by asking an LLM
// what went wrong and how to improve.
type LLMReflector struct {
	client planlib.LLMClient
}

func NewLLMReflector(client planlib.LLMClient) *LLMReflector {
	return &LLMReflector{client: client}
}

func (r *LLMReflector) Reflect(ctx context.Context, trial *TrialContext) (string, error) {
	text, err := planlib.Ask(ctx, r.client, buildReflectionPrompt(trial))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate reflection", goerr.V("iteration", trial.Iteration))
	}
	return strings.TrimSpace(text), nil
}
