package reflexion

import (
	"github.com/m-mizutani/planlib"
	"github.com/m-mizutani/planlib/evaluation"
)

// NewLLMEvaluator creates an evaluator that asks an LLM to score a trial
// between 0 and 1. Another trial is requested while the score is at most
// threshold.
func NewLLMEvaluator(client planlib.LLMClient, threshold float64) *evaluation.Evaluator[TrialContext] {
	backbone := evaluation.NewLLMBackbone(client, buildEvaluationPrompt, evaluationSystemPrompt)
	return evaluation.NewEvaluator[TrialContext](backbone, evaluation.NewJudge(threshold, evaluation.Leq))
}
