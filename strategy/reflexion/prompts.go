package reflexion

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/m-mizutani/planlib"
	"github.com/m-mizutani/planlib/evaluation"
)

const evaluationSystemPrompt = `You are a strict judge of agent trials. You are given a task, the steps an agent took and its final answer. Decide how well the agent completed the task.`

// buildEvaluationPrompt creates a prompt for scoring a finished trial.
func buildEvaluationPrompt(trial TrialContext) string {
	return fmt.Sprintf(`Evaluate whether the agent successfully completed the task.

Original task:
%s

Agent's execution history:
%s

Agent's final response:
%s

%s`,
		formatInputs(trial.Inputs),
		formatHistory(trial.Trajectory),
		trial.Finish.Output(),
		evaluation.ScoreInstruction)
}

// buildReflectionPrompt creates a prompt for generating self-reflection after a failed trial.
// It includes 2-shot examples from the Reflexion paper (AlfWorld and HotPotQA).
func buildReflectionPrompt(trial *TrialContext) string {
	prompt := `You are a reflective AI assistant. Analyze why you failed and provide specific guidance for improvement.

[Few-shot example 1: AlfWorld]
Task: Examine a mug with a desklamp
Execution: Found mug first, then looked for desklamp, but couldn't complete task
Reflection: In this environment, my plan was to find a mug then find and use a desklamp. However, the task says to examine the mug with the desklamp. I should have looked for the desklamp first, then looked for the mug. I noticed that the desklamp was found on desk 1. In the next trial, I will go to desk 1, find the lamp, then look for the mug and examine it with the desklamp.

[Few-shot example 2: HotPotQA]
Task: What role was the actor best known for in the TV show?
Execution: Searched for show title "'Allo 'Allo!" but got no results
Reflection: I searched the wrong title for the show, 'Allo 'Allo!', which resulted in no results. I should have searched the show's main character, Gorden Kaye, to find the role he was best known for.
%s
Now analyze your own attempt:

Task: %s
Your execution: %s
Final response: %s
Evaluation score: %.2f (trial %d)

Provide a concise reflection (100-300 words) covering what went wrong and how you should act in the next trial.`

	return fmt.Sprintf(prompt,
		buildMemoryPrompt(trial.Reflections),
		formatInputs(trial.Inputs),
		formatHistory(trial.Trajectory),
		trial.Finish.Output(),
		trial.Score,
		trial.Iteration)
}

// buildMemoryPrompt formats the reflections of earlier trials. It returns an
// empty string when there are none.
func buildMemoryPrompt(reflections []string) string {
	if len(reflections) == 0 {
		return ""
	}

	lines := []string{"", "You have attempted this task before. Here are your previous reflections:", ""}
	for i, r := range reflections {
		lines = append(lines, fmt.Sprintf("Trial %d reflection:", i+1), r, "")
	}
	return strings.Join(lines, "\n")
}

func formatInputs(inputs map[string]any) string {
	var lines []string
	for _, k := range slices.Sorted(maps.Keys(inputs)) {
		lines = append(lines, fmt.Sprintf("%s: %s", k, planlib.ObservationString(inputs[k])))
	}
	return strings.Join(lines, "\n")
}

func formatHistory(trajectory []planlib.Step) string {
	if len(trajectory) == 0 {
		return "(no actions taken)"
	}
	return planlib.FormatTrajectory(trajectory)
}
