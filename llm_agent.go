package planlib

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// PromptFunc renders what an agent sees into the user prompt.
type PromptFunc func(input *ProposeInput) string

// LLMAgent is an Agent and MultiProposer backed by an LLMClient. Every
// proposal runs in a fresh session; the whole context is rendered into the
// prompt.
type LLMAgent struct {
	client       LLMClient
	tools        []ToolSpec
	systemPrompt string
	parser       ThoughtParser
	prompt       PromptFunc
	temperature  *float64
}

type LLMAgentOption func(*LLMAgent)

// WithAgentTools sets the tools the agent may call.
func WithAgentTools(specs ...ToolSpec) LLMAgentOption {
	return func(a *LLMAgent) {
		a.tools = append(a.tools, specs...)
	}
}

func WithAgentSystemPrompt(prompt string) LLMAgentOption {
	return func(a *LLMAgent) {
		a.systemPrompt = prompt
	}
}

// WithAgentParser sets the output parser. Default is FunctionCallingParser.
func WithAgentParser(parser ThoughtParser) LLMAgentOption {
	return func(a *LLMAgent) {
		a.parser = parser
	}
}

// WithAgentPrompt replaces DefaultPrompt.
func WithAgentPrompt(fn PromptFunc) LLMAgentOption {
	return func(a *LLMAgent) {
		a.prompt = fn
	}
}

func WithAgentTemperature(t float64) LLMAgentOption {
	return func(a *LLMAgent) {
		a.temperature = &t
	}
}

func NewLLMAgent(client LLMClient, opts ...LLMAgentOption) *LLMAgent {
	a := &LLMAgent{
		client:       client,
		systemPrompt: defaultAgentSystemPrompt,
		parser:       &FunctionCallingParser{},
		prompt:       DefaultPrompt,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewLLMAgentFromExecutor creates an LLMAgent whose tools are those of exec.
func NewLLMAgentFromExecutor(ctx context.Context, client LLMClient, exec ToolProvider, opts ...LLMAgentOption) (*LLMAgent, error) {
	specs, err := exec.ToolSpecs(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get tool specs")
	}
	return NewLLMAgent(client, append([]LLMAgentOption{WithAgentTools(specs...)}, opts...)...), nil
}

const defaultAgentSystemPrompt = `You are an agent solving a task step by step. Use the available tools to act. When the task is solved, answer with the final result and do not call any tool.`

func (a *LLMAgent) Propose(ctx context.Context, input *ProposeInput) (Thought, error) {
	resp, err := a.generate(ctx, a.prompt(input))
	if err != nil {
		return nil, err
	}

	thought, err := a.parser.Parse(resp)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse agent response")
	}

	LoggerFromContext(ctx).Debug("agent proposed", "thought", thought)
	return thought, nil
}

func (a *LLMAgent) ProposeN(ctx context.Context, input *ProposeInput, n int) ([]Thought, error) {
	prompt := a.prompt(input) + fmt.Sprintf("\n\nPropose up to %d different alternatives for the next step. Each function call is treated as a separate alternative.", n)

	resp, err := a.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	thoughts, err := a.parser.ParseCandidates(resp)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse agent candidates")
	}
	if len(thoughts) > n {
		thoughts = thoughts[:n]
	}

	LoggerFromContext(ctx).Debug("agent proposed candidates", "count", len(thoughts))
	return thoughts, nil
}

func (a *LLMAgent) generate(ctx context.Context, prompt string) (*Response, error) {
	options := []SessionOption{WithSessionSystemPrompt(a.systemPrompt)}
	if a.temperature != nil {
		options = append(options, WithSessionTemperature(*a.temperature))
	}

	if _, ok := a.parser.(*FunctionCallingParser); ok {
		options = append(options, WithSessionTools(a.tools...))
	} else {
		options = append(options, WithSessionContentType(ContentTypeJSON))
		prompt = describeTools(a.tools) + "\n\n" + prompt
	}

	cfg := NewSessionConfig(options...)
	session, err := a.client.NewSession(ctx, options...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create session")
	}

	resp, err := Generate(ctx, session, &cfg, Text(prompt))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate proposal")
	}
	return resp, nil
}

// DefaultPrompt renders task inputs, the trajectory and any extra context.
func DefaultPrompt(input *ProposeInput) string {
	var b strings.Builder

	b.WriteString("Task:\n")
	keys := make([]string, 0, len(input.Inputs))
	for k := range input.Inputs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %v\n", k, input.Inputs[k])
	}

	if len(input.SelfReflections) > 0 {
		b.WriteString("\nReflections from your previous trials:\n")
		for i, r := range input.SelfReflections {
			fmt.Fprintf(&b, "%d. %s\n", i+1, r)
		}
	}

	if len(input.Trajectory) > 0 {
		b.WriteString("\nSteps taken so far:\n")
		b.WriteString(FormatTrajectory(input.Trajectory))
	}

	if len(input.Extra) > 0 {
		b.WriteString("\nAdditional context:\n")
		keys := slices.Sorted(maps.Keys(input.Extra))
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", k, ObservationString(input.Extra[k]))
		}
	}

	if len(input.PreviousThoughts) > 0 {
		b.WriteString("\nAlternatives already proposed for this step (propose something different):\n")
		for _, t := range input.PreviousThoughts {
			fmt.Fprintf(&b, "- %s\n", t.String())
		}
	}

	return b.String()
}

// FormatTrajectory renders steps as numbered action/observation pairs.
func FormatTrajectory(steps []Step) string {
	var b strings.Builder
	for i, s := range steps {
		fmt.Fprintf(&b, "%d. Action: %s\n   Observation: %s\n", i+1, s.Action.String(), ObservationString(s.Observation))
	}
	return b.String()
}

func describeTools(specs []ToolSpec) string {
	var b strings.Builder
	b.WriteString(`Answer with a JSON object {"action": <tool name>, "action_input": {<arguments>}} to act, or {"final_answer": <answer>} when done. Available tools:`)
	for _, spec := range specs {
		fmt.Fprintf(&b, "\n- %s: %s", spec.Name, spec.Description)
	}
	return b.String()
}

func joinTexts(texts []string) string {
	return strings.TrimSpace(strings.Join(texts, "\n"))
}
