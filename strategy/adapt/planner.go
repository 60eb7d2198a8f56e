package adapt

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// PlannerInput describes the failed attempt a planner decomposes.
type PlannerInput struct {
	Inputs  map[string]any
	Depth   int
	Attempt *Attempt
}

// Extra renders the failed attempt as agent context.
func (x *PlannerInput) Extra() map[string]any {
	extra := map[string]any{
		"current_depth": x.Depth,
	}
	if x.Attempt != nil {
		extra["executor_finish_log"] = x.Attempt.Finish.Log
		extra["executor_steps"] = planlib.FormatTrajectory(x.Attempt.Trajectory)
	}
	return extra
}

// Planner decomposes a failed task into a Plan.
type Planner interface {
	Plan(ctx context.Context, input *PlannerInput) (*Plan, error)
}

// AgentPlanner lets an agent build the plan through PlannerTools until it
// returns a Finish.
type AgentPlanner struct {
	agent         planlib.Agent
	maxIterations int
}

type PlannerOption func(*AgentPlanner)

// WithPlannerMaxIterations bounds the planner's tool calls.
// Default is 10 if not specified
func WithPlannerMaxIterations(n int) PlannerOption {
	return func(p *AgentPlanner) {
		p.maxIterations = n
	}
}

// NewAgentPlanner creates a planner driven by agent. The agent must be able
// to call the tools described by PlannerToolSpecs.
func NewAgentPlanner(agent planlib.Agent, opts ...PlannerOption) *AgentPlanner {
	p := &AgentPlanner{agent: agent, maxIterations: 10}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

const agentPlannerSystemPrompt = `You are a planner. An executor agent failed to complete the task below. Decompose the task into smaller subtasks using the provided tools, and choose how their results are aggregated. When the plan is ready, answer without calling any tool.`

// NewLLMPlannerAgent creates an LLM agent that knows the planner tools and
// the planner system prompt. opts are applied afterwards, e.g. to choose the
// output parser.
func NewLLMPlannerAgent(client planlib.LLMClient, opts ...planlib.LLMAgentOption) *planlib.LLMAgent {
	base := []planlib.LLMAgentOption{
		planlib.WithAgentTools(PlannerToolSpecs()...),
		planlib.WithAgentSystemPrompt(agentPlannerSystemPrompt),
	}
	return planlib.NewLLMAgent(client, append(base, opts...)...)
}

// PlannerToolSpecs returns the specs of PlannerTools.
func PlannerToolSpecs() []planlib.ToolSpec {
	tools := PlannerTools(NewPlan())
	specs := make([]planlib.ToolSpec, len(tools))
	for i, t := range tools {
		specs[i] = t.Spec()
	}
	return specs
}

func (p *AgentPlanner) Plan(ctx context.Context, input *PlannerInput) (*Plan, error) {
	plan := NewPlan()
	tools, err := planlib.NewToolExecutor(PlannerTools(plan))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create planner tools")
	}

	logger := planlib.LoggerFromContext(ctx)
	extra := input.Extra()
	var trajectory []planlib.Step

	for i := 0; i < p.maxIterations; i++ {
		thought, err := p.agent.Propose(ctx, &planlib.ProposeInput{
			Inputs:     input.Inputs,
			Trajectory: trajectory,
			Extra:      extra,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to propose plan edit", goerr.V("iteration", i))
		}

		switch t := thought.(type) {
		case planlib.Finish:
			logger.Debug("agent planner finished", "plan", plan.String())
			return plan, nil

		case planlib.Action, planlib.ActionBatch:
			steps, err := planlib.ExecuteThought(ctx, tools, t)
			if err != nil {
				return nil, err
			}
			trajectory = append(trajectory, steps...)

		default:
			return nil, goerr.Wrap(planlib.ErrUnknownThought, "unexpected planner thought", goerr.V("thought", thought))
		}
	}

	logger.Info("agent planner reached iteration limit", "max_iterations", p.maxIterations, "subtasks", len(plan.Subtasks))
	return plan, nil
}

// SimplePlanner asks an LLM for the whole plan as one JSON answer.
type SimplePlanner struct {
	client planlib.LLMClient
}

func NewSimplePlanner(client planlib.LLMClient) *SimplePlanner {
	return &SimplePlanner{client: client}
}

const simplePlannerSystemPrompt = `You are a planner. An executor agent failed to complete the task below. Decompose the task into smaller subtasks.
Answer with a JSON object of the form {"subtasks": [{"inputs": "<instruction>"}, ...], "aggregation_mode": "and" | "or"}.
Use "and" when every subtask must succeed and "or" when solving any one of them is enough.`

func (p *SimplePlanner) Plan(ctx context.Context, input *PlannerInput) (*Plan, error) {
	prompt := planlib.DefaultPrompt(&planlib.ProposeInput{
		Inputs: input.Inputs,
		Extra:  input.Extra(),
	})

	answer, err := planlib.Ask(ctx, p.client, prompt,
		planlib.WithSessionSystemPrompt(simplePlannerSystemPrompt),
		planlib.WithSessionContentType(planlib.ContentTypeJSON),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to ask for plan")
	}

	return ParsePlan(answer)
}

var planSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return planlib.CompileSchema("adapt_plan.json", map[string]any{
		"type":     "object",
		"required": []string{"subtasks", "aggregation_mode"},
		"properties": map[string]any{
			"subtasks": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": []string{"object", "string"}},
			},
			"aggregation_mode": map[string]any{
				"enum": []string{string(ModeAnd), string(ModeOr)},
			},
		},
	})
})

// ParsePlan parses an LLM answer holding a plan as JSON, optionally inside
// a markdown fence. String subtasks become TextSubtask inputs.
func ParsePlan(text string) (*Plan, error) {
	schema, err := planSchema()
	if err != nil {
		return nil, err
	}

	raw := planlib.ExtractJSON(text)
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, goerr.Wrap(planlib.ErrMalformedOutput, "plan is not JSON", goerr.V("text", text), goerr.V("error", err.Error()))
	}
	if err := planlib.ValidateJSON(schema, doc); err != nil {
		return nil, goerr.Wrap(planlib.ErrMalformedOutput, "plan does not match schema", goerr.V("text", text), goerr.V("error", err.Error()))
	}

	obj := doc.(map[string]any)
	plan := &Plan{Mode: AggregationMode(obj["aggregation_mode"].(string))}
	for _, item := range obj["subtasks"].([]any) {
		switch v := item.(type) {
		case map[string]any:
			plan.Subtasks = append(plan.Subtasks, v)
		case string:
			plan.Subtasks = append(plan.Subtasks, TextSubtask(v))
		}
	}
	return plan, nil
}
