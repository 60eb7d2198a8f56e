package adapt_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/planlib"
	"github.com/m-mizutani/planlib/mock"
	"github.com/m-mizutani/planlib/strategy/adapt"
)

func TestPlannerTools(t *testing.T) {
	ctx := context.Background()
	plan := adapt.NewPlan()
	exec, err := planlib.NewToolExecutor(adapt.PlannerTools(plan))
	gt.NoError(t, err)

	run := func(name string, input map[string]any) string {
		step, err := exec.Execute(ctx, planlib.Action{Name: name, Input: input})
		gt.NoError(t, err)
		return planlib.ObservationString(step.Observation)
	}

	gt.Equal(t, run(adapt.ToolAddTask, map[string]any{"task_inputs": "first"}),
		"Successfully added a new subtask to the end of the current plan.")

	t.Run("insert out of range is an observation", func(t *testing.T) {
		gt.Equal(t, run(adapt.ToolAddTask, map[string]any{"task_inputs": "x", "task_position": float64(3)}),
			"Couldn't insert task to position 3. Currently, the plan has 1 tasks.")
		gt.A(t, plan.Subtasks).Length(1)
	})

	t.Run("insert at head", func(t *testing.T) {
		gt.Equal(t, run(adapt.ToolAddTask, map[string]any{"task_inputs": "zero", "task_position": float64(0)}),
			"Successfully added a new subtask to position 0 in the current plan.")
		gt.Equal(t, plan.Subtasks, []map[string]any{adapt.TextSubtask("zero"), adapt.TextSubtask("first")})
	})

	t.Run("edit and remove", func(t *testing.T) {
		gt.Equal(t, run(adapt.ToolEditTask, map[string]any{"task_inputs": "one", "task_position": float64(1)}),
			"Successfully edited the subtask at position 1 in the current plan.")
		gt.Equal(t, run(adapt.ToolEditTask, map[string]any{"task_inputs": "one", "task_position": float64(5)}),
			"Couldn't edit the subtask at position 5. Currently, the plan has 2 tasks.")
		gt.Equal(t, run(adapt.ToolRemoveTask, map[string]any{"task_position": float64(0)}),
			"Successfully removed the subtask at position 0 in the current plan.")
		gt.Equal(t, run(adapt.ToolRemoveTask, map[string]any{"task_position": float64(1)}),
			"Couldn't remove the subtask at position 1. Currently, the plan has 1 tasks.")
		gt.Equal(t, plan.Subtasks, []map[string]any{adapt.TextSubtask("one")})
	})

	t.Run("aggregation mode", func(t *testing.T) {
		gt.Equal(t, run(adapt.ToolDefineAggregationMode, map[string]any{"aggregation_mode": "or"}),
			"Successfully set aggregation mode to or")
		gt.Equal(t, plan.Mode, adapt.ModeOr)

		gt.S(t, run(adapt.ToolDefineAggregationMode, map[string]any{"aggregation_mode": "xor"})).Contains("Error:")
		gt.Equal(t, plan.Mode, adapt.ModeOr)
	})

	t.Run("check plan", func(t *testing.T) {
		gt.Equal(t, run(adapt.ToolCheckPlan, nil),
			"Currently, the plan contains 1 subtasks.\n1. one\nThe current subtasks results aggregation mode is set to or.")
	})

	t.Run("clear", func(t *testing.T) {
		plan.Clear()
		gt.Equal(t, run(adapt.ToolCheckPlan, nil),
			"Currently, the plan doesn't contain any subtasks.\nThe current subtasks results aggregation mode is set to and.")
	})
}

func TestAgentPlanner(t *testing.T) {
	script := []planlib.Thought{
		planlib.Action{Name: adapt.ToolAddTask, Input: map[string]any{"task_inputs": "go north"}},
		planlib.ActionBatch{
			{Name: adapt.ToolAddTask, Input: map[string]any{"task_inputs": "go south"}},
			{Name: adapt.ToolDefineAggregationMode, Input: map[string]any{"aggregation_mode": "or"}},
		},
		planlib.NewFinish("done", ""),
	}
	agent := &mock.AgentMock{
		ProposeFunc: func(ctx context.Context, input *planlib.ProposeInput) (planlib.Thought, error) {
			return script[len(input.Trajectory)/2+len(input.Trajectory)%2], nil
		},
	}

	plan, err := adapt.NewAgentPlanner(agent).Plan(context.Background(), &adapt.PlannerInput{
		Inputs: map[string]any{"inputs": "find the exit"},
		Depth:  1,
		Attempt: &adapt.Attempt{
			Finish: planlib.NewFinish("", "stuck in a loop"),
		},
	})
	gt.NoError(t, err)
	gt.Equal(t, plan.Mode, adapt.ModeOr)
	gt.Equal(t, plan.Subtasks, []map[string]any{adapt.TextSubtask("go north"), adapt.TextSubtask("go south")})

	calls := agent.ProposeCalls()
	gt.A(t, calls).Length(3)
	gt.Equal(t, calls[0].Input.Extra["executor_finish_log"], any("stuck in a loop"))
	gt.Equal(t, calls[0].Input.Extra["current_depth"], any(1))
}

func TestLLMPlannerAgent(t *testing.T) {
	responses := []*planlib.Response{
		{FunctionCalls: []*planlib.FunctionCall{{
			ID:        "1",
			Name:      adapt.ToolAddTask,
			Arguments: map[string]any{"task_inputs": "go north"},
		}}},
		{Texts: []string{"The plan is ready."}},
	}
	var configs []planlib.SessionConfig
	client := &mock.LLMClientMock{
		NewSessionFunc: func(ctx context.Context, options ...planlib.SessionOption) (planlib.Session, error) {
			configs = append(configs, planlib.NewSessionConfig(options...))
			return &mock.SessionMock{
				GenerateContentFunc: func(ctx context.Context, inputs ...planlib.Input) (*planlib.Response, error) {
					resp := responses[0]
					responses = responses[1:]
					return resp, nil
				},
			}, nil
		},
	}

	t.Run("plans with the planner tools", func(t *testing.T) {
		agent := adapt.NewLLMPlannerAgent(client)
		plan := gt.R1(adapt.NewAgentPlanner(agent).Plan(context.Background(), &adapt.PlannerInput{
			Inputs: map[string]any{"inputs": "find the exit"},
		})).NoError(t)
		gt.Equal(t, plan.Mode, adapt.ModeAnd)
		gt.Equal(t, plan.Subtasks, []map[string]any{adapt.TextSubtask("go north")})

		gt.A(t, configs).Length(2)
		gt.A(t, configs[0].Tools()).Length(len(adapt.PlannerToolSpecs()))
		gt.S(t, configs[0].SystemPrompt()).Contains("You are a planner.")
	})

	t.Run("caller options override the defaults", func(t *testing.T) {
		configs = nil
		responses = []*planlib.Response{{Texts: []string{`{"final_answer": "nothing to add"}`}}}
		agent := adapt.NewLLMPlannerAgent(client,
			planlib.WithAgentParser(&planlib.JSONParser{}),
			planlib.WithAgentSystemPrompt("Plan the route."),
		)
		plan := gt.R1(adapt.NewAgentPlanner(agent).Plan(context.Background(), &adapt.PlannerInput{
			Inputs: map[string]any{"inputs": "find the exit"},
		})).NoError(t)
		gt.A(t, plan.Subtasks).Length(0)

		gt.A(t, configs).Length(1)
		gt.Equal(t, configs[0].ContentType(), planlib.ContentTypeJSON)
		gt.Equal(t, configs[0].SystemPrompt(), "Plan the route.")
	})
}

func TestParsePlan(t *testing.T) {
	t.Run("fenced json", func(t *testing.T) {
		plan, err := adapt.ParsePlan("Here is the plan:\n```json\n{\"subtasks\": [{\"inputs\": \"a\"}, \"b\"], \"aggregation_mode\": \"or\"}\n```")
		gt.NoError(t, err)
		gt.Equal(t, plan.Mode, adapt.ModeOr)
		gt.Equal(t, plan.Subtasks, []map[string]any{adapt.TextSubtask("a"), adapt.TextSubtask("b")})
	})

	t.Run("bare json", func(t *testing.T) {
		plan, err := adapt.ParsePlan(`{"subtasks": [], "aggregation_mode": "and"}`)
		gt.NoError(t, err)
		gt.Equal(t, plan.Mode, adapt.ModeAnd)
		gt.A(t, plan.Subtasks).Length(0)
	})

	for name, text := range map[string]string{
		"not json":     "I cannot plan this",
		"missing mode": `{"subtasks": []}`,
		"bad mode":     `{"subtasks": [], "aggregation_mode": "xor"}`,
		"bad subtask":  `{"subtasks": [1], "aggregation_mode": "and"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := adapt.ParsePlan(text)
			gt.Error(t, err)
			gt.True(t, errors.Is(err, planlib.ErrMalformedOutput))
		})
	}
}

func TestSimplePlanner(t *testing.T) {
	var prompt string
	client := &mock.LLMClientMock{
		NewSessionFunc: func(ctx context.Context, options ...planlib.SessionOption) (planlib.Session, error) {
			cfg := planlib.NewSessionConfig(options...)
			gt.Equal(t, cfg.ContentType(), planlib.ContentTypeJSON)
			return &mock.SessionMock{
				GenerateContentFunc: func(ctx context.Context, inputs ...planlib.Input) (*planlib.Response, error) {
					prompt = inputs[0].String()
					return &planlib.Response{Texts: []string{`{"subtasks": ["a", "b"], "aggregation_mode": "and"}`}}, nil
				},
			}, nil
		},
	}

	plan, err := adapt.NewSimplePlanner(client).Plan(context.Background(), &adapt.PlannerInput{
		Inputs:  map[string]any{"inputs": "make 24"},
		Attempt: &adapt.Attempt{Finish: planlib.NewFinish("", "ran out of numbers")},
	})
	gt.NoError(t, err)
	gt.A(t, plan.Subtasks).Length(2)
	gt.S(t, prompt).Contains("make 24")
	gt.S(t, prompt).Contains("ran out of numbers")
}
