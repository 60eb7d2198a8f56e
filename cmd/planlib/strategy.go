package main

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
	"github.com/m-mizutani/planlib/strategy/adapt"
	"github.com/m-mizutani/planlib/strategy/reflexion"
	"github.com/m-mizutani/planlib/strategy/simple"
	"github.com/m-mizutani/planlib/strategy/totdfs"
)

var (
	strategyNames = []string{"simple", "tot", "dfsdt", "adapt", "reflexion"}
	plannerNames  = []string{"simple", "agent"}
)

type strategyConfig struct {
	name          string
	maxIterations int
	maxThoughts   int
	maxDepth      int
	maxTrials     int
	threshold     float64
	parser        string
	planner       string
}

const adaptCompletionPrompt = ` When you finish, start your final answer with "Task completed." if the task is solved, or "Task failed." otherwise.`

// newStrategy assembles the named strategy over t with an LLM agent whose
// parser is looked up in parsers.
func newStrategy(ctx context.Context, cfg strategyConfig, client planlib.LLMClient, parsers *planlib.Registry[planlib.ThoughtParser], t *task) (planlib.Strategy, error) {
	systemPrompt := t.systemPrompt
	if cfg.name == "adapt" {
		systemPrompt += adaptCompletionPrompt
	}

	parserName := cfg.parser
	if parserName == "" {
		parserName = planlib.ParserFunctionCalling
	}
	parser, err := parsers.Get(parserName)
	if err != nil {
		return nil, err
	}

	agent, err := planlib.NewLLMAgentFromExecutor(ctx, client, t.executor,
		planlib.WithAgentSystemPrompt(systemPrompt),
		planlib.WithAgentParser(parser),
	)
	if err != nil {
		return nil, err
	}

	switch cfg.name {
	case "simple":
		return simple.New(agent, t.executor, simple.WithMaxIterations(cfg.maxIterations)), nil

	case "tot":
		return totdfs.NewToT(t.executor,
			totdfs.NewSampleGenerator(agent),
			totdfs.NewLLMEvaluator(client, cfg.threshold),
			totdfs.NewPairwiseSorter(totdfs.NewLLMComparer(client)),
			totdfs.WithMaxIterations(cfg.maxIterations),
			totdfs.WithMaxThoughts(cfg.maxThoughts),
			totdfs.WithConcurrentEvaluation(),
		), nil

	case "dfsdt":
		return totdfs.NewDFSDT(t.executor,
			totdfs.NewProposeGenerator(agent),
			totdfs.NewLLMEvaluator(client, cfg.threshold),
			totdfs.WithMaxIterations(cfg.maxIterations),
			totdfs.WithMaxThoughts(cfg.maxThoughts),
			totdfs.WithConcurrentEvaluation(),
		), nil

	case "adapt":
		inner := simple.New(agent, t.executor, simple.WithMaxIterations(cfg.maxIterations))
		executor := adapt.NewStrategyExecutor(inner, t.executor)
		switch cfg.planner {
		case "", "simple":
			return adapt.NewWithSimplePlanner(executor, client, adapt.WithMaxDepth(cfg.maxDepth)), nil
		case "agent":
			planner := adapt.NewLLMPlannerAgent(client, planlib.WithAgentParser(parser))
			return adapt.NewWithAgentPlanner(executor, planner, adapt.WithMaxDepth(cfg.maxDepth)), nil
		default:
			return nil, goerr.Wrap(errUnsupported, "unknown planner", goerr.V("planner", cfg.planner))
		}

	case "reflexion":
		return reflexion.New(agent, t.executor,
			reflexion.NewLLMEvaluator(client, cfg.threshold),
			reflexion.NewLLMReflector(client),
			reflexion.WithMaxIterations(cfg.maxTrials),
			reflexion.WithMaxActions(cfg.maxIterations),
			reflexion.WithResetEnvironment(t.reset),
		), nil

	default:
		return nil, goerr.Wrap(errUnsupported, "unknown strategy", goerr.V("strategy", cfg.name))
	}
}
