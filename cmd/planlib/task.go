package main

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
	"github.com/m-mizutani/planlib/env/frozenlake"
	"github.com/m-mizutani/planlib/env/game24"
)

// actionExecutor is an executor that can describe its actions to an agent.
type actionExecutor interface {
	planlib.ActionExecutor
	planlib.ToolProvider
}

// task is one environment instance ready to be solved.
type task struct {
	name         string
	executor     actionExecutor
	inputs       map[string]any
	systemPrompt string

	// solved reports whether the environment is in a winning state.
	solved func() bool
}

type taskConfig struct {
	env      string
	numbers  string
	mapSize  int
	slippery bool
	seed     uint64
	maxSteps int
}

const game24Prompt = `You are playing the Game of 24. Combine the given numbers with the arithmetic tools so that 24 is the only number left. Every tool consumes two of the remaining numbers and puts the result back. Each number must be used exactly once.`

const frozenLakePrompt = `You are walking on a frozen lake. Move from the start cell S to the goal cell G without stepping into a hole H. Use the tools to inspect the map and your position before moving. The ice may be slippery, so check your position after each move.`

func newTask(cfg taskConfig) (*task, error) {
	switch cfg.env {
	case "game24":
		g, err := game24.Parse(cfg.numbers)
		if err != nil {
			return nil, err
		}
		exec, err := g.NewExecutor(planlib.WithInputValidation())
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create game24 executor")
		}
		return &task{
			name:         cfg.env,
			executor:     exec,
			inputs:       map[string]any{"input": g.String()},
			systemPrompt: game24Prompt,
			solved:       g.Solved,
		}, nil

	case "frozenlake":
		rows := frozenlake.Map4x4
		if cfg.mapSize > 0 {
			rows = frozenlake.Generate(cfg.mapSize, 0.8, cfg.seed)
		}

		opts := []frozenlake.Option{
			frozenlake.WithSlippery(cfg.slippery),
			frozenlake.WithSeed(cfg.seed),
		}
		if cfg.maxSteps > 0 {
			opts = append(opts, frozenlake.WithMaxSteps(cfg.maxSteps))
		}
		lake, err := frozenlake.New(rows, opts...)
		if err != nil {
			return nil, err
		}

		goal := frozenlake.Position{X: lake.Size() - 1, Y: lake.Size() - 1}
		return &task{
			name:     cfg.env,
			executor: planlib.NewEnvExecutor(lake),
			inputs: map[string]any{
				"input": fmt.Sprintf("Reach the goal of this %dx%d board:\n%s", lake.Size(), lake.Size(), lake.String()),
			},
			systemPrompt: frozenLakePrompt,
			solved:       func() bool { return lake.Position() == goal },
		}, nil

	default:
		return nil, goerr.Wrap(errUnsupported, "unknown environment", goerr.V("env", cfg.env))
	}
}

// reset restores the environment's initial state.
func (t *task) reset(ctx context.Context, _ map[string]any) error {
	return t.executor.Reset(ctx, nil)
}
