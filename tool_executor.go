package planlib

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib/trace"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/sync/errgroup"
)

// ToolExecutor executes actions by dispatching them to registered tools.
// Unknown tool names, invalid inputs and tool errors are turned into
// observations so that hallucinated calls never abort a run.
type ToolExecutor struct {
	tools      map[string]Tool
	names      []string
	schemas    map[string]*jsonschema.Schema
	reset      func(ctx context.Context) error
	concurrent bool
	validate   bool

	pendingSets []pendingSet
}

// ToolExecutorOption configures a ToolExecutor.
type ToolExecutorOption func(*ToolExecutor)

// WithReset sets the function that restores the tools' shared state. It is
// called by Reset before the given actions are replayed. Without it, Reset
// only replays.
func WithReset(fn func(ctx context.Context) error) ToolExecutorOption {
	return func(x *ToolExecutor) {
		x.reset = fn
	}
}

// WithConcurrentBatch makes ExecuteBatch run actions concurrently. Steps are
// still returned in input order. Only use it with tools that do not share
// mutable state.
func WithConcurrentBatch() ToolExecutorOption {
	return func(x *ToolExecutor) {
		x.concurrent = true
	}
}

// WithInputValidation validates every action input against the tool's
// parameter schema before running it.
func WithInputValidation() ToolExecutorOption {
	return func(x *ToolExecutor) {
		x.validate = true
	}
}

// WithToolSets adds the tools of each ToolSet. Specs are fetched once at
// construction time.
func WithToolSets(ctx context.Context, sets ...ToolSet) ToolExecutorOption {
	return func(x *ToolExecutor) {
		for _, set := range sets {
			x.pendingSets = append(x.pendingSets, pendingSet{ctx: ctx, set: set})
		}
	}
}

type pendingSet struct {
	ctx context.Context
	set ToolSet
}

// NewToolExecutor creates a ToolExecutor over tools.
func NewToolExecutor(tools []Tool, opts ...ToolExecutorOption) (*ToolExecutor, error) {
	x := &ToolExecutor{
		tools:   map[string]Tool{},
		schemas: map[string]*jsonschema.Schema{},
	}
	for _, opt := range opts {
		opt(x)
	}

	for _, tool := range tools {
		if err := x.register(tool); err != nil {
			return nil, err
		}
	}

	for _, p := range x.pendingSets {
		specs, err := p.set.Specs(p.ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get tool set specs")
		}
		for _, spec := range specs {
			set, name := p.set, spec.Name
			tool := ToolFunc(spec, func(ctx context.Context, args map[string]any) (any, error) {
				return set.Run(ctx, name, args)
			})
			if err := x.register(tool); err != nil {
				return nil, err
			}
		}
	}
	x.pendingSets = nil

	return x, nil
}

func (x *ToolExecutor) register(tool Tool) error {
	spec := tool.Spec()
	if err := spec.Validate(); err != nil {
		return err
	}
	if _, ok := x.tools[spec.Name]; ok {
		return goerr.Wrap(ErrToolNameConflict, "tool is already registered", goerr.V("tool_name", spec.Name))
	}

	if x.validate {
		schema, err := CompileSchema(spec.Name+".json", spec.JSONSchema())
		if err != nil {
			return goerr.Wrap(err, "failed to compile tool schema", goerr.V("tool_name", spec.Name))
		}
		x.schemas[spec.Name] = schema
	}

	x.tools[spec.Name] = tool
	x.names = append(x.names, spec.Name)
	return nil
}

// ToolSpecs returns the specs of registered tools in registration order.
func (x *ToolExecutor) ToolSpecs(_ context.Context) ([]ToolSpec, error) {
	specs := make([]ToolSpec, 0, len(x.names))
	for _, name := range x.names {
		specs = append(specs, x.tools[name].Spec())
	}
	return specs, nil
}

// Execute runs one action.
func (x *ToolExecutor) Execute(ctx context.Context, action Action) (Step, error) {
	logger := LoggerFromContext(ctx)

	tool, ok := x.tools[action.Name]
	if !ok {
		logger.Info("tool not found", "action", action)
		return Step{Action: action, Observation: x.invalidToolObservation(action.Name)}, nil
	}

	if schema, ok := x.schemas[action.Name]; ok {
		input := action.Input
		if input == nil {
			input = map[string]any{}
		}
		if err := ValidateJSON(schema, input); err != nil {
			logger.Info("invalid tool input", "action", action, "error", err)
			return Step{Action: action, Observation: fmt.Sprintf("Invalid input for %s: %s", action.Name, err.Error())}, nil
		}
	}

	if h := trace.HandlerFrom(ctx); h != nil {
		ctx = h.StartToolExec(ctx, action.Name, action.Input)
	}

	result, err := tool.Run(ctx, action.Input)

	if h := trace.HandlerFrom(ctx); h != nil {
		h.EndToolExec(ctx, result, err)
	}

	if err != nil {
		logger.Info("tool error", "action", action, "error", err)
		return Step{Action: action, Observation: "Error: " + err.Error()}, nil
	}

	logger.Debug("tool result", "action", action, "result", result)
	return Step{Action: action, Observation: result}, nil
}

// ExecuteBatch runs actions and returns one step per action in input order.
func (x *ToolExecutor) ExecuteBatch(ctx context.Context, actions []Action) ([]Step, error) {
	steps := make([]Step, len(actions))

	if !x.concurrent {
		for i, action := range actions {
			step, err := x.Execute(ctx, action)
			if err != nil {
				return nil, err
			}
			steps[i] = step
		}
		return steps, nil
	}

	var g errgroup.Group
	for i, action := range actions {
		g.Go(func() error {
			step, err := x.Execute(ctx, action)
			if err != nil {
				return err
			}
			steps[i] = step
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return steps, nil
}

// Reset restores the initial state through the reset function, if any, and
// replays actions in order.
func (x *ToolExecutor) Reset(ctx context.Context, actions []Action) error {
	if x.reset != nil {
		if err := x.reset(ctx); err != nil {
			return goerr.Wrap(err, "failed to reset tools")
		}
	}

	for _, action := range actions {
		if _, err := x.Execute(ctx, action); err != nil {
			return goerr.Wrap(err, "failed to replay action", goerr.V("action", action.Name))
		}
	}
	return nil
}

func (x *ToolExecutor) invalidToolObservation(name string) string {
	names := slices.Clone(x.names)
	return fmt.Sprintf("%s is not a valid tool, try one of [%s].", name, strings.Join(names, ", "))
}
