package trace

import "context"

// Handler is the interface for trace backends.
// Implementations receive lifecycle events of a strategy run
// and can record, export, or forward them as needed.
type Handler interface {
	// StartStrategy starts the root span of a strategy run.
	StartStrategy(ctx context.Context, name string) context.Context
	// EndStrategy ends the root span of a strategy run.
	EndStrategy(ctx context.Context, err error)

	// StartLLMCall starts an LLM call span.
	StartLLMCall(ctx context.Context) context.Context
	// EndLLMCall ends an LLM call span with the given data.
	EndLLMCall(ctx context.Context, data *LLMCallData, err error)

	// StartToolExec starts an action execution span.
	StartToolExec(ctx context.Context, toolName string, args map[string]any) context.Context
	// EndToolExec ends an action execution span with its observation.
	EndToolExec(ctx context.Context, result any, err error)

	// StartSubTask starts a nested span, e.g. one level of task decomposition.
	StartSubTask(ctx context.Context, name string) context.Context
	// EndSubTask ends a nested span.
	EndSubTask(ctx context.Context, err error)

	// AddEvent adds an event to the current span.
	AddEvent(ctx context.Context, kind string, data any)

	// Finish completes the trace and performs any final operations.
	Finish(ctx context.Context) error
}

// Event records kind/data on the handler held by ctx, if any.
func Event(ctx context.Context, kind string, data any) {
	if h := HandlerFrom(ctx); h != nil {
		h.AddEvent(ctx, kind, data)
	}
}

// Strategy opens a strategy span on the handler held by ctx. The returned
// function ends it.
func Strategy(ctx context.Context, name string) (context.Context, func(error)) {
	h := HandlerFrom(ctx)
	if h == nil {
		return ctx, func(error) {}
	}
	ctx = h.StartStrategy(ctx, name)
	return ctx, func(err error) { h.EndStrategy(ctx, err) }
}

// SubTask opens a sub_task span on the handler held by ctx. The returned
// function ends it.
func SubTask(ctx context.Context, name string) (context.Context, func(error)) {
	h := HandlerFrom(ctx)
	if h == nil {
		return ctx, func(error) {}
	}
	ctx = h.StartSubTask(ctx, name)
	return ctx, func(err error) { h.EndSubTask(ctx, err) }
}
