package trace

import (
	"context"
	"errors"
)

// multi forwards every callback to a fixed list of handlers. Each handler
// gets a private context chain, so two Recorders under one Multi never
// observe each other's open span.
type multi struct {
	handlers []Handler
}

// Multi returns a Handler that fans out to all given handlers in order.
func Multi(handlers ...Handler) Handler {
	return &multi{handlers: handlers}
}

type branchesKey struct{}

// branches returns the per-handler contexts stored in ctx. A context that
// has not passed through this Multi yet yields ctx for every handler.
func (m *multi) branches(ctx context.Context) []context.Context {
	if v, ok := ctx.Value(branchesKey{}).([]context.Context); ok && len(v) == len(m.handlers) {
		return v
	}
	out := make([]context.Context, len(m.handlers))
	for i := range out {
		out[i] = ctx
	}
	return out
}

func (m *multi) open(ctx context.Context, start func(Handler, context.Context) context.Context) context.Context {
	parents := m.branches(ctx)
	next := make([]context.Context, len(m.handlers))
	for i, h := range m.handlers {
		next[i] = start(h, parents[i])
	}
	return context.WithValue(ctx, branchesKey{}, next)
}

func (m *multi) each(ctx context.Context, fn func(Handler, context.Context)) {
	for i, c := range m.branches(ctx) {
		fn(m.handlers[i], c)
	}
}

func (m *multi) StartStrategy(ctx context.Context, name string) context.Context {
	return m.open(ctx, func(h Handler, c context.Context) context.Context { return h.StartStrategy(c, name) })
}

func (m *multi) EndStrategy(ctx context.Context, err error) {
	m.each(ctx, func(h Handler, c context.Context) { h.EndStrategy(c, err) })
}

func (m *multi) StartLLMCall(ctx context.Context) context.Context {
	return m.open(ctx, func(h Handler, c context.Context) context.Context { return h.StartLLMCall(c) })
}

func (m *multi) EndLLMCall(ctx context.Context, data *LLMCallData, err error) {
	m.each(ctx, func(h Handler, c context.Context) { h.EndLLMCall(c, data, err) })
}

func (m *multi) StartToolExec(ctx context.Context, toolName string, args map[string]any) context.Context {
	return m.open(ctx, func(h Handler, c context.Context) context.Context { return h.StartToolExec(c, toolName, args) })
}

func (m *multi) EndToolExec(ctx context.Context, result any, err error) {
	m.each(ctx, func(h Handler, c context.Context) { h.EndToolExec(c, result, err) })
}

func (m *multi) StartSubTask(ctx context.Context, name string) context.Context {
	return m.open(ctx, func(h Handler, c context.Context) context.Context { return h.StartSubTask(c, name) })
}

func (m *multi) EndSubTask(ctx context.Context, err error) {
	m.each(ctx, func(h Handler, c context.Context) { h.EndSubTask(c, err) })
}

func (m *multi) AddEvent(ctx context.Context, kind string, data any) {
	m.each(ctx, func(h Handler, c context.Context) { h.AddEvent(c, kind, data) })
}

// Finish calls Finish on every handler and joins their errors.
func (m *multi) Finish(ctx context.Context) error {
	var errs []error
	for _, h := range m.handlers {
		errs = append(errs, h.Finish(ctx))
	}
	return errors.Join(errs...)
}
