// Package logger writes planning trace callbacks to a slog.Logger.
package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/planlib/trace"
)

// Event selects a group of callbacks to log.
type Event int

const (
	// Strategy logs the start and end of a strategy run.
	Strategy Event = iota
	// LLMRequest logs the prompt sent to the model.
	LLMRequest
	// LLMResponse logs the texts and function calls returned by the model.
	LLMResponse
	// ToolExec logs every executed action with its observation.
	ToolExec
	// SubTask logs nested sub-tasks such as ADaPT depths and plan steps.
	SubTask
	// CustomEvent logs strategy events (tot_expand, trial_end, ...).
	CustomEvent

	eventCount
)

type eventSet uint

func (s eventSet) has(e Event) bool { return s&(1<<e) != 0 }

// Option configures the handler returned by New.
type Option func(*handler)

// WithLogger sets the destination logger. slog.Default() is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(h *handler) {
		h.logger = l
	}
}

// WithEvents restricts logging to the given events. All events are
// logged when this option is absent.
func WithEvents(events ...Event) Option {
	return func(h *handler) {
		h.events = 0
		for _, e := range events {
			h.events |= 1 << e
		}
	}
}

type handler struct {
	logger *slog.Logger
	events eventSet
}

// New returns a trace.Handler that logs to slog.
func New(opts ...Option) trace.Handler {
	h := &handler{events: 1<<eventCount - 1}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *handler) log() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

// span is what a Start callback leaves for the matching End callback.
type span struct {
	name    string
	args    map[string]any
	started time.Time
}

type spanKey struct{}

func open(ctx context.Context, name string, args map[string]any) context.Context {
	return context.WithValue(ctx, spanKey{}, span{name: name, args: args, started: time.Now()})
}

func current(ctx context.Context) span {
	s, _ := ctx.Value(spanKey{}).(span)
	return s
}

func (s span) elapsed() slog.Attr {
	if s.started.IsZero() {
		return slog.Duration("duration", 0)
	}
	return slog.Duration("duration", time.Since(s.started))
}

func withError(attrs []any, err error) []any {
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	return attrs
}

func (h *handler) StartStrategy(ctx context.Context, name string) context.Context {
	if h.events.has(Strategy) {
		h.log().InfoContext(ctx, "strategy started", slog.String("strategy", name))
	}
	return open(ctx, name, nil)
}

func (h *handler) EndStrategy(ctx context.Context, err error) {
	if !h.events.has(Strategy) {
		return
	}
	s := current(ctx)
	h.log().InfoContext(ctx, "strategy ended",
		withError([]any{slog.String("strategy", s.name), s.elapsed()}, err)...)
}

func (h *handler) StartLLMCall(ctx context.Context) context.Context {
	return open(ctx, "llm_call", nil)
}

// EndLLMCall logs one record per model call. Model and token usage are
// included whenever either LLM event is enabled.
func (h *handler) EndLLMCall(ctx context.Context, data *trace.LLMCallData, err error) {
	req, resp := h.events.has(LLMRequest), h.events.has(LLMResponse)
	if !req && !resp {
		return
	}

	attrs := []any{current(ctx).elapsed()}
	if data != nil {
		attrs = append(attrs,
			slog.String("model", data.Model),
			slog.Int("input_tokens", data.InputTokens),
			slog.Int("output_tokens", data.OutputTokens),
		)
		if req && data.Request != nil {
			attrs = append(attrs, slog.Any("request", data.Request))
		}
		if resp && data.Response != nil {
			attrs = append(attrs, slog.Any("response", data.Response))
		}
	}
	h.log().InfoContext(ctx, "llm call", withError(attrs, err)...)
}

func (h *handler) StartToolExec(ctx context.Context, toolName string, args map[string]any) context.Context {
	return open(ctx, toolName, args)
}

func (h *handler) EndToolExec(ctx context.Context, result any, err error) {
	if !h.events.has(ToolExec) {
		return
	}
	s := current(ctx)
	attrs := []any{
		slog.String("tool", s.name),
		slog.Any("args", s.args),
		s.elapsed(),
		slog.Any("result", result),
	}
	h.log().InfoContext(ctx, "action executed", withError(attrs, err)...)
}

func (h *handler) StartSubTask(ctx context.Context, name string) context.Context {
	ctx = open(ctx, name, nil)
	if h.events.has(SubTask) {
		h.log().InfoContext(ctx, "sub task started", slog.String("name", name))
	}
	return ctx
}

func (h *handler) EndSubTask(ctx context.Context, err error) {
	if !h.events.has(SubTask) {
		return
	}
	s := current(ctx)
	h.log().InfoContext(ctx, "sub task ended",
		withError([]any{slog.String("name", s.name), s.elapsed()}, err)...)
}

func (h *handler) AddEvent(ctx context.Context, kind string, data any) {
	if !h.events.has(CustomEvent) {
		return
	}
	h.log().InfoContext(ctx, "event", slog.String("kind", kind), slog.Any("data", data))
}

func (h *handler) Finish(context.Context) error {
	return nil
}
