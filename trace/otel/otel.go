// Package otel exports planning traces as OpenTelemetry spans.
//
//	ctx = trace.WithHandler(ctx, otel.New(otel.WithTracerProvider(tp)))
//	outcome, err := strategy.Run(ctx, inputs)
//
// The global TracerProvider is used when none is given.
package otel

import (
	"context"

	"github.com/m-mizutani/planlib/trace"
	otelAPI "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelTrace "go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/m-mizutani/planlib"

// Option configures the handler returned by New.
type Option func(*handler)

// WithTracerProvider sets the provider spans are created from.
func WithTracerProvider(tp otelTrace.TracerProvider) Option {
	return func(h *handler) {
		h.provider = tp
	}
}

type handler struct {
	provider otelTrace.TracerProvider
	tracer   otelTrace.Tracer
}

// New returns a trace.Handler that opens one OpenTelemetry span per
// strategy, sub-task, model call and action. Strategy events become span
// events on the innermost open span.
func New(opts ...Option) trace.Handler {
	h := &handler{}
	for _, opt := range opts {
		opt(h)
	}
	if h.provider == nil {
		h.provider = otelAPI.GetTracerProvider()
	}
	h.tracer = h.provider.Tracer(tracerName)
	return h
}

func (h *handler) start(ctx context.Context, name string, kind otelTrace.SpanKind, attrs ...attribute.KeyValue) context.Context {
	ctx, _ = h.tracer.Start(ctx, name, otelTrace.WithSpanKind(kind), otelTrace.WithAttributes(attrs...))
	return ctx
}

func end(ctx context.Context, err error, attrs ...attribute.KeyValue) {
	span := otelTrace.SpanFromContext(ctx)
	span.SetAttributes(attrs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (h *handler) StartStrategy(ctx context.Context, name string) context.Context {
	return h.start(ctx, "strategy:"+name, otelTrace.SpanKindInternal, keyStrategyName.String(name))
}

func (h *handler) EndStrategy(ctx context.Context, err error) {
	end(ctx, err)
}

func (h *handler) StartLLMCall(ctx context.Context) context.Context {
	return h.start(ctx, "llm_call", otelTrace.SpanKindClient)
}

func (h *handler) EndLLMCall(ctx context.Context, data *trace.LLMCallData, err error) {
	var attrs []attribute.KeyValue
	if data != nil {
		attrs = append(attrs,
			keyLLMModel.String(data.Model),
			keyLLMInputTokens.Int(data.InputTokens),
			keyLLMOutputTokens.Int(data.OutputTokens),
		)
		if data.Response != nil && len(data.Response.FunctionCalls) > 0 {
			attrs = append(attrs, keyLLMFuncCalls.Int(len(data.Response.FunctionCalls)))
		}
	}
	end(ctx, err, attrs...)
}

func (h *handler) StartToolExec(ctx context.Context, toolName string, args map[string]any) context.Context {
	attrs := []attribute.KeyValue{keyToolName.String(toolName)}
	if args != nil {
		if a, ok := jsonAttr(keyToolArgs, args); ok {
			attrs = append(attrs, a)
		}
	}
	return h.start(ctx, "tool:"+toolName, otelTrace.SpanKindInternal, attrs...)
}

func (h *handler) EndToolExec(ctx context.Context, result any, err error) {
	if a, ok := jsonAttr(keyToolResult, result); ok {
		end(ctx, err, a)
		return
	}
	end(ctx, err)
}

func (h *handler) StartSubTask(ctx context.Context, name string) context.Context {
	return h.start(ctx, "sub_task:"+name, otelTrace.SpanKindInternal, keySubTaskName.String(name))
}

func (h *handler) EndSubTask(ctx context.Context, err error) {
	end(ctx, err)
}

func (h *handler) AddEvent(ctx context.Context, kind string, data any) {
	span := otelTrace.SpanFromContext(ctx)
	if a, ok := jsonAttr(keyEventData, data); ok {
		span.AddEvent(kind, otelTrace.WithAttributes(a))
		return
	}
	span.AddEvent(kind)
}

// Finish is a no-op; spans leave through the provider's span processors.
func (h *handler) Finish(context.Context) error {
	return nil
}
