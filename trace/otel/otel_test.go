package otel_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/planlib/trace"
	traceOtel "github.com/m-mizutani/planlib/trace/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkTrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setup() (trace.Handler, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdkTrace.NewTracerProvider(sdkTrace.WithSyncer(exporter))
	return traceOtel.New(traceOtel.WithTracerProvider(tp)), exporter
}

func attr(kvs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range kvs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestStrategySpan(t *testing.T) {
	h, exporter := setup()

	ctx := h.StartStrategy(context.Background(), "reflexion")
	h.EndStrategy(ctx, errors.New("trials exhausted"))

	spans := exporter.GetSpans()
	gt.A(t, spans).Length(1)
	gt.Equal(t, spans[0].Name, "strategy:reflexion")
	v, ok := attr(spans[0].Attributes, "strategy.name")
	gt.True(t, ok)
	gt.Equal(t, v.AsString(), "reflexion")
	gt.A(t, spans[0].Events).Length(1)
	gt.Equal(t, spans[0].Status.Code, codes.Error)
	gt.Equal(t, spans[0].Status.Description, "trials exhausted")
}

func TestLLMCallSpan(t *testing.T) {
	h, exporter := setup()

	ctx := h.StartStrategy(context.Background(), "tot")
	llmCtx := h.StartLLMCall(ctx)
	h.EndLLMCall(llmCtx, &trace.LLMCallData{Model: "gemini-2.0-flash", InputTokens: 320, OutputTokens: 64}, nil)
	h.EndStrategy(ctx, nil)

	spans := exporter.GetSpans()
	gt.A(t, spans).Length(2)

	llm := spans[0]
	gt.Equal(t, llm.Name, "llm_call")
	gt.Equal(t, llm.Parent.SpanID(), spans[1].SpanContext.SpanID())

	model, _ := attr(llm.Attributes, "llm.model")
	gt.Equal(t, model.AsString(), "gemini-2.0-flash")
	in, _ := attr(llm.Attributes, "llm.input_tokens")
	gt.Equal(t, in.AsInt64(), 320)
}

func TestToolExecSpan(t *testing.T) {
	h, exporter := setup()

	ctx := h.StartStrategy(context.Background(), "simple")
	toolCtx := h.StartToolExec(ctx, "move", map[string]any{"direction": "down"})
	h.EndToolExec(toolCtx, map[string]any{"reward": 0}, nil)
	h.EndStrategy(ctx, nil)

	tool := exporter.GetSpans()[0]
	gt.Equal(t, tool.Name, "tool:move")

	args, _ := attr(tool.Attributes, "tool.args")
	gt.Equal(t, args.AsString(), `{"direction":"down"}`)
	result, _ := attr(tool.Attributes, "tool.result")
	gt.Equal(t, result.AsString(), `{"reward":0}`)
}

func TestSubTaskAndEvents(t *testing.T) {
	h, exporter := setup()

	ctx := h.StartStrategy(context.Background(), "adapt")
	subCtx := h.StartSubTask(ctx, "depth_1")
	h.AddEvent(subCtx, "plan", map[string]any{"steps": 2})
	h.AddEvent(subCtx, "executor_succeeded", nil)
	h.EndSubTask(subCtx, errors.New("step 2 failed"))
	h.EndStrategy(ctx, nil)

	spans := exporter.GetSpans()
	gt.A(t, spans).Length(2)

	sub := spans[0]
	gt.Equal(t, sub.Name, "sub_task:depth_1")
	gt.A(t, sub.Events).Length(3)
	gt.Equal(t, sub.Events[0].Name, "plan")
	data, ok := attr(sub.Events[0].Attributes, "event.data")
	gt.True(t, ok)
	gt.Equal(t, data.AsString(), `{"steps":2}`)
	gt.Equal(t, sub.Events[1].Name, "executor_succeeded")
}

func TestFinish(t *testing.T) {
	h, _ := setup()
	gt.NoError(t, h.Finish(context.Background()))
}
