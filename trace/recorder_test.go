package trace_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/planlib/trace"
)

func TestRecorderStrategy(t *testing.T) {
	rec := trace.New(trace.WithTraceID("run-1"), trace.WithMetadata(trace.TraceMetadata{Env: "game24"}))
	ctx := rec.StartStrategy(context.Background(), "dfsdt")

	span := trace.CurrentSpanFrom(ctx)
	gt.Value(t, span).NotNil()
	gt.Equal(t, span.Kind, trace.SpanKindStrategy)
	gt.Equal(t, span.Name, "dfsdt")

	rec.EndStrategy(ctx, nil)

	tr := rec.Trace()
	gt.Equal(t, tr.TraceID, "run-1")
	gt.Equal(t, tr.Metadata.Strategy, "dfsdt")
	gt.Equal(t, tr.Metadata.Env, "game24")
	gt.Equal(t, tr.RootSpan.Status, trace.SpanStatusOK)
	gt.False(t, tr.EndedAt.IsZero())
}

func TestRecorderGeneratesTraceID(t *testing.T) {
	rec := trace.New()
	ctx := rec.StartStrategy(context.Background(), "simple")
	rec.EndStrategy(ctx, nil)
	gt.NotEqual(t, rec.Trace().TraceID, "")
}

func TestRecorderNestedStrategy(t *testing.T) {
	rec := trace.New(trace.WithMetadata(trace.TraceMetadata{Strategy: "adapt+simple"}))
	ctx := rec.StartStrategy(context.Background(), "adapt")

	subCtx := rec.StartSubTask(ctx, "depth_0")
	innerCtx := rec.StartStrategy(subCtx, "simple")
	rec.EndStrategy(innerCtx, errors.New("iteration limit"))
	rec.EndSubTask(subCtx, nil)
	rec.EndStrategy(ctx, nil)

	tr := rec.Trace()
	gt.Equal(t, tr.Metadata.Strategy, "adapt+simple")
	gt.Equal(t, tr.RootSpan.Name, "adapt")
	gt.A(t, tr.RootSpan.Children).Length(1)

	sub := tr.RootSpan.Children[0]
	gt.Equal(t, sub.Kind, trace.SpanKindSubTask)
	gt.Equal(t, sub.Name, "depth_0")
	gt.A(t, sub.Children).Length(1)

	inner := sub.Children[0]
	gt.Equal(t, inner.Kind, trace.SpanKindStrategy)
	gt.Equal(t, inner.ParentID, sub.SpanID)
	gt.Equal(t, inner.Status, trace.SpanStatusError)
	gt.Equal(t, inner.Error, "iteration limit")
	gt.Equal(t, tr.RootSpan.Status, trace.SpanStatusOK)
}

func TestRecorderLLMCall(t *testing.T) {
	rec := trace.New()
	ctx := rec.StartStrategy(context.Background(), "simple")

	llmCtx := rec.StartLLMCall(ctx)
	rec.EndLLMCall(llmCtx, &trace.LLMCallData{
		InputTokens:  210,
		OutputTokens: 18,
		Model:        "gpt-4o",
		Request: &trace.LLMRequest{
			Messages: []trace.Message{{Role: "user", Content: "Use numbers 4 9 10 13"}},
			Tools:    []trace.ToolSpec{{Name: "subtract"}},
		},
		Response: &trace.LLMResponse{
			FunctionCalls: []*trace.FunctionCall{{ID: "c1", Name: "subtract", Arguments: map[string]any{"number1": 13.0, "number2": 9.0}}},
		},
	}, nil)
	rec.EndStrategy(ctx, nil)

	children := rec.Trace().RootSpan.Children
	gt.A(t, children).Length(1)
	llm := children[0]
	gt.Equal(t, llm.Kind, trace.SpanKindLLMCall)
	gt.Equal(t, llm.LLMCall.InputTokens, 210)
	gt.Equal(t, llm.LLMCall.Response.FunctionCalls[0].Name, "subtract")
	gt.True(t, llm.Duration >= 0)
}

func TestRecorderLLMCallError(t *testing.T) {
	rec := trace.New()
	ctx := rec.StartStrategy(context.Background(), "tot")

	llmCtx := rec.StartLLMCall(ctx)
	rec.EndLLMCall(llmCtx, nil, errors.New("rate limited"))
	rec.EndStrategy(ctx, nil)

	llm := rec.Trace().RootSpan.Children[0]
	gt.Equal(t, llm.Status, trace.SpanStatusError)
	gt.Equal(t, llm.Error, "rate limited")
	gt.Value(t, llm.LLMCall).Nil()
}

func TestRecorderToolExec(t *testing.T) {
	rec := trace.New()
	ctx := rec.StartStrategy(context.Background(), "simple")

	toolCtx := rec.StartToolExec(ctx, "add", map[string]any{"number1": 4.0, "number2": 2.0})
	rec.EndToolExec(toolCtx, "6 9 10", nil)

	failCtx := rec.StartToolExec(ctx, "divide", map[string]any{"number1": 4.0, "number2": 0.0})
	rec.EndToolExec(failCtx, nil, errors.New("division by zero"))
	rec.EndStrategy(ctx, nil)

	children := rec.Trace().RootSpan.Children
	gt.A(t, children).Length(2)

	ok := children[0]
	gt.Equal(t, ok.Kind, trace.SpanKindToolExec)
	gt.Equal(t, ok.Name, "add")
	gt.Equal(t, ok.ToolExec.Args["number1"], any(4.0))
	gt.Equal(t, ok.ToolExec.Result, any("6 9 10"))

	failed := children[1]
	gt.Equal(t, failed.Status, trace.SpanStatusError)
	gt.Equal(t, failed.ToolExec.Error, "division by zero")
}

func TestRecorderAddEvent(t *testing.T) {
	rec := trace.New()
	ctx := rec.StartStrategy(context.Background(), "reflexion")

	rec.AddEvent(ctx, "trial_start", map[string]any{"trial_number": 1})
	rec.AddEvent(ctx, "reflection", map[string]any{"text": "check the map first"})
	rec.EndStrategy(ctx, nil)

	children := rec.Trace().RootSpan.Children
	gt.A(t, children).Length(2)
	gt.Equal(t, children[0].Kind, trace.SpanKindEvent)
	gt.Equal(t, children[0].Event.Kind, "trial_start")
	gt.Equal(t, children[1].Name, "reflection")
	gt.Equal(t, children[1].Duration, 0)
}

func TestRecorderChildOrdering(t *testing.T) {
	rec := trace.New()
	ctx := rec.StartStrategy(context.Background(), "simple")

	llmCtx := rec.StartLLMCall(ctx)
	rec.EndLLMCall(llmCtx, &trace.LLMCallData{}, nil)
	toolCtx := rec.StartToolExec(ctx, "multiply", nil)
	rec.EndToolExec(toolCtx, "24", nil)
	rec.AddEvent(ctx, "iteration_limit", nil)
	rec.EndStrategy(ctx, nil)

	children := rec.Trace().RootSpan.Children
	gt.A(t, children).Length(3)
	gt.Equal(t, children[0].Kind, trace.SpanKindLLMCall)
	gt.Equal(t, children[1].Kind, trace.SpanKindToolExec)
	gt.Equal(t, children[2].Kind, trace.SpanKindEvent)
}

func TestRecorderMismatchedEnd(t *testing.T) {
	rec := trace.New()
	ctx := rec.StartStrategy(context.Background(), "simple")

	// closing the strategy with a tool context leaves both spans untouched
	toolCtx := rec.StartToolExec(ctx, "look", nil)
	rec.EndStrategy(toolCtx, errors.New("wrong span"))

	gt.Equal(t, rec.Trace().RootSpan.Status, trace.SpanStatusOK)
	gt.True(t, rec.Trace().RootSpan.Children[0].EndedAt.IsZero())
}

func TestRecorderFinish(t *testing.T) {
	dir := t.TempDir()
	rec := trace.New(
		trace.WithRepository(trace.NewFileRepository(dir)),
		trace.WithTraceID("saved"),
	)
	ctx := rec.StartStrategy(context.Background(), "simple")
	rec.AddEvent(ctx, "finish", map[string]any{"output": "24"})
	rec.EndStrategy(ctx, nil)
	gt.NoError(t, rec.Finish(ctx))

	loaded := gt.R1(trace.LoadFile(filepath.Join(dir, "saved.json"))).NoError(t)
	gt.Equal(t, loaded.RootSpan.Name, "simple")
	gt.A(t, loaded.RootSpan.Children).Length(1)
	gt.Equal(t, loaded.RootSpan.Children[0].Event.Kind, "finish")
}

func TestRecorderFinishWithoutRepository(t *testing.T) {
	rec := trace.New()
	gt.NoError(t, rec.Finish(context.Background()))

	ctx := rec.StartStrategy(context.Background(), "simple")
	rec.EndStrategy(ctx, nil)
	gt.NoError(t, rec.Finish(ctx))
}

func TestRecorderWithoutStrategy(t *testing.T) {
	rec := trace.New()
	ctx := context.Background()

	gt.Equal(t, rec.StartLLMCall(ctx), ctx)
	rec.EndLLMCall(ctx, &trace.LLMCallData{}, nil)
	gt.Equal(t, rec.StartToolExec(ctx, "add", nil), ctx)
	rec.EndToolExec(ctx, "x", nil)
	rec.AddEvent(ctx, "ignored", nil)

	gt.Value(t, rec.Trace()).Nil()
}

func TestRecorderConcurrentBranches(t *testing.T) {
	rec := trace.New()
	ctx := rec.StartStrategy(context.Background(), "tot")

	const n = 20
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			llmCtx := rec.StartLLMCall(ctx)
			rec.EndLLMCall(llmCtx, &trace.LLMCallData{OutputTokens: 1}, nil)
		}()
	}
	wg.Wait()
	rec.EndStrategy(ctx, nil)

	gt.A(t, rec.Trace().RootSpan.Children).Length(n)
}
