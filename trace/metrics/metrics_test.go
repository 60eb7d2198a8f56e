package metrics_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/planlib/trace"
	"github.com/m-mizutani/planlib/trace/metrics"
	dto "github.com/prometheus/client_model/go"
)

// counter returns the value of the counter family name whose labels
// include every pair in labels.
func counter(t *testing.T, e *metrics.Exporter, name string, labels map[string]string) float64 {
	t.Helper()
	families := gt.R1(e.Registry().Gather()).NoError(t)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if matches(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matches(m *dto.Metric, labels map[string]string) bool {
	found := 0
	for _, lp := range m.GetLabel() {
		if v, ok := labels[lp.GetName()]; ok && v == lp.GetValue() {
			found++
		}
	}
	return found == len(labels)
}

func TestExporter(t *testing.T) {
	e := metrics.New(metrics.DefaultConfig())
	ctx := e.StartStrategy(context.Background(), "dfsdt")

	for range 2 {
		llmCtx := e.StartLLMCall(ctx)
		e.EndLLMCall(llmCtx, &trace.LLMCallData{InputTokens: 100, OutputTokens: 20}, nil)
	}
	e.EndLLMCall(e.StartLLMCall(ctx), nil, errors.New("rate limited"))

	e.EndToolExec(e.StartToolExec(ctx, "add", nil), "6 9 10", nil)
	e.EndToolExec(e.StartToolExec(ctx, "divide", nil), nil, errors.New("division by zero"))

	e.EndSubTask(e.StartSubTask(ctx, "depth_0"), nil)
	e.AddEvent(ctx, "backtrack", nil)
	e.AddEvent(ctx, "backtrack", nil)
	e.EndStrategy(ctx, nil)
	gt.NoError(t, e.Finish(ctx))

	gt.Equal(t, counter(t, e, "planlib_strategy_runs_total", map[string]string{"strategy": "dfsdt", "status": "ok"}), 1)
	gt.Equal(t, counter(t, e, "planlib_llm_calls_total", map[string]string{"status": "ok"}), 2)
	gt.Equal(t, counter(t, e, "planlib_llm_calls_total", map[string]string{"status": "error"}), 1)
	gt.Equal(t, counter(t, e, "planlib_llm_tokens_total", map[string]string{"type": "input"}), 200)
	gt.Equal(t, counter(t, e, "planlib_llm_tokens_total", map[string]string{"type": "output"}), 40)
	gt.Equal(t, counter(t, e, "planlib_action_executions_total", map[string]string{"tool": "divide", "status": "error"}), 1)
	gt.Equal(t, counter(t, e, "planlib_strategy_sub_tasks_total", map[string]string{"status": "ok"}), 1)
	gt.Equal(t, counter(t, e, "planlib_strategy_events_total", map[string]string{"kind": "backtrack"}), 2)
}

func TestExporterHandler(t *testing.T) {
	e := metrics.New(metrics.Config{Namespace: "bench"})
	e.AddEvent(context.Background(), "trial_start", nil)

	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	gt.Equal(t, rec.Code, http.StatusOK)
	gt.S(t, rec.Body.String()).Contains(`bench_strategy_events_total{kind="trial_start"} 1`)
}
