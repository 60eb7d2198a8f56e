package main

import (
	"context"
	"io"
	"net/http"

	"github.com/m-mizutani/planlib"
	"github.com/m-mizutani/planlib/trace"
)

type ListTracesResponse = listTracesResponse

type TraceSummary = traceSummary

var (
	NewServer  = newServer
	WithAddr   = withAddr
	PrintTrace = printTrace
)

func (s *server) Handler() http.Handler {
	return s.handler()
}

// ListResult holds the exported result of a List call.
type ListResult struct {
	Traces        []TraceSummary
	NextPageToken string
}

// TestableSource wraps a traceSource for external test access.
type TestableSource struct {
	src traceSource
}

func NewLocalSource(dir string) *TestableSource {
	return &TestableSource{src: newLocalSource(dir)}
}

func (ts *TestableSource) List(ctx context.Context, pageSize int, pageToken string) (*ListResult, error) {
	resp, err := ts.src.List(ctx, listRequest{pageSize: pageSize, pageToken: pageToken})
	if err != nil {
		return nil, err
	}
	return &ListResult{Traces: resp.traces, NextPageToken: resp.nextPageToken}, nil
}

func (ts *TestableSource) Get(ctx context.Context, traceID string) (*trace.Trace, error) {
	return ts.src.Get(ctx, traceID)
}

func (ts *TestableSource) PrintList(ctx context.Context, w io.Writer) error {
	return printTraceList(ctx, w, ts.src)
}

func WithTestSource(ts *TestableSource) serverOption {
	return withSource(ts.src)
}

// RunConfig mirrors the run command flags.
type RunConfig struct {
	Strategy      string
	Env           string
	Numbers       string
	MapSize       int
	MaxIterations int
	MaxTrials     int
	Parser        string
	Planner       string
	TraceDir      string
}

func Solve(ctx context.Context, w io.Writer, client planlib.LLMClient, cfg RunConfig) error {
	return solve(ctx, w, client, runConfig{
		provider: providerConfig{name: "mock", model: "mock-model"},
		task: taskConfig{
			env:     cfg.Env,
			numbers: cfg.Numbers,
			mapSize: cfg.MapSize,
		},
		strategy: strategyConfig{
			name:          cfg.Strategy,
			maxIterations: cfg.MaxIterations,
			maxThoughts:   2,
			maxDepth:      1,
			maxTrials:     cfg.MaxTrials,
			threshold:     0.5,
			parser:        cfg.Parser,
			planner:       cfg.Planner,
		},
		traceDir: cfg.TraceDir,
	})
}

func NewClient(ctx context.Context, provider string) error {
	_, _, err := newClient(ctx, providerConfig{name: provider})
	return err
}

var ErrUnsupported = errUnsupported
