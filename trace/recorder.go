package trace

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Option is a functional option for configuring a Recorder.
type Option func(*Recorder)

// WithRepository sets the repository for persisting trace data.
func WithRepository(repo Repository) Option {
	return func(r *Recorder) {
		r.repo = repo
	}
}

// WithMetadata sets the metadata for the trace.
func WithMetadata(meta TraceMetadata) Option {
	return func(r *Recorder) {
		r.metadata = meta
	}
}

// WithTraceID sets a custom trace ID.
// If not set or set to an empty string, a UUID v7 is generated automatically.
func WithTraceID(id string) Option {
	return func(r *Recorder) {
		r.traceID = id
	}
}

// Recorder collects tracing data of a strategy run into an in-memory Trace.
// It is safe for concurrent use by fan-out branches of one run.
type Recorder struct {
	trace    *Trace
	mu       sync.Mutex
	repo     Repository
	metadata TraceMetadata
	traceID  string
}

// New creates a new Recorder with the given options.
func New(opts ...Option) *Recorder {
	r := &Recorder{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type handlerKey struct{}
type currentSpanKey struct{}

// WithHandler stores the Handler in the context.
func WithHandler(ctx context.Context, h Handler) context.Context {
	return context.WithValue(ctx, handlerKey{}, h)
}

// HandlerFrom retrieves the Handler from the context. Returns nil if not set.
func HandlerFrom(ctx context.Context) Handler {
	h, _ := ctx.Value(handlerKey{}).(Handler)
	return h
}

func withCurrentSpan(ctx context.Context, span *Span) context.Context {
	return context.WithValue(ctx, currentSpanKey{}, span)
}

func currentSpanFrom(ctx context.Context) *Span {
	s, _ := ctx.Value(currentSpanKey{}).(*Span)
	return s
}

func newSpanID() string {
	return uuid.New().String()
}

// StartStrategy starts the root span. A nested strategy (e.g. the executor
// of a decomposition step) becomes a child span instead.
func (r *Recorder) StartStrategy(ctx context.Context, name string) context.Context {
	if currentSpanFrom(ctx) != nil {
		return r.startChildSpan(ctx, SpanKindStrategy, name, nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	span := &Span{
		SpanID:    newSpanID(),
		Kind:      SpanKindStrategy,
		Name:      name,
		StartedAt: now,
		Status:    SpanStatusOK,
	}

	traceID := r.traceID
	if traceID == "" {
		traceID = uuid.Must(uuid.NewV7()).String()
	}

	meta := r.metadata
	if meta.Strategy == "" {
		meta.Strategy = name
	}

	r.trace = &Trace{
		TraceID:   traceID,
		RootSpan:  span,
		Metadata:  meta,
		StartedAt: now,
	}

	return withCurrentSpan(ctx, span)
}

// EndStrategy ends the current strategy span.
func (r *Recorder) EndStrategy(ctx context.Context, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	span := r.endSpan(ctx, SpanKindStrategy, err)
	if span != nil && r.trace != nil && r.trace.RootSpan == span {
		r.trace.EndedAt = span.EndedAt
	}
}

func (r *Recorder) StartLLMCall(ctx context.Context) context.Context {
	return r.startChildSpan(ctx, SpanKindLLMCall, "llm_call", nil)
}

func (r *Recorder) EndLLMCall(ctx context.Context, data *LLMCallData, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if span := r.endSpan(ctx, SpanKindLLMCall, err); span != nil {
		span.LLMCall = data
	}
}

// StartToolExec opens a span for one executed action. The observation is
// attached by EndToolExec.
func (r *Recorder) StartToolExec(ctx context.Context, toolName string, args map[string]any) context.Context {
	return r.startChildSpan(ctx, SpanKindToolExec, toolName, func(s *Span) {
		s.ToolExec = &ToolExecData{ToolName: toolName, Args: args}
	})
}

func (r *Recorder) EndToolExec(ctx context.Context, result any, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	span := r.endSpan(ctx, SpanKindToolExec, err)
	if span == nil || span.ToolExec == nil {
		return
	}
	span.ToolExec.Result = result
	if err != nil {
		span.ToolExec.Error = err.Error()
	}
}

// StartSubTask opens a span for a decomposition level or plan step.
func (r *Recorder) StartSubTask(ctx context.Context, name string) context.Context {
	return r.startChildSpan(ctx, SpanKindSubTask, name, nil)
}

func (r *Recorder) EndSubTask(ctx context.Context, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endSpan(ctx, SpanKindSubTask, err)
}

// AddEvent appends a zero-length event span under the current span.
func (r *Recorder) AddEvent(ctx context.Context, kind string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parent := currentSpanFrom(ctx)
	if parent == nil {
		return
	}
	span := attach(parent, SpanKindEvent, kind)
	span.EndedAt = span.StartedAt
	span.Event = &EventData{Kind: kind, Data: data}
}

// Finish completes the trace and persists it to the Repository.
func (r *Recorder) Finish(ctx context.Context) error {
	r.mu.Lock()
	trace := r.trace
	repo := r.repo
	r.mu.Unlock()

	if trace == nil || repo == nil {
		return nil
	}

	return repo.Save(ctx, trace)
}

// Trace returns the current trace data. Returns nil if no trace is active.
func (r *Recorder) Trace() *Trace {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trace
}

// attach appends a new open span to parent. r.mu must be held.
func attach(parent *Span, kind SpanKind, name string) *Span {
	span := &Span{
		SpanID:    newSpanID(),
		ParentID:  parent.SpanID,
		Kind:      kind,
		Name:      name,
		StartedAt: time.Now(),
		Status:    SpanStatusOK,
	}
	parent.Children = append(parent.Children, span)
	return span
}

// startChildSpan opens a span under the current one. Without a current span
// the call is ignored and ctx is returned unchanged.
func (r *Recorder) startChildSpan(ctx context.Context, kind SpanKind, name string, init func(*Span)) context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()

	parent := currentSpanFrom(ctx)
	if parent == nil {
		return ctx
	}
	span := attach(parent, kind, name)
	if init != nil {
		init(span)
	}
	return withCurrentSpan(ctx, span)
}

// endSpan closes the current span if it has the given kind. r.mu must be held.
func (r *Recorder) endSpan(ctx context.Context, kind SpanKind, err error) *Span {
	span := currentSpanFrom(ctx)
	if span == nil || span.Kind != kind {
		return nil
	}

	now := time.Now()
	span.EndedAt = now
	span.Duration = now.Sub(span.StartedAt)

	if err != nil {
		span.Status = SpanStatusError
		span.Error = err.Error()
	}
	return span
}
