package trace

import "time"

// SpanKind tells which callback pair produced a span.
type SpanKind string

const (
	SpanKindStrategy SpanKind = "strategy"
	SpanKindLLMCall  SpanKind = "llm_call"
	SpanKindToolExec SpanKind = "tool_exec"
	SpanKindSubTask  SpanKind = "sub_task"
	SpanKindEvent    SpanKind = "event"
)

type SpanStatus string

const (
	SpanStatusOK    SpanStatus = "ok"
	SpanStatusError SpanStatus = "error"
)

// Trace is the recorded tree of one top-level strategy run. Nested
// strategies appear as strategy spans below RootSpan.
type Trace struct {
	TraceID   string        `json:"trace_id"`
	RootSpan  *Span         `json:"root_span"`
	Metadata  TraceMetadata `json:"metadata"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
}

// TraceMetadata describes the run so saved traces can be told apart.
// Strategy defaults to the root strategy name.
type TraceMetadata struct {
	Strategy string            `json:"strategy,omitempty"`
	Model    string            `json:"model,omitempty"`
	Env      string            `json:"env,omitempty"`
	Labels   map[string]string `json:"labels,omitempty"`
}

// Span is one node of the tree. At most one of LLMCall, ToolExec and
// Event is set, matching Kind.
type Span struct {
	SpanID    string        `json:"span_id"`
	ParentID  string        `json:"parent_id,omitempty"`
	Kind      SpanKind      `json:"kind"`
	Name      string        `json:"name"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Duration  time.Duration `json:"duration"`
	Status    SpanStatus    `json:"status"`
	Error     string        `json:"error,omitempty"`
	Children  []*Span       `json:"children,omitempty"`

	LLMCall  *LLMCallData  `json:"llm_call,omitempty"`
	ToolExec *ToolExecData `json:"tool_exec,omitempty"`
	Event    *EventData    `json:"event,omitempty"`
}
