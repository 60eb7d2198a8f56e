package trace

// LLMCallData is attached to llm_call spans.
type LLMCallData struct {
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	Model        string `json:"model,omitempty"`

	Request  *LLMRequest  `json:"request"`
	Response *LLMResponse `json:"response"`
}

// LLMRequest is the prompt side of a model call: the system prompt, the
// user inputs in order, and the tools offered for function calling.
type LLMRequest struct {
	SystemPrompt string     `json:"system_prompt,omitempty"`
	Messages     []Message  `json:"messages"`
	Tools        []ToolSpec `json:"tools,omitempty"`
	Temperature  *float64   `json:"temperature,omitempty"`
	ContentType  string     `json:"content_type,omitempty"`
}

// LLMResponse holds what the model proposed.
type LLMResponse struct {
	Texts         []string        `json:"texts,omitempty"`
	FunctionCalls []*FunctionCall `json:"function_calls,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ToolSpec struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// FunctionCall is a proposed action before it is turned into an Action.
type FunctionCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ToolExecData is attached to tool_exec spans. Result is the observation
// returned to the strategy; Error is set only when execution itself failed.
type ToolExecData struct {
	ToolName string         `json:"tool_name"`
	Args     map[string]any `json:"args"`
	Result   any            `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// EventData is attached to event spans. Each strategy package defines its
// own kinds, e.g. tot_expand, adapt_plan or trial_end.
type EventData struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}
