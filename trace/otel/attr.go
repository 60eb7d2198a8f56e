package otel

import (
	"encoding/json"

	"go.opentelemetry.io/otel/attribute"
)

const (
	keyStrategyName    = attribute.Key("strategy.name")
	keySubTaskName     = attribute.Key("sub_task.name")
	keyLLMModel        = attribute.Key("llm.model")
	keyLLMInputTokens  = attribute.Key("llm.input_tokens")
	keyLLMOutputTokens = attribute.Key("llm.output_tokens")
	keyLLMFuncCalls    = attribute.Key("llm.function_calls")
	keyToolName        = attribute.Key("tool.name")
	keyToolArgs        = attribute.Key("tool.args")
	keyToolResult      = attribute.Key("tool.result")
	keyEventData       = attribute.Key("event.data")
)

// jsonAttr encodes v as a JSON string attribute. ok is false for nil
// values and values that cannot be encoded.
func jsonAttr(key attribute.Key, v any) (attribute.KeyValue, bool) {
	if v == nil {
		return attribute.KeyValue{}, false
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return attribute.KeyValue{}, false
	}
	return key.String(string(raw)), true
}
