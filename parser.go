package planlib

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ThoughtParser turns an LLM response into thoughts.
type ThoughtParser interface {
	// Parse returns the single thought of a response.
	Parse(resp *Response) (Thought, error)

	// ParseCandidates returns every alternative thought in a response.
	ParseCandidates(resp *Response) ([]Thought, error)
}

// FunctionCallingParser maps function calls to actions. One call is an
// Action, several are an ActionBatch, none is a Finish holding the text.
type FunctionCallingParser struct{}

func (p *FunctionCallingParser) Parse(resp *Response) (Thought, error) {
	if resp == nil {
		return nil, goerr.Wrap(ErrMalformedOutput, "empty response")
	}

	text := strings.TrimSpace(strings.Join(resp.Texts, "\n"))
	switch len(resp.FunctionCalls) {
	case 0:
		return NewFinish(text, text), nil
	case 1:
		return callToAction(resp.FunctionCalls[0], text), nil
	default:
		batch := make(ActionBatch, len(resp.FunctionCalls))
		for i, fc := range resp.FunctionCalls {
			batch[i] = callToAction(fc, text)
		}
		return batch, nil
	}
}

func (p *FunctionCallingParser) ParseCandidates(resp *Response) ([]Thought, error) {
	if resp == nil {
		return nil, goerr.Wrap(ErrMalformedOutput, "empty response")
	}

	text := strings.TrimSpace(strings.Join(resp.Texts, "\n"))
	if len(resp.FunctionCalls) == 0 {
		return []Thought{NewFinish(text, text)}, nil
	}

	thoughts := make([]Thought, len(resp.FunctionCalls))
	for i, fc := range resp.FunctionCalls {
		thoughts[i] = callToAction(fc, text)
	}
	return thoughts, nil
}

func callToAction(fc *FunctionCall, log string) Action {
	input := fc.Arguments
	if input == nil {
		input = map[string]any{}
	}
	return Action{ID: fc.ID, Name: fc.Name, Input: input, Log: log}
}

// JSONParser reads ReAct-style JSON blobs from the response text:
//
//	{"action": "add", "action_input": {"number1": 4, "number2": 6}}
//	{"final_answer": "24"}
//
// A JSON array of such objects is an ActionBatch for Parse and a list of
// candidates for ParseCandidates.
type JSONParser struct{}

type jsonThought struct {
	Action      string         `json:"action"`
	ActionInput map[string]any `json:"action_input"`
	FinalAnswer *string        `json:"final_answer"`
}

func (p *JSONParser) Parse(resp *Response) (Thought, error) {
	items, log, err := decodeJSONThoughts(resp)
	if err != nil {
		return nil, err
	}

	if len(items) == 1 {
		return items[0].toThought(log), nil
	}

	batch := make(ActionBatch, 0, len(items))
	for _, item := range items {
		t := item.toThought(log)
		a, ok := t.(Action)
		if !ok {
			return nil, goerr.Wrap(ErrMalformedOutput, "final answer mixed with actions", goerr.V("text", log))
		}
		batch = append(batch, a)
	}
	return batch, nil
}

func (p *JSONParser) ParseCandidates(resp *Response) ([]Thought, error) {
	items, log, err := decodeJSONThoughts(resp)
	if err != nil {
		return nil, err
	}

	thoughts := make([]Thought, len(items))
	for i, item := range items {
		thoughts[i] = item.toThought(log)
	}
	return thoughts, nil
}

func (x jsonThought) toThought(log string) Thought {
	if x.FinalAnswer != nil {
		return NewFinish(*x.FinalAnswer, log)
	}
	input := x.ActionInput
	if input == nil {
		input = map[string]any{}
	}
	return Action{Name: x.Action, Input: input, Log: log}
}

func decodeJSONThoughts(resp *Response) ([]jsonThought, string, error) {
	if resp == nil || len(resp.Texts) == 0 {
		return nil, "", goerr.Wrap(ErrMalformedOutput, "empty response")
	}

	text := strings.TrimSpace(strings.Join(resp.Texts, "\n"))
	body := ExtractJSON(text)

	var items []jsonThought
	if strings.HasPrefix(body, "[") {
		if err := json.Unmarshal([]byte(body), &items); err != nil {
			return nil, "", goerr.Wrap(ErrMalformedOutput, "failed to parse JSON array", goerr.V("text", text), goerr.V("error", err.Error()))
		}
	} else {
		var item jsonThought
		if err := json.Unmarshal([]byte(body), &item); err != nil {
			return nil, "", goerr.Wrap(ErrMalformedOutput, "failed to parse JSON object", goerr.V("text", text), goerr.V("error", err.Error()))
		}
		items = []jsonThought{item}
	}

	if len(items) == 0 {
		return nil, "", goerr.Wrap(ErrMalformedOutput, "no thought in response", goerr.V("text", text))
	}
	for _, item := range items {
		if item.FinalAnswer == nil && item.Action == "" {
			return nil, "", goerr.Wrap(ErrMalformedOutput, "neither action nor final_answer is set", goerr.V("text", text))
		}
	}

	return items, text, nil
}

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ExtractJSON returns the content of the first markdown code fence in text,
// or text itself when there is none.
func ExtractJSON(text string) string {
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}
