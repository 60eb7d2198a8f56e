package planlib

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// Thought is a unit proposed by an Agent. It is one of Action, ActionBatch or
// Finish. Consumers must switch over these three types and treat anything
// else as ErrUnknownThought.
type Thought interface {
	isThought() restrictedValue
	LogValue() slog.Value
	String() string
}

type restrictedValue struct{}

// Action is a proposed unit of work: a tool name and its input payload.
// Action is a value type and must be treated as immutable once created.
type Action struct {
	// ID identifies the action. It is copied from the LLM tool call ID when
	// available, otherwise left empty.
	ID string

	// Name is the tool or environment action name.
	Name string

	// Input is the structured payload passed to the tool.
	Input map[string]any

	// Log is optional free text the agent produced alongside the action.
	Log string
}

func (a Action) isThought() restrictedValue { return restrictedValue{} }

// Clone returns a copy of the action with a shallow-copied input map.
func (a Action) Clone() Action {
	a.Input = maps.Clone(a.Input)
	return a
}

func (a Action) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", a.Name),
		slog.Any("input", a.Input),
	)
}

func (a Action) String() string {
	return fmt.Sprintf("%s(%s)", a.Name, formatInput(a.Input))
}

// ActionBatch is a multi-action proposal. Actions are executed in order.
type ActionBatch []Action

func (b ActionBatch) isThought() restrictedValue { return restrictedValue{} }

func (b ActionBatch) LogValue() slog.Value {
	names := make([]string, len(b))
	for i, a := range b {
		names[i] = a.Name
	}
	return slog.GroupValue(
		slog.Int("size", len(b)),
		slog.Any("names", names),
	)
}

func (b ActionBatch) String() string {
	parts := make([]string, len(b))
	for i, a := range b {
		parts[i] = a.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Finish is a terminal result with named return values and a free-text log.
type Finish struct {
	ReturnValues map[string]any
	Log          string
}

func (f Finish) isThought() restrictedValue { return restrictedValue{} }

// Output returns ReturnValues["output"] rendered as a string.
func (f Finish) Output() string {
	v, ok := f.ReturnValues["output"]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (f Finish) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("return_values", f.ReturnValues),
		slog.String("log", f.Log),
	)
}

func (f Finish) String() string {
	return "finish: " + f.Output()
}

// NewFinish builds a Finish carrying output as ReturnValues["output"].
func NewFinish(output, log string) Finish {
	return Finish{
		ReturnValues: map[string]any{"output": output},
		Log:          log,
	}
}

// IterationLimitLog is the output of a Finish synthesized when a strategy
// runs out of its iteration budget.
const IterationLimitLog = "Agent stopped due to iteration limit."

// IterationLimitFinish is returned by strategies that exhaust their budget.
func IterationLimitFinish() Finish {
	return NewFinish(IterationLimitLog, "")
}

// Step pairs an executed action with its observation.
type Step struct {
	Action      Action
	Observation any
}

func (s Step) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("action", s.Action),
		slog.Any("observation", s.Observation),
	)
}

// Actions extracts the actions of a trajectory in order.
func Actions(steps []Step) []Action {
	actions := make([]Action, len(steps))
	for i, s := range steps {
		actions[i] = s.Action
	}
	return actions
}

// Outcome is the result of a strategy run: the terminal Finish and the
// trajectory that led to it.
type Outcome struct {
	Finish     Finish
	Trajectory []Step
}

// ObservationString renders an observation for prompts and logs.
func ObservationString(obs any) string {
	switch v := obs.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", v)
	}
}

func formatInput(input map[string]any) string {
	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, input[k])
	}
	return strings.Join(parts, ", ")
}
