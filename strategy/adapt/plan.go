package adapt

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
)

// AggregationMode decides how subtask results combine.
type AggregationMode string

const (
	// ModeAnd requires every subtask to succeed and stops at the first failure.
	ModeAnd AggregationMode = "and"
	// ModeOr requires one subtask to succeed and stops at the first success.
	ModeOr AggregationMode = "or"
)

func (m AggregationMode) Validate() error {
	switch m {
	case ModeAnd, ModeOr:
		return nil
	default:
		return goerr.Wrap(planlib.ErrUnsupportedMode, "unsupported aggregation mode", goerr.V("mode", m))
	}
}

// Task is a unit of decomposition.
type Task struct {
	Inputs map[string]any
	Depth  int
}

// Plan is an ordered list of subtask inputs and their aggregation mode.
// Subtasks always run sequentially in list order.
type Plan struct {
	Subtasks []map[string]any `json:"subtasks"`
	Mode     AggregationMode  `json:"aggregation_mode"`
}

// NewPlan returns an empty plan in ModeAnd.
func NewPlan() *Plan {
	return &Plan{Mode: ModeAnd}
}

// Clear resets the plan to an empty ModeAnd plan.
func (p *Plan) Clear() {
	p.Subtasks = nil
	p.Mode = ModeAnd
}

func (p *Plan) String() string {
	var b strings.Builder
	if len(p.Subtasks) == 0 {
		b.WriteString("Currently, the plan doesn't contain any subtasks.")
	} else {
		fmt.Fprintf(&b, "Currently, the plan contains %d subtasks.", len(p.Subtasks))
		for i, task := range p.Subtasks {
			fmt.Fprintf(&b, "\n%d. %s", i+1, subtaskString(task))
		}
	}

	if p.Mode == "" {
		b.WriteString("\nThe current subtasks results aggregation mode is not defined yet.")
	} else {
		fmt.Fprintf(&b, "\nThe current subtasks results aggregation mode is set to %s.", p.Mode)
	}
	return b.String()
}

func subtaskString(task map[string]any) string {
	if v, ok := task[SubtaskInputKey]; ok && len(task) == 1 {
		return fmt.Sprint(v)
	}
	return planlib.ObservationString(task)
}

// SubtaskInputKey is the input key a free-text subtask is stored under.
const SubtaskInputKey = "inputs"

// TextSubtask wraps a natural language instruction as subtask inputs.
func TextSubtask(instruction string) map[string]any {
	return map[string]any{SubtaskInputKey: instruction}
}
