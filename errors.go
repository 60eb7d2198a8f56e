package planlib

import "errors"

var (
	ErrInvalidTool      = errors.New("invalid tool specification")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrToolNameConflict = errors.New("tool name conflict")

	// ErrUnknownThought is returned when a Thought is none of Action, ActionBatch or Finish.
	ErrUnknownThought = errors.New("unknown thought type")

	// ErrInconsistentState indicates a control-flow bug, e.g. executing a Finish.
	ErrInconsistentState = errors.New("inconsistent strategy state")

	ErrUnsupportedMode = errors.New("unsupported mode")
	ErrMalformedOutput = errors.New("malformed LLM output")
	ErrScoreOutOfRange = errors.New("score out of range")
)
