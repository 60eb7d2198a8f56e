package reflexion

// Trace event kinds.
const (
	EventTrialStart          = "trial_start"
	EventTrialEnd            = "trial_end"
	EventReflectionGenerated = "reflection_generated"
)

// TrialStartEvent is recorded when a trial begins.
type TrialStartEvent struct {
	TrialNumber int `json:"trial_number"`
	Reflections int `json:"reflections"`
}

// TrialEndEvent is recorded when a trial has been evaluated.
type TrialEndEvent struct {
	TrialNumber int     `json:"trial_number"`
	Continue    bool    `json:"continue"`
	Score       float64 `json:"score"`
	Output      string  `json:"output,omitempty"`
}

// ReflectionGeneratedEvent is recorded when a reflection is generated.
type ReflectionGeneratedEvent struct {
	TrialNumber int    `json:"trial_number"`
	Reflection  string `json:"reflection"`
}
