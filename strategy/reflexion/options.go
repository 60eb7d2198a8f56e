package reflexion

import "context"

// Option is a function that configures a Strategy.
type Option func(*Strategy)

// WithMaxIterations sets the maximum number of trials.
// Default is 3.
func WithMaxIterations(n int) Option {
	return func(s *Strategy) {
		s.maxIterations = n
	}
}

// WithMaxActions sets the number of execution rounds allowed in one trial.
// A trial exceeding it ends with planlib.IterationLimitFinish.
// Default is 30.
func WithMaxActions(n int) Option {
	return func(s *Strategy) {
		s.maxActions = n
	}
}

// WithMemorySize bounds the reflection memory. The oldest reflections are
// dropped first. Zero, the default, keeps every reflection.
func WithMemorySize(n int) Option {
	return func(s *Strategy) {
		s.memorySize = n
	}
}

// WithResetEnvironment sets a callback invoked with the task inputs before
// every trial but the first.
func WithResetEnvironment(fn func(ctx context.Context, inputs map[string]any) error) Option {
	return func(s *Strategy) {
		s.resetEnvironment = fn
	}
}

// WithHooks sets lifecycle hooks.
func WithHooks(hooks Hooks) Option {
	return func(s *Strategy) {
		s.hooks = hooks
	}
}
