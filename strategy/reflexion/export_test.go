package reflexion

import "context"

var (
	NewMemory             = newMemory
	BuildEvaluationPrompt = buildEvaluationPrompt
	BuildReflectionPrompt = buildReflectionPrompt
)

// MemoryEntry is exported for testing with public fields
type MemoryEntry struct {
	Iteration  int
	Reflection string
}

func (m *memory) Add(iteration int, reflection string) {
	m.add(iteration, reflection)
}

func (m *memory) GetAll() []MemoryEntry {
	entries := m.getAll()
	result := make([]MemoryEntry, len(entries))
	for i, e := range entries {
		result[i] = MemoryEntry{
			Iteration:  e.iteration,
			Reflection: e.reflection,
		}
	}
	return result
}

func (m *memory) Texts() []string {
	return m.texts()
}

func (m *memory) Size() int {
	return m.size()
}

func (s *Strategy) EvaluateStage(ctx context.Context, st *State) (Stage, error) {
	return s.evaluate(ctx, st)
}

func (s *Strategy) SelfReflectStage(ctx context.Context, st *State) (Stage, error) {
	return s.selfReflect(ctx, st)
}
