package reflexion

// memory keeps the reflections of past trials in generation order. With a
// positive maxSize it is a bounded FIFO buffer.
type memory struct {
	reflections []memoryEntry
	maxSize     int
}

type memoryEntry struct {
	iteration  int
	reflection string
}

func newMemory(maxSize int) *memory {
	return &memory{maxSize: maxSize}
}

// add appends a reflection. If the memory is full, the oldest entry is removed.
func (m *memory) add(iteration int, reflection string) {
	m.reflections = append(m.reflections, memoryEntry{
		iteration:  iteration,
		reflection: reflection,
	})

	if m.maxSize > 0 && len(m.reflections) > m.maxSize {
		m.reflections = m.reflections[len(m.reflections)-m.maxSize:]
	}
}

func (m *memory) getAll() []memoryEntry {
	return m.reflections
}

// texts returns a fresh slice of the stored reflections.
func (m *memory) texts() []string {
	out := make([]string, len(m.reflections))
	for i, e := range m.reflections {
		out[i] = e.reflection
	}
	return out
}

func (m *memory) size() int {
	return len(m.reflections)
}
