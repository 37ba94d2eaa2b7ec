package renderer

type cleanupStep struct {
	name string
	undo func()
}

// cleanupStack records how to destroy each object as it is created, so that a
// failure or a shutdown releases everything in reverse creation order.
type cleanupStack struct {
	steps []cleanupStep
}

func (s *cleanupStack) push(name string, undo func()) {
	s.steps = append(s.steps, cleanupStep{name: name, undo: undo})
}

// unwind runs every recorded step, newest first, and empties the stack.
func (s *cleanupStack) unwind() {
	for i := len(s.steps) - 1; i >= 0; i-- {
		s.steps[i].undo()
	}
	s.steps = nil
}

// unwindOnError is meant to be deferred by a builder with a named error result.
func (s *cleanupStack) unwindOnError(err *error) {
	if *err != nil {
		s.unwind()
	}
}

// absorb takes ownership of other's steps; they unwind after (before, in time)
// everything already on s.
func (s *cleanupStack) absorb(other *cleanupStack) {
	s.steps = append(s.steps, other.steps...)
	other.steps = nil
}

func (s *cleanupStack) names() []string {
	names := make([]string, 0, len(s.steps))
	for _, step := range s.steps {
		names = append(names, step.name)
	}
	return names
}
