package pgimport

import "log"

type sagaStep struct {
	label string
	undo  func() error
}

// Saga collects compensation steps for work that spans more than one
// transaction, like creating several staging tables. Rollback undoes the
// steps newest first and keeps going past individual failures.
type Saga struct {
	steps []sagaStep
}

func (s *Saga) Add(label string, undo func() error) {
	s.steps = append(s.steps, sagaStep{label: label, undo: undo})
}

// Rollback runs every registered undo in reverse order. Failed undos are
// logged and reported but never stop the remaining compensations.
func (s *Saga) Rollback() []error {
	var errs []error
	for i := len(s.steps) - 1; i >= 0; i-- {
		step := s.steps[i]
		if err := step.undo(); err != nil {
			log.Printf("Compensation %s failed: %v", step.label, err)
			errs = append(errs, err)
		}
	}
	s.steps = nil
	return errs
}

// Reset drops the collected steps after the overall operation succeeds.
func (s *Saga) Reset() {
	s.steps = nil
}
