package analysis

import "fmt"

// StageError wraps a failure with the pipeline stage it came from, so a
// caller can tell a selection failure from a synthesis one. Partial results
// are never returned alongside it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage string, err error) error {
	return &StageError{Stage: stage, Err: err}
}
