package core

import (
	"errors"
	"fmt"

	"github.com/huangsam/devpulse/schema"
)

// Error kinds recorded by pipeline stages.
var (
	ErrDataSource = errors.New("data source error")
	ErrAnalysis   = errors.New("analysis error")
	ErrGeneration = errors.New("generation error")
)

// StageError is a failure local to one pipeline stage.
// errors.Is matches both the kind and the cause.
type StageError struct {
	Stage schema.Stage
	Kind  error
	Err   error
}

func newStageError(stage schema.Stage, kind, err error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Err: err}
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s in %s stage: %v", e.Kind, e.Stage, e.Err)
}

// Unwrap exposes the kind and the cause.
func (e *StageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// kindFor returns the error kind a stage reports.
func kindFor(stage schema.Stage) error {
	switch stage {
	case schema.StageHarvest:
		return ErrDataSource
	case schema.StageAnalyze:
		return ErrAnalysis
	default:
		return ErrGeneration
	}
}
