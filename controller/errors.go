package controller

import (
	"errors"
	"fmt"
)

var (
	// ErrDtFloor indicates a rejected step would need a time step below DtMin.
	ErrDtFloor = errors.New("controller: time step below minimum")

	// ErrRetryLimit indicates a step was rejected more than MaxRetries times.
	ErrRetryLimit = errors.New("controller: step retry limit exceeded")

	// ErrFixedDtRejected indicates a CFL violation with a fixed time step.
	ErrFixedDtRejected = errors.New("controller: CFL exceeded with fixed time step")

	// ErrStepLimit indicates an output interval needed more than MaxSteps steps.
	ErrStepLimit = errors.New("controller: step limit per output reached")
)

// Kind classifies a run failure.
type Kind uint8

const (
	KindConfiguration Kind = iota
	KindInstability
	KindUnphysical
	KindCanceled
	KindStepLimit
	KindPersistence
)

func (k Kind) String() string {
	names := []string{"configuration", "instability", "unphysical", "canceled", "step limit", "persistence"}
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// RunError wraps the error that ended a run with where it happened.
type RunError struct {
	Kind Kind
	Step int
	T    float64
	Dt   float64
	Err  error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run failed (%s) at step %d, t=%g, dt=%g: %v", e.Kind, e.Step, e.T, e.Dt, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
