package tour

import (
	"errors"
	"fmt"
)

// Step names one stage of the tour
type Step string

const (
	StepConnect Step = "connect"
	StepCreate  Step = "create"
	StepAppend  Step = "append"
	StepScan    Step = "scan"
	StepEvolve  Step = "evolve"
)

// StepError records which stage of the tour failed
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FailedStep returns the step an error came from, if it carries one
func FailedStep(err error) (Step, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step, true
	}
	return "", false
}

func stepErr(step Step, err error) error {
	if err == nil {
		return nil
	}
	var se *StepError
	if errors.As(err, &se) {
		return err
	}
	return &StepError{Step: step, Err: err}
}

// ConnectError marks err as a failure to reach the catalog
func ConnectError(err error) error {
	return stepErr(StepConnect, err)
}
