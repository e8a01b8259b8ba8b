package analysis

import (
	"errors"
	"fmt"
)

// ValidationError carries a client-facing detail for a 400 response.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return e.Detail
}

var (
	ErrMissingInput      = &ValidationError{Detail: "Either file or text must be provided"}
	ErrUnsupportedFormat = &ValidationError{Detail: "Unsupported file format"}
	ErrFileTooLarge      = &ValidationError{Detail: "File too large"}
	ErrInvalidForm       = &ValidationError{Detail: "Invalid form data"}
)

// Stage names one model invocation in the analysis sequence.
type Stage string

const (
	StageSummary  Stage = "summary"
	StageClauses  Stage = "clauses"
	StageQuestion Stage = "question"
)

// AnalysisError reports a failed model invocation. Calls counts the upstream
// invocations made before the sequence stopped, including the failing one.
type AnalysisError struct {
	Stage Stage
	Calls int
	Err   error
}

func (e *AnalysisError) Error() string {
	if e == nil || e.Err == nil {
		return "analysis failed"
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

var errNoGenerator = errors.New("llm client not configured")

func stageError(stage Stage, calls int, err error) *AnalysisError {
	return &AnalysisError{Stage: stage, Calls: calls, Err: err}
}
