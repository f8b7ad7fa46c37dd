package sequence

import (
	"errors"
	"fmt"
	"strings"
)

// AnalysisErrorCode categorizes analysis construction failures.
type AnalysisErrorCode string

const (
	// ErrCodeCycleDetected indicates a use-def cycle between operations
	// that is not broken by a feedback operand.
	ErrCodeCycleDetected AnalysisErrorCode = "CYCLE_DETECTED"
)

// CycleError reports the use-def cycle that prevented construction of
// the analysis. Ops holds the names of the participating operations in
// cycle order; the last one depends on the first.
//
// A CycleError means "do not attempt to rewrite this region": the
// caller must break the cycle, typically by marking a loop-carried
// operand as feedback, before retrying.
type CycleError struct {
	Code    AnalysisErrorCode
	Program string
	Ops     []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: non-feedback use-def cycle through %s in program %q",
		e.Code, strings.Join(e.Ops, ", "), e.Program)
}

// IsCycleError returns true if the error is a cycle detection error.
// Uses errors.As to handle wrapped errors.
func IsCycleError(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce)
}
