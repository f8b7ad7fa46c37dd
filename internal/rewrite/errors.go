package rewrite

import (
	"errors"
	"fmt"
)

// PassError reports a pass that cannot be applied to the given program.
//
// Pass errors are properties of the input, not bugs: an unknown op name
// in a hoist request, a depth that does not name a prefix of the op's
// nest, or a relocation that would hide a producer from its consumer.
type PassError struct {
	// Code identifies the error category.
	Code PassErrorCode

	// Pass names the pass that failed.
	Pass string

	// Op names the operation the pass was aimed at, when there is one.
	Op string

	// Message is a human-readable description.
	Message string
}

// PassErrorCode categorizes pass errors.
type PassErrorCode string

const (
	// ErrCodeUnknownOp indicates the requested op is not in the program.
	ErrCodeUnknownOp PassErrorCode = "UNKNOWN_OP"

	// ErrCodeNotOrderable indicates the requested op cannot be
	// repositioned because it never enters the ordering store.
	ErrCodeNotOrderable PassErrorCode = "NOT_ORDERABLE"

	// ErrCodeBadDepth indicates the depth does not address a prefix of
	// the op's loop nest.
	ErrCodeBadDepth PassErrorCode = "BAD_DEPTH"

	// ErrCodeProducerHidden indicates the relocation would place the op
	// before one of its transitive producers.
	ErrCodeProducerHidden PassErrorCode = "PRODUCER_HIDDEN"
)

func (e *PassError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s (pass=%s, op=%s)", e.Code, e.Message, e.Pass, e.Op)
	}
	return fmt.Sprintf("%s: %s (pass=%s)", e.Code, e.Message, e.Pass)
}

// IsPassError reports whether err is a PassError, unwrapping as needed.
func IsPassError(err error) bool {
	var pe *PassError
	return errors.As(err, &pe)
}
