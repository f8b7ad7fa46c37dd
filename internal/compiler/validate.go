package compiler

import (
	"fmt"
	"strings"

	"github.com/RohanMKells/structured-additive-IR/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrProgramNameEmpty = "E101" // program name must be non-empty
	ErrInvalidKind      = "E102" // kind outside the closed set
	ErrFbyArity         = "E103" // fby takes exactly an init and a value operand
	ErrStrayFeedback    = "E104" // feedback tag outside an fby value slot
	ErrDuplicateLoop    = "E105" // loop listed twice in one nest
	ErrHintOnValueKind  = "E106" // sequence hint on a dependency-only kind
	ErrHintContradicts  = "E107" // hint orders a consumer before its producer
	ErrDependencyCycle  = "E108" // non-feedback use-def cycle
)

// ValidationError is one semantic problem in a compiled or
// hand-constructed program.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks the structural rules the sequencing analysis assumes.
// It returns every problem found, never failing fast, so one run of
// `sair validate` reports the whole file. Cycle detection is separate:
// see AnalyzeCycles.
//
// CompileProgram enforces a subset of these rules against CUE input;
// Validate repeats them because programs are also built directly
// against the ir package, where the Operation fields are open.
func Validate(p *ir.Program) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "program name is required and must be non-empty",
			Code:    ErrProgramNameEmpty,
		})
	}

	for _, op := range p.Ops() {
		field := "ops." + op.Name

		if !op.Kind.Valid() {
			errs = append(errs, ValidationError{
				Field:   field + ".kind",
				Message: fmt.Sprintf("unknown kind %q", op.Kind),
				Code:    ErrInvalidKind,
			})
			continue
		}

		if op.Kind == ir.KindFby && len(op.Operands) != 2 {
			errs = append(errs, ValidationError{
				Field:   field + ".operands",
				Message: fmt.Sprintf("fby takes exactly an init and a value operand, got %d", len(op.Operands)),
				Code:    ErrFbyArity,
			})
		}

		for i, operand := range op.Operands {
			if operand.Feedback && !(op.Kind == ir.KindFby && i == 1) {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.operands[%d]", field, i),
					Message: "only the value side of an fby may be a feedback use",
					Code:    ErrStrayFeedback,
				})
			}
		}

		seen := make(map[string]bool, len(op.LoopNest))
		for _, loop := range op.LoopNest {
			if seen[loop] {
				errs = append(errs, ValidationError{
					Field:   field + ".loops",
					Message: fmt.Sprintf("loop %q appears twice in the nest", loop),
					Code:    ErrDuplicateLoop,
				})
			}
			seen[loop] = true
		}

		if op.HasSequence() && !op.Orderable() {
			errs = append(errs, ValidationError{
				Field:   field + ".sequence",
				Message: fmt.Sprintf("kind %q cannot carry a sequence hint", op.Kind),
				Code:    ErrHintOnValueKind,
			})
		}

		errs = append(errs, validateHintAgreement(p, op)...)
	}

	return errs
}

// validateHintAgreement flags explicit hints that contradict a direct
// non-feedback dependency: the analysis would silently override such a
// hint (dependencies always win), so authoring one is a mistake worth
// surfacing. Equal hints are fine; the tie resolves toward the
// producer.
func validateHintAgreement(p *ir.Program, op *ir.Operation) []ValidationError {
	if !op.HasSequence() || !op.Orderable() {
		return nil
	}
	var errs []ValidationError
	for i, operand := range op.Operands {
		if operand.Feedback {
			continue
		}
		producer := p.Op(operand.Producer)
		if !producer.Orderable() || !producer.HasSequence() {
			continue
		}
		if *op.Sequence < *producer.Sequence {
			errs = append(errs, ValidationError{
				Field: fmt.Sprintf("ops.%s.operands[%d]", op.Name, i),
				Message: fmt.Sprintf("hint %d orders %q before its producer %q (hint %d)",
					*op.Sequence, op.Name, producer.Name, *producer.Sequence),
				Code: ErrHintContradicts,
			})
		}
	}
	return errs
}
