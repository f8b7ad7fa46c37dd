// Package compiler turns CUE program definitions into ir.Program
// values and checks them against the structural rules the sequencing
// analysis relies on.
package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/RohanMKells/structured-additive-IR/internal/ir"
)

// Compile error codes (E200-E299)
const (
	ErrCUE            = "E200" // malformed CUE value
	ErrNameRequired   = "E201" // program name is required
	ErrOpsRequired    = "E202" // ops list is required
	ErrOpNameRequired = "E203" // op name is required
	ErrDuplicateOp    = "E204" // op name reused within the program
	ErrUnknownKind    = "E205" // kind outside the closed set
	ErrUnknownOperand = "E206" // operand references no op in the program
	ErrHintOnValueOp  = "E207" // sequence hint on a dependency-only kind
)

// CompileError is one compilation failure with its source position.
type CompileError struct {
	Field   string
	Code    string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: [%s] %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// CompileProgram parses a CUE value into an ir.Program. The value is
// the program struct itself:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`program: { name: "main", ops: [...] }`)
//	p, errs := CompileProgram(v.LookupPath(cue.ParsePath("program")))
//
// Errors are collected rather than fail-fast so one run reports every
// problem in the file; on any error the program is discarded. Operand
// references may point forward: all names are registered before any
// operand list is resolved. The value side of an fby (its second
// operand) is tagged as feedback.
func CompileProgram(v cue.Value) (*ir.Program, []error) {
	if err := v.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}

	var errs []error

	name := ""
	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		errs = append(errs, &CompileError{
			Field:   "name",
			Code:    ErrNameRequired,
			Message: "program name is required",
			Pos:     v.Pos(),
		})
	} else {
		s, err := nameVal.String()
		if err != nil {
			errs = append(errs, formatCUEError(err))
		} else {
			name = s
		}
	}

	p := ir.NewProgram(name)

	opsVal := v.LookupPath(cue.ParsePath("ops"))
	if !opsVal.Exists() {
		errs = append(errs, &CompileError{
			Field:   "ops",
			Code:    ErrOpsRequired,
			Message: "ops list is required",
			Pos:     v.Pos(),
		})
		return nil, errs
	}
	iter, err := opsVal.List()
	if err != nil {
		errs = append(errs, formatCUEError(err))
		return nil, errs
	}

	// First pass: register every op so operand references can point
	// forward (an fby's value operand names an op that appears later).
	type pendingOp struct {
		id   ir.OpID
		kind ir.Kind
		val  cue.Value
	}
	var pending []pendingOp
	for i := 0; iter.Next(); i++ {
		ov := iter.Value()
		field := fmt.Sprintf("ops[%d]", i)

		opName, nameErrs := requiredString(ov, "name", field, ErrOpNameRequired)
		errs = append(errs, nameErrs...)
		if strings.TrimSpace(opName) == "" {
			continue
		}
		if _, dup := p.OpByName(opName); dup {
			errs = append(errs, &CompileError{
				Field:   field + ".name",
				Code:    ErrDuplicateOp,
				Message: fmt.Sprintf("duplicate op name %q", opName),
				Pos:     ov.Pos(),
			})
			continue
		}

		kindStr, kindErrs := requiredString(ov, "kind", field, ErrUnknownKind)
		errs = append(errs, kindErrs...)
		kind := ir.Kind(kindStr)
		if !kind.Valid() {
			if kindStr != "" {
				errs = append(errs, &CompileError{
					Field:   field + ".kind",
					Code:    ErrUnknownKind,
					Message: fmt.Sprintf("unknown kind %q", kindStr),
					Pos:     ov.Pos(),
				})
			}
			continue
		}

		pending = append(pending, pendingOp{id: p.AddOp(opName, kind), kind: kind, val: ov})
	}

	// Second pass: operands, loop nests and sequence hints.
	for _, po := range pending {
		field := "ops." + p.Op(po.id).Name

		operandsVal := po.val.LookupPath(cue.ParsePath("operands"))
		if operandsVal.Exists() {
			oIter, err := operandsVal.List()
			if err != nil {
				errs = append(errs, formatCUEError(err))
			} else {
				var operands []ir.Operand
				for i := 0; oIter.Next(); i++ {
					ref, err := oIter.Value().String()
					if err != nil {
						errs = append(errs, formatCUEError(err))
						continue
					}
					producer, ok := p.OpByName(ref)
					if !ok {
						errs = append(errs, &CompileError{
							Field:   fmt.Sprintf("%s.operands[%d]", field, i),
							Code:    ErrUnknownOperand,
							Message: fmt.Sprintf("operand %q does not name an op", ref),
							Pos:     oIter.Value().Pos(),
						})
						continue
					}
					if po.kind == ir.KindFby && i == 1 {
						operands = append(operands, ir.FeedbackUse(producer))
					} else {
						operands = append(operands, ir.Use(producer))
					}
				}
				p.SetOperands(po.id, operands...)
			}
		}

		loopsVal := po.val.LookupPath(cue.ParsePath("loops"))
		if loopsVal.Exists() {
			lIter, err := loopsVal.List()
			if err != nil {
				errs = append(errs, formatCUEError(err))
			} else {
				var loops []string
				for lIter.Next() {
					loop, err := lIter.Value().String()
					if err != nil {
						errs = append(errs, formatCUEError(err))
						continue
					}
					loops = append(loops, loop)
				}
				p.SetLoopNest(po.id, loops...)
			}
		}

		seqVal := po.val.LookupPath(cue.ParsePath("sequence"))
		if seqVal.Exists() {
			seq, err := seqVal.Int64()
			switch {
			case err != nil:
				errs = append(errs, formatCUEError(err))
			case !po.kind.Orderable():
				errs = append(errs, &CompileError{
					Field:   field + ".sequence",
					Code:    ErrHintOnValueOp,
					Message: fmt.Sprintf("kind %q is ordered by its dependencies and cannot carry a sequence hint", po.kind),
					Pos:     seqVal.Pos(),
				})
			default:
				p.SetSequence(po.id, seq)
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return p, nil
}

// requiredString extracts a mandatory string field, reporting absence
// under the given code.
func requiredString(v cue.Value, path, field, code string) (string, []error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return "", []error{&CompileError{
			Field:   field + "." + path,
			Code:    code,
			Message: path + " is required",
			Pos:     v.Pos(),
		}}
	}
	s, err := fv.String()
	if err != nil {
		return "", []error{formatCUEError(err)}
	}
	return s, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	cueErrs := errors.Errors(err)
	if len(cueErrs) == 0 {
		return err
	}
	first := cueErrs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Code:    ErrCUE,
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
