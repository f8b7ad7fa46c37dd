package ir

import (
	"fmt"
	"strings"
)

// Dump renders the program in a stable one-op-per-line text form:
//
//	program main
//	  r = static_range
//	  a = copy(r) loops=[d0] seq=2
//	  acc = fby(init, ^next) loops=[d0]
//
// Operands are printed by producer name, feedback uses prefixed with
// '^'. Empty loop nests and absent sequence hints are omitted. The
// output depends only on program content, making it safe for golden
// files and for fingerprinting.
func (p *Program) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "program %s\n", p.Name)
	for _, op := range p.ops {
		fmt.Fprintf(&b, "  %s = %s", op.Name, op.Kind)
		if len(op.Operands) > 0 {
			parts := make([]string, len(op.Operands))
			for i, operand := range op.Operands {
				name := p.Op(operand.Producer).Name
				if operand.Feedback {
					name = "^" + name
				}
				parts[i] = name
			}
			fmt.Fprintf(&b, "(%s)", strings.Join(parts, ", "))
		}
		if len(op.LoopNest) > 0 {
			fmt.Fprintf(&b, " loops=[%s]", strings.Join(op.LoopNest, ", "))
		}
		if op.Sequence != nil {
			fmt.Fprintf(&b, " seq=%d", *op.Sequence)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
