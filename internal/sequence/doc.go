// Package sequence analyzes and maintains the relative execution order
// of operations in one program region.
//
// Orderable (compute) operations may carry an explicit integer sequence
// hint; dependency-only (value) operations are positioned purely by
// their use-def chains. Compute builds a total order over the orderable
// operations that respects every non-feedback use-def edge and keeps
// explicitly hinted operations in their hinted relative order whenever
// the hints do not contradict the dependencies. Construction fails,
// returning a CycleError, when the region contains a use-def cycle not
// broken by a feedback operand.
//
// The resulting Analysis answers relative-order queries (IsBefore,
// PrevOp, Span, OpsBefore), walks the fused traversal of both operation
// kinds (AllOps), locates loop-nest-compatible insertion points
// (FindInsertionPoint), and tracks incremental rewrites (Insert, Erase)
// without renumbering untouched operations.
//
// The analysis is single-writer and not safe for concurrent use. It
// must be kept in lockstep with IR edits: every structural edit the
// caller performs needs a matching Insert or Erase call, and querying
// or erasing an operation the store does not track panics, since that
// is a bug in the calling pass rather than a property of the input
// program.
package sequence
