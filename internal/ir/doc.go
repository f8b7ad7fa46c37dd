// Package ir defines the dataflow intermediate representation that the
// sequencing analysis operates on.
//
// A Program is a single region of operations in appearance order. All
// other internal packages import ir; ir imports nothing internal. This
// keeps the IR the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Operations are referenced by opaque OpID handles, never by pointer
//     identity across packages
//   - Sequence hints are int64 and optional; only compute kinds carry them
//   - Loop-carried dependencies are marked on the operand (Feedback),
//     not inferred from the producer's kind
//   - All JSON tags use snake_case
package ir
