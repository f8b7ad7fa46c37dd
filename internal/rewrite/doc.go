// Package rewrite implements the passes that consume the sequencing
// analysis.
//
// ARCHITECTURE:
//
// Passes and the driver:
// A Pass transforms one ir.Program in place. The Driver applies passes
// in order, single-threaded, stamping each application with a token and
// a step from a monotonic logical clock, and optionally records every
// application in the rewrite journal. There is no parallelism anywhere:
// passes mutate shared IR and the analysis demands a single writer.
//
// Edit discipline:
// A pass that moves an operation must mirror the move into the analysis
// with Erase and Insert, and must persist the resulting order back into
// the program as sequence hints (AssignInferred) before it returns.
// Rebuilding the analysis from the rewritten program then reproduces
// the same order, which is what makes pass pipelines composable.
//
// Determinism:
// Pass order is caller-declared. Steps come from Clock.Next(), never
// wall time, so a journal replays in the order the work happened.
package rewrite
