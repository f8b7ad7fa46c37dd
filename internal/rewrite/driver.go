package rewrite

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/RohanMKells/structured-additive-IR/internal/ir"
	"github.com/RohanMKells/structured-additive-IR/internal/journal"
)

// Pass is one in-place program transformation.
type Pass interface {
	// Name identifies the pass in reports, logs and the journal.
	Name() string

	// Apply transforms p. A pass that repositions operations must leave
	// the program's sequence hints describing the final order.
	Apply(p *ir.Program) error
}

// TokenGenerator mints the token attached to one pass application.
// Implemented by UUIDv7Generator (production) and FixedGenerator
// (tests).
type TokenGenerator interface {
	Generate() string
}

// Driver applies passes in declaration order and records each
// application.
//
// All mutation happens on the caller's goroutine; the driver adds no
// concurrency. When a journal is configured every application is
// persisted before the next pass runs, so a crash leaves a prefix of
// the work recorded, never a gap.
type Driver struct {
	tokens  TokenGenerator
	clock   *Clock
	journal *journal.Journal
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithJournal makes the driver record every pass application.
func WithJournal(j *journal.Journal) DriverOption {
	return func(d *Driver) { d.journal = j }
}

// WithTokenGenerator replaces the default UUIDv7 token source.
func WithTokenGenerator(g TokenGenerator) DriverOption {
	return func(d *Driver) { d.tokens = g }
}

// WithClock replaces the default zero-based clock, for continuing an
// existing journal's step sequence.
func WithClock(c *Clock) DriverOption {
	return func(d *Driver) { d.clock = c }
}

// NewDriver creates a driver with UUIDv7 tokens and a fresh clock.
func NewDriver(opts ...DriverOption) *Driver {
	d := &Driver{
		tokens: UUIDv7Generator{},
		clock:  NewClock(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// PassReport summarizes one pass application.
type PassReport struct {
	Pass              string `json:"pass"`
	Token             string `json:"token"`
	Step              int64  `json:"step"`
	FingerprintBefore string `json:"fingerprint_before"`
	FingerprintAfter  string `json:"fingerprint_after"`
	Changed           bool   `json:"changed"`
}

// Run applies the passes to p in order. It stops at the first pass or
// journal failure, returning the reports for the applications that
// completed.
func (d *Driver) Run(ctx context.Context, p *ir.Program, passes ...Pass) ([]PassReport, error) {
	var reports []PassReport
	for _, pass := range passes {
		dumpBefore := p.Dump()
		fpBefore := p.Fingerprint()

		if err := pass.Apply(p); err != nil {
			slog.Error("pass failed",
				"pass", pass.Name(),
				"program", p.Name,
				"error", err,
			)
			return reports, err
		}

		dumpAfter := p.Dump()
		fpAfter := p.Fingerprint()
		report := PassReport{
			Pass:              pass.Name(),
			Token:             d.tokens.Generate(),
			Step:              d.clock.Next(),
			FingerprintBefore: fpBefore,
			FingerprintAfter:  fpAfter,
			Changed:           fpBefore != fpAfter,
		}

		if d.journal != nil {
			err := d.journal.RecordRun(ctx, journal.Entry{
				Token:             report.Token,
				Program:           p.Name,
				Pass:              report.Pass,
				Step:              report.Step,
				FingerprintBefore: fpBefore,
				FingerprintAfter:  fpAfter,
				DumpBefore:        dumpBefore,
				DumpAfter:         dumpAfter,
				IRVersion:         ir.IRVersion,
				ToolVersion:       ir.ToolVersion,
			})
			if err != nil {
				return reports, fmt.Errorf("record run %s: %w", report.Token, err)
			}
		}

		slog.Info("pass applied",
			"pass", report.Pass,
			"program", p.Name,
			"step", report.Step,
			"token", report.Token,
			"changed", report.Changed,
		)
		reports = append(reports, report)
	}
	return reports, nil
}
