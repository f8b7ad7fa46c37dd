package journal

import (
	"context"
	"fmt"
)

// RecordRun inserts a run record into the journal.
// Uses ON CONFLICT(token) DO NOTHING for idempotency - duplicate tokens
// are silently ignored. Other constraint violations (e.g., NOT NULL)
// will still return errors.
func (j *Journal) RecordRun(ctx context.Context, e Entry) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs
		(token, program, pass, step, fingerprint_before, fingerprint_after,
		 dump_before, dump_after, ir_version, tool_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`,
		e.Token,
		e.Program,
		e.Pass,
		e.Step,
		e.FingerprintBefore,
		e.FingerprintAfter,
		e.DumpBefore,
		e.DumpAfter,
		e.IRVersion,
		e.ToolVersion,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	return nil
}
