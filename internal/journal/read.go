package journal

import (
	"context"
	"database/sql"
	"fmt"
)

// ListRuns returns all runs matching the filter.
// Results are ordered deterministically: ORDER BY step ASC, token ASC
// with binary collation, so the same journal lists identically across
// SQLite versions.
//
// Returns an empty slice (not nil) if no runs match.
func (j *Journal) ListRuns(ctx context.Context, f Filter) ([]Entry, error) {
	where, params := f.compile()

	rows, err := j.db.QueryContext(ctx, `
		SELECT token, program, pass, step, fingerprint_before, fingerprint_after,
		       dump_before, dump_after, ir_version, tool_version
		FROM runs`+where+`
		ORDER BY step ASC, token COLLATE BINARY ASC
	`, params...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	// Return empty slice instead of nil
	if entries == nil {
		entries = []Entry{}
	}

	return entries, nil
}

// ReadRun retrieves a single run by token.
// Returns sql.ErrNoRows if not found.
func (j *Journal) ReadRun(ctx context.Context, token string) (Entry, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT token, program, pass, step, fingerprint_before, fingerprint_after,
		       dump_before, dump_after, ir_version, tool_version
		FROM runs
		WHERE token = ?
	`, token)

	return scanRunRow(row)
}

// MaxStep returns the highest step recorded in the journal, or zero for
// an empty journal. Callers use it to seed a clock that continues an
// earlier pipeline instead of reusing step numbers.
func (j *Journal) MaxStep(ctx context.Context) (int64, error) {
	var step int64
	err := j.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(step), 0) FROM runs",
	).Scan(&step)
	if err != nil {
		return 0, fmt.Errorf("query max step: %w", err)
	}
	return step, nil
}

// scanRun scans a cursor row into an Entry.
func scanRun(rows *sql.Rows) (Entry, error) {
	var e Entry
	if err := rows.Scan(
		&e.Token, &e.Program, &e.Pass, &e.Step,
		&e.FingerprintBefore, &e.FingerprintAfter,
		&e.DumpBefore, &e.DumpAfter,
		&e.IRVersion, &e.ToolVersion,
	); err != nil {
		return Entry{}, fmt.Errorf("scan run: %w", err)
	}
	return e, nil
}

// scanRunRow scans a single row into an Entry.
func scanRunRow(row *sql.Row) (Entry, error) {
	var e Entry
	if err := row.Scan(
		&e.Token, &e.Program, &e.Pass, &e.Step,
		&e.FingerprintBefore, &e.FingerprintAfter,
		&e.DumpBefore, &e.DumpAfter,
		&e.IRVersion, &e.ToolVersion,
	); err != nil {
		return Entry{}, err
	}
	return e, nil
}
