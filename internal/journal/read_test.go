package journal

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

func TestListRuns_OrderedBySteps(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	// Insert out of step order
	for _, e := range []Entry{
		createTestEntry("run-c", "hoist", 3),
		createTestEntry("run-a", "canonicalize", 1),
		createTestEntry("run-b", "canonicalize", 2),
	} {
		if err := j.RecordRun(ctx, e); err != nil {
			t.Fatalf("RecordRun(%s) failed: %v", e.Token, err)
		}
	}

	entries, err := j.ListRuns(ctx, Filter{})
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	want := []string{"run-a", "run-b", "run-c"}
	for i, e := range entries {
		if e.Token != want[i] {
			t.Errorf("entries[%d].Token = %q, want %q", i, e.Token, want[i])
		}
	}
}

func TestListRuns_TokenBreaksStepTies(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	// Two runs on the same step, inserted in reverse token order
	for _, e := range []Entry{
		createTestEntry("run-b", "canonicalize", 1),
		createTestEntry("run-a", "canonicalize", 1),
	} {
		if err := j.RecordRun(ctx, e); err != nil {
			t.Fatalf("RecordRun(%s) failed: %v", e.Token, err)
		}
	}

	entries, err := j.ListRuns(ctx, Filter{})
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].Token != "run-a" || entries[1].Token != "run-b" {
		t.Errorf("order = [%q, %q], want [run-a, run-b]", entries[0].Token, entries[1].Token)
	}
}

func TestListRuns_FilterByProgram(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	e1 := createTestEntry("run-1", "canonicalize", 1)
	e2 := createTestEntry("run-2", "canonicalize", 2)
	e2.Program = "other"
	for _, e := range []Entry{e1, e2} {
		if err := j.RecordRun(ctx, e); err != nil {
			t.Fatalf("RecordRun(%s) failed: %v", e.Token, err)
		}
	}

	entries, err := j.ListRuns(ctx, Filter{Program: "other"})
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}

	if len(entries) != 1 || entries[0].Token != "run-2" {
		t.Errorf("got %d entries, want exactly run-2", len(entries))
	}
}

func TestListRuns_FilterByPass(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	for _, e := range []Entry{
		createTestEntry("run-1", "canonicalize", 1),
		createTestEntry("run-2", "hoist", 2),
		createTestEntry("run-3", "canonicalize", 3),
	} {
		if err := j.RecordRun(ctx, e); err != nil {
			t.Fatalf("RecordRun(%s) failed: %v", e.Token, err)
		}
	}

	entries, err := j.ListRuns(ctx, Filter{Pass: "canonicalize"})
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].Token != "run-1" || entries[1].Token != "run-3" {
		t.Errorf("order = [%q, %q], want [run-1, run-3]", entries[0].Token, entries[1].Token)
	}
}

func TestListRuns_ChangedOnly(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	changed := createTestEntry("run-1", "canonicalize", 1)
	unchanged := createTestEntry("run-2", "canonicalize", 2)
	unchanged.FingerprintAfter = unchanged.FingerprintBefore
	for _, e := range []Entry{changed, unchanged} {
		if err := j.RecordRun(ctx, e); err != nil {
			t.Fatalf("RecordRun(%s) failed: %v", e.Token, err)
		}
	}

	entries, err := j.ListRuns(ctx, Filter{ChangedOnly: true})
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}

	if len(entries) != 1 || entries[0].Token != "run-1" {
		t.Errorf("got %d entries, want exactly run-1", len(entries))
	}
	if !entries[0].Changed() {
		t.Error("Changed() = false for a run with differing fingerprints")
	}
}

func TestListRuns_CombinedFilter(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	match := createTestEntry("run-1", "hoist", 1)
	wrongPass := createTestEntry("run-2", "canonicalize", 2)
	wrongProgram := createTestEntry("run-3", "hoist", 3)
	wrongProgram.Program = "other"
	for _, e := range []Entry{match, wrongPass, wrongProgram} {
		if err := j.RecordRun(ctx, e); err != nil {
			t.Fatalf("RecordRun(%s) failed: %v", e.Token, err)
		}
	}

	entries, err := j.ListRuns(ctx, Filter{Program: "main", Pass: "hoist"})
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}

	if len(entries) != 1 || entries[0].Token != "run-1" {
		t.Errorf("got %d entries, want exactly run-1", len(entries))
	}
}

func TestListRuns_EmptyJournal(t *testing.T) {
	j := createTestJournal(t)

	entries, err := j.ListRuns(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}

	if entries == nil {
		t.Error("ListRuns() returned nil, want empty slice")
	}
	if len(entries) != 0 {
		t.Errorf("len = %d, want 0", len(entries))
	}
}

func TestReadRun_Found(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	want := createTestEntry("run-1", "canonicalize", 7)
	if err := j.RecordRun(ctx, want); err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}

	got, err := j.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}

	if got != want {
		t.Errorf("ReadRun() = %+v, want %+v", got, want)
	}
}

func TestReadRun_NotFound(t *testing.T) {
	j := createTestJournal(t)

	_, err := j.ReadRun(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestMaxStep_EmptyJournal(t *testing.T) {
	j := createTestJournal(t)

	step, err := j.MaxStep(context.Background())
	if err != nil {
		t.Fatalf("MaxStep() failed: %v", err)
	}
	if step != 0 {
		t.Errorf("MaxStep() = %d, want 0", step)
	}
}

func TestMaxStep_ReturnsHighestStep(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	for _, e := range []Entry{
		createTestEntry("run-1", "canonicalize", 2),
		createTestEntry("run-2", "hoist", 5),
		createTestEntry("run-3", "canonicalize", 3),
	} {
		if err := j.RecordRun(ctx, e); err != nil {
			t.Fatalf("RecordRun(%s) failed: %v", e.Token, err)
		}
	}

	step, err := j.MaxStep(ctx)
	if err != nil {
		t.Fatalf("MaxStep() failed: %v", err)
	}
	if step != 5 {
		t.Errorf("MaxStep() = %d, want 5", step)
	}
}
