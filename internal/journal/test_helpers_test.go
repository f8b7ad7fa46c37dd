package journal

import (
	"path/filepath"
	"testing"
)

// createTestJournal creates a journal backed by a temp file.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

// createTestEntry creates a run entry with minimal required fields.
// The before and after fingerprints differ, so Changed() is true.
func createTestEntry(token, pass string, step int64) Entry {
	return Entry{
		Token:             token,
		Program:           "main",
		Pass:              pass,
		Step:              step,
		FingerprintBefore: "fp-before",
		FingerprintAfter:  "fp-after",
		DumpBefore:        "program main (before)",
		DumpAfter:         "program main (after)",
		IRVersion:         "1",
		ToolVersion:       "0.1.0",
	}
}
