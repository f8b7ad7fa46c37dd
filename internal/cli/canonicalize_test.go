package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RohanMKells/structured-additive-IR/internal/journal"
)

func TestCanonicalizePrintsDump(t *testing.T) {
	path := writeProgramFile(t, validProgram)

	buf := &bytes.Buffer{}
	cmd := NewCanonicalizeCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "program main")
	assert.Contains(t, output, "producer = copy(r) loops=[d0] seq=0")
	assert.Contains(t, output, "consumer = map(producer) loops=[d0] seq=1")
}

func TestCanonicalizeWritesOutputFile(t *testing.T) {
	path := writeProgramFile(t, validProgram)
	outPath := filepath.Join(t.TempDir(), "canonical.txt")

	buf := &bytes.Buffer{}
	cmd := NewCanonicalizeCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "-o", outPath})

	err := cmd.Execute()
	require.NoError(t, err)

	// The dump goes to the file, not to stdout.
	assert.Empty(t, buf.String())
	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(written), "seq=0")
	assert.Contains(t, string(written), "seq=1")
}

func TestCanonicalizeJSON(t *testing.T) {
	path := writeProgramFile(t, validProgram)

	buf := &bytes.Buffer{}
	cmd := NewCanonicalizeCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "main", data["program"])
	assert.Contains(t, data["dump"], "seq=0")

	runs, ok := data["runs"].([]interface{})
	require.True(t, ok)
	require.Len(t, runs, 1)
	run, ok := runs[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "canonicalize", run["pass"])
	assert.Equal(t, true, run["changed"])
	assert.NotEmpty(t, run["token"])
}

func TestCanonicalizeAlreadyCanonical(t *testing.T) {
	path := writeProgramFile(t, `program: {
	name: "settled"
	ops: [
		{name: "r", kind: "static_range"},
		{name: "a", kind: "copy", operands: ["r"], sequence: 0},
		{name: "b", kind: "map", operands: ["a"], sequence: 1},
	]
}
`)

	buf := &bytes.Buffer{}
	cmd := NewCanonicalizeCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	runs := data["runs"].([]interface{})
	require.Len(t, runs, 1)
	assert.Equal(t, false, runs[0].(map[string]interface{})["changed"])
}

func TestCanonicalizeRecordsJournal(t *testing.T) {
	path := writeProgramFile(t, validProgram)
	journalPath := filepath.Join(t.TempDir(), "runs.db")

	for i := 0; i < 2; i++ {
		buf := &bytes.Buffer{}
		cmd := NewCanonicalizeCommand(&RootOptions{Format: "text"})
		cmd.SetOut(buf)
		cmd.SetArgs([]string{path, "--journal", journalPath})
		require.NoError(t, cmd.Execute())
	}

	j, err := journal.Open(journalPath)
	require.NoError(t, err)
	defer j.Close()

	entries, err := j.ListRuns(context.Background(), journal.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// The step clock continues across invocations.
	assert.Equal(t, int64(1), entries[0].Step)
	assert.Equal(t, int64(2), entries[1].Step)
	assert.NotEqual(t, entries[0].Token, entries[1].Token)
	assert.Equal(t, "canonicalize", entries[0].Pass)
	assert.Equal(t, "main", entries[0].Program)
}

func TestCanonicalizeCycleFails(t *testing.T) {
	path := writeProgramFile(t, cyclicProgram)

	buf := &bytes.Buffer{}
	cmd := NewCanonicalizeCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [CYCLE_DETECTED]")
}
