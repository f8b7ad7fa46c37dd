package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceListsFusedTraversal(t *testing.T) {
	path := writeProgramFile(t, validProgram)

	buf := &bytes.Buffer{}
	cmd := NewSequenceCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "program main: 3 ops, 2 tracked")
	// The range has no position of its own and rides ahead of its
	// first consumer.
	assert.Contains(t, output, "+ r")
	assert.Contains(t, output, "[0] key=0 producer loops=[d0]")
	assert.Contains(t, output, "[1] key=1 consumer loops=[d0]")
	assert.Less(t, strings.Index(output, "+ r"), strings.Index(output, "producer"))
}

func TestSequenceJSON(t *testing.T) {
	path := writeProgramFile(t, validProgram)

	buf := &bytes.Buffer{}
	cmd := NewSequenceCommand(&RootOptions{Format: "json"})
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
	assert.Equal(t, float64(2), data["tracked"])

	ops, ok := data["ops"].([]interface{})
	require.True(t, ok)
	require.Len(t, ops, 3)

	first, ok := ops[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "r", first["name"])
	assert.Equal(t, "static_range", first["kind"])
	_, hasPosition := first["position"]
	assert.False(t, hasPosition, "dependency-only ops carry no position")

	second, ok := ops[1].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "producer", second["name"])
	assert.Equal(t, float64(0), second["position"])
	assert.Equal(t, float64(0), second["key"])
}

func TestSequenceHonorsHints(t *testing.T) {
	path := writeProgramFile(t, `program: {
	name: "hinted"
	ops: [
		{name: "r", kind: "static_range"},
		{name: "late", kind: "copy", operands: ["r"], sequence: 1},
		{name: "early", kind: "copy", operands: ["r"], sequence: 0},
	]
}
`)

	buf := &bytes.Buffer{}
	cmd := NewSequenceCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "[0] key=0 early")
	assert.Contains(t, output, "[1] key=1 late")
}

func TestSequenceOpsBefore(t *testing.T) {
	path := writeProgramFile(t, validProgram)

	buf := &bytes.Buffer{}
	cmd := NewSequenceCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--ops-before", "consumer"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "ops before consumer in program main: 1")
	assert.Contains(t, output, "[0] key=0 producer")
	assert.NotContains(t, output, "consumer loops")
}

func TestSequenceOpsBeforeUnknownOp(t *testing.T) {
	path := writeProgramFile(t, validProgram)

	buf := &bytes.Buffer{}
	cmd := NewSequenceCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--ops-before", "ghost"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E009]")
	assert.Contains(t, buf.String(), `unknown op "ghost"`)
}

func TestSequenceOpsBeforeDependencyOnlyOp(t *testing.T) {
	path := writeProgramFile(t, validProgram)

	buf := &bytes.Buffer{}
	cmd := NewSequenceCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--ops-before", "r"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "has no position of its own")
}

func TestSequenceReportsCycle(t *testing.T) {
	path := writeProgramFile(t, cyclicProgram)

	buf := &bytes.Buffer{}
	cmd := NewSequenceCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [CYCLE_DETECTED]")
	assert.Contains(t, buf.String(), "non-feedback use-def cycle")
}

func TestSequenceCycleJSON(t *testing.T) {
	path := writeProgramFile(t, cyclicProgram)

	buf := &bytes.Buffer{}
	cmd := NewSequenceCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CYCLE_DETECTED", resp.Error.Code)
	assert.NotNil(t, resp.Error.Details, "cycle details name the participating ops")
}

func TestSequenceCompileErrorStopsEarly(t *testing.T) {
	path := writeProgramFile(t, `program: {
	name: "broken"
	ops: [{name: "a", kind: "copy", operands: ["ghost"]}]
}
`)

	buf := &bytes.Buffer{}
	cmd := NewSequenceCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E206]")
}
