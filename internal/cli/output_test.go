package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"program": "main"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E005", "program file not found: missing.cue", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E005", resp.Error.Code)
	assert.Equal(t, "program file not found: missing.cue", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := []string{"a", "b"}
	err := formatter.Error("CYCLE_DETECTED", "non-feedback use-def cycle through a, b", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("E004", "loading program.cue: no such file", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E004]")
	assert.Contains(t, buf.String(), "loading program.cue")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	err := formatter.Error("CYCLE_DETECTED", "cycle", []string{"a", "b"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [CYCLE_DETECTED]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("Compiled program %q", "main")

			if tt.wantLog {
				assert.Contains(t, buf.String(), `Compiled program "main"`)
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := newFormatter(&RootOptions{Verbose: true, Format: "json"}, out, errOut)

	formatter.VerboseLog("step %d", 3)

	assert.Empty(t, out.String(), "diagnostics must not mix into JSON output")
	assert.Contains(t, errOut.String(), "step 3")
}

func TestExitError(t *testing.T) {
	base := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "failed to write output", base)

	assert.Equal(t, "failed to write output: disk full", err.Error())
	assert.Equal(t, base, errors.Unwrap(err))

	plain := NewExitError(ExitFailure, "validation failed with 2 error(s)")
	assert.Equal(t, "validation failed with 2 error(s)", plain.Error())
	assert.Nil(t, errors.Unwrap(plain))
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil_error", nil, ExitSuccess},
		{"exit_error_failure", NewExitError(ExitFailure, "cycle"), ExitFailure},
		{"exit_error_command", NewExitError(ExitCommandError, "missing file"), ExitCommandError},
		{"wrapped_exit_error", fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "inner")), ExitCommandError},
		{"plain_error", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}
