package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/RohanMKells/structured-additive-IR/internal/compiler"
	"github.com/RohanMKells/structured-additive-IR/internal/ir"
)

// LoadMode controls early-exit behavior when a program fails to compile.
type LoadMode int

const (
	// LoadModeFailFast stops at the first error.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll gathers all errors before returning.
	LoadModeCollectAll
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Unclassified error
	ErrCodeNotCUE       = "E002" // Path does not name a .cue file
	ErrCodeIsDirectory  = "E003" // Path is a directory
	ErrCodeLoadFailed   = "E004" // CUE loader rejected the file
	ErrCodeNotFound     = "E005" // Path does not exist
	ErrCodeBuildFailed  = "E006" // CUE evaluation failed
	ErrCodeWriteFailed  = "E007" // Output file could not be written
	ErrCodeNoProgram    = "E008" // File has no top-level program declaration
	ErrCodeUnknownOpArg = "E009" // An op named on the command line does not exist
	ErrCodeJournal      = "E010" // Journal could not be opened or read
)

// LoadError describes a failure to turn a file into a program. It covers
// everything up to compilation: path checks, the CUE loader, and CUE
// evaluation. Compile errors keep their own type so callers can tell a
// broken file from a broken program.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d: [%s] %s", filepath.Base(e.Pos.Filename()), e.Pos.Line(), e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// LoadProgram loads a single .cue file and compiles its top-level
// "program" declaration into an IR program.
//
// On success the error slice is empty. On failure the program is nil and
// the slice holds *LoadError values for file-level problems or
// *compiler.CompileError values for problems inside the program. In
// LoadModeFailFast the slice holds exactly one error.
func LoadProgram(path string, mode LoadMode) (*ir.Program, []error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, []error{&LoadError{
				Code:    ErrCodeNotFound,
				Message: fmt.Sprintf("program file not found: %s", path),
			}}
		}
		return nil, []error{&LoadError{
			Code:    ErrCodeGeneric,
			Message: fmt.Sprintf("cannot access %s: %v", path, err),
		}}
	}
	if info.IsDir() {
		return nil, []error{&LoadError{
			Code:    ErrCodeIsDirectory,
			Message: fmt.Sprintf("expected a .cue file, got a directory: %s", path),
		}}
	}
	if filepath.Ext(path) != ".cue" {
		return nil, []error{&LoadError{
			Code:    ErrCodeNotCUE,
			Message: fmt.Sprintf("expected a .cue file, got: %s", path),
		}}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, []error{&LoadError{
			Code:    ErrCodeGeneric,
			Message: fmt.Sprintf("cannot resolve path %s: %v", path, err),
		}}
	}

	// Load the file as a standalone instance so it needs no cue.mod
	// directory next to it.
	instances := load.Instances([]string{abs}, &load.Config{Dir: filepath.Dir(abs)})
	if len(instances) == 0 {
		return nil, []error{&LoadError{
			Code:    ErrCodeLoadFailed,
			Message: fmt.Sprintf("CUE loader produced no instance for %s", path),
		}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{
			Code:    ErrCodeLoadFailed,
			Message: fmt.Sprintf("loading %s: %v", path, inst.Err),
		}}
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{
			Code:    ErrCodeBuildFailed,
			Message: fmt.Sprintf("evaluating %s: %v", path, err),
			Pos:     value.Pos(),
		}}
	}

	programVal := value.LookupPath(cue.ParsePath("program"))
	if !programVal.Exists() {
		return nil, []error{&LoadError{
			Code:    ErrCodeNoProgram,
			Message: fmt.Sprintf("no top-level \"program\" declaration in %s", path),
		}}
	}

	p, compileErrs := compiler.CompileProgram(programVal)
	if len(compileErrs) > 0 {
		if mode == LoadModeFailFast {
			return nil, compileErrs[:1]
		}
		return nil, compileErrs
	}
	return p, nil
}

// isFileError reports whether the first load failure happened before
// compilation. File-level failures are command errors (exit 2); compile
// failures are analysis failures (exit 1).
func isFileError(errs []error) bool {
	if len(errs) == 0 {
		return false
	}
	var le *LoadError
	return errors.As(errs[0], &le)
}

// errorCode extracts the diagnostic code carried by a load or compile
// error, falling back to the generic code.
func errorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	var ce *compiler.CompileError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrCodeGeneric
}

// loadForRun loads a program for a command that needs a compiled program
// to do its work. The first problem is reported through the formatter and
// returned as an ExitError; `sair validate` is the place for a full
// error listing.
func loadForRun(formatter *OutputFormatter, path string) (*ir.Program, error) {
	p, errs := LoadProgram(path, LoadModeFailFast)
	if p != nil {
		return p, nil
	}
	err := errs[0]
	_ = formatter.Error(errorCode(err), err.Error(), nil)
	code := ExitFailure
	if isFileError(errs) {
		code = ExitCommandError
	}
	return nil, WrapExitError(code, "failed to load program", err)
}
