package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/RohanMKells/structured-additive-IR/internal/compiler"
	"github.com/RohanMKells/structured-additive-IR/internal/ir"
)

// ValidationResult holds validation results for a program file.
type ValidationResult struct {
	Program string                     `json:"program,omitempty"`
	Valid   bool                       `json:"valid"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file.cue>",
		Short: "Compile and validate a program file",
		Long: `Compile a CUE program file and run every static check.

Checks include structural validation (names, kinds, operand references,
loop nests) and cycle analysis: a use-def cycle is only legal when a
feedback operand breaks it.

All errors are collected and reported together, each with a stable
diagnostic code.

Examples:
  sair validate program.cue
  sair validate program.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	p, errs := LoadProgram(path, LoadModeCollectAll)
	if p == nil {
		if isFileError(errs) {
			err := errs[0]
			_ = formatter.Error(errorCode(err), err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to load program", err)
		}
		// Compile errors are part of the validation report.
		return outputValidationErrors(formatter, "", toValidationErrors(errs))
	}

	formatter.VerboseLog("Compiled program %q from %s", p.Name, path)

	validationErrors := compiler.Validate(p)
	validationErrors = append(validationErrors, compiler.AnalyzeCycles(p)...)
	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, p.Name, validationErrors)
	}

	return outputValidateSuccess(formatter, p)
}

// toValidationErrors folds compile errors into the validation report
// shape, carrying source positions into the message text.
func toValidationErrors(errs []error) []compiler.ValidationError {
	out := make([]compiler.ValidationError, 0, len(errs))
	for _, err := range errs {
		var ce *compiler.CompileError
		if errors.As(err, &ce) {
			msg := ce.Message
			if ce.Pos.IsValid() {
				msg = fmt.Sprintf("%s:%d: %s", filepath.Base(ce.Pos.Filename()), ce.Pos.Line(), ce.Message)
			}
			out = append(out, compiler.ValidationError{Field: ce.Field, Message: msg, Code: ce.Code})
			continue
		}
		out = append(out, compiler.ValidationError{Field: "program", Message: err.Error(), Code: ErrCodeGeneric})
	}
	return out
}

func outputValidateSuccess(formatter *OutputFormatter, p *ir.Program) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Program: p.Name, Valid: true})
	}
	fmt.Fprintf(formatter.Writer, "✓ program %q: all checks passed\n", p.Name)
	return nil
}

func outputValidationErrors(formatter *OutputFormatter, program string, validationErrors []compiler.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Program: program, Valid: false, Errors: validationErrors},
			Error: &CLIError{
				Code:    validationErrors[0].Code,
				Message: "validation failed",
			},
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "✗ Validation failed with %d error(s):\n", len(validationErrors))
		for _, ve := range validationErrors {
			fmt.Fprintf(formatter.Writer, "  [%s] %s: %s\n", ve.Code, ve.Field, ve.Message)
		}
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(validationErrors)))
}
