package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/xmsync/internal/catalog"
	"github.com/roach88/xmsync/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Entities []string          `json:"entities,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError is one config problem with its source position.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a config without reading input files",
		Long: `Validate a .cue, .json or .yaml config (or a directory of .cue files).

Checks syntax, the config schema and per-entity settings. Settings that name
unknown fields are reported as warnings. Input files are not opened.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, configPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		var loadErr *config.LoadError
		if !errors.As(err, &loadErr) {
			return outputValidateError(formatter, config.ErrCodeGeneric, err.Error())
		}
		if isSchemaError(loadErr.Code) {
			return outputValidationErrors(formatter, []ValidationError{toValidationError(loadErr)})
		}
		return outputValidateError(formatter, loadErr.Code, loadErr.Message)
	}

	var planned []string
	for _, e := range catalog.All {
		if ec, ok := cfg.Entity(e); ok && ec.Planned() {
			planned = append(planned, string(e))
			formatter.VerboseLog("Entity %s reads %s", e, cfg.ResolvePath(ec.InputPath))
		}
	}

	return outputValidateSuccess(formatter, ValidationResult{
		Valid:    true,
		Entities: planned,
		Warnings: cfg.Warnings,
	})
}

// isSchemaError reports whether code describes invalid config content, as
// opposed to a config that could not be found or read.
func isSchemaError(code string) bool {
	switch code {
	case config.ErrCodeBuildFailed, config.ErrCodeMembersRequired, config.ErrCodeSlotInput:
		return true
	}
	return false
}

func toValidationError(e *config.LoadError) ValidationError {
	v := ValidationError{Code: e.Code, Message: e.Message}
	if e.Pos.IsValid() {
		v.File = e.Pos.Filename()
		v.Line = e.Pos.Line()
	}
	return v
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, "✓ Config valid")
	if len(result.Entities) > 0 {
		fmt.Fprintf(formatter.Writer, "  planned: %v\n", result.Entities)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(formatter.Writer, "  warning: %s\n", w)
	}
	return nil
}

// outputValidateError outputs a single load error.
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs config content errors.
func outputValidationErrors(formatter *OutputFormatter, errs []ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Errors: errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s line %d\n", err.File, err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
