package errors

import (
	"fmt"
	"log/slog"
)

// CLIErrorAdapter handles error presentation and exit code determination for the CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if we, ok := err.(*WeaveError); ok {
		return a.exitCodeFromWeave(we)
	}

	return 1
}

// exitCodeFromWeave maps WeaveError to exit codes.
func (a *CLIErrorAdapter) exitCodeFromWeave(err *WeaveError) int {
	switch err.Category {
	case CategoryValidation, CategoryAnnotation:
		return 2 // Invalid usage or annotation
	case CategoryConfig:
		return 7 // Configuration error
	case CategoryParse, CategoryGenerate, CategoryFileSystem:
		return 11 // Weave error
	case CategoryCache, CategoryWatch:
		return 12 // Runtime infrastructure error
	case CategoryInternal:
		return 10 // Internal error
	default:
		return 1 // General error
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	if we, ok := err.(*WeaveError); ok {
		if a.verbose {
			return we.Error()
		}
		msg := we.Message
		if pos, ok := we.Context["position"]; ok {
			msg = fmt.Sprintf("%v: %s", pos, msg)
		}
		if we.Cause != nil {
			return fmt.Sprintf("Error: %s: %v", msg, we.Cause)
		}
		return fmt.Sprintf("Error: %s", msg)
	}

	return fmt.Sprintf("Error: %v", err)
}
