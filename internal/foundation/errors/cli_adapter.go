package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// CLIErrorAdapter handles error presentation and exit code determination for the CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
	errOut  io.Writer
}

// NewCLIErrorAdapter creates a new CLI error adapter writing to os.Stdout/os.Stderr.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		out:     os.Stdout,
		errOut:  os.Stderr,
	}
}

// WithWriters overrides where messages are printed.
func (a *CLIErrorAdapter) WithWriters(out, errOut io.Writer) *CLIErrorAdapter {
	a.out = out
	a.errOut = errOut
	return a
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if classified, ok := AsClassified(err); ok {
		return a.exitCodeFromClassified(classified)
	}

	return 1
}

// exitCodeFromClassified maps ClassifiedError to exit codes. A failing
// subprocess's own exit status wins over the category code.
func (a *CLIErrorAdapter) exitCodeFromClassified(err *ClassifiedError) int {
	switch err.Category() {
	case CategoryWorkingTree, CategoryAuth:
		return 0 // Intentional early exit, message already printed
	}
	if code, ok := err.Context().GetInt(ContextExitCode); ok && code > 0 {
		return code
	}
	switch err.Category() {
	case CategoryValidation:
		return 2 // Invalid usage
	case CategoryConfig:
		return 7 // Configuration error
	case CategoryCommand, CategoryStore, CategoryRelease, CategoryMirror:
		return 8 // External system error
	case CategoryBuild, CategoryFileSystem:
		return 11 // Build error
	case CategoryRuntime:
		return 12 // Runtime error
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

	if classified, ok := AsClassified(err); ok {
		return a.formatClassified(classified)
	}

	return fmt.Sprintf("Error: %v", err)
}

// formatClassified formats a ClassifiedError for display.
func (a *CLIErrorAdapter) formatClassified(err *ClassifiedError) string {
	if err.NeedsUserAction() {
		msg := err.Message()
		if detail, ok := err.Context().GetString(ContextDetail); ok {
			msg = detail + "\n" + msg
		}
		return msg
	}

	var b strings.Builder
	if stage, ok := err.Context().GetString(ContextStage); ok {
		fmt.Fprintf(&b, "%s stage failed: ", stage)
	}
	b.WriteString(err.Message())
	if channel, ok := err.Context().GetString(ContextChannel); ok {
		fmt.Fprintf(&b, " (channel %s)", channel)
	}
	if command, ok := err.Context().GetString(ContextCommand); ok {
		fmt.Fprintf(&b, "\n  command: %s", command)
	}
	if repo, ok := err.Context().GetString(ContextRepository); ok {
		fmt.Fprintf(&b, "\n  repository: %s", repo)
	}
	if a.verbose && err.Cause() != nil {
		fmt.Fprintf(&b, "\n  cause: %v", err.Cause())
	}
	return b.String()
}

// Report prints the diagnostic for err and returns the exit code to use.
// Preflight conditions are printed on stdout, failures on stderr.
func (a *CLIErrorAdapter) Report(err error) int {
	if err == nil {
		return 0
	}

	exitCode := a.ExitCodeFor(err)
	message := a.FormatError(err)

	if classified, ok := AsClassified(err); ok && classified.NeedsUserAction() {
		fmt.Fprintln(a.out, message)
		return exitCode
	}

	a.logError(err)
	fmt.Fprintln(a.errOut, message)
	return exitCode
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	if classified, ok := AsClassified(err); ok {
		level := a.slogLevelFromSeverity(classified.Severity())
		attrs := []slog.Attr{
			slog.String("category", string(classified.Category())),
		}
		for _, key := range []string{ContextStage, ContextChannel, ContextCommand, ContextRepository} {
			if v, ok := classified.Context().GetString(key); ok {
				attrs = append(attrs, slog.String(key, v))
			}
		}
		if code, ok := classified.Context().GetInt(ContextExitCode); ok {
			attrs = append(attrs, slog.Int(ContextExitCode, code))
		}
		if a.verbose && classified.Cause() != nil {
			attrs = append(attrs, slog.String("cause", classified.Cause().Error()))
		}

		a.logger.LogAttrs(context.Background(), level, classified.Message(), attrs...)
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}

// slogLevelFromSeverity converts ClassifiedError severity to slog level.
func (a *CLIErrorAdapter) slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
