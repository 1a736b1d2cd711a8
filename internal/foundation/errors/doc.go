// Package errors provides the classified error primitives used by charmrelease.
//
// Stage packages return their own typed errors (DirtyWorkingTreeError,
// BuildError, ReleaseError and so on). At the top of the pipeline those are
// translated into a ClassifiedError so that the CLI can pick an exit code and
// print a diagnostic that names the failed stage, channel and command.
//
// Key features:
//   - ErrorCategory: Broad error classification (preflight, build, release, mirror, ...)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - RetryStrategy: Whether rerunning can help or the operator must act first
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLIErrorAdapter: exit code and message presentation
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryRelease, "release failed").
//		WithContext(errors.ContextChannel, "edge").
//		WithContext(errors.ContextCommand, "charm release weebl-42 --channel edge").
//		Build()
package errors
