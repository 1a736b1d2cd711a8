// Package pipeline runs one release: Preflight, Build, Release and Mirror in
// that order, with Cleanup guaranteed last.
//
// Preflight runs before anything is written to disk; a dirty tree or a
// missing store login ends the run without creating the working context.
// Once preflight passes, cleanup is deferred, so the build and deps
// directories are removed on success, on any stage failure and on
// interrupt (a cancelled context kills the running subprocess, unwinds the
// stage and still cleans up).
//
// Every stage error is fatal and none is retried. The only advisory step is
// the build stage's proof check.
package pipeline
