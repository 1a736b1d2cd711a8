// Package executor runs the external tools the release pipeline drives
// (the version-control client, the charm builder, the store client).
//
// A Runner executes one argv synchronously, captures stdout and returns it
// trimmed. A non-zero exit becomes an *ExternalCommandError carrying the exit
// status and captured stderr. The runner imposes no timeout and never retries;
// callers bound a call through its context, and cancelling the context kills
// the subprocess.
//
// Command lines are configured as argv templates and expanded with Expand.
package executor
