package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyChannel    = "channel"
	KeyArtifact   = "artifact"
	KeyCommand    = "command"
	KeyExitCode   = "exit_code"
	KeyPath       = "path"
	KeyRepository = "repository"
	KeyIdentity   = "identity"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr         { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr       { return slog.String(KeyStage, name) }
func Channel(c string) slog.Attr        { return slog.String(KeyChannel, c) }
func Artifact(id string) slog.Attr      { return slog.String(KeyArtifact, id) }
func Command(argv string) slog.Attr     { return slog.String(KeyCommand, argv) }
func ExitCode(code int) slog.Attr       { return slog.Int(KeyExitCode, code) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func Repository(r string) slog.Attr     { return slog.String(KeyRepository, r) }
func Identity(user string) slog.Attr    { return slog.String(KeyIdentity, user) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
