package errors

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
)

type customError struct{ msg string }

func (e *customError) Error() string { return e.msg }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, quietLogger())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "dirty working tree", err: NewError(CategoryWorkingTree, "dirty").UserAction().Build(), expected: 0},
		{name: "not logged in", err: NewError(CategoryAuth, "not logged in").UserAction().Build(), expected: 0},
		{name: "validation", err: ValidationError("bad channel").Build(), expected: 2},
		{name: "config", err: ConfigError("bad config").Build(), expected: 7},
		{name: "release without exit code", err: NewError(CategoryRelease, "release failed").Build(), expected: 8},
		{
			name:     "release propagates subprocess exit code",
			err:      NewError(CategoryRelease, "release failed").WithContext(ContextExitCode, 42).Build(),
			expected: 42,
		},
		{name: "build", err: NewError(CategoryBuild, "build failed").Build(), expected: 11},
		{name: "runtime", err: NewError(CategoryRuntime, "interrupted").Build(), expected: 12},
		{name: "internal", err: NewError(CategoryInternal, "boom").Build(), expected: 10},
		{name: "unclassified error", err: &customError{msg: "unknown error"}, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, quietLogger())

	err := WrapError(&customError{msg: "exit status 1"}, CategoryRelease, "release to channel failed").
		WithContext(ContextStage, "release").
		WithContext(ContextChannel, "edge").
		WithContext(ContextCommand, "charm release weebl-42 --channel edge").
		Build()

	msg := adapter.FormatError(err)
	for _, want := range []string{"release stage failed", "channel edge", "charm release weebl-42 --channel edge"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
	if strings.Contains(msg, "exit status 1") {
		t.Errorf("cause should only be shown in verbose mode: %q", msg)
	}

	verbose := NewCLIErrorAdapter(true, quietLogger())
	if !strings.Contains(verbose.FormatError(err), "exit status 1") {
		t.Error("expected cause in verbose output")
	}

	if got := adapter.FormatError(&customError{msg: "plain"}); got != "Error: plain" {
		t.Errorf("unexpected unclassified format %q", got)
	}
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var out, errOut bytes.Buffer
	adapter := NewCLIErrorAdapter(false, quietLogger()).WithWriters(&out, &errOut)

	code := adapter.Report(NewError(CategoryWorkingTree, "Repo not clean - commit changes and try again.").UserAction().Build())
	if code != 0 {
		t.Errorf("expected exit 0 for dirty tree, got %d", code)
	}
	if !strings.Contains(out.String(), "Repo not clean") {
		t.Errorf("expected message on stdout, got %q", out.String())
	}

	out.Reset()
	code = adapter.Report(NewError(CategoryAuth, "Not logged in.").UserAction().WithContext(ContextDetail, "No user logged in").Build())
	if code != 0 || !strings.Contains(out.String(), "No user logged in") {
		t.Errorf("expected raw identity output on stdout, code=%d out=%q", code, out.String())
	}

	code = adapter.Report(NewError(CategoryBuild, "build failed").WithContext(ContextStage, "build").Build())
	if code != 11 {
		t.Errorf("expected 11, got %d", code)
	}
	if !strings.Contains(errOut.String(), "build stage failed: build failed") {
		t.Errorf("expected diagnostic on stderr, got %q", errOut.String())
	}
}
