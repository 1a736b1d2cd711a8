package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "charmrelease.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "charmrelease.yaml" {
			t.Errorf("expected context file=charmrelease.yaml, got %v", file)
		}
	})

	t.Run("Error detection through wrapping", func(t *testing.T) {
		err := ConfigError("test error").Build()
		wrapped := fmt.Errorf("loading: %w", err)

		got, ok := AsClassified(wrapped)
		if !ok || got != err {
			t.Error("expected wrapped error to be classified")
		}
		if !HasCategory(wrapped, CategoryConfig) {
			t.Error("expected error to have config category")
		}
		if err.Severity() != SeverityFatal {
			t.Error("expected config error to be fatal")
		}
		if HasCategory(errors.New("plain"), CategoryConfig) {
			t.Error("expected unclassified errors to carry no category")
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Wrap keeps cause", func(t *testing.T) {
		originalErr := errors.New("exit status 1")
		err := WrapError(originalErr, CategoryRelease, "release failed").
			WithContext(ContextChannel, "edge").
			WithContext(ContextExitCode, 3).
			Build()

		if !errors.Is(err, originalErr) {
			t.Error("expected errors.Is to find the cause")
		}
		if ch, _ := err.Context().GetString(ContextChannel); ch != "edge" {
			t.Errorf("expected channel edge, got %q", ch)
		}
		if code, _ := err.Context().GetInt(ContextExitCode); code != 3 {
			t.Errorf("expected exit code 3, got %d", code)
		}
	})

	t.Run("Empty string context is skipped", func(t *testing.T) {
		err := NewError(CategoryBuild, "x").WithContext(ContextChannel, "").Build()
		if _, ok := err.Context().Get(ContextChannel); ok {
			t.Error("expected empty channel to be omitted")
		}
	})

	t.Run("Filesystem error keeps cause", func(t *testing.T) {
		cause := errors.New("permission denied")
		err := FileSystemError("could not remove the working directories").WithCause(cause).Build()
		if err.Category() != CategoryFileSystem {
			t.Errorf("expected category %s, got %s", CategoryFileSystem, err.Category())
		}
		if !errors.Is(err, cause) {
			t.Error("expected errors.Is to find the cause")
		}
		if code := NewCLIErrorAdapter(false, nil).ExitCodeFor(err); code != 11 {
			t.Errorf("expected exit code 11, got %d", code)
		}
	})

	t.Run("User action", func(t *testing.T) {
		err := NewError(CategoryWorkingTree, "dirty").UserAction().Build()
		if !err.NeedsUserAction() {
			t.Error("expected user action retry strategy")
		}
	})
}
