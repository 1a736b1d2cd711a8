package workspace

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_DerivesPaths(t *testing.T) {
	base := t.TempDir()
	ws, err := New(base, "builds", "deps")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if ws.BuildDir != filepath.Join(base, "builds") {
		t.Errorf("unexpected build dir %s", ws.BuildDir)
	}
	if ws.DepsDir != filepath.Join(base, "deps") {
		t.Errorf("unexpected deps dir %s", ws.DepsDir)
	}
	if ws.BuildPath("weebl") != filepath.Join(base, "builds", "weebl") {
		t.Errorf("unexpected build path %s", ws.BuildPath("weebl"))
	}

	// Nothing may be created until a stage writes.
	if _, err := os.Stat(ws.BuildDir); !os.IsNotExist(err) {
		t.Errorf("New() must not create %s", ws.BuildDir)
	}
}

func TestNew_DefaultsToCurrentDirectory(t *testing.T) {
	ws, err := New("", "builds", "deps")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	wd, _ := os.Getwd()
	if ws.WorkingDir != wd {
		t.Errorf("expected %s, got %s", wd, ws.WorkingDir)
	}
}

func TestCleanup_RemovesBothDirectories(t *testing.T) {
	base := t.TempDir()
	var out bytes.Buffer
	ws, err := New(base, "builds", "deps")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	ws.WithOutput(&out)

	for _, p := range []string{ws.BuildPath("weebl"), ws.ScratchDir("mirror-stable")} {
		if err := os.MkdirAll(p, 0o750); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(p, "marker"), []byte("x"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	if err := ws.Cleanup(); err != nil {
		t.Fatalf("Cleanup() failed: %v", err)
	}

	for _, dir := range []string{ws.BuildDir, ws.DepsDir} {
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Errorf("directory still exists after cleanup: %s", dir)
		}
	}
	if !strings.Contains(out.String(), ws.BuildDir+" removed.") || !strings.Contains(out.String(), ws.DepsDir+" removed.") {
		t.Errorf("expected removal notices, got %q", out.String())
	}

	// The working directory itself is untouched.
	if _, err := os.Stat(base); err != nil {
		t.Errorf("working directory removed: %v", err)
	}
}

func TestCleanup_IdempotentWhenAbsent(t *testing.T) {
	var out bytes.Buffer
	ws, err := New(t.TempDir(), "builds", "deps")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	ws.WithOutput(&out)

	if err := ws.Cleanup(); err != nil {
		t.Fatalf("Cleanup() on absent dirs failed: %v", err)
	}
	if err := ws.Cleanup(); err != nil {
		t.Fatalf("second Cleanup() failed: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no notices for absent dirs, got %q", out.String())
	}
}

func TestCleanup_OnlyOneDirectoryPresent(t *testing.T) {
	ws, err := New(t.TempDir(), "builds", "deps")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := os.MkdirAll(ws.DepsDir, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := ws.Cleanup(); err != nil {
		t.Fatalf("Cleanup() failed: %v", err)
	}
	if _, err := os.Stat(ws.DepsDir); !os.IsNotExist(err) {
		t.Errorf("deps dir still exists")
	}
}
