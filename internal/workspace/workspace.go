package workspace

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/charmrelease/internal/logfields"
)

// Context is the working context of one pipeline run.
type Context struct {
	WorkingDir string
	BuildDir   string
	DepsDir    string

	// out receives the "<path> removed." notices.
	out io.Writer
}

// New derives a Context from workingDir and the configured directory names.
// Nothing is created on disk.
func New(workingDir, buildDirName, depsDirName string) (*Context, error) {
	if workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		workingDir = wd
	}
	abs, err := filepath.Abs(workingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return &Context{
		WorkingDir: abs,
		BuildDir:   filepath.Join(abs, buildDirName),
		DepsDir:    filepath.Join(abs, depsDirName),
		out:        io.Discard,
	}, nil
}

// WithOutput sets where removal notices are printed.
func (c *Context) WithOutput(w io.Writer) *Context {
	if w == nil {
		w = io.Discard
	}
	c.out = w
	return c
}

// BuildPath returns the build output directory for the named charm.
func (c *Context) BuildPath(charm string) string {
	return filepath.Join(c.BuildDir, charm)
}

// ScratchDir returns a directory for throwaway checkouts inside DepsDir.
func (c *Context) ScratchDir(name string) string {
	return filepath.Join(c.DepsDir, name)
}

// Cleanup removes BuildDir and DepsDir. Missing directories are not an
// error; both removals are attempted even if the first fails.
func (c *Context) Cleanup() error {
	var errs []error
	for _, dir := range []string{c.BuildDir, c.DepsDir} {
		if err := c.remove(dir); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Context) remove(dir string) error {
	if _, err := os.Lstat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to inspect %s: %w", dir, err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	slog.Debug("Removed workspace directory", logfields.Path(dir))
	fmt.Fprintf(c.out, "%s removed.\n", dir)
	return nil
}
