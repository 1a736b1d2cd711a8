// Package preflight verifies that a release may start: the charm checkout
// has no pending changes and the operator is logged in to the charm store.
package preflight

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/charmrelease/internal/executor"
	"git.home.luguber.info/inful/charmrelease/internal/logfields"
)

// Checker runs the preflight commands from the checkout directory.
type Checker struct {
	runner     executor.Runner
	workingDir string
	status     []string
	whoami     []string
}

// NewChecker creates a Checker. status and whoami are argv templates.
func NewChecker(runner executor.Runner, workingDir string, status, whoami []string) *Checker {
	return &Checker{runner: runner, workingDir: workingDir, status: status, whoami: whoami}
}

// CheckTreeClean fails with *DirtyWorkingTreeError if the status command
// prints anything.
func (c *Checker) CheckTreeClean(ctx context.Context) error {
	out, err := c.run(ctx, c.status)
	if err != nil {
		return err
	}
	if out != "" {
		slog.Debug("Working tree not clean", logfields.Path(c.workingDir))
		return &DirtyWorkingTreeError{Status: out}
	}
	return nil
}

// CheckAuthenticated returns the logged-in identity or fails with
// *NotAuthenticatedError.
func (c *Checker) CheckAuthenticated(ctx context.Context) (string, error) {
	out, err := c.run(ctx, c.whoami)
	if err != nil {
		return "", err
	}
	user, ok := ParseIdentity(out)
	if !ok {
		return "", &NotAuthenticatedError{Output: out}
	}
	slog.Info("Authenticated against charm store", logfields.Identity(user))
	return user, nil
}

// ParseIdentity finds the first line mentioning "user" (case-insensitive)
// and returns its second whitespace-separated token.
func ParseIdentity(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(strings.ToLower(line), "user") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		return fields[1], true
	}
	return "", false
}

func (c *Checker) run(ctx context.Context, argv []string) (string, error) {
	args, err := executor.Expand(argv, executor.Vars{WorkingDir: c.workingDir})
	if err != nil {
		return "", fmt.Errorf("preflight command: %w", err)
	}
	return c.runner.Run(ctx, executor.Command{Args: args, Dir: c.workingDir})
}
