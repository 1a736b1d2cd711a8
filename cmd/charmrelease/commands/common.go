package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/charmrelease/internal/config"
	"git.home.luguber.info/inful/charmrelease/internal/executor"
	ferrors "git.home.luguber.info/inful/charmrelease/internal/foundation/errors"
	"git.home.luguber.info/inful/charmrelease/internal/observability"
)

// Global carries the process-wide dependencies handed to every command.
type Global struct {
	Ctx    context.Context
	Runner executor.Runner
	// Out receives user-facing progress lines.
	Out io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"charmrelease.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`
	Workdir string           `short:"C" name:"workdir" help:"Charm checkout to release (default: current directory)" type:"path"`

	Release   ReleaseCmd   `cmd:"" default:"withargs" help:"Build, push and release the charm to the given channels"`
	Provision ProvisionCmd `cmd:"" help:"Install the packages the build needs on this host"`
	Admin     AdminCmd     `cmd:"" help:"Run a site administration command"`
	DB        DBCmd        `cmd:"" name:"db" help:"Run the database tool against an application database"`
	History   HistoryCmd   `cmd:"" help:"List journaled release runs"`
	Init      InitCmd      `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; setup logging once. The configured
// level is applied later by loadConfig.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(observability.NewLogger(os.Stderr, observability.ParseLevel(c.Verbose, ""), ""))
	return nil
}

// configPath resolves a relative --config against --workdir.
func (c *CLI) configPath() string {
	if c.Workdir == "" || filepath.IsAbs(c.Config) {
		return c.Config
	}
	return filepath.Join(c.Workdir, c.Config)
}

// loadConfig reads the configuration and reapplies logging with its settings.
func (c *CLI) loadConfig() (*config.Config, error) {
	path := c.configPath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "could not load configuration: "+err.Error()).
			WithContext(ferrors.ContextPath, path).
			Build()
	}
	level := observability.ParseLevel(c.Verbose, string(cfg.Logging.Level))
	slog.SetDefault(observability.NewLogger(os.Stderr, level, string(cfg.Logging.Format)))
	slog.Debug("Configuration loaded", slog.String("path", path))
	return cfg, nil
}

// Report prints the diagnostic for err and returns the process exit code.
func Report(err error, verbose bool) int {
	return ferrors.NewCLIErrorAdapter(verbose, slog.Default()).Report(err)
}
