package collaborators

import (
	"context"
	"log/slog"
	"strconv"

	"git.home.luguber.info/inful/charmrelease/internal/executor"
	"git.home.luguber.info/inful/charmrelease/internal/logfields"
)

// Provisioner ensures host packages are installed.
type Provisioner interface {
	EnsureInstalled(ctx context.Context, names []string) (bool, error)
}

// AdminConfigurator runs site administration commands.
type AdminConfigurator interface {
	RunAdminCommand(ctx context.Context, args []string) (bool, error)
}

// DBUtility runs a database tool against an application's database.
type DBUtility interface {
	RunDBCommand(ctx context.Context, app string, conn ConnectionInfo, args []string) (bool, error)
}

// ConnectionInfo locates a database. It is passed to the tool through the
// libpq environment variables.
type ConnectionInfo struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

func (c ConnectionInfo) env() map[string]string {
	env := map[string]string{}
	set := func(k, v string) {
		if v != "" {
			env[k] = v
		}
	}
	set("PGHOST", c.Host)
	if c.Port > 0 {
		set("PGPORT", strconv.Itoa(c.Port))
	}
	set("PGUSER", c.User)
	set("PGPASSWORD", c.Password)
	set("PGDATABASE", c.Database)
	return env
}

// CommandProvisioner appends package names to a package manager argv.
type CommandProvisioner struct {
	Runner  executor.Runner
	Command []string
}

func (p CommandProvisioner) EnsureInstalled(ctx context.Context, names []string) (bool, error) {
	if len(names) == 0 {
		return true, nil
	}
	return exitStatus(p.Runner.Run(ctx, executor.Command{Args: concat(p.Command, names), Stream: true}))
}

// CommandAdmin prefixes admin arguments with a fixed argv, e.g. [python3, manage.py].
type CommandAdmin struct {
	Runner  executor.Runner
	Command []string
	Dir     string
}

func (a CommandAdmin) RunAdminCommand(ctx context.Context, args []string) (bool, error) {
	return exitStatus(a.Runner.Run(ctx, executor.Command{Args: concat(a.Command, args), Dir: a.Dir, Stream: true}))
}

// CommandDB runs a database tool with the application name as first argument.
type CommandDB struct {
	Runner  executor.Runner
	Command []string
}

func (d CommandDB) RunDBCommand(ctx context.Context, app string, conn ConnectionInfo, args []string) (bool, error) {
	argv := concat(d.Command, append([]string{app}, args...))
	return exitStatus(d.Runner.Run(ctx, executor.Command{Args: argv, Env: conn.env(), Stream: true}))
}

// exitStatus folds a run result into the collaborator contract: a tool that
// ran reports only success or failure.
func exitStatus(_ string, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if cmdErr, ok := executor.AsCommandError(err); ok && cmdErr.Started() {
		slog.Warn("Collaborator command failed",
			logfields.Command(cmdErr.Command()),
			logfields.ExitCode(cmdErr.ExitCode))
		return false, nil
	}
	return false, err
}

func concat(prefix, rest []string) []string {
	out := make([]string, 0, len(prefix)+len(rest))
	out = append(out, prefix...)
	return append(out, rest...)
}
