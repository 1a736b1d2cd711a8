package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/charmrelease/internal/executor"
)

type cliEnv struct {
	dir  string
	fake *executor.Fake
	out  *bytes.Buffer
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	env := &cliEnv{dir: t.TempDir(), out: &bytes.Buffer{}}
	env.fake = executor.NewFake().
		On("charm whoami", "User: oil-ci-bot").
		Respond("charm build", executor.Response{Effect: func(executor.Command) error {
			return os.MkdirAll(filepath.Join(env.dir, "builds", "weebl"), 0o750)
		}}).
		On("charm push", "url: cs:~oil-charms/weebl-7")
	return env
}

func (e *cliEnv) writeConfig(t *testing.T, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.dir, "charmrelease.yaml"), []byte(body), 0o600))
}

// run parses args as the real binary would and returns the exit code.
func (e *cliEnv) run(t *testing.T, args ...string) int {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("charmrelease"), kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)
	kctx, err := parser.Parse(append([]string{"-C", e.dir}, args...))
	require.NoError(t, err)

	g := &Global{Ctx: context.Background(), Runner: e.fake, Out: e.out}
	return Report(kctx.Run(g, &cli), false)
}

func TestRelease_DefaultCommand(t *testing.T) {
	env := newCLIEnv(t)

	code := env.run(t, "stable", "edge")
	assert.Equal(t, 0, code)
	assert.Contains(t, env.out.String(), "Logged in as oil-ci-bot\n")
	assert.Contains(t, env.out.String(), "This charm has been released to stable, edge.\n")
	assert.Len(t, env.fake.CallsWithPrefix("charm release cs:~oil-charms/weebl-7"), 2)

	_, err := os.Stat(filepath.Join(env.dir, "builds"))
	assert.True(t, os.IsNotExist(err))
}

func TestRelease_NoChannels(t *testing.T) {
	env := newCLIEnv(t)

	assert.Equal(t, 0, env.run(t))
	assert.Contains(t, env.out.String(), "This charm has not been released.\n")
	assert.Empty(t, env.fake.CallsWithPrefix("charm release"))
}

func TestRelease_DuplicateChannel(t *testing.T) {
	env := newCLIEnv(t)

	assert.Equal(t, 2, env.run(t, "stable", "stable"))
	assert.Empty(t, env.fake.Calls())
}

func TestRelease_DirtyTreeExitsZero(t *testing.T) {
	env := newCLIEnv(t)
	env.fake.On("bzr status", "unknown:\n  notes.txt")

	assert.Equal(t, 0, env.run(t, "stable"))
	assert.Empty(t, env.fake.CallsWithPrefix("charm build"))
}

func TestRelease_PushFailureUsesToolExitCode(t *testing.T) {
	env := newCLIEnv(t)
	env.fake.Fail("charm push", 4)

	assert.Equal(t, 4, env.run(t, "stable"))
	assert.Empty(t, env.fake.CallsWithPrefix("charm release"))
}

func TestRelease_InvalidConfig(t *testing.T) {
	env := newCLIEnv(t)
	env.writeConfig(t, "workspace:\n  build_dir: ../outside\n")

	assert.Equal(t, 7, env.run(t, "stable"))
	assert.Empty(t, env.fake.Calls())
}

func TestHistory_ListsJournaledRuns(t *testing.T) {
	env := newCLIEnv(t)
	env.writeConfig(t, "journal:\n  path: "+filepath.Join(env.dir, "runs.db")+"\n")

	require.Equal(t, 0, env.run(t, "edge"))
	env.out.Reset()

	require.Equal(t, 0, env.run(t, "history", "--limit", "5"))
	assert.Contains(t, env.out.String(), "OUTCOME")
	assert.Contains(t, env.out.String(), "cs:~oil-charms/weebl-7")
	assert.Contains(t, env.out.String(), "success")
}

func TestHistory_RequiresJournal(t *testing.T) {
	env := newCLIEnv(t)
	assert.Equal(t, 7, env.run(t, "history"))
}

func TestProvision(t *testing.T) {
	env := newCLIEnv(t)

	require.Equal(t, 0, env.run(t, "provision", "charm-tools", "bzr"))
	assert.Equal(t, []string{"sudo apt-get install -y charm-tools bzr"}, env.fake.CommandLines())

	env.fake.Fail("sudo apt-get", 100)
	assert.Equal(t, 8, env.run(t, "provision", "git"))
}

func TestDB_PassesConnectionThroughEnvironment(t *testing.T) {
	env := newCLIEnv(t)
	env.writeConfig(t, "database:\n  host: db.internal\n  port: 5433\n  user: weebl\n")

	require.Equal(t, 0, env.run(t, "db", "weebl", "--schema-only"))
	calls := env.fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "pg_dump weebl --schema-only", calls[0].String())
	assert.Equal(t, "db.internal", calls[0].Env["PGHOST"])
	assert.Equal(t, "5433", calls[0].Env["PGPORT"])
	assert.Equal(t, "weebl", calls[0].Env["PGDATABASE"])
}

func TestAdmin(t *testing.T) {
	env := newCLIEnv(t)

	require.Equal(t, 0, env.run(t, "admin", "migrate", "--noinput"))
	calls := env.fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "python3 manage.py migrate --noinput", calls[0].String())
	assert.Equal(t, env.dir, calls[0].Dir)
}

func TestInit(t *testing.T) {
	env := newCLIEnv(t)

	require.Equal(t, 0, env.run(t, "init"))
	_, err := os.Stat(filepath.Join(env.dir, "charmrelease.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 7, env.run(t, "init"))
	assert.Equal(t, 0, env.run(t, "init", "--force"))
}
