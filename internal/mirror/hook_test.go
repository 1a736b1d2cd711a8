package mirror

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/charmrelease/internal/config"
	"git.home.luguber.info/inful/charmrelease/internal/executor"
)

// cloneBare seeds a bare repository with one commit and returns the bare
// path together with a working clone of it.
func cloneBare(t *testing.T) (string, *git.Repository, string) {
	t.Helper()
	bare := filepath.Join(t.TempDir(), "remote.git")
	_, err := git.PlainInit(bare, true)
	require.NoError(t, err)

	seed := initMirror(t, "Initial import", map[string]string{"metadata.yaml": "name: weebl\n"})
	seedRepo, err := git.PlainOpen(seed)
	require.NoError(t, err)
	_, err = seedRepo.CreateRemote(&ggitcfg.RemoteConfig{Name: "origin", URLs: []string{bare}})
	require.NoError(t, err)
	require.NoError(t, seedRepo.Push(&git.PushOptions{RemoteName: "origin"}))

	local := filepath.Join(t.TempDir(), "local")
	repo, err := git.PlainClone(local, false, &git.CloneOptions{URL: bare})
	require.NoError(t, err)
	return bare, repo, local
}

func commitFile(t *testing.T, repo *git.Repository, dir, name, content string) plumbing.Hash {
	t.Helper()
	writeFile(t, filepath.Join(dir, name), content)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)
	hash, err := wt.Commit("Sync weebl charm", &git.CommitOptions{Author: &object.Signature{Name: "tester", Email: "t@example.com", When: time.Now()}})
	require.NoError(t, err)
	return hash
}

func TestPushHook_PushesCommit(t *testing.T) {
	bare, repo, local := cloneBare(t)
	hash := commitFile(t, repo, local, "README.md", "new build")
	head, err := repo.Head()
	require.NoError(t, err)

	require.NoError(t, PushHook{}.AfterCommit(context.Background(), CommitInfo{Dir: local, Hash: hash.String(), Channel: "stable", Repository: bare}))

	remote, err := git.PlainOpen(bare)
	require.NoError(t, err)
	ref, err := remote.Reference(head.Name(), true)
	require.NoError(t, err)
	assert.Equal(t, hash, ref.Hash())
}

func TestPushHook_AlreadyUpToDate(t *testing.T) {
	bare, _, local := cloneBare(t)
	require.NoError(t, PushHook{}.AfterCommit(context.Background(), CommitInfo{Dir: local, Repository: bare}))
}

func TestPushHook_Errors(t *testing.T) {
	bare, repo, local := cloneBare(t)
	commitFile(t, repo, local, "README.md", "new build")

	err := PushHook{}.AfterCommit(context.Background(), CommitInfo{
		Dir:        local,
		Repository: bare,
		Auth:       &config.AuthConfig{Type: config.AuthTypeToken},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication")

	err = PushHook{}.AfterCommit(context.Background(), CommitInfo{Dir: t.TempDir(), Repository: bare})
	require.Error(t, err)
}

func TestCommandHook(t *testing.T) {
	f := executor.NewFake()
	hook := CommandHook{Runner: f, Command: []string{"git", "-C", "{{.WorkingDir}}", "push", "origin", "HEAD"}}

	require.NoError(t, hook.AfterCommit(context.Background(), CommitInfo{Dir: "/w/builds/weebl", Channel: "stable"}))
	assert.Equal(t, []string{"git -C /w/builds/weebl push origin HEAD"}, f.CommandLines())
}
