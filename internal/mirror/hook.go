package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"

	"git.home.luguber.info/inful/charmrelease/internal/auth"
	"git.home.luguber.info/inful/charmrelease/internal/config"
	"git.home.luguber.info/inful/charmrelease/internal/executor"
	"git.home.luguber.info/inful/charmrelease/internal/logfields"
	"git.home.luguber.info/inful/charmrelease/internal/release"
)

// CommitInfo describes the mirror commit handed to a Hook.
type CommitInfo struct {
	Dir        string
	Hash       string
	Channel    release.Channel
	Artifact   string
	Repository string
	Auth       *config.AuthConfig
}

// Hook propagates a mirror commit upstream.
type Hook interface {
	AfterCommit(ctx context.Context, c CommitInfo) error
}

// NopHook leaves the commit where it is.
type NopHook struct{}

func (NopHook) AfterCommit(context.Context, CommitInfo) error { return nil }

// PushHook pushes the mirror branch back to the repository it was cloned
// from, authenticating with the target's auth settings.
type PushHook struct{}

func (PushHook) AfterCommit(ctx context.Context, c CommitInfo) error {
	repo, err := git.PlainOpen(c.Dir)
	if err != nil {
		return fmt.Errorf("failed to open mirror working copy: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	method, err := auth.CreateAuth(c.Auth)
	if err != nil {
		return fmt.Errorf("failed to setup authentication: %w", err)
	}

	refSpec := gitconfig.RefSpec(head.Name().String() + ":" + head.Name().String())
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: git.DefaultRemoteName,
		RefSpecs:   []gitconfig.RefSpec{refSpec},
		Auth:       method,
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		slog.Debug("Mirror already up to date", logfields.Repository(c.Repository))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to push %s to %s: %w", head.Name().Short(), c.Repository, err)
	}
	slog.Info("Mirror commit pushed",
		logfields.Repository(c.Repository),
		slog.String("branch", head.Name().Short()))
	return nil
}

// CommandHook runs a configured argv template in the mirror working copy.
type CommandHook struct {
	Runner  executor.Runner
	Command []string
}

func (h CommandHook) AfterCommit(ctx context.Context, c CommitInfo) error {
	args, err := executor.Expand(h.Command, executor.Vars{
		WorkingDir: c.Dir,
		BuildPath:  c.Dir,
		Artifact:   c.Artifact,
		Channel:    string(c.Channel),
	})
	if err != nil {
		return err
	}
	_, err = h.Runner.Run(ctx, executor.Command{Args: args, Dir: c.Dir, Stream: true})
	return err
}
