package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/charmrelease/internal/auth"
	"git.home.luguber.info/inful/charmrelease/internal/build"
	"git.home.luguber.info/inful/charmrelease/internal/config"
	"git.home.luguber.info/inful/charmrelease/internal/logfields"
	"git.home.luguber.info/inful/charmrelease/internal/release"
	"git.home.luguber.info/inful/charmrelease/internal/workspace"
)

// Options configures a Stage.
type Options struct {
	Targets     []config.MirrorTarget
	AuthorName  string
	AuthorEmail string
}

// Result describes a completed mirror. A zero Result means nothing was
// mirrored.
type Result struct {
	Channel    release.Channel
	Repository string
	Summary    string
	// Commit is empty when the build output matched the mirror already.
	Commit string
}

// Mirrored reports whether a mirror target was processed.
func (r Result) Mirrored() bool { return r.Channel != "" }

// Stage mirrors build output into a git repository.
type Stage struct {
	opts Options
	hook Hook
	now  func() time.Time
}

// NewStage creates a mirror Stage. A nil hook is replaced by NopHook.
func NewStage(opts Options, hook Hook) *Stage {
	if hook == nil {
		hook = NopHook{}
	}
	return &Stage{opts: opts, hook: hook, now: time.Now}
}

// SelectTarget returns the target of the first channel in released that has
// one configured.
func SelectTarget(targets []config.MirrorTarget, released []release.Channel) (config.MirrorTarget, bool) {
	for _, ch := range released {
		for _, t := range targets {
			if t.Channel == string(ch) {
				return t, true
			}
		}
	}
	return config.MirrorTarget{}, false
}

// Mirror commits art's build output to the mirror of the first released
// channel that has one. Without a matching target it touches nothing.
func (s *Stage) Mirror(ctx context.Context, ws *workspace.Context, art build.Artifact, released []release.Channel) (Result, error) {
	target, ok := SelectTarget(s.opts.Targets, released)
	if !ok {
		slog.Debug("No mirror target for released channels")
		return Result{}, nil
	}
	ch := release.Channel(target.Channel)
	fail := func(step string, err error) (Result, error) {
		return Result{}, &MirrorError{Channel: ch, Repository: target.Repository, Step: step, Err: err}
	}

	checkout := ws.ScratchDir("mirror-" + target.Channel)
	if err := s.clone(ctx, target, checkout); err != nil {
		return fail("clone", err)
	}

	// A mirror that ever had build output committed must not nest it again.
	if err := os.RemoveAll(filepath.Join(checkout, filepath.Base(ws.BuildDir))); err != nil {
		return fail("prepare", err)
	}
	if err := copyDir(filepath.Join(checkout, git.GitDirName), filepath.Join(art.Path, git.GitDirName)); err != nil {
		return fail("copy", err)
	}

	repo, err := git.PlainOpen(art.Path)
	if err != nil {
		return fail("copy", err)
	}
	summary, err := headSummary(repo)
	if err != nil {
		return fail("summary", err)
	}

	hash, err := s.commit(repo, summary)
	if err != nil {
		return fail("commit", err)
	}
	res := Result{Channel: ch, Repository: target.Repository, Summary: summary}
	if hash.IsZero() {
		slog.Info("Build output matches mirror; nothing to commit",
			logfields.Channel(target.Channel), logfields.Repository(target.Repository))
		return res, nil
	}
	res.Commit = hash.String()

	slog.Info("Mirror commit created",
		logfields.Channel(target.Channel),
		logfields.Repository(target.Repository),
		slog.String("commit", res.Commit[:8]),
		slog.String("summary", summary))

	if err := s.hook.AfterCommit(ctx, CommitInfo{
		Dir:        art.Path,
		Hash:       res.Commit,
		Channel:    ch,
		Artifact:   art.ID,
		Repository: target.Repository,
		Auth:       target.Auth,
	}); err != nil {
		return fail("hook", err)
	}
	return res, nil
}

func (s *Stage) clone(ctx context.Context, target config.MirrorTarget, dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove existing directory: %w", err)
	}

	opts := &git.CloneOptions{URL: target.Repository}
	if target.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(target.Branch)
		opts.SingleBranch = true
	}
	method, err := auth.CreateAuth(target.Auth)
	if err != nil {
		return fmt.Errorf("failed to setup authentication: %w", err)
	}
	opts.Auth = method

	slog.Debug("Cloning mirror repository", logfields.Repository(target.Repository), logfields.Path(dir))
	if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
		return fmt.Errorf("failed to clone repository %s: %w", target.Repository, err)
	}
	return nil
}

// commit stages every change in the worktree, deletions included. It
// returns the zero hash when there is nothing to commit.
func (s *Stage) commit(repo *git.Repository, summary string) (plumbing.Hash, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to stage build output: %w", err)
	}
	hash, err := wt.Commit(summary, &git.CommitOptions{
		Author: &object.Signature{Name: s.opts.AuthorName, Email: s.opts.AuthorEmail, When: s.now()},
	})
	if errors.Is(err, git.ErrEmptyCommit) {
		return plumbing.ZeroHash, nil
	}
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to commit: %w", err)
	}
	return hash, nil
}

// headSummary returns the first line of the HEAD commit message.
func headSummary(repo *git.Repository) (string, error) {
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	c, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD commit: %w", err)
	}
	summary, _, _ := strings.Cut(strings.TrimSpace(c.Message), "\n")
	if summary = strings.TrimSpace(summary); summary == "" {
		return "", fmt.Errorf("HEAD commit %s has an empty message", ref.Hash())
	}
	return summary, nil
}
