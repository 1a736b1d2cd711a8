package release

import (
	"context"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/charmrelease/internal/build"
	"git.home.luguber.info/inful/charmrelease/internal/executor"
	"git.home.luguber.info/inful/charmrelease/internal/logfields"
)

// Options holds the argv templates for the two per-channel steps.
type Options struct {
	ReleaseCommand []string
	GrantCommand   []string
	Dir            string
}

// Stage releases an artifact to channels.
type Stage struct {
	runner executor.Runner
	opts   Options
}

// NewStage creates a release Stage.
func NewStage(runner executor.Runner, opts Options) *Stage {
	return &Stage{runner: runner, opts: opts}
}

// Release publishes art to every channel in order, granting public read
// access after each release. It returns the channels released; on error no
// partial list is returned and the error names the failing channel.
func (s *Stage) Release(ctx context.Context, art build.Artifact, channels []Channel) ([]Channel, error) {
	if len(channels) == 0 {
		slog.Info("No channels requested; skipping release", logfields.Artifact(art.ID))
		return nil, nil
	}

	released := make([]Channel, 0, len(channels))
	for _, ch := range channels {
		vars := executor.Vars{Artifact: art.ID, Channel: string(ch), BuildPath: art.Path}
		if err := s.step(ctx, "release", s.opts.ReleaseCommand, vars, ch); err != nil {
			return nil, err
		}
		if err := s.step(ctx, "grant", s.opts.GrantCommand, vars, ch); err != nil {
			return nil, err
		}
		slog.Info("Released", logfields.Artifact(art.ID), logfields.Channel(string(ch)))
		released = append(released, ch)
	}
	return released, nil
}

func (s *Stage) step(ctx context.Context, step string, argv []string, vars executor.Vars, ch Channel) error {
	args, err := executor.Expand(argv, vars)
	if err != nil {
		return &ReleaseError{Channel: ch, Step: step, Err: err}
	}
	if _, err := s.runner.Run(ctx, executor.Command{Args: args, Dir: s.opts.Dir}); err != nil {
		return &ReleaseError{Channel: ch, Step: step, Command: strings.Join(args, " "), Err: err}
	}
	return nil
}
