package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"git.home.luguber.info/inful/charmrelease/internal/executor"
	"git.home.luguber.info/inful/charmrelease/internal/logfields"
	"git.home.luguber.info/inful/charmrelease/internal/workspace"
)

// Artifact is the pushed charm revision.
type Artifact struct {
	// ID is the identifier assigned by the store, e.g. cs:~oil-charms/weebl-42.
	ID string
	// Path is the temporary build output the artifact was pushed from.
	Path string
}

// Options configures a Stage.
type Options struct {
	Charm         string
	StoreLocation string
	BuildCommand  []string
	ProofCommand  []string
	PushCommand   []string
	Proof         bool
}

// Stage builds, proofs and pushes the charm.
type Stage struct {
	runner executor.Runner
	opts   Options
}

// NewStage creates a build Stage.
func NewStage(runner executor.Runner, opts Options) *Stage {
	return &Stage{runner: runner, opts: opts}
}

// Build runs the builder in ws.WorkingDir, proofs the output and pushes it.
func (s *Stage) Build(ctx context.Context, ws *workspace.Context) (Artifact, error) {
	buildPath := ws.BuildPath(s.opts.Charm)
	vars := executor.Vars{
		WorkingDir:    ws.WorkingDir,
		BuildPath:     buildPath,
		StoreLocation: s.opts.StoreLocation,
	}

	slog.Info("Building charm", logfields.Path(ws.WorkingDir))
	if _, err := s.run(ctx, "build", s.opts.BuildCommand, vars, ws.WorkingDir, true); err != nil {
		return Artifact{}, err
	}
	if info, err := os.Stat(buildPath); err != nil || !info.IsDir() {
		return Artifact{}, &BuildError{
			Step: "build",
			Err:  fmt.Errorf("builder did not produce %s", buildPath),
		}
	}

	if s.opts.Proof {
		if err := s.proof(ctx, vars, ws.WorkingDir); err != nil {
			return Artifact{}, err
		}
	}

	slog.Info("Pushing charm", logfields.Path(buildPath), logfields.Repository(s.opts.StoreLocation))
	out, err := s.run(ctx, "push", s.opts.PushCommand, vars, ws.WorkingDir, false)
	if err != nil {
		return Artifact{}, err
	}
	id, err := ParseArtifactID(out)
	if err != nil {
		return Artifact{}, err
	}

	slog.Info("Charm pushed", logfields.Artifact(id))
	return Artifact{ID: id, Path: buildPath}, nil
}

// proof runs the lint step. Only a proof tool that never ran to completion
// is fatal.
func (s *Stage) proof(ctx context.Context, vars executor.Vars, dir string) error {
	args, err := executor.Expand(s.opts.ProofCommand, vars)
	if err != nil {
		return &BuildError{Step: "proof", Err: err}
	}
	out, err := s.runner.Run(ctx, executor.Command{Args: args, Dir: dir})
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			slog.Info("Proof", logfields.Stage("proof"), slog.String("finding", line))
		}
	}
	if err == nil {
		return nil
	}
	if cmdErr, ok := executor.AsCommandError(err); ok && cmdErr.Started() {
		slog.Warn("Proof reported problems; continuing with push",
			logfields.ExitCode(cmdErr.ExitCode),
			logfields.Command(cmdErr.Command()))
		return nil
	}
	return &BuildError{Step: "proof", Command: strings.Join(args, " "), Err: err}
}

func (s *Stage) run(ctx context.Context, step string, argv []string, vars executor.Vars, dir string, stream bool) (string, error) {
	args, err := executor.Expand(argv, vars)
	if err != nil {
		return "", &BuildError{Step: step, Err: err}
	}
	out, err := s.runner.Run(ctx, executor.Command{Args: args, Dir: dir, Stream: stream})
	if err != nil {
		return "", &BuildError{Step: step, Command: strings.Join(args, " "), Err: err}
	}
	return out, nil
}
