package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/charmrelease/internal/build"
	"git.home.luguber.info/inful/charmrelease/internal/executor"
	ferrors "git.home.luguber.info/inful/charmrelease/internal/foundation/errors"
	"git.home.luguber.info/inful/charmrelease/internal/mirror"
	"git.home.luguber.info/inful/charmrelease/internal/preflight"
	"git.home.luguber.info/inful/charmrelease/internal/release"
)

// Classify maps a stage error onto the ClassifiedError scheme used by the
// CLI, attaching the stage, channel, command and subprocess exit code.
// Already classified errors are returned unchanged.
func Classify(stage string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := ferrors.AsClassified(err); ok {
		return err
	}

	var (
		dirty     *preflight.DirtyWorkingTreeError
		notAuth   *preflight.NotAuthenticatedError
		malformed *build.MalformedStoreOutputError
		buildErr  *build.BuildError
		relErr    *release.ReleaseError
		mirErr    *mirror.MirrorError
	)

	var b *ferrors.ErrorBuilder
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		b = ferrors.WrapError(err, ferrors.CategoryRuntime, "interrupted")
		if errors.As(err, &relErr) {
			b.WithContext(ferrors.ContextChannel, string(relErr.Channel))
		}
	case errors.As(err, &dirty):
		b = ferrors.WrapError(err, ferrors.CategoryWorkingTree, "Repo not clean - commit changes and try again.").
			UserAction()
	case errors.As(err, &notAuth):
		msg := strings.TrimSpace(notAuth.Output)
		if msg == "" {
			msg = "Not logged in to the charm store."
		}
		b = ferrors.WrapError(err, ferrors.CategoryAuth, msg).UserAction()
	case errors.As(err, &malformed):
		b = ferrors.WrapError(err, ferrors.CategoryStore, "could not find the artifact identifier in the push output").
			WithContext(ferrors.ContextDetail, malformed.Output)
	case errors.As(err, &buildErr):
		category := ferrors.CategoryBuild
		if buildErr.Step == "push" {
			category = ferrors.CategoryStore
		}
		b = ferrors.WrapError(err, category, commandMessage(fmt.Sprintf("could not %s the charm", buildErr.Step), buildErr.Err)).
			WithContext(ferrors.ContextCommand, buildErr.Command)
	case errors.As(err, &relErr):
		b = ferrors.WrapError(err, ferrors.CategoryRelease, commandMessage(fmt.Sprintf("could not %s the artifact", relErr.Step), relErr.Err)).
			WithContext(ferrors.ContextChannel, string(relErr.Channel)).
			WithContext(ferrors.ContextCommand, relErr.Command)
	case errors.As(err, &mirErr):
		b = ferrors.WrapError(err, ferrors.CategoryMirror, commandMessage(fmt.Sprintf("mirror %s step failed", mirErr.Step), mirErr.Err)).
			WithContext(ferrors.ContextChannel, string(mirErr.Channel)).
			WithContext(ferrors.ContextRepository, mirErr.Repository)
	default:
		if _, ok := executor.AsCommandError(err); ok {
			b = ferrors.WrapError(err, ferrors.CategoryCommand, commandMessage("command failed", err))
		} else {
			b = ferrors.WrapError(err, ferrors.CategoryRuntime, err.Error())
		}
	}

	b.WithContext(ferrors.ContextStage, stage)
	if cmdErr, ok := executor.AsCommandError(err); ok {
		b.WithContext(ferrors.ContextCommand, cmdErr.Command())
		if cmdErr.ExitCode > 0 {
			b.WithContext(ferrors.ContextExitCode, cmdErr.ExitCode)
		}
	}
	return b.Build()
}

// commandMessage appends the reason: the first stderr line of a failed
// subprocess, or the error text otherwise.
func commandMessage(msg string, err error) string {
	cmdErr, ok := executor.AsCommandError(err)
	switch {
	case err == nil:
		return msg
	case !ok:
		return msg + ": " + err.Error()
	case !cmdErr.Started() && cmdErr.Err != nil:
		return msg + ": " + cmdErr.Err.Error()
	}
	stderr := strings.TrimSpace(cmdErr.Stderr)
	if stderr == "" {
		return fmt.Sprintf("%s (exit status %d)", msg, cmdErr.ExitCode)
	}
	line, _, _ := strings.Cut(stderr, "\n")
	return msg + ": " + line
}
