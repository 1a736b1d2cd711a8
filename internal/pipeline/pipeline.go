package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/charmrelease/internal/build"
	"git.home.luguber.info/inful/charmrelease/internal/config"
	"git.home.luguber.info/inful/charmrelease/internal/executor"
	ferrors "git.home.luguber.info/inful/charmrelease/internal/foundation/errors"
	"git.home.luguber.info/inful/charmrelease/internal/journal"
	"git.home.luguber.info/inful/charmrelease/internal/logfields"
	"git.home.luguber.info/inful/charmrelease/internal/metrics"
	"git.home.luguber.info/inful/charmrelease/internal/mirror"
	"git.home.luguber.info/inful/charmrelease/internal/notify"
	"git.home.luguber.info/inful/charmrelease/internal/observability"
	"git.home.luguber.info/inful/charmrelease/internal/preflight"
	"git.home.luguber.info/inful/charmrelease/internal/release"
	"git.home.luguber.info/inful/charmrelease/internal/workspace"
)

// Stage names used in logs, metrics and error context.
const (
	StagePreflight = "preflight"
	StageBuild     = "build"
	StageRelease   = "release"
	StageMirror    = "mirror"
	StageCleanup   = "cleanup"
)

// errSkipped marks a stage that had nothing to do.
var errSkipped = errors.New("stage skipped")

// Preflighter checks that a run may start.
type Preflighter interface {
	CheckTreeClean(ctx context.Context) error
	CheckAuthenticated(ctx context.Context) (string, error)
}

// Builder produces the run's artifact.
type Builder interface {
	Build(ctx context.Context, ws *workspace.Context) (build.Artifact, error)
}

// Releaser publishes the artifact to channels.
type Releaser interface {
	Release(ctx context.Context, art build.Artifact, channels []release.Channel) ([]release.Channel, error)
}

// Mirrorer commits the build output to a mirror repository.
type Mirrorer interface {
	Mirror(ctx context.Context, ws *workspace.Context, art build.Artifact, released []release.Channel) (mirror.Result, error)
}

// Result summarizes a run. Fields are filled in as stages complete, so a
// failed run still reports how far it got.
type Result struct {
	RunID     string
	Identity  string
	Artifact  build.Artifact
	Requested []release.Channel
	Released  []release.Channel
	Mirror    mirror.Result
	Duration  time.Duration
	// FailedStage is empty when the run succeeded.
	FailedStage string
}

// Pipeline wires the stages of one release run.
type Pipeline struct {
	cfg       *config.Config
	ws        *workspace.Context
	preflight Preflighter
	builder   Builder
	releaser  Releaser
	mirrorer  Mirrorer
	hook      mirror.Hook
	recorder  metrics.Recorder
	journal   journal.Store
	notifier  notify.Notifier
	out       io.Writer
	newRunID  func() string
	now       func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithOutput sets where progress lines are printed (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(p *Pipeline) { p.out = w }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithJournal appends every finished run to store.
func WithJournal(store journal.Store) Option {
	return func(p *Pipeline) { p.journal = store }
}

// WithNotifier publishes successful releases through n.
func WithNotifier(n notify.Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// WithHook replaces the hook run after a mirror commit.
func WithHook(h mirror.Hook) Option {
	return func(p *Pipeline) { p.hook = h }
}

// WithPreflighter replaces the preflight checker.
func WithPreflighter(pf Preflighter) Option {
	return func(p *Pipeline) { p.preflight = pf }
}

// WithBuilder replaces the build stage.
func WithBuilder(b Builder) Option {
	return func(p *Pipeline) { p.builder = b }
}

// WithReleaser replaces the release stage.
func WithReleaser(r Releaser) Option {
	return func(p *Pipeline) { p.releaser = r }
}

// WithMirrorer replaces the mirror stage.
func WithMirrorer(m Mirrorer) Option {
	return func(p *Pipeline) { p.mirrorer = m }
}

// New creates a Pipeline whose stages run external commands through runner.
func New(cfg *config.Config, ws *workspace.Context, runner executor.Runner, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		ws:       ws,
		recorder: metrics.NoopRecorder{},
		notifier: notify.NopNotifier{},
		out:      os.Stdout,
		newRunID: uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.preflight == nil {
		p.preflight = preflight.NewChecker(runner, ws.WorkingDir, cfg.Commands.Status, cfg.Commands.Whoami)
	}
	if p.builder == nil {
		p.builder = build.NewStage(runner, build.Options{
			Charm:         cfg.Charm.Name,
			StoreLocation: cfg.Charm.StoreLocation,
			BuildCommand:  cfg.Commands.Build,
			ProofCommand:  cfg.Commands.Proof,
			PushCommand:   cfg.Commands.Push,
			Proof:         cfg.Proof.IsEnabled(),
		})
	}
	if p.releaser == nil {
		p.releaser = release.NewStage(runner, release.Options{
			ReleaseCommand: cfg.Commands.Release,
			GrantCommand:   cfg.Commands.Grant,
			Dir:            ws.WorkingDir,
		})
	}
	if p.mirrorer == nil {
		if p.hook == nil {
			p.hook = defaultHook(cfg, runner)
		}
		p.mirrorer = mirror.NewStage(mirror.Options{
			Targets:     cfg.Mirrors,
			AuthorName:  cfg.Mirror.AuthorName,
			AuthorEmail: cfg.Mirror.AuthorEmail,
		}, p.hook)
	}
	ws.WithOutput(p.out)
	return p
}

func defaultHook(cfg *config.Config, runner executor.Runner) mirror.Hook {
	switch {
	case len(cfg.Mirror.HookCommand) > 0:
		return mirror.CommandHook{Runner: runner, Command: cfg.Mirror.HookCommand}
	case cfg.Mirror.PushEnabled():
		return mirror.PushHook{}
	default:
		return mirror.NopHook{}
	}
}

// Run executes one release for req. The returned error is a
// *ferrors.ClassifiedError naming the failed stage.
func (p *Pipeline) Run(ctx context.Context, req release.Request) (*Result, error) {
	start := p.now()
	res := &Result{RunID: p.newRunID(), Requested: req.Channels}
	ctx = observability.WithRunID(ctx, res.RunID)

	for _, ch := range req.Channels {
		if !ch.IsConventional() {
			observability.WarnContext(ctx, "Releasing to a non-standard channel", logfields.Channel(string(ch)))
		}
	}
	observability.InfoContext(ctx, "Starting release run",
		logfields.Path(p.ws.WorkingDir),
		slog.String("channels", release.Join(req.Channels)))

	err := p.run(ctx, req, res)
	res.Duration = p.now().Sub(start)
	p.finish(ctx, res, err)
	return res, err
}

func (p *Pipeline) run(ctx context.Context, req release.Request, res *Result) (err error) {
	if err := p.stage(ctx, res, StagePreflight, func(ctx context.Context) error {
		if err := p.preflight.CheckTreeClean(ctx); err != nil {
			return err
		}
		identity, err := p.preflight.CheckAuthenticated(ctx)
		if err != nil {
			return err
		}
		res.Identity = identity
		return nil
	}); err != nil {
		return err
	}
	fmt.Fprintf(p.out, "Logged in as %s\n", res.Identity)

	defer func() {
		if cleanupErr := p.cleanup(ctx, res); cleanupErr != nil {
			if err == nil {
				err = cleanupErr
			} else {
				observability.WarnContext(ctx, "Cleanup failed after stage failure", logfields.Error(cleanupErr))
			}
		}
	}()

	if err := p.stage(ctx, res, StageBuild, func(ctx context.Context) error {
		art, err := p.builder.Build(ctx, p.ws)
		if err != nil {
			return err
		}
		res.Artifact = art
		return nil
	}); err != nil {
		return err
	}
	fmt.Fprintf(p.out, "The %s charm has been built and is temporarily in %s\n", res.Artifact.ID, res.Artifact.Path)

	if err := p.stage(ctx, res, StageRelease, func(ctx context.Context) error {
		released, err := p.releaser.Release(ctx, res.Artifact, req.Channels)
		p.recordChannels(req.Channels, released, err)
		if err != nil {
			return err
		}
		res.Released = released
		if len(req.Channels) == 0 {
			return errSkipped
		}
		return nil
	}); err != nil {
		return err
	}
	if len(res.Released) == 0 {
		fmt.Fprintln(p.out, "This charm has not been released.")
	} else {
		fmt.Fprintf(p.out, "This charm has been released to %s.\n", release.Join(res.Released))
	}

	if err := p.stage(ctx, res, StageMirror, func(ctx context.Context) error {
		mres, err := p.mirrorer.Mirror(ctx, p.ws, res.Artifact, res.Released)
		if err != nil {
			return err
		}
		res.Mirror = mres
		if !mres.Mirrored() {
			return errSkipped
		}
		return nil
	}); err != nil {
		return err
	}
	if res.Mirror.Mirrored() {
		fmt.Fprintf(p.out, "This charm has been mirrored for %s to %s.\n", res.Mirror.Channel, res.Mirror.Repository)
	}
	return nil
}

// stage runs fn as the named stage, recording its duration and result and
// classifying its error.
func (p *Pipeline) stage(ctx context.Context, res *Result, name string, fn func(ctx context.Context) error) error {
	ctx = observability.WithStage(ctx, name)
	observability.DebugContext(ctx, "Stage started")

	start := p.now()
	err := fn(ctx)
	elapsed := p.now().Sub(start)
	p.recorder.ObserveStageDuration(name, elapsed)

	if errors.Is(err, errSkipped) {
		p.recorder.IncStageResult(name, metrics.ResultSkipped)
		observability.DebugContext(ctx, "Stage skipped")
		return nil
	}
	if err != nil {
		res.FailedStage = name
		p.recorder.IncStageResult(name, stageResult(err))
		observability.DebugContext(ctx, "Stage failed", logfields.Error(err))
		return Classify(name, err)
	}
	p.recorder.IncStageResult(name, metrics.ResultSuccess)
	observability.DebugContext(ctx, "Stage finished", logfields.DurationMS(float64(elapsed.Milliseconds())))
	return nil
}

func (p *Pipeline) cleanup(ctx context.Context, res *Result) error {
	ctx = observability.WithStage(ctx, StageCleanup)
	start := p.now()
	err := p.ws.Cleanup()
	p.recorder.ObserveStageDuration(StageCleanup, p.now().Sub(start))
	if err != nil {
		p.recorder.IncStageResult(StageCleanup, metrics.ResultFailed)
		if res.FailedStage == "" {
			res.FailedStage = StageCleanup
		}
		return ferrors.FileSystemError("could not remove the working directories").
			WithCause(err).
			WithContext(ferrors.ContextStage, StageCleanup).
			Build()
	}
	p.recorder.IncStageResult(StageCleanup, metrics.ResultSuccess)
	observability.DebugContext(ctx, "Working directories removed")
	return nil
}

func (p *Pipeline) recordChannels(requested, released []release.Channel, err error) {
	for _, ch := range released {
		p.recorder.IncChannelRelease(string(ch), true)
	}
	var relErr *release.ReleaseError
	if errors.As(err, &relErr) {
		for _, ch := range requested {
			if ch == relErr.Channel {
				p.recorder.IncChannelRelease(string(ch), false)
				return
			}
			p.recorder.IncChannelRelease(string(ch), true)
		}
	}
}

// finish records the run outcome on every optional sink. Failures here are
// logged, never returned.
func (p *Pipeline) finish(ctx context.Context, res *Result, runErr error) {
	outcome := runOutcome(runErr)
	p.recorder.ObserveRunDuration(res.Duration)
	p.recorder.IncRunOutcome(outcome)
	if outcome == metrics.OutcomeSuccess {
		p.recorder.SetLastSuccess(p.now())
	}

	if p.journal != nil {
		entry := journal.Entry{
			RunID:      res.RunID,
			StartedAt:  p.now().Add(-res.Duration),
			Duration:   res.Duration,
			Identity:   res.Identity,
			Artifact:   res.Artifact.ID,
			Requested:  channelStrings(res.Requested),
			Released:   channelStrings(res.Released),
			MirroredTo: res.Mirror.Repository,
			Outcome:    string(outcome),
			Stage:      res.FailedStage,
		}
		if runErr != nil {
			entry.Error = runErr.Error()
		}
		if err := p.journal.Append(ctx, entry); err != nil {
			observability.WarnContext(ctx, "Failed to journal run", logfields.Error(err))
		}
	}

	if runErr == nil && len(res.Released) > 0 {
		ev := notify.ReleaseEvent{
			RunID:      res.RunID,
			Charm:      p.cfg.Charm.Name,
			Artifact:   res.Artifact.ID,
			Channels:   channelStrings(res.Released),
			Identity:   res.Identity,
			MirroredTo: res.Mirror.Repository,
			MirrorHead: res.Mirror.Commit,
		}
		if err := p.notifier.Notify(ctx, ev); err != nil {
			observability.WarnContext(ctx, "Failed to publish release notification", logfields.Error(err))
		}
	}

	if runErr == nil {
		observability.InfoContext(ctx, "Release run finished",
			logfields.Artifact(res.Artifact.ID),
			logfields.DurationMS(float64(res.Duration.Milliseconds())))
	}
}

func stageResult(err error) metrics.ResultLabel {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return metrics.ResultCanceled
	}
	return metrics.ResultFailed
}

func runOutcome(err error) metrics.OutcomeLabel {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCanceled
	}
	if c, ok := ferrors.AsClassified(err); ok && c.NeedsUserAction() {
		return metrics.OutcomeAborted
	}
	return metrics.OutcomeFailed
}

func channelStrings(chs []release.Channel) []string {
	out := make([]string, len(chs))
	for i, c := range chs {
		out[i] = string(c)
	}
	return out
}
