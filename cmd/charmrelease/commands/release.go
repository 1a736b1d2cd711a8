package commands

import (
	"log/slog"

	"git.home.luguber.info/inful/charmrelease/internal/config"
	ferrors "git.home.luguber.info/inful/charmrelease/internal/foundation/errors"
	"git.home.luguber.info/inful/charmrelease/internal/journal"
	"git.home.luguber.info/inful/charmrelease/internal/logfields"
	"git.home.luguber.info/inful/charmrelease/internal/metrics"
	"git.home.luguber.info/inful/charmrelease/internal/notify"
	"git.home.luguber.info/inful/charmrelease/internal/pipeline"
	"git.home.luguber.info/inful/charmrelease/internal/release"
	"git.home.luguber.info/inful/charmrelease/internal/workspace"
)

// ReleaseCmd implements the default command.
type ReleaseCmd struct {
	Channels []string `arg:"" optional:"" help:"Channels to release to, in order (none: build and push only)"`
}

func (r *ReleaseCmd) Run(g *Global, root *CLI) error {
	req, err := release.NewRequest(r.Channels)
	if err != nil {
		return ferrors.ValidationError(err.Error()).WithCause(err).Build()
	}
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	ws, err := workspace.New(root.Workdir, cfg.Workspace.BuildDir, cfg.Workspace.DepsDir)
	if err != nil {
		return ferrors.FileSystemError(err.Error()).WithCause(err).Build()
	}

	s := openSinks(cfg)
	defer s.close()

	p := pipeline.New(cfg, ws, g.Runner,
		pipeline.WithOutput(g.Out),
		pipeline.WithRecorder(s.recorder),
		pipeline.WithJournal(s.journal),
		pipeline.WithNotifier(s.notifier),
	)
	_, err = p.Run(g.Ctx, req)
	return err
}

// sinks holds the optional run recorders. A sink that cannot be opened is
// disabled with a warning; it never blocks a release.
type sinks struct {
	recorder metrics.Recorder
	textfile string
	prom     *metrics.PrometheusRecorder
	journal  journal.Store
	notifier notify.Notifier
}

func openSinks(cfg *config.Config) *sinks {
	s := &sinks{recorder: metrics.NoopRecorder{}, notifier: notify.NopNotifier{}}

	if cfg.Metrics.Textfile != "" {
		s.prom = metrics.NewPrometheusRecorder(nil)
		s.recorder = s.prom
		s.textfile = cfg.Metrics.Textfile
	}
	if cfg.Journal.Path != "" {
		store, err := journal.OpenSQLite(cfg.Journal.Path)
		if err != nil {
			slog.Warn("Run journal disabled", logfields.Path(cfg.Journal.Path), logfields.Error(err))
		} else {
			s.journal = store
		}
	}
	if cfg.Notify.URL != "" {
		n, err := notify.NewNATSNotifier(cfg.Notify.URL, cfg.Notify.Subject)
		if err != nil {
			slog.Warn("Release notifications disabled", slog.String("url", cfg.Notify.URL), logfields.Error(err))
		} else {
			s.notifier = n
		}
	}
	return s
}

func (s *sinks) close() {
	if s.prom != nil {
		if err := s.prom.WriteTextfile(s.textfile); err != nil {
			slog.Warn("Failed to write metrics", logfields.Error(err))
		}
	}
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			slog.Warn("Failed to close run journal", logfields.Error(err))
		}
	}
	s.notifier.Close()
}
