package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	ferrors "git.home.luguber.info/inful/charmrelease/internal/foundation/errors"
	"git.home.luguber.info/inful/charmrelease/internal/journal"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of runs to show" default:"20"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Journal.Path == "" {
		return ferrors.ConfigError("run journal is not configured (journal.path)").Build()
	}
	store, err := journal.OpenSQLite(cfg.Journal.Path)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryStore, "could not open the run journal").
			WithContext(ferrors.ContextPath, cfg.Journal.Path).
			Build()
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Recent(g.Ctx, h.Limit)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryStore, "could not read the run journal").Build()
	}
	if len(entries) == 0 {
		fmt.Fprintln(g.Out, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tOUTCOME\tARTIFACT\tCHANNELS\tDURATION\tSTAGE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.StartedAt.Local().Format(time.DateTime),
			e.Outcome,
			dash(e.Artifact),
			dash(strings.Join(e.Released, ",")),
			e.Duration.Round(time.Second),
			dash(e.Stage))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
