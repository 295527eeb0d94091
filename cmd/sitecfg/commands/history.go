package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	"git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
	"git.home.luguber.info/inful/sitecfg/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int    `short:"n" help:"Number of runs to show" default:"20"`
	ID    string `arg:"" optional:"" help:"Show the diagnostics of one run"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	if root.HistoryDB == "" {
		return configError(fmt.Errorf("--history-db is required"))
	}
	store, err := history.NewSQLiteStore(root.HistoryDB)
	if err != nil {
		return errors.WrapError(err, errors.CategoryStore, "failed to open run history").Build()
	}
	defer store.Close()
	ctx := context.Background()

	if h.ID != "" {
		run, err := store.Get(ctx, h.ID)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(g.Stdout, "%s %s %s (%dms)\n", run.ID, run.Timestamp.Format("2006-01-02 15:04:05"), run.Status, run.DurationMS)
		for _, d := range run.Diagnostics {
			_, _ = fmt.Fprintf(g.Stdout, "  %s\n", d)
		}
		return nil
	}

	limit := h.Limit
	if limit <= 0 {
		limit = config.DefaultHistoryLimit
	}
	runs, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(g.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTIME\tSTATUS\tDIAGNOSTICS\tDURATION\tDOCUMENT")
	for _, r := range runs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%dms\t%s\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04:05"), r.Status, len(r.Diagnostics), r.DurationMS, r.Document)
	}
	return tw.Flush()
}
