package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
	"git.home.luguber.info/inful/sitecfg/internal/resolve"
)

// IndexCmd implements the 'index' command.
type IndexCmd struct {
	Format string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
}

func (i *IndexCmd) Run(g *Global, root *CLI) error {
	s, err := root.Settings()
	if err != nil {
		return err
	}
	ix, err := resolve.LoadIndex(context.Background(), s.Content)
	if err != nil {
		return errors.WrapError(err, errors.CategoryContent, "failed to build content index").Build()
	}

	if i.Format == "json" {
		enc := json.NewEncoder(g.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ix.Entries())
	}
	tw := tabwriter.NewWriter(g.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SLUG\tTITLE\tPATH")
	for _, e := range ix.Entries() {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Slug, e.Title, e.Path)
	}
	return tw.Flush()
}
