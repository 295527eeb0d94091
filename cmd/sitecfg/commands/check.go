package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"git.home.luguber.info/inful/sitecfg/internal/resolve"
	"git.home.luguber.info/inful/sitecfg/internal/site"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Format string `short:"f" default:"text" help:"Report format (text or json)" enum:"text,json"`
}

type checkReport struct {
	RunID       string           `json:"run_id"`
	Document    string           `json:"document"`
	Status      string           `json:"status"`
	Warnings    []string         `json:"warnings,omitempty"`
	Dropped     site.Diagnostics `json:"dropped,omitempty"`
	Diagnostics site.Diagnostics `json:"diagnostics"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	s, err := root.Settings()
	if err != nil {
		return err
	}
	rt, err := newRuntime(s, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	out, runErr := rt.resolver.Run(context.Background())
	rt.flushMetrics()

	if c.Format == "json" {
		report := checkReport{
			RunID:       out.RunID,
			Document:    s.Document,
			Status:      string(out.Status),
			Warnings:    out.Warnings,
			Dropped:     out.Dropped,
			Diagnostics: out.Diagnostics,
		}
		if report.Diagnostics == nil {
			report.Diagnostics = site.Diagnostics{}
		}
		enc := json.NewEncoder(g.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
		return runErr
	}

	printFindings(g, out)
	if runErr != nil {
		return runErr
	}
	_, _ = fmt.Fprintf(g.Stdout, "%s: ok (%d sidebar entries, %d pages indexed)\n",
		s.Document, len(site.Slugs(out.Config.Sidebar)), out.Index.Len())
	return nil
}

// printFindings lists non-fatal findings on stderr.
func printFindings(g *Global, out *resolve.Outcome) {
	for _, w := range out.Warnings {
		_, _ = fmt.Fprintf(g.Stderr, "warning: %s\n", w)
	}
	for _, d := range out.Dropped {
		_, _ = fmt.Fprintf(g.Stderr, "dropped: %s\n", d)
	}
}
