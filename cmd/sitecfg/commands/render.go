package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitecfg/internal/config"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	Format   string `short:"f" default:"json" help:"Output format (json or yaml)" enum:"json,yaml"`
	Manifest bool   `short:"m" help:"Emit the full resolution manifest instead of the configuration"`
	Output   string `short:"o" help:"Write to this file instead of stdout"`
}

func (r *RenderCmd) Run(g *Global, root *CLI) error {
	s, err := root.Settings()
	if err != nil {
		return err
	}
	s.Output = config.OutputSettings{Format: config.OutputFormat(r.Format), Manifest: r.Manifest, Path: r.Output}
	if _, err := config.Normalize(s); err != nil {
		return configError(err)
	}

	rt, err := newRuntime(s, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	out, runErr := rt.resolver.Run(context.Background())
	rt.flushMetrics()
	printFindings(g, out)
	// A failed run never emits a partial configuration.
	if runErr != nil {
		return runErr
	}

	var v any = out.Config
	if s.Output.Manifest {
		v = out.Manifest
	}
	data, err := encode(v, s.Output.Format)
	if err != nil {
		return err
	}
	if s.Output.Path == "" {
		_, err = g.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(s.Output.Path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.Output.Path, err)
	}
	return nil
}

func encode(v any, format config.OutputFormat) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case config.OutputFormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	default:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
	}
	return buf.Bytes(), nil
}
