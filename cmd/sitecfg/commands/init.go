package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// exampleDocument describes the Yoke documentation site.
const exampleDocument = `# Site document for sitecfg. Check it with: sitecfg check
site: https://yokecd.github.io
base: docs
title: Yoke
social:
  github: https://github.com/yokecd/yoke
sidebar:
  - slug: index
  - label: Concepts
    items:
      - slug: concepts/flights
      - slug: concepts/airways
integrations:
  - react
`

var examplePages = map[string]string{
	"index.md":            "---\ntitle: Yoke\n---\n\nInfrastructure as code, but actually code.\n",
	"concepts/flights.md": "# Flights\n",
	"concepts/airways.md": "# Airways\n",
}

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite an existing site document"`
	Pages bool `help:"Also create placeholder pages for the example sidebar"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	_, _ = fmt.Fprintf(g.Stdout, "Writing site document to %s\n", root.Document)
	if err := writeExample(root.Document, i.Force); err != nil {
		return err
	}
	if i.Pages {
		s, err := root.Settings()
		if err != nil {
			return err
		}
		for rel, body := range examplePages {
			p := filepath.Join(s.Content.Dir, filepath.FromSlash(rel))
			if err := writeFile(p, body, i.Force); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(g.Stdout, "Created %s\n", p)
		}
	}
	_, _ = fmt.Fprintln(g.Stdout, "initialized successfully")
	return nil
}

func writeExample(path string, force bool) error {
	return writeFile(path, exampleDocument, force)
}

func writeFile(path, body string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(body), 0o644)
}
