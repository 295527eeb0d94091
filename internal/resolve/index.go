package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	"git.home.luguber.info/inful/sitecfg/internal/content"
)

// IndexLoader builds the content index for a run.
type IndexLoader func(ctx context.Context) (*content.Index, error)

// LoadIndex builds the content index described by s.
func LoadIndex(_ context.Context, s config.ContentSettings) (*content.Index, error) {
	opts := content.Options{Extensions: s.Extensions, IncludeDrafts: s.IncludeDrafts}
	switch s.Source {
	case config.ContentSourceGit:
		return content.FromGit(s.Repo, s.Ref, s.Dir, opts)
	case config.ContentSourceList:
		f, err := os.Open(filepath.Clean(s.SlugsFile))
		if err != nil {
			return nil, fmt.Errorf("open slug list: %w", err)
		}
		defer f.Close()
		return content.ReadList(f)
	case config.ContentSourceDir, "":
		return content.FromDir(s.Dir, opts)
	default:
		return nil, fmt.Errorf("unsupported content source %q", s.Source)
	}
}
