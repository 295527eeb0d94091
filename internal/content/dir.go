package content

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitecfg/internal/logfields"
)

// FromDir indexes every content file below root.
func FromDir(root string, opts Options) (*Index, error) {
	return FromFS(os.DirFS(root), ".", opts)
}

// FromFS indexes content files below dir in fsys. Hidden files and
// directories are skipped.
func FromFS(fsys fs.FS, dir string, opts Options) (*Index, error) {
	ix := New()
	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if p != dir && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || !opts.matches(name) {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, dir), "/")
		if dir == "." {
			rel = p
		}
		e, ok, err := readPage(rel, data, opts)
		if err != nil {
			return err
		}
		if ok && !ix.Add(e) {
			slog.Warn("Duplicate content slug, keeping first", logfields.Slug(e.Slug), logfields.Path(filepath.FromSlash(rel)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", dir, err)
	}
	return ix, nil
}
