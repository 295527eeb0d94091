package content

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/sitecfg/internal/logfields"
)

// FromGit indexes the content directory dir of the tree at ref in the
// repository at repoPath, without touching the worktree. An empty ref means HEAD.
func FromGit(repoPath, ref, dir string, opts Options) (*Index, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", repoPath, err)
	}
	if ref == "" {
		ref = "HEAD"
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", ref, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("tree %s: %w", hash, err)
	}
	dir = strings.Trim(path.Clean("/"+strings.ReplaceAll(dir, "\\", "/")), "/")
	if dir != "" {
		if tree, err = tree.Tree(dir); err != nil {
			return nil, fmt.Errorf("content dir %s at %s: %w", dir, ref, err)
		}
	}

	ix := New()
	files := tree.Files()
	defer files.Close()
	for {
		f, err := files.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("walk %s at %s: %w", dir, ref, err)
		}
		if f.Mode == filemode.Symlink || hidden(f.Name) || !opts.matches(f.Name) {
			continue
		}
		e, ok, err := readGitPage(f, opts)
		if err != nil {
			return nil, err
		}
		if ok && !ix.Add(e) {
			slog.Warn("Duplicate content slug, keeping first", logfields.Slug(e.Slug), logfields.Path(f.Name), logfields.Ref(ref))
		}
	}
	slog.Debug("Indexed content from git", logfields.Ref(ref), logfields.Path(dir), logfields.Count(ix.Len()), slog.String("commit", hash.String()))
	return ix, nil
}

func readGitPage(f *object.File, opts Options) (Entry, bool, error) {
	contents, err := f.Contents()
	if err != nil {
		return Entry{}, false, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return readPage(f.Name, []byte(contents), opts)
}

func hidden(p string) bool {
	for _, part := range strings.Split(p, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
