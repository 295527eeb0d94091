package content

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// Options controls which files become index entries.
type Options struct {
	Extensions    []string // with leading dot; empty means DefaultExtensions
	IncludeDrafts bool
}

var DefaultExtensions = []string{".md", ".mdx", ".markdoc"}

var errUnclosedFrontmatter = errors.New("frontmatter opened with --- but never closed")

func (o Options) matches(name string) bool {
	exts := o.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	ext := strings.ToLower(path.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

type pageMeta struct {
	Slug  string `yaml:"slug"`
	Title string `yaml:"title"`
	Draft bool   `yaml:"draft"`
}

// readPage turns one file into an entry. ok is false for drafts that are
// excluded by opts.
func readPage(rel string, data []byte, opts Options) (e Entry, ok bool, err error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return Entry{}, false, fmt.Errorf("%s: %w", rel, err)
	}
	var meta pageMeta
	if len(fm) > 0 {
		if err := yaml.Unmarshal(fm, &meta); err != nil {
			return Entry{}, false, fmt.Errorf("%s: frontmatter: %w", rel, err)
		}
	}
	if meta.Draft && !opts.IncludeDrafts {
		return Entry{}, false, nil
	}
	e = Entry{Slug: SlugFromPath(rel), Path: rel, Title: strings.TrimSpace(meta.Title)}
	if s := NormalizeSlug(meta.Slug); s != "" {
		e.Slug = s
	}
	if e.Title == "" {
		e.Title = firstHeading(body)
	}
	return e, true, nil
}

// splitFrontmatter separates a leading --- delimited YAML block from the body.
func splitFrontmatter(data []byte) (fm, body []byte, err error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(data, []byte("---\n")) {
		return nil, data, nil
	}
	rest := data[len("---\n"):]
	if bytes.HasPrefix(rest, []byte("---\n")) {
		return nil, rest[len("---\n"):], nil
	}
	end := bytes.Index(rest, []byte("\n---\n"))
	if end < 0 {
		if bytes.HasSuffix(rest, []byte("\n---")) {
			return rest[:len(rest)-len("\n---")], nil, nil
		}
		return nil, nil, errUnclosedFrontmatter
	}
	return rest[:end+1], rest[end+len("\n---\n"):], nil
}

// firstHeading returns the text of the first level-1 heading, or "".
func firstHeading(body []byte) string {
	root := goldmark.New().Parser().Parse(text.NewReader(body))
	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		if h.Level == 1 {
			title = inlineText(h, body)
			return gmast.WalkStop, nil
		}
		return gmast.WalkSkipChildren, nil
	})
	return strings.TrimSpace(title)
}

func inlineText(n gmast.Node, src []byte) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return b.String()
}
