// Package content builds the set of known page slugs that sidebar leaves are
// checked against.
package content

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Entry describes one indexed page.
type Entry struct {
	Slug  string `json:"slug"`
	Path  string `json:"path,omitempty"`
	Title string `json:"title,omitempty"`
}

// Index is a set of page slugs. The zero value is not usable; use New.
type Index struct {
	entries map[string]Entry
}

// New returns an empty index.
func New() *Index {
	return &Index{entries: make(map[string]Entry)}
}

// FromList builds an index from bare slugs.
func FromList(slugs ...string) *Index {
	ix := New()
	for _, s := range slugs {
		ix.Add(Entry{Slug: s})
	}
	return ix
}

// ReadList reads one slug per line. Blank lines and lines starting with # are skipped.
func ReadList(r io.Reader) (*Index, error) {
	ix := New()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ix.Add(Entry{Slug: line})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read slug list: %w", err)
	}
	return ix, nil
}

// Add inserts e under its normalized slug. The first entry for a slug wins;
// Add reports whether e was inserted.
func (ix *Index) Add(e Entry) bool {
	e.Slug = NormalizeSlug(e.Slug)
	if e.Slug == "" {
		return false
	}
	if _, dup := ix.entries[e.Slug]; dup {
		return false
	}
	ix.entries[e.Slug] = e
	return true
}

// Has reports whether slug names an indexed page. A nil index is empty.
func (ix *Index) Has(slug string) bool {
	if ix == nil {
		return false
	}
	_, ok := ix.entries[NormalizeSlug(slug)]
	return ok
}

// CanonicalSlug returns the form slug is indexed and looked up under.
func (ix *Index) CanonicalSlug(slug string) string {
	return NormalizeSlug(slug)
}

// Get returns the entry for slug.
func (ix *Index) Get(slug string) (Entry, bool) {
	if ix == nil {
		return Entry{}, false
	}
	e, ok := ix.entries[NormalizeSlug(slug)]
	return e, ok
}

// Len reports the number of indexed pages.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.entries)
}

// Slugs returns all slugs in sorted order.
func (ix *Index) Slugs() []string {
	if ix == nil {
		return nil
	}
	out := make([]string, 0, len(ix.entries))
	for s := range ix.entries {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Entries returns all entries sorted by slug.
func (ix *Index) Entries() []Entry {
	slugs := ix.Slugs()
	out := make([]Entry, 0, len(slugs))
	for _, s := range slugs {
		out = append(out, ix.entries[s])
	}
	return out
}

// Fingerprint is a stable sha256 over the sorted slug set.
func (ix *Index) Fingerprint() string {
	h := sha256.New()
	for _, s := range ix.Slugs() {
		_, _ = io.WriteString(h, s)
		_, _ = h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizeSlug canonicalizes a slug: NFC, forward slashes, lowercase and no
// leading or trailing slash.
func NormalizeSlug(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "\\", "/")
	s = strings.Trim(s, "/")
	if s == "" {
		return ""
	}
	return strings.ToLower(path.Clean(s))
}

// SlugFromPath derives a slug from a content-relative file path. The
// extension is stripped and an index file maps to its directory.
func SlugFromPath(rel string) string {
	rel = strings.ReplaceAll(rel, "\\", "/")
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	if dir, base := path.Split(rel); strings.EqualFold(base, "index") && dir != "" {
		rel = dir
	}
	return NormalizeSlug(rel)
}
