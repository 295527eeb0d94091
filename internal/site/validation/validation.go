// Package validation certifies a canonical site.SiteConfig before it is handed
// to the site generator. Every check runs in one pass and all violations are
// reported together.
package validation

import (
	"net/url"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/sitecfg/internal/site"
)

// ContentIndex is the collaborator-supplied set of known content slugs.
type ContentIndex interface {
	Has(slug string) bool
}

// SlugCanonicalizer is implemented by indexes that match slugs loosely, for
// example case-insensitively. Sibling leaves are then compared by their
// canonical form, so two spellings of one page count as a duplicate.
type SlugCanonicalizer interface {
	CanonicalSlug(slug string) string
}

// Validate checks cfg against its invariants and the content index. It returns
// nil when cfg is valid and a *site.ValidationError otherwise. A nil index is
// treated as empty.
func Validate(cfg *site.SiteConfig, index ContentIndex) error {
	v := &validator{index: index, seen: make(map[site.NavNode]string)}
	v.validate(cfg)
	if len(v.diags) > 0 {
		return &site.ValidationError{Diagnostics: v.diags}
	}
	return nil
}

type validator struct {
	index ContentIndex
	diags site.Diagnostics
	// seen maps every visited node object to its first path, catching aliasing and cycles.
	seen map[site.NavNode]string
}

func (v *validator) validate(cfg *site.SiteConfig) {
	if cfg == nil {
		v.diags.Add("", "configuration is nil")
		return
	}
	if strings.TrimSpace(cfg.Title) == "" {
		v.diags.Add("title", "must not be empty")
	}
	if cfg.Site != "" {
		if msg := checkAbsoluteURL(cfg.Site); msg != "" {
			v.diags.Add("site", "%s", msg)
		}
	}
	v.logo(cfg.Logo)
	v.social(cfg.Social)
	v.nodes(cfg.Sidebar, "sidebar")
	v.integrations(cfg.Integrations)
}

func (v *validator) logo(l *site.LogoAsset) {
	if l == nil {
		return
	}
	if (l.Dark == "") != (l.Light == "") {
		v.diags.Add("logo", `"dark" and "light" must be set together`)
	}
	if l.ReplacesTitle && !l.HasAssets() {
		v.diags.Add("logo.replacesTitle", "requires logo images to be set")
	}
}

func (v *validator) social(links []site.SocialLink) {
	first := make(map[string]int, len(links))
	for i, link := range links {
		path := indexPath("social", i)
		if link.Label == "" {
			v.diags.Add(path+".label", "must not be empty")
		} else if j, dup := first[link.Label]; dup {
			v.diags.Add(path+".label", "duplicate label %q (first at %s)", link.Label, indexPath("social", j))
		} else {
			first[link.Label] = i
		}
		if msg := checkAbsoluteURL(link.Href); msg != "" {
			v.diags.Add(path+".href", "%s", msg)
		}
	}
}

// nodes checks one sibling level. Uniqueness sets are per level, so the same
// slug may appear under different groups.
func (v *validator) nodes(nodes []site.NavNode, prefix string) {
	siblings := make(map[string]string, len(nodes))
	for i, n := range nodes {
		path := indexPath(prefix, i)
		if n == nil {
			v.diags.Add(path, "entry is empty")
			continue
		}
		if first, ok := v.seen[n]; ok {
			v.diags.Add(path, "entry is the same object as %s; navigation must be a tree", first)
			continue
		}
		v.seen[n] = path

		key := site.Kind(n) + ":" + v.siblingKey(n)
		switch node := n.(type) {
		case *site.Leaf:
			v.leaf(node, path, prefix, siblings[key])
		case *site.Group:
			v.group(node, path, prefix, siblings[key])
		}
		if _, dup := siblings[key]; !dup && n.Key() != "" {
			siblings[key] = path
		}
	}
}

func (v *validator) siblingKey(n site.NavNode) string {
	if l, ok := n.(*site.Leaf); ok {
		if c, ok := v.index.(SlugCanonicalizer); ok {
			return c.CanonicalSlug(l.Slug)
		}
	}
	return n.Key()
}

func (v *validator) leaf(l *site.Leaf, path, parent, dupOf string) {
	if l.Slug == "" {
		v.diags.Add(path+".slug", "must not be empty")
		return
	}
	if dupOf != "" {
		v.diags.Add(path+".slug", "duplicate slug %q in %s (first at %s)", l.Slug, parent, dupOf)
	}
	if v.index == nil || !v.index.Has(l.Slug) {
		v.diags.Add(path+".slug", "unknown slug: %s", l.Slug)
	}
}

func (v *validator) group(g *site.Group, path, parent, dupOf string) {
	if strings.TrimSpace(g.Label) == "" {
		v.diags.Add(path+".label", "must not be empty")
	} else if dupOf != "" {
		v.diags.Add(path+".label", "duplicate group label %q in %s (first at %s)", g.Label, parent, dupOf)
	}
	v.nodes(g.Items, path+".items")
}

func (v *validator) integrations(refs []site.IntegrationRef) {
	first := make(map[string]int, len(refs))
	for i, ref := range refs {
		path := indexPath("integrations", i) + ".name"
		if strings.TrimSpace(ref.Name) == "" {
			v.diags.Add(path, "must not be empty")
			continue
		}
		if j, dup := first[ref.Name]; dup {
			v.diags.Add(path, "plugin %q is registered twice (first at %s)", ref.Name, indexPath("integrations", j))
			continue
		}
		first[ref.Name] = i
	}
}

// checkAbsoluteURL returns an empty string for a well-formed absolute URL and
// a diagnostic message otherwise.
func checkAbsoluteURL(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "must be a URL, got empty string"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "malformed URL: " + raw
	}
	if u.Scheme == "" || u.Host == "" {
		return "must be an absolute URL: " + raw
	}
	return ""
}

func indexPath(prefix string, i int) string {
	return prefix + "[" + strconv.Itoa(i) + "]"
}
