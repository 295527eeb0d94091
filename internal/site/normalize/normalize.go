// Package normalize turns a raw, loosely typed site document into a canonical
// site.SiteConfig, absorbing the historical shapes the document has taken.
package normalize

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/sitecfg/internal/site"
)

// Options controls normalization behavior.
type Options struct {
	// Lenient drops malformed social, sidebar and integration entries instead
	// of failing. Every dropped entry is reported in Result.Dropped.
	Lenient bool
}

// Result captures non-fatal normalization findings.
type Result struct {
	Warnings []string
	Dropped  site.Diagnostics
}

var knownKeys = map[string]bool{
	"site": true, "base": true, "title": true, "logo": true,
	"social": true, "sidebar": true, "integrations": true,
}

// Normalize converts raw into a canonical SiteConfig. raw is the decoded
// document: nested mappings (site.OrderedMap or map[string]any), sequences
// ([]any) and scalars. On failure the error is a *site.NormalizationError
// listing every offending field path.
func Normalize(raw any, opts Options) (*site.SiteConfig, *Result, error) {
	n := &normalizer{opts: opts, res: &Result{}}
	cfg := n.document(raw)
	if len(n.diags) > 0 {
		return nil, n.res, &site.NormalizationError{Diagnostics: n.diags}
	}
	return cfg, n.res, nil
}

type normalizer struct {
	opts  Options
	res   *Result
	diags site.Diagnostics
}

// entry runs fn against a scratch diagnostics list. Problems either fail the
// run or, in lenient mode, drop the entry. It reports whether the entry is kept.
func (n *normalizer) entry(fn func(d *site.Diagnostics)) bool {
	var d site.Diagnostics
	fn(&d)
	if len(d) == 0 {
		return true
	}
	if n.opts.Lenient {
		n.res.Dropped = append(n.res.Dropped, d...)
	} else {
		n.diags = append(n.diags, d...)
	}
	return false
}

func (n *normalizer) warnf(format string, args ...any) {
	n.res.Warnings = append(n.res.Warnings, fmt.Sprintf(format, args...))
}

func (n *normalizer) document(raw any) *site.SiteConfig {
	root, ok := site.AsMapping(raw)
	if !ok {
		n.diags.Add("", "document must be a mapping, got %s", describe(raw))
		return nil
	}
	cfg := &site.SiteConfig{}
	for _, e := range root {
		if !knownKeys[e.Key] {
			n.warnf("ignoring unknown key %q", e.Key)
		}
	}
	cfg.Site = strings.TrimSpace(n.optionalString(root, "site", "site", &n.diags))
	cfg.Base = strings.TrimSpace(n.optionalString(root, "base", "base", &n.diags))
	cfg.Title = strings.TrimSpace(n.optionalString(root, "title", "title", &n.diags))

	if v, ok := root.Get("logo"); ok && v != nil {
		cfg.Logo = n.logo(v)
	}
	if v, ok := root.Get("social"); ok && v != nil {
		cfg.Social = n.social(v)
	}
	if v, ok := root.Get("sidebar"); ok && v != nil {
		seq, ok := site.AsSequence(v)
		if !ok {
			n.diags.Add("sidebar", "must be a list of entries, got %s", describe(v))
		} else {
			cfg.Sidebar = n.nodes(seq, "sidebar")
		}
	}
	if v, ok := root.Get("integrations"); ok && v != nil {
		cfg.Integrations = n.integrations(v)
	}
	// Empty collections are absent collections.
	if len(cfg.Social) == 0 {
		cfg.Social = nil
	}
	if len(cfg.Sidebar) == 0 {
		cfg.Sidebar = nil
	}
	if len(cfg.Integrations) == 0 {
		cfg.Integrations = nil
	}
	return cfg
}

func (n *normalizer) optionalString(m site.OrderedMap, key, path string, d *site.Diagnostics) string {
	v, ok := m.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.Add(path, "must be a string, got %s", describe(v))
		return ""
	}
	return s
}

func (n *normalizer) optionalBool(m site.OrderedMap, key, path string, d *site.Diagnostics) bool {
	v, ok := m.Get(key)
	if !ok || v == nil {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		d.Add(path, "must be a boolean, got %s", describe(v))
		return false
	}
	return b
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, uint64, float64:
		return "number"
	}
	if _, ok := site.AsMapping(v); ok {
		return "mapping"
	}
	if _, ok := site.AsSequence(v); ok {
		return "list"
	}
	return fmt.Sprintf("%T", v)
}
