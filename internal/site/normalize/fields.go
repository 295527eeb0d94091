package normalize

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/sitecfg/internal/site"
)

var knownLogoKeys = map[string]bool{"dark": true, "light": true, "src": true, "alt": true, "replacesTitle": true}

// logo accepts {dark, light} or the single-image {src} form. A half pair is an error.
func (n *normalizer) logo(v any) *site.LogoAsset {
	m, ok := site.AsMapping(v)
	if !ok {
		n.diags.Add("logo", "must be a mapping, got %s", describe(v))
		return nil
	}
	for _, e := range m {
		if !knownLogoKeys[e.Key] {
			n.warnf("ignoring unknown key %q in logo", e.Key)
		}
	}
	logo := &site.LogoAsset{
		Dark:          strings.TrimSpace(n.optionalString(m, "dark", "logo.dark", &n.diags)),
		Light:         strings.TrimSpace(n.optionalString(m, "light", "logo.light", &n.diags)),
		Alt:           n.optionalString(m, "alt", "logo.alt", &n.diags),
		ReplacesTitle: n.optionalBool(m, "replacesTitle", "logo.replacesTitle", &n.diags),
	}
	if src := strings.TrimSpace(n.optionalString(m, "src", "logo.src", &n.diags)); src != "" {
		if logo.Dark == "" {
			logo.Dark = src
		}
		if logo.Light == "" {
			logo.Light = src
		}
	}
	switch {
	case logo.Dark != "" && logo.Light == "":
		n.diags.Add("logo", `"dark" is set without "light"; both images are required together`)
	case logo.Light != "" && logo.Dark == "":
		n.diags.Add("logo", `"light" is set without "dark"; both images are required together`)
	}
	return logo
}

// social accepts a label->URL mapping or a list of {label, href, icon} records.
func (n *normalizer) social(v any) []site.SocialLink {
	if m, ok := site.AsMapping(v); ok {
		links := make([]site.SocialLink, 0, len(m))
		for _, e := range m {
			path := "social." + e.Key
			var link site.SocialLink
			if n.entry(func(d *site.Diagnostics) {
				href, ok := e.Value.(string)
				if !ok {
					d.Add(path, "must be a URL string, got %s", describe(e.Value))
					return
				}
				label := strings.TrimSpace(e.Key)
				if label == "" {
					d.Add(path, "label must not be empty")
					return
				}
				link = site.SocialLink{Label: label, Href: strings.TrimSpace(href), Icon: label}
			}) {
				links = append(links, link)
			}
		}
		return links
	}
	seq, ok := site.AsSequence(v)
	if !ok {
		n.diags.Add("social", "must be a mapping of label to URL or a list of {label, href, icon} records, got %s", describe(v))
		return nil
	}
	links := make([]site.SocialLink, 0, len(seq))
	for i, item := range seq {
		path := fmt.Sprintf("social[%d]", i)
		var link site.SocialLink
		if n.entry(func(d *site.Diagnostics) {
			rec, ok := site.AsMapping(item)
			if !ok {
				d.Add(path, "must be a {label, href, icon} record, got %s", describe(item))
				return
			}
			link.Label = strings.TrimSpace(n.optionalString(rec, "label", path+".label", d))
			link.Href = strings.TrimSpace(n.optionalString(rec, "href", path+".href", d))
			link.Icon = strings.TrimSpace(n.optionalString(rec, "icon", path+".icon", d))
			if !rec.Has("label") {
				d.Add(path, "missing required field \"label\"")
			}
			if !rec.Has("href") {
				d.Add(path, "missing required field \"href\"")
			}
			if link.Icon == "" {
				link.Icon = link.Label
			}
		}) {
			links = append(links, link)
		}
	}
	return links
}

// nodes normalizes a sidebar sequence. Entries are {slug} leaves or {label, items} groups.
func (n *normalizer) nodes(seq []any, prefix string) []site.NavNode {
	out := make([]site.NavNode, 0, len(seq))
	for i, item := range seq {
		path := fmt.Sprintf("%s[%d]", prefix, i)
		var node site.NavNode
		if n.entry(func(d *site.Diagnostics) { node = n.node(item, path, d) }) && node != nil {
			out = append(out, node)
		}
	}
	return out
}

func (n *normalizer) node(item any, path string, d *site.Diagnostics) site.NavNode {
	m, ok := site.AsMapping(item)
	if !ok {
		d.Add(path, "expected {slug} or {label, items}, got %s", describe(item))
		return nil
	}
	hasSlug, hasItems := m.Has("slug"), m.Has("items")
	switch {
	case hasSlug && hasItems:
		d.Add(path, "ambiguous entry: has both slug and items")
		return nil
	case hasSlug:
		raw, _ := m.Get("slug")
		slug, ok := raw.(string)
		if !ok {
			d.Add(path+".slug", "must be a string, got %s", describe(raw))
			return nil
		}
		slug = strings.Trim(strings.TrimSpace(slug), "/")
		if slug == "" {
			d.Add(path+".slug", "must not be empty")
			return nil
		}
		label := strings.TrimSpace(n.optionalString(m, "label", path+".label", d))
		return &site.Leaf{Slug: slug, Label: label}
	case hasItems:
		if !m.Has("label") {
			d.Add(path, "group is missing required field \"label\"")
			return nil
		}
		label := strings.TrimSpace(n.optionalString(m, "label", path+".label", d))
		collapsed := n.optionalBool(m, "collapsed", path+".collapsed", d)
		raw, _ := m.Get("items")
		seq, ok := site.AsSequence(raw)
		if raw == nil {
			seq, ok = []any{}, true
		}
		if !ok {
			d.Add(path+".items", "must be a list of entries, got %s", describe(raw))
			return nil
		}
		if len(*d) > 0 {
			return nil
		}
		return &site.Group{Label: label, Collapsed: collapsed, Items: n.nodes(seq, path+".items")}
	default:
		d.Add(path, "expected {slug} or {label, items}")
		return nil
	}
}

// integrations records each plugin's declared name and keeps its options verbatim.
func (n *normalizer) integrations(v any) []site.IntegrationRef {
	seq, ok := site.AsSequence(v)
	if !ok {
		n.diags.Add("integrations", "must be a list of plugin registrations, got %s", describe(v))
		return nil
	}
	refs := make([]site.IntegrationRef, 0, len(seq))
	for i, item := range seq {
		path := fmt.Sprintf("integrations[%d]", i)
		var ref site.IntegrationRef
		if n.entry(func(d *site.Diagnostics) { ref = n.integration(item, path, d) }) {
			refs = append(refs, ref)
		}
	}
	return refs
}

func (n *normalizer) integration(item any, path string, d *site.Diagnostics) site.IntegrationRef {
	if name, ok := item.(string); ok {
		return site.IntegrationRef{Name: strings.TrimSpace(name)}
	}
	m, ok := site.AsMapping(item)
	if !ok {
		d.Add(path, "expected a plugin name, {name, options} or {<name>: options}, got %s", describe(item))
		return site.IntegrationRef{}
	}
	if m.Has("name") {
		ref := site.IntegrationRef{Name: strings.TrimSpace(n.optionalString(m, "name", path+".name", d))}
		ref.Options, _ = m.Get("options")
		for _, e := range m {
			if e.Key != "name" && e.Key != "options" {
				n.warnf("ignoring unknown key %q in %s", e.Key, path)
			}
		}
		return ref
	}
	if len(m) == 1 {
		return site.IntegrationRef{Name: strings.TrimSpace(m[0].Key), Options: m[0].Value}
	}
	d.Add(path, "expected a plugin name, {name, options} or {<name>: options}")
	return site.IntegrationRef{}
}
