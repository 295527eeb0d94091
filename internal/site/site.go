// Package site defines the canonical documentation site configuration.
//
// A SiteConfig is produced by the normalize package from a raw document,
// certified by the validation package, and handed read-only to the site
// generator. Nothing mutates it after validation succeeds.
package site

// SiteConfig is the canonical, shape-independent site configuration.
type SiteConfig struct {
	Site         string           `json:"site,omitempty" yaml:"site,omitempty"`
	Base         string           `json:"base,omitempty" yaml:"base,omitempty"`
	Title        string           `json:"title" yaml:"title"`
	Logo         *LogoAsset       `json:"logo,omitempty" yaml:"logo,omitempty"`
	Social       []SocialLink     `json:"social,omitempty" yaml:"social,omitempty"`
	Sidebar      []NavNode        `json:"sidebar,omitempty" yaml:"sidebar,omitempty"`
	Integrations []IntegrationRef `json:"integrations,omitempty" yaml:"integrations,omitempty"`
}

// LogoAsset is the branding image pair. Dark and Light are set together or not at all.
type LogoAsset struct {
	Dark          string `json:"dark,omitempty" yaml:"dark,omitempty"`
	Light         string `json:"light,omitempty" yaml:"light,omitempty"`
	Alt           string `json:"alt,omitempty" yaml:"alt,omitempty"`
	ReplacesTitle bool   `json:"replacesTitle,omitempty" yaml:"replacesTitle,omitempty"`
}

// HasAssets reports whether both images are set.
func (l *LogoAsset) HasAssets() bool {
	return l != nil && l.Dark != "" && l.Light != ""
}

// SocialLink is one social channel. Label is unique within a SiteConfig.
type SocialLink struct {
	Label string `json:"label" yaml:"label"`
	Href  string `json:"href" yaml:"href"`
	Icon  string `json:"icon" yaml:"icon"`
}

// IntegrationRef names an external plugin. Options belong to the plugin and
// are never inspected here.
type IntegrationRef struct {
	Name    string `json:"name" yaml:"name"`
	Options any    `json:"options,omitempty" yaml:"options,omitempty"`
}

// Document converts the canonical configuration back into a raw document of
// the shape accepted by the normalizer. Social links are emitted in their
// record-sequence form.
func (c *SiteConfig) Document() map[string]any {
	doc := map[string]any{"title": c.Title}
	if c.Site != "" {
		doc["site"] = c.Site
	}
	if c.Base != "" {
		doc["base"] = c.Base
	}
	if c.Logo != nil {
		logo := map[string]any{}
		if c.Logo.Dark != "" {
			logo["dark"] = c.Logo.Dark
		}
		if c.Logo.Light != "" {
			logo["light"] = c.Logo.Light
		}
		if c.Logo.Alt != "" {
			logo["alt"] = c.Logo.Alt
		}
		if c.Logo.ReplacesTitle {
			logo["replacesTitle"] = true
		}
		doc["logo"] = logo
	}
	if len(c.Social) > 0 {
		social := make([]any, 0, len(c.Social))
		for _, s := range c.Social {
			social = append(social, map[string]any{"label": s.Label, "href": s.Href, "icon": s.Icon})
		}
		doc["social"] = social
	}
	if len(c.Sidebar) > 0 {
		doc["sidebar"] = nodesDocument(c.Sidebar)
	}
	if len(c.Integrations) > 0 {
		ints := make([]any, 0, len(c.Integrations))
		for _, in := range c.Integrations {
			entry := map[string]any{"name": in.Name}
			if in.Options != nil {
				entry["options"] = in.Options
			}
			ints = append(ints, entry)
		}
		doc["integrations"] = ints
	}
	return doc
}

func nodesDocument(nodes []NavNode) []any {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		switch node := n.(type) {
		case *Leaf:
			entry := map[string]any{"slug": node.Slug}
			if node.Label != "" {
				entry["label"] = node.Label
			}
			out = append(out, entry)
		case *Group:
			entry := map[string]any{"label": node.Label, "items": nodesDocument(node.Items)}
			if node.Collapsed {
				entry["collapsed"] = true
			}
			out = append(out, entry)
		}
	}
	return out
}
