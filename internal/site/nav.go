package site

import (
	"encoding/json"
	"errors"
	"fmt"
)

// NavNode is a sidebar entry. The set of implementations is closed: *Leaf and *Group.
type NavNode interface {
	// Key is the sibling-uniqueness discriminant: the slug of a leaf or the label of a group.
	Key() string
	navNode()
}

// Leaf links a content page by slug. Label optionally overrides the page title.
type Leaf struct {
	Slug  string `json:"slug" yaml:"slug"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Group is a named collection of child nodes. Groups may nest.
type Group struct {
	Label     string    `json:"label" yaml:"label"`
	Collapsed bool      `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
	Items     []NavNode `json:"items" yaml:"items"`
}

func (l *Leaf) Key() string  { return l.Slug }
func (g *Group) Key() string { return g.Label }

func (*Leaf) navNode()  {}
func (*Group) navNode() {}

// Kind returns "leaf" or "group".
func Kind(n NavNode) string {
	switch n.(type) {
	case *Leaf:
		return "leaf"
	case *Group:
		return "group"
	default:
		panic(fmt.Sprintf("site: unknown nav node %T", n))
	}
}

// Walk visits every node depth-first in document order. fn receives the node's
// path (e.g. "sidebar[0].items[1]"); returning false skips a group's children.
// Walk assumes a tree; run it on validated configurations only.
func Walk(nodes []NavNode, prefix string, fn func(path string, n NavNode) bool) {
	for i, n := range nodes {
		p := fmt.Sprintf("%s[%d]", prefix, i)
		if !fn(p, n) {
			continue
		}
		if g, ok := n.(*Group); ok {
			Walk(g.Items, p+".items", fn)
		}
	}
}

// Slugs returns every leaf slug in document order.
func Slugs(nodes []NavNode) []string {
	var out []string
	Walk(nodes, "sidebar", func(_ string, n NavNode) bool {
		if l, ok := n.(*Leaf); ok {
			out = append(out, l.Slug)
		}
		return true
	})
	return out
}

// UnmarshalJSON decodes a SiteConfig previously written with encoding/json,
// restoring the sidebar variants from their field shapes.
func (c *SiteConfig) UnmarshalJSON(data []byte) error {
	type plain SiteConfig
	var aux struct {
		plain
		Sidebar []json.RawMessage `json:"sidebar"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	nodes, err := decodeNodes(aux.Sidebar)
	if err != nil {
		return err
	}
	*c = SiteConfig(aux.plain)
	c.Sidebar = nodes
	return nil
}

var errUnknownNode = errors.New("sidebar entry is neither a leaf nor a group")

func decodeNodes(raw []json.RawMessage) ([]NavNode, error) {
	if raw == nil {
		return nil, nil
	}
	out := make([]NavNode, 0, len(raw))
	for _, r := range raw {
		var shape struct {
			Slug      *string           `json:"slug"`
			Label     string            `json:"label"`
			Collapsed bool              `json:"collapsed"`
			Items     []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(r, &shape); err != nil {
			return nil, err
		}
		switch {
		case shape.Slug != nil:
			out = append(out, &Leaf{Slug: *shape.Slug, Label: shape.Label})
		case shape.Items != nil:
			items, err := decodeNodes(shape.Items)
			if err != nil {
				return nil, err
			}
			out = append(out, &Group{Label: shape.Label, Collapsed: shape.Collapsed, Items: items})
		default:
			return nil, errUnknownNode
		}
	}
	return out, nil
}
