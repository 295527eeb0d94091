package site

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sample() *SiteConfig {
	return &SiteConfig{
		Site:  "https://yokecd.github.io",
		Base:  "docs",
		Title: "Yoke",
		Logo:  &LogoAsset{Dark: "./d.svg", Light: "./l.svg", ReplacesTitle: true},
		Social: []SocialLink{
			{Label: "github", Href: "https://github.com/yokecd/yoke", Icon: "github"},
		},
		Sidebar: []NavNode{
			&Leaf{Slug: "intro"},
			&Group{Label: "Concepts", Collapsed: true, Items: []NavNode{
				&Leaf{Slug: "concepts/flights", Label: "Flights"},
				&Group{Label: "Empty", Items: []NavNode{}},
			}},
		},
		Integrations: []IntegrationRef{{Name: "react"}},
	}
}

func TestSiteConfigJSONRoundTrip(t *testing.T) {
	cfg := sample()
	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	var back SiteConfig
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, cfg, &back)
}

func TestSiteConfigUnmarshalRejectsUnknownNode(t *testing.T) {
	var cfg SiteConfig
	err := json.Unmarshal([]byte(`{"title":"x","sidebar":[{"link":"https://x"}]}`), &cfg)
	require.Error(t, err)
}

func TestDocumentUsesRecordSocialForm(t *testing.T) {
	doc := sample().Document()
	require.Equal(t, []any{map[string]any{"label": "github", "href": "https://github.com/yokecd/yoke", "icon": "github"}}, doc["social"])
	sidebar := doc["sidebar"].([]any)
	require.Len(t, sidebar, 2)
	require.Equal(t, map[string]any{"slug": "intro"}, sidebar[0])
	group := sidebar[1].(map[string]any)
	require.Equal(t, true, group["collapsed"])
	require.Equal(t, []any{}, group["items"].([]any)[1].(map[string]any)["items"])
}

func TestWalkAndSlugs(t *testing.T) {
	var paths []string
	Walk(sample().Sidebar, "sidebar", func(path string, n NavNode) bool {
		paths = append(paths, path+"="+Kind(n))
		return true
	})
	require.Equal(t, []string{
		"sidebar[0]=leaf",
		"sidebar[1]=group",
		"sidebar[1].items[0]=leaf",
		"sidebar[1].items[1]=group",
	}, paths)
	require.Equal(t, []string{"intro", "concepts/flights"}, Slugs(sample().Sidebar))
}

func TestOrderedMapEncoding(t *testing.T) {
	m := OrderedMap{{Key: "z", Value: 1}, {Key: "a", Value: OrderedMap{{Key: "k", Value: "v"}}}}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	require.Equal(t, `{"z":1,"a":{"k":"v"}}`, string(data))

	out, err := yaml.Marshal(m)
	require.NoError(t, err)
	require.Equal(t, "z: 1\na:\n    k: v\n", string(out))
}

func TestAsMappingSortsPlainMaps(t *testing.T) {
	m, ok := AsMapping(map[string]any{"b": 1, "a": 2})
	require.True(t, ok)
	require.Equal(t, OrderedMap{{Key: "a", Value: 2}, {Key: "b", Value: 1}}, m)

	_, ok = AsMapping([]any{})
	require.False(t, ok)
}

func TestDiagnosticsReporting(t *testing.T) {
	var ds Diagnostics
	ds.Add("sidebar[0].slug", "unknown slug: %s", "a")
	ds.Add("", "document must be a mapping")
	require.Equal(t, "sidebar[0].slug: unknown slug: a\ndocument must be a mapping", ds.String())

	err := fmt.Errorf("resolve: %w", &ValidationError{Diagnostics: ds})
	require.Equal(t, ds, DiagnosticsOf(err))
	require.Equal(t, "resolve: validation failed: sidebar[0].slug: unknown slug: a (and 1 more)", err.Error())
	require.Nil(t, DiagnosticsOf(errors.New("plain")))
}
