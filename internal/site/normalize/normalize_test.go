package normalize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitecfg/internal/site"
)

func TestNormalize_YokeDocument(t *testing.T) {
	raw := map[string]any{
		"title":   "yoke",
		"social":  map[string]any{"github": "https://github.com/yokecd/yoke"},
		"sidebar": []any{map[string]any{"slug": "concepts/flights"}},
	}

	cfg, res, err := Normalize(raw, Options{})
	require.NoError(t, err)
	require.Empty(t, res.Warnings)
	require.Equal(t, "yoke", cfg.Title)
	require.Equal(t, []site.SocialLink{{Label: "github", Href: "https://github.com/yokecd/yoke", Icon: "github"}}, cfg.Social)
	require.Equal(t, []site.NavNode{&site.Leaf{Slug: "concepts/flights"}}, cfg.Sidebar)
}

func TestNormalize_SocialMappingMatchesSequence(t *testing.T) {
	fromMap, _, err := Normalize(map[string]any{
		"title":  "x",
		"social": map[string]any{"github": "https://x"},
	}, Options{})
	require.NoError(t, err)

	fromSeq, _, err := Normalize(map[string]any{
		"title":  "x",
		"social": []any{map[string]any{"label": "github", "href": "https://x", "icon": "github"}},
	}, Options{})
	require.NoError(t, err)

	require.Equal(t, fromMap.Social, fromSeq.Social)
}

func TestNormalize_SocialMappingKeepsDocumentOrder(t *testing.T) {
	raw := site.OrderedMap{
		{Key: "title", Value: "x"},
		{Key: "social", Value: site.OrderedMap{
			{Key: "mastodon", Value: "https://m.example"},
			{Key: "discord", Value: "https://d.example"},
			{Key: "github", Value: "https://g.example"},
		}},
	}
	cfg, _, err := Normalize(raw, Options{})
	require.NoError(t, err)
	labels := make([]string, 0, len(cfg.Social))
	for _, s := range cfg.Social {
		labels = append(labels, s.Label)
	}
	require.Equal(t, []string{"mastodon", "discord", "github"}, labels)
}

func TestNormalize_SocialSequenceIconDefaultsAndRequiredFields(t *testing.T) {
	cfg, _, err := Normalize(map[string]any{
		"title": "x",
		"social": []any{
			map[string]any{"label": "discord", "href": "https://discord.gg/x"},
			map[string]any{"label": "github", "href": "https://github.com/x", "icon": "gh"},
		},
	}, Options{})
	require.NoError(t, err)
	require.Equal(t, "discord", cfg.Social[0].Icon)
	require.Equal(t, "gh", cfg.Social[1].Icon)

	_, _, err = Normalize(map[string]any{
		"title":  "x",
		"social": []any{map[string]any{"icon": "github"}},
	}, Options{})
	require.Error(t, err)
	diags := site.DiagnosticsOf(err)
	require.Equal(t, site.Diagnostics{
		{Path: "social[0]", Message: `missing required field "label"`},
		{Path: "social[0]", Message: `missing required field "href"`},
	}, diags)
}

func TestNormalize_SocialMappingValueMustBeString(t *testing.T) {
	_, _, err := Normalize(map[string]any{
		"title":  "x",
		"social": map[string]any{"github": 42},
	}, Options{})
	var nerr *site.NormalizationError
	require.ErrorAs(t, err, &nerr)
	require.Equal(t, "social.github", nerr.Diagnostics[0].Path)
}

func TestNormalize_Logo(t *testing.T) {
	cfg, _, err := Normalize(map[string]any{
		"title": "x",
		"logo":  map[string]any{"dark": "./dark.svg", "light": "./light.svg", "replacesTitle": true},
	}, Options{})
	require.NoError(t, err)
	require.Equal(t, &site.LogoAsset{Dark: "./dark.svg", Light: "./light.svg", ReplacesTitle: true}, cfg.Logo)

	cfg, _, err = Normalize(map[string]any{
		"title": "x",
		"logo":  map[string]any{"src": "./logo.svg", "alt": "Yoke"},
	}, Options{})
	require.NoError(t, err)
	require.Equal(t, &site.LogoAsset{Dark: "./logo.svg", Light: "./logo.svg", Alt: "Yoke"}, cfg.Logo)
}

func TestNormalize_LogoHalfPairFails(t *testing.T) {
	_, _, err := Normalize(map[string]any{
		"title": "x",
		"logo":  map[string]any{"dark": "./dark.svg"},
	}, Options{})
	var nerr *site.NormalizationError
	require.ErrorAs(t, err, &nerr)
	require.Len(t, nerr.Diagnostics, 1)
	require.Equal(t, "logo", nerr.Diagnostics[0].Path)
}

func TestNormalize_NestedSidebar(t *testing.T) {
	cfg, _, err := Normalize(map[string]any{
		"title": "x",
		"sidebar": []any{
			map[string]any{"label": "Concepts", "items": []any{
				map[string]any{"slug": "a"},
				map[string]any{"label": "Sub", "collapsed": true, "items": []any{map[string]any{"slug": "/b/"}}},
			}},
		},
	}, Options{})
	require.NoError(t, err)
	require.Equal(t, []site.NavNode{
		&site.Group{Label: "Concepts", Items: []site.NavNode{
			&site.Leaf{Slug: "a"},
			&site.Group{Label: "Sub", Collapsed: true, Items: []site.NavNode{&site.Leaf{Slug: "b"}}},
		}},
	}, cfg.Sidebar)
}

func TestNormalize_SidebarShapeErrorsNamePosition(t *testing.T) {
	_, _, err := Normalize(map[string]any{
		"title": "x",
		"sidebar": []any{
			map[string]any{"slug": "a"},
			map[string]any{"slug": "b"},
			map[string]any{"link": "https://example.com"},
			map[string]any{"label": "G", "items": []any{"oops"}},
			map[string]any{"slug": "c", "items": []any{}},
		},
	}, Options{})
	diags := site.DiagnosticsOf(err)
	require.Len(t, diags, 3)
	require.Equal(t, "sidebar[2]", diags[0].Path)
	require.Equal(t, "sidebar[3].items[0]", diags[1].Path)
	require.Equal(t, "sidebar[4]", diags[2].Path)
}

func TestNormalize_GroupRequiresLabel(t *testing.T) {
	_, _, err := Normalize(map[string]any{
		"title":   "x",
		"sidebar": []any{map[string]any{"items": []any{}}},
	}, Options{})
	diags := site.DiagnosticsOf(err)
	require.Equal(t, site.Diagnostics{{Path: "sidebar[0]", Message: `group is missing required field "label"`}}, diags)
}

func TestNormalize_Integrations(t *testing.T) {
	starlightOpts := map[string]any{"title": "Yoke"}
	cfg, res, err := Normalize(map[string]any{
		"title": "x",
		"integrations": []any{
			map[string]any{"starlight": starlightOpts},
			"react",
			map[string]any{"name": "sitemap", "options": map[string]any{"filter": "drafts"}, "extra": 1},
		},
	}, Options{})
	require.NoError(t, err)
	require.Equal(t, []site.IntegrationRef{
		{Name: "starlight", Options: starlightOpts},
		{Name: "react"},
		{Name: "sitemap", Options: map[string]any{"filter": "drafts"}},
	}, cfg.Integrations)
	require.Len(t, res.Warnings, 1)
}

func TestNormalize_UnknownTopLevelKeyWarns(t *testing.T) {
	_, res, err := Normalize(map[string]any{"title": "x", "theme": "dark"}, Options{})
	require.NoError(t, err)
	require.Equal(t, []string{`ignoring unknown key "theme"`}, res.Warnings)
}

func TestNormalize_DocumentMustBeMapping(t *testing.T) {
	_, _, err := Normalize([]any{"nope"}, Options{})
	var nerr *site.NormalizationError
	require.ErrorAs(t, err, &nerr)
	require.Equal(t, "", nerr.Diagnostics[0].Path)
}

func TestNormalize_LenientDropsAndReports(t *testing.T) {
	cfg, res, err := Normalize(map[string]any{
		"title":  "x",
		"social": []any{map[string]any{"label": "github", "href": "https://g"}, map[string]any{"label": "broken"}},
		"sidebar": []any{
			map[string]any{"slug": "a"},
			map[string]any{"nothing": true},
			map[string]any{"label": "G", "items": []any{map[string]any{"slug": "b"}, 7}},
		},
		"integrations": []any{42, "react"},
	}, Options{Lenient: true})
	require.NoError(t, err)
	require.Len(t, cfg.Social, 1)
	require.Len(t, cfg.Sidebar, 2)
	require.Len(t, cfg.Sidebar[1].(*site.Group).Items, 1)
	require.Len(t, cfg.Integrations, 1)

	paths := make([]string, 0, len(res.Dropped))
	for _, d := range res.Dropped {
		paths = append(paths, d.Path)
	}
	require.Equal(t, []string{"social[1]", "sidebar[1]", "sidebar[2].items[1]", "integrations[0]"}, paths)
}

func TestNormalize_LenientStillFailsOnTopLevelShape(t *testing.T) {
	_, _, err := Normalize(map[string]any{"title": 3, "sidebar": "nope"}, Options{Lenient: true})
	diags := site.DiagnosticsOf(err)
	require.Len(t, diags, 2)
	require.Equal(t, "title", diags[0].Path)
	require.Equal(t, "sidebar", diags[1].Path)
}
