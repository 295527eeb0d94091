package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugFromPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"intro.md", "intro"},
		{"guides/Getting-Started.mdx", "guides/getting-started"},
		{"guides/index.md", "guides"},
		{"index.md", "index"},
		{`concepts\flights.markdoc`, "concepts/flights"},
		{"café.md", "café"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, SlugFromPath(tt.in))
		})
	}
}

func TestIndexHasNormalizesQuery(t *testing.T) {
	ix := FromList("concepts/flights", "/guides/intro/")
	require.True(t, ix.Has("concepts/flights"))
	require.True(t, ix.Has("Guides/Intro"))
	require.False(t, ix.Has("concepts/airways"))
	require.Equal(t, []string{"concepts/flights", "guides/intro"}, ix.Slugs())

	require.Equal(t, "guides/intro", ix.CanonicalSlug("/Guides/Intro/"))

	var nilIndex *Index
	require.False(t, nilIndex.Has("x"))
	require.Zero(t, nilIndex.Len())
}

func TestIndexAddFirstWins(t *testing.T) {
	ix := New()
	require.True(t, ix.Add(Entry{Slug: "a", Title: "first"}))
	require.False(t, ix.Add(Entry{Slug: "A", Title: "second"}))
	require.False(t, ix.Add(Entry{Slug: " / "}))
	e, ok := ix.Get("a")
	require.True(t, ok)
	require.Equal(t, "first", e.Title)
}

func TestReadList(t *testing.T) {
	ix, err := ReadList(strings.NewReader("# slugs\nintro\n\n  guides/a  \n"))
	require.NoError(t, err)
	require.Equal(t, []string{"guides/a", "intro"}, ix.Slugs())
}

func TestFingerprintIsOrderIndependent(t *testing.T) {
	a := FromList("x", "y", "z")
	b := FromList("z", "x", "y")
	require.Equal(t, a.Fingerprint(), b.Fingerprint())
	require.NotEqual(t, a.Fingerprint(), FromList("x", "y").Fingerprint())
	require.Len(t, a.Fingerprint(), 64)
}
