package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	s := String()
	require.True(t, strings.Contains(s, "commit "), s)
	require.True(t, strings.Contains(s, "built "+BuildTime), s)
}

func TestStringPrefersLdflags(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })
	Version = "v9.9.9"
	require.True(t, strings.HasPrefix(String(), "v9.9.9 "))
}
