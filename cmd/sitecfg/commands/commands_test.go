package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	"git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
	"git.home.luguber.info/inful/sitecfg/internal/manifest"
)

type cliRun struct {
	stdout, stderr bytes.Buffer
	err            error
}

func run(t *testing.T, args ...string) *cliRun {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Name("sitecfg"), kong.Vars{"version": "test"}, kong.Exit(func(int) { t.Fatalf("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)

	r := &cliRun{}
	r.err = kctx.Run(&Global{Stdout: &r.stdout, Stderr: &r.stderr}, cli)
	return r
}

func initSite(t *testing.T) string {
	t.Helper()
	doc := filepath.Join(t.TempDir(), "sitecfg.yaml")
	r := run(t, "--document", doc, "init", "--pages")
	require.NoError(t, r.err)
	require.Contains(t, r.stdout.String(), "initialized successfully")
	return doc
}

func TestInitAndCheck(t *testing.T) {
	doc := initSite(t)

	r := run(t, "--document", doc, "check")
	require.NoError(t, r.err)
	require.Contains(t, r.stdout.String(), doc+": ok (3 sidebar entries, 3 pages indexed)")

	r = run(t, "--document", doc, "init")
	require.ErrorContains(t, r.err, "already exists")
}

func TestCheckReportsDiagnostics(t *testing.T) {
	doc := initSite(t)
	require.NoError(t, os.Remove(filepath.Join(filepath.Dir(doc), "src", "content", "docs", "concepts", "airways.md")))

	r := run(t, "--document", doc, "check", "--format", "json")
	require.True(t, errors.HasCategory(r.err, errors.CategoryValidation))
	require.Equal(t, 2, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(r.err))

	var report checkReport
	require.NoError(t, json.Unmarshal(r.stdout.Bytes(), &report))
	require.Equal(t, "invalid", report.Status)
	require.Len(t, report.Diagnostics, 1)
	require.Equal(t, "sidebar[1].items[1].slug", report.Diagnostics[0].Path)
	require.Equal(t, "unknown slug: concepts/airways", report.Diagnostics[0].Message)
}

func TestCheckWithSlugList(t *testing.T) {
	doc := initSite(t)
	list := filepath.Join(t.TempDir(), "slugs.txt")
	require.NoError(t, os.WriteFile(list, []byte("index\nconcepts/flights\n"), 0o600))

	r := run(t, "--document", doc, "--content-source", "list", "--content-slugs-file", list, "check")
	require.True(t, errors.HasCategory(r.err, errors.CategoryValidation))
}

func TestRenderYAMLAndManifest(t *testing.T) {
	doc := initSite(t)

	r := run(t, "--document", doc, "render", "--format", "yaml")
	require.NoError(t, r.err)
	var rendered map[string]any
	require.NoError(t, yaml.Unmarshal(r.stdout.Bytes(), &rendered))
	require.Equal(t, "Yoke", rendered["title"])
	require.Equal(t, "docs", rendered["base"])

	out := filepath.Join(t.TempDir(), "manifest.json")
	r = run(t, "--document", doc, "render", "--manifest", "--output", out)
	require.NoError(t, r.err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	m, err := manifest.FromJSON(data)
	require.NoError(t, err)
	require.Equal(t, manifest.StatusValid, m.Status)
	require.Equal(t, "Yoke", m.Config.Title)
	require.Equal(t, []string{"react"}, m.Plugins)
}

func TestRenderRefusesInvalidDocument(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "sitecfg.yaml")
	require.NoError(t, os.WriteFile(doc, []byte("title: Yoke\nlogo:\n  dark: d.svg\nextra: 1\n"), 0o600))

	r := run(t, "--document", doc, "render")
	require.True(t, errors.HasCategory(r.err, errors.CategoryNormalization))
	require.Empty(t, r.stdout.String())
	require.Contains(t, r.stderr.String(), `warning: ignoring unknown key "extra"`)
}

func TestIndexCommand(t *testing.T) {
	doc := initSite(t)
	r := run(t, "--document", doc, "index")
	require.NoError(t, r.err)
	lines := strings.Split(strings.TrimSpace(r.stdout.String()), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasPrefix(lines[1], "concepts/airways"))
}

func TestHistoryCommand(t *testing.T) {
	doc := initSite(t)
	db := filepath.Join(t.TempDir(), "history.db")

	require.NoError(t, run(t, "--document", doc, "--history-db", db, "check").err)
	r := run(t, "--history-db", db, "history")
	require.NoError(t, r.err)
	require.Contains(t, r.stdout.String(), "valid")

	r = run(t, "history")
	require.True(t, errors.HasCategory(r.err, errors.CategoryConfig))

	r = run(t, "--history-db", db, "history", "nope")
	require.True(t, errors.HasCategory(r.err, errors.CategoryStore))
}

func TestMetricsTextfile(t *testing.T) {
	doc := initSite(t)
	prom := filepath.Join(t.TempDir(), "sitecfg.prom")

	require.NoError(t, run(t, "--document", doc, "--metrics-textfile", prom, "check").err)
	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	require.Contains(t, string(data), `sitecfg_run_outcomes_total{outcome="valid"} 1`)
}

func TestWatchTargets(t *testing.T) {
	s := &config.Settings{
		Document: filepath.Join("site", "sitecfg.yaml"),
		Content:  config.ContentSettings{Source: config.ContentSourceDir, Dir: filepath.Join("site", "src", "content", "docs")},
	}
	require.Equal(t, []string{
		filepath.Join("site", "sitecfg.yaml"),
		filepath.Join("site", ".env"),
		filepath.Join("site", ".env.local"),
	}, watchFiles(s))
	require.Equal(t, []string{filepath.Join("site", "src", "content", "docs")}, watchTrees(s))

	s.Content = config.ContentSettings{Source: config.ContentSourceList, SlugsFile: "slugs.txt"}
	require.Contains(t, watchFiles(s), "slugs.txt")
	require.Empty(t, watchTrees(s))
}
