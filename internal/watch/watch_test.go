package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"git.home.luguber.info/inful/sitecfg/internal/resolve"
)

type countingRunner struct {
	mu   sync.Mutex
	runs int
	ran  chan struct{}
}

func newCountingRunner() *countingRunner {
	return &countingRunner{ran: make(chan struct{}, 64)}
}

func (c *countingRunner) Run(context.Context) (*resolve.Outcome, error) {
	c.mu.Lock()
	c.runs++
	c.mu.Unlock()
	c.ran <- struct{}{}
	return &resolve.Outcome{}, nil
}

func (c *countingRunner) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runs
}

func waitRun(t *testing.T, c *countingRunner, timeout time.Duration) {
	t.Helper()
	select {
	case <-c.ran:
	case <-time.After(timeout):
		t.Fatalf("no run within %s", timeout)
	}
}

func startWatcher(t *testing.T, r Runner, opts Options) (cancel func(), done <-chan error) {
	t.Helper()
	w, err := New(r, opts)
	require.NoError(t, err)
	ctx, cancelFn := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	return cancelFn, errCh
}

func TestWatcherRerunsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	doc := filepath.Join(dir, "sitecfg.yaml")
	require.NoError(t, os.WriteFile(doc, []byte("title: a\n"), 0o600))

	runner := newCountingRunner()
	var results int
	cancel, done := startWatcher(t, runner, Options{
		Files:    []string{doc},
		Debounce: 50 * time.Millisecond,
		OnResult: func(*resolve.Outcome, error) { results++ },
	})

	waitRun(t, runner, 2*time.Second)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(doc, []byte("title: b\n"), 0o600))
	}
	waitRun(t, runner, 2*time.Second)

	// Hidden files and unrelated siblings of the document never trigger.
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".sitecfg.yaml.swp"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("{}"), 0o600))
	time.Sleep(200 * time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	require.Equal(t, 2, runner.count())
	require.Equal(t, 2, results)
}

func TestWatcherWatchesNewDirectories(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	runner := newCountingRunner()
	cancel, done := startWatcher(t, runner, Options{Trees: []string{dir, filepath.Join(dir, "missing")}, Debounce: 20 * time.Millisecond})
	waitRun(t, runner, 2*time.Second)

	sub := filepath.Join(dir, "guides")
	require.NoError(t, os.Mkdir(sub, 0o750))
	waitRun(t, runner, 2*time.Second)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "intro.md"), []byte("# Intro\n"), 0o600))
	waitRun(t, runner, 2*time.Second)

	cancel()
	require.NoError(t, <-done)
}

func TestWatcherPeriodicRecheck(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	runner := newCountingRunner()
	cancel, done := startWatcher(t, runner, Options{Trees: []string{t.TempDir()}, Every: time.Second})
	waitRun(t, runner, 2*time.Second)
	waitRun(t, runner, 3*time.Second)

	cancel()
	require.NoError(t, <-done)
	require.GreaterOrEqual(t, runner.count(), 2)
}

func TestWatcherDoesNotDescendDocumentDirectory(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "sitecfg.yaml")
	require.NoError(t, os.WriteFile(doc, []byte("title: a\n"), 0o600))
	for i := 0; i < 50; i++ {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules", "pkg", fmt.Sprintf("dep%02d", i), "lib"), 0o750))
	}
	content := filepath.Join(dir, "src", "content", "docs")
	require.NoError(t, os.MkdirAll(filepath.Join(content, "guides"), 0o750))

	w, err := New(newCountingRunner(), Options{Files: []string{doc}, Trees: []string{content}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.fsw.Close() })

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	absContent, err := filepath.Abs(content)
	require.NoError(t, err)
	require.ElementsMatch(t,
		[]string{abs, absContent, filepath.Join(absContent, "guides")},
		w.fsw.WatchList())

	require.True(t, w.relevant(fsnotify.Event{Name: filepath.Join(abs, "sitecfg.yaml"), Op: fsnotify.Write}))
	require.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(abs, "node_modules"), Op: fsnotify.Create}))
	require.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(abs, "package.json"), Op: fsnotify.Write}))
	require.True(t, w.relevant(fsnotify.Event{Name: filepath.Join(absContent, "guides", "a.md"), Op: fsnotify.Create}))
	require.Len(t, w.fsw.WatchList(), 3)
}

func TestWatcherTracksEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	w, err := New(newCountingRunner(), Options{Files: []string{filepath.Join(dir, "sitecfg.yaml"), env}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.fsw.Close() })

	abs, err := filepath.Abs(env)
	require.NoError(t, err)
	require.True(t, w.relevant(fsnotify.Event{Name: abs, Op: fsnotify.Write}))
	require.False(t, w.relevant(fsnotify.Event{Name: abs, Op: fsnotify.Chmod}))
}

func TestNewRequiresRunner(t *testing.T) {
	_, err := New(nil, Options{})
	require.Error(t, err)
}

func TestIgnored(t *testing.T) {
	require.True(t, ignored(".git"))
	require.True(t, ignored("sitecfg.yaml~"))
	require.False(t, ignored("sitecfg.yaml"))
}
