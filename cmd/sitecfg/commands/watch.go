package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	"git.home.luguber.info/inful/sitecfg/internal/logfields"
	"git.home.luguber.info/inful/sitecfg/internal/metrics"
	"git.home.luguber.info/inful/sitecfg/internal/resolve"
	"git.home.luguber.info/inful/sitecfg/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Debounce    time.Duration `help:"Quiet period before re-checking after a change" default:"500ms"`
	Every       time.Duration `help:"Also re-check on this interval (0 disables)" env:"SITECFG_WATCH_EVERY"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address" env:"SITECFG_METRICS_ADDR"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	s, err := root.Settings()
	if err != nil {
		return err
	}
	watchSettings(s, w.Debounce, w.Every)
	if err := config.Validate(s); err != nil {
		return configError(err)
	}

	rt, err := newRuntime(s, w.MetricsAddr != "")
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if w.MetricsAddr != "" {
		srv := &http.Server{Addr: w.MetricsAddr, Handler: metrics.HTTPHandler(rt.registry), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server failed", logfields.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	watcher, err := watch.New(rt.resolver, watch.Options{
		Files:    watchFiles(s),
		Trees:    watchTrees(s),
		Debounce: s.Watch.Debounce,
		Every:    s.Watch.Every,
		OnResult: func(out *resolve.Outcome, err error) {
			rt.flushMetrics()
			reportWatchResult(g, s.Document, out, err)
		},
	})
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}

// watchFiles lists the single files a run reads: the document, the .env
// files next to it and the slugs list.
func watchFiles(s *config.Settings) []string {
	dir := filepath.Dir(s.Document)
	files := []string{s.Document, filepath.Join(dir, ".env"), filepath.Join(dir, ".env.local")}
	if s.Content.Source == config.ContentSourceList {
		files = append(files, s.Content.SlugsFile)
	}
	return files
}

func watchTrees(s *config.Settings) []string {
	if s.Content.Source == config.ContentSourceDir {
		return []string{s.Content.Dir}
	}
	return nil
}

func reportWatchResult(g *Global, document string, out *resolve.Outcome, err error) {
	ts := time.Now().Format(time.TimeOnly)
	if out != nil {
		printFindings(g, out)
	}
	if err == nil {
		_, _ = fmt.Fprintf(g.Stdout, "%s %s: ok\n", ts, document)
		return
	}
	_, _ = fmt.Fprintf(g.Stdout, "%s %s: %v\n", ts, document, errorMessage(err))
	if out != nil {
		for _, d := range out.Diagnostics {
			_, _ = fmt.Fprintf(g.Stdout, "  %s\n", d)
		}
	}
}
