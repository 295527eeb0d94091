package commands

import (
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	"git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
	"git.home.luguber.info/inful/sitecfg/internal/history"
	"git.home.luguber.info/inful/sitecfg/internal/logfields"
	"git.home.luguber.info/inful/sitecfg/internal/metrics"
	"git.home.luguber.info/inful/sitecfg/internal/notify"
	"git.home.luguber.info/inful/sitecfg/internal/resolve"
)

// runtime wires the resolver to its optional collaborators.
type runtime struct {
	settings *config.Settings
	resolver *resolve.Resolver
	registry *prom.Registry
	closers  []func() error
}

func newRuntime(s *config.Settings, withMetrics bool) (*runtime, error) {
	rt := &runtime{settings: s}
	opts := []resolve.Option{}

	if withMetrics || s.Metrics.Textfile != "" {
		rt.registry = prom.NewRegistry()
		opts = append(opts, resolve.WithRecorder(metrics.NewPrometheusRecorder(rt.registry)))
	}
	if s.History.Path != "" {
		store, err := history.NewSQLiteStore(s.History.Path)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryStore, "failed to open run history").
				WithContext("path", s.History.Path).
				Build()
		}
		rt.closers = append(rt.closers, store.Close)
		opts = append(opts, resolve.WithHistory(store))
	}
	if s.Notify.URL != "" {
		pub, err := notify.NewNATSPublisher(s.Notify.URL, s.Notify.Subject)
		if err != nil {
			slog.Warn("Run notifications disabled", logfields.URL(s.Notify.URL), logfields.Error(err))
		} else {
			rt.closers = append(rt.closers, pub.Close)
			opts = append(opts, resolve.WithPublisher(pub))
		}
	}
	rt.resolver = resolve.New(s, opts...)
	return rt, nil
}

// flushMetrics writes the textfile when one is configured.
func (rt *runtime) flushMetrics() {
	if rt.registry == nil || rt.settings.Metrics.Textfile == "" {
		return
	}
	if err := metrics.WriteTextfile(rt.registry, rt.settings.Metrics.Textfile); err != nil {
		slog.Warn("Failed to write metrics", logfields.Path(rt.settings.Metrics.Textfile), logfields.Error(err))
	}
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			slog.Warn("Error releasing resource", logfields.Error(err))
		}
	}
}

func configError(err error) error {
	return errors.WrapError(err, errors.CategoryConfig, "invalid settings").Build()
}
