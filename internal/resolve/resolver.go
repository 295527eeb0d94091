package resolve

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	"git.home.luguber.info/inful/sitecfg/internal/content"
	"git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
	"git.home.luguber.info/inful/sitecfg/internal/history"
	"git.home.luguber.info/inful/sitecfg/internal/logfields"
	"git.home.luguber.info/inful/sitecfg/internal/manifest"
	"git.home.luguber.info/inful/sitecfg/internal/metrics"
	"git.home.luguber.info/inful/sitecfg/internal/notify"
	"git.home.luguber.info/inful/sitecfg/internal/site"
	"git.home.luguber.info/inful/sitecfg/internal/site/normalize"
	"git.home.luguber.info/inful/sitecfg/internal/site/validation"
)

// Pipeline stages, in execution order.
const (
	StageLoad      = "load"
	StageNormalize = "normalize"
	StageIndex     = "index"
	StageValidate  = "validate"
)

// Outcome is the result of one run. It is returned even when the run fails.
type Outcome struct {
	RunID       string
	Status      manifest.Status
	Config      *site.SiteConfig // nil unless Status is valid
	Warnings    []string
	Dropped     site.Diagnostics
	Diagnostics site.Diagnostics
	Index       *content.Index
	Manifest    *manifest.ResolutionManifest
}

// Resolver runs the pipeline for one document.
type Resolver struct {
	settings  *config.Settings
	loadIndex IndexLoader
	recorder  metrics.Recorder
	history   history.Store
	publisher notify.Publisher
	now       func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRecorder records stage and run metrics. The default records nothing.
func WithRecorder(r metrics.Recorder) Option {
	return func(rv *Resolver) { rv.recorder = r }
}

// WithHistory stores every run's manifest in s.
func WithHistory(s history.Store) Option {
	return func(rv *Resolver) { rv.history = s }
}

// WithPublisher announces every finished run through p.
func WithPublisher(p notify.Publisher) Option {
	return func(rv *Resolver) { rv.publisher = p }
}

// WithIndexLoader replaces the content index built from the settings.
func WithIndexLoader(l IndexLoader) Option {
	return func(rv *Resolver) { rv.loadIndex = l }
}

// WithClock sets the time source for manifests and durations.
func WithClock(now func() time.Time) Option {
	return func(rv *Resolver) { rv.now = now }
}

// New creates a Resolver for prepared settings.
func New(s *config.Settings, opts ...Option) *Resolver {
	r := &Resolver{
		settings:  s,
		recorder:  metrics.NoopRecorder{},
		publisher: notify.Noop{},
		now:       time.Now,
	}
	r.loadIndex = func(ctx context.Context) (*content.Index, error) {
		return LoadIndex(ctx, r.settings.Content)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one resolution. The returned error is a ClassifiedError whose
// category tells a failed document (normalization, validation) apart from
// an operational problem (config, content).
func (r *Resolver) Run(ctx context.Context) (*Outcome, error) {
	start := r.now()
	m := manifest.New(start)
	m.Inputs.Document = r.settings.Document
	out := &Outcome{RunID: m.ID, Manifest: m}
	log := slog.With(logfields.RunID(m.ID))

	err := r.run(ctx, log, out)

	out.Status = statusOf(err)
	m.Status = out.Status
	m.DurationMS = r.now().Sub(start).Milliseconds()
	m.Warnings = out.Warnings
	m.Diagnostics = out.Diagnostics
	m.SetConfig(out.Config)
	r.finish(ctx, log, out, r.now().Sub(start))
	return out, err
}

func (r *Resolver) run(ctx context.Context, log *slog.Logger, out *Outcome) error {
	var doc *config.RawDocument
	err := r.stage(log, StageLoad, func() (err error) {
		doc, err = config.LoadDocument(r.settings.Document)
		if err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "failed to load site document").
				WithContext(errors.ContextDocument, r.settings.Document).
				Build()
		}
		out.Manifest.Inputs.DocumentHash = manifest.HashBytes(doc.Bytes)
		return nil
	})
	if err != nil {
		return err
	}

	var cfg *site.SiteConfig
	err = r.stage(log, StageNormalize, func() error {
		var res *normalize.Result
		var nerr error
		cfg, res, nerr = normalize.Normalize(doc.Value, normalize.Options{Lenient: r.settings.Lenient})
		if res != nil {
			out.Warnings = res.Warnings
			out.Dropped = res.Dropped
			for _, w := range res.Warnings {
				log.Warn("Normalization warning", logfields.Document(doc.Path), slog.String("warning", w))
			}
			for _, d := range res.Dropped {
				log.Warn("Dropped malformed entry", logfields.Field(d.Path), slog.String("reason", d.Message))
			}
			r.recorder.AddDiagnostics("warning", len(res.Warnings))
			r.recorder.AddDiagnostics("dropped", len(res.Dropped))
		}
		if nerr != nil {
			out.Diagnostics = site.DiagnosticsOf(nerr)
			r.recorder.AddDiagnostics("normalization", len(out.Diagnostics))
			return errors.WrapError(nerr, errors.CategoryNormalization, "site document has an unrecognized shape").
				WithContext(errors.ContextDiagnostics, out.Diagnostics).
				WithContext(errors.ContextDocument, doc.Path).
				Build()
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = r.stage(log, StageIndex, func() error {
		ix, ierr := r.loadIndex(ctx)
		if ierr != nil {
			return errors.WrapError(ierr, errors.CategoryContent, "failed to build content index").Build()
		}
		out.Index = ix
		out.Manifest.Inputs.ContentHash = ix.Fingerprint()
		out.Manifest.Inputs.ContentCount = ix.Len()
		r.recorder.SetContentPages(ix.Len())
		log.Debug("Content index built", logfields.Count(ix.Len()))
		return nil
	})
	if err != nil {
		return err
	}

	return r.stage(log, StageValidate, func() error {
		if verr := validation.Validate(cfg, out.Index); verr != nil {
			out.Diagnostics = site.DiagnosticsOf(verr)
			r.recorder.AddDiagnostics("validation", len(out.Diagnostics))
			return errors.WrapError(verr, errors.CategoryValidation, "site configuration is invalid").
				WithContext(errors.ContextDiagnostics, out.Diagnostics).
				WithContext(errors.ContextDocument, doc.Path).
				Build()
		}
		out.Config = cfg
		return nil
	})
}

// stage times fn and tags its error with the stage name.
func (r *Resolver) stage(log *slog.Logger, name string, fn func() error) error {
	start := r.now()
	err := fn()
	d := r.now().Sub(start)
	r.recorder.ObserveStageDuration(name, d)

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultFailed
		if ce, ok := errors.AsClassified(err); ok {
			err = ce.WithContext(errors.ContextStage, name)
		}
	}
	r.recorder.IncStageResult(name, result)
	log.Debug("Stage finished", logfields.Stage(name), logfields.DurationMS(float64(d.Microseconds())/1000), logfields.Status(string(result)))
	return err
}

func statusOf(err error) manifest.Status {
	switch {
	case err == nil:
		return manifest.StatusValid
	case errors.HasCategory(err, errors.CategoryNormalization), errors.HasCategory(err, errors.CategoryValidation):
		return manifest.StatusInvalid
	default:
		return manifest.StatusError
	}
}

// finish records the run. History and notification failures are logged, never fatal.
func (r *Resolver) finish(ctx context.Context, log *slog.Logger, out *Outcome, d time.Duration) {
	r.recorder.ObserveRunDuration(d)
	switch out.Status {
	case manifest.StatusValid:
		r.recorder.IncRunOutcome(metrics.OutcomeValid)
	case manifest.StatusInvalid:
		r.recorder.IncRunOutcome(metrics.OutcomeInvalid)
	default:
		r.recorder.IncRunOutcome(metrics.OutcomeError)
	}

	if r.history != nil {
		if err := r.history.Record(ctx, history.FromManifest(out.Manifest)); err != nil {
			log.Warn("Failed to record run history", logfields.Error(err))
		}
	}
	if err := r.publisher.Publish(ctx, notify.EventFromManifest(out.Manifest)); err != nil {
		log.Warn("Failed to publish run event", logfields.Error(err))
	}

	log.Info("Resolution finished",
		logfields.Status(string(out.Status)),
		logfields.DurationMS(float64(d.Microseconds())/1000),
		logfields.Diagnostics(len(out.Diagnostics)))
}
