package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultWarning ResultLabel = "warning"
	ResultFailed  ResultLabel = "failed"
)

// OutcomeLabel is the final status of a resolver run.
type OutcomeLabel string

const (
	OutcomeValid   OutcomeLabel = "valid"
	OutcomeInvalid OutcomeLabel = "invalid"
	OutcomeError   OutcomeLabel = "error"
)

// Recorder defines observability hooks for resolver runs.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncRunOutcome(outcome OutcomeLabel)
	// AddDiagnostics counts findings by kind: normalization, validation, dropped or warning.
	AddDiagnostics(kind string, n int)
	SetContentPages(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncRunOutcome(OutcomeLabel)                 {}
func (NoopRecorder) AddDiagnostics(string, int)                 {}
func (NoopRecorder) SetContentPages(int)                        {}
