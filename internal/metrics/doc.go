// Package metrics records resolver run metrics.
//
// Components receive a Recorder and default to NoopRecorder, so metrics stay
// optional without nil checks at call sites:
//
//	r := resolve.New(resolve.Config{Recorder: metrics.NoopRecorder{}})
//
// PrometheusRecorder registers its collectors on a caller-supplied registry.
// One-shot commands export that registry with WriteTextfile for the node
// exporter textfile collector; watch mode serves it through HTTPHandler.
package metrics
