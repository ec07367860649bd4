// Package instrument is the runtime collaborator of the metricweave code
// generator. Woven functions call RecordHistogram and IncrementCounter with
// metric names that were derived at weave time; this package routes those
// calls to an installed Sink.
//
// # Design Philosophy
//
// The package follows the Null Object pattern: the default sink is NoopSink,
// so a library woven with metricweave imposes no obligations on binaries that
// never configure metrics. A binary that wants real emission installs a sink
// once at process start:
//
//	instrument.SetSink(promsink.New(prometheus.DefaultRegisterer))
//
// Emission is best effort and synchronous from the woven code's perspective;
// failure and backpressure handling belong to the sink implementation, never
// to the instrumented function.
//
// # Label extraction
//
// The weaver resolves label extraction statically, per call site:
//
//   - functions with a trailing error result get OutcomeLabels, which emits
//     the fixed key "result" with value "ok" or "err" from the error
//     discriminant alone;
//   - functions whose sole result implements Labeler contribute their own
//     labels via MetricLabels;
//   - everything else gets the empty LabelSet.
//
// No runtime type inspection is involved: the woven source contains the
// extraction call chosen at weave time.
package instrument
