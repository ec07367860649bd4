package instrument

import "sync/atomic"

// Sink receives metric emissions from woven functions. Implementations may
// forward to Prometheus, OpenTelemetry, etc. Both methods are called on the
// instrumented call path and must not block or fail from the caller's
// perspective.
type Sink interface {
	RecordHistogram(name string, seconds float64, labels LabelSet)
	IncrementCounter(name string, labels LabelSet)
}

// NoopSink is a Sink that does nothing (default when metrics are not configured).
type NoopSink struct{}

func (NoopSink) RecordHistogram(string, float64, LabelSet) {}
func (NoopSink) IncrementCounter(string, LabelSet)         {}

// installed holds the process-wide sink. Woven code lives in foreign packages
// and cannot receive an injected recorder, so the indirection is a swappable
// package-level default instead. The sink sits behind a pointer so swaps
// between different concrete sink types are legal.
var installed atomic.Pointer[Sink]

func init() {
	var s Sink = NoopSink{}
	installed.Store(&s)
}

// SetSink installs the process-wide sink. Call once at startup, before
// instrumented functions run; later swaps are safe but calls in flight may
// still reach the previous sink.
func SetSink(s Sink) {
	if s == nil {
		s = NoopSink{}
	}
	installed.Store(&s)
}

// CurrentSink returns the installed sink.
func CurrentSink() Sink {
	return *installed.Load()
}

// RecordHistogram forwards a duration observation to the installed sink.
// Called by woven code; name is a weave-time constant.
func RecordHistogram(name string, seconds float64, labels LabelSet) {
	CurrentSink().RecordHistogram(name, seconds, labels)
}

// IncrementCounter forwards an invocation count to the installed sink.
// Called by woven code; name is a weave-time constant.
func IncrementCounter(name string, labels LabelSet) {
	CurrentSink().IncrementCounter(name, labels)
}
