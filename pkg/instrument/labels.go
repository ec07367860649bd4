package instrument

// Label is a single metric dimension.
type Label struct {
	Key   string
	Value string
}

// LabelSet is an ordered collection of labels. It is produced once per call
// by the woven code, handed to the sink, and then discarded; order is
// preserved so sinks can rely on stable key sequences per call site.
type LabelSet []Label

// Labeler lets a return type contribute descriptive labels to the metrics
// recorded around any woven function that returns it. The weaver detects
// implementations statically, so types opt in simply by declaring the method.
type Labeler interface {
	MetricLabels() LabelSet
}

// OutcomeLabels derives the outcome label from an error discriminant.
// Only the discriminant is inspected, never the payload, so this applies to
// any (T..., error) return shape.
func OutcomeLabels(err error) LabelSet {
	if err != nil {
		return LabelSet{{Key: "result", Value: "err"}}
	}
	return LabelSet{{Key: "result", Value: "ok"}}
}
