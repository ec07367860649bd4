package unknownarg

// The unsupported bucket argument below must fail the weave.
//
//metricweave:instrument bucket="latency"
func Broken() int {
	return 0
}
