package shadow

// Compute declares parameters that collide with the woven import names.
//
//metricweave:instrument
func Compute(time int, instrument string) int {
	return time + len(instrument)
}
