package direct

// Add returns the sum of its arguments.
//
//metricweave:instrument
func Add(a, b int) int {
	return a + b
}
