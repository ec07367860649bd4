package future

// Future delivers a single value asynchronously.
type Future <-chan string

// Await returns a future that resolves once the value is ready.
//
//metricweave:instrument
func Await() Future {
	out := make(chan string, 1)
	out <- "ready"
	close(out)
	return out
}
