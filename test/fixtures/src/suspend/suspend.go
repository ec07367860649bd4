package suspend

import "time"

// Fetch returns a future that delivers after d.
//
//metricweave:instrument name="fetch"
func Fetch(d time.Duration) <-chan string {
	out := make(chan string, 1)
	go func() {
		time.Sleep(d)
		out <- "done"
	}()
	return out
}
