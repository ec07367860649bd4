package direct

// Double is not annotated and must pass through the weave untouched.
func Double(x int) int {
	return x * 2
}
