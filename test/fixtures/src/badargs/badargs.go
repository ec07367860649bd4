package badargs

// The duplicated name argument below must fail the weave.
//
//metricweave:instrument name="first" name="second"
func Broken() int {
	return 0
}
