package integration

import (
	"flag"
	"testing"
)

var updateGolden = flag.Bool("update-golden", false, "Update golden files")

// TestGolden_Direct verifies name derivation from the declaration path and
// the default (empty) label capability for a plain value return.
func TestGolden_Direct(t *testing.T) {
	compareGolden(t, "direct", checkFixture(t, "direct"), *updateGolden)
}

// TestGolden_Outcome verifies the explicit name override and the outcome
// capability for a trailing-error return.
func TestGolden_Outcome(t *testing.T) {
	compareGolden(t, "outcome", checkFixture(t, "outcome"), *updateGolden)
}

// TestGolden_Labeled verifies that a return type implementing
// instrument.Labeler resolves to the labeler capability.
func TestGolden_Labeled(t *testing.T) {
	compareGolden(t, "labeled", checkFixture(t, "labeled"), *updateGolden)
}

// TestGolden_Suspend verifies that a receive-only channel return is treated
// as a suspending computation.
func TestGolden_Suspend(t *testing.T) {
	compareGolden(t, "suspend", checkFixture(t, "suspend"), *updateGolden)
}

// TestGolden_Future verifies that a defined receive-only channel type is
// still classified as suspending.
func TestGolden_Future(t *testing.T) {
	compareGolden(t, "future", checkFixture(t, "future"), *updateGolden)
}

// TestGolden_Named verifies method weaving: the receiver type participates
// in the declaration path and named results resolve as an outcome shape.
func TestGolden_Named(t *testing.T) {
	compareGolden(t, "named", checkFixture(t, "named"), *updateGolden)
}
