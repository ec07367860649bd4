package outcome

import "errors"

var errDivideByZero = errors.New("division by zero")

// Divide reports its outcome through the trailing error.
//
//metricweave:instrument name="division"
func Divide(a, b int) (int, error) {
	if b == 0 {
		return 0, errDivideByZero
	}
	return a / b, nil
}
