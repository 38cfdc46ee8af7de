package stellarforge

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

func assertPanic(t *testing.T, f func()) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("code did not panic")
		}
	}()
	f()
}

func vectorsEqual(a, b r3.Vec) bool {
	return vectorsEqualTol(a, b, 1e-6)
}

func vectorsEqualTol(a, b r3.Vec, tol float64) bool {
	scale := math.Max(norm(a), norm(b))
	if scale == 0 {
		return true
	}
	return norm(r3.Sub(a, b))/scale < tol
}

// anglesEqual returns whether two angles in radians are equal.
func anglesEqual(a, b float64) (bool, error) {
	diff := math.Mod(math.Abs(a-b), 2*math.Pi)
	if diff > math.Pi {
		diff = 2*math.Pi - diff
	}
	if diff < 1e-6 {
		return true, nil
	}
	return false, fmt.Errorf("difference of %3.10f degrees", math.Abs(diff/deg2rad))
}

func floatsEqual(a, b, tol float64) bool {
	return scalar.EqualWithinAbs(a, b, tol)
}
