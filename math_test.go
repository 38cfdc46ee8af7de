package stellarforge

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestCross(t *testing.T) {
	i := r3.Vec{X: 1}
	j := r3.Vec{Y: 1}
	k := r3.Vec{Z: 1}
	if !vectorsEqual(cross(i, j), k) {
		t.Fatal("i x j != k")
	}
	if !vectorsEqual(cross(j, k), i) {
		t.Fatal("j x k != i")
	}
	if !vectorsEqual(cross(r3.Vec{X: 2, Y: 3, Z: 4}, r3.Vec{X: 5, Y: 6, Z: 7}), r3.Vec{X: -3, Y: 6, Z: -3}) {
		t.Fatal("cross fail")
	}
}

func TestUnitAndNorm(t *testing.T) {
	v := r3.Vec{X: 3, Y: 4}
	if !floatsEqual(norm(v), 5, 1e-12) {
		t.Fatalf("|v|=%f", norm(v))
	}
	u := unit(v)
	if !floatsEqual(norm(u), 1, 1e-12) {
		t.Fatalf("|unit(v)|=%f", norm(u))
	}
	// The zero vector must stay zero, not go NaN.
	z := unit(r3.Vec{})
	if z.X != 0 || z.Y != 0 || z.Z != 0 {
		t.Fatalf("unit(0)=%+v", z)
	}
}

func TestSphericalRoundTrip(t *testing.T) {
	for _, cart := range []r3.Vec{
		{X: 1, Y: 2, Z: 3},
		{X: -4, Y: 0.5, Z: -2},
		{X: 0, Y: 0, Z: 7},
	} {
		sph := Cartesian2Spherical(cart)
		back := Spherical2Cartesian(sph)
		if !vectorsEqualTol(cart, back, 1e-12) {
			t.Fatalf("spherical round trip failed for %+v: got %+v", cart, back)
		}
	}
	// Zero maps to zero.
	if Cartesian2Spherical(r3.Vec{}) != (r3.Vec{}) {
		t.Fatal("zero vector must map to the zero spherical vector")
	}
	// Unit +X: r=1, θ=0, φ=π/2.
	sph := Cartesian2Spherical(r3.Vec{X: 1})
	if !floatsEqual(sph.X, 1, 1e-12) || !floatsEqual(sph.Y, 0, 1e-12) || !floatsEqual(sph.Z, math.Pi/2, 1e-12) {
		t.Fatalf("+X spherical = %+v", sph)
	}
}

func TestCylindricalRoundTrip(t *testing.T) {
	for _, cart := range []r3.Vec{
		{X: 1, Y: 2, Z: 3},
		{X: -4, Y: 0.5, Z: -2},
	} {
		back := Cylindrical2Cartesian(Cartesian2Cylindrical(cart))
		if !vectorsEqualTol(cart, back, 1e-12) {
			t.Fatalf("cylindrical round trip failed for %+v: got %+v", cart, back)
		}
	}
}

func TestAngles(t *testing.T) {
	if !scalar.EqualWithinAbs(Deg2rad(180), math.Pi, 1e-12) {
		t.Fatal("Deg2rad(180) != π")
	}
	if !scalar.EqualWithinAbs(Deg2rad(-90), 3*math.Pi/2, 1e-12) {
		t.Fatal("Deg2rad(-90) != 3π/2")
	}
	if !scalar.EqualWithinAbs(Rad2deg(math.Pi), 180, 1e-12) {
		t.Fatal("Rad2deg(π) != 180")
	}
	if !scalar.EqualWithinAbs(Rad2deg(-math.Pi/2), 270, 1e-12) {
		t.Fatal("Rad2deg(-π/2) != 270")
	}
	for _, a := range []float64{-3 * math.Pi, -0.1, 0, 1, 7, 100} {
		w := wrap2Pi(a)
		if w < 0 || w >= 2*math.Pi {
			t.Fatalf("wrap2Pi(%f)=%f out of range", a, w)
		}
		if !scalar.EqualWithinAbs(math.Sin(w), math.Sin(a), 1e-9) {
			t.Fatalf("wrap2Pi(%f)=%f changed the angle", a, w)
		}
	}
}
