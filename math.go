package stellarforge

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	deg2rad = math.Pi / 180
)

// norm returns the norm of the given vector.
func norm(v r3.Vec) float64 {
	return r3.Norm(v)
}

// unit returns the unit vector colinear to a, or the zero vector if a is
// (numerically) zero. r3.Unit returns NaNs on the zero vector, which is
// never what the transform code wants.
func unit(a r3.Vec) r3.Vec {
	if scalar.EqualWithinAbs(norm(a), 0, 1e-12) {
		return r3.Vec{}
	}
	return r3.Unit(a)
}

// sign returns the sign of a given number.
func sign(v float64) float64 {
	if scalar.EqualWithinAbs(v, 0, 1e-12) {
		return 1
	}
	return v / math.Abs(v)
}

// dot performs the inner product.
func dot(a, b r3.Vec) float64 {
	return r3.Dot(a, b)
}

// cross performs the cross product.
func cross(a, b r3.Vec) r3.Vec {
	return r3.Cross(a, b)
}

// Spherical2Cartesian converts a (r, θ, φ) vector to Cartesian, with θ the
// azimuth from +X in the XY plane and φ the polar angle from +Z.
func Spherical2Cartesian(a r3.Vec) r3.Vec {
	sθ, cθ := math.Sincos(a.Y)
	sφ, cφ := math.Sincos(a.Z)
	return r3.Vec{
		X: a.X * sφ * cθ,
		Y: a.X * sφ * sθ,
		Z: a.X * cφ,
	}
}

// Cartesian2Spherical converts a Cartesian vector to (r, θ, φ), the inverse
// of Spherical2Cartesian. The zero vector maps to the zero vector.
func Cartesian2Spherical(a r3.Vec) r3.Vec {
	r := norm(a)
	if r == 0 {
		return r3.Vec{}
	}
	return r3.Vec{
		X: r,
		Y: math.Atan2(a.Y, a.X),
		Z: math.Acos(a.Z / r),
	}
}

// Cartesian2Cylindrical converts a Cartesian vector to (ρ, θ, z).
func Cartesian2Cylindrical(a r3.Vec) r3.Vec {
	return r3.Vec{
		X: math.Hypot(a.X, a.Y),
		Y: math.Atan2(a.Y, a.X),
		Z: a.Z,
	}
}

// Cylindrical2Cartesian converts a (ρ, θ, z) vector to Cartesian.
func Cylindrical2Cartesian(a r3.Vec) r3.Vec {
	sθ, cθ := math.Sincos(a.Y)
	return r3.Vec{X: a.X * cθ, Y: a.X * sθ, Z: a.Z}
}

// Deg2rad converts degrees to radians, and enforces only positive numbers.
func Deg2rad(a float64) float64 {
	if a < 0 {
		a += 360
	}
	return math.Mod(a*deg2rad, 2*math.Pi)
}

// Rad2deg converts radians to degrees, and enforces only positive numbers.
func Rad2deg(a float64) float64 {
	if a < 0 {
		a += 2 * math.Pi
	}
	return math.Mod(a/deg2rad, 360)
}

// wrap2Pi wraps an angle into [0, 2π).
func wrap2Pi(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
