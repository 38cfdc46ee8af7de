package stellarforge

import (
	"fmt"
	"math"
	"strings"
)

// Length units, in meters.
const (
	Meter     = 1.0
	Kilometer = 1000.0
	// AU is one astronomical unit in meters.
	AU = 1.495978707e11
	// LightYear is one light year in meters.
	LightYear = 9.461e15
	// Parsec is one parsec in meters.
	Parsec = 3.086e16
)

// Mass and radius constants, SI.
const (
	SolarMass   = 1.989e30 // kg
	EarthMass   = 5.972e24 // kg
	SolarRadius = 6.96e8   // m
	EarthRadius = 6.371e6  // m
)

// CelestialObject defines a gravitating body: the origin of an orbit, a
// perturbing third body, or a point mass in an N-body system.
type CelestialObject struct {
	Name   string
	Radius float64 // mean radius in meters
	μ      float64 // gravitational parameter in m³/s²
	J2     float64 // second zonal harmonic, dimensionless
}

// GM returns μ (which is unexported because it's a lowercase letter).
func (c CelestialObject) GM() float64 {
	return c.μ
}

// Mass returns the mass of the body in kilograms.
func (c CelestialObject) Mass() float64 {
	const G = 6.67430e-11 // m³/(kg·s²)
	return c.μ / G
}

// Equals returns whether the provided celestial object is the same.
func (c CelestialObject) Equals(b CelestialObject) bool {
	return c.Name == b.Name && c.Radius == b.Radius && c.μ == b.μ
}

// String implements the Stringer interface.
func (c CelestialObject) String() string {
	return c.Name + " body"
}

// EscapeVelocity returns the escape velocity at the given radius, in m/s.
func (c CelestialObject) EscapeVelocity(r float64) float64 {
	return math.Sqrt(2 * c.μ / r)
}

// CelestialObjectFromString returns the object from its name.
func CelestialObjectFromString(name string) (CelestialObject, error) {
	switch strings.ToLower(name) {
	case "sun":
		return Sun, nil
	case "earth":
		return Earth, nil
	case "mars":
		return Mars, nil
	case "jupiter":
		return Jupiter, nil
	}
	return CelestialObject{}, fmt.Errorf("undefined celestial object `%s`", name)
}

// Sun is our closest star.
var Sun = CelestialObject{"Sun", SolarRadius, 1.32712440018e20, 0}

// Earth is home.
var Earth = CelestialObject{"Earth", 6.3781363e6, 3.986004415e14, 1.08262668e-3}

// Mars is the fourth planet.
var Mars = CelestialObject{"Mars", 3.3962e6, 4.282837e13, 1.96045e-3}

// Jupiter is big.
var Jupiter = CelestialObject{"Jupiter", 7.1492e7, 1.26686534e17, 1.4736e-2}
