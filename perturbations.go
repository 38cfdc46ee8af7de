package stellarforge

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// solarFluxPressure is the solar radiation pressure at 1 AU, in N/m².
const solarFluxPressure = 4.56e-6

// Perturbation is one additive correction applied on top of the Keplerian
// base propagation of a TwoBodyMotion. The set is closed: applyPerturbation
// switches exhaustively over the variants below.
type Perturbation interface {
	isPerturbation()
}

// J2Perturbation models the oblateness of the central body.
type J2Perturbation struct {
	Coefficient float64 // J2, dimensionless
	BodyRadius  float64 // equatorial radius, meters
	GM          float64 // μ of the central body, m³/s²
}

func (J2Perturbation) isPerturbation() {}

// SolarRadiationPressure models photon pressure on a spacecraft-scale
// body. The radiating body is assumed at the frame origin.
type SolarRadiationPressure struct {
	Area float64 // illuminated area, m²
	Mass float64 // kg
	Cr   float64 // reflectivity coefficient, 1..2
}

func (SolarRadiationPressure) isPerturbation() {}

// AtmosphericDrag models drag against an ambient density. The density is
// caller-supplied; this core carries no atmosphere model.
type AtmosphericDrag struct {
	Cd      float64 // drag coefficient
	Area    float64 // cross section, m²
	Mass    float64 // kg
	Density float64 // ambient density, kg/m³
}

func (AtmosphericDrag) isPerturbation() {}

// ThirdBody models the differential gravitational pull of a third body at
// a fixed position in the propagation frame.
type ThirdBody struct {
	GM       float64 // μ of the third body, m³/s²
	Position r3.Vec  // position of the third body, meters
}

func (ThirdBody) isPerturbation() {}

// accel returns the perturbing acceleration in m/s² for the given state.
func perturbationAccel(p Perturbation, s State) r3.Vec {
	switch pert := p.(type) {
	case J2Perturbation:
		x, y, z := s.Position.X, s.Position.Y, s.Position.Z
		z2 := z * z
		r2 := x*x + y*y + z2
		r52 := math.Pow(r2, 5/2.)
		r72 := math.Pow(r2, 7/2.)
		acc := (3 / 2.) * pert.Coefficient * math.Pow(pert.BodyRadius, 2) * pert.GM
		return r3.Vec{
			X: acc * (5*x*z2/r72 - x/r52),
			Y: acc * (5*y*z2/r72 - y/r52),
			Z: acc * (5*z*z2/r72 - 3*z/r52),
		}
	case SolarRadiationPressure:
		r := norm(s.Position)
		if r == 0 {
			return r3.Vec{}
		}
		pressure := solarFluxPressure * (AU / r) * (AU / r)
		return r3.Scale(pressure*pert.Cr*pert.Area/pert.Mass, unit(s.Position))
	case AtmosphericDrag:
		v := norm(s.Velocity)
		return r3.Scale(-0.5*pert.Density*v*pert.Cd*pert.Area/pert.Mass, s.Velocity)
	case ThirdBody:
		toThird := r3.Sub(pert.Position, s.Position)
		d3 := math.Pow(norm(toThird), 3)
		p3 := math.Pow(norm(pert.Position), 3)
		if d3 == 0 || p3 == 0 {
			return r3.Vec{}
		}
		return r3.Sub(r3.Scale(pert.GM/d3, toThird), r3.Scale(pert.GM/p3, pert.Position))
	}
	panic("unknown perturbation term")
}

// applyPerturbation folds one perturbation term into a propagated state as
// an impulse over the elapsed interval: Δv = a·dt, Δr = ½·a·dt².
func applyPerturbation(p Perturbation, s State, dt float64) State {
	a := perturbationAccel(p, s)
	return State{
		Position: r3.Add(s.Position, r3.Scale(0.5*dt*dt, a)),
		Velocity: r3.Add(s.Velocity, r3.Scale(dt, a)),
	}
}
