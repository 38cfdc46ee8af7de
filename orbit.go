package stellarforge

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// eccentricityε is the threshold below which an orbit is treated as
	// circular in the element derivation special cases.
	eccentricityε = 1e-8
	// angleε is the threshold below which the node vector is treated as
	// zero, i.e. the orbit as equatorial.
	angleε = 1e-8
	// parabolicε bounds |e-1| for the parabolic rejection.
	parabolicε = 1e-12
	// keplerTolerance is the Newton-Raphson convergence threshold on ΔE.
	keplerTolerance = 1e-10
	// keplerMaxIterations bounds the solver regardless of input.
	keplerMaxIterations = 100
)

// Element derivation failures. These are data errors, returned to the
// caller; propagation itself never fails for well-formed elements.
var (
	ErrZeroPosition = errors.New("position vector is zero")
	ErrRectilinear  = errors.New("angular momentum is zero (rectilinear or degenerate orbit)")
	ErrParabolic    = errors.New("parabolic orbit (e = 1): semi-major axis undefined")
)

// OrbitalElements defines an orbit via the six classical Keplerian
// elements, the gravitational parameter of the central body, and the epoch
// the mean anomaly refers to. All lengths are in meters, all angles in
// radians. Eccentricity >= 1 denotes an open orbit which the Keplerian
// propagator does not support: callers must validate eccentricity and
// semi-major axis before constructing elements, this is a precondition and
// not a runtime check in the propagation path.
type OrbitalElements struct {
	SemiMajorAxis float64   // a
	Eccentricity  float64   // e
	Inclination   float64   // i
	RAAN          float64   // Ω, longitude of the ascending node
	ArgPeriapsis  float64   // ω
	MeanAnomaly   float64   // M at Epoch
	GM            float64   // μ of the central body, m³/s²
	Epoch         time.Time // reference epoch for MeanAnomaly
}

// NewCircularElements returns the elements of a circular equatorial orbit
// at the given radius.
func NewCircularElements(radius, μ float64, epoch time.Time) OrbitalElements {
	return OrbitalElements{SemiMajorAxis: radius, GM: μ, Epoch: epoch}
}

// ElementsFromStateVectors derives the classical elements from an inertial
// position/velocity pair. From Vallado's RV2COE. Degenerate inputs return
// an error: zero position, zero angular momentum, exactly parabolic
// eccentricity. Circular and equatorial orbits take the documented epsilon
// branches rather than exact floating comparisons.
func ElementsFromStateVectors(s State, μ float64, epoch time.Time) (OrbitalElements, error) {
	R := s.Position
	V := s.Velocity
	r := norm(R)
	if r == 0 {
		return OrbitalElements{}, ErrZeroPosition
	}
	v := norm(V)

	hVec := cross(R, V)
	h := norm(hVec)
	if h <= 1e-12*r*v {
		// Covers parallel R and V as well as V = 0.
		return OrbitalElements{}, ErrRectilinear
	}

	// Eccentricity vector e = (v×h)/μ - r/|r|.
	eVec := r3.Sub(r3.Scale(1/μ, cross(V, hVec)), r3.Scale(1/r, R))
	e := norm(eVec)
	if math.Abs(e-1) < parabolicε {
		return OrbitalElements{}, ErrParabolic
	}

	ξ := v*v/2 - μ/r
	a := -μ / (2 * ξ)

	i := math.Acos(hVec.Z / h)

	nVec := cross(r3.Vec{Z: 1}, hVec)
	n := norm(nVec)

	var Ω float64
	if n > angleε {
		Ω = math.Acos(nVec.X / n)
		if nVec.Y < 0 {
			Ω = 2*math.Pi - Ω
		}
	}

	var ω float64
	if e > eccentricityε {
		if n > angleε {
			ω = math.Acos(dot(nVec, eVec) / (n * e))
			if math.IsNaN(ω) {
				ω = 0
			}
			if eVec.Z < 0 {
				ω = 2*math.Pi - ω
			}
		} else {
			// Elliptical equatorial: there is no node, so ω carries the
			// true longitude of periapsis, measured from +X.
			cosω := eVec.X / e
			if abscosω := math.Abs(cosω); abscosω > 1 && scalar.EqualWithinAbs(abscosω, 1, 1e-12) {
				cosω = sign(cosω)
			}
			ω = math.Acos(cosω)
			if eVec.Y < 0 {
				ω = 2*math.Pi - ω
			}
		}
	}

	var ν float64
	switch {
	case e > eccentricityε:
		cosν := dot(eVec, R) / (e * r)
		if abscosν := math.Abs(cosν); abscosν > 1 && scalar.EqualWithinAbs(abscosν, 1, 1e-12) {
			// Rounding can push cosν barely outside [-1, 1].
			cosν = sign(cosν)
		}
		ν = math.Acos(cosν)
		if dot(R, V) < 0 {
			ν = 2*math.Pi - ν
		}
	case n > angleε:
		// Circular inclined: measure from the ascending node.
		ν = math.Acos(dot(nVec, R) / (n * r))
		if R.Z < 0 {
			ν = 2*math.Pi - ν
		}
	default:
		// Circular equatorial: measure from +X.
		ν = wrap2Pi(math.Atan2(R.Y, R.X))
	}

	E := eccentricFromTrue(ν, e)
	M := meanFromEccentric(E, e)

	return OrbitalElements{
		SemiMajorAxis: a,
		Eccentricity:  e,
		Inclination:   math.Mod(i, 2*math.Pi),
		RAAN:          math.Mod(Ω, 2*math.Pi),
		ArgPeriapsis:  math.Mod(ω, 2*math.Pi),
		MeanAnomaly:   wrap2Pi(M),
		GM:            μ,
		Epoch:         epoch,
	}, nil
}

// Propagate returns the state at Epoch + dt seconds. The elements fully
// determine the trajectory, so the initial state argument of the motion
// model contract is not needed here; a negative dt propagates backward.
func (o OrbitalElements) Propagate(dt float64) State {
	M := o.MeanAnomaly + o.MeanMotion()*dt
	E := o.eccentricFromMean(M)
	ν := trueFromEccentric(E, o.Eccentricity)

	p := o.SemiParameter()
	sinν, cosν := math.Sincos(ν)
	r := p / (1 + o.Eccentricity*cosν)

	pqwR := r3.Vec{X: r * cosν, Y: r * sinν}
	vFact := math.Sqrt(o.GM / p)
	pqwV := r3.Vec{X: -vFact * sinν, Y: vFact * (o.Eccentricity + cosν)}

	return State{
		Position: PQW2ECI(o.Inclination, o.ArgPeriapsis, o.RAAN, pqwR),
		Velocity: PQW2ECI(o.Inclination, o.ArgPeriapsis, o.RAAN, pqwV),
	}
}

// eccentricFromMean solves Kepler's equation M = E - e·sin(E) by
// Newton-Raphson. Convergence is guaranteed for e in [0,1); the iteration
// count bound, not wall-clock, terminates the solver deterministically.
func (o OrbitalElements) eccentricFromMean(M float64) float64 {
	e := o.Eccentricity
	E := M
	if e >= 0.8 {
		E = math.Pi
	}
	for iter := 0; iter < keplerMaxIterations; iter++ {
		ΔE := (E - e*math.Sin(E) - M) / (1 - e*math.Cos(E))
		E -= ΔE
		if math.Abs(ΔE) < keplerTolerance {
			break
		}
	}
	return E
}

// trueFromEccentric converts eccentric to true anomaly via the half-angle
// relation.
func trueFromEccentric(E, e float64) float64 {
	β := e / (1 + math.Sqrt(1-e*e))
	return E + 2*math.Atan(β*math.Sin(E)/(1-β*math.Cos(E)))
}

// eccentricFromTrue converts true to eccentric anomaly.
func eccentricFromTrue(ν, e float64) float64 {
	return 2 * math.Atan(math.Sqrt((1-e)/(1+e))*math.Tan(ν/2))
}

// meanFromEccentric applies Kepler's equation forward.
func meanFromEccentric(E, e float64) float64 {
	return E - e*math.Sin(E)
}

// MeanMotion returns n = sqrt(μ/a³) in rad/s.
func (o OrbitalElements) MeanMotion() float64 {
	return math.Sqrt(o.GM / math.Pow(o.SemiMajorAxis, 3))
}

// OrbitalPeriod returns the period in seconds.
func (o OrbitalElements) OrbitalPeriod() float64 {
	return 2 * math.Pi * math.Sqrt(math.Pow(o.SemiMajorAxis, 3)/o.GM)
}

// Period returns the period as a time.Duration. Note that stellar-scale
// orbits overflow time.Duration; use OrbitalPeriod for those.
func (o OrbitalElements) Period() time.Duration {
	// The time package does not trivially handle fractions of a second,
	// so let's compute this in a convoluted way...
	duration, _ := time.ParseDuration(fmt.Sprintf("%.6fs", o.OrbitalPeriod()))
	return duration
}

// SemiParameter returns the semi-latus rectum p = a(1-e²).
func (o OrbitalElements) SemiParameter() float64 {
	return o.SemiMajorAxis * (1 - o.Eccentricity*o.Eccentricity)
}

// Apoapsis returns the apoapsis radius.
func (o OrbitalElements) Apoapsis() float64 {
	return o.SemiMajorAxis * (1 + o.Eccentricity)
}

// Periapsis returns the periapsis radius.
func (o OrbitalElements) Periapsis() float64 {
	return o.SemiMajorAxis * (1 - o.Eccentricity)
}

// Energy returns the specific mechanical energy ξ.
func (o OrbitalElements) Energy() float64 {
	return -o.GM / (2 * o.SemiMajorAxis)
}

// IsHyperbolic returns whether the orbit is open (e >= 1).
func (o OrbitalElements) IsHyperbolic() bool {
	return o.Eccentricity >= 1
}

// IsRetrograde returns whether the orbit is retrograde (i > π/2).
func (o OrbitalElements) IsRetrograde() bool {
	return o.Inclination > math.Pi/2
}

// String implements the stringer interface.
func (o OrbitalElements) String() string {
	return fmt.Sprintf("a=%.1f e=%.6f i=%.3f Ω=%.3f ω=%.3f M=%.3f",
		o.SemiMajorAxis, o.Eccentricity, Rad2deg(o.Inclination), Rad2deg(o.RAAN),
		Rad2deg(o.ArgPeriapsis), Rad2deg(o.MeanAnomaly))
}
