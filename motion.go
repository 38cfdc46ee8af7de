package stellarforge

import (
	"math"
	"sort"
	"time"

	"github.com/ChristopherRabotin/ode"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/spatial/r3"
)

// MotionModel is the closed set of propagation strategies. All variants
// share one contract: Propagate(model, initial, from, to) is a pure
// re-evaluation of the state at the target epoch, with no hidden mutable
// state between calls, which is what makes propagating distinct bodies
// embarrassingly parallel. The interface is sealed; Propagate switches
// exhaustively over the variants.
type MotionModel interface {
	motionModel()
}

// Propagate evaluates the model's state at epoch to, given the state at
// epoch from.
func Propagate(m MotionModel, initial State, from, to time.Time) State {
	dt := to.Sub(from).Seconds()
	switch model := m.(type) {
	case KeplerianMotion:
		return model.Elements.Propagate(dt)
	case FreeMotion:
		return model.propagate(initial, dt)
	case EphemerisTable:
		return model.Interpolate(to)
	case TwoBodyMotion:
		return model.propagate(initial, dt)
	case NBodyMotion:
		return model.propagate(initial, dt)
	}
	panic("unknown motion model")
}

// ModelOrbitalPeriod returns the orbital period in seconds for the models
// which have one.
func ModelOrbitalPeriod(m MotionModel) (float64, bool) {
	switch model := m.(type) {
	case KeplerianMotion:
		return model.Elements.OrbitalPeriod(), true
	case TwoBodyMotion:
		return model.Elements.OrbitalPeriod(), true
	}
	return 0, false
}

// KeplerianMotion propagates along an unperturbed two-body orbit.
type KeplerianMotion struct {
	Elements OrbitalElements
}

func (KeplerianMotion) motionModel() {}

// FreeMotion is rectilinear motion, optionally under a constant
// acceleration.
type FreeMotion struct {
	Acceleration r3.Vec // m/s², zero for unaccelerated motion
}

func (FreeMotion) motionModel() {}

func (f FreeMotion) propagate(initial State, dt float64) State {
	pos := r3.Add(initial.Position, r3.Scale(dt, initial.Velocity))
	vel := initial.Velocity
	pos = r3.Add(pos, r3.Scale(0.5*dt*dt, f.Acceleration))
	vel = r3.Add(vel, r3.Scale(dt, f.Acceleration))
	return State{Position: pos, Velocity: vel}
}

// InterpolationMethod selects how an EphemerisTable interpolates between
// samples.
type InterpolationMethod uint8

const (
	// Linear interpolation between the two bracketing samples.
	Linear InterpolationMethod = iota
	// CubicSpline is a natural cubic spline through all samples.
	CubicSpline
	// AkimaSpline is an Akima cubic, less prone to overshoot than the
	// natural spline on unevenly behaving data.
	AkimaSpline
	// Hermite uses the sampled velocities as position derivatives.
	Hermite
	// Lagrange is a fixed-order polynomial over the nearest samples.
	Lagrange
)

// EphemerisSample is one (epoch, state) pair of an ephemeris table.
type EphemerisSample struct {
	Epoch time.Time
	State State
}

// EphemerisTable interpolates a time-ordered list of state samples.
// Epochs outside the sampled range clamp to the nearest boundary sample;
// there is no extrapolation.
type EphemerisTable struct {
	Samples       []EphemerisSample
	Interpolation InterpolationMethod
	LagrangeOrder int // only read for Lagrange; defaults to 4
}

func (EphemerisTable) motionModel() {}

// NewEphemerisTable returns a table over the given samples, sorted by
// epoch, with linear interpolation.
func NewEphemerisTable(samples []EphemerisSample) EphemerisTable {
	sorted := make([]EphemerisSample, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Epoch.Before(sorted[j].Epoch) })
	return EphemerisTable{Samples: sorted, Interpolation: Linear}
}

// Interpolate evaluates the table at the given epoch.
func (t EphemerisTable) Interpolate(epoch time.Time) State {
	if len(t.Samples) == 0 {
		return State{}
	}
	first := t.Samples[0]
	last := t.Samples[len(t.Samples)-1]
	if len(t.Samples) == 1 || !epoch.After(first.Epoch) {
		return first.State
	}
	if !epoch.Before(last.Epoch) {
		return last.State
	}

	if t.Interpolation != Linear && !t.epochsStrictlyIncreasing() {
		// The gonum fitters reject repeated sample times, and the
		// Lagrange weights divide by the time differences.
		return t.interpolateLinear(epoch)
	}
	switch t.Interpolation {
	case CubicSpline:
		return t.interpolateFitted(epoch, func() fitPredictor { return &interp.NaturalCubic{} })
	case AkimaSpline:
		return t.interpolateFitted(epoch, func() fitPredictor { return &interp.AkimaSpline{} })
	case Hermite:
		return t.interpolateHermite(epoch)
	case Lagrange:
		return t.interpolateLagrange(epoch)
	}
	return t.interpolateLinear(epoch)
}

func (t EphemerisTable) epochsStrictlyIncreasing() bool {
	for i := 1; i < len(t.Samples); i++ {
		if !t.Samples[i].Epoch.After(t.Samples[i-1].Epoch) {
			return false
		}
	}
	return true
}

func (t EphemerisTable) interpolateLinear(epoch time.Time) State {
	i := sort.Search(len(t.Samples), func(i int) bool {
		return !t.Samples[i].Epoch.Before(epoch)
	})
	s0, s1 := t.Samples[i-1], t.Samples[i]
	span := s1.Epoch.Sub(s0.Epoch).Seconds()
	f := epoch.Sub(s0.Epoch).Seconds() / span
	return State{
		Position: r3.Add(r3.Scale(1-f, s0.State.Position), r3.Scale(f, s1.State.Position)),
		Velocity: r3.Add(r3.Scale(1-f, s0.State.Velocity), r3.Scale(f, s1.State.Velocity)),
	}
}

type fitPredictor interface {
	Fit(xs, ys []float64) error
	Predict(x float64) float64
}

// interpolateFitted runs a gonum/interp predictor componentwise over the
// whole table. Falls back to linear when a fit is not possible (too few
// samples for the method).
func (t EphemerisTable) interpolateFitted(epoch time.Time, newPredictor func() fitPredictor) State {
	xs, comps := t.series()
	x := epoch.Sub(t.Samples[0].Epoch).Seconds()
	var out [6]float64
	for c := 0; c < 6; c++ {
		p := newPredictor()
		if err := p.Fit(xs, comps[c]); err != nil {
			return t.interpolateLinear(epoch)
		}
		out[c] = p.Predict(x)
	}
	return stateFromComponents(out)
}

// interpolateHermite fits the position components with the sampled
// velocities as exact derivatives, and the velocity components with a
// natural cubic spline.
func (t EphemerisTable) interpolateHermite(epoch time.Time) State {
	xs, comps := t.series()
	x := epoch.Sub(t.Samples[0].Epoch).Seconds()
	var out [6]float64
	for c := 0; c < 3; c++ {
		// Interpolate screened out repeated epochs, which
		// FitWithDerivatives rejects with a panic.
		var p interp.PiecewiseCubic
		p.FitWithDerivatives(xs, comps[c], comps[c+3])
		out[c] = p.Predict(x)
	}
	for c := 3; c < 6; c++ {
		var p interp.NaturalCubic
		if err := p.Fit(xs, comps[c]); err != nil {
			return t.interpolateLinear(epoch)
		}
		out[c] = p.Predict(x)
	}
	return stateFromComponents(out)
}

// interpolateLagrange evaluates the Lagrange polynomial over the
// LagrangeOrder+1 samples nearest to the epoch.
func (t EphemerisTable) interpolateLagrange(epoch time.Time) State {
	order := t.LagrangeOrder
	if order < 1 {
		order = 4
	}
	if order >= len(t.Samples) {
		order = len(t.Samples) - 1
	}
	// Window of order+1 samples centered on the bracketing pair.
	i := sort.Search(len(t.Samples), func(i int) bool {
		return !t.Samples[i].Epoch.Before(epoch)
	})
	lo := i - (order+1)/2
	if lo < 0 {
		lo = 0
	}
	if lo+order+1 > len(t.Samples) {
		lo = len(t.Samples) - order - 1
	}
	window := t.Samples[lo : lo+order+1]

	x := epoch.Sub(t.Samples[0].Epoch).Seconds()
	xs := make([]float64, len(window))
	for j, s := range window {
		xs[j] = s.Epoch.Sub(t.Samples[0].Epoch).Seconds()
	}

	var out [6]float64
	for j := range window {
		lj := 1.0
		for k := range window {
			if k != j {
				lj *= (x - xs[k]) / (xs[j] - xs[k])
			}
		}
		comps := stateComponents(window[j].State)
		for c := 0; c < 6; c++ {
			out[c] += lj * comps[c]
		}
	}
	return stateFromComponents(out)
}

// series returns sample times (seconds since the first sample) and the six
// state component series.
func (t EphemerisTable) series() ([]float64, [6][]float64) {
	xs := make([]float64, len(t.Samples))
	var comps [6][]float64
	for c := range comps {
		comps[c] = make([]float64, len(t.Samples))
	}
	for i, s := range t.Samples {
		xs[i] = s.Epoch.Sub(t.Samples[0].Epoch).Seconds()
		sc := stateComponents(s.State)
		for c := 0; c < 6; c++ {
			comps[c][i] = sc[c]
		}
	}
	return xs, comps
}

func stateComponents(s State) [6]float64 {
	return [6]float64{s.Position.X, s.Position.Y, s.Position.Z,
		s.Velocity.X, s.Velocity.Y, s.Velocity.Z}
}

func stateFromComponents(c [6]float64) State {
	return State{
		Position: r3.Vec{X: c[0], Y: c[1], Z: c[2]},
		Velocity: r3.Vec{X: c[3], Y: c[4], Z: c[5]},
	}
}

// TwoBodyMotion is Keplerian base propagation followed by additive
// application of the perturbation terms in list order. The contract does
// not guarantee commutativity between terms: reordering the list may
// change the result. Known limitation, kept deliberately.
type TwoBodyMotion struct {
	Elements      OrbitalElements
	Perturbations []Perturbation
}

func (TwoBodyMotion) motionModel() {}

func (tb TwoBodyMotion) propagate(_ State, dt float64) State {
	s := tb.Elements.Propagate(dt)
	for _, p := range tb.Perturbations {
		s = applyPerturbation(p, s, dt)
	}
	return s
}

// IntegratorType selects the N-body integration scheme.
type IntegratorType uint8

const (
	// Euler is the explicit first-order scheme.
	Euler IntegratorType = iota
	// RK4 is the classical fourth-order Runge-Kutta scheme.
	RK4
	// Verlet currently integrates with RK4.
	Verlet
	// LeapFrog is the second-order symplectic kick-drift-kick scheme.
	LeapFrog
	// AdaptiveRK45 currently integrates with RK4 at a fixed step.
	AdaptiveRK45
)

// PointMass is one gravitating mass of an N-body environment.
type PointMass struct {
	Name     string
	GM       float64 // m³/s²
	Position r3.Vec  // meters, fixed in the propagation frame
}

// NBodyMotion integrates a test particle through the field of the listed
// point masses, held fixed at their positions. This variant is an
// extension point: it conforms to the propagation contract, but the
// integration is a fixed-step reference implementation, not a production
// N-body integrator.
type NBodyMotion struct {
	Bodies     []PointMass
	Integrator IntegratorType
	Step       time.Duration // integration step, defaults to one minute
}

func (NBodyMotion) motionModel() {}

func (nb NBodyMotion) propagate(initial State, dt float64) State {
	if dt == 0 || len(nb.Bodies) == 0 {
		return initial
	}
	// Gravity is time reversible: a negative dt integrates the
	// velocity-reversed state forward and flips it back.
	if dt < 0 {
		s := initial
		s.Velocity = r3.Scale(-1, s.Velocity)
		s = nb.propagate(s, -dt)
		s.Velocity = r3.Scale(-1, s.Velocity)
		return s
	}
	step := nb.Step.Seconds()
	if step <= 0 {
		step = 60
	}
	if step > dt {
		step = dt
	}
	switch nb.Integrator {
	case Euler:
		return nb.eulerIntegrate(initial, dt, step)
	case LeapFrog:
		return nb.leapFrogIntegrate(initial, dt, step)
	default:
		return nb.rk4Integrate(initial, dt, step)
	}
}

// gravityAccel sums the gravitational acceleration of all point masses at
// the given position.
func (nb NBodyMotion) gravityAccel(pos r3.Vec) r3.Vec {
	var a r3.Vec
	for _, b := range nb.Bodies {
		toBody := r3.Sub(b.Position, pos)
		d := norm(toBody)
		if d == 0 {
			continue
		}
		a = r3.Add(a, r3.Scale(b.GM/(d*d*d), toBody))
	}
	return a
}

func (nb NBodyMotion) eulerIntegrate(s State, dt, step float64) State {
	for t := 0.0; t < dt; t += step {
		h := math.Min(step, dt-t)
		a := nb.gravityAccel(s.Position)
		s.Position = r3.Add(s.Position, r3.Scale(h, s.Velocity))
		s.Velocity = r3.Add(s.Velocity, r3.Scale(h, a))
	}
	return s
}

// leapFrogIntegrate performs kick-drift-kick steps (2nd order,
// symplectic).
func (nb NBodyMotion) leapFrogIntegrate(s State, dt, step float64) State {
	for t := 0.0; t < dt; t += step {
		h := math.Min(step, dt-t)
		s.Velocity = r3.Add(s.Velocity, r3.Scale(0.5*h, nb.gravityAccel(s.Position)))
		s.Position = r3.Add(s.Position, r3.Scale(h, s.Velocity))
		s.Velocity = r3.Add(s.Velocity, r3.Scale(0.5*h, nb.gravityAccel(s.Position)))
	}
	return s
}

func (nb NBodyMotion) rk4Integrate(s State, dt, step float64) State {
	// Shrink the step so it divides the span evenly and the integration
	// lands exactly on the target epoch.
	step = dt / math.Ceil(dt/step)
	inte := &nbodyIntegrable{motion: nb, state: s, total: dt - step/2}
	ode.NewRK4(0, step, inte).Solve() // Blocking.
	return inte.state
}

// nbodyIntegrable adapts the fixed-field N-body problem to the ode
// integrator interface.
type nbodyIntegrable struct {
	motion NBodyMotion
	state  State
	total  float64
}

func (n *nbodyIntegrable) GetState() []float64 {
	c := stateComponents(n.state)
	return c[:]
}

func (n *nbodyIntegrable) SetState(t float64, s []float64) {
	n.state = stateFromComponents([6]float64{s[0], s[1], s[2], s[3], s[4], s[5]})
}

func (n *nbodyIntegrable) Stop(t float64) bool {
	return t >= n.total
}

func (n *nbodyIntegrable) Func(t float64, f []float64) []float64 {
	a := n.motion.gravityAccel(r3.Vec{X: f[0], Y: f[1], Z: f[2]})
	return []float64{f[3], f[4], f[5], a.X, a.Y, a.Z}
}
