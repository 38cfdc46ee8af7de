package stellarforge

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestFreeMotion(t *testing.T) {
	s := State{Position: r3.Vec{X: 1e3}, Velocity: r3.Vec{X: 10, Y: -5}}
	from := J2000
	to := from.Add(100 * time.Second)

	// Unaccelerated: straight line.
	got := Propagate(FreeMotion{}, s, from, to)
	if !vectorsEqualTol(got.Position, r3.Vec{X: 2e3, Y: -500}, 1e-12) {
		t.Fatalf("free motion position = %+v", got.Position)
	}
	if got.Velocity != s.Velocity {
		t.Fatalf("free motion altered the velocity: %+v", got.Velocity)
	}

	// Constant acceleration.
	acc := FreeMotion{Acceleration: r3.Vec{Z: 2}}
	got = Propagate(acc, s, from, to)
	if !floatsEqual(got.Position.Z, 0.5*2*100*100, 1e-9) {
		t.Fatalf("accelerated position Z = %f", got.Position.Z)
	}
	if !floatsEqual(got.Velocity.Z, 200, 1e-9) {
		t.Fatalf("accelerated velocity Z = %f", got.Velocity.Z)
	}

	// Propagating backward undoes propagating forward.
	back := Propagate(FreeMotion{}, got, to, from)
	if !vectorsEqualTol(back.Velocity, got.Velocity, 1e-12) {
		t.Fatal("backward free motion altered the velocity")
	}
}

func TestKeplerianMotionModel(t *testing.T) {
	o := OrbitalElements{
		SemiMajorAxis: 7.5e6,
		Eccentricity:  0.05,
		Inclination:   Deg2rad(28.5),
		GM:            Earth.GM(),
		Epoch:         J2000,
	}
	m := KeplerianMotion{Elements: o}
	T, ok := ModelOrbitalPeriod(m)
	if !ok {
		t.Fatal("Keplerian model has no period")
	}
	s0 := Propagate(m, State{}, J2000, J2000)
	s1 := Propagate(m, State{}, J2000, J2000.Add(time.Duration(T*float64(time.Second))))
	if !vectorsEqual(s0.Position, s1.Position) {
		t.Fatalf("one period did not close the orbit:\n%s\n%s", s0, s1)
	}
}

func sampleTable(n int, step time.Duration, f func(tsec float64) State) []EphemerisSample {
	samples := make([]EphemerisSample, n)
	for i := range samples {
		tsec := float64(i) * step.Seconds()
		samples[i] = EphemerisSample{Epoch: J2000.Add(time.Duration(i) * step), State: f(tsec)}
	}
	return samples
}

func TestEphemerisTableClamp(t *testing.T) {
	table := NewEphemerisTable(sampleTable(5, time.Minute, func(tsec float64) State {
		return State{Position: r3.Vec{X: tsec}, Velocity: r3.Vec{X: 1}}
	}))
	first := table.Samples[0].State
	last := table.Samples[4].State
	if got := Propagate(table, State{}, J2000, J2000.Add(-time.Hour)); got != first {
		t.Fatalf("before-range epoch did not clamp: %s", got)
	}
	if got := Propagate(table, State{}, J2000, J2000.Add(24*time.Hour)); got != last {
		t.Fatalf("after-range epoch did not clamp: %s", got)
	}
	// On-sample epochs are exact.
	if got := table.Interpolate(J2000.Add(2 * time.Minute)); !vectorsEqualTol(got.Position, r3.Vec{X: 120}, 1e-9) {
		t.Fatalf("on-sample interpolation = %+v", got.Position)
	}
}

func TestEphemerisTableUnsortedInput(t *testing.T) {
	samples := sampleTable(4, time.Minute, func(tsec float64) State {
		return State{Position: r3.Vec{X: tsec}}
	})
	// Shuffle and rebuild: the constructor must sort.
	shuffled := []EphemerisSample{samples[2], samples[0], samples[3], samples[1]}
	table := NewEphemerisTable(shuffled)
	for i := range samples {
		if table.Samples[i].Epoch != samples[i].Epoch {
			t.Fatalf("sample %d out of order", i)
		}
	}
}

func TestEphemerisTableRepeatedEpochs(t *testing.T) {
	// A repeated sample time cannot back a fitted interpolant: every
	// method must degrade to linear interpolation instead of panicking.
	linear := func(tsec float64) State {
		return State{Position: r3.Vec{X: 100 * tsec, Y: -3 * tsec}, Velocity: r3.Vec{X: 100, Y: -3}}
	}
	samples := sampleTable(4, time.Minute, linear)
	samples[2] = samples[1]
	at := J2000.Add(90 * time.Second)
	want := linear(90)
	for _, method := range []InterpolationMethod{Linear, CubicSpline, AkimaSpline, Hermite, Lagrange} {
		table := NewEphemerisTable(samples)
		table.Interpolation = method
		got := table.Interpolate(at)
		if !vectorsEqualTol(got.Position, want.Position, 1e-6) {
			t.Fatalf("method %d position = %+v, want %+v", method, got.Position, want.Position)
		}
		if !vectorsEqualTol(got.Velocity, want.Velocity, 1e-6) {
			t.Fatalf("method %d velocity = %+v, want %+v", method, got.Velocity, want.Velocity)
		}
	}
}

func TestEphemerisTableInterpolation(t *testing.T) {
	// Linear motion is reproduced exactly by every method.
	linear := func(tsec float64) State {
		return State{Position: r3.Vec{X: 100 * tsec, Y: -3 * tsec}, Velocity: r3.Vec{X: 100, Y: -3}}
	}
	for _, method := range []InterpolationMethod{Linear, CubicSpline, AkimaSpline, Hermite, Lagrange} {
		table := NewEphemerisTable(sampleTable(8, time.Minute, linear))
		table.Interpolation = method
		at := J2000.Add(90 * time.Second)
		got := table.Interpolate(at)
		want := linear(90)
		if !vectorsEqualTol(got.Position, want.Position, 1e-6) {
			t.Fatalf("method %d position = %+v, want %+v", method, got.Position, want.Position)
		}
	}

	// A quadratic is exact under Hermite and Lagrange, and close under a
	// cubic spline.
	quad := func(tsec float64) State {
		return State{Position: r3.Vec{X: tsec * tsec}, Velocity: r3.Vec{X: 2 * tsec}}
	}
	table := NewEphemerisTable(sampleTable(8, time.Minute, quad))
	at := J2000.Add(90 * time.Second)
	want := quad(90).Position.X
	for _, method := range []InterpolationMethod{Hermite, Lagrange} {
		table.Interpolation = method
		got := table.Interpolate(at).Position.X
		if !floatsEqual(got, want, math.Abs(want)*1e-6) {
			t.Fatalf("method %d on quadratic: %f, want %f", method, got, want)
		}
	}
	table.Interpolation = Linear
	gotLinear := table.Interpolate(at).Position.X
	// Linear overestimates a convex quadratic between samples.
	if gotLinear <= want {
		t.Fatalf("linear on convex quadratic should overshoot: %f vs %f", gotLinear, want)
	}
}

func TestTwoBodyMotionPerturbed(t *testing.T) {
	o := OrbitalElements{SemiMajorAxis: 7e6, Eccentricity: 0.01, Inclination: Deg2rad(51.6), GM: Earth.GM(), Epoch: J2000}
	pure := TwoBodyMotion{Elements: o}
	perturbed := TwoBodyMotion{Elements: o, Perturbations: []Perturbation{
		J2Perturbation{Coefficient: Earth.J2, BodyRadius: Earth.Radius, GM: Earth.GM()},
	}}
	from := J2000
	to := from.Add(10 * time.Minute)
	sPure := Propagate(pure, State{}, from, to)
	sPert := Propagate(perturbed, State{}, from, to)
	// An empty perturbation list is pure Keplerian motion.
	if sPure != Propagate(KeplerianMotion{Elements: o}, State{}, from, to) {
		t.Fatal("perturbation-free two-body diverged from Keplerian")
	}
	// J2 must have done something, but not much over ten minutes.
	Δ := norm(r3.Sub(sPure.Position, sPert.Position))
	if Δ == 0 {
		t.Fatal("J2 had no effect")
	}
	if Δ > 100e3 {
		t.Fatalf("J2 moved the state by %f m in ten minutes", Δ)
	}
}

func TestNBodyMotion(t *testing.T) {
	// A test particle in a circular orbit around a single fixed mass: over
	// a short arc the trajectory must track the Keplerian solution.
	r := 7e6
	v := math.Sqrt(Earth.GM() / r)
	initial := State{Position: r3.Vec{X: r}, Velocity: r3.Vec{Y: v}}
	o, err := ElementsFromStateVectors(initial, Earth.GM(), J2000)
	if err != nil {
		t.Fatalf("element derivation errored: %s", err)
	}
	from := J2000
	to := from.Add(5 * time.Minute)
	want := Propagate(KeplerianMotion{Elements: o}, initial, from, to)

	for _, integ := range []IntegratorType{Euler, RK4, LeapFrog, Verlet, AdaptiveRK45} {
		nb := NBodyMotion{
			Bodies:     []PointMass{{Name: "Earth", GM: Earth.GM()}},
			Integrator: integ,
			Step:       time.Second,
		}
		got := Propagate(nb, initial, from, to)
		tol := 1e-4 // relative
		if integ == Euler {
			tol = 1e-2 // first order
		}
		if !vectorsEqualTol(got.Position, want.Position, tol) {
			t.Fatalf("integrator %d drifted: %+v, want %+v", integ, got.Position, want.Position)
		}
	}
}

func TestNBodyTimeReversal(t *testing.T) {
	nb := NBodyMotion{
		Bodies:     []PointMass{{Name: "Earth", GM: Earth.GM()}},
		Integrator: RK4,
		Step:       time.Second,
	}
	r := 7e6
	initial := State{Position: r3.Vec{X: r}, Velocity: r3.Vec{Y: math.Sqrt(Earth.GM() / r)}}
	from := J2000
	to := from.Add(2 * time.Minute)
	fwd := Propagate(nb, initial, from, to)
	back := Propagate(nb, fwd, to, from)
	if !vectorsEqualTol(back.Position, initial.Position, 1e-6) {
		t.Fatalf("time reversal drifted: %+v", back.Position)
	}
	// Zero elapsed time and empty body list are both the identity.
	if got := Propagate(nb, initial, from, from); got != initial {
		t.Fatal("zero dt altered the state")
	}
	if got := Propagate(NBodyMotion{}, initial, from, to); got != initial {
		t.Fatal("empty body list altered the state")
	}
}

func TestModelOrbitalPeriod(t *testing.T) {
	o := OrbitalElements{SemiMajorAxis: 7e6, GM: Earth.GM()}
	if _, ok := ModelOrbitalPeriod(FreeMotion{}); ok {
		t.Fatal("free motion has a period")
	}
	if _, ok := ModelOrbitalPeriod(EphemerisTable{}); ok {
		t.Fatal("an ephemeris table has a period")
	}
	if T, ok := ModelOrbitalPeriod(TwoBodyMotion{Elements: o}); !ok || !floatsEqual(T, o.OrbitalPeriod(), 1e-9) {
		t.Fatal("two-body period mismatch")
	}
}
