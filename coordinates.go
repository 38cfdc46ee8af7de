package stellarforge

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// GalacticCoordinates is a position in the IAU 1958 galactic system:
// longitude l (radians, 0 toward the galactic center), latitude b (radians,
// +π/2 toward the North Galactic Pole), and distance from the Sun in
// meters. Distance may be +Inf to denote a direction-only reference point.
type GalacticCoordinates struct {
	Longitude float64 // radians, [0, 2π)
	Latitude  float64 // radians, [-π/2, π/2]
	Distance  float64 // meters, >= 0
}

// NewGalactic returns galactic coordinates from degrees and parsecs.
func NewGalactic(lDeg, bDeg, distancePc float64) GalacticCoordinates {
	return GalacticCoordinates{
		Longitude: Deg2rad(lDeg),
		Latitude:  bDeg * deg2rad,
		Distance:  distancePc * Parsec,
	}
}

// ToCartesian returns the Cartesian position: X toward the galactic center
// (l=0, b=0), Y toward l=90°, Z toward the North Galactic Pole.
func (g GalacticCoordinates) ToCartesian() r3.Vec {
	sb, cb := math.Sincos(g.Latitude)
	sl, cl := math.Sincos(g.Longitude)
	return r3.Vec{
		X: g.Distance * cb * cl,
		Y: g.Distance * cb * sl,
		Z: g.Distance * sb,
	}
}

// direction returns the unit vector toward these coordinates, finite even
// when Distance is zero or infinite.
func (g GalacticCoordinates) direction() r3.Vec {
	sb, cb := math.Sincos(g.Latitude)
	sl, cl := math.Sincos(g.Longitude)
	return r3.Vec{X: cb * cl, Y: cb * sl, Z: sb}
}

// GalacticFromCartesian derives galactic coordinates from a Cartesian
// position in meters.
func GalacticFromCartesian(cart r3.Vec) GalacticCoordinates {
	d := norm(cart)
	g := GalacticCoordinates{Distance: d}
	if d > 0 {
		g.Longitude = wrap2Pi(math.Atan2(cart.Y, cart.X))
		g.Latitude = math.Asin(cart.Z / d)
	}
	return g
}

// LongitudeDeg returns l in degrees.
func (g GalacticCoordinates) LongitudeDeg() float64 { return g.Longitude / deg2rad }

// LatitudeDeg returns b in degrees.
func (g GalacticCoordinates) LatitudeDeg() float64 { return g.Latitude / deg2rad }

// DistancePc returns the distance in parsecs.
func (g GalacticCoordinates) DistancePc() float64 { return g.Distance / Parsec }

// DistanceLy returns the distance in light years.
func (g GalacticCoordinates) DistanceLy() float64 { return g.Distance / LightYear }

// String implements the Stringer interface.
func (g GalacticCoordinates) String() string {
	return fmt.Sprintf("l=%.2f°, b=%+.2f°, d=%.1f pc", g.LongitudeDeg(), g.LatitudeDeg(), g.DistancePc())
}

// EquatorialCoordinates is a position in the J2000.0 equatorial system:
// right ascension and declination in radians, distance in meters. Distance
// may be +Inf to denote a direction-only reference point such as a
// celestial pole.
type EquatorialCoordinates struct {
	RightAscension float64 // radians, [0, 2π)
	Declination    float64 // radians, [-π/2, π/2]
	Distance       float64 // meters, >= 0
}

// NewEquatorial returns equatorial coordinates from hours of right
// ascension, degrees of declination, and parsecs.
func NewEquatorial(raHours, decDeg, distancePc float64) EquatorialCoordinates {
	return EquatorialCoordinates{
		RightAscension: wrap2Pi(raHours * math.Pi / 12),
		Declination:    decDeg * deg2rad,
		Distance:       distancePc * Parsec,
	}
}

// ToCartesian returns the Cartesian position in the equatorial frame.
func (e EquatorialCoordinates) ToCartesian() r3.Vec {
	sd, cd := math.Sincos(e.Declination)
	sa, ca := math.Sincos(e.RightAscension)
	return r3.Vec{
		X: e.Distance * cd * ca,
		Y: e.Distance * cd * sa,
		Z: e.Distance * sd,
	}
}

func (e EquatorialCoordinates) direction() r3.Vec {
	sd, cd := math.Sincos(e.Declination)
	sa, ca := math.Sincos(e.RightAscension)
	return r3.Vec{X: cd * ca, Y: cd * sa, Z: sd}
}

// RAHours returns the right ascension in hours.
func (e EquatorialCoordinates) RAHours() float64 { return e.RightAscension * 12 / math.Pi }

// DeclinationDeg returns the declination in degrees.
func (e EquatorialCoordinates) DeclinationDeg() float64 { return e.Declination / deg2rad }

// DistancePc returns the distance in parsecs.
func (e EquatorialCoordinates) DistancePc() float64 { return e.Distance / Parsec }

// String implements the Stringer interface.
func (e EquatorialCoordinates) String() string {
	raH := e.RAHours()
	h := math.Floor(raH)
	m := math.Floor((raH - h) * 60)
	s := ((raH-h)*60 - m) * 60
	dec := e.DeclinationDeg()
	sign := "+"
	if dec < 0 {
		sign = "-"
		dec = -dec
	}
	dd := math.Floor(dec)
	dm := math.Floor((dec - dd) * 60)
	ds := ((dec-dd)*60 - dm) * 60
	return fmt.Sprintf("RA %02.0fh %02.0fm %.2fs, Dec %s%02.0f° %02.0f' %.1f\", d=%.1f pc",
		h, m, s, sign, dd, dm, ds, e.DistancePc())
}

// eq2galRot is the IAU-standard rotation from equatorial J2000 to galactic
// Cartesian axes (Reid & Brunthaler 2004). gal2eqRot is its exact
// transpose; both matrices are orthogonal.
var eq2galRot = mat.NewDense(3, 3, []float64{
	-0.054875539390, -0.873437104725, -0.483834991775,
	+0.494109453633, -0.444829594298, +0.746982248696,
	-0.867666135681, -0.198076389622, +0.455983794523,
})

var gal2eqRot = asDense(eq2galRot.T())

func asDense(m mat.Matrix) *mat.Dense {
	var d mat.Dense
	d.CloneFrom(m)
	return &d
}

// EquatorialToGalactic converts J2000 equatorial coordinates to galactic
// coordinates. The rotation acts on the unit direction vector so that
// zero and infinite distances survive the round trip.
func EquatorialToGalactic(eq EquatorialCoordinates) GalacticCoordinates {
	dir := MxV33(eq2galRot, eq.direction())
	g := GalacticFromCartesian(dir)
	g.Distance = eq.Distance
	return g
}

// GalacticToEquatorial converts galactic coordinates to J2000 equatorial
// coordinates. Exact inverse of EquatorialToGalactic.
func GalacticToEquatorial(gal GalacticCoordinates) EquatorialCoordinates {
	dir := MxV33(gal2eqRot, gal.direction())
	d := norm(dir)
	eq := EquatorialCoordinates{Distance: gal.Distance}
	if d > 0 {
		eq.RightAscension = wrap2Pi(math.Atan2(dir.Y, dir.X))
		eq.Declination = math.Asin(dir.Z / d)
	}
	return eq
}

// AstrosynthesisToGalactic converts legacy Astrosynthesis map coordinates
// (X right, Y up, Z out of the screen, in light years) to IAU galactic
// coordinates: galactic X = astro X, Y = -astro Z, Z = astro Y.
func AstrosynthesisToGalactic(x, y, z float64) GalacticCoordinates {
	return GalacticFromCartesian(r3.Vec{
		X: x * LightYear,
		Y: -z * LightYear,
		Z: y * LightYear,
	})
}

// GalacticToAstrosynthesis converts IAU galactic coordinates back to the
// Astrosynthesis axis convention, in light years. Exact inverse of
// AstrosynthesisToGalactic.
func GalacticToAstrosynthesis(gal GalacticCoordinates) (x, y, z float64) {
	cart := gal.ToCartesian()
	return cart.X / LightYear, cart.Z / LightYear, -cart.Y / LightYear
}

// Solar peculiar motion relative to the Local Standard of Rest
// (Schönrich et al. 2010), in m/s.
var solarPeculiarMotion = r3.Vec{X: 11100, Y: 12240, Z: 7250}

// ApplyLSRCorrection converts a heliocentric velocity to a Local Standard
// of Rest velocity by removing the Sun's peculiar motion.
func ApplyLSRCorrection(vel r3.Vec) r3.Vec {
	return r3.Sub(vel, solarPeculiarMotion)
}

/* Reference positions. These are golden fixtures, not runtime state. */

// Sol is the origin of the galactic coordinate system by definition.
func Sol() GalacticCoordinates {
	return NewGalactic(0, 0, 0)
}

// AlphaCentauri is the closest stellar system.
func AlphaCentauri() GalacticCoordinates {
	return NewGalactic(315.8, -0.68, 1.34)
}

// SgrAStar is the galactic center black hole.
func SgrAStar() GalacticCoordinates {
	return NewGalactic(0, 0, 8178)
}

// Polaris is the north star.
func Polaris() GalacticCoordinates {
	return NewGalactic(123.3, -17.1, 132.6)
}

// Vega used to be the north star, and will be again.
func Vega() GalacticCoordinates {
	return NewGalactic(67.4, 19.2, 7.68)
}

// Betelgeuse may already have gone supernova.
func Betelgeuse() GalacticCoordinates {
	return NewGalactic(199.8, -8.96, 168.1)
}

// GalacticCenter is at l=0, b=0, roughly 8 kpc out.
func GalacticCenter() GalacticCoordinates {
	return NewGalactic(0, 0, 8000)
}

// NorthGalacticPoleEquatorial returns the NGP in J2000 equatorial
// coordinates, at infinite distance (direction only).
func NorthGalacticPoleEquatorial() EquatorialCoordinates {
	ngp := NewEquatorial(
		12+51/60.0+26.28/3600.0,
		27+7/60.0+41.7/3600.0,
		1,
	)
	ngp.Distance = math.Inf(1)
	return ngp
}

// FormatCartesian renders a Cartesian position in the requested length
// unit ("pc", "ly", "AU", "km" or meters otherwise).
func FormatCartesian(pos r3.Vec, unit string) string {
	div := Meter
	switch unit {
	case "pc":
		div = Parsec
	case "ly":
		div = LightYear
	case "AU":
		div = AU
	case "km":
		div = Kilometer
	}
	return fmt.Sprintf("X=%.1f, Y=%.1f, Z=%.1f %s", pos.X/div, pos.Y/div, pos.Z/div, unit)
}
