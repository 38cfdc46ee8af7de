package stellarforge

import (
	"fmt"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// State is the kinematic state of a body at one instant in one frame.
// Position is in meters, Velocity in meters per second.
type State struct {
	Position r3.Vec
	Velocity r3.Vec
}

func (s State) String() string {
	return fmt.Sprintf("R=%+v m\tV=%+v m/s", s.Position, s.Velocity)
}

// Transform maps a child frame's State into its parent's State. The inverse
// mapping, ApplyInverse, is the exact algebraic inverse of Apply.
// Translation is in meters; Rotation must be a unit quaternion. A zero
// AngularVelocity (rad/s) makes the hop non-rotating: the ω×r velocity term
// vanishes identically, so no separate flag is carried.
type Transform struct {
	Translation     r3.Vec
	Rotation        r3.Rotation
	AngularVelocity r3.Vec
}

// IdentityRotation returns the rotation which maps every vector to itself.
func IdentityRotation() r3.Rotation {
	return r3.Rotation(quat.Number{Real: 1})
}

// NewTransform returns a translation-only transform.
func NewTransform(translation r3.Vec) Transform {
	return Transform{Translation: translation, Rotation: IdentityRotation()}
}

// inverse returns the inverse rotation. Valid for unit quaternions only.
func inverseRotation(r r3.Rotation) r3.Rotation {
	return r3.Rotation(quat.Conj(quat.Number(r)))
}

// Apply maps a state expressed in the child frame into the parent frame:
// rotate, then translate. For a rotating hop the ω×r term is added to the
// velocity, ω being expressed in the parent frame.
func (t Transform) Apply(s State) State {
	pos := t.Rotation.Rotate(s.Position)
	vel := r3.Add(t.Rotation.Rotate(s.Velocity), cross(t.AngularVelocity, pos))
	return State{
		Position: r3.Add(pos, t.Translation),
		Velocity: vel,
	}
}

// ApplyInverse maps a state expressed in the parent frame back into the
// child frame: subtract the translation, remove the ω×r term computed in
// the translated frame, then apply the inverse rotation.
func (t Transform) ApplyInverse(s State) State {
	inv := inverseRotation(t.Rotation)
	pos := r3.Sub(s.Position, t.Translation)
	vel := r3.Sub(s.Velocity, cross(t.AngularVelocity, pos))
	return State{
		Position: inv.Rotate(pos),
		Velocity: inv.Rotate(vel),
	}
}

// J2000 is the standard reference epoch, 2000-01-01 12:00:00 TT treated as
// UTC for this library's purposes.
var J2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// JulianDate returns the Julian date of the given instant.
func JulianDate(dt time.Time) float64 {
	return julian.TimeToJD(dt.UTC())
}

// JulianCenturiesSinceJ2000 returns the number of Julian centuries elapsed
// between J2000 and the given epoch.
func JulianCenturiesSinceJ2000(dt time.Time) float64 {
	return dt.UTC().Sub(J2000).Seconds() / (36525.0 * 86400.0)
}
