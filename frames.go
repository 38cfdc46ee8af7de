package stellarforge

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// FrameID identifies a reference frame inside a FrameHierarchy.
type FrameID = uuid.UUID

// FrameKind tags the role of a reference frame.
type FrameKind uint8

const (
	// GalacticIAU is the IAU standard galactic frame, Sun at origin.
	GalacticIAU FrameKind = iota
	// ICRS is the International Celestial Reference System.
	ICRS
	// Barycentric is centered on a system's center of mass.
	Barycentric
	// Stellar is a star-centered frame.
	Stellar
	// Planetary is planet-centered, non-rotating.
	Planetary
	// Rotating is a body-fixed rotating frame.
	Rotating
	// Orbital is an orbital-plane reference frame.
	Orbital
	// LocalVehicle is a local frame for stations and ships.
	LocalVehicle
	// AstrosynthesisLegacy carries imported Astrosynthesis coordinates.
	AstrosynthesisLegacy
	// Custom is a user-defined frame.
	Custom
)

func (k FrameKind) String() string {
	switch k {
	case GalacticIAU:
		return "GalacticIAU"
	case ICRS:
		return "ICRS"
	case Barycentric:
		return "Barycentric"
	case Stellar:
		return "Stellar"
	case Planetary:
		return "Planetary"
	case Rotating:
		return "Rotating"
	case Orbital:
		return "Orbital"
	case LocalVehicle:
		return "LocalVehicle"
	case AstrosynthesisLegacy:
		return "AstrosynthesisLegacy"
	case Custom:
		return "Custom"
	}
	panic("cannot stringify unknown frame kind")
}

// CoordinateSystem tags how positions in a frame are expressed.
type CoordinateSystem uint8

const (
	// Cartesian is X, Y, Z in meters.
	Cartesian CoordinateSystem = iota
	// Spherical is r, θ (azimuth), φ (polar angle).
	Spherical
	// Cylindrical is ρ, θ, z.
	Cylindrical
	// GalacticSpherical is l, b, distance.
	GalacticSpherical
	// EquatorialSpherical is RA, Dec, distance.
	EquatorialSpherical
)

func (c CoordinateSystem) String() string {
	switch c {
	case Cartesian:
		return "Cartesian"
	case Spherical:
		return "Spherical"
	case Cylindrical:
		return "Cylindrical"
	case GalacticSpherical:
		return "GalacticSpherical"
	case EquatorialSpherical:
		return "EquatorialSpherical"
	}
	panic("cannot stringify unknown coordinate system")
}

// FrameMetadata carries descriptive information about a frame.
type FrameMetadata struct {
	Description          string
	IsInertial           bool
	PrimaryBody          FrameID // zero UUID if none
	OrientationReference string  // e.g. "ICRS", "J2000"
}

// Frame is one node of the frame forest. A frame with a nil Parent is a
// root and must not carry a ToParent transform.
type Frame struct {
	ID               FrameID
	Name             string
	Kind             FrameKind
	Parent           *FrameID
	Epoch            time.Time
	ToParent         *Transform
	CoordinateSystem CoordinateSystem
	Metadata         FrameMetadata
}

// IsRoot returns whether this frame has no parent.
func (f Frame) IsRoot() bool {
	return f.Parent == nil
}

// NewGalacticIAUFrame returns a root frame in the IAU galactic convention.
func NewGalacticIAUFrame(name string) Frame {
	return Frame{
		ID:               uuid.New(),
		Name:             name,
		Kind:             GalacticIAU,
		Epoch:            J2000,
		CoordinateSystem: Cartesian,
		Metadata: FrameMetadata{
			Description:          "IAU Galactic coordinate frame (Sun at origin, X toward GC)",
			IsInertial:           true,
			OrientationReference: "IAU",
		},
	}
}

// NewICRSFrame returns a root frame in the ICRS convention.
func NewICRSFrame(name string) Frame {
	return Frame{
		ID:               uuid.New(),
		Name:             name,
		Kind:             ICRS,
		Epoch:            J2000,
		CoordinateSystem: Cartesian,
		Metadata: FrameMetadata{
			Description:          "International Celestial Reference System",
			IsInertial:           true,
			OrientationReference: "ICRS",
		},
	}
}

// NewBarycentricFrame returns a frame at the given position in its parent,
// with the parent's orientation.
func NewBarycentricFrame(name string, parent FrameID, positionInParent r3.Vec, epoch time.Time) Frame {
	t := NewTransform(positionInParent)
	return Frame{
		ID:               uuid.New(),
		Name:             name,
		Kind:             Barycentric,
		Parent:           &parent,
		Epoch:            epoch,
		ToParent:         &t,
		CoordinateSystem: Cartesian,
		Metadata: FrameMetadata{
			Description: "System barycenter frame",
			IsInertial:  true,
		},
	}
}

// NewPlanetaryFrame returns a planet-centered inertial frame. Its ToParent
// transform is nil until the body/container layer computes it from the
// body's motion model.
func NewPlanetaryFrame(name string, parent, body FrameID, epoch time.Time) Frame {
	return Frame{
		ID:               uuid.New(),
		Name:             name,
		Kind:             Planetary,
		Parent:           &parent,
		Epoch:            epoch,
		CoordinateSystem: Cartesian,
		Metadata: FrameMetadata{
			Description: "Planet-centered inertial frame",
			IsInertial:  true,
			PrimaryBody: body,
		},
	}
}

// FrameNotFoundError reports a reference to an absent frame.
type FrameNotFoundError struct {
	ID FrameID
}

func (e FrameNotFoundError) Error() string {
	return fmt.Sprintf("frame %s not found", e.ID)
}

// ErrDisconnectedFrames reports a transform request between two frames
// which share no common ancestor.
var ErrDisconnectedFrames = errors.New("cannot transform between disconnected frames")

// TransformError reports an internal invariant violation during a frame
// transformation, such as a circular parent chain.
type TransformError struct {
	Reason string
}

func (e TransformError) Error() string {
	return "coordinate transformation failed: " + e.Reason
}

type transformDirection uint8

const (
	toParent transformDirection = iota
	fromParent
)

type pathStep struct {
	frame     FrameID
	direction transformDirection
}

type pathKey struct {
	from, to FrameID
}

// pathCache memoizes resolved transform paths between frame pairs. Any
// mutation of the hierarchy marks it dirty; the next lookup drops all
// entries and recomputes on miss.
type pathCache struct {
	mu    sync.Mutex
	paths map[pathKey][]pathStep
	dirty bool
}

func newPathCache() *pathCache {
	return &pathCache{paths: make(map[pathKey][]pathStep)}
}

func (c *pathCache) invalidate() {
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}

func (c *pathCache) lookup(k pathKey) ([]pathStep, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dirty {
		c.paths = make(map[pathKey][]pathStep)
		c.dirty = false
		return nil, false
	}
	p, ok := c.paths[k]
	return p, ok
}

func (c *pathCache) store(k pathKey, p []pathStep) {
	c.mu.Lock()
	if !c.dirty {
		c.paths[k] = p
	}
	c.mu.Unlock()
}

// FrameHierarchy owns all frames of a rooted forest, keyed by id, and is
// the single authority for navigating it: frames never hold references to
// each other, all parent and child lookups go through the hierarchy.
//
// AddFrame and UpdateFrame are serialized against each other and against
// readers; TransformState, Frame and ChildFrames may run concurrently.
type FrameHierarchy struct {
	mu     sync.RWMutex
	frames map[FrameID]Frame
	cache  *pathCache
}

// NewFrameHierarchy returns an empty hierarchy.
func NewFrameHierarchy() *FrameHierarchy {
	return &FrameHierarchy{
		frames: make(map[FrameID]Frame),
		cache:  newPathCache(),
	}
}

// AddFrame inserts a frame. It fails with a FrameNotFoundError if the
// frame declares a parent which is not yet present. There is no frame
// removal: the forest only grows (limitation shared with the persistence
// layer, which has no delete either).
func (h *FrameHierarchy) AddFrame(f Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f.Parent != nil {
		if _, found := h.frames[*f.Parent]; !found {
			return FrameNotFoundError{*f.Parent}
		}
	} else if f.ToParent != nil {
		return TransformError{"root frame carries a transform to parent"}
	}
	h.frames[f.ID] = f
	h.cache.invalidate()
	return nil
}

// Frame returns a copy of the frame with the given id.
func (h *FrameHierarchy) Frame(id FrameID) (Frame, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	f, found := h.frames[id]
	if !found {
		return Frame{}, FrameNotFoundError{id}
	}
	return f, nil
}

// UpdateFrame applies the given mutation to a frame under the write lock
// and invalidates derived transforms. The mutation must not change the
// frame's id.
func (h *FrameHierarchy) UpdateFrame(id FrameID, mutate func(*Frame)) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	f, found := h.frames[id]
	if !found {
		return FrameNotFoundError{id}
	}
	mutate(&f)
	f.ID = id
	h.frames[id] = f
	h.cache.invalidate()
	return nil
}

// ChildFrames returns copies of all frames whose parent is the given id.
func (h *FrameHierarchy) ChildFrames(parent FrameID) []Frame {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var children []Frame
	for _, f := range h.frames {
		if f.Parent != nil && *f.Parent == parent {
			children = append(children, f)
		}
	}
	return children
}

// Len returns the number of frames in the hierarchy.
func (h *FrameHierarchy) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.frames)
}

// TransformState expresses a state known in fromFrame into toFrame. The
// transform walks up from fromFrame to the deepest common ancestor
// applying each hop's ToParent transform, then down to toFrame applying
// the exact algebraic inverses. Frames in disjoint trees yield
// ErrDisconnectedFrames. The epoch is carried for rotating-frame hops
// which need it; the rigid transforms stored today do not.
func (h *FrameHierarchy) TransformState(s State, fromFrame, toFrame FrameID, epoch time.Time) (State, error) {
	if fromFrame == toFrame {
		// Still ensure the frame actually exists.
		if _, err := h.Frame(fromFrame); err != nil {
			return State{}, err
		}
		return s, nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	path, err := h.transformPath(fromFrame, toFrame)
	if err != nil {
		return State{}, err
	}

	cur := s
	for _, step := range path {
		f, found := h.frames[step.frame]
		if !found {
			return State{}, FrameNotFoundError{step.frame}
		}
		if f.ToParent == nil {
			continue
		}
		switch step.direction {
		case toParent:
			cur = f.ToParent.Apply(cur)
		case fromParent:
			cur = f.ToParent.ApplyInverse(cur)
		}
	}
	return cur, nil
}

// transformPath resolves the hop list between two frames, consulting the
// path cache first. Caller must hold at least the read lock.
func (h *FrameHierarchy) transformPath(from, to FrameID) ([]pathStep, error) {
	key := pathKey{from, to}
	if p, ok := h.cache.lookup(key); ok {
		return p, nil
	}

	fromPath, err := h.pathToRoot(from)
	if err != nil {
		return nil, err
	}
	toPath, err := h.pathToRoot(to)
	if err != nil {
		return nil, err
	}

	ancestor, err := commonAncestor(fromPath, toPath)
	if err != nil {
		return nil, err
	}

	var path []pathStep
	for _, id := range fromPath {
		if id == ancestor {
			break
		}
		path = append(path, pathStep{id, toParent})
	}
	ancestorIdx := 0
	for i, id := range toPath {
		if id == ancestor {
			ancestorIdx = i
			break
		}
	}
	for i := ancestorIdx - 1; i >= 0; i-- {
		path = append(path, pathStep{toPath[i], fromParent})
	}

	h.cache.store(key, path)
	return path, nil
}

// pathToRoot returns the frame ids from the given frame up to its root,
// inclusive. Cycle detection is defensive: AddFrame cannot create a cycle,
// but a corrupted hierarchy must fail loudly rather than spin.
func (h *FrameHierarchy) pathToRoot(id FrameID) ([]FrameID, error) {
	var path []FrameID
	visited := make(map[FrameID]bool)
	for {
		if visited[id] {
			return nil, TransformError{"circular reference in frame hierarchy"}
		}
		visited[id] = true
		path = append(path, id)
		f, found := h.frames[id]
		if !found {
			return nil, FrameNotFoundError{id}
		}
		if f.Parent == nil {
			return path, nil
		}
		id = *f.Parent
	}
}

// commonAncestor returns the deepest frame present in both root paths.
func commonAncestor(path1, path2 []FrameID) (FrameID, error) {
	in2 := make(map[FrameID]int, len(path2))
	for i, id := range path2 {
		in2[id] = i
	}
	// path1 is ordered deepest first, so the first hit is the deepest
	// shared frame.
	for _, id := range path1 {
		if _, ok := in2[id]; ok {
			return id, nil
		}
	}
	return FrameID{}, ErrDisconnectedFrames
}

// ConvertCoordinates converts a position vector between coordinate
// systems. This is a pure conversion, independent of the frame graph: for
// the spherical systems the vector components are the angular coordinates
// (see each CoordinateSystem tag). Any pair without a direct rule is
// composed through Cartesian as the intermediate representation.
func ConvertCoordinates(position r3.Vec, from, to CoordinateSystem) r3.Vec {
	if from == to {
		return position
	}
	switch {
	case from == Cartesian && to == Spherical:
		return Cartesian2Spherical(position)
	case from == Spherical && to == Cartesian:
		return Spherical2Cartesian(position)
	case from == Cartesian && to == Cylindrical:
		return Cartesian2Cylindrical(position)
	case from == Cylindrical && to == Cartesian:
		return Cylindrical2Cartesian(position)
	case from == Cartesian && to == GalacticSpherical:
		g := GalacticFromCartesian(position)
		return r3.Vec{X: g.Longitude, Y: g.Latitude, Z: g.Distance}
	case from == GalacticSpherical && to == Cartesian:
		g := GalacticCoordinates{Longitude: position.X, Latitude: position.Y, Distance: position.Z}
		return g.ToCartesian()
	case from == Cartesian && to == EquatorialSpherical:
		// Same spherical convention as galactic: azimuth, elevation, range.
		g := GalacticFromCartesian(position)
		return r3.Vec{X: g.Longitude, Y: g.Latitude, Z: g.Distance}
	case from == EquatorialSpherical && to == Cartesian:
		e := EquatorialCoordinates{RightAscension: position.X, Declination: position.Y, Distance: position.Z}
		return e.ToCartesian()
	}
	cart := ConvertCoordinates(position, from, Cartesian)
	return ConvertCoordinates(cart, Cartesian, to)
}
