package sdfmarch

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfmarch/anim"
)

var (
	xAxis = ms3.Vec{X: 1}
	yAxis = ms3.Vec{Y: 1}
	zAxis = ms3.Vec{Z: 1}
	one   = ms3.Vec{X: 1, Y: 1, Z: 1}
)

// Primitive is a shape placed in the scene by an animatable transform.
// Nil transform fields leave the corresponding transform as identity and a nil
// Albedo defaults to white.
//
// Queried points are brought into the primitive's local frame by undoing
// the translation, rotation and scale (in that order). Position modifiers
// then warp the local point left to right, the shape's distance is computed
// and distance modifiers are applied left to right.
type Primitive struct {
	Position anim.Vec3
	// Rotation holds Euler angles in radians, applied about X first, then Y, then Z.
	Rotation anim.Vec3
	// Scale is a per-axis scale factor. Non-uniform scaling shrinks the
	// reported distance by the smallest factor so the SDF never overestimates.
	Scale         anim.Vec3
	Albedo        anim.Vec3
	PosModifiers  []PosModifier
	DistModifiers []DistanceModifier

	shape shape
}

// shape is a native distance function with animatable parameters.
type shape interface {
	resolve(t float32) shapeSDF
}

// shapeSDF is a native distance function in local coordinates. It receives
// the primitive's albedo and may alter it.
type shapeSDF interface {
	sdist(p, albedo ms3.Vec) (ms3.Vec, float32)
}

// Snapshot implements [Node].
func (prim *Primitive) Snapshot(t float32) SDF {
	s := &primitiveSDF{
		albedo:    one,
		scale:     one,
		distScale: 1,
		shape:     prim.shape.resolve(t),
	}
	var rot ms3.Vec
	if prim.Position != nil {
		s.pos = prim.Position.Evaluate(t)
	}
	if prim.Rotation != nil {
		rot = prim.Rotation.Evaluate(t)
	}
	if prim.Scale != nil {
		s.scale = prim.Scale.Evaluate(t)
		s.scale.X = safeScale(s.scale.X)
		s.scale.Y = safeScale(s.scale.Y)
		s.scale.Z = safeScale(s.scale.Z)
		abs := ms3.AbsElem(s.scale)
		s.distScale = minf(abs.X, minf(abs.Y, abs.Z))
	}
	if prim.Albedo != nil {
		s.albedo = prim.Albedo.Evaluate(t)
	}
	s.identity = s.pos == (ms3.Vec{}) && rot == (ms3.Vec{}) && s.scale == one
	s.invRot = inverseRotation(rot)
	for _, mod := range prim.PosModifiers {
		s.posMods = append(s.posMods, mod.Snapshot(t))
	}
	for _, mod := range prim.DistModifiers {
		s.distMods = append(s.distMods, mod.Snapshot(t))
	}
	return s
}

type primitiveSDF struct {
	pos       ms3.Vec
	invRot    [3]ms3.Vec // Columns of the inverse rotation matrix.
	scale     ms3.Vec
	distScale float32
	identity  bool
	albedo    ms3.Vec
	posMods   []PosFunc
	distMods  []DistFunc
	shape     shapeSDF
}

// Map implements [SDF].
func (s *primitiveSDF) Map(p ms3.Vec) (ms3.Vec, float32) {
	if !s.identity {
		p = s.toLocal(p)
	}
	for _, mod := range s.posMods {
		p = mod(p)
	}
	albedo, d := s.shape.sdist(p, s.albedo)
	d *= s.distScale
	for _, mod := range s.distMods {
		d = mod(d)
	}
	return albedo, d
}

func (s *primitiveSDF) toLocal(p ms3.Vec) ms3.Vec {
	p = ms3.Sub(p, s.pos)
	p = ms3.Add(ms3.Add(ms3.Scale(p.X, s.invRot[0]), ms3.Scale(p.Y, s.invRot[1])), ms3.Scale(p.Z, s.invRot[2]))
	return ms3.DivElem(p, s.scale)
}

// inverseRotation returns the columns of the matrix undoing an X, Y, Z Euler rotation.
func inverseRotation(euler ms3.Vec) (cols [3]ms3.Vec) {
	rz := ms3.RotationMat4(-euler.Z, zAxis)
	ry := ms3.RotationMat4(-euler.Y, yAxis)
	rx := ms3.RotationMat4(-euler.X, xAxis)
	for i, e := range [3]ms3.Vec{xAxis, yAxis, zAxis} {
		cols[i] = rx.MulPosition(ry.MulPosition(rz.MulPosition(e)))
	}
	return cols
}

func safeScale(s float32) float32 {
	if absf(s) < epstol {
		return math32.Copysign(epstol, s)
	}
	return s
}

func (bld *Builder) newPrimitive(s shape) *Primitive {
	return &Primitive{shape: s}
}

type sphere struct {
	r anim.Float
}

// NewSphere creates a sphere centered at the origin of radius r.
func (bld *Builder) NewSphere(r anim.Float) *Primitive {
	r = bld.checkFloat(r, "sphere radius", positive)
	return bld.newPrimitive(&sphere{r: r})
}

func (s *sphere) resolve(t float32) shapeSDF {
	return sphereSDF{r: s.r.Evaluate(t)}
}

type box struct {
	dims  anim.Vec3
	round anim.Float
}

// NewBox creates a box centered at the origin with x,y,z dimensions given by dims and a rounding parameter to round edges.
func (bld *Builder) NewBox(dims anim.Vec3, round anim.Float) *Primitive {
	dims = bld.checkVec(dims, "box dimensions")
	round = bld.checkFloat(round, "box rounding", nonNegative)
	if c, ok := dims.(anim.Vec3Constant); ok {
		d := ms3.Vec(c)
		if d.X <= 0 || d.Y <= 0 || d.Z <= 0 {
			bld.shapeErrorf("zero or negative box dimension")
		}
		if r, ok := round.(anim.Constant); ok && float32(r) > d.Min()/2 {
			bld.shapeErrorf("invalid box rounding value")
		}
	}
	return bld.newPrimitive(&box{dims: dims, round: round})
}

func (s *box) resolve(t float32) shapeSDF {
	return boxSDF{half: ms3.Scale(0.5, s.dims.Evaluate(t)), round: s.round.Evaluate(t)}
}

type torus struct {
	rGreater, rLesser anim.Float
}

// NewTorus creates a torus centered at the origin with its axis of revolution along z.
// greaterRadius is the distance from the center to the tube's center and lesserRadius the tube radius.
func (bld *Builder) NewTorus(greaterRadius, lesserRadius anim.Float) *Primitive {
	greaterRadius = bld.checkFloat(greaterRadius, "torus greater radius", positive)
	lesserRadius = bld.checkFloat(lesserRadius, "torus lesser radius", positive)
	g, okg := greaterRadius.(anim.Constant)
	l, okl := lesserRadius.(anim.Constant)
	if okg && okl && l > g {
		bld.shapeErrorf("too large torus lesser radius")
	}
	return bld.newPrimitive(&torus{rGreater: greaterRadius, rLesser: lesserRadius})
}

func (s *torus) resolve(t float32) shapeSDF {
	return torusSDF{rGreater: s.rGreater.Evaluate(t), rLesser: s.rLesser.Evaluate(t)}
}

type cylinder struct {
	r, h, round anim.Float
}

// NewCylinder creates a cylinder centered at the origin with given radius and height.
// The cylinder's axis points in z direction.
func (bld *Builder) NewCylinder(r, h, rounding anim.Float) *Primitive {
	r = bld.checkFloat(r, "cylinder radius", positive)
	h = bld.checkFloat(h, "cylinder height", positive)
	rounding = bld.checkFloat(rounding, "cylinder rounding", nonNegative)
	rc, okr := r.(anim.Constant)
	hc, okh := h.(anim.Constant)
	roc, okro := rounding.(anim.Constant)
	if okr && okh && okro && (roc >= rc || roc >= hc/2) {
		bld.shapeErrorf("invalid cylinder rounding")
	}
	return bld.newPrimitive(&cylinder{r: r, h: h, round: rounding})
}

func (s *cylinder) resolve(t float32) shapeSDF {
	return cylinderSDF{r: s.r.Evaluate(t), halfh: s.h.Evaluate(t) / 2, round: s.round.Evaluate(t)}
}

const maxMandelbulbIterations = 64

type mandelbulb struct {
	power      anim.Float
	iterations int
	bailout    float32
}

// NewMandelbulb creates a power-N Mandelbulb fractal centered at the origin.
// The classic bulb uses power 8. Each distance query runs at most iterations
// steps of the escape-time iteration and stops early once the orbit radius exceeds bailout.
// The surface albedo is modulated by how fast the orbit escapes.
func (bld *Builder) NewMandelbulb(power anim.Float, iterations int, bailout float32) *Primitive {
	power = bld.checkFloat(power, "mandelbulb power", func(v float32) bool { return v >= 2 })
	if iterations < 1 || iterations > maxMandelbulbIterations {
		bld.shapeErrorf("mandelbulb iterations must be in 1..%d, got %d", maxMandelbulbIterations, iterations)
		iterations = max(1, min(iterations, maxMandelbulbIterations))
	}
	if !(bailout > 1) || !finite(bailout) {
		bld.shapeErrorf("mandelbulb bailout must be finite and greater than 1")
		bailout = 2
	}
	return bld.newPrimitive(&mandelbulb{power: power, iterations: iterations, bailout: bailout})
}

func (s *mandelbulb) resolve(t float32) shapeSDF {
	return mandelbulbSDF{power: s.power.Evaluate(t), iterations: s.iterations, bailout: s.bailout}
}
