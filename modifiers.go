package sdfmarch

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfmarch/anim"
)

// PosFunc maps a point in a primitive's local space onto another point.
type PosFunc func(p ms3.Vec) ms3.Vec

// DistFunc maps a distance onto another distance.
type DistFunc func(d float32) float32

// PosModifier warps space before a primitive's shape is evaluated.
type PosModifier interface {
	Snapshot(t float32) PosFunc
}

// DistanceModifier alters the distance returned by a primitive's shape.
type DistanceModifier interface {
	Snapshot(t float32) DistFunc
}

type distort struct {
	factor    anim.Float
	offset    anim.Vec3
	frequency anim.Float
}

// NewDistort returns a sinusoidal domain warp. The product of the sines of
// each coordinate, scaled by frequency and shifted by offset, is multiplied by
// factor and added to every axis. The resulting SDF may overestimate distances
// for large factors.
func (bld *Builder) NewDistort(factor anim.Float, offset anim.Vec3, frequency anim.Float) PosModifier {
	return &distort{
		factor:    bld.checkFloat(factor, "distortion factor", finite),
		offset:    bld.checkVec(offset, "distortion offset"),
		frequency: bld.checkFloat(frequency, "distortion frequency", finite),
	}
}

func (m *distort) Snapshot(t float32) PosFunc {
	fac := m.factor.Evaluate(t)
	off := m.offset.Evaluate(t)
	freq := m.frequency.Evaluate(t)
	return func(p ms3.Vec) ms3.Vec {
		d := fac * math32.Sin(freq*p.X+off.X) * math32.Sin(freq*p.Y+off.Y) * math32.Sin(freq*p.Z+off.Z)
		return ms3.AddScalar(d, p)
	}
}

type twist struct {
	amount anim.Float
}

// NewTwist twists space about the y axis by amount radians per unit of height.
func (bld *Builder) NewTwist(amount anim.Float) PosModifier {
	return &twist{amount: bld.checkFloat(amount, "twist amount", finite)}
}

func (m *twist) Snapshot(t float32) PosFunc {
	k := m.amount.Evaluate(t)
	return func(p ms3.Vec) ms3.Vec {
		s, c := math32.Sincos(k * p.Y)
		return ms3.Vec{X: c*p.X - s*p.Z, Y: p.Y, Z: s*p.X + c*p.Z}
	}
}

type bend struct {
	amount anim.Float
}

// NewBend bends space in the xy plane by amount radians per unit along x.
func (bld *Builder) NewBend(amount anim.Float) PosModifier {
	return &bend{amount: bld.checkFloat(amount, "bend amount", finite)}
}

func (m *bend) Snapshot(t float32) PosFunc {
	k := m.amount.Evaluate(t)
	return func(p ms3.Vec) ms3.Vec {
		s, c := math32.Sincos(k * p.X)
		return ms3.Vec{X: c*p.X - s*p.Y, Y: s*p.X + c*p.Y, Z: p.Z}
	}
}

type repeat struct {
	period anim.Float
	limit  anim.Vec3 // nil for infinite repetition.
}

// NewRepeat repeats space infinitely along all axes with the given period.
func (bld *Builder) NewRepeat(period anim.Float) PosModifier {
	return &repeat{period: bld.checkFloat(period, "repetition period", positive)}
}

// NewRepeatLimited repeats space with the given period, limited to limit
// copies on each side of the origin along every axis.
func (bld *Builder) NewRepeatLimited(period anim.Float, limit anim.Vec3) PosModifier {
	limit = bld.checkVec(limit, "repetition limit")
	if c, ok := limit.(anim.Vec3Constant); ok && ms3.Vec(c).Min() < 0 {
		bld.shapeErrorf("negative repetition limit")
	}
	return &repeat{period: bld.checkFloat(period, "repetition period", positive), limit: limit}
}

func (m *repeat) Snapshot(t float32) PosFunc {
	period := m.period.Evaluate(t)
	if period < epstol {
		return func(p ms3.Vec) ms3.Vec { return p }
	}
	if m.limit == nil {
		return func(p ms3.Vec) ms3.Vec {
			cell := ms3.Vec{
				X: math32.Floor(p.X/period + 0.5),
				Y: math32.Floor(p.Y/period + 0.5),
				Z: math32.Floor(p.Z/period + 0.5),
			}
			return ms3.Sub(p, ms3.Scale(period, cell))
		}
	}
	lim := ms3.AbsElem(m.limit.Evaluate(t))
	return func(p ms3.Vec) ms3.Vec {
		cell := ms3.Vec{
			X: clampf(math32.Round(p.X/period), -lim.X, lim.X),
			Y: clampf(math32.Round(p.Y/period), -lim.Y, lim.Y),
			Z: clampf(math32.Round(p.Z/period), -lim.Z, lim.Z),
		}
		return ms3.Sub(p, ms3.Scale(period, cell))
	}
}

type symmetry struct {
	x, y, z bool
}

// NewSymmetry mirrors the positive half of space onto the negative half along the selected axes.
func (bld *Builder) NewSymmetry(mirrorX, mirrorY, mirrorZ bool) PosModifier {
	if !mirrorX && !mirrorY && !mirrorZ {
		bld.shapeErrorf("ineffective symmetry")
	}
	return &symmetry{x: mirrorX, y: mirrorY, z: mirrorZ}
}

func (m *symmetry) Snapshot(float32) PosFunc {
	x, y, z := m.x, m.y, m.z
	return func(p ms3.Vec) ms3.Vec {
		if x {
			p.X = absf(p.X)
		}
		if y {
			p.Y = absf(p.Y)
		}
		if z {
			p.Z = absf(p.Z)
		}
		return p
	}
}

type round struct {
	r anim.Float
}

// NewRound grows the surface outwards by radius, rounding sharp edges.
func (bld *Builder) NewRound(radius anim.Float) DistanceModifier {
	return &round{r: bld.checkFloat(radius, "rounding radius", nonNegative)}
}

func (m *round) Snapshot(t float32) DistFunc {
	r := m.r.Evaluate(t)
	return func(d float32) float32 { return d - r }
}

type onion struct {
	thick anim.Float
}

// NewOnion hollows the shape into a shell of the given thickness centered on the original surface.
func (bld *Builder) NewOnion(thickness anim.Float) DistanceModifier {
	return &onion{thick: bld.checkFloat(thickness, "onion thickness", positive)}
}

func (m *onion) Snapshot(t float32) DistFunc {
	th := m.thick.Evaluate(t)
	return func(d float32) float32 { return absf(d) - th }
}
