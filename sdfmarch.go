// Package sdfmarch implements an animated scene graph of signed distance
// functions meant to be rendered by sphere tracing.
//
// Scenes are built from [Node]s. A node is resolved at a point in time with
// [Node.Snapshot], which returns an immutable [SDF] that can be queried
// concurrently from many goroutines.
package sdfmarch

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfmarch/anim"
)

const (
	largenum = 1e20
	// epstol is used to check for badly conditioned denominators
	// such as lengths used for normalization or scale factors.
	epstol = 6e-7
)

// SDF is a signed distance function resolved at a fixed time.
// Map returns the surface albedo and signed distance at p. Implementations
// carry no mutable state so Map is safe for concurrent use.
type SDF interface {
	Map(p ms3.Vec) (albedo ms3.Vec, dist float32)
}

// Node is an animatable scene graph element. Snapshot evaluates every
// parameter of the node and its children at time t.
type Node interface {
	Snapshot(t float32) SDF
}

// Flags modify the behaviour of a [Builder].
type Flags uint64

const (
	// FlagNoDimensionPanic makes the Builder accumulate configuration errors
	// instead of panicking. Errors are retrieved with [Builder.Err].
	FlagNoDimensionPanic Flags = 1 << iota
)

// Builder wraps all SDF primitive, modifier and operation creation.
// Provides error handling strategies with panics or error accumulation during shape generation.
type Builder struct {
	flags     Flags
	accumErrs []error
}

func (bld *Builder) Flags() Flags { return bld.flags }

func (bld *Builder) SetFlags(flags Flags) { bld.flags = flags }

// Err returns all configuration errors accumulated by the Builder, joined.
func (bld *Builder) Err() error {
	if len(bld.accumErrs) == 0 {
		return nil
	}
	return errors.Join(bld.accumErrs...)
}

// ClearErrors discards accumulated errors.
func (bld *Builder) ClearErrors() {
	bld.accumErrs = bld.accumErrs[:0]
}

func (bld *Builder) shapeErrorf(msg string, args ...any) {
	if bld.flags&FlagNoDimensionPanic == 0 {
		panic(fmt.Sprintf(msg, args...))
	}
	bld.accumErrs = append(bld.accumErrs, fmt.Errorf(msg, args...))
}

func (*Builder) nilsdf(msg string) {
	panic("nil Node argument: " + msg)
}

// checkFloat reports a configuration error if f is nil or is a constant that fails the valid predicate.
// Animated values cannot be checked ahead of time.
func (bld *Builder) checkFloat(f anim.Float, name string, valid func(float32) bool) anim.Float {
	if f == nil {
		bld.shapeErrorf("nil %s", name)
		return anim.F(0)
	}
	if c, ok := f.(anim.Constant); ok && !valid(float32(c)) {
		bld.shapeErrorf("invalid %s %v", name, float32(c))
	}
	return f
}

func (bld *Builder) checkVec(v anim.Vec3, name string) anim.Vec3 {
	if v == nil {
		bld.shapeErrorf("nil %s", name)
		return anim.V(0, 0, 0)
	}
	return v
}

func positive(v float32) bool    { return v > 0 }
func nonNegative(v float32) bool { return v >= 0 }
func finite(v float32) bool      { return !math32.IsNaN(v) && !math32.IsInf(v, 0) }

func minf(a, b float32) float32 {
	return math32.Min(a, b)
}

func maxf(a, b float32) float32 {
	return math32.Max(a, b)
}

func hypotf(a, b float32) float32 {
	return math32.Hypot(a, b)
}

func absf(a float32) float32 {
	return math32.Abs(a)
}

func clampf(v, Min, Max float32) float32 {
	if v < Min {
		return Min
	} else if v > Max {
		return Max
	}
	return v
}

func mixf(x, y, a float32) float32 {
	return x*(1-a) + y*a
}

func mixvec(x, y ms3.Vec, a float32) ms3.Vec {
	return ms3.Add(ms3.Scale(1-a, x), ms3.Scale(a, y))
}
