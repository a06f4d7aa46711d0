// Package anim implements time-parameterized values used to animate every
// parameter of a scene. All evaluators are pure functions of time:
// evaluating twice at the same time yields the same value.
package anim

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/math/ms1"
)

// boundaryTol is the relative tolerance used to snap progress onto period boundaries.
const boundaryTol = 1e-6

var (
	// ErrBadInterval is returned when an interpolation interval is zero, negative or not finite.
	ErrBadInterval = errors.New("interpolation interval must be positive and finite")
	// ErrMalformedLiteral is returned when a literal cannot be converted to an evaluator.
	ErrMalformedLiteral = errors.New("malformed animatable literal")
)

// Float is a scalar function of time.
type Float interface {
	Evaluate(t float32) float32
}

// Vec3 is a 3-vector function of time.
type Vec3 interface {
	Evaluate(t float32) ms3.Vec
}

// Constant is a [Float] that ignores time.
type Constant float32

func (c Constant) Evaluate(float32) float32 { return float32(c) }

// Vec3Constant is a [Vec3] that ignores time.
type Vec3Constant ms3.Vec

func (c Vec3Constant) Evaluate(float32) ms3.Vec { return ms3.Vec(c) }

// Vec3Construct evaluates each axis with its own scalar evaluator.
type Vec3Construct struct {
	X, Y, Z Float
}

func (c Vec3Construct) Evaluate(t float32) ms3.Vec {
	return ms3.Vec{X: c.X.Evaluate(t), Y: c.Y.Evaluate(t), Z: c.Z.Evaluate(t)}
}

// Vec3Cast broadcasts a single scalar evaluator to all three axes.
type Vec3Cast struct {
	F Float
}

func (c Vec3Cast) Evaluate(t float32) ms3.Vec {
	v := c.F.Evaluate(t)
	return ms3.Vec{X: v, Y: v, Z: v}
}

// FloatFunc adapts a plain function of time to the [Float] interface.
// The function must be pure.
type FloatFunc func(t float32) float32

func (f FloatFunc) Evaluate(t float32) float32 { return f(t) }

// Vec3Func adapts a plain function of time to the [Vec3] interface.
// The function must be pure.
type Vec3Func func(t float32) ms3.Vec

func (f Vec3Func) Evaluate(t float32) ms3.Vec { return f(t) }

// Sine returns Bias + Amplitude*sin(2π*Frequency*t + Phase).
func Sine(amplitude, frequency, phase, bias float32) Float {
	return FloatFunc(func(t float32) float32 {
		return bias + amplitude*math32.Sin(2*math32.Pi*frequency*t+phase)
	})
}

// Shift returns an evaluator that evaluates e at t+dt.
func Shift(e Float, dt float32) Float {
	return FloatFunc(func(t float32) float32 { return e.Evaluate(t + dt) })
}

// ShiftVec3 returns an evaluator that evaluates e at t+dt.
func ShiftVec3(e Vec3, dt float32) Vec3 {
	return Vec3Func(func(t float32) ms3.Vec { return e.Evaluate(t + dt) })
}

// Timing describes how an interpolating evaluator progresses through time.
type Timing struct {
	// Interval is the time taken to go from the minimum to the maximum value. Must be positive.
	Interval float32
	// Oscillate makes the interpolation run back from maximum to minimum
	// during every second interval instead of restarting at the minimum.
	Oscillate bool
	// Transition reparameterizes progress. Nil means linear.
	Transition Transition
	// Offset is added to time before evaluating.
	Offset float32
}

func (tm Timing) validate() error {
	if !(tm.Interval > 0) || math32.IsInf(tm.Interval, 0) {
		return fmt.Errorf("%w: got %v", ErrBadInterval, tm.Interval)
	}
	if math32.IsNaN(tm.Offset) || math32.IsInf(tm.Offset, 0) {
		return errors.New("timing offset must be finite")
	}
	return nil
}

// Fraction returns the interpolation fraction in [0,1] at time t.
func (tm Timing) Fraction(t float32) float32 {
	t += tm.Offset
	var f float32
	if tm.Oscillate {
		// Fold the double period so the second half runs back towards 0.
		f = 2 * progress(t, 2*tm.Interval)
		if f > 1 {
			f = 2 - f
		}
	} else {
		f = progress(t, tm.Interval)
	}
	if tm.Transition != nil {
		f = tm.Transition.Transition(f)
	}
	return f
}

// progress returns the position of t within a period of length L as a fraction in [0,1].
// It is 0 at t=0 and 1 at the end of every period after the first start.
func progress(t, L float32) float32 {
	q := t / L
	k := math32.Floor(q)
	f := q - k
	if (f < boundaryTol && q >= 1) || f > 1-boundaryTol {
		return 1
	}
	return f
}

// Interpolator linearly interpolates between Min and Max following a [Timing].
type Interpolator struct {
	min, max float32
	timing   Timing
}

// NewInterpolator returns a scalar interpolator. It fails if the timing interval is not positive.
func NewInterpolator(min, max float32, timing Timing) (*Interpolator, error) {
	if err := timing.validate(); err != nil {
		return nil, err
	}
	if math32.IsNaN(min) || math32.IsNaN(max) || math32.IsInf(min, 0) || math32.IsInf(max, 0) {
		return nil, errors.New("interpolation bounds must be finite")
	}
	return &Interpolator{min: min, max: max, timing: timing}, nil
}

func (ip *Interpolator) Evaluate(t float32) float32 {
	return ms1.Interp(ip.min, ip.max, ip.timing.Fraction(t))
}

// VecInterpolator linearly interpolates between two vectors following a [Timing].
type VecInterpolator struct {
	min, max ms3.Vec
	timing   Timing
}

// NewVecInterpolator returns a vector interpolator. It fails if the timing interval is not positive.
func NewVecInterpolator(min, max ms3.Vec, timing Timing) (*VecInterpolator, error) {
	if err := timing.validate(); err != nil {
		return nil, err
	}
	return &VecInterpolator{min: min, max: max, timing: timing}, nil
}

func (ip *VecInterpolator) Evaluate(t float32) ms3.Vec {
	f := ip.timing.Fraction(t)
	return ms3.InterpElem(ip.min, ip.max, ms3.Vec{X: f, Y: f, Z: f})
}
