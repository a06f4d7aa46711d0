package anim

import (
	"fmt"

	"github.com/soypat/glgl/math/ms1"
	"github.com/tanema/gween/ease"
)

// Transition maps a progress fraction in [0,1] onto [0,1]. Implementations
// should map 0 to 0 and 1 to 1.
type Transition interface {
	Transition(f float32) float32
}

// Linear is the identity transition.
type Linear struct{}

func (Linear) Transition(f float32) float32 { return ms1.Clamp(f, 0, 1) }

// Smoothstep is a polynomial ease-in-out transition of configurable degree.
// Higher degrees flatten the curve near the endpoints.
type Smoothstep struct {
	degree int
}

// NewSmoothstep returns a smoothstep transition. Valid degrees are 1, 2 and 3.
func NewSmoothstep(degree int) (Smoothstep, error) {
	if degree < 1 || degree > 3 {
		return Smoothstep{}, fmt.Errorf("unsupported smoothstep degree %d", degree)
	}
	return Smoothstep{degree: degree}, nil
}

func (s Smoothstep) Transition(f float32) float32 {
	f = ms1.Clamp(f, 0, 1)
	switch s.degree {
	case 0, 1:
		return ms1.SmoothStep(0, 1, f)
	case 2:
		return f * f * f * (f*(6*f-15) + 10)
	}
	f2 := f * f
	f4 := f2 * f2
	return f4 * (25 - 48*f + f2*(25-f4))
}

// CatmullRom is a Catmull-Rom spline segment running from 0 to 1 with outer
// control points P0 and P3. P0=-1 and P3=2 yield a straight line.
type CatmullRom struct {
	P0, P3 float32
}

func (c CatmullRom) Transition(f float32) float32 {
	f = ms1.Clamp(f, 0, 1)
	f2 := f * f
	f3 := f2 * f
	return 0.5 * ((1-c.P0)*f + (2*c.P0+4-c.P3)*f2 + (c.P3-c.P0-3)*f3)
}

// Ease adapts a tweening function such as [ease.InOutQuad] as a [Transition].
type Ease struct {
	Func ease.TweenFunc
}

func (e Ease) Transition(f float32) float32 {
	return e.Func(ms1.Clamp(f, 0, 1), 0, 1, 1)
}
