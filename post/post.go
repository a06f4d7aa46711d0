// Package post implements frame post processing: per pixel color filters,
// bloom, resampling and text captions.
package post

import (
	"errors"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/sdfmarch/anim"
	"github.com/soypat/sdfmarch/render"
)

// Filter is an animatable per pixel color transformation.
type Filter interface {
	Snapshot(t float32) func(c ms3.Vec) ms3.Vec
}

// ColorShift adds Shift to every pixel.
type ColorShift struct {
	Shift anim.Vec3
}

func (cs ColorShift) Snapshot(t float32) func(ms3.Vec) ms3.Vec {
	shift := cs.Shift.Evaluate(t)
	return func(c ms3.Vec) ms3.Vec { return ms3.Add(c, shift) }
}

// Gray desaturates pixels towards the average of their channels.
// A Strength of 0 leaves colors untouched and 1 yields fully gray pixels.
type Gray struct {
	Strength anim.Float
}

func (g Gray) Snapshot(t float32) func(ms3.Vec) ms3.Vec {
	s := ms1.Clamp(g.Strength.Evaluate(t), 0, 1)
	return func(c ms3.Vec) ms3.Vec {
		avg := (c.X + c.Y + c.Z) / 3
		return ms3.InterpElem(c, ms3.Vec{X: avg, Y: avg, Z: avg}, ms3.Vec{X: s, Y: s, Z: s})
	}
}

// Chain applies its filters in order to every pixel of a frame.
type Chain []Filter

// ProcessImage implements [render.PostProcessor]. The source film is modified in place.
func (ch Chain) ProcessImage(f render.Frame, src *render.Film) (*render.Film, error) {
	if len(ch) == 0 {
		return src, nil
	}
	funcs := make([]func(ms3.Vec) ms3.Vec, len(ch))
	for i := range ch {
		if ch[i] == nil {
			return nil, errors.New("nil filter in chain")
		}
		funcs[i] = ch[i].Snapshot(f.Time)
	}
	for y := 0; y < src.Height(); y++ {
		for x := 0; x < src.Width(); x++ {
			c := src.Pixel(x, y)
			for _, fn := range funcs {
				c = fn(c)
			}
			src.SetPixel(x, y, c)
		}
	}
	return src, nil
}
