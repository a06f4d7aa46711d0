// Package shade implements shading policies converting sphere tracing
// results into colors.
package shade

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/sdfmarch/anim"
	"github.com/soypat/sdfmarch/render"
	"github.com/soypat/sdfmarch/trace"
)

// Background colors pixels whose ray missed every surface.
type Background interface {
	Background(f render.Frame, x, y int) ms3.Vec
}

// Solid is a uniform background color.
type Solid ms3.Vec

func (s Solid) Background(render.Frame, int, int) ms3.Vec { return ms3.Vec(s) }

// VerticalGradient blends from Top at the first row to Bottom at the last row.
type VerticalGradient struct {
	Top, Bottom ms3.Vec
}

func (g VerticalGradient) Background(f render.Frame, x, y int) ms3.Vec {
	t := float32(0)
	if f.Height > 1 {
		t = float32(y) / float32(f.Height-1)
	}
	return ms3.InterpElem(g.Top, g.Bottom, ms3.Vec{X: t, Y: t, Z: t})
}

type miss struct {
	bg    Background
	frame render.Frame
}

func newMiss(bg Background, f render.Frame) miss {
	if bg == nil {
		bg = Solid{}
	}
	return miss{bg: bg, frame: f}
}

func (m miss) color(x, y int) ms3.Vec { return m.bg.Background(m.frame, x, y) }

// Normal colors surfaces by their normal mapped from [-1,1] to [0,1].
type Normal struct {
	Background Background
}

func (s *Normal) Snapshot(f render.Frame) render.PixelShader {
	return normalShader{miss: newMiss(s.Background, f)}
}

type normalShader struct{ miss }

func (s normalShader) Shade(hit trace.Intersection, x, y int) ms3.Vec {
	if !hit.Hit {
		return s.color(x, y)
	}
	return ms3.AddScalar(0.5, ms3.Scale(0.5, hit.Normal))
}

// Albedo colors surfaces by their unlit albedo.
type Albedo struct {
	Background Background
}

func (s *Albedo) Snapshot(f render.Frame) render.PixelShader {
	return albedoShader{miss: newMiss(s.Background, f)}
}

type albedoShader struct{ miss }

func (s albedoShader) Shade(hit trace.Intersection, x, y int) ms3.Vec {
	if !hit.Hit {
		return s.color(x, y)
	}
	return hit.Albedo
}

// Depth colors surfaces white at distance Min fading to black at distance Max.
type Depth struct {
	Min, Max   anim.Float
	Background Background
}

func (s *Depth) Snapshot(f render.Frame) render.PixelShader {
	sh := depthShader{miss: newMiss(s.Background, f), max: 1}
	if s.Min != nil {
		sh.min = s.Min.Evaluate(f.Time)
	}
	if s.Max != nil {
		sh.max = s.Max.Evaluate(f.Time)
	}
	return sh
}

type depthShader struct {
	miss
	min, max float32
}

func (s depthShader) Shade(hit trace.Intersection, x, y int) ms3.Vec {
	if !hit.Hit {
		return s.color(x, y)
	}
	var v float32
	switch {
	case hit.Distance <= s.min:
		v = 1
	case hit.Distance >= s.max:
		v = 0
	default:
		v = 1 - (hit.Distance-s.min)/(s.max-s.min)
	}
	return ms3.Vec{X: v, Y: v, Z: v}
}

// PointLight is an omnidirectional light with inverse square falloff.
type PointLight struct {
	Position  anim.Vec3
	Color     anim.Vec3
	Intensity anim.Float
}

type pointLight struct {
	pos      ms3.Vec
	radiance ms3.Vec // Color scaled by intensity/4π.
}

// minFalloffDist2 clamps the squared light distance to avoid blowing up near the light.
const minFalloffDist2 = 1e-4

func (l *PointLight) snapshot(t float32) pointLight {
	var pl pointLight
	col := ms3.Vec{X: 1, Y: 1, Z: 1}
	intensity := float32(1)
	if l.Position != nil {
		pl.pos = l.Position.Evaluate(t)
	}
	if l.Color != nil {
		col = l.Color.Evaluate(t)
	}
	if l.Intensity != nil {
		intensity = l.Intensity.Evaluate(t)
	}
	pl.radiance = ms3.Scale(intensity/(4*math32.Pi), col)
	return pl
}

// Lambert shades surfaces with diffuse lighting from point lights plus an ambient term.
type Lambert struct {
	Lights     []PointLight
	Ambient    anim.Vec3
	Background Background
}

func (s *Lambert) Snapshot(f render.Frame) render.PixelShader {
	sh := lambertShader{miss: newMiss(s.Background, f)}
	if s.Ambient != nil {
		sh.ambient = s.Ambient.Evaluate(f.Time)
	}
	for i := range s.Lights {
		sh.lights = append(sh.lights, s.Lights[i].snapshot(f.Time))
	}
	return sh
}

type lambertShader struct {
	miss
	ambient ms3.Vec
	lights  []pointLight
}

func (s lambertShader) Shade(hit trace.Intersection, x, y int) ms3.Vec {
	if !hit.Hit {
		return s.color(x, y)
	}
	irradiance := s.ambient
	if hit.Normal != (ms3.Vec{}) {
		for _, l := range s.lights {
			toLight := ms3.Sub(l.pos, hit.Position)
			r2 := math32.Max(ms3.Dot(toLight, toLight), minFalloffDist2)
			cos := ms3.Dot(hit.Normal, toLight) / math32.Sqrt(r2)
			if cos <= 0 {
				continue
			}
			irradiance = ms3.Add(irradiance, ms3.Scale(cos/r2, l.radiance))
		}
	}
	return ms3.MulElem(hit.Albedo, irradiance)
}

// Steps colors every pixel by the number of sphere tracing iterations
// consumed, blending in HSV space from Low at zero steps to High at MaxSteps.
// Useful to find regions of the scene that are expensive to trace.
type Steps struct {
	MaxSteps  int
	Low, High ms3.Vec
}

func (s *Steps) Snapshot(f render.Frame) render.PixelShader {
	h0, s0, v0 := rgbToHSV(s.Low.X, s.Low.Y, s.Low.Z)
	h1, s1, v1 := rgbToHSV(s.High.X, s.High.Y, s.High.Z)
	return stepsShader{inv: 1 / float32(max(s.MaxSteps, 1)), hsv0: [3]float32{h0, s0, v0}, hsv1: [3]float32{h1, s1, v1}}
}

type stepsShader struct {
	inv        float32
	hsv0, hsv1 [3]float32
}

func (s stepsShader) Shade(hit trace.Intersection, x, y int) ms3.Vec {
	t := ms1.Clamp(float32(hit.Steps)*s.inv, 0, 1)
	h, sat, v := interpHSV(s.hsv0[0], s.hsv0[1], s.hsv0[2], s.hsv1[0], s.hsv1[1], s.hsv1[2], t)
	r, g, b := hsvToRGB(h, sat, v)
	return ms3.Vec{X: r, Y: g, Z: b}
}
