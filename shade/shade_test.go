package shade

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfmarch/anim"
	"github.com/soypat/sdfmarch/render"
	"github.com/soypat/sdfmarch/trace"
)

const tol = 1e-5

func vecEqual(a, b ms3.Vec, tol float32) bool {
	return ms3.Norm(ms3.Sub(a, b)) <= tol
}

var testFrame = render.Frame{Width: 10, Height: 5, Time: 0}

func TestNormalShader(t *testing.T) {
	bg := Solid{X: 0.1, Y: 0.2, Z: 0.3}
	ps := (&Normal{Background: bg}).Snapshot(testFrame)
	got := ps.Shade(trace.Intersection{Hit: true, Normal: ms3.Vec{Z: 1}}, 0, 0)
	if !vecEqual(got, ms3.Vec{X: 0.5, Y: 0.5, Z: 1}, tol) {
		t.Errorf("normal shading: got %v", got)
	}
	got = ps.Shade(trace.Intersection{}, 3, 3)
	if got != ms3.Vec(bg) {
		t.Errorf("miss must use background, got %v", got)
	}
	// Nil background is black.
	ps = (&Albedo{}).Snapshot(testFrame)
	if got := ps.Shade(trace.Intersection{}, 0, 0); got != (ms3.Vec{}) {
		t.Errorf("nil background must be black, got %v", got)
	}
	if got := ps.Shade(trace.Intersection{Hit: true, Albedo: ms3.Vec{X: 0.7}}, 0, 0); got != (ms3.Vec{X: 0.7}) {
		t.Errorf("albedo shading: got %v", got)
	}
}

func TestVerticalGradient(t *testing.T) {
	g := VerticalGradient{Top: ms3.Vec{Z: 1}, Bottom: ms3.Vec{X: 1}}
	if got := g.Background(testFrame, 4, 0); !vecEqual(got, g.Top, tol) {
		t.Errorf("top row: got %v", got)
	}
	if got := g.Background(testFrame, 4, testFrame.Height-1); !vecEqual(got, g.Bottom, tol) {
		t.Errorf("bottom row: got %v", got)
	}
	if got := g.Background(testFrame, 4, 2); !vecEqual(got, ms3.Vec{X: 0.5, Z: 0.5}, tol) {
		t.Errorf("middle row: got %v", got)
	}
}

func TestDepthShader(t *testing.T) {
	ps := (&Depth{Min: anim.F(2), Max: anim.F(6)}).Snapshot(testFrame)
	for _, tc := range []struct {
		dist, want float32
	}{
		{dist: 1, want: 1},
		{dist: 2, want: 1},
		{dist: 4, want: 0.5},
		{dist: 6, want: 0},
		{dist: 60, want: 0},
	} {
		got := ps.Shade(trace.Intersection{Hit: true, Distance: tc.dist}, 0, 0)
		if !vecEqual(got, ms3.Vec{X: tc.want, Y: tc.want, Z: tc.want}, tol) {
			t.Errorf("depth %v: got %v, want %v", tc.dist, got, tc.want)
		}
	}
}

func TestLambert(t *testing.T) {
	sh := &Lambert{
		Ambient: anim.V(0.1, 0.1, 0.1),
		Lights: []PointLight{{
			Position:  anim.V(0, 0, 2),
			Intensity: anim.F(16 * math32.Pi), // Radiance 4 at unit distance.
		}},
	}
	ps := sh.Snapshot(testFrame)
	hit := trace.Intersection{Hit: true, Albedo: ms3.Vec{X: 1, Y: 0.5, Z: 0}, Normal: ms3.Vec{Z: 1}}
	got := ps.Shade(hit, 0, 0)
	// Distance 2 gives 4/4=1 irradiance facing the light.
	if !vecEqual(got, ms3.Vec{X: 1.1, Y: 0.55}, 1e-4) {
		t.Errorf("lit surface: got %v", got)
	}
	hit.Normal = ms3.Vec{Z: -1}
	got = ps.Shade(hit, 0, 0)
	if !vecEqual(got, ms3.Vec{X: 0.1, Y: 0.05}, 1e-5) {
		t.Errorf("surface facing away must only receive ambient: got %v", got)
	}
	// Moving the light twice as far quarters the diffuse term.
	sh.Lights[0].Position = anim.V(0, 0, 4)
	hit.Normal = ms3.Vec{Z: 1}
	got = sh.Snapshot(testFrame).Shade(hit, 0, 0)
	if !vecEqual(got, ms3.Vec{X: 0.35, Y: 0.175}, 1e-4) {
		t.Errorf("inverse square falloff: got %v", got)
	}
}

func TestLambertAnimatedLight(t *testing.T) {
	interp, err := anim.NewVecInterpolator(ms3.Vec{Z: 1}, ms3.Vec{Z: -1}, anim.Timing{Interval: 1})
	if err != nil {
		t.Fatal(err)
	}
	sh := &Lambert{Lights: []PointLight{{Position: interp, Intensity: anim.F(4 * math32.Pi)}}}
	hit := trace.Intersection{Hit: true, Albedo: ms3.Vec{X: 1, Y: 1, Z: 1}, Normal: ms3.Vec{Z: 1}}
	lit := sh.Snapshot(render.Frame{Width: 1, Height: 1, Time: 0}).Shade(hit, 0, 0)
	dark := sh.Snapshot(render.Frame{Width: 1, Height: 1, Time: 1}).Shade(hit, 0, 0)
	if !vecEqual(lit, ms3.Vec{X: 1, Y: 1, Z: 1}, 1e-4) {
		t.Errorf("light in front: got %v", lit)
	}
	if dark != (ms3.Vec{}) {
		t.Errorf("light behind: got %v", dark)
	}
}

func TestStepsHeatmap(t *testing.T) {
	ps := (&Steps{MaxSteps: 100, Low: ms3.Vec{Z: 1}, High: ms3.Vec{X: 1}}).Snapshot(testFrame)
	if got := ps.Shade(trace.Intersection{Steps: 0}, 0, 0); !vecEqual(got, ms3.Vec{Z: 1}, 1e-4) {
		t.Errorf("zero steps: got %v", got)
	}
	if got := ps.Shade(trace.Intersection{Hit: true, Steps: 100}, 0, 0); !vecEqual(got, ms3.Vec{X: 1}, 1e-4) {
		t.Errorf("max steps: got %v", got)
	}
	if got := ps.Shade(trace.Intersection{Steps: 1000}, 0, 0); !vecEqual(got, ms3.Vec{X: 1}, 1e-4) {
		t.Errorf("steps over max must saturate: got %v", got)
	}
}

func TestHSVRoundTrip(t *testing.T) {
	for _, c := range []ms3.Vec{{X: 1}, {Y: 1}, {Z: 1}, {X: 0.2, Y: 0.4, Z: 0.6}, {X: 1, Y: 1, Z: 1}, {}} {
		h, s, v := rgbToHSV(c.X, c.Y, c.Z)
		r, g, b := hsvToRGB(h, s, v)
		if !vecEqual(ms3.Vec{X: r, Y: g, Z: b}, c, 1e-5) {
			t.Errorf("round trip of %v gave %v", c, ms3.Vec{X: r, Y: g, Z: b})
		}
	}
}
