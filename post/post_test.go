package post_test

import (
	"image"
	"testing"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfmarch/anim"
	"github.com/soypat/sdfmarch/post"
	"github.com/soypat/sdfmarch/render"
)

func uniformFilm(w, h int, c ms3.Vec) *render.Film {
	film := render.NewFilm(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			film.SetPixel(x, y, c)
		}
	}
	return film
}

func vecEqual(a, b ms3.Vec, tol float32) bool {
	return ms3.Norm(ms3.Sub(a, b)) <= tol
}

func TestChain(t *testing.T) {
	film := uniformFilm(3, 2, ms3.Vec{X: 0.6, Y: 0.3, Z: 0})
	ch := post.Chain{
		post.ColorShift{Shift: anim.V(0.1, 0.1, 0.1)},
		post.Gray{Strength: anim.F(1)},
	}
	out, err := ch.ProcessImage(render.Frame{Width: 3, Height: 2}, film)
	if err != nil {
		t.Fatal(err)
	}
	want := ms3.Vec{X: 0.4, Y: 0.4, Z: 0.4}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			if got := out.Pixel(x, y); !vecEqual(got, want, 1e-5) {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestGrayStrength(t *testing.T) {
	c := ms3.Vec{X: 0.9, Y: 0.3, Z: 0}
	if got := (post.Gray{Strength: anim.F(0)}).Snapshot(0)(c); !vecEqual(got, c, 1e-6) {
		t.Errorf("zero strength must preserve color, got %v", got)
	}
	if got := (post.Gray{Strength: anim.F(0.5)}).Snapshot(0)(c); !vecEqual(got, ms3.Vec{X: 0.65, Y: 0.35, Z: 0.2}, 1e-5) {
		t.Errorf("half strength: got %v", got)
	}
}

func TestChainNilFilter(t *testing.T) {
	_, err := post.Chain{nil}.ProcessImage(render.Frame{Width: 1, Height: 1}, render.NewFilm(1, 1))
	if err == nil {
		t.Error("expected error for nil filter")
	}
}

func TestBloom(t *testing.T) {
	// Four blur passes spread light 4 pixels away, (0,0) is 5 pixels away.
	const w, h = 11, 11
	film := render.NewFilm(w, h)
	film.SetPixel(5, 5, ms3.Vec{X: 1, Y: 1, Z: 1})
	film.SetPixel(0, 0, ms3.Vec{X: 0.05, Y: 0.05, Z: 0.05}) // Under threshold.
	out, err := post.NewBloom().ProcessImage(render.Frame{Width: w, Height: h}, film)
	if err != nil {
		t.Fatal(err)
	}
	center := out.Pixel(5, 5)
	if center.X <= 1 {
		t.Errorf("bright pixel must gain light, got %v", center)
	}
	if n := out.Pixel(6, 5); n.X <= 0 || n.X >= center.X {
		t.Errorf("neighbor must receive less light than center: %v vs %v", n, center)
	}
	if c := out.Pixel(0, 0); c != (ms3.Vec{X: 0.05, Y: 0.05, Z: 0.05}) {
		t.Errorf("dim pixel far from bright area must be untouched, got %v", c)
	}
	if c := out.Pixel(1, 1); c.X <= 0 {
		t.Errorf("pixel within blur reach must receive light, got %v", c)
	}
	// Blur conserves energy away from the edges.
	var sum float32
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum += out.Pixel(x, y).X
		}
	}
	if want := float32(2 + 0.05); sum < want-1e-4 || sum > want+1e-4 {
		t.Errorf("bloom energy %v, want %v", sum, want)
	}
}

func TestResample(t *testing.T) {
	film := uniformFilm(8, 6, ms3.Vec{X: 1, Y: 0.5})
	out, err := post.Resample{Width: 4, Height: 3}.ProcessImage(render.Frame{Width: 8, Height: 6}, film)
	if err != nil {
		t.Fatal(err)
	}
	if out.Width() != 4 || out.Height() != 3 {
		t.Fatalf("unexpected size %dx%d", out.Width(), out.Height())
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			if got := out.Pixel(x, y); !vecEqual(got, ms3.Vec{X: 1, Y: 0.5}, 0.01) {
				t.Fatalf("pixel (%d,%d) = %v", x, y, got)
			}
		}
	}
	if _, err := (post.Resample{}).ProcessImage(render.Frame{}, film); err == nil {
		t.Error("expected error for zero size")
	}
}

func TestCaption(t *testing.T) {
	caption, err := post.NewCaption(12, image.Pt(2, 14), ms3.Vec{X: 1, Y: 1, Z: 1}, post.TimeCaption)
	if err != nil {
		t.Fatal(err)
	}
	film := render.NewFilm(80, 20)
	out, err := caption.ProcessImage(render.Frame{Width: 80, Height: 20, Time: 1.5}, film)
	if err != nil {
		t.Fatal(err)
	}
	lit := 0
	for y := 0; y < 20; y++ {
		for x := 0; x < 80; x++ {
			if out.Pixel(x, y).X > 0.5 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("caption drew no pixels")
	}
	if got := post.TimeCaption(render.Frame{Time: 1.5}); got != "t=1.50s" {
		t.Errorf("unexpected caption %q", got)
	}
	if _, err := post.NewCaption(0, image.Point{}, ms3.Vec{}, post.TimeCaption); err == nil {
		t.Error("expected error for zero font size")
	}
}
