package post

import (
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfmarch/render"
)

// Bloom makes bright regions of a frame bleed light onto their surroundings.
// Pixels whose channel sum exceeds Threshold are blurred Passes times with a
// 3x3 binomial kernel and added back onto the frame.
type Bloom struct {
	Threshold float32
	Passes    int
}

// NewBloom returns a bloom with a threshold of 0.3 and 4 blur passes.
func NewBloom() *Bloom {
	return &Bloom{Threshold: 0.3, Passes: 4}
}

// ProcessImage implements [render.PostProcessor]. The source film is modified in place.
func (b *Bloom) ProcessImage(f render.Frame, src *render.Film) (*render.Film, error) {
	w, h := src.Width(), src.Height()
	bright := render.NewFilm(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := src.Pixel(x, y)
			if c.X+c.Y+c.Z >= b.Threshold {
				bright.SetPixel(x, y, c)
			}
		}
	}
	scratch := render.NewFilm(w, h)
	for i := 0; i < b.Passes; i++ {
		blur3(scratch, bright)
		bright, scratch = scratch, bright
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src.SetPixel(x, y, ms3.Add(src.Pixel(x, y), bright.Pixel(x, y)))
		}
	}
	return src, nil
}

var blurKernel = [3][3]float32{
	{1. / 16, 2. / 16, 1. / 16},
	{2. / 16, 4. / 16, 2. / 16},
	{1. / 16, 2. / 16, 1. / 16},
}

// blur3 convolves src with blurKernel into dst. Edges are clamped.
func blur3(dst, src *render.Film) {
	w, h := src.Width(), src.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum ms3.Vec
			for ky := -1; ky <= 1; ky++ {
				sy := min(max(y+ky, 0), h-1)
				for kx := -1; kx <= 1; kx++ {
					sx := min(max(x+kx, 0), w-1)
					sum = ms3.Add(sum, ms3.Scale(blurKernel[ky+1][kx+1], src.Pixel(sx, sy)))
				}
			}
			dst.SetPixel(x, y, sum)
		}
	}
}
