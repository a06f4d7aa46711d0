package render

import (
	"image"
	"image/color"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/math/ms1"
)

// Film is a floating point RGB frame buffer. Channel values are nominally in
// [0,1] but may exceed that range until quantized.
//
// Film implements [draw.Image] so it can be used as source or destination of
// standard library and x/image drawing operations. Colors read through At are
// clipped and quantized.
//
// [draw.Image]: https://pkg.go.dev/image/draw#Image
type Film struct {
	w, h int
	pix  []ms3.Vec
}

// NewFilm allocates a black film of the given dimensions.
func NewFilm(width, height int) *Film {
	width, height = max(width, 0), max(height, 0)
	return &Film{w: width, h: height, pix: make([]ms3.Vec, width*height)}
}

func (f *Film) Width() int  { return f.w }
func (f *Film) Height() int { return f.h }

// Pixel returns the color at column x, row y.
func (f *Film) Pixel(x, y int) ms3.Vec {
	return f.pix[y*f.w+x]
}

// SetPixel sets the color at column x, row y.
func (f *Film) SetPixel(x, y int, c ms3.Vec) {
	f.pix[y*f.w+x] = c
}

// Clone returns a deep copy of the film.
func (f *Film) Clone() *Film {
	clone := &Film{w: f.w, h: f.h, pix: make([]ms3.Vec, len(f.pix))}
	copy(clone.pix, f.pix)
	return clone
}

// Clear sets every pixel to black.
func (f *Film) Clear() {
	clear(f.pix)
}

// ColorModel implements [image.Image].
func (f *Film) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements [image.Image].
func (f *Film) Bounds() image.Rectangle { return image.Rect(0, 0, f.w, f.h) }

// At implements [image.Image].
func (f *Film) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(f.Bounds())) {
		return color.RGBA{}
	}
	return Quantize(f.Pixel(x, y))
}

// Set implements [draw.Image]. Alpha is discarded.
//
// [draw.Image]: https://pkg.go.dev/image/draw#Image
func (f *Film) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}.In(f.Bounds())) {
		return
	}
	r, g, b, _ := c.RGBA()
	f.SetPixel(x, y, ms3.Vec{X: float32(r) / 0xffff, Y: float32(g) / 0xffff, Z: float32(b) / 0xffff})
}

// RGBA quantizes the film into an 8 bit image, clipping channels to [0,1].
func (f *Film) RGBA() *image.RGBA {
	img := image.NewRGBA(f.Bounds())
	for y := 0; y < f.h; y++ {
		for x := 0; x < f.w; x++ {
			img.SetRGBA(x, y, Quantize(f.Pixel(x, y)))
		}
	}
	return img
}

// Quantize clips c to [0,1] and converts it to an opaque 8 bit color.
func Quantize(c ms3.Vec) color.RGBA {
	return color.RGBA{
		R: quantize(c.X),
		G: quantize(c.Y),
		B: quantize(c.Z),
		A: 255,
	}
}

func quantize(v float32) uint8 {
	if v != v {
		return 0 // NaN.
	}
	return uint8(ms1.Clamp(v, 0, 1)*255 + 0.5)
}
