package post

import (
	"errors"

	"github.com/soypat/sdfmarch/render"
	"golang.org/x/image/draw"
)

// Resample scales frames to Width by Height pixels with Catmull-Rom
// interpolation. Rendering at a multiple of the output size and resampling
// down anti-aliases the frame. Colors are clipped to [0,1] and quantized.
type Resample struct {
	Width, Height int
}

// ProcessImage implements [render.PostProcessor]. It returns a new film.
func (rs Resample) ProcessImage(f render.Frame, src *render.Film) (*render.Film, error) {
	if rs.Width <= 0 || rs.Height <= 0 {
		return nil, errors.New("invalid resample dimensions")
	}
	if rs.Width == src.Width() && rs.Height == src.Height() {
		return src, nil
	}
	dst := render.NewFilm(rs.Width, rs.Height)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}
