package post

import (
	"errors"
	"fmt"
	"image"

	"github.com/golang/freetype/truetype"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfmarch/render"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// Caption stamps a line of text onto frames using the Go Regular font.
type Caption struct {
	face  font.Face
	text  func(f render.Frame) string
	color ms3.Vec
	// Origin of the text baseline in pixels.
	origin image.Point
}

// TimeCaption formats the frame time in seconds.
func TimeCaption(f render.Frame) string {
	return fmt.Sprintf("t=%.2fs", f.Time)
}

// NewCaption returns a caption of the given font size in points drawn with
// its baseline starting at origin. text is called every frame to obtain the caption.
func NewCaption(size float64, origin image.Point, col ms3.Vec, text func(f render.Frame) string) (*Caption, error) {
	if !(size > 0) {
		return nil, fmt.Errorf("invalid caption font size %v", size)
	} else if text == nil {
		return nil, errors.New("nil caption text function")
	}
	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return &Caption{
		face:   truetype.NewFace(ttf, &truetype.Options{Size: size, Hinting: font.HintingFull}),
		text:   text,
		color:  col,
		origin: origin,
	}, nil
}

// ProcessImage implements [render.PostProcessor]. The source film is modified in place.
func (c *Caption) ProcessImage(f render.Frame, src *render.Film) (*render.Film, error) {
	d := font.Drawer{
		Dst:  src,
		Src:  image.NewUniform(render.Quantize(c.color)),
		Face: c.face,
		Dot:  fixed.P(c.origin.X, c.origin.Y),
	}
	d.DrawString(c.text(f))
	return src, nil
}
