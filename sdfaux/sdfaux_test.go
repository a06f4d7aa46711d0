package sdfaux

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfmarch"
	"github.com/soypat/sdfmarch/anim"
	"github.com/soypat/sdfmarch/render"
	"github.com/soypat/sdfmarch/shade"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func testRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	var bld sdfmarch.Builder
	sph := bld.NewSphere(anim.F(1))
	pos, err := anim.NewVecInterpolator(ms3.Vec{X: -1, Z: -5}, ms3.Vec{X: 1, Z: -5}, anim.Timing{Interval: 1, Oscillate: true})
	if err != nil {
		t.Fatal(err)
	}
	sph.Position = pos
	r, err := render.NewRenderer(render.Config{Width: 16, Height: 12, TileSize: 8}, sph, &render.Pinhole{}, &shade.Normal{})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestEncodeFormats(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.SetRGBA(1, 2, color.RGBA{R: 200, G: 10, B: 30, A: 255})
	decoders := map[Format]func(*bytes.Buffer) (image.Image, error){
		FormatBMP:  func(b *bytes.Buffer) (image.Image, error) { return bmp.Decode(b) },
		FormatTIFF: func(b *bytes.Buffer) (image.Image, error) { return tiff.Decode(b) },
	}
	for _, format := range []Format{FormatPNG, FormatBMP, FormatTIFF} {
		var buf bytes.Buffer
		if err := Encode(&buf, img, format); err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if buf.Len() == 0 {
			t.Fatalf("%s: empty output", format)
		}
		dec, ok := decoders[format]
		if !ok {
			continue
		}
		got, err := dec(&buf)
		if err != nil {
			t.Fatalf("%s: decoding: %v", format, err)
		}
		r, g, b, _ := got.At(1, 2).RGBA()
		if r>>8 != 200 || g>>8 != 10 || b>>8 != 30 {
			t.Errorf("%s: pixel mismatch %d %d %d", format, r>>8, g>>8, b>>8)
		}
	}
	if err := Encode(&bytes.Buffer{}, img, "gif"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestFormatFromFilename(t *testing.T) {
	for name, want := range map[string]Format{"a.png": FormatPNG, "b.BMP": FormatBMP, "c.tif": FormatTIFF, "d/e.tiff": FormatTIFF} {
		got, err := FormatFromFilename(name)
		if err != nil || got != want {
			t.Errorf("%s: got %q, %v", name, got, err)
		}
	}
	if _, err := FormatFromFilename("movie.mp4"); err == nil {
		t.Error("expected error for mp4")
	}
}

func TestSequenceConfig(t *testing.T) {
	seq := SequenceConfig{FirstFrame: 2, LastFrame: 5, UpdatesPerSecond: 4}
	if err := seq.Validate(); err != nil {
		t.Fatal(err)
	}
	if seq.Frames() != 4 {
		t.Errorf("frames: got %d", seq.Frames())
	}
	if seq.Time(2) != 0.5 || seq.Time(5) != 1.25 {
		t.Errorf("unexpected frame times %v %v", seq.Time(2), seq.Time(5))
	}
	for _, bad := range []SequenceConfig{
		{FirstFrame: 3, LastFrame: 2, UpdatesPerSecond: 1},
		{FirstFrame: -1, LastFrame: 2, UpdatesPerSecond: 1},
		{FirstFrame: 0, LastFrame: 2, UpdatesPerSecond: 0},
	} {
		if bad.Validate() == nil {
			t.Errorf("expected %+v to be invalid", bad)
		}
	}
}

func TestRenderSequence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	r := testRenderer(t)
	seq := SequenceConfig{FirstFrame: 3, LastFrame: 5, UpdatesPerSecond: 2}
	cfg := RenderConfig{Dir: dir, Format: FormatBMP, SaveRaw: true}
	if err := RenderSequence(r, seq, cfg); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	slices.Sort(names)
	want := []string{"img3.bmp", "img4.bmp", "img5.bmp", "raw3.bmp", "raw4.bmp", "raw5.bmp"}
	if !slices.Equal(names, want) {
		t.Fatalf("got files %v, want %v", names, want)
	}
	fp, err := os.Open(cfg.ImageName(4))
	if err != nil {
		t.Fatal(err)
	}
	defer fp.Close()
	img, err := bmp.Decode(fp)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 12 {
		t.Errorf("unexpected image size %v", b)
	}
	if r.Frame().Time != 2.5 {
		t.Errorf("last frame time %v", r.Frame().Time)
	}
}

func TestRenderStillDeterministic(t *testing.T) {
	r := testRenderer(t)
	var a, b bytes.Buffer
	if err := RenderStill(&a, r, 0.25, FormatPNG); err != nil {
		t.Fatal(err)
	}
	if err := RenderStill(&b, r, 0.25, FormatPNG); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("same frame rendered twice differs")
	}
}

func TestFFmpegArgs(t *testing.T) {
	seq := SequenceConfig{FirstFrame: 10, LastFrame: 39, UpdatesPerSecond: 30}
	args := ffmpegArgs(seq, RenderConfig{Dir: "out"}, VideoConfig{Output: "anim.mp4"})
	want := []string{"-y", "-framerate", "30", "-start_number", "10", "-i", filepath.Join("out", "img%d.png"), "-frames:v", "30", "-pix_fmt", "yuv420p", "anim.mp4"}
	if !slices.Equal(args, want) {
		t.Errorf("got %q\nwant %q", args, want)
	}
}

func TestWriteImage(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	name := filepath.Join(dir, "ok.tiff")
	if err := writeImage(name, img, FormatTIFF); err != nil {
		t.Fatal(err)
	}
	fp, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer fp.Close()
	if _, err := tiff.Decode(fp); err != nil {
		t.Errorf("written file not decodable: %v", err)
	}
	if err := writeImage(filepath.Join(dir, "bad.gif"), img, "gif"); err == nil {
		t.Error("expected encoding error to be returned")
	}
	if err := writeImage(filepath.Join(dir, "missing", "x.png"), img, FormatPNG); err == nil {
		t.Error("expected error creating file in missing directory")
	}
}
