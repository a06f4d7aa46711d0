// Package sdfaux provides helpers to get animated scenes rendered to disk quickly:
// image encoding, numbered frame sequences and video encoding.
// Applications with specific needs should drive [render.Renderer] directly.
package sdfaux

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chewxy/math32"
	"github.com/soypat/sdfmarch/render"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is an image file format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// FormatFromFilename returns the format matching the extension of filename.
func FormatFromFilename(filename string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "png":
		return FormatPNG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	}
	return "", fmt.Errorf("unsupported image extension %q", ext)
}

// Encode writes img to w in the given format. An empty format selects PNG.
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatPNG, "":
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("unsupported image format %q", format)
}

// SequenceConfig selects the frames of an animation. Frames are numbered
// from FirstFrame to LastFrame inclusive and frame n samples the scene at
// time n/UpdatesPerSecond.
type SequenceConfig struct {
	FirstFrame       int
	LastFrame        int
	UpdatesPerSecond float32
}

// Validate checks the frame range and rate are usable.
func (sc SequenceConfig) Validate() error {
	var errs []error
	if sc.FirstFrame < 0 {
		errs = append(errs, fmt.Errorf("negative first frame %d", sc.FirstFrame))
	}
	if sc.LastFrame < sc.FirstFrame {
		errs = append(errs, fmt.Errorf("last frame %d before first frame %d", sc.LastFrame, sc.FirstFrame))
	}
	if !(sc.UpdatesPerSecond > 0) || math32.IsInf(sc.UpdatesPerSecond, 1) {
		errs = append(errs, fmt.Errorf("invalid updates per second %v", sc.UpdatesPerSecond))
	}
	return errors.Join(errs...)
}

// Frames returns the number of frames in the sequence.
func (sc SequenceConfig) Frames() int { return sc.LastFrame - sc.FirstFrame + 1 }

// Time returns the scene time at which frame is sampled.
func (sc SequenceConfig) Time(frame int) float32 {
	return float32(frame) / sc.UpdatesPerSecond
}

// RenderConfig configures where and how rendered frames are persisted.
type RenderConfig struct {
	// Dir is the output directory of frame sequences. Empty means the working directory.
	Dir string
	// Format of output images. Empty means PNG.
	Format Format
	// SaveRaw also writes the frame buffer before post processing as raw%d.<ext>.
	SaveRaw bool
	// Logger receives progress information. Nil is silent.
	Logger *slog.Logger
}

// ImageName returns the file name of processed frame n.
func (cfg RenderConfig) ImageName(n int) string {
	return filepath.Join(cfg.Dir, fmt.Sprintf("img%d.%s", n, cfg.ext()))
}

// RawName returns the file name of raw frame n.
func (cfg RenderConfig) RawName(n int) string {
	return filepath.Join(cfg.Dir, fmt.Sprintf("raw%d.%s", n, cfg.ext()))
}

func (cfg RenderConfig) ext() string {
	if cfg.Format == "" {
		return string(FormatPNG)
	}
	return string(cfg.Format)
}

func (cfg RenderConfig) logger() *slog.Logger {
	if cfg.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return cfg.Logger
}

// RenderStill renders the frame at time t and writes the post processed image to w.
func RenderStill(w io.Writer, r *render.Renderer, t float32, format Format) error {
	r.Evaluate(t)
	r.PrepareRender()
	if err := r.Render(); err != nil {
		return err
	}
	return Encode(w, r.Image(), format)
}

// RenderSequence renders every frame of seq and writes each to a numbered file.
// Rendering stops at the first failed frame.
func RenderSequence(r *render.Renderer, seq SequenceConfig, cfg RenderConfig) (err error) {
	if err = seq.Validate(); err != nil {
		return err
	}
	if cfg.Format != "" {
		if err = Encode(io.Discard, image.NewRGBA(image.Rect(0, 0, 1, 1)), cfg.Format); err != nil {
			return err
		}
	}
	if cfg.Dir != "" {
		if err = os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return err
		}
	}
	log := cfg.logger()
	total := seq.Frames()
	watch := stopwatch()
	for n := seq.FirstFrame; n <= seq.LastFrame; n++ {
		frameWatch := stopwatch()
		r.Evaluate(seq.Time(n))
		r.PrepareRender()
		if err = r.Render(); err != nil {
			return fmt.Errorf("frame %d: %w", n, err)
		}
		if err = writeImage(cfg.ImageName(n), r.Image(), cfg.Format); err != nil {
			return fmt.Errorf("frame %d: %w", n, err)
		}
		if cfg.SaveRaw {
			if err = writeImage(cfg.RawName(n), r.RawImage(), cfg.Format); err != nil {
				return fmt.Errorf("frame %d: %w", n, err)
			}
		}
		done := n - seq.FirstFrame + 1
		log.Info("wrote frame",
			slog.Int("frame", n),
			slog.Float64("time", float64(seq.Time(n))),
			slog.Float64("percent", float64(percentUint64(uint64(done), uint64(total)))),
			slog.Duration("elapsed", frameWatch()),
		)
	}
	log.Info("sequence done", slog.Int("frames", total), slog.Duration("elapsed", watch()))
	return nil
}

func writeImage(filename string, img image.Image, format Format) error {
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	err = Encode(fp, img, format)
	if err == nil {
		err = fp.Sync()
	}
	if errClose := fp.Close(); err == nil {
		err = errClose
	}
	return err
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}

func percentUint64(num, denom uint64) float32 {
	return math32.Trunc(10000*float32(num)/float32(denom)) / 100
}
