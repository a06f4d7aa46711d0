// Package render drives sphere tracing over image tiles in parallel and
// assembles the results into frames.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"time"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfmarch"
	"github.com/soypat/sdfmarch/trace"
	"golang.org/x/sync/errgroup"
)

// ErrTileFailed is wrapped by errors returned from [Renderer.Render] when a tile could not be computed.
var ErrTileFailed = errors.New("tile computation failed")

// Frame identifies the image being rendered and the time at which the scene is sampled.
type Frame struct {
	Width, Height int
	Time          float32
}

// Camera is an animatable ray generator.
type Camera interface {
	Snapshot(f Frame) Lens
}

// Lens generates world space rays for pixels of a frame. GenerateRay must be
// pure and safe for concurrent use. The returned direction must be of unit length.
type Lens interface {
	GenerateRay(x, y int) (dir, origin ms3.Vec)
}

// Shader is an animatable shading policy.
type Shader interface {
	Snapshot(f Frame) PixelShader
}

// PixelShader converts the result of tracing the ray of pixel (x, y) into a
// color. It must handle misses and be safe for concurrent use.
type PixelShader interface {
	Shade(hit trace.Intersection, x, y int) ms3.Vec
}

// PostProcessor transforms a whole frame. It may modify src and return it
// or return a new film.
type PostProcessor interface {
	ProcessImage(f Frame, src *Film) (*Film, error)
}

// Config configures a [Renderer].
type Config struct {
	Width, Height int
	// TileSize is the edge length of the square tiles rendered in parallel.
	// A non-positive value renders the frame as a single tile.
	TileSize int
	// Workers is the maximum number of tiles rendered concurrently.
	// A non-positive value uses one worker per CPU.
	Workers int
	// Trace configures the sphere tracer. The zero value selects [trace.DefaultConfig].
	Trace trace.Config
	// Logger receives frame timing diagnostics. Nil disables logging.
	Logger *slog.Logger
}

// Stats summarizes the work done rendering a frame.
type Stats struct {
	Pixels int
	Hits   int
	// Steps is the total number of sphere tracing iterations.
	Steps   int
	Elapsed time.Duration
}

// Renderer renders frames of an animated scene. A Renderer is not safe for
// concurrent use; the parallelism is internal to [Renderer.Render].
//
// Rendering a frame is done in the following order:
//
//	r.Evaluate(t)
//	r.PrepareRender()
//	err := r.Render()
//	img := r.Image()
type Renderer struct {
	cfg    Config
	log    *slog.Logger
	solver *trace.Solver
	scene  sdfmarch.Node
	camera Camera
	shader Shader
	post   []PostProcessor

	// Per frame state set by Evaluate.
	frame     Frame
	evaluated bool
	sdf       sdfmarch.SDF
	lens      Lens
	pixShader PixelShader

	raw       *Film
	processed *Film
	stats     Stats
}

// NewRenderer returns a renderer of scene as seen through camera and shaded by shader.
// Post processors are applied in order to every rendered frame.
func NewRenderer(cfg Config, scene sdfmarch.Node, camera Camera, shader Shader, post ...PostProcessor) (*Renderer, error) {
	var errs []error
	if cfg.Width <= 0 || cfg.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid frame dimensions %dx%d", cfg.Width, cfg.Height))
	}
	if scene == nil {
		errs = append(errs, errors.New("nil scene"))
	}
	if camera == nil {
		errs = append(errs, errors.New("nil camera"))
	}
	if shader == nil {
		errs = append(errs, errors.New("nil shader"))
	}
	for i := range post {
		if post[i] == nil {
			errs = append(errs, fmt.Errorf("nil post processor %d", i))
		}
	}
	if cfg.Trace == (trace.Config{}) {
		cfg.Trace = trace.DefaultConfig()
	}
	solver, err := trace.NewSolver(cfg.Trace)
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Renderer{
		cfg:    cfg,
		log:    log,
		solver: solver,
		scene:  scene,
		camera: camera,
		shader: shader,
		post:   post,
	}, nil
}

// Evaluate samples every animated parameter of the scene, camera and shader at time t.
// It must be called before rendering each frame.
func (r *Renderer) Evaluate(t float32) {
	r.frame = Frame{Width: r.cfg.Width, Height: r.cfg.Height, Time: t}
	r.sdf = r.scene.Snapshot(t)
	r.lens = r.camera.Snapshot(r.frame)
	r.pixShader = r.shader.Snapshot(r.frame)
	r.evaluated = true
}

// PrepareRender allocates the frame buffers, or clears them if already allocated.
func (r *Renderer) PrepareRender() {
	if r.raw == nil || r.raw.Width() != r.cfg.Width || r.raw.Height() != r.cfg.Height {
		r.raw = NewFilm(r.cfg.Width, r.cfg.Height)
	} else {
		r.raw.Clear()
	}
	r.processed = nil
	r.stats = Stats{}
}

type tileResult struct {
	block []ms3.Vec
	hits  int
	steps int
}

// Render traces every pixel of the frame, writes the raw frame buffer and
// runs the post processing chain. If any tile fails the frame buffers are
// left untouched and the error is returned.
func (r *Renderer) Render() error {
	if !r.evaluated {
		return errors.New("Render called before Evaluate")
	} else if r.raw == nil {
		return errors.New("Render called before PrepareRender")
	}
	watch := stopwatch()
	tiles := TileGrid(r.cfg.Width, r.cfg.Height, r.cfg.TileSize)
	results := make([]tileResult, len(tiles))
	var g errgroup.Group
	g.SetLimit(r.cfg.Workers)
	for i, tile := range tiles {
		g.Go(func() (err error) {
			defer func() {
				if a := recover(); a != nil {
					err = fmt.Errorf("%w: tile %d %v: %v", ErrTileFailed, i, tile, a)
				}
			}()
			results[i] = r.renderTile(tile)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.log.Error("frame failed", slog.Float64("time", float64(r.frame.Time)), slog.String("err", err.Error()))
		return err
	}

	// All tiles done, merge into frame buffer.
	var stats Stats
	for i, tile := range tiles {
		res := &results[i]
		dx := tile.Dx()
		for y := tile.Min.Y; y < tile.Max.Y; y++ {
			for x := tile.Min.X; x < tile.Max.X; x++ {
				r.raw.SetPixel(x, y, res.block[(y-tile.Min.Y)*dx+x-tile.Min.X])
			}
		}
		stats.Hits += res.hits
		stats.Steps += res.steps
	}
	stats.Pixels = r.cfg.Width * r.cfg.Height

	processed := r.raw
	if len(r.post) > 0 {
		processed = r.raw.Clone()
	}
	for i, pp := range r.post {
		out, err := pp.ProcessImage(r.frame, processed)
		if err != nil {
			return fmt.Errorf("post processor %d: %w", i, err)
		} else if out == nil {
			return fmt.Errorf("post processor %d returned nil film", i)
		}
		processed = out
	}
	r.processed = processed
	stats.Elapsed = watch()
	r.stats = stats
	r.log.LogAttrs(context.Background(), slog.LevelDebug, "rendered frame",
		slog.Float64("time", float64(r.frame.Time)),
		slog.Int("tiles", len(tiles)),
		slog.Int("hits", stats.Hits),
		slog.Int("steps", stats.Steps),
		slog.Duration("elapsed", stats.Elapsed),
	)
	return nil
}

func (r *Renderer) renderTile(tile image.Rectangle) tileResult {
	res := tileResult{block: make([]ms3.Vec, tile.Dx()*tile.Dy())}
	i := 0
	for y := tile.Min.Y; y < tile.Max.Y; y++ {
		for x := tile.Min.X; x < tile.Max.X; x++ {
			dir, origin := r.lens.GenerateRay(x, y)
			hit := r.solver.Solve(r.sdf, origin, dir)
			if hit.Hit {
				res.hits++
			}
			res.steps += hit.Steps
			res.block[i] = r.pixShader.Shade(hit, x, y)
			i++
		}
	}
	return res
}

// Frame returns the frame last evaluated.
func (r *Renderer) Frame() Frame { return r.frame }

// Stats returns statistics of the last rendered frame.
func (r *Renderer) Stats() Stats { return r.stats }

// Film returns the raw frame buffer, before post processing. It is nil before [Renderer.PrepareRender].
func (r *Renderer) Film() *Film { return r.raw }

// ProcessedFilm returns the post processed frame buffer. It is nil until a frame is rendered.
func (r *Renderer) ProcessedFilm() *Film { return r.processed }

// RawImage returns the quantized raw frame.
func (r *Renderer) RawImage() *image.RGBA {
	if r.raw == nil {
		return nil
	}
	return r.raw.RGBA()
}

// Image returns the quantized post processed frame.
func (r *Renderer) Image() *image.RGBA {
	if r.processed == nil {
		return nil
	}
	return r.processed.RGBA()
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
