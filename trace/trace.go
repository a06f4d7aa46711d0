// Package trace implements sphere tracing of signed distance functions.
package trace

import (
	"errors"
	"fmt"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfmarch"
)

// Config holds sphere tracing parameters.
type Config struct {
	// MinDist is the surface distance under which a ray is considered to hit.
	MinDist float32
	// MaxDist is the surface distance over which a ray is considered to escape the scene.
	MaxDist float32
	// MaxSteps caps the number of marching steps per ray. Rays that do not
	// resolve within MaxSteps are reported as misses.
	MaxSteps int
	// NormalStep is the offset used for central difference normal estimation.
	NormalStep float32
}

// DefaultConfig returns tracing parameters suited for scenes of unit scale.
func DefaultConfig() Config {
	return Config{
		MinDist:    1e-3,
		MaxDist:    100,
		MaxSteps:   128,
		NormalStep: 1e-3,
	}
}

// Validate checks the configuration is usable.
func (cfg Config) Validate() error {
	var errs []error
	if !(cfg.MinDist > 0) {
		errs = append(errs, fmt.Errorf("MinDist must be positive, got %v", cfg.MinDist))
	}
	if !(cfg.MaxDist > cfg.MinDist) {
		errs = append(errs, fmt.Errorf("MaxDist %v must be greater than MinDist %v", cfg.MaxDist, cfg.MinDist))
	}
	if cfg.MaxSteps <= 0 {
		errs = append(errs, fmt.Errorf("MaxSteps must be positive, got %d", cfg.MaxSteps))
	}
	if !(cfg.NormalStep > 0) {
		errs = append(errs, fmt.Errorf("NormalStep must be positive, got %v", cfg.NormalStep))
	}
	return errors.Join(errs...)
}

// Intersection is the result of tracing a single ray.
type Intersection struct {
	Hit bool
	// Distance is the total distance travelled along the ray.
	Distance float32
	// Albedo is the surface albedo at the last sampled position.
	Albedo ms3.Vec
	// Steps is the number of marching iterations consumed.
	Steps int
	// Normal is the unit surface normal at Position. It is the zero vector
	// when the ray missed or the gradient vanished.
	Normal ms3.Vec
	// Position is the last sampled position along the ray.
	Position ms3.Vec
}

// Solver traces rays against resolved scenes. A Solver holds no per-ray
// state and is safe for concurrent use.
type Solver struct {
	cfg Config
}

// NewSolver returns a solver for the configuration or an error if it is invalid.
func NewSolver(cfg Config) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid solver config: %w", err)
	}
	return &Solver{cfg: cfg}, nil
}

// Config returns the solver's configuration.
func (s *Solver) Config() Config { return s.cfg }

// Solve marches from pos along ray, which must be of unit length, stepping
// by the distance reported by sdf until the surface is reached, the scene is
// escaped or the step budget is exhausted.
func (s *Solver) Solve(sdf sdfmarch.SDF, pos, ray ms3.Vec) Intersection {
	var total float32
	for step := 0; step < s.cfg.MaxSteps; step++ {
		albedo, d := sdf.Map(pos)
		if d < s.cfg.MinDist {
			return Intersection{
				Hit:      true,
				Distance: total,
				Albedo:   albedo,
				Steps:    step,
				Normal:   Normal(sdf, pos, s.cfg.NormalStep),
				Position: pos,
			}
		} else if d > s.cfg.MaxDist {
			return Intersection{Distance: total, Albedo: albedo, Steps: step, Position: pos}
		}
		pos = ms3.Add(pos, ms3.Scale(d, ray))
		total += d
	}
	albedo, _ := sdf.Map(pos)
	return Intersection{Distance: total, Albedo: albedo, Steps: s.cfg.MaxSteps, Position: pos}
}

// Normal estimates the unit surface normal of sdf at p by central
// differences with the given step. It returns the zero vector when the
// gradient vanishes.
func Normal(sdf sdfmarch.SDF, p ms3.Vec, step float32) ms3.Vec {
	var vecs = [3]ms3.Vec{{X: step}, {Y: step}, {Z: step}}
	var grad [3]float32
	for dim, h := range vecs {
		_, d1 := sdf.Map(ms3.Add(p, h))
		_, d2 := sdf.Map(ms3.Sub(p, h))
		grad[dim] = d1 - d2
	}
	n := ms3.Vec{X: grad[0], Y: grad[1], Z: grad[2]}
	if n == (ms3.Vec{}) {
		return n
	}
	return ms3.Unit(n)
}
