package sdfmarch

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

type sphereSDF struct {
	r float32
}

func (s sphereSDF) sdist(p, albedo ms3.Vec) (ms3.Vec, float32) {
	return albedo, ms3.Norm(p) - s.r
}

type boxSDF struct {
	half  ms3.Vec
	round float32
}

func (b boxSDF) sdist(p, albedo ms3.Vec) (ms3.Vec, float32) {
	r := b.round
	q := ms3.AddScalar(r, ms3.Sub(ms3.AbsElem(p), b.half))
	return albedo, ms3.Norm(ms3.MaxElem(q, ms3.Vec{})) + minf(maxf(q.X, maxf(q.Y, q.Z)), 0.0) - r
}

type torusSDF struct {
	rGreater, rLesser float32
}

func (t torusSDF) sdist(p, albedo ms3.Vec) (ms3.Vec, float32) {
	q := ms2.Vec{X: hypotf(p.X, p.Y) - t.rGreater, Y: p.Z}
	return albedo, ms2.Norm(q) - t.rLesser
}

type cylinderSDF struct {
	r, halfh, round float32
}

func (c cylinderSDF) sdist(p, albedo ms3.Vec) (ms3.Vec, float32) {
	dx := hypotf(p.X, p.Y) - c.r + c.round
	dy := absf(p.Z) - c.halfh + c.round
	return albedo, minf(maxf(dx, dy), 0) + hypotf(maxf(dx, 0), maxf(dy, 0)) - c.round
}

type mandelbulbSDF struct {
	power      float32
	iterations int
	bailout    float32
}

func (m mandelbulbSDF) sdist(p, albedo ms3.Vec) (ms3.Vec, float32) {
	n := m.power
	z := p
	dr := float32(1)
	r := ms3.Norm(z)
	trap := r
	i := 0
	for ; i < m.iterations && r <= m.bailout; i++ {
		var theta, phi float32
		if r > 0 {
			theta = math32.Acos(clampf(z.Z/r, -1, 1))
			phi = math32.Atan2(z.Y, z.X)
		}
		dr = math32.Pow(r, n-1)*n*dr + 1
		zr := math32.Pow(r, n)
		st, ct := math32.Sincos(theta * n)
		sp, cp := math32.Sincos(phi * n)
		z = ms3.Add(ms3.Scale(zr, ms3.Vec{X: st * cp, Y: st * sp, Z: ct}), p)
		r = ms3.Norm(z)
		trap = minf(trap, r)
	}
	escape := float32(i) / float32(m.iterations)
	trap = clampf(trap, 0, 1)
	albedo = ms3.MulElem(albedo, ms3.Vec{
		X: 0.3 + 0.7*escape,
		Y: 0.3 + 0.7*trap,
		Z: 0.3 + 0.7*(1-escape),
	})
	if r < epstol {
		return albedo, 0
	}
	return albedo, 0.5 * math32.Log(r) * r / dr
}
