package render

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfmarch/anim"
)

const defaultFOV = 60

// Pinhole is a perspective camera that looks down its local -z axis with +y up.
// Nil fields default to a camera at the origin with no rotation and a 60°
// vertical field of view.
type Pinhole struct {
	Position anim.Vec3
	// Rotation holds Euler angles in radians, applied about X first, then Y, then Z.
	Rotation anim.Vec3
	// FOV is the vertical field of view in degrees.
	FOV anim.Float
}

// Snapshot implements [Camera].
func (c *Pinhole) Snapshot(f Frame) Lens {
	var pos, rot ms3.Vec
	fov := float32(defaultFOV)
	if c.Position != nil {
		pos = c.Position.Evaluate(f.Time)
	}
	if c.Rotation != nil {
		rot = c.Rotation.Evaluate(f.Time)
	}
	if c.FOV != nil {
		fov = c.FOV.Evaluate(f.Time)
	}
	fov = math32.Max(1e-3, math32.Min(fov, 179))
	return &pinholeLens{
		origin: pos,
		rot:    rotation(rot),
		scale:  math32.Tan(fov * math32.Pi / 360),
		aspect: float32(f.Width) / float32(max(f.Height, 1)),
		invW:   1 / float32(max(f.Width, 1)),
		invH:   1 / float32(max(f.Height, 1)),
	}
}

type pinholeLens struct {
	origin     ms3.Vec
	rot        [3]ms3.Vec // Columns of the camera to world rotation.
	scale      float32
	aspect     float32
	invW, invH float32
}

// GenerateRay returns the unit world space direction and origin of the ray through the center of pixel (x, y).
func (l *pinholeLens) GenerateRay(x, y int) (dir, origin ms3.Vec) {
	rx := (2*(float32(x)+0.5)*l.invW - 1) * l.aspect * l.scale
	ry := (1 - 2*(float32(y)+0.5)*l.invH) * l.scale
	local := ms3.Unit(ms3.Vec{X: rx, Y: ry, Z: -1})
	dir = ms3.Add(ms3.Add(ms3.Scale(local.X, l.rot[0]), ms3.Scale(local.Y, l.rot[1])), ms3.Scale(local.Z, l.rot[2]))
	return dir, l.origin
}

// rotation returns the columns of the matrix applying an X, Y, Z Euler rotation.
func rotation(euler ms3.Vec) (cols [3]ms3.Vec) {
	rx := ms3.RotationMat4(euler.X, ms3.Vec{X: 1})
	ry := ms3.RotationMat4(euler.Y, ms3.Vec{Y: 1})
	rz := ms3.RotationMat4(euler.Z, ms3.Vec{Z: 1})
	for i, e := range [3]ms3.Vec{{X: 1}, {Y: 1}, {Z: 1}} {
		cols[i] = rz.MulPosition(ry.MulPosition(rx.MulPosition(e)))
	}
	return cols
}
