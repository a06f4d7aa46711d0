package anim

import (
	"fmt"

	"github.com/soypat/geometry/ms3"
)

// F returns a constant scalar evaluator.
func F(v float32) Float { return Constant(v) }

// V returns a constant vector evaluator.
func V(x, y, z float32) Vec3 { return Vec3Constant{X: x, Y: y, Z: z} }

// Splat broadcasts a scalar evaluator to all three axes.
func Splat(f Float) Vec3 { return Vec3Cast{F: f} }

// Construct builds a vector evaluator from three per-axis scalar evaluators.
func Construct(x, y, z Float) Vec3 { return Vec3Construct{X: x, Y: y, Z: z} }

// AsFloat converts v to a scalar evaluator. Numeric literals become a
// [Constant] and values already implementing [Float] pass through.
func AsFloat(v any) (Float, error) {
	switch v := v.(type) {
	case Float:
		return v, nil
	case float32:
		return Constant(v), nil
	case float64:
		return Constant(v), nil
	case int:
		return Constant(v), nil
	}
	return nil, fmt.Errorf("%w: cannot use %T as scalar", ErrMalformedLiteral, v)
}

// AsVec3 converts v to a vector evaluator. Accepted inputs are values
// implementing [Vec3], fixed vectors, sequences of exactly three elements
// (each converted with [AsFloat]) and scalars (broadcast to all axes).
func AsVec3(v any) (Vec3, error) {
	switch vv := v.(type) {
	case Vec3:
		return vv, nil
	case ms3.Vec:
		return Vec3Constant(vv), nil
	case [3]float32:
		return Vec3Constant{X: vv[0], Y: vv[1], Z: vv[2]}, nil
	case [3]float64:
		return V(float32(vv[0]), float32(vv[1]), float32(vv[2])), nil
	case []float32:
		return sliceToVec3(len(vv), func(i int) any { return vv[i] })
	case []float64:
		return sliceToVec3(len(vv), func(i int) any { return vv[i] })
	case []any:
		return sliceToVec3(len(vv), func(i int) any { return vv[i] })
	case []Float:
		return sliceToVec3(len(vv), func(i int) any { return vv[i] })
	default:
		f, err := AsFloat(v)
		if err == nil {
			return Splat(f), nil
		}
	}
	return nil, fmt.Errorf("%w: cannot use %T as vector", ErrMalformedLiteral, v)
}

func sliceToVec3(n int, elem func(int) any) (Vec3, error) {
	if n != 3 {
		return nil, fmt.Errorf("%w: vector literal needs 3 elements, got %d", ErrMalformedLiteral, n)
	}
	var axes [3]Float
	for i := range axes {
		f, err := AsFloat(elem(i))
		if err != nil {
			return nil, fmt.Errorf("vector element %d: %w", i, err)
		}
		axes[i] = f
	}
	return Construct(axes[0], axes[1], axes[2]), nil
}
