package sdfmarch

import (
	"fmt"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfmarch/anim"
)

// OpUnion is the result of the [Builder.Union] operation. Prefer using [Builder.Union] to using this type directly.
//
// Normally the results of operations in this package are not exported. The
// result of Union is the exception since it is the most common operation and
// users may want to walk a scene looking for its members.
type OpUnion struct {
	// joined contains 2 or more nodes.
	// OpUnion methods will panic if joined has less than 2 elements.
	joined []Node
}

// Union joins the shapes of several nodes into one. Is exact.
// The albedo of the union is the albedo of the closest member, with ties
// resolved in favour of the earlier argument.
// Union aggregates nested Union results into its own. To prevent this behaviour use [OpUnion] directly.
func (bld *Builder) Union(nodes ...Node) Node {
	if len(nodes) < 2 {
		panic("need at least 2 arguments to Union")
	}
	var U OpUnion
	for i, s := range nodes {
		if s == nil {
			bld.nilsdf(fmt.Sprintf("nil arg[%d] to Union", i))
		}
		if subU, ok := s.(*OpUnion); ok {
			U.joined = append(U.joined, subU.joined...)
		} else {
			U.joined = append(U.joined, s)
		}
	}
	return &U
}

// Members returns the nodes joined by the union.
func (u *OpUnion) Members() []Node {
	u.mustValidate()
	return u.joined
}

// Snapshot implements [Node].
func (u *OpUnion) Snapshot(t float32) SDF {
	u.mustValidate()
	s := make(unionSDF, len(u.joined))
	for i := range u.joined {
		s[i] = u.joined[i].Snapshot(t)
	}
	return s
}

func (u *OpUnion) mustValidate() {
	if len(u.joined) < 2 {
		panic("OpUnion must have at least 2 elements. please prefer using Builder.Union over OpUnion")
	}
}

type unionSDF []SDF

func (u unionSDF) Map(p ms3.Vec) (ms3.Vec, float32) {
	albedo, d := u[0].Map(p)
	for _, s := range u[1:] {
		a2, d2 := s.Map(p)
		if d2 < d {
			albedo, d = a2, d2
		}
	}
	return albedo, d
}

type opKind uint8

const (
	opUnion opKind = iota
	opDiff
	opIntersect
)

// binary is a two operand combinator. When k is non-nil and resolves to a
// positive value the combinator blends both operands over a width of k.
type binary struct {
	kind opKind
	k    anim.Float
	a, b Node
}

// Difference is the SDF difference of a-b. Does not produce a true SDF.
func (bld *Builder) Difference(a, b Node) Node {
	if a == nil || b == nil {
		bld.nilsdf("Difference")
	}
	return &binary{kind: opDiff, a: a, b: b}
}

// Intersection is the SDF intersection of a ∩ b. Does not produce an exact SDF.
func (bld *Builder) Intersection(a, b Node) Node {
	if a == nil || b == nil {
		bld.nilsdf("Intersection")
	}
	return &binary{kind: opIntersect, a: a, b: b}
}

// SmoothUnion joins a and b blending the seam over a width of k.
// Non-positive k produces a hard union.
func (bld *Builder) SmoothUnion(k anim.Float, a, b Node) Node {
	return bld.smooth(opUnion, "SmoothUnion", k, a, b)
}

// SmoothDifference carves b out of a blending the cut edge over a width of k.
// Non-positive k produces a hard difference.
func (bld *Builder) SmoothDifference(k anim.Float, a, b Node) Node {
	return bld.smooth(opDiff, "SmoothDifference", k, a, b)
}

// SmoothIntersection intersects a and b blending the edge over a width of k.
// Non-positive k produces a hard intersection.
func (bld *Builder) SmoothIntersection(k anim.Float, a, b Node) Node {
	return bld.smooth(opIntersect, "SmoothIntersection", k, a, b)
}

func (bld *Builder) smooth(kind opKind, name string, k anim.Float, a, b Node) Node {
	if a == nil || b == nil {
		bld.nilsdf(name)
	}
	k = bld.checkFloat(k, name+" smoothness", finite)
	return &binary{kind: kind, k: k, a: a, b: b}
}

// Snapshot implements [Node].
func (op *binary) Snapshot(t float32) SDF {
	s := binarySDF{kind: op.kind, a: op.a.Snapshot(t), b: op.b.Snapshot(t)}
	if op.k != nil {
		s.k = op.k.Evaluate(t)
	}
	return s
}

type binarySDF struct {
	kind opKind
	k    float32
	a, b SDF
}

func (s binarySDF) Map(p ms3.Vec) (ms3.Vec, float32) {
	albA, da := s.a.Map(p)
	albB, db := s.b.Map(p)
	if s.k <= 0 {
		return hardOp(s.kind, albA, albB, da, db)
	}
	k := s.k
	switch s.kind {
	case opUnion:
		h := clampf(0.5+0.5*(db-da)/k, 0, 1)
		return mixvec(albB, albA, h), mixf(db, da, h) - k*h*(1-h)
	case opDiff:
		h := clampf(0.5-0.5*(db+da)/k, 0, 1)
		return mixvec(albA, albB, h), mixf(da, -db, h) + k*h*(1-h)
	case opIntersect:
		h := clampf(0.5-0.5*(db-da)/k, 0, 1)
		return mixvec(albB, albA, h), mixf(db, da, h) + k*h*(1-h)
	}
	panic("unknown combinator")
}

func hardOp(kind opKind, albA, albB ms3.Vec, da, db float32) (ms3.Vec, float32) {
	switch kind {
	case opUnion:
		if da <= db {
			return albA, da
		}
		return albB, db
	case opDiff:
		if da >= -db {
			return albA, da
		}
		return albB, -db
	case opIntersect:
		if da >= db {
			return albA, da
		}
		return albB, db
	}
	panic("unknown combinator")
}
