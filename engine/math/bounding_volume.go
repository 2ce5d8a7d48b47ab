package math

import (
	"fmt"
	gomath "math"
	"strings"

	"github.com/chewxy/math32"
)

// DepthConvention selects how projection depth maps onto [0,1].
type DepthConvention uint8

const (
	// DepthStandard maps the near plane to 0 and the far plane to 1.
	DepthStandard DepthConvention = iota
	// DepthInverted maps the near plane to 1 and the far plane to 0.
	DepthInverted
)

func (c DepthConvention) String() string {
	switch c {
	case DepthStandard:
		return "standard"
	case DepthInverted:
		return "inverted"
	default:
		return fmt.Sprintf("DepthConvention(%d)", uint8(c))
	}
}

// ParseDepthConvention accepts "standard" or "inverted" (case insensitive).
// An empty string yields DefaultDepthConvention.
func ParseDepthConvention(s string) (DepthConvention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultDepthConvention, nil
	case "standard":
		return DepthStandard, nil
	case "inverted", "inverted_z", "reversed":
		return DepthInverted, nil
	default:
		return DepthStandard, fmt.Errorf("unknown depth convention %q", s)
	}
}

// ------------------------------------------
// AABB
// ------------------------------------------

// AABB is an axis-aligned bounding box. Min must not exceed Max on any axis
// unless the box is empty.
type AABB struct {
	Min Vec3
	Max Vec3
}

func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// NewAABBEmpty returns the identity for Union.
func NewAABBEmpty() AABB {
	inf := math32.Inf(1)
	return AABB{
		Min: NewVec3Scalar(inf),
		Max: NewVec3Scalar(-inf),
	}
}

// NewAABBFromSphere returns the tightest box around the sphere.
func NewAABBFromSphere(sphere BoundingSphere) AABB {
	r := NewVec3Scalar(sphere.Radius)
	return AABB{
		Min: sphere.Centroid.Sub(r),
		Max: sphere.Centroid.Add(r),
	}
}

func (a AABB) IsEmpty() bool {
	return a.Min.X > a.Max.X || a.Min.Y > a.Max.Y || a.Min.Z > a.Max.Z
}

func (a AABB) Centroid() Vec3 {
	return a.Min.Add(a.Max).MulScalar(0.5)
}

// Radius returns the half extents of the box.
func (a AABB) Radius() Vec3 {
	return a.Max.Sub(a.Min).MulScalar(0.5)
}

func (a AABB) Diagonal() Vec3 {
	return a.Max.Sub(a.Min)
}

func (a AABB) Union(other AABB) AABB {
	return AABB{Min: a.Min.Min(other.Min), Max: a.Max.Max(other.Max)}
}

func (a AABB) UnionPoint(p Vec3) AABB {
	return AABB{Min: a.Min.Min(p), Max: a.Max.Max(p)}
}

// Corners returns the eight corners of the box.
func (a AABB) Corners() [8]Vec3 {
	return [8]Vec3{
		{a.Min.X, a.Min.Y, a.Min.Z},
		{a.Max.X, a.Min.Y, a.Min.Z},
		{a.Min.X, a.Max.Y, a.Min.Z},
		{a.Max.X, a.Max.Y, a.Min.Z},
		{a.Min.X, a.Min.Y, a.Max.Z},
		{a.Max.X, a.Min.Y, a.Max.Z},
		{a.Min.X, a.Max.Y, a.Max.Z},
		{a.Max.X, a.Max.Y, a.Max.Z},
	}
}

// Transform returns the box enclosing the transformed corners.
func (a AABB) Transform(m Mat4) AABB {
	out := NewAABBEmpty()
	for _, c := range a.Corners() {
		out = out.UnionPoint(c.Transform(m))
	}
	return out
}

// MinPointAlongNormal returns the corner that lies furthest against n.
func (a AABB) MinPointAlongNormal(n Vec3) Vec3 {
	p := a.Max
	if n.X >= 0 {
		p.X = a.Min.X
	}
	if n.Y >= 0 {
		p.Y = a.Min.Y
	}
	if n.Z >= 0 {
		p.Z = a.Min.Z
	}
	return p
}

// MaxPointAlongNormal returns the corner that lies furthest along n.
func (a AABB) MaxPointAlongNormal(n Vec3) Vec3 {
	p := a.Min
	if n.X >= 0 {
		p.X = a.Max.X
	}
	if n.Y >= 0 {
		p.Y = a.Max.Y
	}
	if n.Z >= 0 {
		p.Z = a.Max.Z
	}
	return p
}

func (a AABB) EnclosesPoint(p Vec3) bool {
	return a.Min.X <= p.X && p.X <= a.Max.X &&
		a.Min.Y <= p.Y && p.Y <= a.Max.Y &&
		a.Min.Z <= p.Z && p.Z <= a.Max.Z
}

func (a AABB) EnclosesPointStrict(p Vec3) bool {
	return a.Min.X < p.X && p.X < a.Max.X &&
		a.Min.Y < p.Y && p.Y < a.Max.Y &&
		a.Min.Z < p.Z && p.Z < a.Max.Z
}

func (a AABB) EnclosesAABB(other AABB) bool {
	return a.EnclosesPoint(other.Min) && a.EnclosesPoint(other.Max)
}

func (a AABB) EnclosesAABBStrict(other AABB) bool {
	return a.EnclosesPointStrict(other.Min) && a.EnclosesPointStrict(other.Max)
}

func (a AABB) EnclosesSphere(sphere BoundingSphere) bool {
	r := NewVec3Scalar(sphere.Radius)
	return a.EnclosesPoint(sphere.Centroid.Sub(r)) && a.EnclosesPoint(sphere.Centroid.Add(r))
}

func (a AABB) EnclosesSphereStrict(sphere BoundingSphere) bool {
	r := NewVec3Scalar(sphere.Radius)
	return a.EnclosesPointStrict(sphere.Centroid.Sub(r)) && a.EnclosesPointStrict(sphere.Centroid.Add(r))
}

func (a AABB) OverlapsAABB(other AABB) bool {
	return a.Min.X <= other.Max.X && other.Min.X <= a.Max.X &&
		a.Min.Y <= other.Max.Y && other.Min.Y <= a.Max.Y &&
		a.Min.Z <= other.Max.Z && other.Min.Z <= a.Max.Z
}

func (a AABB) OverlapsAABBStrict(other AABB) bool {
	return a.Min.X < other.Max.X && other.Min.X < a.Max.X &&
		a.Min.Y < other.Max.Y && other.Min.Y < a.Max.Y &&
		a.Min.Z < other.Max.Z && other.Min.Z < a.Max.Z
}

func (a AABB) OverlapsSphere(sphere BoundingSphere) bool {
	return a.squaredDistance(sphere.Centroid) <= squared(sphere.Radius)
}

func (a AABB) OverlapsSphereStrict(sphere BoundingSphere) bool {
	return a.squaredDistance(sphere.Centroid) < squared(sphere.Radius)
}

// squaredDistance is zero for points inside the box.
func (a AABB) squaredDistance(p Vec3) float32 {
	closest := p.Max(a.Min).Min(a.Max)
	return squaredLength(p.Sub(closest))
}

// ------------------------------------------
// Bounding sphere
// ------------------------------------------

type BoundingSphere struct {
	Centroid Vec3
	Radius   float32
}

func NewBoundingSphere(centroid Vec3, radius float32) BoundingSphere {
	return BoundingSphere{Centroid: centroid, Radius: radius}
}

// NewBoundingSphereFromAABB returns a sphere through the corners of the box.
// The radius is rounded up by one ulp so every corner tests as enclosed.
func NewBoundingSphereFromAABB(a AABB) BoundingSphere {
	c := a.Centroid()
	extents := a.Max.Sub(c).Abs().Max(c.Sub(a.Min).Abs())
	r := math32.Sqrt(squaredLength(extents))
	return BoundingSphere{
		Centroid: c,
		Radius:   gomath.Nextafter32(r, math32.Inf(1)),
	}
}

// PR packs the centroid and the radius (in W) into one vector.
func (s BoundingSphere) PR() Vec4 {
	return s.Centroid.ToVec4(s.Radius)
}

func (s BoundingSphere) EnclosesPoint(p Vec3) bool {
	return squaredLength(p.Sub(s.Centroid)) <= squared(s.Radius)
}

func (s BoundingSphere) EnclosesPointStrict(p Vec3) bool {
	return squaredLength(p.Sub(s.Centroid)) < squared(s.Radius)
}

func (s BoundingSphere) EnclosesAABB(a AABB) bool {
	for _, c := range a.Corners() {
		if !s.EnclosesPoint(c) {
			return false
		}
	}
	return true
}

func (s BoundingSphere) EnclosesAABBStrict(a AABB) bool {
	for _, c := range a.Corners() {
		if !s.EnclosesPointStrict(c) {
			return false
		}
	}
	return true
}

func (s BoundingSphere) EnclosesSphere(other BoundingSphere) bool {
	return s.Centroid.Distance(other.Centroid)+other.Radius <= s.Radius
}

func (s BoundingSphere) EnclosesSphereStrict(other BoundingSphere) bool {
	return s.Centroid.Distance(other.Centroid)+other.Radius < s.Radius
}

func (s BoundingSphere) OverlapsAABB(a AABB) bool {
	return a.OverlapsSphere(s)
}

func (s BoundingSphere) OverlapsAABBStrict(a AABB) bool {
	return a.OverlapsSphereStrict(s)
}

func (s BoundingSphere) OverlapsSphere(other BoundingSphere) bool {
	return squaredLength(s.Centroid.Sub(other.Centroid)) <= squared(s.Radius+other.Radius)
}

func (s BoundingSphere) OverlapsSphereStrict(other BoundingSphere) bool {
	return squaredLength(s.Centroid.Sub(other.Centroid)) < squared(s.Radius+other.Radius)
}

// ------------------------------------------
// Bounding frustum
// ------------------------------------------

const (
	FRUSTUM_PLANE_LEFT = iota
	FRUSTUM_PLANE_RIGHT
	FRUSTUM_PLANE_BOTTOM
	FRUSTUM_PLANE_TOP
	FRUSTUM_PLANE_NEAR
	FRUSTUM_PLANE_FAR
	FRUSTUM_PLANE_COUNT
)

// BoundingFrustum holds six inward-facing planes (xyz normal, w offset).
type BoundingFrustum struct {
	planes [FRUSTUM_PLANE_COUNT]Vec4
}

// NewBoundingFrustum extracts the frustum of transform using DefaultDepthConvention.
func NewBoundingFrustum(transform Mat4) BoundingFrustum {
	return NewBoundingFrustumWithConvention(transform, DefaultDepthConvention)
}

/**
 * @brief Extracts the clipping planes of an object-to-projection transform
 * (Gribb/Hartmann). The planes live in the space the transform maps from.
 */
func NewBoundingFrustumWithConvention(transform Mat4, convention DepthConvention) BoundingFrustum {
	c0 := transform.Column(0)
	c1 := transform.Column(1)
	c2 := transform.Column(2)
	c3 := transform.Column(3)

	f := BoundingFrustum{}
	f.planes[FRUSTUM_PLANE_LEFT] = c3.Add(c0)
	f.planes[FRUSTUM_PLANE_RIGHT] = c3.Sub(c0)
	f.planes[FRUSTUM_PLANE_BOTTOM] = c3.Add(c1)
	f.planes[FRUSTUM_PLANE_TOP] = c3.Sub(c1)
	if convention == DepthInverted {
		f.planes[FRUSTUM_PLANE_NEAR] = c3.Sub(c2)
		f.planes[FRUSTUM_PLANE_FAR] = c2
	} else {
		f.planes[FRUSTUM_PLANE_NEAR] = c2
		f.planes[FRUSTUM_PLANE_FAR] = c3.Sub(c2)
	}

	for i := range f.planes {
		f.planes[i] = normalizePlane(f.planes[i])
	}
	return f
}

// CullAABB reports whether aabb (in object space) lies entirely outside the
// frustum of the object-to-projection transform.
func CullAABB(objectToProjection Mat4, aabb AABB) bool {
	return !NewBoundingFrustum(objectToProjection).OverlapsAABB(aabb)
}

// CullSphere is CullAABB for spheres.
func CullSphere(objectToProjection Mat4, sphere BoundingSphere) bool {
	return !NewBoundingFrustum(objectToProjection).OverlapsSphere(sphere)
}

func (f BoundingFrustum) Plane(i int) Vec4 {
	return f.planes[i]
}

// Equal reports whether all six planes match exactly.
func (f BoundingFrustum) Equal(other BoundingFrustum) bool {
	return f.planes == other.planes
}

func (f BoundingFrustum) EnclosesPoint(p Vec3) bool {
	for _, plane := range f.planes {
		if planeDistance(plane, p) < 0 {
			return false
		}
	}
	return true
}

func (f BoundingFrustum) EnclosesPointStrict(p Vec3) bool {
	for _, plane := range f.planes {
		if planeDistance(plane, p) <= 0 {
			return false
		}
	}
	return true
}

func (f BoundingFrustum) EnclosesAABB(a AABB) bool {
	for _, plane := range f.planes {
		if planeDistance(plane, a.MinPointAlongNormal(plane.ToVec3())) < 0 {
			return false
		}
	}
	return true
}

func (f BoundingFrustum) EnclosesAABBStrict(a AABB) bool {
	for _, plane := range f.planes {
		if planeDistance(plane, a.MinPointAlongNormal(plane.ToVec3())) <= 0 {
			return false
		}
	}
	return true
}

func (f BoundingFrustum) EnclosesSphere(s BoundingSphere) bool {
	for _, plane := range f.planes {
		if planeDistance(plane, s.Centroid) < s.Radius {
			return false
		}
	}
	return true
}

func (f BoundingFrustum) EnclosesSphereStrict(s BoundingSphere) bool {
	for _, plane := range f.planes {
		if planeDistance(plane, s.Centroid) <= s.Radius {
			return false
		}
	}
	return true
}

func (f BoundingFrustum) OverlapsAABB(a AABB) bool {
	for _, plane := range f.planes {
		if planeDistance(plane, a.MaxPointAlongNormal(plane.ToVec3())) < 0 {
			return false
		}
	}
	return true
}

func (f BoundingFrustum) OverlapsAABBStrict(a AABB) bool {
	for _, plane := range f.planes {
		if planeDistance(plane, a.MaxPointAlongNormal(plane.ToVec3())) <= 0 {
			return false
		}
	}
	return true
}

func (f BoundingFrustum) OverlapsSphere(s BoundingSphere) bool {
	for _, plane := range f.planes {
		if planeDistance(plane, s.Centroid) < -s.Radius {
			return false
		}
	}
	return true
}

func (f BoundingFrustum) OverlapsSphereStrict(s BoundingSphere) bool {
	for _, plane := range f.planes {
		if planeDistance(plane, s.Centroid) <= -s.Radius {
			return false
		}
	}
	return true
}

func normalizePlane(p Vec4) Vec4 {
	l := p.ToVec3().Length()
	if l == 0 {
		return p
	}
	return p.MulScalar(1.0 / l)
}

func planeDistance(plane Vec4, p Vec3) float32 {
	return plane.X*p.X + plane.Y*p.Y + plane.Z*p.Z + plane.W
}

// The explicit conversions keep the compiler from fusing multiply-adds, so
// equal inputs always round the same way.
func squaredLength(v Vec3) float32 {
	x := float32(v.X * v.X)
	y := float32(v.Y * v.Y)
	z := float32(v.Z * v.Z)
	return x + y + z
}

func squared(f float32) float32 {
	return float32(f * f)
}
