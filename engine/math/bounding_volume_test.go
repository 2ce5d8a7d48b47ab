package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAABBRoundTripEnclosesSphere(t *testing.T) {
	spheres := []BoundingSphere{
		NewBoundingSphere(NewVec3(0, 0, 0), 1),
		NewBoundingSphere(NewVec3(0.1, -0.3, 7.7), 0.3),
		NewBoundingSphere(NewVec3(-1234.5, 0.001, 17.25), 99.9),
		NewBoundingSphere(NewVec3(3, 3, 3), 0),
	}
	for _, s := range spheres {
		box := NewAABBFromSphere(s)
		assert.True(t, box.EnclosesSphere(s), "box %v should enclose %v", box, s)
		assert.True(t, box.OverlapsSphere(s))
	}
}

func TestSphereRoundTripEnclosesAABB(t *testing.T) {
	boxes := []AABB{
		NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1)),
		NewAABB(NewVec3(0.1, 0.2, 0.3), NewVec3(0.7, 1.9, 0.31)),
		NewAABB(NewVec3(-500.25, 3, 12), NewVec3(-499.5, 1003.125, 12.5)),
		NewAABB(NewVec3(2, 2, 2), NewVec3(2, 2, 2)),
	}
	for _, b := range boxes {
		s := NewBoundingSphereFromAABB(b)
		assert.True(t, s.EnclosesAABB(b), "sphere %v should enclose %v", s, b)
		for _, c := range b.Corners() {
			assert.True(t, s.EnclosesPoint(c))
		}
	}
}

func TestSphereFromAABBRadius(t *testing.T) {
	s := NewBoundingSphereFromAABB(NewAABB(NewVec3(-1, -2, -2), NewVec3(1, 2, 2)))
	assert.Equal(t, NewVec3(0, 0, 0), s.Centroid)
	assert.InDelta(t, 3.0, s.Radius, 1e-5)
	assert.Equal(t, NewVec4(0, 0, 0, s.Radius), s.PR())
}

func TestStrictVersusNonStrictAtBoundary(t *testing.T) {
	t.Run("aabb-aabb", func(t *testing.T) {
		a := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))
		b := NewAABB(NewVec3(1, 0, 0), NewVec3(2, 1, 1))
		assert.True(t, a.OverlapsAABB(b))
		assert.False(t, a.OverlapsAABBStrict(b))
		assert.True(t, a.EnclosesAABB(a))
		assert.False(t, a.EnclosesAABBStrict(a))
	})
	t.Run("aabb-sphere", func(t *testing.T) {
		a := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))
		s := NewBoundingSphere(NewVec3(2, 0.5, 0.5), 1)
		assert.True(t, a.OverlapsSphere(s))
		assert.False(t, a.OverlapsSphereStrict(s))
		assert.True(t, s.OverlapsAABB(a))
		assert.False(t, s.OverlapsAABBStrict(a))
	})
	t.Run("sphere-sphere", func(t *testing.T) {
		s1 := NewBoundingSphere(NewVec3(0, 0, 0), 1)
		s2 := NewBoundingSphere(NewVec3(2, 0, 0), 1)
		assert.True(t, s1.OverlapsSphere(s2))
		assert.False(t, s1.OverlapsSphereStrict(s2))
		assert.True(t, s1.EnclosesSphere(s1))
		assert.False(t, s1.EnclosesSphereStrict(s1))
	})
	t.Run("frustum", func(t *testing.T) {
		for _, convention := range []DepthConvention{DepthStandard, DepthInverted} {
			// planes at x = ±1, y = ±1, z = 0 and z = 8
			f := NewBoundingFrustumWithConvention(NewMat4OrthographicLH(2, 2, 0, 8, convention), convention)

			touching := NewBoundingSphere(NewVec3(2, 0, 4), 1)
			assert.True(t, f.OverlapsSphere(touching), convention.String())
			assert.False(t, f.OverlapsSphereStrict(touching), convention.String())
			inscribed := NewBoundingSphere(NewVec3(0, 0, 4), 1)
			assert.True(t, f.EnclosesSphere(inscribed), convention.String())
			assert.False(t, f.EnclosesSphereStrict(inscribed), convention.String())

			adjacent := NewAABB(NewVec3(1, 0, 1), NewVec3(2, 1, 2))
			assert.True(t, f.OverlapsAABB(adjacent), convention.String())
			assert.False(t, f.OverlapsAABBStrict(adjacent), convention.String())
			filling := NewAABB(NewVec3(-1, -1, 0), NewVec3(1, 1, 8))
			assert.True(t, f.EnclosesAABB(filling), convention.String())
			assert.False(t, f.EnclosesAABBStrict(filling), convention.String())
		}
	})
	t.Run("point", func(t *testing.T) {
		a := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))
		assert.True(t, a.EnclosesPoint(NewVec3(1, 0.5, 0.5)))
		assert.False(t, a.EnclosesPointStrict(NewVec3(1, 0.5, 0.5)))
		s := NewBoundingSphere(NewVec3(0, 0, 0), 2)
		assert.True(t, s.EnclosesPoint(NewVec3(0, 2, 0)))
		assert.False(t, s.EnclosesPointStrict(NewVec3(0, 2, 0)))
	})
}

func TestAABBSphereSeparated(t *testing.T) {
	a := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))
	// Outside along the diagonal even though the expanded box would contain it.
	s := NewBoundingSphere(NewVec3(1.6, 1.6, 1.6), 1)
	assert.False(t, a.OverlapsSphere(s))
	assert.False(t, a.EnclosesSphere(NewBoundingSphere(NewVec3(0.5, 0.5, 0.5), 0.6)))
}

func TestSupportPoints(t *testing.T) {
	a := NewAABB(NewVec3(-1, -2, -3), NewVec3(1, 2, 3))
	n := NewVec3(1, -1, 0)
	assert.Equal(t, NewVec3(1, -2, 3), a.MaxPointAlongNormal(n))
	assert.Equal(t, NewVec3(-1, 2, -3), a.MinPointAlongNormal(n))
}

func perspectiveAtOrigin(convention DepthConvention) Mat4 {
	view := NewMat4LookToLH(NewVec3Zero(), NewVec3Forward(), NewVec3Up())
	proj := NewMat4PerspectiveLH(DegToRad(90), 1, 0.1, 100, convention)
	return view.Mul(proj)
}

func TestFrustumCulling(t *testing.T) {
	for _, convention := range []DepthConvention{DepthStandard, DepthInverted} {
		t.Run(convention.String(), func(t *testing.T) {
			m := perspectiveAtOrigin(convention)
			f := NewBoundingFrustumWithConvention(m, convention)

			visible := NewAABB(NewVec3(-1, -1, 49), NewVec3(1, 1, 51))
			offscreen := NewAABB(NewVec3(999, -1, 49), NewVec3(1001, 1, 51))
			behind := NewAABB(NewVec3(-1, -1, -51), NewVec3(1, 1, -49))
			beyond := NewAABB(NewVec3(-1, -1, 149), NewVec3(1, 1, 151))

			assert.True(t, f.OverlapsAABB(visible))
			assert.True(t, f.EnclosesAABB(visible))
			assert.False(t, f.OverlapsAABB(offscreen))
			assert.False(t, f.OverlapsAABB(behind))
			assert.False(t, f.OverlapsAABB(beyond))

			assert.True(t, f.EnclosesPoint(NewVec3(0, 0, 50)))
			assert.False(t, f.EnclosesPoint(NewVec3(0, 0, 0.05)))
			assert.False(t, f.EnclosesPoint(NewVec3(0, 0, 150)))

			assert.True(t, f.OverlapsSphere(NewBoundingSphere(NewVec3(0, 0, 50), 1)))
			assert.False(t, f.OverlapsSphere(NewBoundingSphere(NewVec3(1000, 0, 50), 1)))
			// Straddles the near plane.
			straddling := NewBoundingSphere(NewVec3(0, 0, 0.1), 0.05)
			assert.True(t, f.OverlapsSphere(straddling))
			assert.False(t, f.EnclosesSphere(straddling))
		})
	}
}

func TestCullUsesDefaultConvention(t *testing.T) {
	m := perspectiveAtOrigin(DefaultDepthConvention)
	assert.False(t, CullAABB(m, NewAABB(NewVec3(-1, -1, 49), NewVec3(1, 1, 51))))
	assert.True(t, CullAABB(m, NewAABB(NewVec3(999, -1, 49), NewVec3(1001, 1, 51))))
	assert.False(t, CullSphere(m, NewBoundingSphere(NewVec3(0, 0, 50), 1)))
	assert.True(t, CullSphere(m, NewBoundingSphere(NewVec3(0, 0, -50), 1)))
}

func TestCullInObjectSpace(t *testing.T) {
	// A unit box translated far to the right of the camera.
	objectToWorld := NewMat4Translation(NewVec3(1000, 0, 50))
	m := objectToWorld.Mul(perspectiveAtOrigin(DefaultDepthConvention))
	unit := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))
	assert.True(t, CullAABB(m, unit))

	objectToWorld = NewMat4Translation(NewVec3(0, 0, 50))
	m = objectToWorld.Mul(perspectiveAtOrigin(DefaultDepthConvention))
	assert.False(t, CullAABB(m, unit))
}

func TestFrustumEqual(t *testing.T) {
	a := NewBoundingFrustumWithConvention(perspectiveAtOrigin(DepthStandard), DepthStandard)
	b := NewBoundingFrustumWithConvention(perspectiveAtOrigin(DepthStandard), DepthStandard)
	c := NewBoundingFrustumWithConvention(NewMat4Translation(NewVec3(1, 0, 0)).Mul(perspectiveAtOrigin(DepthStandard)), DepthStandard)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestFrustumPlanesAreNormalized(t *testing.T) {
	f := NewBoundingFrustumWithConvention(perspectiveAtOrigin(DepthInverted), DepthInverted)
	for i := 0; i < FRUSTUM_PLANE_COUNT; i++ {
		assert.InDelta(t, 1.0, f.Plane(i).ToVec3().Length(), 1e-5)
	}
}

func TestParseDepthConvention(t *testing.T) {
	c, err := ParseDepthConvention("Inverted")
	require.NoError(t, err)
	assert.Equal(t, DepthInverted, c)

	c, err = ParseDepthConvention("")
	require.NoError(t, err)
	assert.Equal(t, DefaultDepthConvention, c)

	_, err = ParseDepthConvention("sideways")
	assert.Error(t, err)
}

func TestAABBTransformAndUnion(t *testing.T) {
	a := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))
	moved := a.Transform(NewMat4Translation(NewVec3(10, 0, 0)))
	assert.True(t, moved.Min.Compare(NewVec3(9, -1, -1), 1e-6))
	assert.True(t, moved.Max.Compare(NewVec3(11, 1, 1), 1e-6))

	u := a.Union(moved)
	assert.Equal(t, NewVec3(-1, -1, -1), u.Min)
	assert.Equal(t, NewVec3(11, 1, 1), u.Max)
	assert.True(t, NewAABBEmpty().IsEmpty())
	assert.False(t, u.IsEmpty())
}
