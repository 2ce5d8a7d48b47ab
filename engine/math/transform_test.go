package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransformComposition(t *testing.T) {
	tr := TransformFromPositionRotationScale(
		NewVec3(1, 2, 3),
		NewQuatFromAxisAngle(NewVec3Up(), DegToRad(90), true),
		NewVec3(2, 2, 2),
	)
	p := NewVec3(1, 0, 0).Transform(tr.ObjectToParentMatrix())
	assert.True(t, p.Compare(NewVec3(1, 2, 1), 1e-5), "got %v", p)

	back := p.Transform(tr.ParentToObjectMatrix())
	assert.True(t, back.Compare(NewVec3(1, 0, 0), 1e-5), "got %v", back)
}

func TestTransformMatricesAreInverse(t *testing.T) {
	tr := TransformCreate()
	tr.SetPosition(NewVec3(-4, 0.5, 9))
	tr.Rotate(NewQuatFromAxisAngle(NewVec3(1, 1, 0).Normalized(), 0.7, true))
	tr.SetScale(NewVec3(1, 3, 0.5))

	m := tr.ObjectToParentMatrix().Mul(tr.ParentToObjectMatrix())
	assert.True(t, m.Compare(NewMat4Identity(), 1e-5))
	assert.True(t, tr.ParentToObjectMatrix().Compare(tr.ObjectToParentMatrix().Inverse(), 1e-4))
}

func TestTransformDirtyTracking(t *testing.T) {
	tr := TransformCreate()
	v := tr.Version()
	assert.Equal(t, NewMat4Identity(), tr.ObjectToParentMatrix())

	tr.Translate(NewVec3(1, 0, 0))
	assert.Greater(t, tr.Version(), v)
	assert.Equal(t, NewVec3(1, 0, 0), tr.ObjectToParentMatrix().Translation())
	assert.Equal(t, NewVec3(-1, 0, 0), tr.ParentToObjectMatrix().Translation())

	tr.SetUniformScale(4)
	assert.Equal(t, NewVec3(4, 4, 4), tr.Scale())
	assert.Equal(t, float32(4), tr.ObjectToParentMatrix().Data[0])
	assert.Equal(t, float32(0.25), tr.ParentToObjectMatrix().Data[0])
}
