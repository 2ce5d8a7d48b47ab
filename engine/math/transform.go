package math

/**
 * @brief Represents the local transform of an object: a translation, a
 * rotation and a scale applied in scale, rotate, translate order. The
 * object-to-parent and parent-to-object matrices are recomputed lazily and
 * track their own dirty state. NOTE: the properties should not be edited
 * directly, but via the setters to keep both matrices consistent.
 */
type Transform struct {
	position Vec3
	rotation Quaternion
	scale    Vec3

	objectToParent      Mat4
	parentToObject      Mat4
	dirtyObjectToParent bool
	dirtyParentToObject bool

	version uint64
}

func TransformCreate() *Transform {
	return TransformFromPositionRotationScale(NewVec3Zero(), NewQuatIdentity(), NewVec3One())
}

func TransformFromPosition(position Vec3) *Transform {
	return TransformFromPositionRotationScale(position, NewQuatIdentity(), NewVec3One())
}

func TransformFromPositionRotation(position Vec3, rotation Quaternion) *Transform {
	return TransformFromPositionRotationScale(position, rotation, NewVec3One())
}

func TransformFromPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) *Transform {
	t := &Transform{
		objectToParent: NewMat4Identity(),
		parentToObject: NewMat4Identity(),
	}
	t.SetPositionRotationScale(position, rotation, scale)
	return t
}

func (t *Transform) Position() Vec3 {
	return t.position
}

func (t *Transform) Rotation() Quaternion {
	return t.rotation
}

func (t *Transform) Scale() Vec3 {
	return t.scale
}

// Version increases every time the transform is modified.
func (t *Transform) Version() uint64 {
	return t.version
}

func (t *Transform) SetPosition(position Vec3) {
	t.position = position
	t.setDirty()
}

func (t *Transform) Translate(translation Vec3) {
	t.position = t.position.Add(translation)
	t.setDirty()
}

func (t *Transform) SetRotation(rotation Quaternion) {
	t.rotation = rotation.Normalize()
	t.setDirty()
}

func (t *Transform) Rotate(rotation Quaternion) {
	t.rotation = t.rotation.Mul(rotation).Normalize()
	t.setDirty()
}

func (t *Transform) SetScale(scale Vec3) {
	t.scale = scale
	t.setDirty()
}

// SetUniformScale sets the same scale factor on every axis.
func (t *Transform) SetUniformScale(scale float32) {
	t.SetScale(NewVec3Scalar(scale))
}

func (t *Transform) ScaleBy(scale Vec3) {
	t.scale = t.scale.Mul(scale)
	t.setDirty()
}

func (t *Transform) SetPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) {
	t.position = position
	t.rotation = rotation.Normalize()
	t.scale = scale
	t.setDirty()
}

/**
 * @brief Returns the object-to-parent matrix, recomputing it if any of the
 * components changed since the last call.
 */
func (t *Transform) ObjectToParentMatrix() Mat4 {
	if t.dirtyObjectToParent {
		s := NewMat4Scale(t.scale)
		r := t.rotation.ToMat4()
		tr := NewMat4Translation(t.position)
		t.objectToParent = s.Mul(r).Mul(tr)
		t.dirtyObjectToParent = false
	}
	return t.objectToParent
}

/**
 * @brief Returns the parent-to-object matrix, the inverse of
 * ObjectToParentMatrix, built directly from the inverted components.
 */
func (t *Transform) ParentToObjectMatrix() Mat4 {
	if t.dirtyParentToObject {
		tr := NewMat4Translation(t.position.Neg())
		r := t.rotation.Conjugate().ToMat4()
		s := NewMat4Scale(NewVec3One().Div(t.scale))
		t.parentToObject = tr.Mul(r).Mul(s)
		t.dirtyParentToObject = false
	}
	return t.parentToObject
}

func (t *Transform) setDirty() {
	t.dirtyObjectToParent = true
	t.dirtyParentToObject = true
	t.version++
}
