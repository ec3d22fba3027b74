package math3d

import "math"

// Mat4 is a 4x4 matrix stored in row-major order.
//
// Memory layout:
// | m[0][0] m[0][1] m[0][2] m[0][3] |
// | m[1][0] m[1][1] m[1][2] m[1][3] |
// | m[2][0] m[2][1] m[2][2] m[2][3] |
// | m[3][0] m[3][1] m[3][2] m[3][3] |
//
// Points transform as column vectors on the right (MulVec4), so translation
// lives in the last column. The coordinate system is left-handed with +z
// growing into the scene.
type Mat4 [4][4]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Scale creates a scaling matrix.
func Scale(sx, sy, sz float64) Mat4 {
	//  | sx  0  0  0 |
	//  |  0 sy  0  0 |
	//  |  0  0 sz  0 |
	//  |  0  0  0  1 |
	m := Identity()
	m[0][0] = sx
	m[1][1] = sy
	m[2][2] = sz
	return m
}

// Translate creates a translation matrix.
func Translate(tx, ty, tz float64) Mat4 {
	//  |  1  0  0 tx |
	//  |  0  1  0 ty |
	//  |  0  0  1 tz |
	//  |  0  0  0  1 |
	m := Identity()
	m[0][3] = tx
	m[1][3] = ty
	m[2][3] = tz
	return m
}

// RotateX creates a rotation matrix around the X axis.
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	m := Identity()
	m[1][1] = c
	m[1][2] = -s
	m[2][1] = s
	m[2][2] = c
	return m
}

// RotateY creates a rotation matrix around the Y axis.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	m := Identity()
	m[0][0] = c
	m[0][2] = s
	m[2][0] = -s
	m[2][2] = c
	return m
}

// RotateZ creates a rotation matrix around the Z axis.
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	m := Identity()
	m[0][0] = c
	m[0][1] = -s
	m[1][0] = s
	m[1][1] = c
	return m
}

// World composes the model-to-world transform. The vertex is scaled first,
// then rotated about X, Y, Z, then translated.
func World(scale, rotation, translation Vec3) Mat4 {
	m := Scale(scale.X, scale.Y, scale.Z)
	m = RotateX(rotation.X).Mul(m)
	m = RotateY(rotation.Y).Mul(m)
	m = RotateZ(rotation.Z).Mul(m)
	m = Translate(translation.X, translation.Y, translation.Z).Mul(m)
	return m
}

// Perspective creates a left-handed perspective projection matrix.
// fovY is the vertical field of view in radians, aspectY is height/width.
// After Project, visible points satisfy -1 <= x,y <= 1 and 0 <= z <= 1
// (zNear maps to 0, zFar to 1) and W carries the view-space z.
func Perspective(fovY, aspectY, zNear, zFar float64) Mat4 {
	// | a/tan(fov/2)            0              0                  0 |
	// |            0 1/tan(fov/2)              0                  0 |
	// |            0            0 zf/(zf-zn) (-zf*zn)/(zf-zn)       |
	// |            0            0              1                  0 |
	f := 1 / math.Tan(fovY/2)
	var m Mat4
	m[0][0] = aspectY * f
	m[1][1] = f
	m[2][2] = zFar / (zFar - zNear)
	m[2][3] = -zFar * zNear / (zFar - zNear)
	m[3][2] = 1
	return m
}

// LookAt creates a left-handed view matrix looking from eye towards target.
func LookAt(eye, target, up Vec3) Mat4 {
	z := target.Sub(eye).Normalize() // forward
	x := up.Cross(z).Normalize()     // right
	y := z.Cross(x)                  // up, recomputed

	return Mat4{
		{x.X, x.Y, x.Z, -x.Dot(eye)},
		{y.X, y.Y, y.Z, -y.Dot(eye)},
		{z.X, z.Y, z.Z, -z.Dot(eye)},
		{0, 0, 0, 1},
	}
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for row := range 4 {
		for col := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row][k] * b[k][col]
			}
			m[row][col] = sum
		}
	}
	return m
}

// MulVec4 transforms a homogeneous point.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z + m[0][3]*v.W,
		m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z + m[1][3]*v.W,
		m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z + m[2][3]*v.W,
		m[3][0]*v.X + m[3][1]*v.Y + m[3][2]*v.Z + m[3][3]*v.W,
	}
}

// MulVec3 transforms a Vec3 as a point (w=1), dropping the resulting w.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	return m.MulVec4(v.Vec4()).Vec3()
}

// MulDir transforms a Vec3 as a direction (w=0, no translation).
func (m Mat4) MulDir(v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Project applies a projection matrix to a homogeneous point and performs the
// perspective divide on x, y and z. The returned W is left undivided so it
// keeps the original view-space z for later interpolation.
func (m Mat4) Project(v Vec4) Vec4 {
	out := m.MulVec4(v)
	if out.W != 0 {
		out.X /= out.W
		out.Y /= out.W
		out.Z /= out.W
	}
	return out
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for row := range 4 {
		for col := range 4 {
			t[col][row] = m[row][col]
		}
	}
	return t
}
