// Package spatialmath defines spatial mathematical operations for rigid transforms.
package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents the position and orientation of a rigid body as three
// consistent views of a single transform: a translation vector, a unit
// quaternion, and a 4x4 homogeneous matrix. The views are derived together at
// construction and never mutated independently.
type Pose struct {
	position    r3.Vector
	orientation quat.Number
	transform   mgl64.Mat4
}

// NewZeroPose returns the identity pose.
func NewZeroPose() *Pose {
	return NewPoseFromTransform(mgl64.Ident4())
}

// NewPoseFromTransform extracts position and orientation from a homogeneous
// transform. The quaternion is normalized to guard against floating drift
// accumulated during matrix composition.
func NewPoseFromTransform(m mgl64.Mat4) *Pose {
	return &Pose{
		position:    r3.Vector{X: m.At(0, 3), Y: m.At(1, 3), Z: m.At(2, 3)},
		orientation: Normalize(QuatFromRotationMatrix(m)),
		transform:   m,
	}
}

// Point returns the translation component.
func (p *Pose) Point() r3.Vector {
	return p.position
}

// Orientation returns the rotation component as a unit quaternion.
func (p *Pose) Orientation() quat.Number {
	return p.orientation
}

// Transform returns the underlying 4x4 homogeneous matrix.
func (p *Pose) Transform() mgl64.Mat4 {
	return p.transform
}

// Matrix returns the homogeneous transform as a row-major 4x4 slice,
// convenient for serialization.
func (p *Pose) Matrix() [][]float64 {
	out := make([][]float64, 4)
	for r := 0; r < 4; r++ {
		row := make([]float64, 4)
		for c := 0; c < 4; c++ {
			row[c] = p.transform.At(r, c)
		}
		out[r] = row
	}
	return out
}

// QuatFromRotationMatrix converts the rotation block of a homogeneous
// transform to a quaternion using Shepperd's method, branching on the largest
// diagonal element for numerical stability.
func QuatFromRotationMatrix(m mgl64.Mat4) quat.Number {
	tr := m.At(0, 0) + m.At(1, 1) + m.At(2, 2)
	switch {
	case tr > 0:
		s := math.Sqrt(tr+1.0) * 2
		return quat.Number{
			Real: 0.25 * s,
			Imag: (m.At(2, 1) - m.At(1, 2)) / s,
			Jmag: (m.At(0, 2) - m.At(2, 0)) / s,
			Kmag: (m.At(1, 0) - m.At(0, 1)) / s,
		}
	case m.At(0, 0) > m.At(1, 1) && m.At(0, 0) > m.At(2, 2):
		s := math.Sqrt(1.0+m.At(0, 0)-m.At(1, 1)-m.At(2, 2)) * 2
		return quat.Number{
			Real: (m.At(2, 1) - m.At(1, 2)) / s,
			Imag: 0.25 * s,
			Jmag: (m.At(0, 1) + m.At(1, 0)) / s,
			Kmag: (m.At(0, 2) + m.At(2, 0)) / s,
		}
	case m.At(1, 1) > m.At(2, 2):
		s := math.Sqrt(1.0+m.At(1, 1)-m.At(0, 0)-m.At(2, 2)) * 2
		return quat.Number{
			Real: (m.At(0, 2) - m.At(2, 0)) / s,
			Imag: (m.At(0, 1) + m.At(1, 0)) / s,
			Jmag: 0.25 * s,
			Kmag: (m.At(1, 2) + m.At(2, 1)) / s,
		}
	default:
		s := math.Sqrt(1.0+m.At(2, 2)-m.At(0, 0)-m.At(1, 1)) * 2
		return quat.Number{
			Real: (m.At(1, 0) - m.At(0, 1)) / s,
			Imag: (m.At(0, 2) + m.At(2, 0)) / s,
			Jmag: (m.At(1, 2) + m.At(2, 1)) / s,
			Kmag: 0.25 * s,
		}
	}
}

// Normalize returns the given quaternion scaled to unit norm. The zero
// quaternion is returned unchanged rather than dividing by zero.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return q
	}
	return quat.Scale(1/n, q)
}

// OrientationDelta returns the rotation needed to get from the current
// orientation to the goal, expressed as an axis-angle vector (axis scaled by
// angle). Distances in this form are well-defined, which makes it suitable as
// the angular error term of an iterative solver.
func OrientationDelta(current, goal quat.Number) r3.Vector {
	dq := quat.Mul(goal, quat.Conj(current))
	// Take the shorter of the two equivalent rotations.
	if dq.Real < 0 {
		dq = quat.Scale(-1, dq)
	}
	n := math.Sqrt(dq.Imag*dq.Imag + dq.Jmag*dq.Jmag + dq.Kmag*dq.Kmag)
	if n < 1e-12 {
		return r3.Vector{}
	}
	angle := 2 * math.Atan2(n, dq.Real)
	return r3.Vector{X: angle * dq.Imag / n, Y: angle * dq.Jmag / n, Z: angle * dq.Kmag / n}
}

// QuaternionAlmostEqual reports whether two quaternions represent nearly the
// same rotation, treating q and -q as equal.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	dot := a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
	return math.Abs(math.Abs(dot)-1) < tol
}
