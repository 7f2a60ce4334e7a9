package kinematics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"github.com/sevendof/pandakin/spatialmath"
)

const halfPi = math.Pi / 2

// dhTransform builds the homogeneous transform of one joint from its fixed DH
// parameters and the joint variable theta, using the modified convention:
// rotate about the previous x-axis by alpha, translate by the link length,
// then rotate about the new z-axis by theta and translate by the link offset.
func dhTransform(p DHParam, theta float64) mgl64.Mat4 {
	ct, st := math.Cos(theta), math.Sin(theta)
	ca, sa := math.Cos(p.Alpha), math.Sin(p.Alpha)

	m := mgl64.Ident4()
	m.Set(0, 0, ct)
	m.Set(0, 1, -st)
	m.Set(0, 3, p.A)
	m.Set(1, 0, st*ca)
	m.Set(1, 1, ct*ca)
	m.Set(1, 2, -sa)
	m.Set(1, 3, -p.D*sa)
	m.Set(2, 0, st*sa)
	m.Set(2, 1, ct*sa)
	m.Set(2, 2, ca)
	m.Set(2, 3, p.D*ca)
	return m
}

// Transforms returns the accumulated joint-frame transforms for a
// configuration: element 0 is the base frame (identity) and element i the
// frame of joint i, so the last element is the end-effector frame. Jacobian
// computation and rendering collaborators read joint origins and axes from
// this chain.
func (m *Model) Transforms(angles []float64) ([]mgl64.Mat4, error) {
	if err := m.validateAngles(angles); err != nil {
		return nil, err
	}
	frames := make([]mgl64.Mat4, 0, len(m.dh)+1)
	acc := mgl64.Ident4()
	frames = append(frames, acc)
	for i, p := range m.dh {
		acc = acc.Mul4(dhTransform(p, angles[i]))
		frames = append(frames, acc)
	}
	return frames, nil
}

// ForwardKinematics composes the DH chain and returns the end-effector pose.
// It is defined for any real angles; joint limits are not enforced here.
func (m *Model) ForwardKinematics(angles []float64) (*spatialmath.Pose, error) {
	t, err := m.endEffectorTransform(angles)
	if err != nil {
		return nil, err
	}
	return spatialmath.NewPoseFromTransform(t), nil
}

// endEffectorTransform is the allocation-light path used by the workspace
// sampler, which only needs the final frame.
func (m *Model) endEffectorTransform(angles []float64) (mgl64.Mat4, error) {
	if err := m.validateAngles(angles); err != nil {
		return mgl64.Mat4{}, err
	}
	acc := mgl64.Ident4()
	for i, p := range m.dh {
		acc = acc.Mul4(dhTransform(p, angles[i]))
	}
	return acc, nil
}

// originOf reads the translation column of a joint frame.
func originOf(f mgl64.Mat4) r3.Vector {
	return r3.Vector{X: f.At(0, 3), Y: f.At(1, 3), Z: f.At(2, 3)}
}

// zAxisOf reads the z-axis direction of a joint frame, which for a revolute
// joint is its axis of rotation.
func zAxisOf(f mgl64.Mat4) r3.Vector {
	return r3.Vector{X: f.At(0, 2), Y: f.At(1, 2), Z: f.At(2, 2)}
}
