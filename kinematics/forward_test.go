package kinematics

import (
	"math"
	"math/rand"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"

	"github.com/sevendof/pandakin/spatialmath"
)

func TestForwardKinematicsHome(t *testing.T) {
	m := NewPandaModel()
	pose, err := m.ForwardKinematics(m.Home())
	test.That(t, err, test.ShouldBeNil)

	pos := pose.Point()
	test.That(t, pos.X, test.ShouldAlmostEqual, 0.30701957, 1e-6)
	test.That(t, pos.Y, test.ShouldAlmostEqual, 0.0, 1e-6)
	test.That(t, pos.Z, test.ShouldAlmostEqual, 0.59026956, 1e-6)

	want := quat.Number{Real: 0, Imag: 0.9239557, Jmag: -0.3824995, Kmag: 0}
	test.That(t, spatialmath.QuaternionAlmostEqual(pose.Orientation(), want, 1e-5), test.ShouldBeTrue)
}

func TestForwardKinematicsDeterministic(t *testing.T) {
	m := NewPandaModel()
	rnd := rand.New(rand.NewSource(3))
	angles := m.RandomJointPositions(rnd)

	p1, err := m.ForwardKinematics(angles)
	test.That(t, err, test.ShouldBeNil)
	p2, err := m.ForwardKinematics(angles)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, p1.Point().X, test.ShouldEqual, p2.Point().X)
	test.That(t, p1.Point().Y, test.ShouldEqual, p2.Point().Y)
	test.That(t, p1.Point().Z, test.ShouldEqual, p2.Point().Z)
	test.That(t, quat.Abs(p1.Orientation()), test.ShouldAlmostEqual, 1, 1e-9)
}

func TestTransformProperties(t *testing.T) {
	m := NewPandaModel()
	pose, err := m.ForwardKinematics(m.Home())
	test.That(t, err, test.ShouldBeNil)

	mat := pose.Transform()
	// Bottom row of a homogeneous transform.
	test.That(t, mat.At(3, 0), test.ShouldAlmostEqual, 0)
	test.That(t, mat.At(3, 1), test.ShouldAlmostEqual, 0)
	test.That(t, mat.At(3, 2), test.ShouldAlmostEqual, 0)
	test.That(t, mat.At(3, 3), test.ShouldAlmostEqual, 1)

	// Rotation block orthonormality: R * R^T == I.
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			var dot float64
			for k := 0; k < 3; k++ {
				dot += mat.At(r, k) * mat.At(c, k)
			}
			want := 0.0
			if r == c {
				want = 1.0
			}
			test.That(t, dot, test.ShouldAlmostEqual, want, 1e-9)
		}
	}
}

func TestTransformsChain(t *testing.T) {
	m := NewPandaModel()
	frames, err := m.Transforms(m.Home())
	test.That(t, err, test.ShouldBeNil)
	// Base frame plus one frame per joint.
	test.That(t, len(frames), test.ShouldEqual, m.DoF()+1)
	base := originOf(frames[0])
	test.That(t, base.Norm(), test.ShouldAlmostEqual, 0)
	// First joint frame sits at the first link offset along z.
	test.That(t, originOf(frames[1]).Z, test.ShouldAlmostEqual, 0.333)
}

func TestForwardKinematicsArity(t *testing.T) {
	m := NewPandaModel()
	_, err := m.ForwardKinematics([]float64{0, 0, 0})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = m.Transforms(make([]float64, 8))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestOutOfBoundsFlagging(t *testing.T) {
	m := NewPandaModel()
	test.That(t, m.WithinLimits(m.Home()), test.ShouldBeTrue)

	outside := m.Home()
	outside[0] = 3.5 // beyond +-2.8973
	test.That(t, m.WithinLimits(outside), test.ShouldBeFalse)

	// Forward kinematics is still defined outside the limits.
	pose, err := m.ForwardKinematics(outside)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, math.IsNaN(pose.Point().X), test.ShouldBeFalse)
}
