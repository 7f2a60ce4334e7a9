package kinematics

import (
	"context"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestIKReachableTarget(t *testing.T) {
	logger := golog.NewTestLogger(t)
	m := NewPandaModel()
	ik := CreateJacobianIKSolver(m, logger, 0)

	target := r3.Vector{X: 0.4, Y: 0.2, Z: 0.3}
	res, err := ik.Solve(context.Background(), target, nil, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Success, test.ShouldBeTrue)
	test.That(t, len(res.Angles), test.ShouldEqual, NumJoints)
	test.That(t, res.Reason, test.ShouldEqual, "")

	pose, err := m.ForwardKinematics(res.Angles)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.Point().Sub(target).Norm(), test.ShouldBeLessThan, 1e-3)
}

func TestIKRoundTrip(t *testing.T) {
	logger := golog.NewTestLogger(t)
	m := NewPandaModel()
	ik := CreateJacobianIKSolver(m, logger, 0)

	// A non-singular configuration near home; the solver seeds from home and
	// must reproduce the position (not necessarily the same angles, since a
	// redundant arm admits many solutions).
	angles := m.Home()
	deltas := []float64{0.1, -0.05, 0.08, 0.1, -0.1, 0.05, 0.1}
	for i := range angles {
		angles[i] += deltas[i]
	}
	want, err := m.ForwardKinematics(angles)
	test.That(t, err, test.ShouldBeNil)

	res, err := ik.Solve(context.Background(), want.Point(), nil, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Success, test.ShouldBeTrue)

	got, err := m.ForwardKinematics(res.Angles)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.Point().Sub(want.Point()).Norm(), test.ShouldBeLessThan, 1e-3)
}

func TestIKWithOrientationGoal(t *testing.T) {
	logger := golog.NewTestLogger(t)
	m := NewPandaModel()
	ik := CreateJacobianIKSolver(m, logger, 0)

	angles := m.Home()
	deltas := []float64{0.1, -0.05, 0.08, 0.1, -0.1, 0.05, 0.1}
	for i := range angles {
		angles[i] += deltas[i]
	}
	want, err := m.ForwardKinematics(angles)
	test.That(t, err, test.ShouldBeNil)

	orientation := want.Orientation()
	res, err := ik.Solve(context.Background(), want.Point(), &orientation, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Success, test.ShouldBeTrue)

	got, err := m.ForwardKinematics(res.Angles)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.Point().Sub(want.Point()).Norm(), test.ShouldBeLessThan, 2e-3)
}

func TestIKUnreachableTarget(t *testing.T) {
	logger := golog.NewTestLogger(t)
	m := NewPandaModel()
	ik := CreateJacobianIKSolver(m, logger, 50)

	res, err := ik.Solve(context.Background(), r3.Vector{X: 2, Y: 0, Z: 2}, nil, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Success, test.ShouldBeFalse)
	test.That(t, res.Iterations, test.ShouldEqual, 50)
	test.That(t, res.Reason, test.ShouldContainSubstring, "no convergence")
	// Best-seen configuration is still a full, finite configuration.
	test.That(t, len(res.Angles), test.ShouldEqual, NumJoints)
}

func TestIKBadSeedArity(t *testing.T) {
	logger := golog.NewTestLogger(t)
	m := NewPandaModel()
	ik := CreateJacobianIKSolver(m, logger, 0)

	_, err := ik.Solve(context.Background(), r3.Vector{X: 0.3}, nil, []float64{0, 0})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestIKCancellation(t *testing.T) {
	logger := golog.NewTestLogger(t)
	m := NewPandaModel()
	ik := CreateJacobianIKSolver(m, logger, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ik.Solve(ctx, r3.Vector{X: 0.4, Y: 0.2, Z: 0.3}, nil, nil)
	test.That(t, err, test.ShouldBeError, context.Canceled)
}
