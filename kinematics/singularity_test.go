package kinematics

import (
	"testing"

	"go.viam.com/test"
)

func TestSingularityAtDegeneratePostures(t *testing.T) {
	m := NewPandaModel()

	// All-zero angles align several joint axes; manipulability collapses.
	chk, err := m.CheckSingularity(make([]float64, NumJoints))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, chk.Singular, test.ShouldBeTrue)
	test.That(t, chk.Measure, test.ShouldBeLessThan, DefaultSingularityThreshold)

	// Elbow as straight as the joint-4 limit allows: nearly extended arm.
	extended := []float64{0, 0, 0, -0.0698, 0, 0, 0}
	chk, err = m.CheckSingularity(extended)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, chk.Singular, test.ShouldBeTrue)
}

func TestNoSingularityAtHome(t *testing.T) {
	m := NewPandaModel()
	chk, err := m.CheckSingularity(m.Home())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, chk.Singular, test.ShouldBeFalse)
	// Pinned from the DH table; a generic mid-range posture is well away
	// from the threshold.
	test.That(t, chk.Measure, test.ShouldAlmostEqual, 0.0801653, 1e-4)
	test.That(t, chk.Threshold, test.ShouldEqual, DefaultSingularityThreshold)
}

func TestManipulabilityNonNegative(t *testing.T) {
	m := NewPandaModel()
	j, err := m.Jacobian(make([]float64, NumJoints))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, Manipulability(j), test.ShouldBeGreaterThanOrEqualTo, 0)
}
