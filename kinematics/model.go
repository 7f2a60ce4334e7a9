// Package kinematics implements forward and inverse kinematics, the geometric
// Jacobian, singularity detection, and Monte Carlo workspace sampling for a
// fixed 7-DOF serial manipulator described by DH parameters.
package kinematics

import (
	"math/rand"

	"github.com/pkg/errors"
)

// NumJoints is the number of revolute joints in the supported manipulator.
const NumJoints = 7

// DHParam holds the fixed DH parameters of one revolute joint in the modified
// convention: A is the link length, Alpha the link twist, D the link offset.
// The joint variable theta is supplied per call.
type DHParam struct {
	A     float64
	Alpha float64
	D     float64
}

// Limit is the allowed angle range of one joint, in radians.
type Limit struct {
	Min float64
	Max float64
}

// Model is an immutable description of a serial manipulator: its DH table,
// joint limits, canonical home configuration, display names, and maximum
// reach. A Model is constructed once and is safe for concurrent use; all
// solvers take it as read-only input and keep no state of their own.
type Model struct {
	name       string
	dh         []DHParam
	limits     []Limit
	home       []float64
	jointNames []string
	maxReach   float64
}

// NewModel builds a Model after validating that all per-joint tables agree on
// the joint count.
func NewModel(name string, dh []DHParam, limits []Limit, home []float64, jointNames []string, maxReach float64) (*Model, error) {
	n := len(dh)
	if n == 0 {
		return nil, errors.New("model must have at least one joint")
	}
	if len(limits) != n || len(home) != n || len(jointNames) != n {
		return nil, errors.Errorf(
			"mismatched joint tables: %d dh params, %d limits, %d home angles, %d names",
			n, len(limits), len(home), len(jointNames))
	}
	for i, l := range limits {
		if l.Min > l.Max {
			return nil, errors.Errorf("joint %d has inverted limits [%f, %f]", i, l.Min, l.Max)
		}
	}
	return &Model{
		name:       name,
		dh:         append([]DHParam(nil), dh...),
		limits:     append([]Limit(nil), limits...),
		home:       append([]float64(nil), home...),
		jointNames: append([]string(nil), jointNames...),
		maxReach:   maxReach,
	}, nil
}

// NewPandaModel returns the model of a Franka Panda arm, with DH parameters
// and joint limits from the manufacturer datasheet.
func NewPandaModel() *Model {
	m, err := NewModel(
		"Franka Panda",
		[]DHParam{
			{0.0, 0.0, 0.333},
			{0.0, -halfPi, 0.0},
			{0.0, halfPi, 0.316},
			{0.0825, halfPi, 0.0},
			{-0.0825, -halfPi, 0.384},
			{0.0, halfPi, 0.0},
			{0.088, halfPi, 0.107},
		},
		[]Limit{
			{-2.8973, 2.8973},
			{-1.7628, 1.7628},
			{-2.8973, 2.8973},
			{-3.0718, -0.0698},
			{-2.8973, 2.8973},
			{-0.0175, 3.7525},
			{-2.8973, 2.8973},
		},
		[]float64{0.0, -0.785, 0.0, -2.356, 0.0, 1.571, 0.785},
		[]string{"joint1", "joint2", "joint3", "joint4", "joint5", "joint6", "joint7"},
		0.855,
	)
	if err != nil {
		panic(err) // unreachable, tables are constants
	}
	return m
}

// Name returns the human-readable model name.
func (m *Model) Name() string {
	return m.name
}

// DoF returns the number of joints.
func (m *Model) DoF() int {
	return len(m.dh)
}

// DH returns a copy of the DH parameter table.
func (m *Model) DH() []DHParam {
	return append([]DHParam(nil), m.dh...)
}

// Limits returns a copy of the joint limit table.
func (m *Model) Limits() []Limit {
	return append([]Limit(nil), m.limits...)
}

// Home returns a copy of the canonical home configuration.
func (m *Model) Home() []float64 {
	return append([]float64(nil), m.home...)
}

// JointNames returns a copy of the per-joint display names.
func (m *Model) JointNames() []string {
	return append([]string(nil), m.jointNames...)
}

// MaxReach returns the maximum reach from the base, in meters.
func (m *Model) MaxReach() float64 {
	return m.maxReach
}

// WithinLimits reports whether every angle lies inside its declared limit
// pair. Configurations outside the limits are still geometrically valid; this
// only drives the out-of-bounds flag on results.
func (m *Model) WithinLimits(angles []float64) bool {
	for i, a := range angles {
		if i >= len(m.limits) {
			break
		}
		if a < m.limits[i].Min || a > m.limits[i].Max {
			return false
		}
	}
	return true
}

// RandomJointPositions draws one configuration uniformly from the joint-limit
// box using the provided source.
func (m *Model) RandomJointPositions(rnd *rand.Rand) []float64 {
	angles := make([]float64, len(m.limits))
	for i, l := range m.limits {
		angles[i] = l.Min + rnd.Float64()*(l.Max-l.Min)
	}
	return angles
}

// validateAngles enforces the caller contract that a configuration has
// exactly one angle per joint.
func (m *Model) validateAngles(angles []float64) error {
	if len(angles) != m.DoF() {
		return errors.Errorf("expected %d joint angles, got %d", m.DoF(), len(angles))
	}
	return nil
}
