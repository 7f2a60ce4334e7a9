package kinematics

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultSingularityThreshold is the manipulability below which a
// configuration is considered singular. Near-zero manipulability means at
// least one Cartesian direction cannot be instantaneously actuated.
const DefaultSingularityThreshold = 1e-3

// SingularityCheck is the result of scoring a Jacobian for rank deficiency.
type SingularityCheck struct {
	Singular  bool
	Measure   float64
	Threshold float64
}

// Manipulability returns sqrt(det(J*J^T)), the product of the Jacobian's
// singular values. It drops to zero as the configuration loses rank.
func Manipulability(j *mat.Dense) float64 {
	var jjt mat.Dense
	jjt.Mul(j, j.T())
	d := mat.Det(&jjt)
	if d < 0 {
		// det of a Gram matrix is non-negative; clip floating noise.
		d = 0
	}
	return math.Sqrt(d)
}

// CheckSingularity scores a Jacobian against DefaultSingularityThreshold.
func CheckSingularity(j *mat.Dense) SingularityCheck {
	measure := Manipulability(j)
	return SingularityCheck{
		Singular:  measure < DefaultSingularityThreshold,
		Measure:   measure,
		Threshold: DefaultSingularityThreshold,
	}
}

// CheckSingularity evaluates the Jacobian at a configuration and scores it.
func (m *Model) CheckSingularity(angles []float64) (SingularityCheck, error) {
	j, err := m.Jacobian(angles)
	if err != nil {
		return SingularityCheck{}, err
	}
	return CheckSingularity(j), nil
}
