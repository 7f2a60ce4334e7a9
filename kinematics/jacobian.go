package kinematics

import (
	"gonum.org/v1/gonum/mat"
)

// Jacobian computes the 6xN geometric Jacobian at a configuration. Rows 0-2
// map joint velocities to linear end-effector velocity, rows 3-5 to angular
// velocity; columns follow joint order. For revolute joint i the column is
// [z_i x (o_end - o_i); z_i], with z_i and o_i read from the accumulated
// transform chain.
func (m *Model) Jacobian(angles []float64) (*mat.Dense, error) {
	frames, err := m.Transforms(angles)
	if err != nil {
		return nil, err
	}
	oEnd := originOf(frames[len(frames)-1])

	j := mat.NewDense(6, m.DoF(), nil)
	for i := 0; i < m.DoF(); i++ {
		f := frames[i+1]
		z := zAxisOf(f)
		o := originOf(f)
		lin := z.Cross(oEnd.Sub(o))
		j.Set(0, i, lin.X)
		j.Set(1, i, lin.Y)
		j.Set(2, i, lin.Z)
		j.Set(3, i, z.X)
		j.Set(4, i, z.Y)
		j.Set(5, i, z.Z)
	}
	return j, nil
}
