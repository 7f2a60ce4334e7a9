package kinematics

import (
	"context"
	"fmt"
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"github.com/sevendof/pandakin/spatialmath"
)

const (
	defaultEpsilon       = 1e-3
	defaultMaxIterations = 200
	// Base damping for the least-squares update and the heavier damping
	// applied when manipulability falls below the singularity threshold.
	defaultDamping  = 0.05
	singularDamping = 0.2
	// Largest per-joint change allowed in one iteration, in radians.
	defaultMaxStep = 0.5
)

// IKResult is the outcome of one inverse-kinematics solve. Success and
// OutOfBounds are independent axes: a solve can converge to a configuration
// that violates joint limits, which is reported rather than rejected.
type IKResult struct {
	Angles      []float64
	Success     bool
	OutOfBounds bool
	Iterations  int
	Reason      string
}

// JacobianIK iteratively drives a seed configuration toward a target pose
// using damped-least-squares Jacobian updates. The solver is stateless across
// calls and safe for concurrent use.
type JacobianIK struct {
	model         *Model
	epsilon       float64
	maxIterations int
	logger        golog.Logger
}

// CreateJacobianIKSolver returns a solver for the given model. If the
// iteration count is less than 1 the default of 200 is used.
func CreateJacobianIKSolver(model *Model, logger golog.Logger, iter int) *JacobianIK {
	if iter < 1 {
		iter = defaultMaxIterations
	}
	return &JacobianIK{
		model:         model,
		epsilon:       defaultEpsilon,
		maxIterations: iter,
		logger:        logger,
	}
}

// Solve searches for joint angles that place the end effector at the target
// position, and at the target orientation when one is given. A nil seed
// starts from the model's home configuration. Non-convergence and numerical
// degeneracy are reported in the result, never as an error; the returned
// error covers only contract violations (bad seed arity) and context
// cancellation.
func (ik *JacobianIK) Solve(ctx context.Context, target r3.Vector, orientation *quat.Number, seed []float64) (*IKResult, error) {
	if seed == nil {
		seed = ik.model.Home()
	}
	if err := ik.model.validateAngles(seed); err != nil {
		return nil, errors.Wrap(err, "ik seed")
	}

	q := append([]float64(nil), seed...)
	best := append([]float64(nil), q...)
	bestErr := math.Inf(1)

	for iter := 1; iter <= ik.maxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frames, err := ik.model.Transforms(q)
		if err != nil {
			return nil, err
		}
		end := frames[len(frames)-1]
		pos := originOf(end)

		errVec := []float64{target.X - pos.X, target.Y - pos.Y, target.Z - pos.Z}
		if orientation != nil {
			cur := spatialmath.Normalize(spatialmath.QuatFromRotationMatrix(end))
			d := spatialmath.OrientationDelta(cur, *orientation)
			errVec = append(errVec, d.X, d.Y, d.Z)
		}
		errNorm := vecNorm(errVec)

		if math.IsNaN(errNorm) || math.IsInf(errNorm, 0) {
			return ik.failure(best, iter, "numerical degeneracy while evaluating pose error"), nil
		}
		if errNorm < bestErr {
			bestErr = errNorm
			copy(best, q)
		}
		if errNorm < ik.epsilon {
			return &IKResult{
				Angles:      q,
				Success:     true,
				OutOfBounds: !ik.model.WithinLimits(q),
				Iterations:  iter,
			}, nil
		}

		j, err := ik.model.Jacobian(q)
		if err != nil {
			return nil, err
		}
		// Damp harder near singularities so the update does not blow up
		// along the near-degenerate direction.
		lambda := defaultDamping
		if Manipulability(j) < DefaultSingularityThreshold {
			lambda = singularDamping
		}
		if orientation == nil {
			j = j.Slice(0, 3, 0, ik.model.DoF()).(*mat.Dense)
		}

		dq, ok := dampedStep(j, errVec, lambda)
		if !ok {
			return ik.failure(best, iter, "numerical degeneracy in jacobian update"), nil
		}
		for i := range q {
			q[i] += clamp(dq[i], defaultMaxStep)
		}
	}

	ik.logger.Debugw("ik did not converge", "iterations", ik.maxIterations, "residual", bestErr)
	return ik.failure(best, ik.maxIterations,
		fmt.Sprintf("no convergence within %d iterations", ik.maxIterations)), nil
}

// failure packages the best configuration seen so a near-miss is still
// informative to the caller.
func (ik *JacobianIK) failure(best []float64, iterations int, reason string) *IKResult {
	return &IKResult{
		Angles:      append([]float64(nil), best...),
		Success:     false,
		OutOfBounds: !ik.model.WithinLimits(best),
		Iterations:  iterations,
		Reason:      reason,
	}
}

// dampedStep computes the Levenberg-Marquardt style update
// dq = J^T (J J^T + lambda^2 I)^-1 e. The second return is false when the
// update contains NaN or Inf or the system cannot be solved.
func dampedStep(j *mat.Dense, errVec []float64, lambda float64) ([]float64, bool) {
	rows, cols := j.Dims()

	var jjt mat.Dense
	jjt.Mul(j, j.T())
	for i := 0; i < rows; i++ {
		jjt.Set(i, i, jjt.At(i, i)+lambda*lambda)
	}

	var y mat.VecDense
	if err := y.SolveVec(&jjt, mat.NewVecDense(rows, errVec)); err != nil {
		return nil, false
	}
	var step mat.VecDense
	step.MulVec(j.T(), &y)

	dq := make([]float64, cols)
	for i := range dq {
		v := step.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		dq[i] = v
	}
	return dq, true
}

func vecNorm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func clamp(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
