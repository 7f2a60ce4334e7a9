// Package trajectory generates Cartesian paths in the manipulator workspace
// and resolves them to joint-space waypoints with per-point inverse
// kinematics.
package trajectory

import (
	"context"
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/sevendof/pandakin/kinematics"
)

// Defaults for the letter path: drawn on the YZ plane, centered in front of
// the arm, sized to stay inside the dexterous region.
const (
	defaultScale            = 0.25
	defaultPointsPerSegment = 40
	perPointIKIterations    = 50
)

var defaultCenter = r3.Vector{X: 0.5, Y: 0.0, Z: 0.4}

// Options tune the generated letter path.
type Options struct {
	Scale            float64
	Center           r3.Vector
	PointsPerSegment int
}

// Point is one waypoint of a resolved trajectory.
type Point struct {
	Angles   []float64
	Position r3.Vector
	Success  bool
}

// Result is a resolved trajectory plus its solve statistics.
type Result struct {
	Points           []Point
	TotalPoints      int
	SuccessfulPoints int
}

// GenerateLetterB builds a dense path tracing the letter 'B' (a vertical
// stroke plus two semicircular bowls) and solves inverse kinematics for each
// point, warm-starting every solve from the last successful solution so
// consecutive waypoints stay on the same IK branch.
func GenerateLetterB(ctx context.Context, model *kinematics.Model, opts Options, logger golog.Logger) (*Result, error) {
	if opts.Scale <= 0 {
		opts.Scale = defaultScale
	}
	// A single point per segment would make the interpolation divisors zero.
	if opts.PointsPerSegment < 2 {
		opts.PointsPerSegment = defaultPointsPerSegment
	}
	if opts.Center == (r3.Vector{}) {
		opts.Center = defaultCenter
	}

	path := letterBPath(opts)
	ik := kinematics.CreateJacobianIKSolver(model, logger, perPointIKIterations)

	points := make([]Point, 0, len(path))
	seed := model.Home()
	successful := 0
	for _, target := range path {
		res, err := ik.Solve(ctx, target, nil, seed)
		if err != nil {
			return nil, errors.Wrap(err, "trajectory ik")
		}
		if res.Success {
			seed = res.Angles
			successful++
		}
		points = append(points, Point{
			Angles:   res.Angles,
			Position: target,
			Success:  res.Success,
		})
	}

	logger.Infow("trajectory resolved", "points", len(path), "successful", successful)
	return &Result{Points: points, TotalPoints: len(path), SuccessfulPoints: successful}, nil
}

// letterBPath lays out the stroke waypoints: top-to-bottom line, then the
// lower and upper bowls as half circles bulging toward +y.
func letterBPath(opts Options) []r3.Vector {
	n := opts.PointsPerSegment
	c := opts.Center
	top := r3.Vector{X: c.X, Y: c.Y, Z: c.Z + opts.Scale/2}
	bottom := r3.Vector{X: c.X, Y: c.Y, Z: c.Z - opts.Scale/2}
	radius := opts.Scale / 4

	path := make([]r3.Vector, 0, 3*n)
	for i := 0; i < n; i++ {
		f := float64(i) / float64(n-1)
		path = append(path, r3.Vector{
			X: c.X,
			Y: c.Y,
			Z: top.Z + f*(bottom.Z-top.Z),
		})
	}
	path = append(path, arcPoints(c.X, midpoint(bottom, c), radius, n)...)
	path = append(path, arcPoints(c.X, midpoint(c, top), radius, n)...)
	return path
}

func arcPoints(x float64, center r3.Vector, radius float64, n int) []r3.Vector {
	pts := make([]r3.Vector, 0, n)
	for i := 0; i < n; i++ {
		theta := -math.Pi/2 + math.Pi*float64(i)/float64(n-1)
		pts = append(pts, r3.Vector{
			X: x,
			Y: center.Y + radius*math.Cos(theta),
			Z: center.Z + radius*math.Sin(theta),
		})
	}
	return pts
}

func midpoint(a, b r3.Vector) r3.Vector {
	return a.Add(b).Mul(0.5)
}
