package kinematics

import (
	"context"
	"math"
	"math/rand"
	"runtime"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// defaultPointCloudCap bounds the subsample of raw positions retained for
// visualization; bounds are tracked over every sample regardless.
const defaultPointCloudCap = 4096

// AxisBounds is the observed min/max along one axis.
type AxisBounds struct {
	Min float64
	Max float64
}

// Bounds is the axis-aligned envelope of sampled end-effector positions.
type Bounds struct {
	X AxisBounds
	Y AxisBounds
	Z AxisBounds
}

func newBounds() Bounds {
	inf := math.Inf(1)
	return Bounds{
		X: AxisBounds{Min: inf, Max: -inf},
		Y: AxisBounds{Min: inf, Max: -inf},
		Z: AxisBounds{Min: inf, Max: -inf},
	}
}

// Extend grows the bounds to include a point.
func (b Bounds) Extend(p r3.Vector) Bounds {
	b.X = b.X.extend(p.X)
	b.Y = b.Y.extend(p.Y)
	b.Z = b.Z.extend(p.Z)
	return b
}

// Union merges two bounds element-wise. The operation is associative and
// commutative, so partials can be reduced in any order.
func (b Bounds) Union(o Bounds) Bounds {
	b.X = b.X.union(o.X)
	b.Y = b.Y.union(o.Y)
	b.Z = b.Z.union(o.Z)
	return b
}

// Contains reports whether a point lies inside the envelope.
func (b Bounds) Contains(p r3.Vector) bool {
	return p.X >= b.X.Min && p.X <= b.X.Max &&
		p.Y >= b.Y.Min && p.Y <= b.Y.Max &&
		p.Z >= b.Z.Min && p.Z <= b.Z.Max
}

func (a AxisBounds) extend(v float64) AxisBounds {
	return AxisBounds{Min: math.Min(a.Min, v), Max: math.Max(a.Max, v)}
}

func (a AxisBounds) union(o AxisBounds) AxisBounds {
	return AxisBounds{Min: math.Min(a.Min, o.Min), Max: math.Max(a.Max, o.Max)}
}

// WorkspaceStats summarizes a sampled workspace for reporting.
type WorkspaceStats struct {
	MaxReach   float64
	Volume     float64
	PointCount int
}

// WorkspaceResult aggregates a Monte Carlo workspace run: a bounded point
// cloud for visualization, per-axis bounds over every sample, and the total
// accepted sample count. Every in-range sample is accepted, so SampleCount
// always equals the requested sample count; the field exists so future
// rejection policies do not break the contract.
type WorkspaceResult struct {
	Points      []r3.Vector
	Bounds      Bounds
	SampleCount int
	Stats       WorkspaceStats
}

// workspacePartial is one worker's share of a run. Merging partials is
// associative and commutative (up to point order), so the partitioning
// strategy is free to vary without changing results.
type workspacePartial struct {
	bounds Bounds
	points []r3.Vector
	count  int
}

func (p *workspacePartial) merge(o *workspacePartial) {
	p.bounds = p.bounds.Union(o.bounds)
	p.points = append(p.points, o.points...)
	p.count += o.count
}

// CalculateWorkspace approximates the reachable workspace by drawing
// numSamples configurations uniformly from the joint-limit box and running
// forward kinematics on each. Samples are partitioned across workers since
// each evaluation is independent.
func CalculateWorkspace(ctx context.Context, model *Model, numSamples int, logger golog.Logger) (*WorkspaceResult, error) {
	return calculateWorkspace(ctx, model, numSamples, rand.Int63(), runtime.GOMAXPROCS(0), logger)
}

func calculateWorkspace(ctx context.Context, model *Model, numSamples int, seed int64, workers int, logger golog.Logger) (*WorkspaceResult, error) {
	if numSamples < 1 {
		return nil, errors.Errorf("num samples must be positive, got %d", numSamples)
	}
	if workers < 1 {
		workers = 1
	}
	if workers > numSamples {
		workers = numSamples
	}
	// Ceiling division keeps the retained subsample within the cap while
	// staying evenly spread across the whole sample range.
	stride := (numSamples + defaultPointCloudCap - 1) / defaultPointCloudCap

	partials := make([]*workspacePartial, workers)
	group, gCtx := errgroup.WithContext(ctx)
	base := numSamples / workers
	extra := numSamples % workers
	offset := 0
	for w := 0; w < workers; w++ {
		n := base
		if w < extra {
			n++
		}
		w, n, offset := w, n, offset
		group.Go(func() error {
			rnd := rand.New(rand.NewSource(seed + int64(w))) //nolint:gosec
			part := &workspacePartial{bounds: newBounds()}
			for i := 0; i < n; i++ {
				if i%1024 == 0 {
					if err := gCtx.Err(); err != nil {
						return err
					}
				}
				angles := model.RandomJointPositions(rnd)
				t, err := model.endEffectorTransform(angles)
				if err != nil {
					return err
				}
				pos := originOf(t)
				part.bounds = part.bounds.Extend(pos)
				part.count++
				if (offset+i)%stride == 0 {
					part.points = append(part.points, pos)
				}
			}
			partials[w] = part
			return nil
		})
		offset += n
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	merged := &workspacePartial{bounds: newBounds()}
	for _, part := range partials {
		merged.merge(part)
	}
	if len(merged.points) > defaultPointCloudCap {
		merged.points = merged.points[:defaultPointCloudCap]
	}
	logger.Debugw("workspace sampled", "samples", merged.count, "cloud", len(merged.points))

	return &WorkspaceResult{
		Points:      merged.points,
		Bounds:      merged.bounds,
		SampleCount: merged.count,
		Stats: WorkspaceStats{
			MaxReach:   model.MaxReach(),
			Volume:     boundsVolume(merged.bounds),
			PointCount: len(merged.points),
		},
	}, nil
}

// boundsVolume is the axis-aligned bounding-box volume, a coarse estimate of
// the workspace size.
func boundsVolume(b Bounds) float64 {
	dx := b.X.Max - b.X.Min
	dy := b.Y.Max - b.Y.Min
	dz := b.Z.Max - b.Z.Min
	if dx < 0 || dy < 0 || dz < 0 {
		return 0
	}
	return dx * dy * dz
}
