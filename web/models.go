package web

import (
	"github.com/golang/geo/r3"

	"github.com/sevendof/pandakin/kinematics"
)

// Request/response bodies for the JSON API. Expected failure modes
// (out-of-bounds, non-convergence) are flags inside 200 responses; only
// input-shape violations produce error responses.

type jointAnglesRequest struct {
	Angles []float64 `json:"angles"`
}

type poseResponse struct {
	Position             []float64   `json:"position"`
	Orientation          []float64   `json:"orientation"`
	TransformationMatrix [][]float64 `json:"transformation_matrix"`
	OutOfBounds          bool        `json:"out_of_bounds"`
}

type ikRequest struct {
	Position    []float64 `json:"position"`
	Orientation []float64 `json:"orientation,omitempty"`
	Seed        []float64 `json:"seed,omitempty"`
}

type ikResponse struct {
	JointAngles []float64 `json:"joint_angles"`
	Success     bool      `json:"success"`
	OutOfBounds bool      `json:"out_of_bounds"`
	Iterations  int       `json:"iterations"`
	Error       *string   `json:"error"`
}

type jacobianResponse struct {
	Matrix         [][]float64 `json:"matrix"`
	Manipulability float64     `json:"manipulability"`
}

type singularityResponse struct {
	Singular  bool    `json:"singular"`
	Measure   float64 `json:"measure"`
	Threshold float64 `json:"threshold"`
}

type workspaceRequest struct {
	NumSamples int `json:"num_samples"`
}

type axisBoundsJSON struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type boundsJSON struct {
	X axisBoundsJSON `json:"x"`
	Y axisBoundsJSON `json:"y"`
	Z axisBoundsJSON `json:"z"`
}

type workspaceStatsJSON struct {
	MaxReach   float64 `json:"max_reach"`
	Volume     float64 `json:"volume"`
	PointCount int     `json:"point_count"`
}

type workspaceResponse struct {
	PointCloud  [][]float64        `json:"point_cloud"`
	Bounds      boundsJSON         `json:"bounds"`
	SampleCount int                `json:"sample_count"`
	Stats       workspaceStatsJSON `json:"stats"`
}

type workspaceBoundsResponse struct {
	Bounds      boundsJSON `json:"bounds"`
	NumSamples  int        `json:"num_samples"`
	SampleCount int        `json:"sample_count"`
}

type trajectoryPointJSON struct {
	JointAngles []float64 `json:"joint_angles"`
	Position    []float64 `json:"position"`
	Success     bool      `json:"success"`
}

type trajectoryResponse struct {
	Trajectory       []trajectoryPointJSON `json:"trajectory"`
	TotalPoints      int                   `json:"total_points"`
	SuccessfulPoints int                   `json:"successful_points"`
}

type stateResponse struct {
	JointAngles []float64 `json:"joint_angles"`
	Position    []float64 `json:"position"`
	Orientation []float64 `json:"orientation"`
	OutOfBounds bool      `json:"out_of_bounds"`
	HistoryLen  int       `json:"history_length"`
}

type eventRequest struct {
	Event string `json:"event"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func vectorJSON(v r3.Vector) []float64 {
	return []float64{v.X, v.Y, v.Z}
}

func boundsToJSON(b kinematics.Bounds) boundsJSON {
	return boundsJSON{
		X: axisBoundsJSON{Min: b.X.Min, Max: b.X.Max},
		Y: axisBoundsJSON{Min: b.Y.Min, Max: b.Y.Max},
		Z: axisBoundsJSON{Min: b.Z.Min, Max: b.Z.Max},
	}
}
