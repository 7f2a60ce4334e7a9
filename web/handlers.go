package web

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/sevendof/pandakin/achievements"
	"github.com/sevendof/pandakin/kinematics"
	"github.com/sevendof/pandakin/trajectory"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("%s kinematics service", s.model.Name()),
		"endpoints": map[string]string{
			"forward_kinematics": "/kinematics/forward",
			"inverse_kinematics": "/kinematics/inverse",
			"jacobian":           "/kinematics/jacobian",
			"singularity":        "/kinematics/singularity",
			"workspace":          "/workspace/calculate",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// decodeAngles enforces the 7-angle contract shared by several endpoints.
func (s *Server) decodeAngles(w http.ResponseWriter, r *http.Request) ([]float64, bool) {
	var req jointAnglesRequest
	if !s.decode(w, r, &req) {
		return nil, false
	}
	if len(req.Angles) != s.model.DoF() {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("expected %d joint angles, got %d", s.model.DoF(), len(req.Angles)))
		return nil, false
	}
	return req.Angles, true
}

func (s *Server) handleForward(w http.ResponseWriter, r *http.Request) {
	angles, ok := s.decodeAngles(w, r)
	if !ok {
		return
	}
	pose, err := s.model.ForwardKinematics(angles)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	outOfBounds := !s.model.WithinLimits(angles)
	if outOfBounds && s.achievements != nil {
		s.achievements.RecordFKOutOfBounds()
	}

	q := pose.Orientation()
	s.writeJSON(w, http.StatusOK, poseResponse{
		Position:             vectorJSON(pose.Point()),
		Orientation:          []float64{q.Real, q.Imag, q.Jmag, q.Kmag},
		TransformationMatrix: pose.Matrix(),
		OutOfBounds:          outOfBounds,
	})
}

func (s *Server) handleInverse(w http.ResponseWriter, r *http.Request) {
	var req ikRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Position) != 3 {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("position must have 3 components, got %d", len(req.Position)))
		return
	}
	var orientation *quat.Number
	if req.Orientation != nil {
		if len(req.Orientation) != 4 {
			s.writeError(w, http.StatusBadRequest,
				fmt.Sprintf("orientation must have 4 components [w,x,y,z], got %d", len(req.Orientation)))
			return
		}
		orientation = &quat.Number{
			Real: req.Orientation[0],
			Imag: req.Orientation[1],
			Jmag: req.Orientation[2],
			Kmag: req.Orientation[3],
		}
	}
	if req.Seed != nil && len(req.Seed) != s.model.DoF() {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("seed must have %d angles, got %d", s.model.DoF(), len(req.Seed)))
		return
	}

	target := r3.Vector{X: req.Position[0], Y: req.Position[1], Z: req.Position[2]}
	res, err := s.ik.Solve(r.Context(), target, orientation, req.Seed)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if res.OutOfBounds && s.achievements != nil {
		s.achievements.RecordIKOutOfBounds()
	}

	var reason *string
	if res.Reason != "" {
		reason = &res.Reason
	}
	s.writeJSON(w, http.StatusOK, ikResponse{
		JointAngles: res.Angles,
		Success:     res.Success,
		OutOfBounds: res.OutOfBounds,
		Iterations:  res.Iterations,
		Error:       reason,
	})
}

func (s *Server) handleJacobian(w http.ResponseWriter, r *http.Request) {
	angles, ok := s.decodeAngles(w, r)
	if !ok {
		return
	}
	j, err := s.model.Jacobian(angles)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, cols := j.Dims()
	matrix := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		matrix[i] = make([]float64, cols)
		for k := 0; k < cols; k++ {
			matrix[i][k] = j.At(i, k)
		}
	}
	s.writeJSON(w, http.StatusOK, jacobianResponse{
		Matrix:         matrix,
		Manipulability: kinematics.Manipulability(j),
	})
}

func (s *Server) handleSingularity(w http.ResponseWriter, r *http.Request) {
	angles, ok := s.decodeAngles(w, r)
	if !ok {
		return
	}
	chk, err := s.model.CheckSingularity(angles)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if chk.Singular && s.achievements != nil {
		s.achievements.RecordSingularityEncounter()
	}
	s.writeJSON(w, http.StatusOK, singularityResponse{
		Singular:  chk.Singular,
		Measure:   chk.Measure,
		Threshold: chk.Threshold,
	})
}

func (s *Server) validSampleCount(w http.ResponseWriter, n int) bool {
	if n < minWorkspaceSamples || n > maxWorkspaceSamples {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("num_samples must be between %d and %d, got %d",
				minWorkspaceSamples, maxWorkspaceSamples, n))
		return false
	}
	return true
}

func (s *Server) handleWorkspaceCalculate(w http.ResponseWriter, r *http.Request) {
	req := workspaceRequest{NumSamples: 10000}
	if !s.decode(w, r, &req) {
		return
	}
	if !s.validSampleCount(w, req.NumSamples) {
		return
	}
	res, err := kinematics.CalculateWorkspace(r.Context(), s.model, req.NumSamples, s.logger)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if s.achievements != nil {
		s.achievements.RecordWorkspaceCalculation()
	}

	cloud := make([][]float64, 0, len(res.Points))
	for _, p := range res.Points {
		cloud = append(cloud, vectorJSON(p))
	}
	s.writeJSON(w, http.StatusOK, workspaceResponse{
		PointCloud:  cloud,
		Bounds:      boundsToJSON(res.Bounds),
		SampleCount: res.SampleCount,
		Stats: workspaceStatsJSON{
			MaxReach:   res.Stats.MaxReach,
			Volume:     res.Stats.Volume,
			PointCount: res.Stats.PointCount,
		},
	})
}

func (s *Server) handleWorkspaceBounds(w http.ResponseWriter, r *http.Request) {
	numSamples := 10000
	if raw := r.URL.Query().Get("num_samples"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "num_samples must be an integer")
			return
		}
		numSamples = parsed
	}
	if !s.validSampleCount(w, numSamples) {
		return
	}
	res, err := kinematics.CalculateWorkspace(r.Context(), s.model, numSamples, s.logger)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, workspaceBoundsResponse{
		Bounds:      boundsToJSON(res.Bounds),
		NumSamples:  numSamples,
		SampleCount: res.SampleCount,
	})
}

func (s *Server) handleRobotInfo(w http.ResponseWriter, r *http.Request) {
	limits := make([][]float64, 0, s.model.DoF())
	for _, l := range s.model.Limits() {
		limits = append(limits, []float64{l.Min, l.Max})
	}
	dh := make([][]float64, 0, s.model.DoF())
	for _, p := range s.model.DH() {
		dh = append(dh, []float64{p.A, p.Alpha, p.D})
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":          s.model.Name(),
		"dof":           s.model.DoF(),
		"joint_names":   s.model.JointNames(),
		"joint_limits":  limits,
		"dh_parameters": dh,
		"max_reach":     s.model.MaxReach(),
	})
}

func (s *Server) handleHomePosition(w http.ResponseWriter, r *http.Request) {
	home := s.model.Home()
	pose, err := s.model.ForwardKinematics(home)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	q := pose.Orientation()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"joint_angles": home,
		"end_effector_pose": map[string]interface{}{
			"position":    vectorJSON(pose.Point()),
			"orientation": []float64{q.Real, q.Imag, q.Jmag, q.Kmag},
		},
	})
}

// stateBody renders a recorded configuration together with its pose.
func (s *Server) stateBody(w http.ResponseWriter, angles []float64) {
	pose, err := s.model.ForwardKinematics(angles)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	q := pose.Orientation()
	s.writeJSON(w, http.StatusOK, stateResponse{
		JointAngles: angles,
		Position:    vectorJSON(pose.Point()),
		Orientation: []float64{q.Real, q.Imag, q.Jmag, q.Kmag},
		OutOfBounds: !s.model.WithinLimits(angles),
		HistoryLen:  s.history.Len(),
	})
}

func (s *Server) handleRobotState(w http.ResponseWriter, r *http.Request) {
	angles, ok := s.history.Current()
	if !ok {
		s.writeError(w, http.StatusNotFound, "no configuration recorded")
		return
	}
	s.stateBody(w, angles)
}

func (s *Server) handleRobotStateSet(w http.ResponseWriter, r *http.Request) {
	angles, ok := s.decodeAngles(w, r)
	if !ok {
		return
	}
	s.history.Append(angles)
	if s.achievements != nil {
		s.achievements.RecordMovement()
		if anglesEqual(angles, s.model.Home()) {
			s.achievements.RecordHomeReturn()
		}
	}
	s.stateBody(w, angles)
}

func (s *Server) handleRobotStateUndo(w http.ResponseWriter, r *http.Request) {
	angles, ok := s.history.Undo()
	if !ok {
		s.writeError(w, http.StatusNotFound, "nothing to undo")
		return
	}
	s.stateBody(w, angles)
}

func (s *Server) handleRobotStateRedo(w http.ResponseWriter, r *http.Request) {
	angles, ok := s.history.Redo()
	if !ok {
		s.writeError(w, http.StatusNotFound, "nothing to redo")
		return
	}
	s.stateBody(w, angles)
}

func anglesEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func (s *Server) handleDrawB(w http.ResponseWriter, r *http.Request) {
	res, err := trajectory.GenerateLetterB(r.Context(), s.model, trajectory.Options{}, s.logger)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if s.achievements != nil {
		s.achievements.RecordPathExecution()
	}

	points := make([]trajectoryPointJSON, 0, len(res.Points))
	for _, p := range res.Points {
		points = append(points, trajectoryPointJSON{
			JointAngles: p.Angles,
			Position:    vectorJSON(p.Position),
			Success:     p.Success,
		})
	}
	s.writeJSON(w, http.StatusOK, trajectoryResponse{
		Trajectory:       points,
		TotalPoints:      res.TotalPoints,
		SuccessfulPoints: res.SuccessfulPoints,
	})
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	if s.achievements == nil {
		s.writeError(w, http.StatusNotFound, "achievements disabled")
		return
	}
	s.writeJSON(w, http.StatusOK, s.achievements.All())
}

func (s *Server) handleAchievementsUnlocked(w http.ResponseWriter, r *http.Request) {
	if s.achievements == nil {
		s.writeError(w, http.StatusNotFound, "achievements disabled")
		return
	}
	s.writeJSON(w, http.StatusOK, s.achievements.Unlocked())
}

func (s *Server) handleAchievementsProgress(w http.ResponseWriter, r *http.Request) {
	if s.achievements == nil {
		s.writeError(w, http.StatusNotFound, "achievements disabled")
		return
	}
	s.writeJSON(w, http.StatusOK, s.achievements.Progress())
}

func (s *Server) handleAchievementEvent(w http.ResponseWriter, r *http.Request) {
	if s.achievements == nil {
		s.writeError(w, http.StatusNotFound, "achievements disabled")
		return
	}
	var req eventRequest
	if !s.decode(w, r, &req) {
		return
	}
	unlocked := s.achievements.RecordEvent(req.Event)
	if unlocked == nil {
		unlocked = []achievements.Achievement{}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"new_achievements": unlocked,
	})
}
