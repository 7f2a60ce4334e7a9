// Package web exposes the kinematics engine over HTTP as JSON. The engine
// itself is transport-agnostic; this package is the deployment glue that
// validates request shape, dispatches to the solvers, and renders results.
package web

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"
	"goji.io"
	"goji.io/pat"

	"github.com/sevendof/pandakin/achievements"
	"github.com/sevendof/pandakin/history"
	"github.com/sevendof/pandakin/kinematics"
)

// Sample-count window accepted over the transport; the engine takes any
// positive count, but a public endpoint gets the original service's limits so
// one request cannot monopolize the process.
const (
	minWorkspaceSamples = 1000
	maxWorkspaceSamples = 100000

	defaultIKIterations = 200
	readTimeout         = 30 * time.Second
	shutdownTimeout     = 5 * time.Second
)

// Server wires the immutable robot model and its solvers to HTTP routes.
type Server struct {
	model        *kinematics.Model
	ik           *kinematics.JacobianIK
	achievements *achievements.Manager
	history      *history.Log
	logger       golog.Logger
}

// NewServer returns a server for the given model. The achievements manager
// may be nil to disable milestone tracking.
func NewServer(model *kinematics.Model, ach *achievements.Manager, logger golog.Logger) *Server {
	return &Server{
		model:        model,
		ik:           kinematics.CreateJacobianIKSolver(model, logger, defaultIKIterations),
		achievements: ach,
		history:      history.NewLog(),
		logger:       logger,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := goji.NewMux()
	mux.HandleFunc(pat.Get("/"), s.handleRoot)
	mux.HandleFunc(pat.Get("/health"), s.handleHealth)

	mux.HandleFunc(pat.Post("/kinematics/forward"), s.handleForward)
	mux.HandleFunc(pat.Post("/kinematics/inverse"), s.handleInverse)
	mux.HandleFunc(pat.Post("/kinematics/jacobian"), s.handleJacobian)
	mux.HandleFunc(pat.Post("/kinematics/singularity"), s.handleSingularity)

	mux.HandleFunc(pat.Post("/workspace/calculate"), s.handleWorkspaceCalculate)
	mux.HandleFunc(pat.Get("/workspace/bounds"), s.handleWorkspaceBounds)

	mux.HandleFunc(pat.Get("/robot/info"), s.handleRobotInfo)
	mux.HandleFunc(pat.Get("/robot/home_position"), s.handleHomePosition)

	mux.HandleFunc(pat.Get("/robot/state"), s.handleRobotState)
	mux.HandleFunc(pat.Post("/robot/state"), s.handleRobotStateSet)
	mux.HandleFunc(pat.Post("/robot/state/undo"), s.handleRobotStateUndo)
	mux.HandleFunc(pat.Post("/robot/state/redo"), s.handleRobotStateRedo)

	mux.HandleFunc(pat.Post("/trajectories/draw_b"), s.handleDrawB)

	mux.HandleFunc(pat.Get("/achievements"), s.handleAchievements)
	mux.HandleFunc(pat.Get("/achievements/unlocked"), s.handleAchievementsUnlocked)
	mux.HandleFunc(pat.Get("/achievements/progress"), s.handleAchievementsProgress)
	mux.HandleFunc(pat.Post("/achievements/event"), s.handleAchievementEvent)
	return mux
}

// Serve listens on addr until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", addr)
	}
	httpServer := &http.Server{
		Handler:     s.Handler(),
		ReadTimeout: readTimeout,
	}

	var serveErr error
	done := make(chan struct{})
	utils.PanicCapturingGo(func() {
		defer close(done)
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	})
	s.logger.Infow("serving", "address", listener.Addr().String())

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	shutdownErr := httpServer.Shutdown(shutdownCtx)
	<-done
	return multierr.Combine(shutdownErr, serveErr)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Errorw("cannot write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, errorResponse{Error: msg})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, into interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(err, "malformed request body").Error())
		return false
	}
	return true
}
