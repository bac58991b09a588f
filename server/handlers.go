package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tailored-agentic-units/flowgraph/graph"
	"github.com/tailored-agentic-units/flowgraph/state"
	"github.com/tailored-agentic-units/flowgraph/store"
)

// CreateGraphRequest is the body of POST /graph/create.
type CreateGraphRequest struct {
	StartNode string                      `json:"start_node"`
	Nodes     map[string]graph.NodeConfig `json:"nodes"`
}

// CreateGraphResponse is returned by POST /graph/create.
type CreateGraphResponse struct {
	GraphID string `json:"graph_id"`
}

// RunGraphRequest is the body of POST /graph/run. A nil MaxSteps uses the
// server default.
type RunGraphRequest struct {
	GraphID      string        `json:"graph_id" binding:"required"`
	InitialState state.Context `json:"initial_state"`
	MaxSteps     *int          `json:"max_steps,omitempty"`
}

// RunGraphResponse is returned by POST /graph/run.
type RunGraphResponse struct {
	RunID      string              `json:"run_id"`
	FinalState state.Context       `json:"final_state"`
	Log        []state.RunLogEntry `json:"log"`
}

// ErrorResponse is the body of every non-2xx response. RunID is set when a
// run was started and stored before failing.
type ErrorResponse struct {
	Error string `json:"error"`
	RunID string `json:"run_id,omitempty"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": s.tools.Names()})
}

func (s *Server) listGraphs(c *gin.Context) {
	ids, err := s.store.ListGraphs(c.Request.Context())
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"graphs": ids})
}

func (s *Server) listRuns(c *gin.Context) {
	ids, err := s.store.ListRuns(c.Request.Context())
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": ids})
}

func (s *Server) createGraph(c *gin.Context) {
	var req CreateGraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err, "")
		return
	}

	g, err := graph.New(graph.GraphConfig{
		ID:        s.newID(),
		StartNode: req.StartNode,
		Nodes:     req.Nodes,
	})
	if err == nil && s.validateRoutes {
		err = g.ValidateRoutes()
	}
	if err != nil {
		s.fail(c, http.StatusBadRequest, err, "")
		return
	}

	if err := s.store.CreateGraph(c.Request.Context(), g); err != nil {
		s.fail(c, http.StatusInternalServerError, err, "")
		return
	}

	c.JSON(http.StatusOK, CreateGraphResponse{GraphID: g.ID()})
}

func (s *Server) runGraph(c *gin.Context) {
	var req RunGraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, err, "")
		return
	}

	ctx := c.Request.Context()

	g, err := s.store.GetGraph(ctx, req.GraphID)
	if err != nil {
		s.fail(c, statusFor(err), err, "")
		return
	}

	maxSteps := s.maxSteps
	if req.MaxSteps != nil {
		maxSteps = *req.MaxSteps
	}

	run := state.NewRun(s.newID(), g.ID(), g.StartNode(), req.InitialState)
	run, runErr := s.engine.Run(ctx, g, run, maxSteps)

	if err := s.store.SaveRun(ctx, run); err != nil {
		s.fail(c, http.StatusInternalServerError, err, run.ID)
		return
	}

	if runErr != nil {
		s.fail(c, http.StatusInternalServerError, runErr, run.ID)
		return
	}

	c.JSON(http.StatusOK, RunGraphResponse{
		RunID:      run.ID,
		FinalState: run.State,
		Log:        run.Log,
	})
}

func (s *Server) getRunState(c *gin.Context) {
	run, err := s.store.GetRun(c.Request.Context(), c.Param("run_id"))
	if err != nil {
		s.fail(c, statusFor(err), err, "")
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) getGraph(c *gin.Context) {
	g, err := s.store.GetGraph(c.Request.Context(), c.Param("graph_id"))
	if err != nil {
		s.fail(c, statusFor(err), err, "")
		return
	}
	c.JSON(http.StatusOK, g)
}

func (s *Server) fail(c *gin.Context, status int, err error, runID string) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), RunID: runID})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, graph.ErrIntegrity):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
