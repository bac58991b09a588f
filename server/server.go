// Package server exposes graphs and runs over HTTP with gin.
//
//	GET  /health                 liveness
//	POST /graph/create           register a graph, returns its id
//	POST /graph/run              run a graph to completion
//	GET  /graph/state/:run_id    fetch a stored run
//	GET  /graph/:graph_id        fetch a graph definition
//	GET  /graphs                 list graph ids
//	GET  /runs                   list run ids
//	GET  /tools                  list registered tools
//	GET  /metrics                Prometheus exposition
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tailored-agentic-units/flowgraph/engine"
	"github.com/tailored-agentic-units/flowgraph/store"
)

// ToolLister reports the names of the tools runs can use.
type ToolLister interface {
	Names() []string
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	engine         *engine.Engine
	store          store.Store
	tools          ToolLister
	logger         *slog.Logger
	gatherer       prometheus.Gatherer
	serviceName    string
	maxSteps       int
	validateRoutes bool
	newID          func() string
	router         *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithGatherer sets the registry served on /metrics. Defaults to
// prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithServiceName sets the service name reported by the tracing middleware.
func WithServiceName(name string) Option {
	return func(s *Server) { s.serviceName = name }
}

// WithMaxSteps sets the budget for run requests without max_steps.
func WithMaxSteps(n int) Option {
	return func(s *Server) { s.maxSteps = n }
}

// WithValidateRoutes controls whether created graphs must pass static
// route validation.
func WithValidateRoutes(enabled bool) Option {
	return func(s *Server) { s.validateRoutes = enabled }
}

// WithIDGenerator replaces the UUIDv7 generator for graph and run ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) { s.newID = fn }
}

// New creates a Server and builds its router.
func New(eng *engine.Engine, st store.Store, toolNames ToolLister, opts ...Option) *Server {
	s := &Server{
		engine:         eng,
		store:          st,
		tools:          toolNames,
		logger:         slog.Default(),
		gatherer:       prometheus.DefaultGatherer,
		serviceName:    "flowgraph",
		maxSteps:       eng.MaxSteps(),
		validateRoutes: true,
		newID:          newUUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(s.serviceName))
	router.Use(requestLogger(s.logger))

	router.GET("/health", s.health)
	router.GET("/tools", s.listTools)
	router.GET("/graphs", s.listGraphs)
	router.GET("/runs", s.listRuns)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	g := router.Group("/graph")
	{
		g.POST("/create", s.createGraph)
		g.POST("/run", s.runGraph)
		g.GET("/state/:run_id", s.getRunState)
		g.GET("/:graph_id", s.getGraph)
	}

	return router
}

func newUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}
