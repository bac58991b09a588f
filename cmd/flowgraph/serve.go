package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tailored-agentic-units/flowgraph/engine"
	"github.com/tailored-agentic-units/flowgraph/graph"
	"github.com/tailored-agentic-units/flowgraph/observability"
	"github.com/tailored-agentic-units/flowgraph/review"
	"github.com/tailored-agentic-units/flowgraph/server"
	"github.com/tailored-agentic-units/flowgraph/store"
	"github.com/tailored-agentic-units/flowgraph/tools"
)

var (
	serveAddr string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the graph HTTP API",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
}

func newEngine(reg prometheus.Registerer) (*engine.Engine, error) {
	named, err := observability.GetObserver(cfg.Engine.Observer)
	if err != nil {
		return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(observability.ObserverNames(), ", "))
	}

	observers := []observability.Observer{named, observability.SpanObserver{}}
	if reg != nil {
		observers = append(observers, observability.NewMetrics(reg))
	}

	return engine.New(
		tools.Default(),
		engine.WithObserver(observability.Combine(observers...)),
		engine.WithMaxSteps(cfg.Engine.MaxSteps),
	), nil
}

func seedGraphs(ctx context.Context, st store.Store) error {
	g, err := review.DefaultGraph()
	if err != nil {
		return err
	}
	graphs := []*graph.Graph{g}

	for _, path := range cfg.Graphs {
		g, err := graph.LoadFile(path)
		if err != nil {
			return err
		}
		graphs = append(graphs, g)
	}

	for _, g := range graphs {
		if cfg.Engine.ValidateRoutes() {
			if err := g.ValidateRoutes(); err != nil {
				return err
			}
		}
		if missing := tools.Default().Missing(g.Tools()); len(missing) > 0 {
			return fmt.Errorf("graph %s references unregistered tools: %q", g.ID(), missing)
		}
		if err := st.CreateGraph(ctx, g); err != nil {
			return err
		}
		logger.Info("graph loaded", "graph_id", g.ID(), "nodes", len(g.NodeNames()))
	}
	return nil
}

func serve(cmd *cobra.Command, _ []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := setupTracing()
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	eng, err := newEngine(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	st, err := store.New(&cfg.Store)
	if err != nil {
		return err
	}
	if err := seedGraphs(ctx, st); err != nil {
		return err
	}

	srv := server.New(eng, st, tools.Default(),
		server.WithLogger(logger),
		server.WithValidateRoutes(cfg.Engine.ValidateRoutes()),
	)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
