package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"aoa/internal/aoa"
	"aoa/internal/buildinfo"
	"aoa/internal/estimate"
	"aoa/internal/logging"
	"aoa/internal/metrics"
	"aoa/internal/server"
	"aoa/internal/setup"
	"aoa/internal/shutdown"
	"aoa/internal/train"
)

func main() {
	_, _ = fmt.Fprint(os.Stdout, buildinfo.Graffiti)
	_, _ = fmt.Fprintf(
		os.Stdout,
		"%s: %s, %s\n",
		buildinfo.Info.Name(),
		buildinfo.Info.Time(),
		buildinfo.Info.Tag(),
	)

	ctx, done := shutdown.New()
	logger := logging.FromContext(ctx)
	go http.ListenAndServe("0.0.0.0:8080", nil)
	if err := run(ctx); err != nil {
		logger.Fatal(err)
	}

	defer done()
}

func run(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	config := aoa.Config{}
	env, err := setup.Setup(ctx, &config)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}
	defer env.Close(context.Background())

	if err := metrics.RegisterViews(); err != nil {
		return fmt.Errorf("metrics.RegisterViews: %w", err)
	}
	exporter, err := metrics.NewExporter()
	if err != nil {
		return fmt.Errorf("metrics.NewExporter: %w", err)
	}

	srv, err := server.New(config.SrvAddr, server.WithMaxConns(config.MaxConns))
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	mux := http.NewServeMux()

	trainHandler, err := train.NewHandler(&config.Train, env.Datasets())
	if err != nil {
		return fmt.Errorf("train.NewHandler: %w", err)
	}
	estimateHandler, err := estimate.NewHandler(&config.Estimate, env.Datasets(), env.Cache())
	if err != nil {
		return fmt.Errorf("estimate.NewHandler: %w", err)
	}

	mux.Handle("/reference", trainHandler)
	mux.Handle("/estimate", estimateHandler)
	mux.Handle("/metrics", exporter)
	mux.Handle("/health", server.HandleHealth(ctx))

	logger.Infof("listening on %s", config.SrvAddr)

	return srv.ServeHTTPHandler(ctx, mux)
}
