package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/gabrielmiguelok/pakheritage/pkg/health"
	"github.com/gabrielmiguelok/pakheritage/pkg/logging"
	"github.com/gabrielmiguelok/pakheritage/pkg/shutdown"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the live site",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts)
		},
	}
}

func serve(ctx context.Context, opts *rootOptions) error {
	cfg := opts.cfg
	zl := newLogger(cfg)
	logger := logging.Logger(zl).With(logging.String("env", cfg.Env))
	logging.SetDefault(logger)

	s, err := buildSite(cfg, logger, siteOptions{live: true})
	if err != nil {
		return err
	}

	checker := health.NewChecker(version)
	checker.AddCritical("catalog", health.MinimumProbe("images", s.content.Catalog.Len, 1), 0)
	checker.Add("sockets", health.CapacityProbe(s.router.Sockets().Count, cfg.MaxConnections), 0)
	checker.Add("memory", health.MemoryProbe(512<<20), 0)
	s.router.Handle("/health", checker.HealthHandler())
	s.router.Handle("/health/live", checker.LivenessHandler())
	s.router.Handle("/health/ready", checker.ReadinessHandler())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	coord := shutdown.New(cfg.ShutdownTimeout, logger)
	coord.Add("http", shutdown.StageHTTP, srv.Shutdown)
	coord.Add("live sessions", shutdown.StageLive, s.router.Shutdown)
	coord.Add("logger", shutdown.StageFlush, func(context.Context) error {
		// Sync on a terminal returns EINVAL; there is nothing to do about it.
		_ = zl.Sync()
		return nil
	})

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening",
			logging.String("addr", cfg.Addr),
			logging.String("codec", cfg.Codec),
			logging.Int("images", s.content.Catalog.Len()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	waitErr := make(chan error, 1)
	go func() { waitErr <- coord.Wait(ctx) }()

	select {
	case err, ok := <-errc:
		if ok {
			logger.Error("server failed", logging.Err(err))
			_ = coord.Run()
			return err
		}
	case err := <-waitErr:
		if err != nil {
			logger.Warn("shutdown incomplete", logging.Err(err))
		}
		return err
	}
	return <-waitErr
}
