package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/jacare-do-corte/internal/app"
	"github.com/BruksfildServices01/jacare-do-corte/internal/config"
	"github.com/BruksfildServices01/jacare-do-corte/internal/logger"
	"github.com/BruksfildServices01/jacare-do-corte/internal/middleware"
	"github.com/BruksfildServices01/jacare-do-corte/internal/outbox"
	"github.com/BruksfildServices01/jacare-do-corte/internal/routes"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ct, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}
	defer ct.Close()

	// --------------------------------------------------
	// Workers
	// --------------------------------------------------
	replayer := outbox.NewReplayer(ct.Outbox, ct.Appointments, log, cfg.ReplayInterval)
	go replayer.Run(ctx)

	if ct.Bus != nil {
		go ct.Bus.Run(ctx)
	}

	limiter := middleware.NewRateLimiter(1, 5)
	go routes.SweepLimiter(limiter, ctx.Done())

	// --------------------------------------------------
	// HTTP
	// --------------------------------------------------
	if !cfg.LogDev {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, ct, limiter)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server running", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown failed", zap.Error(err))
	}
}
