package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/thuan-cell/thuan-cell/internal/config"
	"github.com/thuan-cell/thuan-cell/internal/export"
	logger "github.com/thuan-cell/thuan-cell/internal/logging"
	"github.com/thuan-cell/thuan-cell/internal/models"
	"github.com/thuan-cell/thuan-cell/internal/repository"
	"github.com/thuan-cell/thuan-cell/internal/router"
	"github.com/thuan-cell/thuan-cell/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	projectRoot, err := os.Getwd()
	if err != nil {
		panic("failed to resolve working directory: " + err.Error())
	}

	// A missing .env is fine; the environment and config file still apply.
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))

	boot := logger.Bootstrap()
	cfg, err := config.Load(projectRoot, boot)
	if err != nil {
		boot.Fatal("Failed to load configuration", zap.Error(err))
	}

	log, err := logger.Init(projectRoot, cfg.Logging)
	if err != nil {
		boot.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer log.Sync()

	rubric := models.DefaultRubric()
	if cfg.Rubric.Path != "" {
		path := cfg.Rubric.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(projectRoot, path)
		}
		rubric, err = models.LoadRubric(path)
		if err != nil {
			log.Fatal("Failed to load rubric", zap.Error(err), zap.String("path", path))
		}
	}
	log.Info("Rubric ready",
		zap.Int("categories", len(rubric.Categories)),
		zap.Int("items", rubric.ItemCount()),
		zap.Float64("max_points", rubric.MaxPoints()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := repository.NewSessionStore()
	services.NewJanitor(log, store, cfg.Session.IdleTimeout, cfg.Session.SweepInterval).Start(ctx)

	r, err := router.Setup(log, router.Deps{
		Config:    cfg,
		Store:     store,
		Rubric:    rubric,
		Renderer:  export.NewPDFExporter(export.Options{MarginMM: cfg.Export.MarginMM, ChartDPI: cfg.Export.ChartDPI}),
		AssetsDir: filepath.Join(projectRoot, "assets"),
	})
	if err != nil {
		log.Fatal("Failed to set up router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening on http://localhost:" + cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
}
