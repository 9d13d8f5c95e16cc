package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/AndreyATC/ph-monitor/internal/config"
	"github.com/AndreyATC/ph-monitor/internal/httpapi"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/controller"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/repository"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/service"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/types"
	phviews "github.com/AndreyATC/ph-monitor/internal/modules/ph/views"
)

const shutdownTimeout = 10 * time.Second

func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"storeBackend", cfg.StoreBackend,
		"sqlitePath", cfg.SQLitePath,
		"supabaseURL", cfg.SupabaseURL,
		"supabaseTable", cfg.SupabaseTable,
		"pageSize", cfg.PageSize,
		"downsampleThreshold", cfg.DownsampleThreshold,
		"bucketWidth", cfg.BucketWidth,
		"displayTZ", cfg.DisplayLocation.String(),
	)

	factory, err := repository.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := factory.Close(); closeErr != nil {
			logger.Error("store close", "error", closeErr)
		}
	}()

	if err := factory.Ping(ctx); err != nil {
		// Remote stores may come up later; /healthz reports the state.
		logger.Warn("store ping failed (continuing)", "backend", factory.Backend(), "error", err)
	} else {
		logger.Info("store connection successful", "backend", factory.Backend())
	}

	if err := phviews.LoadTemplates(); err != nil {
		return err
	}

	srv := httpapi.NewServer(cfg, newMux(cfg, factory, logger))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

func newMux(cfg config.Config, factory repository.Factory, logger *slog.Logger) *http.ServeMux {
	fetcher := service.NewFetcher(factory, service.Options{
		DownsampleThreshold: cfg.DownsampleThreshold,
		BucketWidth:         cfg.BucketWidth,
	}, logger)

	mux := httpapi.NewMux(factory)
	ph.RegisterFeature(mux, fetcher, controller.Options{
		Location:    cfg.DisplayLocation,
		Thresholds:  types.DefaultThresholds,
		BucketWidth: cfg.BucketWidth,
	})
	return mux
}
