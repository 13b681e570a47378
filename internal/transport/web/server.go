package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/EgorLis/my-videos/internal/config"
	"github.com/EgorLis/my-videos/internal/transport/web/v1/health"
	"github.com/EgorLis/my-videos/internal/transport/web/v1/media"
	"go.uber.org/zap"
)

type Server struct {
	log    *zap.SugaredLogger
	server *http.Server
	cfg    *config.Config
}

func New(logger *zap.SugaredLogger, cfg *config.Config, deps Deps) *Server {
	healthHandler := &health.Handler{
		Log:      logger.Named("health"),
		Storage:  deps.Storage,
		Manifest: deps.Manifest,
		Cache:    deps.Cache,
	}
	mediaHandler := &media.Handler{
		Log:         logger.Named("media"),
		Media:       deps.Media,
		Streamer:    deps.Streamer,
		Metrics:     deps.Metrics,
		ContentType: cfg.MediaContentType,
	}

	// ReadTimeout/WriteTimeout не задаём: загрузка и отдача видео длятся дольше любого фиксированного лимита.
	srv := &http.Server{
		Addr:              cfg.AppPort,
		Handler:           newRouter(cfg, healthHandler, mediaHandler, deps.Registry, logger),
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{server: srv, cfg: cfg, log: logger}
}

func (ws *Server) Handler() http.Handler { return ws.server.Handler }

// Run блокируется до Close; http.ErrServerClosed ошибкой не считается.
func (ws *Server) Run() error {
	ws.log.Infof("started on %s", ws.server.Addr)
	if err := ws.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (ws *Server) Close(ctx context.Context) {
	if err := ws.server.Shutdown(ctx); err != nil {
		ws.log.Warnf("forced to shutdown: %v", err)
	}
	ws.log.Info("exited gracefully")
}
