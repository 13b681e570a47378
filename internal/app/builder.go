package app

import (
	"context"
	"fmt"
	"time"

	"github.com/EgorLis/my-videos/internal/config"
	"github.com/EgorLis/my-videos/internal/domain"
	redisx "github.com/EgorLis/my-videos/internal/infra/cache/redis"
	"github.com/EgorLis/my-videos/internal/infra/database/postgres"
	"github.com/EgorLis/my-videos/internal/infra/storage/disk"
	s3storage "github.com/EgorLis/my-videos/internal/infra/storage/s3"
	"github.com/EgorLis/my-videos/internal/media"
	"github.com/EgorLis/my-videos/internal/metrics"
	"github.com/EgorLis/my-videos/internal/stream"
	"github.com/EgorLis/my-videos/internal/transport/web"
	"github.com/EgorLis/my-videos/internal/transport/web/logx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config   *config.Config
	server   *web.Server
	log      *zap.SugaredLogger
	manifest domain.Manifest
	cache    domain.Cache
}

func Build(ctx context.Context) (*App, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed load config: %w", err)
	}

	root, err := logx.New(cfg.AppEnv)
	if err != nil {
		return nil, fmt.Errorf("failed init logger: %w", err)
	}
	base := root.Named("app")
	base.Infof("\n  configuration: %s-------------------", cfg)

	store, err := buildStore(ctx, cfg, root)
	if err != nil {
		return nil, err
	}

	a := &App{config: cfg, log: base}
	deps := web.Deps{Storage: store}
	opts := media.Options{CacheTTL: cfg.LatestCacheTTL}

	if cfg.ManifestEnabled() {
		base.Info("init PostgreSQL")
		pgRepo, err := postgres.NewPGRepo(ctx, root.Named("postgres"), cfg.GetDSN(), cfg.DBScheme)
		if err != nil {
			return nil, fmt.Errorf("failed init postgres: %w", err)
		}
		base.Info("PostgreSQL is initialized")
		a.manifest = pgRepo
		opts.Manifest = pgRepo
		deps.Manifest = pgRepo
	}

	if cfg.CacheEnabled() {
		base.Info("init Redis")
		rc := redisx.New(redisx.Config{
			Addr:     cfg.RedisAddr,
			DB:       cfg.RedisDB,
			Password: cfg.RedisPassword,
		}, root.Named("redis"))
		if err := rc.Ping(ctx); err != nil {
			a.closeDeps()
			return nil, fmt.Errorf("failed init redis: %w", err)
		}
		base.Info("Redis is initialized")
		a.cache = rc
		opts.Cache = rc
		deps.Cache = rc
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	obs, err := metrics.New("media", reg)
	if err != nil {
		a.closeDeps()
		return nil, fmt.Errorf("failed init metrics: %w", err)
	}
	opts.Observer = obs

	svc := media.NewService(store, root.Named("service"), opts)

	deps.Media = svc
	deps.Streamer = stream.New(store, cfg.StreamChunkBytes)
	deps.Metrics = obs
	deps.Registry = reg

	base.Info("init Server")
	a.server = web.New(root.Named("server"), cfg, deps)
	base.Info("Server is initialized")

	base.Info("build ended")
	return a, nil
}

func buildStore(ctx context.Context, cfg *config.Config, root *zap.SugaredLogger) (domain.ObjectStore, error) {
	switch cfg.StorageBackend {
	case config.BackendS3:
		root.Named("app").Info("init S3 storage")
		st, err := s3storage.New(ctx, s3storage.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			PathStyle: cfg.S3PathStyle,
			Prefix:    cfg.S3Prefix,
		}, root.Named("s3"))
		if err != nil {
			return nil, fmt.Errorf("failed init s3: %w", err)
		}
		return st, nil
	default:
		root.Named("app").Infof("init fs storage in %s", cfg.UploadDir)
		st, err := disk.New(cfg.UploadDir, root.Named("disk"))
		if err != nil {
			return nil, fmt.Errorf("failed init fs storage: %w", err)
		}
		return st, nil
	}
}

// Run обслуживает запросы до отмены ctx, затем гасит сервер и закрывает зависимости.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("start application...")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.server.Run)
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("stop application...")

		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.server.Close(stopCtx)
		return nil
	})

	err := g.Wait()
	a.closeDeps()
	_ = a.log.Sync()
	return err
}

func (a *App) closeDeps() {
	if a.manifest != nil {
		a.manifest.Close()
	}
	if a.cache != nil {
		a.cache.Close()
	}
}
