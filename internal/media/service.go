package media

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/EgorLis/my-videos/internal/domain"
	"go.uber.org/zap"
)

type Observer interface {
	RecordUpload(d time.Duration, size int64, err error)
}

type Options struct {
	Manifest domain.Manifest // nil — latest вычисляется по листингу хранилища
	Cache    domain.Cache    // nil — без кеша
	CacheTTL int             // секунд
	Observer Observer
}

// Service — загрузка объектов и выбор latest поверх хранилища, журнала и кеша.
type Service struct {
	store    domain.ObjectStore
	manifest domain.Manifest
	cache    domain.Cache
	cacheTTL int
	obs      Observer
	log      *zap.SugaredLogger
}

func NewService(store domain.ObjectStore, logger *zap.SugaredLogger, opts Options) *Service {
	return &Service{
		store:    store,
		manifest: opts.Manifest,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		obs:      opts.Observer,
		log:      logger,
	}
}

// Upload сохраняет поток, дописывает журнал и сдвигает поколение latest в кеше.
func (s *Service) Upload(ctx context.Context, r io.Reader, originalName string) (domain.StoredObject, error) {
	start := time.Now()
	obj, err := s.upload(ctx, r, originalName)
	if s.obs != nil {
		s.obs.RecordUpload(time.Since(start), obj.SizeBytes, err)
	}
	return obj, err
}

func (s *Service) upload(ctx context.Context, r io.Reader, originalName string) (domain.StoredObject, error) {
	obj, err := s.store.Store(ctx, r, originalName)
	if err != nil {
		return domain.StoredObject{}, err
	}
	if s.manifest != nil {
		if err := s.manifest.Append(ctx, obj); err != nil {
			return domain.StoredObject{}, err
		}
	}
	if s.cache != nil {
		if gen, err := s.cache.Incr(ctx, domain.CacheKeyLatestGen); err != nil {
			s.log.Warnw("latest generation bump failed", "id", obj.ID, "error", err)
		} else {
			s.log.Debugw("latest generation bumped", "id", obj.ID, "gen", gen)
		}
	}
	return obj, nil
}

// Latest — самый свежий опубликованный объект или domain.ErrNotFound.
// Значение в кеше лежит под поколением, прочитанным до вычисления, поэтому
// публикация во время вычисления не может быть скрыта устаревшей записью.
func (s *Service) Latest(ctx context.Context) (domain.StoredObject, error) {
	gen, cached := s.latestGen(ctx)
	if cached {
		if obj, ok := s.cachedLatest(ctx, gen); ok {
			return obj, nil
		}
	}

	obj, err := s.resolveLatest(ctx)
	if err != nil {
		return domain.StoredObject{}, err
	}

	if cached {
		if buf, err := json.Marshal(obj); err == nil {
			_ = s.cache.Set(ctx, domain.CacheKeyLatest(gen), buf, s.cacheTTL)
		}
	}
	return obj, nil
}

// List — все объекты, новые первыми.
func (s *Service) List(ctx context.Context) ([]domain.StoredObject, error) {
	if s.manifest != nil {
		return s.manifest.List(ctx)
	}
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	domain.SortNewestFirst(entries)
	return entries, nil
}

func (s *Service) resolveLatest(ctx context.Context) (domain.StoredObject, error) {
	if s.manifest != nil {
		return s.manifest.Latest(ctx)
	}
	entries, err := s.store.List(ctx)
	if err != nil {
		return domain.StoredObject{}, err
	}
	obj, ok := domain.Latest(entries)
	if !ok {
		return domain.StoredObject{}, domain.ErrNotFound
	}
	return obj, nil
}

func (s *Service) latestGen(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	b, err := s.cache.Get(ctx, domain.CacheKeyLatestGen)
	if err != nil {
		s.log.Warnw("latest generation read failed, bypassing cache", "error", err)
		return 0, false
	}
	if b == nil {
		return 0, true
	}
	gen, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		s.log.Warnw("latest generation is not a number", "value", string(b))
		return 0, false
	}
	return gen, true
}

func (s *Service) cachedLatest(ctx context.Context, gen int64) (domain.StoredObject, bool) {
	b, err := s.cache.Get(ctx, domain.CacheKeyLatest(gen))
	if err != nil || b == nil {
		return domain.StoredObject{}, false
	}
	var obj domain.StoredObject
	if err := json.Unmarshal(b, &obj); err != nil {
		s.log.Warnw("cached latest is corrupt", "gen", gen, "error", err)
		return domain.StoredObject{}, false
	}
	return obj, true
}
