package s3

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/EgorLis/my-videos/internal/domain"
	"github.com/EgorLis/my-videos/internal/infra/storage/disk"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

const tmpDir = "tmp/"

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
	Prefix    string // пространство имён объектов внутри бакета
}

type Storage struct {
	cl     *minio.Client
	bucket string
	prefix string
	log    *zap.SugaredLogger
}

var _ domain.ObjectStore = (*Storage)(nil)

func New(ctx context.Context, cfg Config, logger *zap.SugaredLogger) (*Storage, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}
	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, err
	}
	s := &Storage{cl: cl, bucket: cfg.Bucket, prefix: normalizePrefix(cfg.Prefix), log: logger}
	if err := s.ensureBucket(ctx, cfg.Region); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Storage) ensureBucket(ctx context.Context, region string) error {
	ok, err := s.cl.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("bucket exists: %w", err)
	}
	if ok {
		return nil
	}
	s.log.Infow("creating bucket", "bucket", s.bucket)
	if err := s.cl.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("make bucket: %w", err)
	}
	return nil
}

// Store загружает поток во временный ключ и публикует копией под "<prefix><id><ext>".
// Пока копия не завершена, объект не виден в List.
func (s *Storage) Store(ctx context.Context, r io.Reader, originalName string) (domain.StoredObject, error) {
	ext := disk.SanitizeExt(path.Ext(originalName))
	tmpKey := tmpDir + uuid.NewString()

	_, err := s.cl.PutObject(ctx, s.bucket, tmpKey, r, -1, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		_ = s.cl.RemoveObject(context.WithoutCancel(ctx), s.bucket, tmpKey, minio.RemoveObjectOptions{})
		return domain.StoredObject{}, fmt.Errorf("%w: put: %w", domain.ErrStorageWrite, err)
	}
	defer func() {
		_ = s.cl.RemoveObject(context.WithoutCancel(ctx), s.bucket, tmpKey, minio.RemoveObjectOptions{})
	}()

	id := disk.NewID(time.Now())
	finalKey := s.key(id + ext)
	src := minio.CopySrcOptions{Bucket: s.bucket, Object: tmpKey}
	dst := minio.CopyDestOptions{Bucket: s.bucket, Object: finalKey}
	info, err := s.cl.CopyObject(ctx, dst, src)
	if err != nil {
		return domain.StoredObject{}, fmt.Errorf("%w: publish: %v", domain.ErrStorageWrite, err)
	}
	s.log.Infow("stored", "key", finalKey, "size", info.Size)
	return domain.StoredObject{ID: id, SizeBytes: info.Size, CreatedAt: info.LastModified, Ext: ext}, nil
}

func (s *Storage) List(ctx context.Context) ([]domain.StoredObject, error) {
	var out []domain.StoredObject
	for obj := range s.cl.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s.prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("%w: list: %v", domain.ErrStorageUnavailable, obj.Err)
		}
		if so, ok := s.toStored(obj); ok {
			out = append(out, so)
		}
	}
	return out, nil
}

func (s *Storage) Stat(ctx context.Context, id string) (int64, error) {
	obj, err := s.locate(ctx, id)
	if err != nil {
		return 0, err
	}
	return obj.Size, nil
}

// Open — GetObject с SetRange; границы включительные.
func (s *Storage) Open(ctx context.Context, id string, start, end int64) (io.ReadCloser, error) {
	info, err := s.locate(ctx, id)
	if err != nil {
		return nil, err
	}
	if start < 0 || start > end || end >= info.Size {
		return nil, fmt.Errorf("%w: [%d, %d] of %d", domain.ErrRangeOutOfBounds, start, end, info.Size)
	}
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(start, end); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRangeOutOfBounds, err)
	}
	obj, err := s.cl.GetObject(ctx, s.bucket, info.Key, opts)
	if err != nil {
		return nil, mapErr(err)
	}
	return obj, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	ok, err := s.cl.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	if !ok {
		return fmt.Errorf("%w: bucket %q is missing", domain.ErrStorageUnavailable, s.bucket)
	}
	return nil
}

// locate ищет ключ "<prefix><id><ext>" по префиксу id.
func (s *Storage) locate(ctx context.Context, id string) (minio.ObjectInfo, error) {
	if id == "" || strings.ContainsAny(id, "/.") {
		return minio.ObjectInfo{}, domain.ErrNotFound
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	for obj := range s.cl.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s.key(id)}) {
		if obj.Err != nil {
			return minio.ObjectInfo{}, fmt.Errorf("%w: locate: %v", domain.ErrStorageUnavailable, obj.Err)
		}
		if so, ok := s.toStored(obj); ok && so.ID == id {
			return obj, nil
		}
	}
	return minio.ObjectInfo{}, domain.ErrNotFound
}

func (s *Storage) toStored(obj minio.ObjectInfo) (domain.StoredObject, bool) {
	rel := strings.TrimPrefix(obj.Key, s.prefix)
	if rel == "" || strings.Contains(rel, "/") {
		return domain.StoredObject{}, false
	}
	id, ext := domain.SplitFilename(rel)
	return domain.StoredObject{ID: id, SizeBytes: obj.Size, CreatedAt: obj.LastModified, Ext: ext}, true
}

func (s *Storage) key(name string) string { return s.prefix + name }

func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

func mapErr(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
}
