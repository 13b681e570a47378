package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/EgorLis/my-videos/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	tmpPrefix      = ".tmp-"
	publishRetries = 5
)

var idRe = regexp.MustCompile(`^[0-9]{13}-[0-9a-f]{12}$`)

// Storage — плоская директория объектов "<id><ext>".
// Запись идёт во временный файл, публикация — жёсткой ссылкой (или rename), поэтому
// List никогда не видит недописанный объект.
type Storage struct {
	dir string
	log *zap.SugaredLogger
	now func() time.Time
}

var _ domain.ObjectStore = (*Storage)(nil)

func New(dir string, logger *zap.SugaredLogger) (*Storage, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("upload dir is required")
	}
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Storage{dir: dir, log: logger, now: time.Now}, nil
}

func (s *Storage) Dir() string { return s.dir }

// Store пишет поток во временный файл и атомарно публикует его под новым id.
func (s *Storage) Store(ctx context.Context, r io.Reader, originalName string) (domain.StoredObject, error) {
	ext := SanitizeExt(filepath.Ext(originalName))

	tmp, err := os.CreateTemp(s.dir, tmpPrefix+"*")
	if err != nil {
		return domain.StoredObject{}, fmt.Errorf("%w: create temp: %v", domain.ErrStorageWrite, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	writeErr := func() error {
		if _, err := io.Copy(tmp, ctxReader{ctx: ctx, r: r}); err != nil {
			_ = tmp.Close()
			return err
		}
		if err := tmp.Sync(); err != nil {
			_ = tmp.Close()
			return err
		}
		return tmp.Close()
	}()
	if writeErr != nil {
		s.log.Warnw("write failed", "tmp", filepath.Base(tmpPath), "error", writeErr)
		return domain.StoredObject{}, fmt.Errorf("%w: write: %w", domain.ErrStorageWrite, writeErr)
	}

	for attempt := 0; attempt < publishRetries; attempt++ {
		id := NewID(s.now())
		final := filepath.Join(s.dir, id+ext)
		if err := publish(tmpPath, final); err != nil {
			if errors.Is(err, fs.ErrExist) {
				s.log.Warnw("id collision, retrying", "id", id)
				continue
			}
			return domain.StoredObject{}, fmt.Errorf("%w: publish: %v", domain.ErrStorageWrite, err)
		}
		info, err := os.Stat(final)
		if err != nil {
			return domain.StoredObject{}, fmt.Errorf("%w: stat published: %v", domain.ErrStorageWrite, err)
		}
		obj := domain.StoredObject{ID: id, SizeBytes: info.Size(), CreatedAt: info.ModTime(), Ext: ext}
		s.log.Infow("stored", "id", id, "ext", ext, "size", obj.SizeBytes)
		return obj, nil
	}
	return domain.StoredObject{}, fmt.Errorf("%w: no free id after %d attempts", domain.ErrStorageWrite, publishRetries)
}

// publish не перезаписывает существующий файл: Link падает с ErrExist.
func publish(tmpPath, final string) error {
	err := os.Link(tmpPath, final)
	if err == nil || errors.Is(err, fs.ErrExist) {
		return err
	}
	// ФС без жёстких ссылок
	if _, statErr := os.Lstat(final); statErr == nil {
		return fs.ErrExist
	}
	return os.Rename(tmpPath, final)
}

func (s *Storage) List(ctx context.Context) ([]domain.StoredObject, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read dir: %v", domain.ErrStorageUnavailable, err)
	}
	out := make([]domain.StoredObject, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		id, ext := domain.SplitFilename(e.Name())
		if !idRe.MatchString(id) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue // удалён между ReadDir и Info
		}
		out = append(out, domain.StoredObject{ID: id, SizeBytes: info.Size(), CreatedAt: info.ModTime(), Ext: ext})
	}
	return out, nil
}

func (s *Storage) Stat(ctx context.Context, id string) (int64, error) {
	_, info, err := s.locate(id)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Open отдаёт ленивый поток [start, end] включительно.
func (s *Storage) Open(ctx context.Context, id string, start, end int64) (io.ReadCloser, error) {
	path, info, err := s.locate(id)
	if err != nil {
		return nil, err
	}
	if start < 0 || start > end || end >= info.Size() {
		return nil, fmt.Errorf("%w: [%d, %d] of %d", domain.ErrRangeOutOfBounds, start, end, info.Size())
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: open: %v", domain.ErrStorageUnavailable, err)
	}
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.NewSectionReader(f, start, end-start+1),
		Closer: f,
	}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrStorageUnavailable, s.dir)
	}
	return nil
}

func (s *Storage) locate(id string) (string, os.FileInfo, error) {
	if !idRe.MatchString(id) {
		return "", nil, domain.ErrNotFound
	}
	matches, err := filepath.Glob(filepath.Join(s.dir, id+"*"))
	if err != nil {
		return "", nil, fmt.Errorf("%w: glob: %v", domain.ErrStorageUnavailable, err)
	}
	for _, m := range matches {
		if got, _ := domain.SplitFilename(filepath.Base(m)); got != id {
			continue
		}
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		return m, info, nil
	}
	return "", nil, domain.ErrNotFound
}

// NewID: миллисекунды (13 цифр) + 12 hex случайного суффикса.
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%013d-%s", now.UnixMilli(), suffix)
}

// SanitizeExt оставляет только короткие расширения из [a-z0-9].
func SanitizeExt(ext string) string {
	trimmed := strings.ToLower(strings.TrimSpace(ext))
	if !strings.HasPrefix(trimmed, ".") {
		return ""
	}
	trimmed = strings.TrimPrefix(trimmed, ".")
	if trimmed == "" || len(trimmed) > 10 {
		return ""
	}
	for _, r := range trimmed {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			continue
		}
		return ""
	}
	return "." + trimmed
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
