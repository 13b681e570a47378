package media

import (
	"context"
	"io"
	"time"

	"github.com/EgorLis/my-videos/internal/domain"
	"github.com/EgorLis/my-videos/internal/stream"
	"go.uber.org/zap"
)

type Service interface {
	Upload(ctx context.Context, r io.Reader, originalName string) (domain.StoredObject, error)
	Latest(ctx context.Context) (domain.StoredObject, error)
	List(ctx context.Context) ([]domain.StoredObject, error)
}

type Streamer interface {
	Prepare(ctx context.Context, id, rangeHeader string) (stream.Plan, error)
	Copy(ctx context.Context, dst io.Writer, p stream.Plan) (int64, error)
}

type Observer interface {
	RecordStream(status int, written int64, outcome string)
}

type Handler struct {
	Log      *zap.SugaredLogger
	Media    Service
	Streamer Streamer
	Metrics  Observer // может быть nil

	ContentType string // Content-Type для /get-latest-video
}

const (
	outcomeComplete = "complete"
	outcomeAborted  = "aborted"
	outcomeRejected = "rejected"
)

func (h *Handler) record(status int, written int64, outcome string) {
	if h.Metrics != nil {
		h.Metrics.RecordStream(status, written, outcome)
	}
}

func fileResult(obj domain.StoredObject, originalName string) domain.FileResult {
	return domain.FileResult{
		ID:           obj.ID,
		Filename:     obj.Filename(),
		OriginalName: originalName,
		Size:         obj.SizeBytes,
		CreatedAt:    obj.CreatedAt.UTC().Format(time.RFC3339Nano),
		URL:          "/uploads/" + obj.Filename(),
	}
}
