package health

import (
	"context"
	"net/http"
	"time"

	"github.com/EgorLis/my-videos/internal/domain"
	"github.com/EgorLis/my-videos/internal/transport/web/logx"
	"github.com/EgorLis/my-videos/internal/transport/web/mw"
	v1 "github.com/EgorLis/my-videos/internal/transport/web/v1"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(context.Context) error
}

// Handler: Manifest и Cache опциональны, nil пропускается.
type Handler struct {
	Log      *zap.SugaredLogger
	Storage  Pinger
	Manifest Pinger
	Cache    Pinger
}

// Liveness godoc
// @Summary      Liveness probe
// @Description  Проверка, жив ли сервис (не зависит от хранилища/БД/кэша)
// @Tags         health
// @Produce      json
// @Success      200  {object}  domain.APIEnvelope{data=string}
// @Router       /v1/healthz [get]
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	const op = "health.liveness"
	reqID := mw.RequestIDFromCtx(r.Context())

	logx.Info(h.Log, reqID, op, "ok")
	v1.WriteOKData(w, r, "ok")
}

// Readiness godoc
// @Summary      Readiness probe
// @Description  Проверка готовности сервиса (хранилище, журнал в Postgres, Redis)
// @Tags         health
// @Produce      json
// @Success      200  {object}  domain.APIEnvelope{data=string}
// @Failure      500  {object}  domain.APIEnvelope
// @Router       /v1/readyz [get]
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	const op = "health.readiness"
	reqID := mw.RequestIDFromCtx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := []struct {
		name string
		p    Pinger
	}{
		{"storage", h.Storage},
		{"manifest", h.Manifest},
		{"cache", h.Cache},
	}
	for _, c := range checks {
		if c.p == nil {
			continue
		}
		if err := c.p.Ping(ctx); err != nil {
			logx.Error(h.Log, reqID, op, c.name+" ping failed", err)
			v1.WriteDomainError(w, r, domain.ErrStorageUnavailable)
			return
		}
	}

	logx.Info(h.Log, reqID, op, "ready")
	v1.WriteOKData(w, r, "ready")
}
