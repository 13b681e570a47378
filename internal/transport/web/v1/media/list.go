package media

import (
	"net/http"

	"github.com/EgorLis/my-videos/internal/domain"
	"github.com/EgorLis/my-videos/internal/transport/web/logx"
	"github.com/EgorLis/my-videos/internal/transport/web/mw"
	v1 "github.com/EgorLis/my-videos/internal/transport/web/v1"
)

// List godoc
// @Summary     List stored videos, newest first
// @Tags        media
// @Produce     json
// @Success     200  {object}  domain.APIEnvelope{data=object}
// @Failure     500  {object}  domain.APIEnvelope
// @Router      /videos [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "media.list"
	reqID := mw.RequestIDFromCtx(r.Context())

	objs, err := h.Media.List(r.Context())
	if err != nil {
		logx.Error(h.Log, reqID, op, "list failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	out := struct {
		Videos []domain.FileResult `json:"videos"`
	}{Videos: make([]domain.FileResult, 0, len(objs))}
	for _, o := range objs {
		out.Videos = append(out.Videos, fileResult(o, ""))
	}
	v1.WriteOKData(w, r, out)
}
