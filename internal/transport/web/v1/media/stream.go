package media

import (
	"errors"
	"mime"
	"net/http"

	"github.com/EgorLis/my-videos/internal/domain"
	"github.com/EgorLis/my-videos/internal/transport/web/logx"
	"github.com/EgorLis/my-videos/internal/transport/web/mw"
	v1 "github.com/EgorLis/my-videos/internal/transport/web/v1"
)

// Latest godoc
// @Summary     Stream the latest uploaded video
// @Description Отдаёт самый свежий объект; поддерживает Range: bytes=A-B, bytes=A-, bytes=-N.
// @Tags        media
// @Produce     video/webm
// @Param       Range  header  string  false  "bytes=<start>-<end>"
// @Success     200  {file}    []byte  "весь объект"
// @Success     206  {file}    []byte  "диапазон"
// @Failure     400  {object}  domain.APIEnvelope  "malformed range"
// @Failure     404  {object}  domain.APIEnvelope  "no videos"
// @Failure     416  {object}  domain.APIEnvelope
// @Router      /get-latest-video [get]
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	const op = "media.latest"
	reqID := mw.RequestIDFromCtx(r.Context())

	obj, err := h.Media.Latest(r.Context())
	if err != nil {
		logx.Error(h.Log, reqID, op, "resolve latest failed", err)
		h.reject(w, r, err)
		return
	}
	h.serve(w, r, op, obj.ID, h.ContentType)
}

// File godoc
// @Summary     Stream a stored file by name
// @Tags        media
// @Param       filename  path    string  true   "<id><ext>"
// @Param       Range     header  string  false  "bytes=<start>-<end>"
// @Success     200  {file}  []byte
// @Success     206  {file}  []byte
// @Failure     404  {object}  domain.APIEnvelope
// @Failure     416  {object}  domain.APIEnvelope
// @Router      /uploads/{filename} [get]
func (h *Handler) File(w http.ResponseWriter, r *http.Request) {
	const op = "media.file"
	id, ext := domain.SplitFilename(r.PathValue("filename"))

	ct := h.ContentType
	if ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			ct = byExt
		}
	}
	h.serve(w, r, op, id, ct)
}

// serve: Stat -> разбор Range -> заголовки -> копирование окна.
// Ошибка после отправки заголовков рвёт соединение, а не отдаёт укороченное тело.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, op, id, contentType string) {
	ctx := r.Context()
	reqID := mw.RequestIDFromCtx(ctx)
	rangeHdr := r.Header.Get("Range")

	plan, err := h.Streamer.Prepare(ctx, id, rangeHdr)
	if err != nil {
		logx.Error(h.Log, reqID, op, "negotiate failed", err, "id", id, "range", rangeHdr)
		h.reject(w, r, err)
		return
	}

	plan.Apply(w.Header(), contentType)
	w.WriteHeader(plan.Status())
	if r.Method == http.MethodHead {
		h.record(plan.Status(), 0, outcomeComplete)
		return
	}

	n, err := h.Streamer.Copy(ctx, w, plan)
	if err != nil {
		h.record(plan.Status(), n, outcomeAborted)
		if ctx.Err() != nil {
			logx.Info(h.Log, reqID, op, "client went away", "id", id, "written", n, "want", plan.Window.Length())
			return
		}
		logx.Error(h.Log, reqID, op, "stream aborted", err, "id", id, "written", n, "want", plan.Window.Length())
		panic(http.ErrAbortHandler)
	}
	h.record(plan.Status(), n, outcomeComplete)

	if plan.Window.Partial {
		logx.Info(h.Log, reqID, op, "partial content", "id", id, "range", plan.Window.ContentRange(), "len", n)
	} else {
		logx.Info(h.Log, reqID, op, "full content", "id", id, "len", n)
	}
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request, err error) {
	status, _ := v1.MapDomainError(err)
	h.record(status, 0, outcomeRejected)
	if errors.Is(err, domain.ErrRangeNotSatisfiable) {
		w.Header().Set("Accept-Ranges", "bytes")
	}
	v1.WriteDomainError(w, r, err)
}
