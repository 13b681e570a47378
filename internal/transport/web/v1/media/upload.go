package media

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/EgorLis/my-videos/internal/domain"
	"github.com/EgorLis/my-videos/internal/transport/web/logx"
	"github.com/EgorLis/my-videos/internal/transport/web/mw"
	v1 "github.com/EgorLis/my-videos/internal/transport/web/v1"
)

// Upload godoc
// @Summary     Upload media file
// @Description Принимает multipart/form-data с полем file и потоково пишет его в хранилище.
// @Tags        media
// @Accept      multipart/form-data
// @Produce     json
// @Param       file  formData  file  true  "Медиафайл"
// @Success     200   {object}  domain.UploadResult
// @Failure     400   {object}  domain.APIEnvelope  "invalid multipart | missing file"
// @Failure     413   {object}  domain.APIEnvelope
// @Failure     500   {object}  domain.APIEnvelope  "storage failure"
// @Router      /upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	const op = "media.upload"
	reqID := mw.RequestIDFromCtx(r.Context())

	// multipart читаем потоком: файл не буферизуется целиком ни в памяти, ни во временной директории
	mr, err := r.MultipartReader()
	if err != nil {
		logx.Error(h.Log, reqID, op, "not multipart", err)
		v1.WriteDomainError(w, r, fmt.Errorf("%w: invalid multipart", domain.ErrBadParams))
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logx.Error(h.Log, reqID, op, "next part", err)
			v1.WriteDomainError(w, r, uploadErr(err))
			return
		}
		if part.FormName() != "file" || part.FileName() == "" {
			_ = part.Close()
			continue
		}

		name := part.FileName()
		obj, err := h.Media.Upload(r.Context(), part, name)
		_ = part.Close()
		if err != nil {
			logx.Error(h.Log, reqID, op, "store failed", err, "name", name)
			v1.WriteDomainError(w, r, uploadErr(err))
			return
		}

		logx.Info(h.Log, reqID, op, "file received", "id", obj.ID, "name", name, "size", obj.SizeBytes)
		v1.WriteJSON(w, http.StatusOK, domain.UploadResult{
			Message: "File uploaded successfully!",
			File:    fileResult(obj, name),
		})
		return
	}

	logx.Error(h.Log, reqID, op, "missing file", domain.ErrBadParams)
	v1.WriteDomainError(w, r, fmt.Errorf("%w: missing file", domain.ErrBadParams))
}

func uploadErr(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return fmt.Errorf("%w: limit %d bytes", domain.ErrTooLarge, mbe.Limit)
	}
	if errors.Is(err, domain.ErrStorageWrite) || errors.Is(err, domain.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrBadParams, err)
}
