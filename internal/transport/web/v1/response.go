package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/EgorLis/my-videos/internal/domain"
	"github.com/EgorLis/my-videos/internal/stream"
	"github.com/EgorLis/my-videos/internal/transport/web/mw"
)

// MapDomainError решает HTTP-статус + error.code/text для конверта
func MapDomainError(err error) (httpStatus int, env domain.APIEnvelope) {
	switch {
	case errors.Is(err, domain.ErrBadParams):
		return http.StatusBadRequest, domain.Fail(domain.ErrCodeBadParams, "bad params")
	case errors.Is(err, domain.ErrMalformedRange):
		return http.StatusBadRequest, domain.Fail(domain.ErrCodeMalformedRange, "malformed range")
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, domain.Fail(domain.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, domain.Fail(domain.ErrCodeMethodNotAllowed, "method not allowed")
	case errors.Is(err, domain.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, domain.Fail(domain.ErrCodeTooLarge, "payload too large")
	case errors.Is(err, domain.ErrRangeNotSatisfiable), errors.Is(err, domain.ErrRangeOutOfBounds):
		return http.StatusRequestedRangeNotSatisfiable, domain.Fail(domain.ErrCodeRangeNotSatisfy, "requested range not satisfiable")
	case errors.Is(err, domain.ErrStorageWrite), errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusInternalServerError, domain.Fail(domain.ErrCodeStorage, "storage failure")
	default:
		// Таймауты/отмены — как 500
		return http.StatusInternalServerError, domain.Fail(domain.ErrCodeUnexpected, "unexpected")
	}
}

// WriteEnvelope пишет конверт; для HEAD — без тела
func WriteEnvelope(w http.ResponseWriter, r *http.Request, status int, env domain.APIEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(mw.HeaderRequestID, mw.RequestIDFromCtx(r.Context()))
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(env)
}

// Шорткаты успеха
func WriteOKData(w http.ResponseWriter, r *http.Request, data any) {
	WriteEnvelope(w, r, http.StatusOK, domain.OkData(data))
}

// WriteJSON пишет значение как есть, без конверта
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteDomainError; для 416 добавляет "Content-Range: bytes */S"
func WriteDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var ure *domain.UnsatisfiableRangeError
	if errors.As(err, &ure) {
		stream.UnsatisfiableHeader(w.Header(), ure.Size)
	}
	status, env := MapDomainError(err)
	WriteEnvelope(w, r, status, env)
}
