package mw

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey string

const reqIDKey ctxKey = "req_id"

const HeaderRequestID = "X-Request-ID"

// WithRequestID берёт X-Request-ID клиента или выдаёт новый uuid.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		ctx := context.WithValue(r.Context(), reqIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(reqIDKey).(string)
	return id
}
