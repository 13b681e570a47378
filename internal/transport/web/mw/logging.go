package mw

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Logging — middleware: финиш запроса, статус, размер, длительность
func Logging(l *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := RequestIDFromCtx(r.Context())
			start := time.Now()

			mw := &metaWriter{ResponseWriter: w}

			defer func() {
				l.Infow("request",
					"req_id", reqID,
					"method", r.Method,
					"path", r.URL.Path,
					"range", r.Header.Get("Range"),
					"status", mw.statusCode(),
					"size", mw.size,
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}()
			next.ServeHTTP(mw, r)
		})
	}
}

// metaWriter запоминает статус и число записанных байт тела.
type metaWriter struct {
	http.ResponseWriter
	status int
	size   int64
}

func (m *metaWriter) WriteHeader(code int) {
	if m.status == 0 {
		m.status = code
	}
	m.ResponseWriter.WriteHeader(code)
}

func (m *metaWriter) Write(b []byte) (int, error) {
	if m.status == 0 {
		m.status = http.StatusOK
	}
	n, err := m.ResponseWriter.Write(b)
	m.size += int64(n)
	return n, err
}

func (m *metaWriter) statusCode() int {
	if m.status == 0 {
		return http.StatusOK
	}
	return m.status
}

// Unwrap отдаёт исходный writer для http.ResponseController.
func (m *metaWriter) Unwrap() http.ResponseWriter { return m.ResponseWriter }
