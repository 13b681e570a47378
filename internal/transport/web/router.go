package web

import (
	"net/http"

	"github.com/EgorLis/my-videos/internal/config"
	"github.com/EgorLis/my-videos/internal/transport/web/mw"
	"github.com/EgorLis/my-videos/internal/transport/web/v1/health"
	"github.com/EgorLis/my-videos/internal/transport/web/v1/media"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func newRouter(cfg *config.Config, hh *health.Handler, mh *media.Handler, reg prometheus.Gatherer, logger *zap.SugaredLogger) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /v1/healthz", hh.Liveness)
	mux.HandleFunc("GET /v1/readyz", hh.Readiness)

	// media (GET-шаблоны обслуживают и HEAD)
	mux.HandleFunc("POST /upload", limitBody(cfg.UploadMaxBytes, mh.Upload))
	mux.HandleFunc("GET /get-latest-video", mh.Latest)
	mux.HandleFunc("GET /uploads/{filename}", mh.File)
	mux.HandleFunc("GET /videos", mh.List)

	// metrics
	if reg != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	// 🔗 middleware
	return mw.WithRequestID(mw.Logging(logger.Named("http"))(mw.CORS(cfg.CORSOrigin)(mux)))
}

func limitBody(n int64, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if n > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, n)
		}
		h(w, r)
	}
}
