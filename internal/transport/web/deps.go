package web

import (
	"github.com/EgorLis/my-videos/internal/transport/web/v1/health"
	"github.com/EgorLis/my-videos/internal/transport/web/v1/media"
	"github.com/prometheus/client_golang/prometheus"
)

// Deps — всё, что серверу нужно снаружи. Manifest, Cache и Metrics опциональны.
type Deps struct {
	Media    media.Service
	Streamer media.Streamer
	Metrics  media.Observer
	Registry prometheus.Gatherer

	Storage  health.Pinger
	Manifest health.Pinger
	Cache    health.Pinger
}
