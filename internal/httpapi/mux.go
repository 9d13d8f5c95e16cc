package httpapi

import (
	"net/http"

	"github.com/AndreyATC/ph-monitor/internal/metrics"
)

func NewMux(store Pinger) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, store)
	mux.Handle("GET /metrics", metrics.Handler())
	return mux
}
