package httpapi

import (
	"net/http"
	"time"

	"github.com/AndreyATC/ph-monitor/internal/config"
)

func NewServer(cfg config.Config, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
