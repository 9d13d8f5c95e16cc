package ph

import (
	"net/http"

	"github.com/AndreyATC/ph-monitor/internal/modules/ph/controller"
	"github.com/AndreyATC/ph-monitor/internal/modules/ph/service"
)

func RegisterFeature(mux *http.ServeMux, fetcher *service.Fetcher, opts controller.Options) {
	phController := controller.NewPHController(fetcher, opts)
	phController.RegisterRoutes(mux)
}
