package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/registra-app/registra-backend/api/controllers"
	"github.com/registra-app/registra-backend/api/middleware"
	"github.com/registra-app/registra-backend/pkg/config"
	"github.com/registra-app/registra-backend/pkg/db"
	"github.com/registra-app/registra-backend/pkg/logger"
)

// RouterParams wire the HTTP surface.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Licenses controllers.LicenseService
	Purge    controllers.PurgeRunner
	Registry *prometheus.Registry
}

// NewRouter assembles the HTTP routes. The license endpoints stay outside
// the license gate; everything else under /api requires an active license.
func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.DB))
	})

	if params.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/license", func(r chi.Router) {
			r.Get("/", controllers.GetLicense(logg, params.Licenses))
			r.Post("/", controllers.ActivateLicense(logg, params.Licenses))
			r.Delete("/", controllers.DeactivateLicense(logg, params.Licenses))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.LicenseGate(logg, params.Licenses))
			r.Post("/admin/purge-inactive", controllers.PurgeInactive(logg, params.Purge))
		})
	})

	return r
}
