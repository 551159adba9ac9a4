// Package kernel assembles the storefront's HTTP handler: global
// middleware, the metrics endpoint and the API routes.
package kernel

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

// NewRouter builds the router with every route registered.
func NewRouter(c routes.Controllers) *router.Router {
	r := router.New()

	// Outermost first: metrics sees total latency, recovery catches panics
	// before anything else runs, and the request id exists before logging.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(config.RateLimit(), time.Minute, config.TrustedProxies()...))

	r.Get("/metrics", "metrics", metrics.Handler())

	routes.RegisterAPI(r, c)
	return r
}

// NewHTTPKernel returns the finished handler.
func NewHTTPKernel(c routes.Controllers) http.Handler {
	return NewRouter(c).Handler()
}
