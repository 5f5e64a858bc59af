package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"ocrweb/docs"
	"ocrweb/internal/pipeline"
	"ocrweb/internal/repository"
	"ocrweb/internal/service"
	"ocrweb/internal/view"
)

// Deps are the collaborators the routes are wired to.
// Ledger and Gatherer are optional.
type Deps struct {
	Service    service.ExtractionService
	View       *view.Renderer
	Recognizer pipeline.Recognizer
	Ledger     repository.UploadRepository
	Gatherer   prometheus.Gatherer

	MaxUploadBytes int
	// MediaRoot and MediaURL are only used in debug mode, where stored files
	// are served directly.
	MediaRoot string
	MediaURL  string
	Debug     bool
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	opts := FormOptions{MaxUploadBytes: d.MaxUploadBytes}

	app.Get("/", UploadForm(d.View, opts))
	app.Post("/", ProcessUpload(d.Service, d.View, opts))

	app.Get("/health", HealthCheck(d.Ledger, d.Recognizer))
	app.Get("/healthz", LivenessProbe())

	if d.Gatherer != nil {
		metrics := promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})
		app.Get("/metrics", adaptor.HTTPHandler(otelhttp.NewHandler(metrics, "metrics")))
	}

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	if d.Debug && d.MediaRoot != "" {
		prefix := "/" + strings.Trim(d.MediaURL, "/")
		app.Static(prefix, d.MediaRoot, fiber.Static{Browse: false})
	}
}
