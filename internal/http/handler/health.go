package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"ocrweb/internal/pipeline"
	"ocrweb/internal/repository"
)

// HealthStatus is the body of a healthy /health response.
type HealthStatus struct {
	Status          string `json:"status" example:"healthy"`
	Ledger          string `json:"ledger" example:"ok"`
	Engine          string `json:"engine" example:"tesseract"`
	EngineAvailable bool   `json:"engine_available"`
}

// HealthCheck reports ledger connectivity and engine availability.
// A missing engine is reported but does not make the service unhealthy;
// a failing ledger does.
//
// @Summary  Readiness check
// @Tags     health
// @Produce  json
// @Success  200  {object}  HealthStatus
// @Failure  503  {object}  errorPayload
// @Router   /health [get]
func HealthCheck(ledger repository.UploadRepository, rec pipeline.Recognizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := HealthStatus{Status: "healthy", Ledger: "disabled", Engine: "none"}
		if rec != nil {
			res.Engine = rec.EngineName()
			res.EngineAvailable = rec.Available()
		}

		if ledger != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := ledger.Ping(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
			res.Ledger = "ok"
		}
		return c.Status(fiber.StatusOK).JSON(res)
	}
}

// LivenessProbe answers 200 while the process is serving.
//
// @Summary  Liveness probe
// @Tags     health
// @Success  200
// @Router   /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
