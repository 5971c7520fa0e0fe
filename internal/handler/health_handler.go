package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/survey-go-api/internal/config"
	"github.com/noah-isme/survey-go-api/internal/utils"
)

const healthProbeTimeout = 2 * time.Second

// HealthProbe checks one backing dependency. Optional probes only degrade the report.
type HealthProbe struct {
	Name     string
	Optional bool
	Check    func(ctx context.Context) error
}

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Service     string            `json:"service"`
	Environment string            `json:"environment"`
	Components  map[string]string `json:"components,omitempty"`
}

// HealthCheck reports service identity and the state of each probe. A failing
// required probe turns the response into a 503.
func HealthCheck(cfg config.Config, probes ...HealthProbe) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		}

		if len(probes) > 0 {
			payload.Components = make(map[string]string, len(probes))
		}
		for _, probe := range probes {
			ctx, cancel := context.WithTimeout(c.UserContext(), healthProbeTimeout)
			err := probe.Check(ctx)
			cancel()

			if err == nil {
				payload.Components[probe.Name] = "up"
				continue
			}
			payload.Components[probe.Name] = "down"
			switch {
			case !probe.Optional:
				payload.Status = "unavailable"
			case payload.Status == "ok":
				payload.Status = "degraded"
			}
		}

		if payload.Status == "unavailable" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(utils.APIResponse{
				Success: false,
				Message: "service unavailable",
				Data:    payload,
			})
		}
		return utils.SendSuccess(c, "service healthy", payload)
	}
}
