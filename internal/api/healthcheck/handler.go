package healthcheck

import (
	"context"
	"time"

	"deep-research/config"
	"deep-research/pkg/apperror"

	"github.com/gofiber/fiber/v3"
)

// Pinger checks one dependency.
type Pinger func(ctx context.Context) error

// Handler serves dependency checks. A nil pinger means the dependency is not
// used by the configured backend.
type Handler struct {
	database Pinger
	s3       Pinger
	timeout  time.Duration
}

func NewHandler(database, s3 Pinger) *Handler {
	return &Handler{database: database, s3: s3, timeout: 2 * time.Second}
}

func ApiHealthCheck(c fiber.Ctx) error {
	return c.SendString("ok")
}

func (h *Handler) DatabaseHealthCheck(c fiber.Ctx) error {
	return h.check(c, config.ModuleDatabase, h.database)
}

func (h *Handler) S3HealthCheck(c fiber.Ctx) error {
	return h.check(c, config.ModuleS3, h.s3)
}

func (h *Handler) check(c fiber.Ctx, module config.Module, ping Pinger) error {
	if ping == nil {
		return c.SendString("disabled")
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	if err := ping(ctx); err != nil {
		return apperror.InternalError(module, c, err)
	}
	return c.SendString("ok")
}
