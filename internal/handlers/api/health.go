package api

import (
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// HealthHandler reports service and database liveness.
type HealthHandler struct {
	store Datastore
	log   *logrus.Entry
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(store Datastore, log *logrus.Entry) *HealthHandler {
	return &HealthHandler{store: store, log: log}
}

// Check pings the database and reports overall health.
func (h *HealthHandler) Check(c fiber.Ctx) error {
	if err := h.store.Ping(c.Context()); err != nil {
		h.log.WithError(err).Error("health check failed")
		return jsonError(c, fiber.StatusInternalServerError, "database unreachable")
	}
	return jsonSuccess(c, fiber.Map{"healthy": true})
}
