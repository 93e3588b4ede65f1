package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/crowdqueue/crowdqueue/internal/config"
	"github.com/crowdqueue/crowdqueue/internal/services"
)

// HealthHandler reports service health
type HealthHandler struct {
	Cfg *config.Config
	DB  *gorm.DB
	Log *logrus.Logger
}

// GetHealth handles GET /api/health
// @Summary Service health
// @Description Checks the database, the external downloader binary and the search provider. Only a database failure is reported as unhealthy.
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	result := services.HealthCheck(h.Cfg, h.DB, h.Log)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
