package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/recruiter-assistant/internal/models"
	"alfredoptarigan/recruiter-assistant/internal/services"
)

const serviceName = "WhatsApp Recruiter Assistant"

type HealthHandler struct {
	gateway services.WhatsAppGateway
}

func NewHealthHandler(gateway services.WhatsAppGateway) *HealthHandler {
	return &HealthHandler{gateway: gateway}
}

func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(models.HealthResponse{Status: "healthy", Service: serviceName})
}

// HandleDetailedHealth also reports the WhatsApp session. A disconnected gateway degrades
// the status but still answers 200.
func (h *HealthHandler) HandleDetailedHealth(c *fiber.Ctx) error {
	resp := models.HealthResponse{Status: "healthy", Service: serviceName}

	status, err := h.gateway.SessionStatus(c.UserContext())
	switch {
	case err != nil:
		resp.Status = "degraded"
		resp.Gateway = "unreachable"
	case !status.Connected():
		resp.Status = "degraded"
		resp.Gateway = status.Status
	default:
		resp.Gateway = status.Status
	}

	return c.JSON(resp)
}
