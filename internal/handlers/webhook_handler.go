package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/recruiter-assistant/internal/logger"
	"alfredoptarigan/recruiter-assistant/internal/models"
	"alfredoptarigan/recruiter-assistant/internal/services"
)

type WebhookHandler struct {
	router services.ConversationRouter
	log    *zap.Logger
}

func NewWebhookHandler(router services.ConversationRouter, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		router: router,
		log:    logger.OrNop(log).Named("webhook"),
	}
}

// HandleWebhook receives gateway deliveries. Every handled outcome, including dropped
// duplicates, answers 200.
func (h *WebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	var event models.WebhookEvent
	if err := c.BodyParser(&event); err != nil {
		h.log.Warn("malformed webhook body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(models.StatusResponse{
			Status:  "error",
			Message: "Datos inválidos",
		})
	}

	inbound, err := event.ToInboundEvent()
	if err != nil {
		h.log.Warn("malformed webhook payload", zap.String("event", event.Event), zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(models.StatusResponse{
			Status:  "error",
			Message: "Datos inválidos: falta payload o chat id",
		})
	}

	outcome, err := h.router.Route(c.UserContext(), inbound)
	if err != nil {
		h.log.Error("failed to route message", append(logger.ChatFields(inbound.ChatID, inbound.MessageID), zap.Error(err))...)
		return c.Status(fiber.StatusInternalServerError).JSON(models.StatusResponse{
			Status:  "error",
			Message: "Error interno",
		})
	}

	message := "Mensaje procesado"
	switch outcome {
	case services.RouteDuplicate:
		message = "Mensaje duplicado ignorado"
	case services.RouteIgnored:
		message = "Mensaje ignorado"
	}

	return c.JSON(models.StatusResponse{Status: "success", Message: message})
}
