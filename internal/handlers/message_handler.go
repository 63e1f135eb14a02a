package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/recruiter-assistant/internal/logger"
	"alfredoptarigan/recruiter-assistant/internal/models"
	"alfredoptarigan/recruiter-assistant/internal/services"
)

type MessageHandler struct {
	gateway services.WhatsAppGateway
	log     *zap.Logger
}

func NewMessageHandler(gateway services.WhatsAppGateway, log *zap.Logger) *MessageHandler {
	return &MessageHandler{
		gateway: gateway,
		log:     logger.OrNop(log).Named("message"),
	}
}

// HandleSendMessage sends a manual message. Bare phone numbers are turned into chat ids.
func (h *MessageHandler) HandleSendMessage(c *fiber.Ctx) error {
	var req models.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.StatusResponse{
			Status:  "error",
			Message: "Cuerpo de la petición inválido",
		})
	}

	if strings.TrimSpace(req.ChatID) == "" || strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.StatusResponse{
			Status:  "error",
			Message: "chat_id y message son requeridos",
		})
	}

	chatID := services.FormatPhoneNumber(req.ChatID)
	if err := h.gateway.SendText(c.UserContext(), chatID, req.Message); err != nil {
		h.log.Error("manual send failed", zap.String("chat_id", chatID), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(models.StatusResponse{
			Status:  "error",
			Message: "No se pudo enviar el mensaje",
		})
	}

	return c.JSON(models.StatusResponse{Status: "success", Message: "Mensaje enviado"})
}
