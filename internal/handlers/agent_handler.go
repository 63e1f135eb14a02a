package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/recruiter-assistant/internal/logger"
	"alfredoptarigan/recruiter-assistant/internal/models"
	"alfredoptarigan/recruiter-assistant/internal/services"
)

const (
	agentTestPhone   = "51987654321"
	agentTestMessage = "Hola, me interesa el puesto de asesor de ventas"
)

type AgentHandler struct {
	agent services.Agent
	log   *zap.Logger
}

func NewAgentHandler(agent services.Agent, log *zap.Logger) *AgentHandler {
	return &AgentHandler{
		agent: agent,
		log:   logger.OrNop(log).Named("agent_test"),
	}
}

// HandleTestAgent runs the agent on a canned message without going through WhatsApp.
func (h *AgentHandler) HandleTestAgent(c *fiber.Ctx) error {
	answer, err := h.agent.Respond(c.UserContext(), services.AgentRequest{
		Phone:   agentTestPhone,
		Message: agentTestMessage,
	})
	if err != nil {
		h.log.Error("agent test failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(models.AgentTestResponse{
			Status:     "error",
			Message:    "Error en test del agente",
			ToolsCount: h.agent.ToolCount(),
		})
	}

	return c.JSON(models.AgentTestResponse{
		Status:        "success",
		Message:       "Test del agente completado",
		AgentResponse: answer,
		ToolsCount:    h.agent.ToolCount(),
	})
}
