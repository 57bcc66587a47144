package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/familyflow/familyflow-api/internal/dto"
	"github.com/familyflow/familyflow-api/internal/service"
	"github.com/familyflow/familyflow-api/internal/utils"
)

// AssistantHandler exposes the household assistant chat endpoint.
type AssistantHandler struct {
	service service.AssistantService
	logger  zerolog.Logger
}

// NewAssistantHandler constructs the handler.
func NewAssistantHandler(svc service.AssistantService, logger zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{
		service: svc,
		logger:  logger.With().Str("component", "assistant_handler").Logger(),
	}
}

// Register attaches the assistant endpoint to the router group.
func (h *AssistantHandler) Register(router fiber.Router) {
	router.Post("/chat", h.chat)
}

func (h *AssistantHandler) chat(c *fiber.Ctx) error {
	var payload dto.AssistantChatRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if payload.FamilyID == "" {
		payload.FamilyID = familyIDFromContext(c)
	}

	response, err := h.service.Chat(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("assistant chat failed")
		return utils.SendError(c, fiber.StatusBadGateway, "assistant unavailable")
	}

	return utils.SendSuccess(c, "assistant replied", response)
}
