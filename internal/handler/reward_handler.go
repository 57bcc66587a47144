package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/familyflow/familyflow-api/internal/dto"
	"github.com/familyflow/familyflow-api/internal/service"
	"github.com/familyflow/familyflow-api/internal/utils"
)

// RewardHandler wires reward catalog, claim and group reward routes.
type RewardHandler struct {
	service service.RewardService
	logger  zerolog.Logger
}

// NewRewardHandler constructs the handler.
func NewRewardHandler(svc service.RewardService, logger zerolog.Logger) *RewardHandler {
	return &RewardHandler{
		service: svc,
		logger:  logger.With().Str("component", "reward_handler").Logger(),
	}
}

// Register attaches reward endpoints to the router group.
func (h *RewardHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.deactivate)
	router.Delete("/:id/hard", h.hardDelete)
}

// RegisterClaims attaches claim endpoints to the router group.
func (h *RewardHandler) RegisterClaims(router fiber.Router) {
	router.Get("", h.listClaims)
	router.Post("/:id/fulfill", h.fulfillClaim)
}

// RegisterGroupRewards attaches shared goal endpoints to the router group.
func (h *RewardHandler) RegisterGroupRewards(router fiber.Router) {
	router.Get("", h.listGroupRewards)
	router.Post("", h.createGroupReward)
	router.Post("/:id/redeem", h.redeemGroupReward)
}

func (h *RewardHandler) list(c *fiber.Ctx) error {
	familyID := familyIDFromContext(c)
	if familyID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "family scope missing")
	}

	forStudent, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student_id")
	}

	rewards, err := h.service.List(c.Context(), familyID, forStudent)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "rewards retrieved", rewards)
}

func (h *RewardHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	reward, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "reward retrieved", reward)
}

func (h *RewardHandler) create(c *fiber.Ctx) error {
	var payload dto.RewardCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if payload.FamilyID == "" {
		payload.FamilyID = familyIDFromContext(c)
	}

	reward, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "reward created", reward)
}

func (h *RewardHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.RewardUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	reward, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "reward updated", reward)
}

func (h *RewardHandler) deactivate(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	reward, err := h.service.Deactivate(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "reward deactivated", reward)
}

func (h *RewardHandler) hardDelete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.HardDelete(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "reward deleted", fiber.Map{"id": id})
}

func (h *RewardHandler) listClaims(c *fiber.Ctx) error {
	familyID := familyIDFromContext(c)
	if familyID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "family scope missing")
	}

	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student_id")
	}

	claims, err := h.service.ListClaims(c.Context(), familyID, studentID)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "claims retrieved", claims)
}

func (h *RewardHandler) fulfillClaim(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	claim, err := h.service.FulfillClaim(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "claim fulfilled", claim)
}

func (h *RewardHandler) listGroupRewards(c *fiber.Ctx) error {
	familyID := familyIDFromContext(c)
	if familyID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "family scope missing")
	}

	goals, err := h.service.ListGroupRewards(c.Context(), familyID)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "group rewards retrieved", goals)
}

func (h *RewardHandler) createGroupReward(c *fiber.Ctx) error {
	var payload dto.GroupRewardCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if payload.FamilyID == "" {
		payload.FamilyID = familyIDFromContext(c)
	}

	goal, err := h.service.CreateGroupReward(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "group reward created", goal)
}

func (h *RewardHandler) redeemGroupReward(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	goal, err := h.service.RedeemGroupReward(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "group reward redeemed", goal)
}

func (h *RewardHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrRewardNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "reward not found")
	case errors.Is(err, service.ErrClaimNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "claim not found")
	case errors.Is(err, service.ErrGroupRewardNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "group reward not found")
	case errors.Is(err, service.ErrClaimFulfilled):
		return utils.SendError(c, fiber.StatusConflict, "claim already fulfilled")
	case errors.Is(err, service.ErrGroupRewardRedeemed):
		return utils.SendError(c, fiber.StatusConflict, "group reward already redeemed")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *RewardHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
