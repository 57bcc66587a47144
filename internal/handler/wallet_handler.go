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

// WalletHandler wires wallet routes under the student resource.
type WalletHandler struct {
	service   service.WalletService
	dashboard service.DashboardService
	logger    zerolog.Logger
}

// NewWalletHandler constructs the handler.
func NewWalletHandler(svc service.WalletService, dashboard service.DashboardService, logger zerolog.Logger) *WalletHandler {
	return &WalletHandler{
		service:   svc,
		dashboard: dashboard,
		logger:    logger.With().Str("component", "wallet_handler").Logger(),
	}
}

// Register attaches wallet endpoints to the student router group.
func (h *WalletHandler) Register(router fiber.Router) {
	router.Get("/:id/wallet", h.wallet)
	router.Get("/:id/wallet/transactions", h.transactions)
	router.Post("/:id/wallet/adjust", h.adjust)
	router.Post("/:id/wallet/allocate", h.allocate)
	router.Post("/:id/wallet/redeem/:rewardId", h.redeem)
	router.Post("/:id/wallet/contribute/:groupRewardId", h.contribute)
}

func (h *WalletHandler) wallet(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	wallet, err := h.service.Wallet(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "wallet retrieved", wallet)
}

func (h *WalletHandler) transactions(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	transactions, err := h.service.Transactions(c.Context(), id, limit)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "transactions retrieved", transactions)
}

func (h *WalletHandler) adjust(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.WalletAdjustRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	wallet, err := h.service.Adjust(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	h.dashboard.Invalidate(c.Context(), id)
	return utils.SendSuccess(c, "wallet adjusted", wallet)
}

func (h *WalletHandler) allocate(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.WalletAllocateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	wallet, err := h.service.Allocate(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	h.dashboard.Invalidate(c.Context(), id)
	return utils.SendSuccess(c, "allocation updated", wallet)
}

func (h *WalletHandler) redeem(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	rewardID, err := parseUintParam(c, "rewardId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	claim, err := h.service.Redeem(c.Context(), id, rewardID)
	if err != nil {
		return h.handleError(c, err)
	}

	h.dashboard.Invalidate(c.Context(), id)
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "reward redeemed", claim)
}

func (h *WalletHandler) contribute(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	groupRewardID, err := parseUintParam(c, "groupRewardId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GroupContributeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	goal, err := h.service.Contribute(c.Context(), id, groupRewardID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	h.dashboard.Invalidate(c.Context(), id)
	return utils.SendSuccess(c, "contribution recorded", goal)
}

func (h *WalletHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	var insufficient *service.InsufficientBalanceError
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrRewardNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "reward not found")
	case errors.Is(err, service.ErrGroupRewardNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "group reward not found")
	case errors.Is(err, service.ErrRewardInactive):
		return utils.SendError(c, fiber.StatusConflict, "reward is not active")
	case errors.Is(err, service.ErrRewardNotVisible):
		return utils.SendError(c, fiber.StatusForbidden, "reward not available to this student")
	case errors.Is(err, service.ErrGroupRewardRedeemed):
		return utils.SendError(c, fiber.StatusConflict, "group reward already redeemed")
	case errors.Is(err, service.ErrInvalidAmount):
		return utils.SendError(c, fiber.StatusBadRequest, "amount must be positive")
	case errors.As(err, &insufficient):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, insufficient.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *WalletHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
