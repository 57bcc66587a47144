package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/familyflow/familyflow-api/internal/dto"
	"github.com/familyflow/familyflow-api/internal/repository"
	"github.com/familyflow/familyflow-api/internal/service"
	"github.com/familyflow/familyflow-api/internal/utils"
)

// AssignmentHandler wires assignment HTTP routes, including completion.
type AssignmentHandler struct {
	service    service.AssignmentService
	completion service.CompletionService
	dashboard  service.DashboardService
	logger     zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(svc service.AssignmentService, completion service.CompletionService, dashboard service.DashboardService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service:    svc,
		completion: completion,
		dashboard:  dashboard,
		logger:     logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment endpoints to the router group.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/complete", h.complete)
	router.Post("/:id/uncomplete", h.uncomplete)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	filter := repository.AssignmentFilter{
		FamilyID: familyIDFromContext(c),
		DueDate:  c.Query("due_date"),
		Search:   c.Query("search"),
	}

	var err error
	if filter.StudentID, err = parseQueryUint(c, "student_id"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student_id")
	}
	if filter.SubjectID, err = parseQueryUint(c, "subject_id"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid subject_id")
	}
	if filter.Completed, err = parseQueryBool(c, "completed"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid completed flag")
	}
	if filter.Page, err = parseQueryInt(c, "page"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	if filter.PageSize, err = parseQueryInt(c, "page_size"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	assignments, total, err := h.service.List(c.Context(), filter)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", fiber.Map{
		"assignments": assignments,
		"total":       total,
	})
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	assignment, err := h.service.Create(c.Context(), payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	h.dashboard.Invalidate(c.Context(), assignment.StudentID)
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment created", assignment)
}

func (h *AssignmentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AssignmentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	assignment, err := h.service.Update(c.Context(), id, payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	h.dashboard.Invalidate(c.Context(), assignment.StudentID)
	return utils.SendSuccess(c, "assignment updated", assignment)
}

func (h *AssignmentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment deleted", fiber.Map{"id": id})
}

func (h *AssignmentHandler) complete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.CompleteRequest{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	result, err := h.completion.Complete(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	h.dashboard.Invalidate(c.Context(), result.Assignment.StudentID)
	return utils.SendSuccess(c, "assignment completed", result)
}

func (h *AssignmentHandler) uncomplete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.completion.Uncomplete(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	h.dashboard.Invalidate(c.Context(), assignment.StudentID)
	return utils.SendSuccess(c, "assignment completion reversed", assignment)
}

func (h *AssignmentHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrSubjectNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "subject not found")
	case errors.Is(err, service.ErrUnsupportedAttachment):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, "unsupported attachment type")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *AssignmentHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
