package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ChenBaiWa/studentSystem/internal/dto"
	"github.com/ChenBaiWa/studentSystem/internal/middleware"
	"github.com/ChenBaiWa/studentSystem/internal/service"
	"github.com/ChenBaiWa/studentSystem/internal/utils"
)

// StudentAssignmentHandler wires the student-facing assignment routes.
type StudentAssignmentHandler struct {
	service service.StudentAssignmentService
	logger  zerolog.Logger
}

// NewStudentAssignmentHandler constructs the handler.
func NewStudentAssignmentHandler(service service.StudentAssignmentService, logger zerolog.Logger) *StudentAssignmentHandler {
	return &StudentAssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_assignment_handler").Logger(),
	}
}

// Register attaches student assignment endpoints to the router group.
func (h *StudentAssignmentHandler) Register(router fiber.Router) {
	router.Get("", h.overview)
	router.Post("/submit", h.submit)
	router.Get("/:id", h.detail)
}

func (h *StudentAssignmentHandler) overview(c *fiber.Ctx) error {
	studentID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	buckets, err := h.service.ListBuckets(c.Context(), studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", buckets)
}

func (h *StudentAssignmentHandler) submit(c *fiber.Ctx) error {
	studentID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.SubmitAssignmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Submit(c.Context(), studentID, middleware.CurrentUserName(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment submitted", submission)
}

func (h *StudentAssignmentHandler) detail(c *fiber.Ctx) error {
	studentID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	detail, err := h.service.GetDetail(c.Context(), studentID, submissionID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission retrieved", detail)
}

func (h *StudentAssignmentHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrSubmissionForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "submission belongs to another student")
	case errors.Is(err, service.ErrAlreadySubmitted):
		return utils.SendError(c, fiber.StatusConflict, "assignment already submitted")
	case errors.Is(err, service.ErrDeadlinePassed):
		return utils.SendError(c, fiber.StatusBadRequest, "assignment deadline has passed")
	case errors.Is(err, service.ErrNotClassMember):
		return utils.SendError(c, fiber.StatusForbidden, "not a member of the assignment's class")
	case errors.Is(err, service.ErrEmptySubmissionImage):
		return utils.SendError(c, fiber.StatusBadRequest, "submission contains no image references")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
