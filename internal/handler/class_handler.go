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

// ClassHandler wires class management and the join flow.
type ClassHandler struct {
	service service.ClassService
	logger  zerolog.Logger
}

// NewClassHandler constructs the handler.
func NewClassHandler(service service.ClassService, logger zerolog.Logger) *ClassHandler {
	return &ClassHandler{
		service: service,
		logger:  logger.With().Str("component", "class_handler").Logger(),
	}
}

// RegisterTeacher attaches the teacher-facing class endpoints.
func (h *ClassHandler) RegisterTeacher(router fiber.Router) {
	router.Get("", h.listMine)
	router.Post("", h.create)
}

// RegisterStudent attaches the student-facing class endpoints.
func (h *ClassHandler) RegisterStudent(router fiber.Router) {
	router.Post("/join", h.join)
	router.Get("/joined", h.listJoined)
}

func (h *ClassHandler) create(c *fiber.Ctx) error {
	creatorID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.ClassCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	class, err := h.service.Create(c.Context(), creatorID, middleware.CurrentUserName(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "class created", class)
}

func (h *ClassHandler) listMine(c *fiber.Ctx) error {
	creatorID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	classes, err := h.service.ListMine(c.Context(), creatorID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "classes retrieved", classes)
}

func (h *ClassHandler) join(c *fiber.Ctx) error {
	studentID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.JoinClassRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	class, err := h.service.Join(c.Context(), studentID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "class joined", class)
}

func (h *ClassHandler) listJoined(c *fiber.Ctx) error {
	studentID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	classes, err := h.service.ListJoined(c.Context(), studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "classes retrieved", classes)
}

func (h *ClassHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrClassCodeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "class code not found")
	case errors.Is(err, service.ErrVerificationCodeInvalid):
		return utils.SendError(c, fiber.StatusBadRequest, "verification code does not match")
	case errors.Is(err, service.ErrAlreadyClassMember):
		return utils.SendError(c, fiber.StatusConflict, "already a member of this class")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
