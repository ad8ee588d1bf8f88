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

// TextbookHandler wires the teacher-facing textbook and chapter routes.
type TextbookHandler struct {
	service service.TextbookService
	logger  zerolog.Logger
}

// NewTextbookHandler constructs the handler.
func NewTextbookHandler(service service.TextbookService, logger zerolog.Logger) *TextbookHandler {
	return &TextbookHandler{
		service: service,
		logger:  logger.With().Str("component", "textbook_handler").Logger(),
	}
}

// Register attaches textbook endpoints to the router group.
func (h *TextbookHandler) Register(router fiber.Router) {
	router.Get("", h.listMine)
	router.Post("", h.create)
	router.Get("/:id/chapters", h.listChapters)
	router.Post("/:id/chapters", h.addChapter)
}

func (h *TextbookHandler) create(c *fiber.Ctx) error {
	creatorID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.TextbookCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	textbook, err := h.service.Create(c.Context(), creatorID, middleware.CurrentUserName(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "textbook created", textbook)
}

func (h *TextbookHandler) listMine(c *fiber.Ctx) error {
	creatorID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	textbooks, err := h.service.ListMine(c.Context(), creatorID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "textbooks retrieved", textbooks)
}

func (h *TextbookHandler) addChapter(c *fiber.Ctx) error {
	creatorID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	textbookID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ChapterCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	chapter, err := h.service.AddChapter(c.Context(), creatorID, textbookID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "chapter added", chapter)
}

func (h *TextbookHandler) listChapters(c *fiber.Ctx) error {
	creatorID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	textbookID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	chapters, err := h.service.ListChapters(c.Context(), creatorID, textbookID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "chapters retrieved", chapters)
}

func (h *TextbookHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrTextbookNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "textbook not found")
	case errors.Is(err, service.ErrTextbookForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "textbook belongs to another teacher")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
