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

// ExerciseHandler wires the answer submission and grading result routes.
type ExerciseHandler struct {
	service service.ExerciseGradingService
	logger  zerolog.Logger
}

// NewExerciseHandler constructs the handler.
func NewExerciseHandler(service service.ExerciseGradingService, logger zerolog.Logger) *ExerciseHandler {
	return &ExerciseHandler{
		service: service,
		logger:  logger.With().Str("component", "exercise_handler").Logger(),
	}
}

// Register attaches the grading pipeline endpoints to the router group.
func (h *ExerciseHandler) Register(router fiber.Router) {
	router.Post("/submit-answer", h.submit)
	router.Get("/result/:questionId", h.result)
	router.Get("/results/:exerciseSetId", h.setResults)
}

// RegisterSets attaches the batch submission and chapter-scoped result
// endpoints mounted on the student exercise set surface.
func (h *ExerciseHandler) RegisterSets(router fiber.Router) {
	router.Post("/:setId/chapters/:chapterId/answers", h.submitChapterBatch)
	router.Post("/:setId/direct/answers", h.submitDirectBatch)
	router.Get("/:setId/chapters/:chapterId/results", h.chapterResults)
}

func (h *ExerciseHandler) submit(c *fiber.Ctx) error {
	studentID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.SubmitAnswerRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	answer, err := h.service.SubmitAnswer(c.Context(), studentID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "answer submitted", answer)
}

func (h *ExerciseHandler) submitChapterBatch(c *fiber.Ctx) error {
	chapterID, err := parseUintParam(c, "chapterId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	return h.submitBatch(c, &chapterID)
}

func (h *ExerciseHandler) submitDirectBatch(c *fiber.Ctx) error {
	return h.submitBatch(c, nil)
}

func (h *ExerciseHandler) submitBatch(c *fiber.Ctx, chapterID *uint) error {
	studentID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	setID, err := parseUintParam(c, "setId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var items []dto.BatchAnswerItem
	if err := c.BodyParser(&items); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	answers, err := h.service.SubmitBatch(c.Context(), studentID, setID, chapterID, items)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "answers submitted", answers)
}

func (h *ExerciseHandler) chapterResults(c *fiber.Ctx) error {
	studentID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	setID, err := parseUintParam(c, "setId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	chapterID, err := parseUintParam(c, "chapterId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	results, err := h.service.GetSetResults(c.Context(), studentID, setID, &chapterID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "grading results retrieved", results)
}

func (h *ExerciseHandler) result(c *fiber.Ctx) error {
	studentID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	questionID, err := parseUintParam(c, "questionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	answer, err := h.service.GetResult(c.Context(), studentID, questionID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "grading result retrieved", answer)
}

func (h *ExerciseHandler) setResults(c *fiber.Ctx) error {
	studentID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	setID, err := parseUintParam(c, "exerciseSetId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	results, err := h.service.GetSetResults(c.Context(), studentID, setID, nil)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "grading results retrieved", results)
}

func (h *ExerciseHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrQuestionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "question not found")
	case errors.Is(err, service.ErrAnswerNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "answer not found")
	case errors.Is(err, service.ErrQuestionNotInSet):
		return utils.SendError(c, fiber.StatusBadRequest, "question does not belong to the exercise set")
	case errors.Is(err, service.ErrExerciseSetNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "exercise set not found")
	case errors.Is(err, service.ErrExerciseSetNotPublished):
		return utils.SendError(c, fiber.StatusBadRequest, "exercise set is not published")
	case errors.Is(err, service.ErrEmptyBatch):
		return utils.SendError(c, fiber.StatusBadRequest, "batch contains no answers")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
