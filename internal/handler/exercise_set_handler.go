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

// ExerciseSetHandler wires exercise set authoring and browsing routes.
type ExerciseSetHandler struct {
	sets    service.ExerciseSetService
	imports service.QuestionImportService
	logger  zerolog.Logger
}

// NewExerciseSetHandler constructs the handler.
func NewExerciseSetHandler(sets service.ExerciseSetService, imports service.QuestionImportService, logger zerolog.Logger) *ExerciseSetHandler {
	return &ExerciseSetHandler{
		sets:    sets,
		imports: imports,
		logger:  logger.With().Str("component", "exercise_set_handler").Logger(),
	}
}

// RegisterTeacher attaches the authoring endpoints.
func (h *ExerciseSetHandler) RegisterTeacher(router fiber.Router) {
	router.Get("", h.listMine)
	router.Post("", h.create)
	router.Put("/:id/publish", h.publish)
	router.Get("/:id/questions", h.listQuestions)
	router.Post("/:id/questions", h.addQuestion)
	router.Post("/:id/import-questions", h.importQuestions)
}

// RegisterQuestions attaches the question endpoints that are addressed by
// question id alone.
func (h *ExerciseSetHandler) RegisterQuestions(router fiber.Router) {
	router.Delete("/:id", h.deleteQuestion)
}

// RegisterStudent attaches the browsing endpoints. Students only ever see
// published sets, with canonical answers stripped.
func (h *ExerciseSetHandler) RegisterStudent(router fiber.Router) {
	router.Get("", h.listPublished)
	router.Get("/:id/chapters", h.listChapters)
	router.Get("/:id/chapters/:chapterId/questions", h.listChapterQuestions)
	router.Get("/:id/direct", h.listDirectQuestions)
}

func (h *ExerciseSetHandler) create(c *fiber.Ctx) error {
	creatorID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.ExerciseSetCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	set, err := h.sets.Create(c.Context(), creatorID, middleware.CurrentUserName(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "exercise set created", set)
}

func (h *ExerciseSetHandler) listMine(c *fiber.Ctx) error {
	creatorID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	sets, err := h.sets.ListMine(c.Context(), creatorID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "exercise sets retrieved", sets)
}

func (h *ExerciseSetHandler) publish(c *fiber.Ctx) error {
	creatorID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	setID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	set, err := h.sets.Publish(c.Context(), creatorID, setID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "exercise set published", set)
}

func (h *ExerciseSetHandler) listQuestions(c *fiber.Ctx) error {
	creatorID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	setID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	questions, err := h.sets.ListQuestions(c.Context(), creatorID, setID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "questions retrieved", questions)
}

func (h *ExerciseSetHandler) addQuestion(c *fiber.Ctx) error {
	creatorID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	setID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.QuestionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	question, err := h.sets.AddQuestion(c.Context(), creatorID, setID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "question added", question)
}

func (h *ExerciseSetHandler) deleteQuestion(c *fiber.Ctx) error {
	creatorID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	questionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.sets.DeleteQuestion(c.Context(), creatorID, questionID); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "question deleted", fiber.Map{"id": questionID})
}

func (h *ExerciseSetHandler) importQuestions(c *fiber.Ctx) error {
	creatorID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	setID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ImportQuestionsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	questions, err := h.imports.Import(c.Context(), creatorID, setID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "questions imported", questions)
}

func (h *ExerciseSetHandler) listPublished(c *fiber.Ctx) error {
	sets, err := h.sets.ListPublished(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "exercise sets retrieved", sets)
}

func (h *ExerciseSetHandler) listChapters(c *fiber.Ctx) error {
	setID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	chapters, err := h.sets.ListChapters(c.Context(), setID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "chapters retrieved", chapters)
}

func (h *ExerciseSetHandler) listChapterQuestions(c *fiber.Ctx) error {
	setID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	// Chapter id zero selects the synthetic chapter of unassigned questions.
	chapterID, err := parseUintParam(c, "chapterId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	questions, err := h.sets.ListPublishedQuestions(c.Context(), setID, &chapterID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "questions retrieved", questions)
}

func (h *ExerciseSetHandler) listDirectQuestions(c *fiber.Ctx) error {
	setID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	questions, err := h.sets.ListPublishedQuestions(c.Context(), setID, nil)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "questions retrieved", questions)
}

func (h *ExerciseSetHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrExerciseSetNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "exercise set not found")
	case errors.Is(err, service.ErrExerciseSetForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "exercise set belongs to another teacher")
	case errors.Is(err, service.ErrExerciseSetNotPublished):
		return utils.SendError(c, fiber.StatusNotFound, "exercise set not found")
	case errors.Is(err, service.ErrExerciseSetPublished):
		return utils.SendError(c, fiber.StatusConflict, "exercise set is already published")
	case errors.Is(err, service.ErrQuestionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "question not found")
	case errors.Is(err, service.ErrChapterNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "chapter not found")
	case errors.Is(err, service.ErrChoiceNeedsOptions):
		return utils.SendError(c, fiber.StatusBadRequest, "choice questions require options")
	case errors.Is(err, service.ErrNoQuestionsExtracted):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "no questions extracted from images")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
