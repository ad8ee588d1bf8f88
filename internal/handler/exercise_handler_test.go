package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ChenBaiWa/studentSystem/internal/dto"
	"github.com/ChenBaiWa/studentSystem/internal/handler"
	"github.com/ChenBaiWa/studentSystem/internal/models"
	"github.com/ChenBaiWa/studentSystem/internal/service"
)

type mockGradingService struct {
	lastStudentID uint
	lastRequest   dto.SubmitAnswerRequest
	lastSetID     uint
	lastChapterID *uint
	response      dto.AnswerResponse
	err           error
}

func (m *mockGradingService) SubmitAnswer(_ context.Context, studentID uint, req dto.SubmitAnswerRequest) (dto.AnswerResponse, error) {
	m.lastStudentID = studentID
	m.lastRequest = req
	if m.err != nil {
		return dto.AnswerResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockGradingService) SubmitBatch(_ context.Context, studentID, setID uint, chapterID *uint, _ []dto.BatchAnswerItem) ([]dto.AnswerResponse, error) {
	m.lastStudentID = studentID
	m.lastSetID = setID
	m.lastChapterID = chapterID
	if m.err != nil {
		return nil, m.err
	}
	return []dto.AnswerResponse{m.response}, nil
}

func (m *mockGradingService) GetResult(_ context.Context, studentID, _ uint) (dto.AnswerResponse, error) {
	m.lastStudentID = studentID
	if m.err != nil {
		return dto.AnswerResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockGradingService) GetSetResults(_ context.Context, studentID, setID uint, chapterID *uint) (dto.ExerciseResultsResponse, error) {
	m.lastSetID = setID
	m.lastChapterID = chapterID
	m.lastStudentID = studentID
	if m.err != nil {
		return dto.ExerciseResultsResponse{}, m.err
	}
	return dto.ExerciseResultsResponse{TotalScore: 5, Results: []dto.AnswerResponse{m.response}}, nil
}

// stubAuth plants the locals normally bound by the JWT middleware.
func stubAuth(userID uint, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("user_role", role)
		c.Locals("user_name", "Alice")
		return c.Next()
	}
}

func newExerciseApp(svc service.ExerciseGradingService, authed bool) *fiber.App {
	app := fiber.New()
	group := app.Group("/student/exercise-auto-grade")
	sets := app.Group("/student/exercise-sets")
	if authed {
		group.Use(stubAuth(10, "student"))
		sets.Use(stubAuth(10, "student"))
	}
	h := handler.NewExerciseHandler(svc, zerolog.Nop())
	h.Register(group)
	h.RegisterSets(sets)
	return app
}

func decodeResponse(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestExerciseHandlerSubmit(t *testing.T) {
	score := 5
	svc := &mockGradingService{response: dto.AnswerResponse{
		ID:            1,
		StudentID:     10,
		QuestionID:    7,
		Score:         &score,
		CorrectStatus: models.CorrectStatusCorrect,
		Remark:        "answer correct",
	}}
	app := newExerciseApp(svc, true)

	req := httptest.NewRequest(http.MethodPost, "/student/exercise-auto-grade/submit-answer",
		strings.NewReader(`{"questionId": 7, "answer": "B"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool               `json:"success"`
		Data    dto.AnswerResponse `json:"data"`
		Message string             `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "answer submitted", body.Message)
	require.Equal(t, uint(7), body.Data.QuestionID)

	require.Equal(t, uint(10), svc.lastStudentID)
	require.Equal(t, uint(7), svc.lastRequest.QuestionID)
	require.Equal(t, "B", svc.lastRequest.Answer)
}

func TestExerciseHandlerSubmitRequiresAuth(t *testing.T) {
	app := newExerciseApp(&mockGradingService{}, false)

	req := httptest.NewRequest(http.MethodPost, "/student/exercise-auto-grade/submit-answer",
		strings.NewReader(`{"questionId": 7, "answer": "B"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestExerciseHandlerSubmitInvalidBody(t *testing.T) {
	app := newExerciseApp(&mockGradingService{}, true)

	req := httptest.NewRequest(http.MethodPost, "/student/exercise-auto-grade/submit-answer",
		strings.NewReader(`not json`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestExerciseHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{service.ErrQuestionNotFound, fiber.StatusNotFound},
		{service.ErrQuestionNotInSet, fiber.StatusBadRequest},
		{service.ErrExerciseSetNotFound, fiber.StatusNotFound},
		{service.ErrExerciseSetNotPublished, fiber.StatusBadRequest},
		{service.ErrEmptyBatch, fiber.StatusBadRequest},
	}

	for _, tc := range cases {
		app := newExerciseApp(&mockGradingService{err: tc.err}, true)

		req := httptest.NewRequest(http.MethodPost, "/student/exercise-sets/3/direct/answers",
			strings.NewReader(`[{"questionId": 7, "answer": "B"}]`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, tc.status, resp.StatusCode, "error %v", tc.err)
	}
}

func TestExerciseHandlerBatchRoutesBindScope(t *testing.T) {
	svc := &mockGradingService{}
	app := newExerciseApp(svc, true)

	req := httptest.NewRequest(http.MethodPost, "/student/exercise-sets/3/chapters/9/answers",
		strings.NewReader(`[{"questionId": 7, "answer": "B"}]`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(3), svc.lastSetID)
	require.NotNil(t, svc.lastChapterID)
	require.Equal(t, uint(9), *svc.lastChapterID)

	req = httptest.NewRequest(http.MethodPost, "/student/exercise-sets/3/direct/answers",
		strings.NewReader(`[{"questionId": 7, "answer": "B"}]`))
	req.Header.Set("Content-Type", "application/json")

	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Nil(t, svc.lastChapterID, "direct submission carries no chapter scope")
}

func TestExerciseHandlerSetResults(t *testing.T) {
	score := 5
	svc := &mockGradingService{response: dto.AnswerResponse{ID: 1, QuestionID: 7, Score: &score}}
	app := newExerciseApp(svc, true)

	req := httptest.NewRequest(http.MethodGet, "/student/exercise-auto-grade/results/3", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data dto.ExerciseResultsResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, 5, body.Data.TotalScore)
	require.Len(t, body.Data.Results, 1)
	require.Equal(t, uint(3), svc.lastSetID)
	require.Nil(t, svc.lastChapterID)

	req = httptest.NewRequest(http.MethodGet, "/student/exercise-sets/3/chapters/9/results", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, svc.lastChapterID)
	require.Equal(t, uint(9), *svc.lastChapterID)
}
