package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ChenBaiWa/studentSystem/internal/dto"
	"github.com/ChenBaiWa/studentSystem/internal/handler"
	"github.com/ChenBaiWa/studentSystem/internal/service"
)

type mockStudentAssignmentService struct {
	lastStudentID uint
	lastName      string
	submission    dto.StudentAssignmentResponse
	buckets       dto.StudentAssignmentBuckets
	err           error
}

func (m *mockStudentAssignmentService) Submit(_ context.Context, studentID uint, studentName string, _ dto.SubmitAssignmentRequest) (dto.StudentAssignmentResponse, error) {
	m.lastStudentID = studentID
	m.lastName = studentName
	if m.err != nil {
		return dto.StudentAssignmentResponse{}, m.err
	}
	return m.submission, nil
}

func (m *mockStudentAssignmentService) ListBuckets(_ context.Context, studentID uint) (dto.StudentAssignmentBuckets, error) {
	m.lastStudentID = studentID
	if m.err != nil {
		return dto.StudentAssignmentBuckets{}, m.err
	}
	return m.buckets, nil
}

func (m *mockStudentAssignmentService) GetDetail(_ context.Context, studentID, _ uint) (dto.StudentAssignmentDetail, error) {
	m.lastStudentID = studentID
	if m.err != nil {
		return dto.StudentAssignmentDetail{}, m.err
	}
	return dto.StudentAssignmentDetail{StudentAssignment: m.submission}, nil
}

func newStudentAssignmentApp(svc service.StudentAssignmentService) *fiber.App {
	app := fiber.New()
	group := app.Group("/student-assignments", stubAuth(10, "student"))
	handler.NewStudentAssignmentHandler(svc, zerolog.Nop()).Register(group)
	return app
}

func TestStudentAssignmentHandlerSubmit(t *testing.T) {
	svc := &mockStudentAssignmentService{submission: dto.StudentAssignmentResponse{ID: 1, AssignmentID: 3}}
	app := newStudentAssignmentApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/student-assignments/submit",
		strings.NewReader(`{"assignmentId": 3, "answer": "https://cdn.example.com/p1.jpg"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, uint(10), svc.lastStudentID)
	require.Equal(t, "Alice", svc.lastName)
}

func TestStudentAssignmentHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{service.ErrAssignmentNotFound, fiber.StatusNotFound},
		{service.ErrAlreadySubmitted, fiber.StatusConflict},
		{service.ErrDeadlinePassed, fiber.StatusBadRequest},
		{service.ErrNotClassMember, fiber.StatusForbidden},
	}

	for _, tc := range cases {
		app := newStudentAssignmentApp(&mockStudentAssignmentService{err: tc.err})

		req := httptest.NewRequest(http.MethodPost, "/student-assignments/submit",
			strings.NewReader(`{"assignmentId": 3, "answer": "https://cdn.example.com/p1.jpg"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, tc.status, resp.StatusCode, "error %v", tc.err)
	}
}

func TestStudentAssignmentHandlerOverview(t *testing.T) {
	svc := &mockStudentAssignmentService{buckets: dto.StudentAssignmentBuckets{
		Pending:   []dto.StudentAssignmentView{{ID: 1, Title: "Homework 1"}},
		Submitted: []dto.StudentAssignmentView{},
		Expired:   []dto.StudentAssignmentView{},
	}}
	app := newStudentAssignmentApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/student-assignments", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data dto.StudentAssignmentBuckets `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Len(t, body.Data.Pending, 1)
	require.Equal(t, "Homework 1", body.Data.Pending[0].Title)
}
