package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ChenBaiWa/studentSystem/internal/models"
	"github.com/ChenBaiWa/studentSystem/pkg/ai"
)

// newTestDB opens an isolated in-memory database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Class{},
		&models.ClassMembership{},
		&models.Textbook{},
		&models.Chapter{},
		&models.ExerciseSet{},
		&models.Question{},
		&models.ExerciseAnswer{},
		&models.Assignment{},
		&models.StudentAssignment{},
	))

	return db
}

// fakeGrader substitutes the completion service. Unconfigured operations fail,
// matching an unreachable upstream.
type fakeGrader struct {
	subjectiveFn func(context.Context, ai.SubjectiveInput) (ai.GradeResult, error)
	assignmentFn func(context.Context, []string) (ai.GradeResult, error)
	extractFn    func(context.Context, []string) ([]ai.ExtractedQuestion, error)
}

func (f *fakeGrader) GradeSubjective(ctx context.Context, input ai.SubjectiveInput) (ai.GradeResult, error) {
	if f.subjectiveFn == nil {
		return ai.GradeResult{}, errors.New("subjective grading not configured")
	}
	return f.subjectiveFn(ctx, input)
}

func (f *fakeGrader) GradeAssignmentImages(ctx context.Context, imageRefs []string) (ai.GradeResult, error) {
	if f.assignmentFn == nil {
		return ai.GradeResult{}, errors.New("assignment grading not configured")
	}
	return f.assignmentFn(ctx, imageRefs)
}

func (f *fakeGrader) ExtractQuestions(ctx context.Context, imageRefs []string) ([]ai.ExtractedQuestion, error) {
	if f.extractFn == nil {
		return nil, errors.New("question extraction not configured")
	}
	return f.extractFn(ctx, imageRefs)
}

// eventRecorder captures published grading events.
type eventRecorder struct {
	mu     sync.Mutex
	events []GradingEvent
}

func (r *eventRecorder) Publish(event GradingEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) Events() []GradingEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]GradingEvent(nil), r.events...)
}

// captureExecutor queues dispatched tasks so tests control when async grading
// actually runs.
type captureExecutor struct {
	tasks []func()
}

func (e *captureExecutor) Dispatch(task func()) {
	e.tasks = append(e.tasks, task)
}

func (e *captureExecutor) RunAll() {
	for _, task := range e.tasks {
		task()
	}
	e.tasks = nil
}

func intPointer(v int) *int {
	return &v
}
