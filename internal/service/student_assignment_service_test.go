package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ChenBaiWa/studentSystem/internal/dto"
	"github.com/ChenBaiWa/studentSystem/internal/models"
	"github.com/ChenBaiWa/studentSystem/internal/repository"
	"github.com/ChenBaiWa/studentSystem/pkg/ai"
)

func seedClassWithMember(t *testing.T, db *gorm.DB, studentID uint) models.Class {
	t.Helper()
	class := models.Class{
		Name:             "Class 3A",
		ClassCode:        "123456",
		VerificationCode: "9876",
		CreatorID:        1,
	}
	require.NoError(t, db.Create(&class).Error)
	require.NoError(t, db.Create(&models.ClassMembership{
		StudentID: studentID,
		ClassID:   class.ID,
		JoinedAt:  time.Now(),
	}).Error)
	return class
}

func seedAssignment(t *testing.T, db *gorm.DB, classID uint, deadline time.Time) models.Assignment {
	t.Helper()
	assignment := models.Assignment{
		Title:      "Homework 1",
		ClassID:    classID,
		ClassName:  "Class 3A",
		TotalScore: 100,
		Deadline:   deadline,
		CreatorID:  1,
	}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}

func newStudentAssignmentService(t *testing.T, db *gorm.DB, grader ai.Grader, events GradingEventPublisher, cache *redis.Client) *studentAssignmentService {
	t.Helper()
	svc := NewStudentAssignmentService(
		repository.NewAssignmentRepository(db),
		repository.NewStudentAssignmentRepository(db),
		repository.NewClassRepository(db),
		repository.NewUserRepository(db),
		grader,
		events,
		cache,
		time.Minute,
		zerolog.Nop(),
	)
	return svc.(*studentAssignmentService)
}

func TestSubmitAssignmentGradesInline(t *testing.T) {
	db := newTestDB(t)
	class := seedClassWithMember(t, db, 10)
	assignment := seedAssignment(t, db, class.ID, time.Now().Add(time.Hour))

	grader := &fakeGrader{
		assignmentFn: func(_ context.Context, imageRefs []string) (ai.GradeResult, error) {
			require.Equal(t, []string{"https://cdn.example.com/p1.jpg", "https://cdn.example.com/p2.jpg"}, imageRefs)
			return ai.GradeResult{Score: 85, Feedback: "neat work"}, nil
		},
	}
	events := &eventRecorder{}
	svc := newStudentAssignmentService(t, db, grader, events, nil)

	submission, err := svc.Submit(context.Background(), 10, "Alice", dto.SubmitAssignmentRequest{
		AssignmentID: assignment.ID,
		Answer:       "https://cdn.example.com/p1.jpg, https://cdn.example.com/p2.jpg",
	})
	require.NoError(t, err)
	require.Equal(t, models.StudentAssignmentStatusGraded, submission.Status)
	require.NotNil(t, submission.Score)
	require.Equal(t, 85, *submission.Score)
	require.Equal(t, "neat work", submission.Feedback)
	require.NotNil(t, submission.GradedAt)

	published := events.Events()
	require.Len(t, published, 1)
	require.Equal(t, "assignment", published[0].Kind)
	require.Equal(t, assignment.ID, published[0].AssignmentID)
}

func TestSubmitAssignmentGradingFailureKeepsSubmission(t *testing.T) {
	db := newTestDB(t)
	class := seedClassWithMember(t, db, 10)
	assignment := seedAssignment(t, db, class.ID, time.Now().Add(time.Hour))

	svc := newStudentAssignmentService(t, db, &fakeGrader{}, &eventRecorder{}, nil)

	submission, err := svc.Submit(context.Background(), 10, "Alice", dto.SubmitAssignmentRequest{
		AssignmentID: assignment.ID,
		Answer:       "https://cdn.example.com/p1.jpg",
	})
	require.NoError(t, err, "a grading outage must not reject the upload")
	require.Equal(t, models.StudentAssignmentStatusSubmitted, submission.Status)
	require.Nil(t, submission.Score)

	var stored models.StudentAssignment
	require.NoError(t, db.First(&stored, submission.ID).Error)
	require.Equal(t, models.StudentAssignmentStatusSubmitted, stored.Status)
}

func TestSubmitAssignmentDuplicateRejected(t *testing.T) {
	db := newTestDB(t)
	class := seedClassWithMember(t, db, 10)
	assignment := seedAssignment(t, db, class.ID, time.Now().Add(time.Hour))

	grader := &fakeGrader{
		assignmentFn: func(context.Context, []string) (ai.GradeResult, error) {
			return ai.GradeResult{Score: 90}, nil
		},
	}
	svc := newStudentAssignmentService(t, db, grader, &eventRecorder{}, nil)

	request := dto.SubmitAssignmentRequest{
		AssignmentID: assignment.ID,
		Answer:       "https://cdn.example.com/p1.jpg",
	}
	_, err := svc.Submit(context.Background(), 10, "Alice", request)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), 10, "Alice", request)
	require.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestSubmitAssignmentDeadlineBoundary(t *testing.T) {
	db := newTestDB(t)
	class := seedClassWithMember(t, db, 10)
	deadline := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	assignment := seedAssignment(t, db, class.ID, deadline)

	grader := &fakeGrader{
		assignmentFn: func(context.Context, []string) (ai.GradeResult, error) {
			return ai.GradeResult{Score: 90}, nil
		},
	}
	svc := newStudentAssignmentService(t, db, grader, &eventRecorder{}, nil)

	request := dto.SubmitAssignmentRequest{
		AssignmentID: assignment.ID,
		Answer:       "https://cdn.example.com/p1.jpg",
	}

	// Exactly at the deadline is still on time.
	svc.now = func() time.Time { return deadline }
	_, err := svc.Submit(context.Background(), 10, "Alice", request)
	require.NoError(t, err)

	// One second past is late.
	require.NoError(t, db.Create(&models.ClassMembership{
		StudentID: 11, ClassID: class.ID, JoinedAt: time.Now(),
	}).Error)
	svc.now = func() time.Time { return deadline.Add(time.Second) }
	_, err = svc.Submit(context.Background(), 11, "Bob", request)
	require.ErrorIs(t, err, ErrDeadlinePassed)
}

func TestSubmitAssignmentRequiresMembership(t *testing.T) {
	db := newTestDB(t)
	class := seedClassWithMember(t, db, 10)
	assignment := seedAssignment(t, db, class.ID, time.Now().Add(time.Hour))

	svc := newStudentAssignmentService(t, db, &fakeGrader{}, &eventRecorder{}, nil)

	_, err := svc.Submit(context.Background(), 99, "Mallory", dto.SubmitAssignmentRequest{
		AssignmentID: assignment.ID,
		Answer:       "https://cdn.example.com/p1.jpg",
	})
	require.ErrorIs(t, err, ErrNotClassMember)
}

func TestListBucketsClassification(t *testing.T) {
	db := newTestDB(t)
	class := seedClassWithMember(t, db, 10)

	now := time.Now()
	pending := seedAssignment(t, db, class.ID, now.Add(24*time.Hour))
	expired := seedAssignment(t, db, class.ID, now.Add(-24*time.Hour))
	submitted := seedAssignment(t, db, class.ID, now.Add(-time.Hour))

	// A submission made before the deadline keeps the assignment in the
	// submitted bucket even after the deadline passes.
	require.NoError(t, db.Create(&models.StudentAssignment{
		AssignmentID: submitted.ID,
		StudentID:    10,
		Status:       models.StudentAssignmentStatusGraded,
		Score:        intPointer(92),
		SubmittedAt:  now.Add(-2 * time.Hour),
	}).Error)

	svc := newStudentAssignmentService(t, db, &fakeGrader{}, &eventRecorder{}, nil)

	buckets, err := svc.ListBuckets(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, buckets.Pending, 1)
	require.Len(t, buckets.Submitted, 1)
	require.Len(t, buckets.Expired, 1)
	require.Equal(t, pending.ID, buckets.Pending[0].ID)
	require.Equal(t, expired.ID, buckets.Expired[0].ID)
	require.Equal(t, submitted.ID, buckets.Submitted[0].ID)
	require.NotNil(t, buckets.Submitted[0].Score)
	require.Equal(t, 92, *buckets.Submitted[0].Score)
}

func TestListBucketsCachingAndInvalidation(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	cache := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db := newTestDB(t)
	class := seedClassWithMember(t, db, 10)
	assignment := seedAssignment(t, db, class.ID, time.Now().Add(time.Hour))

	grader := &fakeGrader{
		assignmentFn: func(context.Context, []string) (ai.GradeResult, error) {
			return ai.GradeResult{Score: 88}, nil
		},
	}
	svc := newStudentAssignmentService(t, db, grader, &eventRecorder{}, cache)

	ctx := context.Background()
	first, err := svc.ListBuckets(ctx, 10)
	require.NoError(t, err)
	require.Len(t, first.Pending, 1)

	// A direct row change is invisible while the cache entry lives.
	require.NoError(t, db.Model(&models.Assignment{}).Where("id = ?", assignment.ID).
		Update("title", "Renamed").Error)
	cached, err := svc.ListBuckets(ctx, 10)
	require.NoError(t, err)
	require.Len(t, cached.Pending, 1)
	require.Equal(t, "Homework 1", cached.Pending[0].Title, "cached overview is served unchanged")

	// Submitting invalidates the overview, moving the assignment out of
	// pending.
	_, err = svc.Submit(ctx, 10, "Alice", dto.SubmitAssignmentRequest{
		AssignmentID: assignment.ID,
		Answer:       "https://cdn.example.com/p1.jpg",
	})
	require.NoError(t, err)

	fresh, err := svc.ListBuckets(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, fresh.Pending)
	require.Len(t, fresh.Submitted, 1)
}

func TestGetDetailEnforcesOwnership(t *testing.T) {
	db := newTestDB(t)
	class := seedClassWithMember(t, db, 10)
	assignment := seedAssignment(t, db, class.ID, time.Now().Add(time.Hour))

	submission := models.StudentAssignment{
		AssignmentID: assignment.ID,
		StudentID:    10,
		Status:       models.StudentAssignmentStatusSubmitted,
		SubmittedAt:  time.Now(),
	}
	require.NoError(t, db.Create(&submission).Error)

	svc := newStudentAssignmentService(t, db, &fakeGrader{}, &eventRecorder{}, nil)

	detail, err := svc.GetDetail(context.Background(), 10, submission.ID)
	require.NoError(t, err)
	require.Equal(t, assignment.ID, detail.Assignment.ID)
	require.EqualValues(t, 1, detail.Assignment.SubmissionCount)

	_, err = svc.GetDetail(context.Background(), 11, submission.ID)
	require.ErrorIs(t, err, ErrSubmissionForbidden)
}
