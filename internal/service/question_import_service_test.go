package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ChenBaiWa/studentSystem/internal/dto"
	"github.com/ChenBaiWa/studentSystem/internal/models"
	"github.com/ChenBaiWa/studentSystem/internal/repository"
	"github.com/ChenBaiWa/studentSystem/pkg/ai"
)

func TestImportQuestionsFromImages(t *testing.T) {
	db := newTestDB(t)
	set := models.ExerciseSet{Name: "Algebra", Status: models.ExerciseSetStatusEditing, CreatorID: 1}
	require.NoError(t, db.Create(&set).Error)

	grader := &fakeGrader{
		extractFn: func(_ context.Context, imageRefs []string) ([]ai.ExtractedQuestion, error) {
			require.Equal(t, []string{"https://cdn.example.com/page1.jpg"}, imageRefs)
			return []ai.ExtractedQuestion{
				{Type: "choice", Content: "1+1=?", Options: []string{"1", "2"}, Answer: "2", Score: 5},
				{Type: "subjective", Content: "Explain gravity."},
				{Type: "essay", Content: "invalid type, schema rejects"},
				{Type: "fill", Content: ""},
			}, nil
		},
	}

	svc := NewQuestionImportService(
		repository.NewExerciseSetRepository(db),
		repository.NewQuestionRepository(db),
		grader,
		zerolog.Nop(),
	)

	imported, err := svc.Import(context.Background(), 1, set.ID, dto.ImportQuestionsRequest{
		ImageURLs: []string{"https://cdn.example.com/page1.jpg"},
	})
	require.NoError(t, err)
	require.Len(t, imported, 2, "invalid extractions are skipped")
	require.Equal(t, "choice", imported[0].Type)
	require.Equal(t, 5, imported[0].Score)
	require.Equal(t, models.DefaultQuestionScore, imported[1].Score, "missing score defaults")

	var stored models.ExerciseSet
	require.NoError(t, db.First(&stored, set.ID).Error)
	require.Equal(t, 2, stored.QuestionCount)
}

func TestImportQuestionsAllInvalid(t *testing.T) {
	db := newTestDB(t)
	set := models.ExerciseSet{Name: "Algebra", Status: models.ExerciseSetStatusEditing, CreatorID: 1}
	require.NoError(t, db.Create(&set).Error)

	grader := &fakeGrader{
		extractFn: func(context.Context, []string) ([]ai.ExtractedQuestion, error) {
			return []ai.ExtractedQuestion{{Type: "riddle", Content: "??"}}, nil
		},
	}

	svc := NewQuestionImportService(
		repository.NewExerciseSetRepository(db),
		repository.NewQuestionRepository(db),
		grader,
		zerolog.Nop(),
	)

	_, err := svc.Import(context.Background(), 1, set.ID, dto.ImportQuestionsRequest{
		ImageURLs: []string{"https://cdn.example.com/page1.jpg"},
	})
	require.ErrorIs(t, err, ErrNoQuestionsExtracted)
}

func TestImportQuestionsRejectedForPublishedSet(t *testing.T) {
	db := newTestDB(t)
	set := models.ExerciseSet{Name: "Algebra", Status: models.ExerciseSetStatusPublished, CreatorID: 1}
	require.NoError(t, db.Create(&set).Error)

	svc := NewQuestionImportService(
		repository.NewExerciseSetRepository(db),
		repository.NewQuestionRepository(db),
		&fakeGrader{},
		zerolog.Nop(),
	)

	_, err := svc.Import(context.Background(), 1, set.ID, dto.ImportQuestionsRequest{
		ImageURLs: []string{"https://cdn.example.com/page1.jpg"},
	})
	require.ErrorIs(t, err, ErrExerciseSetPublished)
}
