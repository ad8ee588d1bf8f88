package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ChenBaiWa/studentSystem/internal/dto"
	"github.com/ChenBaiWa/studentSystem/internal/repository"
)

func newTextbookService(t *testing.T, db *gorm.DB) TextbookService {
	t.Helper()
	return NewTextbookService(
		repository.NewTextbookRepository(db),
		repository.NewChapterRepository(db),
		zerolog.Nop(),
	)
}

func TestTextbookAuthoringFlow(t *testing.T) {
	db := newTestDB(t)
	svc := newTextbookService(t, db)
	ctx := context.Background()

	textbook, err := svc.Create(ctx, 1, "Ms. Chen", dto.TextbookCreateRequest{
		Name:      "Algebra I",
		GradeName: "Grade 7",
	})
	require.NoError(t, err)
	require.Equal(t, "Ms. Chen", textbook.CreatorName)

	chapter, err := svc.AddChapter(ctx, 1, textbook.ID, dto.ChapterCreateRequest{Name: "Linear Equations"})
	require.NoError(t, err)
	require.Equal(t, textbook.ID, chapter.TextbookID)
	require.Equal(t, "Algebra I", chapter.TextbookName)

	chapters, err := svc.ListChapters(ctx, 1, textbook.ID)
	require.NoError(t, err)
	require.Len(t, chapters, 1)
	require.Equal(t, "Linear Equations", chapters[0].Name)

	mine, err := svc.ListMine(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	other, err := svc.ListMine(ctx, 2)
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestTextbookOwnershipEnforced(t *testing.T) {
	db := newTestDB(t)
	svc := newTextbookService(t, db)
	ctx := context.Background()

	textbook, err := svc.Create(ctx, 1, "Ms. Chen", dto.TextbookCreateRequest{Name: "Algebra I"})
	require.NoError(t, err)

	_, err = svc.AddChapter(ctx, 2, textbook.ID, dto.ChapterCreateRequest{Name: "Chapter 1"})
	require.ErrorIs(t, err, ErrTextbookForbidden)
	_, err = svc.ListChapters(ctx, 2, textbook.ID)
	require.ErrorIs(t, err, ErrTextbookForbidden)
}

func TestTextbookUnknown(t *testing.T) {
	db := newTestDB(t)
	svc := newTextbookService(t, db)

	_, err := svc.AddChapter(context.Background(), 1, 99, dto.ChapterCreateRequest{Name: "Chapter 1"})
	require.ErrorIs(t, err, ErrTextbookNotFound)
}

func TestTextbookCreateValidatesName(t *testing.T) {
	db := newTestDB(t)
	svc := newTextbookService(t, db)

	_, err := svc.Create(context.Background(), 1, "Ms. Chen", dto.TextbookCreateRequest{})
	require.Error(t, err)
}
