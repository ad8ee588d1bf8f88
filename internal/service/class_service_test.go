package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ChenBaiWa/studentSystem/internal/dto"
	"github.com/ChenBaiWa/studentSystem/internal/models"
	"github.com/ChenBaiWa/studentSystem/internal/repository"
)

func TestCreateClassGeneratesCodes(t *testing.T) {
	db := newTestDB(t)
	svc := NewClassService(repository.NewClassRepository(db), zerolog.Nop())

	class, err := svc.Create(context.Background(), 1, "Ms. Chen", dto.ClassCreateRequest{
		Name:      "Class 3A",
		GradeName: "Grade 3",
	})
	require.NoError(t, err)
	require.Regexp(t, `^\d{6}$`, class.ClassCode)
	require.Regexp(t, `^\d{4}$`, class.VerificationCode)
	require.Equal(t, "Ms. Chen", class.CreatorName)
}

func TestJoinClassFlow(t *testing.T) {
	db := newTestDB(t)
	class := models.Class{
		Name:             "Class 3A",
		ClassCode:        "123456",
		VerificationCode: "9876",
		CreatorID:        1,
	}
	require.NoError(t, db.Create(&class).Error)

	svc := NewClassService(repository.NewClassRepository(db), zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Join(ctx, 10, dto.JoinClassRequest{ClassCode: "000000", VerificationCode: "9876"})
	require.ErrorIs(t, err, ErrClassCodeNotFound)

	_, err = svc.Join(ctx, 10, dto.JoinClassRequest{ClassCode: "123456", VerificationCode: "0000"})
	require.ErrorIs(t, err, ErrVerificationCodeInvalid)

	joined, err := svc.Join(ctx, 10, dto.JoinClassRequest{ClassCode: "123456", VerificationCode: "9876"})
	require.NoError(t, err)
	require.Equal(t, class.ID, joined.ID)
	require.Empty(t, joined.VerificationCode, "students never receive the verification code")

	_, err = svc.Join(ctx, 10, dto.JoinClassRequest{ClassCode: "123456", VerificationCode: "9876"})
	require.ErrorIs(t, err, ErrAlreadyClassMember)

	classes, err := svc.ListJoined(ctx, 10)
	require.NoError(t, err)
	require.Len(t, classes, 1)
}

func TestListMineIncludesVerificationCode(t *testing.T) {
	db := newTestDB(t)
	class := models.Class{
		Name:             "Class 3A",
		ClassCode:        "123456",
		VerificationCode: "9876",
		CreatorID:        1,
	}
	require.NoError(t, db.Create(&class).Error)

	svc := NewClassService(repository.NewClassRepository(db), zerolog.Nop())

	classes, err := svc.ListMine(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	require.Equal(t, "9876", classes[0].VerificationCode)
}
