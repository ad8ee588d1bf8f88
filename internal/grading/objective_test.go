package grading

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ChenBaiWa/studentSystem/internal/models"
)

func choiceQuestion(answer string) models.Question {
	return models.Question{Type: models.QuestionTypeChoice, Answer: answer, Score: 5}
}

func fillQuestion(answer string) models.Question {
	return models.Question{Type: models.QuestionTypeFill, Answer: answer, Score: 5}
}

func TestGradeObjectiveChoice(t *testing.T) {
	question := choiceQuestion("B")

	result := GradeObjective(question, "B")
	require.True(t, result.Correct)
	require.Equal(t, 5, result.Score)
	require.Equal(t, models.CorrectStatusCorrect, result.CorrectStatus)
	require.Equal(t, "answer correct", result.Remark)

	result = GradeObjective(question, "  B  ")
	require.True(t, result.Correct, "surrounding whitespace is trimmed")

	result = GradeObjective(question, "C")
	require.False(t, result.Correct)
	require.Equal(t, 0, result.Score)
	require.Equal(t, models.CorrectStatusIncorrect, result.CorrectStatus)
	require.Equal(t, "answer wrong, correct answer: B", result.Remark)
}

func TestGradeObjectiveChoiceIsCaseSensitive(t *testing.T) {
	result := GradeObjective(choiceQuestion("B"), "b")
	require.False(t, result.Correct, "option labels compare case-sensitively")
}

func TestGradeObjectiveChoiceEmptyCanonicalNeverMatches(t *testing.T) {
	question := choiceQuestion("")

	result := GradeObjective(question, "")
	require.False(t, result.Correct)

	result = GradeObjective(question, "   ")
	require.False(t, result.Correct)
}

func TestGradeObjectiveFillNormalization(t *testing.T) {
	question := fillQuestion("Photo Synthesis")

	for _, candidate := range []string{
		"photosynthesis",
		"PHOTOSYNTHESIS",
		"photo synthesis",
		" Photo\tSynthesis \n",
	} {
		result := GradeObjective(question, candidate)
		require.True(t, result.Correct, "candidate %q", candidate)
		require.Equal(t, 5, result.Score)
	}

	result := GradeObjective(question, "photosynthesys")
	require.False(t, result.Correct)
	require.Equal(t, "answer wrong, correct answer: Photo Synthesis", result.Remark)
}

func TestGradeObjectiveFillEmptyCanonicalNeverMatches(t *testing.T) {
	result := GradeObjective(fillQuestion("   "), "")
	require.False(t, result.Correct, "whitespace-only canonical answer cannot be matched")
}

func TestGradeObjectiveSubjectiveIsNeverCorrect(t *testing.T) {
	question := models.Question{Type: models.QuestionTypeSubjective, Answer: "essay", Score: 10}

	result := GradeObjective(question, "essay")
	require.False(t, result.Correct)
	require.Equal(t, models.CorrectStatusIncorrect, result.CorrectStatus)
}
