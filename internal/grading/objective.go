// Package grading implements the deterministic grading of objective questions.
package grading

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ChenBaiWa/studentSystem/internal/models"
)

// Result is the outcome of grading one objective answer.
type Result struct {
	Score         int
	Correct       bool
	CorrectStatus int
	Remark        string
}

// GradeObjective compares a candidate answer against the question's canonical
// answer. It only applies to choice and fill questions, never errors, and has
// no side effects; the caller persists the result.
//
// Choice answers compare exactly after trimming (case-sensitive): they are
// option labels produced by the same UI that renders them, so case folding
// would only mask data errors. Fill answers compare with all whitespace
// removed and case folded.
func GradeObjective(question models.Question, candidate string) Result {
	var correct bool

	switch question.Type {
	case models.QuestionTypeChoice:
		correct = question.Answer != "" && strings.TrimSpace(candidate) == strings.TrimSpace(question.Answer)
	case models.QuestionTypeFill:
		canonical := normalizeFill(question.Answer)
		correct = canonical != "" && normalizeFill(candidate) == canonical
	}

	result := Result{Correct: correct}
	if correct {
		result.Score = question.Score
		result.CorrectStatus = models.CorrectStatusCorrect
		result.Remark = "answer correct"
	} else {
		result.CorrectStatus = models.CorrectStatusIncorrect
		result.Remark = fmt.Sprintf("answer wrong, correct answer: %s", question.Answer)
	}

	return result
}

// normalizeFill strips every whitespace rune and folds case, so fill answers
// match regardless of spacing and capitalisation.
func normalizeFill(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
