package ai

import "context"

// SubjectiveInput carries everything needed to grade a subjective answer.
type SubjectiveInput struct {
	QuestionContent string
	ReferenceAnswer string
	MaxScore        int
	AnswerText      string
	ImageRefs       []string
}

// GradeResult is the score/feedback pair produced by the completion service.
// Fallback marks results substituted locally because the reply could not be
// parsed; callers always receive a usable result, never a parse error.
type GradeResult struct {
	Score          int    `json:"score"`
	Feedback       string `json:"feedback"`
	Fallback       bool   `json:"-"`
	FallbackReason string `json:"-"`
}

// ExtractedQuestion is one question parsed out of homework images during bulk
// import.
type ExtractedQuestion struct {
	Type    string   `json:"type"`
	Content string   `json:"content"`
	Options []string `json:"options,omitempty"`
	Answer  string   `json:"answer,omitempty"`
	Score   int      `json:"score,omitempty"`
}

// Grader describes the completion service boundary used by the grading
// pipeline.
type Grader interface {
	// GradeSubjective grades a free-form answer, clamping the score to
	// [0, input.MaxScore].
	GradeSubjective(ctx context.Context, input SubjectiveInput) (GradeResult, error)
	// GradeAssignmentImages grades a whole homework submission from its
	// images on a 0-100 scale.
	GradeAssignmentImages(ctx context.Context, imageRefs []string) (GradeResult, error)
	// ExtractQuestions parses question definitions out of homework images.
	ExtractQuestions(ctx context.Context, imageRefs []string) ([]ExtractedQuestion, error)
}
