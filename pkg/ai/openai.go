package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ChenBaiWa/studentSystem/pkg/blob"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "studysys",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of completion-service requests",
	}, []string{"model", "operation"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studysys",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of failed completion-service requests",
	}, []string{"model", "operation"})

	aiFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studysys",
		Subsystem: "ai",
		Name:      "fallback_results_total",
		Help:      "Number of grading results substituted because the reply was unparsable",
	}, []string{"model", "operation"})
)

// ClientConfig defines configuration for the completion-service client.
type ClientConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Logger    zerolog.Logger
}

// Client implements Grader against an OpenAI-compatible chat completion API.
type Client struct {
	client *openai.Client
	cfg    ClientConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewClient builds a grading client using the provided configuration.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("completion service api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 500
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/ChenBaiWa/studentSystem/pkg/ai"),
		logger: logger.With().Str("component", "ai_client").Logger(),
	}, nil
}

// GradeSubjective grades a free-form answer against the question content and
// reference answer. Malformed replies yield the fixed fallback result.
func (c *Client) GradeSubjective(ctx context.Context, input SubjectiveInput) (GradeResult, error) {
	maxScore := input.MaxScore
	if maxScore <= 0 {
		maxScore = 100
	}

	parts := []openai.ChatMessagePart{{
		Type: openai.ChatMessagePartTypeText,
		Text: subjectivePrompt(input, maxScore),
	}}
	parts, err := appendImageParts(parts, input.ImageRefs)
	if err != nil {
		return GradeResult{}, err
	}

	content, err := c.complete(ctx, "grade_subjective", parts)
	if err != nil {
		return GradeResult{}, err
	}

	result := parseGradeResult(content, maxScore)
	if result.Fallback {
		aiFallbacks.WithLabelValues(c.cfg.Model, "grade_subjective").Inc()
		c.logger.Warn().Str("reason", result.FallbackReason).Msg("substituted fallback grading result")
	}

	return result, nil
}

// GradeAssignmentImages grades a homework submission from its images on a
// 0-100 scale.
func (c *Client) GradeAssignmentImages(ctx context.Context, imageRefs []string) (GradeResult, error) {
	parts := []openai.ChatMessagePart{{
		Type: openai.ChatMessagePartTypeText,
		Text: assignmentPrompt(),
	}}
	parts, err := appendImageParts(parts, imageRefs)
	if err != nil {
		return GradeResult{}, err
	}
	if len(parts) == 1 {
		return GradeResult{}, fmt.Errorf("no usable image references")
	}

	content, err := c.complete(ctx, "grade_assignment", parts)
	if err != nil {
		return GradeResult{}, err
	}

	result := parseGradeResult(content, 100)
	if result.Fallback {
		aiFallbacks.WithLabelValues(c.cfg.Model, "grade_assignment").Inc()
		c.logger.Warn().Str("reason", result.FallbackReason).Msg("substituted fallback grading result")
	}

	return result, nil
}

// ExtractQuestions parses question definitions out of homework images.
func (c *Client) ExtractQuestions(ctx context.Context, imageRefs []string) ([]ExtractedQuestion, error) {
	parts := []openai.ChatMessagePart{{
		Type: openai.ChatMessagePartTypeText,
		Text: extractionPrompt(),
	}}
	parts, err := appendImageParts(parts, imageRefs)
	if err != nil {
		return nil, err
	}
	if len(parts) == 1 {
		return nil, fmt.Errorf("no usable image references")
	}

	content, err := c.complete(ctx, "extract_questions", parts)
	if err != nil {
		return nil, err
	}

	questions, ok := parseExtractedQuestions(content)
	if !ok {
		return nil, fmt.Errorf("reply contained no parsable question list")
	}

	return questions, nil
}

func (c *Client) complete(parent context.Context, operation string, parts []openai.ChatMessagePart) (string, error) {
	ctx, span := c.tracer.Start(parent, "ai."+operation, trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: parts,
			},
		},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(c.cfg.Model, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(c.cfg.Model, operation).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("completion request: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from completion service")
		aiFailures.WithLabelValues(c.cfg.Model, operation).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func appendImageParts(parts []openai.ChatMessagePart, imageRefs []string) ([]openai.ChatMessagePart, error) {
	for _, ref := range imageRefs {
		if strings.TrimSpace(ref) == "" {
			continue
		}
		resolved, err := blob.ResolveImageRef(ref)
		if err != nil {
			return nil, fmt.Errorf("resolve image reference: %w", err)
		}
		parts = append(parts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: resolved},
		})
	}

	return parts, nil
}

func subjectivePrompt(input SubjectiveInput, maxScore int) string {
	builder := strings.Builder{}
	builder.WriteString("You are a strict teacher grading one subjective answer. ")
	builder.WriteString("Return a JSON object exactly of the form { \"score\": 3, \"feedback\": \"...\" } and nothing else. ")
	fmt.Fprintf(&builder, "Score range is 0-%d based on correctness and completeness; feedback must point out concrete mistakes and improvements.\n\n", maxScore)
	builder.WriteString("# Question\n")
	builder.WriteString(input.QuestionContent)
	if input.ReferenceAnswer != "" {
		builder.WriteString("\n\n# Reference Answer\n")
		builder.WriteString(input.ReferenceAnswer)
	}
	if input.AnswerText != "" {
		builder.WriteString("\n\n# Student Answer\n")
		builder.WriteString(input.AnswerText)
	}
	return builder.String()
}

func assignmentPrompt() string {
	return "You are a strict teacher. Analyse the student's homework images and grade them. " +
		"Return the result as a JSON object exactly of the form " +
		"{ \"score\": 95, \"feedback\": \"mostly correct, but the calculation in question two has a small error, minus 5 points.\" } " +
		"The score range is 0-100 based on correctness and completeness. " +
		"The feedback must point out concrete mistakes and suggestions. " +
		"Return strictly the JSON object, no other content."
}

func extractionPrompt() string {
	return "Analyse the questions in these images and return them as a JSON object of the form " +
		"{ \"questions\": [ { \"type\": \"choice\", \"content\": \"...\", \"options\": [\"A. ...\", \"B. ...\"], " +
		"\"answer\": \"A\", \"score\": 5 } ] }. " +
		"Valid types are choice, fill and subjective; options only apply to choice questions. " +
		"Return strictly the JSON object, no other content."
}
