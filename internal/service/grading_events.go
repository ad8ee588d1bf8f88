package service

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// GradingEvent is published whenever a grading result is written back, so
// downstream consumers (notification senders, analytics) can react without
// polling the database.
type GradingEvent struct {
	Kind          string    `json:"kind"`
	StudentID     uint      `json:"student_id"`
	QuestionID    uint      `json:"question_id,omitempty"`
	AssignmentID  uint      `json:"assignment_id,omitempty"`
	Score         int       `json:"score"`
	CorrectStatus int       `json:"correct_status,omitempty"`
	Status        string    `json:"status,omitempty"`
	GradedAt      time.Time `json:"graded_at"`
}

// GradingEventPublisher emits grading events. Implementations must be safe to
// call from grading workers.
type GradingEventPublisher interface {
	Publish(event GradingEvent)
}

type natsEventPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewGradingEventPublisher publishes grading events on NATS. A nil connection
// yields a publisher that drops events, so callers never need to nil-check.
func NewGradingEventPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) GradingEventPublisher {
	if subject == "" {
		subject = "studysys.grading.completed"
	}

	return &natsEventPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "grading_events").Logger(),
	}
}

func (p *natsEventPublisher) Publish(event GradingEvent) {
	if p.conn == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to encode grading event")
		return
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Msg("failed to publish grading event")
	}
}
