// Package publisher provides a fire-and-forget NATS JetStream publisher for
// comment events.
package publisher

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Subject constants for every comment event type.
const (
	SubjectCommentCreated  = "comments.comment.created"
	SubjectCommentEdited   = "comments.comment.edited"
	SubjectCommentDeleted  = "comments.comment.deleted"
	SubjectCommentLiked    = "comments.comment.liked"
	SubjectCommentReported = "comments.comment.reported"

	streamName = "COMMENTS"
)

// Event is the canonical envelope sent to all comments.* subjects.
type Event struct {
	EventID          string         `json:"event_id"`
	EventName        string         `json:"event_name"`
	CommentID        string         `json:"comment_id"`
	PostID           string         `json:"post_id,omitempty"`
	ActorID          string         `json:"actor_id,omitempty"`
	MentionedUserIDs []string       `json:"mentioned_user_ids,omitempty"`
	OccurredAt       time.Time      `json:"occurred_at"`
	Properties       map[string]any `json:"properties,omitempty"`
}

// Publisher publishes comment events to NATS JetStream.
// The zero value and a nil pointer are both safe no-op stubs.
type Publisher struct {
	js  nats.JetStreamContext
	log *zap.Logger
}

// New connects to NATS and ensures the COMMENTS stream exists.
// If natsURL is empty, returns a no-op publisher (stub).
func New(natsURL string, log *zap.Logger) (*Publisher, error) {
	if natsURL == "" {
		log.Warn("NATS_URL not set, comment events will not be published (stub mode)")
		return &Publisher{log: log}, nil
	}

	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     streamName,
		Subjects: []string{"comments.>"},
		Storage:  nats.FileStorage,
	})
	if err != nil {
		log.Warn("failed to create NATS stream (may already exist)", zap.Error(err))
	}

	log.Info("NATS publisher initialised", zap.String("stream", streamName))
	return &Publisher{js: js, log: log}, nil
}

// Publish sends a comment event asynchronously (fire-and-forget).
// Failures are logged as warnings and never surface to the caller.
// The publisher is safe to call with a nil receiver.
func (p *Publisher) Publish(subject string, ev Event) {
	if p == nil || p.js == nil {
		return
	}
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("comment event marshal failed", zap.String("event", ev.EventName), zap.Error(err))
		return
	}
	if _, err := p.js.PublishAsync(subject, data); err != nil {
		p.log.Warn("comment event publish failed", zap.String("subject", subject), zap.Error(err))
	}
}
