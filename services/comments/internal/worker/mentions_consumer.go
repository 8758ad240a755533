// Package worker consumes comment events from NATS JetStream and records
// mention notifications. Mentions are informational: ids are recorded as
// published, never validated.
package worker

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/forum-platform/services/comments/internal/publisher"
)

const (
	mentionsSubject = publisher.SubjectCommentCreated
	mentionsDurable = "comment_mentions"
)

// StartMentionsConsumer subscribes to comment creation events and writes one
// comment_mentions row per mentioned user. Events are deduplicated through
// the processed_events table, so redelivery is safe.
func StartMentionsConsumer(ctx context.Context, nc *nats.Conn, pool *pgxpool.Pool, log *zap.Logger) {
	js, err := nc.JetStream()
	if err != nil {
		log.Error("mentions consumer: jetstream", zap.Error(err))
		return
	}

	sub, err := js.PullSubscribe(mentionsSubject, mentionsDurable)
	if err != nil {
		log.Error("mentions consumer: subscribe", zap.Error(err))
		return
	}

	batchSize := envInt("WORKER_BATCH_SIZE", 100)
	batchWait := time.Duration(envInt("WORKER_BATCH_INTERVAL_MS", 2000)) * time.Millisecond

	log.Info("mentions consumer started", zap.String("subject", mentionsSubject))
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := sub.Fetch(batchSize, nats.MaxWait(batchWait))
		if err != nil {
			if err == nats.ErrTimeout {
				continue
			}
			log.Warn("mentions consumer: fetch", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		for _, m := range msgs {
			if err := processMention(ctx, pool, m.Data); err != nil {
				log.Warn("mentions consumer: process", zap.Error(err))
				if err := m.Nak(); err != nil {
					log.Warn("mentions consumer: nak", zap.Error(err))
				}
				continue
			}
			if err := m.Ack(); err != nil {
				log.Warn("mentions consumer: ack", zap.Error(err))
			}
		}
	}
}

func processMention(ctx context.Context, pool *pgxpool.Pool, data []byte) error {
	var ev publisher.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}
	if len(ev.MentionedUserIDs) == 0 {
		return nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`INSERT INTO processed_events (event_id, subject, payload) VALUES ($1, $2, $3) ON CONFLICT (event_id) DO NOTHING`,
		ev.EventID, mentionsSubject, data)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// already processed
		return nil
	}

	for _, userID := range ev.MentionedUserIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO comment_mentions (comment_id, post_id, user_id, actor_id) VALUES ($1, $2, $3, $4)`,
			ev.CommentID, ev.PostID, userID, ev.ActorID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
