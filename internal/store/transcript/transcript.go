// Package transcript persists conversation history and dialogue state in Redis.
package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/redis/go-redis/v9"

	stderrors "vendor-portal-chatbot/internal/common/errors"
	"vendor-portal-chatbot/internal/common/logger"
	"vendor-portal-chatbot/internal/models"
)

type Store struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// New creates a transcript store. A zero ttl keeps transcripts until cleared.
func New(rdb *redis.Client, ttl time.Duration, log logger.Logger) *Store {
	return &Store{
		rdb:    rdb,
		ttl:    ttl,
		logger: log.With(map[string]interface{}{"store": "transcript"}),
	}
}

func messagesKey(conversationID string) string {
	return fmt.Sprintf("chat:%s:messages", conversationID)
}

func stateKey(conversationID string) string {
	return fmt.Sprintf("chat:%s:state", conversationID)
}

// AppendUser records one inbound user message.
func (s *Store) AppendUser(ctx context.Context, conversationID, text string) error {
	msg := models.Message{
		Sender:    models.SenderUser,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return stderrors.NewTranscriptStoreError(err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, messagesKey(conversationID), payload)
	if s.ttl > 0 {
		pipe.Expire(ctx, messagesKey(conversationID), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("failed to append user message", map[string]interface{}{
			"conversationId": conversationID,
			"error":          err.Error(),
		})
		return stderrors.NewTranscriptStoreError(err)
	}
	return nil
}

// AppendBot records the bot replies for one turn together with the dialogue
// state the turn leaves behind. Replies and state commit atomically so a
// crash cannot leave the state pointing at replies that were never stored.
func (s *Store) AppendBot(ctx context.Context, conversationID string, replies []string, state models.ConversationState) error {
	now := time.Now().UTC()
	payloads := make([][]byte, 0, len(replies))
	for _, reply := range replies {
		payload, err := json.Marshal(models.Message{
			Sender:    models.SenderBot,
			Text:      reply,
			Timestamp: now,
		})
		if err != nil {
			return stderrors.NewTranscriptStoreError(err)
		}
		payloads = append(payloads, payload)
	}

	pipe := s.rdb.TxPipeline()
	for _, payload := range payloads {
		pipe.RPush(ctx, messagesKey(conversationID), payload)
	}
	pipe.Set(ctx, stateKey(conversationID), string(state), s.ttl)
	if s.ttl > 0 {
		pipe.Expire(ctx, messagesKey(conversationID), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("failed to append bot replies", map[string]interface{}{
			"conversationId": conversationID,
			"error":          err.Error(),
		})
		return stderrors.NewTranscriptStoreError(err)
	}
	return nil
}

// History returns the transcript oldest-first. A limit of 0 returns the whole
// transcript; otherwise only the last limit messages come back.
func (s *Store) History(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}
	raw, err := s.rdb.LRange(ctx, messagesKey(conversationID), start, -1).Result()
	if err != nil {
		return nil, stderrors.NewTranscriptStoreError(err)
	}

	messages := make([]models.Message, 0, len(raw))
	for _, entry := range raw {
		var msg models.Message
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			return nil, stderrors.NewTranscriptStoreError(err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// State returns the persisted dialogue state. A conversation without a stored
// state is a fresh one, awaiting its topic.
func (s *Store) State(ctx context.Context, conversationID string) (models.ConversationState, error) {
	val, err := s.rdb.Get(ctx, stateKey(conversationID)).Result()
	if errors.Is(err, redis.Nil) {
		return models.StateAwaitingTopic, nil
	}
	if err != nil {
		return "", stderrors.NewTranscriptStoreError(err)
	}
	return models.ConversationState(val), nil
}

// LatestUserMatch walks the transcript newest-first and returns the first
// capture group of re against the most recent user message that matches.
func (s *Store) LatestUserMatch(ctx context.Context, conversationID string, re *regexp.Regexp) (string, bool, error) {
	raw, err := s.rdb.LRange(ctx, messagesKey(conversationID), 0, -1).Result()
	if err != nil {
		return "", false, stderrors.NewTranscriptStoreError(err)
	}

	for i := len(raw) - 1; i >= 0; i-- {
		var msg models.Message
		if err := json.Unmarshal([]byte(raw[i]), &msg); err != nil {
			return "", false, stderrors.NewTranscriptStoreError(err)
		}
		if msg.Sender != models.SenderUser {
			continue
		}
		if m := re.FindStringSubmatch(msg.Text); m != nil {
			if len(m) > 1 {
				return m[1], true, nil
			}
			return m[0], true, nil
		}
	}
	return "", false, nil
}

// Clear wipes the transcript and dialogue state of one conversation.
func (s *Store) Clear(ctx context.Context, conversationID string) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, messagesKey(conversationID))
	pipe.Del(ctx, stateKey(conversationID))
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("failed to clear transcript", map[string]interface{}{
			"conversationId": conversationID,
			"error":          err.Error(),
		})
		return stderrors.NewTranscriptStoreError(err)
	}
	return nil
}
