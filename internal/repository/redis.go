package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pagetalk-ai/pagetalk/internal/domain"
)

// RedisContextStore keeps session documents and Q&A history in Redis with a
// fixed TTL, surviving process restarts.
type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisContextStore(url string, ttl time.Duration) (*RedisContextStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if ttl <= 0 {
		ttl = domain.DefaultSessionTTL
	}
	return &RedisContextStore{client: redis.NewClient(opts), ttl: ttl}, nil
}

func contextKey(sessionID string) string { return "context:" + sessionID }
func historyKey(sessionID string) string { return "qa:" + sessionID }

// SetDocuments stores the raw document list verbatim behind the session key.
// The whole value is replaced; the TTL restarts on every write.
func (s *RedisContextStore) SetDocuments(ctx context.Context, sessionID string, docs []*domain.ExtractedDocument) error {
	data, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, contextKey(sessionID), data, s.ttl).Err()
}

func (s *RedisContextStore) GetDocuments(ctx context.Context, sessionID string) ([]*domain.ExtractedDocument, error) {
	data, err := s.client.Get(ctx, contextKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var docs []*domain.ExtractedDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *RedisContextStore) AppendQA(ctx context.Context, sessionID string, entry domain.QAEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	key := historyKey(sessionID)
	if err := s.client.RPush(ctx, key, data).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, s.ttl).Err()
}

func (s *RedisContextStore) History(ctx context.Context, sessionID string) ([]domain.QAEntry, error) {
	raw, err := s.client.LRange(ctx, historyKey(sessionID), 0, -1).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	entries := make([]domain.QAEntry, 0, len(raw))
	for _, item := range raw {
		var e domain.QAEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *RedisContextStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, contextKey(sessionID), historyKey(sessionID)).Err()
}

// Ping verifies connectivity at startup.
func (s *RedisContextStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
