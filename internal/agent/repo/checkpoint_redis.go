package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tryluxor/server/internal/agent/model"
	errx "github.com/tryluxor/server/internal/core/error"
	logx "github.com/tryluxor/server/pkg/logger"
)

type RedisThreadStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisThreadStore(rdb redis.Cmdable, ttl time.Duration) *RedisThreadStore {
	return &RedisThreadStore{rdb: rdb, ttl: ttl}
}

func (r *RedisThreadStore) threadKey(threadID string) string {
	return fmt.Sprintf("thread:%s:messages", threadID)
}

func (r *RedisThreadStore) Append(ctx context.Context, threadID string, msgs ...model.StoredMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	rows := make([]any, 0, len(msgs))
	for _, m := range msgs {
		b, err := json.Marshal(m)
		if err != nil {
			logx.Error().Err(err).Str("thread_id", threadID).Msg("failed to marshal message")
			return fmt.Errorf("marshal message: %w", err)
		}
		rows = append(rows, b)
	}
	key := r.threadKey(threadID)

	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, key, rows...)
	// extend TTL on touch
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push messages to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisThreadStore) Load(ctx context.Context, threadID string) ([]model.StoredMessage, error) {
	key := r.threadKey(threadID)

	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.StoredMessage{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load thread from redis")
		return nil, errx.WrapRedis(err)
	}

	msgs := make([]model.StoredMessage, 0, len(rows))
	for i, s := range rows {
		var m model.StoredMessage
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			logx.Error().Err(err).Str("thread_id", threadID).Int("index", i).Msg("failed to unmarshal message")
			return nil, fmt.Errorf("unmarshal message at index %d: %w", i, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (r *RedisThreadStore) Clear(ctx context.Context, threadID string) error {
	key := r.threadKey(threadID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete thread from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisThreadStore) Count(ctx context.Context, threadID string) (int, error) {
	key := r.threadKey(threadID)
	n, err := r.rdb.LLen(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to get message count from redis")
		return 0, errx.WrapRedis(err)
	}
	return int(n), nil
}

var _ model.ThreadStore = (*RedisThreadStore)(nil)
