// internal/service/intake/infrastructure/session_redis.go
package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pkg/errors"

	"boost/internal/pkg/redis"
	"boost/internal/service/intake/domain"
)

const sessionKeyPrefix = "intake:session:"

// RedisSessionStore 是 domain.SessionStore 的 Redis 实现。
// 会话按用户身份作 key，JSON 序列化存储，靠 TTL 过期。
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

var _ domain.SessionStore = (*RedisSessionStore)(nil)

func (s *RedisSessionStore) Get(ctx context.Context, userID string) (*domain.Session, error) {
	data, err := s.client.GetClient().Get(ctx, sessionKeyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to load session for user %s", userID)
	}
	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		// 反序列化失败说明存储里是坏数据，当作无会话处理并清掉
		_ = s.client.GetClient().Del(ctx, sessionKeyPrefix+userID).Err()
		return nil, nil
	}
	return &session, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "failed to marshal session")
	}
	if err := s.client.GetClient().Set(ctx, sessionKeyPrefix+session.UserID, data, ttl).Err(); err != nil {
		return errors.Wrapf(err, "failed to store session for user %s", session.UserID)
	}
	return nil
}

func (s *RedisSessionStore) Del(ctx context.Context, userID string) error {
	if err := s.client.GetClient().Del(ctx, sessionKeyPrefix+userID).Err(); err != nil {
		return errors.Wrapf(err, "failed to delete session for user %s", userID)
	}
	return nil
}
