package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the record in Redis under two keys sharing a prefix. It is
// the storage surface of choice when sibling contexts are separate processes
// on one machine or host fleet.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore creates a RedisStore. An empty prefix defaults to "skc".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "skc"
	}
	return &RedisStore{redis: client, prefix: prefix}
}

func (s *RedisStore) profileKey() string { return s.prefix + ":profile" }
func (s *RedisStore) refreshKey() string { return s.prefix + ":refresh" }

func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	profile := profileRecord{
		UserID:              rec.UserID,
		Email:               rec.Email,
		SecondFactorEnabled: rec.SecondFactorEnabled,
	}
	encoded, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("%w: encode profile: %v", ErrBackend, err)
	}
	if _, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.profileKey(), encoded, 0)
		pipe.Set(ctx, s.refreshKey(), rec.RefreshToken, 0)
		return nil
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (Record, bool, error) {
	values, err := s.redis.MGet(ctx, s.profileKey(), s.refreshKey()).Result()
	if err != nil {
		return Record{}, false, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	profileRaw, okProfile := values[0].(string)
	refresh, okRefresh := values[1].(string)
	if !okProfile && !okRefresh {
		return Record{}, false, nil
	}
	if !okProfile || !okRefresh || refresh == "" {
		_ = s.Clear(ctx)
		return Record{}, false, nil
	}

	var profile profileRecord
	if err := json.Unmarshal([]byte(profileRaw), &profile); err != nil || profile.UserID == "" {
		_ = s.Clear(ctx)
		return Record{}, false, nil
	}

	return Record{
		UserID:              profile.UserID,
		Email:               profile.Email,
		SecondFactorEnabled: profile.SecondFactorEnabled,
		RefreshToken:        refresh,
	}, true, nil
}

func (s *RedisStore) UpdateRefreshToken(ctx context.Context, refreshToken string) error {
	exists, err := s.redis.Exists(ctx, s.profileKey()).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	if exists == 0 {
		return nil
	}
	if err := s.redis.Set(ctx, s.refreshKey(), refreshToken, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.profileKey(), s.refreshKey()).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
