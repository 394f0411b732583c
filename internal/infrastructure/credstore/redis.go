package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vitacare/clinic-ops/internal/core/domain"
)

// Redis key suffixes for the three credential slots.
const (
	slotAccess  = "access_token"
	slotRefresh = "refresh_token"
	slotUser    = "user"
)

// RedisStore keeps the record in three named keys under one prefix, for
// shared kiosk workstations where sessions must survive moves between
// machines. All three slots are written and cleared inside one MULTI/EXEC
// block to keep the written-together invariant.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing Redis client. The prefix namespaces one
// workstation's record, e.g. "credentials:front-desk-2".
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(slot string) string {
	return fmt.Sprintf("%s:%s", s.prefix, slot)
}

// Load reads all three slots. Absent slots yield nil; a record missing some
// slots is returned as-is so the caller's partial-record handling applies.
func (s *RedisStore) Load(ctx context.Context) (*domain.Credentials, error) {
	vals, err := s.client.MGet(ctx, s.key(slotAccess), s.key(slotRefresh), s.key(slotUser)).Result()
	if err != nil {
		return nil, fmt.Errorf("credstore: redis mget: %w", err)
	}

	creds := &domain.Credentials{}
	empty := true
	if v, ok := vals[0].(string); ok {
		creds.AccessToken = v
		empty = false
	}
	if v, ok := vals[1].(string); ok {
		creds.RefreshToken = v
		empty = false
	}
	if v, ok := vals[2].(string); ok {
		var user domain.User
		if err := json.Unmarshal([]byte(v), &user); err != nil {
			return nil, fmt.Errorf("credstore: corrupt user record: %w", err)
		}
		creds.User = &user
		empty = false
	}
	if empty {
		return nil, nil
	}
	return creds, nil
}

// Save writes the full triple transactionally.
func (s *RedisStore) Save(ctx context.Context, creds *domain.Credentials) error {
	if !creds.Complete() {
		return errors.New("credstore: refusing to persist a partial record")
	}

	userJSON, err := json.Marshal(creds.User)
	if err != nil {
		return fmt.Errorf("credstore: encoding user: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(slotAccess), creds.AccessToken, 0)
		pipe.Set(ctx, s.key(slotRefresh), creds.RefreshToken, 0)
		pipe.Set(ctx, s.key(slotUser), userJSON, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("credstore: redis save: %w", err)
	}
	return nil
}

// Clear removes all three slots transactionally. Idempotent.
func (s *RedisStore) Clear(ctx context.Context) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(slotAccess), s.key(slotRefresh), s.key(slotUser))
		return nil
	})
	if err != nil {
		return fmt.Errorf("credstore: redis clear: %w", err)
	}
	return nil
}
