package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "wallet:flag:"

// Redis persists wallet flags in Redis. Flags are durable (no TTL): a created
// wallet profile never stops existing.
type Redis struct {
	client *redis.Client
}

var _ Store = (*Redis)(nil)

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Save(ctx context.Context, flag WalletFlag) error {
	payload, err := json.Marshal(flag)
	if err != nil {
		return fmt.Errorf("encode wallet flag: %w", err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+flag.UserID, payload, 0).Err(); err != nil {
		return fmt.Errorf("save wallet flag: %w", err)
	}
	return nil
}

func (r *Redis) Find(ctx context.Context, userID string) (*WalletFlag, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find wallet flag: %w", err)
	}

	var flag WalletFlag
	if err := json.Unmarshal(data, &flag); err != nil {
		return nil, fmt.Errorf("decode wallet flag: %w", err)
	}
	return &flag, nil
}
