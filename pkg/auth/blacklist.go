package auth

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const blacklistPrefix = "blacklist:"

var ErrBlacklistDisabled = errors.New("token blacklist is not configured")

// Blacklist хранит отозванные токены в Redis до их истечения.
// Без Redis проверка всегда проходит, а Revoke возвращает ErrBlacklistDisabled.
type Blacklist struct {
	rdb *redis.Client
}

func NewBlacklist(rdb *redis.Client) *Blacklist {
	return &Blacklist{rdb: rdb}
}

func (b *Blacklist) Enabled() bool {
	return b != nil && b.rdb != nil
}

func (b *Blacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	if !b.Enabled() {
		return ErrBlacklistDisabled
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return b.rdb.Set(ctx, blacklistPrefix+token, 1, ttl).Err()
}

func (b *Blacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	if !b.Enabled() {
		return false, nil
	}
	exists, err := b.rdb.Exists(ctx, blacklistPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
