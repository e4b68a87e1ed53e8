package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"admission-api/core/constants"
	"admission-api/core/logger"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
}

func NewCache(addr, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	logger.Info("Redis cache initialized", "addr", addr, "db", db)
	return &Cache{client: client}, nil
}

// NewCacheFromClient wraps an existing client. Tests use this with miniredis.
func NewCacheFromClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// hashToken keeps raw JWTs out of redis keys.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) AddToTokenBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	return c.client.Set(ctx, constants.RedisKeyTokenBlacklist+hashToken(token), "1", ttl).Err()
}

func (c *Cache) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	n, err := c.client.Exists(ctx, constants.RedisKeyTokenBlacklist+hashToken(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IncrementLoginAttempt bumps the failed-login counter for an identifier and
// returns the new count. The counter expires after the lockout window.
func (c *Cache) IncrementLoginAttempt(ctx context.Context, identifier string, window time.Duration) (int64, error) {
	key := constants.RedisKeyLoginAttempt + identifier
	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		c.client.Expire(ctx, key, window)
	}
	return n, nil
}

func (c *Cache) ResetLoginAttempt(ctx context.Context, identifier string) error {
	return c.client.Del(ctx, constants.RedisKeyLoginAttempt+identifier).Err()
}

func (c *Cache) SetOTP(ctx context.Context, key, otp string) error {
	return c.client.Set(ctx, key, otp, 5*time.Minute).Err()
}

func (c *Cache) GetOTP(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

// Booking sessions hold the ephemeral slot selection between the detail and
// confirm steps. They expire on their own; cancel just deletes.

func (c *Cache) SetBookingSession(ctx context.Context, sessionID string, session any) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, constants.RedisKeyBookingSession+sessionID, data, constants.BookingSessionTTL).Err()
}

var ErrSessionNotFound = errors.New("booking session not found or expired")

func (c *Cache) GetBookingSession(ctx context.Context, sessionID string, dest any) error {
	data, err := c.client.Get(ctx, constants.RedisKeyBookingSession+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *Cache) DeleteBookingSession(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, constants.RedisKeyBookingSession+sessionID).Err()
}

// AcquireBookingGuard takes the per-user single-submission lock. Returns
// false when a submission is already in flight. The TTL is a backstop only;
// the caller must release in a defer so the guard is never left stuck.
func (c *Cache) AcquireBookingGuard(ctx context.Context, userID string) (bool, error) {
	return c.client.SetNX(ctx, constants.RedisKeyBookingGuard+userID, "1", constants.BookingGuardTTL).Result()
}

func (c *Cache) ReleaseBookingGuard(ctx context.Context, userID string) error {
	return c.client.Del(ctx, constants.RedisKeyBookingGuard+userID).Err()
}
