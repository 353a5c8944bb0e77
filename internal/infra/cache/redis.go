package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	prefixOTP      = "jacare:otp:"
	prefixOTPFail  = "jacare:otp:fail:"
	prefixRevoked  = "jacare:revoked:"
	prefixReminder = "jacare:reminder:"
)

// MaxCodeMisses is how many wrong guesses burn a one-time code.
const MaxCodeMisses = 5

// Connect parses a redis:// URL and checks the server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// ===============================
// One-time codes
// ===============================

type RedisCodes struct {
	rdb *redis.Client
}

func NewRedisCodes(rdb *redis.Client) *RedisCodes {
	return &RedisCodes{rdb: rdb}
}

// Save replaces any previous code and its miss counter.
func (s *RedisCodes) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, prefixOTP+email, code, ttl)
		p.Del(ctx, prefixOTPFail+email)
		return nil
	})
	return err
}

// Consume deletes the code on a match so it works once. Misses are
// counted for as long as the code lives; the code is deleted on the
// MaxCodeMisses-th one.
func (s *RedisCodes) Consume(ctx context.Context, email, code string) (bool, error) {
	codeKey, failKey := prefixOTP+email, prefixOTPFail+email

	stored, err := s.rdb.Get(ctx, codeKey).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if stored != code {
		return false, s.miss(ctx, codeKey, failKey)
	}

	n, err := s.rdb.Del(ctx, codeKey).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		s.rdb.Del(ctx, failKey)
	}
	// a concurrent verify already used it
	return n == 1, nil
}

func (s *RedisCodes) miss(ctx context.Context, codeKey, failKey string) error {
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, failKey)
		ttl = p.PTTL(ctx, codeKey)
		return nil
	})
	if err != nil {
		return err
	}

	if incr.Val() >= MaxCodeMisses {
		return s.rdb.Del(ctx, codeKey, failKey).Err()
	}
	if incr.Val() == 1 && ttl.Val() > 0 {
		return s.rdb.PExpire(ctx, failKey, ttl.Val()).Err()
	}
	return nil
}

// ===============================
// Token revocation
// ===============================

type RedisRevocations struct {
	rdb *redis.Client
}

func NewRedisRevocations(rdb *redis.Client) *RedisRevocations {
	return &RedisRevocations{rdb: rdb}
}

func (s *RedisRevocations) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, prefixRevoked+tokenID, 1, ttl).Err()
}

func (s *RedisRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, prefixRevoked+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ===============================
// Reminder de-dup
// ===============================

type RedisClaims struct {
	rdb *redis.Client
}

func NewRedisClaims(rdb *redis.Client) *RedisClaims {
	return &RedisClaims{rdb: rdb}
}

func (s *RedisClaims) Claim(ctx context.Context, appointmentID string, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, prefixReminder+appointmentID, 1, ttl).Result()
}
