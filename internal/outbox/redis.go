package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const DefaultKey = "jacare:outbox:appointments"

// watchRetries bounds the optimistic transactions of Update and RemoveIf.
const watchRetries = 8

// RedisStore keeps one hash field per appointment id. Read-modify-write
// goes through WATCH/MULTI on the hash so concurrent writers retry
// instead of overwriting each other.
type RedisStore struct {
	rdb *redis.Client
	key string
}

func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Add(ctx context.Context, e Entry) (*Entry, bool, error) {
	b, err := encode(e)
	if err != nil {
		return nil, false, err
	}

	added, err := s.rdb.HSetNX(ctx, s.key, e.ID(), b).Result()
	if err != nil {
		return nil, false, err
	}
	if added {
		return &e, true, nil
	}

	cur, err := s.Get(ctx, e.ID())
	if err != nil {
		return nil, false, err
	}
	return cur, false, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Entry, error) {
	return s.get(ctx, s.rdb, id)
}

func (s *RedisStore) List(ctx context.Context) ([]Entry, error) {
	all, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(all))
	for id, raw := range all {
		var e Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			// a corrupt field must not hide the rest of the outbox
			continue
		}
		if e.Appointment.ID == "" {
			e.Appointment.ID = id
		}
		out = append(out, e)
	}

	sortByEnqueue(out)
	return out, nil
}

func (s *RedisStore) Update(ctx context.Context, id string, fn func(e *Entry) error) (*Entry, error) {
	var out *Entry

	err := s.watch(ctx, func(tx *redis.Tx) error {
		e, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
		e.Version++

		b, err := encode(*e)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, s.key, id, b)
			return nil
		})
		if err == nil {
			out = e
		}
		return err
	})
	return out, err
}

func (s *RedisStore) RemoveIf(ctx context.Context, id string, version int) (bool, error) {
	removed := false

	err := s.watch(ctx, func(tx *redis.Tx) error {
		e, err := s.get(ctx, tx, id)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if e.Version != version {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HDel(ctx, s.key, id)
			return nil
		})
		removed = err == nil
		return err
	})
	return removed, err
}

func (s *RedisStore) watch(ctx context.Context, fn func(tx *redis.Tx) error) error {
	for i := 0; i < watchRetries; i++ {
		err := s.rdb.Watch(ctx, fn, s.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConflict
}

func (s *RedisStore) get(ctx context.Context, c redis.Cmdable, id string) (*Entry, error) {
	raw, err := c.HGet(ctx, s.key, id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("outbox: decode %s: %w", id, err)
	}
	return &e, nil
}

func encode(e Entry) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("outbox: encode %s: %w", e.ID(), err)
	}
	return b, nil
}

var _ Store = (*RedisStore)(nil)
