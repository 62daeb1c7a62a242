package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	redis "github.com/redis/go-redis/v9"

	"shopos/backend/internal/store"
)

// Store keeps each collection in a hash {body, version} under prefix+key.
type Store struct {
	client *redis.Client
	prefix string
}

func New(addr string, password string, db int, prefix string) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if prefix == "" {
		prefix = "shopos:"
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(c store.Collection) string {
	return s.prefix + string(c)
}

func (s *Store) Load(ctx context.Context, key store.Collection) (store.Document, error) {
	fields, err := s.client.HMGet(ctx, s.key(key), "body", "version").Result()
	if err != nil {
		return store.Document{}, err
	}
	if fields[0] == nil {
		return store.Document{}, store.ErrNotFound
	}
	body, _ := fields[0].(string)
	version, err := parseVersion(fields[1])
	if err != nil {
		return store.Document{}, err
	}
	return store.Document{Body: []byte(body), Version: version}, nil
}

func (s *Store) Save(ctx context.Context, key store.Collection, body []byte, expectedVersion int64) (int64, error) {
	redisKey := s.key(key)
	next := expectedVersion + 1

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, redisKey, "version").Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		current, err := parseVersion(raw)
		if err != nil {
			return err
		}
		if current != expectedVersion {
			return fmt.Errorf("%w: %s at version %d, expected %d", store.ErrConflict, key, current, expectedVersion)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, redisKey, "body", body, "version", next)
			return nil
		})
		return err
	}, redisKey)

	if errors.Is(err, redis.TxFailedErr) {
		return 0, fmt.Errorf("%w: %s changed during save", store.ErrConflict, key)
	}
	if err != nil {
		return 0, err
	}
	return next, nil
}

func parseVersion(raw any) (int64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case string:
		if v == "" {
			return 0, nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: version %q", store.ErrCorrupt, v)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: version of type %T", store.ErrCorrupt, raw)
}
