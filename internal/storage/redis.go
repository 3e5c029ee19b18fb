package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	redisKeyPrefix = "mentions:snapshot:"
	redisOpTimeout = 5 * time.Second
)

// RedisStorage keeps feed snapshots as plain string keys
type RedisStorage struct {
	client *redis.Client
}

// Ensure RedisStorage implements StorageInterface
var _ StorageInterface = (*RedisStorage)(nil)

// NewRedisStorage connects to Redis and verifies the connection
func NewRedisStorage(addr, password string, db int) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	logrus.Infof("Connected to redis at %s (db %d)", addr, db)
	return NewRedisStorageWithClient(client), nil
}

// NewRedisStorageWithClient wraps an existing client
func NewRedisStorageWithClient(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

func (s *RedisStorage) Store(filename string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := s.client.Set(ctx, redisKeyPrefix+filename, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store %s in redis: %w", filename, err)
	}

	logrus.WithFields(logrus.Fields{"key": filename, "bytes": len(data)}).Info("Stored feed snapshot")
	return nil
}

func (s *RedisStorage) Retrieve(filename string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, redisKeyPrefix+filename).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("snapshot not found: %s", filename)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from redis: %w", filename, err)
	}
	return data, nil
}

// List scans keys under the snapshot prefix and returns them sorted
func (s *RedisStorage) List(prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	var (
		names  []string
		cursor uint64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, redisKeyPrefix+prefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan redis keys: %w", err)
		}
		for _, key := range keys {
			names = append(names, strings.TrimPrefix(key, redisKeyPrefix))
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	sort.Strings(names)
	return names, nil
}

func (s *RedisStorage) Delete(filename string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := s.client.Del(ctx, redisKeyPrefix+filename).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from redis: %w", filename, err)
	}
	return nil
}

// Close releases the underlying connection pool
func (s *RedisStorage) Close() error {
	return s.client.Close()
}
