package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"llmgateway/internal/credential"
)

// RedisBackend persists snapshots in a single Redis hash,
// {prefix}:credstate, one field per credential id.
type RedisBackend struct {
	client *redis.Client
	key    string
}

// RedisConfig configures a RedisBackend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisBackend connects to Redis and verifies the connection with a
// ping before returning.
func NewRedisBackend(ctx context.Context, cfg RedisConfig) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("storage: redis ping %s: %w", cfg.Addr, err)
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "llmgateway"
	}
	return &RedisBackend{client: client, key: prefix + ":credstate"}, nil
}

func (r *RedisBackend) SaveSnapshots(ctx context.Context, snaps []credential.Snapshot) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.key)
	if len(snaps) > 0 {
		fields := make(map[string]any, len(snaps))
		for _, s := range snaps {
			b, err := json.Marshal(s)
			if err != nil {
				return err
			}
			fields[s.ID] = string(b)
		}
		pipe.HSet(ctx, r.key, fields)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisBackend) LoadSnapshots(ctx context.Context) ([]credential.Snapshot, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}
	out := make([]credential.Snapshot, 0, len(fields))
	for id, raw := range fields {
		var s credential.Snapshot
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("storage: corrupt snapshot for %s: %w", id, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
