package library

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "conceptmap:"

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps each entry in a hash and the set of ids in an index key.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := ping(ctx, func(ctx context.Context) error { return client.Ping(ctx).Err() }); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	return &RedisStore{client: client}, nil
}

func entryKey(id string) string { return redisPrefix + "map:" + id }

const indexKey = redisPrefix + "maps"

func (s *RedisStore) Put(ctx context.Context, e *Entry) error {
	if err := e.prepare(time.Now()); err != nil {
		return err
	}
	key := entryKey(e.ID)

	created := e.CreatedAt.UnixMilli()
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, key, "created_at", created)
		pipe.HSet(ctx, key,
			"name", e.Name,
			"data", []byte(e.Data),
			"nodes", e.Nodes,
			"arrows", e.Arrows,
			"updated_at", e.UpdatedAt.UnixMilli(),
		)
		pipe.SAdd(ctx, indexKey, e.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", e.ID, err)
	}

	if v, err := s.client.HGet(ctx, key, "created_at").Int64(); err == nil {
		e.CreatedAt = time.UnixMilli(v).UTC()
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Entry, error) {
	fields, err := s.client.HGetAll(ctx, entryKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	e := &Entry{
		ID:        id,
		Name:      fields["name"],
		Data:      []byte(fields["data"]),
		Nodes:     atoi(fields["nodes"]),
		Arrows:    atoi(fields["arrows"]),
		CreatedAt: millis(fields["created_at"]),
		UpdatedAt: millis(fields["updated_at"]),
	}
	return e, nil
}

func (s *RedisStore) List(ctx context.Context) ([]Summary, error) {
	ids, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	cmds := make([]*redis.SliceCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HMGet(ctx, entryKey(id), "name", "nodes", "arrows", "updated_at")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	out := make([]Summary, 0, len(ids))
	for i, cmd := range cmds {
		vals := cmd.Val()
		if len(vals) != 4 || vals[0] == nil {
			continue // removed between SMEMBERS and HMGET
		}
		out = append(out, Summary{
			ID:        ids[i],
			Name:      str(vals[0]),
			Nodes:     atoi(str(vals[1])),
			Arrows:    atoi(str(vals[2])),
			UpdatedAt: millis(str(vals[3])),
		})
	}
	sortSummaries(out)
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, entryKey(id))
		pipe.SRem(ctx, indexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the client connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func str(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func millis(s string) time.Time {
	n, _ := strconv.ParseInt(s, 10, 64)
	return time.UnixMilli(n).UTC()
}

var _ Store = (*RedisStore)(nil)
