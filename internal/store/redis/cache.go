package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gosuda/kanban/internal/domain"
)

const (
	boardKeyPrefix     = "board:"
	boardListKeyPrefix = "boards:"
)

// errStale aborts a compare-and-set whose entry moved past the caller's
// version.
var errStale = errors.New("stale version")

// BoardCache stores board snapshots and per-user board lists as JSON. Every
// entry key has a companion version key, incremented on each write and
// delete, so writers can compare-and-set against the version they read.
// Getters return nil on a miss, with the version still reported.
type BoardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBoardCache(client *redis.Client, ttl time.Duration) *BoardCache {
	return &BoardCache{client: client, ttl: ttl}
}

func BoardKey(boardID uuid.UUID) string {
	return boardKeyPrefix + boardID.String()
}

func BoardListKey(userID uuid.UUID) string {
	return boardListKeyPrefix + userID.String()
}

func versionKey(key string) string {
	return key + ":version"
}

func (c *BoardCache) GetBoard(ctx context.Context, boardID uuid.UUID) (*domain.BoardDetail, int64, error) {
	d, version, err := getVersioned[domain.BoardDetail](ctx, c.client, BoardKey(boardID))
	if err != nil {
		return nil, 0, fmt.Errorf("redis.BoardCache.GetBoard: %w", err)
	}
	return d, version, nil
}

// SetBoard stores d if the snapshot is still at version.
func (c *BoardCache) SetBoard(ctx context.Context, d *domain.BoardDetail, version int64) (bool, error) {
	stored, err := c.setIfVersion(ctx, BoardKey(d.ID), d, version)
	if err != nil {
		return false, fmt.Errorf("redis.BoardCache.SetBoard: %w", err)
	}
	return stored, nil
}

func (c *BoardCache) DeleteBoard(ctx context.Context, boardID uuid.UUID) error {
	if err := c.invalidate(ctx, BoardKey(boardID)); err != nil {
		return fmt.Errorf("redis.BoardCache.DeleteBoard: %w", err)
	}
	return nil
}

func (c *BoardCache) GetBoards(ctx context.Context, userID uuid.UUID) ([]*domain.Board, int64, error) {
	boards, version, err := getVersioned[[]*domain.Board](ctx, c.client, BoardListKey(userID))
	if err != nil {
		return nil, 0, fmt.Errorf("redis.BoardCache.GetBoards: %w", err)
	}
	if boards == nil {
		return nil, version, nil
	}
	return *boards, version, nil
}

// SetBoards stores the list if it is still at version.
func (c *BoardCache) SetBoards(ctx context.Context, userID uuid.UUID, boards []*domain.Board, version int64) (bool, error) {
	if boards == nil {
		boards = []*domain.Board{}
	}
	stored, err := c.setIfVersion(ctx, BoardListKey(userID), boards, version)
	if err != nil {
		return false, fmt.Errorf("redis.BoardCache.SetBoards: %w", err)
	}
	return stored, nil
}

func (c *BoardCache) DeleteBoards(ctx context.Context, userID uuid.UUID) error {
	if err := c.invalidate(ctx, BoardListKey(userID)); err != nil {
		return fmt.Errorf("redis.BoardCache.DeleteBoards: %w", err)
	}
	return nil
}

// setIfVersion writes v under key and bumps the version, unless the version
// differs from the given one or changes before the write commits.
func (c *BoardCache) setIfVersion(ctx context.Context, key string, v any, version int64) (bool, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("encode: %w", err)
	}
	vkey := versionKey(key)

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vkey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, c.ttl)
			pipe.Incr(ctx, vkey)
			pipe.Expire(ctx, vkey, c.ttl)
			return nil
		})
		return err
	}, vkey)
	switch {
	case errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// invalidate deletes key and bumps its version, which fails every
// compare-and-set still holding the old one.
func (c *BoardCache) invalidate(ctx context.Context, key string) error {
	vkey := versionKey(key)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.Incr(ctx, vkey)
		pipe.Expire(ctx, vkey, c.ttl)
		return nil
	})
	return err
}

// getVersioned reads key and its version in one round trip. A missing
// version counts as zero.
func getVersioned[T any](ctx context.Context, client *redis.Client, key string) (*T, int64, error) {
	vals, err := client.MGet(ctx, key, versionKey(key)).Result()
	if err != nil {
		return nil, 0, err
	}

	var version int64
	if s, ok := vals[1].(string); ok {
		if version, err = strconv.ParseInt(s, 10, 64); err != nil {
			return nil, 0, fmt.Errorf("version: %w", err)
		}
	}
	s, ok := vals[0].(string)
	if !ok {
		return nil, version, nil
	}
	v, err := decode[T]([]byte(s))
	if err != nil {
		return nil, 0, err
	}
	return v, version, nil
}

func decode[T any](b []byte) (*T, error) {
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &v, nil
}
