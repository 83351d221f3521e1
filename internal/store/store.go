// Package store persists block definitions in Redis as JSON documents.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aescanero/dago-node-prompt/internal/block"
	"github.com/aescanero/dago-node-prompt/internal/prompt"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrBlockNotFound is returned when no block is stored under an id
var ErrBlockNotFound = errors.New("block not found")

// RedisBlockStore stores blocks under <prefix><id>
type RedisBlockStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisBlockStore creates a new Redis block store. ttl 0 keeps blocks forever.
func NewRedisBlockStore(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *RedisBlockStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBlockStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *RedisBlockStore) key(id prompt.BlockID) string {
	return s.prefix + string(id)
}

// Save stores a block, replacing any previous definition
func (s *RedisBlockStore) Save(ctx context.Context, b block.Block) error {
	if b.ID == "" {
		return fmt.Errorf("cannot save block %q without an id", b.Name)
	}
	if err := b.Validate(); err != nil {
		return err
	}

	// Marshal block to JSON
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal block: %w", err)
	}

	// Save to Redis
	if err := s.client.Set(ctx, s.key(b.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save block: %w", err)
	}

	s.logger.Debug("block saved", zap.String("id", b.ID.String()), zap.String("name", b.Name))
	return nil
}

// Load loads a block
func (s *RedisBlockStore) Load(ctx context.Context, id prompt.BlockID) (block.Block, error) {
	// Get block from Redis
	data, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return block.Block{}, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
		}
		return block.Block{}, fmt.Errorf("failed to load block: %w", err)
	}

	var b block.Block
	if err := json.Unmarshal([]byte(data), &b); err != nil {
		return block.Block{}, fmt.Errorf("failed to unmarshal block %s: %w", id, err)
	}

	return b, nil
}

// LoadMany loads blocks in the order of ids. Any missing id fails the call.
func (s *RedisBlockStore) LoadMany(ctx context.Context, ids []prompt.BlockID) ([]block.Block, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load blocks: %w", err)
	}

	blocks := make([]block.Block, len(ids))
	for i, v := range values {
		data, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, ids[i])
		}
		if err := json.Unmarshal([]byte(data), &blocks[i]); err != nil {
			return nil, fmt.Errorf("failed to unmarshal block %s: %w", ids[i], err)
		}
	}

	return blocks, nil
}

// Delete deletes a block
func (s *RedisBlockStore) Delete(ctx context.Context, id prompt.BlockID) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete block: %w", err)
	}
	return nil
}

// Exists checks if a block is stored
func (s *RedisBlockStore) Exists(ctx context.Context, id prompt.BlockID) (bool, error) {
	result, err := s.client.Exists(ctx, s.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return result > 0, nil
}

// List returns the ids of all stored blocks
func (s *RedisBlockStore) List(ctx context.Context) ([]prompt.BlockID, error) {
	var ids []prompt.BlockID
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if id := strings.TrimPrefix(iter.Val(), s.prefix); id != "" {
			ids = append(ids, prompt.BlockID(id))
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	return ids, nil
}
