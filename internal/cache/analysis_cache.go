package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spacesedan/nluflow/internal/models"
)

const (
	KEY_PREFIX       = "nlu:analysis:"
	DEFAULT_LRU_SIZE = 1024
)

// RemoteStore is the shared second tier, implemented by the Valkey client.
type RemoteStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// AnalysisCache keeps analysis results in process and, when a remote store
// is configured, shares them across workers.
type AnalysisCache struct {
	local  *lru.Cache[string, []byte]
	remote RemoteStore
	ttl    time.Duration
}

// NewAnalysisCache builds the cache. remote may be nil.
func NewAnalysisCache(size int, remote RemoteStore, ttl time.Duration) (*AnalysisCache, error) {
	if size <= 0 {
		size = DEFAULT_LRU_SIZE
	}
	local, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("[AnalysisCache] failed to create LRU: %w", err)
	}
	return &AnalysisCache{local: local, remote: remote, ttl: ttl}, nil
}

// Key hashes the serialized request. Requests that serialize the same share
// a key.
func Key(req models.AnalyzeRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("[AnalysisCache] failed to marshal request: %w", err)
	}
	return fmt.Sprintf("%s%016x", KEY_PREFIX, xxhash.Sum64(data)), nil
}

// Get returns the cached results for req. Remote failures count as misses.
func (c *AnalysisCache) Get(ctx context.Context, req models.AnalyzeRequest) (*models.AnalysisResults, bool) {
	key, err := Key(req)
	if err != nil {
		return nil, false
	}

	if data, ok := c.local.Get(key); ok {
		if results, ok := decode(key, data); ok {
			return results, true
		}
		c.local.Remove(key)
	}

	if c.remote == nil {
		return nil, false
	}

	data, found, err := c.remote.Get(ctx, key)
	if err != nil {
		slog.Warn("[AnalysisCache] Remote lookup failed, treating as miss",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, false
	}
	if !found {
		return nil, false
	}

	results, ok := decode(key, data)
	if !ok {
		return nil, false
	}
	c.local.Add(key, data)
	return results, true
}

// Put stores results for req in both tiers.
func (c *AnalysisCache) Put(ctx context.Context, req models.AnalyzeRequest, results *models.AnalysisResults) error {
	if results == nil {
		return nil
	}
	key, err := Key(req)
	if err != nil {
		return err
	}
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("[AnalysisCache] failed to marshal results: %w", err)
	}

	c.local.Add(key, data)
	if c.remote == nil {
		return nil
	}
	if err := c.remote.Set(ctx, key, data, c.ttl); err != nil {
		return fmt.Errorf("[AnalysisCache] failed to store %s: %w", key, err)
	}
	return nil
}

func (c *AnalysisCache) Len() int {
	return c.local.Len()
}

func decode(key string, data []byte) (*models.AnalysisResults, bool) {
	var results models.AnalysisResults
	if err := json.Unmarshal(data, &results); err != nil {
		slog.Warn("[AnalysisCache] Dropping undecodable entry",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, false
	}
	return &results, true
}
