package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/CHOISC1208/psi-erp/internal/config"
	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	matrixKeyPrefix     = "psi:matrix"
	matrixScanBatchSize = 100
)

// MatrixCache caches aggregated matrix responses per session and query.
// Entries are scoped so an ingest or plan edit can drop everything that
// belongs to one session without touching the rest.
type MatrixCache interface {
	Get(ctx context.Context, query domain.MatrixQuery) ([]domain.MatrixRow, bool, error)
	Set(ctx context.Context, query domain.MatrixQuery, rows []domain.MatrixRow) error
	InvalidateSession(ctx context.Context, sessionID uuid.UUID) error
	InvalidateAll(ctx context.Context) error
}

type redisMatrixCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopMatrixCache struct{}

func NewMatrixCache(cfg config.CacheConfig) (MatrixCache, error) {
	if !cfg.Enabled {
		return &noopMatrixCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisMatrixCache{client: client, ttl: ttl}, nil
}

func NewNoopMatrixCache() MatrixCache {
	return &noopMatrixCache{}
}

func (c *redisMatrixCache) Get(ctx context.Context, query domain.MatrixQuery) ([]domain.MatrixRow, bool, error) {
	payload, err := c.client.Get(ctx, buildMatrixKey(query)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var rows []domain.MatrixRow
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, false, fmt.Errorf("decode matrix cache: %w", err)
	}
	return rows, true, nil
}

func (c *redisMatrixCache) Set(ctx context.Context, query domain.MatrixQuery, rows []domain.MatrixRow) error {
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode matrix cache: %w", err)
	}
	if err := c.client.Set(ctx, buildMatrixKey(query), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisMatrixCache) InvalidateSession(ctx context.Context, sessionID uuid.UUID) error {
	prefix := fmt.Sprintf("%s:%s:", matrixKeyPrefix, sessionID)
	return deleteKeysWithPrefix(ctx, c.client, prefix, matrixScanBatchSize)
}

func (c *redisMatrixCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, matrixKeyPrefix, matrixScanBatchSize)
}

func (n *noopMatrixCache) Get(ctx context.Context, query domain.MatrixQuery) ([]domain.MatrixRow, bool, error) {
	return nil, false, nil
}

func (n *noopMatrixCache) Set(ctx context.Context, query domain.MatrixQuery, rows []domain.MatrixRow) error {
	return nil
}

func (n *noopMatrixCache) InvalidateSession(ctx context.Context, sessionID uuid.UUID) error {
	return nil
}

func (n *noopMatrixCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildMatrixKey(query domain.MatrixQuery) string {
	return fmt.Sprintf("%s:%s:%s", matrixKeyPrefix, query.SessionID, matrixQueryHash(query))
}

func matrixQueryHash(query domain.MatrixQuery) string {
	parts := []string{
		"start=" + query.StartDate.Format("2006-01-02"),
		"end=" + query.EndDate.Format("2006-01-02"),
	}
	if query.PlanID != nil {
		parts = append(parts, "plan="+query.PlanID.String())
	}
	if len(query.SKUCodes) > 0 {
		parts = append(parts, "skus="+joinNormalized(query.SKUCodes))
	}
	if len(query.Warehouses) > 0 {
		parts = append(parts, "warehouses="+joinNormalized(query.Warehouses))
	}
	if len(query.Channels) > 0 {
		parts = append(parts, "channels="+joinNormalized(query.Channels))
	}

	sort.Strings(parts)
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func joinNormalized(values []string) string {
	c := append([]string(nil), values...)
	for i := range c {
		c[i] = strings.TrimSpace(c[i])
	}
	sort.Strings(c)
	return strings.Join(c, ",")
}
