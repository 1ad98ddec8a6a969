package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vendor-portal/domain/model"
	"vendor-portal/infrastructure/logger"
)

const publishStatusTTL = 24 * time.Hour

// PublishStatus is the cached view of a product's last publish attempt.
type PublishStatus struct {
	ProductID         int64     `json:"product_id"`
	Success           bool      `json:"success"`
	PlatformProductID string    `json:"platform_product_id,omitempty"`
	Error             string    `json:"error,omitempty"`
	AttemptedAt       time.Time `json:"attempted_at"`
}

// PublishStatusCache keeps the last publish attempt per product in Redis so
// status reads skip the database. Best-effort; a nil or unreachable client
// degrades to cache misses.
type PublishStatusCache struct {
	client *redis.Client
}

func NewPublishStatusCache(client *redis.Client) *PublishStatusCache {
	return &PublishStatusCache{client: client}
}

func key(productID int64) string {
	return fmt.Sprintf("publish:status:%d", productID)
}

func (c *PublishStatusCache) Set(ctx context.Context, productID int64, result model.PublishResult) {
	if c == nil || c.client == nil {
		return
	}
	status := PublishStatus{
		ProductID:         productID,
		Success:           result.Success,
		PlatformProductID: result.PlatformProductID,
		Error:             result.ErrorMessage(),
		AttemptedAt:       time.Now().UTC(),
	}
	payload, err := json.Marshal(status)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(productID), payload, publishStatusTTL).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Debug("Publish status cache write failed")
	}
}

func (c *PublishStatusCache) Get(ctx context.Context, productID int64) (*PublishStatus, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, key(productID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.GetLogger().WithField("error", err).Debug("Publish status cache read failed")
		}
		return nil, false
	}
	var status PublishStatus
	if err := json.Unmarshal(payload, &status); err != nil {
		return nil, false
	}
	return &status, true
}
