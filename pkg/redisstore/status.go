package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Latest observed state per monitor, written best-effort after every
// probe and read by the status endpoint. The database log row stays the
// source of truth.

func (c *Client) StoreStatus(ctx context.Context, monitorID uuid.UUID, status string, statusCode int32, latencyMs int64, checkedAt time.Time) error {
	key := fmt.Sprintf("monitor:status:%v", monitorID)

	return retry(ctx, 2, func() error {
		return c.rdb.HSet(ctx, key, map[string]any{
			"status":      status,
			"status_code": statusCode,
			"latency_ms":  latencyMs,
			"checked_at":  checkedAt.Unix(),
		}).Err()
	})
}

func (c *Client) GetStatus(ctx context.Context, monitorID uuid.UUID) (map[string]string, error) {
	key := fmt.Sprintf("monitor:status:%v", monitorID)

	res, err := c.rdb.HGetAll(ctx, key).Result()
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	return res, err
}

func (c *Client) DelStatus(ctx context.Context, monitorID uuid.UUID) error {
	key := fmt.Sprintf("monitor:status:%v", monitorID)

	return c.rdb.Del(ctx, key).Err()
}
