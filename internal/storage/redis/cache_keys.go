package redis

import (
	"context"
	"fmt"
	"time"

	"jobtracker/internal/models"
)

const (
	RateLimitWindowTTL = 1 * time.Minute
	SidebarCountsTTL   = 5 * time.Minute
)

func RateLimitKey(userID int64) string {
	return fmt.Sprintf("ratelimit:user:%d", userID)
}

func SidebarCountsKey(ownerID int64) string {
	return fmt.Sprintf("counts:user:%d", ownerID)
}

func (c *Cache) IncrementUserRateLimit(ctx context.Context, userID int64) (int64, error) {
	return c.IncrementWithExpiry(ctx, RateLimitKey(userID), RateLimitWindowTTL)
}

// GetSidebarCounts returns ErrCacheMiss when nothing is cached for the owner.
func (c *Cache) GetSidebarCounts(ctx context.Context, ownerID int64) (*models.SidebarCounts, error) {
	var counts models.SidebarCounts
	if err := c.Get(ctx, SidebarCountsKey(ownerID), &counts); err != nil {
		return nil, err
	}
	return &counts, nil
}

func (c *Cache) SetSidebarCounts(ctx context.Context, ownerID int64, counts *models.SidebarCounts) error {
	return c.Set(ctx, SidebarCountsKey(ownerID), counts, SidebarCountsTTL)
}

func (c *Cache) InvalidateSidebarCounts(ctx context.Context, ownerID int64) error {
	return c.Delete(ctx, SidebarCountsKey(ownerID))
}
