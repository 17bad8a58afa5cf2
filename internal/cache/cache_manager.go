package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// CacheManager groups the per-domain cache helpers.
type CacheManager struct {
	client *redis.Client

	Subject  *CacheHelper
	Carousel *CacheHelper
	Stats    *CacheHelper
	Exists   *CacheHelper
}

// NewCacheManager creates all cache helpers. A nil client degrades every
// helper to a no-op.
func NewCacheManager(client *redis.Client) *CacheManager {
	return &CacheManager{
		client:   client,
		Subject:  NewCacheHelper(client, SubjectCacheConfig.Prefix),
		Carousel: NewCacheHelper(client, CarouselCacheConfig.Prefix),
		Stats:    NewCacheHelper(client, StatsCacheConfig.Prefix),
		Exists:   NewCacheHelper(client, ExistsCacheConfig.Prefix),
	}
}

// HealthCheck verifies the underlying connection
func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.client == nil {
		return ErrCacheNotAvailable
	}
	return cm.client.Ping(ctx).Err()
}

// ClearAll clears every managed keyspace (use with caution)
func (cm *CacheManager) ClearAll(ctx context.Context) error {
	for _, helper := range []*CacheHelper{cm.Subject, cm.Carousel, cm.Stats, cm.Exists} {
		if err := helper.InvalidatePattern(ctx, "*"); err != nil {
			return err
		}
	}
	return nil
}

// SafeDelete deletes cache keys, logging instead of failing
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// SafeInvalidatePattern invalidates a cache pattern, logging instead of failing
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// InvalidateSubjectCache invalidates all subject-related caches
func InvalidateSubjectCache(ctx context.Context, cm *CacheManager, subjectID string) {
	if cm == nil {
		return
	}
	SafeDelete(ctx, cm.Subject, fmt.Sprintf("id:%s", subjectID))
	SafeInvalidatePattern(ctx, cm.Subject, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, "dashboard:*")
}

// InvalidateCarouselCache invalidates the carousel list cache
func InvalidateCarouselCache(ctx context.Context, cm *CacheManager) {
	if cm == nil {
		return
	}
	SafeInvalidatePattern(ctx, cm.Carousel, "list:*")
}

// InvalidateUserCaches invalidates user-derived aggregates after user or
// enrollment writes
func InvalidateUserCaches(ctx context.Context, cm *CacheManager) {
	if cm == nil {
		return
	}
	SafeInvalidatePattern(ctx, cm.Stats, "dashboard:*")
	SafeInvalidatePattern(ctx, cm.Exists, "user:*")
}
