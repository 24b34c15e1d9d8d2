package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// CourseKey is the key of one cached course
func CourseKey(id int64) string {
	return fmt.Sprintf("id:%d", id)
}

// CoursePageKey is the key of one cached listing page
func CoursePageKey(offset, limit int) string {
	return fmt.Sprintf("list:%d:%d", offset, limit)
}

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateCourseCache drops the given courses and every listing page,
// since any write can shift the pages
func InvalidateCourseCache(ctx context.Context, cm *CacheManager, courseIDs ...int64) {
	if !cm.Enabled() {
		return
	}

	keys := make([]string, 0, len(courseIDs))
	for _, id := range courseIDs {
		keys = append(keys, CourseKey(id))
	}
	SafeDelete(ctx, cm.Course, keys...)
	SafeInvalidatePattern(ctx, cm.Course, "list:*")
}
