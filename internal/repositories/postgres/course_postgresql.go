package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/tarpaulin-service/internal/cache"
	"github.com/SAP-F-2025/tarpaulin-service/internal/models"
	"github.com/SAP-F-2025/tarpaulin-service/internal/repositories"
)

type CoursePostgreSQL struct {
	db    *gorm.DB
	cache *cache.CacheManager

	// set inside a transaction: writes are recorded here and invalidated
	// after commit, reads bypass the cache
	touched *[]int64
}

func NewCoursePostgreSQL(db *gorm.DB, cm *cache.CacheManager) repositories.CourseRepository {
	return &CoursePostgreSQL{db: db, cache: cm}
}

func newTxCoursePostgreSQL(tx *gorm.DB, cm *cache.CacheManager, touched *[]int64) *CoursePostgreSQL {
	return &CoursePostgreSQL{db: tx, cache: cm, touched: touched}
}

func (c *CoursePostgreSQL) cached() bool {
	return c.touched == nil && c.cache.Enabled()
}

func (c *CoursePostgreSQL) invalidate(ctx context.Context, id int64) {
	if c.touched != nil {
		*c.touched = append(*c.touched, id)
		return
	}
	cache.InvalidateCourseCache(ctx, c.cache, id)
}

func (c *CoursePostgreSQL) Create(ctx context.Context, course *models.Course) error {
	if err := c.db.WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	c.invalidate(ctx, course.ID)
	return nil
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	if !c.cached() {
		return c.getByID(ctx, id)
	}
	return cache.CacheOrExecute(ctx, c.cache.Course, cache.CourseKey(id), cache.CourseCacheConfig.TTL,
		func() (*models.Course, error) { return c.getByID(ctx, id) })
}

func (c *CoursePostgreSQL) getByID(ctx context.Context, id int64) (*models.Course, error) {
	var course models.Course
	if err := c.db.WithContext(ctx).First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get course %d: %w", id, err)
	}
	return &course, nil
}

func (c *CoursePostgreSQL) Update(ctx context.Context, course *models.Course) error {
	// Select("*") so zero values (e.g. an empty term) are written too
	result := c.db.WithContext(ctx).Model(course).Select("*").Updates(course)
	if result.Error != nil {
		return fmt.Errorf("failed to update course %d: %w", course.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	c.invalidate(ctx, course.ID)
	return nil
}

func (c *CoursePostgreSQL) Delete(ctx context.Context, id int64) error {
	result := c.db.WithContext(ctx).Delete(&models.Course{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete course %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CoursePostgreSQL) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, error) {
	if !c.cached() {
		return c.list(ctx, filters)
	}
	return cache.CacheOrExecute(ctx, c.cache.Course, cache.CoursePageKey(filters.Offset, filters.Limit),
		cache.CourseCacheConfig.TTL, func() ([]*models.Course, error) { return c.list(ctx, filters) })
}

func (c *CoursePostgreSQL) list(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, error) {
	var courses []*models.Course
	query := c.db.WithContext(ctx).Order("subject ASC").Order("id ASC")
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if err := query.Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}
