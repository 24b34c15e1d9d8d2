package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/tarpaulin-service/internal/cache"
	"github.com/SAP-F-2025/tarpaulin-service/internal/models"
	"github.com/SAP-F-2025/tarpaulin-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db    *gorm.DB
	cache *cache.CacheManager

	user   repositories.UserRepository
	course repositories.CourseRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB   *gorm.DB
	Blob repositories.BlobRepository

	// RedisClient enables the course read cache when set
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a repository bound to db
func NewPostgreSQLRepository(db *gorm.DB, cm *cache.CacheManager) repositories.Repository {
	return &PostgreSQLRepository{
		db:     db,
		cache:  cm,
		user:   NewUserPostgreSQL(db),
		course: NewCoursePostgreSQL(db, cm),
	}
}

// User returns the user repository
func (r *PostgreSQLRepository) User() repositories.UserRepository {
	return r.user
}

// Course returns the course repository
func (r *PostgreSQLRepository) Course() repositories.CourseRepository {
	return r.course
}

// WithTransaction executes a function within a database transaction
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	var touched []int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgreSQLRepository{
			db:     tx,
			cache:  r.cache,
			user:   NewUserPostgreSQL(tx),
			course: newTxCoursePostgreSQL(tx, r.cache, &touched),
		})
	})
	if err == nil && len(touched) > 0 {
		cache.InvalidateCourseCache(ctx, r.cache, touched...)
	}
	return err
}

// Ping checks the health of the database connection
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// Close closes the database connection
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize checks the connection and migrates the users and courses tables
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}
	if rm.config.Blob == nil {
		return fmt.Errorf("blob repository is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if err := rm.config.DB.WithContext(ctx).AutoMigrate(&models.User{}, &models.Course{}); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	rm.repo = NewPostgreSQLRepository(rm.config.DB, cache.NewCacheManager(rm.config.RedisClient))

	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// GetBlobRepository returns the object store adapter
func (rm *RepositoryManager) GetBlobRepository() repositories.BlobRepository {
	return rm.config.Blob
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}
