package repositories

import "context"

// Repository aggregates the entity store repositories
type Repository interface {
	User() UserRepository
	Course() CourseRepository

	// WithTransaction runs fn against a repository bound to one entity-store
	// transaction. Blob operations are never part of it.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize runs auto-migration for the tables this service owns
	Initialize() error

	GetRepository() Repository
	GetBlobRepository() BlobRepository

	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
