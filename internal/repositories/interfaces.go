package repositories

import (
	"context"
	"errors"
	"io"

	"github.com/SAP-F-2025/tarpaulin-service/internal/models"
)

// ErrNotFound is returned by every repository when the addressed entity or
// blob does not exist.
var ErrNotFound = errors.New("not found")

// CourseFilters defines paging for course listings
type CourseFilters struct {
	Offset int
	Limit  int
}

// CourseRepository interface for course operations
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error

	// List returns one page ordered by subject ascending
	List(ctx context.Context, filters CourseFilters) ([]*models.Course, error)
}

// BlobRepository interface for the named-object store holding avatars and
// images.
type BlobRepository interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	Get(ctx context.Context, key string) (*models.Blob, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
