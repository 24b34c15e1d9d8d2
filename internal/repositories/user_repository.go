package repositories

import (
	"context"

	"github.com/SAP-F-2025/tarpaulin-service/internal/models"
)

// UserRepository interface for user operations. Accounts are provisioned
// out-of-band, so there is no Create or Delete.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// FindBySub returns at most limit users carrying the given subject.
	FindBySub(ctx context.Context, sub string, limit int) ([]*models.User, error)

	// List and ListByRole return users in store scan order (primary key).
	List(ctx context.Context) ([]*models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]*models.User, error)

	// UpdateCourses persists only the courses column of the user.
	UpdateCourses(ctx context.Context, user *models.User) error
}
