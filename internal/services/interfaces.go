package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/tarpaulin-service/internal/models"
	"github.com/SAP-F-2025/tarpaulin-service/internal/validator"
)

// ===== REQUEST DTOs =====

type LoginRequest = validator.LoginRequest
type CreateCourseRequest = validator.CourseCreateRequest
type UpdateCourseRequest = validator.CourseUpdateRequest
type UpdateEnrollmentRequest = validator.EnrollmentUpdateRequest

// UserDetail is a user plus the facts derived from other stores
type UserDetail struct {
	*models.User
	HasAvatar bool
}

// ===== SERVICES =====

// AccessService resolves callers and applies the role rules. It never
// mutates anything.
type AccessService interface {
	ResolveRequester(ctx context.Context, sub string) (*models.User, error)

	RequireAdmin(requester *models.User, action string) error
	RequireSelfOrAdmin(requester *models.User, targetID int64, action string) error
	RequireOwner(requester *models.User, targetID int64, action string) error
	RequireCourseManager(requester *models.User, course *models.Course, action string) error

	// AuthorizeCourseManager loads the course and applies
	// RequireCourseManager. A missing course is reported as not found to
	// admins and as forbidden to everyone else.
	AuthorizeCourseManager(ctx context.Context, sub string, courseID int64, action string) (*models.User, *models.Course, error)
}

type AuthService interface {
	Login(ctx context.Context, clientKey string, req *LoginRequest) (string, error)
	// Subject returns the caller's subject for a bearer token
	Subject(ctx context.Context, token string) (string, error)
}

type UserService interface {
	List(ctx context.Context, sub string) ([]*models.User, error)
	Get(ctx context.Context, sub string, id int64) (*UserDetail, error)

	UploadAvatar(ctx context.Context, sub string, id int64, body io.Reader) error
	GetAvatar(ctx context.Context, sub string, id int64) (*models.Blob, error)
	DeleteAvatar(ctx context.Context, sub string, id int64) error
}

type CourseService interface {
	Create(ctx context.Context, sub string, req *CreateCourseRequest) (*models.Course, error)
	List(ctx context.Context, offset, limit int) ([]*models.Course, error)
	Get(ctx context.Context, id int64) (*models.Course, error)
	Update(ctx context.Context, sub string, id int64, req *UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, sub string, id int64) error
}

type EnrollmentService interface {
	Update(ctx context.Context, sub string, courseID int64, req *UpdateEnrollmentRequest) error
	List(ctx context.Context, sub string, courseID int64) ([]int64, error)
	ExportRoster(ctx context.Context, sub string, courseID int64) ([]byte, error)
}

type ImageService interface {
	Put(ctx context.Context, name string, contentType string, body io.Reader) error
	Get(ctx context.Context, name string) (*models.Blob, error)
	Delete(ctx context.Context, name string) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Access() AccessService
	Auth() AuthService
	User() UserService
	Course() CourseService
	Enrollment() EnrollmentService
	Image() ImageService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
