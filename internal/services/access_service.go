package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SAP-F-2025/tarpaulin-service/internal/models"
	"github.com/SAP-F-2025/tarpaulin-service/internal/repositories"
)

type accessService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewAccessService(repo repositories.Repository, logger *slog.Logger) AccessService {
	return &accessService{repo: repo, logger: logger}
}

// ResolveRequester finds the single user carrying sub. Zero or several
// matches both mean the caller has no usable account.
func (s *accessService) ResolveRequester(ctx context.Context, sub string) (*models.User, error) {
	users, err := s.repo.User().FindBySub(ctx, sub, 2)
	if err != nil {
		return nil, storeError("resolve requester", err)
	}

	switch len(users) {
	case 1:
		return users[0], nil
	case 0:
		return nil, NewPermissionError("user", "resolve", "no account for subject")
	default:
		s.logger.Warn("Subject maps to several users", "sub", sub)
		return nil, NewPermissionError("user", "resolve", "subject is ambiguous")
	}
}

func (s *accessService) RequireAdmin(requester *models.User, action string) error {
	if requester.Role != models.RoleAdmin {
		return NewPermissionError("resource", action, "admin role required")
	}
	return nil
}

func (s *accessService) RequireSelfOrAdmin(requester *models.User, targetID int64, action string) error {
	if requester.Role == models.RoleAdmin || requester.ID == targetID {
		return nil
	}
	return NewPermissionError("user", action, "only the user or an admin may do this")
}

// RequireOwner compares ids; sub is unique per user so this is the same as
// comparing subjects
func (s *accessService) RequireOwner(requester *models.User, targetID int64, action string) error {
	if requester.ID != targetID {
		return NewPermissionError("avatar", action, "only the owner may do this")
	}
	return nil
}

func (s *accessService) RequireCourseManager(requester *models.User, course *models.Course, action string) error {
	if requester.Role == models.RoleAdmin {
		return nil
	}
	if requester.Role == models.RoleInstructor && requester.ID == course.InstructorID {
		return nil
	}
	return NewPermissionError("course", action, "admin or the course instructor required")
}

func (s *accessService) AuthorizeCourseManager(ctx context.Context, sub string, courseID int64, action string) (*models.User, *models.Course, error) {
	requester, err := s.ResolveRequester(ctx, sub)
	if err != nil {
		return nil, nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// only admins learn whether a course exists
			if requester.Role == models.RoleAdmin {
				return nil, nil, ErrNotFound
			}
			return nil, nil, NewPermissionError("course", action, "admin or the course instructor required")
		}
		return nil, nil, storeError("get course", err)
	}

	if err := s.RequireCourseManager(requester, course, action); err != nil {
		return nil, nil, err
	}
	return requester, course, nil
}
