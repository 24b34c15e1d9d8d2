package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/SAP-F-2025/tarpaulin-service/internal/events"
	"github.com/SAP-F-2025/tarpaulin-service/internal/models"
	"github.com/SAP-F-2025/tarpaulin-service/internal/repositories"
)

// AvatarContentType is what avatars are stored and served as
const AvatarContentType = "image/png"

// AvatarKey names the blob holding a user's avatar
func AvatarKey(userID int64) string {
	return fmt.Sprintf("avatars/%d.png", userID)
}

type userService struct {
	repo      repositories.Repository
	blobs     repositories.BlobRepository
	access    AccessService
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewUserService(
	repo repositories.Repository,
	blobs repositories.BlobRepository,
	access AccessService,
	publisher events.EventPublisher,
	logger *slog.Logger,
) UserService {
	return &userService{
		repo:      repo,
		blobs:     blobs,
		access:    access,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *userService) List(ctx context.Context, sub string) ([]*models.User, error) {
	requester, err := s.access.ResolveRequester(ctx, sub)
	if err != nil {
		return nil, err
	}
	if err := s.access.RequireAdmin(requester, "list"); err != nil {
		return nil, err
	}

	users, err := s.repo.User().List(ctx)
	if err != nil {
		return nil, storeError("list users", err)
	}
	return users, nil
}

func (s *userService) Get(ctx context.Context, sub string, id int64) (*UserDetail, error) {
	requester, err := s.access.ResolveRequester(ctx, sub)
	if err != nil {
		return nil, err
	}
	if err := s.access.RequireSelfOrAdmin(requester, id, "read"); err != nil {
		return nil, err
	}

	user := requester
	if requester.ID != id {
		user, err = s.repo.User().GetByID(ctx, id)
		if err != nil {
			return nil, storeError("get user", err)
		}
	}

	// avatar existence is never cached on the user row
	hasAvatar, err := s.blobs.Exists(ctx, AvatarKey(user.ID))
	if err != nil {
		return nil, storeError("check avatar", err)
	}

	return &UserDetail{User: user, HasAvatar: hasAvatar}, nil
}

func (s *userService) UploadAvatar(ctx context.Context, sub string, id int64, body io.Reader) error {
	requester, err := s.access.ResolveRequester(ctx, sub)
	if err != nil {
		return err
	}
	if err := s.access.RequireOwner(requester, id, "upload"); err != nil {
		return err
	}
	if body == nil {
		return ErrInvalidBody
	}

	if err := s.blobs.Put(ctx, AvatarKey(id), AvatarContentType, body); err != nil {
		return storeError("store avatar", err)
	}

	s.logger.Info("Avatar uploaded", "user_id", id)
	publish(ctx, s.publisher, s.logger, events.NewEvent(events.AvatarUploaded, events.AvatarEvent{UserID: id}))
	return nil
}

func (s *userService) GetAvatar(ctx context.Context, sub string, id int64) (*models.Blob, error) {
	requester, err := s.access.ResolveRequester(ctx, sub)
	if err != nil {
		return nil, err
	}
	if err := s.access.RequireOwner(requester, id, "read"); err != nil {
		return nil, err
	}

	blob, err := s.blobs.Get(ctx, AvatarKey(id))
	if err != nil {
		return nil, storeError("get avatar", err)
	}
	blob.ContentType = AvatarContentType
	return blob, nil
}

func (s *userService) DeleteAvatar(ctx context.Context, sub string, id int64) error {
	requester, err := s.access.ResolveRequester(ctx, sub)
	if err != nil {
		return err
	}
	if err := s.access.RequireOwner(requester, id, "delete"); err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, AvatarKey(id)); err != nil {
		return storeError("delete avatar", err)
	}

	s.logger.Info("Avatar deleted", "user_id", id)
	publish(ctx, s.publisher, s.logger, events.NewEvent(events.AvatarDeleted, events.AvatarEvent{UserID: id}))
	return nil
}
