package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/SAP-F-2025/tarpaulin-service/internal/events"
)

func TestUserService_List(t *testing.T) {
	env := newTestEnv(t, nil)

	users, err := env.manager.User().List(context.Background(), adminSub)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(users) != 7 {
		t.Fatalf("expected 7 users, got %d", len(users))
	}
	for i, user := range users {
		if user.ID != int64(i+1) {
			t.Errorf("users not in id order: position %d holds %d", i, user.ID)
		}
	}

	if _, err := env.manager.User().List(context.Background(), instructorSub); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for an instructor, got %v", err)
	}
}

// A user is readable by itself and by admins, never by anyone else
func TestUserService_GetSelfOrAdmin(t *testing.T) {
	env := newTestEnv(t, nil)
	requesters := map[string]int64{adminSub: 1, instructorSub: 2, studentSub: 4}

	for sub, requesterID := range requesters {
		for target := int64(1); target <= 5; target++ {
			_, err := env.manager.User().Get(context.Background(), sub, target)
			allowed := requesterID == 1 || requesterID == target
			if allowed && err != nil {
				t.Errorf("%s reading user %d: unexpected error %v", sub, target, err)
			}
			if !allowed && !errors.Is(err, ErrForbidden) {
				t.Errorf("%s reading user %d: expected ErrForbidden, got %v", sub, target, err)
			}
		}
	}

	if _, err := env.manager.User().Get(context.Background(), adminSub, 404); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for a missing user, got %v", err)
	}
}

func TestUserService_GetReportsAvatar(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	detail, err := env.manager.User().Get(ctx, studentSub, 4)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if detail.HasAvatar {
		t.Error("user 4 should not have an avatar yet")
	}

	if err := env.manager.User().UploadAvatar(ctx, studentSub, 4, strings.NewReader("png")); err != nil {
		t.Fatalf("UploadAvatar returned error: %v", err)
	}

	detail, err = env.manager.User().Get(ctx, adminSub, 4)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !detail.HasAvatar {
		t.Error("user 4 should have an avatar after upload")
	}
}

func TestUserService_AvatarLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	users := env.manager.User()

	if err := users.UploadAvatar(ctx, studentSub, 4, strings.NewReader("png-bytes")); err != nil {
		t.Fatalf("UploadAvatar returned error: %v", err)
	}

	blob, err := users.GetAvatar(ctx, studentSub, 4)
	if err != nil {
		t.Fatalf("GetAvatar returned error: %v", err)
	}
	if string(blob.Data) != "png-bytes" || blob.ContentType != AvatarContentType {
		t.Errorf("unexpected avatar %q (%s)", blob.Data, blob.ContentType)
	}

	// owner only, admins included
	if _, err := users.GetAvatar(ctx, instructorSub, 4); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for another user, got %v", err)
	}
	if _, err := users.GetAvatar(ctx, adminSub, 4); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for an admin, got %v", err)
	}

	if err := users.DeleteAvatar(ctx, studentSub, 4); err != nil {
		t.Fatalf("DeleteAvatar returned error: %v", err)
	}
	if _, err := users.GetAvatar(ctx, studentSub, 4); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := users.DeleteAvatar(ctx, studentSub, 4); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}

	published := env.publisher.GetPublishedEvents()
	if len(published) != 2 || published[0].Type != events.AvatarUploaded || published[1].Type != events.AvatarDeleted {
		t.Errorf("unexpected events %+v", published)
	}
}

func TestUserService_PublishFailureDoesNotFailUpload(t *testing.T) {
	env := newTestEnv(t, nil)
	env.publisher.Err = errors.New("bus down")

	if err := env.manager.User().UploadAvatar(context.Background(), studentSub, 4, strings.NewReader("png")); err != nil {
		t.Fatalf("UploadAvatar returned error: %v", err)
	}
	if exists, _ := env.blobs.Exists(context.Background(), AvatarKey(4)); !exists {
		t.Error("avatar should be stored")
	}
}
