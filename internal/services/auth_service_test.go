package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/SAP-F-2025/tarpaulin-service/internal/identity"
	"github.com/SAP-F-2025/tarpaulin-service/internal/ratelimit"
)

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	token, err := env.manager.Auth().Login(ctx, "10.0.0.1", &LoginRequest{Username: "ann", Password: "pw"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token != "issued-token" {
		t.Errorf("token = %q", token)
	}

	if _, err := env.manager.Auth().Login(ctx, "10.0.0.1", &LoginRequest{Username: "ann"}); !errors.Is(err, ErrInvalidBody) {
		t.Errorf("expected ErrInvalidBody without password, got %v", err)
	}
	if _, err := env.manager.Auth().Login(ctx, "10.0.0.1", nil); !errors.Is(err, ErrInvalidBody) {
		t.Errorf("expected ErrInvalidBody for nil request, got %v", err)
	}

	env.exchanger.err = identity.ErrInvalidCredentials
	if _, err := env.manager.Auth().Login(ctx, "10.0.0.1", &LoginRequest{Username: "ann", Password: "bad"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_LoginRateLimited(t *testing.T) {
	limiter := ratelimit.New(nil, ratelimit.Config{Limit: 2, Window: time.Minute})
	env := newTestEnv(t, limiter)
	ctx := context.Background()
	req := &LoginRequest{Username: "ann", Password: "pw"}

	for i := 0; i < 2; i++ {
		if _, err := env.manager.Auth().Login(ctx, "10.0.0.2", req); err != nil {
			t.Fatalf("Login #%d returned error: %v", i+1, err)
		}
	}

	_, err := env.manager.Auth().Login(ctx, "10.0.0.2", req)
	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) || !errors.Is(err, ErrTooManyRequests) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rateErr.RetryAfter < 1 {
		t.Errorf("RetryAfter = %d, want at least 1", rateErr.RetryAfter)
	}
	if env.exchanger.calls != 2 {
		t.Errorf("provider called %d times, want 2", env.exchanger.calls)
	}

	// other clients are unaffected
	if _, err := env.manager.Auth().Login(ctx, "10.0.0.3", req); err != nil {
		t.Errorf("Login from another client returned error: %v", err)
	}
}

func TestAuthService_Subject(t *testing.T) {
	env := newTestEnv(t, nil)

	sub, err := env.manager.Auth().Subject(context.Background(), "token")
	if err != nil || sub != studentSub {
		t.Errorf("Subject = %q, %v", sub, err)
	}

	env.inspector.err = identity.ErrUnauthenticated
	if _, err := env.manager.Auth().Subject(context.Background(), "token"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestImageService(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	images := env.manager.Image()

	if err := images.Put(ctx, "cat.png", "", strings.NewReader("meow")); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	blob, err := images.Get(ctx, "cat.png")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(blob.Data) != "meow" || blob.ContentType != ImageContentType {
		t.Errorf("unexpected image %q (%s)", blob.Data, blob.ContentType)
	}

	if err := images.Delete(ctx, "cat.png"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := images.Delete(ctx, "cat.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := images.Put(ctx, " ", "", strings.NewReader("x")); !errors.Is(err, ErrInvalidBody) {
		t.Errorf("expected ErrInvalidBody for a blank name, got %v", err)
	}
}

func TestServiceManager_ImagesDisabledPanics(t *testing.T) {
	env := newTestEnv(t, nil)
	manager := NewServiceManager(Dependencies{
		Repositories: env.manager.(*serviceManager).deps.Repositories,
		Exchanger:    env.exchanger,
		Inspector:    env.inspector,
		Logger:       quietLogger(),
	}, ServiceManagerConfig{})
	if err := manager.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected Image() to panic when images are disabled")
		}
	}()
	manager.Image()
}
