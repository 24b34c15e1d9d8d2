package services

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/SAP-F-2025/tarpaulin-service/internal/identity"
	"github.com/SAP-F-2025/tarpaulin-service/internal/ratelimit"
	"github.com/SAP-F-2025/tarpaulin-service/internal/validator"
)

type authService struct {
	exchanger identity.CredentialExchanger
	inspector identity.TokenInspector
	limiter   ratelimit.Limiter
	validator *validator.Validator
	logger    *slog.Logger
}

func NewAuthService(
	exchanger identity.CredentialExchanger,
	inspector identity.TokenInspector,
	limiter ratelimit.Limiter,
	validator *validator.Validator,
	logger *slog.Logger,
) AuthService {
	return &authService{
		exchanger: exchanger,
		inspector: inspector,
		limiter:   limiter,
		validator: validator,
		logger:    logger,
	}
}

// Login exchanges credentials for a bearer token. clientKey identifies the
// caller for rate limiting; a nil req means the body could not be decoded.
func (s *authService) Login(ctx context.Context, clientKey string, req *LoginRequest) (string, error) {
	if req == nil {
		return "", ErrInvalidBody
	}
	if err := s.validator.Validate(req); err != nil {
		return "", ErrInvalidBody
	}

	allowed, retryAfter, err := s.limiter.Allow(ctx, clientKey)
	if err != nil {
		// a broken limiter store must not lock everybody out
		s.logger.Warn("Login rate limiter unavailable", "error", err)
	} else if !allowed {
		return "", &RateLimitError{RetryAfter: int(math.Ceil(retryAfter.Seconds()))}
	}

	token, err := s.exchanger.Exchange(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			s.logger.Info("Login refused", "username", req.Username)
		} else {
			s.logger.Error("Login failed", "error", err)
		}
		return "", err
	}
	return token, nil
}

func (s *authService) Subject(ctx context.Context, token string) (string, error) {
	return s.inspector.Inspect(ctx, token)
}
