package identity

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/golang-jwt/jwt/v5"
)

const clockSkew = 30 * time.Second

// UnverifiedInspector decodes tokens without checking the signature. Only
// the registered claims (aud, exp, nbf) are validated.
type UnverifiedInspector struct {
	parser    *jwt.Parser
	validator *jwt.Validator
}

func NewUnverifiedInspector(audience string) *UnverifiedInspector {
	opts := []jwt.ParserOption{jwt.WithLeeway(clockSkew)}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return &UnverifiedInspector{
		parser:    jwt.NewParser(),
		validator: jwt.NewValidator(opts...),
	}
}

func (i *UnverifiedInspector) Inspect(_ context.Context, token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := i.parser.ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if err := i.validator.Validate(claims); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return subjectOf(claims)
}

func subjectOf(claims jwt.Claims) (string, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	return sub, nil
}

// Auth0Inspector verifies RS256 tokens against the tenant's JWKS
type Auth0Inspector struct {
	validator *validator.Validator
}

func NewAuth0Inspector(domain, audience string) (*Auth0Inspector, error) {
	issuerURL, err := url.Parse("https://" + strings.TrimSuffix(domain, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to parse auth0 issuer url: %w", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	v, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithAllowedClockSkew(clockSkew),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up auth0 token validator: %w", err)
	}

	return &Auth0Inspector{validator: v}, nil
}

func (i *Auth0Inspector) Inspect(ctx context.Context, token string) (string, error) {
	raw, err := i.validator.ValidateToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	claims, ok := raw.(*validator.ValidatedClaims)
	if !ok || claims.RegisteredClaims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	return claims.RegisteredClaims.Subject, nil
}

// CasdoorInspector verifies tokens with the application's certificate
type CasdoorInspector struct {
	client   *casdoorsdk.Client
	audience string
}

func NewCasdoorInspector(cfg CasdoorConfig, audience string) *CasdoorInspector {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
	return &CasdoorInspector{client: client, audience: audience}
}

func (i *CasdoorInspector) Inspect(_ context.Context, token string) (string, error) {
	claims, err := i.client.ParseJwtToken(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if i.audience != "" && !slices.Contains(claims.Audience, i.audience) {
		return "", fmt.Errorf("%w: audience mismatch", ErrUnauthenticated)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	return claims.Subject, nil
}
