package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/auth0/go-auth0/authentication"
	"github.com/auth0/go-auth0/authentication/oauth"
	"golang.org/x/oauth2"
)

// Auth0Exchanger runs the resource owner password grant against Auth0
type Auth0Exchanger struct {
	api      *authentication.Authentication
	audience string
}

func NewAuth0Exchanger(ctx context.Context, cfg Auth0Config, audience string) (*Auth0Exchanger, error) {
	api, err := authentication.New(
		ctx,
		cfg.Domain,
		authentication.WithClientID(cfg.ClientID),
		authentication.WithClientSecret(cfg.ClientSecret),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth0 client: %w", err)
	}
	return &Auth0Exchanger{api: api, audience: audience}, nil
}

func (e *Auth0Exchanger) Exchange(ctx context.Context, username, password string) (string, error) {
	tokens, err := e.api.OAuth.LoginWithPassword(ctx, oauth.LoginWithPasswordRequest{
		Username: username,
		Password: password,
		Audience: e.audience,
	}, oauth.IDTokenValidationOptions{})
	if err != nil {
		return "", classifyAuth0Error(err)
	}
	if tokens.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrUpstream)
	}
	return tokens.AccessToken, nil
}

func classifyAuth0Error(err error) error {
	var authErr *authentication.Error
	if errors.As(err, &authErr) && isRefusal(authErr.StatusCode) {
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

// CasdoorExchanger runs the password grant against Casdoor's token endpoint
type CasdoorExchanger struct {
	config *oauth2.Config
}

func NewCasdoorExchanger(cfg CasdoorConfig) *CasdoorExchanger {
	return &CasdoorExchanger{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  strings.TrimSuffix(cfg.Endpoint, "/") + "/api/login/oauth/access_token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

func (e *CasdoorExchanger) Exchange(ctx context.Context, username, password string) (string, error) {
	token, err := e.config.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		return "", classifyOAuth2Error(err)
	}
	return token.AccessToken, nil
}

func classifyOAuth2Error(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.ErrorCode != "" {
			return fmt.Errorf("%w: %s", ErrInvalidCredentials, retrieveErr.ErrorCode)
		}
		if retrieveErr.Response != nil && isRefusal(retrieveErr.Response.StatusCode) {
			return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
	}
	// Casdoor answers bad passwords with 200 and no token
	if strings.Contains(err.Error(), "missing access_token") {
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

func isRefusal(status int) bool {
	return status >= http.StatusBadRequest && status < http.StatusInternalServerError &&
		status != http.StatusTooManyRequests
}
