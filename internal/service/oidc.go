package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/tracelens/backend/internal/config"
	"golang.org/x/oauth2"
)

var ErrOIDCDisabled = errors.New("oidc login is not configured")

// OIDCService handles the authorization-code flow against an external
// identity provider. It is optional: when OIDC_ISSUER is unset the service
// is nil and the SSO routes answer with ErrOIDCDisabled.
type OIDCService struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
	oauthCfg oauth2.Config
}

// NewOIDCService discovers the provider configuration from the issuer's
// well-known endpoint. Returns (nil, nil) when OIDC is not configured.
func NewOIDCService(ctx context.Context, cfg config.OIDCConfig) (*OIDCService, error) {
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, nil
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RedirectURL == "" {
		return nil, fmt.Errorf("%w: OIDC_CLIENT_ID, OIDC_CLIENT_SECRET and OIDC_REDIRECT_URL are required", ErrMisconfigured)
	}

	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery failed: %w", err)
	}

	return &OIDCService{
		provider: provider,
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauthCfg: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
	}, nil
}

// AuthURL returns the provider's authorization URL plus the state value the
// caller must pin in a cookie and check on callback.
func (s *OIDCService) AuthURL() (string, string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	state := base64.RawURLEncoding.EncodeToString(raw)
	return s.oauthCfg.AuthCodeURL(state), state, nil
}

// Exchange trades the authorization code for tokens and returns the verified
// subject's email, which doubles as the local login id.
func (s *OIDCService) Exchange(ctx context.Context, code string) (string, error) {
	token, err := s.oauthCfg.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: code exchange failed", ErrUnauthorized)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return "", fmt.Errorf("%w: no id_token in response", ErrUnauthorized)
	}

	idToken, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return "", fmt.Errorf("%w: id token verification failed", ErrUnauthorized)
	}

	var claims struct {
		Email    string `json:"email"`
		Verified bool   `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return "", err
	}
	if claims.Email == "" {
		return "", fmt.Errorf("%w: provider returned no email", ErrUnauthorized)
	}

	return strings.ToLower(claims.Email), nil
}
