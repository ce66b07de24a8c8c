// Package oauth verifies the secondary provider-managed session. The login
// flow stores the provider's raw ID token in its own cookie; the session
// bridge verifies that token here when no custom session is present.
package oauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"hr-portal/internal/model"
)

type Provider struct {
	verifier *oidc.IDTokenVerifier
	config   *oauth2.Config
}

// NewProvider performs OIDC discovery against the issuer and prepares the
// auth-code flow plus ID-token verification.
func NewProvider(ctx context.Context, issuer string, clientID string, clientSecret string, redirectURL string) (*Provider, error) {
	if issuer == "" {
		return nil, errors.New("missing provider issuer url")
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider: %w", err)
	}

	return &Provider{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  redirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

// AuthCodeURL builds the provider's consent-screen URL for the given state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for the raw ID token.
func (p *Provider) Exchange(ctx context.Context, code string) (string, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange authorization code: %w", err)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", errors.New("token response has no id_token")
	}
	return rawIDToken, nil
}

// VerifySession validates a raw ID token and extracts the provider identity.
func (p *Provider) VerifySession(ctx context.Context, rawIDToken string) (*model.ProviderSession, error) {
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decode id token claims: %w", err)
	}

	return &model.ProviderSession{
		Subject: idToken.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
	}, nil
}
