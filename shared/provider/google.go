package provider

import (
	"context"
	"errors"
	"net/http"
	"time"

	"google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var (
	ErrInvalidGoogleAudience = errors.New("invalid google audience")
	ErrUnverifiedGoogleEmail = errors.New("google email is not verified")
	ErrGoogleDisabled        = errors.New("google sign-in is not configured")
)

// GoogleIdentity is the subset of a validated Google ID token used for sign-in.
type GoogleIdentity struct {
	UserID string
	Email  string
}

// GoogleOAuthProvider validates Google ID tokens for a single OAuth client.
type GoogleOAuthProvider struct {
	clientID string
	options  []option.ClientOption
}

// NewGoogleOAuthProvider creates a provider for clientID. Extra client options
// are passed to the oauth2 service.
func NewGoogleOAuthProvider(clientID string, opts ...option.ClientOption) *GoogleOAuthProvider {
	base := []option.ClientOption{option.WithHTTPClient(&http.Client{Timeout: 10 * time.Second})}
	return &GoogleOAuthProvider{
		clientID: clientID,
		options:  append(base, opts...),
	}
}

// ValidateIDToken asks Google to validate idToken and checks that it was
// issued to this client for a verified email address.
func (p *GoogleOAuthProvider) ValidateIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	if p == nil || p.clientID == "" {
		return nil, ErrGoogleDisabled
	}

	oauth2Service, err := oauth2.NewService(ctx, p.options...)
	if err != nil {
		return nil, err
	}

	tokenInfo, err := oauth2Service.Tokeninfo().IdToken(idToken).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	if tokenInfo.Audience != p.clientID {
		return nil, ErrInvalidGoogleAudience
	}

	if !tokenInfo.VerifiedEmail {
		return nil, ErrUnverifiedGoogleEmail
	}

	return &GoogleIdentity{
		UserID: tokenInfo.UserId,
		Email:  tokenInfo.Email,
	}, nil
}
