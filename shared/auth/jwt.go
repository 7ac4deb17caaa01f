package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSigningKey = errors.New("missing token signing key")
	ErrInvalidSubject    = errors.New("token subject requires a user id and a known role")

	// ErrInvalidToken is wrapped by every verification failure. Callers that
	// need the precise cause can test for one of the errors below.
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenSignature = errors.New("token signature is invalid")
)

// DefaultTokenTTL is the lifetime of an access token.
const DefaultTokenTTL = 7 * 24 * time.Hour

// TokenConfig holds the signing settings of a JWTAuthenticator. It is copied
// on construction and never mutated afterwards.
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// JWTAuthenticator represents a JWT based authenticator.
type JWTAuthenticator struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// Option customizes a JWTAuthenticator.
type Option func(*JWTAuthenticator)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(a *JWTAuthenticator) {
		a.now = now
	}
}

// NewJWTAuthenticator creates a new JWTAuthenticator instance.
func NewJWTAuthenticator(cfg TokenConfig, opts ...Option) (*JWTAuthenticator, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSigningKey
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	a := &JWTAuthenticator{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// TTL returns the lifetime of the tokens issued by a.
func (a *JWTAuthenticator) TTL() time.Duration {
	return a.ttl
}

// RegisteredClaims returns the standard claims for a token issued now.
func (a *JWTAuthenticator) RegisteredClaims(subject string) jwt.RegisteredClaims {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    a.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	if a.audience != "" {
		claims.Audience = jwt.ClaimStrings{a.audience}
	}

	return claims
}

// IssueToken signs an access token for an authenticated subject.
func (a *JWTAuthenticator) IssueToken(subject Subject) (string, error) {
	if subject.UserID == "" || !subject.Role.Valid() {
		return "", ErrInvalidSubject
	}

	return a.GenerateToken(Claims{
		UserID:           subject.UserID,
		Role:             subject.Role,
		RegisteredClaims: a.RegisteredClaims(subject.UserID),
	})
}

// VerifyToken validates an access token and returns its payload.
func (a *JWTAuthenticator) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, err := a.ValidateTokenWithClaims(tokenString, claims); err != nil {
		return nil, err
	}

	if claims.UserID == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, ErrTokenMalformed)
	}

	return claims, nil
}

// GenerateToken generates a JWT token with the given claims.
// This is generic and accepts any type that implements jwt.Claims.
func (a *JWTAuthenticator) GenerateToken(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenStr, err := token.SignedString(a.secret)
	if err != nil {
		return "", err
	}

	return tokenStr, nil
}

// ValidateTokenWithClaims validates a JWT token and parses it into the provided claims type.
// The claims parameter should be a pointer to a struct that implements jwt.Claims.
func (a *JWTAuthenticator) ValidateTokenWithClaims(tokenString string, claims jwt.Claims) (*jwt.Token, error) {
	opts := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(a.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(a.now),
	}
	if a.audience != "" {
		opts = append(opts, jwt.WithAudience(a.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, classify(err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return token, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrInvalidToken, ErrTokenExpired)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrInvalidToken, ErrTokenSignature)
	case errors.Is(err, jwt.ErrTokenMalformed), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrInvalidToken, ErrTokenMalformed)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
}
