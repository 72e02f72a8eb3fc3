// Package auth resolves the signed-in user from the identity provider's
// session token and answers whether that user is a platform admin.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenCookie is the cookie the identity provider stores its access token in.
const AccessTokenCookie = "sb-access-token"

var (
	// ErrMissingSecret is returned when no token signing secret is configured
	ErrMissingSecret = errors.New("auth provider JWT secret is not configured")

	// ErrInvalidToken is returned for tokens that fail verification
	ErrInvalidToken = errors.New("invalid session token")
)

// Identity is an authenticated user.
type Identity struct {
	ID    uuid.UUID
	Email string
}

// sessionClaims are the identity provider's access token claims.
type sessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 access tokens issued by the identity provider.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// VerifierOption configures a Verifier.
type VerifierOption func(*verifierOptions)

type verifierOptions struct {
	audience string
	leeway   time.Duration
	now      func() time.Time
}

// WithAudience requires the given aud claim.
func WithAudience(aud string) VerifierOption {
	return func(o *verifierOptions) { o.audience = aud }
}

// WithLeeway tolerates clock skew when checking exp/nbf.
func WithLeeway(d time.Duration) VerifierOption {
	return func(o *verifierOptions) { o.leeway = d }
}

// WithTimeFunc replaces time.Now (for testing).
func WithTimeFunc(now func() time.Time) VerifierOption {
	return func(o *verifierOptions) { o.now = now }
}

// NewVerifier creates a verifier. A blank secret is a configuration error.
func NewVerifier(secret string, opts ...VerifierOption) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}

	o := verifierOptions{leeway: 30 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(o.leeway),
	}
	if o.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(o.audience))
	}
	if o.now != nil {
		parserOpts = append(parserOpts, jwt.WithTimeFunc(o.now))
	}

	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(parserOpts...),
	}, nil
}

// Verify validates a token and returns the identity it carries.
func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	claims := &sessionClaims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method to prevent algorithm confusion attacks
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id: %v", ErrInvalidToken, err)
	}

	return &Identity{
		ID:    id,
		Email: strings.ToLower(strings.TrimSpace(claims.Email)),
	}, nil
}

// Identify resolves the request's session. It returns a nil identity and no
// error when the request carries no token. The raw token is returned so the
// caller can forward it to the API.
func (v *Verifier) Identify(r *http.Request) (*Identity, string, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return nil, "", nil
	}
	identity, err := v.Verify(token)
	if err != nil {
		return nil, "", err
	}
	return identity, token, nil
}

// TokenFromRequest extracts the access token from the Authorization header
// or, failing that, the identity provider's cookie.
func TokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}
