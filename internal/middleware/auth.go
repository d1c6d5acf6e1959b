package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sleek-shop/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

const bearerPrefix = "Bearer "

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *model.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity attached to ctx, or nil for anonymous requests.
func IdentityFrom(ctx context.Context) *model.Identity {
	id, _ := ctx.Value(identityKey{}).(*model.Identity)
	return id
}

// Claims is the JWT payload identifying a caller.
type Claims struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 bearer tokens.
type Authenticator struct {
	secret []byte
	issuer string
	logger zerolog.Logger
}

// NewAuthenticator creates an authenticator for tokens signed with secret.
// A non-empty issuer must match the token's iss claim.
func NewAuthenticator(secret, issuer string, logger zerolog.Logger) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		issuer: issuer,
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// Issue signs a token for id that expires after ttl.
func (a *Authenticator) Issue(id model.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		ID:    id.ID,
		Email: id.Email,
		Role:  id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   fmt.Sprint(id.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies raw and returns the identity it carries.
func (a *Authenticator) Parse(raw string) (*model.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(30 * time.Second),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	if claims.ID <= 0 {
		return nil, errors.New("token has no user id")
	}

	role := claims.Role
	if role == "" {
		role = model.RoleCustomer
	}
	return &model.Identity{ID: claims.ID, Email: claims.Email, Role: role}, nil
}

// Authenticate attaches the identity of a valid bearer token to the request.
// Requests without an Authorization header pass through anonymously; a
// header that does not carry a valid token is rejected.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.identify(r)
		if err != nil {
			a.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid token")
			writeDomainError(w, model.ErrInvalidToken)
			return
		}
		if id == nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// OptionalAuth attaches the identity of a valid bearer token and lets every
// other request through anonymously, including ones with a bad token.
func (a *Authenticator) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.identify(r)
		if err != nil {
			a.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("ignoring invalid token")
		}
		if id == nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// identify returns the caller named by the Authorization header, or nil when
// the header is absent.
func (a *Authenticator) identify(r *http.Request) (*model.Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, nil
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, errors.New("malformed authorization header")
	}
	return a.Parse(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFrom(r.Context()) == nil {
			writeDomainError(w, model.ErrMissingToken)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects anonymous and non-admin requests.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := IdentityFrom(r.Context())
		if id == nil {
			writeDomainError(w, model.ErrMissingToken)
			return
		}
		if !id.IsAdmin() {
			writeDomainError(w, model.ErrAdminRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}
