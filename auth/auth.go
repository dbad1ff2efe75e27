// Package auth issues and verifies the bearer tokens of the development
// backend and carries the authenticated subject through request contexts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/diewo77/invoicedesk/gate"
	"github.com/diewo77/invoicedesk/httpx"
)

type ctxKey string

const subjectCtxKey = ctxKey("subject")

// ErrInvalidToken is returned for missing, malformed, expired or forged tokens.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims are the token claims: the user id as subject plus name and roles.
type Claims struct {
	jwt.RegisteredClaims
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for the user.
func (i *Issuer) Issue(userID uint, username string, roles []string) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Username: username,
		Roles:    roles,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies token and returns the subject it was issued for.
func (i *Issuer) Parse(token string) (*gate.Subject, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return nil, fmt.Errorf("%w: subject %q", ErrInvalidToken, claims.Subject)
	}
	return &gate.Subject{ID: uint(id), Username: claims.Username, Roles: claims.Roles}, nil
}

// UserVerifier validates that a token's user still exists and is enabled.
// It may return a refreshed subject (current roles).
type UserVerifier func(ctx context.Context, s *gate.Subject) (*gate.Subject, bool)

// WithSubject stores the subject in context.
func WithSubject(ctx context.Context, s *gate.Subject) context.Context {
	return context.WithValue(ctx, subjectCtxKey, s)
}

// SubjectFromContext extracts the subject.
func SubjectFromContext(ctx context.Context) (*gate.Subject, bool) {
	s, ok := ctx.Value(subjectCtxKey).(*gate.Subject)
	return s, ok && s != nil
}

// BearerToken returns the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Middleware attaches the subject to the request context when the request
// carries a valid token and verify (if set) accepts its user.
func Middleware(issuer *Issuer, verify UserVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := issuer.Parse(BearerToken(r))
			if err == nil && verify != nil {
				var ok bool
				if s, ok = verify(r.Context(), s); !ok {
					err = ErrInvalidToken
				}
			}
			if err == nil {
				r = r.WithContext(WithSubject(r.Context(), s))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth answers 401 JSON when no subject is attached.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SubjectFromContext(r.Context()); !ok {
			httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
