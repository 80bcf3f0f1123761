// Package auth resolves the calling user from the auth provider's session
// token, read from a bearer header or the session cookie.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/JakeFAU/seo-reporter/internal/reporter"
)

// DefaultCookieName is the auth provider's session cookie.
const DefaultCookieName = "better-auth.session_token"

const securePrefix = "__Secure-"

// Config controls token lookup and signature checks.
type Config struct {
	// Secret verifies signed cookie values; empty disables verification.
	Secret string
	// CookieName overrides DefaultCookieName.
	CookieName string
}

// Resolver maps requests to users.
type Resolver struct {
	users      reporter.UserStore
	clock      reporter.Clock
	secret     []byte
	cookieName string
}

// NewResolver constructs a Resolver.
func NewResolver(users reporter.UserStore, clock reporter.Clock, cfg Config) *Resolver {
	name := cfg.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	var secret []byte
	if cfg.Secret != "" {
		secret = []byte(cfg.Secret)
	}
	return &Resolver{users: users, clock: clock, secret: secret, cookieName: name}
}

// Resolve returns the user owning the request's session. Any missing, forged
// or expired session yields reporter.ErrUnauthorized.
func (r *Resolver) Resolve(req *http.Request) (reporter.User, error) {
	token, err := r.token(req)
	if err != nil {
		return reporter.User{}, err
	}
	user, err := r.users.FindUserBySessionToken(req.Context(), token, r.clock.Now())
	if errors.Is(err, reporter.ErrNotFound) {
		return reporter.User{}, reporter.ErrUnauthorized
	}
	if err != nil {
		return reporter.User{}, fmt.Errorf("resolve session: %w", err)
	}
	return user, nil
}

func (r *Resolver) token(req *http.Request) (string, error) {
	if header := req.Header.Get("Authorization"); header != "" {
		scheme, value, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") && strings.TrimSpace(value) != "" {
			return r.bearerToken(strings.TrimSpace(value))
		}
	}
	for _, name := range []string{r.cookieName, securePrefix + r.cookieName} {
		cookie, err := req.Cookie(name)
		if err != nil || cookie.Value == "" {
			continue
		}
		return r.cookieToken(cookie.Value)
	}
	return "", reporter.ErrUnauthorized
}

// bearerToken accepts either a raw session token or a signed cookie value.
func (r *Resolver) bearerToken(value string) (string, error) {
	if !strings.Contains(value, ".") {
		return value, nil
	}
	return r.cookieToken(value)
}

// cookieToken unpacks "<token>.<signature>", verifying the signature when a
// secret is configured.
func (r *Resolver) cookieToken(raw string) (string, error) {
	value, err := url.PathUnescape(raw)
	if err != nil {
		return "", reporter.ErrUnauthorized
	}
	idx := strings.LastIndex(value, ".")
	if idx <= 0 {
		if r.secret != nil {
			return "", reporter.ErrUnauthorized
		}
		return value, nil
	}
	token, signature := value[:idx], value[idx+1:]
	if r.secret != nil && !hmac.Equal([]byte(signature), []byte(Sign(r.secret, token))) {
		return "", reporter.ErrUnauthorized
	}
	return token, nil
}

// Sign returns the base64 HMAC-SHA256 signature the auth provider appends to
// session cookie values.
func Sign(secret []byte, token string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(token))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

type userKey struct{}

// WithUser stores user on ctx.
func WithUser(ctx context.Context, user reporter.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFrom returns the user stored by WithUser.
func UserFrom(ctx context.Context) (reporter.User, bool) {
	user, ok := ctx.Value(userKey{}).(reporter.User)
	return user, ok
}
