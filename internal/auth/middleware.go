package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/wisdom-share/internal/apperror"
	"github.com/sakif/wisdom-share/internal/model"
)

// CookieName is the cookie that carries the access token.
const CookieName = "token"

// contextKey keeps the user slot in the request context private to this
// package.
//
// WHY A CUSTOM TYPE?
// context.WithValue compares keys by type and value. A plain string key
// like "user" could be read or overwritten by any package that happens to
// use the same string; a value of an unexported type can only be created
// here.
type contextKey string

const userKey contextKey = "user"

// UserLookup loads the user a token's subject refers to.
type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

// RequireAuth rejects requests without a valid token for an existing user.
// On success the loaded *model.User is stored in the request context.
//
// MIDDLEWARE PATTERN:
// A middleware takes the next http.Handler and returns a handler that runs
// its own logic first and then either calls next or answers by itself:
//
//	func Middleware(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // before
//	        next.ServeHTTP(w, r)
//	    })
//	}
//
// RequireAuth takes its dependencies first and returns such a function, so
// chi can use it with r.Use(RequireAuth(tokens, users)).
func RequireAuth(tokens *TokenService, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolveUser(r, tokens, users)
			if err != nil {
				if errors.Is(err, apperror.ErrUnauthorized) {
					writeDenied(w, http.StatusUnauthorized, apperror.CodeNotLogin, "not logged in")
					return
				}
				writeLookupFailure(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

// OptionalAuth resolves the caller when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuth(tokens *TokenService, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolveUser(r, tokens, users)
			switch {
			case err == nil:
				r = r.WithContext(ContextWithUser(r.Context(), user))
			case !errors.Is(err, apperror.ErrUnauthorized):
				writeLookupFailure(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole must run after RequireAuth. It lets the request through only
// when the caller has the given role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeDenied(w, http.StatusUnauthorized, apperror.CodeNotLogin, "not logged in")
				return
			}
			if user.Role != role {
				writeDenied(w, http.StatusForbidden, apperror.CodeNoAuth, "no permission")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ContextWithUser returns a copy of ctx carrying user.
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated caller, or (nil, false) for an
// anonymous request.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// TokenFromRequest reads the access token from the cookie, falling back to
// an "Authorization: Bearer" header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// resolveUser returns an apperror.ErrUnauthorized error when the request
// carries no usable identity. Any other error means the user store failed.
func resolveUser(r *http.Request, tokens *TokenService, users UserLookup) (*model.User, error) {
	raw := TokenFromRequest(r)
	if raw == "" {
		return nil, apperror.Unauthorized("no token")
	}
	userID, err := tokens.Validate(raw)
	if err != nil {
		return nil, apperror.Unauthorized("invalid token")
	}
	user, err := users.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrValidation) {
			return nil, apperror.Unauthorized("user no longer exists")
		}
		return nil, fmt.Errorf("auth: loading user %d: %w", userID, err)
	}
	return user, nil
}

// writeLookupFailure reports a user store failure as a system error, so an
// outage is not mistaken for a logout.
func writeLookupFailure(w http.ResponseWriter, err error) {
	slog.Error("auth: resolving caller failed", slog.String("error", err.Error()))
	writeDenied(w, http.StatusInternalServerError, apperror.CodeSystem, "system error")
}

// writeDenied writes the same {code,data,message} envelope the handlers use.
func writeDenied(w http.ResponseWriter, status, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"code":    code,
		"data":    nil,
		"message": message,
	})
}
