package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"go-todo-api/internal/model"
	"go-todo-api/internal/session"
)

const unauthorizedMessage = "Authentication credentials were not provided or are invalid"

type tokenValidator interface {
	Validate(tokenString string, expected session.Type) (string, error)
}

type cookieReader interface {
	Extract(r *http.Request, name string) (string, bool)
}

type userResolver interface {
	GetUserByID(ctx context.Context, userID string) (model.User, error)
}

type contextKey string

const identityContextKey contextKey = "identity"

// SessionAuthenticator resolves the caller from the access token cookie.
type SessionAuthenticator struct {
	tokens  tokenValidator
	cookies cookieReader
	users   userResolver
}

func NewSessionAuthenticator(tokens tokenValidator, cookies cookieReader, users userResolver) *SessionAuthenticator {
	return &SessionAuthenticator{tokens: tokens, cookies: cookies, users: users}
}

// Authenticate attaches the caller's identity when the access cookie holds a
// valid token for an existing user. It never rejects a request.
func (a *SessionAuthenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := a.resolve(r)
		if ok {
			r = r.WithContext(WithIdentity(r.Context(), identity))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth answers 401 for anonymous callers. Authenticate must run first.
func (a *SessionAuthenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", unauthorizedMessage)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *SessionAuthenticator) resolve(r *http.Request) (model.Identity, bool) {
	raw, ok := a.cookies.Extract(r, session.AccessCookieName)
	if !ok {
		return model.Identity{}, false
	}

	userID, err := a.tokens.Validate(raw, session.TypeAccess)
	if err != nil {
		slog.Debug("access token rejected", "error", err, "path", r.URL.Path)
		return model.Identity{}, false
	}

	user, err := a.users.GetUserByID(r.Context(), userID)
	if err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			slog.Warn("resolve token subject failed", "user_id", userID, "error", err)
		}
		return model.Identity{}, false
	}

	return model.Identity{UserID: user.ID, Username: user.Username}, true
}

func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(model.Identity)
	return identity, ok
}
