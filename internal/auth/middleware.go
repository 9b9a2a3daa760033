package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/tunefave/backend/internal/errors"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "token"

type contextKey string

const UserContextKey contextKey = "user"

type UserContext struct {
	UserID   uuid.UUID
	Email    string
	Username string
}

// ExtractToken pulls the session token from the request, preferring the
// session cookie and falling back to an Authorization bearer header.
func ExtractToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// SetSessionCookie writes the session token as an HttpOnly cookie.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTokenExpiry / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func Middleware(authService *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := apperrors.GetRequestID(r.Context())

			tokenString := ExtractToken(r)
			if tokenString == "" {
				apperrors.WriteError(w, requestID, apperrors.Unauthorized("missing session token"))
				return
			}

			claims, err := authService.VerifyToken(tokenString)
			if err != nil {
				if err == ErrTokenExpired {
					apperrors.WriteError(w, requestID, apperrors.TokenExpired())
					return
				}
				apperrors.WriteError(w, requestID, apperrors.InvalidToken("invalid session token"))
				return
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				apperrors.WriteError(w, requestID, apperrors.InvalidToken("invalid user ID in token"))
				return
			}

			userCtx := &UserContext{
				UserID:   userID,
				Email:    claims.Email,
				Username: claims.Username,
			}

			ctx := context.WithValue(r.Context(), UserContextKey, userCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserFromContext(ctx context.Context) *UserContext {
	user, ok := ctx.Value(UserContextKey).(*UserContext)
	if !ok {
		return nil
	}
	return user
}
