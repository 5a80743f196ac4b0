package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"

	"github.com/AtanuDevOps/blood-project/internal/models"
)

type contextKey string

const UserIDKey contextKey = "userID"

// Authenticator resolves a bearer token to a user id. It accepts the service's
// own JWTs and, when a Firebase client is configured, Firebase ID tokens from
// clients still using the original web login.
type Authenticator struct {
	jwtSecret string
	firebase  *firebaseauth.Client
}

func NewAuthenticator(jwtSecret string, firebase *firebaseauth.Client) *Authenticator {
	return &Authenticator{
		jwtSecret: jwtSecret,
		firebase:  firebase,
	}
}

// Require rejects requests without a valid identity.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := a.resolve(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid or expired token"))
			return
		}
		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional attaches an identity when a valid token is present but lets
// anonymous requests through. Public endpoints (donor search, contact request
// submission) use this so guests and logged-in users share one code path.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := a.resolve(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), UserIDKey, userID))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) resolve(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	tokenString := parts[1]

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(a.jwtSecret), nil
	})
	if err == nil && token.Valid {
		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if userID, ok := claims["user_id"].(string); ok && userID != "" {
				return userID, true
			}
		}
		return "", false
	}

	if a.firebase != nil {
		if decoded, err := a.firebase.VerifyIDToken(r.Context(), tokenString); err == nil {
			return decoded.UID, true
		}
	}
	return "", false
}

// GetUserID extracts the authenticated user id from context, or "" when the
// request was anonymous.
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
