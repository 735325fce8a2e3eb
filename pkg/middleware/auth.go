package middleware

import (
	"context"
	"net/http"
	"strings"

	"pgstay/pkg/logger"
	"pgstay/pkg/model"

	"github.com/golang-jwt/jwt/v5"
)

const IdentityKey contextKey = "identity"

// Claims mirrors what the external identity service signs into its tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticate verifies a bearer token when one is present and stores the
// resulting identity in the request context. Requests without an
// Authorization header pass through anonymously; endpoints that need an
// identity reject those themselves. A malformed or expired token is always
// a hard 401.
func Authenticate(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				rejectUnauthorized(w, log, r, "invalid authorization header format")
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return key, nil
			})
			if err != nil || !token.Valid || claims.Subject == "" {
				rejectUnauthorized(w, log, r, "invalid or expired token")
				return
			}

			identity := model.Identity{
				ID:   claims.Subject,
				Role: claims.Role,
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom returns the verified identity for the request, if any.
func IdentityFrom(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(model.Identity)
	return identity, ok
}

func rejectUnauthorized(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	log.Warn("Rejected unauthenticated request",
		"request_id", RequestIDFrom(r.Context()),
		"path", r.URL.Path,
		"reason", reason,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + reason + `"}`))
}
