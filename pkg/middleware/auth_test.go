package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pgstay/pkg/logger"
	"pgstay/pkg/model"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-signing-secret"

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func signToken(t *testing.T, secret, subject, role string, expiresAt time.Time) string {
	t.Helper()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func runAuth(t *testing.T, authorization string) (*httptest.ResponseRecorder, model.Identity, bool) {
	t.Helper()

	var identity model.Identity
	var found bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, found = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()

	Authenticate(testSecret, testLogger())(next).ServeHTTP(rec, req)
	return rec, identity, found
}

func TestAuthenticate_ValidToken(t *testing.T) {
	token := signToken(t, testSecret, "507f1f77bcf86cd799439011", model.RoleOwner, time.Now().Add(time.Hour))

	rec, identity, found := runAuth(t, "Bearer "+token)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !found {
		t.Fatalf("expected identity in context")
	}
	if identity.ID != "507f1f77bcf86cd799439011" {
		t.Errorf("expected subject as id, got %s", identity.ID)
	}
	if !identity.IsOwner() {
		t.Errorf("expected owner role, got %s", identity.Role)
	}
}

func TestAuthenticate_NoHeaderPassesThroughAnonymously(t *testing.T) {
	rec, _, found := runAuth(t, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if found {
		t.Errorf("anonymous request must carry no identity")
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, "507f1f77bcf86cd799439011", model.RoleUser, time.Now().Add(-time.Hour))

	rec, _, _ := runAuth(t, "Bearer "+token)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for expired token, got %d", rec.Code)
	}
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	token := signToken(t, "some-other-secret", "507f1f77bcf86cd799439011", model.RoleUser, time.Now().Add(time.Hour))

	rec, _, _ := runAuth(t, "Bearer "+token)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for forged token, got %d", rec.Code)
	}
}

func TestAuthenticate_MissingSubject(t *testing.T) {
	token := signToken(t, testSecret, "", model.RoleUser, time.Now().Add(time.Hour))

	rec, _, _ := runAuth(t, "Bearer "+token)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for token without subject, got %d", rec.Code)
	}
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	for _, header := range []string{"Bearer", "Token abc", "abc"} {
		rec, _, _ := runAuth(t, header)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}
