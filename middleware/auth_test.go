package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func protectedEcho(t *testing.T) (http.Handler, *string) {
	t.Helper()
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := UsernameFromContext(r.Context())
		if !ok {
			t.Error("username missing from context in protected handler")
		}
		seen = username
		w.WriteHeader(http.StatusOK)
	})
	return Authenticate(testSecret)(handler), &seen
}

func TestAuthenticateAcceptsValidToken(t *testing.T) {
	handler, seen := protectedEcho(t)

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "ash",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if *seen != "ash" {
		t.Errorf("context username = %q, want ash", *seen)
	}
}

func TestAuthenticateRejects(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + signToken(t, []byte("other-secret"), jwt.MapClaims{
			"sub": "ash",
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
		{"expired", "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"sub": "ash",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})},
		{"missing subject", "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("protected handler reached without valid credentials")
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}
