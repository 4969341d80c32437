package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const testSecret = "top-secret"

func signToken(t *testing.T, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims(rol string) Claims {
	return Claims{
		Rol: rol,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestJWTValidatorValidate(t *testing.T) {
	v, err := NewJWTValidator(testSecret, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := v.Validate(signToken(t, validClaims("admin")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != "user-1" || !claims.HasAnyRole([]string{"ADMIN"}) {
		t.Fatalf("unexpected claims: %#v", claims)
	}

	if _, err := v.Validate(""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}

	expired := validClaims("admin")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	if _, err := v.Validate(signToken(t, expired)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}

	noSubject := validClaims("admin")
	noSubject.Subject = ""
	if _, err := v.Validate(signToken(t, noSubject)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for missing subject, got %v", err)
	}
}

func TestNewJWTValidatorRejectsBadPEM(t *testing.T) {
	if _, err := NewJWTValidator("", "not a pem"); err == nil {
		t.Fatal("expected error for invalid public key")
	}
}

func TestRequireRoles(t *testing.T) {
	v, _ := NewJWTValidator(testSecret, "")
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	handler := RequireRoles(v, []string{"admin", "staff"})(ok)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "student", header: "Bearer " + signToken(t, validClaims("estudiante")), status: http.StatusForbidden},
		{name: "staff", header: "bearer " + signToken(t, validClaims("staff")), status: http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/incidentes/1/estado", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			if err := handler(e.NewContext(req, rec)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestRequireRolesNilValidatorPassesThrough(t *testing.T) {
	e := echo.New()
	called := false
	handler := RequireRoles(nil, []string{"admin"})(func(c echo.Context) error {
		called = true
		return nil
	})
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("expected handler to run")
	}
}
