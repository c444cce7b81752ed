package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var testSecret = []byte("test-secret")

func TestServiceTokenRoundTrip(t *testing.T) {
	token, err := GenerateServiceToken(testSecret, "audio-format-service", time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}

	if claims.Service != "audio-format-service" {
		t.Errorf("Expected service audio-format-service, got %s", claims.Service)
	}
	if claims.Role != "service" {
		t.Errorf("Expected role service, got %s", claims.Role)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateServiceToken(testSecret, "stt-service", time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := ValidateToken([]byte("other-secret"), token); err == nil {
		t.Error("Expected validation to fail with the wrong secret")
	}
}

func TestValidateExpiredToken(t *testing.T) {
	token, err := GenerateServiceToken(testSecret, "stt-service", -time.Minute)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := ValidateToken(testSecret, token); err == nil {
		t.Error("Expected validation to fail for an expired token")
	}
}

func TestMiddleware(t *testing.T) {
	e := echo.New()
	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	mw := Middleware(testSecret, zap.NewNop())

	// Missing token is rejected.
	req := httptest.NewRequest(http.MethodGet, "/formats", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/formats")

	err := mw(handler)(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for missing token, got %v", err)
	}

	// Valid token passes through.
	token, _ := GenerateServiceToken(testSecret, "client", time.Hour)
	req = httptest.NewRequest(http.MethodGet, "/formats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetPath("/formats")

	if err := mw(handler)(c); err != nil {
		t.Errorf("Expected valid token to pass, got %v", err)
	}

	// /health is always open.
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetPath("/health")

	if err := mw(handler)(c); err != nil {
		t.Errorf("Expected /health to skip auth, got %v", err)
	}
}
