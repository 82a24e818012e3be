package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abduss/docstore/internal/config"
	"github.com/gin-gonic/gin"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(config.AuthConfig{
		ServiceTokenSecret: "test-secret",
		Issuer:             "docstore",
		ServiceTokenTTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestIssueAndValidateToken(t *testing.T) {
	svc := newTestService(t)

	token, expiresAt, err := svc.IssueToken("license-service")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expected expiry in the future, got %v", expiresAt)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Service != "license-service" {
		t.Fatalf("expected subject license-service, got %q", claims.Service)
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := newTestService(t)
	svc.nowFunc = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := svc.IssueToken("policy-service")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	svc.nowFunc = time.Now
	if _, err := svc.ValidateToken(token); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	other, err := NewService(config.AuthConfig{ServiceTokenSecret: "other", ServiceTokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	token, _, err := other.IssueToken("intruder")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, err := newTestService(t).ValidateToken(token); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestIssueTokenRequiresSubject(t *testing.T) {
	if _, _, err := newTestService(t).IssueToken("  "); err != ErrInvalidSubject {
		t.Fatalf("expected ErrInvalidSubject, got %v", err)
	}
}

func TestNewServiceRequiresSecret(t *testing.T) {
	if _, err := NewService(config.AuthConfig{}); err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestNewServiceRequiresPositiveTTL(t *testing.T) {
	if _, err := NewService(config.AuthConfig{ServiceTokenSecret: "s"}); err == nil {
		t.Fatalf("expected error for zero ttl")
	}
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestService(t)

	r := gin.New()
	r.Use(AuthMiddleware(svc))
	r.GET("/whoami", func(c *gin.Context) {
		name, _ := CurrentService(c)
		c.String(http.StatusOK, name)
	})

	token, _, err := svc.IssueToken("license-service")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rr.Code)
			}
			if tc.status == http.StatusOK && rr.Body.String() != "license-service" {
				t.Fatalf("expected caller license-service, got %q", rr.Body.String())
			}
		})
	}
}
