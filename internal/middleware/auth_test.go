package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"namcportal/internal/domain"
	"namcportal/internal/domain/models"
	"namcportal/internal/httputil"
)

type fakeVerifier struct {
	claims *models.PortalClaims
	err    error
}

func (f *fakeVerifier) VerifyToken(token string) (*models.PortalClaims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

func (f *fakeVerifier) Close() error { return nil }

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	validClaims := &models.PortalClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
		Role:             "authenticated",
		PortalRole:       models.RoleMember,
	}

	tests := []struct {
		name       string
		path       string
		header     string
		cookie     string
		verifier   *fakeVerifier
		wantStatus int
	}{
		{
			name:       "valid bearer token",
			path:       "/api/members",
			header:     "Bearer good-token",
			verifier:   &fakeVerifier{claims: validClaims},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing credentials",
			path:       "/api/members",
			verifier:   &fakeVerifier{claims: validClaims},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			path:       "/api/members",
			header:     "Bearer bad-token",
			verifier:   &fakeVerifier{err: domain.ErrUnauthorized},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "cookie fallback",
			path:       "/api/members",
			cookie:     "good-token",
			verifier:   &fakeVerifier{claims: validClaims},
			wantStatus: http.StatusOK,
		},
		{
			name:       "health is public",
			path:       "/health",
			verifier:   &fakeVerifier{err: domain.ErrUnauthorized},
			wantStatus: http.StatusOK,
		},
		{
			name:       "webhook is public",
			path:       "/api/webhooks/hubspot",
			verifier:   &fakeVerifier{err: domain.ErrUnauthorized},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookie})
			}

			rec := httptest.NewRecorder()
			AuthMiddleware(tt.verifier)(okHandler()).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin(okHandler())

	t.Run("member rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/budgets", nil)
		req = httputil.WithClaims(req, &models.PortalClaims{PortalRole: models.RoleMember})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("admin allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/budgets", nil)
		req = httputil.WithClaims(req, &models.PortalClaims{PortalRole: models.RoleAdmin})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("unauthenticated rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/budgets", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
	})
}
