package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candlepin/candlepin-sub005/internal/domain/consumer"
	"github.com/candlepin/candlepin-sub005/internal/domain/permission"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/auth"
	"github.com/candlepin/candlepin-sub005/internal/interfaces/http/handlers/testutil"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubResolver struct {
	principal *permission.Principal
	err       error
	asked     string
}

func (r *stubResolver) Resolve(ctx context.Context, name string) (*permission.Principal, error) {
	r.asked = name
	return r.principal, r.err
}

func newAuthEngine(jwtSvc *auth.JWTService, resolver permission.Resolver) *gin.Engine {
	engine := gin.New()
	engine.Use(NewAuthMiddleware(jwtSvc, resolver, logger.NewNopLogger()).RequireAuth())
	engine.GET("/pools", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextKeyPrincipal))
	})
	return engine
}

func TestAuthMiddleware_RequireAuth(t *testing.T) {
	jwtSvc := auth.NewJWTService("secret", "candlepin", time.Minute)
	token, err := jwtSvc.Generate("alice")
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		principal := &permission.Principal{
			Name:        "alice",
			Permissions: []permission.Permission{permission.OwnerPermission{OwnerID: "owner-1", Access: permission.AccessAll}},
		}
		resolver := &stubResolver{principal: principal}

		var seen *permission.Principal
		engine := gin.New()
		engine.Use(NewAuthMiddleware(jwtSvc, resolver, logger.NewNopLogger()).RequireAuth())
		engine.GET("/pools", func(c *gin.Context) {
			seen, _ = permission.PrincipalFrom(c.Request.Context())
			c.String(http.StatusOK, c.GetString(ContextKeyPrincipal))
		})

		req := httptest.NewRequest(http.MethodGet, "/pools", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice", w.Body.String())
		assert.Equal(t, "alice", resolver.asked)
		assert.Same(t, principal, seen)
	})

	past := time.Now().Add(-time.Hour)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		Principal: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "candlepin",
			IssuedAt:  jwt.NewNumericDate(past.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(past),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		resolver *stubResolver
		want     int
		wantType string
	}{
		{"missing header", "", &stubResolver{}, http.StatusUnauthorized, "error"},
		{"wrong scheme", "Basic " + token, &stubResolver{}, http.StatusUnauthorized, "error"},
		{"garbage token", "Bearer not-a-jwt", &stubResolver{}, http.StatusUnauthorized, string(errors.ErrorTypeTokenInvalid)},
		{"expired token", "Bearer " + expired, &stubResolver{}, http.StatusUnauthorized, string(errors.ErrorTypeTokenExpired)},
		{"resolver failure", "Bearer " + token, &stubResolver{err: errors.NewForbiddenError("disabled")}, http.StatusForbidden, string(errors.ErrorTypeForbidden)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newAuthEngine(jwtSvc, tt.resolver)

			req := httptest.NewRequest(http.MethodGet, "/pools", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, tt.wantType, testutil.ErrorType(w))
		})
	}
}

func TestRequestID(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextKeyRequestID))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, strings.Repeat("x", 200))
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Len(t, w.Body.String(), 36, "oversized ids are replaced by a uuid")
}

func TestCORS(t *testing.T) {
	engine := gin.New()
	engine.Use(CORS([]string{"https://portal.example.com"}))
	engine.GET("/pools", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/pools", nil)
	req.Header.Set("Origin", "https://portal.example.com")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, "https://portal.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/pools", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/pools", nil)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHostCache_PerRequest(t *testing.T) {
	var caches []*consumer.HostCache
	engine := gin.New()
	engine.Use(HostCache(8))
	engine.GET("/", func(c *gin.Context) {
		hc, ok := consumer.HostCacheFrom(c.Request.Context())
		require.True(t, ok)
		caches = append(caches, hc)
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	require.Len(t, caches, 2)
	assert.NotSame(t, caches[0], caches[1])
}
