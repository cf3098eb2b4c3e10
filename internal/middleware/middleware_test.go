package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradebook-api/internal/models"
	"github.com/noah-isme/gradebook-api/internal/service"
)

const testSecret = "secret"

func signToken(t *testing.T, secret, userID string, role models.UserRole, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := &models.JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

type stubChecker struct {
	active map[string]bool
	err    error
	calls  int
}

func (s *stubChecker) IsActive(ctx context.Context, userID string) (bool, error) {
	s.calls++
	return s.active[userID], s.err
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := service.NewAuthService(nil, nil, nil, service.AuthConfig{AccessTokenSecret: testSecret})
	r.Use(JWT(auth))
	r.Use(handlers...)
	r.GET("/protected", func(c *gin.Context) {
		c.String(http.StatusOK, Claims(c).UserID)
	})
	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWT(t *testing.T) {
	r := newRouter()

	rec := do(r, signToken(t, testSecret, "user-1", models.RoleTeacher, time.Minute))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, signToken(t, "other", "user-1", models.RoleTeacher, time.Minute)).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, signToken(t, testSecret, "user-1", models.RoleTeacher, -time.Minute)).Code)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	r := newRouter(RequireAdmin())
	assert.Equal(t, http.StatusForbidden, do(r, signToken(t, testSecret, "user-1", models.RoleTeacher, time.Minute)).Code)
	assert.Equal(t, http.StatusOK, do(r, signToken(t, testSecret, "admin-1", models.RoleAdmin, time.Minute)).Code)
}

func TestRequireSubscription(t *testing.T) {
	checker := &stubChecker{active: map[string]bool{"paid": true}}
	r := newRouter(RequireSubscription(checker, true, nil))

	assert.Equal(t, http.StatusOK, do(r, signToken(t, testSecret, "paid", models.RoleTeacher, time.Minute)).Code)

	rec := do(r, signToken(t, testSecret, "free", models.RoleTeacher, time.Minute))
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "SUBSCRIPTION_REQUIRED"))

	calls := checker.calls
	assert.Equal(t, http.StatusOK, do(r, signToken(t, testSecret, "admin-1", models.RoleAdmin, time.Minute)).Code)
	assert.Equal(t, calls, checker.calls)

	checker.err = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, do(r, signToken(t, testSecret, "paid", models.RoleTeacher, time.Minute)).Code)
}

func TestRequireSubscriptionDisabled(t *testing.T) {
	checker := &stubChecker{}
	r := newRouter(RequireSubscription(checker, false, nil))
	assert.Equal(t, http.StatusOK, do(r, signToken(t, testSecret, "free", models.RoleTeacher, time.Minute)).Code)
	assert.Zero(t, checker.calls)
}

func TestMetricsMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/courses/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/courses/abc", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	scrape := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, scrape.Body.String(), `http_requests_total{method="GET",path="/courses/:id"`)
}

func TestMetricsSkipsProbeRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics, "/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/courses/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/courses/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	scrape := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := scrape.Body.String()
	assert.NotContains(t, body, `path="/health"`)
	assert.Contains(t, body, `path="/courses/:id"`)
	assert.Contains(t, body, `path="unmatched"`)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WithResponseMeta())
	var meta map[string]interface{}
	r.GET("/", func(c *gin.Context) {
		meta = ResponseMeta(c, map[string]interface{}{"year": 2024})
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, 2024, meta["year"])
	assert.Contains(t, meta, "processing_time_ms")
}
