package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(header string) (*httptest.ResponseRecorder, string) {
	gin.SetMode(gin.TestMode)
	var seen string
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(headerKey, header)
	}
	r.ServeHTTP(rec, req)
	return rec, seen
}

func TestMiddlewareKeepsClientID(t *testing.T) {
	rec, seen := serve("abc-123")
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(headerKey))
}

func TestMiddlewareReplacesOversizedID(t *testing.T) {
	_, seen := serve(strings.Repeat("x", 200))
	assert.Len(t, seen, 36)
}
