package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradebook-api/internal/middleware"
	"github.com/noah-isme/gradebook-api/internal/service"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
	"github.com/noah-isme/gradebook-api/pkg/response"
)

// actorFromContext converts the JWT claims into a service actor, responding
// 401 when the request is unauthenticated.
func actorFromContext(c *gin.Context) (service.Actor, bool) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return service.Actor{}, false
	}
	return service.Actor{UserID: claims.UserID, Role: claims.Role}, true
}

func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}

// intQuery parses an optional integer query parameter; absent means 0.
func intQuery(c *gin.Context, name string) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, name+" must be a positive integer"))
		return 0, false
	}
	return v, true
}
