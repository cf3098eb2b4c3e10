package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/gradebook-api/internal/models"
	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
	"github.com/noah-isme/gradebook-api/pkg/response"
)

// SubscriptionChecker reports whether a user has paid access.
type SubscriptionChecker interface {
	IsActive(ctx context.Context, userID string) (bool, error)
}

// RequireSubscription blocks dashboard routes for users without an active
// subscription. Admins always pass. A disabled gate is a no-op.
func RequireSubscription(checker SubscriptionChecker, enabled bool, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if !enabled || checker == nil {
			c.Next()
			return
		}
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if claims.Role == models.RoleAdmin {
			c.Next()
			return
		}
		active, err := checker.IsActive(c.Request.Context(), claims.UserID)
		if err != nil {
			logger.Error("subscription check failed", zap.String("user_id", claims.UserID), zap.Error(err))
			response.Error(c, err)
			c.Abort()
			return
		}
		if !active {
			response.Error(c, appErrors.ErrPaymentRequired)
			c.Abort()
			return
		}
		c.Next()
	}
}
