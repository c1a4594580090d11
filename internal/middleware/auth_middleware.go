package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/collegeerp/internal/audit"
	"github.com/yigit/collegeerp/internal/pkg/logger"
)

// UserHeader names the acting user recorded in the audit trail.
const UserHeader = "X-User-ID"

// ActingUser copies the X-User-ID header into the request context, where
// audit entries pick it up. Requests without it are recorded as "system".
func ActingUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserHeader))
		if userID != "" {
			ctx := audit.WithUser(c.Request.Context(), userID)
			l := logger.ForRequest(*zerolog.Ctx(ctx), "", userID)
			c.Request = c.Request.WithContext(l.WithContext(ctx))
			c.Set("userID", userID)
		}
		c.Next()
	}
}
